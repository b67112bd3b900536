package board

// renderCard implements spec.md §4.1's pure render: a short display
// token derived from (state, value, viewer-owns?). It never touches a
// lock — callers (Card.render, tests) supply an already-consistent
// snapshot.
func renderCard(state cardState, value string, viewerOwns bool) string {
	switch state {
	case cardDown:
		return "down"
	case cardGone:
		return "none"
	case cardUp:
		return "up " + value
	case cardControlled:
		if viewerOwns {
			return "my " + value
		}
		return "up " + value
	default:
		return "unknown"
	}
}
