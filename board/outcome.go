package board

// Outcome classifies what a successful Flip did, for callers that want
// to log it (spec.md itself has no notion of this — it is pure
// transport-layer bookkeeping grounded on the command facade's need to
// tell an analytics log what happened without re-deriving it from
// Look()). The zero value, OutcomeNone, is never returned alongside a
// nil error.
type Outcome int

const (
	OutcomeNone Outcome = iota

	// OutcomeFirstFlip is a flip that became the player's first
	// Controlled card this turn.
	OutcomeFirstFlip

	// OutcomeMatch is a second flip whose value equals the first
	// card's value; both cards remain Controlled pending removal on
	// the player's next Flip.
	OutcomeMatch

	// OutcomeMismatch is a second flip whose value differs from the
	// first card's; both cards relinquish control immediately.
	OutcomeMismatch
)

func (o Outcome) String() string {
	switch o {
	case OutcomeFirstFlip:
		return "first_flip"
	case OutcomeMatch:
		return "match"
	case OutcomeMismatch:
		return "mismatch"
	default:
		return "none"
	}
}
