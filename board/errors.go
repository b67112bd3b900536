package board

import "errors"

// Sentinel errors surfaced by the concurrency core. Callers compare
// with errors.Is; none of these carry state beyond their identity.
var (
	// ErrCardRemoved is returned by flipUpAsFirst when the card is (or
	// became, while waiting) Gone.
	ErrCardRemoved = errors.New("board: card removed")

	// ErrRestrictedAccess is returned by flipUpAsSecond when the card is
	// Controlled (by anyone) or Gone.
	ErrRestrictedAccess = errors.New("board: restricted access")

	// ErrCancelled is returned when a blocked flipUpAsFirst or Watch is
	// interrupted via context cancellation before the condition it is
	// waiting for becomes true.
	ErrCancelled = errors.New("board: cancelled")
)
