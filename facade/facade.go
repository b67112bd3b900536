// Package facade implements the command façade of spec.md §6: the one
// synchronous API both the HTTP handlers and the WebSocket handlers
// call into, grounded on the teacher's api.Handler/ws.Client split
// where thin transport code defers to a facade-ish method set.
package facade

import (
	"context"
	"fmt"

	"memoryboard/board"
)

// ErrInvalidAddress is raised by Flip itself, before the engine is ever
// consulted, when the row/column coordinate falls outside the grid.
var ErrInvalidAddress = fmt.Errorf("facade: invalid address")

// Facade wraps a board.Board with the bounds-checked, row/column
// command surface spec.md §6 describes.
type Facade struct {
	b *board.Board
}

// New wraps b in a Facade.
func New(b *board.Board) *Facade {
	return &Facade{b: b}
}

// Look renders the board from playerID's point of view.
func (f *Facade) Look(playerID string) string {
	return f.b.Look(playerID)
}

// Flip validates (row, column) against the grid before calling the
// engine; an out-of-range coordinate never reaches board.Board. The
// returned Outcome is meaningful only when err is nil; callers that
// don't care about it (tests) can discard it.
func (f *Facade) Flip(ctx context.Context, playerID string, row, column int) (board.Outcome, error) {
	if row < 0 || row >= f.b.Rows() || column < 0 || column >= f.b.Cols() {
		return board.OutcomeNone, ErrInvalidAddress
	}
	index := row*f.b.Cols() + column
	return f.b.Flip(ctx, playerID, index)
}

// Index returns the row-major card index for (row, column), for
// callers (the analytics log) that need to name which card an Outcome
// refers to without duplicating the façade's bounds check.
func (f *Facade) Index(row, column int) int {
	return row*f.b.Cols() + column
}

// MapValue is sugar for map(v -> to if v == from else v).
func (f *Facade) MapValue(from, to string) {
	f.b.MapValue(from, to)
}

// Watch blocks until the next observable board change.
func (f *Facade) Watch(ctx context.Context) error {
	return f.b.Watch(ctx)
}
