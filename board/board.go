// Package board implements the concurrent Memory Scramble board
// engine: a shared, mutable grid of cards on which an unbounded number
// of player agents perform interleaved flip, match, transform, watch,
// and reset operations, under the per-card lock/condition-variable
// discipline and the ordered global-acquisition discipline described
// in DESIGN.md and SPEC_FULL.md.
package board

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Board owns an ordered, fixed-length sequence of distinct Cards and
// the watch channel (spec.md §3, §4.4).
type Board struct {
	rows, cols int
	cards      []*Card

	// watchMu/watchCond back the Board-wide watch channel (CV_watch).
	// They are also used, as a small incidental convenience, to guard
	// pendingRelinquished below — a non-blocking critical section that
	// is never held while a card lock is held, so sharing the watch
	// lock cannot make Flip/Map/Reset block on it (spec.md's "Avoiding
	// a centralized Board lock" design note).
	watchMu   sync.Mutex
	watchCond *sync.Cond

	// pendingRelinquished tracks, per player, the indices of the Up
	// cards left over from that player's last mismatched pair — the
	// bookkeeping spec.md §4.2 Step 1 needs but that cannot live on
	// Card itself, since a Card's owner is present iff it is
	// Controlled (spec.md §3).
	pendingRelinquished map[string][]int
}

// NewBoard constructs a Board of rows*cols cards addressed in
// row-major order, seeded with the given initial values. It panics on
// a malformed shape — by the time NewBoard is called, any deviation in
// the external board-config source has already been rejected by the
// boardconfig package (spec.md §6); a mismatch here is a caller bug,
// not a runtime condition (spec.md §7).
func NewBoard(rows, cols int, values []string) *Board {
	if rows <= 0 || cols <= 0 {
		panic("board: rows and cols must be positive")
	}
	if len(values) != rows*cols {
		panic(fmt.Sprintf("board: expected %d initial values, got %d", rows*cols, len(values)))
	}

	b := &Board{
		rows:                rows,
		cols:                cols,
		pendingRelinquished: make(map[string][]int),
	}
	b.watchCond = sync.NewCond(&b.watchMu)

	cards := make([]*Card, len(values))
	for i, v := range values {
		if v == "" {
			panic("board: card value must be non-empty")
		}
		cards[i] = newCard(i, v, b.notify)
	}
	b.cards = cards
	return b
}

// Rows and Cols report the board's fixed dimensions.
func (b *Board) Rows() int { return b.rows }
func (b *Board) Cols() int { return b.cols }

// notify is the callback every Card was wired with at construction
// (spec.md §4.4): take the watch lock, broadcast, release.
func (b *Board) notify() {
	b.watchMu.Lock()
	b.watchCond.Broadcast()
	b.watchMu.Unlock()
}

// Watch blocks until any observable change occurs — any card's state
// transition, or the completion of Map or Reset — and then returns.
// Spurious wakes are possible; callers must tolerate them by re-reading
// state via Look. Watch is cancellable via ctx; a cancellation before
// any change arrives returns ErrCancelled.
func (b *Board) Watch(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return ErrCancelled
	}

	cancelled := make(chan struct{})
	defer close(cancelled)
	go func() {
		select {
		case <-ctx.Done():
			b.watchMu.Lock()
			b.watchCond.Broadcast()
			b.watchMu.Unlock()
		case <-cancelled:
		}
	}()

	b.watchMu.Lock()
	defer b.watchMu.Unlock()
	// Re-check under the lock: a cancellation whose broadcast ran before
	// this Lock would otherwise be missed by the Wait below.
	if ctx.Err() != nil {
		return ErrCancelled
	}
	b.watchCond.Wait()
	if ctx.Err() != nil {
		return ErrCancelled
	}
	return nil
}

// Look renders a textual snapshot of the board from playerID's point
// of view: a "{rows}x{columns}" header followed by one render() line
// per card in row-major order. No lock is held across the snapshot;
// each card is read under only its own lock (spec.md §4.5).
func (b *Board) Look(playerID string) string {
	lines := make([]string, 0, len(b.cards)+1)
	lines = append(lines, fmt.Sprintf("%dx%d", b.rows, b.cols))
	for _, c := range b.cards {
		lines = append(lines, c.render(playerID))
	}
	return strings.Join(lines, "\n")
}

// Flip runs the three-step flip protocol of spec.md §4.2 for playerID
// against cards[index]. The Board holds no cross-card lock during any
// of it; each sub-step is self-synchronizing on its own card(s). index
// must already be validated by the caller (the command façade raises
// InvalidAddress — Flip itself assumes a valid index and panics
// otherwise, per spec.md §7's "internal failures ... are fatal").
func (b *Board) Flip(ctx context.Context, playerID string, index int) (Outcome, error) {
	if index < 0 || index >= len(b.cards) {
		panic("board: index out of range")
	}

	// Step 1 — retire unmatched prior turn.
	b.retirePending(playerID)

	// Step 2 — collect matched pair.
	if controlled := b.controlledBy(playerID); len(controlled) == 2 {
		controlled[0].removeCard()
		controlled[1].removeCard()
	}

	// Step 3 — classify the new flip.
	controlled := b.controlledBy(playerID)
	target := b.cards[index]

	switch len(controlled) {
	case 0:
		if err := target.flipUpAsFirst(ctx, playerID); err != nil {
			return OutcomeNone, err
		}
		return OutcomeFirstFlip, nil
	case 1:
		prev := controlled[0]
		if err := target.flipUpAsSecond(playerID); err != nil {
			prev.relinquishControl()
			b.notify()
			return OutcomeNone, err
		}
		if target.valueSnapshot() == prev.valueSnapshot() {
			// Both stay Controlled; retired by Step 2 of a later flip.
			return OutcomeMatch, nil
		}
		target.relinquishControl()
		prev.relinquishControl()
		b.rememberPending(playerID, prev.index, target.index)
		b.notify()
		return OutcomeMismatch, nil
	default:
		// I2 guarantees a player controls at most two cards at once.
		panic("board: player controls more than two cards")
	}
}

// controlledBy takes a lock-free-across-cards snapshot of the cards
// currently Controlled by playerID. This is sound by the argument in
// spec.md §4.2 "Concurrency honesty": only playerID's own thread ever
// moves a card into or out of Controlled-by-playerID.
func (b *Board) controlledBy(playerID string) []*Card {
	var out []*Card
	for _, c := range b.cards {
		if owner, controlled := c.controllingOwner(); controlled && owner == playerID {
			out = append(out, c)
		}
	}
	return out
}

func (b *Board) retirePending(playerID string) {
	b.watchMu.Lock()
	indices := b.pendingRelinquished[playerID]
	delete(b.pendingRelinquished, playerID)
	b.watchMu.Unlock()
	for _, idx := range indices {
		b.cards[idx].flipDown()
	}
}

func (b *Board) rememberPending(playerID string, a, c int) {
	b.watchMu.Lock()
	b.pendingRelinquished[playerID] = []int{a, c}
	b.watchMu.Unlock()
}

func (b *Board) clearPending() {
	b.watchMu.Lock()
	b.pendingRelinquished = make(map[string][]int)
	b.watchMu.Unlock()
}

// orderedLock acquires every card's lock in the Board's fixed order
// (each card's position in b.cards — spec.md's "Global lock ordering"
// design note). orderedUnlock releases in the reverse order. Used by
// Map and Reset so two global operations can never deadlock against
// each other, and a global operation can never deadlock against a
// per-card op (which holds at most one card lock at a time).
func (b *Board) orderedLock() {
	for _, c := range b.cards {
		c.Lock()
	}
}

func (b *Board) orderedUnlock() {
	for i := len(b.cards) - 1; i >= 0; i-- {
		b.cards[i].Unlock()
	}
}

// Map applies f to every card's value, atomically with respect to any
// other card operation: every card's lock is held for the duration of
// the transform, so no per-card operation on any card can interleave
// with it (spec.md §4.3). State and owner are untouched. Watchers are
// woken exactly once after release.
func (b *Board) Map(f func(string) string) {
	b.orderedLock()
	for _, c := range b.cards {
		c.mapValueLocked(f)
	}
	b.orderedUnlock()
	b.notify()
}

// MapValue is sugar for Map(v -> to if v == from else v), per spec.md
// §6's command-façade contract.
func (b *Board) MapValue(from, to string) {
	b.Map(func(v string) string {
		if v == from {
			return to
		}
		return v
	})
}

// Reset returns every card to (Down, no owner), preserving values, and
// forgets every player's pending-retirement bookkeeping (spec.md
// §4.3). Watchers are woken exactly once after release.
func (b *Board) Reset() {
	b.orderedLock()
	for _, c := range b.cards {
		c.resetLocked()
	}
	b.orderedUnlock()
	b.clearPending()
	b.notify()
}
