package board

import (
	"context"
	"sync"
)

// cardState is one of the four states a Card may occupy.
type cardState int

const (
	cardDown cardState = iota
	cardUp
	cardControlled
	cardGone
)

func (s cardState) String() string {
	switch s {
	case cardDown:
		return "down"
	case cardUp:
		return "up"
	case cardControlled:
		return "controlled"
	case cardGone:
		return "gone"
	default:
		return "unknown"
	}
}

// Card is a single slot on the board: its own mutex, its own condition
// variable, and the (value, state, owner) triple spec.md §3 describes.
// It never references the Board directly — onChange is the capability
// that lets it announce an observable change without knowing who is
// listening.
type Card struct {
	index int

	mu    sync.Mutex
	cond  *sync.Cond
	value string
	state cardState
	owner string

	onChange func()
}

func newCard(index int, value string, onChange func()) *Card {
	c := &Card{
		index:    index,
		value:    value,
		state:    cardDown,
		onChange: onChange,
	}
	c.cond = sync.NewCond(&c.mu)
	return c
}

// Lock and Unlock expose the card's mutex for the Board's ordered
// global acquisition in Map/Reset. Per-card operations below never
// call these themselves; they manage the lock internally.
func (c *Card) Lock()   { c.mu.Lock() }
func (c *Card) Unlock() { c.mu.Unlock() }

// mapValueLocked replaces the card's value. Caller must hold Lock().
func (c *Card) mapValueLocked(f func(string) string) {
	c.value = f(c.value)
}

// resetLocked drives the card to (Down, no owner) and wakes any
// flipUpAsFirst waiters blocked on it. Caller must hold Lock().
func (c *Card) resetLocked() {
	c.state = cardDown
	c.owner = ""
	c.cond.Broadcast()
}

// valueLocked returns the current value. Caller must hold Lock().
func (c *Card) valueLocked() string { return c.value }

// flipUpAsFirst is the sole blocking card operation (spec.md §4.1). It
// waits, under its own lock, while the card is Controlled by someone
// else, rechecking the state after every wake. A blocked wait can be
// interrupted by ctx; the interruption surfaces as ErrCancelled and
// leaves the card's state untouched.
func (c *Card) flipUpAsFirst(ctx context.Context, playerID string) error {
	cancelled := make(chan struct{})
	defer close(cancelled)
	go func() {
		select {
		case <-ctx.Done():
			c.mu.Lock()
			c.cond.Broadcast()
			c.mu.Unlock()
		case <-cancelled:
		}
	}()

	c.mu.Lock()
	for {
		if c.state == cardGone {
			c.mu.Unlock()
			return ErrCardRemoved
		}
		if c.state != cardControlled || c.owner == playerID {
			break
		}
		if ctx.Err() != nil {
			c.mu.Unlock()
			return ErrCancelled
		}
		c.cond.Wait()
	}

	if c.state == cardControlled {
		// Already controlled by playerID: no-op, no notification.
		c.mu.Unlock()
		return nil
	}
	c.state = cardControlled
	c.owner = playerID
	c.mu.Unlock()
	c.notify()
	return nil
}

// flipUpAsSecond never blocks. It succeeds only from Down or Up; a
// Controlled or Gone card (by any owner, including the caller) fails
// with ErrRestrictedAccess.
func (c *Card) flipUpAsSecond(playerID string) error {
	c.mu.Lock()
	if c.state == cardControlled || c.state == cardGone {
		c.mu.Unlock()
		return ErrRestrictedAccess
	}
	c.state = cardControlled
	c.owner = playerID
	c.mu.Unlock()
	c.notify()
	return nil
}

// relinquishControl drops a Controlled card to Up. It is a no-op from
// any other state. It wakes waiters (the card leaves Controlled) but,
// per spec.md §4.1, never itself publishes a board-level change — the
// flip protocol always has its own reason to notify once the turn's
// outcome is final.
func (c *Card) relinquishControl() {
	c.mu.Lock()
	if c.state != cardControlled {
		c.mu.Unlock()
		return
	}
	c.state = cardUp
	c.owner = ""
	c.cond.Broadcast()
	c.mu.Unlock()
}

// flipDown drives an Up card to Down. It is a no-op on any other state
// — in particular, on a Controlled card, so that retiring one player's
// stale pair can never strip another player's legitimately acquired
// control out from under them (see DESIGN.md, open-question
// resolution for the ambiguous transition-table entry).
func (c *Card) flipDown() {
	c.mu.Lock()
	if c.state != cardUp {
		c.mu.Unlock()
		return
	}
	c.state = cardDown
	c.mu.Unlock()
	c.notify()
}

// removeCard drives any non-Gone card to Gone. Idempotent.
func (c *Card) removeCard() {
	c.mu.Lock()
	if c.state == cardGone {
		c.mu.Unlock()
		return
	}
	c.state = cardGone
	c.owner = ""
	c.cond.Broadcast()
	c.mu.Unlock()
	c.notify()
}

// controllingOwner returns the card's owner and whether it is
// currently Controlled, under its own lock. Used by the Board to take
// a lock-free-across-cards snapshot of "cards controlled by p" (see
// spec.md §4.2, "Concurrency honesty").
func (c *Card) controllingOwner() (owner string, controlled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.owner, c.state == cardControlled
}

// valueSnapshot reads the value under the card's own lock, the
// matching predicate's required read discipline (spec.md §4.1).
func (c *Card) valueSnapshot() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// render returns viewerID's display token for this card, read
// consistently under the card's own lock.
func (c *Card) render(viewerID string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return renderCard(c.state, c.value, c.state == cardControlled && c.owner == viewerID)
}

func (c *Card) notify() {
	if c.onChange != nil {
		c.onChange()
	}
}
