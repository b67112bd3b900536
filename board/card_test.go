package board

import (
	"context"
	"testing"
	"time"
)

func newTestCard(value string) *Card {
	return newCard(0, value, nil)
}

func TestCardFlipUpAsFirstFromDown(t *testing.T) {
	c := newTestCard("A")
	if err := c.flipUpAsFirst(context.Background(), "p1"); err != nil {
		t.Fatalf("flipUpAsFirst: %v", err)
	}
	if c.state != cardControlled || c.owner != "p1" {
		t.Fatalf("expected Controlled(p1), got state=%v owner=%q", c.state, c.owner)
	}
}

func TestCardFlipUpAsFirstIdempotentForOwner(t *testing.T) {
	c := newTestCard("A")
	if err := c.flipUpAsFirst(context.Background(), "p1"); err != nil {
		t.Fatalf("first flipUpAsFirst: %v", err)
	}
	if err := c.flipUpAsFirst(context.Background(), "p1"); err != nil {
		t.Fatalf("second flipUpAsFirst: %v", err)
	}
	if c.state != cardControlled || c.owner != "p1" {
		t.Fatalf("expected still Controlled(p1), got state=%v owner=%q", c.state, c.owner)
	}
}

func TestCardFlipUpAsFirstOnGoneFails(t *testing.T) {
	c := newTestCard("A")
	c.removeCard()
	if err := c.flipUpAsFirst(context.Background(), "p1"); err != ErrCardRemoved {
		t.Fatalf("expected ErrCardRemoved, got %v", err)
	}
}

func TestCardFlipUpAsFirstBlocksUntilReleased(t *testing.T) {
	c := newTestCard("A")
	if err := c.flipUpAsFirst(context.Background(), "p1"); err != nil {
		t.Fatalf("p1 first flip: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- c.flipUpAsFirst(context.Background(), "p2")
	}()

	select {
	case <-done:
		t.Fatal("p2 should have blocked while p1 controls the card")
	case <-time.After(50 * time.Millisecond):
	}

	c.relinquishControl()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("p2 flip after release: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("p2 never woke after p1 relinquished control")
	}
	if c.state != cardControlled || c.owner != "p2" {
		t.Fatalf("expected Controlled(p2), got state=%v owner=%q", c.state, c.owner)
	}
}

func TestCardFlipUpAsFirstWakesOnRemoval(t *testing.T) {
	c := newTestCard("A")
	if err := c.flipUpAsFirst(context.Background(), "p1"); err != nil {
		t.Fatalf("p1 first flip: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- c.flipUpAsFirst(context.Background(), "p2")
	}()
	time.Sleep(20 * time.Millisecond)

	c.removeCard()

	select {
	case err := <-done:
		if err != ErrCardRemoved {
			t.Fatalf("expected ErrCardRemoved, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("p2 never woke after removal")
	}
}

func TestCardFlipUpAsFirstCancellation(t *testing.T) {
	c := newTestCard("A")
	if err := c.flipUpAsFirst(context.Background(), "p1"); err != nil {
		t.Fatalf("p1 first flip: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- c.flipUpAsFirst(ctx, "p2")
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != ErrCancelled {
			t.Fatalf("expected ErrCancelled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("p2 never woke after cancellation")
	}
	// Card state must be untouched by the cancellation.
	if c.state != cardControlled || c.owner != "p1" {
		t.Fatalf("cancellation must not alter card state, got state=%v owner=%q", c.state, c.owner)
	}
}

func TestCardFlipUpAsSecondFromDown(t *testing.T) {
	c := newTestCard("A")
	if err := c.flipUpAsSecond("p1"); err != nil {
		t.Fatalf("flipUpAsSecond: %v", err)
	}
	if c.state != cardControlled || c.owner != "p1" {
		t.Fatalf("expected Controlled(p1), got state=%v owner=%q", c.state, c.owner)
	}
}

func TestCardFlipUpAsSecondRestrictedOnControlled(t *testing.T) {
	c := newTestCard("A")
	if err := c.flipUpAsFirst(context.Background(), "p1"); err != nil {
		t.Fatalf("setup flip: %v", err)
	}
	if err := c.flipUpAsSecond("p1"); err != ErrRestrictedAccess {
		t.Fatalf("expected ErrRestrictedAccess (same-card second flip), got %v", err)
	}
	if err := c.flipUpAsSecond("p2"); err != ErrRestrictedAccess {
		t.Fatalf("expected ErrRestrictedAccess (other player), got %v", err)
	}
}

func TestCardFlipUpAsSecondRestrictedOnGone(t *testing.T) {
	c := newTestCard("A")
	c.removeCard()
	if err := c.flipUpAsSecond("p1"); err != ErrRestrictedAccess {
		t.Fatalf("expected ErrRestrictedAccess, got %v", err)
	}
}

func TestCardRelinquishControl(t *testing.T) {
	c := newTestCard("A")
	c.relinquishControl() // no-op from Down
	if c.state != cardDown {
		t.Fatalf("expected unaffected Down, got %v", c.state)
	}
	if err := c.flipUpAsFirst(context.Background(), "p1"); err != nil {
		t.Fatalf("flip: %v", err)
	}
	c.relinquishControl()
	if c.state != cardUp || c.owner != "" {
		t.Fatalf("expected Up with no owner, got state=%v owner=%q", c.state, c.owner)
	}
}

func TestCardFlipDownOnlyFromUp(t *testing.T) {
	c := newTestCard("A")
	c.flipDown() // no-op from Down
	if c.state != cardDown {
		t.Fatalf("expected Down, got %v", c.state)
	}

	if err := c.flipUpAsFirst(context.Background(), "p1"); err != nil {
		t.Fatalf("flip: %v", err)
	}
	c.flipDown() // no-op from Controlled
	if c.state != cardControlled {
		t.Fatalf("flipDown must not force a Controlled card down, got %v", c.state)
	}

	c.relinquishControl()
	c.flipDown()
	if c.state != cardDown {
		t.Fatalf("expected Down after flipDown from Up, got %v", c.state)
	}
}

func TestCardRemoveCardIdempotent(t *testing.T) {
	c := newTestCard("A")
	c.removeCard()
	c.removeCard()
	if c.state != cardGone {
		t.Fatalf("expected Gone, got %v", c.state)
	}
}

func TestCardRender(t *testing.T) {
	c := newTestCard("A")
	if got := c.render("p1"); got != "down" {
		t.Errorf("Down render = %q, want down", got)
	}
	if err := c.flipUpAsFirst(context.Background(), "p1"); err != nil {
		t.Fatalf("flip: %v", err)
	}
	if got := c.render("p1"); got != "my A" {
		t.Errorf("Controlled(owner) render = %q, want my A", got)
	}
	if got := c.render("p2"); got != "up A" {
		t.Errorf("Controlled(other) render = %q, want up A", got)
	}
	c.relinquishControl()
	if got := c.render("p2"); got != "up A" {
		t.Errorf("Up render = %q, want up A", got)
	}
	c.removeCard()
	if got := c.render("p1"); got != "none" {
		t.Errorf("Gone render = %q, want none", got)
	}
}

func TestCardNotifyCapabilityIsOptional(t *testing.T) {
	// A Card with no onChange hook must not panic on transitions that
	// would otherwise publish a change.
	c := newCard(0, "A", nil)
	if err := c.flipUpAsSecond("p1"); err != nil {
		t.Fatalf("flipUpAsSecond: %v", err)
	}
	c.removeCard()
}

func TestCardNotifyFiresOnObservableChange(t *testing.T) {
	var fired int
	c := newCard(0, "A", func() { fired++ })

	if err := c.flipUpAsFirst(context.Background(), "p1"); err != nil {
		t.Fatalf("flip: %v", err)
	}
	if fired != 1 {
		t.Fatalf("expected 1 notification after first flip, got %d", fired)
	}

	// No-op first flip by the same owner must not notify again.
	if err := c.flipUpAsFirst(context.Background(), "p1"); err != nil {
		t.Fatalf("idempotent flip: %v", err)
	}
	if fired != 1 {
		t.Fatalf("expected no extra notification for idempotent flip, got %d", fired)
	}

	// relinquishControl must not notify by itself.
	c.relinquishControl()
	if fired != 1 {
		t.Fatalf("relinquishControl must not notify, got %d", fired)
	}

	c.removeCard()
	if fired != 2 {
		t.Fatalf("expected a notification for removeCard, got %d", fired)
	}
}
