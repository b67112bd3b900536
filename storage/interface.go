package storage

import "context"

// EventStore abstracts persistence for the flip-outcome analytics log.
// Implementations can be swapped for testing (mocks) or different
// backends.
type EventStore interface {
	RecordEvent(ctx context.Context, playerID string, cardIndex int, outcome Outcome) error
	ListByPlayer(ctx context.Context, playerID string, limit int) ([]EventRecord, error)
	Close()
}

// Ensure *Store implements EventStore at compile time.
var _ EventStore = (*Store)(nil)
