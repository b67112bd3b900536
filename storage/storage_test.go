package storage

import (
	"context"
	"testing"
)

func TestNewStoreWithEmptyURLDisablesPersistence(t *testing.T) {
	store, err := NewStore(context.Background(), "")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if store != nil {
		t.Fatal("expected nil store when databaseURL is empty")
	}
}

func TestNilStoreMethodsAreNoOps(t *testing.T) {
	var store *Store

	if err := store.RecordEvent(context.Background(), "p1", 0, OutcomeMatch); err != nil {
		t.Fatalf("RecordEvent on nil store: %v", err)
	}
	events, err := store.ListByPlayer(context.Background(), "p1", 10)
	if err != nil {
		t.Fatalf("ListByPlayer on nil store: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("expected no events from nil store, got %d", len(events))
	}
	store.Close() // must not panic
}
