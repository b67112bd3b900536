package storage

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS board_event (
	id          UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	occurred_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	player_id   TEXT NOT NULL,
	card_index  INT NOT NULL,
	outcome     TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_board_event_player ON board_event(player_id);
CREATE INDEX IF NOT EXISTS idx_board_event_occurred_at ON board_event(occurred_at);
`

// Outcome is the classification of a flip's result, recorded as a
// board_event row. It is a derived analytics fact, never board state —
// spec.md's Non-goals exclude persisting the board's live card
// values or states, not recording what happened to them.
type Outcome string

const (
	OutcomeFirstFlip Outcome = "first_flip"
	OutcomeMatch     Outcome = "match"
	OutcomeMismatch  Outcome = "mismatch"
	OutcomeRemoval   Outcome = "removal"
)

// Store persists the flip-outcome analytics log described in
// SPEC_FULL.md §3 ("jackc/pgx/v5"): append-only, never board state.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore connects to Postgres and ensures the board_event table
// exists. If databaseURL is empty, NewStore returns (nil, nil) and no
// persistence occurs — the teacher's NewStore behavior, kept verbatim.
func NewStore(ctx context.Context, databaseURL string) (*Store, error) {
	if databaseURL == "" {
		return nil, nil
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	if _, err := pool.Exec(ctx, createTableSQL); err != nil {
		pool.Close()
		return nil, err
	}
	slog.Info("connected to Postgres", "tag", "storage")
	return &Store{pool: pool}, nil
}

// Close closes the connection pool.
func (s *Store) Close() {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
}

// RecordEvent appends one flip-outcome row. A nil Store (persistence
// disabled) is a silent no-op, matching the teacher's nil-receiver
// guard on every Store method.
func (s *Store) RecordEvent(ctx context.Context, playerID string, cardIndex int, outcome Outcome) error {
	if s == nil || s.pool == nil {
		return nil
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO board_event (player_id, card_index, outcome) VALUES ($1, $2, $3)`,
		playerID, cardIndex, string(outcome))
	return err
}

// EventRecord is a single row returned by ListByPlayer.
type EventRecord struct {
	ID         string    `json:"id"`
	OccurredAt time.Time `json:"occurred_at"`
	PlayerID   string    `json:"player_id"`
	CardIndex  int       `json:"card_index"`
	Outcome    Outcome   `json:"outcome"`
}

// ListByPlayer returns a player's recorded events, most recent first.
func (s *Store) ListByPlayer(ctx context.Context, playerID string, limit int) ([]EventRecord, error) {
	if s == nil || s.pool == nil {
		return []EventRecord{}, nil
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, occurred_at, player_id, card_index, outcome
		FROM board_event
		WHERE player_id = $1
		ORDER BY occurred_at DESC
		LIMIT $2`, playerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EventRecord
	for rows.Next() {
		var r EventRecord
		var outcome string
		if err := rows.Scan(&r.ID, &r.OccurredAt, &r.PlayerID, &r.CardIndex, &outcome); err != nil {
			return nil, err
		}
		r.Outcome = Outcome(outcome)
		out = append(out, r)
	}
	return out, rows.Err()
}
