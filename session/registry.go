// Package session tracks which player connections are currently live
// against the shared board. It is adapted from the teacher's
// matchmaking.Matchmaker: the teacher pairs exactly two waiting clients
// into a *game.Game; spec.md's board has no pairing at all — an
// unbounded number of players share one board — so this keeps the
// teacher's mutex-guarded map structure but drops the queue/pairing
// logic entirely, since there is nothing left to pair.
package session

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

// ErrNotRegistered names the case of a playerID the registry has no
// live connection for. No Registry method returns it: Unregister is
// idempotent and Lookup reports absence through its bool result.
var ErrNotRegistered = errors.New("session: player not registered")

// Conn is the minimal connection handle the registry tracks. It is
// satisfied by *ws.Client without this package importing ws.
type Conn interface {
	Close() error
}

// Registry is a goroutine-safe directory of live player connections.
// Unlike the teacher's Matchmaker, it never touches board state — the
// board owns all card locks itself — so Registry's only job is
// identity and liveness bookkeeping.
type Registry struct {
	mu      sync.RWMutex
	players map[string]Conn
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{players: make(map[string]Conn)}
}

// NewPlayerID mints a fresh player identifier, replacing the teacher's
// per-game atomic counter (fmt.Sprintf("game-%d", ...)), which fits a
// bounded 1v1 match but not an unbounded set of concurrent players on
// one board.
func NewPlayerID() string {
	return uuid.NewString()
}

// Register associates playerID with a live connection, replacing any
// prior connection registered for that player (e.g. after reconnect).
func (r *Registry) Register(playerID string, conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.players[playerID] = conn
}

// Unregister removes playerID's live connection. Idempotent.
func (r *Registry) Unregister(playerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.players, playerID)
}

// Lookup returns the connection currently registered for playerID.
func (r *Registry) Lookup(playerID string) (Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.players[playerID]
	return c, ok
}

// Count reports the number of live connections.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.players)
}

// PlayerIDs returns a snapshot of every currently registered player ID.
func (r *Registry) PlayerIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.players))
	for id := range r.players {
		ids = append(ids, id)
	}
	return ids
}
