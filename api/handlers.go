package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"memoryboard/auth"
	"memoryboard/board"
	"memoryboard/config"
	"memoryboard/facade"
	"memoryboard/storage"
)

const bearerPrefix = "Bearer "

// Handler holds dependencies for the HTTP surface around the command
// façade: GET /look, POST /flip, POST /map, GET /healthz.
type Handler struct {
	Config *config.Config
	Facade *facade.Facade
	Events storage.EventStore
	Log    *slog.Logger
}

// NewHandler creates a new API handler with the given dependencies.
// events may be nil (persistence disabled); every EventStore method
// tolerates a nil receiver.
func NewHandler(cfg *config.Config, f *facade.Facade, events storage.EventStore, log *slog.Logger) *Handler {
	return &Handler{
		Config: cfg,
		Facade: f,
		Events: events,
		Log:    log.With("tag", "api"),
	}
}

func outcomeToStorage(o board.Outcome) storage.Outcome {
	switch o {
	case board.OutcomeFirstFlip:
		return storage.OutcomeFirstFlip
	case board.OutcomeMatch:
		return storage.OutcomeMatch
	case board.OutcomeMismatch:
		return storage.OutcomeMismatch
	default:
		return storage.OutcomeMismatch
	}
}

// CORS sets CORS headers on the response. Call before writing body.
func CORS(w http.ResponseWriter, r *http.Request) bool {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return true
	}
	return false
}

// extractPlayerID validates the Authorization header and returns the
// player ID, or empty string on failure. When no JWKS is configured,
// it falls back to the X-Player-Id header (tests, local dev).
func (h *Handler) extractPlayerID(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, bearerPrefix) {
		if h.Config.JWKSURL == "" {
			return r.Header.Get("X-Player-Id")
		}
		return ""
	}
	token := strings.TrimSpace(authHeader[len(bearerPrefix):])
	claims, err := auth.ValidatePlayerToken(h.Config.JWKSURL, h.Config.JWTIssuer, token)
	if err != nil {
		return ""
	}
	return auth.PlayerIDFromClaims(claims)
}

// Look handles GET /look: returns the board snapshot for the
// authenticated player.
func (h *Handler) Look(w http.ResponseWriter, r *http.Request) {
	if CORS(w, r) {
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	playerID := h.extractPlayerID(r)
	if playerID == "" {
		http.Error(w, "authorization required", http.StatusUnauthorized)
		return
	}
	writeJSON(w, map[string]string{"board": h.Facade.Look(playerID)})
}

type flipRequest struct {
	Row    int `json:"row"`
	Column int `json:"column"`
}

// Flip handles POST /flip: flips the card at (row, column) for the
// authenticated player.
func (h *Handler) Flip(w http.ResponseWriter, r *http.Request) {
	if CORS(w, r) {
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	playerID := h.extractPlayerID(r)
	if playerID == "" {
		http.Error(w, "authorization required", http.StatusUnauthorized)
		return
	}

	var req flipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	outcome, err := h.Facade.Flip(r.Context(), playerID, req.Row, req.Column)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	if recErr := h.Events.RecordEvent(r.Context(), playerID, h.Facade.Index(req.Row, req.Column), outcomeToStorage(outcome)); recErr != nil {
		h.Log.Warn("record board event", "error", recErr)
	}
	writeJSON(w, map[string]string{"board": h.Facade.Look(playerID)})
}

type mapRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Map handles POST /map: applies the from->to value substitution to
// every card on the board.
func (h *Handler) Map(w http.ResponseWriter, r *http.Request) {
	if CORS(w, r) {
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	playerID := h.extractPlayerID(r)
	if playerID == "" {
		http.Error(w, "authorization required", http.StatusUnauthorized)
		return
	}

	var req mapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	h.Facade.MapValue(req.From, req.To)
	writeJSON(w, map[string]string{"board": h.Facade.Look(playerID)})
}

// Healthz handles GET /healthz: the keep-alive probe SPEC_FULL.md §4
// names as an external collaborator.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	if CORS(w, r) {
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (h *Handler) writeEngineError(w http.ResponseWriter, err error) {
	if err == facade.ErrInvalidAddress {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	http.Error(w, err.Error(), http.StatusConflict)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err, "tag", "api")
	}
}
