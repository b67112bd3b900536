package ws

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"memoryboard/config"
	"memoryboard/facade"
	"memoryboard/session"
	"memoryboard/storage"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allow all origins for development; restrict in production.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub maintains the set of active connections and routes messages to
// the shared board facade. Unlike the teacher's Hub, there is no
// Matchmaker to delegate to — every authenticated connection talks to
// the same facade.Facade.
type Hub struct {
	Clients  map[*Client]bool
	Register chan *Client

	Unregister chan *Client
	Facade     *facade.Facade
	Registry   *session.Registry
	Events     storage.EventStore
	Config     *config.Config
	Log        *slog.Logger
}

// NewHub creates a new Hub. events may be nil (persistence disabled);
// every EventStore method tolerates a nil receiver.
func NewHub(cfg *config.Config, f *facade.Facade, reg *session.Registry, events storage.EventStore, log *slog.Logger) *Hub {
	return &Hub{
		Clients:    make(map[*Client]bool),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Facade:     f,
		Registry:   reg,
		Events:     events,
		Config:     cfg,
		Log:        log.With("tag", "ws"),
	}
}

// Run starts the hub's main loop. Should be run as a goroutine. When
// ctx is cancelled (e.g. on server shutdown), Run returns and no
// longer accepts new registrations.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.Log.Info("shutdown signal received, stopping")
			return
		case client := <-h.Register:
			h.Clients[client] = true
			h.Log.Info("client connected", "total", len(h.Clients))

		case client := <-h.Unregister:
			if _, ok := h.Clients[client]; ok {
				delete(h.Clients, client)
				close(client.Send)
				if client.PlayerID != "" {
					h.Registry.Unregister(client.PlayerID)
				}
				h.Log.Info("client disconnected", "total", len(h.Clients))
			}
		}
	}
}

// ServeWS handles WebSocket upgrade requests and creates a new Client.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.Log.Warn("websocket upgrade failed", "error", err)
		return
	}

	client := &Client{
		Hub:  h,
		Conn: conn,
		Send: make(chan []byte, 256),
	}

	h.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
