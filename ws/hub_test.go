package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"memoryboard/board"
	"memoryboard/config"
	"memoryboard/facade"
	"memoryboard/session"
	"memoryboard/storage"
)

func newTestServer(t *testing.T) (*httptest.Server, func()) {
	t.Helper()
	cfg := config.Defaults()
	f := facade.New(board.NewBoard(2, 2, []string{"A", "A", "B", "B"}))
	reg := session.New()
	hub := NewHub(cfg, f, reg, (*storage.Store)(nil), slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	return srv, func() {
		cancel()
		srv.Close()
	}
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func readMsg(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var msg map[string]any
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return msg
}

func TestHubAuthLookFlipRoundTrip(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()

	conn := dial(t, srv)
	defer conn.Close()

	conn.WriteJSON(map[string]string{"type": "auth"})
	authed := readMsg(t, conn)
	if authed["type"] != "authenticated" {
		t.Fatalf("expected authenticated message, got %v", authed)
	}
	if authed["playerId"] == "" || authed["playerId"] == nil {
		t.Fatalf("expected non-empty playerId, got %v", authed)
	}

	conn.WriteJSON(map[string]string{"type": "look"})
	board := readMsg(t, conn)
	if board["type"] != "board" {
		t.Fatalf("expected board message, got %v", board)
	}

	conn.WriteJSON(map[string]any{"type": "flip", "row": 0, "column": 0})
	flipped := readMsg(t, conn)
	if flipped["type"] != "board" {
		t.Fatalf("expected board message after flip, got %v", flipped)
	}
}

func TestHubWatchWakesOnChange(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()

	watcher := dial(t, srv)
	defer watcher.Close()
	watcher.WriteJSON(map[string]string{"type": "auth"})
	readMsg(t, watcher)
	watcher.WriteJSON(map[string]string{"type": "watch"})

	actor := dial(t, srv)
	defer actor.Close()
	actor.WriteJSON(map[string]string{"type": "auth"})
	readMsg(t, actor)
	actor.WriteJSON(map[string]any{"type": "flip", "row": 0, "column": 0})
	readMsg(t, actor)

	changed := readMsg(t, watcher)
	if changed["type"] != "board_changed" {
		t.Fatalf("expected board_changed message, got %v", changed)
	}
}
