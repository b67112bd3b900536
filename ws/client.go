package ws

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"

	"memoryboard/auth"
	"memoryboard/board"
	"memoryboard/facade"
	"memoryboard/session"
	"memoryboard/storage"
	"memoryboard/wsutil"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096
)

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	Hub           *Hub
	Conn          *websocket.Conn
	Send          chan []byte
	PlayerID      string // from JWT sub claim, or minted by session.NewPlayerID when auth is not configured
	Authenticated bool

	watchCtx    context.Context
	watchCancel context.CancelFunc
}

// ReadPump pumps messages from the websocket connection to the hub.
// It runs in its own goroutine per connection.
func (c *Client) ReadPump() {
	defer func() {
		if c.watchCancel != nil {
			c.watchCancel()
		}
		c.Hub.Unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.Hub.Log.Warn("websocket read error", "error", err)
			}
			break
		}

		c.handleMessage(message)
	}
}

// WritePump pumps messages from the send channel to the websocket connection.
// It runs in its own goroutine per connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleMessage(data []byte) {
	var envelope InboundEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		c.sendError("Invalid message format.")
		return
	}

	// When JWKS is not configured, allow operation without auth (tests, local dev).
	allowedWithoutAuth := envelope.Type == "auth" || c.Hub.Config.JWKSURL == ""
	if !c.Authenticated && !allowedWithoutAuth {
		c.sendError("Authentication required. Send an auth message first.")
		return
	}

	switch envelope.Type {
	case "auth":
		c.handleAuth(envelope.Raw)
	case "look":
		c.handleLook()
	case "flip":
		c.handleFlip(envelope.Raw)
	case "map":
		c.handleMap(envelope.Raw)
	case "watch":
		c.handleWatch()
	default:
		c.sendError("Unknown message type: " + envelope.Type)
	}
}

func (c *Client) handleAuth(raw json.RawMessage) {
	if c.Authenticated {
		c.sendError("Already authenticated.")
		return
	}

	if c.Hub.Config.JWKSURL == "" {
		c.PlayerID = session.NewPlayerID()
		c.Authenticated = true
		c.Hub.Registry.Register(c.PlayerID, c)
		c.sendAuthenticated()
		return
	}

	var msg AuthMsg
	if err := json.Unmarshal(raw, &msg); err != nil || msg.Token == "" {
		c.sendError("Invalid auth message.")
		return
	}
	claims, err := auth.ValidatePlayerToken(c.Hub.Config.JWKSURL, c.Hub.Config.JWTIssuer, msg.Token)
	if err != nil {
		c.Hub.Log.Warn("token validation failed", "error", err)
		c.sendError("Invalid or expired token.")
		return
	}
	playerID := auth.PlayerIDFromClaims(claims)
	if playerID == "" {
		c.sendError("Token missing subject claim.")
		return
	}
	c.PlayerID = playerID
	c.Authenticated = true
	c.Hub.Registry.Register(c.PlayerID, c)
	c.sendAuthenticated()
}

func (c *Client) sendAuthenticated() {
	msg := AuthenticatedMsg{Type: "authenticated", PlayerID: c.PlayerID}
	data, _ := json.Marshal(msg)
	wsutil.SafeSend(c.Send, data)
}

func (c *Client) handleLook() {
	board := c.Hub.Facade.Look(c.PlayerID)
	msg := BoardMsg{Type: "board", Board: board}
	data, _ := json.Marshal(msg)
	wsutil.SafeSend(c.Send, data)
}

func (c *Client) handleFlip(raw json.RawMessage) {
	var msg FlipMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.sendError("Invalid flip message.")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), writeWait*3)
	defer cancel()
	outcome, err := c.Hub.Facade.Flip(ctx, c.PlayerID, msg.Row, msg.Column)
	if err != nil {
		c.sendError(err.Error())
		return
	}
	if recErr := c.Hub.Events.RecordEvent(ctx, c.PlayerID, c.Hub.Facade.Index(msg.Row, msg.Column), outcomeToStorage(outcome)); recErr != nil {
		c.Hub.Log.Warn("record board event", "error", recErr)
	}
	c.handleLook()
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

func (c *Client) handleMap(raw json.RawMessage) {
	var msg MapMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.sendError("Invalid map message.")
		return
	}
	c.Hub.Facade.MapValue(msg.From, msg.To)
	c.handleLook()
}

// handleWatch spawns a goroutine blocked on facade.Watch so the read
// loop that dispatched it is never itself blocked; only one watch can
// be outstanding per connection, cancelled automatically when the
// connection closes.
func (c *Client) handleWatch() {
	if c.watchCancel != nil {
		c.watchCancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.watchCtx, c.watchCancel = ctx, cancel

	go func() {
		if err := c.Hub.Facade.Watch(ctx); err != nil {
			return
		}
		msg := BoardChangedMsg{Type: "board_changed"}
		data, _ := json.Marshal(msg)
		wsutil.SafeSend(c.Send, data)
	}()
}

func (c *Client) sendError(message string) {
	msg := ErrorMsg{Type: "error", Message: message}
	data, _ := json.Marshal(msg)
	wsutil.SafeSend(c.Send, data)
}

// Close satisfies session.Conn, letting Hub.Registry track Clients
// without importing the ws package.
func (c *Client) Close() error {
	return c.Conn.Close()
}
