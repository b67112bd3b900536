package ws

import "encoding/json"

// InboundEnvelope is the generic envelope for all client-to-server messages.
// The Type field is used for routing; Raw holds the full JSON payload.
type InboundEnvelope struct {
	Type string          `json:"type"`
	Raw  json.RawMessage `json:"-"`
}

// UnmarshalJSON implements custom unmarshaling to capture the raw payload.
func (e *InboundEnvelope) UnmarshalJSON(data []byte) error {
	type typeOnly struct {
		Type string `json:"type"`
	}
	var t typeOnly
	if err := json.Unmarshal(data, &t); err != nil {
		return err
	}
	e.Type = t.Type
	e.Raw = json.RawMessage(data)
	return nil
}

// --- Client-to-Server message payloads ---

// AuthMsg is sent by the client as the first message with a bearer JWT.
type AuthMsg struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

// FlipMsg is sent by the client to flip a card at (row, column).
type FlipMsg struct {
	Type   string `json:"type"`
	Row    int    `json:"row"`
	Column int    `json:"column"`
}

// MapMsg is sent by the client to remap every card whose value equals
// From to To, per spec.md §6's map(from, to) sugar.
type MapMsg struct {
	Type string `json:"type"`
	From string `json:"from"`
	To   string `json:"to"`
}

// LookMsg requests a fresh board snapshot.
type LookMsg struct {
	Type string `json:"type"`
}

// WatchMsg subscribes the connection to the next observable board
// change; the server replies with a BoardChangedMsg when it fires.
type WatchMsg struct {
	Type string `json:"type"`
}

// --- Server-to-Client messages ---

// ErrorMsg is sent when a client action is invalid.
type ErrorMsg struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// AuthenticatedMsg confirms a successful auth handshake.
type AuthenticatedMsg struct {
	Type     string `json:"type"`
	PlayerID string `json:"playerId"`
}

// BoardMsg carries a board snapshot as rendered by facade.Look.
type BoardMsg struct {
	Type  string `json:"type"`
	Board string `json:"board"`
}

// BoardChangedMsg notifies a watching client that an observable change
// occurred; it carries no payload beyond the notification itself,
// matching spec.md §6's "does not carry payload" change-observer hook.
type BoardChangedMsg struct {
	Type string `json:"type"`
}
