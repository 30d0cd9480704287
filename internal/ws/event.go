// Package ws provides the websocket connection registry and the
// per-connection client plumbing.
package ws

import "encoding/json"

// Event names understood by the gateway.
const (
	EventMessageSend      = "message:send"
	EventChatJoin         = "chat:join"
	EventMessageReceived  = "message:received"
	EventMessageDelivered = "message:delivered"
	EventError            = "error"
)

// Event is the wire envelope for both directions:
// {"event": "message:send", "payload": {...}}.
type Event struct {
	Name    string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// outbound pairs an event name with an arbitrary payload; it is
// marshaled just before hitting the wire.
type outbound struct {
	Name    string `json:"event"`
	Payload any    `json:"payload,omitempty"`
}
