package chat

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"log/slog"

	"github.com/google/uuid"

	"github.com/johndosdos/tindahan/internal/model"
	"github.com/johndosdos/tindahan/internal/ws"
)

// SendMessagePayload is the client payload for a message:send event.
type SendMessagePayload struct {
	ChatID  string `json:"chatId"`
	Content string `json:"content"`
	Type    string `json:"type,omitempty"`
}

// JoinChatPayload is the client payload for a chat:join event.
type JoinChatPayload struct {
	ChatID string `json:"chatId"`
}

// ErrorPayload is emitted back on the triggering event when it fails.
// The connection itself stays up.
type ErrorPayload struct {
	Event string `json:"event"`
	Error string `json:"error"`
}

// Gateway is the socket protocol boundary. Connecting requires no
// authentication; every event authenticates on its own via the
// handshake bearer token.
type Gateway struct {
	registry *ws.Registry
	auth     *Authenticator
	service  *Service
}

func NewGateway(registry *ws.Registry, auth *Authenticator, service *Service) *Gateway {
	return &Gateway{registry: registry, auth: auth, service: service}
}

// HandleConn registers the client, services its events until the
// connection drops, then unregisters it. It blocks for the lifetime
// of the connection.
func (g *Gateway) HandleConn(ctx context.Context, client *ws.Client) {
	g.registry.Register(client)
	defer g.registry.Unregister(client.ID())

	go client.WritePump(ctx)

	for {
		ev, err := client.ReadEvent(ctx)
		if err != nil {
			log.Printf("internal/chat: client %s disconnected: %v", client.ID(), err)
			return
		}

		g.dispatch(ctx, client, ev)
	}
}

func (g *Gateway) dispatch(ctx context.Context, client *ws.Client, ev ws.Event) {
	switch ev.Name {
	case ws.EventMessageSend:
		g.handleMessageSend(ctx, client, ev)

	case ws.EventChatJoin:
		g.handleChatJoin(ctx, client, ev)

	default:
		client.Send(ws.EventError, ErrorPayload{Event: ev.Name, Error: "unknown event"})
	}
}

func (g *Gateway) handleMessageSend(ctx context.Context, client *ws.Client, ev ws.Event) {
	var payload SendMessagePayload
	if err := json.Unmarshal(ev.Payload, &payload); err != nil {
		client.Send(ws.EventError, ErrorPayload{Event: ev.Name, Error: "invalid payload"})
		return
	}

	sender, err := g.auth.Authenticate(ctx, client)
	if err != nil {
		log.Printf("internal/chat: %s rejected: %v", ev.Name, err)
		client.Send(ws.EventError, ErrorPayload{Event: ev.Name, Error: errorLabel(err)})
		return
	}

	chatID, err := uuid.Parse(payload.ChatID)
	if err != nil {
		client.Send(ws.EventError, ErrorPayload{Event: ev.Name, Error: "invalid chat id"})
		return
	}

	msg, err := g.service.SendMessage(ctx, sender, chatID, payload.Content, payload.Type)
	if err != nil {
		log.Printf("internal/chat: %s failed for user %s: %v", ev.Name, sender.ID, err)
		client.Send(ws.EventError, ErrorPayload{Event: ev.Name, Error: errorLabel(err)})
		return
	}

	// Echo the persisted message back to the sender's own socket.
	client.Send(ws.EventMessageDelivered, msg)

	slog.InfoContext(ctx, "message sent",
		slog.String("chat_id", chatID.String()),
		slog.String("sender_id", sender.ID.String()))
}

// handleChatJoin validates the socket's identity and nothing else.
// Room scoping may hang off this event later; for now it is inert.
func (g *Gateway) handleChatJoin(ctx context.Context, client *ws.Client, ev ws.Event) {
	var payload JoinChatPayload
	if err := json.Unmarshal(ev.Payload, &payload); err != nil {
		client.Send(ws.EventError, ErrorPayload{Event: ev.Name, Error: "invalid payload"})
		return
	}

	if _, err := g.auth.Authenticate(ctx, client); err != nil {
		log.Printf("internal/chat: %s rejected: %v", ev.Name, err)
		client.Send(ws.EventError, ErrorPayload{Event: ev.Name, Error: errorLabel(err)})
		return
	}
}

// errorLabel maps domain errors onto the wire taxonomy.
func errorLabel(err error) string {
	switch {
	case errors.Is(err, model.ErrUnauthorized):
		return "Unauthorized"
	case errors.Is(err, model.ErrNotFound):
		return "Not Found"
	case errors.Is(err, model.ErrChatExists), errors.Is(err, model.ErrUserExists):
		return "Conflict"
	default:
		return "Internal"
	}
}
