package chat

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"

	"github.com/johndosdos/tindahan/internal/model"
	"github.com/johndosdos/tindahan/internal/store"
	"github.com/johndosdos/tindahan/internal/ws"
)

type sanitizer interface {
	Sanitize(s string) string
}

// ChatStore persists chats. Queries are participant-scoped so that
// visibility rules hold at the store boundary.
type ChatStore interface {
	CreateChat(ctx context.Context, user1, user2 uuid.UUID) (uuid.UUID, error)
	ChatByPair(ctx context.Context, a, b uuid.UUID) (model.Chat, error)
	ChatByIDForUser(ctx context.Context, chatID, userID uuid.UUID) (model.Chat, error)
	ChatsByUser(ctx context.Context, userID uuid.UUID) ([]model.Chat, error)
	DeleteChat(ctx context.Context, chatID, userID uuid.UUID) (bool, error)
}

// MessageStore appends and reads a chat's message history.
type MessageStore interface {
	CreateMessage(ctx context.Context, params store.CreateMessageParams) (model.Message, error)
	MessagesByChat(ctx context.Context, chatID uuid.UUID) ([]model.Message, error)
}

// Service is the delivery engine. It owns chat lookup/creation,
// message persistence, and the best-effort live push to the
// recipient's connected socket.
type Service struct {
	users     UserDirectory
	chats     ChatStore
	messages  MessageStore
	registry  *ws.Registry
	auth      *Authenticator
	sanitizer sanitizer
}

func NewService(users UserDirectory, chats ChatStore, messages MessageStore,
	registry *ws.Registry, auth *Authenticator) *Service {
	return &Service{
		users:     users,
		chats:     chats,
		messages:  messages,
		registry:  registry,
		auth:      auth,
		sanitizer: bluemonday.StrictPolicy(),
	}
}

// CreateOrGetChat returns the chat for the unordered pair
// {initiator, target}, creating it on first contact. Repeated and
// concurrent calls for the same pair always converge on one chat: the
// store's unique pair index rejects the duplicate insert and the
// loser retries as a lookup.
func (s *Service) CreateOrGetChat(ctx context.Context, initiatorID, targetID uuid.UUID) (model.Chat, error) {
	if _, err := s.users.UserByID(ctx, targetID); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.Chat{}, fmt.Errorf("%w: user", model.ErrNotFound)
		}
		return model.Chat{}, fmt.Errorf("internal/chat: failed to resolve target user: %w", err)
	}

	chat, err := s.chats.ChatByPair(ctx, initiatorID, targetID)
	if err == nil {
		return chat, nil
	}
	if !errors.Is(err, model.ErrNotFound) {
		return model.Chat{}, fmt.Errorf("internal/chat: chat lookup failed: %w", err)
	}

	if _, err := s.chats.CreateChat(ctx, initiatorID, targetID); err != nil {
		if !errors.Is(err, model.ErrChatExists) {
			return model.Chat{}, fmt.Errorf("internal/chat: failed to create chat: %w", err)
		}
		// Lost the creation race; the winner's chat is the chat.
	}

	chat, err = s.chats.ChatByPair(ctx, initiatorID, targetID)
	if err != nil {
		return model.Chat{}, fmt.Errorf("internal/chat: failed to reload chat: %w", err)
	}

	return chat, nil
}

// ListChats returns every chat the user participates in, both
// participants' public profiles populated.
func (s *Service) ListChats(ctx context.Context, userID uuid.UUID) ([]model.Chat, error) {
	return s.chats.ChatsByUser(ctx, userID)
}

// GetChat returns the chat only to its participants; anyone else gets
// ErrNotFound, indistinguishable from a missing chat.
func (s *Service) GetChat(ctx context.Context, chatID, userID uuid.UUID) (model.Chat, error) {
	return s.chats.ChatByIDForUser(ctx, chatID, userID)
}

// ListMessages returns the chat's history oldest-first, under the
// same visibility rule as GetChat.
func (s *Service) ListMessages(ctx context.Context, chatID, userID uuid.UUID) ([]model.Message, error) {
	if _, err := s.chats.ChatByIDForUser(ctx, chatID, userID); err != nil {
		return nil, err
	}

	return s.messages.MessagesByChat(ctx, chatID)
}

// SendMessage persists a message to one of the sender's chats and
// then attempts a live push to the counterpart. Persistence is the
// operation's success criterion; a failed or skipped push never fails
// the send.
func (s *Service) SendMessage(ctx context.Context, sender model.User, chatID uuid.UUID, content, msgType string) (model.Message, error) {
	if msgType == "" {
		msgType = "text"
	}

	chat, err := s.chats.ChatByIDForUser(ctx, chatID, sender.ID)
	if err != nil {
		return model.Message{}, err
	}

	msg, err := s.messages.CreateMessage(ctx, store.CreateMessageParams{
		ChatID:   chat.ID,
		SenderID: sender.ID,
		Type:     msgType,
		Content:  s.sanitizer.Sanitize(content),
	})
	if err != nil {
		return model.Message{}, fmt.Errorf("internal/chat: failed to persist message: %w", err)
	}
	msg.Sender = sender.Public()

	s.deliver(ctx, chat.Counterpart(sender.ID).ID, msg)

	return msg, nil
}

// deliver scans the registry snapshot for a socket owned by the
// recipient, re-authenticating each one. The first match receives the
// message; a socket that fails authentication mid-scan (stale token,
// deleted user) is skipped, never fatal. No match means no push: the
// message stays readable via history.
func (s *Service) deliver(ctx context.Context, recipientID uuid.UUID, msg model.Message) {
	for _, sock := range s.registry.Snapshot() {
		user, err := s.auth.Authenticate(ctx, sock)
		if err != nil {
			log.Printf("internal/chat: skipping socket %s during delivery: %v", sock.ID(), err)
			continue
		}

		if user.ID == recipientID {
			if !sock.Send(ws.EventMessageReceived, msg) {
				slog.WarnContext(ctx, "recipient socket is slow, push dropped",
					slog.String("connection_id", sock.ID().String()))
			}
			break
		}
	}
}

// DeleteChat removes the chat and, via the schema cascade, its
// messages. Only a participant can delete; others see ErrNotFound.
func (s *Service) DeleteChat(ctx context.Context, chatID, userID uuid.UUID) error {
	deleted, err := s.chats.DeleteChat(ctx, chatID, userID)
	if err != nil {
		return fmt.Errorf("internal/chat: failed to delete chat: %w", err)
	}
	if !deleted {
		return model.ErrNotFound
	}

	return nil
}
