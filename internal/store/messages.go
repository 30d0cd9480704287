package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/johndosdos/tindahan/internal/model"
)

type CreateMessageParams struct {
	ChatID   uuid.UUID
	SenderID uuid.UUID
	Type     string
	Content  string
}

// CreateMessage appends a message to a chat. The database assigns the
// id and the creation timestamp; history ordering follows the latter.
func (s *Store) CreateMessage(ctx context.Context, params CreateMessageParams) (model.Message, error) {
	query := `INSERT INTO messages (id, chat_id, sender_id, type, content)
		VALUES (@id, @chatID, @senderID, @type, @content)
		RETURNING id, created_at`
	args := pgx.NamedArgs{
		"id":       pgtype.UUID{Bytes: uuid.New(), Valid: true},
		"chatID":   pgtype.UUID{Bytes: params.ChatID, Valid: true},
		"senderID": pgtype.UUID{Bytes: params.SenderID, Valid: true},
		"type":     params.Type,
		"content":  params.Content,
	}

	var (
		id        pgtype.UUID
		createdAt pgtype.Timestamptz
	)
	if err := s.pool.QueryRow(ctx, query, args).Scan(&id, &createdAt); err != nil {
		return model.Message{}, fmt.Errorf("internal/store: failed to create message: %w", err)
	}

	return model.Message{
		ID:        id.Bytes,
		ChatID:    params.ChatID,
		Type:      params.Type,
		Content:   params.Content,
		CreatedAt: createdAt.Time,
	}, nil
}

// MessagesByChat returns a chat's history oldest-first with each
// sender's public profile populated.
func (s *Store) MessagesByChat(ctx context.Context, chatID uuid.UUID) ([]model.Message, error) {
	query := `SELECT m.id, m.chat_id, m.type, m.content, m.created_at,
			u.id, u.name, u.email
		FROM messages m
		JOIN users u ON u.id = m.sender_id
		WHERE m.chat_id = @chatID
		ORDER BY m.created_at`
	args := pgx.NamedArgs{"chatID": pgtype.UUID{Bytes: chatID, Valid: true}}

	rows, err := s.pool.Query(ctx, query, args)
	if err != nil {
		return nil, fmt.Errorf("internal/store: failed to list messages: %w", err)
	}
	defer rows.Close()

	var messages []model.Message
	for rows.Next() {
		var (
			id, chatID, senderID pgtype.UUID
			createdAt            pgtype.Timestamptz
			msg                  model.Message
		)
		err := rows.Scan(&id, &chatID, &msg.Type, &msg.Content, &createdAt,
			&senderID, &msg.Sender.Name, &msg.Sender.Email)
		if err != nil {
			return nil, fmt.Errorf("internal/store: failed to scan message row: %w", err)
		}

		msg.ID = id.Bytes
		msg.ChatID = chatID.Bytes
		msg.Sender.ID = senderID.Bytes
		msg.CreatedAt = createdAt.Time

		messages = append(messages, msg)
	}

	return messages, rows.Err()
}
