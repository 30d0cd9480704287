package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/johndosdos/tindahan/internal/model"
)

// chatColumns joins both participants so every chat leaves the store
// with public profiles populated.
const chatColumns = `c.id, c.created_at,
	u1.id, u1.name, u1.email,
	u2.id, u2.name, u2.email
	FROM chats c
	JOIN users u1 ON u1.id = c.user1_id
	JOIN users u2 ON u2.id = c.user2_id`

// CreateChat persists a new chat for the pair. The unique index on
// (LEAST(user1_id, user2_id), GREATEST(user1_id, user2_id)) rejects a
// concurrent insert for the same unordered pair with ErrChatExists;
// callers retry as a lookup.
func (s *Store) CreateChat(ctx context.Context, user1, user2 uuid.UUID) (uuid.UUID, error) {
	query := `INSERT INTO chats (id, user1_id, user2_id)
		VALUES (@id, @user1, @user2)
		RETURNING id`
	args := pgx.NamedArgs{
		"id":    pgtype.UUID{Bytes: uuid.New(), Valid: true},
		"user1": pgtype.UUID{Bytes: user1, Valid: true},
		"user2": pgtype.UUID{Bytes: user2, Valid: true},
	}

	var id pgtype.UUID
	if err := s.pool.QueryRow(ctx, query, args).Scan(&id); err != nil {
		if isUniqueViolation(err) {
			return uuid.UUID{}, fmt.Errorf("internal/store: %w", model.ErrChatExists)
		}
		return uuid.UUID{}, fmt.Errorf("internal/store: failed to create chat: %w", err)
	}

	return id.Bytes, nil
}

// ChatByPair finds the chat for the unordered pair {a, b}.
func (s *Store) ChatByPair(ctx context.Context, a, b uuid.UUID) (model.Chat, error) {
	query := `SELECT ` + chatColumns + `
		WHERE LEAST(c.user1_id, c.user2_id) = LEAST(@a, @b)
		AND GREATEST(c.user1_id, c.user2_id) = GREATEST(@a, @b)`
	args := pgx.NamedArgs{
		"a": pgtype.UUID{Bytes: a, Valid: true},
		"b": pgtype.UUID{Bytes: b, Valid: true},
	}

	chat, err := scanChat(s.pool.QueryRow(ctx, query, args))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Chat{}, fmt.Errorf("internal/store: %w", model.ErrNotFound)
		}
		return model.Chat{}, fmt.Errorf("internal/store: failed to load chat by pair: %w", err)
	}

	return chat, nil
}

// ChatByIDForUser loads a chat only if userID is one of its two
// participants. A non-participant gets the same ErrNotFound as a
// missing chat, so existence never leaks.
func (s *Store) ChatByIDForUser(ctx context.Context, chatID, userID uuid.UUID) (model.Chat, error) {
	query := `SELECT ` + chatColumns + `
		WHERE c.id = @chatID AND (c.user1_id = @userID OR c.user2_id = @userID)`
	args := pgx.NamedArgs{
		"chatID": pgtype.UUID{Bytes: chatID, Valid: true},
		"userID": pgtype.UUID{Bytes: userID, Valid: true},
	}

	chat, err := scanChat(s.pool.QueryRow(ctx, query, args))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Chat{}, fmt.Errorf("internal/store: %w", model.ErrNotFound)
		}
		return model.Chat{}, fmt.Errorf("internal/store: failed to load chat: %w", err)
	}

	return chat, nil
}

// ChatsByUser lists every chat the user participates in.
func (s *Store) ChatsByUser(ctx context.Context, userID uuid.UUID) ([]model.Chat, error) {
	query := `SELECT ` + chatColumns + `
		WHERE c.user1_id = @userID OR c.user2_id = @userID
		ORDER BY c.created_at`
	args := pgx.NamedArgs{"userID": pgtype.UUID{Bytes: userID, Valid: true}}

	rows, err := s.pool.Query(ctx, query, args)
	if err != nil {
		return nil, fmt.Errorf("internal/store: failed to list chats: %w", err)
	}
	defer rows.Close()

	var chats []model.Chat
	for rows.Next() {
		chat, err := scanChat(rows)
		if err != nil {
			return nil, fmt.Errorf("internal/store: failed to scan chat row: %w", err)
		}
		chats = append(chats, chat)
	}

	return chats, rows.Err()
}

// DeleteChat removes the chat if userID participates in it and
// reports whether a row was actually deleted. Messages cascade at the
// schema level.
func (s *Store) DeleteChat(ctx context.Context, chatID, userID uuid.UUID) (bool, error) {
	query := `DELETE FROM chats
		WHERE id = @chatID AND (user1_id = @userID OR user2_id = @userID)`
	args := pgx.NamedArgs{
		"chatID": pgtype.UUID{Bytes: chatID, Valid: true},
		"userID": pgtype.UUID{Bytes: userID, Valid: true},
	}

	tag, err := s.pool.Exec(ctx, query, args)
	if err != nil {
		return false, fmt.Errorf("internal/store: failed to delete chat: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

func scanChat(row pgx.Row) (model.Chat, error) {
	var (
		id, u1ID, u2ID pgtype.UUID
		createdAt      pgtype.Timestamptz
		chat           model.Chat
	)

	err := row.Scan(&id, &createdAt,
		&u1ID, &chat.User1.Name, &chat.User1.Email,
		&u2ID, &chat.User2.Name, &chat.User2.Email)
	if err != nil {
		return model.Chat{}, err
	}

	chat.ID = id.Bytes
	chat.User1.ID = u1ID.Bytes
	chat.User2.ID = u2ID.Bytes
	chat.CreatedAt = createdAt.Time

	return chat, nil
}
