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

type CreateUserParams struct {
	Name           string
	Email          string
	HashedPassword string
}

func (s *Store) CreateUser(ctx context.Context, params CreateUserParams) (model.User, error) {
	query := `INSERT INTO users (id, name, email, hashed_password)
		VALUES (@id, @name, @email, @hashedPassword)
		RETURNING id, name, email, hashed_password, created_at`
	args := pgx.NamedArgs{
		"id":             pgtype.UUID{Bytes: uuid.New(), Valid: true},
		"name":           params.Name,
		"email":          params.Email,
		"hashedPassword": params.HashedPassword,
	}

	user, err := scanUser(s.pool.QueryRow(ctx, query, args))
	if err != nil {
		if isUniqueViolation(err) {
			return model.User{}, fmt.Errorf("internal/store: %w", model.ErrUserExists)
		}
		return model.User{}, fmt.Errorf("internal/store: failed to create user: %w", err)
	}

	return user, nil
}

func (s *Store) UserByEmail(ctx context.Context, email string) (model.User, error) {
	query := `SELECT id, name, email, hashed_password, created_at
		FROM users WHERE email = @email`

	user, err := scanUser(s.pool.QueryRow(ctx, query, pgx.NamedArgs{"email": email}))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, fmt.Errorf("internal/store: %w", model.ErrNotFound)
		}
		return model.User{}, fmt.Errorf("internal/store: failed to load user by email: %w", err)
	}

	return user, nil
}

func (s *Store) UserByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	query := `SELECT id, name, email, hashed_password, created_at
		FROM users WHERE id = @id`
	args := pgx.NamedArgs{"id": pgtype.UUID{Bytes: id, Valid: true}}

	user, err := scanUser(s.pool.QueryRow(ctx, query, args))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, fmt.Errorf("internal/store: %w", model.ErrNotFound)
		}
		return model.User{}, fmt.Errorf("internal/store: failed to load user by id: %w", err)
	}

	return user, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]model.PublicUser, error) {
	query := `SELECT id, name, email FROM users ORDER BY created_at`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("internal/store: failed to list users: %w", err)
	}
	defer rows.Close()

	var users []model.PublicUser
	for rows.Next() {
		var (
			id   pgtype.UUID
			user model.PublicUser
		)
		if err := rows.Scan(&id, &user.Name, &user.Email); err != nil {
			return nil, fmt.Errorf("internal/store: failed to scan user row: %w", err)
		}
		user.ID = id.Bytes

		users = append(users, user)
	}

	return users, rows.Err()
}

func scanUser(row pgx.Row) (model.User, error) {
	var (
		id        pgtype.UUID
		createdAt pgtype.Timestamptz
		user      model.User
	)

	err := row.Scan(&id, &user.Name, &user.Email, &user.HashedPassword, &createdAt)
	if err != nil {
		return model.User{}, err
	}

	user.ID = id.Bytes
	user.CreatedAt = createdAt.Time

	return user, nil
}
