package store

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/johndosdos/tindahan/internal/model"
)

func TestUsers(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	alice := createTestUser(t, s, "alice", "alice@test.com")

	t.Run("duplicate_email", func(t *testing.T) {
		_, err := s.CreateUser(ctx, CreateUserParams{
			Name:           "alice again",
			Email:          "alice@test.com",
			HashedPassword: "not-a-real-hash",
		})
		if !errors.Is(err, model.ErrUserExists) {
			t.Fatalf("CreateUser() error = %v, want ErrUserExists", err)
		}
	})

	t.Run("by_email", func(t *testing.T) {
		got, err := s.UserByEmail(ctx, "alice@test.com")
		if err != nil {
			t.Fatalf("UserByEmail() error = %+v", err)
		}
		if got.ID != alice.ID {
			t.Errorf("UserByEmail() id = %s, want %s", got.ID, alice.ID)
		}
	})

	t.Run("by_email_missing", func(t *testing.T) {
		_, err := s.UserByEmail(ctx, "nobody@test.com")
		if !errors.Is(err, model.ErrNotFound) {
			t.Fatalf("UserByEmail() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("by_id_missing", func(t *testing.T) {
		_, err := s.UserByID(ctx, uuid.New())
		if !errors.Is(err, model.ErrNotFound) {
			t.Fatalf("UserByID() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("list_has_no_password", func(t *testing.T) {
		users, err := s.ListUsers(ctx)
		if err != nil {
			t.Fatalf("ListUsers() error = %+v", err)
		}
		if len(users) == 0 {
			t.Fatal("ListUsers() returned no users")
		}
	})
}
