package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/joho/godotenv"

	"github.com/johndosdos/tindahan/internal/model"
	"github.com/johndosdos/tindahan/internal/testutil"
)

// setupStore migrates the test database and returns a store backed by
// it. Tests are skipped when TEST_DB_URL is not configured.
func setupStore(t *testing.T) *Store {
	t.Helper()

	_ = godotenv.Load(filepath.Join(testutil.ProjectRoot(), ".env"))
	if os.Getenv("TEST_DB_URL") == "" {
		t.Skip("TEST_DB_URL is not set")
	}

	pool, dbForGoose, migDir := testutil.DbInit()
	testutil.DbGooseUp(dbForGoose, migDir)
	if err := dbForGoose.Close(); err != nil {
		t.Fatalf("failed to release migration connection: %+v", err)
	}

	t.Cleanup(func() {
		testutil.DbCleanup(pool, migDir)
		pool.Close()
	})

	return NewWithPool(pool)
}

func createTestUser(t *testing.T, s *Store, name, email string) model.User {
	t.Helper()

	user, err := s.CreateUser(context.Background(), CreateUserParams{
		Name:           name,
		Email:          email,
		HashedPassword: "not-a-real-hash",
	})
	if err != nil {
		t.Fatalf("CreateUser() error = %+v", err)
	}
	return user
}
