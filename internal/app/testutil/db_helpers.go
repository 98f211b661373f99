package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"media-notes/internal/app/model"
	"media-notes/internal/app/repository"
	"media-notes/internal/app/repository/pg"
	"media-notes/internal/app/repository/sqlite"
)

// SetupTestStore returns an initialized storage backend that is closed when
// the test ends. POSTGRES_TEST_URL selects PostgreSQL; otherwise a fresh
// SQLite file in t.TempDir is used.
func SetupTestStore(t *testing.T) repository.Store {
	t.Helper()

	var store repository.Store
	if pgURL := os.Getenv("POSTGRES_TEST_URL"); pgURL != "" {
		db, err := pg.NewPostgresDB(pgURL)
		if err != nil {
			t.Fatalf("Failed to connect to PostgreSQL test database: %v", err)
		}
		store = db
	} else {
		db, err := sqlite.NewSQLiteDB(filepath.Join(t.TempDir(), "test.db"))
		if err != nil {
			t.Fatalf("Failed to create SQLite test database: %v", err)
		}
		store = db
	}

	if err := store.InitSchema(context.Background()); err != nil {
		store.Close()
		t.Fatalf("Failed to create test tables: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// CreateTestAccount inserts an account holding credits and returns its id
func CreateTestAccount(t *testing.T, store repository.AccountDAO, credits int) int64 {
	t.Helper()
	name := fmt.Sprintf("user_%s", randomSuffix())
	account, err := store.CreateAccount(context.Background(), &model.Account{
		Username:     name,
		Email:        name + "@example.com",
		PasswordHash: "$2a$10$test",
	}, credits)
	if err != nil {
		t.Fatalf("Failed to create test account: %v", err)
	}
	return account.ID
}
