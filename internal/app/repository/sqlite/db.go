package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"media-notes/internal/app/repository"

	"github.com/mattn/go-sqlite3"
)

// SQLiteDB is the embedded storage backend
type SQLiteDB struct {
	*repository.CommonDB
}

var _ repository.Store = (*SQLiteDB)(nil)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		credit_balance INTEGER NOT NULL DEFAULT 0 CHECK (credit_balance >= 0),
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS credit_reservations (
		id TEXT PRIMARY KEY,
		account_id INTEGER NOT NULL REFERENCES accounts(id),
		amount INTEGER NOT NULL CHECK (amount > 0),
		state TEXT NOT NULL CHECK (state IN ('held', 'committed', 'refunded')),
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_credit_reservations_idle ON credit_reservations (state, updated_at)`,
	`CREATE TABLE IF NOT EXISTS credit_transactions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		account_id INTEGER NOT NULL REFERENCES accounts(id),
		reservation_id TEXT,
		type TEXT NOT NULL,
		amount INTEGER NOT NULL,
		balance_after INTEGER NOT NULL,
		reason TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_credit_transactions_account ON credit_transactions (account_id, id)`,
	`CREATE TABLE IF NOT EXISTS transcriptions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		account_id INTEGER NOT NULL REFERENCES accounts(id),
		title TEXT NOT NULL,
		transcript TEXT NOT NULL,
		notes TEXT NOT NULL,
		custom_notes TEXT,
		custom_prompt TEXT,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_transcriptions_account ON transcriptions (account_id, created_at)`,
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}

// NewSQLiteDB opens (creating if needed) the database file at dbFilePath.
// SQLite allows a single writer, so the pool is capped at one connection and
// transactions take the write lock up front.
func NewSQLiteDB(dbFilePath string) (*SQLiteDB, error) {
	if dir := filepath.Dir(dbFilePath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?mode=rwc&_busy_timeout=5000&_txlock=immediate&_foreign_keys=on", dbFilePath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	return &SQLiteDB{
		CommonDB: repository.NewCommonDB(db, "sqlite3", repository.Dialect{
			IsUniqueViolation: isUniqueViolation,
			Schema:            schema,
		}),
	}, nil
}
