package pg

import (
	"database/sql"
	"errors"
	"fmt"

	"media-notes/internal/app/repository"

	"github.com/lib/pq"
)

// PostgresDB is the server storage backend
type PostgresDB struct {
	*repository.CommonDB
	db *sql.DB
}

var _ repository.Store = (*PostgresDB)(nil)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
		id BIGSERIAL PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		credit_balance INTEGER NOT NULL DEFAULT 0 CHECK (credit_balance >= 0),
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS credit_reservations (
		id UUID PRIMARY KEY,
		account_id BIGINT NOT NULL REFERENCES accounts(id),
		amount INTEGER NOT NULL CHECK (amount > 0),
		state TEXT NOT NULL CHECK (state IN ('held', 'committed', 'refunded')),
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_credit_reservations_idle ON credit_reservations (state, updated_at)`,
	`CREATE TABLE IF NOT EXISTS credit_transactions (
		id BIGSERIAL PRIMARY KEY,
		account_id BIGINT NOT NULL REFERENCES accounts(id),
		reservation_id UUID,
		type TEXT NOT NULL,
		amount INTEGER NOT NULL,
		balance_after INTEGER NOT NULL,
		reason TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_credit_transactions_account ON credit_transactions (account_id, id)`,
	`CREATE TABLE IF NOT EXISTS transcriptions (
		id BIGSERIAL PRIMARY KEY,
		account_id BIGINT NOT NULL REFERENCES accounts(id),
		title TEXT NOT NULL,
		transcript TEXT NOT NULL,
		notes TEXT NOT NULL,
		custom_notes TEXT,
		custom_prompt TEXT,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_transcriptions_account ON transcriptions (account_id, created_at DESC)`,
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

// NewPostgresDB opens a connection pool. No connection is made until first use.
func NewPostgresDB(connectionString string) (*PostgresDB, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return newWithDB(db), nil
}

func newWithDB(db *sql.DB) *PostgresDB {
	return &PostgresDB{
		CommonDB: repository.NewCommonDB(db, "postgres", repository.Dialect{
			LockSuffix:        " FOR UPDATE",
			IsUniqueViolation: isUniqueViolation,
			Schema:            schema,
		}),
		db: db,
	}
}
