package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	apperrors "media-notes/internal/app/errors"
	"media-notes/internal/app/model"
)

// CommonDB provides shared database functionality
type CommonDB struct {
	db           *sql.DB
	driverName   string
	placeholders PlaceholderFunc
	dialect      Dialect
}

// PlaceholderFunc generates parameter placeholders for different SQL dialects
type PlaceholderFunc func(n int) string

// Dialect holds the per-backend differences CommonDB cannot derive from the
// driver name alone.
type Dialect struct {
	// LockSuffix is appended to SELECTs that read a row about to be updated
	// inside a transaction, e.g. " FOR UPDATE".
	LockSuffix string
	// IsUniqueViolation recognises the driver's unique constraint error.
	IsUniqueViolation func(error) bool
	// Schema is applied in order by InitSchema.
	Schema []string
}

// NewCommonDB creates a new CommonDB instance
func NewCommonDB(db *sql.DB, driverName string, dialect Dialect) *CommonDB {
	var placeholders PlaceholderFunc

	switch driverName {
	case "sqlite3":
		placeholders = func(n int) string { return "?" }
	case "postgres":
		placeholders = func(n int) string { return fmt.Sprintf("$%d", n) }
	default:
		placeholders = func(n int) string { return "?" }
	}

	if dialect.IsUniqueViolation == nil {
		dialect.IsUniqueViolation = func(error) bool { return false }
	}

	return &CommonDB{
		db:           db,
		driverName:   driverName,
		placeholders: placeholders,
		dialect:      dialect,
	}
}

// rebind rewrites ? markers into the dialect's placeholders
func (c *CommonDB) rebind(query string) string {
	if !strings.Contains(query, "?") {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString(c.placeholders(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (c *CommonDB) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.WithKind(apperrors.KindStorage, err, "begin transaction")
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return apperrors.WithKind(apperrors.KindStorage, err, "commit transaction")
	}
	return nil
}

func storageErr(err error, op string) error {
	return apperrors.WithKind(apperrors.KindStorage, err, op)
}

// InitSchema creates tables and indexes when missing
func (c *CommonDB) InitSchema(ctx context.Context) error {
	for _, stmt := range c.dialect.Schema {
		if _, err := c.db.ExecContext(ctx, stmt); err != nil {
			return storageErr(err, "apply schema")
		}
	}
	return nil
}

// Accounts

func (c *CommonDB) CreateAccount(ctx context.Context, account *model.Account, startingCredits int) (*model.Account, error) {
	if startingCredits < 0 {
		return nil, apperrors.InvalidField("starting credits", "must not be negative")
	}
	created := *account
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}
	created.CreditBalance = startingCredits

	err := c.withTx(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, c.rebind(
			`INSERT INTO accounts (username, email, password_hash, credit_balance, created_at)
			 VALUES (?, ?, ?, ?, ?) RETURNING id`),
			created.Username, created.Email, created.PasswordHash, startingCredits, created.CreatedAt,
		).Scan(&created.ID)
		if err != nil {
			if c.dialect.IsUniqueViolation(err) {
				return apperrors.AlreadyExists("account", created.Username)
			}
			return storageErr(err, "insert account")
		}
		if startingCredits > 0 {
			return c.insertTransaction(ctx, tx, created.ID, nil, model.CreditGrant,
				startingCredits, startingCredits, "starting grant", created.CreatedAt)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

const accountColumns = `id, username, email, password_hash, credit_balance, created_at`

func (c *CommonDB) GetAccount(ctx context.Context, id int64) (*model.Account, error) {
	row := c.db.QueryRowContext(ctx, c.rebind(`SELECT `+accountColumns+` FROM accounts WHERE id = ?`), id)
	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("account", strconv.FormatInt(id, 10))
	}
	if err != nil {
		return nil, storageErr(err, "get account")
	}
	return a, nil
}

func (c *CommonDB) GetAccountByUsername(ctx context.Context, username string) (*model.Account, error) {
	row := c.db.QueryRowContext(ctx, c.rebind(`SELECT `+accountColumns+` FROM accounts WHERE username = ?`), username)
	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("account", username)
	}
	if err != nil {
		return nil, storageErr(err, "get account")
	}
	return a, nil
}

func scanAccount(row *sql.Row) (*model.Account, error) {
	var a model.Account
	if err := row.Scan(&a.ID, &a.Username, &a.Email, &a.PasswordHash, &a.CreditBalance, &a.CreatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

// Credits

func (c *CommonDB) ReserveCredit(ctx context.Context, accountID int64, reservationID string, amount int, now time.Time) (*model.Reservation, int, error) {
	if amount <= 0 {
		return nil, 0, apperrors.InvalidField("amount", "must be positive")
	}
	var balance int
	err := c.withTx(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, c.rebind(
			`UPDATE accounts SET credit_balance = credit_balance - ?
			 WHERE id = ? AND credit_balance >= ? RETURNING credit_balance`),
			amount, accountID, amount,
		).Scan(&balance)
		if errors.Is(err, sql.ErrNoRows) {
			exists, err := c.accountExists(ctx, tx, accountID)
			if err != nil {
				return err
			}
			if !exists {
				return apperrors.NotFound("account", strconv.FormatInt(accountID, 10))
			}
			return apperrors.Newf(apperrors.KindInsufficientCredit, "account %d has no credits left", accountID)
		}
		if err != nil {
			return storageErr(err, "debit account")
		}

		_, err = tx.ExecContext(ctx, c.rebind(
			`INSERT INTO credit_reservations (id, account_id, amount, state, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?)`),
			reservationID, accountID, amount, string(model.ReservationHeld), now, now,
		)
		if err != nil {
			return storageErr(err, "insert reservation")
		}
		return c.insertTransaction(ctx, tx, accountID, &reservationID, model.CreditReserve, -amount, balance, "job reservation", now)
	})
	if err != nil {
		return nil, 0, err
	}
	return &model.Reservation{
		ID:        reservationID,
		AccountID: accountID,
		Amount:    amount,
		State:     model.ReservationHeld,
		CreatedAt: now,
		UpdatedAt: now,
	}, balance, nil
}

// CommitReservation moves a held reservation to committed. It reports false
// without error when the reservation was already committed.
func (c *CommonDB) CommitReservation(ctx context.Context, reservationID string, now time.Time) (bool, error) {
	changed := false
	err := c.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, c.rebind(
			`UPDATE credit_reservations SET state = ?, updated_at = ? WHERE id = ? AND state = ?`),
			string(model.ReservationCommitted), now, reservationID, string(model.ReservationHeld),
		)
		if err != nil {
			return storageErr(err, "commit reservation")
		}
		if n, err := res.RowsAffected(); err != nil {
			return storageErr(err, "commit reservation")
		} else if n == 1 {
			changed = true
			return nil
		}

		var state string
		err = tx.QueryRowContext(ctx, c.rebind(`SELECT state FROM credit_reservations WHERE id = ?`), reservationID).Scan(&state)
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.NotFound("reservation", reservationID)
		}
		if err != nil {
			return storageErr(err, "read reservation")
		}
		if model.ReservationState(state) == model.ReservationCommitted {
			return nil
		}
		return apperrors.Newf(apperrors.KindInvalidReservation, "reservation %s is %s and cannot be committed", reservationID, state)
	})
	return changed, err
}

// RefundReservation returns the held amount to the account. Only legal for
// held reservations.
func (c *CommonDB) RefundReservation(ctx context.Context, reservationID string, now time.Time) (int, error) {
	var balance int
	err := c.withTx(ctx, func(tx *sql.Tx) error {
		var (
			accountID int64
			amount    int
			state     string
		)
		err := tx.QueryRowContext(ctx, c.rebind(
			`SELECT account_id, amount, state FROM credit_reservations WHERE id = ?`+c.dialect.LockSuffix),
			reservationID,
		).Scan(&accountID, &amount, &state)
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.NotFound("reservation", reservationID)
		}
		if err != nil {
			return storageErr(err, "read reservation")
		}
		if model.ReservationState(state) != model.ReservationHeld {
			return apperrors.Newf(apperrors.KindInvalidReservation, "reservation %s is %s and cannot be refunded", reservationID, state)
		}

		res, err := tx.ExecContext(ctx, c.rebind(
			`UPDATE credit_reservations SET state = ?, updated_at = ? WHERE id = ? AND state = ?`),
			string(model.ReservationRefunded), now, reservationID, string(model.ReservationHeld),
		)
		if err != nil {
			return storageErr(err, "refund reservation")
		}
		if n, err := res.RowsAffected(); err != nil {
			return storageErr(err, "refund reservation")
		} else if n != 1 {
			return apperrors.Newf(apperrors.KindInvalidReservation, "reservation %s changed state concurrently", reservationID)
		}

		err = tx.QueryRowContext(ctx, c.rebind(
			`UPDATE accounts SET credit_balance = credit_balance + ? WHERE id = ? RETURNING credit_balance`),
			amount, accountID,
		).Scan(&balance)
		if err != nil {
			return storageErr(err, "credit account")
		}
		return c.insertTransaction(ctx, tx, accountID, &reservationID, model.CreditRefund, amount, balance, "job refund", now)
	})
	return balance, err
}

func (c *CommonDB) GrantCredits(ctx context.Context, accountID int64, amount int, reason string, now time.Time) (int, error) {
	if amount <= 0 {
		return 0, apperrors.InvalidField("amount", "must be positive")
	}
	var balance int
	err := c.withTx(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, c.rebind(
			`UPDATE accounts SET credit_balance = credit_balance + ? WHERE id = ? RETURNING credit_balance`),
			amount, accountID,
		).Scan(&balance)
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.NotFound("account", strconv.FormatInt(accountID, 10))
		}
		if err != nil {
			return storageErr(err, "credit account")
		}
		return c.insertTransaction(ctx, tx, accountID, nil, model.CreditGrant, amount, balance, reason, now)
	})
	return balance, err
}

func (c *CommonDB) GetBalance(ctx context.Context, accountID int64) (int, error) {
	var balance int
	err := c.db.QueryRowContext(ctx, c.rebind(`SELECT credit_balance FROM accounts WHERE id = ?`), accountID).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, apperrors.NotFound("account", strconv.FormatInt(accountID, 10))
	}
	if err != nil {
		return 0, storageErr(err, "read balance")
	}
	return balance, nil
}

const reservationColumns = `id, account_id, amount, state, created_at, updated_at`

func (c *CommonDB) GetReservation(ctx context.Context, reservationID string) (*model.Reservation, error) {
	var r model.Reservation
	var state string
	err := c.db.QueryRowContext(ctx, c.rebind(`SELECT `+reservationColumns+` FROM credit_reservations WHERE id = ?`), reservationID).
		Scan(&r.ID, &r.AccountID, &r.Amount, &state, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("reservation", reservationID)
	}
	if err != nil {
		return nil, storageErr(err, "get reservation")
	}
	r.State = model.ReservationState(state)
	return &r, nil
}

// TouchReservation bumps updated_at of a held reservation so the stale
// sweep leaves it alone. Reservations in any other state are not changed.
func (c *CommonDB) TouchReservation(ctx context.Context, reservationID string, now time.Time) error {
	_, err := c.db.ExecContext(ctx, c.rebind(
		`UPDATE credit_reservations SET updated_at = ? WHERE id = ? AND state = ?`),
		now, reservationID, string(model.ReservationHeld),
	)
	if err != nil {
		return storageErr(err, "touch reservation")
	}
	return nil
}

// ListReservations returns reservations in state that were last updated
// before idleSince, oldest first.
func (c *CommonDB) ListReservations(ctx context.Context, state model.ReservationState, idleSince time.Time) ([]model.Reservation, error) {
	rows, err := c.db.QueryContext(ctx, c.rebind(
		`SELECT `+reservationColumns+` FROM credit_reservations
		 WHERE state = ? AND updated_at < ? ORDER BY updated_at`),
		string(state), idleSince,
	)
	if err != nil {
		return nil, storageErr(err, "list reservations")
	}
	defer rows.Close()

	reservations := make([]model.Reservation, 0)
	for rows.Next() {
		var r model.Reservation
		var s string
		if err := rows.Scan(&r.ID, &r.AccountID, &r.Amount, &s, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, storageErr(err, "scan reservation")
		}
		r.State = model.ReservationState(s)
		reservations = append(reservations, r)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(err, "list reservations")
	}
	return reservations, nil
}

func (c *CommonDB) ListCreditTransactions(ctx context.Context, accountID int64, limit int) ([]model.CreditTransaction, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := c.db.QueryContext(ctx, c.rebind(
		`SELECT id, account_id, reservation_id, type, amount, balance_after, reason, created_at
		 FROM credit_transactions WHERE account_id = ? ORDER BY id DESC LIMIT ?`),
		accountID, limit,
	)
	if err != nil {
		return nil, storageErr(err, "list credit transactions")
	}
	defer rows.Close()

	txs := make([]model.CreditTransaction, 0)
	for rows.Next() {
		var (
			t             model.CreditTransaction
			reservationID sql.NullString
			kind          string
		)
		if err := rows.Scan(&t.ID, &t.AccountID, &reservationID, &kind, &t.Amount, &t.BalanceAfter, &t.Reason, &t.CreatedAt); err != nil {
			return nil, storageErr(err, "scan credit transaction")
		}
		if reservationID.Valid {
			t.ReservationID = &reservationID.String
		}
		t.Type = model.CreditTransactionType(kind)
		txs = append(txs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(err, "list credit transactions")
	}
	return txs, nil
}

func (c *CommonDB) accountExists(ctx context.Context, tx *sql.Tx, accountID int64) (bool, error) {
	var one int
	err := tx.QueryRowContext(ctx, c.rebind(`SELECT 1 FROM accounts WHERE id = ?`), accountID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, storageErr(err, "read account")
	}
	return true, nil
}

func (c *CommonDB) insertTransaction(ctx context.Context, tx *sql.Tx, accountID int64, reservationID *string,
	kind model.CreditTransactionType, amount, balanceAfter int, reason string, now time.Time) error {
	var rid interface{}
	if reservationID != nil {
		rid = *reservationID
	}
	_, err := tx.ExecContext(ctx, c.rebind(
		`INSERT INTO credit_transactions (account_id, reservation_id, type, amount, balance_after, reason, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`),
		accountID, rid, string(kind), amount, balanceAfter, reason, now,
	)
	if err != nil {
		return storageErr(err, "insert credit transaction")
	}
	return nil
}

// Transcriptions

func (c *CommonDB) SaveTranscription(ctx context.Context, t *model.SavedTranscription) (int64, error) {
	createdAt := t.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	var id int64
	err := c.db.QueryRowContext(ctx, c.rebind(
		`INSERT INTO transcriptions (account_id, title, transcript, notes, custom_notes, custom_prompt, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`),
		t.AccountID, t.Title, t.Transcript, t.Notes, nullable(t.CustomNotes), nullable(t.CustomPrompt), createdAt,
	).Scan(&id)
	if err != nil {
		return 0, storageErr(err, "insert transcription")
	}
	return id, nil
}

// ListTranscriptions returns the account's history, most recent first
func (c *CommonDB) ListTranscriptions(ctx context.Context, accountID int64) ([]model.TranscriptionSummary, error) {
	rows, err := c.db.QueryContext(ctx, c.rebind(
		`SELECT id, title, created_at FROM transcriptions
		 WHERE account_id = ? ORDER BY created_at DESC, id DESC`),
		accountID,
	)
	if err != nil {
		return nil, storageErr(err, "list transcriptions")
	}
	defer rows.Close()

	items := make([]model.TranscriptionSummary, 0)
	for rows.Next() {
		var s model.TranscriptionSummary
		if err := rows.Scan(&s.ID, &s.Title, &s.CreatedAt); err != nil {
			return nil, storageErr(err, "scan transcription")
		}
		items = append(items, s)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(err, "list transcriptions")
	}
	return items, nil
}

// GetTranscription returns the record only when accountID owns it
func (c *CommonDB) GetTranscription(ctx context.Context, id, accountID int64) (*model.SavedTranscription, error) {
	var (
		t            model.SavedTranscription
		customNotes  sql.NullString
		customPrompt sql.NullString
	)
	err := c.db.QueryRowContext(ctx, c.rebind(
		`SELECT id, account_id, title, transcript, notes, custom_notes, custom_prompt, created_at
		 FROM transcriptions WHERE id = ? AND account_id = ?`),
		id, accountID,
	).Scan(&t.ID, &t.AccountID, &t.Title, &t.Transcript, &t.Notes, &customNotes, &customPrompt, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("transcription", strconv.FormatInt(id, 10))
	}
	if err != nil {
		return nil, storageErr(err, "get transcription")
	}
	if customNotes.Valid {
		t.CustomNotes = &customNotes.String
	}
	if customPrompt.Valid {
		t.CustomPrompt = &customPrompt.String
	}
	return &t, nil
}

func nullable(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

// Close closes the database connection
func (c *CommonDB) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// DB returns the underlying database connection
func (c *CommonDB) DB() *sql.DB {
	return c.db
}

// DriverName returns the database/sql driver the connection was opened with
func (c *CommonDB) DriverName() string {
	return c.driverName
}
