package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// table describes one id-ordered table copied from SQLite into PostgreSQL
type table struct {
	name    string
	columns []string
	// sequence is reset after copying so new rows do not collide with copied ids
	serial bool
}

var tables = []table{
	{name: "accounts", columns: []string{"id", "username", "email", "password_hash", "credit_balance", "created_at"}, serial: true},
	{name: "transcriptions", columns: []string{"id", "account_id", "title", "transcript", "notes", "custom_notes", "custom_prompt", "created_at"}, serial: true},
	{name: "credit_transactions", columns: []string{"id", "account_id", "reservation_id", "type", "amount", "balance_after", "reason", "created_at"}, serial: true},
}

// Migrator copies data from the embedded backend into PostgreSQL in batches,
// remembering the last copied id per table so an interrupted run resumes.
type Migrator struct {
	src            *sql.DB
	dst            *sql.DB
	batchSize      int
	checkpointPath string
	logger         *zap.Logger
}

func NewMigrator(src, dst *sql.DB, batchSize int, checkpointPath string, logger *zap.Logger) *Migrator {
	if batchSize <= 0 {
		batchSize = 1000
	}
	if checkpointPath == "" {
		checkpointPath = "last_id"
	}
	return &Migrator{src: src, dst: dst, batchSize: batchSize, checkpointPath: checkpointPath, logger: logger}
}

// Stats counts copied rows per table
type Stats map[string]int

func (m *Migrator) Run(ctx context.Context) (Stats, error) {
	stats := Stats{}
	for _, t := range tables {
		n, err := m.copyTable(ctx, t)
		stats[t.name] = n
		if err != nil {
			return stats, fmt.Errorf("migrate %s: %w", t.name, err)
		}
		if t.serial {
			if _, err := m.dst.ExecContext(ctx, fmt.Sprintf(
				`SELECT setval(pg_get_serial_sequence('%s', 'id'), GREATEST((SELECT COALESCE(MAX(id), 0) FROM %s), 1))`,
				t.name, t.name)); err != nil {
				return stats, fmt.Errorf("reset %s sequence: %w", t.name, err)
			}
		}
	}

	n, err := m.copyReservations(ctx)
	stats["credit_reservations"] = n
	if err != nil {
		return stats, fmt.Errorf("migrate credit_reservations: %w", err)
	}
	return stats, nil
}

func (m *Migrator) copyTable(ctx context.Context, t table) (int, error) {
	lastID := m.getLastID(t.name)
	copied := 0
	for {
		rows, err := m.src.QueryContext(ctx, fmt.Sprintf(
			`SELECT %s FROM %s WHERE id > ? ORDER BY id LIMIT ?`, strings.Join(t.columns, ", "), t.name),
			lastID, m.batchSize)
		if err != nil {
			return copied, err
		}
		batch, err := readRows(rows, len(t.columns))
		if err != nil {
			return copied, err
		}
		if len(batch) == 0 {
			return copied, nil
		}

		if err := m.insertBatch(ctx, t.name, t.columns, "id", batch); err != nil {
			return copied, err
		}
		lastID = toInt64(batch[len(batch)-1][0])
		copied += len(batch)
		if err := m.saveLastID(t.name, lastID); err != nil {
			return copied, fmt.Errorf("failed to save last id: %w", err)
		}
		m.logger.Info("copied batch", zap.String("table", t.name), zap.Int("rows", len(batch)), zap.Int64("last_id", lastID))
	}
}

// copyReservations copies every reservation; ids are uuids so no checkpoint
// is kept and conflicts are skipped.
func (m *Migrator) copyReservations(ctx context.Context) (int, error) {
	columns := []string{"id", "account_id", "amount", "state", "created_at", "updated_at"}
	rows, err := m.src.QueryContext(ctx, `SELECT `+strings.Join(columns, ", ")+` FROM credit_reservations ORDER BY created_at`)
	if err != nil {
		return 0, err
	}
	all, err := readRows(rows, len(columns))
	if err != nil {
		return 0, err
	}
	for start := 0; start < len(all); start += m.batchSize {
		end := start + m.batchSize
		if end > len(all) {
			end = len(all)
		}
		if err := m.insertBatch(ctx, "credit_reservations", columns, "id", all[start:end]); err != nil {
			return start, err
		}
	}
	return len(all), nil
}

func (m *Migrator) insertBatch(ctx context.Context, name string, columns []string, conflict string, batch [][]interface{}) error {
	tx, err := m.dst.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	placeholders := make([]string, len(columns))
	for i := range columns {
		placeholders[i] = "$" + strconv.Itoa(i+1)
	}
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		`INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO NOTHING`,
		name, strings.Join(columns, ", "), strings.Join(placeholders, ", "), conflict))
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, row := range batch {
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert row %v: %w", row[0], err)
		}
	}
	return tx.Commit()
}

func readRows(rows *sql.Rows, width int) ([][]interface{}, error) {
	defer rows.Close()
	var out [][]interface{}
	for rows.Next() {
		values := make([]interface{}, width)
		ptrs := make([]interface{}, width)
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		out = append(out, values)
	}
	return out, rows.Err()
}

func toInt64(v interface{}) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case []byte:
		i, _ := strconv.ParseInt(string(n), 10, 64)
		return i
	case string:
		i, _ := strconv.ParseInt(n, 10, 64)
		return i
	}
	return 0
}

func (m *Migrator) checkpointFile(name string) string {
	return m.checkpointPath + "." + name + ".txt"
}

func (m *Migrator) getLastID(name string) int64 {
	data, err := os.ReadFile(m.checkpointFile(name))
	if err != nil {
		return 0
	}
	lastID, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return 0
	}
	return lastID
}

func (m *Migrator) saveLastID(name string, lastID int64) error {
	return os.WriteFile(m.checkpointFile(name), []byte(strconv.FormatInt(lastID, 10)), 0644)
}
