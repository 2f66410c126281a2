// Package ledger persists one append-only InvocationRecord per
// dispatched attempt. The ledger is the source of truth for quota:
// limits are enforced by counting rows over a window, not by a
// separately maintained counter.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jobdeck-ai/aigate/pkg/models"
)

// Ledger records and queries task invocations.
type Ledger interface {
	// Record appends one invocation record.
	Record(ctx context.Context, rec models.InvocationRecord) error
	// CountSince returns the number of records for a user created at or
	// after since.
	CountSince(ctx context.Context, userID string, since time.Time) (int64, error)
	// CountHighSince is CountSince restricted to high-quality records.
	CountHighSince(ctx context.Context, userID string, since time.Time) (int64, error)
	// Summary returns aggregated usage grouped by task and provider,
	// optionally filtered by user.
	Summary(ctx context.Context, userID string) ([]models.UsageSummary, error)
	// Close releases resources.
	Close() error
}

// SQLiteLedger implements Ledger with a SQLite database.
type SQLiteLedger struct {
	db *sql.DB
}

const createTable = `
CREATE TABLE IF NOT EXISTS invocation_records (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id TEXT NOT NULL,
	task_name TEXT NOT NULL,
	tier TEXT NOT NULL,
	provider TEXT NOT NULL,
	model TEXT NOT NULL DEFAULT '',
	quality TEXT NOT NULL,
	reason TEXT NOT NULL DEFAULT '',
	input_size INTEGER NOT NULL DEFAULT 0,
	output_size INTEGER NOT NULL DEFAULT 0,
	latency_ms INTEGER NOT NULL DEFAULT 0,
	cost_estimate REAL NOT NULL DEFAULT 0,
	cache_hit INTEGER NOT NULL DEFAULT 0,
	success INTEGER NOT NULL,
	error_code TEXT NOT NULL DEFAULT '',
	error_message TEXT NOT NULL DEFAULT '',
	trace_id TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_invocations_user_time ON invocation_records(user_id, created_at);
`

// New creates a SQLiteLedger and runs auto-migration.
func New(dbPath string) (*SQLiteLedger, error) {
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open ledger db: %w", err)
	}
	if _, err := db.Exec(createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate ledger db: %w", err)
	}
	return &SQLiteLedger{db: db}, nil
}

// Record appends one invocation record.
func (l *SQLiteLedger) Record(ctx context.Context, rec models.InvocationRecord) error {
	// Timestamps are stored in UTC so that window comparisons against
	// stored strings stay well ordered.
	createdAt := rec.CreatedAt.UTC()
	if rec.CreatedAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO invocation_records
		 (user_id, task_name, tier, provider, model, quality, reason,
		  input_size, output_size, latency_ms, cost_estimate, cache_hit,
		  success, error_code, error_message, trace_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.UserID, rec.TaskName, string(rec.Tier), rec.Provider, rec.Model,
		string(rec.Quality), rec.Reason, rec.InputSize, rec.OutputSize,
		rec.LatencyMs, rec.CostEstimate, rec.CacheHit, rec.Success,
		rec.ErrorCode, rec.ErrorMessage, rec.TraceID, createdAt,
	)
	if err != nil {
		return fmt.Errorf("record invocation: %w", err)
	}
	return nil
}

// CountSince returns the number of records for a user since a given time.
func (l *SQLiteLedger) CountSince(ctx context.Context, userID string, since time.Time) (int64, error) {
	var count int64
	err := l.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM invocation_records WHERE user_id = ? AND created_at >= ?`,
		userID, since.UTC(),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count invocations: %w", err)
	}
	return count, nil
}

// CountHighSince returns the number of high-quality records for a user
// since a given time.
func (l *SQLiteLedger) CountHighSince(ctx context.Context, userID string, since time.Time) (int64, error) {
	var count int64
	err := l.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM invocation_records WHERE user_id = ? AND quality = ? AND created_at >= ?`,
		userID, string(models.QualityHigh), since.UTC(),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count high invocations: %w", err)
	}
	return count, nil
}

// Summary returns aggregated usage grouped by task and provider.
func (l *SQLiteLedger) Summary(ctx context.Context, userID string) ([]models.UsageSummary, error) {
	query := `SELECT task_name, provider, COUNT(*), COALESCE(SUM(success), 0), COALESCE(SUM(cost_estimate), 0)
		 FROM invocation_records`
	var args []any
	if userID != "" {
		query += ` WHERE user_id = ?`
		args = append(args, userID)
	}
	query += ` GROUP BY task_name, provider ORDER BY task_name, provider`

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("summary: %w", err)
	}
	defer rows.Close()

	var summaries []models.UsageSummary
	for rows.Next() {
		var s models.UsageSummary
		if err := rows.Scan(&s.TaskName, &s.Provider, &s.RequestCount, &s.SuccessCount, &s.TotalCost); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// Close releases the database connection.
func (l *SQLiteLedger) Close() error {
	return l.db.Close()
}
