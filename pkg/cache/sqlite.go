package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jobdeck-ai/aigate/pkg/models"
)

// Durable is the shared, restart-surviving cache tier backed by SQLite.
type Durable struct {
	db *sql.DB
}

const createCacheTable = `
CREATE TABLE IF NOT EXISTS cache_entries (
	key TEXT PRIMARY KEY,
	payload BLOB NOT NULL,
	task_name TEXT NOT NULL,
	tier TEXT NOT NULL,
	quality TEXT NOT NULL,
	expires_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_cache_expires ON cache_entries(expires_at);
`

// OpenDurable opens the cache database and creates the schema.
func OpenDurable(dbPath string) (*Durable, error) {
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}
	if _, err := db.Exec(createCacheTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate cache db: %w", err)
	}
	return &Durable{db: db}, nil
}

// Get returns the payload for key if present and unexpired.
func (d *Durable) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var payload []byte
	var expiresAt time.Time
	err := d.db.QueryRowContext(ctx,
		`SELECT payload, expires_at FROM cache_entries WHERE key = ?`, key,
	).Scan(&payload, &expiresAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get: %w", err)
	}
	if time.Now().After(expiresAt) {
		return nil, false, nil
	}
	return payload, true, nil
}

// Put upserts an entry, replacing any previous row for the key.
func (d *Durable) Put(ctx context.Context, key string, payload []byte, taskName, tier, quality string, expiresAt time.Time) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO cache_entries (key, payload, task_name, tier, quality, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		key, payload, taskName, tier, quality, expiresAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("cache put: %w", err)
	}
	return nil
}

// List returns up to limit entries, newest expiry first. Payloads are
// decoded back into their JSON values.
func (d *Durable) List(ctx context.Context, limit int) ([]models.CacheEntry, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT key, payload, task_name, tier, quality, expires_at
		 FROM cache_entries ORDER BY expires_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("cache list: %w", err)
	}
	defer rows.Close()

	var entries []models.CacheEntry
	for rows.Next() {
		var e models.CacheEntry
		var payload []byte
		if err := rows.Scan(&e.Key, &payload, &e.TaskName, &e.Tier, &e.Quality, &e.ExpiresAt); err != nil {
			return nil, fmt.Errorf("scan cache entry: %w", err)
		}
		if err := json.Unmarshal(payload, &e.Value); err != nil {
			return nil, fmt.Errorf("decode cache entry %s: %w", e.Key, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Entries returns the number of stored rows, expired ones included.
func (d *Durable) Entries(ctx context.Context) (int64, error) {
	var count int64
	err := d.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cache_entries`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("cache entries: %w", err)
	}
	return count, nil
}

// Clear removes entries. If expiredOnly is true, only expired rows go.
func (d *Durable) Clear(ctx context.Context, expiredOnly bool) (int64, error) {
	query := `DELETE FROM cache_entries`
	var args []any
	if expiredOnly {
		query += ` WHERE expires_at < ?`
		args = append(args, time.Now().UTC())
	}
	res, err := d.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("cache clear: %w", err)
	}
	return res.RowsAffected()
}

// Close releases the database connection.
func (d *Durable) Close() error {
	return d.db.Close()
}
