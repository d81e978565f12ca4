package cache

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shieldbox/shieldbox/internal/core"
	"go.uber.org/zap"
)

// SQLiteCache is a SQLite implementation of the VerdictCache interface.
// Verdicts persist across restarts; fill-once semantics are enforced with
// INSERT OR IGNORE so a bucket is never rewritten.
type SQLiteCache struct {
	db       *sql.DB
	capacity int
	logger   *zap.Logger
}

// NewSQLiteCache creates a new SQLite verdict cache.
func NewSQLiteCache(dbPath string, capacity int, logger *zap.Logger) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Create table if it doesn't exist
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS verdict_cache (
			bucket INTEGER PRIMARY KEY,
			label TEXT NOT NULL,
			reason TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &SQLiteCache{
		db:       db,
		capacity: capacity,
		logger:   logger,
	}, nil
}

// Get retrieves the verdict stored for a fingerprint bucket.
func (c *SQLiteCache) Get(ctx context.Context, bucket uint32) (*core.Verdict, error) {
	var label, reason string

	err := c.db.QueryRowContext(ctx, `
		SELECT label, reason FROM verdict_cache WHERE bucket = ?
	`, bucket).Scan(&label, &reason)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		c.logger.Error("Failed to query verdict cache", zap.Error(err), zap.Uint32("bucket", bucket))
		return nil, err
	}

	return &core.Verdict{Label: core.Label(label), Reason: reason}, nil
}

// Set stores a verdict for a fingerprint bucket unless the cache is at
// capacity or the bucket is already filled.
func (c *SQLiteCache) Set(ctx context.Context, bucket uint32, verdict *core.Verdict) error {
	var count int
	if err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM verdict_cache`).Scan(&count); err != nil {
		return fmt.Errorf("failed to count verdict cache entries: %w", err)
	}
	if c.capacity > 0 && count >= c.capacity {
		c.logger.Debug("Verdict cache at capacity, entry not admitted", zap.Uint32("bucket", bucket))
		return nil
	}

	_, err := c.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO verdict_cache (bucket, label, reason) VALUES (?, ?, ?)
	`, bucket, string(verdict.Label), verdict.Reason)
	if err != nil {
		return fmt.Errorf("failed to insert verdict cache entry: %w", err)
	}

	return nil
}

// Close closes the underlying database.
func (c *SQLiteCache) Close() error {
	return c.db.Close()
}
