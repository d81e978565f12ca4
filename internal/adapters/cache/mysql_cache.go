package cache

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"github.com/shieldbox/shieldbox/internal/core"
	"go.uber.org/zap"
)

// MySQLCache is a MySQL implementation of the VerdictCache interface,
// intended for deployments sharing a verdict table between instances.
type MySQLCache struct {
	db       *sql.DB
	capacity int
	logger   *zap.Logger
}

// NewMySQLCache creates a new MySQL verdict cache.
func NewMySQLCache(dsn string, capacity int, logger *zap.Logger) (*MySQLCache, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}

	// Create table if it doesn't exist
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS verdict_cache (
			bucket INT UNSIGNED PRIMARY KEY,
			label VARCHAR(32) NOT NULL,
			reason VARCHAR(255) NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &MySQLCache{
		db:       db,
		capacity: capacity,
		logger:   logger,
	}, nil
}

// Get retrieves the verdict stored for a fingerprint bucket.
func (c *MySQLCache) Get(ctx context.Context, bucket uint32) (*core.Verdict, error) {
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
func (c *MySQLCache) Set(ctx context.Context, bucket uint32, verdict *core.Verdict) error {
	var count int
	if err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM verdict_cache`).Scan(&count); err != nil {
		return fmt.Errorf("failed to count verdict cache entries: %w", err)
	}
	if c.capacity > 0 && count >= c.capacity {
		c.logger.Debug("Verdict cache at capacity, entry not admitted", zap.Uint32("bucket", bucket))
		return nil
	}

	_, err := c.db.ExecContext(ctx, `
		INSERT IGNORE INTO verdict_cache (bucket, label, reason) VALUES (?, ?, ?)
	`, bucket, string(verdict.Label), verdict.Reason)
	if err != nil {
		return fmt.Errorf("failed to insert verdict cache entry: %w", err)
	}

	return nil
}

// Close closes the underlying database.
func (c *MySQLCache) Close() error {
	return c.db.Close()
}
