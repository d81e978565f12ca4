package cache

import (
	"context"
	"errors"
	"sync"

	"github.com/shieldbox/shieldbox/internal/core"
	"go.uber.org/zap"
)

var (
	// ErrNotFound is returned when a cache entry is not found
	ErrNotFound = errors.New("verdict cache entry not found")
)

// MemoryCache is an in-memory implementation of the VerdictCache interface.
// Entries are written once per fingerprint bucket and never evicted; once
// the capacity is reached no further entries are admitted. Hash collisions
// are served as hits.
type MemoryCache struct {
	entries  map[uint32]core.Verdict
	capacity int
	mu       sync.RWMutex
	logger   *zap.Logger
}

// NewMemoryCache creates a new in-memory verdict cache.
func NewMemoryCache(capacity int, logger *zap.Logger) *MemoryCache {
	return &MemoryCache{
		entries:  make(map[uint32]core.Verdict),
		capacity: capacity,
		logger:   logger,
	}
}

// Get retrieves the verdict stored for a fingerprint bucket.
func (c *MemoryCache) Get(ctx context.Context, bucket uint32) (*core.Verdict, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	verdict, ok := c.entries[bucket]
	if !ok {
		return nil, ErrNotFound
	}

	c.logger.Debug("Verdict cache hit", zap.Uint32("bucket", bucket), zap.String("label", string(verdict.Label)))
	return &verdict, nil
}

// Set stores a verdict for a fingerprint bucket. Existing entries are never
// overwritten and a full cache admits nothing; both cases are silent.
func (c *MemoryCache) Set(ctx context.Context, bucket uint32, verdict *core.Verdict) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[bucket]; exists {
		return nil
	}
	if c.capacity > 0 && len(c.entries) >= c.capacity {
		c.logger.Debug("Verdict cache at capacity, entry not admitted", zap.Uint32("bucket", bucket))
		return nil
	}

	c.entries[bucket] = *verdict
	return nil
}

// Len returns the number of admitted entries.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
