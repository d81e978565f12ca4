package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shieldbox/shieldbox/internal/core"
	"go.uber.org/zap"
)

// RedisCache is a Redis implementation of the VerdictCache interface.
// SetNX gives fill-once semantics; a shared counter tracks how many
// entries have been admitted so the capacity bound holds across instances.
type RedisCache struct {
	client    *redis.Client
	capacity  int
	keyPrefix string
	logger    *zap.Logger
}

// NewRedisCache creates a new Redis verdict cache and verifies the
// connection.
func NewRedisCache(addr, password string, db int, capacity int, keyPrefix string, logger *zap.Logger) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}

	if keyPrefix == "" {
		keyPrefix = "shieldbox:verdict"
	}

	return &RedisCache{
		client:    client,
		capacity:  capacity,
		keyPrefix: keyPrefix,
		logger:    logger,
	}, nil
}

func (c *RedisCache) key(bucket uint32) string {
	return fmt.Sprintf("%s:%d", c.keyPrefix, bucket)
}

func (c *RedisCache) countKey() string {
	return c.keyPrefix + ":count"
}

// Get retrieves the verdict stored for a fingerprint bucket.
func (c *RedisCache) Get(ctx context.Context, bucket uint32) (*core.Verdict, error) {
	data, err := c.client.Get(ctx, c.key(bucket)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrNotFound
		}
		c.logger.Error("Failed to query verdict cache", zap.Error(err), zap.Uint32("bucket", bucket))
		return nil, err
	}

	var verdict core.Verdict
	if err := json.Unmarshal(data, &verdict); err != nil {
		return nil, fmt.Errorf("failed to decode cached verdict: %w", err)
	}

	return &verdict, nil
}

// Set stores a verdict for a fingerprint bucket unless the cache is at
// capacity or the bucket is already filled. Entries carry no expiry.
func (c *RedisCache) Set(ctx context.Context, bucket uint32, verdict *core.Verdict) error {
	if c.capacity > 0 {
		count, err := c.client.Get(ctx, c.countKey()).Int()
		if err != nil && err != redis.Nil {
			return fmt.Errorf("failed to read verdict cache count: %w", err)
		}
		if count >= c.capacity {
			c.logger.Debug("Verdict cache at capacity, entry not admitted", zap.Uint32("bucket", bucket))
			return nil
		}
	}

	data, err := json.Marshal(verdict)
	if err != nil {
		return fmt.Errorf("failed to encode verdict: %w", err)
	}

	admitted, err := c.client.SetNX(ctx, c.key(bucket), data, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to insert verdict cache entry: %w", err)
	}
	if admitted {
		if err := c.client.Incr(ctx, c.countKey()).Err(); err != nil {
			c.logger.Warn("Failed to bump verdict cache count", zap.Error(err))
		}
	}

	return nil
}

// Close closes the Redis client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
