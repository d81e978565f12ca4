package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/shieldbox/shieldbox/internal/core"
	"go.uber.org/zap"
)

func newTestRedisCache(t *testing.T, capacity int) *RedisCache {
	t.Helper()

	srv := miniredis.RunT(t)
	c, err := NewRedisCache(srv.Addr(), "", 0, capacity, "test:verdict", zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to create Redis cache: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestRedisCacheRoundTrip(t *testing.T) {
	c := newTestRedisCache(t, 10)
	ctx := context.Background()

	if _, err := c.Get(ctx, 1); err != ErrNotFound {
		t.Fatalf("Expected ErrNotFound on empty cache, got %v", err)
	}

	v := &core.Verdict{Label: core.LabelFraudulent, Reason: "scam patterns detected"}
	if err := c.Set(ctx, 1, v); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := c.Get(ctx, 1)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Label != v.Label || got.Reason != v.Reason {
		t.Errorf("Round trip mismatch: got %+v", got)
	}
}

func TestRedisCacheFillOnce(t *testing.T) {
	c := newTestRedisCache(t, 10)
	ctx := context.Background()

	if err := c.Set(ctx, 5, &core.Verdict{Label: core.LabelSafe, Reason: "legitimate source"}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := c.Set(ctx, 5, &core.Verdict{Label: core.LabelPhishing, Reason: "model classification"}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := c.Get(ctx, 5)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Label != core.LabelSafe {
		t.Errorf("Entry was mutated: got %+v", got)
	}
}

func TestRedisCacheCapacityBound(t *testing.T) {
	c := newTestRedisCache(t, 2)
	ctx := context.Background()
	v := &core.Verdict{Label: core.LabelSafe, Reason: "too short to analyze"}

	for bucket := uint32(0); bucket < 4; bucket++ {
		if err := c.Set(ctx, bucket, v); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}

	if _, err := c.Get(ctx, 1); err != nil {
		t.Errorf("Expected admitted entry to persist, got %v", err)
	}
	if _, err := c.Get(ctx, 3); err != ErrNotFound {
		t.Errorf("Expected ErrNotFound past capacity, got %v", err)
	}
}
