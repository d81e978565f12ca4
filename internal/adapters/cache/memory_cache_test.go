package cache

import (
	"context"
	"testing"

	"github.com/shieldbox/shieldbox/internal/core"
	"go.uber.org/zap"
)

func TestMemoryCacheFillOnce(t *testing.T) {
	c := NewMemoryCache(10, zap.NewNop())
	ctx := context.Background()

	first := &core.Verdict{Label: core.LabelSafe, Reason: "legitimate source"}
	if err := c.Set(ctx, 42, first); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// A second write to the same bucket must not replace the entry.
	second := &core.Verdict{Label: core.LabelFraudulent, Reason: "scam patterns detected"}
	if err := c.Set(ctx, 42, second); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := c.Get(ctx, 42)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Label != core.LabelSafe || got.Reason != "legitimate source" {
		t.Errorf("Entry was mutated: got %+v", got)
	}
}

func TestMemoryCacheMiss(t *testing.T) {
	c := NewMemoryCache(10, zap.NewNop())

	if _, err := c.Get(context.Background(), 7); err != ErrNotFound {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestMemoryCacheCapacityBound(t *testing.T) {
	c := NewMemoryCache(2, zap.NewNop())
	ctx := context.Background()
	v := &core.Verdict{Label: core.LabelSafe, Reason: "too short to analyze"}

	for bucket := uint32(0); bucket < 5; bucket++ {
		if err := c.Set(ctx, bucket, v); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}

	if c.Len() != 2 {
		t.Errorf("Expected 2 admitted entries, got %d", c.Len())
	}

	// Entries admitted before the cap persist.
	if _, err := c.Get(ctx, 0); err != nil {
		t.Errorf("Expected admitted entry to persist, got %v", err)
	}
	// Entries past the cap were never admitted.
	if _, err := c.Get(ctx, 4); err != ErrNotFound {
		t.Errorf("Expected ErrNotFound past capacity, got %v", err)
	}
}
