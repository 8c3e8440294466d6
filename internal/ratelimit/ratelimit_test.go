package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestMemoryAllowsBurstThenBlocks(t *testing.T) {
	m := NewMemory(3, time.Minute)
	now := time.Unix(1000, 0)
	m.now = func() time.Time { return now }
	ctx := context.Background()

	for i := range 3 {
		ok, err := m.Allow(ctx, "1.2.3.4")
		if err != nil {
			t.Fatalf("Allow: %v", err)
		}
		if !ok {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if ok, _ := m.Allow(ctx, "1.2.3.4"); ok {
		t.Error("fourth request should be rejected")
	}

	// Other keys have their own bucket
	if ok, _ := m.Allow(ctx, "5.6.7.8"); !ok {
		t.Error("different key should be allowed")
	}
}

func TestMemoryRefills(t *testing.T) {
	m := NewMemory(60, time.Minute)
	now := time.Unix(1000, 0)
	m.now = func() time.Time { return now }
	ctx := context.Background()

	for range 60 {
		m.Allow(ctx, "k")
	}
	if ok, _ := m.Allow(ctx, "k"); ok {
		t.Fatal("bucket should be empty")
	}

	now = now.Add(time.Second)
	if ok, _ := m.Allow(ctx, "k"); !ok {
		t.Error("one token should refill after a second")
	}
}

func TestMemorySweep(t *testing.T) {
	m := NewMemory(10, time.Minute)
	now := time.Unix(1000, 0)
	m.now = func() time.Time { return now }
	ctx := context.Background()

	m.Allow(ctx, "old")
	now = now.Add(45 * time.Second)
	m.Allow(ctx, "new")
	now = now.Add(30 * time.Second)

	if removed := m.Sweep(); removed != 1 {
		t.Errorf("expected 1 key removed, got %d", removed)
	}
	if m.Len() != 1 {
		t.Errorf("expected 1 key left, got %d", m.Len())
	}
}
