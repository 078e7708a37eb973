package cache

import (
	"errors"
	"testing"
	"time"
)

func TestCacheGetPut(t *testing.T) {
	c := New[string, string](10, time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Error("Get on empty cache should miss")
	}

	c.Put("k", "v")
	got, ok := c.Get("k")
	if !ok || got != "v" {
		t.Errorf("Get = %q, %v; want v, true", got, ok)
	}
}

func TestCacheEvictsOldest(t *testing.T) {
	c := New[string, int](2, time.Minute)

	c.Put("a", 1)
	c.Put("b", 2)
	c.Get("a") // a is now most recently used
	c.Put("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("a should survive, it was recently used")
	}
	if c.Len() != 2 {
		t.Errorf("Len = %d, want 2", c.Len())
	}
}

func TestCacheTTLExpiry(t *testing.T) {
	c := New[string, int](10, 10*time.Millisecond)

	c.Put("k", 1)
	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get("k"); ok {
		t.Error("expired entry should miss")
	}
}

func TestCacheInvalidate(t *testing.T) {
	c := New[string, int](10, time.Minute)

	c.Put("k", 1)
	c.Invalidate("k")
	if _, ok := c.Get("k"); ok {
		t.Error("invalidated entry should miss")
	}

	// Invalidating a missing key is a no-op.
	c.Invalidate("missing")
}

func TestCacheGetOrCompute(t *testing.T) {
	c := New[string, int](10, time.Minute)

	calls := 0
	compute := func() (int, error) { calls++; return 42, nil }

	got, err := c.GetOrCompute("k", compute)
	if err != nil || got != 42 {
		t.Fatalf("GetOrCompute = %d, %v; want 42, nil", got, err)
	}
	if _, err := c.GetOrCompute("k", compute); err != nil {
		t.Fatalf("GetOrCompute hit failed: %v", err)
	}
	if calls != 1 {
		t.Errorf("compute ran %d times, want 1", calls)
	}

	// Failed computes are not cached.
	boom := errors.New("boom")
	if _, err := c.GetOrCompute("bad", func() (int, error) { return 0, boom }); err != boom {
		t.Fatalf("expected compute error, got %v", err)
	}
	if _, ok := c.Get("bad"); ok {
		t.Error("failed compute must not be cached")
	}
}

func TestCacheCleanExpired(t *testing.T) {
	c := New[string, int](10, 10*time.Millisecond)

	c.Put("a", 1)
	c.Put("b", 2)
	time.Sleep(20 * time.Millisecond)
	c.Put("fresh", 3)

	if removed := c.CleanExpired(); removed != 2 {
		t.Errorf("CleanExpired = %d, want 2", removed)
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}
}
