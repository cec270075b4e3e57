package cache

import (
	"testing"
	"time"
)

func TestPageKey_Deterministic(t *testing.T) {
	a := PageKey("https://example.com/page")
	b := PageKey("https://example.com/page")
	if a != b {
		t.Errorf("same URL produced different keys: %s vs %s", a, b)
	}
	if a == PageKey("https://example.com/other") {
		t.Error("different URLs produced the same key")
	}
}

func TestMemoryCache_RoundTrip(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	key := PageKey("https://example.com")
	if err := c.Set(key, []byte("page text"), 0); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	val, found := c.Get(key)
	if !found || string(val) != "page text" {
		t.Errorf("expected cached page text, got %q (found=%v)", val, found)
	}

	if err := c.Delete(key); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, found := c.Get(key); found {
		t.Error("expected miss after delete")
	}
}

func TestDiskCache_RoundTripAndExpiry(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Minute)

	key := PageKey("https://example.com")
	if err := c.Set(key, []byte("persisted"), 0); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	val, found := c.Get(key)
	if !found || string(val) != "persisted" {
		t.Errorf("expected persisted value, got %q (found=%v)", val, found)
	}

	// Entry with an already-passed expiry is treated as a miss.
	if err := c.Set(key, []byte("stale"), -time.Second); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if _, found := c.Get(key); found {
		t.Error("expected expired entry to miss")
	}
}

func TestLayeredCache_PromotesDiskHits(t *testing.T) {
	dir := t.TempDir()
	c := NewLayeredCache(time.Minute, dir, time.Minute)

	key := PageKey("https://example.com")
	if err := c.Set(key, []byte("both layers"), 0); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	// Drop memory; disk should still serve and repopulate memory.
	_ = c.memory.Clear()
	val, found := c.Get(key)
	if !found || string(val) != "both layers" {
		t.Fatalf("expected disk fallback, got %q (found=%v)", val, found)
	}
	if _, found := c.memory.Get(key); !found {
		t.Error("expected disk hit to be promoted into memory")
	}
}
