package cache_test

import (
	"testing"
	"time"

	"github.com/govscout/govscout-api/internal/infra/cache"
)

func TestCache_SetGet(t *testing.T) {
	c := cache.New[string](time.Minute)
	c.Set("k", "v")

	got, ok := c.Get("k")
	if !ok {
		t.Fatal("expected hit")
	}
	if got != "v" {
		t.Errorf("expected 'v', got %q", got)
	}
}

func TestCache_MissAfterExpiry(t *testing.T) {
	c := cache.New[int](20 * time.Millisecond)
	c.Set("k", 42)

	time.Sleep(40 * time.Millisecond)

	if _, ok := c.Get("k"); ok {
		t.Error("expected miss after TTL")
	}
}

func TestCache_Delete(t *testing.T) {
	c := cache.New[int](time.Minute)
	c.Set("k", 1)
	c.Delete("k")

	if _, ok := c.Get("k"); ok {
		t.Error("expected miss after delete")
	}
}

func TestCache_MissUnknownKey(t *testing.T) {
	c := cache.New[int](time.Minute)
	if _, ok := c.Get("nope"); ok {
		t.Error("expected miss for unknown key")
	}
}
