package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type payload struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewWithClient(client, time.Minute)
}

func TestCacheRoundTrip(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "dash:exec:t1", payload{Label: "Revenue", Value: 42}); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}

	var got payload
	found, err := c.Get(ctx, "dash:exec:t1", &got)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if !found {
		t.Fatal("expected cache hit")
	}
	if got.Label != "Revenue" || got.Value != 42 {
		t.Fatalf("got %+v", got)
	}
}

func TestCacheMiss(t *testing.T) {
	c := newTestCache(t)

	var got payload
	found, err := c.Get(context.Background(), "missing", &got)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if found {
		t.Fatal("expected cache miss")
	}
}

func TestCacheInvalidate(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "k", payload{Value: 1}); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	if err := c.Invalidate(ctx, "k"); err != nil {
		t.Fatalf("Invalidate returned error: %v", err)
	}

	var got payload
	found, err := c.Get(ctx, "k", &got)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if found {
		t.Fatal("expected miss after invalidate")
	}
}

func TestNilCacheIsDisabled(t *testing.T) {
	var c *Cache

	if err := c.Set(context.Background(), "k", payload{}); err != nil {
		t.Fatalf("nil cache Set returned error: %v", err)
	}
	var got payload
	found, err := c.Get(context.Background(), "k", &got)
	if err != nil {
		t.Fatalf("nil cache Get returned error: %v", err)
	}
	if found {
		t.Fatal("nil cache should always miss")
	}
}
