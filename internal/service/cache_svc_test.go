package service

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestCacheDisabledSkipsHooks(t *testing.T) {
	cache := NewCacheService("")

	var hits, misses int
	cache.OnHit = func() { hits++ }
	cache.OnMiss = func() { misses++ }

	ctx := context.Background()
	if data, err := cache.GetKOL(ctx, "kol-1"); data != nil || err != nil {
		t.Fatalf("disabled cache GetKOL = (%v, %v), want (nil, nil)", data, err)
	}
	if data, err := cache.GetLeaderboard(ctx, "communityRating:all"); data != nil || err != nil {
		t.Fatalf("disabled cache GetLeaderboard = (%v, %v), want (nil, nil)", data, err)
	}
	if data, err := cache.GetBounties(ctx); data != nil || err != nil {
		t.Fatalf("disabled cache GetBounties = (%v, %v), want (nil, nil)", data, err)
	}

	if hits != 0 || misses != 0 {
		t.Fatalf("disabled cache recorded hits=%d misses=%d, want none", hits, misses)
	}
}

func TestCacheLookupErrorCountsAsMiss(t *testing.T) {
	// Point the client at a port nothing listens on. The lookup fails,
	// the caller falls back to the database, and that counts as a miss.
	cache := &CacheService{rdb: redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:0",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})}
	defer cache.Close()

	var hits, misses int
	cache.OnHit = func() { hits++ }
	cache.OnMiss = func() { misses++ }

	if _, err := cache.GetKOL(context.Background(), "kol-1"); err == nil {
		t.Fatal("expected lookup error from unreachable redis")
	}
	if hits != 0 || misses != 1 {
		t.Fatalf("recorded hits=%d misses=%d, want 0 hits and 1 miss", hits, misses)
	}
}
