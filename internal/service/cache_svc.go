package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis key TTLs. KOL rows churn with every vote, so they get a short TTL;
// the leaderboard is also refreshed by realtime invalidation and the PnL
// auto-refresh cycle.
const (
	KOLCacheTTL         = 2 * time.Minute
	LeaderboardCacheTTL = 5 * time.Minute
	BountyCacheTTL      = 5 * time.Minute
)

// CacheService provides a Redis cache-aside layer for KOL, leaderboard and
// bounty reads.
type CacheService struct {
	rdb *redis.Client

	// OnHit and OnMiss, when set, observe lookup outcomes. Wired to the
	// cache counters at startup; nil hooks are skipped.
	OnHit  func()
	OnMiss func()
}

// NewCacheService creates a new CacheService. If redisURL is empty or
// connection fails, it returns a CacheService with a nil client (cache
// operations become no-ops).
func NewCacheService(redisURL string) *CacheService {
	if redisURL == "" {
		log.Println("redis: no URL configured, caching disabled")
		return &CacheService{}
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Printf("redis: invalid URL %q, caching disabled: %v", redisURL, err)
		return &CacheService{}
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("redis: connection failed, caching disabled: %v", err)
		return &CacheService{}
	}

	log.Println("redis: connected, caching enabled")
	return &CacheService{rdb: rdb}
}

// Client returns the underlying Redis client (for health checks and the
// Redis-backed cooldown/achievement stores). May be nil.
func (c *CacheService) Client() *redis.Client {
	return c.rdb
}

// lookup reads one key and records the outcome on the hit/miss hooks.
// Errors count as misses since the caller falls back to the database.
func (c *CacheService) lookup(ctx context.Context, key string) ([]byte, error) {
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		c.markMiss()
		return nil, nil
	}
	if err != nil {
		c.markMiss()
		return nil, err
	}
	c.markHit()
	return data, nil
}

func (c *CacheService) markHit() {
	if c.OnHit != nil {
		c.OnHit()
	}
}

func (c *CacheService) markMiss() {
	if c.OnMiss != nil {
		c.OnMiss()
	}
}

// GetKOL retrieves a cached KOL response. Returns nil if not cached or cache is disabled.
func (c *CacheService) GetKOL(ctx context.Context, kolID string) ([]byte, error) {
	if c.rdb == nil {
		return nil, nil
	}
	return c.lookup(ctx, kolCacheKey(kolID))
}

// SetKOL stores a KOL response in cache.
func (c *CacheService) SetKOL(ctx context.Context, kolID string, data interface{}) error {
	if c.rdb == nil {
		return nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, kolCacheKey(kolID), b, KOLCacheTTL).Err()
}

// InvalidateKOL removes a KOL from cache (called when a realtime update or
// a direct vote response supersedes the cached row).
func (c *CacheService) InvalidateKOL(ctx context.Context, kolID string) error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Del(ctx, kolCacheKey(kolID)).Err()
}

// GetLeaderboard retrieves a cached leaderboard page for one sort/range pair.
func (c *CacheService) GetLeaderboard(ctx context.Context, variant string) ([]byte, error) {
	if c.rdb == nil {
		return nil, nil
	}
	return c.lookup(ctx, leaderboardKey(variant))
}

// SetLeaderboard stores a leaderboard page in cache.
func (c *CacheService) SetLeaderboard(ctx context.Context, variant string, data interface{}) error {
	if c.rdb == nil {
		return nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, leaderboardKey(variant), b, LeaderboardCacheTTL).Err()
}

// InvalidateLeaderboards drops every cached leaderboard variant.
func (c *CacheService) InvalidateLeaderboards(ctx context.Context) error {
	if c.rdb == nil {
		return nil
	}
	iter := c.rdb.Scan(ctx, 0, "leaderboard:*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

// GetBounties retrieves the cached active-bounty list.
func (c *CacheService) GetBounties(ctx context.Context) ([]byte, error) {
	if c.rdb == nil {
		return nil, nil
	}
	return c.lookup(ctx, "bounties:active")
}

// SetBounties stores the active-bounty list in cache.
func (c *CacheService) SetBounties(ctx context.Context, data interface{}) error {
	if c.rdb == nil {
		return nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, "bounties:active", b, BountyCacheTTL).Err()
}

// InvalidateBounties removes the bounty list from cache.
func (c *CacheService) InvalidateBounties(ctx context.Context) error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Del(ctx, "bounties:active").Err()
}

// Close shuts down the Redis connection.
func (c *CacheService) Close() error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}

func kolCacheKey(kolID string) string {
	return fmt.Sprintf("kol:%s", kolID)
}

func leaderboardKey(variant string) string {
	return fmt.Sprintf("leaderboard:%s", variant)
}
