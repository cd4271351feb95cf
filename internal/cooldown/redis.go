package cooldown

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps cooldown entries in Redis, for gateways running more than
// one instance. Redis key TTL handles expiry; there is nothing to purge.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore wraps an existing Redis client. The client may be nil, in
// which case every KOL reads as not on cooldown and writes are dropped —
// the vote procedure's server-side limit still applies.
func NewRedisStore(rdb *redis.Client) *RedisStore {
	if rdb == nil {
		log.Println("cooldown: no redis client, local cooldown guard disabled")
	}
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) Start(kolID string, d time.Duration) error {
	if s.rdb == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	return s.rdb.Set(ctx, cooldownKey(kolID), time.Now().UnixMilli(), d).Err()
}

func (s *RedisStore) Remaining(kolID string) time.Duration {
	if s.rdb == nil {
		return 0
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	ttl, err := s.rdb.TTL(ctx, cooldownKey(kolID)).Result()
	if err != nil || ttl < 0 {
		return 0
	}
	return ttl
}

func (s *RedisStore) Active(kolID string) bool {
	return s.Remaining(kolID) > 0
}

func cooldownKey(kolID string) string {
	return fmt.Sprintf("cooldown:%s", kolID)
}
