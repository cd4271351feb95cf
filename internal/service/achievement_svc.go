package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Achievement counter TTL: counters are session-scoped and evaporate with
// the session rather than accumulating forever.
const achievementTTL = 24 * time.Hour

// AchievementCounts holds one session's progress counters.
type AchievementCounts struct {
	VotesCast      int64 `json:"votesCast"`
	ReviewsWritten int64 `json:"reviewsWritten"`
}

// AchievementService keeps per-session achievement counters in Redis.
// With no Redis client it degrades to a no-op: achievements are cosmetic
// and must never block the vote or review path.
type AchievementService struct {
	rdb *redis.Client
}

func NewAchievementService(rdb *redis.Client) *AchievementService {
	return &AchievementService{rdb: rdb}
}

// IncrementVotes bumps the session's vote counter.
func (s *AchievementService) IncrementVotes(ctx context.Context, sessionID string) {
	s.increment(ctx, sessionID, "votes")
}

// IncrementReviews bumps the session's review counter.
func (s *AchievementService) IncrementReviews(ctx context.Context, sessionID string) {
	s.increment(ctx, sessionID, "reviews")
}

// Counts returns the session's counters; zeros when Redis is absent.
func (s *AchievementService) Counts(ctx context.Context, sessionID string) AchievementCounts {
	var counts AchievementCounts
	if s.rdb == nil || sessionID == "" {
		return counts
	}
	counts.VotesCast, _ = s.rdb.Get(ctx, achievementKey(sessionID, "votes")).Int64()
	counts.ReviewsWritten, _ = s.rdb.Get(ctx, achievementKey(sessionID, "reviews")).Int64()
	return counts
}

func (s *AchievementService) increment(ctx context.Context, sessionID, counter string) {
	if s.rdb == nil || sessionID == "" {
		return
	}
	key := achievementKey(sessionID, counter)
	pipe := s.rdb.Pipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, achievementTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("achievements: increment %s error: %v", counter, err)
	}
}

func achievementKey(sessionID, counter string) string {
	return fmt.Sprintf("achievements:%s:%s", sessionID, counter)
}
