package service

import (
	"context"
	"log"
)

// FeedbackEffects is the production VoteEffects/ReviewEffects wiring:
// session achievement counters plus cache invalidation so the next read
// reflects the vote immediately. Presentation feedback itself (sound,
// particles) is the rendering client's job, driven by the response's
// feedback hint.
type FeedbackEffects struct {
	achievements *AchievementService
	cache        *CacheService
}

func NewFeedbackEffects(achievements *AchievementService, cache *CacheService) *FeedbackEffects {
	return &FeedbackEffects{achievements: achievements, cache: cache}
}

func (e *FeedbackEffects) OnVoteSuccess(ctx context.Context, kolID, voteType string, voter Voter) {
	if e.achievements != nil {
		e.achievements.IncrementVotes(ctx, voter.SessionID)
	}
	if e.cache != nil {
		if err := e.cache.InvalidateKOL(ctx, kolID); err != nil {
			log.Printf("cache: invalidate kol error: %v", err)
		}
		if err := e.cache.InvalidateLeaderboards(ctx); err != nil {
			log.Printf("cache: invalidate leaderboards error: %v", err)
		}
	}
}

func (e *FeedbackEffects) OnReviewPosted(ctx context.Context, kolID string, voter Voter) {
	if e.achievements != nil {
		e.achievements.IncrementReviews(ctx, voter.SessionID)
	}
}
