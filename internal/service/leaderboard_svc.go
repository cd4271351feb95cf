package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/RottenTrenches/Rotten-Trenches/internal/model"
	"github.com/RottenTrenches/Rotten-Trenches/internal/repository"
)

// Leaderboard time ranges.
const (
	RangeWeekly  = "weekly"
	RangeMonthly = "monthly"
	RangeAll     = "all"
)

// ValidTimeRanges are the accepted leaderboard range keys.
var ValidTimeRanges = map[string]bool{
	RangeWeekly:  true,
	RangeMonthly: true,
	RangeAll:     true,
}

// LeaderboardEntry is one ranked row.
type LeaderboardEntry struct {
	Rank int `json:"rank"`
	model.KOL
	Popularity int `json:"popularity"`
}

type LeaderboardService struct {
	repo      *repository.KOLRepo
	cache     *CacheService
	snapshots *SnapshotStore
}

func NewLeaderboardService(repo *repository.KOLRepo, cache *CacheService, snapshots *SnapshotStore) *LeaderboardService {
	return &LeaderboardService{repo: repo, cache: cache, snapshots: snapshots}
}

// List returns the ranked KOL list for one sort/range pair. Uses
// cache-aside: check Redis first, fall back to DB, then populate cache.
// Realtime snapshots are overlaid after either path so tallies never go
// backwards behind a cached page.
func (s *LeaderboardService) List(ctx context.Context, sortBy, timeRange string) ([]LeaderboardEntry, error) {
	if !repository.ValidSortOptions[sortBy] {
		sortBy = repository.SortByRating
	}
	if !ValidTimeRanges[timeRange] {
		timeRange = RangeAll
	}
	variant := fmt.Sprintf("%s:%s", sortBy, timeRange)

	if s.cache != nil {
		cached, err := s.cache.GetLeaderboard(ctx, variant)
		if err != nil {
			log.Printf("cache: leaderboard get error: %v", err)
		} else if cached != nil {
			var entries []LeaderboardEntry
			if err := json.Unmarshal(cached, &entries); err == nil {
				s.overlay(entries)
				return entries, nil
			}
		}
	}

	kols, err := s.repo.List(ctx, sortBy, rangeStart(timeRange, time.Now()))
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, 0, len(kols))
	for i, k := range kols {
		entries = append(entries, LeaderboardEntry{
			Rank:       i + 1,
			KOL:        k,
			Popularity: model.PopularityScore(k.Upvotes, k.Downvotes),
		})
	}

	if s.cache != nil {
		if err := s.cache.SetLeaderboard(ctx, variant, entries); err != nil {
			log.Printf("cache: leaderboard set error: %v", err)
		}
	}

	s.overlay(entries)
	return entries, nil
}

func (s *LeaderboardService) overlay(entries []LeaderboardEntry) {
	if s.snapshots == nil {
		return
	}
	for i := range entries {
		s.snapshots.Overlay(&entries[i].KOL)
		entries[i].Popularity = model.PopularityScore(entries[i].Upvotes, entries[i].Downvotes)
	}
}

// rangeStart returns the creation-date cutoff for a leaderboard range, or
// the zero time for all-time.
func rangeStart(timeRange string, now time.Time) time.Time {
	switch timeRange {
	case RangeWeekly:
		return now.AddDate(0, 0, -7)
	case RangeMonthly:
		return now.AddDate(0, -1, 0)
	default:
		return time.Time{}
	}
}
