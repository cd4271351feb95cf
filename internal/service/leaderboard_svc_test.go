package service

import (
	"testing"
	"time"

	"github.com/RottenTrenches/Rotten-Trenches/internal/model"
)

func TestPopularityScore(t *testing.T) {
	tests := []struct {
		name     string
		up, down int
		want     int
	}{
		{"no votes is neutral", 0, 0, 50},
		{"all upvotes", 10, 0, 100},
		{"all downvotes", 0, 10, 0},
		{"even split", 5, 5, 50},
		{"two thirds", 2, 1, 67},
		{"one third", 1, 2, 33},
		{"single upvote", 1, 0, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := model.PopularityScore(tt.up, tt.down); got != tt.want {
				t.Errorf("PopularityScore(%d, %d) = %d, want %d", tt.up, tt.down, got, tt.want)
			}
		})
	}
}

func TestRangeStart(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	if got := rangeStart(RangeWeekly, now); !got.Equal(now.AddDate(0, 0, -7)) {
		t.Errorf("weekly start = %v", got)
	}
	if got := rangeStart(RangeMonthly, now); !got.Equal(now.AddDate(0, -1, 0)) {
		t.Errorf("monthly start = %v", got)
	}
	if got := rangeStart(RangeAll, now); !got.IsZero() {
		t.Errorf("all-time start = %v, want zero", got)
	}
}

func TestLeaderboardOverlay_RefreshesTalliesAndPopularity(t *testing.T) {
	snapshots := NewSnapshotStore()
	svc := &LeaderboardService{snapshots: snapshots}

	entries := []LeaderboardEntry{
		{Rank: 1, KOL: model.KOL{ID: "k1", Upvotes: 1, Downvotes: 1, Rating: 2.5, TotalVotes: 2}, Popularity: 50},
	}

	snapshots.Apply(model.KOLSnapshot{KOLID: "k1", Upvotes: 9, Downvotes: 1, Rating: 4.5, TotalVotes: 10})
	svc.overlay(entries)

	if entries[0].Upvotes != 9 || entries[0].TotalVotes != 10 {
		t.Errorf("overlay missed tallies: %+v", entries[0].KOL)
	}
	if entries[0].Popularity != 90 {
		t.Errorf("popularity = %d, want 90 after overlay", entries[0].Popularity)
	}
}
