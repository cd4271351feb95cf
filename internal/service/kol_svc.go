package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/RottenTrenches/Rotten-Trenches/internal/model"
	"github.com/RottenTrenches/Rotten-Trenches/internal/repository"
)

// KOLService serves the profile page reads and new-KOL submissions.
type KOLService struct {
	repo      *repository.KOLRepo
	votes     *repository.VoteRepo
	cache     *CacheService
	snapshots *SnapshotStore
}

func NewKOLService(repo *repository.KOLRepo, votes *repository.VoteRepo, cache *CacheService, snapshots *SnapshotStore) *KOLService {
	return &KOLService{repo: repo, votes: votes, cache: cache, snapshots: snapshots}
}

// Lookup returns the full profile response for one KOL.
// Uses cache-aside: check Redis first, fall back to DB, then populate cache.
// The latest realtime snapshot is overlaid after either path.
func (s *KOLService) Lookup(ctx context.Context, kolID string) (*model.KOLResponse, error) {
	if s.cache != nil {
		cached, err := s.cache.GetKOL(ctx, kolID)
		if err != nil {
			log.Printf("cache: kol get error: %v", err)
		} else if cached != nil {
			var resp model.KOLResponse
			if err := json.Unmarshal(cached, &resp); err == nil {
				s.refresh(&resp)
				return &resp, nil
			}
		}
	}

	kol, err := s.repo.FindByID(ctx, kolID)
	if err != nil {
		return nil, err
	}

	resp := &model.KOLResponse{KOL: *kol}

	// PnL is best-effort: a missing snapshot just means "not fetched yet".
	monthYear := time.Now().Format("2006-01")
	if pnl, err := s.repo.GetPNLSnapshot(ctx, kolID, monthYear); err == nil {
		resp.PNL = pnl
	}

	if s.cache != nil {
		if err := s.cache.SetKOL(ctx, kolID, resp); err != nil {
			log.Printf("cache: kol set error: %v", err)
		}
	}

	s.refresh(resp)
	return resp, nil
}

// List returns every KOL with snapshot overlays applied, sorted by sortBy.
func (s *KOLService) List(ctx context.Context, sortBy string) ([]model.KOL, error) {
	kols, err := s.repo.List(ctx, sortBy, time.Time{})
	if err != nil {
		return nil, err
	}
	for i := range kols {
		if s.snapshots != nil {
			s.snapshots.Overlay(&kols[i])
		}
	}
	if kols == nil {
		kols = []model.KOL{}
	}
	return kols, nil
}

// Create registers a new KOL profile.
func (s *KOLService) Create(ctx context.Context, req model.CreateKOLRequest) (*model.KOL, error) {
	return s.repo.Create(ctx, req)
}

// VoteHistory returns the per-day chart series for a KOL.
func (s *KOLService) VoteHistory(ctx context.Context, kolID string) ([]model.VoteHistoryPoint, error) {
	history, err := s.votes.GetVoteHistory(ctx, kolID)
	if err != nil {
		return nil, err
	}
	if history == nil {
		history = []model.VoteHistoryPoint{}
	}
	return history, nil
}

// Stats returns platform-wide totals.
func (s *KOLService) Stats(ctx context.Context) (*model.StatsResponse, error) {
	return s.repo.GetStats(ctx)
}

// RequestPNLRefresh queues an admin-triggered PnL refresh.
func (s *KOLService) RequestPNLRefresh(ctx context.Context, kolID, requestedBy string) error {
	if _, err := s.repo.FindByID(ctx, kolID); err != nil {
		return err
	}
	return s.repo.MarkPNLRefreshRequested(ctx, kolID, requestedBy)
}

func (s *KOLService) refresh(resp *model.KOLResponse) {
	if s.snapshots != nil {
		s.snapshots.Overlay(&resp.KOL)
	}
	resp.Popularity = model.PopularityScore(resp.Upvotes, resp.Downvotes)
}
