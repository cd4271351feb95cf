package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/RottenTrenches/Rotten-Trenches/internal/model"
	"github.com/RottenTrenches/Rotten-Trenches/internal/repository"
	"github.com/RottenTrenches/Rotten-Trenches/pkg/identity"
)

var (
	ErrBountyFields   = errors.New("title, description and reward are required")
	ErrBountyExpired  = errors.New("this bounty has expired")
	ErrWalletRequired = errors.New("a connected wallet is required")
)

// BountyService wraps bounty CRUD. Reward settlement happens off-platform;
// this service only records postings and submissions.
type BountyService struct {
	repo  *repository.BountyRepo
	cache *CacheService
}

func NewBountyService(repo *repository.BountyRepo, cache *CacheService) *BountyService {
	return &BountyService{repo: repo, cache: cache}
}

// ListActive returns unexpired bounties, newest first, via cache-aside.
func (s *BountyService) ListActive(ctx context.Context) ([]model.Bounty, error) {
	if s.cache != nil {
		cached, err := s.cache.GetBounties(ctx)
		if err != nil {
			log.Printf("cache: bounties get error: %v", err)
		} else if cached != nil {
			var bounties []model.Bounty
			if err := json.Unmarshal(cached, &bounties); err == nil {
				return bounties, nil
			}
		}
	}

	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	active := make([]model.Bounty, 0, len(all))
	for _, b := range all {
		if b.Active(now) {
			active = append(active, b)
		}
	}

	if s.cache != nil {
		if err := s.cache.SetBounties(ctx, active); err != nil {
			log.Printf("cache: bounties set error: %v", err)
		}
	}
	return active, nil
}

// Create posts a new bounty. Bounty creation requires a connected wallet;
// there is no anonymous path here because the reward promise needs an
// accountable identity.
func (s *BountyService) Create(ctx context.Context, req model.CreateBountyRequest, creatorWallet string) (*model.Bounty, error) {
	if creatorWallet == "" || identity.IsAnon(creatorWallet) {
		return nil, ErrWalletRequired
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Description) == "" || strings.TrimSpace(req.Reward) == "" {
		return nil, ErrBountyFields
	}

	bounty, err := s.repo.Insert(ctx, model.Bounty{
		CreatorWallet: creatorWallet,
		Title:         strings.TrimSpace(req.Title),
		Description:   strings.TrimSpace(req.Description),
		Reward:        strings.TrimSpace(req.Reward),
		ImageURL:      req.ImageURL,
		ExpiresAt:     repository.ExpiresAtFromDays(req.ExpiresInDays),
	})
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.InvalidateBounties(ctx); err != nil {
			log.Printf("cache: bounties invalidate error: %v", err)
		}
	}
	return bounty, nil
}

// Submit records a claim against an active bounty.
func (s *BountyService) Submit(ctx context.Context, bountyID string, req model.SubmitBountyRequest, wallet string) (*model.BountySubmission, error) {
	if wallet == "" || identity.IsAnon(wallet) {
		return nil, ErrWalletRequired
	}
	if strings.TrimSpace(req.Description) == "" {
		return nil, ErrBountyFields
	}

	bounty, err := s.repo.FindBounty(ctx, bountyID)
	if err != nil {
		return nil, err
	}
	if !bounty.Active(time.Now()) {
		return nil, ErrBountyExpired
	}

	return s.repo.InsertSubmission(ctx, model.BountySubmission{
		BountyID:    bountyID,
		Wallet:      wallet,
		Description: strings.TrimSpace(req.Description),
		Proof:       strings.TrimSpace(req.Proof),
	})
}

// Submissions lists claims for one bounty, oldest first.
func (s *BountyService) Submissions(ctx context.Context, bountyID string) ([]model.BountySubmission, error) {
	return s.repo.ListSubmissions(ctx, bountyID)
}
