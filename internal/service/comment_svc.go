package service

import (
	"context"
	"errors"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/RottenTrenches/Rotten-Trenches/internal/model"
	"github.com/RottenTrenches/Rotten-Trenches/pkg/identity"
)

// CommentStore is the comment persistence surface used by CommentService.
// Satisfied by repository.CommentRepo.
type CommentStore interface {
	ListByKOL(ctx context.Context, kolID string) ([]model.Comment, error)
	Insert(ctx context.Context, c model.Comment) (*model.Comment, error)
	ParentExists(ctx context.Context, kolID, commentID string) (bool, error)
}

// ProfileFinder bulk-resolves user profiles by wallet address.
type ProfileFinder interface {
	FindByWallets(ctx context.Context, wallets []string) (map[string]*model.UserProfile, error)
}

// ReviewEffects receives the success-only review side effect (achievement
// counter increments).
type ReviewEffects interface {
	OnReviewPosted(ctx context.Context, kolID string, voter Voter)
}

const maxCommentLen = 2000

var (
	ErrEmptyContent   = errors.New("review content is required")
	ErrContentTooLong = errors.New("review content is too long")
	ErrBadRating      = errors.New("rating must be between 1 and 5")
	ErrParentNotFound = errors.New("the comment you are replying to no longer exists")
)

// CommentService fetches and assembles comment threads and handles review
// and reply submission. Every fetch runs the full cycle: comments, distinct
// wallet set, bulk profile lookup, thread assembly.
type CommentService struct {
	comments  CommentStore
	profiles  ProfileFinder
	threads   *ThreadService
	effects   ReviewEffects
	sanitizer *bluemonday.Policy
}

func NewCommentService(comments CommentStore, profiles ProfileFinder, threads *ThreadService, effects ReviewEffects) *CommentService {
	return &CommentService{
		comments: comments,
		profiles: profiles,
		threads:  threads,
		effects:  effects,
		// Reviews are plain text; strip all markup on the way in.
		sanitizer: bluemonday.StrictPolicy(),
	}
}

// FetchThreads returns the threaded comment tree for a KOL.
func (s *CommentService) FetchThreads(ctx context.Context, kolID string) ([]model.CommentThread, ThreadBuildReport, error) {
	comments, err := s.comments.ListByKOL(ctx, kolID)
	if err != nil {
		return nil, ThreadBuildReport{}, err
	}
	if len(comments) == 0 {
		return []model.CommentThread{}, ThreadBuildReport{}, nil
	}

	profiles, err := s.profiles.FindByWallets(ctx, distinctWallets(comments))
	if err != nil {
		return nil, ThreadBuildReport{}, err
	}

	threads, report := s.threads.Build(comments, profiles)
	return threads, report, nil
}

// PostReview stores a top-level review or a threaded reply. Replies carry a
// parent comment id and no rating; top-level reviews require a 1-5 rating.
// An empty voter wallet posts under a fresh anonymous identity.
func (s *CommentService) PostReview(ctx context.Context, kolID string, req model.CreateCommentRequest, voter Voter) (*model.Comment, error) {
	content := strings.TrimSpace(s.sanitizer.Sanitize(req.Content))
	if content == "" {
		return nil, ErrEmptyContent
	}
	if len(content) > maxCommentLen {
		return nil, ErrContentTooLong
	}

	if req.ParentCommentID == nil {
		if req.Rating == nil || *req.Rating < 1 || *req.Rating > 5 {
			return nil, ErrBadRating
		}
	} else {
		ok, err := s.comments.ParentExists(ctx, kolID, *req.ParentCommentID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrParentNotFound
		}
		// Replies never carry a star rating.
		req.Rating = nil
	}

	wallet := voter.Wallet
	if wallet == "" {
		wallet = identity.NewAnonWallet()
	}

	stored, err := s.comments.Insert(ctx, model.Comment{
		KOLID:           kolID,
		WalletAddress:   wallet,
		Content:         content,
		Rating:          req.Rating,
		ImageURL:        req.ImageURL,
		TradeSignature:  req.TradeSignature,
		ParentCommentID: req.ParentCommentID,
	})
	if err != nil {
		return nil, err
	}

	if s.effects != nil && req.ParentCommentID == nil {
		s.effects.OnReviewPosted(ctx, kolID, voter)
	}
	return stored, nil
}

// distinctWallets collects the unique wallet addresses in fetch order.
func distinctWallets(comments []model.Comment) []string {
	seen := make(map[string]bool, len(comments))
	var wallets []string
	for _, c := range comments {
		if !seen[c.WalletAddress] {
			seen[c.WalletAddress] = true
			wallets = append(wallets, c.WalletAddress)
		}
	}
	return wallets
}
