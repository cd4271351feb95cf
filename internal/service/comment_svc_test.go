package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/RottenTrenches/Rotten-Trenches/internal/model"
)

type fakeCommentStore struct {
	comments []model.Comment
	inserted []model.Comment
	parents  map[string]bool

	listCalls    int
	profileCalls *int
}

func (f *fakeCommentStore) ListByKOL(context.Context, string) ([]model.Comment, error) {
	f.listCalls++
	return f.comments, nil
}

func (f *fakeCommentStore) Insert(_ context.Context, c model.Comment) (*model.Comment, error) {
	c.ID = "generated"
	c.CreatedAt = time.Now()
	f.inserted = append(f.inserted, c)
	return &c, nil
}

func (f *fakeCommentStore) ParentExists(_ context.Context, _, id string) (bool, error) {
	return f.parents[id], nil
}

type fakeProfiles struct {
	profiles map[string]*model.UserProfile
	requests [][]string
}

func (f *fakeProfiles) FindByWallets(_ context.Context, wallets []string) (map[string]*model.UserProfile, error) {
	f.requests = append(f.requests, wallets)
	return f.profiles, nil
}

type fakeReviewEffects struct {
	posted int
}

func (f *fakeReviewEffects) OnReviewPosted(context.Context, string, Voter) { f.posted++ }

func intPtr(n int) *int { return &n }

func TestFetchThreads_JoinsProfilesByDistinctWallet(t *testing.T) {
	store := &fakeCommentStore{comments: []model.Comment{
		comment("2", nil, at(20), "walletA"),
		comment("1", nil, at(10), "walletA"),
		comment("0", nil, at(5), "walletB"),
	}}
	profiles := &fakeProfiles{profiles: map[string]*model.UserProfile{}}
	svc := NewCommentService(store, profiles, NewThreadService(), nil)

	threads, _, err := svc.FetchThreads(context.Background(), "kol-1")
	if err != nil {
		t.Fatalf("FetchThreads: %v", err)
	}
	if len(threads) != 3 {
		t.Errorf("threads = %d, want 3", len(threads))
	}

	// One bulk lookup with deduplicated wallets.
	if len(profiles.requests) != 1 {
		t.Fatalf("profile lookups = %d, want 1", len(profiles.requests))
	}
	if got := profiles.requests[0]; len(got) != 2 {
		t.Errorf("requested wallets = %v, want 2 distinct", got)
	}
}

func TestFetchThreads_EmptySkipsProfileLookup(t *testing.T) {
	store := &fakeCommentStore{}
	profiles := &fakeProfiles{}
	svc := NewCommentService(store, profiles, NewThreadService(), nil)

	threads, report, err := svc.FetchThreads(context.Background(), "kol-1")
	if err != nil {
		t.Fatalf("FetchThreads: %v", err)
	}
	if len(threads) != 0 || report.Roots != 0 {
		t.Errorf("threads = %v, report = %+v, want empty", threads, report)
	}
	if len(profiles.requests) != 0 {
		t.Error("profile lookup performed on empty comment set")
	}
}

func TestPostReview_SanitizesMarkup(t *testing.T) {
	store := &fakeCommentStore{}
	svc := NewCommentService(store, &fakeProfiles{}, NewThreadService(), nil)

	_, err := svc.PostReview(context.Background(), "kol-1", model.CreateCommentRequest{
		Content: `great calls <script>alert("x")</script> all year`,
		Rating:  intPtr(5),
	}, Voter{Wallet: "walletA"})
	if err != nil {
		t.Fatalf("PostReview: %v", err)
	}

	got := store.inserted[0].Content
	if strings.Contains(got, "<script>") {
		t.Errorf("markup survived sanitization: %q", got)
	}
	if !strings.Contains(got, "great calls") {
		t.Errorf("legitimate text lost: %q", got)
	}
}

func TestPostReview_Validation(t *testing.T) {
	tests := []struct {
		name    string
		req     model.CreateCommentRequest
		wantErr error
	}{
		{"empty content", model.CreateCommentRequest{Content: "  ", Rating: intPtr(4)}, ErrEmptyContent},
		{"markup only", model.CreateCommentRequest{Content: "<b></b>", Rating: intPtr(4)}, ErrEmptyContent},
		{"missing rating", model.CreateCommentRequest{Content: "solid"}, ErrBadRating},
		{"rating too low", model.CreateCommentRequest{Content: "solid", Rating: intPtr(0)}, ErrBadRating},
		{"rating too high", model.CreateCommentRequest{Content: "solid", Rating: intPtr(6)}, ErrBadRating},
		{"too long", model.CreateCommentRequest{Content: strings.Repeat("a", maxCommentLen+1), Rating: intPtr(3)}, ErrContentTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewCommentService(&fakeCommentStore{}, &fakeProfiles{}, NewThreadService(), nil)
			_, err := svc.PostReview(context.Background(), "kol-1", tt.req, Voter{Wallet: "w"})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestPostReview_ReplyRules(t *testing.T) {
	store := &fakeCommentStore{parents: map[string]bool{"parent-1": true}}
	effects := &fakeReviewEffects{}
	svc := NewCommentService(store, &fakeProfiles{}, NewThreadService(), effects)

	// Reply to a live parent: rating stripped, no review achievement.
	_, err := svc.PostReview(context.Background(), "kol-1", model.CreateCommentRequest{
		Content:         "agreed",
		Rating:          intPtr(5),
		ParentCommentID: strPtr("parent-1"),
	}, Voter{Wallet: "w"})
	if err != nil {
		t.Fatalf("reply: %v", err)
	}
	if store.inserted[0].Rating != nil {
		t.Error("reply kept a star rating")
	}
	if effects.posted != 0 {
		t.Error("reply fired the review achievement")
	}

	// Reply to a dead parent is rejected before insert.
	_, err = svc.PostReview(context.Background(), "kol-1", model.CreateCommentRequest{
		Content:         "agreed",
		ParentCommentID: strPtr("gone"),
	}, Voter{Wallet: "w"})
	if !errors.Is(err, ErrParentNotFound) {
		t.Errorf("error = %v, want ErrParentNotFound", err)
	}
	if len(store.inserted) != 1 {
		t.Errorf("inserts = %d, want 1", len(store.inserted))
	}
}

func TestPostReview_AnonymousWalletGenerated(t *testing.T) {
	store := &fakeCommentStore{}
	svc := NewCommentService(store, &fakeProfiles{}, NewThreadService(), nil)

	for i := 0; i < 2; i++ {
		if _, err := svc.PostReview(context.Background(), "kol-1", model.CreateCommentRequest{
			Content: "nice thread",
			Rating:  intPtr(4),
		}, Voter{}); err != nil {
			t.Fatalf("PostReview: %v", err)
		}
	}

	a, b := store.inserted[0].WalletAddress, store.inserted[1].WalletAddress
	if !strings.HasPrefix(a, "anon_") || !strings.HasPrefix(b, "anon_") {
		t.Errorf("anonymous reviews used wallets %q, %q", a, b)
	}
	if a == b {
		t.Error("anonymous identity reused across review posts")
	}
}

func TestPostReview_EffectsFireOnTopLevelSuccess(t *testing.T) {
	effects := &fakeReviewEffects{}
	svc := NewCommentService(&fakeCommentStore{}, &fakeProfiles{}, NewThreadService(), effects)

	if _, err := svc.PostReview(context.Background(), "kol-1", model.CreateCommentRequest{
		Content: "keeps hitting",
		Rating:  intPtr(5),
	}, Voter{Wallet: "w"}); err != nil {
		t.Fatalf("PostReview: %v", err)
	}
	if effects.posted != 1 {
		t.Errorf("review achievements fired %d times, want 1", effects.posted)
	}
}
