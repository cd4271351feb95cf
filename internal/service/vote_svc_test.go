package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/RottenTrenches/Rotten-Trenches/internal/model"
)

// memCooldowns is an in-memory cooldown store for tests.
type memCooldowns struct {
	mu      sync.Mutex
	entries map[string]time.Time // kol id -> window end
}

func newMemCooldowns() *memCooldowns {
	return &memCooldowns{entries: make(map[string]time.Time)}
}

func (m *memCooldowns) Start(kolID string, d time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[kolID] = time.Now().Add(d)
	return nil
}

func (m *memCooldowns) Remaining(kolID string) time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	end, ok := m.entries[kolID]
	if !ok || !time.Now().Before(end) {
		return 0
	}
	return time.Until(end)
}

func (m *memCooldowns) Active(kolID string) bool { return m.Remaining(kolID) > 0 }

// fakeCaller scripts vote procedure responses and records every call.
type fakeCaller struct {
	result *model.VoteResult
	err    error

	calls   int
	wallets []string
}

func (f *fakeCaller) CallVoteForKOL(_ context.Context, _, wallet, _ string) (*model.VoteResult, error) {
	f.calls++
	f.wallets = append(f.wallets, wallet)
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeKOLs struct {
	kol *model.KOL
}

func (f *fakeKOLs) FindByID(context.Context, string) (*model.KOL, error) {
	return f.kol, nil
}

type fakeEffects struct {
	fired int
}

func (f *fakeEffects) OnVoteSuccess(context.Context, string, string, Voter) {
	f.fired++
}

func strPtr(s string) *string { return &s }

func newTestVoteService(caller *fakeCaller, owner *string) (*VoteService, *memCooldowns, *SnapshotStore, *fakeEffects) {
	cooldowns := newMemCooldowns()
	snapshots := NewSnapshotStore()
	effects := &fakeEffects{}
	kols := &fakeKOLs{kol: &model.KOL{ID: "kol-1", WalletAddress: owner}}
	svc := NewVoteService(caller, kols, cooldowns, snapshots, effects, 5*time.Minute)
	return svc, cooldowns, snapshots, effects
}

func TestCastVote_SuccessAppliesAuthoritativeValues(t *testing.T) {
	caller := &fakeCaller{result: &model.VoteResult{
		Success: true, Rating: 4.2, TotalVotes: 17, Upvotes: 12, Downvotes: 4,
	}}
	svc, cooldowns, snapshots, effects := newTestVoteService(caller, nil)

	resp, err := svc.CastVote(context.Background(), "kol-1", model.VoteUp, Voter{Wallet: "wallet-a"})
	if err != nil {
		t.Fatalf("CastVote: %v", err)
	}

	// Displayed values are exactly the procedure's, never a local guess.
	// Note total_votes (17) != upvotes + downvotes (16): the response is
	// applied as-is, no equality is assumed.
	if resp.Rating != 4.2 || resp.TotalVotes != 17 || resp.Upvotes != 12 || resp.Downvotes != 4 {
		t.Errorf("response = %+v, want server values verbatim", resp)
	}

	snap, ok := snapshots.Get("kol-1")
	if !ok {
		t.Fatal("no snapshot applied after success")
	}
	if snap.Rating != 4.2 || snap.TotalVotes != 17 || snap.Upvotes != 12 || snap.Downvotes != 4 {
		t.Errorf("snapshot = %+v, want server values verbatim", snap)
	}

	if !cooldowns.Active("kol-1") {
		t.Error("cooldown not started after successful vote")
	}
	if effects.fired != 1 {
		t.Errorf("side effects fired %d times, want 1", effects.fired)
	}
	if resp.Feedback != "vote_up" {
		t.Errorf("feedback = %q, want vote_up", resp.Feedback)
	}
}

func TestCastVote_SecondCallRejectedLocallyWithoutRemoteCall(t *testing.T) {
	caller := &fakeCaller{result: &model.VoteResult{Success: true, Rating: 4, TotalVotes: 1, Upvotes: 1}}
	svc, _, _, _ := newTestVoteService(caller, nil)

	if _, err := svc.CastVote(context.Background(), "kol-1", model.VoteUp, Voter{Wallet: "wallet-a"}); err != nil {
		t.Fatalf("first vote: %v", err)
	}
	if caller.calls != 1 {
		t.Fatalf("remote calls after first vote = %d, want 1", caller.calls)
	}

	_, err := svc.CastVote(context.Background(), "kol-1", model.VoteDown, Voter{Wallet: "wallet-a"})
	var cooldownErr *CooldownActiveError
	if !errors.As(err, &cooldownErr) {
		t.Fatalf("second vote error = %v, want CooldownActiveError", err)
	}
	if cooldownErr.Remaining <= 0 {
		t.Error("local cooldown rejection carries no remaining duration")
	}
	if caller.calls != 1 {
		t.Errorf("remote calls after second vote = %d, want 1 (no call for the rejected attempt)", caller.calls)
	}
}

func TestCastVote_ServerRateLimitSyncsLocalCooldown(t *testing.T) {
	caller := &fakeCaller{result: &model.VoteResult{
		Success: false, Error: model.RateLimitedError, CooldownRemaining: 5,
	}}
	svc, cooldowns, _, effects := newTestVoteService(caller, nil)

	_, err := svc.CastVote(context.Background(), "kol-1", model.VoteUp, Voter{Wallet: "wallet-a"})
	var rateErr *RateLimitedError
	if !errors.As(err, &rateErr) {
		t.Fatalf("error = %v, want RateLimitedError", err)
	}
	if rateErr.Minutes != 5 {
		t.Errorf("server minutes = %d, want 5", rateErr.Minutes)
	}

	// The rejection must have refreshed the local cooldown from the
	// server-reported figure, so the next attempt stays local.
	if rem := cooldowns.Remaining("kol-1"); rem <= 4*time.Minute || rem > 5*time.Minute {
		t.Errorf("local cooldown after server rejection = %v, want ~5m", rem)
	}

	_, err = svc.CastVote(context.Background(), "kol-1", model.VoteUp, Voter{Wallet: "wallet-a"})
	var cooldownErr *CooldownActiveError
	if !errors.As(err, &cooldownErr) {
		t.Fatalf("follow-up error = %v, want local CooldownActiveError", err)
	}
	if caller.calls != 1 {
		t.Errorf("remote calls = %d, want 1 (follow-up rejected locally)", caller.calls)
	}
	if effects.fired != 0 {
		t.Error("side effects fired on rate-limited vote")
	}
}

func TestCastVote_SelfVoteRejectedBeforeRemoteCall(t *testing.T) {
	caller := &fakeCaller{result: &model.VoteResult{Success: true}}
	svc, cooldowns, _, effects := newTestVoteService(caller, strPtr("OwnerWallet123"))

	tests := []struct {
		name   string
		wallet string
	}{
		{"exact match", "OwnerWallet123"},
		{"case-insensitive match", "ownerwallet123"},
		{"uppercased", "OWNERWALLET123"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CastVote(context.Background(), "kol-1", model.VoteUp, Voter{Wallet: tt.wallet})
			if !errors.Is(err, ErrSelfVote) {
				t.Fatalf("error = %v, want ErrSelfVote", err)
			}
		})
	}

	if caller.calls != 0 {
		t.Errorf("remote calls = %d, want 0", caller.calls)
	}
	if cooldowns.Active("kol-1") {
		t.Error("self-vote rejection started a cooldown")
	}
	if effects.fired != 0 {
		t.Error("side effects fired on self-vote rejection")
	}
}

func TestCastVote_RemoteFailureStartsNoCooldownAndNoEffects(t *testing.T) {
	caller := &fakeCaller{err: errors.New("connection refused")}
	svc, cooldowns, snapshots, effects := newTestVoteService(caller, nil)

	_, err := svc.CastVote(context.Background(), "kol-1", model.VoteUp, Voter{Wallet: "wallet-a"})
	if err == nil {
		t.Fatal("expected error on transport failure")
	}
	if !strings.Contains(err.Error(), "vote failed") {
		t.Errorf("error %q does not surface as a vote failure", err)
	}
	if cooldowns.Active("kol-1") {
		t.Error("cooldown started despite remote failure")
	}
	if _, ok := snapshots.Get("kol-1"); ok {
		t.Error("snapshot applied despite remote failure")
	}
	if effects.fired != 0 {
		t.Error("side effects fired on remote failure")
	}

	// A failed attempt is terminal but does not block a retry by the user.
	caller.err = nil
	caller.result = &model.VoteResult{Success: true, Rating: 3, TotalVotes: 1, Upvotes: 1}
	if _, err := svc.CastVote(context.Background(), "kol-1", model.VoteUp, Voter{Wallet: "wallet-a"}); err != nil {
		t.Fatalf("retry after failure: %v", err)
	}
}

func TestCastVote_GenericRejectionSurfacedVerbatim(t *testing.T) {
	caller := &fakeCaller{result: &model.VoteResult{Success: false, Error: "KOL not found"}}
	svc, cooldowns, _, _ := newTestVoteService(caller, nil)

	_, err := svc.CastVote(context.Background(), "kol-1", model.VoteUp, Voter{Wallet: "wallet-a"})
	var rejErr *VoteRejectedError
	if !errors.As(err, &rejErr) {
		t.Fatalf("error = %v, want VoteRejectedError", err)
	}
	if rejErr.Message != "KOL not found" {
		t.Errorf("message = %q, want server message verbatim", rejErr.Message)
	}
	if cooldowns.Active("kol-1") {
		t.Error("generic rejection started a cooldown")
	}
}

func TestCastVote_AnonymousIdentityFreshPerAttempt(t *testing.T) {
	// Known design weakness, preserved on purpose: each anonymous attempt
	// votes under a brand-new identity, so the server's per-identity rate
	// limit never matches and the local per-KOL cooldown is the only
	// effective throttle for anonymous voters.
	caller := &fakeCaller{result: &model.VoteResult{Success: true, Rating: 3, TotalVotes: 1, Upvotes: 1}}
	svc, cooldowns, _, _ := newTestVoteService(caller, nil)

	if _, err := svc.CastVote(context.Background(), "kol-1", model.VoteUp, Voter{}); err != nil {
		t.Fatalf("first anonymous vote: %v", err)
	}
	// Clear the local cooldown to reach the remote call again.
	cooldowns.entries = map[string]time.Time{}
	if _, err := svc.CastVote(context.Background(), "kol-1", model.VoteUp, Voter{}); err != nil {
		t.Fatalf("second anonymous vote: %v", err)
	}

	if len(caller.wallets) != 2 {
		t.Fatalf("remote calls = %d, want 2", len(caller.wallets))
	}
	for i, w := range caller.wallets {
		if !strings.HasPrefix(w, "anon_") {
			t.Errorf("call %d used identity %q, want anon_ prefix", i, w)
		}
	}
	if caller.wallets[0] == caller.wallets[1] {
		t.Errorf("anonymous identity %q reused across attempts", caller.wallets[0])
	}
}

func TestCastVote_InvalidVoteType(t *testing.T) {
	caller := &fakeCaller{result: &model.VoteResult{Success: true}}
	svc, _, _, _ := newTestVoteService(caller, nil)

	_, err := svc.CastVote(context.Background(), "kol-1", "sideways", Voter{Wallet: "wallet-a"})
	var rejErr *VoteRejectedError
	if !errors.As(err, &rejErr) {
		t.Fatalf("error = %v, want VoteRejectedError", err)
	}
	if caller.calls != 0 {
		t.Errorf("remote calls = %d, want 0", caller.calls)
	}
}

func TestCastVote_InFlightGuardBlocksConcurrentSubmission(t *testing.T) {
	svc, _, _, _ := newTestVoteService(&fakeCaller{result: &model.VoteResult{Success: true}}, nil)

	if !svc.acquire("kol-1") {
		t.Fatal("first acquire failed")
	}
	_, err := svc.CastVote(context.Background(), "kol-1", model.VoteUp, Voter{Wallet: "wallet-a"})
	if !errors.Is(err, ErrVoteInFlight) {
		t.Fatalf("error = %v, want ErrVoteInFlight", err)
	}
	svc.release("kol-1")

	if _, err := svc.CastVote(context.Background(), "kol-1", model.VoteUp, Voter{Wallet: "wallet-a"}); err != nil {
		t.Fatalf("vote after release: %v", err)
	}
}
