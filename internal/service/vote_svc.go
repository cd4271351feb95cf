package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/RottenTrenches/Rotten-Trenches/internal/cooldown"
	"github.com/RottenTrenches/Rotten-Trenches/internal/model"
	"github.com/RottenTrenches/Rotten-Trenches/pkg/identity"
)

// VoteCaller invokes the remote vote procedure. Satisfied by
// repository.VoteRepo; tests substitute a fake to assert call counts.
type VoteCaller interface {
	CallVoteForKOL(ctx context.Context, kolID, walletAddress, voteType string) (*model.VoteResult, error)
}

// KOLFinder resolves a KOL row, used for the owner self-vote check.
type KOLFinder interface {
	FindByID(ctx context.Context, id string) (*model.KOL, error)
}

// VoteEffects receives success-only side effect triggers: feedback hints,
// achievement counters. Never invoked on any rejection or failure path.
type VoteEffects interface {
	OnVoteSuccess(ctx context.Context, kolID, voteType string, voter Voter)
}

// Voter identifies who is casting a vote. An empty Wallet means no wallet
// is connected; a fresh anonymous identity is generated per attempt.
type Voter struct {
	Wallet    string
	SessionID string
}

// ErrSelfVote rejects votes on a KOL whose recorded wallet matches the
// voter's, compared case-insensitively. Checked locally; no remote call.
var ErrSelfVote = errors.New("you cannot vote on your own profile")

// ErrVoteInFlight rejects a second submission for the same KOL while one
// is still pending (rapid double-click guard).
var ErrVoteInFlight = errors.New("vote already in progress for this profile")

// CooldownActiveError is the local fast-path rejection: a non-expired
// cooldown entry exists for the KOL, so no remote call is made.
type CooldownActiveError struct {
	Remaining time.Duration
}

func (e *CooldownActiveError) Error() string {
	return fmt.Sprintf("please wait %s before voting again", formatCooldown(e.Remaining))
}

// RateLimitedError is the server-authoritative rejection, keyed by voter
// identity rather than entity. Minutes is the server-reported remainder.
type RateLimitedError struct {
	Minutes int
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("please wait %d minutes before voting again", e.Minutes)
}

// VoteRejectedError carries any other server rejection message verbatim.
type VoteRejectedError struct {
	Message string
}

func (e *VoteRejectedError) Error() string { return e.Message }

// VoteService mediates every vote: local guards first, then the opaque
// vote_for_kol procedure as the single source of truth, then reconciliation
// of the authoritative response into the snapshot store. It never applies
// an optimistic delta; displayed tallies always come from the server.
type VoteService struct {
	caller    VoteCaller
	kols      KOLFinder
	cooldowns cooldown.Store
	snapshots *SnapshotStore
	effects   VoteEffects
	duration  time.Duration

	mu       sync.Mutex
	inFlight map[string]bool

	// newAnonWallet is swappable for tests.
	newAnonWallet func() string
}

func NewVoteService(caller VoteCaller, kols KOLFinder, cooldowns cooldown.Store,
	snapshots *SnapshotStore, effects VoteEffects, cooldownDuration time.Duration) *VoteService {
	return &VoteService{
		caller:        caller,
		kols:          kols,
		cooldowns:     cooldowns,
		snapshots:     snapshots,
		effects:       effects,
		duration:      cooldownDuration,
		inFlight:      make(map[string]bool),
		newAnonWallet: identity.NewAnonWallet,
	}
}

// CastVote runs one vote attempt end to end. Every failure is terminal for
// the attempt: there are no retries and no queued replays.
func (s *VoteService) CastVote(ctx context.Context, kolID, voteType string, voter Voter) (*model.VoteResponse, error) {
	if !model.ValidVoteType(voteType) {
		return nil, &VoteRejectedError{Message: fmt.Sprintf("invalid vote type: %s", voteType)}
	}

	// Self-vote check first: cheapest rejection, and it must not consume
	// the cooldown or reach the server.
	kol, err := s.kols.FindByID(ctx, kolID)
	if err != nil {
		return nil, err
	}
	if kol.WalletAddress != nil && identity.Same(voter.Wallet, *kol.WalletAddress) {
		return nil, ErrSelfVote
	}

	if !s.acquire(kolID) {
		return nil, ErrVoteInFlight
	}
	defer s.release(kolID)

	// Local cooldown guard. Keyed by KOL only, so it also covers the
	// anonymous and switched-wallet cases the server's per-identity
	// limit cannot see.
	if rem := s.cooldowns.Remaining(kolID); rem > 0 {
		return nil, &CooldownActiveError{Remaining: rem}
	}

	wallet := voter.Wallet
	if wallet == "" {
		// Fresh pseudo-identity per attempt. Deliberately not persisted:
		// a retry gets a new identity, which is why the local cooldown is
		// the only effective throttle for anonymous voters.
		wallet = s.newAnonWallet()
	}

	result, err := s.caller.CallVoteForKOL(ctx, kolID, wallet, voteType)
	if err != nil {
		// Transport or validation failure: no cooldown, no side effects.
		return nil, fmt.Errorf("vote failed: %w", err)
	}

	if !result.Success {
		if result.Error == model.RateLimitedError {
			// Sync the local clock to the server's so the next attempts
			// are rejected locally instead of burning a round trip.
			minutes := result.CooldownRemaining
			if minutes <= 0 {
				minutes = int(s.duration.Minutes())
			}
			if err := s.cooldowns.Start(kolID, time.Duration(minutes)*time.Minute); err != nil {
				log.Printf("vote: cooldown sync error for %s: %v", kolID, err)
			}
			return nil, &RateLimitedError{Minutes: minutes}
		}
		return nil, &VoteRejectedError{Message: result.Error}
	}

	// Authoritative overwrite: the response values replace local state
	// wholesale, never merged against a local guess.
	s.snapshots.Apply(model.KOLSnapshot{
		KOLID:      kolID,
		Upvotes:    result.Upvotes,
		Downvotes:  result.Downvotes,
		Rating:     result.Rating,
		TotalVotes: result.TotalVotes,
	})

	if err := s.cooldowns.Start(kolID, s.duration); err != nil {
		log.Printf("vote: cooldown start error for %s: %v", kolID, err)
	}

	if s.effects != nil {
		s.effects.OnVoteSuccess(ctx, kolID, voteType, voter)
	}

	return &model.VoteResponse{
		Success:    true,
		Rating:     result.Rating,
		TotalVotes: result.TotalVotes,
		Upvotes:    result.Upvotes,
		Downvotes:  result.Downvotes,
		Feedback:   "vote_" + voteType,
	}, nil
}

// CooldownRemaining exposes the local cooldown for countdown display.
func (s *VoteService) CooldownRemaining(kolID string) time.Duration {
	return s.cooldowns.Remaining(kolID)
}

func (s *VoteService) acquire(kolID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight[kolID] {
		return false
	}
	s.inFlight[kolID] = true
	return true
}

func (s *VoteService) release(kolID string) {
	s.mu.Lock()
	delete(s.inFlight, kolID)
	s.mu.Unlock()
}

// formatCooldown renders a remaining duration as "4m 30s" or "45s".
func formatCooldown(d time.Duration) string {
	d = d.Round(time.Second)
	m := int(d.Minutes())
	sec := int(d.Seconds()) % 60
	if m > 0 {
		return fmt.Sprintf("%dm %ds", m, sec)
	}
	return fmt.Sprintf("%ds", sec)
}
