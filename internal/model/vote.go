package model

import "time"

// Vote types accepted by the vote procedure.
const (
	VoteUp   = "up"
	VoteDown = "down"
)

// ValidVoteType reports whether t is one of the accepted vote types.
func ValidVoteType(t string) bool {
	return t == VoteUp || t == VoteDown
}

// Vote represents an individual recorded vote (read-only history row).
type Vote struct {
	ID            int64     `json:"id"`
	KOLID         string    `json:"kolId"`
	WalletAddress string    `json:"-"`
	VoteType      string    `json:"voteType"`
	CreatedAt     time.Time `json:"createdAt"`
}

// VoteRequest is the API request body for casting a vote.
type VoteRequest struct {
	VoteType string `json:"voteType"`
}

// VoteResult is the decoded response of the vote_for_kol procedure.
// Tallying happens entirely server-side. Success carries the authoritative
// tallies; rejection carries an error string, with CooldownRemaining set
// (in minutes) when the error is the "Rate limited" sentinel.
type VoteResult struct {
	Success           bool    `json:"success"`
	Rating            float64 `json:"rating,omitempty"`
	TotalVotes        int     `json:"total_votes,omitempty"`
	Upvotes           int     `json:"upvotes,omitempty"`
	Downvotes         int     `json:"downvotes,omitempty"`
	Error             string  `json:"error,omitempty"`
	CooldownRemaining int     `json:"cooldown_remaining,omitempty"`
}

// RateLimitedError is the recognized sentinel in VoteResult.Error for a
// server-enforced per-identity cooldown rejection. Any other non-empty
// error string is surfaced to the caller verbatim.
const RateLimitedError = "Rate limited"

// VoteResponse is the API response after a successful vote. Feedback hints
// tell the rendering client which presentation effects to fire; they are
// only ever set on success.
type VoteResponse struct {
	Success    bool    `json:"success"`
	Rating     float64 `json:"rating"`
	TotalVotes int     `json:"totalVotes"`
	Upvotes    int     `json:"upvotes"`
	Downvotes  int     `json:"downvotes"`
	Feedback   string  `json:"feedback,omitempty"`
}

// VoteHistoryPoint is one day's aggregated votes for the profile chart.
type VoteHistoryPoint struct {
	Date      string `json:"date"`
	Upvotes   int    `json:"upvotes"`
	Downvotes int    `json:"downvotes"`
}
