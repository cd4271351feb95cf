package model

import "time"

// Bounty is a community task posted against a reward.
type Bounty struct {
	ID            string     `json:"id"`
	CreatorWallet string     `json:"creatorWallet"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Reward        string     `json:"reward"`
	ImageURL      *string    `json:"imageUrl,omitempty"`
	ExpiresAt     *time.Time `json:"expiresAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// Active reports whether the bounty has not yet expired at the given time.
// Bounties with no expiry never expire.
func (b *Bounty) Active(now time.Time) bool {
	return b.ExpiresAt == nil || b.ExpiresAt.After(now)
}

// BountySubmission is a claim against a bounty with proof of completion.
type BountySubmission struct {
	ID          string    `json:"id"`
	BountyID    string    `json:"bountyId"`
	Wallet      string    `json:"wallet"`
	Description string    `json:"description"`
	Proof       string    `json:"proof"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CreateBountyRequest is the API request body for posting a bounty.
type CreateBountyRequest struct {
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	Reward        string  `json:"reward"`
	ImageURL      *string `json:"imageUrl,omitempty"`
	ExpiresInDays *int    `json:"expiresInDays,omitempty"`
}

// SubmitBountyRequest is the API request body for claiming a bounty.
type SubmitBountyRequest struct {
	Description string `json:"description"`
	Proof       string `json:"proof"`
}
