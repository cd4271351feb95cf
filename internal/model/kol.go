package model

import "time"

// KOL represents a rated crypto influencer profile.
type KOL struct {
	ID               string    `json:"id"`
	Username         string    `json:"username"`
	TwitterHandle    string    `json:"twitterHandle"`
	ProfilePicURL    *string   `json:"profilePicUrl,omitempty"`
	WalletAddress    *string   `json:"walletAddress,omitempty"`
	IsWalletVerified bool      `json:"isWalletVerified"`
	Rating           float64   `json:"rating"`
	TotalVotes       int       `json:"totalVotes"`
	Upvotes          int       `json:"upvotes"`
	Downvotes        int       `json:"downvotes"`
	CreatedAt        time.Time `json:"createdAt"`
}

// KOLSnapshot is the authoritative tally state for one KOL. It is produced
// by the vote procedure response and by realtime change notifications, and
// always replaces displayed state wholesale.
type KOLSnapshot struct {
	KOLID      string  `json:"kolId"`
	Upvotes    int     `json:"upvotes"`
	Downvotes  int     `json:"downvotes"`
	Rating     float64 `json:"rating"`
	TotalVotes int     `json:"totalVotes"`
}

// PopularityScore maps the up/down split onto a 0-100 scale.
// No votes at all reads as a neutral 50.
func PopularityScore(upvotes, downvotes int) int {
	total := upvotes + downvotes
	if total == 0 {
		return 50
	}
	return int(float64(upvotes)/float64(total)*100 + 0.5)
}

// PNLSnapshot holds the month's trading performance figures for a KOL.
type PNLSnapshot struct {
	KOLID       string     `json:"kolId"`
	MonthYear   string     `json:"monthYear"`
	PnlSol      *float64   `json:"pnlSol"`
	PnlUsd      *float64   `json:"pnlUsd"`
	WinRate     *float64   `json:"winRate"`
	WinCount    *int       `json:"winCount"`
	LossCount   *int       `json:"lossCount"`
	TotalTrades *int       `json:"totalTrades"`
	FetchedAt   *time.Time `json:"fetchedAt"`
}

// KOLResponse is the API response for a single KOL profile page.
type KOLResponse struct {
	KOL
	Popularity int          `json:"popularity"`
	PNL        *PNLSnapshot `json:"pnl,omitempty"`
}

// CreateKOLRequest is the API request body for adding a new KOL.
type CreateKOLRequest struct {
	Username      string  `json:"username"`
	TwitterHandle string  `json:"twitterHandle"`
	ProfilePicURL *string `json:"profilePicUrl,omitempty"`
	WalletAddress *string `json:"walletAddress,omitempty"`
}
