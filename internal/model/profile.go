package model

// UserProfile is the public profile attached to a wallet address. Joined
// into comment threads by address lookup; a wallet with no profile row is
// rendered as an anonymous, unverified identity.
type UserProfile struct {
	WalletAddress string  `json:"walletAddress"`
	DisplayName   *string `json:"displayName"`
	ProfilePicURL *string `json:"profilePicUrl"`
	IsVerified    bool    `json:"isVerified"`
	WornBadge     *string `json:"wornBadge"`
}

// StatsResponse is the API response for platform-wide statistics.
type StatsResponse struct {
	TotalKOLs      int `json:"totalKols"`
	TotalVotes     int `json:"totalVotes"`
	TotalComments  int `json:"totalComments"`
	ActiveBounties int `json:"activeBounties"`
}
