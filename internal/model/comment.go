package model

import "time"

// Comment is a review or threaded reply on a KOL profile.
type Comment struct {
	ID              string    `json:"id"`
	KOLID           string    `json:"kolId"`
	WalletAddress   string    `json:"walletAddress"`
	Content         string    `json:"content"`
	Rating          *int      `json:"rating,omitempty"`
	ImageURL        *string   `json:"imageUrl,omitempty"`
	TradeSignature  *string   `json:"tradeSignature,omitempty"`
	ParentCommentID *string   `json:"parentCommentId,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

// CommentThread is a root comment with its profile join and ordered replies.
// Replies are ascending by creation time; the root list a builder returns
// keeps the newest-first fetch order.
type CommentThread struct {
	Comment
	Profile *UserProfile    `json:"profile"`
	Replies []CommentThread `json:"replies"`
}

// CreateCommentRequest is the API request body for posting a review or reply.
type CreateCommentRequest struct {
	Content         string  `json:"content"`
	Rating          *int    `json:"rating,omitempty"`
	ImageURL        *string `json:"imageUrl,omitempty"`
	TradeSignature  *string `json:"tradeSignature,omitempty"`
	ParentCommentID *string `json:"parentCommentId,omitempty"`
}
