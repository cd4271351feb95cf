package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/RottenTrenches/Rotten-Trenches/internal/model"
)

type VoteRepo struct {
	pool *pgxpool.Pool
}

func NewVoteRepo(pool *pgxpool.Pool) *VoteRepo {
	return &VoteRepo{pool: pool}
}

// CallVoteForKOL invokes the vote_for_kol server procedure, the single
// authority for vote validation, recording, rate limiting, and tallying.
// Its internals are opaque to this service: we pass the identity and vote
// type through and decode whatever tallies it returns. Rejections come back
// as a decoded result with Success=false, not as an error.
func (r *VoteRepo) CallVoteForKOL(ctx context.Context, kolID, walletAddress, voteType string) (*model.VoteResult, error) {
	var payload []byte
	err := r.pool.QueryRow(ctx,
		`SELECT vote_for_kol($1, $2, $3)`,
		kolID, walletAddress, voteType).Scan(&payload)
	if err != nil {
		return nil, fmt.Errorf("vote_for_kol: %w", err)
	}

	var result model.VoteResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("vote_for_kol: decode response: %w", err)
	}
	return &result, nil
}

// GetVoteHistory returns per-day up/down vote counts for a KOL, oldest day
// first, for the profile chart.
func (r *VoteRepo) GetVoteHistory(ctx context.Context, kolID string) ([]model.VoteHistoryPoint, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT date_trunc('day', created_at)::date AS day,
		       COUNT(*) FILTER (WHERE vote_type = 'up'),
		       COUNT(*) FILTER (WHERE vote_type = 'down')
		FROM kol_votes
		WHERE kol_id = $1
		GROUP BY day
		ORDER BY day ASC`, kolID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []model.VoteHistoryPoint
	for rows.Next() {
		var day time.Time
		var p model.VoteHistoryPoint
		if err := rows.Scan(&day, &p.Upvotes, &p.Downvotes); err != nil {
			return nil, err
		}
		p.Date = day.Format("Jan 2")
		history = append(history, p)
	}
	return history, rows.Err()
}
