package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/RottenTrenches/Rotten-Trenches/internal/model"
)

type BountyRepo struct {
	pool *pgxpool.Pool
}

func NewBountyRepo(pool *pgxpool.Pool) *BountyRepo {
	return &BountyRepo{pool: pool}
}

// List returns all bounties, newest first. Expiry filtering is left to the
// service so the cutoff instant is consistent within one request.
func (r *BountyRepo) List(ctx context.Context) ([]model.Bounty, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, creator_wallet, title, description, reward, image_url, expires_at, created_at
		FROM bounties
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bounties []model.Bounty
	for rows.Next() {
		var b model.Bounty
		err := rows.Scan(&b.ID, &b.CreatorWallet, &b.Title, &b.Description,
			&b.Reward, &b.ImageURL, &b.ExpiresAt, &b.CreatedAt)
		if err != nil {
			return nil, err
		}
		bounties = append(bounties, b)
	}
	return bounties, rows.Err()
}

// Insert stores a new bounty and returns the stored row.
func (r *BountyRepo) Insert(ctx context.Context, b model.Bounty) (*model.Bounty, error) {
	b.ID = uuid.NewString()
	err := r.pool.QueryRow(ctx, `
		INSERT INTO bounties (id, creator_wallet, title, description, reward, image_url, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`,
		b.ID, b.CreatorWallet, b.Title, b.Description, b.Reward, b.ImageURL, b.ExpiresAt).
		Scan(&b.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// InsertSubmission stores a claim against a bounty.
func (r *BountyRepo) InsertSubmission(ctx context.Context, s model.BountySubmission) (*model.BountySubmission, error) {
	s.ID = uuid.NewString()
	err := r.pool.QueryRow(ctx, `
		INSERT INTO bounty_submissions (id, bounty_id, wallet, description, proof)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`,
		s.ID, s.BountyID, s.Wallet, s.Description, s.Proof).Scan(&s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ListSubmissions returns all submissions for a bounty, oldest first.
func (r *BountyRepo) ListSubmissions(ctx context.Context, bountyID string) ([]model.BountySubmission, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, bounty_id, wallet, description, proof, created_at
		FROM bounty_submissions
		WHERE bounty_id = $1
		ORDER BY created_at ASC`, bountyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []model.BountySubmission
	for rows.Next() {
		var s model.BountySubmission
		if err := rows.Scan(&s.ID, &s.BountyID, &s.Wallet, &s.Description, &s.Proof, &s.CreatedAt); err != nil {
			return nil, err
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}

// FindBounty returns one bounty or pgx.ErrNoRows.
func (r *BountyRepo) FindBounty(ctx context.Context, id string) (*model.Bounty, error) {
	var b model.Bounty
	err := r.pool.QueryRow(ctx, `
		SELECT id, creator_wallet, title, description, reward, image_url, expires_at, created_at
		FROM bounties WHERE id = $1`, id).
		Scan(&b.ID, &b.CreatorWallet, &b.Title, &b.Description, &b.Reward, &b.ImageURL, &b.ExpiresAt, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// ExpiresAtFromDays converts a relative "expires in N days" request field
// into an absolute timestamp, nil when no expiry was requested.
func ExpiresAtFromDays(days *int) *time.Time {
	if days == nil || *days <= 0 {
		return nil
	}
	t := time.Now().AddDate(0, 0, *days)
	return &t
}
