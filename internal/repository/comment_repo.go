package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/RottenTrenches/Rotten-Trenches/internal/model"
)

type CommentRepo struct {
	pool *pgxpool.Pool
}

func NewCommentRepo(pool *pgxpool.Pool) *CommentRepo {
	return &CommentRepo{pool: pool}
}

// ListByKOL returns all comments for a KOL, newest first. The full set is
// fetched every time; thread assembly happens in the service layer.
func (r *CommentRepo) ListByKOL(ctx context.Context, kolID string) ([]model.Comment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, kol_id, wallet_address, content, rating, image_url,
		       trade_signature, parent_comment_id, created_at
		FROM kol_comments
		WHERE kol_id = $1
		ORDER BY created_at DESC`, kolID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []model.Comment
	for rows.Next() {
		var c model.Comment
		err := rows.Scan(&c.ID, &c.KOLID, &c.WalletAddress, &c.Content, &c.Rating,
			&c.ImageURL, &c.TradeSignature, &c.ParentCommentID, &c.CreatedAt)
		if err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// Insert stores a new review or reply and returns the stored row.
func (r *CommentRepo) Insert(ctx context.Context, c model.Comment) (*model.Comment, error) {
	c.ID = uuid.NewString()
	err := r.pool.QueryRow(ctx, `
		INSERT INTO kol_comments (id, kol_id, wallet_address, content, rating,
		                          image_url, trade_signature, parent_comment_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at`,
		c.ID, c.KOLID, c.WalletAddress, c.Content, c.Rating,
		c.ImageURL, c.TradeSignature, c.ParentCommentID).Scan(&c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ParentExists reports whether a comment exists on the given KOL, used to
// validate reply targets before insert.
func (r *CommentRepo) ParentExists(ctx context.Context, kolID, commentID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM kol_comments WHERE id = $1 AND kol_id = $2)`,
		commentID, kolID).Scan(&exists)
	return exists, err
}
