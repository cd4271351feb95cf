package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/RottenTrenches/Rotten-Trenches/internal/model"
)

type ProfileRepo struct {
	pool *pgxpool.Pool
}

func NewProfileRepo(pool *pgxpool.Pool) *ProfileRepo {
	return &ProfileRepo{pool: pool}
}

// FindByWallets bulk-fetches profiles for a set of wallet addresses. Wallets
// with no profile row are simply absent from the returned map; callers treat
// a missing key as "no profile", never an error.
func (r *ProfileRepo) FindByWallets(ctx context.Context, wallets []string) (map[string]*model.UserProfile, error) {
	profiles := make(map[string]*model.UserProfile, len(wallets))
	if len(wallets) == 0 {
		return profiles, nil
	}

	rows, err := r.pool.Query(ctx, `
		SELECT wallet_address, display_name, profile_pic_url, is_verified, worn_badge
		FROM user_profiles
		WHERE wallet_address = ANY($1)`, wallets)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var p model.UserProfile
		if err := rows.Scan(&p.WalletAddress, &p.DisplayName, &p.ProfilePicURL, &p.IsVerified, &p.WornBadge); err != nil {
			return nil, err
		}
		profiles[p.WalletAddress] = &p
	}
	return profiles, rows.Err()
}
