package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/RottenTrenches/Rotten-Trenches/internal/model"
)

type KOLRepo struct {
	pool *pgxpool.Pool
}

func NewKOLRepo(pool *pgxpool.Pool) *KOLRepo {
	return &KOLRepo{pool: pool}
}

// Sort options accepted by List.
const (
	SortByRating         = "communityRating"
	SortByPnl            = "pnl"
	SortByWinRate        = "winRate"
	SortByPopularityHigh = "popularityHigh"
	SortByPopularityLow  = "popularityLow"
)

// ValidSortOptions are the accepted leaderboard sort keys.
var ValidSortOptions = map[string]bool{
	SortByRating:         true,
	SortByPnl:            true,
	SortByWinRate:        true,
	SortByPopularityHigh: true,
	SortByPopularityLow:  true,
}

const kolColumns = `id, username, twitter_handle, profile_pic_url, wallet_address,
	is_wallet_verified, rating, total_votes, upvotes, downvotes, created_at`

// FindByID returns one KOL or pgx.ErrNoRows.
func (r *KOLRepo) FindByID(ctx context.Context, id string) (*model.KOL, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+kolColumns+` FROM kols WHERE id = $1`, id)
	return scanKOL(row)
}

// List returns KOLs ordered by the given sort option. since bounds the
// creation date for the weekly/monthly leaderboard ranges; pass the zero
// time for all-time.
func (r *KOLRepo) List(ctx context.Context, sortBy string, since time.Time) ([]model.KOL, error) {
	order := "rating DESC, total_votes DESC"
	switch sortBy {
	case SortByPnl:
		order = "p.pnl_sol DESC NULLS LAST"
	case SortByWinRate:
		order = "p.win_rate DESC NULLS LAST"
	case SortByPopularityHigh:
		// No votes at all sorts as the neutral midpoint, matching
		// model.PopularityScore.
		order = "CASE WHEN upvotes + downvotes = 0 THEN 0.5 ELSE upvotes::float / (upvotes + downvotes) END DESC"
	case SortByPopularityLow:
		order = "CASE WHEN upvotes + downvotes = 0 THEN 0.5 ELSE upvotes::float / (upvotes + downvotes) END ASC"
	}

	query := fmt.Sprintf(`
		SELECT k.id, k.username, k.twitter_handle, k.profile_pic_url, k.wallet_address,
		       k.is_wallet_verified, k.rating, k.total_votes, k.upvotes, k.downvotes, k.created_at
		FROM kols k
		LEFT JOIN kol_pnl_snapshots p
		       ON p.kol_id = k.id AND p.month_year = to_char(NOW(), 'YYYY-MM')
		WHERE ($1::timestamptz = 'epoch'::timestamptz OR k.created_at >= $1)
		ORDER BY %s`, order)

	sinceArg := since
	if since.IsZero() {
		sinceArg = time.Unix(0, 0).UTC()
	}

	rows, err := r.pool.Query(ctx, query, sinceArg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var kols []model.KOL
	for rows.Next() {
		k, err := scanKOL(rows)
		if err != nil {
			return nil, err
		}
		kols = append(kols, *k)
	}
	return kols, rows.Err()
}

// Create inserts a new KOL profile and returns it with defaults applied.
func (r *KOLRepo) Create(ctx context.Context, req model.CreateKOLRequest) (*model.KOL, error) {
	id := uuid.NewString()
	row := r.pool.QueryRow(ctx, `
		INSERT INTO kols (id, username, twitter_handle, profile_pic_url, wallet_address)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+kolColumns,
		id, req.Username, req.TwitterHandle, req.ProfilePicURL, req.WalletAddress)
	return scanKOL(row)
}

// GetPNLSnapshot returns the KOL's PnL figures for the given month
// (format "2006-01"), or nil if no snapshot exists yet.
func (r *KOLRepo) GetPNLSnapshot(ctx context.Context, kolID, monthYear string) (*model.PNLSnapshot, error) {
	var p model.PNLSnapshot
	p.KOLID = kolID
	p.MonthYear = monthYear
	err := r.pool.QueryRow(ctx, `
		SELECT pnl_sol, pnl_usd, win_rate, win_count, loss_count, total_trades, fetched_at
		FROM kol_pnl_snapshots
		WHERE kol_id = $1 AND month_year = $2`,
		kolID, monthYear).Scan(&p.PnlSol, &p.PnlUsd, &p.WinRate, &p.WinCount, &p.LossCount, &p.TotalTrades, &p.FetchedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// MarkPNLRefreshRequested records an admin-triggered refresh request. The
// fetcher that talks to the trade data provider runs outside this service
// and drains this queue.
func (r *KOLRepo) MarkPNLRefreshRequested(ctx context.Context, kolID, requestedBy string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO pnl_refresh_requests (kol_id, requested_by, requested_at)
		VALUES ($1, $2, NOW())`, kolID, requestedBy)
	return err
}

// GetStats returns platform-wide totals for the stats endpoint.
func (r *KOLRepo) GetStats(ctx context.Context) (*model.StatsResponse, error) {
	var s model.StatsResponse
	err := r.pool.QueryRow(ctx, `
		SELECT (SELECT COUNT(*) FROM kols),
		       (SELECT COUNT(*) FROM kol_votes),
		       (SELECT COUNT(*) FROM kol_comments),
		       (SELECT COUNT(*) FROM bounties WHERE expires_at IS NULL OR expires_at > NOW())`).
		Scan(&s.TotalKOLs, &s.TotalVotes, &s.TotalComments, &s.ActiveBounties)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanKOL(row rowScanner) (*model.KOL, error) {
	var k model.KOL
	err := row.Scan(&k.ID, &k.Username, &k.TwitterHandle, &k.ProfilePicURL, &k.WalletAddress,
		&k.IsWalletVerified, &k.Rating, &k.TotalVotes, &k.Upvotes, &k.Downvotes, &k.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &k, nil
}
