package router

import (
	"github.com/gofiber/fiber/v3"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/RottenTrenches/Rotten-Trenches/internal/handler"
	"github.com/RottenTrenches/Rotten-Trenches/internal/middleware"
)

// Handlers holds all handler instances needed by the router.
type Handlers struct {
	KOL         *handler.KOLHandler
	Vote        *handler.VoteHandler
	Comment     *handler.CommentHandler
	Leaderboard *handler.LeaderboardHandler
	Bounty      *handler.BountyHandler
	Stats       *handler.StatsHandler
	Achievement *handler.AchievementHandler
	Health      *handler.HealthHandler
}

// AuthConfig carries what the router needs to build the admin guard.
type AuthConfig struct {
	JWTSecret    string
	AdminWallets []string
}

// Setup configures the middleware stack and all API routes on the given Fiber app.
func Setup(app *fiber.App, h *Handlers, corsOrigins string, auth AuthConfig) {
	// Middleware stack (order matters)
	app.Use(recoverer.New())
	app.Use(middleware.NewRequestLogger())
	app.Use(handler.MetricsMiddleware())
	app.Use(middleware.NewCORS(corsOrigins))

	// Health checks (before API group, no limits)
	app.Get("/health/live", h.Health.Live)
	app.Get("/health/ready", h.Health.Ready)

	// Prometheus metrics
	app.Get("/metrics", handler.MetricsHandler())

	// Per-route rate limiters
	voteLimit := middleware.NewVoteRateLimiter()
	commentLimit := middleware.NewCommentRateLimiter()
	bountyLimit := middleware.NewBountyRateLimiter()
	boardLimit := middleware.NewLeaderboardRateLimiter()
	statsLimit := middleware.NewStatsRateLimiter()
	refreshLimit := middleware.NewPNLRefreshRateLimiter()

	adminOnly := middleware.NewAdminAuth(auth.JWTSecret, auth.AdminWallets)

	// API routes
	api := app.Group("/api")

	// KOL routes
	api.Get("/kols", h.KOL.List)
	api.Get("/kols/:kolId", h.KOL.Get)
	api.Post("/kols", h.KOL.Create)
	api.Get("/kols/:kolId/vote-history", h.KOL.VoteHistory)
	api.Post("/kols/:kolId/pnl/refresh", h.KOL.RequestPNLRefresh, refreshLimit.Handler(), adminOnly)

	// Vote routes
	api.Post("/kols/:kolId/votes", h.Vote.Cast, voteLimit.Handler())
	api.Get("/kols/:kolId/votes/cooldown", h.Vote.Cooldown)

	// Comment routes
	api.Get("/kols/:kolId/comments", h.Comment.List)
	api.Post("/kols/:kolId/comments", h.Comment.Create, commentLimit.Handler())

	// Leaderboard routes
	api.Get("/leaderboard", h.Leaderboard.List, boardLimit.Handler())

	// Bounty routes
	api.Get("/bounties", h.Bounty.List)
	api.Post("/bounties", h.Bounty.Create, bountyLimit.Handler())
	api.Get("/bounties/:bountyId/submissions", h.Bounty.Submissions)
	api.Post("/bounties/:bountyId/submissions", h.Bounty.Submit, bountyLimit.Handler())

	// Stats routes
	api.Get("/stats", h.Stats.GetStats, statsLimit.Handler())

	// Achievement routes
	api.Get("/achievements", h.Achievement.Get)
}
