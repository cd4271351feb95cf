package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gofiber/fiber/v3"

	"github.com/RottenTrenches/Rotten-Trenches/internal/config"
	"github.com/RottenTrenches/Rotten-Trenches/internal/cooldown"
	"github.com/RottenTrenches/Rotten-Trenches/internal/db"
	"github.com/RottenTrenches/Rotten-Trenches/internal/handler"
	"github.com/RottenTrenches/Rotten-Trenches/internal/middleware"
	"github.com/RottenTrenches/Rotten-Trenches/internal/realtime"
	"github.com/RottenTrenches/Rotten-Trenches/internal/repository"
	"github.com/RottenTrenches/Rotten-Trenches/internal/router"
	"github.com/RottenTrenches/Rotten-Trenches/internal/service"
)

func main() {
	cfg := config.Load()

	middleware.InitLogger(cfg.LogLevel, "rotten-trenches-api")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer pool.Close()

	handler.InitMetrics(pool)

	cache := service.NewCacheService(cfg.RedisURL)
	defer cache.Close()
	cache.OnHit = handler.Metrics.CacheHits.Inc
	cache.OnMiss = handler.Metrics.CacheMisses.Inc

	cooldowns, err := cooldown.NewFileStore(cfg.DataDir)
	if err != nil {
		log.Fatalf("failed to open cooldown store: %v", err)
	}

	// Repositories
	kolRepo := repository.NewKOLRepo(pool)
	voteRepo := repository.NewVoteRepo(pool)
	commentRepo := repository.NewCommentRepo(pool)
	profileRepo := repository.NewProfileRepo(pool)
	bountyRepo := repository.NewBountyRepo(pool)

	// Services
	snapshots := service.NewSnapshotStore()
	achievements := service.NewAchievementService(cache.Client())
	effects := service.NewFeedbackEffects(achievements, cache)

	voteSvc := service.NewVoteService(voteRepo, kolRepo, cooldowns, snapshots, effects, cfg.VoteCooldown)
	threadSvc := service.NewThreadService()
	commentSvc := service.NewCommentService(commentRepo, profileRepo, threadSvc, effects)
	kolSvc := service.NewKOLService(kolRepo, voteRepo, cache, snapshots)
	boardSvc := service.NewLeaderboardService(kolRepo, cache, snapshots)
	bountySvc := service.NewBountyService(bountyRepo, cache)

	// Realtime change feed keeps snapshots and caches current while the
	// process runs. The server stays up if the feed endpoint is absent.
	if cfg.RealtimeURL != "" {
		dispatcher := realtime.NewDispatcher(snapshots, cache)
		client := realtime.NewClient(cfg.RealtimeURL,
			[]string{"kols", "kol_comments", "bounties"},
			func(ev realtime.Event) {
				handler.Metrics.RealtimeEvents.WithLabelValues(ev.Table).Inc()
				dispatcher.Handle(ev)
			})
		client.OnReconnect = handler.Metrics.RealtimeReconnect.Inc
		go client.Run(ctx)
	}

	app := fiber.New(fiber.Config{
		AppName:      "Rotten Trenches API",
		ServerHeader: "RottenTrenches",
	})

	h := &router.Handlers{
		KOL:         handler.NewKOLHandler(kolSvc),
		Vote:        handler.NewVoteHandler(voteSvc),
		Comment:     handler.NewCommentHandler(commentSvc),
		Leaderboard: handler.NewLeaderboardHandler(boardSvc),
		Bounty:      handler.NewBountyHandler(bountySvc),
		Stats:       handler.NewStatsHandler(kolSvc),
		Achievement: handler.NewAchievementHandler(achievements),
		Health:      handler.NewHealthHandler(pool, cache.Client()),
	}

	if cfg.JWTSecret == "" || cfg.AdminWallets == "" {
		log.Println("admin routes locked: JWT_SECRET and ADMIN_WALLETS must both be set")
	}
	router.Setup(app, h, cfg.CORSOrigins, router.AuthConfig{
		JWTSecret:    cfg.JWTSecret,
		AdminWallets: strings.Split(cfg.AdminWallets, ","),
	})

	go func() {
		<-ctx.Done()
		log.Println("shutting down")
		_ = app.Shutdown()
	}()

	log.Printf("Rotten Trenches API starting on :%s (env=%s)", cfg.Port, cfg.Environment)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
