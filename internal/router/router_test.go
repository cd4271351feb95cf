package router

import (
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/golang-jwt/jwt/v5"

	"github.com/RottenTrenches/Rotten-Trenches/internal/handler"
	"github.com/RottenTrenches/Rotten-Trenches/internal/middleware"
)

var (
	appOnce sync.Once
	testApp *fiber.App
)

// setupTestApp wires the full route table with zero-value handlers. Tests
// below only exercise paths that return before any service call.
func setupTestApp() *fiber.App {
	appOnce.Do(func() {
		middleware.InitLogger("error", "gateway-test")
		handler.InitMetrics(nil)

		app := fiber.New()
		h := &Handlers{
			KOL:         handler.NewKOLHandler(nil),
			Vote:        handler.NewVoteHandler(nil),
			Comment:     handler.NewCommentHandler(nil),
			Leaderboard: handler.NewLeaderboardHandler(nil),
			Bounty:      handler.NewBountyHandler(nil),
			Stats:       handler.NewStatsHandler(nil),
			Achievement: handler.NewAchievementHandler(nil),
			Health:      handler.NewHealthHandler(nil, nil),
		}
		Setup(app, h, "*", AuthConfig{})
		testApp = app
	})
	return testApp
}

func TestCreateKOLIsPublic(t *testing.T) {
	app := setupTestApp()

	// No Authorization header: the request must reach the handler's own
	// validation (400), not be turned away by an admin guard (401/403).
	req := httptest.NewRequest("POST", "/api/kols", strings.NewReader(`{"username":""}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestListKOLsRouteRegistered(t *testing.T) {
	app := setupTestApp()

	req := httptest.NewRequest("GET", "/api/kols?sortBy=bogus", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	// 400 proves the route exists and validates; an unregistered route
	// would come back 404.
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestPNLRefreshDeniedWhenAuthUnconfigured(t *testing.T) {
	app := setupTestApp()

	// The app above runs with an empty JWT secret and allow-list. A token
	// minted with the empty key must still be rejected.
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"wallet": ""}).
		SignedString([]byte(""))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	req := httptest.NewRequest("POST", "/api/kols/6b1f8c1e-9b0a-4f5d-8a3c-2e7d4b9f1a22/pnl/refresh", nil)
	req.Header.Set("Authorization", "Bearer "+tok)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}
