package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/RottenTrenches/Rotten-Trenches/internal/middleware"
	"github.com/RottenTrenches/Rotten-Trenches/internal/service"
)

type AchievementHandler struct {
	svc *service.AchievementService
}

func NewAchievementHandler(svc *service.AchievementService) *AchievementHandler {
	return &AchievementHandler{svc: svc}
}

// Get handles GET /api/achievements — the caller's session progress.
func (h *AchievementHandler) Get(c fiber.Ctx) error {
	sessionID := c.Get("X-Session-ID")
	if sessionID == "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "MISSING_SESSION", "X-Session-ID header is required")
	}

	return c.JSON(h.svc.Counts(c.Context(), sessionID))
}
