package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/RottenTrenches/Rotten-Trenches/internal/middleware"
	"github.com/RottenTrenches/Rotten-Trenches/internal/repository"
	"github.com/RottenTrenches/Rotten-Trenches/internal/service"
)

type LeaderboardHandler struct {
	svc *service.LeaderboardService
}

func NewLeaderboardHandler(svc *service.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{svc: svc}
}

// List handles GET /api/leaderboard?sortBy=X&timeRange=Y
func (h *LeaderboardHandler) List(c fiber.Ctx) error {
	sortBy := fiber.Query[string](c, "sortBy")
	if sortBy == "" {
		sortBy = repository.SortByRating
	}
	if !repository.ValidSortOptions[sortBy] {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_SORT",
			"Invalid sortBy. Must be one of: communityRating, pnl, winRate, popularityHigh, popularityLow")
	}

	timeRange := fiber.Query[string](c, "timeRange")
	if timeRange == "" {
		timeRange = service.RangeAll
	}
	if !service.ValidTimeRanges[timeRange] {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_RANGE",
			"Invalid timeRange. Must be one of: weekly, monthly, all")
	}

	entries, err := h.svc.List(c.Context(), sortBy, timeRange)
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch leaderboard")
	}

	return c.JSON(entries)
}
