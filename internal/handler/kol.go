package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/jackc/pgx/v5"

	"github.com/RottenTrenches/Rotten-Trenches/internal/middleware"
	"github.com/RottenTrenches/Rotten-Trenches/internal/model"
	"github.com/RottenTrenches/Rotten-Trenches/internal/repository"
	"github.com/RottenTrenches/Rotten-Trenches/internal/service"
)

type KOLHandler struct {
	svc *service.KOLService
}

func NewKOLHandler(svc *service.KOLService) *KOLHandler {
	return &KOLHandler{svc: svc}
}

// List handles GET /api/kols?sortBy=X
func (h *KOLHandler) List(c fiber.Ctx) error {
	sortBy := fiber.Query[string](c, "sortBy")
	if sortBy == "" {
		sortBy = repository.SortByRating
	}
	if !repository.ValidSortOptions[sortBy] {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_SORT",
			"Invalid sortBy. Must be one of: communityRating, pnl, winRate, popularityHigh, popularityLow")
	}

	kols, err := h.svc.List(c.Context(), sortBy)
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch KOLs")
	}

	return c.JSON(kols)
}

// Get handles GET /api/kols/:kolId
func (h *KOLHandler) Get(c fiber.Ctx) error {
	kolID, errMsg := middleware.ValidateKOLID(c.Params("kolId"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	resp, err := h.svc.Lookup(c.Context(), kolID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return middleware.ErrorResponse(c, fiber.StatusNotFound, "NOT_FOUND", "KOL not found")
		}
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to lookup KOL")
	}

	return c.JSON(resp)
}

// Create handles POST /api/kols
func (h *KOLHandler) Create(c fiber.Ctx) error {
	var req model.CreateKOLRequest
	if err := c.Bind().JSON(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
	}

	username, errMsg := middleware.ValidateUsername(req.Username)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}
	req.Username = username

	handle, errMsg := middleware.ValidateTwitterHandle(req.TwitterHandle)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}
	req.TwitterHandle = handle

	if req.ProfilePicURL != nil {
		u, errMsg := middleware.ValidateURL(*req.ProfilePicURL)
		if errMsg != "" {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
		}
		req.ProfilePicURL = &u
	}

	kol, err := h.svc.Create(c.Context(), req)
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create KOL")
	}

	return c.Status(fiber.StatusCreated).JSON(kol)
}

// VoteHistory handles GET /api/kols/:kolId/vote-history
func (h *KOLHandler) VoteHistory(c fiber.Ctx) error {
	kolID, errMsg := middleware.ValidateKOLID(c.Params("kolId"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	points, err := h.svc.VoteHistory(c.Context(), kolID)
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch vote history")
	}

	return c.JSON(points)
}

// RequestPNLRefresh handles POST /api/kols/:kolId/pnl/refresh (admin only).
func (h *KOLHandler) RequestPNLRefresh(c fiber.Ctx) error {
	kolID, errMsg := middleware.ValidateKOLID(c.Params("kolId"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	wallet, _ := c.Locals("wallet").(string)
	if err := h.svc.RequestPNLRefresh(c.Context(), kolID, wallet); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return middleware.ErrorResponse(c, fiber.StatusNotFound, "NOT_FOUND", "KOL not found")
		}
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to request refresh")
	}

	return c.JSON(fiber.Map{"requested": true})
}
