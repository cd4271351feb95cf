package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/jackc/pgx/v5"

	"github.com/RottenTrenches/Rotten-Trenches/internal/middleware"
	"github.com/RottenTrenches/Rotten-Trenches/internal/model"
	"github.com/RottenTrenches/Rotten-Trenches/internal/service"
)

type BountyHandler struct {
	svc *service.BountyService
}

func NewBountyHandler(svc *service.BountyService) *BountyHandler {
	return &BountyHandler{svc: svc}
}

// List handles GET /api/bounties
func (h *BountyHandler) List(c fiber.Ctx) error {
	bounties, err := h.svc.ListActive(c.Context())
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch bounties")
	}
	return c.JSON(bounties)
}

// Create handles POST /api/bounties
func (h *BountyHandler) Create(c fiber.Ctx) error {
	var req model.CreateBountyRequest
	if err := c.Bind().JSON(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
	}

	wallet, errMsg := middleware.ValidateWallet(c.Get("X-Wallet-Address"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	bounty, err := h.svc.Create(c.Context(), req, wallet)
	if err != nil {
		return bountyError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(bounty)
}

// Submit handles POST /api/bounties/:bountyId/submissions
func (h *BountyHandler) Submit(c fiber.Ctx) error {
	bountyID, errMsg := middleware.ValidateKOLID(c.Params("bountyId"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", "bounty id must be a valid UUID")
	}

	var req model.SubmitBountyRequest
	if err := c.Bind().JSON(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
	}

	wallet, errMsg := middleware.ValidateWallet(c.Get("X-Wallet-Address"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	sub, err := h.svc.Submit(c.Context(), bountyID, req, wallet)
	if err != nil {
		return bountyError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(sub)
}

// Submissions handles GET /api/bounties/:bountyId/submissions
func (h *BountyHandler) Submissions(c fiber.Ctx) error {
	bountyID, errMsg := middleware.ValidateKOLID(c.Params("bountyId"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", "bounty id must be a valid UUID")
	}

	subs, err := h.svc.Submissions(c.Context(), bountyID)
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch submissions")
	}

	return c.JSON(subs)
}

func bountyError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrWalletRequired):
		return middleware.ErrorResponse(c, fiber.StatusUnauthorized, "WALLET_REQUIRED", err.Error())
	case errors.Is(err, service.ErrBountyFields):
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "MISSING_FIELDS", err.Error())
	case errors.Is(err, service.ErrBountyExpired):
		return middleware.ErrorResponse(c, fiber.StatusGone, "BOUNTY_EXPIRED", err.Error())
	case errors.Is(err, pgx.ErrNoRows):
		return middleware.ErrorResponse(c, fiber.StatusNotFound, "NOT_FOUND", "Bounty not found")
	default:
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Bounty operation failed")
	}
}
