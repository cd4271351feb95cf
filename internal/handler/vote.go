package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/jackc/pgx/v5"

	"github.com/RottenTrenches/Rotten-Trenches/internal/middleware"
	"github.com/RottenTrenches/Rotten-Trenches/internal/model"
	"github.com/RottenTrenches/Rotten-Trenches/internal/service"
)

type VoteHandler struct {
	svc *service.VoteService
}

func NewVoteHandler(svc *service.VoteService) *VoteHandler {
	return &VoteHandler{svc: svc}
}

// Cast handles POST /api/kols/:kolId/votes
func (h *VoteHandler) Cast(c fiber.Ctx) error {
	kolID, errMsg := middleware.ValidateKOLID(c.Params("kolId"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	var req model.VoteRequest
	if err := c.Bind().JSON(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
	}

	if !model.ValidVoteType(req.VoteType) {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_VOTE_TYPE",
			"voteType must be \"up\" or \"down\"")
	}

	wallet, errMsg := middleware.ValidateWallet(c.Get("X-Wallet-Address"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	voter := service.Voter{
		Wallet:    wallet,
		SessionID: c.Get("X-Session-ID"),
	}

	resp, err := h.svc.CastVote(c.Context(), kolID, req.VoteType, voter)
	if err != nil {
		return voteError(c, err)
	}

	Metrics.VotesTotal.WithLabelValues(req.VoteType).Inc()
	return c.JSON(resp)
}

// Cooldown handles GET /api/kols/:kolId/votes/cooldown
func (h *VoteHandler) Cooldown(c fiber.Ctx) error {
	kolID, errMsg := middleware.ValidateKOLID(c.Params("kolId"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	rem := h.svc.CooldownRemaining(kolID)
	return c.JSON(fiber.Map{
		"active":           rem > 0,
		"remainingSeconds": int(rem.Seconds()),
	})
}

// voteError maps service-level vote failures onto the API error envelope.
func voteError(c fiber.Ctx, err error) error {
	var cooldownErr *service.CooldownActiveError
	var rateErr *service.RateLimitedError
	var rejectErr *service.VoteRejectedError

	switch {
	case errors.Is(err, service.ErrSelfVote):
		return middleware.ErrorResponse(c, fiber.StatusForbidden, "SELF_VOTE", err.Error())
	case errors.Is(err, service.ErrVoteInFlight):
		return middleware.ErrorResponse(c, fiber.StatusConflict, "VOTE_IN_FLIGHT", err.Error())
	case errors.As(err, &cooldownErr):
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"error": fiber.Map{
				"code":             "COOLDOWN_ACTIVE",
				"message":          cooldownErr.Error(),
				"remainingSeconds": int(cooldownErr.Remaining.Seconds()),
			},
		})
	case errors.As(err, &rateErr):
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"error": fiber.Map{
				"code":            "RATE_LIMITED",
				"message":         rateErr.Error(),
				"cooldownMinutes": rateErr.Minutes,
			},
		})
	case errors.As(err, &rejectErr):
		return middleware.ErrorResponse(c, fiber.StatusUnprocessableEntity, "VOTE_REJECTED", rejectErr.Message)
	case errors.Is(err, pgx.ErrNoRows):
		return middleware.ErrorResponse(c, fiber.StatusNotFound, "NOT_FOUND", "KOL not found")
	default:
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to submit vote")
	}
}
