package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/RottenTrenches/Rotten-Trenches/internal/middleware"
	"github.com/RottenTrenches/Rotten-Trenches/internal/model"
	"github.com/RottenTrenches/Rotten-Trenches/internal/service"
)

type CommentHandler struct {
	svc *service.CommentService
}

func NewCommentHandler(svc *service.CommentService) *CommentHandler {
	return &CommentHandler{svc: svc}
}

// List handles GET /api/kols/:kolId/comments
func (h *CommentHandler) List(c fiber.Ctx) error {
	kolID, errMsg := middleware.ValidateKOLID(c.Params("kolId"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	threads, report, err := h.svc.FetchThreads(c.Context(), kolID)
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch comments")
	}

	if report.Orphaned > 0 {
		Metrics.OrphanedReplies.Add(float64(report.Orphaned))
	}

	return c.JSON(fiber.Map{
		"threads": threads,
		"meta": fiber.Map{
			"roots":    report.Roots,
			"replies":  report.Replies,
			"orphaned": report.Orphaned,
		},
	})
}

// Create handles POST /api/kols/:kolId/comments
func (h *CommentHandler) Create(c fiber.Ctx) error {
	kolID, errMsg := middleware.ValidateKOLID(c.Params("kolId"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	var req model.CreateCommentRequest
	if err := c.Bind().JSON(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
	}

	if req.ImageURL != nil {
		u, errMsg := middleware.ValidateURL(*req.ImageURL)
		if errMsg != "" {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
		}
		req.ImageURL = &u
	}

	wallet, errMsg := middleware.ValidateWallet(c.Get("X-Wallet-Address"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	voter := service.Voter{
		Wallet:    wallet,
		SessionID: c.Get("X-Session-ID"),
	}

	comment, err := h.svc.PostReview(c.Context(), kolID, req, voter)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyContent),
			errors.Is(err, service.ErrContentTooLong),
			errors.Is(err, service.ErrBadRating):
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", err.Error())
		case errors.Is(err, service.ErrParentNotFound):
			return middleware.ErrorResponse(c, fiber.StatusNotFound, "PARENT_NOT_FOUND", err.Error())
		default:
			return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to post comment")
		}
	}

	Metrics.CommentsTotal.Inc()
	return c.Status(fiber.StatusCreated).JSON(comment)
}
