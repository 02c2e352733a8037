package handlers

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/hoofmatch/hoofmatch/app/dto"
	"github.com/hoofmatch/hoofmatch/app/middleware"
	businessflow "github.com/hoofmatch/hoofmatch/business_flow"
	"github.com/hoofmatch/hoofmatch/utils"
)

// LeaderboardHandlerInterface defines the contract for leaderboard handlers
type LeaderboardHandlerInterface interface {
	Leaderboard(c fiber.Ctx) error
}

// LeaderboardHandler handles leaderboard HTTP requests
type LeaderboardHandler struct {
	flow businessflow.LeaderboardFlow
}

// NewLeaderboardHandler creates a new leaderboard handler
func NewLeaderboardHandler(flow businessflow.LeaderboardFlow) *LeaderboardHandler {
	return &LeaderboardHandler{flow: flow}
}

func (h *LeaderboardHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *LeaderboardHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Leaderboard returns ranked like/dislike lists with an activity summary
// @Summary Get Leaderboard
// @Description Fetch profiles ranked by likes and dislikes with display metadata
// @Tags Leaderboard
// @Produce json
// @Param limit query int false "Maximum entries per list"
// @Success 200 {object} dto.APIResponse{data=dto.LeaderboardResponse} "Leaderboard retrieved"
// @Failure 400 {object} dto.APIResponse "Invalid limit"
// @Failure 503 {object} dto.APIResponse "Persistence not configured"
// @Router /api/v1/leaderboard [get]
func (h *LeaderboardHandler) Leaderboard(c fiber.Ctx) error {
	limit := 0
	if rawLimit := c.Query("limit"); rawLimit != "" {
		parsed, err := strconv.Atoi(rawLimit)
		if err != nil || parsed < 1 {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Limit must be a positive integer", "INVALID_LIMIT", nil)
		}
		limit = parsed
	}

	ctx := h.createRequestContext(c, "/api/v1/leaderboard")

	result, err := h.flow.Generate(ctx, limit)
	if err != nil {
		if businessflow.IsPersistenceNotConfigured(err) {
			return h.ErrorResponse(c, fiber.StatusServiceUnavailable, "Vote storage is not configured", "PERSISTENCE_NOT_CONFIGURED", nil)
		}
		if businessflow.IsInvalidLimit(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Limit must be a positive integer", "INVALID_LIMIT", nil)
		}

		log.Println("Leaderboard generation failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to build leaderboard", "LEADERBOARD_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Leaderboard retrieved successfully", result)
}

func (h *LeaderboardHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, middleware.ClientAddress(c))
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	return ctx
}
