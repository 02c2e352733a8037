package handlers

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/hoofmatch/hoofmatch/app/dto"
	"github.com/hoofmatch/hoofmatch/app/middleware"
	businessflow "github.com/hoofmatch/hoofmatch/business_flow"
	"github.com/hoofmatch/hoofmatch/identity"
	"github.com/hoofmatch/hoofmatch/utils"
)

// VoteHandlerInterface defines the contract for vote handlers
type VoteHandlerInterface interface {
	Vote(c fiber.Ctx) error
	Totals(c fiber.Ctx) error
}

// VoteHandler handles vote-related HTTP requests
type VoteHandler struct {
	voteFlow  businessflow.VoteFlow
	guard     *businessflow.VoteGuard
	salt      string
	validator *validator.Validate
}

// NewVoteHandler creates a new vote handler. salt keys the client address
// hash; guard may reject votes before they reach the flow.
func NewVoteHandler(voteFlow businessflow.VoteFlow, guard *businessflow.VoteGuard, salt string) *VoteHandler {
	return &VoteHandler{
		voteFlow:  voteFlow,
		guard:     guard,
		salt:      salt,
		validator: validator.New(),
	}
}

func (h *VoteHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *VoteHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Vote records a like or dislike for a profile
// @Summary Record Vote
// @Description Record a swipe vote for a profile identified by UUID, seed hash, or prefixed key
// @Tags Votes
// @Accept json
// @Produce json
// @Param id path string true "Profile identifier"
// @Param request body dto.VoteRequest true "Vote data"
// @Success 200 {object} dto.APIResponse{data=dto.VoteResponse} "Vote recorded"
// @Failure 400 {object} dto.APIResponse "Invalid identifier or payload"
// @Failure 404 {object} dto.APIResponse "Unknown profile"
// @Failure 429 {object} dto.APIResponse "Vote limited"
// @Failure 503 {object} dto.APIResponse "Persistence not configured"
// @Router /api/v1/profiles/{id}/vote [post]
func (h *VoteHandler) Vote(c fiber.Ctx) error {
	raw := c.Params("id")
	if raw == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Profile identifier is required", "INVALID_IDENTIFIER", nil)
	}

	var req dto.VoteRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	pid, norm, err := h.resolveIdentifier(raw, req.ProfileType, req.SeedName)
	if err != nil {
		return h.identifierErrorResponse(c, err)
	}

	clientHash := utils.HashClientAddress(h.salt, middleware.ClientAddress(c))
	metadata := businessflow.NewClientMetadata(clientHash, c.Get("User-Agent"))
	metadata.SetRequestID(c.Get("X-Request-ID"))

	ctx := h.createRequestContext(c, "/api/v1/profiles/:id/vote")

	decision, err := h.guard.Evaluate(ctx, clientHash, norm.Key)
	if err != nil {
		log.Println("Vote guard evaluation failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to record vote", "VOTE_FAILED", nil)
	}
	if !decision.Allowed() {
		middleware.RecordGuardRejection(string(decision.Outcome))
		c.Set("Retry-After", strconv.Itoa(int(decision.RetryAfter/time.Second)))
		return h.ErrorResponse(c, fiber.StatusTooManyRequests, "Vote rejected: "+decision.Reason, "VOTE_LIMITED", fiber.Map{
			"outcome":             string(decision.Outcome),
			"retry_after_seconds": int(decision.RetryAfter / time.Second),
		})
	}

	result, err := h.voteFlow.RecordVote(ctx, pid, req.Direction, metadata, nil)
	if err != nil {
		if businessflow.IsInvalidDirection(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Direction must be like or dislike", "INVALID_DIRECTION", nil)
		}
		if businessflow.IsProfileNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Profile not found", "PROFILE_NOT_FOUND", nil)
		}
		if businessflow.IsPersistenceNotConfigured(err) {
			return h.ErrorResponse(c, fiber.StatusServiceUnavailable, "Vote storage is not configured", "PERSISTENCE_NOT_CONFIGURED", nil)
		}
		if identity.IsInvalidIdentifier(err) || identity.IsSeedNameMismatch(err) {
			return h.identifierErrorResponse(c, err)
		}

		log.Println("Record vote failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to record vote", "VOTE_FAILED", nil)
	}

	middleware.RecordVote(req.Direction, string(norm.Source))

	return h.SuccessResponse(c, fiber.StatusOK, "Vote recorded successfully", dto.VoteResponse{Totals: *result})
}

// Totals returns the running vote totals for a profile
// @Summary Get Vote Totals
// @Description Fetch the per-profile vote aggregate; data is null when the profile has never been voted on
// @Tags Votes
// @Produce json
// @Param id path string true "Profile identifier"
// @Param type query string false "Identifier source hint: db|seed"
// @Param seed_name query string false "Expected seed profile name"
// @Success 200 {object} dto.APIResponse{data=dto.VoteResponse} "Totals retrieved"
// @Failure 400 {object} dto.APIResponse "Invalid identifier"
// @Failure 503 {object} dto.APIResponse "Persistence not configured"
// @Router /api/v1/profiles/{id}/votes [get]
func (h *VoteHandler) Totals(c fiber.Ctx) error {
	raw := c.Params("id")
	if raw == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Profile identifier is required", "INVALID_IDENTIFIER", nil)
	}

	pid, _, err := h.resolveIdentifier(raw, c.Query("type"), c.Query("seed_name"))
	if err != nil {
		return h.identifierErrorResponse(c, err)
	}

	ctx := h.createRequestContext(c, "/api/v1/profiles/:id/votes")

	result, err := h.voteFlow.FetchTotals(ctx, pid)
	if err != nil {
		if businessflow.IsPersistenceNotConfigured(err) {
			return h.ErrorResponse(c, fiber.StatusServiceUnavailable, "Vote storage is not configured", "PERSISTENCE_NOT_CONFIGURED", nil)
		}
		if identity.IsInvalidIdentifier(err) || identity.IsSeedNameMismatch(err) {
			return h.identifierErrorResponse(c, err)
		}

		log.Println("Fetch vote totals failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch vote totals", "TOTALS_FAILED", nil)
	}
	if result == nil {
		return h.SuccessResponse(c, fiber.StatusOK, "No votes recorded for this profile", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Vote totals retrieved successfully", dto.VoteResponse{Totals: *result})
}

// resolveIdentifier classifies the raw path identifier using the optional
// source and seed-name hints, then normalizes it to its canonical key.
func (h *VoteHandler) resolveIdentifier(raw, profileType, seedName string) (identity.ProfileIdentifier, identity.NormalizedIdentifier, error) {
	hint := identity.Hint{SeedName: seedName}
	switch profileType {
	case "db":
		hint.Source = identity.SourceDB
	case "seed":
		hint.Source = identity.SourceSeed
	}

	pid, err := identity.Infer(raw, &hint)
	if err != nil {
		return identity.ProfileIdentifier{}, identity.NormalizedIdentifier{}, err
	}

	norm, err := identity.Normalize(pid)
	if err != nil {
		return identity.ProfileIdentifier{}, identity.NormalizedIdentifier{}, err
	}

	return pid, norm, nil
}

func (h *VoteHandler) identifierErrorResponse(c fiber.Ctx, err error) error {
	if identity.IsSeedNameMismatch(err) {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Seed name does not match the identifier", "SEED_NAME_MISMATCH", nil)
	}
	return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid profile identifier", "INVALID_IDENTIFIER", nil)
}

func (h *VoteHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, middleware.ClientAddress(c))
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	return ctx
}
