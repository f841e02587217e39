package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/roadside-assist/internal/api/dto"
	"github.com/spec-kit/roadside-assist/internal/service"
	apperrors "github.com/spec-kit/roadside-assist/pkg/util"
)

// MatchHandler exposes mechanic discovery around a location.
type MatchHandler struct {
	matcher      *service.MatchService
	nearestLimit int
}

// NewMatchHandler constructs handler.
func NewMatchHandler(matcher *service.MatchService, nearestLimit int) *MatchHandler {
	return &MatchHandler{matcher: matcher, nearestLimit: nearestLimit}
}

// NearbyMechanics GET /mechanics/nearby?lat=&lng=&limit=.
func (h *MatchHandler) NearbyMechanics(c *fiber.Ctx) error {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		return apperrors.NewValidationError("lat query parameter required", nil)
	}
	lng, err := strconv.ParseFloat(c.Query("lng"), 64)
	if err != nil {
		return apperrors.NewValidationError("lng query parameter required", nil)
	}
	limit := h.nearestLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return apperrors.NewValidationError("limit must be a positive integer", nil)
		}
		if parsed < limit {
			limit = parsed
		}
	}

	profiles, err := h.matcher.NearestMechanics(c.UserContext(), lat, lng, limit)
	if err != nil {
		return err
	}
	items := make([]dto.MechanicProfileResponse, 0, len(profiles))
	for i := range profiles {
		items = append(items, profileResponse(&profiles[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}
