package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/roadside-assist/internal/api/dto"
	"github.com/spec-kit/roadside-assist/internal/auth"
	"github.com/spec-kit/roadside-assist/internal/domain"
	"github.com/spec-kit/roadside-assist/internal/service"
	apperrors "github.com/spec-kit/roadside-assist/pkg/util"
)

// ProvidersHandler manages parts-provider discovery and shop controls.
type ProvidersHandler struct {
	matcher         *service.MatchService
	providers       *service.ProviderService
	defaultRadiusKm float64
}

// NewProvidersHandler constructs handler.
func NewProvidersHandler(matcher *service.MatchService, providers *service.ProviderService, defaultRadiusKm float64) *ProvidersHandler {
	return &ProvidersHandler{matcher: matcher, providers: providers, defaultRadiusKm: defaultRadiusKm}
}

// Nearby GET /providers/nearby?lat=&lng=&radius_km=.
func (h *ProvidersHandler) Nearby(c *fiber.Ctx) error {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		return apperrors.NewValidationError("lat query parameter required", nil)
	}
	lng, err := strconv.ParseFloat(c.Query("lng"), 64)
	if err != nil {
		return apperrors.NewValidationError("lng query parameter required", nil)
	}
	radius := h.defaultRadiusKm
	if raw := c.Query("radius_km"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed <= 0 {
			return apperrors.NewValidationError("radius_km must be a positive number", nil)
		}
		radius = parsed
	}

	nearby, err := h.matcher.NearbyProviders(c.UserContext(), lat, lng, radius)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": providerResponses(nearby)})
}

// MyShop GET /provider/shop.
func (h *ProvidersHandler) MyShop(c *fiber.Ctx) error {
	principal, err := providerPrincipal(c)
	if err != nil {
		return err
	}
	shop, err := h.providers.GetShop(c.UserContext(), principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": providerResponse(shop)})
}

// SetOpen PUT /provider/shop/open.
func (h *ProvidersHandler) SetOpen(c *fiber.Ctx) error {
	principal, err := providerPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.SetOpenRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	shop, err := h.providers.SetOpen(c.UserContext(), principal.User.ID, req.Open)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": providerResponse(shop)})
}

func providerPrincipal(c *fiber.Ctx) (*auth.Principal, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return nil, apperrors.NewUnauthorized("user required")
	}
	if principal.User.Role != domain.UserRoleProvider {
		return nil, apperrors.NewForbidden("provider role required")
	}
	return principal, nil
}

func providerResponse(provider *domain.PartsProvider) dto.ProviderResponse {
	return dto.ProviderResponse{
		ID:        provider.ID,
		UserID:    provider.UserID,
		ShopName:  provider.ShopName,
		Address:   provider.Address,
		Latitude:  provider.Latitude,
		Longitude: provider.Longitude,
		Open:      provider.Open,
		Verified:  provider.Verified,
	}
}

func providerResponses(providers []domain.PartsProvider) []dto.ProviderResponse {
	items := make([]dto.ProviderResponse, 0, len(providers))
	for i := range providers {
		items = append(items, providerResponse(&providers[i]))
	}
	return items
}
