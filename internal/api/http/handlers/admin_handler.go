package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/roadside-assist/internal/api/dto"
	"github.com/spec-kit/roadside-assist/internal/service"
	apperrors "github.com/spec-kit/roadside-assist/pkg/util"
)

// AdminHandler manages verification endpoints.
type AdminHandler struct {
	admin *service.AdminService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(admin *service.AdminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

// UnverifiedMechanics GET /admin/mechanics/unverified.
func (h *AdminHandler) UnverifiedMechanics(c *fiber.Ctx) error {
	profiles, err := h.admin.UnverifiedMechanics(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.MechanicProfileResponse, 0, len(profiles))
	for i := range profiles {
		items = append(items, profileResponse(&profiles[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// VerifyMechanic PUT /admin/mechanics/:userId/verify.
func (h *AdminHandler) VerifyMechanic(c *fiber.Ctx) error {
	req, err := parseVerifyRequest(c)
	if err != nil {
		return err
	}
	if err := h.admin.VerifyMechanic(c.UserContext(), c.Params("userId"), req.Verified); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"verified": req.Verified}})
}

// UnverifiedProviders GET /admin/providers/unverified.
func (h *AdminHandler) UnverifiedProviders(c *fiber.Ctx) error {
	providers, err := h.admin.UnverifiedProviders(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": providerResponses(providers)})
}

// VerifyProvider PUT /admin/providers/:userId/verify.
func (h *AdminHandler) VerifyProvider(c *fiber.Ctx) error {
	req, err := parseVerifyRequest(c)
	if err != nil {
		return err
	}
	if err := h.admin.VerifyProvider(c.UserContext(), c.Params("userId"), req.Verified); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"verified": req.Verified}})
}

func parseVerifyRequest(c *fiber.Ctx) (dto.VerifyRequest, error) {
	// An empty body means approve.
	req := dto.VerifyRequest{Verified: true}
	if len(c.Body()) == 0 {
		return req, nil
	}
	if err := c.BodyParser(&req); err != nil {
		return req, apperrors.NewValidationError("invalid payload", nil)
	}
	return req, nil
}
