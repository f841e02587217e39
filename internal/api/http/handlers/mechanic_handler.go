package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/roadside-assist/internal/api/dto"
	"github.com/spec-kit/roadside-assist/internal/auth"
	"github.com/spec-kit/roadside-assist/internal/domain"
	"github.com/spec-kit/roadside-assist/internal/service"
	apperrors "github.com/spec-kit/roadside-assist/pkg/util"
)

// MechanicHandler manages mechanic-facing endpoints: the pending feed, the
// claim protocol, job progression, profile and location.
type MechanicHandler struct {
	dispatch *service.DispatchService
	profiles *service.MechanicService
}

// NewMechanicHandler constructs handler.
func NewMechanicHandler(dispatch *service.DispatchService, profiles *service.MechanicService) *MechanicHandler {
	return &MechanicHandler{dispatch: dispatch, profiles: profiles}
}

// Pending GET /mechanic/requests/pending.
func (h *MechanicHandler) Pending(c *fiber.Ctx) error {
	if _, err := mechanicPrincipal(c); err != nil {
		return err
	}
	requests, err := h.dispatch.PendingRequests(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": requestResponses(requests)})
}

// Accept PUT /mechanic/requests/:id/accept.
func (h *MechanicHandler) Accept(c *fiber.Ctx) error {
	principal, err := mechanicPrincipal(c)
	if err != nil {
		return err
	}
	request, err := h.dispatch.Accept(c.UserContext(), principal.User.ID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": requestResponse(request)})
}

// Reject PUT /mechanic/requests/:id/reject.
func (h *MechanicHandler) Reject(c *fiber.Ctx) error {
	principal, err := mechanicPrincipal(c)
	if err != nil {
		return err
	}
	request, err := h.dispatch.Reject(c.UserContext(), principal.User.ID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": requestResponse(request)})
}

// Start PUT /mechanic/requests/:id/start.
func (h *MechanicHandler) Start(c *fiber.Ctx) error {
	principal, err := mechanicPrincipal(c)
	if err != nil {
		return err
	}
	request, err := h.dispatch.Start(c.UserContext(), principal.User.ID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": requestResponse(request)})
}

// Complete PUT /mechanic/requests/:id/complete.
func (h *MechanicHandler) Complete(c *fiber.Ctx) error {
	principal, err := mechanicPrincipal(c)
	if err != nil {
		return err
	}
	request, err := h.dispatch.Complete(c.UserContext(), principal.User.ID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": requestResponse(request)})
}

// Active GET /mechanic/requests/active.
func (h *MechanicHandler) Active(c *fiber.Ctx) error {
	principal, err := mechanicPrincipal(c)
	if err != nil {
		return err
	}
	requests, err := h.dispatch.ActiveRequests(c.UserContext(), principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": requestResponses(requests)})
}

// History GET /mechanic/requests.
func (h *MechanicHandler) History(c *fiber.Ctx) error {
	principal, err := mechanicPrincipal(c)
	if err != nil {
		return err
	}
	requests, err := h.dispatch.AssignedRequests(c.UserContext(), principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": requestResponses(requests)})
}

// Profile GET /mechanic/profile.
func (h *MechanicHandler) Profile(c *fiber.Ctx) error {
	principal, err := mechanicPrincipal(c)
	if err != nil {
		return err
	}
	profile, err := h.profiles.GetProfile(c.UserContext(), principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": profileResponse(profile)})
}

// UpdateProfile PUT /mechanic/profile.
func (h *MechanicHandler) UpdateProfile(c *fiber.Ctx) error {
	principal, err := mechanicPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	profile, err := h.profiles.UpdateProfile(c.UserContext(), principal.User.ID, service.UpdateProfileInput{
		Specializations: req.Specializations,
		Available:       req.Available,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": profileResponse(profile)})
}

// SetAvailability PUT /mechanic/availability.
func (h *MechanicHandler) SetAvailability(c *fiber.Ctx) error {
	principal, err := mechanicPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.AvailabilityRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	profile, err := h.profiles.SetAvailability(c.UserContext(), principal.User.ID, req.Available)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": profileResponse(profile)})
}

// UpdateLocation PUT /mechanic/location.
func (h *MechanicHandler) UpdateLocation(c *fiber.Ctx) error {
	principal, err := mechanicPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.LocationUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	profile, err := h.profiles.UpdateLocation(c.UserContext(), principal.User.ID, req.Latitude, req.Longitude)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": profileResponse(profile)})
}

func mechanicPrincipal(c *fiber.Ctx) (*auth.Principal, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return nil, apperrors.NewUnauthorized("user required")
	}
	if principal.User.Role != domain.UserRoleMechanic {
		return nil, apperrors.NewForbidden("mechanic role required")
	}
	return principal, nil
}

func profileResponse(profile *domain.MechanicProfile) dto.MechanicProfileResponse {
	specializations := profile.Specializations
	if specializations == nil {
		specializations = []string{}
	}
	return dto.MechanicProfileResponse{
		ID:                profile.ID,
		UserID:            profile.UserID,
		Specializations:   specializations,
		Available:         profile.Available,
		Verified:          profile.Verified,
		CurrentLatitude:   profile.CurrentLatitude,
		CurrentLongitude:  profile.CurrentLongitude,
		Rating:            profile.Rating,
		TotalJobs:         profile.TotalJobs,
		LocationUpdatedAt: profile.LocationUpdatedAt,
	}
}
