package service

import (
	"strings"

	"github.com/spec-kit/roadside-assist/internal/domain"
	apperrors "github.com/spec-kit/roadside-assist/pkg/util"
)

const (
	maxDescriptionLen = 2000
	maxAddressLen     = 500
)

// fieldErrors accumulates per-field validation failures so a request is
// rejected with every problem at once, before any state is touched.
type fieldErrors map[string]any

func (f fieldErrors) add(field, message string) {
	f[field] = message
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return apperrors.NewValidationError("validation failed", f)
}

func validateCoordinates(errs fieldErrors, lat, lng float64) {
	if lat < -90 || lat > 90 {
		errs.add("latitude", "must be between -90 and 90")
	}
	if lng < -180 || lng > 180 {
		errs.add("longitude", "must be between -180 and 180")
	}
}

func validateCreateRequest(input CreateRequestInput) error {
	errs := fieldErrors{}
	if !domain.ValidIssueType(input.IssueType) {
		errs.add("issue_type", "unknown issue type")
	}
	validateCoordinates(errs, input.Latitude, input.Longitude)
	if len(input.Description) > maxDescriptionLen {
		errs.add("description", "too long")
	}
	if input.Address != nil && len(*input.Address) > maxAddressLen {
		errs.add("address", "too long")
	}
	return errs.err()
}

func validateRegistration(input RegisterInput) error {
	errs := fieldErrors{}
	if strings.TrimSpace(input.Name) == "" {
		errs.add("name", "required")
	}
	if strings.TrimSpace(input.Email) == "" || !strings.Contains(input.Email, "@") {
		errs.add("email", "valid email required")
	}
	if len(input.Password) < 8 {
		errs.add("password", "must be at least 8 characters")
	}
	switch input.Role {
	case domain.UserRoleRequester, domain.UserRoleMechanic:
	case domain.UserRoleProvider:
		if input.Shop == nil {
			errs.add("shop", "required for provider registration")
		} else {
			if strings.TrimSpace(input.Shop.Name) == "" {
				errs.add("shop.name", "required")
			}
			validateCoordinates(errs, input.Shop.Latitude, input.Shop.Longitude)
		}
	default:
		errs.add("role", "must be USER, MECHANIC or PROVIDER")
	}
	return errs.err()
}
