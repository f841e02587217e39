package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/spec-kit/roadside-assist/internal/domain"
	"github.com/spec-kit/roadside-assist/internal/repository"
	apperrors "github.com/spec-kit/roadside-assist/pkg/util"
)

// AdminService handles verification of mechanics and parts providers.
type AdminService struct {
	mechanics repository.MechanicStore
	providers repository.ProviderStore
	logger    *zap.Logger
}

// NewAdminService constructs the service.
func NewAdminService(mechanics repository.MechanicStore, providers repository.ProviderStore, logger *zap.Logger) *AdminService {
	return &AdminService{mechanics: mechanics, providers: providers, logger: logger}
}

// UnverifiedMechanics lists mechanic profiles awaiting approval.
func (s *AdminService) UnverifiedMechanics(ctx context.Context) ([]domain.MechanicProfile, error) {
	profiles, err := s.mechanics.ListUnverified(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return profiles, nil
}

// VerifyMechanic flips the mechanic's verification flag.
func (s *AdminService) VerifyMechanic(ctx context.Context, userID string, verified bool) error {
	if err := s.mechanics.SetVerified(ctx, userID, verified); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNotFound("mechanic profile", map[string]any{"user_id": userID})
		}
		return apperrors.MapError(err)
	}
	if s.logger != nil {
		s.logger.Info("mechanic verification updated",
			zap.String("user_id", userID),
			zap.Bool("verified", verified))
	}
	return nil
}

// UnverifiedProviders lists parts providers awaiting approval.
func (s *AdminService) UnverifiedProviders(ctx context.Context) ([]domain.PartsProvider, error) {
	providers, err := s.providers.ListUnverified(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return providers, nil
}

// VerifyProvider flips the provider's verification flag.
func (s *AdminService) VerifyProvider(ctx context.Context, userID string, verified bool) error {
	if err := s.providers.SetVerified(ctx, userID, verified); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNotFound("parts provider", map[string]any{"user_id": userID})
		}
		return apperrors.MapError(err)
	}
	if s.logger != nil {
		s.logger.Info("provider verification updated",
			zap.String("user_id", userID),
			zap.Bool("verified", verified))
	}
	return nil
}
