package service

import (
	"context"
	"errors"

	"github.com/spec-kit/roadside-assist/internal/domain"
	"github.com/spec-kit/roadside-assist/internal/repository"
	apperrors "github.com/spec-kit/roadside-assist/pkg/util"
)

// ProviderService exposes a parts provider's own shop controls.
type ProviderService struct {
	providers repository.ProviderStore
}

// NewProviderService constructs the service.
func NewProviderService(providers repository.ProviderStore) *ProviderService {
	return &ProviderService{providers: providers}
}

// GetShop returns the provider's own shop record.
func (s *ProviderService) GetShop(ctx context.Context, userID string) (*domain.PartsProvider, error) {
	provider, err := s.providers.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("parts provider", map[string]any{"user_id": userID})
		}
		return nil, apperrors.MapError(err)
	}
	return provider, nil
}

// SetOpen toggles whether the shop shows up in radius searches.
func (s *ProviderService) SetOpen(ctx context.Context, userID string, open bool) (*domain.PartsProvider, error) {
	if err := s.providers.SetOpen(ctx, userID, open); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("parts provider", map[string]any{"user_id": userID})
		}
		return nil, apperrors.MapError(err)
	}
	return s.GetShop(ctx, userID)
}
