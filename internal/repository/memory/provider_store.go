package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/roadside-assist/internal/domain"
	"github.com/spec-kit/roadside-assist/internal/repository"
)

// ProviderStore is a map-backed repository.ProviderStore keyed by owning
// user id.
type ProviderStore struct {
	mu        sync.Mutex
	providers map[string]*domain.PartsProvider
}

// NewProviderStore creates an empty store.
func NewProviderStore() *ProviderStore {
	return &ProviderStore{providers: make(map[string]*domain.PartsProvider)}
}

// Create assigns an id and stores the provider.
func (s *ProviderStore) Create(_ context.Context, provider *domain.PartsProvider) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	provider.ID = uuid.NewString()
	provider.CreatedAt = now
	provider.UpdatedAt = now
	clone := *provider
	s.providers[provider.UserID] = &clone
	return nil
}

// GetByUserID returns the provider owned by userID.
func (s *ProviderStore) GetByUserID(_ context.Context, userID string) (*domain.PartsProvider, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	provider, ok := s.providers[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *provider
	return &clone, nil
}

// SetOpen flips the shop's open flag.
func (s *ProviderStore) SetOpen(_ context.Context, userID string, open bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.providers[userID]
	if !ok {
		return repository.ErrNotFound
	}
	stored.Open = open
	stored.UpdatedAt = time.Now()
	return nil
}

// ListOpenVerified returns providers visible to radius search.
func (s *ProviderStore) ListOpenVerified(_ context.Context) ([]domain.PartsProvider, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []domain.PartsProvider
	for _, provider := range s.providers {
		if provider.Open && provider.Verified {
			result = append(result, *provider)
		}
	}
	return result, nil
}

// ListUnverified returns providers awaiting verification.
func (s *ProviderStore) ListUnverified(_ context.Context) ([]domain.PartsProvider, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []domain.PartsProvider
	for _, provider := range s.providers {
		if !provider.Verified {
			result = append(result, *provider)
		}
	}
	return result, nil
}

// SetVerified flips the verification flag.
func (s *ProviderStore) SetVerified(_ context.Context, userID string, verified bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.providers[userID]
	if !ok {
		return repository.ErrNotFound
	}
	stored.Verified = verified
	stored.UpdatedAt = time.Now()
	return nil
}
