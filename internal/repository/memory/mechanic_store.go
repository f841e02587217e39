package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/roadside-assist/internal/domain"
	"github.com/spec-kit/roadside-assist/internal/repository"
)

// MechanicStore is a map-backed repository.MechanicStore keyed by owning
// user id. Eligibility filtering needs account status, so the store holds a
// reference to the user store.
type MechanicStore struct {
	mu       sync.Mutex
	profiles map[string]*domain.MechanicProfile
	users    *UserStore
}

// NewMechanicStore creates an empty store joined to users for eligibility.
func NewMechanicStore(users *UserStore) *MechanicStore {
	return &MechanicStore{profiles: make(map[string]*domain.MechanicProfile), users: users}
}

// Create assigns an id and stores the profile.
func (s *MechanicStore) Create(_ context.Context, profile *domain.MechanicProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	profile.ID = uuid.NewString()
	profile.CreatedAt = now
	profile.UpdatedAt = now
	s.profiles[profile.UserID] = cloneMechanic(profile)
	return nil
}

// GetByUserID returns a copy of the profile owned by userID.
func (s *MechanicStore) GetByUserID(_ context.Context, userID string) (*domain.MechanicProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	profile, ok := s.profiles[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneMechanic(profile), nil
}

// Update overwrites mutable profile fields.
func (s *MechanicStore) Update(_ context.Context, profile *domain.MechanicProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.profiles[profile.UserID]
	if !ok {
		return repository.ErrNotFound
	}
	stored.Specializations = append([]string(nil), profile.Specializations...)
	stored.Available = profile.Available
	stored.Verified = profile.Verified
	stored.Rating = profile.Rating
	stored.TotalJobs = profile.TotalJobs
	stored.UpdatedAt = time.Now()
	return nil
}

// UpdateLocation writes the mechanic's coordinates and tick timestamp.
func (s *MechanicStore) UpdateLocation(_ context.Context, userID string, lat, lng float64, at time.Time) (*domain.MechanicProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.profiles[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	stored.CurrentLatitude = &lat
	stored.CurrentLongitude = &lng
	tick := at
	stored.LocationUpdatedAt = &tick
	stored.UpdatedAt = time.Now()
	return cloneMechanic(stored), nil
}

// IncrementTotalJobs bumps the completed-job counter by one.
func (s *MechanicStore) IncrementTotalJobs(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.profiles[userID]
	if !ok {
		return repository.ErrNotFound
	}
	stored.TotalJobs++
	stored.UpdatedAt = time.Now()
	return nil
}

// ListEligible returns profiles that are available, verified, owned by an
// active account and carry a location.
func (s *MechanicStore) ListEligible(ctx context.Context) ([]domain.MechanicProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []domain.MechanicProfile
	for _, profile := range s.profiles {
		if !profile.Available || !profile.Verified || !profile.HasLocation() {
			continue
		}
		if s.users != nil {
			user, err := s.users.GetByID(ctx, profile.UserID)
			if err != nil || user.Status != domain.UserStatusActive {
				continue
			}
		}
		result = append(result, *cloneMechanic(profile))
	}
	return result, nil
}

// ListUnverified returns profiles awaiting verification.
func (s *MechanicStore) ListUnverified(_ context.Context) ([]domain.MechanicProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []domain.MechanicProfile
	for _, profile := range s.profiles {
		if !profile.Verified {
			result = append(result, *cloneMechanic(profile))
		}
	}
	return result, nil
}

// SetVerified flips the verification flag.
func (s *MechanicStore) SetVerified(_ context.Context, userID string, verified bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.profiles[userID]
	if !ok {
		return repository.ErrNotFound
	}
	stored.Verified = verified
	stored.UpdatedAt = time.Now()
	return nil
}

func cloneMechanic(p *domain.MechanicProfile) *domain.MechanicProfile {
	clone := *p
	clone.Specializations = append([]string(nil), p.Specializations...)
	clone.CurrentLatitude = clonePtr(p.CurrentLatitude)
	clone.CurrentLongitude = clonePtr(p.CurrentLongitude)
	clone.LocationUpdatedAt = clonePtr(p.LocationUpdatedAt)
	return &clone
}
