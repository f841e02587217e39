package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/roadside-assist/internal/domain"
	"github.com/spec-kit/roadside-assist/internal/events"
	"github.com/spec-kit/roadside-assist/internal/repository"
	apperrors "github.com/spec-kit/roadside-assist/pkg/util"
)

// MechanicService manages mechanic profiles and the location ticker feeding
// live tracking.
type MechanicService struct {
	mechanics  repository.MechanicStore
	requests   repository.RequestStore
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// MechanicDependencies bundles collaborators for the mechanic service.
type MechanicDependencies struct {
	MechanicStore repository.MechanicStore
	RequestStore  repository.RequestStore
	Dispatcher    events.Dispatcher
	Logger        *zap.Logger
	Now           func() time.Time
}

// UpdateProfileInput carries the mutable profile fields.
type UpdateProfileInput struct {
	Specializations []string
	Available       *bool
}

// NewMechanicService constructs the service.
func NewMechanicService(deps MechanicDependencies) *MechanicService {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &MechanicService{
		mechanics:  deps.MechanicStore,
		requests:   deps.RequestStore,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		now:        now,
	}
}

// GetProfile returns the mechanic's own profile.
func (s *MechanicService) GetProfile(ctx context.Context, userID string) (*domain.MechanicProfile, error) {
	return s.profile(ctx, userID)
}

// UpdateProfile applies the mechanic's editable fields. Verification stays
// untouched; only an admin flips it.
func (s *MechanicService) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*domain.MechanicProfile, error) {
	profile, err := s.profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if input.Specializations != nil {
		profile.Specializations = input.Specializations
	}
	if input.Available != nil {
		profile.Available = *input.Available
	}
	if err := s.mechanics.Update(ctx, profile); err != nil {
		return nil, apperrors.MapError(err)
	}
	return profile, nil
}

// SetAvailability toggles whether the mechanic shows up in matching.
func (s *MechanicService) SetAvailability(ctx context.Context, userID string, available bool) (*domain.MechanicProfile, error) {
	return s.UpdateProfile(ctx, userID, UpdateProfileInput{Available: &available})
}

// UpdateLocation records the mechanic's position and emits a location event
// scoped to their active requests so only engaged observers see the tick.
func (s *MechanicService) UpdateLocation(ctx context.Context, userID string, lat, lng float64) (*domain.MechanicProfile, error) {
	errs := fieldErrors{}
	validateCoordinates(errs, lat, lng)
	if err := errs.err(); err != nil {
		return nil, err
	}

	profile, err := s.mechanics.UpdateLocation(ctx, userID, lat, lng, s.now())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("mechanic profile", map[string]any{"user_id": userID})
		}
		return nil, apperrors.MapError(err)
	}

	active, err := s.requests.ListActiveByMechanic(ctx, userID)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("failed to resolve active requests for location event",
				zap.String("mechanic_id", userID),
				zap.Error(err))
		}
		return profile, nil
	}
	requestIDs := make([]string, 0, len(active))
	for _, request := range active {
		requestIDs = append(requestIDs, request.ID)
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventMechanicLocationUpdated,
			ActorID:   userID,
			Timestamp: s.now(),
			Payload: events.MechanicLocationPayload{
				MechanicID: userID,
				Latitude:   lat,
				Longitude:  lng,
				RequestIDs: requestIDs,
			},
		})
	}
	return profile, nil
}

func (s *MechanicService) profile(ctx context.Context, userID string) (*domain.MechanicProfile, error) {
	profile, err := s.mechanics.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("mechanic profile", map[string]any{"user_id": userID})
		}
		return nil, apperrors.MapError(err)
	}
	return profile, nil
}
