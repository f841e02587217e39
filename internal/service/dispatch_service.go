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

// DispatchService drives the mechanic side of the lifecycle. Accept is the
// contended operation: any number of mechanics may race for one pending
// request and exactly one wins.
type DispatchService struct {
	requests   repository.RequestStore
	mechanics  repository.MechanicStore
	matcher    *MatchService
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// DispatchDependencies bundles collaborators for the dispatch service.
type DispatchDependencies struct {
	RequestStore  repository.RequestStore
	MechanicStore repository.MechanicStore
	Matcher       *MatchService
	Dispatcher    events.Dispatcher
	Logger        *zap.Logger
	Now           func() time.Time
}

// NewDispatchService constructs the service.
func NewDispatchService(deps DispatchDependencies) *DispatchService {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &DispatchService{
		requests:   deps.RequestStore,
		mechanics:  deps.MechanicStore,
		matcher:    deps.Matcher,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		now:        now,
	}
}

// Accept claims a pending, unassigned request for the mechanic. The claim
// commits through a conditional transition, so when several mechanics race
// for the same request only the first commit succeeds and the rest observe
// Conflict. The winner's ETA is computed from their last known position.
func (s *DispatchService) Accept(ctx context.Context, mechanicID, requestID string) (*domain.ServiceRequest, error) {
	profile, err := s.eligibleProfile(ctx, mechanicID)
	if err != nil {
		return nil, err
	}

	request, err := s.getRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	acceptedAt := s.now()
	eta := s.matcher.EstimateArrival(profile, request.Latitude, request.Longitude, acceptedAt)

	updated, err := s.requests.TryTransition(ctx, requestID,
		repository.TransitionPrecondition{
			Status:             domain.RequestStatusPending,
			MechanicUnassigned: true,
		},
		repository.TransitionMutation{
			Status:           domain.RequestStatusAccepted,
			AssignMechanic:   &mechanicID,
			AcceptedAt:       &acceptedAt,
			EstimatedArrival: eta,
		},
	)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, apperrors.NewConflict("request is no longer available", nil)
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("service request", map[string]any{"request_id": requestID})
		}
		return nil, apperrors.MapError(err)
	}

	s.publishStatusChange(ctx, mechanicID, updated, domain.RequestStatusPending)
	return updated, nil
}

// Reject releases the mechanic's claim: the request returns to PENDING with
// the assignment, accept timestamp and ETA cleared, so other mechanics can
// pick it up. The only guard is holding the claim; an IN_PROGRESS job can be
// released the same way. Reject by anyone other than the current mechanic is
// a no-op and returns the unchanged record.
func (s *DispatchService) Reject(ctx context.Context, mechanicID, requestID string) (*domain.ServiceRequest, error) {
	request, err := s.getRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.MechanicID == nil || *request.MechanicID != mechanicID {
		return request, nil
	}

	updated, err := s.requests.TryTransition(ctx, requestID,
		repository.TransitionPrecondition{MechanicID: &mechanicID},
		repository.TransitionMutation{
			Status:                domain.RequestStatusPending,
			ClearMechanic:         true,
			ClearAcceptedAt:       true,
			ClearEstimatedArrival: true,
		},
	)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			// The assignment moved between read and commit; the caller no
			// longer holds the claim, so this is the no-op path.
			return s.getRequest(ctx, requestID)
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("service request", map[string]any{"request_id": requestID})
		}
		return nil, apperrors.MapError(err)
	}

	s.publishStatusChange(ctx, mechanicID, updated, request.Status)
	return updated, nil
}

// Start moves the mechanic's accepted request to IN_PROGRESS.
func (s *DispatchService) Start(ctx context.Context, mechanicID, requestID string) (*domain.ServiceRequest, error) {
	return s.advance(ctx, mechanicID, requestID,
		domain.RequestStatusAccepted, domain.RequestStatusInProgress)
}

// Complete finishes the mechanic's in-progress request and credits the job
// to their profile.
func (s *DispatchService) Complete(ctx context.Context, mechanicID, requestID string) (*domain.ServiceRequest, error) {
	updated, err := s.advance(ctx, mechanicID, requestID,
		domain.RequestStatusInProgress, domain.RequestStatusCompleted)
	if err != nil {
		return nil, err
	}
	if err := s.mechanics.IncrementTotalJobs(ctx, mechanicID); err != nil && s.logger != nil {
		s.logger.Warn("failed to credit completed job",
			zap.String("mechanic_id", mechanicID),
			zap.String("request_id", requestID),
			zap.Error(err))
	}
	return updated, nil
}

// PendingRequests lists every pending, unassigned request oldest first.
func (s *DispatchService) PendingRequests(ctx context.Context) ([]domain.ServiceRequest, error) {
	requests, err := s.requests.ListPendingUnassigned(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return requests, nil
}

// AssignedRequests lists the mechanic's full history, newest first.
func (s *DispatchService) AssignedRequests(ctx context.Context, mechanicID string) ([]domain.ServiceRequest, error) {
	requests, err := s.requests.ListByMechanic(ctx, mechanicID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return requests, nil
}

// ActiveRequests lists the mechanic's ACCEPTED and IN_PROGRESS requests.
func (s *DispatchService) ActiveRequests(ctx context.Context, mechanicID string) ([]domain.ServiceRequest, error) {
	requests, err := s.requests.ListActiveByMechanic(ctx, mechanicID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return requests, nil
}

// advance commits a status step that only the assigned mechanic may take.
// The precondition pins both the expected status and the assignment, so a
// stale or foreign caller loses the conditional update.
func (s *DispatchService) advance(ctx context.Context, mechanicID, requestID string, from, to domain.RequestStatus) (*domain.ServiceRequest, error) {
	request, err := s.getRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.MechanicID == nil || *request.MechanicID != mechanicID {
		return nil, apperrors.NewForbidden("request is not assigned to you")
	}

	stepAt := s.now()
	mut := repository.TransitionMutation{Status: to}
	switch to {
	case domain.RequestStatusInProgress:
		mut.StartedAt = &stepAt
	case domain.RequestStatusCompleted:
		mut.CompletedAt = &stepAt
	}

	updated, err := s.requests.TryTransition(ctx, requestID,
		repository.TransitionPrecondition{Status: from, MechanicID: &mechanicID},
		mut,
	)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, apperrors.NewConflict("request is not in the expected state", map[string]any{
				"expected_status": from,
			})
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("service request", map[string]any{"request_id": requestID})
		}
		return nil, apperrors.MapError(err)
	}

	s.publishStatusChange(ctx, mechanicID, updated, from)
	return updated, nil
}

// eligibleProfile loads the mechanic profile and enforces the dispatch
// gate: the profile must exist, be verified and be marked available.
func (s *DispatchService) eligibleProfile(ctx context.Context, mechanicID string) (*domain.MechanicProfile, error) {
	profile, err := s.mechanics.GetByUserID(ctx, mechanicID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewForbidden("mechanic profile not found")
		}
		return nil, apperrors.MapError(err)
	}
	if !profile.Verified {
		return nil, apperrors.NewForbidden("mechanic profile is not verified")
	}
	if !profile.Available {
		return nil, apperrors.NewConflict("mechanic is marked unavailable", nil)
	}
	return profile, nil
}

func (s *DispatchService) getRequest(ctx context.Context, requestID string) (*domain.ServiceRequest, error) {
	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("service request", map[string]any{"request_id": requestID})
		}
		return nil, apperrors.MapError(err)
	}
	return request, nil
}

func (s *DispatchService) publishStatusChange(ctx context.Context, actorID string, request *domain.ServiceRequest, from domain.RequestStatus) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventRequestStatusChanged,
		RequestID: request.ID,
		ActorID:   actorID,
		Timestamp: s.now(),
		Payload: events.RequestStatusChangedPayload{
			Request:   events.SnapshotRequest(request),
			OldStatus: from,
			NewStatus: request.Status,
		},
	})
}
