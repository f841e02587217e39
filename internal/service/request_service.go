package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/roadside-assist/internal/domain"
	"github.com/spec-kit/roadside-assist/internal/events"
	"github.com/spec-kit/roadside-assist/internal/repository"
	apperrors "github.com/spec-kit/roadside-assist/pkg/util"
)

// RequestService owns the requester-facing half of the lifecycle: creation
// under the single-active-request rule, cancellation, and queries.
type RequestService struct {
	requests   repository.RequestStore
	users      repository.UserStore
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// RequestDependencies bundles collaborators for the request service.
type RequestDependencies struct {
	RequestStore repository.RequestStore
	UserStore    repository.UserStore
	Dispatcher   events.Dispatcher
	Logger       *zap.Logger
}

// CreateRequestInput describes request creation payload.
type CreateRequestInput struct {
	IssueType   domain.IssueType
	Description string
	Latitude    float64
	Longitude   float64
	Address     *string
}

// NewRequestService constructs the service.
func NewRequestService(deps RequestDependencies) *RequestService {
	return &RequestService{
		requests:   deps.RequestStore,
		users:      deps.UserStore,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
}

// Create opens a new PENDING request for the requester. A requester may
// hold at most one active request; a second attempt fails with Conflict
// before anything is written.
func (s *RequestService) Create(ctx context.Context, requesterID string, input CreateRequestInput) (*domain.ServiceRequest, error) {
	if err := validateCreateRequest(input); err != nil {
		return nil, err
	}
	if _, err := s.users.GetByID(ctx, requesterID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": requesterID})
		}
		return nil, apperrors.MapError(err)
	}

	if _, err := s.requests.FindActiveByRequester(ctx, requesterID); err == nil {
		return nil, apperrors.NewConflict("you already have an active service request", nil)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.MapError(err)
	}

	request := &domain.ServiceRequest{
		RequesterID: requesterID,
		IssueType:   input.IssueType,
		Description: strings.TrimSpace(input.Description),
		Latitude:    input.Latitude,
		Longitude:   input.Longitude,
		Address:     input.Address,
		Status:      domain.RequestStatusPending,
	}
	if err := s.requests.Create(ctx, request); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:      events.EventRequestCreated,
		RequestID: request.ID,
		ActorID:   requesterID,
		Payload: events.RequestCreatedPayload{
			Request: events.SnapshotRequest(request),
		},
	})
	return request, nil
}

// Cancel moves a non-terminal request to CANCELLED. Only the owning
// requester may cancel. The precondition pins the assignment observed on
// read, so the cancelled event always names the mechanic the commit
// actually released; if a mechanic claims the request in between, the
// commit fails and the loop re-reads.
func (s *RequestService) Cancel(ctx context.Context, requesterID, requestID string) (*domain.ServiceRequest, error) {
	for {
		request, err := s.getRequest(ctx, requestID)
		if err != nil {
			return nil, err
		}
		if request.RequesterID != requesterID {
			return nil, apperrors.NewForbidden("you can only cancel your own requests")
		}
		if request.Status.Terminal() {
			return nil, apperrors.NewConflict("cannot cancel a completed or already cancelled request", nil)
		}

		pre := repository.TransitionPrecondition{NotTerminal: true}
		if request.MechanicID != nil {
			pre.MechanicID = request.MechanicID
		} else {
			pre.MechanicUnassigned = true
		}

		updated, err := s.requests.TryTransition(ctx, requestID, pre,
			repository.TransitionMutation{
				Status:        domain.RequestStatusCancelled,
				ClearMechanic: true,
			},
		)
		if err != nil {
			if errors.Is(err, repository.ErrConflict) {
				continue
			}
			if errors.Is(err, repository.ErrNotFound) {
				return nil, apperrors.NewNotFound("service request", map[string]any{"request_id": requestID})
			}
			return nil, apperrors.MapError(err)
		}

		s.publishEvent(ctx, events.Event{
			Type:      events.EventRequestCancelled,
			RequestID: updated.ID,
			ActorID:   requesterID,
			Payload: events.RequestCancelledPayload{
				Request:    events.SnapshotRequest(updated),
				MechanicID: request.MechanicID,
			},
		})
		return updated, nil
	}
}

// GetActive returns the requester's active request, or nil when none.
func (s *RequestService) GetActive(ctx context.Context, requesterID string) (*domain.ServiceRequest, error) {
	request, err := s.requests.FindActiveByRequester(ctx, requesterID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, apperrors.MapError(err)
	}
	return request, nil
}

// GetByID fetches a request visible to the caller: the owning requester or
// the assigned mechanic.
func (s *RequestService) GetByID(ctx context.Context, callerID, requestID string) (*domain.ServiceRequest, error) {
	request, err := s.getRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.RequesterID != callerID &&
		(request.MechanicID == nil || *request.MechanicID != callerID) {
		return nil, apperrors.NewForbidden("you don't have access to this request")
	}
	return request, nil
}

// List returns the requester's requests, newest first.
func (s *RequestService) List(ctx context.Context, requesterID string) ([]domain.ServiceRequest, error) {
	requests, err := s.requests.ListByRequester(ctx, requesterID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return requests, nil
}

func (s *RequestService) getRequest(ctx context.Context, requestID string) (*domain.ServiceRequest, error) {
	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("service request", map[string]any{"request_id": requestID})
		}
		return nil, apperrors.MapError(err)
	}
	return request, nil
}

func (s *RequestService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
