// Package memory provides in-memory implementations of the repository
// store interfaces. They back the service when no Postgres DSN is
// configured and serve as fixtures for service-level tests. Mutations are
// serialized by a per-store mutex, which gives TryTransition the same
// conditional-commit semantics as the SQL implementation.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/roadside-assist/internal/domain"
	"github.com/spec-kit/roadside-assist/internal/repository"
)

// RequestStore is a map-backed repository.RequestStore.
type RequestStore struct {
	mu       sync.Mutex
	requests map[string]*domain.ServiceRequest
}

// NewRequestStore creates an empty store.
func NewRequestStore() *RequestStore {
	return &RequestStore{requests: make(map[string]*domain.ServiceRequest)}
}

// Create assigns an id and timestamps and stores the record.
func (s *RequestStore) Create(_ context.Context, request *domain.ServiceRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	request.ID = uuid.NewString()
	request.CreatedAt = now
	request.UpdatedAt = now
	s.requests[request.ID] = cloneRequest(request)
	return nil
}

// GetByID returns a copy of the stored record.
func (s *RequestStore) GetByID(_ context.Context, id string) (*domain.ServiceRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	request, ok := s.requests[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneRequest(request), nil
}

// TryTransition verifies the precondition and applies the mutation under
// the store lock; checking and writing are a single critical section, so
// concurrent transitions on one record serialize and at most one of a set
// of racing guards can observe its precondition as satisfied.
func (s *RequestStore) TryTransition(_ context.Context, id string, pre repository.TransitionPrecondition, mut repository.TransitionMutation) (*domain.ServiceRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	request, ok := s.requests[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if pre.Status != "" && request.Status != pre.Status {
		return nil, repository.ErrConflict
	}
	if pre.MechanicUnassigned && request.MechanicID != nil {
		return nil, repository.ErrConflict
	}
	if pre.MechanicID != nil && (request.MechanicID == nil || *request.MechanicID != *pre.MechanicID) {
		return nil, repository.ErrConflict
	}
	if pre.NotTerminal && request.Status.Terminal() {
		return nil, repository.ErrConflict
	}

	request.Status = mut.Status
	switch {
	case mut.AssignMechanic != nil:
		mechanicID := *mut.AssignMechanic
		request.MechanicID = &mechanicID
	case mut.ClearMechanic:
		request.MechanicID = nil
	}
	if mut.AcceptedAt != nil {
		at := *mut.AcceptedAt
		request.AcceptedAt = &at
	} else if mut.ClearAcceptedAt {
		request.AcceptedAt = nil
	}
	if mut.StartedAt != nil {
		at := *mut.StartedAt
		request.StartedAt = &at
	}
	if mut.CompletedAt != nil {
		at := *mut.CompletedAt
		request.CompletedAt = &at
	}
	if mut.EstimatedArrival != nil {
		at := *mut.EstimatedArrival
		request.EstimatedArrival = &at
	} else if mut.ClearEstimatedArrival {
		request.EstimatedArrival = nil
	}
	request.UpdatedAt = time.Now()

	return cloneRequest(request), nil
}

// FindActiveByRequester returns the requester's non-terminal request.
func (s *RequestStore) FindActiveByRequester(_ context.Context, requesterID string) (*domain.ServiceRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var newest *domain.ServiceRequest
	for _, request := range s.requests {
		if request.RequesterID != requesterID || !request.Active() {
			continue
		}
		if newest == nil || request.CreatedAt.After(newest.CreatedAt) {
			newest = request
		}
	}
	if newest == nil {
		return nil, repository.ErrNotFound
	}
	return cloneRequest(newest), nil
}

// ListByRequester returns the requester's requests, newest first.
func (s *RequestStore) ListByRequester(_ context.Context, requesterID string) ([]domain.ServiceRequest, error) {
	return s.list(func(r *domain.ServiceRequest) bool {
		return r.RequesterID == requesterID
	}, false), nil
}

// ListByMechanic returns requests assigned to the mechanic, newest first.
func (s *RequestStore) ListByMechanic(_ context.Context, mechanicID string) ([]domain.ServiceRequest, error) {
	return s.list(func(r *domain.ServiceRequest) bool {
		return r.MechanicID != nil && *r.MechanicID == mechanicID
	}, false), nil
}

// ListActiveByMechanic returns the mechanic's ACCEPTED/IN_PROGRESS requests.
func (s *RequestStore) ListActiveByMechanic(_ context.Context, mechanicID string) ([]domain.ServiceRequest, error) {
	return s.list(func(r *domain.ServiceRequest) bool {
		if r.MechanicID == nil || *r.MechanicID != mechanicID {
			return false
		}
		return r.Status == domain.RequestStatusAccepted || r.Status == domain.RequestStatusInProgress
	}, false), nil
}

// ListPendingUnassigned returns unclaimed PENDING requests, oldest first.
func (s *RequestStore) ListPendingUnassigned(_ context.Context) ([]domain.ServiceRequest, error) {
	return s.list(func(r *domain.ServiceRequest) bool {
		return r.Status == domain.RequestStatusPending && r.MechanicID == nil
	}, true), nil
}

func (s *RequestStore) list(match func(*domain.ServiceRequest) bool, oldestFirst bool) []domain.ServiceRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []domain.ServiceRequest
	for _, request := range s.requests {
		if match(request) {
			result = append(result, *cloneRequest(request))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if oldestFirst {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result
}

func cloneRequest(r *domain.ServiceRequest) *domain.ServiceRequest {
	clone := *r
	clone.MechanicID = clonePtr(r.MechanicID)
	clone.Address = clonePtr(r.Address)
	clone.EstimatedArrival = clonePtr(r.EstimatedArrival)
	clone.AcceptedAt = clonePtr(r.AcceptedAt)
	clone.StartedAt = clonePtr(r.StartedAt)
	clone.CompletedAt = clonePtr(r.CompletedAt)
	return &clone
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
