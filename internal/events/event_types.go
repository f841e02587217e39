package events

import (
	"time"

	"github.com/spec-kit/roadside-assist/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventRequestCreated          EventType = "request_created"
	EventRequestStatusChanged    EventType = "request_status_changed"
	EventRequestCancelled        EventType = "request_cancelled"
	EventMechanicLocationUpdated EventType = "mechanic_location_updated"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	RequestID string      `json:"request_id,omitempty"`
	ActorID   string      `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// RequestSnapshot is the self-contained request view carried in payloads so
// subscribers never need a follow-up query to render the event.
type RequestSnapshot struct {
	ID               string               `json:"id"`
	RequesterID      string               `json:"requester_id"`
	MechanicID       *string              `json:"mechanic_id,omitempty"`
	IssueType        domain.IssueType     `json:"issue_type"`
	Description      string               `json:"description,omitempty"`
	Latitude         float64              `json:"latitude"`
	Longitude        float64              `json:"longitude"`
	Address          *string              `json:"address,omitempty"`
	Status           domain.RequestStatus `json:"status"`
	EstimatedArrival *time.Time           `json:"estimated_arrival,omitempty"`
	CreatedAt        time.Time            `json:"created_at"`
	AcceptedAt       *time.Time           `json:"accepted_at,omitempty"`
	StartedAt        *time.Time           `json:"started_at,omitempty"`
	CompletedAt      *time.Time           `json:"completed_at,omitempty"`
}

// SnapshotRequest copies the request into its payload form.
func SnapshotRequest(r *domain.ServiceRequest) RequestSnapshot {
	return RequestSnapshot{
		ID:               r.ID,
		RequesterID:      r.RequesterID,
		MechanicID:       r.MechanicID,
		IssueType:        r.IssueType,
		Description:      r.Description,
		Latitude:         r.Latitude,
		Longitude:        r.Longitude,
		Address:          r.Address,
		Status:           r.Status,
		EstimatedArrival: r.EstimatedArrival,
		CreatedAt:        r.CreatedAt,
		AcceptedAt:       r.AcceptedAt,
		StartedAt:        r.StartedAt,
		CompletedAt:      r.CompletedAt,
	}
}

// RequestCreatedPayload payload.
type RequestCreatedPayload struct {
	Request RequestSnapshot `json:"request"`
}

// RequestStatusChangedPayload payload.
type RequestStatusChangedPayload struct {
	Request   RequestSnapshot      `json:"request"`
	OldStatus domain.RequestStatus `json:"old_status"`
	NewStatus domain.RequestStatus `json:"new_status"`
}

// RequestCancelledPayload payload. MechanicID is the mechanic assigned at
// cancellation time, if any; the cancelled record itself no longer carries
// one.
type RequestCancelledPayload struct {
	Request    RequestSnapshot `json:"request"`
	MechanicID *string         `json:"mechanic_id,omitempty"`
}

// MechanicLocationPayload payload. RequestIDs lists the mechanic's
// ACCEPTED/IN_PROGRESS requests whose observers should see the tick.
type MechanicLocationPayload struct {
	MechanicID string   `json:"mechanic_id"`
	Latitude   float64  `json:"latitude"`
	Longitude  float64  `json:"longitude"`
	RequestIDs []string `json:"request_ids"`
}
