package domain

import "time"

// RequestStatus enumerates lifecycle states for service requests.
type RequestStatus string

const (
	RequestStatusPending    RequestStatus = "PENDING"
	RequestStatusAccepted   RequestStatus = "ACCEPTED"
	RequestStatusInProgress RequestStatus = "IN_PROGRESS"
	RequestStatusCompleted  RequestStatus = "COMPLETED"
	RequestStatusCancelled  RequestStatus = "CANCELLED"
)

// Terminal reports whether the status admits no further transitions.
func (s RequestStatus) Terminal() bool {
	return s == RequestStatusCompleted || s == RequestStatusCancelled
}

// IssueType enumerates breakdown categories.
type IssueType string

const (
	IssueFlatTire      IssueType = "FLAT_TIRE"
	IssueEngineFailure IssueType = "ENGINE_FAILURE"
	IssueBatteryDead   IssueType = "BATTERY_DEAD"
	IssueOutOfFuel     IssueType = "OUT_OF_FUEL"
	IssueLockedOut     IssueType = "LOCKED_OUT"
	IssueAccident      IssueType = "ACCIDENT"
	IssueOther         IssueType = "OTHER"
)

// ValidIssueType reports whether t is a known issue category.
func ValidIssueType(t IssueType) bool {
	switch t {
	case IssueFlatTire, IssueEngineFailure, IssueBatteryDead, IssueOutOfFuel, IssueLockedOut, IssueAccident, IssueOther:
		return true
	}
	return false
}

// ServiceRequest is the aggregate for breakdown assistance requests.
// Mechanic assignment is tracked by id only; mechanic_id is non-nil
// exactly when status is ACCEPTED, IN_PROGRESS or COMPLETED.
type ServiceRequest struct {
	ID               string
	RequesterID      string
	MechanicID       *string
	IssueType        IssueType
	Description      string
	Latitude         float64
	Longitude        float64
	Address          *string
	Status           RequestStatus
	EstimatedArrival *time.Time
	CreatedAt        time.Time
	AcceptedAt       *time.Time
	StartedAt        *time.Time
	CompletedAt      *time.Time
	UpdatedAt        time.Time
}

// Active reports whether the request still occupies the requester's
// single active-request slot.
func (r *ServiceRequest) Active() bool {
	return !r.Status.Terminal()
}
