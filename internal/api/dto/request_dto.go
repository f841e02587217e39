package dto

import (
	"time"

	"github.com/spec-kit/roadside-assist/internal/domain"
)

// CreateRequestRequest is the payload for opening a service request.
type CreateRequestRequest struct {
	IssueType   string  `json:"issue_type"`
	Description string  `json:"description"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Address     *string `json:"address,omitempty"`
}

// ServiceRequestResponse is the request view returned to clients.
type ServiceRequestResponse struct {
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
	UpdatedAt        time.Time            `json:"updated_at"`
}
