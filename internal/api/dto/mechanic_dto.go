package dto

import "time"

// MechanicProfileResponse is the profile view returned to clients.
type MechanicProfileResponse struct {
	ID                string     `json:"id"`
	UserID            string     `json:"user_id"`
	Specializations   []string   `json:"specializations"`
	Available         bool       `json:"available"`
	Verified          bool       `json:"verified"`
	CurrentLatitude   *float64   `json:"current_latitude,omitempty"`
	CurrentLongitude  *float64   `json:"current_longitude,omitempty"`
	Rating            float64    `json:"rating"`
	TotalJobs         int        `json:"total_jobs"`
	LocationUpdatedAt *time.Time `json:"location_updated_at,omitempty"`
}

// UpdateProfileRequest carries the mechanic's editable profile fields.
type UpdateProfileRequest struct {
	Specializations []string `json:"specializations,omitempty"`
	Available       *bool    `json:"available,omitempty"`
}

// AvailabilityRequest toggles matching visibility.
type AvailabilityRequest struct {
	Available bool `json:"available"`
}

// LocationUpdateRequest is a mechanic position tick.
type LocationUpdateRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}
