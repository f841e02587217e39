package domain

import "time"

// MechanicProfile models a mechanic's dispatch-relevant state. It is owned
// by a User (referenced by id) with role MECHANIC.
type MechanicProfile struct {
	ID                string
	UserID            string
	Specializations   []string
	Available         bool
	Verified          bool
	CurrentLatitude   *float64
	CurrentLongitude  *float64
	Rating            float64
	TotalJobs         int
	LocationUpdatedAt *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// HasLocation reports whether the mechanic has published coordinates.
func (p *MechanicProfile) HasLocation() bool {
	return p.CurrentLatitude != nil && p.CurrentLongitude != nil
}
