package domain

import "time"

// UserRole enumerates caller roles.
type UserRole string

const (
	UserRoleRequester UserRole = "USER"
	UserRoleMechanic  UserRole = "MECHANIC"
	UserRoleProvider  UserRole = "PROVIDER"
	UserRoleAdmin     UserRole = "ADMIN"
)

// UserStatus represents account lifecycle states.
type UserStatus string

const (
	UserStatusActive    UserStatus = "ACTIVE"
	UserStatusSuspended UserStatus = "SUSPENDED"
)

// User is the shared identity referenced by service requests, mechanic
// profiles and parts providers.
type User struct {
	ID           string
	Name         string
	Email        string
	Phone        string
	PasswordHash string
	Role         UserRole
	Status       UserStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
