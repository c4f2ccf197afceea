package domain

import (
	"fmt"
	"time"
)

// UserRole distinguishes line pilots from administrators.
type UserRole string

const (
	UserRolePilot UserRole = "pilot"
	UserRoleAdmin UserRole = "admin"
)

// User represents an account in the system. Users are never deleted,
// only deactivated via the Active flag.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         UserRole
	License      string
	Active       bool
	QueryCount   int64
	LastLogin    *time.Time
	CreatedAt    time.Time
}

// ValidateUser validates a User instance
func ValidateUser(u *User) error {
	if u == nil {
		return fmt.Errorf("user cannot be nil")
	}

	if u.ID == "" {
		return fmt.Errorf("user ID is required")
	}

	if u.Name == "" {
		return fmt.Errorf("user Name is required")
	}

	if u.Email == "" {
		return fmt.Errorf("user Email is required")
	}

	if u.PasswordHash == "" {
		return fmt.Errorf("user PasswordHash is required")
	}

	if !isValidUserRole(u.Role) {
		return fmt.Errorf("user Role is invalid: %s", u.Role)
	}

	return nil
}

// isValidUserRole checks if a UserRole is valid
func isValidUserRole(r UserRole) bool {
	switch r {
	case UserRolePilot, UserRoleAdmin:
		return true
	}
	return false
}
