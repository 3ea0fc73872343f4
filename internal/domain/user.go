package domain

import "time"

// Role is the account role stored on a user.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleAgent     Role = "agent"
	RoleFrontline Role = "frontline"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleAgent, RoleFrontline:
		return true
	}
	return false
}

// IsStaff reports whether r is bound to a rateable profile.
func (r Role) IsStaff() bool {
	return r == RoleAgent || r == RoleFrontline
}

// ProfileKind returns the profile kind a staff role is linked to.
func (r Role) ProfileKind() (ProfileKind, bool) {
	switch r {
	case RoleAgent:
		return KindAgent, true
	case RoleFrontline:
		return KindEmployee, true
	}
	return "", false
}

// User is a portal account. Self-registered accounts start unapproved.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	IsApproved   bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
