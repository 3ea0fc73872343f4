package domain

import (
	"fmt"
	"time"
)

// ProfileKind distinguishes the two rateable profile entities.
type ProfileKind string

const (
	KindAgent    ProfileKind = "agent"
	KindEmployee ProfileKind = "employee"
)

// ParseProfileKind accepts exactly "agent" or "employee".
func ParseProfileKind(s string) (ProfileKind, error) {
	switch ProfileKind(s) {
	case KindAgent:
		return KindAgent, nil
	case KindEmployee:
		return KindEmployee, nil
	}
	return "", fmt.Errorf("unknown profile kind %q", s)
}

// StaffRole returns the user role allowed to link to this kind.
func (k ProfileKind) StaffRole() Role {
	if k == KindAgent {
		return RoleAgent
	}
	return RoleFrontline
}

// Agent is a field insurance agent.
type Agent struct {
	ID        int64
	UserID    *int64
	Name      string
	Email     string
	Phone     string
	Branch    string
	Location  string
	Latitude  *float64
	Longitude *float64
	IsOnline  bool
	QRCode    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Target returns the rating target for this agent.
func (a *Agent) Target() Target { return ForAgent(a.ID) }

// Employee is a branch (frontline) employee.
type Employee struct {
	ID         int64
	UserID     *int64
	Name       string
	Email      string
	Phone      string
	Branch     string
	Department string
	Position   string
	QRCode     string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Target returns the rating target for this employee.
func (e *Employee) Target() Target { return ForEmployee(e.ID) }

// ProfileSummary is the public view of either profile kind, with derived rating stats.
type ProfileSummary struct {
	Kind     ProfileKind
	ID       int64
	Name     string
	Email    string
	Phone    string
	Branch   string
	Location string
	// Department and Position are set for employees only.
	Department string
	Position   string
	IsOnline   bool
	Stats      RatingStats
}

// AgentSummary builds the public view of an agent.
func AgentSummary(a *Agent, stats RatingStats) ProfileSummary {
	return ProfileSummary{
		Kind:     KindAgent,
		ID:       a.ID,
		Name:     a.Name,
		Email:    a.Email,
		Phone:    a.Phone,
		Branch:   a.Branch,
		Location: a.Location,
		IsOnline: a.IsOnline,
		Stats:    stats,
	}
}

// EmployeeSummary builds the public view of an employee.
func EmployeeSummary(e *Employee, stats RatingStats) ProfileSummary {
	return ProfileSummary{
		Kind:       KindEmployee,
		ID:         e.ID,
		Name:       e.Name,
		Email:      e.Email,
		Phone:      e.Phone,
		Branch:     e.Branch,
		Department: e.Department,
		Position:   e.Position,
		Stats:      stats,
	}
}

// NearbyAgent pairs an agent with its great-circle distance from a query point.
type NearbyAgent struct {
	Agent      Agent
	DistanceKm float64
	Stats      RatingStats
}
