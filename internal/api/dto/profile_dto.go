package dto

import (
	"time"

	"github.com/insurecare/feedback-portal/internal/domain"
)

// RatingSummary is the derived rating block embedded in profile responses.
// AverageRating is null when the profile has no ratings.
type RatingSummary struct {
	TotalRatings  int64    `json:"total_ratings"`
	AverageRating *float64 `json:"average_rating"`
}

func NewRatingSummary(s domain.RatingStats) RatingSummary {
	return RatingSummary{TotalRatings: s.Count, AverageRating: s.Average}
}

// PublicAgentResponse is the anonymous view of an agent. It leaves out the
// linked account and the QR code.
type PublicAgentResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Location  string    `json:"location"`
	Branch    string    `json:"branch"`
	Latitude  *float64  `json:"latitude"`
	Longitude *float64  `json:"longitude"`
	IsOnline  bool      `json:"is_online"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	RatingSummary
}

func NewPublicAgentResponse(a *domain.Agent, stats domain.RatingStats) PublicAgentResponse {
	return PublicAgentResponse{
		ID:            a.ID,
		Name:          a.Name,
		Email:         a.Email,
		Phone:         a.Phone,
		Location:      a.Location,
		Branch:        a.Branch,
		Latitude:      a.Latitude,
		Longitude:     a.Longitude,
		IsOnline:      a.IsOnline,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
		RatingSummary: NewRatingSummary(stats),
	}
}

// AgentResponse is the full agent record served to admins and its owner.
type AgentResponse struct {
	PublicAgentResponse
	UserID *int64 `json:"user_id"`
	QRCode string `json:"qr_code"`
}

func NewAgentResponse(a *domain.Agent, stats domain.RatingStats) AgentResponse {
	return AgentResponse{
		PublicAgentResponse: NewPublicAgentResponse(a, stats),
		UserID:              a.UserID,
		QRCode:              a.QRCode,
	}
}

// PublicEmployeeResponse is the anonymous view of an employee.
type PublicEmployeeResponse struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	Department string    `json:"department"`
	Position   string    `json:"position"`
	Branch     string    `json:"branch"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	RatingSummary
}

func NewPublicEmployeeResponse(e *domain.Employee, stats domain.RatingStats) PublicEmployeeResponse {
	return PublicEmployeeResponse{
		ID:            e.ID,
		Name:          e.Name,
		Email:         e.Email,
		Phone:         e.Phone,
		Department:    e.Department,
		Position:      e.Position,
		Branch:        e.Branch,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
		RatingSummary: NewRatingSummary(stats),
	}
}

// EmployeeResponse is the full employee record.
type EmployeeResponse struct {
	PublicEmployeeResponse
	UserID *int64 `json:"user_id"`
	QRCode string `json:"qr_code"`
}

func NewEmployeeResponse(e *domain.Employee, stats domain.RatingStats) EmployeeResponse {
	return EmployeeResponse{
		PublicEmployeeResponse: NewPublicEmployeeResponse(e, stats),
		UserID:                 e.UserID,
		QRCode:                 e.QRCode,
	}
}

// ProfileSummaryResponse is the public view of either kind.
type ProfileSummaryResponse struct {
	Type       domain.ProfileKind `json:"type"`
	ID         int64              `json:"id"`
	Name       string             `json:"name"`
	Email      string             `json:"email"`
	Phone      string             `json:"phone"`
	Branch     string             `json:"branch"`
	Location   string             `json:"location,omitempty"`
	Department string             `json:"department,omitempty"`
	Position   string             `json:"position,omitempty"`
	IsOnline   bool               `json:"is_online"`
	RatingSummary
}

func NewProfileSummaryResponse(p *domain.ProfileSummary) ProfileSummaryResponse {
	return ProfileSummaryResponse{
		Type:          p.Kind,
		ID:            p.ID,
		Name:          p.Name,
		Email:         p.Email,
		Phone:         p.Phone,
		Branch:        p.Branch,
		Location:      p.Location,
		Department:    p.Department,
		Position:      p.Position,
		IsOnline:      p.IsOnline,
		RatingSummary: NewRatingSummary(p.Stats),
	}
}

// NearbyAgentResponse adds the distance from the query point.
type NearbyAgentResponse struct {
	PublicAgentResponse
	DistanceKm float64 `json:"distance_km"`
}

func NewNearbyAgentResponse(n *domain.NearbyAgent) NearbyAgentResponse {
	return NearbyAgentResponse{PublicAgentResponse: NewPublicAgentResponse(&n.Agent, n.Stats), DistanceKm: n.DistanceKm}
}

// LinkUserRequest links (or with a null user_id unlinks) a staff account.
type LinkUserRequest struct {
	UserID *int64 `json:"user_id"`
}
