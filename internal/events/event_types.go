package events

import (
	"time"

	"github.com/insurecare/feedback-portal/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventRatingSubmitted   EventType = "rating_submitted"
	EventRatingDeleted     EventType = "rating_deleted"
	EventComplaintFiled    EventType = "complaint_filed"
	EventComplaintUpdated  EventType = "complaint_updated"
	EventComplaintDeleted  EventType = "complaint_deleted"
	EventProfileDeleted    EventType = "profile_deleted"
	EventUserRegistered    EventType = "user_registered"
	EventUserUpdated       EventType = "user_updated"
	EventUserDeleted       EventType = "user_deleted"
	EventProfileQRRendered EventType = "profile_qr_rendered"
)

// AllTypes lists every event type, for subscribers that observe everything.
var AllTypes = []EventType{
	EventRatingSubmitted,
	EventRatingDeleted,
	EventComplaintFiled,
	EventComplaintUpdated,
	EventComplaintDeleted,
	EventProfileDeleted,
	EventUserRegistered,
	EventUserUpdated,
	EventUserDeleted,
	EventProfileQRRendered,
}

// Actor identifies who caused an event. Anonymous customers have no UserID.
type Actor struct {
	UserID *int64 `json:"user_id,omitempty"`
	Role   string `json:"role"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string        `json:"id"`
	Type      EventType     `json:"type"`
	Target    domain.Target `json:"-"`
	Actor     Actor         `json:"actor"`
	Timestamp time.Time     `json:"timestamp"`
	Payload   interface{}   `json:"payload"`
}

// RatingSubmittedPayload payload.
type RatingSubmittedPayload struct {
	Answers    int    `json:"answers"`
	RaterEmail string `json:"rater_email"`
}

// ComplaintPayload payload.
type ComplaintPayload struct {
	ComplaintID int64                    `json:"complaint_id"`
	OldStatus   domain.ComplaintStatus   `json:"old_status,omitempty"`
	NewStatus   domain.ComplaintStatus   `json:"new_status,omitempty"`
	Priority    domain.ComplaintPriority `json:"priority,omitempty"`
}

// UserPayload payload.
type UserPayload struct {
	UserID     int64       `json:"user_id"`
	Role       domain.Role `json:"role"`
	IsApproved bool        `json:"is_approved"`
}
