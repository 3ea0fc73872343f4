package dto

import (
	"time"

	"github.com/insurecare/feedback-portal/internal/domain"
)

// QuestionResponse is one rubric question.
type QuestionResponse struct {
	ID           int64              `json:"id"`
	QuestionText string             `json:"question_text"`
	QuestionType domain.ProfileKind `json:"question_type"`
	IsActive     bool               `json:"is_active"`
	OrderIndex   int                `json:"order_index"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

func NewQuestionResponse(q *domain.Question) QuestionResponse {
	return QuestionResponse{
		ID:           q.ID,
		QuestionText: q.Text,
		QuestionType: q.Type,
		IsActive:     q.IsActive,
		OrderIndex:   q.OrderIndex,
		CreatedAt:    q.CreatedAt,
		UpdatedAt:    q.UpdatedAt,
	}
}

// RatingResponse is one stored answer.
type RatingResponse struct {
	ID           int64     `json:"id"`
	AgentID      *int64    `json:"agent_id"`
	EmployeeID   *int64    `json:"employee_id"`
	QuestionID   int64     `json:"question_id"`
	QuestionText string    `json:"question_text,omitempty"`
	RatingValue  int       `json:"rating_value"`
	Comments     *string   `json:"comments"`
	RaterName    string    `json:"rater_name"`
	RaterEmail   string    `json:"rater_email"`
	RaterPhone   string    `json:"rater_phone"`
	PolicyNumber *string   `json:"policy_number"`
	CreatedAt    time.Time `json:"created_at"`
}

func NewRatingResponse(r *domain.Rating) RatingResponse {
	agentID, employeeID := r.Target.Columns()
	return RatingResponse{
		ID:           r.ID,
		AgentID:      agentID,
		EmployeeID:   employeeID,
		QuestionID:   r.QuestionID,
		QuestionText: r.QuestionText,
		RatingValue:  r.Value,
		Comments:     r.Comments,
		RaterName:    r.RaterName,
		RaterEmail:   r.RaterEmail,
		RaterPhone:   r.RaterPhone,
		PolicyNumber: r.PolicyNumber,
		CreatedAt:    r.CreatedAt,
	}
}

// ComplaintResponse is a complaint with its lifecycle fields.
type ComplaintResponse struct {
	ID               int64                    `json:"id"`
	AgentID          *int64                   `json:"agent_id"`
	EmployeeID       *int64                   `json:"employee_id"`
	ComplainantName  string                   `json:"complainant_name"`
	ComplainantEmail string                   `json:"complainant_email"`
	ComplainantPhone string                   `json:"complainant_phone"`
	PolicyNumber     *string                  `json:"policy_number"`
	ComplaintType    domain.ComplaintType     `json:"complaint_type"`
	Subject          string                   `json:"subject"`
	Description      string                   `json:"description"`
	Status           domain.ComplaintStatus   `json:"status"`
	Priority         domain.ComplaintPriority `json:"priority"`
	Resolution       *string                  `json:"resolution"`
	ResolvedAt       *time.Time               `json:"resolved_at"`
	CreatedAt        time.Time                `json:"created_at"`
	UpdatedAt        time.Time                `json:"updated_at"`
}

func NewComplaintResponse(c *domain.Complaint) ComplaintResponse {
	agentID, employeeID := c.Target.Columns()
	return ComplaintResponse{
		ID:               c.ID,
		AgentID:          agentID,
		EmployeeID:       employeeID,
		ComplainantName:  c.ComplainantName,
		ComplainantEmail: c.ComplainantEmail,
		ComplainantPhone: c.ComplainantPhone,
		PolicyNumber:     c.PolicyNumber,
		ComplaintType:    c.Type,
		Subject:          c.Subject,
		Description:      c.Description,
		Status:           c.Status,
		Priority:         c.Priority,
		Resolution:       c.Resolution,
		ResolvedAt:       c.ResolvedAt,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
}

// ResolveCodeRequest carries the text decoded from a scanned QR image.
type ResolveCodeRequest struct {
	Payload string `json:"payload"`
}
