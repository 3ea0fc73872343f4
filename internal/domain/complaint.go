package domain

import "time"

// ComplaintType classifies a complaint.
type ComplaintType string

const (
	ComplaintTypeService ComplaintType = "service"
	ComplaintTypeBilling ComplaintType = "billing"
	ComplaintTypeClaim   ComplaintType = "claim"
	ComplaintTypePolicy  ComplaintType = "policy"
	ComplaintTypeOther   ComplaintType = "other"
)

// ComplaintStatus enumerates complaint lifecycle states.
type ComplaintStatus string

const (
	ComplaintStatusPending    ComplaintStatus = "pending"
	ComplaintStatusInProgress ComplaintStatus = "in_progress"
	ComplaintStatusResolved   ComplaintStatus = "resolved"
	ComplaintStatusClosed     ComplaintStatus = "closed"
)

// ComplaintPriority is independent of status.
type ComplaintPriority string

const (
	ComplaintPriorityLow    ComplaintPriority = "low"
	ComplaintPriorityMedium ComplaintPriority = "medium"
	ComplaintPriorityHigh   ComplaintPriority = "high"
	ComplaintPriorityUrgent ComplaintPriority = "urgent"
)

// Complaint is filed publicly and managed by admins.
type Complaint struct {
	ID               int64
	ComplainantName  string
	ComplainantEmail string
	ComplainantPhone string
	PolicyNumber     *string
	Target           Target
	Type             ComplaintType
	Subject          string
	Description      string
	Status           ComplaintStatus
	Priority         ComplaintPriority
	Resolution       *string
	ResolvedAt       *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// SetStatus moves the complaint to status. Any status may follow any other;
// entering resolved stamps ResolvedAt and leaving it clears the stamp.
func (c *Complaint) SetStatus(status ComplaintStatus, now time.Time) {
	if status == ComplaintStatusResolved {
		if c.Status != ComplaintStatusResolved || c.ResolvedAt == nil {
			c.ResolvedAt = &now
		}
	} else {
		c.ResolvedAt = nil
	}
	c.Status = status
}
