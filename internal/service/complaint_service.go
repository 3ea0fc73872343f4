package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/insurecare/feedback-portal/internal/access"
	"github.com/insurecare/feedback-portal/internal/domain"
	"github.com/insurecare/feedback-portal/internal/events"
	"github.com/insurecare/feedback-portal/internal/observability"
	"github.com/insurecare/feedback-portal/internal/repository"
	apperrors "github.com/insurecare/feedback-portal/pkg/util/errorutil"
	"github.com/insurecare/feedback-portal/pkg/util/validation"
)

// ComplaintService tracks complaints from filing to resolution.
type ComplaintService struct {
	publisher
	complaints repository.ComplaintRepository
	agents     repository.AgentRepository
	employees  repository.EmployeeRepository
	metrics    *observability.Metrics
	now        func() time.Time
}

// ComplaintDependencies bundles collaborators for complaint service.
type ComplaintDependencies struct {
	ComplaintRepo repository.ComplaintRepository
	AgentRepo     repository.AgentRepository
	EmployeeRepo  repository.EmployeeRepository
	Dispatcher    events.Dispatcher
	Metrics       *observability.Metrics
	Logger        *zap.Logger
}

// FileComplaintInput is a public complaint. The profile reference is optional.
type FileComplaintInput struct {
	AgentID          *int64                   `json:"agent_id"`
	EmployeeID       *int64                   `json:"employee_id"`
	ComplainantName  string                   `json:"complainant_name" validate:"required,min=2,max=255"`
	ComplainantEmail string                   `json:"complainant_email" validate:"required,email,max=255"`
	ComplainantPhone string                   `json:"complainant_phone" validate:"required,min=10,max=50"`
	PolicyNumber     *string                  `json:"policy_number" validate:"omitempty,max=100"`
	Type             domain.ComplaintType     `json:"complaint_type" validate:"required,oneof=service billing claim policy other"`
	Subject          string                   `json:"subject" validate:"required,min=5,max=255"`
	Description      string                   `json:"description" validate:"required,min=10,max=5000"`
	Priority         domain.ComplaintPriority `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
}

// UpdateComplaintInput is the admin triage form.
type UpdateComplaintInput struct {
	Status     *domain.ComplaintStatus   `json:"status" validate:"omitempty,oneof=pending in_progress resolved closed"`
	Priority   *domain.ComplaintPriority `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	Resolution *string                   `json:"resolution" validate:"omitempty,max=5000"`
}

// ComplaintListInput filters complaint listings.
type ComplaintListInput struct {
	Target   domain.Target
	Status   *domain.ComplaintStatus
	Priority *domain.ComplaintPriority
	Type     *domain.ComplaintType
	Search   string
	PageRequest
}

// NewComplaintService constructs the service.
func NewComplaintService(deps ComplaintDependencies) *ComplaintService {
	return &ComplaintService{
		publisher:  newPublisher(deps.Dispatcher, deps.Logger),
		complaints: deps.ComplaintRepo,
		agents:     deps.AgentRepo,
		employees:  deps.EmployeeRepo,
		metrics:    deps.Metrics,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// File records a new pending complaint.
func (s *ComplaintService) File(ctx context.Context, caller access.Caller, input FileComplaintInput) (*domain.Complaint, error) {
	if err := access.Authorize(caller, access.FileComplaint); err != nil {
		return nil, err
	}
	input.ComplainantEmail = normalizeEmail(input.ComplainantEmail)
	input.Subject = strings.TrimSpace(input.Subject)
	input.Description = strings.TrimSpace(input.Description)

	extra := map[string]string{}
	target, targetErr := domain.NewTarget(input.AgentID, input.EmployeeID)
	if targetErr != nil {
		extra["target"] = "at most one of agent_id or employee_id may be set"
	}
	if err := validation.Merge(validation.Struct(input), extra); err != nil {
		return nil, err
	}
	if err := s.ensureTarget(ctx, target); err != nil {
		return nil, err
	}

	priority := input.Priority
	if priority == "" {
		priority = domain.ComplaintPriorityMedium
	}
	complaint := &domain.Complaint{
		ComplainantName:  strings.TrimSpace(input.ComplainantName),
		ComplainantEmail: input.ComplainantEmail,
		ComplainantPhone: strings.TrimSpace(input.ComplainantPhone),
		PolicyNumber:     trimOptional(input.PolicyNumber),
		Target:           target,
		Type:             input.Type,
		Subject:          input.Subject,
		Description:      input.Description,
		Status:           domain.ComplaintStatusPending,
		Priority:         priority,
	}
	if err := s.complaints.Create(ctx, complaint); err != nil {
		if _, ok := repository.ForeignKeyViolation(err); ok {
			return nil, apperrors.NewNotFound(string(target.Kind()), map[string]any{"id": target.ID()})
		}
		return nil, err
	}

	s.metrics.RecordComplaint()
	s.publishEvent(ctx, events.Event{
		Type:    events.EventComplaintFiled,
		Target:  target,
		Actor:   actorOf(caller),
		Payload: events.ComplaintPayload{ComplaintID: complaint.ID, NewStatus: complaint.Status, Priority: complaint.Priority},
	})
	return complaint, nil
}

func (s *ComplaintService) ensureTarget(ctx context.Context, target domain.Target) error {
	var err error
	switch target.Kind() {
	case domain.KindAgent:
		_, err = s.agents.GetByID(ctx, target.ID())
	case domain.KindEmployee:
		_, err = s.employees.GetByID(ctx, target.ID())
	}
	if repository.IsNotFound(err) {
		return apperrors.NewNotFound(string(target.Kind()), map[string]any{"id": target.ID()})
	}
	return err
}

// Update moves a complaint between statuses and edits priority and resolution.
// Any status may follow any other; resolved_at tracks the resolved state.
func (s *ComplaintService) Update(ctx context.Context, caller access.Caller, id int64, input UpdateComplaintInput) (*domain.Complaint, error) {
	if err := access.Authorize(caller, access.ManageComplaints); err != nil {
		return nil, err
	}
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	complaint, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	oldStatus := complaint.Status
	if input.Status != nil {
		complaint.SetStatus(*input.Status, s.now())
	}
	if input.Priority != nil {
		complaint.Priority = *input.Priority
	}
	if input.Resolution != nil {
		complaint.Resolution = trimOptional(input.Resolution)
	}
	if err := s.complaints.Update(ctx, complaint); err != nil {
		if repository.IsNotFound(err) {
			return nil, apperrors.NewNotFound("complaint", map[string]any{"id": id})
		}
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:   events.EventComplaintUpdated,
		Target: complaint.Target,
		Actor:  actorOf(caller),
		Payload: events.ComplaintPayload{
			ComplaintID: complaint.ID,
			OldStatus:   oldStatus,
			NewStatus:   complaint.Status,
			Priority:    complaint.Priority,
		},
	})
	return complaint, nil
}

// Get returns one complaint. Staff may only read complaints about their own
// profile; any other id is reported as not found.
func (s *ComplaintService) Get(ctx context.Context, caller access.Caller, id int64) (*domain.Complaint, error) {
	if err := access.Authorize(caller, access.ReadComplaint); err != nil {
		return nil, err
	}
	if !caller.IsAdmin() {
		if _, err := access.OwnTarget(caller); err != nil {
			return nil, err
		}
	}
	complaint, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.IsAdmin() && complaint.Target != caller.Target {
		return nil, apperrors.NewNotFound("complaint", map[string]any{"id": id})
	}
	return complaint, nil
}

// List returns complaints newest first, scoped like rating listings.
func (s *ComplaintService) List(ctx context.Context, caller access.Caller, input ComplaintListInput) (domain.Page[domain.Complaint], error) {
	if err := access.Authorize(caller, access.ListComplaints); err != nil {
		return domain.Page[domain.Complaint]{}, err
	}
	page, limit, offset := input.normalize()
	target, visible, err := access.Scope(caller, input.Target)
	if err != nil {
		return domain.Page[domain.Complaint]{}, err
	}
	if !visible {
		return domain.NewPage[domain.Complaint](nil, 0, page, limit), nil
	}

	complaints, total, err := s.complaints.List(ctx, repository.ComplaintFilter{
		Target:   target,
		Status:   input.Status,
		Priority: input.Priority,
		Type:     input.Type,
		Search:   input.Search,
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		return domain.Page[domain.Complaint]{}, err
	}
	return domain.NewPage(complaints, total, page, limit), nil
}

// Delete hard-deletes a complaint.
func (s *ComplaintService) Delete(ctx context.Context, caller access.Caller, id int64) error {
	if err := access.Authorize(caller, access.ManageComplaints); err != nil {
		return err
	}
	complaint, err := s.complaints.Delete(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return apperrors.NewNotFound("complaint", map[string]any{"id": id})
		}
		return err
	}
	s.publishEvent(ctx, events.Event{
		Type:    events.EventComplaintDeleted,
		Target:  complaint.Target,
		Actor:   actorOf(caller),
		Payload: events.ComplaintPayload{ComplaintID: complaint.ID, OldStatus: complaint.Status},
	})
	return nil
}

func (s *ComplaintService) load(ctx context.Context, id int64) (*domain.Complaint, error) {
	complaint, err := s.complaints.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperrors.NewNotFound("complaint", map[string]any{"id": id})
		}
		return nil, err
	}
	return complaint, nil
}
