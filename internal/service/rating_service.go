package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/insurecare/feedback-portal/internal/access"
	"github.com/insurecare/feedback-portal/internal/domain"
	"github.com/insurecare/feedback-portal/internal/events"
	"github.com/insurecare/feedback-portal/internal/observability"
	"github.com/insurecare/feedback-portal/internal/repository"
	apperrors "github.com/insurecare/feedback-portal/pkg/util/errorutil"
	"github.com/insurecare/feedback-portal/pkg/util/validation"
)

// RatingService accepts customer submissions and serves rating listings.
type RatingService struct {
	publisher
	ratings   repository.RatingRepository
	questions repository.QuestionRepository
	agents    repository.AgentRepository
	employees repository.EmployeeRepository
	metrics   *observability.Metrics
}

// RatingDependencies bundles collaborators for rating service.
type RatingDependencies struct {
	RatingRepo   repository.RatingRepository
	QuestionRepo repository.QuestionRepository
	AgentRepo    repository.AgentRepository
	EmployeeRepo repository.EmployeeRepository
	Dispatcher   events.Dispatcher
	Metrics      *observability.Metrics
	Logger       *zap.Logger
}

// RatingAnswer is one answered question of a submission.
type RatingAnswer struct {
	QuestionID int64   `json:"question_id" validate:"required,gt=0"`
	Value      int     `json:"rating_value" validate:"required,min=1,max=5"`
	Comments   *string `json:"comments" validate:"omitempty,max=2000"`
}

// SubmitRatingInput is a public rating submission for exactly one profile.
type SubmitRatingInput struct {
	AgentID      *int64         `json:"agent_id"`
	EmployeeID   *int64         `json:"employee_id"`
	RaterName    string         `json:"rater_name" validate:"required,min=2,max=255"`
	RaterEmail   string         `json:"rater_email" validate:"required,email,max=255"`
	RaterPhone   string         `json:"rater_phone" validate:"required,min=10,max=50"`
	PolicyNumber *string        `json:"policy_number" validate:"omitempty,max=100"`
	Ratings      []RatingAnswer `json:"ratings" validate:"required,min=1,dive"`
}

// RatingListInput filters rating listings. A None target lists everything the caller may see.
type RatingListInput struct {
	Target domain.Target
	PageRequest
}

// NewRatingService constructs the service.
func NewRatingService(deps RatingDependencies) *RatingService {
	return &RatingService{
		publisher: newPublisher(deps.Dispatcher, deps.Logger),
		ratings:   deps.RatingRepo,
		questions: deps.QuestionRepo,
		agents:    deps.AgentRepo,
		employees: deps.EmployeeRepo,
		metrics:   deps.Metrics,
	}
}

// Submit validates a whole submission and stores every answer or none of them.
func (s *RatingService) Submit(ctx context.Context, caller access.Caller, input SubmitRatingInput) ([]domain.Rating, error) {
	if err := access.Authorize(caller, access.SubmitRating); err != nil {
		return nil, err
	}
	input.RaterEmail = normalizeEmail(input.RaterEmail)
	input.RaterName = strings.TrimSpace(input.RaterName)

	extra := map[string]string{}
	target, targetErr := domain.NewTarget(input.AgentID, input.EmployeeID)
	if targetErr != nil || target.IsNone() {
		extra["target"] = "exactly one of agent_id or employee_id is required"
	}
	seen := make(map[int64]int, len(input.Ratings))
	for i, answer := range input.Ratings {
		if first, dup := seen[answer.QuestionID]; dup && answer.QuestionID > 0 {
			extra[fmt.Sprintf("ratings[%d].question_id", i)] = fmt.Sprintf("duplicates ratings[%d]", first)
			continue
		}
		seen[answer.QuestionID] = i
	}
	if err := validation.Merge(validation.Struct(input), extra); err != nil {
		return nil, err
	}

	if err := s.ensureTarget(ctx, target); err != nil {
		return nil, err
	}
	if err := s.checkQuestions(ctx, target.Kind(), input.Ratings); err != nil {
		return nil, err
	}

	batch := make([]*domain.Rating, len(input.Ratings))
	for i, answer := range input.Ratings {
		batch[i] = &domain.Rating{
			RaterName:    input.RaterName,
			RaterEmail:   input.RaterEmail,
			RaterPhone:   strings.TrimSpace(input.RaterPhone),
			PolicyNumber: trimOptional(input.PolicyNumber),
			Target:       target,
			QuestionID:   answer.QuestionID,
			Value:        answer.Value,
			Comments:     trimOptional(answer.Comments),
		}
	}
	if err := s.ratings.CreateBatch(ctx, batch); err != nil {
		if _, ok := repository.ForeignKeyViolation(err); ok {
			return nil, apperrors.NewNotFound("rating target or question", nil)
		}
		return nil, err
	}

	s.metrics.RecordRatings(string(target.Kind()), len(batch))
	s.publishEvent(ctx, events.Event{
		Type:    events.EventRatingSubmitted,
		Target:  target,
		Actor:   actorOf(caller),
		Payload: events.RatingSubmittedPayload{Answers: len(batch), RaterEmail: input.RaterEmail},
	})

	stored := make([]domain.Rating, len(batch))
	for i, r := range batch {
		stored[i] = *r
	}
	return stored, nil
}

func (s *RatingService) ensureTarget(ctx context.Context, target domain.Target) error {
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

// checkQuestions requires every answered question to exist, be active and belong to kind.
func (s *RatingService) checkQuestions(ctx context.Context, kind domain.ProfileKind, answers []RatingAnswer) error {
	ids := make([]int64, len(answers))
	for i, a := range answers {
		ids[i] = a.QuestionID
	}
	found, err := s.questions.GetByIDs(ctx, ids)
	if err != nil {
		return err
	}
	byID := make(map[int64]domain.Question, len(found))
	for _, q := range found {
		byID[q.ID] = q
	}

	details := map[string]any{}
	for i, a := range answers {
		field := fmt.Sprintf("ratings[%d].question_id", i)
		q, ok := byID[a.QuestionID]
		switch {
		case !ok:
			details[field] = "question does not exist"
		case !q.IsActive:
			details[field] = "question is not active"
		case q.Type != kind:
			details[field] = fmt.Sprintf("question is for %s profiles", q.Type)
		}
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details)
	}
	return nil
}

// List returns ratings newest first. Staff only ever see their own profile's
// ratings; asking for another profile yields an empty page without a query.
func (s *RatingService) List(ctx context.Context, caller access.Caller, input RatingListInput) (domain.Page[domain.Rating], error) {
	if err := access.Authorize(caller, access.ListRatings); err != nil {
		return domain.Page[domain.Rating]{}, err
	}
	page, limit, offset := input.normalize()
	target, visible, err := access.Scope(caller, input.Target)
	if err != nil {
		return domain.Page[domain.Rating]{}, err
	}
	if !visible {
		return domain.NewPage[domain.Rating](nil, 0, page, limit), nil
	}

	ratings, total, err := s.ratings.List(ctx, repository.RatingFilter{Target: target, Limit: limit, Offset: offset})
	if err != nil {
		return domain.Page[domain.Rating]{}, err
	}
	return domain.NewPage(ratings, total, page, limit), nil
}

// Delete removes a single rating row.
func (s *RatingService) Delete(ctx context.Context, caller access.Caller, id int64) error {
	if err := access.Authorize(caller, access.DeleteRating); err != nil {
		return err
	}
	rating, err := s.ratings.Delete(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return apperrors.NewNotFound("rating", map[string]any{"id": id})
		}
		return err
	}
	s.publishEvent(ctx, events.Event{
		Type:   events.EventRatingDeleted,
		Target: rating.Target,
		Actor:  actorOf(caller),
	})
	return nil
}

// Summary derives the rating count and average of target.
func (s *RatingService) Summary(ctx context.Context, target domain.Target) (domain.RatingStats, error) {
	return s.ratings.Stats(ctx, target)
}

func trimOptional(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
