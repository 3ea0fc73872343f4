package service

import (
	"context"
	"strings"

	"github.com/insurecare/feedback-portal/internal/access"
	"github.com/insurecare/feedback-portal/internal/domain"
	"github.com/insurecare/feedback-portal/internal/repository"
	apperrors "github.com/insurecare/feedback-portal/pkg/util/errorutil"
	"github.com/insurecare/feedback-portal/pkg/util/validation"
)

// QuestionService maintains the rating rubric.
type QuestionService struct {
	questions repository.QuestionRepository
}

// QuestionInput creates a question. IsActive defaults to true.
type QuestionInput struct {
	Text       string             `json:"question_text" validate:"required,min=5,max=1000"`
	Type       domain.ProfileKind `json:"question_type" validate:"required,oneof=agent employee"`
	IsActive   *bool              `json:"is_active"`
	OrderIndex int                `json:"order_index" validate:"gte=0"`
}

// QuestionPatch partially updates a question.
type QuestionPatch struct {
	Text       *string             `json:"question_text" validate:"omitempty,min=5,max=1000"`
	Type       *domain.ProfileKind `json:"question_type" validate:"omitempty,oneof=agent employee"`
	IsActive   *bool               `json:"is_active"`
	OrderIndex *int                `json:"order_index" validate:"omitempty,gte=0"`
}

// NewQuestionService constructs the service.
func NewQuestionService(questions repository.QuestionRepository) *QuestionService {
	return &QuestionService{questions: questions}
}

// List returns the questions of kind (all kinds when nil) in display order.
// Only administrators see inactive questions.
func (s *QuestionService) List(ctx context.Context, caller access.Caller, kind *domain.ProfileKind) ([]domain.Question, error) {
	if err := access.Authorize(caller, access.ReadQuestions); err != nil {
		return nil, err
	}
	questions, err := s.questions.List(ctx, repository.QuestionFilter{Type: kind, ActiveOnly: !caller.IsAdmin()})
	if err != nil {
		return nil, err
	}
	if questions == nil {
		questions = []domain.Question{}
	}
	return questions, nil
}

func (s *QuestionService) Create(ctx context.Context, caller access.Caller, input QuestionInput) (*domain.Question, error) {
	if err := access.Authorize(caller, access.ManageQuestions); err != nil {
		return nil, err
	}
	input.Text = strings.TrimSpace(input.Text)
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	question := &domain.Question{
		Text:       input.Text,
		Type:       input.Type,
		IsActive:   input.IsActive == nil || *input.IsActive,
		OrderIndex: input.OrderIndex,
	}
	if err := s.questions.Create(ctx, question); err != nil {
		return nil, err
	}
	return question, nil
}

func (s *QuestionService) Update(ctx context.Context, caller access.Caller, id int64, patch QuestionPatch) (*domain.Question, error) {
	if err := access.Authorize(caller, access.ManageQuestions); err != nil {
		return nil, err
	}
	if err := validation.Struct(patch); err != nil {
		return nil, err
	}
	question, err := s.questions.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperrors.NewNotFound("question", map[string]any{"id": id})
		}
		return nil, err
	}
	applyString(&question.Text, patch.Text)
	if patch.Type != nil {
		question.Type = *patch.Type
	}
	if patch.IsActive != nil {
		question.IsActive = *patch.IsActive
	}
	if patch.OrderIndex != nil {
		question.OrderIndex = *patch.OrderIndex
	}
	if err := s.questions.Update(ctx, question); err != nil {
		return nil, err
	}
	return question, nil
}

// Delete removes a question together with the ratings that answered it.
func (s *QuestionService) Delete(ctx context.Context, caller access.Caller, id int64) error {
	if err := access.Authorize(caller, access.ManageQuestions); err != nil {
		return err
	}
	if err := s.questions.Delete(ctx, id); err != nil {
		if repository.IsNotFound(err) {
			return apperrors.NewNotFound("question", map[string]any{"id": id})
		}
		return err
	}
	return nil
}
