package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/insurecare/feedback-portal/internal/api/dto"
	"github.com/insurecare/feedback-portal/internal/auth"
	"github.com/insurecare/feedback-portal/internal/domain"
	"github.com/insurecare/feedback-portal/internal/service"
	apperrors "github.com/insurecare/feedback-portal/pkg/util/errorutil"
)

// FeedbackHandler serves the rating rubric, rating submissions and complaints.
type FeedbackHandler struct {
	questions  *service.QuestionService
	ratings    *service.RatingService
	complaints *service.ComplaintService
}

// NewFeedbackHandler constructs handler.
func NewFeedbackHandler(questions *service.QuestionService, ratings *service.RatingService, complaints *service.ComplaintService) *FeedbackHandler {
	return &FeedbackHandler{questions: questions, ratings: ratings, complaints: complaints}
}

// ListQuestions handles GET /api/questions?type=.
func (h *FeedbackHandler) ListQuestions(c *fiber.Ctx) error {
	kind, err := kindQuery(c, "type")
	if err != nil {
		return err
	}
	questions, err := h.questions.List(c.UserContext(), auth.CallerFromContext(c), kind)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.Map(questions, dto.NewQuestionResponse))
}

// CreateQuestion handles POST /api/admin/questions.
func (h *FeedbackHandler) CreateQuestion(c *fiber.Ctx) error {
	var req service.QuestionInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	question, err := h.questions.Create(c.UserContext(), auth.CallerFromContext(c), req)
	if err != nil {
		return err
	}
	return data(c, http.StatusCreated, dto.NewQuestionResponse(question))
}

// UpdateQuestion handles PUT /api/admin/questions/:id.
func (h *FeedbackHandler) UpdateQuestion(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req service.QuestionPatch
	if err := parseBody(c, &req); err != nil {
		return err
	}
	question, err := h.questions.Update(c.UserContext(), auth.CallerFromContext(c), id, req)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewQuestionResponse(question))
}

// DeleteQuestion handles DELETE /api/admin/questions/:id.
func (h *FeedbackHandler) DeleteQuestion(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.questions.Delete(c.UserContext(), auth.CallerFromContext(c), id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// SubmitRatings handles POST /api/ratings.
func (h *FeedbackHandler) SubmitRatings(c *fiber.Ctx) error {
	var req service.SubmitRatingInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	ratings, err := h.ratings.Submit(c.UserContext(), auth.CallerFromContext(c), req)
	if err != nil {
		return err
	}
	return data(c, http.StatusCreated, dto.Map(ratings, dto.NewRatingResponse))
}

// ListRatings handles GET /api/admin/ratings and GET /api/dashboard/ratings.
// Staff callers are scoped to their own profile by the service.
func (h *FeedbackHandler) ListRatings(c *fiber.Ctx) error {
	target, err := targetQuery(c)
	if err != nil {
		return err
	}
	page, err := h.ratings.List(c.UserContext(), auth.CallerFromContext(c), service.RatingListInput{
		Target:      target,
		PageRequest: pageRequest(c),
	})
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewPageResponse(page, dto.NewRatingResponse))
}

// DeleteRating handles DELETE /api/admin/ratings/:id.
func (h *FeedbackHandler) DeleteRating(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.ratings.Delete(c.UserContext(), auth.CallerFromContext(c), id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// FileComplaint handles POST /api/complaints.
func (h *FeedbackHandler) FileComplaint(c *fiber.Ctx) error {
	var req service.FileComplaintInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	complaint, err := h.complaints.File(c.UserContext(), auth.CallerFromContext(c), req)
	if err != nil {
		return err
	}
	return data(c, http.StatusCreated, dto.NewComplaintResponse(complaint))
}

// ListComplaints handles GET /api/admin/complaints and GET /api/dashboard/complaints.
func (h *FeedbackHandler) ListComplaints(c *fiber.Ctx) error {
	target, err := targetQuery(c)
	if err != nil {
		return err
	}
	input := service.ComplaintListInput{
		Target:      target,
		Search:      strings.TrimSpace(c.Query("search")),
		PageRequest: pageRequest(c),
	}
	details := map[string]any{}
	if raw := c.Query("status"); raw != "" {
		status := domain.ComplaintStatus(raw)
		switch status {
		case domain.ComplaintStatusPending, domain.ComplaintStatusInProgress, domain.ComplaintStatusResolved, domain.ComplaintStatusClosed:
			input.Status = &status
		default:
			details["status"] = "must be one of: pending, in_progress, resolved, closed"
		}
	}
	if raw := c.Query("priority"); raw != "" {
		priority := domain.ComplaintPriority(raw)
		switch priority {
		case domain.ComplaintPriorityLow, domain.ComplaintPriorityMedium, domain.ComplaintPriorityHigh, domain.ComplaintPriorityUrgent:
			input.Priority = &priority
		default:
			details["priority"] = "must be one of: low, medium, high, urgent"
		}
	}
	if raw := c.Query("type"); raw != "" {
		kind := domain.ComplaintType(raw)
		switch kind {
		case domain.ComplaintTypeService, domain.ComplaintTypeBilling, domain.ComplaintTypeClaim, domain.ComplaintTypePolicy, domain.ComplaintTypeOther:
			input.Type = &kind
		default:
			details["type"] = "must be one of: service, billing, claim, policy, other"
		}
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details)
	}

	page, err := h.complaints.List(c.UserContext(), auth.CallerFromContext(c), input)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewPageResponse(page, dto.NewComplaintResponse))
}

// GetComplaint handles GET /api/admin/complaints/:id.
func (h *FeedbackHandler) GetComplaint(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	complaint, err := h.complaints.Get(c.UserContext(), auth.CallerFromContext(c), id)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewComplaintResponse(complaint))
}

// UpdateComplaint handles PUT /api/admin/complaints/:id.
func (h *FeedbackHandler) UpdateComplaint(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req service.UpdateComplaintInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	complaint, err := h.complaints.Update(c.UserContext(), auth.CallerFromContext(c), id, req)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewComplaintResponse(complaint))
}

// DeleteComplaint handles DELETE /api/admin/complaints/:id.
func (h *FeedbackHandler) DeleteComplaint(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.complaints.Delete(c.UserContext(), auth.CallerFromContext(c), id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
