package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/insurecare/feedback-portal/internal/domain"
	"github.com/insurecare/feedback-portal/internal/service"
	apperrors "github.com/insurecare/feedback-portal/pkg/util/errorutil"
)

// data wraps a successful payload in the response envelope.
func data(c *fiber.Ctx, status int, payload any) error {
	return c.Status(status).JSON(fiber.Map{"data": payload})
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	return nil
}

func parseID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("validation failed", map[string]any{name: "must be a positive integer"})
	}
	return id, nil
}

func pageRequest(c *fiber.Ctx) service.PageRequest {
	return service.PageRequest{Page: c.QueryInt("page", 1), Limit: c.QueryInt("limit", 0)}
}

// optionalBool parses a boolean query parameter, nil when absent.
func optionalBool(c *fiber.Ctx, name string) (*bool, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, apperrors.NewValidationError("validation failed", map[string]any{name: "must be true or false"})
	}
	return &v, nil
}

func optionalFloat(c *fiber.Ctx, name string, required bool) (float64, bool, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		if required {
			return 0, false, apperrors.NewValidationError("validation failed", map[string]any{name: "is required"})
		}
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false, apperrors.NewValidationError("validation failed", map[string]any{name: "must be a number"})
	}
	return v, true, nil
}

// targetQuery reads the agent_id/employee_id filter pair.
func targetQuery(c *fiber.Ctx) (domain.Target, error) {
	details := map[string]any{}
	parse := func(name string) *int64 {
		raw := strings.TrimSpace(c.Query(name))
		if raw == "" {
			return nil
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			details[name] = "must be a positive integer"
			return nil
		}
		return &id
	}
	agentID, employeeID := parse("agent_id"), parse("employee_id")
	if len(details) > 0 {
		return domain.Target{}, apperrors.NewValidationError("validation failed", details)
	}
	target, err := domain.NewTarget(agentID, employeeID)
	if err != nil {
		return domain.Target{}, apperrors.NewValidationError("validation failed", map[string]any{"target": err.Error()})
	}
	return target, nil
}

func kindQuery(c *fiber.Ctx, name string) (*domain.ProfileKind, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	kind, err := domain.ParseProfileKind(raw)
	if err != nil {
		return nil, apperrors.NewValidationError("validation failed", map[string]any{name: "must be agent or employee"})
	}
	return &kind, nil
}

// attachment sends a generated file as a download.
func attachment(c *fiber.Ctx, filename, contentType string, body []byte) error {
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Status(fiber.StatusOK).Send(body)
}
