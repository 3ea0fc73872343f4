package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/insurecare/feedback-portal/internal/api/dto"
	"github.com/insurecare/feedback-portal/internal/auth"
	"github.com/insurecare/feedback-portal/internal/domain"
	"github.com/insurecare/feedback-portal/internal/repository"
	"github.com/insurecare/feedback-portal/internal/service"
)

// ProfilesHandler serves agent and employee profiles and their QR codes.
type ProfilesHandler struct {
	profiles *service.ProfileService
	qr       *service.QRService
}

// NewProfilesHandler constructs handler.
func NewProfilesHandler(profiles *service.ProfileService, qrService *service.QRService) *ProfilesHandler {
	return &ProfilesHandler{profiles: profiles, qr: qrService}
}

func agentView(v *service.AgentView) dto.AgentResponse {
	return dto.NewAgentResponse(&v.Agent, v.Stats)
}

func employeeView(v *service.EmployeeView) dto.EmployeeResponse {
	return dto.NewEmployeeResponse(&v.Employee, v.Stats)
}

// GetAgent handles GET /api/agents/:id.
func (h *ProfilesHandler) GetAgent(c *fiber.Ctx) error {
	view, err := h.loadAgent(c)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewPublicAgentResponse(&view.Agent, view.Stats))
}

// AgentDetail handles GET /api/admin/agents/:id.
func (h *ProfilesHandler) AgentDetail(c *fiber.Ctx) error {
	view, err := h.loadAgent(c)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, agentView(view))
}

// GetEmployee handles GET /api/employees/:id.
func (h *ProfilesHandler) GetEmployee(c *fiber.Ctx) error {
	view, err := h.loadEmployee(c)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewPublicEmployeeResponse(&view.Employee, view.Stats))
}

// EmployeeDetail handles GET /api/admin/employees/:id.
func (h *ProfilesHandler) EmployeeDetail(c *fiber.Ctx) error {
	view, err := h.loadEmployee(c)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, employeeView(view))
}

func (h *ProfilesHandler) loadAgent(c *fiber.Ctx) (*service.AgentView, error) {
	id, err := parseID(c, "id")
	if err != nil {
		return nil, err
	}
	return h.profiles.GetAgent(c.UserContext(), auth.CallerFromContext(c), id)
}

func (h *ProfilesHandler) loadEmployee(c *fiber.Ctx) (*service.EmployeeView, error) {
	id, err := parseID(c, "id")
	if err != nil {
		return nil, err
	}
	return h.profiles.GetEmployee(c.UserContext(), auth.CallerFromContext(c), id)
}

// Search handles GET /api/search?q=&type=agent|employee.
func (h *ProfilesHandler) Search(c *fiber.Ctx) error {
	kind, err := kindQuery(c, "type")
	if err != nil {
		return err
	}
	searchKind := domain.KindAgent
	if kind != nil {
		searchKind = *kind
	}
	results, err := h.profiles.Search(c.UserContext(), auth.CallerFromContext(c), searchKind, c.Query("q"))
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.Map(results, dto.NewProfileSummaryResponse))
}

// Nearby handles GET /api/agents/nearby?lat=&lng=&radius=.
func (h *ProfilesHandler) Nearby(c *fiber.Ctx) error {
	lat, _, err := optionalFloat(c, "lat", true)
	if err != nil {
		return err
	}
	lng, _, err := optionalFloat(c, "lng", true)
	if err != nil {
		return err
	}
	radius, _, err := optionalFloat(c, "radius", false)
	if err != nil {
		return err
	}
	agents, err := h.profiles.NearbyAgents(c.UserContext(), auth.CallerFromContext(c), service.NearbyInput{
		Latitude:  lat,
		Longitude: lng,
		RadiusKm:  radius,
	})
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.Map(agents, dto.NewNearbyAgentResponse))
}

// ListAgents handles GET /api/admin/agents.
func (h *ProfilesHandler) ListAgents(c *fiber.Ctx) error {
	online, err := optionalBool(c, "online")
	if err != nil {
		return err
	}
	filter := repository.ProfileFilter{Search: strings.TrimSpace(c.Query("search")), Online: online}
	page, err := h.profiles.ListAgents(c.UserContext(), auth.CallerFromContext(c), filter, pageRequest(c))
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewPageResponse(page, agentView))
}

// ListEmployees handles GET /api/admin/employees.
func (h *ProfilesHandler) ListEmployees(c *fiber.Ctx) error {
	filter := repository.ProfileFilter{Search: strings.TrimSpace(c.Query("search"))}
	page, err := h.profiles.ListEmployees(c.UserContext(), auth.CallerFromContext(c), filter, pageRequest(c))
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewPageResponse(page, employeeView))
}

// CreateAgent handles POST /api/admin/agents.
func (h *ProfilesHandler) CreateAgent(c *fiber.Ctx) error {
	var req service.AgentInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	agent, err := h.profiles.CreateAgent(c.UserContext(), auth.CallerFromContext(c), req)
	if err != nil {
		return err
	}
	return data(c, http.StatusCreated, dto.NewAgentResponse(agent, domain.RatingStats{}))
}

// UpdateAgent handles PUT /api/admin/agents/:id.
func (h *ProfilesHandler) UpdateAgent(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req service.AgentPatch
	if err := parseBody(c, &req); err != nil {
		return err
	}
	caller := auth.CallerFromContext(c)
	if _, err := h.profiles.UpdateAgent(c.UserContext(), caller, id, req); err != nil {
		return err
	}
	view, err := h.profiles.GetAgent(c.UserContext(), caller, id)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, agentView(view))
}

// CreateEmployee handles POST /api/admin/employees.
func (h *ProfilesHandler) CreateEmployee(c *fiber.Ctx) error {
	var req service.EmployeeInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	employee, err := h.profiles.CreateEmployee(c.UserContext(), auth.CallerFromContext(c), req)
	if err != nil {
		return err
	}
	return data(c, http.StatusCreated, dto.NewEmployeeResponse(employee, domain.RatingStats{}))
}

// UpdateEmployee handles PUT /api/admin/employees/:id.
func (h *ProfilesHandler) UpdateEmployee(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req service.EmployeePatch
	if err := parseBody(c, &req); err != nil {
		return err
	}
	caller := auth.CallerFromContext(c)
	if _, err := h.profiles.UpdateEmployee(c.UserContext(), caller, id, req); err != nil {
		return err
	}
	view, err := h.profiles.GetEmployee(c.UserContext(), caller, id)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, employeeView(view))
}

// Delete returns the DELETE handler for profiles of kind.
func (h *ProfilesHandler) Delete(kind domain.ProfileKind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c, "id")
		if err != nil {
			return err
		}
		if err := h.profiles.Delete(c.UserContext(), auth.CallerFromContext(c), domain.TargetFor(kind, id)); err != nil {
			return err
		}
		return c.SendStatus(http.StatusNoContent)
	}
}

// LinkUser returns the PUT /:id/user handler for profiles of kind.
func (h *ProfilesHandler) LinkUser(kind domain.ProfileKind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c, "id")
		if err != nil {
			return err
		}
		var req dto.LinkUserRequest
		if err := parseBody(c, &req); err != nil {
			return err
		}
		caller := auth.CallerFromContext(c)
		target := domain.TargetFor(kind, id)
		if err := h.profiles.LinkUser(c.UserContext(), caller, target, req.UserID); err != nil {
			return err
		}
		summary, err := h.profiles.Summary(c.UserContext(), caller, target)
		if err != nil {
			return err
		}
		return data(c, http.StatusOK, dto.NewProfileSummaryResponse(&summary))
	}
}

// DownloadQR returns the GET /:id/qr handler for profiles of kind.
func (h *ProfilesHandler) DownloadQR(kind domain.ProfileKind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c, "id")
		if err != nil {
			return err
		}
		image, err := h.qr.RenderProfile(c.UserContext(), auth.CallerFromContext(c), domain.TargetFor(kind, id))
		if err != nil {
			return err
		}
		return attachment(c, image.Filename, image.ContentType, image.Data)
	}
}

// PublishQR returns the POST /:id/qr/publish handler for profiles of kind.
func (h *ProfilesHandler) PublishQR(kind domain.ProfileKind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c, "id")
		if err != nil {
			return err
		}
		published, err := h.qr.Publish(c.UserContext(), auth.CallerFromContext(c), domain.TargetFor(kind, id))
		if err != nil {
			return err
		}
		return data(c, http.StatusCreated, published)
	}
}

// Resolve handles POST /api/qr/resolve.
func (h *ProfilesHandler) Resolve(c *fiber.Ctx) error {
	var req dto.ResolveCodeRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	summary, err := h.qr.Scan(c.UserContext(), auth.CallerFromContext(c), req.Payload)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewProfileSummaryResponse(&summary))
}
