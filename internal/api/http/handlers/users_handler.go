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

// UsersHandler exposes account endpoints and admin user management.
type UsersHandler struct {
	auth  *service.AuthService
	users *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(authService *service.AuthService, userService *service.UserService) *UsersHandler {
	return &UsersHandler{auth: authService, users: userService}
}

// Register handles POST /auth/register. New accounts wait for admin approval,
// so no token is issued.
func (h *UsersHandler) Register(c *fiber.Ctx) error {
	var req service.RegisterInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	user, err := h.auth.Register(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data":    dto.NewUserResponse(user),
		"message": "registration received; an administrator must approve the account before login",
	})
}

// Login handles POST /auth/login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req service.LoginInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	session, err := h.auth.Login(c.UserContext(), req)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.SessionResponse{
		User: dto.NewUserResponse(session.User),
		Auth: dto.AuthResponse{Token: session.Token, ExpiresAt: session.ExpiresAt},
	})
}

// Me handles GET /auth/me.
func (h *UsersHandler) Me(c *fiber.Ctx) error {
	user, err := h.auth.Account(c.UserContext(), auth.CallerFromContext(c))
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewUserResponse(user))
}

// ChangePassword handles POST /auth/password/change.
func (h *UsersHandler) ChangePassword(c *fiber.Ctx) error {
	var req service.ChangePasswordInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := h.auth.ChangePassword(c.UserContext(), auth.CallerFromContext(c), req); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// List handles GET /api/admin/users.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	input := service.UserListInput{
		Search:      strings.TrimSpace(c.Query("search")),
		PageRequest: pageRequest(c),
	}
	if raw := strings.TrimSpace(c.Query("role")); raw != "" {
		role := domain.Role(raw)
		if !role.Valid() {
			return apperrors.NewValidationError("validation failed", map[string]any{"role": "must be one of: admin, agent, frontline"})
		}
		input.Role = &role
	}
	approved, err := optionalBool(c, "approved")
	if err != nil {
		return err
	}
	input.Approved = approved

	page, err := h.users.List(c.UserContext(), auth.CallerFromContext(c), input)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewPageResponse(page, dto.NewUserResponse))
}

// Get handles GET /api/admin/users/:id.
func (h *UsersHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	user, err := h.users.Get(c.UserContext(), auth.CallerFromContext(c), id)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewUserResponse(user))
}

// Update handles PUT /api/admin/users/:id, including approval.
func (h *UsersHandler) Update(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req service.UpdateUserInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	user, err := h.users.Update(c.UserContext(), auth.CallerFromContext(c), id, req)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewUserResponse(user))
}

// Delete handles DELETE /api/admin/users/:id.
func (h *UsersHandler) Delete(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.users.Delete(c.UserContext(), auth.CallerFromContext(c), id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
