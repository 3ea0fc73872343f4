package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/insurecare/feedback-portal/internal/access"
	"github.com/insurecare/feedback-portal/internal/domain"
	"github.com/insurecare/feedback-portal/internal/repository"
	apperrors "github.com/insurecare/feedback-portal/pkg/util/errorutil"
)

const callerKey = "auth_caller"

// AuthMiddleware validates bearer tokens and resolves the request's caller.
type AuthMiddleware struct {
	tokens    *TokenManager
	users     repository.UserRepository
	agents    repository.AgentRepository
	employees repository.EmployeeRepository
	logger    *zap.Logger
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, users repository.UserRepository, agents repository.AgentRepository, employees repository.EmployeeRepository, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, users: users, agents: agents, employees: employees, logger: logger}
}

// Handle resolves the caller for every request. Missing, malformed or expired tokens,
// and tokens of users that are deleted or no longer approved, yield the anonymous
// caller; protected operations then fail in the access gate.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	caller, err := m.resolve(c)
	if err != nil {
		return err
	}
	c.Locals(callerKey, caller)
	return c.Next()
}

func (m *AuthMiddleware) resolve(c *fiber.Ctx) (access.Caller, error) {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return access.Anonymous(), nil
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return access.Anonymous(), nil
	}

	claims, err := m.tokens.ParseToken(strings.TrimSpace(parts[1]))
	if err != nil {
		return access.Anonymous(), nil
	}
	userID, err := claims.UserID()
	if err != nil {
		return access.Anonymous(), nil
	}

	ctx := c.UserContext()
	user, err := m.users.GetByID(ctx, userID)
	if err != nil {
		if repository.IsNotFound(err) {
			return access.Anonymous(), nil
		}
		return access.Caller{}, apperrors.MapError(err)
	}
	if !user.IsApproved {
		return access.Anonymous(), nil
	}

	var profileID int64
	switch user.Role {
	case domain.RoleAgent:
		agent, err := m.agents.GetByUserID(ctx, user.ID)
		if err != nil && !repository.IsNotFound(err) {
			return access.Caller{}, apperrors.MapError(err)
		}
		if agent != nil {
			profileID = agent.ID
		}
	case domain.RoleFrontline:
		employee, err := m.employees.GetByUserID(ctx, user.ID)
		if err != nil && !repository.IsNotFound(err) {
			return access.Caller{}, apperrors.MapError(err)
		}
		if employee != nil {
			profileID = employee.ID
		}
	}

	caller := access.ForUser(user, profileID)
	if m.logger != nil {
		m.logger.Debug("caller resolved", zap.String("kind", string(caller.Kind)), zap.Int64("user_id", caller.UserID), zap.Stringer("target", caller.Target))
	}
	return caller, nil
}

// CallerFromContext retrieves the resolved caller, anonymous when none was stored.
func CallerFromContext(c *fiber.Ctx) access.Caller {
	caller, ok := c.Locals(callerKey).(access.Caller)
	if !ok {
		return access.Anonymous()
	}
	return caller
}

// WithCaller stores caller on the request. Used by tests and internal routing.
func WithCaller(c *fiber.Ctx, caller access.Caller) {
	c.Locals(callerKey, caller)
}
