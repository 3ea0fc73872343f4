package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/insurecare/feedback-portal/internal/access"
	"github.com/insurecare/feedback-portal/internal/domain"
	"github.com/insurecare/feedback-portal/internal/events"
	"github.com/insurecare/feedback-portal/internal/repository"
	apperrors "github.com/insurecare/feedback-portal/pkg/util/errorutil"
	"github.com/insurecare/feedback-portal/pkg/util/validation"
)

// UserService lets administrators approve, edit and remove accounts.
type UserService struct {
	publisher
	users     repository.UserRepository
	agents    repository.AgentRepository
	employees repository.EmployeeRepository
}

// UserDependencies bundles repositories for user service.
type UserDependencies struct {
	UserRepo     repository.UserRepository
	AgentRepo    repository.AgentRepository
	EmployeeRepo repository.EmployeeRepository
	Dispatcher   events.Dispatcher
	Logger       *zap.Logger
}

// UserListInput filters the admin user listing.
type UserListInput struct {
	Role     *domain.Role
	Approved *bool
	Search   string
	PageRequest
}

// UpdateUserInput is a partial update; nil fields are left unchanged.
type UpdateUserInput struct {
	Name       *string      `json:"name" validate:"omitempty,min=2,max=255"`
	Email      *string      `json:"email" validate:"omitempty,email,max=255"`
	Role       *domain.Role `json:"role" validate:"omitempty,oneof=admin agent frontline"`
	IsApproved *bool        `json:"is_approved"`
}

// NewUserService constructs the service.
func NewUserService(deps UserDependencies) *UserService {
	return &UserService{
		publisher: newPublisher(deps.Dispatcher, deps.Logger),
		users:     deps.UserRepo,
		agents:    deps.AgentRepo,
		employees: deps.EmployeeRepo,
	}
}

// List returns a page of accounts, newest first.
func (s *UserService) List(ctx context.Context, caller access.Caller, input UserListInput) (domain.Page[domain.User], error) {
	if err := access.Authorize(caller, access.ManageUsers); err != nil {
		return domain.Page[domain.User]{}, err
	}
	page, limit, offset := input.normalize()
	users, total, err := s.users.List(ctx, repository.UserFilter{
		Role:     input.Role,
		Approved: input.Approved,
		Search:   input.Search,
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		return domain.Page[domain.User]{}, err
	}
	return domain.NewPage(users, total, page, limit), nil
}

// Get returns one account.
func (s *UserService) Get(ctx context.Context, caller access.Caller, id int64) (*domain.User, error) {
	if err := access.Authorize(caller, access.ManageUsers); err != nil {
		return nil, err
	}
	return s.load(ctx, id)
}

// Update edits name, email, role or approval. A role change must stay compatible
// with the profile the account is linked to.
func (s *UserService) Update(ctx context.Context, caller access.Caller, id int64, input UpdateUserInput) (*domain.User, error) {
	if err := access.Authorize(caller, access.ManageUsers); err != nil {
		return nil, err
	}
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	user, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		user.Name = strings.TrimSpace(*input.Name)
	}
	if input.Email != nil {
		user.Email = normalizeEmail(*input.Email)
	}
	if input.IsApproved != nil {
		user.IsApproved = *input.IsApproved
	}
	if input.Role != nil && *input.Role != user.Role {
		if err := s.checkRoleChange(ctx, user.ID, *input.Role); err != nil {
			return nil, err
		}
		user.Role = *input.Role
	}

	if err := s.users.Update(ctx, user); err != nil {
		if name, ok := repository.UniqueViolation(err); ok && name == repository.ConstraintUserEmail {
			return nil, apperrors.NewConflict("user with this email already exists", map[string]any{"email": "is already registered"})
		}
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:    events.EventUserUpdated,
		Actor:   actorOf(caller),
		Payload: events.UserPayload{UserID: user.ID, Role: user.Role, IsApproved: user.IsApproved},
	})
	return user, nil
}

func (s *UserService) checkRoleChange(ctx context.Context, userID int64, role domain.Role) error {
	kind, _ := role.ProfileKind()
	if _, err := s.agents.GetByUserID(ctx, userID); err == nil {
		if kind != domain.KindAgent {
			return apperrors.NewValidationError("validation failed", map[string]any{"role": "user is linked to an agent profile"})
		}
	} else if !repository.IsNotFound(err) {
		return err
	}
	if _, err := s.employees.GetByUserID(ctx, userID); err == nil {
		if kind != domain.KindEmployee {
			return apperrors.NewValidationError("validation failed", map[string]any{"role": "user is linked to an employee profile"})
		}
	} else if !repository.IsNotFound(err) {
		return err
	}
	return nil
}

// Delete removes an account; a linked profile survives with its link cleared.
// Administrators cannot delete themselves.
func (s *UserService) Delete(ctx context.Context, caller access.Caller, id int64) error {
	if err := access.Authorize(caller, access.ManageUsers); err != nil {
		return err
	}
	if caller.UserID == id {
		return apperrors.NewForbidden("you cannot delete your own account")
	}
	user, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := s.users.Delete(ctx, id); err != nil {
		if repository.IsNotFound(err) {
			return apperrors.NewNotFound("user", map[string]any{"id": id})
		}
		return err
	}

	s.publishEvent(ctx, events.Event{
		Type:    events.EventUserDeleted,
		Actor:   actorOf(caller),
		Payload: events.UserPayload{UserID: user.ID, Role: user.Role, IsApproved: user.IsApproved},
	})
	return nil
}

func (s *UserService) load(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperrors.NewNotFound("user", map[string]any{"id": id})
		}
		return nil, err
	}
	return user, nil
}
