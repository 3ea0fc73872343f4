package memstore

import (
	"context"
	"time"

	"github.com/insurecare/feedback-portal/internal/domain"
	"github.com/insurecare/feedback-portal/internal/repository"
)

type userRepo struct{ s *Store }

func (r *userRepo) Create(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.emailTaken(user.Email, 0) {
		return repository.NewUniqueViolation(repository.ConstraintUserEmail)
	}
	now := r.s.now()
	user.ID = r.s.nextID("users")
	user.CreatedAt, user.UpdatedAt = now, now
	r.s.users[user.ID] = *user
	return nil
}

func (r *userRepo) Update(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.users[user.ID]
	if !ok {
		return errNoRows()
	}
	if r.emailTaken(user.Email, user.ID) {
		return repository.NewUniqueViolation(repository.ConstraintUserEmail)
	}
	user.CreatedAt = existing.CreatedAt
	user.UpdatedAt = r.s.now()
	r.s.users[user.ID] = *user
	return nil
}

// Delete removes the user and unlinks any profile pointing at it.
func (r *userRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return errNoRows()
	}
	delete(r.s.users, id)
	for aid, a := range r.s.agents {
		if a.UserID != nil && *a.UserID == id {
			a.UserID = nil
			r.s.agents[aid] = a
		}
	}
	for eid, e := range r.s.employees {
		if e.UserID != nil && *e.UserID == id {
			e.UserID = nil
			r.s.employees[eid] = e
		}
	}
	return nil
}

func (r *userRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	user, ok := r.s.users[id]
	if !ok {
		return nil, errNoRows()
	}
	return &user, nil
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, user := range r.s.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, errNoRows()
}

func (r *userRepo) List(_ context.Context, filter repository.UserFilter) ([]domain.User, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var users []domain.User
	for _, user := range r.s.users {
		if filter.Role != nil && user.Role != *filter.Role {
			continue
		}
		if filter.Approved != nil && user.IsApproved != *filter.Approved {
			continue
		}
		if !matches(filter.Search, user.Name, user.Email) {
			continue
		}
		users = append(users, user)
	}
	newest(users, func(u domain.User) time.Time { return u.CreatedAt }, func(u domain.User) int64 { return u.ID })
	return paginate(users, filter.Limit, filter.Offset), len(users), nil
}

func (r *userRepo) emailTaken(email string, exceptID int64) bool {
	for id, user := range r.s.users {
		if id != exceptID && user.Email == email {
			return true
		}
	}
	return false
}
