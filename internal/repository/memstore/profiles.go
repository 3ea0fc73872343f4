package memstore

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/insurecare/feedback-portal/internal/domain"
	"github.com/insurecare/feedback-portal/internal/repository"
)

type agentRepo struct{ s *Store }

func (r *agentRepo) Create(_ context.Context, agent *domain.Agent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, taken := r.s.qrCodes[agent.QRCode]; taken {
		return repository.NewUniqueViolation(repository.ConstraintQRCodeRegistry)
	}
	if err := r.checkUnique(agent); err != nil {
		return err
	}
	now := r.s.now()
	agent.ID = r.s.nextID("agents")
	agent.CreatedAt, agent.UpdatedAt = now, now
	agent.UserID = cloneInt64(agent.UserID)
	r.s.qrCodes[agent.QRCode] = domain.KindAgent
	r.s.agents[agent.ID] = *agent
	return nil
}

func (r *agentRepo) Update(_ context.Context, agent *domain.Agent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.agents[agent.ID]
	if !ok {
		return errNoRows()
	}
	if err := r.checkUnique(agent); err != nil {
		return err
	}
	agent.QRCode = existing.QRCode
	agent.CreatedAt = existing.CreatedAt
	agent.UpdatedAt = r.s.now()
	agent.UserID = cloneInt64(agent.UserID)
	r.s.agents[agent.ID] = *agent
	return nil
}

func (r *agentRepo) checkUnique(agent *domain.Agent) error {
	if agent.UserID != nil {
		if _, ok := r.s.users[*agent.UserID]; !ok {
			return repository.NewForeignKeyViolation("agents_user_id_fkey")
		}
	}
	for id, other := range r.s.agents {
		if id == agent.ID {
			continue
		}
		if other.Email == agent.Email {
			return repository.NewUniqueViolation(repository.ConstraintAgentEmail)
		}
		if sameInt64(other.UserID, agent.UserID) {
			return repository.NewUniqueViolation(repository.ConstraintAgentUser)
		}
	}
	return nil
}

// Delete cascades to ratings and detaches complaints.
func (r *agentRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.agents[id]; !ok {
		return errNoRows()
	}
	delete(r.s.agents, id)
	r.s.detachTarget(domain.ForAgent(id))
	return nil
}

func (r *agentRepo) GetByID(_ context.Context, id int64) (*domain.Agent, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	agent, ok := r.s.agents[id]
	if !ok {
		return nil, errNoRows()
	}
	return &agent, nil
}

func (r *agentRepo) GetByUserID(_ context.Context, userID int64) (*domain.Agent, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, agent := range r.s.agents {
		if agent.UserID != nil && *agent.UserID == userID {
			a := agent
			return &a, nil
		}
	}
	return nil, errNoRows()
}

func (r *agentRepo) List(_ context.Context, filter repository.ProfileFilter) ([]domain.Agent, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var agents []domain.Agent
	for _, a := range r.s.agents {
		if filter.Online != nil && a.IsOnline != *filter.Online {
			continue
		}
		if !matches(filter.Search, a.Name, a.Email, a.Location, a.Branch) {
			continue
		}
		agents = append(agents, a)
	}
	newest(agents, func(a domain.Agent) time.Time { return a.CreatedAt }, func(a domain.Agent) int64 { return a.ID })
	return paginate(agents, filter.Limit, filter.Offset), len(agents), nil
}

func (r *agentRepo) SearchByName(_ context.Context, term string, limit int) ([]domain.Agent, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var agents []domain.Agent
	for _, a := range r.s.agents {
		if matches(term, a.Name) {
			agents = append(agents, a)
		}
	}
	sortByName(agents, func(a domain.Agent) string { return a.Name }, func(a domain.Agent) int64 { return a.ID })
	return paginate(agents, limit, 0), nil
}

func (r *agentRepo) ListOnlineWithin(_ context.Context, box repository.BoundingBox) ([]domain.Agent, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var agents []domain.Agent
	for _, a := range r.s.agents {
		if !a.IsOnline || a.Latitude == nil || a.Longitude == nil {
			continue
		}
		lat, lng := *a.Latitude, *a.Longitude
		if lat < box.MinLat || lat > box.MaxLat || lng < box.MinLng || lng > box.MaxLng {
			continue
		}
		agents = append(agents, a)
	}
	return agents, nil
}

func (r *agentRepo) ListAll(_ context.Context) ([]domain.Agent, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	agents := make([]domain.Agent, 0, len(r.s.agents))
	for _, a := range r.s.agents {
		agents = append(agents, a)
	}
	sortByName(agents, func(a domain.Agent) string { return a.Name }, func(a domain.Agent) int64 { return a.ID })
	return agents, nil
}

type employeeRepo struct{ s *Store }

func (r *employeeRepo) Create(_ context.Context, employee *domain.Employee) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, taken := r.s.qrCodes[employee.QRCode]; taken {
		return repository.NewUniqueViolation(repository.ConstraintQRCodeRegistry)
	}
	if err := r.checkUnique(employee); err != nil {
		return err
	}
	now := r.s.now()
	employee.ID = r.s.nextID("employees")
	employee.CreatedAt, employee.UpdatedAt = now, now
	employee.UserID = cloneInt64(employee.UserID)
	r.s.qrCodes[employee.QRCode] = domain.KindEmployee
	r.s.employees[employee.ID] = *employee
	return nil
}

func (r *employeeRepo) Update(_ context.Context, employee *domain.Employee) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.employees[employee.ID]
	if !ok {
		return errNoRows()
	}
	if err := r.checkUnique(employee); err != nil {
		return err
	}
	employee.QRCode = existing.QRCode
	employee.CreatedAt = existing.CreatedAt
	employee.UpdatedAt = r.s.now()
	employee.UserID = cloneInt64(employee.UserID)
	r.s.employees[employee.ID] = *employee
	return nil
}

func (r *employeeRepo) checkUnique(employee *domain.Employee) error {
	if employee.UserID != nil {
		if _, ok := r.s.users[*employee.UserID]; !ok {
			return repository.NewForeignKeyViolation("employees_user_id_fkey")
		}
	}
	for id, other := range r.s.employees {
		if id == employee.ID {
			continue
		}
		if other.Email == employee.Email {
			return repository.NewUniqueViolation(repository.ConstraintEmployeeEmail)
		}
		if sameInt64(other.UserID, employee.UserID) {
			return repository.NewUniqueViolation(repository.ConstraintEmployeeUser)
		}
	}
	return nil
}

// Delete cascades to ratings and detaches complaints.
func (r *employeeRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.employees[id]; !ok {
		return errNoRows()
	}
	delete(r.s.employees, id)
	r.s.detachTarget(domain.ForEmployee(id))
	return nil
}

func (r *employeeRepo) GetByID(_ context.Context, id int64) (*domain.Employee, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	employee, ok := r.s.employees[id]
	if !ok {
		return nil, errNoRows()
	}
	return &employee, nil
}

func (r *employeeRepo) GetByUserID(_ context.Context, userID int64) (*domain.Employee, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, employee := range r.s.employees {
		if employee.UserID != nil && *employee.UserID == userID {
			e := employee
			return &e, nil
		}
	}
	return nil, errNoRows()
}

func (r *employeeRepo) List(_ context.Context, filter repository.ProfileFilter) ([]domain.Employee, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var employees []domain.Employee
	for _, e := range r.s.employees {
		if !matches(filter.Search, e.Name, e.Email, e.Department, e.Position, e.Branch) {
			continue
		}
		employees = append(employees, e)
	}
	newest(employees, func(e domain.Employee) time.Time { return e.CreatedAt }, func(e domain.Employee) int64 { return e.ID })
	return paginate(employees, filter.Limit, filter.Offset), len(employees), nil
}

func (r *employeeRepo) SearchByName(_ context.Context, term string, limit int) ([]domain.Employee, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var employees []domain.Employee
	for _, e := range r.s.employees {
		if matches(term, e.Name) {
			employees = append(employees, e)
		}
	}
	sortByName(employees, func(e domain.Employee) string { return e.Name }, func(e domain.Employee) int64 { return e.ID })
	return paginate(employees, limit, 0), nil
}

func (r *employeeRepo) ListAll(_ context.Context) ([]domain.Employee, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	employees := make([]domain.Employee, 0, len(r.s.employees))
	for _, e := range r.s.employees {
		employees = append(employees, e)
	}
	sortByName(employees, func(e domain.Employee) string { return e.Name }, func(e domain.Employee) int64 { return e.ID })
	return employees, nil
}

// detachTarget applies the profile delete rules: ratings cascade, complaints keep
// their row with the reference set to null. Caller holds the write lock.
func (s *Store) detachTarget(target domain.Target) {
	for id, rating := range s.ratings {
		if rating.Target == target {
			delete(s.ratings, id)
		}
	}
	for id, complaint := range s.complaints {
		if complaint.Target == target {
			complaint.Target = domain.NoTarget()
			s.complaints[id] = complaint
		}
	}
}

func sortByName[T any](items []T, name func(T) string, id func(T) int64) {
	sort.Slice(items, func(i, j int) bool {
		ni, nj := strings.ToLower(name(items[i])), strings.ToLower(name(items[j]))
		if ni != nj {
			return ni < nj
		}
		return id(items[i]) < id(items[j])
	})
}
