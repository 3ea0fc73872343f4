package service

import (
	"context"
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/insurecare/feedback-portal/internal/access"
	"github.com/insurecare/feedback-portal/internal/domain"
	"github.com/insurecare/feedback-portal/internal/events"
	"github.com/insurecare/feedback-portal/internal/qr"
	"github.com/insurecare/feedback-portal/internal/repository"
	apperrors "github.com/insurecare/feedback-portal/pkg/util/errorutil"
	"github.com/insurecare/feedback-portal/pkg/util/validation"
)

const (
	searchLimit         = 20
	defaultNearbyKm     = 10.0
	earthRadiusKm       = 6371.0
	kmPerDegreeLatitude = 111.0
	qrIssueAttempts     = 3
)

// ProfileService manages agents and employees and their public views.
type ProfileService struct {
	publisher
	agents    repository.AgentRepository
	employees repository.EmployeeRepository
	users     repository.UserRepository
	ratings   repository.RatingRepository
	issueCode func() string
}

// ProfileDependencies bundles repositories for profile service.
type ProfileDependencies struct {
	AgentRepo    repository.AgentRepository
	EmployeeRepo repository.EmployeeRepository
	UserRepo     repository.UserRepository
	RatingRepo   repository.RatingRepository
	Dispatcher   events.Dispatcher
	Logger       *zap.Logger
}

// AgentInput creates an agent.
type AgentInput struct {
	Name      string   `json:"name" validate:"required,min=2,max=255"`
	Email     string   `json:"email" validate:"required,email,max=255"`
	Phone     string   `json:"phone" validate:"required,min=10,max=50"`
	Location  string   `json:"location" validate:"required,min=3,max=255"`
	Branch    string   `json:"branch" validate:"required,min=2,max=255"`
	Latitude  *float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude *float64 `json:"longitude" validate:"omitempty,longitude"`
	IsOnline  bool     `json:"is_online"`
	UserID    *int64   `json:"user_id" validate:"omitempty,gt=0"`
}

// AgentPatch partially updates an agent. ClearCoordinates removes the location pin.
type AgentPatch struct {
	Name             *string  `json:"name" validate:"omitempty,min=2,max=255"`
	Email            *string  `json:"email" validate:"omitempty,email,max=255"`
	Phone            *string  `json:"phone" validate:"omitempty,min=10,max=50"`
	Location         *string  `json:"location" validate:"omitempty,min=3,max=255"`
	Branch           *string  `json:"branch" validate:"omitempty,min=2,max=255"`
	Latitude         *float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude        *float64 `json:"longitude" validate:"omitempty,longitude"`
	ClearCoordinates bool     `json:"clear_coordinates"`
	IsOnline         *bool    `json:"is_online"`
}

// EmployeeInput creates an employee.
type EmployeeInput struct {
	Name       string `json:"name" validate:"required,min=2,max=255"`
	Email      string `json:"email" validate:"required,email,max=255"`
	Phone      string `json:"phone" validate:"required,min=10,max=50"`
	Department string `json:"department" validate:"required,min=2,max=255"`
	Position   string `json:"position" validate:"required,min=2,max=255"`
	Branch     string `json:"branch" validate:"required,min=2,max=255"`
	UserID     *int64 `json:"user_id" validate:"omitempty,gt=0"`
}

// EmployeePatch partially updates an employee.
type EmployeePatch struct {
	Name       *string `json:"name" validate:"omitempty,min=2,max=255"`
	Email      *string `json:"email" validate:"omitempty,email,max=255"`
	Phone      *string `json:"phone" validate:"omitempty,min=10,max=50"`
	Department *string `json:"department" validate:"omitempty,min=2,max=255"`
	Position   *string `json:"position" validate:"omitempty,min=2,max=255"`
	Branch     *string `json:"branch" validate:"omitempty,min=2,max=255"`
}

// NearbyInput is a proximity query; RadiusKm defaults to 10.
type NearbyInput struct {
	Latitude  float64 `json:"lat" validate:"latitude"`
	Longitude float64 `json:"lng" validate:"longitude"`
	RadiusKm  float64 `json:"radius" validate:"gte=0,lte=500"`
}

// AgentView is an agent with its derived rating stats.
type AgentView struct {
	Agent domain.Agent
	Stats domain.RatingStats
}

// EmployeeView is an employee with its derived rating stats.
type EmployeeView struct {
	Employee domain.Employee
	Stats    domain.RatingStats
}

// NewProfileService constructs the service.
func NewProfileService(deps ProfileDependencies) *ProfileService {
	return &ProfileService{
		publisher: newPublisher(deps.Dispatcher, deps.Logger),
		agents:    deps.AgentRepo,
		employees: deps.EmployeeRepo,
		users:     deps.UserRepo,
		ratings:   deps.RatingRepo,
		issueCode: qr.Issue,
	}
}

// CreateAgent registers an agent with a freshly issued QR code.
func (s *ProfileService) CreateAgent(ctx context.Context, caller access.Caller, input AgentInput) (*domain.Agent, error) {
	if err := access.Authorize(caller, access.ManageProfiles); err != nil {
		return nil, err
	}
	input.Email = normalizeEmail(input.Email)
	err := validation.Merge(validation.Struct(input), coordinatePair(input.Latitude, input.Longitude))
	if err != nil {
		return nil, err
	}
	if err := s.checkLinkable(ctx, domain.KindAgent, input.UserID); err != nil {
		return nil, err
	}

	agent := &domain.Agent{
		UserID:    input.UserID,
		Name:      strings.TrimSpace(input.Name),
		Email:     input.Email,
		Phone:     strings.TrimSpace(input.Phone),
		Branch:    strings.TrimSpace(input.Branch),
		Location:  strings.TrimSpace(input.Location),
		Latitude:  input.Latitude,
		Longitude: input.Longitude,
		IsOnline:  input.IsOnline,
	}
	err = s.withFreshCode(func(code string) error {
		agent.QRCode = code
		return s.agents.Create(ctx, agent)
	})
	if err != nil {
		return nil, profileWriteError(err)
	}
	return agent, nil
}

// UpdateAgent applies a partial update. The QR code never changes.
func (s *ProfileService) UpdateAgent(ctx context.Context, caller access.Caller, id int64, patch AgentPatch) (*domain.Agent, error) {
	if err := access.Authorize(caller, access.ManageProfiles); err != nil {
		return nil, err
	}
	var pairErr map[string]string
	if !patch.ClearCoordinates {
		pairErr = coordinatePair(patch.Latitude, patch.Longitude)
	}
	if err := validation.Merge(validation.Struct(patch), pairErr); err != nil {
		return nil, err
	}

	agent, err := s.loadAgent(ctx, id)
	if err != nil {
		return nil, err
	}
	applyString(&agent.Name, patch.Name)
	applyString(&agent.Phone, patch.Phone)
	applyString(&agent.Location, patch.Location)
	applyString(&agent.Branch, patch.Branch)
	if patch.Email != nil {
		agent.Email = normalizeEmail(*patch.Email)
	}
	if patch.ClearCoordinates {
		agent.Latitude, agent.Longitude = nil, nil
	} else if patch.Latitude != nil {
		agent.Latitude, agent.Longitude = patch.Latitude, patch.Longitude
	}
	if patch.IsOnline != nil {
		agent.IsOnline = *patch.IsOnline
	}

	if err := s.agents.Update(ctx, agent); err != nil {
		return nil, profileWriteError(err)
	}
	return agent, nil
}

// CreateEmployee registers an employee with a freshly issued QR code.
func (s *ProfileService) CreateEmployee(ctx context.Context, caller access.Caller, input EmployeeInput) (*domain.Employee, error) {
	if err := access.Authorize(caller, access.ManageProfiles); err != nil {
		return nil, err
	}
	input.Email = normalizeEmail(input.Email)
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	if err := s.checkLinkable(ctx, domain.KindEmployee, input.UserID); err != nil {
		return nil, err
	}

	employee := &domain.Employee{
		UserID:     input.UserID,
		Name:       strings.TrimSpace(input.Name),
		Email:      input.Email,
		Phone:      strings.TrimSpace(input.Phone),
		Branch:     strings.TrimSpace(input.Branch),
		Department: strings.TrimSpace(input.Department),
		Position:   strings.TrimSpace(input.Position),
	}
	err := s.withFreshCode(func(code string) error {
		employee.QRCode = code
		return s.employees.Create(ctx, employee)
	})
	if err != nil {
		return nil, profileWriteError(err)
	}
	return employee, nil
}

// UpdateEmployee applies a partial update. The QR code never changes.
func (s *ProfileService) UpdateEmployee(ctx context.Context, caller access.Caller, id int64, patch EmployeePatch) (*domain.Employee, error) {
	if err := access.Authorize(caller, access.ManageProfiles); err != nil {
		return nil, err
	}
	if err := validation.Struct(patch); err != nil {
		return nil, err
	}

	employee, err := s.loadEmployee(ctx, id)
	if err != nil {
		return nil, err
	}
	applyString(&employee.Name, patch.Name)
	applyString(&employee.Phone, patch.Phone)
	applyString(&employee.Department, patch.Department)
	applyString(&employee.Position, patch.Position)
	applyString(&employee.Branch, patch.Branch)
	if patch.Email != nil {
		employee.Email = normalizeEmail(*patch.Email)
	}

	if err := s.employees.Update(ctx, employee); err != nil {
		return nil, profileWriteError(err)
	}
	return employee, nil
}

// LinkUser links the profile to a staff login, or unlinks it when userID is nil.
// The user's role must match the profile kind.
func (s *ProfileService) LinkUser(ctx context.Context, caller access.Caller, target domain.Target, userID *int64) error {
	if err := access.Authorize(caller, access.ManageProfiles); err != nil {
		return err
	}
	if target.IsNone() {
		return apperrors.NewValidationError("validation failed", map[string]any{"kind": "must be agent or employee"})
	}
	if userID != nil && *userID <= 0 {
		return apperrors.NewValidationError("validation failed", map[string]any{"user_id": "must be greater than 0"})
	}
	if err := s.checkLinkable(ctx, target.Kind(), userID); err != nil {
		return err
	}

	switch target.Kind() {
	case domain.KindAgent:
		agent, err := s.loadAgent(ctx, target.ID())
		if err != nil {
			return err
		}
		agent.UserID = userID
		if err := s.agents.Update(ctx, agent); err != nil {
			return profileWriteError(err)
		}
	case domain.KindEmployee:
		employee, err := s.loadEmployee(ctx, target.ID())
		if err != nil {
			return err
		}
		employee.UserID = userID
		if err := s.employees.Update(ctx, employee); err != nil {
			return profileWriteError(err)
		}
	}
	return nil
}

// Delete removes a profile. Its ratings are deleted, its complaints are kept
// without a target and a linked user survives unlinked.
func (s *ProfileService) Delete(ctx context.Context, caller access.Caller, target domain.Target) error {
	if err := access.Authorize(caller, access.ManageProfiles); err != nil {
		return err
	}
	var err error
	switch target.Kind() {
	case domain.KindAgent:
		err = s.agents.Delete(ctx, target.ID())
	case domain.KindEmployee:
		err = s.employees.Delete(ctx, target.ID())
	default:
		return apperrors.NewNotFound("profile", nil)
	}
	if err != nil {
		if repository.IsNotFound(err) {
			return apperrors.NewNotFound(string(target.Kind()), map[string]any{"id": target.ID()})
		}
		return err
	}

	s.publishEvent(ctx, events.Event{
		Type:   events.EventProfileDeleted,
		Target: target,
		Actor:  actorOf(caller),
	})
	return nil
}

// GetAgent returns an agent with its rating stats. Public.
func (s *ProfileService) GetAgent(ctx context.Context, caller access.Caller, id int64) (*AgentView, error) {
	if err := access.Authorize(caller, access.ReadProfile); err != nil {
		return nil, err
	}
	agent, err := s.loadAgent(ctx, id)
	if err != nil {
		return nil, err
	}
	stats, err := s.ratings.Stats(ctx, agent.Target())
	if err != nil {
		return nil, err
	}
	return &AgentView{Agent: *agent, Stats: stats}, nil
}

// GetEmployee returns an employee with its rating stats. Public.
func (s *ProfileService) GetEmployee(ctx context.Context, caller access.Caller, id int64) (*EmployeeView, error) {
	if err := access.Authorize(caller, access.ReadProfile); err != nil {
		return nil, err
	}
	employee, err := s.loadEmployee(ctx, id)
	if err != nil {
		return nil, err
	}
	stats, err := s.ratings.Stats(ctx, employee.Target())
	if err != nil {
		return nil, err
	}
	return &EmployeeView{Employee: *employee, Stats: stats}, nil
}

// Summary returns the public view of target.
func (s *ProfileService) Summary(ctx context.Context, caller access.Caller, target domain.Target) (domain.ProfileSummary, error) {
	switch target.Kind() {
	case domain.KindAgent:
		view, err := s.GetAgent(ctx, caller, target.ID())
		if err != nil {
			return domain.ProfileSummary{}, err
		}
		return domain.AgentSummary(&view.Agent, view.Stats), nil
	case domain.KindEmployee:
		view, err := s.GetEmployee(ctx, caller, target.ID())
		if err != nil {
			return domain.ProfileSummary{}, err
		}
		return domain.EmployeeSummary(&view.Employee, view.Stats), nil
	}
	return domain.ProfileSummary{}, apperrors.NewNotFound("profile", nil)
}

// ListAgents returns a page of agents with stats. Admin only.
func (s *ProfileService) ListAgents(ctx context.Context, caller access.Caller, filter repository.ProfileFilter, req PageRequest) (domain.Page[AgentView], error) {
	if err := access.Authorize(caller, access.ManageProfiles); err != nil {
		return domain.Page[AgentView]{}, err
	}
	page, limit, offset := req.normalize()
	filter.Limit, filter.Offset = limit, offset
	agents, total, err := s.agents.List(ctx, filter)
	if err != nil {
		return domain.Page[AgentView]{}, err
	}
	views, err := s.agentViews(ctx, agents)
	if err != nil {
		return domain.Page[AgentView]{}, err
	}
	return domain.NewPage(views, total, page, limit), nil
}

// ListEmployees returns a page of employees with stats. Admin only.
func (s *ProfileService) ListEmployees(ctx context.Context, caller access.Caller, filter repository.ProfileFilter, req PageRequest) (domain.Page[EmployeeView], error) {
	if err := access.Authorize(caller, access.ManageProfiles); err != nil {
		return domain.Page[EmployeeView]{}, err
	}
	page, limit, offset := req.normalize()
	filter.Limit, filter.Offset = limit, offset
	filter.Online = nil
	employees, total, err := s.employees.List(ctx, filter)
	if err != nil {
		return domain.Page[EmployeeView]{}, err
	}
	views, err := s.employeeViews(ctx, employees)
	if err != nil {
		return domain.Page[EmployeeView]{}, err
	}
	return domain.NewPage(views, total, page, limit), nil
}

// Search finds up to 20 profiles of kind by name. A blank query matches nothing.
func (s *ProfileService) Search(ctx context.Context, caller access.Caller, kind domain.ProfileKind, query string) ([]domain.ProfileSummary, error) {
	if err := access.Authorize(caller, access.SearchProfiles); err != nil {
		return nil, err
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.ProfileSummary{}, nil
	}

	results := []domain.ProfileSummary{}
	switch kind {
	case domain.KindEmployee:
		employees, err := s.employees.SearchByName(ctx, query, searchLimit)
		if err != nil {
			return nil, err
		}
		views, err := s.employeeViews(ctx, employees)
		if err != nil {
			return nil, err
		}
		for i := range views {
			results = append(results, domain.EmployeeSummary(&views[i].Employee, views[i].Stats))
		}
	default:
		agents, err := s.agents.SearchByName(ctx, query, searchLimit)
		if err != nil {
			return nil, err
		}
		views, err := s.agentViews(ctx, agents)
		if err != nil {
			return nil, err
		}
		for i := range views {
			results = append(results, domain.AgentSummary(&views[i].Agent, views[i].Stats))
		}
	}
	return results, nil
}

// NearbyAgents returns online agents within the radius, nearest first.
func (s *ProfileService) NearbyAgents(ctx context.Context, caller access.Caller, input NearbyInput) ([]domain.NearbyAgent, error) {
	if err := access.Authorize(caller, access.SearchProfiles); err != nil {
		return nil, err
	}
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	radius := input.RadiusKm
	if radius <= 0 {
		radius = defaultNearbyKm
	}

	candidates, err := s.agents.ListOnlineWithin(ctx, boundingBox(input.Latitude, input.Longitude, radius))
	if err != nil {
		return nil, err
	}

	var nearby []domain.NearbyAgent
	ids := make([]int64, 0, len(candidates))
	for _, agent := range candidates {
		if agent.Latitude == nil || agent.Longitude == nil {
			continue
		}
		distance := haversineKm(input.Latitude, input.Longitude, *agent.Latitude, *agent.Longitude)
		if distance > radius {
			continue
		}
		nearby = append(nearby, domain.NearbyAgent{Agent: agent, DistanceKm: distance})
		ids = append(ids, agent.ID)
	}

	stats, err := s.ratings.StatsByProfile(ctx, domain.KindAgent, ids)
	if err != nil {
		return nil, err
	}
	for i := range nearby {
		nearby[i].Stats = stats[nearby[i].Agent.ID]
	}
	sort.SliceStable(nearby, func(i, j int) bool { return nearby[i].DistanceKm < nearby[j].DistanceKm })
	if nearby == nil {
		nearby = []domain.NearbyAgent{}
	}
	return nearby, nil
}

// OwnProfile returns the staff caller's linked profile.
func (s *ProfileService) OwnProfile(ctx context.Context, caller access.Caller) (domain.ProfileSummary, error) {
	target, err := access.OwnTarget(caller)
	if err != nil {
		return domain.ProfileSummary{}, err
	}
	summary, err := s.Summary(ctx, caller, target)
	if apperrors.IsCode(err, apperrors.CodeNotFound) {
		return domain.ProfileSummary{}, apperrors.NewProfileNotFound()
	}
	return summary, err
}

func (s *ProfileService) agentViews(ctx context.Context, agents []domain.Agent) ([]AgentView, error) {
	ids := make([]int64, len(agents))
	for i, a := range agents {
		ids[i] = a.ID
	}
	stats, err := s.ratings.StatsByProfile(ctx, domain.KindAgent, ids)
	if err != nil {
		return nil, err
	}
	views := make([]AgentView, len(agents))
	for i, a := range agents {
		views[i] = AgentView{Agent: a, Stats: stats[a.ID]}
	}
	return views, nil
}

func (s *ProfileService) employeeViews(ctx context.Context, employees []domain.Employee) ([]EmployeeView, error) {
	ids := make([]int64, len(employees))
	for i, e := range employees {
		ids[i] = e.ID
	}
	stats, err := s.ratings.StatsByProfile(ctx, domain.KindEmployee, ids)
	if err != nil {
		return nil, err
	}
	views := make([]EmployeeView, len(employees))
	for i, e := range employees {
		views[i] = EmployeeView{Employee: e, Stats: stats[e.ID]}
	}
	return views, nil
}

func (s *ProfileService) loadAgent(ctx context.Context, id int64) (*domain.Agent, error) {
	agent, err := s.agents.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperrors.NewNotFound("agent", map[string]any{"id": id})
		}
		return nil, err
	}
	return agent, nil
}

func (s *ProfileService) loadEmployee(ctx context.Context, id int64) (*domain.Employee, error) {
	employee, err := s.employees.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperrors.NewNotFound("employee", map[string]any{"id": id})
		}
		return nil, err
	}
	return employee, nil
}

// checkLinkable verifies that userID exists and has the staff role of kind.
func (s *ProfileService) checkLinkable(ctx context.Context, kind domain.ProfileKind, userID *int64) error {
	if userID == nil {
		return nil
	}
	user, err := s.users.GetByID(ctx, *userID)
	if err != nil {
		if repository.IsNotFound(err) {
			return apperrors.NewValidationError("validation failed", map[string]any{"user_id": "user does not exist"})
		}
		return err
	}
	if user.Role != kind.StaffRole() {
		return apperrors.NewValidationError("validation failed", map[string]any{
			"user_id": "user role must be " + string(kind.StaffRole()),
		})
	}
	return nil
}

// withFreshCode runs create with a new QR code, retrying on a code collision.
func (s *ProfileService) withFreshCode(create func(code string) error) error {
	var err error
	for attempt := 0; attempt < qrIssueAttempts; attempt++ {
		err = create(s.issueCode())
		if name, ok := repository.UniqueViolation(err); ok && isCodeConstraint(name) {
			continue
		}
		return err
	}
	return err
}

func isCodeConstraint(name string) bool {
	switch name {
	case repository.ConstraintQRCodeRegistry, repository.ConstraintAgentQRCode, repository.ConstraintEmployeeQRCode:
		return true
	}
	return false
}

func profileWriteError(err error) error {
	if name, ok := repository.UniqueViolation(err); ok {
		switch name {
		case repository.ConstraintAgentEmail, repository.ConstraintEmployeeEmail:
			return apperrors.NewConflict("profile with this email already exists", map[string]any{"email": "is already used by another profile"})
		case repository.ConstraintAgentUser, repository.ConstraintEmployeeUser:
			return apperrors.NewConflict("user is already linked to another profile", map[string]any{"user_id": "is already linked to another profile"})
		}
	}
	if _, ok := repository.ForeignKeyViolation(err); ok {
		return apperrors.NewValidationError("validation failed", map[string]any{"user_id": "user does not exist"})
	}
	if repository.IsNotFound(err) {
		return apperrors.NewNotFound("profile", nil)
	}
	return err
}

func coordinatePair(lat, lng *float64) map[string]string {
	if (lat == nil) != (lng == nil) {
		if lat == nil {
			return map[string]string{"latitude": "is required when longitude is set"}
		}
		return map[string]string{"longitude": "is required when latitude is set"}
	}
	return nil
}

func applyString(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

func boundingBox(lat, lng, radiusKm float64) repository.BoundingBox {
	latDelta := radiusKm / kmPerDegreeLatitude
	cos := math.Cos(lat * math.Pi / 180)
	lngDelta := 180.0
	if cos > 1e-9 {
		lngDelta = math.Min(radiusKm/(kmPerDegreeLatitude*cos), 180)
	}
	box := repository.BoundingBox{
		MinLat: lat - latDelta,
		MaxLat: lat + latDelta,
		MinLng: lng - lngDelta,
		MaxLng: lng + lngDelta,
	}
	// A window that crosses the antimeridian or a pole cannot be expressed as
	// one longitude range, so the haversine check does all the work.
	if box.MinLng < -180 || box.MaxLng > 180 || box.MinLat < -90 || box.MaxLat > 90 {
		box.MinLng, box.MaxLng = -180, 180
	}
	return box
}

func haversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }
	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
