package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/insurecare/feedback-portal/internal/access"
	"github.com/insurecare/feedback-portal/internal/cache"
	"github.com/insurecare/feedback-portal/internal/config"
	"github.com/insurecare/feedback-portal/internal/domain"
	"github.com/insurecare/feedback-portal/internal/events"
	"github.com/insurecare/feedback-portal/internal/repository/memstore"
	"github.com/insurecare/feedback-portal/internal/storage"
	apperrors "github.com/insurecare/feedback-portal/pkg/util/errorutil"
)

const testBaseURL = "https://portal.example.com"

var admin = access.Admin(1)

type fixture struct {
	store      *memstore.Store
	objects    *storage.MemoryStore
	auth       *AuthService
	users      *UserService
	profiles   *ProfileService
	questions  *QuestionService
	ratings    *RatingService
	complaints *ComplaintService
	qr         *QRService
	dashboard  *DashboardService
	export     *ExportService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memstore.New()
	dispatcher := events.NewInMemoryDispatcher()
	objects := storage.NewMemoryStore()
	stats := cache.NewStatsCache(cache.NewMemoryCache(), time.Minute, nil)
	NewAuditService(dispatcher, nil, stats).RegisterHandlers()

	cfg := config.Config{Auth: config.AuthConfig{JWTSecret: "test-secret", AccessTokenTTLMinutes: 60, BcryptCost: 4}}
	profiles := NewProfileService(ProfileDependencies{
		AgentRepo:    store.Agents(),
		EmployeeRepo: store.Employees(),
		UserRepo:     store.Users(),
		RatingRepo:   store.Ratings(),
		Dispatcher:   dispatcher,
	})
	return &fixture{
		store:   store,
		objects: objects,
		auth:    NewAuthService(cfg, AuthDependencies{UserRepo: store.Users(), Dispatcher: dispatcher}),
		users: NewUserService(UserDependencies{
			UserRepo:     store.Users(),
			AgentRepo:    store.Agents(),
			EmployeeRepo: store.Employees(),
			Dispatcher:   dispatcher,
		}),
		profiles:  profiles,
		questions: NewQuestionService(store.Questions()),
		ratings: NewRatingService(RatingDependencies{
			RatingRepo:   store.Ratings(),
			QuestionRepo: store.Questions(),
			AgentRepo:    store.Agents(),
			EmployeeRepo: store.Employees(),
			Dispatcher:   dispatcher,
		}),
		complaints: NewComplaintService(ComplaintDependencies{
			ComplaintRepo: store.Complaints(),
			AgentRepo:     store.Agents(),
			EmployeeRepo:  store.Employees(),
			Dispatcher:    dispatcher,
		}),
		qr: NewQRService(QRDependencies{
			Profiles:   profiles,
			BaseURL:    testBaseURL,
			Store:      objects,
			PresignTTL: 15 * time.Minute,
			Dispatcher: dispatcher,
		}),
		dashboard: NewDashboardService(DashboardDependencies{
			RatingRepo:    store.Ratings(),
			ComplaintRepo: store.Complaints(),
			StatsRepo:     store.Stats(),
			Profiles:      profiles,
			Cache:         stats,
		}),
		export: NewExportService(store.Agents(), store.Employees(), store.Ratings()),
	}
}

var seq int

func (f *fixture) agent(t *testing.T, name string) *domain.Agent {
	t.Helper()
	seq++
	agent, err := f.profiles.CreateAgent(context.Background(), admin, AgentInput{
		Name:     name,
		Email:    fmt.Sprintf("agent%d@x.com", seq),
		Phone:    "0812345678901",
		Location: "Jakarta",
		Branch:   "Central",
	})
	require.NoError(t, err)
	return agent
}

func (f *fixture) employee(t *testing.T, name string) *domain.Employee {
	t.Helper()
	seq++
	employee, err := f.profiles.CreateEmployee(context.Background(), admin, EmployeeInput{
		Name:       name,
		Email:      fmt.Sprintf("employee%d@x.com", seq),
		Phone:      "0812345678901",
		Department: "Claims",
		Position:   "Officer",
		Branch:     "Central",
	})
	require.NoError(t, err)
	return employee
}

func (f *fixture) question(t *testing.T, kind domain.ProfileKind) *domain.Question {
	t.Helper()
	q, err := f.questions.Create(context.Background(), admin, QuestionInput{Text: "How helpful was the service?", Type: kind})
	require.NoError(t, err)
	return q
}

func (f *fixture) rate(t *testing.T, target domain.Target, questionID int64, values ...int) {
	t.Helper()
	agentID, employeeID := target.Columns()
	for _, v := range values {
		_, err := f.ratings.Submit(context.Background(), access.Anonymous(), SubmitRatingInput{
			AgentID:    agentID,
			EmployeeID: employeeID,
			RaterName:  "Customer",
			RaterEmail: "customer@x.com",
			RaterPhone: "0812345678901",
			Ratings:    []RatingAnswer{{QuestionID: questionID, Value: v}},
		})
		require.NoError(t, err)
	}
}

func requireCode(t *testing.T, err error, code string) *apperrors.DomainError {
	t.Helper()
	require.Error(t, err)
	de := apperrors.ToDomainError(err)
	require.Equal(t, code, de.Code, "error: %v", err)
	return de
}

func int64Ptr(v int64) *int64 { return &v }
