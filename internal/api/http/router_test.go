package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/insurecare/feedback-portal/internal/api/http/handlers"
	"github.com/insurecare/feedback-portal/internal/auth"
	"github.com/insurecare/feedback-portal/internal/cache"
	"github.com/insurecare/feedback-portal/internal/config"
	"github.com/insurecare/feedback-portal/internal/events"
	"github.com/insurecare/feedback-portal/internal/observability"
	"github.com/insurecare/feedback-portal/internal/ratelimit"
	"github.com/insurecare/feedback-portal/internal/repository/memstore"
	"github.com/insurecare/feedback-portal/internal/service"
	"github.com/insurecare/feedback-portal/internal/storage"
)

const (
	adminEmail    = "admin@portal.test"
	adminPassword = "admin-secret"
)

type testServer struct {
	app        *fiber.App
	adminToken string
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func newTestServer(t *testing.T, submissionLimit int) *testServer {
	t.Helper()
	logger := zap.NewNop()
	store := memstore.New()
	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics("test")
	stats := cache.NewStatsCache(cache.NewMemoryCache(), time.Minute, logger)
	service.NewAuditService(dispatcher, logger, stats).RegisterHandlers()

	cfg := config.Config{Auth: config.AuthConfig{JWTSecret: "router-secret", AccessTokenTTLMinutes: 30, BcryptCost: 4}}
	authService := service.NewAuthService(cfg, service.AuthDependencies{UserRepo: store.Users(), Dispatcher: dispatcher, Logger: logger})
	profiles := service.NewProfileService(service.ProfileDependencies{
		AgentRepo:    store.Agents(),
		EmployeeRepo: store.Employees(),
		UserRepo:     store.Users(),
		RatingRepo:   store.Ratings(),
		Dispatcher:   dispatcher,
		Logger:       logger,
	})
	qrService := service.NewQRService(service.QRDependencies{
		Profiles:   profiles,
		BaseURL:    "https://portal.test",
		Store:      storage.NewMemoryStore(),
		PresignTTL: time.Minute,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	dashboard := service.NewDashboardService(service.DashboardDependencies{
		RatingRepo:    store.Ratings(),
		ComplaintRepo: store.Complaints(),
		StatsRepo:     store.Stats(),
		Profiles:      profiles,
		Cache:         stats,
	})

	routes := RouteConfig{
		Health: handlers.NewHealthHandler("feedback-portal", "test", map[string]handlers.Pinger{"store": store}),
		Users: handlers.NewUsersHandler(authService, service.NewUserService(service.UserDependencies{
			UserRepo:     store.Users(),
			AgentRepo:    store.Agents(),
			EmployeeRepo: store.Employees(),
			Dispatcher:   dispatcher,
			Logger:       logger,
		})),
		Profiles: handlers.NewProfilesHandler(profiles, qrService),
		Feedback: handlers.NewFeedbackHandler(
			service.NewQuestionService(store.Questions()),
			service.NewRatingService(service.RatingDependencies{
				RatingRepo:   store.Ratings(),
				QuestionRepo: store.Questions(),
				AgentRepo:    store.Agents(),
				EmployeeRepo: store.Employees(),
				Dispatcher:   dispatcher,
				Metrics:      metrics,
				Logger:       logger,
			}),
			service.NewComplaintService(service.ComplaintDependencies{
				ComplaintRepo: store.Complaints(),
				AgentRepo:     store.Agents(),
				EmployeeRepo:  store.Employees(),
				Dispatcher:    dispatcher,
				Metrics:       metrics,
				Logger:        logger,
			}),
		),
		Staff:           handlers.NewStaffHandler(dashboard, qrService),
		Admin:           handlers.NewAdminHandler(dashboard, service.NewExportService(store.Agents(), store.Employees(), store.Ratings())),
		AuthMiddleware:  auth.NewAuthMiddleware(authService.TokenManager(), store.Users(), store.Agents(), store.Employees(), logger),
		Metrics:         metrics,
		Limiter:         ratelimit.NewMemory(time.Minute),
		SubmissionLimit: submissionLimit,
	}

	require.NoError(t, authService.EnsureAdmin(context.Background(), config.AdminConfig{
		Name:     "Root",
		Email:    adminEmail,
		Password: adminPassword,
	}))

	srv := &testServer{app: NewApp("feedback-portal-test", routes, logger, 5*time.Second)}
	srv.adminToken = srv.login(t, adminEmail, adminPassword)
	return srv
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (*httptestResponse, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	out := &httptestResponse{Status: resp.StatusCode, Header: resp.Header, Body: raw}
	var env envelope
	if strings.HasPrefix(resp.Header.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return out, env
}

type httptestResponse struct {
	Status int
	Header map[string][]string
	Body   []byte
}

func (r *httptestResponse) header(name string) string {
	for key, values := range r.Header {
		if strings.EqualFold(key, name) && len(values) > 0 {
			return values[0]
		}
	}
	return ""
}

func (s *testServer) login(t *testing.T, email, password string) string {
	t.Helper()
	resp, env := s.do(t, fiber.MethodPost, "/auth/login", "", map[string]string{"email": email, "password": password})
	require.Equal(t, fiber.StatusOK, resp.Status, string(resp.Body))
	var session struct {
		Auth struct {
			Token string `json:"token"`
		} `json:"auth"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &session))
	require.NotEmpty(t, session.Auth.Token)
	return session.Auth.Token
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

type idResponse struct {
	ID int64 `json:"id"`
}

func (s *testServer) createAgent(t *testing.T, name string, userID *int64) int64 {
	t.Helper()
	body := map[string]any{
		"name":     name,
		"email":    strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@portal.test",
		"phone":    "0771234567",
		"location": "Colombo",
		"branch":   "Main",
	}
	if userID != nil {
		body["user_id"] = *userID
	}
	resp, env := s.do(t, fiber.MethodPost, "/api/admin/agents", s.adminToken, body)
	require.Equal(t, fiber.StatusCreated, resp.Status, string(resp.Body))
	return decode[idResponse](t, env).ID
}

func (s *testServer) createQuestion(t *testing.T, kind string, order int) int64 {
	t.Helper()
	resp, env := s.do(t, fiber.MethodPost, "/api/admin/questions", s.adminToken, map[string]any{
		"question_text": fmt.Sprintf("How helpful was the visit %d?", order),
		"question_type": kind,
		"order_index":   order,
	})
	require.Equal(t, fiber.StatusCreated, resp.Status, string(resp.Body))
	return decode[idResponse](t, env).ID
}

// approvedStaff registers an account with role, approves it and returns its id and token.
func (s *testServer) approvedStaff(t *testing.T, email, role string) (int64, string) {
	t.Helper()
	resp, env := s.do(t, fiber.MethodPost, "/auth/register", "", map[string]string{
		"name": "Staff Member", "email": email, "password": "staff-pass", "role": role,
	})
	require.Equal(t, fiber.StatusCreated, resp.Status, string(resp.Body))
	id := decode[idResponse](t, env).ID

	resp, _ = s.do(t, fiber.MethodPut, fmt.Sprintf("/api/admin/users/%d", id), s.adminToken, map[string]any{"is_approved": true})
	require.Equal(t, fiber.StatusOK, resp.Status, string(resp.Body))
	return id, s.login(t, email, "staff-pass")
}

func TestHealthAndUnknownRoute(t *testing.T) {
	srv := newTestServer(t, 100)

	resp, _ := srv.do(t, fiber.MethodGet, "/health/live", "", nil)
	assert.Equal(t, fiber.StatusOK, resp.Status)

	resp, _ = srv.do(t, fiber.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, fiber.StatusOK, resp.Status)
	assert.Contains(t, string(resp.Body), `"store":"ok"`)

	resp, env := srv.do(t, fiber.MethodGet, "/api/nope", "", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.Status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)

	resp, _ = srv.do(t, fiber.MethodGet, "/metrics", "", nil)
	assert.Equal(t, fiber.StatusOK, resp.Status)
}

func TestMetricsSurviveNotFoundTraffic(t *testing.T) {
	srv := newTestServer(t, 100)

	for i := 1; i <= 3; i++ {
		resp, _ := srv.do(t, fiber.MethodGet, fmt.Sprintf("/api/agents/%d", i), "", nil)
		require.Equal(t, fiber.StatusNotFound, resp.Status)
	}
	for i := 0; i < 40; i++ {
		resp, _ := srv.do(t, fiber.MethodGet, fmt.Sprintf("/no/such/route/%d", i), "", nil)
		require.Equal(t, fiber.StatusNotFound, resp.Status)
	}

	for i := 0; i < 2; i++ {
		resp, _ := srv.do(t, fiber.MethodGet, "/metrics", "", nil)
		require.Equal(t, fiber.StatusOK, resp.Status, string(resp.Body))
		body := string(resp.Body)
		assert.Contains(t, body, `route="/api/agents/:id"`)
		assert.Contains(t, body, `route="unmatched"`)
		assert.NotContains(t, body, "/no/such/route")
		assert.NotContains(t, body, `route="/api/agents/1"`)
	}
}

func TestRegistrationRequiresApproval(t *testing.T) {
	srv := newTestServer(t, 100)

	resp, env := srv.do(t, fiber.MethodPost, "/auth/register", "", map[string]string{
		"name": "Bob", "email": "Bob@X.com", "password": "secret1", "role": "agent",
	})
	require.Equal(t, fiber.StatusCreated, resp.Status, string(resp.Body))
	user := decode[struct {
		ID         int64  `json:"id"`
		Email      string `json:"email"`
		IsApproved bool   `json:"is_approved"`
	}](t, env)
	assert.Equal(t, "bob@x.com", user.Email)
	assert.False(t, user.IsApproved)

	resp, env = srv.do(t, fiber.MethodPost, "/auth/login", "", map[string]string{"email": "bob@x.com", "password": "secret1"})
	assert.Equal(t, fiber.StatusForbidden, resp.Status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "ACCOUNT_PENDING_APPROVAL", env.Error.Code)

	resp, env = srv.do(t, fiber.MethodGet, "/api/admin/users?approved=false", srv.adminToken, nil)
	require.Equal(t, fiber.StatusOK, resp.Status)
	page := decode[struct {
		Total int `json:"total"`
	}](t, env)
	assert.Equal(t, 1, page.Total)

	resp, _ = srv.do(t, fiber.MethodPut, fmt.Sprintf("/api/admin/users/%d", user.ID), srv.adminToken, map[string]any{"is_approved": true})
	require.Equal(t, fiber.StatusOK, resp.Status)

	token := srv.login(t, "bob@x.com", "secret1")
	resp, env = srv.do(t, fiber.MethodGet, "/auth/me", token, nil)
	require.Equal(t, fiber.StatusOK, resp.Status)
	assert.Equal(t, user.ID, decode[idResponse](t, env).ID)

	resp, env = srv.do(t, fiber.MethodPost, "/auth/register", "", map[string]string{
		"name": "Bob", "email": "bob@x.com", "password": "secret1", "role": "agent",
	})
	assert.Equal(t, fiber.StatusConflict, resp.Status)
	assert.Equal(t, "CONFLICT", env.Error.Code)
}

func TestPublicRatingFlow(t *testing.T) {
	srv := newTestServer(t, 100)
	agentID := srv.createAgent(t, "Jane Agent", nil)
	q1 := srv.createQuestion(t, "agent", 1)
	q2 := srv.createQuestion(t, "agent", 2)

	resp, env := srv.do(t, fiber.MethodGet, "/api/questions?type=agent", "", nil)
	require.Equal(t, fiber.StatusOK, resp.Status)
	questions := decode[[]idResponse](t, env)
	require.Len(t, questions, 2)
	assert.Equal(t, q1, questions[0].ID)

	submission := map[string]any{
		"agent_id":    agentID,
		"rater_name":  "Carol",
		"rater_email": "carol@x.com",
		"rater_phone": "0779876543",
		"ratings": []map[string]any{
			{"question_id": q1, "rating_value": 5},
			{"question_id": q2, "rating_value": 4, "comments": "quick"},
		},
	}
	resp, env = srv.do(t, fiber.MethodPost, "/api/ratings", "", submission)
	require.Equal(t, fiber.StatusCreated, resp.Status, string(resp.Body))
	assert.Len(t, decode[[]idResponse](t, env), 2)

	resp, env = srv.do(t, fiber.MethodGet, fmt.Sprintf("/api/agents/%d", agentID), "", nil)
	require.Equal(t, fiber.StatusOK, resp.Status)
	agent := decode[struct {
		TotalRatings  int64    `json:"total_ratings"`
		AverageRating *float64 `json:"average_rating"`
	}](t, env)
	assert.EqualValues(t, 2, agent.TotalRatings)
	require.NotNil(t, agent.AverageRating)
	assert.InDelta(t, 4.5, *agent.AverageRating, 0.001)

	delete(submission, "rater_email")
	submission["ratings"] = []map[string]any{{"question_id": q1, "rating_value": 9}}
	resp, env = srv.do(t, fiber.MethodPost, "/api/ratings", "", submission)
	assert.Equal(t, fiber.StatusBadRequest, resp.Status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)
	assert.Contains(t, env.Error.Details, "rater_email")
	assert.Contains(t, env.Error.Details, "ratings[0].rating_value")
}

func TestPublicProfileHidesAccountLink(t *testing.T) {
	srv := newTestServer(t, 100)
	userID, _ := srv.approvedStaff(t, "linked@portal.test", "agent")
	agentID := srv.createAgent(t, "Linked Agent", &userID)

	resp, env := srv.do(t, fiber.MethodGet, fmt.Sprintf("/api/agents/%d", agentID), "", nil)
	require.Equal(t, fiber.StatusOK, resp.Status, string(resp.Body))
	public := decode[map[string]any](t, env)
	assert.Equal(t, "Linked Agent", public["name"])
	assert.NotContains(t, public, "user_id")
	assert.NotContains(t, public, "qr_code")

	resp, env = srv.do(t, fiber.MethodGet, fmt.Sprintf("/api/admin/agents/%d", agentID), srv.adminToken, nil)
	require.Equal(t, fiber.StatusOK, resp.Status, string(resp.Body))
	full := decode[map[string]any](t, env)
	assert.EqualValues(t, userID, full["user_id"])
	assert.NotEmpty(t, full["qr_code"])
}

func TestSubmissionRateLimit(t *testing.T) {
	srv := newTestServer(t, 2)
	complaint := map[string]any{
		"complainant_name":  "Dan",
		"complainant_email": "dan@x.com",
		"complainant_phone": "0771112223",
		"complaint_type":    "billing",
		"subject":           "Double charge",
		"description":       "I was charged twice this month.",
	}
	for i := 0; i < 2; i++ {
		resp, _ := srv.do(t, fiber.MethodPost, "/api/complaints", "", complaint)
		require.Equal(t, fiber.StatusCreated, resp.Status, string(resp.Body))
	}

	resp, env := srv.do(t, fiber.MethodPost, "/api/complaints", "", complaint)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.Status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "RATE_LIMITED", env.Error.Code)
	assert.NotEmpty(t, resp.header(fiber.HeaderRetryAfter))
	assert.Equal(t, "0", resp.header("X-RateLimit-Remaining"))
}

func TestResolveCode(t *testing.T) {
	srv := newTestServer(t, 100)
	agentID := srv.createAgent(t, "Jane Agent", nil)

	resp, env := srv.do(t, fiber.MethodPost, "/api/qr/resolve", "", map[string]string{
		"payload": fmt.Sprintf("https://portal.test/rate/agent/%d", agentID),
	})
	require.Equal(t, fiber.StatusOK, resp.Status, string(resp.Body))
	summary := decode[struct {
		Type string `json:"type"`
		ID   int64  `json:"id"`
	}](t, env)
	assert.Equal(t, "agent", summary.Type)
	assert.Equal(t, agentID, summary.ID)

	resp, env = srv.do(t, fiber.MethodPost, "/api/qr/resolve", "", map[string]string{"payload": "https://portal.test/pay/now"})
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.Status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "INVALID_CODE", env.Error.Code)

	resp, env = srv.do(t, fiber.MethodPost, "/api/qr/resolve", "", map[string]string{"payload": "/rate/employee/999"})
	assert.Equal(t, fiber.StatusNotFound, resp.Status)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestRoleGuards(t *testing.T) {
	srv := newTestServer(t, 100)
	userID, staffToken := srv.approvedStaff(t, "agent@portal.test", "agent")
	agentID := srv.createAgent(t, "Linked Agent", &userID)
	otherID := srv.createAgent(t, "Other Agent", nil)

	resp, env := srv.do(t, fiber.MethodGet, "/api/admin/users", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.Status)
	assert.Equal(t, "UNAUTHORIZED", env.Error.Code)

	resp, env = srv.do(t, fiber.MethodGet, "/api/admin/users", staffToken, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.Status)
	assert.Equal(t, "FORBIDDEN", env.Error.Code)

	resp, _ = srv.do(t, fiber.MethodGet, "/api/dashboard/stats", srv.adminToken, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.Status)

	resp, _ = srv.do(t, fiber.MethodGet, "/api/admin/users", "not-a-token", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.Status)

	resp, env = srv.do(t, fiber.MethodGet, "/api/dashboard/profile", staffToken, nil)
	require.Equal(t, fiber.StatusOK, resp.Status, string(resp.Body))
	assert.Equal(t, agentID, decode[idResponse](t, env).ID)

	resp, env = srv.do(t, fiber.MethodGet, "/api/dashboard/stats", staffToken, nil)
	require.Equal(t, fiber.StatusOK, resp.Status, string(resp.Body))
	stats := decode[struct {
		TotalRatings  int64    `json:"total_ratings"`
		AverageRating *float64 `json:"average_rating"`
	}](t, env)
	assert.Zero(t, stats.TotalRatings)
	assert.Nil(t, stats.AverageRating)

	resp, _ = srv.do(t, fiber.MethodGet, fmt.Sprintf("/api/agents/%d/qr", agentID), staffToken, nil)
	assert.Equal(t, fiber.StatusOK, resp.Status)
	resp, _ = srv.do(t, fiber.MethodGet, fmt.Sprintf("/api/agents/%d/qr", otherID), staffToken, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.Status)

	// Deleting the account revokes its token on the next request.
	resp, _ = srv.do(t, fiber.MethodDelete, fmt.Sprintf("/api/admin/users/%d", userID), srv.adminToken, nil)
	require.Equal(t, fiber.StatusNoContent, resp.Status)
	resp, _ = srv.do(t, fiber.MethodGet, "/api/dashboard/profile", staffToken, nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.Status)
}

func TestDownloadsAndExport(t *testing.T) {
	srv := newTestServer(t, 100)
	agentID := srv.createAgent(t, "Jane Agent", nil)

	resp, _ := srv.do(t, fiber.MethodGet, fmt.Sprintf("/api/agents/%d/qr", agentID), srv.adminToken, nil)
	require.Equal(t, fiber.StatusOK, resp.Status)
	assert.Equal(t, "image/png", resp.header(fiber.HeaderContentType))
	assert.Equal(t, `attachment; filename="Jane Agent-qr-code.png"`, resp.header(fiber.HeaderContentDisposition))
	assert.True(t, bytes.HasPrefix(resp.Body, []byte("\x89PNG")))

	resp, _ = srv.do(t, fiber.MethodGet, "/api/admin/export/agents", srv.adminToken, nil)
	require.Equal(t, fiber.StatusOK, resp.Status)
	assert.True(t, strings.HasPrefix(resp.header(fiber.HeaderContentType), "text/csv"))
	assert.Contains(t, resp.header(fiber.HeaderContentDisposition), "agents-export-")
	assert.Contains(t, string(resp.Body), "Jane Agent")

	resp, env := srv.do(t, fiber.MethodGet, "/api/admin/export/agents?format=pdf", srv.adminToken, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.Status)
	assert.Contains(t, env.Error.Details, "format")

	resp, env = srv.do(t, fiber.MethodPost, fmt.Sprintf("/api/admin/agents/%d/qr/publish", agentID), srv.adminToken, nil)
	require.Equal(t, fiber.StatusCreated, resp.Status, string(resp.Body))
	published := decode[struct {
		Key string `json:"key"`
		URI string `json:"uri"`
	}](t, env)
	assert.Equal(t, fmt.Sprintf("qr/agent/%d.png", agentID), published.Key)
	assert.Equal(t, fmt.Sprintf("https://portal.test/rate/agent/%d", agentID), published.URI)
}

func TestComplaintTriage(t *testing.T) {
	srv := newTestServer(t, 100)
	resp, env := srv.do(t, fiber.MethodPost, "/api/complaints", "", map[string]any{
		"complainant_name":  "Dan",
		"complainant_email": "dan@x.com",
		"complainant_phone": "0771112223",
		"complaint_type":    "claim",
		"subject":           "Claim delayed",
		"description":       "My claim has been pending for weeks.",
	})
	require.Equal(t, fiber.StatusCreated, resp.Status, string(resp.Body))
	id := decode[idResponse](t, env).ID

	resp, env = srv.do(t, fiber.MethodPut, fmt.Sprintf("/api/admin/complaints/%d", id), srv.adminToken, map[string]any{
		"status":     "resolved",
		"resolution": "Paid out",
	})
	require.Equal(t, fiber.StatusOK, resp.Status, string(resp.Body))
	updated := decode[struct {
		Status     string     `json:"status"`
		Priority   string     `json:"priority"`
		ResolvedAt *time.Time `json:"resolved_at"`
	}](t, env)
	assert.Equal(t, "resolved", updated.Status)
	assert.Equal(t, "medium", updated.Priority)
	assert.NotNil(t, updated.ResolvedAt)

	resp, env = srv.do(t, fiber.MethodGet, "/api/admin/complaints?status=resolved&type=claim", srv.adminToken, nil)
	require.Equal(t, fiber.StatusOK, resp.Status)
	assert.Equal(t, 1, decode[struct {
		Total int `json:"total"`
	}](t, env).Total)

	resp, env = srv.do(t, fiber.MethodGet, "/api/admin/complaints?status=lost", srv.adminToken, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.Status)
	assert.Contains(t, env.Error.Details, "status")

	resp, _ = srv.do(t, fiber.MethodGet, "/api/admin/complaints/abc", srv.adminToken, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.Status)
}
