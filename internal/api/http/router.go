package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/insurecare/feedback-portal/internal/api/http/handlers"
	"github.com/insurecare/feedback-portal/internal/auth"
	"github.com/insurecare/feedback-portal/internal/domain"
	"github.com/insurecare/feedback-portal/internal/observability"
	"github.com/insurecare/feedback-portal/internal/ratelimit"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Profiles       *handlers.ProfilesHandler
	Feedback       *handlers.FeedbackHandler
	Staff          *handlers.StaffHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
	// Limiter may be nil to disable rate limiting.
	Limiter         ratelimit.Limiter
	SubmissionLimit int
	AuthLimit       int
	AllowedOrigins  string
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	if cfg.AllowedOrigins != "" {
		app.Use(cors.New(cors.Config{
			AllowOrigins: cfg.AllowedOrigins,
			AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		}))
	}

	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	// Every route below resolves its caller; the access gate in the services
	// decides what that caller may do.
	app.Use(cfg.AuthMiddleware.Handle)

	authLimit := RateLimit(cfg.Limiter, "auth", cfg.AuthLimit)
	authGroup := app.Group("/auth")
	authGroup.Post("/register", authLimit, cfg.Users.Register)
	authGroup.Post("/login", authLimit, cfg.Users.Login)
	authGroup.Get("/me", auth.RequireAuthenticated(), cfg.Users.Me)
	authGroup.Post("/password/change", auth.RequireAuthenticated(), cfg.Users.ChangePassword)

	submitLimit := RateLimit(cfg.Limiter, "submit", cfg.SubmissionLimit)
	api := app.Group("/api")
	api.Get("/questions", cfg.Feedback.ListQuestions)
	api.Post("/ratings", submitLimit, cfg.Feedback.SubmitRatings)
	api.Post("/complaints", submitLimit, cfg.Feedback.FileComplaint)
	api.Get("/search", cfg.Profiles.Search)
	api.Post("/qr/resolve", cfg.Profiles.Resolve)
	api.Get("/agents/nearby", cfg.Profiles.Nearby)
	api.Get("/agents/:id", cfg.Profiles.GetAgent)
	api.Get("/employees/:id", cfg.Profiles.GetEmployee)
	api.Get("/agents/:id/qr", cfg.Profiles.DownloadQR(domain.KindAgent))
	api.Get("/employees/:id/qr", cfg.Profiles.DownloadQR(domain.KindEmployee))

	dashboard := api.Group("/dashboard", auth.RequireStaff())
	dashboard.Get("/profile", cfg.Staff.Profile)
	dashboard.Get("/stats", cfg.Staff.Stats)
	dashboard.Get("/qr-code", cfg.Staff.QRCode)
	dashboard.Get("/ratings", cfg.Feedback.ListRatings)
	dashboard.Get("/complaints", cfg.Feedback.ListComplaints)

	admin := api.Group("/admin", auth.RequireAdmin())
	admin.Get("/dashboard", cfg.Admin.Dashboard)
	admin.Get("/export/agents", cfg.Admin.ExportAgents)
	admin.Get("/export/employees", cfg.Admin.ExportEmployees)

	admin.Get("/users", cfg.Users.List)
	admin.Get("/users/:id", cfg.Users.Get)
	admin.Put("/users/:id", cfg.Users.Update)
	admin.Delete("/users/:id", cfg.Users.Delete)

	admin.Get("/agents", cfg.Profiles.ListAgents)
	admin.Post("/agents", cfg.Profiles.CreateAgent)
	admin.Get("/agents/:id", cfg.Profiles.AgentDetail)
	admin.Put("/agents/:id", cfg.Profiles.UpdateAgent)
	admin.Delete("/agents/:id", cfg.Profiles.Delete(domain.KindAgent))
	admin.Put("/agents/:id/user", cfg.Profiles.LinkUser(domain.KindAgent))
	admin.Post("/agents/:id/qr/publish", cfg.Profiles.PublishQR(domain.KindAgent))

	admin.Get("/employees", cfg.Profiles.ListEmployees)
	admin.Post("/employees", cfg.Profiles.CreateEmployee)
	admin.Get("/employees/:id", cfg.Profiles.EmployeeDetail)
	admin.Put("/employees/:id", cfg.Profiles.UpdateEmployee)
	admin.Delete("/employees/:id", cfg.Profiles.Delete(domain.KindEmployee))
	admin.Put("/employees/:id/user", cfg.Profiles.LinkUser(domain.KindEmployee))
	admin.Post("/employees/:id/qr/publish", cfg.Profiles.PublishQR(domain.KindEmployee))

	admin.Get("/questions", cfg.Feedback.ListQuestions)
	admin.Post("/questions", cfg.Feedback.CreateQuestion)
	admin.Put("/questions/:id", cfg.Feedback.UpdateQuestion)
	admin.Delete("/questions/:id", cfg.Feedback.DeleteQuestion)

	admin.Get("/ratings", cfg.Feedback.ListRatings)
	admin.Delete("/ratings/:id", cfg.Feedback.DeleteRating)

	admin.Get("/complaints", cfg.Feedback.ListComplaints)
	admin.Get("/complaints/:id", cfg.Feedback.GetComplaint)
	admin.Put("/complaints/:id", cfg.Feedback.UpdateComplaint)
	admin.Delete("/complaints/:id", cfg.Feedback.DeleteComplaint)
}
