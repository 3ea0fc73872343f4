package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	httptransport "github.com/insurecare/feedback-portal/internal/api/http"
	"github.com/insurecare/feedback-portal/internal/api/http/handlers"
	"github.com/insurecare/feedback-portal/internal/auth"
	"github.com/insurecare/feedback-portal/internal/cache"
	"github.com/insurecare/feedback-portal/internal/config"
	"github.com/insurecare/feedback-portal/internal/events"
	"github.com/insurecare/feedback-portal/internal/observability"
	"github.com/insurecare/feedback-portal/internal/persistence"
	"github.com/insurecare/feedback-portal/internal/ratelimit"
	"github.com/insurecare/feedback-portal/internal/repository"
	"github.com/insurecare/feedback-portal/internal/repository/memstore"
	"github.com/insurecare/feedback-portal/internal/service"
	"github.com/insurecare/feedback-portal/internal/storage"
	"github.com/insurecare/feedback-portal/internal/worker"
)

const metricsNamespace = "feedback_portal"

type repositories struct {
	users      repository.UserRepository
	agents     repository.AgentRepository
	employees  repository.EmployeeRepository
	questions  repository.QuestionRepository
	ratings    repository.RatingRepository
	complaints repository.ComplaintRepository
	stats      repository.StatsRepository
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	readiness := map[string]handlers.Pinger{}
	var repos repositories
	if pg.Enabled() {
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
				logger.Fatal("failed to run migrations", zap.Error(err))
			}
		}
		pool := pg.PoolHandle()
		repos = repositories{
			users:      repository.NewUserRepository(pool),
			agents:     repository.NewAgentRepository(pool),
			employees:  repository.NewEmployeeRepository(pool),
			questions:  repository.NewQuestionRepository(pool),
			ratings:    repository.NewRatingRepository(pool),
			complaints: repository.NewComplaintRepository(pool),
			stats:      repository.NewStatsRepository(pool),
		}
		readiness["postgres"] = pg
	} else {
		store := memstore.New()
		repos = repositories{
			users:      store.Users(),
			agents:     store.Agents(),
			employees:  store.Employees(),
			questions:  store.Questions(),
			ratings:    store.Ratings(),
			complaints: store.Complaints(),
			stats:      store.Stats(),
		}
		readiness["store"] = store
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()
	if redis.Enabled() {
		readiness["redis"] = redis
	}

	var limiter ratelimit.Limiter
	if cfg.RateLimit.Enabled {
		if redis.Enabled() {
			limiter = ratelimit.NewRedis(redis.Client, cfg.RateLimit.Window(), logger)
		} else {
			limiter = ratelimit.NewMemory(cfg.RateLimit.Window())
		}
	}

	var objects storage.ObjectStore
	if cfg.Storage.Enabled() {
		s3Store, err := storage.NewS3Store(ctx, cfg.Storage)
		if err != nil {
			logger.Fatal("failed to init object storage", zap.Error(err))
		}
		objects = s3Store
	}

	metrics := observability.NewMetrics(metricsNamespace)
	dispatcher := events.NewInMemoryDispatcher()
	statsCache := cache.NewStatsCache(cache.New(ctx, redis.Client), cfg.Cache.StatsTTL(), logger)

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:   repos.users,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	userService := service.NewUserService(service.UserDependencies{
		UserRepo:     repos.users,
		AgentRepo:    repos.agents,
		EmployeeRepo: repos.employees,
		Dispatcher:   dispatcher,
		Logger:       logger,
	})
	profileService := service.NewProfileService(service.ProfileDependencies{
		AgentRepo:    repos.agents,
		EmployeeRepo: repos.employees,
		UserRepo:     repos.users,
		RatingRepo:   repos.ratings,
		Dispatcher:   dispatcher,
		Logger:       logger,
	})
	questionService := service.NewQuestionService(repos.questions)
	ratingService := service.NewRatingService(service.RatingDependencies{
		RatingRepo:   repos.ratings,
		QuestionRepo: repos.questions,
		AgentRepo:    repos.agents,
		EmployeeRepo: repos.employees,
		Dispatcher:   dispatcher,
		Metrics:      metrics,
		Logger:       logger,
	})
	complaintService := service.NewComplaintService(service.ComplaintDependencies{
		ComplaintRepo: repos.complaints,
		AgentRepo:     repos.agents,
		EmployeeRepo:  repos.employees,
		Dispatcher:    dispatcher,
		Metrics:       metrics,
		Logger:        logger,
	})
	qrService := service.NewQRService(service.QRDependencies{
		Profiles:   profileService,
		BaseURL:    cfg.QR.PublicBaseURL,
		Store:      objects,
		PresignTTL: cfg.Storage.PresignTTL(),
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	dashboardService := service.NewDashboardService(service.DashboardDependencies{
		RatingRepo:    repos.ratings,
		ComplaintRepo: repos.complaints,
		StatsRepo:     repos.stats,
		Profiles:      profileService,
		Cache:         statsCache,
	})
	exportService := service.NewExportService(repos.agents, repos.employees, repos.ratings)

	worker.StartAuditWorker(service.NewAuditService(dispatcher, logger, statsCache))

	if err := authService.EnsureAdmin(ctx, cfg.Admin); err != nil {
		logger.Fatal("failed to bootstrap admin", zap.Error(err))
	}

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), repos.users, repos.agents, repos.employees, logger)

	app := httptransport.NewApp(cfg.App.Name, httptransport.RouteConfig{
		Health:          handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, readiness),
		Users:           handlers.NewUsersHandler(authService, userService),
		Profiles:        handlers.NewProfilesHandler(profileService, qrService),
		Feedback:        handlers.NewFeedbackHandler(questionService, ratingService, complaintService),
		Staff:           handlers.NewStaffHandler(dashboardService, qrService),
		Admin:           handlers.NewAdminHandler(dashboardService, exportService),
		AuthMiddleware:  authMiddleware,
		Metrics:         metrics,
		Limiter:         limiter,
		SubmissionLimit: cfg.RateLimit.Submissions,
		AuthLimit:       cfg.RateLimit.Auth,
		AllowedOrigins:  cfg.App.CORSOrigins,
	}, logger, cfg.App.RequestTimeout())

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("shutdown incomplete", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
