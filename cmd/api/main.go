package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/incial/workhub-api/docs"
	"github.com/incial/workhub-api/internal/auth"
	"github.com/incial/workhub-api/internal/config"
	"github.com/incial/workhub-api/internal/database"
	"github.com/incial/workhub-api/internal/http/handler"
	"github.com/incial/workhub-api/internal/http/middleware"
	"github.com/incial/workhub-api/internal/http/router"
	"github.com/incial/workhub-api/internal/jobs"
	"github.com/incial/workhub-api/internal/legacy"
	"github.com/incial/workhub-api/internal/logger"
	"github.com/incial/workhub-api/internal/repository"
	"github.com/incial/workhub-api/internal/service"
	"github.com/incial/workhub-api/internal/storage"
	"go.uber.org/zap"
)

// @title Work Hub API
// @version 1.0
// @description Project pipeline API for lead intake, onboarding, sales, payments and installation tracking
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@incial.io

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name x-api-key
// @description API Key for system operations
// @Security BearerAuth
// @Security ApiKeyAuth

const (
	alertScanTimeout    = 5 * time.Minute
	legacyImportTimeout = 15 * time.Minute
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// Load basic configuration first (for logging setup)
	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", basicCfg.App.Name),
		zap.String("env", basicCfg.App.Environment),
		zap.Int("port", basicCfg.App.Port),
	)

	// Configure Swagger host based on environment
	switch basicCfg.App.Environment {
	case "staging":
		docs.SwaggerInfo.Host = "workhub-api-staging.incial.io"
	case "production":
		docs.SwaggerInfo.Host = "api.workhub.incial.io"
	default:
		docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", basicCfg.App.Port)
	}

	// Load full configuration with secrets
	// In development: uses environment variables
	// In staging/production: fetches from Azure Key Vault
	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	// Connect to database
	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.App.Environment == "development" || cfg.App.Environment == "local" {
		if err := database.AutoMigrate(db); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	// Initialize storage for payment proofs
	fileStorage, err := storage.NewStorage(&cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	log.Info("Storage initialized", zap.String("mode", cfg.Storage.Mode))

	// Initialize legacy CRM connection (optional, read-only import source)
	// The app continues without it if not configured
	var legacyClient *legacy.Client
	if cfg.LegacyCRM.Enabled {
		legacyClient, err = legacy.NewClient(&cfg.LegacyCRM, log)
		if err != nil {
			log.Warn("Legacy CRM connection failed, continuing without it",
				zap.Error(err),
			)
		}
	} else {
		log.Info("Legacy CRM import not configured, skipping")
	}

	// Initialize repositories
	projectRepo := repository.NewProjectRepository(db)
	paymentRepo := repository.NewPaymentTransactionRepository(db)
	historyRepo := repository.NewStageHistoryRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)
	alertRepo := repository.NewAlertRepository(db)
	userRepo := repository.NewUserRepository(db)
	otpRepo := repository.NewOtpRepository(db)
	crmEntryRepo := repository.NewCrmEntryRepository(db)

	// Initialize middleware
	authMiddleware := auth.NewMiddleware(cfg, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	// Initialize services
	projectService := service.NewProjectService(projectRepo, paymentRepo, historyRepo, activityRepo, alertRepo, log, db)
	alertService := service.NewAlertService(projectRepo, alertRepo, &cfg.Alerts, log)
	analyticsService := service.NewAnalyticsService(projectRepo, paymentRepo, log)
	authService := service.NewAuthService(userRepo, otpRepo, authMiddleware.Tokens(), &service.LogOtpSender{Logger: log}, &cfg.Auth, log)
	crmEntryService := service.NewCrmEntryService(crmEntryRepo, legacyClient, log)

	// Initialize handlers
	projectHandler := handler.NewProjectHandler(projectService, log)
	alertHandler := handler.NewAlertHandler(alertService, log)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsService, log)
	authHandler := handler.NewAuthHandler(authService, log)
	crmEntryHandler := handler.NewCrmEntryHandler(crmEntryService, log)
	uploadHandler := handler.NewUploadHandler(projectService, fileStorage, cfg.Storage.MaxUploadSizeMB, log)

	// Setup router
	rt := router.NewRouter(
		cfg,
		log,
		db,
		legacyClient,
		authMiddleware,
		rateLimiter,
		projectHandler,
		alertHandler,
		analyticsHandler,
		authHandler,
		crmEntryHandler,
		uploadHandler,
	)

	// Initialize and start scheduler for background jobs
	scheduler := jobs.NewScheduler(log)
	jobsRegistered := 0

	if cfg.Alerts.Enabled {
		if err := jobs.RegisterAlertJob(scheduler, alertService, log, cfg.Alerts.Schedule, alertScanTimeout, true); err != nil {
			log.Error("Failed to register alert scan job", zap.Error(err))
		} else {
			jobsRegistered++
			log.Info("Alert scan job registered", zap.String("cron_expr", cfg.Alerts.Schedule))
		}
	}

	if legacyClient.IsEnabled() {
		if err := jobs.RegisterLegacyImportJob(scheduler, crmEntryService, log, cfg.LegacyCRM.SyncSchedule, legacyImportTimeout, true); err != nil {
			log.Error("Failed to register legacy CRM import job", zap.Error(err))
		} else {
			jobsRegistered++
			log.Info("Legacy CRM import job registered", zap.String("cron_expr", cfg.LegacyCRM.SyncSchedule))
		}
	}

	if jobsRegistered > 0 {
		scheduler.Start()
		log.Info("Scheduler started", zap.Int("jobs", jobsRegistered))
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	// Start server in goroutine
	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	// Wait for interrupt signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		if jobsRegistered > 0 {
			ctx := scheduler.Stop()
			<-ctx.Done()
			log.Info("Scheduler stopped")
		}

		// Graceful shutdown with timeout
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		if err := legacyClient.Close(); err != nil {
			log.Warn("Error closing legacy CRM connection", zap.Error(err))
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}
