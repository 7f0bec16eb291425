package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/incial/workhub-api/internal/auth"
	"github.com/incial/workhub-api/internal/config"
	"github.com/incial/workhub-api/internal/database"
	"github.com/incial/workhub-api/internal/domain"
	"github.com/incial/workhub-api/internal/http/handler"
	"github.com/incial/workhub-api/internal/http/middleware"
	"github.com/incial/workhub-api/internal/legacy"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "github.com/incial/workhub-api/docs" // Import generated swagger docs
)

type Router struct {
	cfg              *config.Config
	logger           *zap.Logger
	db               *gorm.DB
	legacyClient     *legacy.Client
	authMiddleware   *auth.Middleware
	rateLimiter      *middleware.RateLimiter
	projectHandler   *handler.ProjectHandler
	alertHandler     *handler.AlertHandler
	analyticsHandler *handler.AnalyticsHandler
	authHandler      *handler.AuthHandler
	crmEntryHandler  *handler.CrmEntryHandler
	uploadHandler    *handler.UploadHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	legacyClient *legacy.Client,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	projectHandler *handler.ProjectHandler,
	alertHandler *handler.AlertHandler,
	analyticsHandler *handler.AnalyticsHandler,
	authHandler *handler.AuthHandler,
	crmEntryHandler *handler.CrmEntryHandler,
	uploadHandler *handler.UploadHandler,
) *Router {
	return &Router{
		cfg:              cfg,
		logger:           logger,
		db:               db,
		legacyClient:     legacyClient,
		authMiddleware:   authMiddleware,
		rateLimiter:      rateLimiter,
		projectHandler:   projectHandler,
		alertHandler:     alertHandler,
		analyticsHandler: analyticsHandler,
		authHandler:      authHandler,
		crmEntryHandler:  crmEntryHandler,
		uploadHandler:    uploadHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.LimitByIP) // Apply IP-based rate limiting globally

	// Health check (basic liveness probe)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Database health check (readiness probe with detailed stats)
	r.Get("/health/db", func(w http.ResponseWriter, r *http.Request) {
		stats, err := database.HealthCheckWithStats(rt.db)
		if err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status":  "unhealthy",
				"error":   err.Error(),
				"service": "database",
			})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "healthy",
			"service": "database",
			"stats": map[string]interface{}{
				"max_open_connections": stats.MaxOpenConnections,
				"open_connections":     stats.OpenConnections,
				"in_use":               stats.InUse,
				"idle":                 stats.Idle,
				"wait_count":           stats.WaitCount,
				"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
				"max_idle_closed":      stats.MaxIdleClosed,
				"max_lifetime_closed":  stats.MaxLifetimeClosed,
			},
		})
	})

	// Combined readiness check (checks all dependencies)
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		checks := make(map[string]interface{})
		allHealthy := true

		// Check database
		if err := database.HealthCheck(rt.db); err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			checks["database"] = map[string]interface{}{
				"status": "unhealthy",
				"error":  err.Error(),
			}
			allHealthy = false
		} else {
			checks["database"] = map[string]interface{}{
				"status": "healthy",
			}
		}

		// Check legacy CRM source. An unhealthy import source degrades the
		// readiness payload but does not fail it, the API works without it.
		checks["legacy_crm"] = rt.legacyClient.HealthCheck(r.Context())

		w.Header().Set("Content-Type", "application/json")
		if allHealthy {
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status": "healthy",
				"checks": checks,
			})
		} else {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status": "unhealthy",
				"checks": checks,
			})
		}
	})

	// Swagger documentation
	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public routes (no auth required)
		r.Post("/auth/otp/request", rt.authHandler.RequestOtp)
		r.Post("/auth/otp/verify", rt.authHandler.VerifyOtp)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(rt.authMiddleware.Authenticate)

			// Auth
			r.Get("/auth/me", rt.authHandler.Me)
			r.Get("/auth/landing", rt.authHandler.Landing)

			// Users (admin only)
			r.Route("/users", func(r chi.Router) {
				r.Use(rt.authMiddleware.RequireRole())
				r.Get("/", rt.authHandler.ListUsers)
				r.Post("/", rt.authHandler.CreateUser)
				r.Get("/{id}", rt.authHandler.GetUser)
				r.Put("/{id}", rt.authHandler.UpdateUser)
				r.Delete("/{id}", rt.authHandler.DeleteUser)
			})

			// Projects. Reads are open to every operational role; clients
			// and unknown roles are rejected at the group gate.
			r.Route("/projects", func(r chi.Router) {
				r.Use(rt.authMiddleware.RequireRole(
					domain.RoleExecutive,
					domain.RoleSalesCoordinator,
					domain.RoleAccounts,
					domain.RoleInstallation,
					domain.RoleEmployee,
				))

				r.Get("/", rt.projectHandler.List)
				r.Get("/my-work", rt.projectHandler.MyWork)
				r.Get("/search", rt.projectHandler.Search)
				r.With(rt.authMiddleware.RequireRole(domain.RoleExecutive)).
					Post("/", rt.projectHandler.Create)
				r.Get("/{id}", rt.projectHandler.GetByID)
				r.With(rt.authMiddleware.RequireRole(domain.RoleExecutive)).
					Put("/{id}", rt.projectHandler.Update)
				r.With(rt.authMiddleware.RequireRole(domain.RoleExecutive)).
					Delete("/{id}", rt.projectHandler.Delete)

				// Stage machine
				r.With(rt.authMiddleware.RequireRole(
					domain.RoleExecutive,
					domain.RoleSalesCoordinator,
					domain.RoleAccounts,
					domain.RoleInstallation,
				)).Post("/{id}/transition", rt.projectHandler.Transition)

				// Stage-scoped data updates
				r.With(rt.authMiddleware.RequireRole(domain.RoleSalesCoordinator)).
					Put("/{id}/sales", rt.projectHandler.UpdateSalesData)
				r.With(rt.authMiddleware.RequireRole(domain.RoleAccounts)).
					Put("/{id}/accounts", rt.projectHandler.UpdateAccountsData)
				r.With(rt.authMiddleware.RequireRole(domain.RoleInstallation)).
					Put("/{id}/installation", rt.projectHandler.UpdateInstallationData)

				// Audit trails
				r.Get("/{id}/history", rt.projectHandler.GetStageHistory)
				r.Get("/{id}/activity", rt.projectHandler.GetActivity)
				r.Get("/{id}/payments", rt.projectHandler.GetPayments)

				// Payment proofs
				r.With(rt.authMiddleware.RequireRole(domain.RoleAccounts)).
					Post("/{id}/payment-proof", rt.uploadHandler.UploadPaymentProof)
				r.With(rt.authMiddleware.RequireRole(domain.RoleAccounts)).
					Get("/{id}/payment-proof", rt.uploadHandler.DownloadPaymentProof)
			})

			// Alerts (admin only)
			r.Route("/alerts", func(r chi.Router) {
				r.Use(rt.authMiddleware.RequireRole())
				r.Get("/", rt.alertHandler.List)
				r.Get("/summary", rt.alertHandler.Summary)
				r.Post("/{id}/dismiss", rt.alertHandler.Dismiss)
				r.Post("/generate", rt.alertHandler.Generate)
			})

			// Analytics (super admin only)
			r.With(rt.authMiddleware.RequireSuperAdmin).
				Get("/analytics/dashboard", rt.analyticsHandler.Dashboard)

			// Imported CRM contacts
			r.Route("/crm-entries", func(r chi.Router) {
				r.Use(rt.authMiddleware.RequireRole(domain.RoleExecutive))
				r.Get("/", rt.crmEntryHandler.List)
				r.Get("/{id}", rt.crmEntryHandler.GetByID)
				r.With(rt.authMiddleware.RequireRole()).
					Post("/import", rt.crmEntryHandler.TriggerImport)
			})
		})
	})

	return r
}
