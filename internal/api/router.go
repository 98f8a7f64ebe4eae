package api

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/openhrms/tenantcore/internal/api/handlers"
	mw "github.com/openhrms/tenantcore/internal/api/middleware"
	"github.com/openhrms/tenantcore/internal/buildconfig"
	"github.com/openhrms/tenantcore/internal/config"
	"github.com/openhrms/tenantcore/internal/service"
	"github.com/openhrms/tenantcore/internal/store"
	"go.uber.org/zap"
)

// App holds the router and runtime counters.
type App struct {
	Router       *chi.Mux
	startTime    time.Time
	requestCount atomic.Int64
	errorCount   atomic.Int64
}

func NewApp(db *pgxpool.Pool, logger *zap.Logger) *App {
	// Stores
	tenantStore := store.NewTenantStore(db)
	provisioner := store.NewProvisionStore(db, logger)

	// Services
	catalog := service.NewCatalogService()
	tenantSvc := service.NewTenantService(tenantStore, provisioner, catalog, logger)
	quotaSvc := service.NewQuotaService(catalog)
	resolverSvc := service.NewResolverService(tenantStore)

	// Handlers
	tenantHandler := handlers.NewTenantHandler(tenantSvc)
	planHandler := handlers.NewPlanHandler(catalog)
	quotaHandler := handlers.NewQuotaHandler(tenantSvc, quotaSvc)
	meHandler := handlers.NewMeHandler()

	r := chi.NewRouter()

	app := &App{
		Router:    r,
		startTime: time.Now(),
	}

	metricsCollector := mw.NewMetricsCollector(&app.requestCount, &app.errorCount)

	// Global middleware (order matters)
	r.Use(mw.RequestID)
	r.Use(middleware.RealIP)
	r.Use(metricsCollector.Middleware)
	r.Use(mw.Logging(logger))
	r.Use(middleware.Recoverer)
	r.Use(mw.RateLimit(config.RateLimitRPS(), config.RateLimitBurst()))

	// Health (no tenant scope)
	r.Get("/health", healthHandler(db))

	// Runtime metrics
	r.Get("/metrics", app.metricsHandler())

	// Administrative surface: tenant and plan management for platform
	// operators. Not tenant-scoped, so no resolver here.
	r.Route("/v1", func(r chi.Router) {
		r.Route("/tenants", func(r chi.Router) {
			r.Post("/", tenantHandler.Create)
			r.Get("/", tenantHandler.List)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", tenantHandler.GetByID)
				r.Delete("/", tenantHandler.Delete)
				r.Get("/usage", tenantHandler.Usage)
				r.Post("/usage", tenantHandler.UpdateUsage)
				r.Post("/plan", tenantHandler.ChangePlan)
				r.Get("/plan/history", tenantHandler.PlanChanges)
				r.Post("/suspend", tenantHandler.Suspend)
				r.Post("/activate", tenantHandler.Activate)
				r.Post("/cancel", tenantHandler.Cancel)
				r.Get("/quota", quotaHandler.Check)
				r.Get("/modules", quotaHandler.CheckModule)
			})
		})

		r.Route("/plans", func(r chi.Router) {
			r.Get("/", planHandler.List)
			r.Get("/{type}", planHandler.GetByType)
		})

		// Tenant-scoped surface: resolved once per request from the
		// X-Tenant-ID header or the request host.
		r.Route("/me", func(r chi.Router) {
			r.Use(mw.ResolveTenant(resolverSvc))
			r.Get("/", meHandler.Get)
			r.Get("/modules", meHandler.Modules)
		})
	})

	return app
}

// NewRouter returns just the chi.Mux.
func NewRouter(db *pgxpool.Pool, logger *zap.Logger) *chi.Mux {
	return NewApp(db, logger).Router
}

func healthHandler(db *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(r.Context()); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "error", "error": err.Error()})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}

func (app *App) metricsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)

		uptime := time.Since(app.startTime)

		response := map[string]any{
			"version":        buildconfig.VersionInfo(),
			"uptime_seconds": uptime.Seconds(),
			"uptime_human":   uptime.Round(time.Second).String(),
			"request_count":  app.requestCount.Load(),
			"error_count":    app.errorCount.Load(),
			"goroutines":     runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb":       float64(memStats.Alloc) / 1024 / 1024,
				"total_alloc_mb": float64(memStats.TotalAlloc) / 1024 / 1024,
				"sys_mb":         float64(memStats.Sys) / 1024 / 1024,
				"num_gc":         memStats.NumGC,
			},
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}
