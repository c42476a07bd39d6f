package http

import (
	"fmt"
	"net/http"

	"github.com/architeacher/items/internal/adapters/inbound/http/handlers"
	"github.com/architeacher/items/internal/adapters/inbound/http/middleware"
	"github.com/architeacher/items/internal/config"
	"github.com/architeacher/items/internal/usecases"
	"github.com/architeacher/items/pkg/logger"
	"github.com/architeacher/items/pkg/metrics"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/throttled/throttled/v2"
	"github.com/throttled/throttled/v2/store/memstore"
	otelTrace "go.opentelemetry.io/otel/trace"
)

type RouterConfig struct {
	App            *usecases.WebApplication
	Logger         logger.Logger
	MetricsClient  metrics.Client
	TracerProvider otelTrace.TracerProvider
	Config         *config.ServiceConfig

	// RateLimitStore overrides the in-memory GCRA store.
	RateLimitStore throttled.GCRAStoreCtx
}

func NewRouter(cfg RouterConfig) (http.Handler, error) {
	router := chi.NewRouter()
	log := cfg.Logger.Component("http")

	router.Use(middleware.RequestTracking())
	router.Use(chimiddleware.RealIP)

	if cfg.Config.Telemetry.Traces.Enabled && cfg.TracerProvider != nil {
		router.Use(middleware.Tracer(cfg.Config.App.ServiceName, cfg.TracerProvider))
		log.Info().Msg("distributed tracing enabled")
	}

	if cfg.Config.Telemetry.Metrics.Enabled && cfg.MetricsClient != nil {
		router.Use(middleware.NewMetricsMiddleware(cfg.MetricsClient).Middleware)
		log.Info().Msg("HTTP metrics collection enabled")
	}

	if cfg.Config.Logging.AccessLog.Enabled {
		router.Use(middleware.NewHealthCheckFilter(cfg.Config.Logging.AccessLog.LogHealthChecks).Middleware)
		router.Use(middleware.AccessLogger(log, cfg.Config.Logging.AccessLog.IncludeQueryParams))
	}

	router.Use(middleware.Recovery(log))

	if cfg.Config.HTTPServer.RequestTimeout > 0 {
		router.Use(chimiddleware.Timeout(cfg.Config.HTTPServer.RequestTimeout))
	}

	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CORS([]string{"*"}))

	if cfg.Config.RateLimiting.Enabled {
		rateLimiter, err := newRateLimiter(cfg, log)
		if err != nil {
			return nil, err
		}

		router.Use(rateLimiter)
	}

	router.Use(middleware.Compression(cfg.Config.Compression, log))

	router.NotFound(handlers.NotFound)
	router.MethodNotAllowed(handlers.MethodNotAllowed)

	health := handlers.NewHealthHandler(cfg.App)
	router.Get("/health", health.HealthCheck)
	router.Get("/ready", health.ReadinessCheck)
	router.Get("/live", health.LivenessCheck)

	items := handlers.NewItemsHandler(cfg.App, log, cfg.Config.HTTPServer.MaxBodyBytes)
	router.Route(handlers.ItemsPath, func(r chi.Router) {
		r.Get("/", items.ListItems)
		r.Post("/", items.CreateItem)
		r.Get("/{id}", items.GetItem)
		r.Put("/{id}", items.UpdateItem)
		r.Delete("/{id}", items.DeleteItem)
	})

	if cfg.Config.Telemetry.Metrics.Enabled && cfg.MetricsClient != nil {
		router.Method(http.MethodGet, cfg.Config.Telemetry.Metrics.Path, cfg.MetricsClient.Handler())
	}

	return router, nil
}

func newRateLimiter(cfg RouterConfig, log logger.Logger) (func(http.Handler) http.Handler, error) {
	store := cfg.RateLimitStore
	if store == nil {
		memStore, err := memstore.NewCtx(int(cfg.Config.RateLimiting.MaxKeys))
		if err != nil {
			return nil, fmt.Errorf("creating rate limit store: %w", err)
		}

		store = memStore
	}

	return middleware.RateLimiting(cfg.Config.RateLimiting, store, log)
}
