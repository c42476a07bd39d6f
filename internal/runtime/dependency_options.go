package runtime

import (
	"context"
	"fmt"
	"net/http"

	inboundhttp "github.com/architeacher/items/internal/adapters/inbound/http"
	"github.com/architeacher/items/internal/adapters/repos"
	"github.com/architeacher/items/internal/config"
	"github.com/architeacher/items/internal/domain/model"
	"github.com/architeacher/items/internal/infrastructure"
	"github.com/architeacher/items/internal/infrastructure/postgres"
	"github.com/architeacher/items/internal/services"
	"github.com/architeacher/items/internal/usecases"
	"github.com/architeacher/items/pkg/cacheaside"
	"github.com/architeacher/items/pkg/circuitbreaker"
	"github.com/architeacher/items/pkg/logger"
	"github.com/architeacher/items/pkg/metrics/noop"
	"github.com/architeacher/items/pkg/metrics/otelmetrics"
)

const storeBreakerName = "primary-store"

func defaultOptions(ctx context.Context) []DependencyOption {
	return []DependencyOption{
		WithConfig(),
		WithLogger(),
		WithTelemetry(ctx),
		WithMetrics(),
		WithPrimaryStore(ctx),
		WithItemsRepository(),
		WithSchema(ctx),
		WithCache(),
		WithStoreBreaker(),
		WithServices(),
		WithApplication(),
		WithHTTPServer(),
	}
}

func WithConfig() DependencyOption {
	return func(d *dependencies) error {
		cfg, err := config.Init()
		if err != nil {
			return fmt.Errorf("initializing configuration: %w", err)
		}

		d.config = cfg

		return nil
	}
}

// WithStaticConfig uses cfg as is, skipping the environment.
func WithStaticConfig(cfg *config.ServiceConfig) DependencyOption {
	return func(d *dependencies) error {
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid service configuration: %w", err)
		}

		d.config = cfg

		return nil
	}
}

func WithLogger() DependencyOption {
	return func(d *dependencies) error {
		base := logger.New(d.config.Logging.Level, d.config.Logging.Format)

		d.infra.logger = logger.Logger{
			Logger: base.With().
				Str("service", d.config.App.ServiceName).
				Str("version", d.config.App.ServiceVersion).
				Logger(),
		}

		return nil
	}
}

func WithTelemetry(ctx context.Context) DependencyOption {
	return func(d *dependencies) error {
		res, err := infrastructure.NewResource(ctx, d.config.App)
		if err != nil {
			return fmt.Errorf("creating telemetry resource: %w", err)
		}

		d.infra.resource = res

		if !d.config.Telemetry.Traces.Enabled {
			d.infra.tracerProvider = infrastructure.NewNoopTracerProvider()

			return nil
		}

		tp, shutdown, err := infrastructure.NewTracerProvider(ctx, res, d.config.Telemetry)
		if err != nil {
			return fmt.Errorf("initializing tracer: %w", err)
		}

		d.infra.tracerProvider = tp
		d.addCleanup("tracer", shutdown)

		return nil
	}
}

func WithMetrics() DependencyOption {
	return func(d *dependencies) error {
		if !d.config.Telemetry.Metrics.Enabled {
			d.infra.metricsClient = noop.NewMetricsClient()

			return nil
		}

		client := otelmetrics.New(d.infra.resource, metricDescriptors, d.infra.logger)

		d.infra.metricsClient = client
		d.addCleanup("metrics", client.Shutdown)

		return nil
	}
}

// WithPrimaryStore connects to the primary store. Running out of attempts
// fails startup.
func WithPrimaryStore(ctx context.Context, opts ...postgres.ConnectorOption) DependencyOption {
	return func(d *dependencies) error {
		connector := postgres.NewConnector(d.config.Database, d.infra.logger, opts...)

		d.infra.storeConnector = connector
		d.addCleanup("primary store", func(context.Context) error {
			connector.Close()

			return nil
		})

		if _, err := connector.Connect(ctx); err != nil {
			return fmt.Errorf("connecting to primary store: %w", err)
		}

		return nil
	}
}

func WithItemsRepository() DependencyOption {
	return func(d *dependencies) error {
		connector := d.infra.storeConnector

		d.repos.itemsRepo = repos.NewItemsRepository(
			func() repos.PoolOps {
				pool := connector.Pool()
				if pool == nil {
					return nil
				}

				return pool
			},
			repos.NewPgxScanner(),
			d.infra.logger.Component("items-repository"),
		)

		return nil
	}
}

func WithSchema(ctx context.Context) DependencyOption {
	return func(d *dependencies) error {
		if !d.config.Database.EnsureSchema {
			return nil
		}

		if err := d.repos.itemsRepo.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("ensuring schema: %w", err)
		}

		return nil
	}
}

// WithCache starts the cache connector in the background. Startup never
// waits for the cache.
func WithCache() DependencyOption {
	return func(d *dependencies) error {
		cfg := d.config.Cache
		if !cfg.Enabled {
			d.infra.logger.Info().Msg("cache disabled")

			return nil
		}

		connector := infrastructure.NewCacheConnector(cfg, d.infra.logger)
		layer := cacheaside.New(connector, cacheaside.Config{
			TTL:          cfg.TTL,
			StoreTimeout: cfg.StoreTimeout,
			KeyPrefix:    cfg.KeyPrefix,
		}, d.infra.logger, d.infra.metricsClient)

		connector.Subscribe(func(_ model.DependencyName, _, to model.ConnectionStatus) {
			if to != model.ConnectionStatusConnected {
				return
			}

			replayCtx, cancel := context.WithTimeout(context.Background(), cfg.WriteTimeout)
			defer cancel()

			layer.Replay(replayCtx)
		})

		d.infra.cacheConnector = connector
		d.infra.cacheLayer = layer

		d.addCleanup("cache", connector.Close)
		d.addCleanup("cache stores", func(ctx context.Context) error {
			return waitContext(ctx, layer.Wait)
		})

		connector.Start()

		return nil
	}
}

func WithStoreBreaker() DependencyOption {
	return func(d *dependencies) error {
		cfg := d.config.CircuitBreaker
		log := d.infra.logger

		d.infra.storeBreaker = circuitbreaker.New(circuitbreaker.Config{
			Name:             storeBreakerName,
			Enabled:          cfg.Enabled,
			MaxRequests:      cfg.MaxRequests,
			Interval:         cfg.Interval,
			Timeout:          cfg.Timeout,
			FailureThreshold: cfg.FailureThreshold,
			IsSuccessful: func(err error) bool {
				return !services.IsStoreFailure(err)
			},
			OnStateChange: func(name string, from, to circuitbreaker.State) {
				log.Warn().
					Str("breaker", name).
					Str("from", string(from)).
					Str("to", string(to)).
					Msg("circuit breaker state changed")
			},
		})

		return nil
	}
}

func WithServices() DependencyOption {
	return func(d *dependencies) error {
		d.services.items = services.NewItemsService(d.repos.itemsRepo, d.infra.storeBreaker)
		d.services.health = services.NewHealthService(
			d.infra.storeConnector,
			d.cacheHealthChecker(),
			d.config.App.ServiceVersion,
		)

		return nil
	}
}

func WithApplication() DependencyOption {
	return func(d *dependencies) error {
		d.apps.webApp = usecases.NewWebApplication(
			d.services.items,
			d.services.health,
			d.infra.cacheLayer,
			d.infra.logger,
			d.infra.metricsClient,
			d.infra.tracerProvider,
		)

		return nil
	}
}

func WithHTTPServer() DependencyOption {
	return func(d *dependencies) error {
		router, err := inboundhttp.NewRouter(inboundhttp.RouterConfig{
			App:            d.apps.webApp,
			Logger:         d.infra.logger,
			MetricsClient:  d.infra.metricsClient,
			TracerProvider: d.infra.tracerProvider,
			Config:         d.config,
		})
		if err != nil {
			return fmt.Errorf("creating router: %w", err)
		}

		cfg := d.config.HTTPServer
		server := &http.Server{
			Addr:              cfg.Address(),
			Handler:           router,
			ReadTimeout:       cfg.ReadTimeout,
			ReadHeaderTimeout: cfg.ReadHeaderTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       cfg.IdleTimeout,
		}

		d.infra.httpServer = server
		d.addCleanup("http server", server.Shutdown)

		return nil
	}
}

// waitContext runs wait and gives up when ctx is done first.
func waitContext(ctx context.Context, wait func()) error {
	done := make(chan struct{})

	go func() {
		wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting: %w", ctx.Err())
	}
}
