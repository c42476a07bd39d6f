package runtime

import (
	"context"
	"fmt"
	"net/http"
	"slices"

	"github.com/architeacher/items/internal/adapters/repos"
	"github.com/architeacher/items/internal/config"
	"github.com/architeacher/items/internal/infrastructure"
	"github.com/architeacher/items/internal/infrastructure/postgres"
	"github.com/architeacher/items/internal/ports"
	"github.com/architeacher/items/internal/usecases"
	"github.com/architeacher/items/pkg/cacheaside"
	"github.com/architeacher/items/pkg/circuitbreaker"
	"github.com/architeacher/items/pkg/logger"
	"github.com/architeacher/items/pkg/metrics"
	"go.opentelemetry.io/otel/sdk/resource"
	otelTrace "go.opentelemetry.io/otel/trace"
)

type (
	infrastructureDep struct {
		httpServer     *http.Server
		storeConnector *postgres.Connector
		cacheConnector *infrastructure.CacheConnector
		cacheLayer     *cacheaside.Layer
		storeBreaker   *circuitbreaker.CircuitBreaker
		resource       *resource.Resource
		tracerProvider otelTrace.TracerProvider
		metricsClient  metrics.Client
		logger         logger.Logger
	}

	repositories struct {
		itemsRepo *repos.ItemsRepository
	}

	servicesDep struct {
		items  ports.ItemsService
		health ports.HealthService
	}

	applications struct {
		webApp *usecases.WebApplication
	}

	cleanupFunc struct {
		resource string
		fn       func(ctx context.Context) error
	}

	dependencies struct {
		config *config.ServiceConfig

		infra infrastructureDep

		repos repositories

		services servicesDep

		apps applications

		cleanupFuncs []cleanupFunc
	}

	DependencyOption func(*dependencies) error
)

// initializeDependencies applies opts in order. The partially built graph is
// returned together with any error so that already acquired resources can be
// released.
func initializeDependencies(opts ...DependencyOption) (*dependencies, error) {
	deps := &dependencies{}

	for _, opt := range opts {
		if err := opt(deps); err != nil {
			return deps, fmt.Errorf("failed to apply dependency option: %w", err)
		}
	}

	return deps, nil
}

// addCleanup registers fn to run at shutdown. Cleanups run in reverse
// registration order.
func (d *dependencies) addCleanup(resource string, fn func(ctx context.Context) error) {
	d.cleanupFuncs = append(d.cleanupFuncs, cleanupFunc{resource: resource, fn: fn})
}

func (d *dependencies) cleanupOrder() []cleanupFunc {
	ordered := slices.Clone(d.cleanupFuncs)
	slices.Reverse(ordered)

	return ordered
}

// cacheHealthChecker keeps a disabled cache an untyped nil.
func (d *dependencies) cacheHealthChecker() ports.CacheHealthChecker {
	if d.infra.cacheConnector == nil {
		return nil
	}

	return d.infra.cacheConnector
}

