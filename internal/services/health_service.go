package services

import (
	"context"
	"time"

	"github.com/architeacher/items/internal/domain/model"
	"github.com/architeacher/items/internal/ports"
)

var _ ports.HealthService = (*HealthService)(nil)

// HealthService aggregates dependency state. Only the primary store decides
// health and readiness; the cache is reported but never gates.
type HealthService struct {
	store   ports.StoreHealthChecker
	cache   ports.CacheHealthChecker
	version string
	now     func() time.Time
}

func NewHealthService(store ports.StoreHealthChecker, cache ports.CacheHealthChecker, version string) *HealthService {
	return &HealthService{
		store:   store,
		cache:   cache,
		version: version,
		now:     time.Now,
	}
}

func (s *HealthService) Health(ctx context.Context) *model.HealthReport {
	status := model.HealthStatusUnhealthy
	if s.store.Probe(ctx) {
		status = model.HealthStatusHealthy
	}

	return &model.HealthReport{
		Status:    status,
		Version:   s.version,
		Timestamp: s.now().UTC(),
		Services: map[model.DependencyName]model.ConnectionStatus{
			model.DependencyPrimaryStore: s.store.Status().Summary(),
			model.DependencyCache:        s.cacheStatus(),
		},
	}
}

func (s *HealthService) Readiness(ctx context.Context) *model.ReadinessReport {
	status := model.HealthStatusNotReady
	if s.store.Probe(ctx) {
		status = model.HealthStatusReady
	}

	return &model.ReadinessReport{
		Status:    status,
		Timestamp: s.now().UTC(),
	}
}

func (s *HealthService) Liveness(context.Context) *model.LivenessReport {
	return &model.LivenessReport{
		Status:    model.HealthStatusAlive,
		Timestamp: s.now().UTC(),
	}
}

func (s *HealthService) cacheStatus() model.ConnectionStatus {
	if s.cache == nil {
		return model.ConnectionStatusDisconnected
	}

	return s.cache.Status().Summary()
}
