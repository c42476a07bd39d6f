package ports

import (
	"context"

	"github.com/architeacher/items/internal/domain/model"
)

type (
	// StoreHealthChecker probes the primary store on demand.
	StoreHealthChecker interface {
		Probe(ctx context.Context) bool
		Status() model.ConnectionStatus
	}

	// CacheHealthChecker reports the last known cache connection state. It
	// performs no I/O.
	CacheHealthChecker interface {
		IsConnected() bool
		Status() model.ConnectionStatus
	}

	HealthService interface {
		Health(ctx context.Context) *model.HealthReport
		Readiness(ctx context.Context) *model.ReadinessReport
		Liveness(ctx context.Context) *model.LivenessReport
	}
)
