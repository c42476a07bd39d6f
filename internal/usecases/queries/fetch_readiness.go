package queries

import (
	"context"

	"github.com/architeacher/items/internal/domain/model"
	"github.com/architeacher/items/internal/ports"
	"github.com/architeacher/items/pkg/decorator"
	"github.com/architeacher/items/pkg/logger"
	"github.com/architeacher/items/pkg/metrics"
	otelTrace "go.opentelemetry.io/otel/trace"
)

type (
	FetchReadinessReportQuery struct{}

	FetchReadinessReportQueryHandler = decorator.QueryHandler[FetchReadinessReportQuery, *model.ReadinessReport]

	fetchReadinessReportQueryHandler struct {
		healthService ports.HealthService
	}
)

func NewFetchReadinessReportQueryHandler(
	healthService ports.HealthService,
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) FetchReadinessReportQueryHandler {
	return decorator.ApplyQueryDecorators[FetchReadinessReportQuery, *model.ReadinessReport](
		fetchReadinessReportQueryHandler{healthService: healthService},
		log,
		metricsClient,
		tracerProvider,
	)
}

func (h fetchReadinessReportQueryHandler) Execute(ctx context.Context, _ FetchReadinessReportQuery) (*model.ReadinessReport, error) {
	return h.healthService.Readiness(ctx), nil
}
