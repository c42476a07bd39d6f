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
	FetchLivenessReportQuery struct{}

	FetchLivenessReportQueryHandler = decorator.QueryHandler[FetchLivenessReportQuery, *model.LivenessReport]

	fetchLivenessReportQueryHandler struct {
		healthService ports.HealthService
	}
)

func NewFetchLivenessReportQueryHandler(
	healthService ports.HealthService,
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) FetchLivenessReportQueryHandler {
	return decorator.ApplyQueryDecorators[FetchLivenessReportQuery, *model.LivenessReport](
		fetchLivenessReportQueryHandler{healthService: healthService},
		log,
		metricsClient,
		tracerProvider,
	)
}

func (h fetchLivenessReportQueryHandler) Execute(ctx context.Context, _ FetchLivenessReportQuery) (*model.LivenessReport, error) {
	return h.healthService.Liveness(ctx), nil
}
