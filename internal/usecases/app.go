package usecases

import (
	"github.com/architeacher/items/internal/ports"
	"github.com/architeacher/items/internal/usecases/commands"
	"github.com/architeacher/items/internal/usecases/queries"
	"github.com/architeacher/items/pkg/cacheaside"
	"github.com/architeacher/items/pkg/decorator"
	"github.com/architeacher/items/pkg/logger"
	"github.com/architeacher/items/pkg/metrics"
	otelTrace "go.opentelemetry.io/otel/trace"
)

type (
	Commands struct {
		CreateItem commands.CreateItemCommandHandler
		UpdateItem commands.UpdateItemCommandHandler
		DeleteItem commands.DeleteItemCommandHandler
	}

	Queries struct {
		GetItem              queries.GetItemQueryHandler
		ListItems            queries.ListItemsQueryHandler
		FetchLivenessReport  queries.FetchLivenessReportQueryHandler
		FetchReadinessReport queries.FetchReadinessReportQueryHandler
		FetchHealthReport    queries.FetchHealthReportQueryHandler
	}

	WebApplication struct {
		Commands Commands
		Queries  Queries
	}
)

// NewWebApplication wires the use cases. A nil layer disables caching; reads
// then always go to the items service.
func NewWebApplication(
	itemsSvc ports.ItemsService,
	healthSvc ports.HealthService,
	layer *cacheaside.Layer,
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) *WebApplication {
	var (
		cache       decorator.CacheAside
		invalidator decorator.Invalidator
	)

	if layer != nil {
		cache = layer
		invalidator = layer
	}

	return &WebApplication{
		Commands: Commands{
			CreateItem: commands.NewCreateItemCommandHandler(itemsSvc, invalidator, log, metricsClient, tracerProvider),
			UpdateItem: commands.NewUpdateItemCommandHandler(itemsSvc, invalidator, log, metricsClient, tracerProvider),
			DeleteItem: commands.NewDeleteItemCommandHandler(itemsSvc, invalidator, log, metricsClient, tracerProvider),
		},
		Queries: Queries{
			GetItem:              queries.NewGetItemQueryHandler(itemsSvc, cache, log, metricsClient, tracerProvider),
			ListItems:            queries.NewListItemsQueryHandler(itemsSvc, cache, log, metricsClient, tracerProvider),
			FetchLivenessReport:  queries.NewFetchLivenessReportQueryHandler(healthSvc, log, metricsClient, tracerProvider),
			FetchReadinessReport: queries.NewFetchReadinessReportQueryHandler(healthSvc, log, metricsClient, tracerProvider),
			FetchHealthReport:    queries.NewFetchHealthReportQueryHandler(healthSvc, log, metricsClient, tracerProvider),
		},
	}
}
