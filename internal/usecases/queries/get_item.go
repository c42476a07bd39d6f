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
	GetItemQuery struct {
		ID model.ItemID
	}

	GetItemQueryHandler = decorator.QueryHandler[GetItemQuery, decorator.Cached[*model.Item]]

	getItemQueryHandler struct {
		itemsService ports.ItemsService
	}
)

func NewGetItemQueryHandler(
	svc ports.ItemsService,
	cache decorator.CacheAside,
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) GetItemQueryHandler {
	return decorator.ApplyQueryDecorators[GetItemQuery, decorator.Cached[*model.Item]](
		decorator.ApplyCachingDecorator[GetItemQuery, *model.Item](
			getItemQueryHandler{itemsService: svc},
			cache,
			func(query GetItemQuery) string { return model.ItemCacheKey(query.ID) },
			log,
		),
		log,
		metricsClient,
		tracerProvider,
	)
}

func (h getItemQueryHandler) Execute(ctx context.Context, query GetItemQuery) (*model.Item, error) {
	return h.itemsService.GetItem(ctx, query.ID)
}
