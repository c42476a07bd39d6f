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
	ListItemsQuery struct{}

	ListItemsQueryHandler = decorator.QueryHandler[ListItemsQuery, decorator.Cached[*model.ItemList]]

	listItemsQueryHandler struct {
		itemsService ports.ItemsService
	}
)

func NewListItemsQueryHandler(
	svc ports.ItemsService,
	cache decorator.CacheAside,
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) ListItemsQueryHandler {
	return decorator.ApplyQueryDecorators[ListItemsQuery, decorator.Cached[*model.ItemList]](
		decorator.ApplyCachingDecorator[ListItemsQuery, *model.ItemList](
			listItemsQueryHandler{itemsService: svc},
			cache,
			func(ListItemsQuery) string { return model.ItemsCollectionKey },
			log,
		),
		log,
		metricsClient,
		tracerProvider,
	)
}

func (h listItemsQueryHandler) Execute(ctx context.Context, _ ListItemsQuery) (*model.ItemList, error) {
	return h.itemsService.ListItems(ctx)
}
