package commands

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
	UpdateItemCommand struct {
		ID          model.ItemID
		Name        string
		Description *string
	}

	UpdateItemCommandHandler = decorator.CommandHandler[UpdateItemCommand, *model.Item]

	updateItemCommandHandler struct {
		itemsService ports.ItemsService
	}
)

func NewUpdateItemCommandHandler(
	svc ports.ItemsService,
	invalidator decorator.Invalidator,
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) UpdateItemCommandHandler {
	return decorator.ApplyCommandDecorators[UpdateItemCommand, *model.Item](
		decorator.ApplyInvalidationDecorator[UpdateItemCommand, *model.Item](
			updateItemCommandHandler{itemsService: svc},
			invalidator,
			func(cmd UpdateItemCommand, _ *model.Item) []string {
				return itemKeys(cmd.ID)
			},
		),
		log,
		metricsClient,
		tracerProvider,
	)
}

func (h updateItemCommandHandler) Handle(ctx context.Context, cmd UpdateItemCommand) (*model.Item, error) {
	return h.itemsService.UpdateItem(ctx, cmd.ID, cmd.Name, cmd.Description)
}

// itemKeys lists the entries that may hold a copy of the item, the item
// itself first.
func itemKeys(id model.ItemID) []string {
	return []string{model.ItemCacheKey(id), model.ItemsCollectionKey}
}
