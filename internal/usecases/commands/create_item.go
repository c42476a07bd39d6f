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
	CreateItemCommand struct {
		Name        string
		Description *string
	}

	CreateItemCommandHandler = decorator.CommandHandler[CreateItemCommand, *model.Item]

	createItemCommandHandler struct {
		itemsService ports.ItemsService
	}
)

func NewCreateItemCommandHandler(
	svc ports.ItemsService,
	invalidator decorator.Invalidator,
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) CreateItemCommandHandler {
	return decorator.ApplyCommandDecorators[CreateItemCommand, *model.Item](
		decorator.ApplyInvalidationDecorator[CreateItemCommand, *model.Item](
			createItemCommandHandler{itemsService: svc},
			invalidator,
			func(CreateItemCommand, *model.Item) []string {
				return []string{model.ItemsCollectionKey}
			},
		),
		log,
		metricsClient,
		tracerProvider,
	)
}

func (h createItemCommandHandler) Handle(ctx context.Context, cmd CreateItemCommand) (*model.Item, error) {
	return h.itemsService.CreateItem(ctx, cmd.Name, cmd.Description)
}
