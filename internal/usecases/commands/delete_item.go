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
	DeleteItemCommand struct {
		ID model.ItemID
	}

	DeleteItemCommandHandler = decorator.CommandHandler[DeleteItemCommand, model.ItemID]

	deleteItemCommandHandler struct {
		itemsService ports.ItemsService
	}
)

func NewDeleteItemCommandHandler(
	svc ports.ItemsService,
	invalidator decorator.Invalidator,
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) DeleteItemCommandHandler {
	return decorator.ApplyCommandDecorators[DeleteItemCommand, model.ItemID](
		decorator.ApplyInvalidationDecorator[DeleteItemCommand, model.ItemID](
			deleteItemCommandHandler{itemsService: svc},
			invalidator,
			func(cmd DeleteItemCommand, _ model.ItemID) []string {
				return itemKeys(cmd.ID)
			},
		),
		log,
		metricsClient,
		tracerProvider,
	)
}

func (h deleteItemCommandHandler) Handle(ctx context.Context, cmd DeleteItemCommand) (model.ItemID, error) {
	if err := h.itemsService.DeleteItem(ctx, cmd.ID); err != nil {
		return 0, err
	}

	return cmd.ID, nil
}
