package decorator

import (
	"context"
	"fmt"
	"strings"

	"github.com/architeacher/items/pkg/logger"
	"github.com/architeacher/items/pkg/metrics"
	otelTrace "go.opentelemetry.io/otel/trace"
)

type (
	Command any

	CommandHandler[C Command, R any] interface {
		Handle(ctx context.Context, cmd C) (R, error)
	}

	// CommandHandlerFunc lets a plain function serve as a CommandHandler.
	CommandHandlerFunc[C Command, R any] func(ctx context.Context, cmd C) (R, error)
)

func (f CommandHandlerFunc[C, R]) Handle(ctx context.Context, cmd C) (R, error) {
	return f(ctx, cmd)
}

// ApplyCommandDecorators mirrors ApplyQueryDecorators for writes.
func ApplyCommandDecorators[C Command, R any](
	handler CommandHandler[C, R],
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) CommandHandler[C, R] {
	traced := commandTracingDecorator[C, R]{base: handler, tracerProvider: tracerProvider}
	measured := commandMetricsDecorator[C, R]{base: traced, client: metricsClient}

	return commandLoggingDecorator[C, R]{base: measured, logger: log}
}

// generateActionName turns "commands.CreateItemCommand" into "CreateItemCommand".
func generateActionName(action any) string {
	name := fmt.Sprintf("%T", action)
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		return name[idx+1:]
	}

	return name
}
