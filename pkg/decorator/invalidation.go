package decorator

import "context"

type (
	Invalidator interface {
		Invalidate(ctx context.Context, keys ...string)
	}

	commandInvalidationDecorator[C Command, R any] struct {
		base        CommandHandler[C, R]
		invalidator Invalidator
		keysFn      func(C, R) []string
	}
)

// ApplyInvalidationDecorator drops the cache keys affected by a command once
// the command has succeeded. Keys are invalidated in the order keysFn returns
// them and the call blocks until every key was processed.
func ApplyInvalidationDecorator[C Command, R any](
	handler CommandHandler[C, R],
	invalidator Invalidator,
	keysFn func(C, R) []string,
) CommandHandler[C, R] {
	return commandInvalidationDecorator[C, R]{
		base:        handler,
		invalidator: invalidator,
		keysFn:      keysFn,
	}
}

func (d commandInvalidationDecorator[C, R]) Handle(ctx context.Context, cmd C) (R, error) {
	result, err := d.base.Handle(ctx, cmd)
	if err != nil {
		return result, err
	}

	if d.invalidator != nil {
		d.invalidator.Invalidate(ctx, d.keysFn(cmd, result)...)
	}

	return result, nil
}
