package decorator

import (
	"context"
	"encoding/json"

	"github.com/architeacher/items/pkg/cacheaside"
	"github.com/architeacher/items/pkg/logger"
)

type (
	// Cached carries a query result together with where it came from.
	Cached[R any] struct {
		Value R
		Hit   bool
	}

	CacheAside interface {
		Begin(key string) cacheaside.Ticket
		Lookup(ctx context.Context, key string) ([]byte, bool)
		StoreAsync(ticket cacheaside.Ticket, value []byte)
	}

	queryCachingDecorator[Q Query, R Result] struct {
		base   QueryHandler[Q, R]
		cache  CacheAside
		keyFn  func(Q) string
		logger logger.Logger
	}
)

// ApplyCachingDecorator serves query results from cache when present and
// stores fresh results in the background otherwise. A nil cache turns the
// decorator into a pass-through that always reports a miss.
func ApplyCachingDecorator[Q Query, R Result](
	handler QueryHandler[Q, R],
	cache CacheAside,
	keyFn func(Q) string,
	log logger.Logger,
) QueryHandler[Q, Cached[R]] {
	return queryCachingDecorator[Q, R]{
		base:   handler,
		cache:  cache,
		keyFn:  keyFn,
		logger: log,
	}
}

func (d queryCachingDecorator[Q, R]) Execute(ctx context.Context, query Q) (Cached[R], error) {
	if d.cache == nil {
		result, err := d.base.Execute(ctx, query)

		return Cached[R]{Value: result}, err
	}

	key := d.keyFn(query)
	ticket := d.cache.Begin(key)

	if raw, found := d.cache.Lookup(ctx, key); found {
		var value R

		err := json.Unmarshal(raw, &value)
		if err == nil {
			return Cached[R]{Value: value, Hit: true}, nil
		}

		d.logger.WithContext(ctx).Warn().Err(err).Str("key", key).Msg("ignoring undecodable cache entry")
	}

	result, err := d.base.Execute(ctx, query)
	if err != nil {
		return Cached[R]{}, err
	}

	payload, err := json.Marshal(result)
	if err != nil {
		d.logger.WithContext(ctx).Warn().Err(err).Str("key", key).Msg("unable to encode cache entry")

		return Cached[R]{Value: result}, nil
	}

	d.cache.StoreAsync(ticket, payload)

	return Cached[R]{Value: result}, nil
}
