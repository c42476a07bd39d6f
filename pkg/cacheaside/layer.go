// Package cacheaside implements a read-through cache in front of a slower
// source of truth. Reads consult the cache first and populate it
// asynchronously on a miss; writers invalidate affected keys synchronously.
//
// All cache failures degrade to a miss or a no-op. The layer never returns
// an error to its callers.
package cacheaside

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/architeacher/items/pkg/logger"
	"github.com/architeacher/items/pkg/metrics"
	"github.com/cespare/xxhash/v2"
	"go.opentelemetry.io/otel/attribute"
)

const (
	stripeCount = 64

	DefaultTTL          = 300 * time.Second
	DefaultStoreTimeout = 3 * time.Second

	maxPendingInvalidations = 4096

	metricHits        = "cache_aside.hits"
	metricMisses      = "cache_aside.misses"
	metricStores      = "cache_aside.stores"
	metricStaleStores = "cache_aside.stale_stores"
	metricInvalidated = "cache_aside.invalidations"
)

type (
	// Store is the key/value backend. Implementations must be total: a
	// failure is reported through the boolean result, never a panic.
	Store interface {
		Get(ctx context.Context, key string) ([]byte, bool)
		Set(ctx context.Context, key string, value []byte, ttl time.Duration) bool
		Delete(ctx context.Context, keys ...string) bool
	}

	Config struct {
		TTL          time.Duration
		StoreTimeout time.Duration
		KeyPrefix    string
	}

	// Ticket records the invalidation epoch observed before a read started.
	Ticket struct {
		key   string
		epoch uint64
	}

	Layer struct {
		store   Store
		config  Config
		logger  logger.Logger
		metrics metrics.Client

		stripes [stripeCount]stripe
		pending sync.WaitGroup

		failedMu   sync.Mutex
		failedKeys map[string]struct{}
	}

	stripe struct {
		mu    sync.Mutex
		epoch atomic.Uint64
	}
)

func New(store Store, cfg Config, log logger.Logger, metricsClient metrics.Client) *Layer {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}

	if cfg.StoreTimeout <= 0 {
		cfg.StoreTimeout = DefaultStoreTimeout
	}

	return &Layer{
		store:      store,
		config:     cfg,
		logger:     log,
		metrics:    metricsClient,
		failedKeys: make(map[string]struct{}),
	}
}

// Begin captures the invalidation epoch for key. It must be called before the
// source of truth is read so that a concurrent invalidation can be detected.
func (l *Layer) Begin(key string) Ticket {
	if l == nil {
		return Ticket{key: key}
	}

	return Ticket{key: key, epoch: l.stripeFor(key).epoch.Load()}
}

// Lookup returns the stored value for key. The entry TTL is left untouched.
// A key whose invalidation is still pending is reported as a miss until the
// delete goes through.
func (l *Layer) Lookup(ctx context.Context, key string) ([]byte, bool) {
	if l == nil {
		return nil, false
	}

	if l.isPending(key) {
		l.retryInvalidation(ctx, key)
		l.inc(ctx, metricMisses, key)

		return nil, false
	}

	value, ok := l.store.Get(ctx, l.namespaced(key))
	if ok {
		l.inc(ctx, metricHits, key)

		return value, true
	}

	l.inc(ctx, metricMisses, key)

	return nil, false
}

// StoreAsync writes value under the ticket's key in the background. The write
// is dropped when the key was invalidated after the ticket was taken.
func (l *Layer) StoreAsync(ticket Ticket, value []byte) {
	if l == nil {
		return
	}

	l.pending.Add(1)

	go func() {
		defer l.pending.Done()

		ctx, cancel := context.WithTimeout(context.Background(), l.config.StoreTimeout)
		defer cancel()

		s := l.stripeFor(ticket.key)

		s.mu.Lock()
		defer s.mu.Unlock()

		if s.epoch.Load() != ticket.epoch {
			l.inc(ctx, metricStaleStores, ticket.key)
			l.logger.Debug().Str("key", ticket.key).Msg("dropping cache store superseded by invalidation")

			return
		}

		if !l.store.Set(ctx, l.namespaced(ticket.key), value, l.config.TTL) {
			l.logger.Warn().Str("key", ticket.key).Msg("failed to store cache entry")

			return
		}

		l.inc(ctx, metricStores, ticket.key)
	}()
}

// Invalidate deletes keys one by one in the given order and returns once every
// delete was acknowledged or failed. Keys that could not be deleted are kept
// and replayed by Replay.
func (l *Layer) Invalidate(ctx context.Context, keys ...string) {
	if l == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.config.StoreTimeout)
	defer cancel()

	for _, key := range keys {
		if !l.invalidate(ctx, key) {
			l.remember(key)
			l.logger.Warn().Str("key", key).Msg("failed to invalidate cache entry")

			continue
		}

		l.forget(key)
	}
}

func (l *Layer) invalidate(ctx context.Context, key string) bool {
	s := l.stripeFor(key)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.epoch.Add(1)
	l.inc(ctx, metricInvalidated, key)

	return l.store.Delete(ctx, l.namespaced(key))
}

// retryInvalidation deletes a pending key without bumping its epoch; the
// epoch already moved when the original invalidation failed.
func (l *Layer) retryInvalidation(ctx context.Context, key string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.config.StoreTimeout)
	defer cancel()

	s := l.stripeFor(key)

	s.mu.Lock()
	defer s.mu.Unlock()

	if l.store.Delete(ctx, l.namespaced(key)) {
		l.forget(key)
	}
}

// Replay retries invalidations that failed earlier. Keys stay pending, and
// are therefore never served, until their delete succeeds.
func (l *Layer) Replay(ctx context.Context) {
	if l == nil {
		return
	}

	l.failedMu.Lock()
	keys := make([]string, 0, len(l.failedKeys))
	for key := range l.failedKeys {
		keys = append(keys, key)
	}
	l.failedMu.Unlock()

	if len(keys) == 0 {
		return
	}

	l.logger.Info().Int("keys", len(keys)).Msg("replaying pending cache invalidations")

	l.Invalidate(ctx, keys...)
}

// PendingInvalidations reports how many keys are waiting for Replay.
func (l *Layer) PendingInvalidations() int {
	if l == nil {
		return 0
	}

	l.failedMu.Lock()
	defer l.failedMu.Unlock()

	return len(l.failedKeys)
}

// Wait blocks until all background stores have finished.
func (l *Layer) Wait() {
	if l == nil {
		return
	}

	l.pending.Wait()
}

func (l *Layer) remember(key string) {
	l.failedMu.Lock()
	defer l.failedMu.Unlock()

	if len(l.failedKeys) >= maxPendingInvalidations {
		return
	}

	l.failedKeys[key] = struct{}{}
}

func (l *Layer) forget(key string) {
	l.failedMu.Lock()
	defer l.failedMu.Unlock()

	delete(l.failedKeys, key)
}

func (l *Layer) isPending(key string) bool {
	l.failedMu.Lock()
	defer l.failedMu.Unlock()

	_, ok := l.failedKeys[key]

	return ok
}

func (l *Layer) stripeFor(key string) *stripe {
	return &l.stripes[xxhash.Sum64String(key)%stripeCount]
}

func (l *Layer) namespaced(key string) string {
	return l.config.KeyPrefix + key
}

func (l *Layer) inc(ctx context.Context, name, key string) {
	if l.metrics == nil {
		return
	}

	l.metrics.Inc(ctx, name, int64(1), attribute.String("key_space", keySpace(key)))
}

// keySpace returns the part of the key before the first colon, so that
// "item:42" and "item:7" are reported together.
func keySpace(key string) string {
	if space, _, found := strings.Cut(key, ":"); found {
		return space
	}

	return key
}
