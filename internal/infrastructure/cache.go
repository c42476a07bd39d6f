package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/architeacher/items/internal/config"
	"github.com/architeacher/items/internal/domain/model"
	appLogger "github.com/architeacher/items/pkg/logger"
	"github.com/architeacher/items/pkg/supervisor"
	"github.com/redis/go-redis/v9"
)

// CacheConnector wraps a redis client with total operations. Every failure is
// logged and reported as a miss or false; a lost connection is re-established
// in the background until the give-up threshold is reached, after which the
// connector stays failed and performs no I/O.
type CacheConnector struct {
	client *redis.Client
	config config.Cache
	policy supervisor.Policy
	status *StatusTracker
	logger appLogger.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.Mutex
	closed      bool
	workers     sync.WaitGroup
	supervising atomic.Bool
}

func NewCacheConnector(cfg config.Cache, logger appLogger.Logger) *CacheConnector {
	logger = logger.Component(string(model.DependencyCache))

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           int(cfg.DB),
		PoolSize:     int(cfg.PoolSize),
		MinIdleConns: int(cfg.MinIdleConns),
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		PoolTimeout:  cfg.PoolTimeout,
		MaxRetries:   -1,
	})

	policy := supervisor.Linear(cfg.ReconnectStep, cfg.ReconnectCeiling, cfg.MaxReconnects+1)
	if cfg.ReconnectForever {
		policy = supervisor.Unbounded(policy)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &CacheConnector{
		client: client,
		config: cfg,
		policy: policy,
		status: NewStatusTracker(model.DependencyCache, logger),
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start connects in the background and returns immediately.
func (c *CacheConnector) Start() {
	c.logger.Info().Str("address", c.config.Address).Msg("connecting to cache")

	c.supervise()

	if c.config.HealthCheckInterval > 0 {
		c.spawn(c.keepAlive)
	}
}

func (c *CacheConnector) Get(ctx context.Context, key string) ([]byte, bool) {
	if !c.IsConnected() {
		return nil, false
	}

	start := time.Now()

	value, err := c.client.Get(ctx, key).Bytes()

	switch {
	case err == nil:
		c.trace("get", key, start, true)

		return value, true
	case errors.Is(err, redis.Nil):
		c.trace("get", key, start, false)

		return nil, false
	default:
		c.fail(ctx, err, "get", key)

		return nil, false
	}
}

// Set stores value for ttl. A non positive ttl uses the configured default.
func (c *CacheConnector) Set(ctx context.Context, key string, value []byte, ttl time.Duration) bool {
	if !c.IsConnected() {
		return false
	}

	if ttl <= 0 {
		ttl = c.config.TTL
	}

	start := time.Now()

	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		c.fail(ctx, err, "set", key)

		return false
	}

	c.trace("set", key, start, true)

	return true
}

// Delete removes keys. Missing keys are not an error.
func (c *CacheConnector) Delete(ctx context.Context, keys ...string) bool {
	if len(keys) == 0 {
		return true
	}

	if !c.IsConnected() {
		return false
	}

	start := time.Now()

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.fail(ctx, err, "del", keys[0])

		return false
	}

	c.trace("del", keys[0], start, true)

	return true
}

func (c *CacheConnector) IsConnected() bool {
	return c.status.Status() == model.ConnectionStatusConnected
}

func (c *CacheConnector) Status() model.ConnectionStatus {
	return c.status.Status()
}

func (c *CacheConnector) Subscribe(listener StatusListener) {
	c.status.Subscribe(listener)
}

// Close stops background supervision and releases the client. Workers still
// running when ctx is done are abandoned.
func (c *CacheConnector) Close(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()

		return nil
	}

	c.closed = true
	c.mu.Unlock()

	c.cancel()

	done := make(chan struct{})
	go func() {
		c.workers.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		c.logger.Warn().Msg("cache workers did not stop in time")
	}

	c.status.Transition(model.ConnectionStatusDisconnected)

	if err := c.client.Close(); err != nil {
		return fmt.Errorf("closing cache client: %w", err)
	}

	c.logger.Info().Msg("cache connection released")

	return nil
}

func (c *CacheConnector) ping(ctx context.Context) (struct{}, error) {
	pingCtx, cancel := context.WithTimeout(ctx, c.config.DialTimeout)
	defer cancel()

	return struct{}{}, c.client.Ping(pingCtx).Err()
}

// supervise starts at most one reconnect loop.
func (c *CacheConnector) supervise() {
	if c.status.Status().IsTerminal() || !c.supervising.CompareAndSwap(false, true) {
		return
	}

	started := c.spawn(func() {
		_, err := supervisor.Connect(c.ctx, string(model.DependencyCache), c.policy, c.ping, supervisor.LogAttempts(c.logger))

		// Released before publishing the outcome so that a failure right
		// after reconnecting can start a new loop.
		c.supervising.Store(false)

		switch {
		case err == nil:
			c.status.Transition(model.ConnectionStatusConnected)
		case errors.Is(err, supervisor.ErrExhausted):
			c.status.Transition(model.ConnectionStatusFailed)
			c.logger.Error().
				Err(fmt.Errorf("%w: %w", model.ErrDependencyDegraded, err)).
				Msg("cache disabled until restart")
		}
	})

	if !started {
		c.supervising.Store(false)
	}
}

func (c *CacheConnector) keepAlive() {
	ticker := time.NewTicker(c.config.HealthCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			if !c.IsConnected() {
				continue
			}

			if _, err := c.ping(c.ctx); err != nil {
				c.fail(c.ctx, err, "ping", "")
			}
		}
	}
}

// fail logs err and, for transport errors, starts reconnecting. Errors caused
// by the caller's own context ending leave the connection state alone.
func (c *CacheConnector) fail(ctx context.Context, err error, operation, key string) {
	c.logger.Warn().
		Err(err).
		Str("operation", operation).
		Str("key", key).
		Msg("cache operation failed")

	if !isTransportError(err) || ctx.Err() != nil || c.ctx.Err() != nil {
		return
	}

	if c.status.Transition(model.ConnectionStatusDisconnected) {
		c.supervise()
	}
}

// spawn runs fn in a tracked goroutine unless the connector is closed.
func (c *CacheConnector) spawn(fn func()) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}

	c.workers.Add(1)

	go func() {
		defer c.workers.Done()

		fn()
	}()

	return true
}

func (c *CacheConnector) trace(operation, key string, start time.Time, ok bool) {
	c.logger.Debug().
		Str("operation", operation).
		Str("key", key).
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Bool("ok", ok).
		Msg("cache operation")
}

// isTransportError tells connection problems apart from server replies and
// caller cancellation.
func isTransportError(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}

	var reply redis.Error

	return !errors.As(err, &reply)
}
