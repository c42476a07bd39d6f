package postgres

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/architeacher/items/internal/config"
	"github.com/architeacher/items/internal/domain/model"
	"github.com/architeacher/items/internal/infrastructure"
	"github.com/architeacher/items/pkg/logger"
	"github.com/architeacher/items/pkg/supervisor"
)

const defaultPingTimeout = 3 * time.Second

type (
	PoolFactory func(ctx context.Context, cfg config.Database) (Pool, error)

	ConnectorOption func(*Connector)

	// Connector owns the pool of the primary store and its connection status.
	Connector struct {
		config    config.Database
		factory   PoolFactory
		policy    supervisor.Policy
		observers []supervisor.Observer
		status    *infrastructure.StatusTracker
		logger    logger.Logger

		mu   sync.RWMutex
		pool Pool
	}
)

func WithPoolFactory(factory PoolFactory) ConnectorOption {
	return func(c *Connector) {
		c.factory = factory
	}
}

func WithPolicy(policy supervisor.Policy) ConnectorOption {
	return func(c *Connector) {
		c.policy = policy
	}
}

// WithAttemptObserver adds an observer next to the built-in attempt logging.
func WithAttemptObserver(observer supervisor.Observer) ConnectorOption {
	return func(c *Connector) {
		c.observers = append(c.observers, observer)
	}
}

func NewConnector(cfg config.Database, log logger.Logger, opts ...ConnectorOption) *Connector {
	log = log.Component(string(model.DependencyPrimaryStore))

	c := &Connector{
		config:  cfg,
		factory: NewPool,
		policy:  supervisor.Fixed(cfg.ConnectDelay, cfg.ConnectAttempts),
		status:  infrastructure.NewStatusTracker(model.DependencyPrimaryStore, log),
		logger:  log,
	}

	c.observers = append(c.observers, supervisor.LogAttempts(log))

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Connect establishes the pool under the bounded retry policy. Running out of
// attempts yields an error matching model.ErrDependencyExhausted.
func (c *Connector) Connect(ctx context.Context) (Pool, error) {
	pool, err := supervisor.Connect(ctx, string(model.DependencyPrimaryStore), c.policy, c.attempt, c.observers...)
	if err != nil {
		if errors.Is(err, supervisor.ErrExhausted) {
			c.status.Transition(model.ConnectionStatusFailed)

			return nil, fmt.Errorf("%w: %w", model.ErrDependencyExhausted, err)
		}

		c.status.Transition(model.ConnectionStatusDisconnected)

		return nil, fmt.Errorf("connecting to primary store: %w", err)
	}

	c.status.Transition(model.ConnectionStatusConnected)

	return pool, nil
}

func (c *Connector) attempt(ctx context.Context) (Pool, error) {
	pool, err := c.ensurePool(ctx)
	if err != nil {
		return nil, supervisor.Permanent(err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, orDefault(c.config.ConnectTimeout))
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		return nil, fmt.Errorf("pinging primary store: %w", err)
	}

	return pool, nil
}

func (c *Connector) ensurePool(ctx context.Context) (Pool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pool != nil {
		return c.pool, nil
	}

	pool, err := c.factory(ctx, c.config)
	if err != nil {
		return nil, err
	}

	c.pool = pool

	return pool, nil
}

// Probe pings the live pool and records the outcome. It never uses a cached
// result.
func (c *Connector) Probe(ctx context.Context) bool {
	pool := c.Pool()
	if pool == nil {
		return false
	}

	probeCtx, cancel := context.WithTimeout(ctx, orDefault(c.config.ProbeTimeout))
	defer cancel()

	if err := pool.Ping(probeCtx); err != nil {
		c.logger.Warn().Err(err).Msg("primary store probe failed")
		c.status.Transition(model.ConnectionStatusDisconnected)

		return false
	}

	c.status.Transition(model.ConnectionStatusConnected)

	return true
}

func (c *Connector) Status() model.ConnectionStatus {
	return c.status.Status()
}

func (c *Connector) Subscribe(listener infrastructure.StatusListener) {
	c.status.Subscribe(listener)
}

func (c *Connector) Pool() Pool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.pool
}

func (c *Connector) Close() {
	c.mu.Lock()
	pool := c.pool
	c.pool = nil
	c.mu.Unlock()

	if pool == nil {
		return
	}

	pool.Close()
	c.status.Transition(model.ConnectionStatusDisconnected)
	c.logger.Info().Msg("primary store pool closed")
}

func orDefault(timeout time.Duration) time.Duration {
	if timeout <= 0 {
		return defaultPingTimeout
	}

	return timeout
}
