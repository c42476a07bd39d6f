package runtime

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/architeacher/items/pkg/logger"
)

type ServiceCtx struct {
	deps              *dependencies
	lifecycle         *Lifecycle
	shutdownChannel   chan os.Signal
	serverCtx         context.Context
	serverStopFunc    context.CancelFunc
	serverReady       chan struct{}
	serverErrors      chan error
	dependencyOptions func(ctx context.Context) []DependencyOption
	exit              func(code int)

	addrMu sync.RWMutex
	addr   net.Addr
}

func New(opts ...ServiceOption) *ServiceCtx {
	ctx := &ServiceCtx{
		lifecycle:         NewLifecycle(),
		shutdownChannel:   make(chan os.Signal, 1),
		serverErrors:      make(chan error, 1),
		dependencyOptions: defaultOptions,
		exit:              os.Exit,
	}

	for _, opt := range opts {
		opt(ctx)
	}

	return ctx
}

// Run builds the service, serves until a termination signal or a server
// failure, then drains. A startup failure exits with code 1.
func (c *ServiceCtx) Run() {
	if err := c.build(); err != nil {
		c.abort(err)

		return
	}

	if err := c.startService(); err != nil {
		c.abort(err)

		return
	}

	c.shutdownHook()

	select {
	case <-c.serverCtx.Done():
	case err := <-c.serverErrors:
		c.deps.infra.logger.Error().Err(err).Msg("http server failed")
	case sig := <-c.shutdownChannel:
		c.deps.infra.logger.Info().Str("signal", fmt.Sprintf("%v", sig)).Msg("termination signal received")
	}

	c.shutdown()
}

func (c *ServiceCtx) Lifecycle() *Lifecycle {
	return c.lifecycle
}

// Addr returns the address the HTTP server listens on, or nil before it is
// listening.
func (c *ServiceCtx) Addr() net.Addr {
	c.addrMu.RLock()
	defer c.addrMu.RUnlock()

	return c.addr
}

// WaitForServer blocks until the HTTP server is listening. It only blocks
// when the service was created with WithWaitingForServer.
func (c *ServiceCtx) WaitForServer() {
	if c.serverReady != nil {
		<-c.serverReady
	}
}

func (c *ServiceCtx) build() error {
	c.serverCtx, c.serverStopFunc = context.WithCancel(context.Background())

	var err error

	c.deps, err = initializeDependencies(c.dependencyOptions(c.serverCtx)...)
	if err != nil {
		return fmt.Errorf("initializing dependencies: %w", err)
	}

	return nil
}

func (c *ServiceCtx) startService() error {
	server := c.deps.infra.httpServer

	listener, err := net.Listen("tcp", server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", server.Addr, err)
	}

	c.addrMu.Lock()
	c.addr = listener.Addr()
	c.addrMu.Unlock()

	c.deps.infra.logger.Info().
		Str("address", listener.Addr().String()).
		Msg("starting the http server")

	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			c.serverErrors <- err
		}
	}()

	c.lifecycle.Serve()

	if c.serverReady != nil {
		close(c.serverReady)
	}

	return nil
}

func (c *ServiceCtx) shutdownHook() {
	signal.Notify(c.shutdownChannel, syscall.SIGINT, syscall.SIGTERM)
}

func (c *ServiceCtx) shutdown() {
	c.lifecycle.Drain(func() {
		log := c.deps.infra.logger

		log.Info().Msg("shutting down service...")

		signal.Stop(c.shutdownChannel)
		c.serverStopFunc()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), c.deps.config.HTTPServer.ShutdownTimeout)
		defer cancel()

		done := make(chan struct{})
		defer close(done)

		go c.watchdog(shutdownCtx, done)

		c.cleanup(shutdownCtx)

		log.Info().Msg("service shutdown complete")
	})
}

// watchdog forces the process out when cleanup outlives the shutdown
// timeout.
func (c *ServiceCtx) watchdog(shutdownCtx context.Context, done <-chan struct{}) {
	select {
	case <-done:
	case <-shutdownCtx.Done():
		if errors.Is(shutdownCtx.Err(), context.DeadlineExceeded) {
			c.deps.infra.logger.Error().Msg("graceful shutdown timed out.. forcing exit.")
			c.exit(1)
		}
	}
}

func (c *ServiceCtx) cleanup(shutdownCtx context.Context) {
	log := c.deps.infra.logger

	log.Info().Msg("cleaning up resources...")

	for _, cleanup := range c.deps.cleanupOrder() {
		if err := cleanup.fn(shutdownCtx); err != nil {
			log.Error().
				Err(err).
				Str("resource", cleanup.resource).
				Msg("failed to shutdown the resource gracefully")
		}
	}

	log.Info().Msg("cleanup completed")
}

// abort releases whatever was acquired before the failure and exits with
// code 1.
func (c *ServiceCtx) abort(err error) {
	log := logger.New(logger.LogLevelError, logger.JSONLoggingFormat)
	if c.deps != nil && c.deps.config != nil {
		log = c.deps.infra.logger
	}

	log.Error().Err(err).Msg("failed to start service")

	if c.deps != nil && c.deps.config != nil {
		c.lifecycle.Drain(func() {
			c.serverStopFunc()

			cleanupCtx, cancel := context.WithTimeout(context.Background(), c.deps.config.HTTPServer.ShutdownTimeout)
			defer cancel()

			c.cleanup(cleanupCtx)
		})
	}

	c.exit(1)
}
