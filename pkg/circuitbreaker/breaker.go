package circuitbreaker

import (
	"errors"

	"github.com/sony/gobreaker/v2"
)

type (
	State string

	// CircuitBreaker guards calls of any result type. A nil *CircuitBreaker
	// is valid and never trips.
	CircuitBreaker struct {
		cb *gobreaker.CircuitBreaker[any]
	}
)

const (
	StateClosed   State = "closed"
	StateHalfOpen State = "half-open"
	StateOpen     State = "open"
)

func New(cfg Config) *CircuitBreaker {
	if !cfg.Enabled {
		return nil
	}

	settings := gobreaker.Settings{
		Name:         cfg.Name,
		MaxRequests:  uint32(cfg.MaxRequests),
		Interval:     cfg.Interval,
		Timeout:      cfg.Timeout,
		IsSuccessful: cfg.IsSuccessful,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(cfg.FailureThreshold)
		},
	}

	if cfg.OnStateChange != nil {
		settings.OnStateChange = func(name string, from, to gobreaker.State) {
			cfg.OnStateChange(name, toState(from), toState(to))
		}
	}

	return &CircuitBreaker{cb: gobreaker.NewCircuitBreaker[any](settings)}
}

func (c *CircuitBreaker) Name() string {
	if c == nil {
		return ""
	}

	return c.cb.Name()
}

func (c *CircuitBreaker) State() State {
	if c == nil {
		return StateClosed
	}

	return toState(c.cb.State())
}

// Execute runs fn through the breaker. Rejections are reported as
// ErrCircuitOpen or ErrTooManyRequests; errors from fn are returned as is.
func Execute[T any](c *CircuitBreaker, fn func() (T, error)) (T, error) {
	if c == nil {
		return fn()
	}

	var zero T

	result, err := c.cb.Execute(func() (any, error) {
		return fn()
	})

	switch {
	case errors.Is(err, gobreaker.ErrOpenState):
		return zero, ErrCircuitOpen
	case errors.Is(err, gobreaker.ErrTooManyRequests):
		return zero, ErrTooManyRequests
	}

	typed, ok := result.(T)
	if !ok {
		return zero, err
	}

	return typed, err
}

func toState(s gobreaker.State) State {
	switch s {
	case gobreaker.StateOpen:
		return StateOpen
	case gobreaker.StateHalfOpen:
		return StateHalfOpen
	default:
		return StateClosed
	}
}
