// Package supervisor establishes connections to external dependencies,
// retrying failed attempts according to a Policy.
package supervisor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/architeacher/items/pkg/logger"
	"github.com/cenkalti/backoff/v5"
)

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeRetrying  Outcome = "retrying"
	OutcomeExhausted Outcome = "exhausted"
	OutcomeAborted   Outcome = "aborted"
)

// ErrExhausted matches every ExhaustedError.
var ErrExhausted = errors.New("retry budget exhausted")

type (
	Outcome string

	ConnectFunc[T any] func(ctx context.Context) (T, error)

	// Attempt describes one connection attempt. Delay is the wait before the
	// next attempt and is zero unless Outcome is OutcomeRetrying.
	Attempt struct {
		Dependency  string
		Number      uint
		MaxAttempts uint
		Delay       time.Duration
		Outcome     Outcome
		Err         error
	}

	Observer func(Attempt)

	ExhaustedError struct {
		Dependency string
		Attempts   uint
		Err        error
	}
)

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%s: giving up after %d attempts: %v", e.Dependency, e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

func (e *ExhaustedError) Is(target error) bool {
	return target == ErrExhausted
}

// Permanent marks err as not worth retrying. Connect stops at once and
// returns err unchanged.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// Connect calls connect until it succeeds, the policy runs out of attempts or
// ctx is done. Running out of attempts yields a single *ExhaustedError.
func Connect[T any](
	ctx context.Context,
	dependency string,
	policy Policy,
	connect ConnectFunc[T],
	observers ...Observer,
) (T, error) {
	var (
		attempt   uint
		permanent bool
	)

	emit := func(a Attempt) {
		a.Dependency = dependency
		a.MaxAttempts = policy.MaxAttempts

		for _, observe := range observers {
			observe(a)
		}
	}

	operation := func() (T, error) {
		attempt++

		result, err := connect(ctx)
		if err == nil {
			emit(Attempt{Number: attempt, Outcome: OutcomeSucceeded})

			return result, nil
		}

		var permanentErr *backoff.PermanentError
		if errors.As(err, &permanentErr) {
			permanent = true
		}

		return result, err
	}

	opts := []backoff.RetryOption{
		backoff.WithBackOff(&policyBackOff{policy: policy}),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, next time.Duration) {
			emit(Attempt{Number: attempt, Delay: next, Outcome: OutcomeRetrying, Err: err})
		}),
	}

	if policy.MaxAttempts > 0 {
		opts = append(opts, backoff.WithMaxTries(policy.MaxAttempts))
	}

	result, err := backoff.Retry(ctx, operation, opts...)
	if err == nil {
		return result, nil
	}

	var zero T

	switch {
	case permanent:
		var permanentErr *backoff.PermanentError
		if errors.As(err, &permanentErr) {
			err = permanentErr.Unwrap()
		}

		emit(Attempt{Number: attempt, Outcome: OutcomeAborted, Err: err})

		return zero, err
	case ctx.Err() != nil:
		emit(Attempt{Number: attempt, Outcome: OutcomeAborted, Err: err})

		return zero, fmt.Errorf("%s: connect interrupted after %d attempts: %w", dependency, attempt, err)
	default:
		emit(Attempt{Number: attempt, Outcome: OutcomeExhausted, Err: err})

		return zero, &ExhaustedError{Dependency: dependency, Attempts: attempt, Err: err}
	}
}

// LogAttempts returns an Observer writing every attempt to log.
func LogAttempts(log logger.Logger) Observer {
	return func(a Attempt) {
		progress := fmt.Sprintf("%d", a.Number)
		if a.MaxAttempts > 0 {
			progress = fmt.Sprintf("%d/%d", a.Number, a.MaxAttempts)
		}

		switch a.Outcome {
		case OutcomeSucceeded:
			log.Info().
				Str("dependency", a.Dependency).
				Str("attempt", progress).
				Msg("dependency connected")
		case OutcomeRetrying:
			log.Warn().
				Err(a.Err).
				Str("dependency", a.Dependency).
				Str("attempt", progress).
				Dur("retry_in", a.Delay).
				Msg("dependency connection attempt failed")
		case OutcomeExhausted:
			log.Error().
				Err(a.Err).
				Str("dependency", a.Dependency).
				Str("attempt", progress).
				Msg("giving up on dependency")
		case OutcomeAborted:
			log.Warn().
				Err(a.Err).
				Str("dependency", a.Dependency).
				Str("attempt", progress).
				Msg("dependency connection aborted")
		}
	}
}
