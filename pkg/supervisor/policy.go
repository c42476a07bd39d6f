package supervisor

import (
	"time"

	"github.com/cenkalti/backoff/v5"
)

type (
	// DelayFunc returns how long to wait after the given failed attempt. The
	// first attempt is 1.
	DelayFunc func(attempt uint) time.Duration

	// Policy describes how a dependency is retried. A zero MaxAttempts
	// retries until the context is done.
	Policy struct {
		MaxAttempts uint
		BaseDelay   time.Duration
		MaxDelay    time.Duration
		Delay       DelayFunc
	}
)

// Fixed waits the same delay between every attempt.
func Fixed(delay time.Duration, maxAttempts uint) Policy {
	return Policy{
		MaxAttempts: maxAttempts,
		BaseDelay:   delay,
		MaxDelay:    delay,
		Delay: func(uint) time.Duration {
			return delay
		},
	}
}

// Linear waits attempt*step, capped at ceiling.
func Linear(step, ceiling time.Duration, maxAttempts uint) Policy {
	return Policy{
		MaxAttempts: maxAttempts,
		BaseDelay:   step,
		MaxDelay:    ceiling,
		Delay: func(attempt uint) time.Duration {
			return min(time.Duration(attempt)*step, ceiling)
		},
	}
}

// Unbounded returns a copy of p that never gives up.
func Unbounded(p Policy) Policy {
	p.MaxAttempts = 0

	return p
}

// NextDelay returns the wait after the given failed attempt, clamped to
// [0, MaxDelay].
func (p Policy) NextDelay(attempt uint) time.Duration {
	delay := p.BaseDelay
	if p.Delay != nil {
		delay = p.Delay(attempt)
	}

	if p.MaxDelay > 0 && delay > p.MaxDelay {
		delay = p.MaxDelay
	}

	if delay < 0 {
		return 0
	}

	return delay
}

// Schedule lists the waits between attempts for a bounded policy.
func (p Policy) Schedule() []time.Duration {
	if p.MaxAttempts < 2 {
		return nil
	}

	delays := make([]time.Duration, 0, p.MaxAttempts-1)
	for attempt := uint(1); attempt < p.MaxAttempts; attempt++ {
		delays = append(delays, p.NextDelay(attempt))
	}

	return delays
}

// policyBackOff adapts a Policy to backoff.BackOff.
type policyBackOff struct {
	policy  Policy
	attempt uint
}

var _ backoff.BackOff = (*policyBackOff)(nil)

func (b *policyBackOff) NextBackOff() time.Duration {
	b.attempt++

	return b.policy.NextDelay(b.attempt)
}

func (b *policyBackOff) Reset() {
	b.attempt = 0
}
