package circuitbreaker

import "time"

type Config struct {
	// Name identifies the breaker in logs and metrics.
	Name string

	// Enabled determines whether the breaker is active. When false, New
	// returns nil and Execute calls straight through.
	Enabled bool

	// MaxRequests is the number of probe requests allowed while half-open.
	// Zero means one.
	MaxRequests uint

	// Interval is the cyclic period after which the closed state clears its
	// counts. Zero never clears them.
	Interval time.Duration

	// Timeout is how long the breaker stays open before probing again.
	Timeout time.Duration

	// FailureThreshold is the number of consecutive failures that opens the
	// breaker.
	FailureThreshold uint

	// IsSuccessful reports whether an error returned by the protected call
	// should still count as a success, e.g. a caller mistake.
	IsSuccessful func(err error) bool

	// OnStateChange is notified on every state transition.
	OnStateChange func(name string, from, to State)
}
