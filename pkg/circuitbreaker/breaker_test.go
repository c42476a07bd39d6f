package circuitbreaker

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var errCallerMistake = errors.New("caller mistake")

func enabledConfig(name string) Config {
	return Config{
		Name:             name,
		Enabled:          true,
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          100 * time.Millisecond,
		FailureThreshold: 2,
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		cfg      Config
		wantNil  bool
		wantName string
	}{
		{
			name:     "creates breaker when enabled",
			cfg:      enabledConfig("items-repository"),
			wantName: "items-repository",
		},
		{
			name:    "returns nil when disabled",
			cfg:     Config{Name: "disabled"},
			wantNil: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cb := New(tc.cfg)

			if tc.wantNil {
				require.Nil(t, cb)
				require.Equal(t, StateClosed, cb.State())

				return
			}

			require.NotNil(t, cb)
			require.Equal(t, tc.wantName, cb.Name())
			require.Equal(t, StateClosed, cb.State())
		})
	}
}

func TestExecute(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		cb      *CircuitBreaker
		fn      func() (*string, error)
		wantVal *string
		wantErr error
	}{
		{
			name: "returns value through breaker",
			cb:   New(enabledConfig("success")),
			fn: func() (*string, error) {
				v := "ok"

				return &v, nil
			},
			wantVal: ptr("ok"),
		},
		{
			name: "passes through when breaker is nil",
			fn: func() (*string, error) {
				v := "direct"

				return &v, nil
			},
			wantVal: ptr("direct"),
		},
		{
			name: "keeps typed nil results",
			cb:   New(enabledConfig("nil-result")),
			fn: func() (*string, error) {
				return nil, nil
			},
		},
		{
			name: "returns error from call",
			cb:   New(enabledConfig("failure")),
			fn: func() (*string, error) {
				return nil, errCallerMistake
			},
			wantErr: errCallerMistake,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := Execute(tc.cb, tc.fn)

			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				require.Nil(t, got)

				return
			}

			require.NoError(t, err)
			require.Equal(t, tc.wantVal, got)
		})
	}
}

func TestBreakerOpensAndRecovers(t *testing.T) {
	t.Parallel()

	var (
		mu          sync.Mutex
		transitions []State
	)

	cfg := enabledConfig("transitions")
	cfg.OnStateChange = func(_ string, _, to State) {
		mu.Lock()
		defer mu.Unlock()

		transitions = append(transitions, to)
	}

	cb := New(cfg)
	failure := errors.New("store down")

	for range 2 {
		_, err := Execute(cb, func() (int, error) { return 0, failure })
		require.ErrorIs(t, err, failure)
	}

	require.Equal(t, StateOpen, cb.State())

	_, err := Execute(cb, func() (int, error) { return 1, nil })
	require.ErrorIs(t, err, ErrCircuitOpen)
	require.True(t, IsRejection(err))

	time.Sleep(150 * time.Millisecond)

	got, err := Execute(cb, func() (int, error) { return 42, nil })
	require.NoError(t, err)
	require.Equal(t, 42, got)
	require.Equal(t, StateClosed, cb.State())

	mu.Lock()
	defer mu.Unlock()

	require.Equal(t, []State{StateOpen, StateHalfOpen, StateClosed}, transitions)
}

func TestBreakerIgnoresSuccessfulErrors(t *testing.T) {
	t.Parallel()

	cfg := enabledConfig("ignored")
	cfg.IsSuccessful = func(err error) bool {
		return err == nil || errors.Is(err, errCallerMistake)
	}

	cb := New(cfg)

	for range 5 {
		_, err := Execute(cb, func() (int, error) { return 0, errCallerMistake })
		require.ErrorIs(t, err, errCallerMistake)
	}

	require.Equal(t, StateClosed, cb.State())
}

func TestBreakerTooManyRequestsWhileHalfOpen(t *testing.T) {
	t.Parallel()

	cfg := enabledConfig("half-open")
	cfg.FailureThreshold = 1

	cb := New(cfg)

	_, _ = Execute(cb, func() (int, error) { return 0, errors.New("failure") })

	time.Sleep(150 * time.Millisecond)

	started := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)

		_, _ = Execute(cb, func() (int, error) {
			close(started)
			time.Sleep(50 * time.Millisecond)

			return 1, nil
		})
	}()

	<-started

	_, err := Execute(cb, func() (int, error) { return 2, nil })
	require.ErrorIs(t, err, ErrTooManyRequests)

	<-done
}

func ptr(s string) *string {
	return &s
}
