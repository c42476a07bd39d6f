package supervisor_test

import (
	"testing"
	"time"

	"github.com/architeacher/items/pkg/supervisor"
	"github.com/stretchr/testify/require"
)

func TestPolicyNextDelay(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		policy   supervisor.Policy
		attempts []uint
		expected []time.Duration
	}{
		{
			name:     "fixed delay is constant",
			policy:   supervisor.Fixed(5*time.Second, 5),
			attempts: []uint{1, 2, 3, 4},
			expected: []time.Duration{5 * time.Second, 5 * time.Second, 5 * time.Second, 5 * time.Second},
		},
		{
			name:     "linear delay grows with attempt",
			policy:   supervisor.Linear(100*time.Millisecond, 3*time.Second, 11),
			attempts: []uint{1, 2, 10},
			expected: []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, time.Second},
		},
		{
			name:     "linear delay is capped at ceiling",
			policy:   supervisor.Linear(100*time.Millisecond, 3*time.Second, 0),
			attempts: []uint{30, 31, 500},
			expected: []time.Duration{3 * time.Second, 3 * time.Second, 3 * time.Second},
		},
		{
			name:     "missing delay function uses base delay",
			policy:   supervisor.Policy{MaxAttempts: 2, BaseDelay: time.Second},
			attempts: []uint{1, 7},
			expected: []time.Duration{time.Second, time.Second},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := make([]time.Duration, 0, len(tc.attempts))
			for _, attempt := range tc.attempts {
				got = append(got, tc.policy.NextDelay(attempt))
			}

			require.Equal(t, tc.expected, got)

			for _, attempt := range tc.attempts {
				require.Equal(t, tc.policy.NextDelay(attempt), tc.policy.NextDelay(attempt))
			}
		})
	}
}

func TestLinearDelayFuncIsCapped(t *testing.T) {
	t.Parallel()

	policy := supervisor.Linear(100*time.Millisecond, 3*time.Second, 11)

	require.Equal(t, 300*time.Millisecond, policy.Delay(3))
	require.Equal(t, 3*time.Second, policy.Delay(30))
	require.Equal(t, 3*time.Second, policy.Delay(1000))
}

func TestPolicySchedule(t *testing.T) {
	t.Parallel()

	require.Equal(t,
		[]time.Duration{5 * time.Second, 5 * time.Second, 5 * time.Second, 5 * time.Second},
		supervisor.Fixed(5*time.Second, 5).Schedule(),
	)
	require.Nil(t, supervisor.Fixed(time.Second, 1).Schedule())
	require.Nil(t, supervisor.Unbounded(supervisor.Fixed(time.Second, 3)).Schedule())

	schedule := supervisor.Linear(100*time.Millisecond, 3*time.Second, 11).Schedule()
	require.Len(t, schedule, 10)
	require.IsNonDecreasing(t, schedule)
	require.Equal(t, time.Second, schedule[9])
}
