package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/readmegen-lab/backend/pkg/retry"
	"github.com/stretchr/testify/require"
)

func TestPolicyDelaySchedule(t *testing.T) {
	policy := retry.Policy{MaxAttempts: 3, BaseDelay: time.Second, Multiplier: 2}

	require.Equal(t, time.Second, policy.Delay(0))
	require.Equal(t, 2*time.Second, policy.Delay(1))
	require.Equal(t, 4*time.Second, policy.Delay(2))
}

func TestPolicyRetriesThenSucceeds(t *testing.T) {
	policy := retry.Policy{MaxAttempts: 3, BaseDelay: time.Second, Multiplier: 2}

	var slept []time.Duration
	sleep := func(d time.Duration) { slept = append(slept, d) }

	calls := 0
	err := policy.Do(context.Background(), sleep, func(attempt int) error {
		calls++
		if calls < 3 {
			return errors.New("network error")
		}
		return nil
	})

	require.NoError(t, err)
	require.Equal(t, 3, calls)
	require.Equal(t, []time.Duration{time.Second, 2 * time.Second}, slept)
}

func TestPolicyExhaustsAttempts(t *testing.T) {
	policy := retry.Policy{MaxAttempts: 3, BaseDelay: time.Millisecond, Multiplier: 2}

	calls := 0
	err := policy.Do(context.Background(), func(time.Duration) {}, func(attempt int) error {
		calls++
		return errors.New("still failing")
	})

	require.EqualError(t, err, "still failing")
	require.Equal(t, 3, calls)
}

func TestPolicyStopShortCircuits(t *testing.T) {
	policy := retry.Policy{MaxAttempts: 3, BaseDelay: time.Millisecond, Multiplier: 2}

	calls := 0
	cause := errors.New("not authenticated")
	err := policy.Do(context.Background(), func(time.Duration) {}, func(attempt int) error {
		calls++
		return retry.Stop(cause)
	})

	require.ErrorIs(t, err, cause)
	require.Equal(t, 1, calls)
}
