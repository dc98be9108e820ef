// File: internal/retry/retry_test.go
package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDoSucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := Do(context.Background(), zap.NewNop(), Policy{Attempts: 3, Interval: time.Hour}, "click",
		func(ctx context.Context) error {
			calls++
			return nil
		})

	require.NoError(t, err)
	assert.Equal(t, 1, calls, "no retries after success")
}

func TestDoRetriesUntilSuccess(t *testing.T) {
	calls := 0
	err := Do(context.Background(), zap.NewNop(), Policy{Attempts: 5, Interval: time.Millisecond}, "fill",
		func(ctx context.Context) error {
			calls++
			if calls < 3 {
				return errors.New("element not interactable")
			}
			return nil
		})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoExhaustsAttempts(t *testing.T) {
	sentinel := errors.New("element not found")
	calls := 0
	err := Do(context.Background(), zap.NewNop(), Policy{Attempts: 4, Interval: 0}, "click",
		func(ctx context.Context) error {
			calls++
			return sentinel
		})

	require.Error(t, err)
	assert.Equal(t, 4, calls)
	assert.ErrorIs(t, err, sentinel, "last error must remain unwrappable")
	assert.Contains(t, err.Error(), "click failed after 4 attempt(s)")
}

func TestDoRunsAtLeastOnce(t *testing.T) {
	for _, attempts := range []int{-1, 0, 1} {
		calls := 0
		err := Do(context.Background(), zap.NewNop(), Policy{Attempts: attempts}, "op",
			func(ctx context.Context) error {
				calls++
				return nil
			})
		require.NoError(t, err)
		assert.Equal(t, 1, calls, "attempts=%d", attempts)
	}
}

func TestDoHonorsCancellationDuringPause(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	go func() {
		// Cancel while Do is sleeping between attempts.
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	err := Do(ctx, zap.NewNop(), Policy{Attempts: 10, Interval: time.Minute}, "hover",
		func(ctx context.Context) error {
			calls++
			return errors.New("still failing")
		})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls, "no further attempts after cancellation")
}

func TestDoPreCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := Do(ctx, zap.NewNop(), Policy{Attempts: 3}, "op",
		func(ctx context.Context) error {
			calls++
			return nil
		})

	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls)
}

func TestDoPausesBetweenAttempts(t *testing.T) {
	const interval = 30 * time.Millisecond
	start := time.Now()
	_ = Do(context.Background(), zap.NewNop(), Policy{Attempts: 3, Interval: interval}, "op",
		func(ctx context.Context) error {
			return errors.New("nope")
		})

	// Two pauses between three attempts.
	assert.GreaterOrEqual(t, time.Since(start), 2*interval)
}
