// File: internal/retry/retry.go

// Package retry implements the fixed-delay retry policy used by the helper
// layer. There is deliberately no backoff curve and no jitter: a failed UI
// interaction is re-attempted as-is after a constant pause.
package retry

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Policy is a (attempts, interval) pair. It is pure configuration.
type Policy struct {
	// Attempts is the total number of times the operation runs. Values
	// below one are treated as a single attempt.
	Attempts int
	// Interval is the fixed pause between consecutive attempts.
	Interval time.Duration
}

// Do runs fn until it succeeds or the policy is exhausted, pausing
// Policy.Interval between attempts. The function always runs at least once.
// The error of the last attempt is returned, wrapped with the attempt count.
// Context cancellation aborts both the pause and any further attempts.
func Do(ctx context.Context, logger *zap.Logger, p Policy, op string, fn func(ctx context.Context) error) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			if attempt > 1 {
				logger.Info("operation succeeded after retry",
					zap.String("op", op),
					zap.Int("attempt", attempt))
			}
			return nil
		}

		if attempt == attempts {
			break
		}

		logger.Warn("operation failed, retrying",
			zap.String("op", op),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", attempts),
			zap.Duration("interval", p.Interval),
			zap.Error(lastErr))

		if err := sleep(ctx, p.Interval); err != nil {
			return err
		}
	}

	return fmt.Errorf("%s failed after %d attempt(s): %w", op, attempts, lastErr)
}

// sleep pauses for d or until the context is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
