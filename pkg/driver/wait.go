// pkg/driver/wait.go
package driver

import (
	"context"
	"fmt"
	"time"
)

// TimeoutError reports that a wait predicate never succeeded within its
// budget. Last carries the predicate's final failure, so callers can see
// why the condition did not hold.
type TimeoutError struct {
	After time.Duration
	Last  error
}

func (e *TimeoutError) Error() string {
	if e.Last != nil {
		return fmt.Sprintf("condition not met within %s: %s", e.After, e.Last)
	}
	return fmt.Sprintf("condition not met within %s", e.After)
}

func (e *TimeoutError) Unwrap() error { return e.Last }

// WaitUntil polls pred every interval until it returns nil or timeout
// elapses. The predicate runs immediately once before the first pause.
// Context cancellation aborts the wait with the context's error.
func (s *Session) WaitUntil(ctx context.Context, timeout, interval time.Duration, pred func(ctx context.Context) error) error {
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var lastErr error
	for {
		lastErr = pred(waitCtx)
		if lastErr == nil {
			return nil
		}

		select {
		case <-waitCtx.Done():
			if ctx.Err() != nil {
				// The caller's context ended, not the wait budget.
				return ctx.Err()
			}
			return &TimeoutError{After: timeout, Last: lastErr}
		case <-ticker.C:
		}
	}
}
