package waiter

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Action is one attempt of a flaky operation. Returning false or an error
// counts as a failed attempt.
type Action func(attempt int) (bool, error)

// WaitWithRetry runs action up to maxAttempts times, sleeping delay*attempt
// between attempts. Every failed attempt is logged as a warning. It returns
// true on the first successful attempt.
func (w *Waiter) WaitWithRetry(maxAttempts int, delay time.Duration, action Action) bool {
	return w.Retry(maxAttempts, delay, action) == nil
}

// Retry is WaitWithRetry returning the final failure. The returned error
// wraps the last attempt's error when there was one.
func (w *Waiter) Retry(maxAttempts int, delay time.Duration, action Action) error {
	if maxAttempts < 1 {
		return fmt.Errorf("%w: max attempts must be at least 1, got %d", ErrInvalidWait, maxAttempts)
	}
	if action == nil {
		return fmt.Errorf("%w: action is required", ErrInvalidWait)
	}
	start := w.clock.Now()
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		ok, err := action(attempt)
		if err == nil && ok {
			w.observe("retry", true, start)
			return nil
		}
		lastErr = err
		fields := []zap.Field{zap.Int("attempt", attempt), zap.Int("max_attempts", maxAttempts)}
		if err != nil {
			fields = append(fields, zap.Error(err))
		}
		w.logger.Warning("attempt failed", fields...)
		if attempt < maxAttempts && delay > 0 {
			w.clock.Sleep(delay * time.Duration(attempt))
		}
	}
	w.observe("retry", false, start)
	if lastErr != nil {
		return fmt.Errorf("failed after %d attempts: %w", maxAttempts, lastErr)
	}
	return fmt.Errorf("failed after %d attempts", maxAttempts)
}
