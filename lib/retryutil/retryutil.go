package retryutil

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mazen160/go-random"
)

// Wait blocks for d plus up to jitter of random slack, or until ctx is
// done. The slack keeps request timing from looking mechanical.
func Wait(ctx context.Context, d time.Duration, jitter time.Duration) error {
	if jitter > 0 {
		extra, err := random.IntRange(0, int(jitter/time.Millisecond)+1)
		if err == nil {
			d += time.Duration(extra) * time.Millisecond
		}
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Do runs fn up to attempts times, waiting delay (with jitter) between
// attempts. It is meant to wrap one item's visit+extract, not a whole
// run: exhaustion returns the last error for the caller to log and skip.
func Do(ctx context.Context, label string, attempts int, delay time.Duration, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		slog.WarnContext(
			ctx, "attempt failed",
			"op", label,
			"attempt", attempt,
			"limit", attempts,
			"err", lastErr,
		)

		if attempt < attempts {
			if err := Wait(ctx, delay, delay/2); err != nil {
				return err
			}
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", label, attempts, lastErr)
}

// DoValue is Do for operations that produce a value.
func DoValue[T any](ctx context.Context, label string, attempts int, delay time.Duration, fn func() (T, error)) (T, error) {
	var out T
	err := Do(ctx, label, attempts, delay, func() error {
		v, err := fn()
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}
