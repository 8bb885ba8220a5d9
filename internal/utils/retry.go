package utils

import (
	"context"
	"log/slog"
	"math"
	"math/rand"
	"time"
)

// RetryConfig holds the configuration for the retry mechanism.
type RetryConfig struct {
	MaxAttempts   int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
	// Timeout bounds each attempt. Zero leaves attempts bounded by ctx only.
	Timeout time.Duration
	// Retryable reports whether an error is worth another attempt. Nil
	// retries every error.
	Retryable func(error) bool
}

// RetryableFunc defines the signature for operations that can be retried.
type RetryableFunc[T any] func(ctx context.Context) (T, error)

// StartupRetryConfig waits for a dependency that may still be booting, such
// as Redis coming up next to the worker.
func StartupRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:   6,
		InitialDelay:  500 * time.Millisecond,
		MaxDelay:      8 * time.Second,
		BackoffFactor: 2.0,
		Timeout:       5 * time.Second,
	}
}

// Backoff returns the delay before the attempt following attempt, without
// jitter.
func (c RetryConfig) Backoff(attempt int) time.Duration {
	delay := time.Duration(float64(c.InitialDelay) * math.Pow(c.BackoffFactor, float64(attempt-1)))
	if c.MaxDelay > 0 && delay > c.MaxDelay {
		delay = c.MaxDelay
	}
	return delay
}

// WithRetry executes the given operation with retries based on the provided config.
func WithRetry[T any](ctx context.Context, operation RetryableFunc[T], config RetryConfig) (T, error) {
	var lastErr error
	var zero T

	for attempt := 1; attempt <= config.MaxAttempts; attempt++ {
		attemptCtx, cancel := ctx, context.CancelFunc(func() {})
		if config.Timeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, config.Timeout)
		}
		result, err := operation(attemptCtx)
		cancel()

		if err == nil {
			return result, nil
		}
		lastErr = err

		if attempt == config.MaxAttempts || (config.Retryable != nil && !config.Retryable(err)) {
			break
		}

		delay := config.Backoff(attempt)
		if jitterRange := int64(delay) / 10; jitterRange > 0 {
			delay += time.Duration(rand.Int63n(jitterRange))
		}
		slog.DebugContext(ctx, "Retrying", "attempt", attempt, "delay", delay, "error", err)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}

	return zero, lastErr
}
