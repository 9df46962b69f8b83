package llm

import (
	"context"
	"math/rand"
	"time"

	"atelier/internal/logging"
)

// RetryConfig holds retry configuration used across all client implementations.
type RetryConfig struct {
	MaxRetries int           // Maximum number of retry attempts
	RetryDelay time.Duration // Initial delay between retries
	MaxDelay   time.Duration // Maximum backoff delay (cap)
}

// DefaultRetryConfig returns sensible retry defaults.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 3,
		RetryDelay: 1 * time.Second,
		MaxDelay:   30 * time.Second,
	}
}

// CalculateBackoff calculates exponential backoff with jitter.
// This prevents thundering herd problem when many clients retry simultaneously.
func CalculateBackoff(baseDelay time.Duration, attempt int, maxDelay time.Duration) time.Duration {
	delay := baseDelay * time.Duration(1<<uint(attempt))
	if delay > maxDelay {
		delay = maxDelay
	}

	// Add jitter: random value between 0 and 25% of delay
	jitter := time.Duration(rand.Int63n(int64(delay / 4)))
	return delay + jitter
}

// WithRetry invokes call, retrying transient transport failures with bounded
// exponential backoff. Non-retryable errors and context cancellation return
// immediately. Only the transport call is retried; callers must never route
// side-effecting work through this helper.
func WithRetry(ctx context.Context, name string, cfg RetryConfig, call func() (string, error)) (string, error) {
	var lastErr error

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := CalculateBackoff(cfg.RetryDelay, attempt-1, cfg.MaxDelay)
			logging.Debug("retrying llm call",
				"backend", name,
				"attempt", attempt,
				"delay", delay.String())

			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return "", ctx.Err()
			case <-timer.C:
			}
		}

		result, err := call()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return "", err
		}
		if !IsRetryableError(err) {
			return "", err
		}

		logging.Warn("llm call failed",
			"backend", name,
			"attempt", attempt,
			"error", err.Error())
	}

	return "", lastErr
}
