package llm

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestCalculateBackoff(t *testing.T) {
	base := 1 * time.Second
	max := 10 * time.Second

	for attempt := 0; attempt < 8; attempt++ {
		delay := CalculateBackoff(base, attempt, max)
		expected := base * time.Duration(1<<uint(attempt))
		if expected > max {
			expected = max
		}
		// Jitter adds up to 25% on top
		if delay < expected || delay > expected+expected/4 {
			t.Errorf("attempt %d: delay %v outside [%v, %v]", attempt, delay, expected, expected+expected/4)
		}
	}
}

func TestWithRetrySucceedsAfterTransientFailure(t *testing.T) {
	cfg := RetryConfig{MaxRetries: 3, RetryDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}

	calls := 0
	result, err := WithRetry(context.Background(), "test", cfg, func() (string, error) {
		calls++
		if calls < 3 {
			return "", &APIError{StatusCode: 503, Message: "overloaded"}
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("WithRetry: %v", err)
	}
	if result != "ok" || calls != 3 {
		t.Errorf("result = %q, calls = %d", result, calls)
	}
}

func TestWithRetryStopsOnNonRetryable(t *testing.T) {
	cfg := RetryConfig{MaxRetries: 3, RetryDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}

	permanent := errors.New("invalid api key")
	calls := 0
	_, err := WithRetry(context.Background(), "test", cfg, func() (string, error) {
		calls++
		return "", permanent
	})
	if !errors.Is(err, permanent) {
		t.Errorf("err = %v, want permanent error", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (no retry on permanent errors)", calls)
	}
}

func TestWithRetryExhaustsBudget(t *testing.T) {
	cfg := RetryConfig{MaxRetries: 2, RetryDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}

	calls := 0
	_, err := WithRetry(context.Background(), "test", cfg, func() (string, error) {
		calls++
		return "", &APIError{StatusCode: 429, Message: "rate limited"}
	})
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if calls != 3 { // initial + 2 retries
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestWithRetryHonorsContext(t *testing.T) {
	cfg := RetryConfig{MaxRetries: 5, RetryDelay: 50 * time.Millisecond, MaxDelay: time.Second}

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := WithRetry(ctx, "test", cfg, func() (string, error) {
		calls++
		return "", &APIError{StatusCode: 503, Message: "down"}
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls > 2 {
		t.Errorf("calls = %d, retries continued past cancellation", calls)
	}
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"deadline", context.DeadlineExceeded, true},
		{"api 429", &APIError{StatusCode: 429}, true},
		{"api 503", &APIError{StatusCode: 503}, true},
		{"api 400", &APIError{StatusCode: 400}, false},
		{"rate limit text", errors.New("Rate limit exceeded"), true},
		{"connection refused", errors.New("dial tcp: connection refused"), true},
		{"auth failure", errors.New("invalid api key"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryableError(tt.err); got != tt.want {
				t.Errorf("IsRetryableError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
