package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// ErrUnavailable indicates every configured backend failed after bounded
// retries. The caller should surface it as a service-unavailable condition.
var ErrUnavailable = errors.New("llm unavailable")

// ErrNoClients indicates no backend was configured at all.
var ErrNoClients = errors.New("no llm clients configured")

// APIError represents an API error with HTTP status code.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error %d: %s", e.StatusCode, e.Message)
}

// IsRetryableAPIError returns true if the API error has a retryable status code.
func IsRetryableAPIError(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case 429, 502, 503, 504:
			return true
		}
	}
	return false
}

// IsRetryableError checks if an error is a transient transport failure.
// Uses errors.Is/errors.As for typed errors, with string fallback only for
// untyped errors from third-party SDKs.
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	if IsRetryableAPIError(err) {
		return true
	}

	msg := strings.ToLower(err.Error())
	untyped := []string{
		"rate limit",
		"overloaded",
		"eof",
		"tls handshake",
		"no such host",
		"connection refused",
		"status 429",
		"status 502",
		"status 503",
		"status 504",
	}
	for _, pattern := range untyped {
		if strings.Contains(msg, pattern) {
			return true
		}
	}

	return false
}
