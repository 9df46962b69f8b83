package llm

import (
	"context"
	"fmt"

	"atelier/internal/logging"
)

// FallbackClient wraps multiple Client instances in priority order and tries
// each on failure, providing automatic failover between providers. Callers
// stay unaware of which concrete backend served a call.
type FallbackClient struct {
	clients []Client
	retry   RetryConfig
}

// NewFallbackClient creates a new FallbackClient with the given clients.
// At least one client must be provided.
func NewFallbackClient(clients []Client, retry RetryConfig) (*FallbackClient, error) {
	if len(clients) == 0 {
		return nil, ErrNoClients
	}
	return &FallbackClient{
		clients: clients,
		retry:   retry,
	}, nil
}

// Name returns the name of the highest-priority backend.
func (fc *FallbackClient) Name() string {
	return fc.clients[0].Name()
}

// Clients returns the backends in priority order.
func (fc *FallbackClient) Clients() []Client {
	return fc.clients
}

// Generate tries each backend in order, applying bounded retry with backoff
// per backend. When every backend is exhausted the error wraps
// ErrUnavailable so callers can classify it.
func (fc *FallbackClient) Generate(ctx context.Context, req Request) (string, error) {
	var lastErr error

	for i, client := range fc.clients {
		result, err := WithRetry(ctx, client.Name(), fc.retry, func() (string, error) {
			return client.Generate(ctx, req)
		})
		if err == nil {
			return result, nil
		}
		lastErr = err

		logging.Warn("backend failed, falling back",
			"index", i,
			"backend", client.Name(),
			"error", err.Error())

		// If the caller's context is gone, trying the next backend is pointless
		if ctx.Err() != nil {
			break
		}
	}

	return "", fmt.Errorf("%w: all backends failed, last error: %v", ErrUnavailable, lastErr)
}
