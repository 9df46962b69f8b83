package llm

import (
	"context"

	"atelier/internal/config"
	"atelier/internal/logging"
)

// NewFromConfig builds the prioritized fallback chain from configuration.
// Providers without credentials are skipped; ErrNoClients is returned when
// nothing usable remains.
func NewFromConfig(ctx context.Context, cfg *config.Config) (*FallbackClient, error) {
	opts := Options{
		Temperature:     cfg.Model.Temperature,
		MaxOutputTokens: cfg.Model.MaxOutputTokens,
	}

	var clients []Client
	for _, provider := range cfg.API.ConfiguredProviders() {
		switch provider {
		case "anthropic":
			clients = append(clients, NewAnthropicClient(
				cfg.API.AnthropicKey, cfg.API.AnthropicBaseURL, cfg.Model.Anthropic, opts))
		case "openai":
			clients = append(clients, NewOpenAIClient(
				cfg.API.OpenAIKey, cfg.API.OpenAIBaseURL, cfg.Model.OpenAI, opts))
		case "gemini":
			client, err := NewGeminiClient(ctx, cfg.API.GeminiKey, cfg.Model.Gemini, opts)
			if err != nil {
				logging.Warn("skipping gemini backend", "error", err.Error())
				continue
			}
			clients = append(clients, client)
		case "ollama":
			client, err := NewOllamaClient(OllamaConfig{
				BaseURL:     cfg.API.OllamaBaseURL,
				APIKey:      cfg.API.OllamaKey,
				Model:       cfg.Model.Ollama,
				HTTPTimeout: cfg.API.Retry.HTTPTimeout,
			}, opts)
			if err != nil {
				logging.Warn("skipping ollama backend", "error", err.Error())
				continue
			}
			clients = append(clients, client)
		default:
			logging.Warn("unknown provider in priority list", "provider", provider)
		}
	}

	retry := RetryConfig{
		MaxRetries: cfg.API.Retry.MaxRetries,
		RetryDelay: cfg.API.Retry.RetryDelay,
		MaxDelay:   30 * cfg.API.Retry.RetryDelay,
	}
	if retry.MaxRetries == 0 {
		retry = DefaultRetryConfig()
	}

	return NewFallbackClient(clients, retry)
}
