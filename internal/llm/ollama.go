package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"

	"atelier/internal/logging"
)

// OllamaConfig holds configuration for the local Ollama backend.
type OllamaConfig struct {
	BaseURL     string // Default: "http://localhost:11434"
	APIKey      string // Optional, for remote Ollama servers with auth
	Model       string // e.g., "llama3.1", "qwen2.5-coder"
	HTTPTimeout time.Duration
}

// OllamaClient is the local inference backend.
type OllamaClient struct {
	client *api.Client
	config OllamaConfig
	opts   Options
}

// authTransport adds an Authorization header to HTTP requests.
type authTransport struct {
	base   http.RoundTripper
	apiKey string
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	reqClone := req.Clone(req.Context())
	reqClone.Header.Set("Authorization", "Bearer "+t.apiKey)
	return t.base.RoundTrip(reqClone)
}

// NewOllamaClient creates a new Ollama API client.
func NewOllamaClient(config OllamaConfig, opts Options) (*OllamaClient, error) {
	if config.Model == "" {
		return nil, fmt.Errorf("model name is required")
	}
	if config.BaseURL == "" {
		config.BaseURL = "http://localhost:11434"
	}
	if config.HTTPTimeout == 0 {
		config.HTTPTimeout = 120 * time.Second
	}

	baseURL, err := url.Parse(config.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid BaseURL: %w", err)
	}

	if baseURL.Scheme == "http" {
		host := baseURL.Hostname()
		if host != "localhost" && host != "127.0.0.1" && host != "::1" {
			logging.Warn("Ollama connection uses unencrypted HTTP to remote host",
				"host", host)
		}
	}

	httpClient := &http.Client{Timeout: config.HTTPTimeout}
	if config.APIKey != "" {
		httpClient.Transport = &authTransport{
			base:   http.DefaultTransport,
			apiKey: config.APIKey,
		}
	}

	return &OllamaClient{
		client: api.NewClient(baseURL, httpClient),
		config: config,
		opts:   opts,
	}, nil
}

func (c *OllamaClient) Name() string {
	return "ollama"
}

func (c *OllamaClient) Generate(ctx context.Context, req Request) (string, error) {
	messages := make([]api.Message, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, api.Message{Role: "system", Content: req.System})
	}
	for _, msg := range req.Messages {
		role := msg.Role
		if role == "tool" {
			role = "user"
		}
		messages = append(messages, api.Message{Role: role, Content: msg.Content})
	}

	options := map[string]any{
		"temperature": c.opts.Temperature,
	}
	if c.opts.MaxOutputTokens > 0 {
		options["num_predict"] = c.opts.MaxOutputTokens
	}

	chatReq := &api.ChatRequest{
		Model:    c.config.Model,
		Messages: messages,
		Stream:   ptr(false),
		Options:  options,
	}

	var sb strings.Builder
	err := c.client.Chat(ctx, chatReq, func(resp api.ChatResponse) error {
		sb.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama: %w", err)
	}

	return sb.String(), nil
}

// Embed generates embeddings for the given inputs using the named model.
// Used by the semantic snippet augmentation; chat and embedding share one
// server connection.
func (c *OllamaClient) Embed(ctx context.Context, model string, inputs []string) ([][]float32, error) {
	if model == "" {
		model = "nomic-embed-text"
	}

	resp, err := c.client.Embed(ctx, &api.EmbedRequest{
		Model: model,
		Input: inputs,
	})
	if err != nil {
		return nil, fmt.Errorf("ollama embed: %w", err)
	}
	return resp.Embeddings, nil
}

func ptr[T any](v T) *T {
	return &v
}
