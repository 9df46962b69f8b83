package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GeminiClient is the hosted Google Gemini backend.
type GeminiClient struct {
	client *genai.Client
	model  string
	opts   Options
}

// NewGeminiClient creates a client for the Gemini API.
func NewGeminiClient(ctx context.Context, apiKey, model string, opts Options) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Backend: genai.BackendGeminiAPI,
		APIKey:  apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}

	return &GeminiClient{
		client: client,
		model:  model,
		opts:   opts,
	}, nil
}

// Raw returns the underlying genai client, shared with the embedding layer.
func (c *GeminiClient) Raw() *genai.Client {
	return c.client
}

func (c *GeminiClient) Name() string {
	return "gemini"
}

func (c *GeminiClient) Generate(ctx context.Context, req Request) (string, error) {
	contents := make([]*genai.Content, 0, len(req.Messages))
	for _, msg := range req.Messages {
		role := genai.RoleUser
		if msg.Role == "assistant" {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(msg.Content, genai.Role(role)))
	}

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(c.opts.Temperature),
	}
	if c.opts.MaxOutputTokens > 0 {
		config.MaxOutputTokens = c.opts.MaxOutputTokens
	}
	if req.System != "" {
		config.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		return "", fmt.Errorf("gemini: %w", err)
	}

	return resp.Text(), nil
}
