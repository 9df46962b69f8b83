package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicClient is the hosted Anthropic backend.
type AnthropicClient struct {
	client *anthropic.Client
	model  string
	opts   Options
}

// NewAnthropicClient creates a client for the Anthropic Messages API.
// baseURL may point at any Anthropic-compatible endpoint; empty uses the default.
func NewAnthropicClient(apiKey, baseURL, model string, opts Options) *AnthropicClient {
	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(baseURL))
	}
	client := anthropic.NewClient(reqOpts...)

	return &AnthropicClient{
		client: &client,
		model:  model,
		opts:   opts,
	}
}

func (c *AnthropicClient) Name() string {
	return "anthropic"
}

func (c *AnthropicClient) Generate(ctx context.Context, req Request) (string, error) {
	maxTokens := int64(c.opts.MaxOutputTokens)
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: maxTokens,
		Messages:  convertAnthropicMessages(req.Messages),
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic: %w", err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if text, ok := block.AsAny().(anthropic.TextBlock); ok {
			sb.WriteString(text.Text)
		}
	}
	return sb.String(), nil
}

// convertAnthropicMessages maps transcript roles onto the Messages API.
// The system role lives in a separate parameter; tool results ride along as
// user messages since this protocol is plain text, not native tool use.
func convertAnthropicMessages(messages []Message) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case "assistant":
			out = append(out, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
		case "system":
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock("[system note] "+msg.Content)))
		default: // user, tool
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		}
	}
	return out
}
