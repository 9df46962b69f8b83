package llm

import "context"

// Message is one flattened conversation turn sent to a backend.
type Message struct {
	Role    string // "system", "user", "assistant", "tool"
	Content string
}

// Request is a fully rendered completion request: the system block plus the
// serialized transcript. Backends map roles onto their native wire format.
type Request struct {
	System   string
	Messages []Message
}

// Client is the uniform adapter over hosted and local LLM backends. A call
// returns exactly one completion string; timeouts are applied through ctx.
type Client interface {
	// Name identifies the backend ("anthropic", "openai", "gemini", "ollama").
	Name() string

	// Generate performs one completion call.
	Generate(ctx context.Context, req Request) (string, error)
}

// Options carries generation settings shared by all backends.
type Options struct {
	Temperature     float32
	MaxOutputTokens int32
}
