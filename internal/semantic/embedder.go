// Package semantic ranks workspace snippets against the current user
// request using embeddings, to give the model a head start on relevant
// files. The whole layer is optional: no embedder means no snippets.
package semantic

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// Embedder turns texts into vectors.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// GeminiEmbedder generates embeddings through the Gemini API.
type GeminiEmbedder struct {
	client *genai.Client
	model  string
}

// NewGeminiEmbedder creates a new Gemini-backed embedder.
func NewGeminiEmbedder(client *genai.Client, model string) *GeminiEmbedder {
	if model == "" {
		model = "text-embedding-004"
	}
	return &GeminiEmbedder{client: client, model: model}
}

// EmbedBatch generates embeddings for multiple texts, splitting into
// groups of 20 to stay under API limits.
func (e *GeminiEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	const maxBatchSize = 20

	all := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += maxBatchSize {
		end := start + maxBatchSize
		if end > len(texts) {
			end = len(texts)
		}

		select {
		case <-ctx.Done():
			return all, ctx.Err()
		default:
		}

		batch, err := e.embedBatchSingle(ctx, texts[start:end])
		if err != nil {
			return all, fmt.Errorf("embedding batch %d-%d failed: %w", start, end, err)
		}
		all = append(all, batch...)
	}
	return all, nil
}

func (e *GeminiEmbedder) embedBatchSingle(ctx context.Context, texts []string) ([][]float32, error) {
	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = &genai.Content{
			Parts: []*genai.Part{{Text: text}},
		}
	}

	resp, err := e.client.Models.EmbedContent(ctx, e.model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("embedding API error: %w", err)
	}

	embeddings := make([][]float32, len(resp.Embeddings))
	for i, emb := range resp.Embeddings {
		embeddings[i] = emb.Values
	}
	return embeddings, nil
}

// BatchEmbedFunc adapts a function (e.g. the Ollama embed endpoint) to
// the Embedder interface.
type BatchEmbedFunc func(ctx context.Context, texts []string) ([][]float32, error)

func (f BatchEmbedFunc) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return f(ctx, texts)
}
