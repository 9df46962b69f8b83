package semantic

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"atelier/internal/logging"
	"atelier/internal/workspace"
)

// Snippet is a ranked workspace excerpt.
type Snippet struct {
	Path    string
	Score   float32
	Content string
}

// Ranker scores workspace file heads against a query.
type Ranker struct {
	embedder Embedder
	ws       *workspace.Accessor
	topK     int
	maxFiles int
}

// NewRanker creates a ranker. embedder may be nil; Block then always
// returns "".
func NewRanker(embedder Embedder, ws *workspace.Accessor, topK int) *Ranker {
	if topK <= 0 {
		topK = 3
	}
	return &Ranker{embedder: embedder, ws: ws, topK: topK, maxFiles: 30}
}

// Rank returns the topK workspace snippets most similar to the query.
func (r *Ranker) Rank(ctx context.Context, query string) ([]Snippet, error) {
	if r.embedder == nil || r.ws == nil || !r.ws.Configured() || strings.TrimSpace(query) == "" {
		return nil, nil
	}

	heads, err := r.ws.FileHeads(r.maxFiles, 2048)
	if err != nil || len(heads) == 0 {
		return nil, err
	}

	texts := make([]string, 0, len(heads)+1)
	texts = append(texts, query)
	for _, h := range heads {
		texts = append(texts, h.Path+"\n"+h.Content)
	}

	vectors, err := r.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d texts", len(vectors), len(texts))
	}

	queryVec := vectors[0]
	snippets := make([]Snippet, 0, len(heads))
	for i, h := range heads {
		snippets = append(snippets, Snippet{
			Path:    h.Path,
			Score:   CosineSimilarity(queryVec, vectors[i+1]),
			Content: h.Content,
		})
	}
	sort.Slice(snippets, func(i, j int) bool { return snippets[i].Score > snippets[j].Score })

	if len(snippets) > r.topK {
		snippets = snippets[:r.topK]
	}
	return snippets, nil
}

// Block formats the ranked snippets for the system prompt. Any failure
// degrades to an empty block; ranking is never worth failing a turn.
func (r *Ranker) Block(ctx context.Context, query string) string {
	snippets, err := r.Rank(ctx, query)
	if err != nil {
		logging.Debug("snippet ranking failed", "error", err)
		return ""
	}
	if len(snippets) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("Possibly relevant files:")
	for _, s := range snippets {
		content := s.Content
		if len(content) > 400 {
			content = content[:400] + "..."
		}
		fmt.Fprintf(&b, "\n--- %s\n%s", s.Path, strings.TrimRight(content, "\n"))
	}
	return b.String()
}
