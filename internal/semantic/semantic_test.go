package semantic

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"atelier/internal/workspace"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float32
	}{
		{"identical", []float32{1, 0, 1}, []float32{1, 0, 1}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"length mismatch", []float32{1, 0}, []float32{1}, 0},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0},
		{"empty", nil, nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			if math.Abs(float64(got-tt.want)) > 1e-6 {
				t.Errorf("CosineSimilarity = %f, want %f", got, tt.want)
			}
		})
	}
}

// keywordEmbedder gives texts containing the marker a distinct direction.
func keywordEmbedder(marker string) BatchEmbedFunc {
	return func(ctx context.Context, texts []string) ([][]float32, error) {
		out := make([][]float32, len(texts))
		for i, text := range texts {
			if strings.Contains(strings.ToLower(text), marker) {
				out[i] = []float32{1, 0}
			} else {
				out[i] = []float32{0, 1}
			}
		}
		return out, nil
	}
}

func newTestWorkspace(t *testing.T, files map[string]string) *workspace.Accessor {
	t.Helper()
	root := t.TempDir()
	resolved, err := filepath.EvalSymlinks(root)
	if err != nil {
		t.Fatal(err)
	}
	for rel, content := range files {
		abs := filepath.Join(resolved, rel)
		if err := os.MkdirAll(filepath.Dir(abs), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(abs, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	ws, err := workspace.New(resolved, nil)
	if err != nil {
		t.Fatal(err)
	}
	return ws
}

func TestRankerPrefersMatchingFiles(t *testing.T) {
	ws := newTestWorkspace(t, map[string]string{
		"auth.go":   "package auth // login token handling",
		"render.go": "package render // drawing",
		"math.go":   "package math // numbers",
	})
	r := NewRanker(keywordEmbedder("login"), ws, 1)

	snippets, err := r.Rank(context.Background(), "fix the login flow")
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}
	if len(snippets) != 1 || snippets[0].Path != "auth.go" {
		t.Errorf("snippets = %+v, want auth.go first", snippets)
	}
}

func TestRankerDegradesToEmpty(t *testing.T) {
	ws := newTestWorkspace(t, map[string]string{"a.go": "package a"})

	t.Run("nil embedder", func(t *testing.T) {
		if got := NewRanker(nil, ws, 3).Block(context.Background(), "query"); got != "" {
			t.Errorf("Block = %q", got)
		}
	})
	t.Run("embedder failure", func(t *testing.T) {
		failing := BatchEmbedFunc(func(ctx context.Context, texts []string) ([][]float32, error) {
			return nil, errors.New("connection refused")
		})
		if got := NewRanker(failing, ws, 3).Block(context.Background(), "query"); got != "" {
			t.Errorf("Block = %q", got)
		}
	})
	t.Run("unconfigured workspace", func(t *testing.T) {
		empty, _ := workspace.New("", nil)
		if got := NewRanker(keywordEmbedder("x"), empty, 3).Block(context.Background(), "query"); got != "" {
			t.Errorf("Block = %q", got)
		}
	})
	t.Run("empty query", func(t *testing.T) {
		if got := NewRanker(keywordEmbedder("x"), ws, 3).Block(context.Background(), "  "); got != "" {
			t.Errorf("Block = %q", got)
		}
	})
}

func TestRankerBlockFormat(t *testing.T) {
	ws := newTestWorkspace(t, map[string]string{"auth.go": "package auth // login"})
	r := NewRanker(keywordEmbedder("login"), ws, 3)

	block := r.Block(context.Background(), "login")
	if !strings.HasPrefix(block, "Possibly relevant files:") {
		t.Errorf("block = %q", block)
	}
	if !strings.Contains(block, "--- auth.go") {
		t.Errorf("block = %q", block)
	}
}
