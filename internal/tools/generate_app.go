package tools

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"atelier/internal/builder"
)

// GenerateAppTool runs the full conversation-to-app pipeline and returns the
// proposed bundle. It never writes to the workspace; persisting the files is
// the caller's job.
type GenerateAppTool struct {
	builder *builder.Service
}

// NewGenerateAppTool creates a new GenerateAppTool.
func NewGenerateAppTool(b *builder.Service) *GenerateAppTool {
	return &GenerateAppTool{builder: b}
}

func (t *GenerateAppTool) Name() string {
	return "generate_app"
}

func (t *GenerateAppTool) Description() string {
	return "Generate a small web app (index.html, styles.css, app.js) from the conversation so far"
}

func (t *GenerateAppTool) Parameters() []Param {
	return nil
}

// Mutating returns false: the bundle is returned as data, nothing is written.
func (t *GenerateAppTool) Mutating() bool {
	return false
}

func (t *GenerateAppTool) Validate(args map[string]any) error {
	return nil
}

func (t *GenerateAppTool) Execute(ctx context.Context, args map[string]any) (ToolResult, error) {
	msgs := conversationAsLLM(ctx)

	result := t.builder.GenerateApp(ctx, msgs)

	names := make([]string, 0, len(result.Files))
	for name := range result.Files {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	fmt.Fprintf(&b, "generated %s (%s)\n", result.Spec.Name, result.Spec.Type)
	fmt.Fprintf(&b, "files: %s\n", strings.Join(names, ", "))
	if len(result.Spec.Features) > 0 {
		fmt.Fprintf(&b, "features: %s\n", strings.Join(result.Spec.Features, ", "))
	}
	if result.Summary != "" {
		fmt.Fprintf(&b, "from: %s", result.Summary)
	}
	return NewSuccessResultWithData(strings.TrimRight(b.String(), "\n"), result), nil
}
