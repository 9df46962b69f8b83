package tools

import (
	"context"
	"fmt"
	"strings"

	"atelier/internal/llm"
)

// SuggestFixTool asks the model for a concrete fix to an error message,
// optionally grounded in a code excerpt.
type SuggestFixTool struct {
	llm llm.Client
}

// NewSuggestFixTool creates a new SuggestFixTool.
func NewSuggestFixTool(client llm.Client) *SuggestFixTool {
	return &SuggestFixTool{llm: client}
}

func (t *SuggestFixTool) Name() string {
	return "suggest_fix"
}

func (t *SuggestFixTool) Description() string {
	return "Propose a concrete fix for an error message, optionally using a code excerpt for context"
}

func (t *SuggestFixTool) Parameters() []Param {
	return []Param{
		{Name: "error", Type: "string", Description: "The error message or stack trace", Required: true},
		{Name: "code", Type: "string", Description: "Relevant code excerpt", Required: false},
	}
}

func (t *SuggestFixTool) Mutating() bool {
	return false
}

func (t *SuggestFixTool) Validate(args map[string]any) error {
	errMsg, ok := GetString(args, "error")
	if !ok || strings.TrimSpace(errMsg) == "" {
		return NewValidationError("error", "required")
	}
	return nil
}

func (t *SuggestFixTool) Execute(ctx context.Context, args map[string]any) (ToolResult, error) {
	errMsg := GetStringDefault(args, "error", "")
	code := GetStringDefault(args, "code", "")

	var prompt strings.Builder
	prompt.WriteString("Suggest a concrete fix for this error. Reply with a short explanation followed by the corrected code in a fenced block.\n\nError:\n")
	prompt.WriteString(errMsg)
	if code != "" {
		prompt.WriteString("\n\nCode:\n")
		prompt.WriteString(code)
	}

	out, err := t.llm.Generate(ctx, llm.Request{
		Messages: []llm.Message{{Role: "user", Content: prompt.String()}},
	})
	if err != nil {
		return NewErrorResult(fmt.Sprintf("could not reach a model for a fix suggestion: %v", err)), nil
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return NewErrorResult("model returned an empty suggestion"), nil
	}
	if code := extractFencedCode(out); code != "" {
		return NewSuccessResult(code), nil
	}
	return NewSuccessResult(out), nil
}

// extractFencedCode returns the contents of the first ``` fenced block,
// with any language tag stripped. Empty when the text has no fence.
func extractFencedCode(s string) string {
	start := strings.Index(s, "```")
	if start < 0 {
		return ""
	}
	rest := s[start+3:]
	end := strings.Index(rest, "```")
	if end < 0 {
		return ""
	}
	block := rest[:end]
	// First line is the language tag when the fence opens with one.
	if nl := strings.IndexByte(block, '\n'); nl >= 0 {
		block = block[nl+1:]
	} else {
		return ""
	}
	return strings.TrimSpace(block)
}
