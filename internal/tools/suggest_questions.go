package tools

import (
	"context"
	"fmt"
	"strings"

	"atelier/internal/builder"
	"atelier/internal/llm"
)

// SuggestQuestionsTool proposes follow-up questions that clarify the
// app idea being discussed. It reads the running conversation from the
// execution context.
type SuggestQuestionsTool struct {
	builder *builder.Service
}

// NewSuggestQuestionsTool creates a new SuggestQuestionsTool.
func NewSuggestQuestionsTool(b *builder.Service) *SuggestQuestionsTool {
	return &SuggestQuestionsTool{builder: b}
}

func (t *SuggestQuestionsTool) Name() string {
	return "suggest_questions"
}

func (t *SuggestQuestionsTool) Description() string {
	return "Suggest short follow-up questions to clarify what the user wants to build"
}

func (t *SuggestQuestionsTool) Parameters() []Param {
	return []Param{
		{Name: "max_questions", Type: "integer", Description: "How many questions to suggest (default 2)", Required: false},
	}
}

func (t *SuggestQuestionsTool) Mutating() bool {
	return false
}

func (t *SuggestQuestionsTool) Validate(args map[string]any) error {
	if _, present := args["max_questions"]; present {
		if n, ok := GetInt(args, "max_questions"); !ok || n < 1 {
			return NewValidationError("max_questions", "must be a positive integer")
		}
	}
	return nil
}

func (t *SuggestQuestionsTool) Execute(ctx context.Context, args map[string]any) (ToolResult, error) {
	max := GetIntDefault(args, "max_questions", 2)
	msgs := conversationAsLLM(ctx)

	questions := t.builder.SuggestQuestions(ctx, msgs, max)
	var b strings.Builder
	for i, q := range questions {
		fmt.Fprintf(&b, "%d. %s\n", i+1, q)
	}
	return NewSuccessResultWithData(strings.TrimRight(b.String(), "\n"), questions), nil
}

// conversationAsLLM converts the context transcript for the builder.
func conversationAsLLM(ctx context.Context) []llm.Message {
	conv := ConversationFromContext(ctx)
	msgs := make([]llm.Message, 0, len(conv))
	for _, m := range conv {
		msgs = append(msgs, llm.Message{Role: m.Role, Content: m.Content})
	}
	return msgs
}
