package tools

import (
	"context"
)

// Param describes a single tool argument for the model-facing catalog.
type Param struct {
	// Name is the argument key in the args map.
	Name string

	// Type is the JSON type: "string", "integer" or "boolean".
	Type string

	// Description is a short human-readable explanation.
	Description string

	// Required indicates whether the argument must be present.
	Required bool
}

// Tool defines the interface for all tools.
type Tool interface {
	// Name returns the unique name of the tool.
	Name() string

	// Description returns a human-readable description.
	Description() string

	// Parameters returns the argument schema for the prompt catalog.
	Parameters() []Param

	// Mutating reports whether executing the tool changes the workspace
	// or runs commands. Mutating tools require approval outside
	// autonomous mode and are never retried automatically.
	Mutating() bool

	// Validate validates the arguments before execution.
	Validate(args map[string]any) error

	// Execute runs the tool with the given arguments.
	Execute(ctx context.Context, args map[string]any) (ToolResult, error)
}

// Previewer is implemented by mutating tools. Preview describes the
// effect of the call without performing it, for the approval prompt.
type Previewer interface {
	Preview(ctx context.Context, args map[string]any) (string, error)
}

// ToolResult represents the result of a tool execution.
type ToolResult struct {
	// Content is the main result content (usually text).
	Content string

	// Data contains structured data if applicable.
	Data any

	// Error contains an error message if the tool failed.
	Error string

	// Success indicates if the tool executed successfully.
	Success bool
}

// NewSuccessResult creates a successful tool result.
func NewSuccessResult(content string) ToolResult {
	return ToolResult{
		Content: content,
		Success: true,
	}
}

// NewSuccessResultWithData creates a successful tool result with additional data.
func NewSuccessResultWithData(content string, data any) ToolResult {
	return ToolResult{
		Content: content,
		Data:    data,
		Success: true,
	}
}

// NewErrorResult creates a failed tool result.
func NewErrorResult(errMsg string) ToolResult {
	return ToolResult{
		Error:   errMsg,
		Success: false,
	}
}

// Text returns the transcript representation of the result. Failed
// results carry the error message so the model can react to it.
func (r ToolResult) Text() string {
	if r.Success {
		return r.Content
	}
	return "error: " + r.Error
}

// ValidationError represents a tool argument validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// NewValidationError creates a new validation error.
func NewValidationError(field, message string) ValidationError {
	return ValidationError{Field: field, Message: message}
}

// GetString extracts a string argument from the args map.
func GetString(args map[string]any, key string) (string, bool) {
	val, ok := args[key]
	if !ok {
		return "", false
	}
	str, ok := val.(string)
	return str, ok
}

// GetStringDefault extracts a string argument with a default value.
func GetStringDefault(args map[string]any, key, defaultVal string) string {
	if val, ok := GetString(args, key); ok {
		return val
	}
	return defaultVal
}

// GetInt extracts an integer argument from the args map.
func GetInt(args map[string]any, key string) (int, bool) {
	val, ok := args[key]
	if !ok {
		return 0, false
	}
	// JSON decoding yields float64 for numbers
	switch v := val.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	}
	return 0, false
}

// GetIntDefault extracts an integer argument with a default value.
func GetIntDefault(args map[string]any, key string, defaultVal int) int {
	if val, ok := GetInt(args, key); ok {
		return val
	}
	return defaultVal
}

// GetBool extracts a boolean argument from the args map.
func GetBool(args map[string]any, key string) (bool, bool) {
	val, ok := args[key]
	if !ok {
		return false, false
	}
	b, ok := val.(bool)
	return b, ok
}

// GetBoolDefault extracts a boolean argument with a default value.
func GetBoolDefault(args map[string]any, key string, defaultVal bool) bool {
	if val, ok := GetBool(args, key); ok {
		return val
	}
	return defaultVal
}

// ConversationMessage is one transcript entry. Tools that synthesize
// from the whole conversation (generate_app, suggest_questions) read
// it from the execution context instead of explicit arguments.
type ConversationMessage struct {
	Role    string
	Content string
}

type conversationKeyType struct{}

// ContextWithConversation attaches the running transcript to the context.
func ContextWithConversation(ctx context.Context, msgs []ConversationMessage) context.Context {
	return context.WithValue(ctx, conversationKeyType{}, msgs)
}

// ConversationFromContext returns the transcript attached to the context,
// or nil when none was attached.
func ConversationFromContext(ctx context.Context) []ConversationMessage {
	msgs, _ := ctx.Value(conversationKeyType{}).([]ConversationMessage)
	return msgs
}
