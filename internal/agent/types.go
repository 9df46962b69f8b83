// Package agent runs the chat orchestration loop: prompt the model,
// parse its decision, execute tools, and gate mutating actions behind
// human approval.
package agent

import (
	"errors"
	"fmt"
	"time"

	"atelier/internal/workspace"
)

// State is the loop's observable phase, mostly for logging and the UI.
type State string

const (
	StateAwaitingModel    State = "AWAITING_MODEL"
	StateExecutingTool    State = "EXECUTING_TOOL"
	StateAwaitingApproval State = "AWAITING_APPROVAL"
	StateDone             State = "DONE"
	StateFailed           State = "FAILED"
)

// ErrorKind classifies loop failures for callers.
type ErrorKind string

const (
	KindNoLLMConfigured      ErrorKind = "no_llm_configured"
	KindLLMUnavailable       ErrorKind = "llm_unavailable"
	KindMalformedModelOutput ErrorKind = "malformed_model_output"
	KindWorkspaceNotAllowed  ErrorKind = "workspace_not_allowed"
	KindTimeout              ErrorKind = "agent_timeout"
)

// Error is a classified loop failure.
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// newError builds a classified error.
func newError(kind ErrorKind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf returns the classification of err, or "" for foreign errors.
func KindOf(err error) ErrorKind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return ""
}

// Context carries the per-conversation settings of a loop run.
type Context struct {
	// Workspace is the project accessor; may be unconfigured.
	Workspace *workspace.Accessor

	// Autonomous executes mutating tools without approval.
	Autonomous bool

	// Style selects optional prompt instructions ("strict" is recognized).
	Style string

	// MaxTurns bounds model calls per run. Zero means the default.
	MaxTurns int

	// MaxCorrections bounds re-prompts after unparseable model output.
	MaxCorrections int

	// Timeout bounds the whole run, distinct from per-call timeouts.
	Timeout time.Duration
}

// PendingApproval describes a mutating tool call waiting for the user.
// It is self-contained: the loop holds no server-side state while the
// user decides.
type PendingApproval struct {
	ID      string         `json:"id"`
	Tool    string         `json:"tool"`
	Args    map[string]any `json:"args"`
	Preview string         `json:"preview"`
}

// Result is the outcome of a Run or Resume call. Exactly one of Reply
// and Pending is meaningful: Pending set means the loop stopped at the
// approval gate.
type Result struct {
	Messages []Message
	Reply    string
	Pending  *PendingApproval
	State    State
}

// Message is one transcript entry. Roles are "system", "user",
// "assistant" and "tool".
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
