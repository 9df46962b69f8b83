package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"atelier/internal/config"
	"atelier/internal/llm"
	"atelier/internal/logging"
	"atelier/internal/tools"
)

// resumeTurns is the turn budget after an approval round-trip.
const resumeTurns = 3

const correctionMessage = `[Response was not valid JSON. Reply with a single JSON object: either {"thought": "...", "tool": "...", "args": {...}} or {"thought": "...", "reply": "..."}]`

// Runner drives the orchestration loop.
type Runner struct {
	llm      llm.Client
	registry *tools.Registry
	prompts  *PromptBuilder
}

// NewRunner creates a runner. client may be nil; Run then fails with
// no_llm_configured.
func NewRunner(client llm.Client, registry *tools.Registry, prompts *PromptBuilder) *Runner {
	return &Runner{llm: client, registry: registry, prompts: prompts}
}

// Run executes the loop until the model replies, a mutating tool needs
// approval, or a budget runs out. The returned Result always carries
// the updated transcript, including on classified errors.
func (r *Runner) Run(ctx context.Context, msgs []Message, actx Context) (*Result, error) {
	if r.llm == nil {
		return &Result{Messages: msgs, State: StateFailed},
			newError(KindNoLLMConfigured, "no model backend is configured", nil)
	}

	maxTurns := actx.MaxTurns
	if maxTurns <= 0 {
		maxTurns = config.DefaultMaxTurns
	}
	maxCorrections := actx.MaxCorrections
	if maxCorrections <= 0 {
		maxCorrections = config.DefaultMaxCorrections
	}
	timeout := actx.Timeout
	if timeout <= 0 {
		timeout = config.DefaultAgentTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	transcript := append([]Message(nil), msgs...)
	system := r.prompts.System(ctx, transcript, actx)

	corrections := 0
	for turn := 0; turn < maxTurns; turn++ {
		if err := ctx.Err(); err != nil {
			return &Result{Messages: transcript, State: StateFailed},
				newError(KindTimeout, "conversation deadline exceeded", err)
		}

		logging.Debug("agent state", "state", StateAwaitingModel, "turn", turn)
		raw, err := r.llm.Generate(ctx, llm.Request{
			System:   system,
			Messages: requestMessages(transcript),
		})
		if err != nil {
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return &Result{Messages: transcript, State: StateFailed},
					newError(KindTimeout, "conversation deadline exceeded", err)
			}
			return &Result{Messages: transcript, State: StateFailed},
				newError(KindLLMUnavailable, "all model backends failed", err)
		}

		decision, perr := ParseDecision(raw)
		if perr != nil {
			if !looksStructured(raw) {
				// Plain prose: take it as the reply rather than failing.
				return r.done(transcript, clamp(strings.TrimSpace(raw), 1000)), nil
			}
			corrections++
			logging.Warn("unparseable model output", "corrections", corrections)
			if corrections > maxCorrections {
				return &Result{Messages: transcript, State: StateFailed},
					newError(KindMalformedModelOutput, "model kept producing unparseable output", perr)
			}
			transcript = append(transcript, Message{Role: "system", Content: correctionMessage})
			turn-- // a correction re-prompts without spending a turn
			continue
		}

		if decision.Tool == "" {
			return r.done(transcript, decision.Reply), nil
		}

		tool, ok := r.registry.Get(decision.Tool)
		if !ok {
			transcript = append(transcript, Message{
				Role:    "system",
				Content: fmt.Sprintf("[Invalid tool: %s. Valid: %s]", decision.Tool, strings.Join(r.registry.Names(), ", ")),
			})
			continue
		}

		if verr := tool.Validate(decision.Args); verr != nil {
			// Includes blocked commands: they fail closed here and
			// never reach the approval stage.
			transcript = appendToolResult(transcript, decision.Tool, tools.NewErrorResult(verr.Error()))
			continue
		}

		if tool.Mutating() && !actx.Autonomous {
			preview, ok := r.preview(ctx, tool, decision.Args, &transcript)
			if !ok {
				continue
			}
			pending := &PendingApproval{
				ID:      uuid.NewString(),
				Tool:    decision.Tool,
				Args:    decision.Args,
				Preview: preview,
			}
			logging.Info("agent state", "state", StateAwaitingApproval, "tool", decision.Tool, "id", pending.ID)
			return &Result{Messages: transcript, Pending: pending, State: StateAwaitingApproval}, nil
		}

		logging.Debug("agent state", "state", StateExecutingTool, "tool", decision.Tool)
		result := r.execute(ctx, tool, decision.Args, transcript)
		transcript = appendToolResult(transcript, decision.Tool, result)
	}

	return r.done(transcript, "I hit the turn limit. Please try a shorter conversation or rephrase."), nil
}

// Resume applies the user's verdict on a pending approval and picks the
// loop back up with a reduced turn budget. It is stateless: everything
// needed travels in msgs and pending.
func (r *Runner) Resume(ctx context.Context, msgs []Message, actx Context, pending *PendingApproval, approved bool) (*Result, error) {
	if pending == nil {
		return r.Run(ctx, msgs, actx)
	}

	transcript := append([]Message(nil), msgs...)

	if !approved {
		transcript = append(transcript, Message{
			Role:    "system",
			Content: fmt.Sprintf("[User declined %s. Do not retry it; adjust your approach or ask.]", pending.Tool),
		})
	} else {
		tool, ok := r.registry.Get(pending.Tool)
		var result tools.ToolResult
		if !ok {
			result = tools.NewErrorResult(fmt.Sprintf("unknown tool: %s", pending.Tool))
		} else {
			// Execution re-validates on its own (edit drift, command
			// blocklist), so a stale approval cannot slip through.
			result = r.execute(ctx, tool, pending.Args, transcript)
		}
		transcript = append(transcript, Message{
			Role:    "system",
			Content: fmt.Sprintf("[User approved %s. Result]: %s", pending.Tool, result.Text()),
		})
	}

	resumed := actx
	resumed.MaxTurns = resumeTurns
	return r.Run(ctx, transcript, resumed)
}

// preview computes the approval preview. A preview failure becomes a
// failed tool result in the transcript and reports ok=false.
func (r *Runner) preview(ctx context.Context, tool tools.Tool, args map[string]any, transcript *[]Message) (string, bool) {
	previewer, ok := tool.(tools.Previewer)
	if !ok {
		return "", true
	}
	preview, err := previewer.Preview(ctx, args)
	if err != nil {
		*transcript = appendToolResult(*transcript, tool.Name(), tools.NewErrorResult(err.Error()))
		return "", false
	}
	return preview, true
}

// execute runs a tool call. Failures become failed results; a mutating
// execution is never retried automatically.
func (r *Runner) execute(ctx context.Context, tool tools.Tool, args map[string]any, transcript []Message) tools.ToolResult {
	execCtx := tools.ContextWithConversation(ctx, toConversation(transcript))
	result, err := tool.Execute(execCtx, args)
	if err != nil {
		logging.Error("tool execution failed", "tool", tool.Name(), "error", err)
		return tools.NewErrorResult(err.Error())
	}
	return result
}

// done records the reply in the transcript so a round-tripped Result
// carries the full history, then closes the loop.
func (r *Runner) done(transcript []Message, reply string) *Result {
	logging.Debug("agent state", "state", StateDone)
	transcript = append(transcript, Message{Role: "assistant", Content: reply})
	return &Result{Messages: transcript, Reply: reply, State: StateDone}
}

func appendToolResult(transcript []Message, toolName string, result tools.ToolResult) []Message {
	return append(transcript, Message{
		Role:    "system",
		Content: fmt.Sprintf("[Tool %s result]: %s", toolName, result.Text()),
	})
}

// requestMessages converts the transcript for the model call and adds
// the next-step nudge.
func requestMessages(transcript []Message) []llm.Message {
	out := make([]llm.Message, 0, len(transcript)+1)
	for _, m := range transcript {
		out = append(out, llm.Message{Role: m.Role, Content: m.Content})
	}
	return append(out, llm.Message{Role: "user", Content: "Your next step (JSON only):"})
}

func toConversation(transcript []Message) []tools.ConversationMessage {
	out := make([]tools.ConversationMessage, 0, len(transcript))
	for _, m := range transcript {
		out = append(out, tools.ConversationMessage{Role: m.Role, Content: m.Content})
	}
	return out
}

func clamp(s string, max int) string {
	if len(s) > max {
		return s[:max]
	}
	return s
}
