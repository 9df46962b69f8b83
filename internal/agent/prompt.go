package agent

import (
	"context"
	"fmt"
	"strings"

	"atelier/internal/guidance"
	"atelier/internal/semantic"
	"atelier/internal/tools"
	"atelier/internal/workspace"
)

// PromptBuilder assembles the system block for each model call. The
// guidance, workspace and snippet sections are optional and simply
// absent when their source is unavailable.
type PromptBuilder struct {
	Registry  *tools.Registry
	Guidance  *guidance.Client
	Snippets  *semantic.Ranker
	Workspace *workspace.Accessor
}

const strictStyleBlock = `Work in a strict, reasoning-first style: state your reasoning in "thought" before every action, prefer reading before editing, and never guess file contents.`

// System builds the full system block for the given conversation.
func (p *PromptBuilder) System(ctx context.Context, msgs []Message, actx Context) string {
	var b strings.Builder

	b.WriteString("You are a helpful coding and product assistant. You have access to these tools:\n\n")
	b.WriteString(p.toolCatalog())

	b.WriteString("\n\nReply with JSON only. Either:\n")
	b.WriteString(`1) To call a tool: {"thought": "brief reasoning", "tool": "tool_name", "args": {...}}` + "\n")
	b.WriteString(`2) To reply to the user and finish: {"thought": "brief reasoning", "reply": "your reply text"}` + "\n")
	b.WriteString("If you emit both a tool call and a reply, the tool call is taken.\n\nBe concise.")

	if actx.Autonomous {
		b.WriteString(" Autonomous mode: edit_file and run_terminal will run immediately without asking.")
	} else {
		b.WriteString(" For file edits or running commands, use edit_file or run_terminal; the user will approve before they run.")
	}

	if strings.EqualFold(actx.Style, "strict") {
		b.WriteString("\n\n")
		b.WriteString(strictStyleBlock)
	}

	if p.Guidance != nil {
		if block := p.Guidance.Block(ctx); block != "" {
			b.WriteString("\n\n")
			b.WriteString(block)
		}
	}

	if p.Workspace != nil {
		if block := p.Workspace.ContextBlock(lastUserMessage(msgs)); block != "" {
			b.WriteString("\n\n")
			b.WriteString(block)
		}
	}

	if p.Snippets != nil {
		if block := p.Snippets.Block(ctx, lastUserMessage(msgs)); block != "" {
			b.WriteString("\n\n")
			b.WriteString(block)
		}
	}

	return b.String()
}

// toolCatalog lists every registered tool with its parameters.
func (p *PromptBuilder) toolCatalog() string {
	var b strings.Builder
	for _, tool := range p.Registry.List() {
		fmt.Fprintf(&b, "- %s: %s", tool.Name(), tool.Description())
		params := tool.Parameters()
		if len(params) > 0 {
			var parts []string
			for _, param := range params {
				s := fmt.Sprintf("%s (%s", param.Name, param.Type)
				if param.Required {
					s += ", required"
				}
				s += ")"
				parts = append(parts, s)
			}
			fmt.Fprintf(&b, " [args: %s]", strings.Join(parts, ", "))
		}
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}

func lastUserMessage(msgs []Message) string {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == "user" {
			return msgs[i].Content
		}
	}
	return ""
}
