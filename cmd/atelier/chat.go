package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"atelier/internal/agent"
	"atelier/internal/builder"
	"atelier/internal/config"
	"atelier/internal/guidance"
	"atelier/internal/llm"
	"atelier/internal/logging"
	"atelier/internal/security"
	"atelier/internal/semantic"
	"atelier/internal/tools"
	"atelier/internal/workspace"
)

var (
	promptStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6366F1")).Bold(true)
	assistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#E8E8ED"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
	approvalStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B")).Bold(true)
	previewStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#F59E0B")).
			Padding(0, 1)
	dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF"))
)

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if dir, dirErr := os.UserConfigDir(); dirErr == nil {
		if logErr := logging.EnableFileLogging(filepath.Join(dir, "atelier"), logging.ParseLevel(cfg.Logging.Level)); logErr != nil {
			fmt.Fprintln(os.Stderr, "warning: file logging disabled:", logErr)
		}
	}
	defer logging.Close()

	root := workspaceFlag
	if root == "" {
		root, err = os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get working directory: %w", err)
		}
	}
	ws, err := workspace.New(root, cfg.Workspace.AllowedRoots)
	if err != nil {
		if errors.Is(err, workspace.ErrRootNotAllowed) {
			return fmt.Errorf("workspace_not_allowed: %s is not within the configured allowed roots", root)
		}
		return fmt.Errorf("failed to open workspace: %w", err)
	}

	ctx := context.Background()
	var client llm.Client
	if fc, llmErr := llm.NewFromConfig(ctx, cfg); llmErr != nil {
		if !errors.Is(llmErr, llm.ErrNoClients) {
			return llmErr
		}
		logging.Warn("no model backend available")
	} else {
		client = fc
	}

	runner := buildRunner(ctx, cfg, client, ws)

	fmt.Println(dimStyle.Render(fmt.Sprintf("atelier %s · workspace: %s", version, displayRoot(ws))))
	if client != nil {
		fmt.Println(dimStyle.Render("backends: " + strings.Join(backendNames(client), ", ")))
	}
	fmt.Println(dimStyle.Render(`type a message, or "exit" to quit`))

	actx := agent.Context{
		Workspace:      ws,
		Autonomous:     cfg.Agent.Autonomous,
		Style:          cfg.Agent.Style,
		MaxTurns:       cfg.Agent.MaxTurns,
		MaxCorrections: cfg.Agent.MaxCorrections,
		Timeout:        cfg.Agent.Timeout,
	}

	reader := bufio.NewReader(os.Stdin)
	var transcript []agent.Message

	for {
		fmt.Print(promptStyle.Render("you> ") + " ")
		line, err := reader.ReadString('\n')
		if err != nil {
			fmt.Println()
			return nil
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			return nil
		}

		transcript = append(transcript, agent.Message{Role: "user", Content: line})
		result, err := runner.Run(ctx, transcript, actx)
		transcript = handleResult(ctx, reader, runner, actx, result, err)
	}
}

// handleResult prints the outcome and walks approval round-trips until
// the turn settles into a reply or an error.
func handleResult(ctx context.Context, reader *bufio.Reader, runner *agent.Runner, actx agent.Context, result *agent.Result, err error) []agent.Message {
	for {
		if err != nil {
			fmt.Println(errorStyle.Render(describeError(err)))
			if result != nil {
				return result.Messages
			}
			return nil
		}

		if result.Pending == nil {
			if result.Reply != "" {
				fmt.Println(assistantStyle.Render(result.Reply))
			}
			return result.Messages
		}

		pending := result.Pending
		fmt.Println(approvalStyle.Render(fmt.Sprintf("The assistant wants to run %s:", pending.Tool)))
		if pending.Preview != "" {
			fmt.Println(previewStyle.Render(pending.Preview))
		}
		fmt.Print(approvalStyle.Render("Apply? [y/N] "))

		answer, readErr := reader.ReadString('\n')
		approved := readErr == nil && strings.EqualFold(strings.TrimSpace(answer), "y")
		if !approved {
			fmt.Println(dimStyle.Render("declined"))
		}

		result, err = runner.Resume(ctx, result.Messages, actx, pending, approved)
	}
}

func describeError(err error) string {
	switch agent.KindOf(err) {
	case agent.KindNoLLMConfigured:
		return "No model backend is configured. Set ANTHROPIC_API_KEY, OPENAI_API_KEY, GEMINI_API_KEY, or run a local Ollama server."
	case agent.KindLLMUnavailable:
		return "All model backends are currently unavailable. Try again in a moment."
	case agent.KindMalformedModelOutput:
		return "The model kept producing unusable output. Try rephrasing your request."
	case agent.KindTimeout:
		return "The request took too long and was cancelled."
	default:
		return err.Error()
	}
}

// buildRunner wires the tool registry, the builder service and the
// optional prompt augmentations.
func buildRunner(ctx context.Context, cfg *config.Config, client llm.Client, ws *workspace.Accessor) *agent.Runner {
	commands := security.NewCommandValidator()
	for _, extra := range cfg.Tools.BlockedCommands {
		commands.AddBlockedSubstring(extra)
	}

	registry := tools.NewDefaultRegistry(tools.Deps{
		Workspace: ws,
		Commands:  commands,
		LLM:       client,
		Builder:   builder.New(client),
		Terminal: tools.TerminalLimits{
			Timeout:     cfg.Tools.TerminalTimeout,
			StdoutLimit: cfg.Tools.StdoutLimit,
			StderrLimit: cfg.Tools.StderrLimit,
		},
	})

	prompts := &agent.PromptBuilder{
		Registry:  registry,
		Workspace: ws,
	}
	if cfg.Guidance.URL != "" {
		prompts.Guidance = guidance.New(cfg.Guidance.URL, cfg.Guidance.Timeout)
	}
	if cfg.Semantic.Enabled {
		if embedder := pickEmbedder(ctx, cfg, client); embedder != nil {
			prompts.Snippets = semantic.NewRanker(embedder, ws, cfg.Semantic.TopK)
		}
	}

	return agent.NewRunner(client, registry, prompts)
}

// pickEmbedder chooses an embedding backend from the configured
// clients: Gemini when available, a local Ollama server otherwise.
func pickEmbedder(ctx context.Context, cfg *config.Config, client llm.Client) semantic.Embedder {
	fallback, ok := client.(*llm.FallbackClient)
	if !ok {
		return nil
	}
	for _, c := range fallback.Clients() {
		switch backend := c.(type) {
		case *llm.GeminiClient:
			return semantic.NewGeminiEmbedder(backend.Raw(), cfg.Semantic.Model)
		case *llm.OllamaClient:
			return semantic.BatchEmbedFunc(func(ctx context.Context, texts []string) ([][]float32, error) {
				return backend.Embed(ctx, "", texts)
			})
		}
	}
	return nil
}

func backendNames(client llm.Client) []string {
	if fallback, ok := client.(*llm.FallbackClient); ok {
		var names []string
		for _, c := range fallback.Clients() {
			names = append(names, c.Name())
		}
		return names
	}
	return []string{client.Name()}
}

func displayRoot(ws *workspace.Accessor) string {
	if !ws.Configured() {
		return "(none)"
	}
	return ws.Root()
}
