package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"atelier/internal/config"
	"atelier/internal/logging"
)

var (
	version = "0.1.0"

	workspaceFlag  string
	autonomousFlag bool
	styleFlag      string
	providerFlag   string
	modelFlag      string
	logLevelFlag   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "atelier",
		Short: "Conversational coding assistant with workspace tools",
		Long: `Atelier is an interactive chat assistant that can read, search and
edit the files of a workspace, run commands with your approval, and
generate small web apps from a conversation.`,
		RunE: runChat,
	}

	rootCmd.PersistentFlags().StringVarP(&workspaceFlag, "workspace", "w", "", "workspace root directory (default: current directory)")
	rootCmd.PersistentFlags().BoolVar(&autonomousFlag, "autonomous", false, "execute file edits and commands without asking for approval")
	rootCmd.PersistentFlags().StringVar(&styleFlag, "style", "", "assistant style (e.g. strict)")
	rootCmd.PersistentFlags().StringVar(&providerFlag, "provider", "", "force a single backend (anthropic, openai, gemini, ollama)")
	rootCmd.PersistentFlags().StringVar(&modelFlag, "model", "", "override the model for the chosen backend")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("atelier version %s\n", version)
		},
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if providerFlag != "" {
		cfg.API.Providers = []string{providerFlag}
	}
	if modelFlag != "" && len(cfg.API.Providers) > 0 {
		cfg.Model.SetForProvider(cfg.API.Providers[0], modelFlag)
	}
	if autonomousFlag {
		cfg.Agent.Autonomous = true
	}
	if styleFlag != "" {
		cfg.Agent.Style = styleFlag
	}
	if logLevelFlag != "" {
		cfg.Logging.Level = logLevelFlag
	}

	if err := cfg.Validate(); err != nil {
		if errors.Is(err, config.ErrNoProvider) {
			logging.Warn("starting without a model backend; chat will report it")
		} else {
			return nil, err
		}
	}
	return cfg, nil
}
