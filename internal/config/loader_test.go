package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Agent.MaxTurns != DefaultMaxTurns {
		t.Errorf("MaxTurns = %d, want %d", cfg.Agent.MaxTurns, DefaultMaxTurns)
	}
	if cfg.Agent.Timeout != DefaultAgentTimeout {
		t.Errorf("Timeout = %v, want %v", cfg.Agent.Timeout, DefaultAgentTimeout)
	}
	if cfg.Tools.TerminalTimeout != 60*time.Second {
		t.Errorf("TerminalTimeout = %v, want 60s", cfg.Tools.TerminalTimeout)
	}
	if cfg.API.OllamaBaseURL != DefaultOllamaBaseURL {
		t.Errorf("OllamaBaseURL = %q, want %q", cfg.API.OllamaBaseURL, DefaultOllamaBaseURL)
	}
	if len(cfg.API.Providers) == 0 {
		t.Error("default provider priority list is empty")
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
api:
  anthropic_key: test-key
  providers: [anthropic, ollama]
agent:
  max_turns: 8
  style: strict
workspace:
  allowed_roots:
    - /srv/workspaces
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg := DefaultConfig()
	if err := loadFromFile(cfg, path); err != nil {
		t.Fatalf("loadFromFile: %v", err)
	}

	if cfg.API.AnthropicKey != "test-key" {
		t.Errorf("AnthropicKey = %q, want test-key", cfg.API.AnthropicKey)
	}
	if cfg.Agent.MaxTurns != 8 {
		t.Errorf("MaxTurns = %d, want 8", cfg.Agent.MaxTurns)
	}
	if cfg.Agent.Style != "strict" {
		t.Errorf("Style = %q, want strict", cfg.Agent.Style)
	}
	if len(cfg.Workspace.AllowedRoots) != 1 || cfg.Workspace.AllowedRoots[0] != "/srv/workspaces" {
		t.Errorf("AllowedRoots = %v", cfg.Workspace.AllowedRoots)
	}
	// Unset fields keep their defaults
	if cfg.Tools.StdoutLimit != DefaultStdoutLimit {
		t.Errorf("StdoutLimit = %d, want default %d", cfg.Tools.StdoutLimit, DefaultStdoutLimit)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "env-key")
	t.Setenv("ATELIER_PROVIDERS", "ollama, anthropic")
	t.Setenv("ATELIER_GUIDANCE_URL", "http://guidance.local")

	cfg := DefaultConfig()
	loadFromEnv(cfg)

	if cfg.API.AnthropicKey != "env-key" {
		t.Errorf("AnthropicKey = %q, want env-key", cfg.API.AnthropicKey)
	}
	if len(cfg.API.Providers) != 2 || cfg.API.Providers[0] != "ollama" || cfg.API.Providers[1] != "anthropic" {
		t.Errorf("Providers = %v", cfg.API.Providers)
	}
	if cfg.Guidance.URL != "http://guidance.local" {
		t.Errorf("Guidance.URL = %q", cfg.Guidance.URL)
	}
}

func TestConfiguredProviders(t *testing.T) {
	api := APIConfig{
		Providers:    []string{"anthropic", "openai", "gemini", "ollama"},
		AnthropicKey: "k",
	}
	got := api.ConfiguredProviders()
	// anthropic has a key; ollama never needs one
	if len(got) != 2 || got[0] != "anthropic" || got[1] != "ollama" {
		t.Errorf("ConfiguredProviders = %v, want [anthropic ollama]", got)
	}
}
