package config

import "time"

// Config represents the main application configuration.
type Config struct {
	API       APIConfig       `yaml:"api"`
	Model     ModelConfig     `yaml:"model"`
	Agent     AgentConfig     `yaml:"agent"`
	Workspace WorkspaceConfig `yaml:"workspace"`
	Tools     ToolsConfig     `yaml:"tools"`
	Guidance  GuidanceConfig  `yaml:"guidance"`
	Semantic  SemanticConfig  `yaml:"semantic"`
	Logging   LoggingConfig   `yaml:"logging"`

	// Runtime version information
	Version string `yaml:"-"`
}

// APIConfig holds provider credentials and endpoints.
type APIConfig struct {
	AnthropicKey string `yaml:"anthropic_key,omitempty"`
	OpenAIKey    string `yaml:"openai_key,omitempty"`
	GeminiKey    string `yaml:"gemini_key,omitempty"`
	OllamaKey    string `yaml:"ollama_key,omitempty"` // Optional, for remote Ollama servers with auth

	// Ollama server URL (default: http://localhost:11434)
	OllamaBaseURL string `yaml:"ollama_base_url,omitempty"`
	// Optional endpoint overrides for Anthropic-compatible and OpenAI-compatible APIs
	AnthropicBaseURL string `yaml:"anthropic_base_url,omitempty"`
	OpenAIBaseURL    string `yaml:"openai_base_url,omitempty"`

	// Providers lists backends in fallback priority order.
	// Recognized values: anthropic, openai, gemini, ollama.
	Providers []string `yaml:"providers"`

	// Retry configuration for API calls
	Retry RetryConfig `yaml:"retry"`
}

// HasProvider checks if a provider has the credentials it needs.
// Ollama doesn't require an API key for local servers.
func (c *APIConfig) HasProvider(provider string) bool {
	switch provider {
	case "anthropic":
		return c.AnthropicKey != ""
	case "openai":
		return c.OpenAIKey != ""
	case "gemini":
		return c.GeminiKey != ""
	case "ollama":
		return true
	}
	return false
}

// ConfiguredProviders returns the providers from the priority list that are
// actually usable with the current credentials.
func (c *APIConfig) ConfiguredProviders() []string {
	var out []string
	for _, p := range c.Providers {
		if c.HasProvider(p) {
			out = append(out, p)
		}
	}
	return out
}

// RetryConfig holds retry settings for API calls.
type RetryConfig struct {
	MaxRetries  int           `yaml:"max_retries"`  // Maximum number of retry attempts (default: 3)
	RetryDelay  time.Duration `yaml:"retry_delay"`  // Initial delay between retries (default: 1s)
	HTTPTimeout time.Duration `yaml:"http_timeout"` // HTTP request timeout (default: 120s)
}

// ModelConfig holds per-provider model names and generation settings.
type ModelConfig struct {
	Anthropic string `yaml:"anthropic"`
	OpenAI    string `yaml:"openai"`
	Gemini    string `yaml:"gemini"`
	Ollama    string `yaml:"ollama"`

	Temperature     float32 `yaml:"temperature"`
	MaxOutputTokens int32   `yaml:"max_output_tokens"`
}

// ForProvider returns the configured model name for a provider.
func (m *ModelConfig) ForProvider(provider string) string {
	switch provider {
	case "anthropic":
		return m.Anthropic
	case "openai":
		return m.OpenAI
	case "gemini":
		return m.Gemini
	case "ollama":
		return m.Ollama
	}
	return ""
}

// SetForProvider overrides the model name for a provider.
func (m *ModelConfig) SetForProvider(provider, model string) {
	switch provider {
	case "anthropic":
		m.Anthropic = model
	case "openai":
		m.OpenAI = model
	case "gemini":
		m.Gemini = model
	case "ollama":
		m.Ollama = model
	}
}

// AgentConfig holds orchestration loop settings.
type AgentConfig struct {
	MaxTurns       int           `yaml:"max_turns"`       // LLM calls per invocation
	MaxCorrections int           `yaml:"max_corrections"` // Parse-failure correction attempts
	Timeout        time.Duration `yaml:"timeout"`         // Aggregate deadline for one invocation
	Style          string        `yaml:"style"`           // "default" or "strict"
	Autonomous     bool          `yaml:"autonomous"`      // Execute mutating tools without approval
}

// WorkspaceConfig holds workspace containment settings.
type WorkspaceConfig struct {
	// AllowedRoots restricts which directories may serve as a workspace root.
	// Empty means any absolute path is accepted.
	AllowedRoots []string `yaml:"allowed_roots"`
}

// ToolsConfig holds tool execution settings.
type ToolsConfig struct {
	TerminalTimeout time.Duration `yaml:"terminal_timeout"` // Wall-clock cap for run_terminal
	StdoutLimit     int           `yaml:"stdout_limit"`     // Captured stdout cap (chars)
	StderrLimit     int           `yaml:"stderr_limit"`     // Captured stderr cap (chars)
	BlockedCommands []string      `yaml:"blocked_commands"` // Extra blocklist entries
}

// GuidanceConfig holds the optional pattern-advice service settings.
type GuidanceConfig struct {
	URL     string        `yaml:"url"`     // Empty disables guidance
	Timeout time.Duration `yaml:"timeout"` // Request timeout (default: 5s)
}

// SemanticConfig holds semantic snippet augmentation settings.
type SemanticConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Model       string `yaml:"model"`         // Embedding model
	TopK        int    `yaml:"top_k"`         // Snippets injected into the prompt
	MaxFileSize int64  `yaml:"max_file_size"` // Max file size to embed (bytes)
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // Logging level: debug, info, warn, error
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			OllamaBaseURL: DefaultOllamaBaseURL,
			Providers:     []string{"anthropic", "openai", "gemini", "ollama"},
			Retry: RetryConfig{
				MaxRetries:  DefaultMaxRetries,
				RetryDelay:  DefaultRetryDelay,
				HTTPTimeout: DefaultHTTPTimeout,
			},
		},
		Model: ModelConfig{
			Anthropic:       "claude-sonnet-4-5",
			OpenAI:          "gpt-4o-mini",
			Gemini:          "gemini-3-flash-preview",
			Ollama:          "llama3.1",
			Temperature:     0.2,
			MaxOutputTokens: DefaultMaxTokens,
		},
		Agent: AgentConfig{
			MaxTurns:       DefaultMaxTurns,
			MaxCorrections: DefaultMaxCorrections,
			Timeout:        DefaultAgentTimeout,
			Style:          "default",
		},
		Tools: ToolsConfig{
			TerminalTimeout: DefaultTerminalTimeout,
			StdoutLimit:     DefaultStdoutLimit,
			StderrLimit:     DefaultStderrLimit,
		},
		Guidance: GuidanceConfig{
			Timeout: DefaultGuidanceTimeout,
		},
		Semantic: SemanticConfig{
			Enabled:     false,
			Model:       "text-embedding-004",
			TopK:        DefaultSnippetTopK,
			MaxFileSize: 100 * 1024,
		},
		Logging: LoggingConfig{
			Level: "warn",
		},
	}
}
