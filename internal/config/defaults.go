package config

import "time"

// Default configuration values.
const (
	// Token and content limits
	DefaultMaxTokens      = 4096
	DefaultStdoutLimit    = 8000
	DefaultStderrLimit    = 2000
	DefaultDiffPreviewCap = 4000

	// Loop settings
	DefaultMaxTurns       = 5
	DefaultMaxCorrections = 2
	DefaultAgentTimeout   = 120 * time.Second

	// Retry settings
	DefaultMaxRetries  = 3
	DefaultRetryDelay  = 1 * time.Second
	DefaultHTTPTimeout = 120 * time.Second

	// Tool settings
	DefaultTerminalTimeout  = 60 * time.Second
	DefaultSearchMaxMatches = 100

	// External services
	DefaultGuidanceTimeout = 5 * time.Second
	DefaultOllamaBaseURL   = "http://localhost:11434"

	// Semantic snippets
	DefaultSnippetTopK = 3
)
