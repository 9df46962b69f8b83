// Package builder turns a chat conversation into a small generated web
// app: conversation -> structured spec -> HTML/CSS/JS files. Every step
// degrades to a deterministic fallback when no model is reachable.
package builder

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"atelier/internal/llm"
	"atelier/internal/logging"
)

// AppSpec is the structured description of the app to generate.
type AppSpec struct {
	Name         string   `json:"name"`
	Type         string   `json:"type"`
	Features     []string `json:"features"`
	Persistence  string   `json:"persistence"`
	Theme        string   `json:"theme"`
	UIComplexity string   `json:"ui_complexity"`
}

// BuildResult is the outcome of a full generate-app run.
type BuildResult struct {
	Spec    AppSpec
	Files   map[string]string
	Summary string
}

// Service synthesizes specs and code from conversations.
type Service struct {
	llm llm.Client
}

// New creates a builder service. client may be nil; every operation
// then uses its template fallback.
func New(client llm.Client) *Service {
	return &Service{llm: client}
}

const specPrompt = `You are a product analyst. Based on this conversation about building a web app, extract a project spec.

Conversation:
%s

Reply with ONLY a JSON object (no markdown, no explanation) with exactly these keys:
- "name": short app name (e.g. "ReadingTracker")
- "type": one of "dashboard", "tracker", "notes", "todo", "library", "app"
- "features": list of feature keywords, e.g. ["tracking", "list management", "reminders", "search", "visualization", "theming", "export", "categorization", "streaks"]
- "persistence": "localStorage" or "session" or "none"
- "theme": "light" or "dark" or "system"
- "ui_complexity": "minimal" or "rich"

JSON:`

// ConversationToSpec distills the conversation into an AppSpec. Falls
// back to keyword detection when the model is unavailable or replies
// with something unusable.
func (s *Service) ConversationToSpec(ctx context.Context, messages []llm.Message) AppSpec {
	raw := s.generate(ctx, fmt.Sprintf(specPrompt, transcript(messages)))
	if raw == "" {
		return defaultSpec(messages)
	}
	jsonStr := extractJSONObject(raw)
	if jsonStr == "" {
		return defaultSpec(messages)
	}
	var spec AppSpec
	if err := json.Unmarshal([]byte(jsonStr), &spec); err != nil {
		logging.Warn("could not parse spec JSON, using defaults", "error", err)
		return defaultSpec(messages)
	}
	return normalizeSpec(spec)
}

const codePrompt = `You are a front-end developer. Generate a complete, working single-page web app as three files.

Spec:
- App name: %s
- App type: %s
- Features: %s
- Data: %s (use localStorage if "localStorage", else in-memory)
- Theme: %s
- UI: %s

Rules:
- Plain HTML/CSS/JS only. No frameworks. No build step.
- index.html: one file, include <link rel="stylesheet" href="styles.css"> and <script src="app.js"></script>.
- styles.css: complete styles; use CSS variables for colors; support dark theme if theme is dark.
- app.js: implement the core feature with DOM APIs. No placeholder comments.

Reply in this exact format (no other text):
===INDEX.HTML===
<!DOCTYPE html>...
===STYLES.CSS===
...css...
===APP.JS===
...javascript...
===END===`

// SpecToCode renders the spec into index.html, styles.css and app.js.
func (s *Service) SpecToCode(ctx context.Context, spec AppSpec) map[string]string {
	spec = normalizeSpec(spec)
	raw := s.generate(ctx, fmt.Sprintf(codePrompt,
		spec.Name, spec.Type, strings.Join(spec.Features, ", "),
		spec.Persistence, spec.Theme, spec.UIComplexity))
	if raw == "" {
		return templateCode(spec)
	}
	files := parseCodeBlocks(raw)
	if len(files) == 0 {
		return templateCode(spec)
	}
	return files
}

// GenerateApp runs the full pipeline: conversation to spec to files.
func (s *Service) GenerateApp(ctx context.Context, messages []llm.Message) *BuildResult {
	spec := s.ConversationToSpec(ctx, messages)
	files := s.SpecToCode(ctx, spec)
	return &BuildResult{
		Spec:    spec,
		Files:   files,
		Summary: BuildConversationSummary(messages, 500),
	}
}

const questionsPrompt = `You are a product analyst helping someone describe a web app idea. Based on this short conversation, suggest exactly %d short follow-up questions to clarify what they want. Questions should be practical (e.g. who will use it, persistence, must-have feature). Reply with ONLY a JSON array of strings, e.g. ["Question one?", "Question two?"]. No other text.

Conversation:
%s

JSON array of %d questions:`

// SuggestQuestions proposes follow-up questions that sharpen the app
// idea, using the model when reachable and a template bank otherwise.
func (s *Service) SuggestQuestions(ctx context.Context, messages []llm.Message, maxQuestions int) []string {
	if maxQuestions <= 0 {
		maxQuestions = 2
	}
	if len(messages) == 0 {
		return clampQuestions([]string{
			"What's the core problem this app solves for you?",
			"Who will use it—just you or others too?",
		}, maxQuestions)
	}

	raw := s.generate(ctx, fmt.Sprintf(questionsPrompt, maxQuestions, transcript(messages), maxQuestions))
	if raw != "" {
		if jsonStr := extractJSONArray(raw); jsonStr != "" {
			var arr []string
			if err := json.Unmarshal([]byte(jsonStr), &arr); err == nil {
				var out []string
				for _, q := range arr {
					if q != "" {
						out = append(out, q)
					}
				}
				if len(out) > 0 {
					return clampQuestions(out, maxQuestions)
				}
			}
		}
	}
	return clampQuestions(templateQuestions(messages), maxQuestions)
}

// BuildConversationSummary produces a short transcript digest for
// storage alongside a generated app.
func BuildConversationSummary(messages []llm.Message, maxLen int) string {
	if len(messages) == 0 {
		return ""
	}
	var parts []string
	for i, m := range messages {
		if i >= 5 {
			break
		}
		content := m.Content
		if len(content) > 200 {
			content = content[:200]
		}
		parts = append(parts, content)
	}
	summary := strings.Join(parts, " | ")
	if maxLen > 0 && len(summary) > maxLen {
		summary = summary[:maxLen]
	}
	return summary
}

func (s *Service) generate(ctx context.Context, prompt string) string {
	if s.llm == nil {
		return ""
	}
	out, err := s.llm.Generate(ctx, llm.Request{
		Messages: []llm.Message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		logging.Warn("builder generation failed, using fallback", "backend", s.llm.Name(), "error", err)
		return ""
	}
	return strings.TrimSpace(out)
}

func transcript(messages []llm.Message) string {
	var b strings.Builder
	for _, m := range messages {
		fmt.Fprintf(&b, "%s: %s\n", strings.ToUpper(m.Role), m.Content)
	}
	return strings.TrimRight(b.String(), "\n")
}

func clampQuestions(qs []string, max int) []string {
	if len(qs) > max {
		return qs[:max]
	}
	return qs
}

func normalizeSpec(spec AppSpec) AppSpec {
	if spec.Name == "" {
		spec.Name = "MyApp"
	}
	if spec.Type == "" {
		spec.Type = "app"
	}
	if spec.Persistence == "" {
		spec.Persistence = "localStorage"
	}
	if spec.Theme == "" {
		spec.Theme = "dark"
	}
	if spec.UIComplexity == "" {
		spec.UIComplexity = "minimal"
	}
	return spec
}

// parseCodeBlocks extracts the three generated files from the
// ===FILENAME=== reply format.
func parseCodeBlocks(raw string) map[string]string {
	markers := map[string]string{
		"===INDEX.HTML===": "index.html",
		"===STYLES.CSS===": "styles.css",
		"===APP.JS===":     "app.js",
	}
	files := make(map[string]string)
	for marker, name := range markers {
		start := strings.Index(raw, marker)
		if start == -1 {
			continue
		}
		body := raw[start+len(marker):]
		if end := strings.Index(body, "==="); end != -1 {
			body = body[:end]
		}
		body = strings.TrimSpace(body)
		if body != "" {
			files[name] = body
		}
	}
	return files
}
