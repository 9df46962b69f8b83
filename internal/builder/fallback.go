package builder

import (
	"strings"

	"atelier/internal/llm"
)

// Keyword tables for the no-model fallback. Ordered: first hit wins.
var typeHints = []struct {
	keywords []string
	appType  string
}{
	{[]string{"dashboard", "overview", "summary", "day at a glance"}, "dashboard"},
	{[]string{"tracker", "tracking", "log", "habit", "streak"}, "tracker"},
	{[]string{"note", "notes", "writing", "memo"}, "notes"},
	{[]string{"todo", "task", "checklist", "to-do"}, "todo"},
	{[]string{"reading", "book", "library"}, "library"},
}

var featureHints = []struct {
	keywords []string
	feature  string
}{
	{[]string{"track", "tracking", "monitor"}, "tracking"},
	{[]string{"list", "collection", "organize"}, "list management"},
	{[]string{"remind", "notification", "alert"}, "reminders"},
	{[]string{"search", "find", "filter"}, "search"},
	{[]string{"chart", "graph", "visual", "stats"}, "visualization"},
	{[]string{"dark", "theme", "light mode"}, "theming"},
	{[]string{"export", "download", "backup"}, "export"},
	{[]string{"tag", "category", "label"}, "categorization"},
	{[]string{"streak", "habit", "daily"}, "streaks"},
}

// defaultSpec derives a spec from conversation keywords when the model
// is unavailable or its reply could not be parsed.
func defaultSpec(messages []llm.Message) AppSpec {
	var all strings.Builder
	for _, m := range messages {
		all.WriteString(strings.ToLower(m.Content))
		all.WriteByte(' ')
	}
	allText := all.String()

	name := "MyApp"
	if len(messages) > 0 {
		first := messages[0].Content
		if len(first) > 80 {
			first = first[:80]
		}
		var words []string
		for _, w := range strings.Fields(first) {
			if len(w) > 2 {
				words = append(words, capitalize(w))
			}
			if len(words) == 2 {
				break
			}
		}
		if len(words) > 0 {
			name = strings.Join(words, "")
		}
	}

	appType := "app"
	for _, hint := range typeHints {
		if containsAny(allText, hint.keywords) {
			appType = hint.appType
			break
		}
	}

	var features []string
	for _, hint := range featureHints {
		if containsAny(allText, hint.keywords) {
			features = append(features, hint.feature)
		}
	}
	if len(features) == 0 {
		features = []string{"list management", "tracking"}
	}

	theme := "dark"
	switch {
	case strings.Contains(allText, "light mode") || strings.Contains(allText, "light theme"):
		theme = "light"
	case strings.Contains(allText, "system") || strings.Contains(allText, "preference"):
		theme = "system"
	}

	return AppSpec{
		Name:         name,
		Type:         appType,
		Features:     features,
		Persistence:  "localStorage",
		Theme:        theme,
		UIComplexity: "minimal",
	}
}

// Template follow-up questions when the model is unavailable.
var questionBank = []struct {
	keywords  []string
	questions []string
}{
	{
		[]string{"dashboard", "tracker", "notes", "todo", "habit", "reading", "list"},
		[]string{
			"What's the core problem this solves for you?",
			"Who will use this—just you or others too?",
			"Should it remember things between sessions (persistent) or session-only?",
		},
	},
	{
		nil, // default
		[]string{
			"What's the one thing it must do well?",
			"Minimal and focused UI, or rich with more features?",
			"Light mode, dark mode, or follow system preference?",
		},
	},
}

func templateQuestions(messages []llm.Message) []string {
	var all strings.Builder
	for _, m := range messages {
		all.WriteString(strings.ToLower(m.Content))
		all.WriteByte(' ')
	}
	allText := all.String()

	for _, entry := range questionBank {
		if entry.keywords == nil || containsAny(allText, entry.keywords) {
			return entry.questions
		}
	}
	return questionBank[len(questionBank)-1].questions
}

func capitalize(w string) string {
	if w == "" {
		return w
	}
	return strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}
