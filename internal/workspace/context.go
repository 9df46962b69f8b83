package workspace

import (
	"fmt"
	"strings"
)

const contextMaxEntries = 40

// stopwords excluded from quick keyword extraction.
var stopwords = map[string]bool{
	"this": true, "that": true, "with": true, "from": true, "have": true,
	"what": true, "when": true, "where": true, "please": true, "could": true,
	"would": true, "should": true, "about": true, "there": true, "here": true,
	"file": true, "files": true, "show": true, "make": true, "change": true,
}

// ContextBlock builds a short orientation block for the system prompt: the
// top-level listing plus up to two quick keyword searches derived from the
// last user message. Returns "" when the workspace is unconfigured or empty
// so the prompt builder can omit the section entirely.
func (a *Accessor) ContextBlock(lastUserMessage string) string {
	if !a.Configured() {
		return ""
	}

	var b strings.Builder

	names, err := a.ListDir(".")
	if err == nil && len(names) > 0 {
		if len(names) > contextMaxEntries {
			names = names[:contextMaxEntries]
		}
		b.WriteString("Top-level workspace entries:\n")
		for _, name := range names {
			b.WriteString("  ")
			b.WriteString(name)
			b.WriteByte('\n')
		}
	}

	for _, keyword := range extractKeywords(lastUserMessage, 2) {
		matches, err := a.Search(keyword, ".", SearchOptions{MaxMatches: 5})
		if err != nil || len(matches) == 0 {
			continue
		}
		fmt.Fprintf(&b, "Mentions of %q:\n", keyword)
		for _, m := range matches {
			fmt.Fprintf(&b, "  %s:%d: %s\n", m.Path, m.Line, m.Text)
		}
	}

	return b.String()
}

// extractKeywords picks up to limit distinctive words from the message.
func extractKeywords(message string, limit int) []string {
	var out []string
	seen := make(map[string]bool)

	for _, field := range strings.Fields(message) {
		word := strings.ToLower(strings.Trim(field, ".,!?\"'()[]{}:;"))
		if len(word) <= 3 || stopwords[word] || seen[word] {
			continue
		}
		seen[word] = true
		out = append(out, word)
		if len(out) >= limit {
			break
		}
	}
	return out
}
