package agent

import (
	"encoding/json"
	"errors"
	"strings"
)

// Decision is the model's parsed next step: either a tool call or a
// final reply. When the model emits both, the tool call wins.
type Decision struct {
	Thought string
	Tool    string
	Args    map[string]any
	Reply   string
	// IsReply distinguishes an intentional (possibly empty) reply from
	// a decision that carried neither shape.
	IsReply bool
}

var errNoDecision = errors.New("no tool call or reply in model output")

type decisionWire struct {
	Thought string         `json:"thought"`
	Tool    string         `json:"tool"`
	Args    map[string]any `json:"args"`
	Reply   *string        `json:"reply"`
}

// ParseDecision extracts the first balanced JSON object from raw model
// text (tolerating markdown fences and surrounding prose) and decodes
// it into a Decision.
func ParseDecision(raw string) (*Decision, error) {
	jsonStr := extractJSONObject(raw)
	if jsonStr == "" {
		return nil, errNoDecision
	}

	var wire decisionWire
	if err := json.Unmarshal([]byte(jsonStr), &wire); err != nil {
		return nil, err
	}

	if wire.Tool != "" {
		args := wire.Args
		if args == nil {
			args = map[string]any{}
		}
		return &Decision{Thought: wire.Thought, Tool: wire.Tool, Args: args}, nil
	}
	if wire.Reply != nil {
		return &Decision{Thought: wire.Thought, Reply: strings.TrimSpace(*wire.Reply), IsReply: true}, nil
	}
	return nil, errNoDecision
}

// looksStructured reports whether raw was plausibly an attempt at the
// JSON protocol. Plain prose without protocol keywords is treated as a
// direct reply instead of a parse failure.
func looksStructured(raw string) bool {
	lower := strings.ToLower(raw)
	return strings.Contains(lower, "\"tool\"") ||
		strings.Contains(lower, "\"reply\"") ||
		strings.Contains(lower, "{")
}

// extractJSONObject returns the first balanced {...} from text.
// String literals are honored so braces inside them do not count.
func extractJSONObject(raw string) string {
	raw = strings.TrimSpace(raw)
	start := strings.IndexByte(raw, '{')
	if start == -1 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(raw); i++ {
		c := raw[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return raw[start : i+1]
			}
		}
	}
	if end := strings.LastIndexByte(raw, '}'); end > start {
		return raw[start : end+1]
	}
	return ""
}
