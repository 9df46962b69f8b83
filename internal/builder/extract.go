package builder

import "strings"

// extractJSONObject returns the first balanced {...} from text,
// tolerating markdown fences and surrounding prose. Single O(n) pass.
func extractJSONObject(raw string) string {
	return extractBalanced(raw, '{', '}')
}

// extractJSONArray returns the first balanced [...] from text.
func extractJSONArray(raw string) string {
	return extractBalanced(raw, '[', ']')
}

func extractBalanced(raw string, open, close byte) string {
	raw = strings.TrimSpace(raw)
	start := strings.IndexByte(raw, open)
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
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return raw[start : i+1]
			}
		}
	}
	// Unbalanced: take first open to last close
	if end := strings.LastIndexByte(raw, close); end > start {
		return raw[start : end+1]
	}
	return ""
}
