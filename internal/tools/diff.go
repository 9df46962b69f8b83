package tools

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// unifiedDiff renders a unified-style diff between two versions of a
// file, truncated to limit bytes so approval prompts stay readable.
func unifiedDiff(path, oldContent, newContent string, limit int) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(oldContent, newContent, true)
	diffs = dmp.DiffCleanupSemantic(diffs)

	var b strings.Builder
	fmt.Fprintf(&b, "--- %s\n", path)
	fmt.Fprintf(&b, "+++ %s\n", path)

	added, removed := 0, 0
	for _, d := range diffs {
		prefix := " "
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		}
		lines := strings.Split(d.Text, "\n")
		for i, line := range lines {
			// Skip empty trailing element from split
			if i == len(lines)-1 && line == "" {
				continue
			}
			b.WriteString(prefix)
			b.WriteString(line)
			b.WriteByte('\n')
			switch d.Type {
			case diffmatchpatch.DiffDelete:
				removed++
			case diffmatchpatch.DiffInsert:
				added++
			}
		}
	}
	fmt.Fprintf(&b, "(+%d -%d)", added, removed)

	out := b.String()
	if limit > 0 && len(out) > limit {
		out = out[:limit] + "\n... (diff truncated)"
	}
	return out
}
