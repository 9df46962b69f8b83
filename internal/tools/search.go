package tools

import (
	"context"
	"fmt"
	"strings"

	"atelier/internal/config"
	"atelier/internal/workspace"
)

// SearchFilesTool runs a case-insensitive substring search over the
// text files of the workspace.
type SearchFilesTool struct {
	ws *workspace.Accessor
}

// NewSearchFilesTool creates a new SearchFilesTool.
func NewSearchFilesTool(ws *workspace.Accessor) *SearchFilesTool {
	return &SearchFilesTool{ws: ws}
}

func (t *SearchFilesTool) Name() string {
	return "search_files"
}

func (t *SearchFilesTool) Description() string {
	return "Search workspace text files for a substring (case-insensitive) and return path:line matches"
}

func (t *SearchFilesTool) Parameters() []Param {
	return []Param{
		{Name: "pattern", Type: "string", Description: "Substring to search for (query is accepted as an alias)", Required: true},
		{Name: "path", Type: "string", Description: "Directory to search, relative to the workspace root (default \".\")", Required: false},
		{Name: "glob", Type: "string", Description: "Optional glob filter on relative paths, e.g. **/*.go", Required: false},
		{Name: "max_matches", Type: "integer", Description: "Stop after this many matches (default 100)", Required: false},
	}
}

func (t *SearchFilesTool) Mutating() bool {
	return false
}

// searchPattern reads the pattern argument, accepting query as an alias
// since models frequently use either name.
func searchPattern(args map[string]any) string {
	if pattern, ok := GetString(args, "pattern"); ok && strings.TrimSpace(pattern) != "" {
		return pattern
	}
	return GetStringDefault(args, "query", "")
}

func (t *SearchFilesTool) Validate(args map[string]any) error {
	if strings.TrimSpace(searchPattern(args)) == "" {
		return NewValidationError("pattern", "required")
	}
	if max, present := args["max_matches"]; present {
		if _, ok := GetInt(args, "max_matches"); !ok {
			return NewValidationError("max_matches", fmt.Sprintf("must be an integer, got %T", max))
		}
	}
	return nil
}

func (t *SearchFilesTool) Execute(ctx context.Context, args map[string]any) (ToolResult, error) {
	pattern := searchPattern(args)
	dir := GetStringDefault(args, "path", ".")
	opts := workspace.SearchOptions{
		Glob:       GetStringDefault(args, "glob", ""),
		MaxMatches: GetIntDefault(args, "max_matches", config.DefaultSearchMaxMatches),
	}

	matches, err := t.ws.Search(pattern, dir, opts)
	if err != nil {
		return workspaceErrorResult(dir, err), nil
	}
	if len(matches) == 0 {
		return NewSuccessResult(fmt.Sprintf("no matches for %q", pattern)), nil
	}

	var b strings.Builder
	for _, m := range matches {
		fmt.Fprintf(&b, "%s:%d: %s\n", m.Path, m.Line, m.Text)
	}
	if len(matches) >= opts.MaxMatches {
		fmt.Fprintf(&b, "(stopped at %d matches)\n", opts.MaxMatches)
	}
	return NewSuccessResultWithData(strings.TrimRight(b.String(), "\n"), matches), nil
}
