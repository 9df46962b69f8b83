package tools

import (
	"context"
	"fmt"
	"strings"

	"atelier/internal/workspace"
)

// ListDirTool lists the entries of a workspace directory.
type ListDirTool struct {
	ws *workspace.Accessor
}

// NewListDirTool creates a new ListDirTool.
func NewListDirTool(ws *workspace.Accessor) *ListDirTool {
	return &ListDirTool{ws: ws}
}

func (t *ListDirTool) Name() string {
	return "list_dir"
}

func (t *ListDirTool) Description() string {
	return "List the entries of a workspace directory (directories have a trailing slash)"
}

func (t *ListDirTool) Parameters() []Param {
	return []Param{
		{Name: "path", Type: "string", Description: "Directory relative to the workspace root, defaults to the root", Required: false},
	}
}

func (t *ListDirTool) Mutating() bool {
	return false
}

func (t *ListDirTool) Validate(args map[string]any) error {
	if val, present := args["path"]; present {
		if _, ok := val.(string); !ok {
			return NewValidationError("path", "must be a string")
		}
	}
	return nil
}

func (t *ListDirTool) Execute(ctx context.Context, args map[string]any) (ToolResult, error) {
	path := GetStringDefault(args, "path", ".")

	entries, err := t.ws.ListDir(path)
	if err != nil {
		return workspaceErrorResult(path, err), nil
	}
	if len(entries) == 0 {
		return NewSuccessResult(fmt.Sprintf("%s is empty", path)), nil
	}
	return NewSuccessResultWithData(strings.Join(entries, "\n"), entries), nil
}
