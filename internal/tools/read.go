package tools

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"atelier/internal/workspace"
)

// ReadFileTool returns the contents of a workspace file.
type ReadFileTool struct {
	ws *workspace.Accessor
}

// NewReadFileTool creates a new ReadFileTool.
func NewReadFileTool(ws *workspace.Accessor) *ReadFileTool {
	return &ReadFileTool{ws: ws}
}

func (t *ReadFileTool) Name() string {
	return "read_file"
}

func (t *ReadFileTool) Description() string {
	return "Read a file from the workspace and return its full contents"
}

func (t *ReadFileTool) Parameters() []Param {
	return []Param{
		{Name: "path", Type: "string", Description: "Path relative to the workspace root", Required: true},
	}
}

func (t *ReadFileTool) Mutating() bool {
	return false
}

func (t *ReadFileTool) Validate(args map[string]any) error {
	path, ok := GetString(args, "path")
	if !ok || strings.TrimSpace(path) == "" {
		return NewValidationError("path", "required")
	}
	return nil
}

func (t *ReadFileTool) Execute(ctx context.Context, args map[string]any) (ToolResult, error) {
	path := GetStringDefault(args, "path", "")

	content, err := t.ws.ReadFile(path)
	if err != nil {
		return workspaceErrorResult(path, err), nil
	}
	return NewSuccessResult(string(content)), nil
}

// workspaceErrorResult maps accessor errors onto the failure messages
// the model is expected to recover from.
func workspaceErrorResult(path string, err error) ToolResult {
	switch {
	case errors.Is(err, workspace.ErrNotConfigured):
		return NewErrorResult("no workspace is configured; ask the user to open a project first")
	case errors.Is(err, workspace.ErrAccessDenied):
		return NewErrorResult(fmt.Sprintf("access denied: %s is outside the workspace", path))
	case os.IsNotExist(err):
		return NewErrorResult(fmt.Sprintf("not found: %s", path))
	default:
		return NewErrorResult(err.Error())
	}
}
