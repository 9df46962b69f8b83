package tools

import (
	"context"
	"fmt"
	"os"
	"strings"

	"atelier/internal/config"
	"atelier/internal/workspace"
)

// EditFileTool replaces an exact text span in a workspace file, or
// creates the file when old_text is empty and the file does not exist.
type EditFileTool struct {
	ws *workspace.Accessor
}

// NewEditFileTool creates a new EditFileTool.
func NewEditFileTool(ws *workspace.Accessor) *EditFileTool {
	return &EditFileTool{ws: ws}
}

func (t *EditFileTool) Name() string {
	return "edit_file"
}

func (t *EditFileTool) Description() string {
	return "Replace old_text with new_text in a file; empty old_text creates the file with new_text"
}

func (t *EditFileTool) Parameters() []Param {
	return []Param{
		{Name: "path", Type: "string", Description: "File relative to the workspace root", Required: true},
		{Name: "old_text", Type: "string", Description: "Exact text to replace; must occur exactly once", Required: true},
		{Name: "new_text", Type: "string", Description: "Replacement text", Required: true},
	}
}

func (t *EditFileTool) Mutating() bool {
	return true
}

func (t *EditFileTool) Validate(args map[string]any) error {
	path, ok := GetString(args, "path")
	if !ok || strings.TrimSpace(path) == "" {
		return NewValidationError("path", "required")
	}
	if _, ok := GetString(args, "old_text"); !ok {
		return NewValidationError("old_text", "required (may be empty to create a file)")
	}
	if _, ok := GetString(args, "new_text"); !ok {
		return NewValidationError("new_text", "required")
	}
	old := GetStringDefault(args, "old_text", "")
	if old != "" && old == GetStringDefault(args, "new_text", "") {
		return NewValidationError("new_text", "must differ from old_text")
	}
	return nil
}

// plan resolves the edit against the current file contents. Called once
// for the preview and again at apply time, so an edit approved against
// stale contents is rejected instead of silently corrupting the file.
func (t *EditFileTool) plan(args map[string]any) (path, oldContent, newContent string, create bool, errResult *ToolResult) {
	path = GetStringDefault(args, "path", "")
	oldText := GetStringDefault(args, "old_text", "")
	newText := GetStringDefault(args, "new_text", "")

	data, err := t.ws.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && oldText == "" {
			return path, "", newText, true, nil
		}
		r := workspaceErrorResult(path, err)
		return "", "", "", false, &r
	}
	content := string(data)

	if oldText == "" {
		r := NewErrorResult(fmt.Sprintf("%s already exists; provide old_text to edit it", path))
		return "", "", "", false, &r
	}
	switch n := strings.Count(content, oldText); n {
	case 1:
	case 0:
		r := NewErrorResult(fmt.Sprintf("old_text not found in %s; re-read the file and try again", path))
		return "", "", "", false, &r
	default:
		r := NewErrorResult(fmt.Sprintf("old_text occurs %d times in %s; include more surrounding context", n, path))
		return "", "", "", false, &r
	}

	return path, content, strings.Replace(content, oldText, newText, 1), false, nil
}

func (t *EditFileTool) Preview(ctx context.Context, args map[string]any) (string, error) {
	path, oldContent, newContent, create, errResult := t.plan(args)
	if errResult != nil {
		return "", fmt.Errorf("%s", errResult.Error)
	}
	if create {
		return fmt.Sprintf("create %s (%d bytes):\n%s", path, len(newContent),
			unifiedDiff(path, "", newContent, config.DefaultDiffPreviewCap)), nil
	}
	return unifiedDiff(path, oldContent, newContent, config.DefaultDiffPreviewCap), nil
}

func (t *EditFileTool) Execute(ctx context.Context, args map[string]any) (ToolResult, error) {
	path, _, newContent, create, errResult := t.plan(args)
	if errResult != nil {
		return *errResult, nil
	}

	if err := t.ws.WriteFile(path, []byte(newContent)); err != nil {
		return workspaceErrorResult(path, err), nil
	}
	if create {
		return NewSuccessResult(fmt.Sprintf("created %s", path)), nil
	}
	return NewSuccessResult(fmt.Sprintf("edited %s", path)), nil
}
