package tools

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"testing"
	"time"
)

func newTerminalTool(t *testing.T, limits TerminalLimits) *RunTerminalTool {
	t.Helper()
	if _, err := exec.LookPath("bash"); err != nil {
		t.Skip("bash not available")
	}
	ws, _ := newTestTools(t)
	return NewRunTerminalTool(ws, nil, limits)
}

func TestRunTerminalValidate(t *testing.T) {
	tool := newTerminalTool(t, TerminalLimits{})

	if err := tool.Validate(map[string]any{"command": "ls -la"}); err != nil {
		t.Errorf("plain command rejected: %v", err)
	}
	if err := tool.Validate(map[string]any{}); err == nil {
		t.Error("missing command accepted")
	}

	err := tool.Validate(map[string]any{"command": "rm -rf /"})
	if err == nil {
		t.Fatal("destructive command accepted")
	}
	if !errors.Is(err, ErrCommandBlocked) {
		t.Errorf("error = %v, want ErrCommandBlocked", err)
	}
}

func TestRunTerminalExecute(t *testing.T) {
	tool := newTerminalTool(t, TerminalLimits{})

	res, err := tool.Execute(context.Background(), map[string]any{"command": "echo hello"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !res.Success {
		t.Fatalf("Execute failed: %s", res.Error)
	}
	if !strings.Contains(res.Content, "hello") {
		t.Errorf("Content = %q", res.Content)
	}
	if !strings.Contains(res.Content, "exit code: 0") {
		t.Errorf("Content = %q, want exit code line", res.Content)
	}
}

func TestRunTerminalNonZeroExit(t *testing.T) {
	tool := newTerminalTool(t, TerminalLimits{})

	res, err := tool.Execute(context.Background(), map[string]any{"command": "exit 3"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.Success {
		t.Fatal("non-zero exit reported as success")
	}
	if !strings.Contains(res.Error, "exit code 3") {
		t.Errorf("Error = %q", res.Error)
	}
}

func TestRunTerminalBlockedAtExecution(t *testing.T) {
	tool := newTerminalTool(t, TerminalLimits{})

	res, err := tool.Execute(context.Background(), map[string]any{"command": ":(){ :|:& };:"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.Success || !strings.Contains(res.Error, "blocked") {
		t.Errorf("result = %+v, want blocked failure", res)
	}
}

func TestRunTerminalTimeout(t *testing.T) {
	tool := newTerminalTool(t, TerminalLimits{Timeout: 200 * time.Millisecond})

	res, err := tool.Execute(context.Background(), map[string]any{"command": "sleep 5"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.Success {
		t.Fatal("timed-out command reported as success")
	}
	if !strings.Contains(res.Error, "timed out") {
		t.Errorf("Error = %q", res.Error)
	}
}

func TestRunTerminalParentDeadlineNotBlamedOnLimit(t *testing.T) {
	tool := newTerminalTool(t, TerminalLimits{Timeout: 60 * time.Second})

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	res, err := tool.Execute(ctx, map[string]any{"command": "sleep 5"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.Success {
		t.Fatal("canceled command reported as success")
	}
	if strings.Contains(res.Error, "timed out after") {
		t.Errorf("Error = %q blames the command limit for a caller deadline", res.Error)
	}
	if !strings.Contains(res.Error, "canceled") {
		t.Errorf("Error = %q, want cancellation notice", res.Error)
	}
}

func TestRunTerminalTruncatesOutput(t *testing.T) {
	tool := newTerminalTool(t, TerminalLimits{StdoutLimit: 100})

	res, err := tool.Execute(context.Background(), map[string]any{"command": "yes x | head -c 1000"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(res.Content, "truncated") {
		t.Errorf("Content = %q, want truncation marker", res.Content)
	}
}

func TestRunTerminalSanitizedEnv(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "sk-secret")
	tool := newTerminalTool(t, TerminalLimits{})

	res, err := tool.Execute(context.Background(), map[string]any{"command": "echo key=$ANTHROPIC_API_KEY"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if strings.Contains(res.Content, "sk-secret") {
		t.Error("secret leaked into command environment")
	}
}

func TestRunTerminalPreview(t *testing.T) {
	tool := newTerminalTool(t, TerminalLimits{})

	preview, err := tool.Preview(context.Background(), map[string]any{"command": "ls", "cwd": "src"})
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if !strings.Contains(preview, "$ ls") || !strings.Contains(preview, "src") {
		t.Errorf("preview = %q", preview)
	}
}
