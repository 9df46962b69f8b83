package tools

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"atelier/internal/config"
	"atelier/internal/security"
	"atelier/internal/workspace"
)

// SafeEnvVars is the whitelist of environment variables passed to
// terminal commands. Keeps API keys out of child processes.
var SafeEnvVars = []string{
	"PATH",
	"HOME",
	"USER",
	"SHELL",
	"TERM",
	"LANG",
	"LC_ALL",
	"LC_CTYPE",
	"TMPDIR",
	"TMP",
	"TEMP",
	"XDG_CONFIG_HOME",
	"XDG_DATA_HOME",
	"XDG_CACHE_HOME",
	// Go-specific
	"GOPATH",
	"GOROOT",
	"GOPROXY",
	"GOFLAGS",
	// Node/npm
	"NODE_PATH",
	"NPM_CONFIG_PREFIX",
	// Python
	"PYTHONPATH",
	"VIRTUAL_ENV",
}

// ErrCommandBlocked marks commands rejected by the safety policy.
var ErrCommandBlocked = errors.New("command blocked")

// RunTerminalTool executes a shell command inside the workspace root.
type RunTerminalTool struct {
	ws       *workspace.Accessor
	commands *security.CommandValidator
	limits   TerminalLimits
}

// NewRunTerminalTool creates a new RunTerminalTool.
func NewRunTerminalTool(ws *workspace.Accessor, commands *security.CommandValidator, limits TerminalLimits) *RunTerminalTool {
	if commands == nil {
		commands = security.NewCommandValidator()
	}
	if limits.Timeout <= 0 {
		limits.Timeout = config.DefaultTerminalTimeout
	}
	if limits.StdoutLimit <= 0 {
		limits.StdoutLimit = config.DefaultStdoutLimit
	}
	if limits.StderrLimit <= 0 {
		limits.StderrLimit = config.DefaultStderrLimit
	}
	return &RunTerminalTool{ws: ws, commands: commands, limits: limits}
}

func (t *RunTerminalTool) Name() string {
	return "run_terminal"
}

func (t *RunTerminalTool) Description() string {
	return "Run a shell command in the workspace root and return its output and exit code"
}

func (t *RunTerminalTool) Parameters() []Param {
	return []Param{
		{Name: "command", Type: "string", Description: "Shell command line to execute", Required: true},
		{Name: "cwd", Type: "string", Description: "Working directory relative to the workspace root", Required: false},
	}
}

func (t *RunTerminalTool) Mutating() bool {
	return true
}

// Validate rejects blocked commands up front, before any preview or
// approval prompt is shown.
func (t *RunTerminalTool) Validate(args map[string]any) error {
	command, ok := GetString(args, "command")
	if !ok || strings.TrimSpace(command) == "" {
		return NewValidationError("command", "required")
	}
	if result := t.commands.Validate(command); !result.Valid {
		return fmt.Errorf("%w: %s", ErrCommandBlocked, result.Reason)
	}
	return nil
}

func (t *RunTerminalTool) Preview(ctx context.Context, args map[string]any) (string, error) {
	command := GetStringDefault(args, "command", "")
	cwd := GetStringDefault(args, "cwd", ".")
	if cwd == "." || cwd == "" {
		return fmt.Sprintf("$ %s", command), nil
	}
	return fmt.Sprintf("$ %s  (in %s)", command, cwd), nil
}

func (t *RunTerminalTool) Execute(ctx context.Context, args map[string]any) (ToolResult, error) {
	command := GetStringDefault(args, "command", "")

	// Re-check at execution time: Validate runs earlier in the loop,
	// but this path must fail closed on its own.
	if result := t.commands.Validate(command); !result.Valid {
		return NewErrorResult(fmt.Sprintf("command blocked: %s", result.Reason)), nil
	}

	dir, err := t.ws.Resolve(GetStringDefault(args, "cwd", "."))
	if err != nil {
		return workspaceErrorResult(GetStringDefault(args, "cwd", "."), err), nil
	}

	runCtx, cancel := context.WithTimeout(ctx, t.limits.Timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, "bash", "-c", command)
	cmd.Dir = dir
	cmd.Env = buildSafeEnv()

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	runErr := cmd.Run()
	elapsed := time.Since(start)

	if runCtx.Err() == context.DeadlineExceeded {
		// The parent context expiring also trips runCtx; only attribute
		// the timeout to the per-command limit when the parent is alive.
		if ctx.Err() != nil {
			return NewErrorResult(fmt.Sprintf("command canceled: %v", ctx.Err())), nil
		}
		return NewErrorResult(fmt.Sprintf("command timed out after %s", t.limits.Timeout)), nil
	}

	exitCode := 0
	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			exitCode = exitErr.ExitCode()
		} else {
			return NewErrorResult(fmt.Sprintf("failed to run command: %v", runErr)), nil
		}
	}

	out := formatTerminalOutput(stdout.String(), stderr.String(), exitCode, elapsed, t.limits)
	if exitCode != 0 {
		return ToolResult{Content: out, Error: fmt.Sprintf("exit code %d", exitCode), Success: false, Data: exitCode}, nil
	}
	return NewSuccessResultWithData(out, exitCode), nil
}

func formatTerminalOutput(stdout, stderr string, exitCode int, elapsed time.Duration, limits TerminalLimits) string {
	stdout = truncateOutput(stdout, limits.StdoutLimit)
	stderr = truncateOutput(stderr, limits.StderrLimit)

	var b strings.Builder
	fmt.Fprintf(&b, "exit code: %d (%.1fs)\n", exitCode, elapsed.Seconds())
	if stdout != "" {
		b.WriteString("stdout:\n")
		b.WriteString(stdout)
		if !strings.HasSuffix(stdout, "\n") {
			b.WriteByte('\n')
		}
	}
	if stderr != "" {
		b.WriteString("stderr:\n")
		b.WriteString(stderr)
	}
	return strings.TrimRight(b.String(), "\n")
}

func truncateOutput(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	return s[:limit] + fmt.Sprintf("\n... (%d bytes truncated)", len(s)-limit)
}

// buildSafeEnv creates a sanitized environment for command execution.
// Only whitelisted environment variables are passed through.
func buildSafeEnv() []string {
	env := make([]string, 0, len(SafeEnvVars))
	for _, key := range SafeEnvVars {
		if val, ok := os.LookupEnv(key); ok {
			env = append(env, key+"="+val)
		}
	}
	return env
}
