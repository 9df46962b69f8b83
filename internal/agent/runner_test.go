package agent

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"atelier/internal/llm"
	"atelier/internal/tools"
	"atelier/internal/workspace"
)

// scriptedLLM returns queued replies in order and records the requests.
type scriptedLLM struct {
	replies  []string
	err      error
	requests []llm.Request
}

func (c *scriptedLLM) Name() string { return "scripted" }

func (c *scriptedLLM) Generate(ctx context.Context, req llm.Request) (string, error) {
	c.requests = append(c.requests, req)
	if c.err != nil {
		return "", c.err
	}
	if len(c.replies) == 0 {
		return "", fmt.Errorf("script exhausted after %d calls", len(c.requests))
	}
	reply := c.replies[0]
	c.replies = c.replies[1:]
	return reply, nil
}

func newTestRunner(t *testing.T, client llm.Client, files map[string]string) (*Runner, *workspace.Accessor, string) {
	t.Helper()
	root := t.TempDir()
	resolved, err := filepath.EvalSymlinks(root)
	if err != nil {
		t.Fatal(err)
	}
	for rel, content := range files {
		abs := filepath.Join(resolved, rel)
		if err := os.MkdirAll(filepath.Dir(abs), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(abs, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	ws, err := workspace.New(resolved, nil)
	if err != nil {
		t.Fatal(err)
	}
	registry := tools.NewDefaultRegistry(tools.Deps{Workspace: ws})
	runner := NewRunner(client, registry, &PromptBuilder{Registry: registry, Workspace: ws})
	return runner, ws, resolved
}

func userMsg(content string) []Message {
	return []Message{{Role: "user", Content: content}}
}

func TestRunReadThenReply(t *testing.T) {
	client := &scriptedLLM{replies: []string{
		`{"thought": "check the file", "tool": "read_file", "args": {"path": "hello.txt"}}`,
		`{"thought": "answer", "reply": "The file says: hi"}`,
	}}
	runner, _, _ := newTestRunner(t, client, map[string]string{"hello.txt": "hi"})

	res, err := runner.Run(context.Background(), userMsg("what does hello.txt say?"), Context{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.State != StateDone || res.Reply != "The file says: hi" {
		t.Errorf("result = %+v", res)
	}

	// The tool result must be in the transcript the second call saw.
	foundResult := false
	for _, m := range res.Messages {
		if strings.Contains(m.Content, "[Tool read_file result]: hi") {
			foundResult = true
		}
	}
	if !foundResult {
		t.Errorf("transcript missing tool result: %+v", res.Messages)
	}
}

func TestRunReplyEntersTranscript(t *testing.T) {
	t.Run("parsed reply", func(t *testing.T) {
		client := &scriptedLLM{replies: []string{`{"thought": "greet", "reply": "hello there"}`}}
		runner, _, _ := newTestRunner(t, client, nil)

		res, err := runner.Run(context.Background(), userMsg("hi"), Context{})
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		last := res.Messages[len(res.Messages)-1]
		if last.Role != "assistant" || last.Content != "hello there" {
			t.Fatalf("last message = %+v, want assistant reply", last)
		}

		// A caller that round-trips Messages must hand the model its own
		// prior replies.
		client.replies = []string{`{"thought": "again", "reply": "still here"}`}
		res2, err := runner.Run(context.Background(), append(res.Messages, Message{Role: "user", Content: "and now?"}), Context{})
		if err != nil {
			t.Fatalf("second Run: %v", err)
		}
		found := false
		for _, m := range client.requests[len(client.requests)-1].Messages {
			if m.Role == "assistant" && m.Content == "hello there" {
				found = true
			}
		}
		if !found {
			t.Errorf("second request missing prior assistant reply")
		}
		last = res2.Messages[len(res2.Messages)-1]
		if last.Role != "assistant" || last.Content != "still here" {
			t.Errorf("last message = %+v", last)
		}
	})

	t.Run("plain prose reply", func(t *testing.T) {
		client := &scriptedLLM{replies: []string{"Just a sentence, no JSON at all."}}
		runner, _, _ := newTestRunner(t, client, nil)

		res, err := runner.Run(context.Background(), userMsg("hi"), Context{})
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		last := res.Messages[len(res.Messages)-1]
		if last.Role != "assistant" || last.Content != res.Reply {
			t.Errorf("last message = %+v, reply = %q", last, res.Reply)
		}
	})
}

func TestRunApprovalGate(t *testing.T) {
	client := &scriptedLLM{replies: []string{
		`{"thought": "fix it", "tool": "edit_file", "args": {"path": "a.txt", "old_text": "old", "new_text": "new"}}`,
	}}
	runner, _, root := newTestRunner(t, client, map[string]string{"a.txt": "old"})

	res, err := runner.Run(context.Background(), userMsg("change old to new"), Context{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.State != StateAwaitingApproval || res.Pending == nil {
		t.Fatalf("result = %+v, want pending approval", res)
	}
	if res.Pending.Tool != "edit_file" || res.Pending.ID == "" {
		t.Errorf("pending = %+v", res.Pending)
	}
	if !strings.Contains(res.Pending.Preview, "-old") || !strings.Contains(res.Pending.Preview, "+new") {
		t.Errorf("preview = %q, want a diff", res.Pending.Preview)
	}

	// Nothing may be written while approval is pending.
	got, _ := os.ReadFile(filepath.Join(root, "a.txt"))
	if string(got) != "old" {
		t.Fatalf("file modified before approval: %q", got)
	}

	// Approve: the edit applies and the loop continues to a reply.
	client.replies = []string{`{"reply": "Done, a.txt updated."}`}
	resumed, err := runner.Resume(context.Background(), res.Messages, Context{}, res.Pending, true)
	if err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if resumed.State != StateDone || resumed.Reply == "" {
		t.Errorf("resumed = %+v", resumed)
	}
	got, _ = os.ReadFile(filepath.Join(root, "a.txt"))
	if string(got) != "new" {
		t.Errorf("file after approval = %q, want new", got)
	}
}

func TestResumeDeclined(t *testing.T) {
	client := &scriptedLLM{replies: []string{`{"reply": "Okay, I won't touch it."}`}}
	runner, _, root := newTestRunner(t, client, map[string]string{"a.txt": "old"})

	pending := &PendingApproval{ID: "x", Tool: "edit_file", Args: map[string]any{
		"path": "a.txt", "old_text": "old", "new_text": "new",
	}}
	res, err := runner.Resume(context.Background(), userMsg("edit it"), Context{}, pending, false)
	if err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if res.State != StateDone {
		t.Errorf("result = %+v", res)
	}
	got, _ := os.ReadFile(filepath.Join(root, "a.txt"))
	if string(got) != "old" {
		t.Errorf("declined edit applied anyway: %q", got)
	}

	declinedNote := false
	for _, m := range res.Messages {
		if strings.Contains(m.Content, "User declined edit_file") {
			declinedNote = true
		}
	}
	if !declinedNote {
		t.Error("transcript missing the declined note")
	}
}

func TestRunAutonomousSkipsApproval(t *testing.T) {
	client := &scriptedLLM{replies: []string{
		`{"tool": "edit_file", "args": {"path": "a.txt", "old_text": "old", "new_text": "new"}}`,
		`{"reply": "done"}`,
	}}
	runner, _, root := newTestRunner(t, client, map[string]string{"a.txt": "old"})

	res, err := runner.Run(context.Background(), userMsg("fix"), Context{Autonomous: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.State != StateDone {
		t.Errorf("result = %+v", res)
	}
	got, _ := os.ReadFile(filepath.Join(root, "a.txt"))
	if string(got) != "new" {
		t.Errorf("file = %q, want edit applied without approval", got)
	}
}

func TestRunBlockedCommandNeverReachesApproval(t *testing.T) {
	client := &scriptedLLM{replies: []string{
		`{"tool": "run_terminal", "args": {"command": "rm -rf /"}}`,
		`{"reply": "That command is not allowed."}`,
	}}
	runner, _, _ := newTestRunner(t, client, nil)

	res, err := runner.Run(context.Background(), userMsg("wipe the disk"), Context{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Pending != nil {
		t.Fatal("blocked command produced an approval request")
	}
	if res.State != StateDone {
		t.Errorf("result = %+v", res)
	}

	blockedNote := false
	for _, m := range res.Messages {
		if strings.Contains(m.Content, "command blocked") {
			blockedNote = true
		}
	}
	if !blockedNote {
		t.Errorf("transcript missing blocked-command result: %+v", res.Messages)
	}
}

func TestRunUnconfiguredWorkspace(t *testing.T) {
	client := &scriptedLLM{replies: []string{
		`{"tool": "read_file", "args": {"path": "a.txt"}}`,
		`{"reply": "Please open a project first."}`,
	}}
	ws, _ := workspace.New("", nil)
	registry := tools.NewDefaultRegistry(tools.Deps{Workspace: ws})
	runner := NewRunner(client, registry, &PromptBuilder{Registry: registry, Workspace: ws})

	res, err := runner.Run(context.Background(), userMsg("read a.txt"), Context{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.State != StateDone {
		t.Errorf("result = %+v", res)
	}
	configNote := false
	for _, m := range res.Messages {
		if strings.Contains(m.Content, "no workspace is configured") {
			configNote = true
		}
	}
	if !configNote {
		t.Errorf("transcript = %+v", res.Messages)
	}
}

func TestRunCorrectionThenSuccess(t *testing.T) {
	client := &scriptedLLM{replies: []string{
		`{"thought": "oops, no action"}`,
		`{"reply": "recovered"}`,
	}}
	runner, _, _ := newTestRunner(t, client, nil)

	res, err := runner.Run(context.Background(), userMsg("hi"), Context{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Reply != "recovered" {
		t.Errorf("result = %+v", res)
	}
	corrected := false
	for _, m := range res.Messages {
		if strings.Contains(m.Content, "not valid JSON") {
			corrected = true
		}
	}
	if !corrected {
		t.Error("transcript missing correction message")
	}
}

func TestRunMalformedOutputExhaustsCorrections(t *testing.T) {
	client := &scriptedLLM{replies: []string{
		`{"thought": "no action 1"}`,
		`{"thought": "no action 2"}`,
		`{"thought": "no action 3"}`,
	}}
	runner, _, _ := newTestRunner(t, client, nil)

	res, err := runner.Run(context.Background(), userMsg("hi"), Context{MaxCorrections: 2})
	if err == nil {
		t.Fatal("expected malformed_model_output error")
	}
	if KindOf(err) != KindMalformedModelOutput {
		t.Errorf("kind = %q, err = %v", KindOf(err), err)
	}
	if res.State != StateFailed {
		t.Errorf("state = %v", res.State)
	}
}

func TestRunPlainProseBecomesReply(t *testing.T) {
	client := &scriptedLLM{replies: []string{"Just a friendly sentence without any protocol."}}
	runner, _, _ := newTestRunner(t, client, nil)

	res, err := runner.Run(context.Background(), userMsg("hi"), Context{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Reply != "Just a friendly sentence without any protocol." {
		t.Errorf("reply = %q", res.Reply)
	}
}

func TestRunUnknownToolRecovery(t *testing.T) {
	client := &scriptedLLM{replies: []string{
		`{"tool": "teleport", "args": {}}`,
		`{"reply": "sticking to real tools"}`,
	}}
	runner, _, _ := newTestRunner(t, client, nil)

	res, err := runner.Run(context.Background(), userMsg("hi"), Context{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Reply != "sticking to real tools" {
		t.Errorf("result = %+v", res)
	}
	hinted := false
	for _, m := range res.Messages {
		if strings.Contains(m.Content, "Invalid tool: teleport") && strings.Contains(m.Content, "read_file") {
			hinted = true
		}
	}
	if !hinted {
		t.Errorf("transcript = %+v", res.Messages)
	}
}

func TestRunTurnBudgetGracefulReply(t *testing.T) {
	client := &scriptedLLM{replies: []string{
		`{"tool": "list_dir", "args": {}}`,
		`{"tool": "list_dir", "args": {}}`,
	}}
	runner, _, _ := newTestRunner(t, client, nil)

	res, err := runner.Run(context.Background(), userMsg("loop forever"), Context{MaxTurns: 2})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.State != StateDone || !strings.Contains(res.Reply, "turn limit") {
		t.Errorf("result = %+v", res)
	}
	if len(client.requests) != 2 {
		t.Errorf("model calls = %d, want 2", len(client.requests))
	}
}

func TestRunErrors(t *testing.T) {
	t.Run("no llm configured", func(t *testing.T) {
		registry := tools.NewRegistry()
		runner := NewRunner(nil, registry, &PromptBuilder{Registry: registry})
		_, err := runner.Run(context.Background(), userMsg("hi"), Context{})
		if KindOf(err) != KindNoLLMConfigured {
			t.Errorf("kind = %q", KindOf(err))
		}
	})
	t.Run("llm unavailable", func(t *testing.T) {
		client := &scriptedLLM{err: fmt.Errorf("give up: %w", llm.ErrUnavailable)}
		runner, _, _ := newTestRunner(t, client, nil)
		_, err := runner.Run(context.Background(), userMsg("hi"), Context{})
		if KindOf(err) != KindLLMUnavailable {
			t.Errorf("kind = %q, err = %v", KindOf(err), err)
		}
	})
	t.Run("aggregate timeout", func(t *testing.T) {
		client := &scriptedLLM{replies: []string{`{"reply": "too late"}`}}
		runner, _, _ := newTestRunner(t, client, nil)
		_, err := runner.Run(context.Background(), userMsg("hi"), Context{Timeout: time.Nanosecond})
		if KindOf(err) != KindTimeout {
			t.Errorf("kind = %q, err = %v", KindOf(err), err)
		}
	})
}

func TestSystemPromptContents(t *testing.T) {
	client := &scriptedLLM{replies: []string{`{"reply": "ok"}`}}
	runner, _, _ := newTestRunner(t, client, nil)

	if _, err := runner.Run(context.Background(), userMsg("hi"), Context{Style: "strict"}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(client.requests) == 0 {
		t.Fatal("no model call recorded")
	}
	system := client.requests[0].System
	for _, want := range []string{"read_file", "edit_file", "run_terminal", "JSON only", "reasoning-first", "the user will approve"} {
		if !strings.Contains(system, want) {
			t.Errorf("system prompt missing %q", want)
		}
	}
}
