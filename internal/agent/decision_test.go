package agent

import (
	"reflect"
	"testing"
)

func TestParseDecision(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    *Decision
		wantErr bool
	}{
		{
			name: "tool call",
			raw:  `{"thought": "look first", "tool": "read_file", "args": {"path": "main.go"}}`,
			want: &Decision{Thought: "look first", Tool: "read_file", Args: map[string]any{"path": "main.go"}},
		},
		{
			name: "reply",
			raw:  `{"thought": "done", "reply": "All set."}`,
			want: &Decision{Thought: "done", Reply: "All set.", IsReply: true},
		},
		{
			name: "empty reply is valid",
			raw:  `{"thought": "nothing to add", "reply": ""}`,
			want: &Decision{Thought: "nothing to add", IsReply: true},
		},
		{
			name: "fenced",
			raw:  "```json\n{\"tool\": \"list_dir\", \"args\": {}}\n```",
			want: &Decision{Tool: "list_dir", Args: map[string]any{}},
		},
		{
			name: "prose around",
			raw:  `Sure! Here's my decision: {"reply": "hi"} Hope that helps.`,
			want: &Decision{Reply: "hi", IsReply: true},
		},
		{
			name: "tool call wins over reply",
			raw:  `{"tool": "read_file", "args": {"path": "a"}, "reply": "also this"}`,
			want: &Decision{Tool: "read_file", Args: map[string]any{"path": "a"}},
		},
		{
			name: "missing args defaults to empty map",
			raw:  `{"tool": "list_dir"}`,
			want: &Decision{Tool: "list_dir", Args: map[string]any{}},
		},
		{
			name:    "neither shape",
			raw:     `{"thought": "hmm"}`,
			wantErr: true,
		},
		{
			name:    "no json at all",
			raw:     "I think we should read the file.",
			wantErr: true,
		},
		{
			name:    "broken json",
			raw:     `{"tool": "read_file", "args": {`,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDecision(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDecision() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseDecision() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestLooksStructured(t *testing.T) {
	if looksStructured("just a plain sentence") {
		t.Error("plain prose flagged as structured")
	}
	if !looksStructured(`attempt: {"tool": "x"`) {
		t.Error("truncated json not flagged as structured")
	}
}
