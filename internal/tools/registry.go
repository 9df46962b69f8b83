package tools

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"atelier/internal/builder"
	"atelier/internal/llm"
	"atelier/internal/logging"
	"atelier/internal/security"
	"atelier/internal/workspace"
)

// Registry manages the collection of available tools.
type Registry struct {
	tools map[string]Tool
	mu    sync.RWMutex
}

// NewRegistry creates a new tool registry.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Tool),
	}
}

// Get retrieves a tool by name (read-optimized with RLock).
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tool, ok := r.tools[name]
	return tool, ok
}

// List returns all registered tools sorted by name, so the prompt
// catalog is stable across runs.
func (r *Registry) List() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tools := make([]Tool, 0, len(r.tools))
	for _, tool := range r.tools {
		tools = append(tools, tool)
	}
	sort.Slice(tools, func(i, j int) bool { return tools[i].Name() < tools[j].Name() })
	return tools
}

// Names returns the sorted names of all registered tools.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Register adds a tool to the registry.
func (r *Registry) Register(tool Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := tool.Name()
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool already registered: %s", name)
	}

	r.tools[name] = tool
	return nil
}

// MustRegister adds a tool to the registry and logs a warning on error.
func (r *Registry) MustRegister(tool Tool) {
	if err := r.Register(tool); err != nil {
		logging.Warn("failed to register tool", "tool", tool.Name(), "error", err)
	}
}

// TerminalLimits bounds run_terminal execution.
type TerminalLimits struct {
	Timeout     time.Duration
	StdoutLimit int
	StderrLimit int
}

// Deps carries the shared services tools are built from.
type Deps struct {
	Workspace *workspace.Accessor
	Commands  *security.CommandValidator
	LLM       llm.Client
	Builder   *builder.Service
	Terminal  TerminalLimits
}

// NewDefaultRegistry builds the standard tool set. Tools that need an
// LLM or a builder are only registered when the dependency is present.
func NewDefaultRegistry(deps Deps) *Registry {
	r := NewRegistry()
	r.MustRegister(NewReadFileTool(deps.Workspace))
	r.MustRegister(NewListDirTool(deps.Workspace))
	r.MustRegister(NewSearchFilesTool(deps.Workspace))
	r.MustRegister(NewEditFileTool(deps.Workspace))
	r.MustRegister(NewRunTerminalTool(deps.Workspace, deps.Commands, deps.Terminal))
	if deps.LLM != nil {
		r.MustRegister(NewSuggestFixTool(deps.LLM))
	}
	if deps.Builder != nil {
		r.MustRegister(NewSuggestQuestionsTool(deps.Builder))
		r.MustRegister(NewGenerateAppTool(deps.Builder))
	}
	return r
}
