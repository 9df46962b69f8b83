package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"atelier/internal/security"
)

var (
	// ErrNotConfigured indicates no workspace root was supplied for this request.
	ErrNotConfigured = errors.New("workspace root is not configured")

	// ErrAccessDenied indicates a path resolved outside the workspace root.
	ErrAccessDenied = errors.New("path is outside the allowed workspace")

	// ErrRootNotAllowed indicates the requested root is not in the allow-list.
	ErrRootNotAllowed = errors.New("workspace root is not an allowed directory")
)

// Accessor resolves logical paths against a workspace root, enforcing
// containment. It is the single boundary through which file and command
// tools touch the filesystem. An Accessor with an empty root rejects every
// operation with ErrNotConfigured.
//
// The workspace is treated as externally mutable: the accessor never caches
// file contents or listings.
type Accessor struct {
	root      string
	validator *security.PathValidator
}

// New creates an Accessor for the given root. When allowedRoots is non-empty
// the root itself must lie within one of them (ErrRootNotAllowed otherwise).
// An empty root yields an unconfigured accessor, which is valid: tools report
// the missing configuration per call instead of failing construction.
func New(root string, allowedRoots []string) (*Accessor, error) {
	if root == "" {
		return &Accessor{}, nil
	}

	if !filepath.IsAbs(root) {
		return nil, fmt.Errorf("workspace root must be absolute: %s", root)
	}

	resolved, err := filepath.EvalSymlinks(filepath.Clean(root))
	if err != nil {
		return nil, fmt.Errorf("cannot resolve workspace root %s: %w", root, err)
	}

	if len(allowedRoots) > 0 {
		rootCheck := security.NewPathValidator(allowedRoots)
		if _, err := rootCheck.Validate(resolved); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrRootNotAllowed, root)
		}
	}

	return &Accessor{
		root:      resolved,
		validator: security.NewPathValidator([]string{resolved}),
	}, nil
}

// Root returns the resolved workspace root, or "" when unconfigured.
func (a *Accessor) Root() string {
	return a.root
}

// Configured reports whether a workspace root is set.
func (a *Accessor) Configured() bool {
	return a.root != ""
}

// Resolve maps a logical path (relative to the root, "." for the root
// itself) to an absolute path, rejecting any escape from the root.
func (a *Accessor) Resolve(path string) (string, error) {
	if !a.Configured() {
		return "", ErrNotConfigured
	}

	candidate := path
	if !filepath.IsAbs(candidate) {
		candidate = filepath.Join(a.root, candidate)
	}

	resolved, err := a.validator.Validate(candidate)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrAccessDenied, path)
	}
	return resolved, nil
}

// ReadFile reads a file inside the workspace.
func (a *Accessor) ReadFile(path string) ([]byte, error) {
	abs, err := a.Resolve(path)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory, not a file", path)
	}

	return os.ReadFile(abs)
}

// WriteFile writes a file inside the workspace.
func (a *Accessor) WriteFile(path string, data []byte) error {
	abs, err := a.Resolve(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0755); err != nil {
		return err
	}
	return os.WriteFile(abs, data, 0644)
}

// ListDir returns the entry names of a directory inside the workspace.
// Directories are suffixed with a slash.
func (a *Accessor) ListDir(path string) ([]string, error) {
	abs, err := a.Resolve(path)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() {
			name += "/"
		}
		names = append(names, name)
	}
	return names, nil
}

// Rel converts an absolute path back to a workspace-relative one for display.
func (a *Accessor) Rel(abs string) string {
	if !a.Configured() {
		return abs
	}
	rel, err := filepath.Rel(a.root, abs)
	if err != nil {
		return abs
	}
	return rel
}
