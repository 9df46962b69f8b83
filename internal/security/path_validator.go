package security

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PathValidator validates file paths to prevent directory traversal attacks.
type PathValidator struct {
	allowedDirs []string
}

// NewPathValidator creates a new path validator. Paths validate successfully
// only when their canonical form lies within one of the allowed directories.
// An empty allow-list permits any path.
func NewPathValidator(allowedDirs []string) *PathValidator {
	normalized := make([]string, 0, len(allowedDirs))
	for _, dir := range allowedDirs {
		if resolved, err := filepath.EvalSymlinks(filepath.Clean(dir)); err == nil {
			normalized = append(normalized, resolved)
		} else {
			normalized = append(normalized, filepath.Clean(dir))
		}
	}
	return &PathValidator{allowedDirs: normalized}
}

// Validate validates that a path is safe and within allowed directories.
// Uses filepath.EvalSymlinks for atomic symlink resolution to prevent TOCTOU races.
func (v *PathValidator) Validate(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("empty path")
	}

	if strings.Contains(path, "\x00") {
		return "", fmt.Errorf("null byte in path")
	}

	absPath, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	resolvedPath, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("failed to resolve symlinks: %w", err)
		}
		// Path doesn't exist yet - that's OK for new files, but resolve the
		// parent directory to prevent symlink escapes through it.
		parentDir := filepath.Dir(absPath)
		resolvedParent, parentErr := filepath.EvalSymlinks(parentDir)
		if parentErr != nil && !os.IsNotExist(parentErr) {
			return "", fmt.Errorf("failed to resolve parent path: %w", parentErr)
		}
		if resolvedParent != "" {
			resolvedPath = filepath.Join(resolvedParent, filepath.Base(absPath))
		} else {
			resolvedPath = absPath
		}
	}

	if !v.isAllowed(resolvedPath) {
		return "", fmt.Errorf("path '%s' is outside allowed directories", path)
	}

	return resolvedPath, nil
}

// ValidateFile validates a file path for read/write operations.
func (v *PathValidator) ValidateFile(path string) (string, error) {
	absPath, err := v.Validate(path)
	if err != nil {
		return "", err
	}

	dir := filepath.Dir(absPath)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return "", fmt.Errorf("parent directory does not exist: %s", dir)
	}

	return absPath, nil
}

// ValidateDir validates a directory path.
func (v *PathValidator) ValidateDir(path string) (string, error) {
	absPath, err := v.Validate(path)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return "", fmt.Errorf("cannot access path: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("not a directory: %s", path)
	}

	return absPath, nil
}

// isAllowed checks if the path is within allowed directories.
func (v *PathValidator) isAllowed(absPath string) bool {
	if len(v.allowedDirs) == 0 {
		return true
	}

	for _, allowedDir := range v.allowedDirs {
		if isPathWithin(absPath, allowedDir) {
			return true
		}
	}
	return false
}

// isPathWithin checks if target is within base directory.
func isPathWithin(target, base string) bool {
	rel, err := filepath.Rel(base, target)
	if err != nil {
		return false
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false
	}
	return true
}
