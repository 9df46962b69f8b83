package workspace

import (
	"bufio"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Match is one search hit inside the workspace.
type Match struct {
	Path string // workspace-relative path
	Line int    // 1-indexed
	Text string // the matching line, trimmed
}

// SearchOptions bound a text search.
type SearchOptions struct {
	// Glob filters candidate files by a doublestar pattern relative to the
	// search directory (e.g. "**/*.go"). Empty matches everything.
	Glob string
	// MaxMatches caps the result count. Zero means 100.
	MaxMatches int
	// MaxFileSize skips files larger than this many bytes. Zero means 500KB.
	MaxFileSize int64
}

// textExtensions are the file types included in text searches.
var textExtensions = map[string]bool{
	".go": true, ".py": true, ".js": true, ".jsx": true, ".ts": true,
	".tsx": true, ".html": true, ".css": true, ".scss": true, ".md": true,
	".txt": true, ".json": true, ".yaml": true, ".yml": true, ".toml": true,
	".xml": true, ".sh": true, ".sql": true, ".env": true, ".cfg": true,
	".ini": true, ".rs": true, ".java": true, ".rb": true, ".c": true,
	".h": true, ".cpp": true, ".hpp": true,
}

// Search performs a case-insensitive literal substring search under dir
// (workspace-relative, "." for the root). Hidden directories and common
// dependency directories are skipped. Results are capped, never an
// unbounded payload.
func (a *Accessor) Search(pattern, dir string, opts SearchOptions) ([]Match, error) {
	absDir, err := a.Resolve(dir)
	if err != nil {
		return nil, err
	}

	maxMatches := opts.MaxMatches
	if maxMatches <= 0 {
		maxMatches = 100
	}
	maxSize := opts.MaxFileSize
	if maxSize <= 0 {
		maxSize = 500 * 1024
	}

	needle := strings.ToLower(pattern)
	var matches []Match

	walkErr := filepath.WalkDir(absDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped, not fatal
		}
		if len(matches) >= maxMatches {
			return filepath.SkipAll
		}

		name := d.Name()
		if d.IsDir() {
			if path != absDir && (strings.HasPrefix(name, ".") || skipDirs[name]) {
				return filepath.SkipDir
			}
			return nil
		}

		if !textExtensions[strings.ToLower(filepath.Ext(name))] {
			return nil
		}

		rel, err := filepath.Rel(absDir, path)
		if err != nil {
			return nil
		}
		if opts.Glob != "" {
			ok, globErr := doublestar.Match(opts.Glob, filepath.ToSlash(rel))
			if globErr != nil || !ok {
				return nil
			}
		}

		if info, err := d.Info(); err != nil || info.Size() > maxSize {
			return nil
		}

		fileMatches := searchFile(path, needle, maxMatches-len(matches))
		for _, m := range fileMatches {
			m.Path = a.Rel(path)
			matches = append(matches, m)
		}
		return nil
	})
	if walkErr != nil {
		return matches, walkErr
	}

	return matches, nil
}

var skipDirs = map[string]bool{
	"node_modules": true,
	"vendor":       true,
	"__pycache__":  true,
	"dist":         true,
	"build":        true,
}

// FileHead is the leading portion of a workspace text file.
type FileHead struct {
	Path    string // workspace-relative
	Content string
}

// FileHeads returns the first headBytes of up to maxFiles text files,
// for ranking layers that want a cheap sample of the workspace.
func (a *Accessor) FileHeads(maxFiles, headBytes int) ([]FileHead, error) {
	root, err := a.Resolve(".")
	if err != nil {
		return nil, err
	}
	if maxFiles <= 0 {
		maxFiles = 30
	}
	if headBytes <= 0 {
		headBytes = 2048
	}

	var heads []FileHead
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if len(heads) >= maxFiles {
			return filepath.SkipAll
		}
		name := d.Name()
		if d.IsDir() {
			if path != root && (strings.HasPrefix(name, ".") || skipDirs[name]) {
				return filepath.SkipDir
			}
			return nil
		}
		if !textExtensions[strings.ToLower(filepath.Ext(name))] {
			return nil
		}

		f, err := os.Open(path)
		if err != nil {
			return nil
		}
		buf := make([]byte, headBytes)
		n, _ := f.Read(buf)
		f.Close()
		if n == 0 {
			return nil
		}
		heads = append(heads, FileHead{Path: a.Rel(path), Content: string(buf[:n])})
		return nil
	})
	if walkErr != nil {
		return heads, walkErr
	}
	return heads, nil
}

// searchFile scans one file for the needle, returning at most limit matches.
func searchFile(path, needle string, limit int) []Match {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var out []Match
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 256*1024), 256*1024)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if strings.Contains(strings.ToLower(line), needle) {
			text := strings.TrimSpace(line)
			if len(text) > 200 {
				text = text[:200] + "..."
			}
			out = append(out, Match{Line: lineNum, Text: text})
			if len(out) >= limit {
				break
			}
		}
	}
	return out
}
