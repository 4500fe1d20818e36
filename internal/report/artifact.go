// Package report renders aggregation results into persisted artifacts: text
// tables, PNG charts, and an HTML overview dashboard, all written through a
// scoped artifact writer that owns path resolution and directory creation.
package report

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"unicode"

	"github.com/banshee-data/claims.report/internal/fsutil"
	"github.com/banshee-data/claims.report/internal/monitoring"
)

// Writer is a scoped artifact writer. All artifact paths resolve under its
// root; missing directories are created on demand and existing artifacts are
// overwritten without warning so re-runs are idempotent.
type Writer struct {
	fs   fsutil.FileSystem
	root string

	mu      sync.Mutex
	written int
}

// NewWriter creates a writer rooted at dir.
func NewWriter(fsys fsutil.FileSystem, dir string) *Writer {
	return &Writer{fs: fsys, root: dir}
}

// Root returns the output root directory.
func (w *Writer) Root() string { return w.root }

// Written returns the number of artifacts written so far.
func (w *Writer) Written() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.written
}

// WriteArtifact persists data at the path elements relative to the root,
// creating any missing parent directories.
func (w *Writer) WriteArtifact(data []byte, elem ...string) error {
	path := filepath.Join(append([]string{w.root}, elem...)...)
	if err := w.fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}
	if err := w.fs.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write artifact %s: %w", path, err)
	}

	w.mu.Lock()
	w.written++
	w.mu.Unlock()

	monitoring.Logf("saved artifact: %s", path)
	return nil
}

// Slug derives a deterministic filename component from a dimension name:
// spaces and slashes become underscores; other non-alphanumeric characters
// (except underscore and hyphen) are stripped.
func Slug(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-':
			b.WriteRune(r)
		case unicode.IsSpace(r) || r == '/':
			b.WriteRune(' ')
		}
	}
	return strings.ReplaceAll(strings.Join(strings.Fields(b.String()), " "), " ", "_")
}
