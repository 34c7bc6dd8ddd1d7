// Package testutil provides an in-memory types.FS implementation and fixture
// helpers for pipeline tests.
package testutil

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/tidyup/pkg/types"
)

// WriteFile creates a file with the given content, creating parents as needed.
func WriteFile(t *testing.T, fsys *MemoryFS, path, content string) {
	t.Helper()
	require.NoError(t, fsys.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, fsys.WriteFile(path, []byte(content), 0644))
}

// WriteFileAged creates a file and backdates its modification time.
func WriteFileAged(t *testing.T, fsys *MemoryFS, path, content string, modTime time.Time) {
	t.Helper()
	WriteFile(t, fsys, path, content)
	require.NoError(t, fsys.Touch(path, modTime))
}

// Exists reports whether path exists in fsys.
func Exists(fsys types.FS, path string) bool {
	_, err := fsys.Stat(path)
	return err == nil
}

// ListNames returns the sorted names of dir's children.
func ListNames(t *testing.T, fsys types.FS, dir string) []string {
	t.Helper()
	entries, err := fsys.ReadDir(dir)
	require.NoError(t, err)

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names
}

// Snapshot walks dir recursively and returns a path-to-content map of every
// regular file. Used to assert that dry runs have zero filesystem effect.
func Snapshot(t *testing.T, fsys types.FS, dir string) map[string]string {
	t.Helper()
	snap := make(map[string]string)
	snapshotInto(t, fsys, dir, snap)
	return snap
}

func snapshotInto(t *testing.T, fsys types.FS, dir string, snap map[string]string) {
	t.Helper()
	entries, err := fsys.ReadDir(dir)
	require.NoError(t, err)

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if entry.IsDir() {
			snapshotInto(t, fsys, path, snap)
			continue
		}
		content, err := fsys.ReadFile(path)
		require.NoError(t, err)
		snap[path] = string(content)
	}
}
