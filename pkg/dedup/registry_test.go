// Test Type: Unit Test
// Description: Tests for the content-hash duplicate registry

package dedup_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/tidyup/pkg/dedup"
	"github.com/arthur-debert/tidyup/pkg/testutil"
	"github.com/arthur-debert/tidyup/pkg/types"
)

func fileEntry(t *testing.T, fsys *testutil.MemoryFS, path string) types.FileEntry {
	t.Helper()
	entry, err := types.NewFileEntry(fsys, path)
	require.NoError(t, err)
	return entry
}

func TestCheck(t *testing.T) {
	t.Run("first_occurrence_is_unique", func(t *testing.T) {
		fsys := testutil.NewMemoryFS()
		testutil.WriteFile(t, fsys, "/src/a.pdf", "content")

		r := dedup.NewRegistry(fsys)
		verdict := r.Check(fileEntry(t, fsys, "/src/a.pdf"), "/src/Documents/a.pdf")
		assert.Equal(t, dedup.Unique, verdict)
	})

	t.Run("identical_content_is_duplicate_in_run", func(t *testing.T) {
		fsys := testutil.NewMemoryFS()
		testutil.WriteFile(t, fsys, "/src/a.pdf", "same bytes")
		testutil.WriteFile(t, fsys, "/src/b.pdf", "same bytes")

		r := dedup.NewRegistry(fsys)
		assert.Equal(t, dedup.Unique, r.Check(fileEntry(t, fsys, "/src/a.pdf"), "/src/Documents/a.pdf"))
		assert.Equal(t, dedup.DuplicateInRun, r.Check(fileEntry(t, fsys, "/src/b.pdf"), "/src/Documents/b.pdf"))
	})

	t.Run("different_content_is_unique", func(t *testing.T) {
		fsys := testutil.NewMemoryFS()
		testutil.WriteFile(t, fsys, "/src/a.pdf", "one")
		testutil.WriteFile(t, fsys, "/src/b.pdf", "two")

		r := dedup.NewRegistry(fsys)
		assert.Equal(t, dedup.Unique, r.Check(fileEntry(t, fsys, "/src/a.pdf"), "/src/Documents/a.pdf"))
		assert.Equal(t, dedup.Unique, r.Check(fileEntry(t, fsys, "/src/b.pdf"), "/src/Documents/b.pdf"))
	})

	t.Run("existing_destination_with_same_content", func(t *testing.T) {
		fsys := testutil.NewMemoryFS()
		testutil.WriteFile(t, fsys, "/src/a.pdf", "archived already")
		testutil.WriteFile(t, fsys, "/src/Documents/a.pdf", "archived already")

		r := dedup.NewRegistry(fsys)
		verdict := r.Check(fileEntry(t, fsys, "/src/a.pdf"), "/src/Documents/a.pdf")
		assert.Equal(t, dedup.DuplicateAtDestination, verdict)
	})

	t.Run("existing_destination_with_different_content", func(t *testing.T) {
		fsys := testutil.NewMemoryFS()
		testutil.WriteFile(t, fsys, "/src/a.pdf", "new version")
		testutil.WriteFile(t, fsys, "/src/Documents/a.pdf", "old version")

		r := dedup.NewRegistry(fsys)
		verdict := r.Check(fileEntry(t, fsys, "/src/a.pdf"), "/src/Documents/a.pdf")
		assert.Equal(t, dedup.Unique, verdict)
	})

	t.Run("hash_failure_treated_as_unique", func(t *testing.T) {
		fsys := testutil.NewMemoryFS()
		testutil.WriteFile(t, fsys, "/src/a.pdf", "content")
		entry := fileEntry(t, fsys, "/src/a.pdf")
		fsys.WithError("/src/a.pdf", errors.New("I/O error"))

		r := dedup.NewRegistry(fsys)
		assert.Equal(t, dedup.Unique, r.Check(entry, "/src/Documents/a.pdf"))
	})
}

func TestHashFile(t *testing.T) {
	t.Run("identical_content_same_hash", func(t *testing.T) {
		fsys := testutil.NewMemoryFS()
		testutil.WriteFile(t, fsys, "/a", "payload")
		testutil.WriteFile(t, fsys, "/b", "payload")

		r := dedup.NewRegistry(fsys)
		ha, err := r.HashFile("/a")
		require.NoError(t, err)
		hb, err := r.HashFile("/b")
		require.NoError(t, err)
		assert.Equal(t, ha, hb)
		assert.Len(t, ha, 32)
	})

	t.Run("different_content_different_hash", func(t *testing.T) {
		fsys := testutil.NewMemoryFS()
		testutil.WriteFile(t, fsys, "/a", "payload one")
		testutil.WriteFile(t, fsys, "/b", "payload two")

		r := dedup.NewRegistry(fsys)
		ha, err := r.HashFile("/a")
		require.NoError(t, err)
		hb, err := r.HashFile("/b")
		require.NoError(t, err)
		assert.NotEqual(t, ha, hb)
	})

	t.Run("open_failure_returns_error", func(t *testing.T) {
		fsys := testutil.NewMemoryFS()
		r := dedup.NewRegistry(fsys)
		_, err := r.HashFile("/missing")
		assert.Error(t, err)
	})
}
