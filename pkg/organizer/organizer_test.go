// Test Type: Integration Test
// Description: End-to-end pipeline tests over an in-memory filesystem

package organizer_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/tidyup/pkg/config"
	tidyerr "github.com/arthur-debert/tidyup/pkg/errors"
	"github.com/arthur-debert/tidyup/pkg/organizer"
	"github.com/arthur-debert/tidyup/pkg/rules"
	"github.com/arthur-debert/tidyup/pkg/stats"
	"github.com/arthur-debert/tidyup/pkg/testutil"
	"github.com/arthur-debert/tidyup/pkg/types"
)

func categories(t *testing.T) config.CategoryMap {
	t.Helper()
	m, err := config.ParseCategoryMap([]byte(`{"pdf": "Documents", "jpg": "Images"}`), "json")
	require.NoError(t, err)
	return m
}

func run(t *testing.T, fsys *testutil.MemoryFS, opts types.Options, ruleList []rules.Rule) *stats.RunStats {
	t.Helper()
	org, err := organizer.New(fsys, opts, categories(t), ruleList)
	require.NoError(t, err)
	runStats, err := org.Run()
	require.NoError(t, err)
	return runStats
}

func TestNew_InvalidSource(t *testing.T) {
	t.Run("missing_directory", func(t *testing.T) {
		fsys := testutil.NewMemoryFS()
		_, err := organizer.New(fsys, types.Options{SourceDir: "/nope"}, categories(t), nil)
		require.Error(t, err)
		assert.Equal(t, tidyerr.ErrSourceInvalid, tidyerr.GetErrorCode(err))
	})

	t.Run("source_is_a_file", func(t *testing.T) {
		fsys := testutil.NewMemoryFS()
		testutil.WriteFile(t, fsys, "/notadir", "x")
		_, err := organizer.New(fsys, types.Options{SourceDir: "/notadir"}, categories(t), nil)
		require.Error(t, err)
		assert.Equal(t, tidyerr.ErrSourceInvalid, tidyerr.GetErrorCode(err))
	})
}

func TestRun_DefaultClassification(t *testing.T) {
	fsys := testutil.NewMemoryFS()
	testutil.WriteFile(t, fsys, "/src/report.pdf", "doc")
	testutil.WriteFile(t, fsys, "/src/photo.jpg", "img")
	testutil.WriteFile(t, fsys, "/src/blob.xyz", "???")

	runStats := run(t, fsys, types.Options{SourceDir: "/src"}, nil)

	assert.True(t, testutil.Exists(fsys, "/src/Documents/report.pdf"))
	assert.True(t, testutil.Exists(fsys, "/src/Images/photo.jpg"))
	assert.True(t, testutil.Exists(fsys, "/src/Miscellaneous/blob.xyz"))

	assert.Equal(t, 3, runStats.Moved)
	assert.Equal(t, 3, runStats.DirsCreated)
	assert.Equal(t, 0, runStats.Skipped)
}

func TestRun_EligibilityGate(t *testing.T) {
	t.Run("hidden_and_directories_skipped", func(t *testing.T) {
		fsys := testutil.NewMemoryFS()
		testutil.WriteFile(t, fsys, "/src/.hidden.pdf", "secret")
		testutil.WriteFile(t, fsys, "/src/Documents/old.pdf", "prior output")
		require.NoError(t, fsys.MkdirAll("/src/projects", 0755))
		testutil.WriteFile(t, fsys, "/src/report.pdf", "doc")

		runStats := run(t, fsys, types.Options{SourceDir: "/src"}, nil)

		assert.True(t, testutil.Exists(fsys, "/src/.hidden.pdf"))
		assert.True(t, testutil.Exists(fsys, "/src/Documents/old.pdf"))
		assert.True(t, testutil.Exists(fsys, "/src/projects"))
		assert.True(t, testutil.Exists(fsys, "/src/Documents/report.pdf"))

		assert.Equal(t, 1, runStats.Moved)
		assert.Equal(t, 3, runStats.Skipped)
	})

	t.Run("min_size_filter", func(t *testing.T) {
		fsys := testutil.NewMemoryFS()
		testutil.WriteFile(t, fsys, "/src/small.pdf", "tiny")
		testutil.WriteFile(t, fsys, "/src/big.pdf", strings.Repeat("x", 2*1024*1024))

		runStats := run(t, fsys, types.Options{SourceDir: "/src", MinSizeMB: 1}, nil)

		assert.True(t, testutil.Exists(fsys, "/src/small.pdf"))
		assert.True(t, testutil.Exists(fsys, "/src/Documents/big.pdf"))
		assert.Equal(t, 1, runStats.Moved)
		assert.Equal(t, 1, runStats.Skipped)
	})
}

func TestRun_CustomRules(t *testing.T) {
	loadRules := func(t *testing.T, fsys *testutil.MemoryFS, body string) []rules.Rule {
		t.Helper()
		testutil.WriteFile(t, fsys, "/rules.json", body)
		return rules.Load(fsys, "/rules.json")
	}

	t.Run("rule_move_overrides_category", func(t *testing.T) {
		fsys := testutil.NewMemoryFS()
		testutil.WriteFile(t, fsys, "/src/invoice-march.pdf", "doc")
		testutil.WriteFile(t, fsys, "/src/report.pdf", "doc2")
		ruleList := loadRules(t, fsys, `[
			{"name": "invoices", "filters": {"filename_contains": "invoice"}, "action": {"move_to": "Invoices"}}
		]`)

		run(t, fsys, types.Options{SourceDir: "/src"}, ruleList)

		assert.True(t, testutil.Exists(fsys, "/src/Invoices/invoice-march.pdf"))
		assert.True(t, testutil.Exists(fsys, "/src/Documents/report.pdf"))
	})

	t.Run("rule_delete_short_circuits", func(t *testing.T) {
		fsys := testutil.NewMemoryFS()
		testutil.WriteFile(t, fsys, "/src/junk.tmp", "x")
		ruleList := loadRules(t, fsys, `[
			{"name": "junk", "filters": {"extensions": "tmp"}, "action": {"delete_file": true}}
		]`)

		runStats := run(t, fsys, types.Options{SourceDir: "/src"}, ruleList)

		assert.False(t, testutil.Exists(fsys, "/src/junk.tmp"))
		assert.Equal(t, 1, runStats.Deleted)
		assert.Equal(t, 0, runStats.Moved)
		assert.Equal(t, 0, runStats.DirsCreated, "deletion bypasses destination resolution")
	})

	t.Run("rule_rename_prefix_counts_as_rename", func(t *testing.T) {
		fsys := testutil.NewMemoryFS()
		testutil.WriteFile(t, fsys, "/src/report.pdf", "doc")
		ruleList := loadRules(t, fsys, `[
			{"name": "work", "filters": {"extensions": "pdf"}, "action": {"rename_prefix": "work_"}}
		]`)

		runStats := run(t, fsys, types.Options{SourceDir: "/src"}, ruleList)

		assert.True(t, testutil.Exists(fsys, "/src/Documents/work_report.pdf"))
		assert.Equal(t, 1, runStats.Moved)
		assert.Equal(t, 1, runStats.Renamed)
	})
}

func TestRun_Dedup(t *testing.T) {
	t.Run("skip_duplicates", func(t *testing.T) {
		fsys := testutil.NewMemoryFS()
		testutil.WriteFile(t, fsys, "/src/a.pdf", "identical content")
		testutil.WriteFile(t, fsys, "/src/b.pdf", "identical content")

		runStats := run(t, fsys, types.Options{SourceDir: "/src", Dedup: true}, nil)

		assert.True(t, testutil.Exists(fsys, "/src/Documents/a.pdf"))
		assert.True(t, testutil.Exists(fsys, "/src/b.pdf"), "duplicate is skipped, not moved")
		assert.False(t, testutil.Exists(fsys, "/src/Documents/b.pdf"))
		assert.Equal(t, 1, runStats.Moved)
		assert.Equal(t, 1, runStats.Skipped)
	})

	t.Run("delete_duplicates", func(t *testing.T) {
		// The canonical scenario: one copy moved, the other removed.
		fsys := testutil.NewMemoryFS()
		testutil.WriteFile(t, fsys, "/src/a.pdf", "identical content")
		testutil.WriteFile(t, fsys, "/src/b.pdf", "identical content")

		runStats := run(t, fsys, types.Options{
			SourceDir: "/src", Dedup: true, DeleteDuplicates: true,
		}, nil)

		content, err := fsys.ReadFile("/src/Documents/a.pdf")
		require.NoError(t, err)
		assert.Equal(t, "identical content", string(content))

		assert.False(t, testutil.Exists(fsys, "/src/b.pdf"))
		assert.False(t, testutil.Exists(fsys, "/src/Documents/b.pdf"))
		assert.Equal(t, 1, runStats.Moved)
		assert.Equal(t, 1, runStats.Deleted)
	})

	t.Run("duplicate_of_prior_output", func(t *testing.T) {
		fsys := testutil.NewMemoryFS()
		testutil.WriteFile(t, fsys, "/src/Documents/report.pdf", "archived")
		testutil.WriteFile(t, fsys, "/src/report.pdf", "archived")

		runStats := run(t, fsys, types.Options{
			SourceDir: "/src", Dedup: true, DeleteDuplicates: true,
		}, nil)

		assert.False(t, testutil.Exists(fsys, "/src/report.pdf"))
		assert.Equal(t, 1, runStats.Deleted)
		assert.Equal(t, 0, runStats.Moved)
	})

	t.Run("dry_run_downgrades_deletion_to_skip", func(t *testing.T) {
		fsys := testutil.NewMemoryFS()
		testutil.WriteFile(t, fsys, "/src/a.pdf", "identical content")
		testutil.WriteFile(t, fsys, "/src/b.pdf", "identical content")

		runStats := run(t, fsys, types.Options{
			SourceDir: "/src", Dedup: true, DeleteDuplicates: true, DryRun: true,
		}, nil)

		assert.True(t, testutil.Exists(fsys, "/src/b.pdf"))
		assert.Equal(t, 0, runStats.Deleted)
		assert.Equal(t, 1, runStats.Skipped)
	})

	t.Run("disabled_dedup_moves_both_with_suffix", func(t *testing.T) {
		fsys := testutil.NewMemoryFS()
		testutil.WriteFile(t, fsys, "/src/Documents/report.pdf", "same")
		testutil.WriteFile(t, fsys, "/src/report.pdf", "same")

		runStats := run(t, fsys, types.Options{SourceDir: "/src"}, nil)

		assert.True(t, testutil.Exists(fsys, "/src/Documents/report_1.pdf"))
		assert.Equal(t, 1, runStats.Moved)
	})
}

func TestRun_Archiving(t *testing.T) {
	fsys := testutil.NewMemoryFS()
	old := time.Now().AddDate(0, 0, -400)
	testutil.WriteFileAged(t, fsys, "/src/ancient.pdf", "doc", old)
	testutil.WriteFile(t, fsys, "/src/fresh.pdf", "doc2")

	run(t, fsys, types.Options{SourceDir: "/src", ArchiveOlderThanDays: 30}, nil)

	assert.True(t, testutil.Exists(fsys, "/src/Archive/Documents/ancient.pdf"))
	assert.True(t, testutil.Exists(fsys, "/src/Documents/fresh.pdf"))
}

func TestRun_InPlace(t *testing.T) {
	fsys := testutil.NewMemoryFS()
	modTime := time.Date(2024, 3, 2, 8, 0, 0, 0, time.UTC)
	testutil.WriteFileAged(t, fsys, "/src/report.pdf", "doc", modTime)

	runStats := run(t, fsys, types.Options{
		SourceDir: "/src", InPlace: true, DatePrefix: types.DatePrefixModified,
	}, nil)

	assert.True(t, testutil.Exists(fsys, "/src/2024-03-02_report.pdf"))
	assert.False(t, testutil.Exists(fsys, "/src/Documents"), "in-place mode never categorizes")
	assert.Equal(t, 1, runStats.Renamed)
}

func TestRun_DryRunHasZeroEffect(t *testing.T) {
	fsys := testutil.NewMemoryFS()
	testutil.WriteFile(t, fsys, "/src/report.pdf", "doc")
	testutil.WriteFile(t, fsys, "/src/photo.jpg", "img")
	testutil.WriteFile(t, fsys, "/src/copy.jpg", "img")

	before := testutil.Snapshot(t, fsys, "/src")

	runStats := run(t, fsys, types.Options{
		SourceDir: "/src", DryRun: true, Dedup: true, DeleteDuplicates: true,
	}, nil)

	assert.Equal(t, before, testutil.Snapshot(t, fsys, "/src"))
	assert.Equal(t, 2, runStats.Moved, "projected stats still report intended moves")
}

func TestRun_SecondRunIsIdempotent(t *testing.T) {
	fsys := testutil.NewMemoryFS()
	testutil.WriteFile(t, fsys, "/src/report.pdf", "doc")
	testutil.WriteFile(t, fsys, "/src/photo.jpg", "img")

	first := run(t, fsys, types.Options{SourceDir: "/src"}, nil)
	assert.Equal(t, 2, first.Moved)

	second := run(t, fsys, types.Options{SourceDir: "/src"}, nil)
	assert.Equal(t, 0, second.Moved)
	assert.Equal(t, 0, second.DirsCreated)

	assert.True(t, testutil.Exists(fsys, "/src/Documents/report.pdf"))
	assert.True(t, testutil.Exists(fsys, "/src/Images/photo.jpg"))
}

func TestRun_VanishedEntryIsSkipped(t *testing.T) {
	fsys := testutil.NewMemoryFS()
	testutil.WriteFile(t, fsys, "/src/report.pdf", "doc")
	testutil.WriteFile(t, fsys, "/src/ghost.pdf", "gone")
	fsys.WithError("/src/ghost.pdf", errors.New("no such file or directory"))

	runStats := run(t, fsys, types.Options{SourceDir: "/src"}, nil)

	assert.Equal(t, 1, runStats.Moved)
	assert.Equal(t, 1, runStats.Skipped)
}
