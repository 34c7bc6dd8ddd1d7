// Package stats accumulates per-run counters and renders the final report.
package stats

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/arthur-debert/tidyup/pkg/types"
)

// topExtensions is how many extensions the report lists before bucketing the
// remainder as "Other"
const topExtensions = 5

// RunStats holds the counters and byte totals for one run. Constructed once
// per run and mutated by every terminal outcome of the pipeline; never a
// process-wide singleton.
type RunStats struct {
	Moved       int
	Deleted     int
	Skipped     int
	Renamed     int
	DirsCreated int

	// TotalProcessed counts terminal outcomes; directory creations are
	// tracked separately and do not count as processed files
	TotalProcessed int

	TotalBytes int64

	extCounts map[string]int
}

// New creates an empty RunStats.
func New() *RunStats {
	return &RunStats{extCounts: make(map[string]int)}
}

// Record registers the terminal disposition of one entry.
func (s *RunStats) Record(outcome types.MoveOutcome) {
	switch outcome {
	case types.OutcomeMoved:
		s.Moved++
	case types.OutcomeRenamedAndMoved:
		s.Moved++
		s.Renamed++
	case types.OutcomeDeleted, types.OutcomeDeletedDuplicate:
		s.Deleted++
	case types.OutcomeSkipped, types.OutcomeSkippedDuplicate:
		s.Skipped++
	}
	s.TotalProcessed++
}

// RecordDirCreated registers a created destination directory.
func (s *RunStats) RecordDirCreated() {
	s.DirsCreated++
}

// AddFile registers the size and extension of an eligible file.
func (s *RunStats) AddFile(sizeBytes int64, ext string) {
	s.TotalBytes += sizeBytes
	s.extCounts[types.NormalizeExt(ext)]++
}

// ExtensionCount returns how many files carried ext.
func (s *RunStats) ExtensionCount(ext string) int {
	return s.extCounts[types.NormalizeExt(ext)]
}

// Report renders the human-readable end-of-run summary: totals, action
// breakdown, and the top extensions by count with the rest bucketed as
// "Other". The format carries no compatibility contract.
func (s *RunStats) Report() string {
	var b strings.Builder

	b.WriteString("------- FILE ORGANIZATION REPORT -------\n\n")

	b.WriteString("--- SUMMARY ---\n")
	fmt.Fprintf(&b, "\tTotal files processed: %d\n", s.TotalProcessed)
	fmt.Fprintf(&b, "\tTotal data processed: %s\n", humanize.IBytes(uint64(s.TotalBytes)))
	fmt.Fprintf(&b, "\tDirectories created: %d\n", s.DirsCreated)

	b.WriteString("\n--- ACTION BREAKDOWN ---\n")
	fmt.Fprintf(&b, "\tFiles moved: %d\n", s.Moved)
	fmt.Fprintf(&b, "\tFiles deleted: %d\n", s.Deleted)
	fmt.Fprintf(&b, "\tFiles skipped: %d\n", s.Skipped)
	fmt.Fprintf(&b, "\tFiles renamed: %d\n", s.Renamed)

	fmt.Fprintf(&b, "\n--- FILE TYPE BREAKDOWN (%d unique types) ---\n", len(s.extCounts))
	if len(s.extCounts) == 0 {
		b.WriteString("\tNo file types tracked.\n")
	} else {
		for _, tc := range s.sortedExtensions() {
			fmt.Fprintf(&b, "\t.%s: %d files\n", tc.ext, tc.count)
		}
		if other := s.otherCount(); other > 0 {
			fmt.Fprintf(&b, "\tOther types: %d files\n", other)
		}
	}

	b.WriteString("\n----------------------------------------")
	return b.String()
}

type extCount struct {
	ext   string
	count int
}

// sortedExtensions returns the top extensions by descending count, ties
// broken alphabetically for a stable report.
func (s *RunStats) sortedExtensions() []extCount {
	all := make([]extCount, 0, len(s.extCounts))
	for ext, count := range s.extCounts {
		all = append(all, extCount{ext: ext, count: count})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].count != all[j].count {
			return all[i].count > all[j].count
		}
		return all[i].ext < all[j].ext
	})
	if len(all) > topExtensions {
		all = all[:topExtensions]
	}
	return all
}

func (s *RunStats) otherCount() int {
	top := s.sortedExtensions()
	counted := 0
	for _, tc := range top {
		counted += tc.count
	}
	total := 0
	for _, count := range s.extCounts {
		total += count
	}
	return total - counted
}
