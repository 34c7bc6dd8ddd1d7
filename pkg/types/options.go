package types

// Date prefix modes accepted by the classifier. Any other non-empty value is
// invalid and disables prefixing for the remainder of the run.
const (
	DatePrefixModified = "modified"
	DatePrefixCreated  = "created"
)

// Options carries the run-scoped flags consumed by the core pipeline.
// They are supplied by the CLI layer and are read-only for a run.
type Options struct {
	// SourceDir is the directory whose immediate children are organized
	SourceDir string

	// DryRun computes and logs actions without touching the filesystem
	DryRun bool

	// InPlace skips category resolution and keeps files in their folder
	InPlace bool

	// MinSizeMB skips files smaller than this many megabytes (0 = off)
	MinSizeMB int

	// ArchiveOlderThanDays nests categories under Archive/ for files whose
	// modification time is strictly older than this many days (0 = off)
	ArchiveOlderThanDays int

	// DatePrefix is "modified", "created" or empty
	DatePrefix string

	// Dedup enables content-hash deduplication
	Dedup bool

	// DeleteDuplicates removes duplicates instead of skipping them.
	// Only meaningful together with Dedup.
	DeleteDuplicates bool
}
