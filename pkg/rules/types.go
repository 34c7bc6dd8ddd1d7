package rules

// FilterKind is the closed set of filter predicates a rule may carry.
// Unknown filter names in a rule file map to FilterUnknown, which never
// matches (fail closed, never fail open).
type FilterKind int

const (
	FilterUnknown FilterKind = iota
	FilterExtensions
	FilterNameContains
	FilterNameStartsWith
	FilterNameEndsWith
	FilterMinSizeMB
	FilterOlderThanDays
	FilterNewerThanDays
)

func (k FilterKind) String() string {
	switch k {
	case FilterExtensions:
		return "extensions"
	case FilterNameContains:
		return "filename_contains"
	case FilterNameStartsWith:
		return "filename_starts_with"
	case FilterNameEndsWith:
		return "filename_ends_with"
	case FilterMinSizeMB:
		return "min_size_mb"
	case FilterOlderThanDays:
		return "older_than_days"
	case FilterNewerThanDays:
		return "newer_than_days"
	default:
		return "unknown"
	}
}

// Filter is one validated predicate from a rule's filter set. Values are
// normalized at load time; a filter with a malformed value keeps Invalid set
// and evaluates to no-match.
type Filter struct {
	Kind FilterKind

	// RawName is the filter name as written in the rule file, kept for logs
	RawName string

	// Extensions holds the normalized extension set for FilterExtensions
	Extensions []string

	// Pattern is the lowercased string for the filename tests
	Pattern string

	// SizeBytes is the threshold for FilterMinSizeMB
	SizeBytes int64

	// Days is the age threshold for the older/newer filters
	Days float64

	// Invalid marks a filter whose value could not be parsed
	Invalid bool
}

// Action is what a matching rule does with a file.
type Action struct {
	// MoveTo is the destination category; empty means fall back to the
	// extension map for the folder name
	MoveTo string

	// TargetFolder is a literal folder override that bypasses categories
	TargetFolder string

	// RenamePrefix is prepended to the filename and counts as a rename
	RenamePrefix string

	// DeleteFile deletes the file instead of moving it, short-circuiting
	// destination resolution and dedup
	DeleteFile bool
}

// Rule is a prioritized, filter-gated override of default classification.
type Rule struct {
	Name     string
	Priority int
	Filters  []Filter
	Action   Action
}

// DisplayName returns the rule name for log lines.
func (r Rule) DisplayName() string {
	if r.Name == "" {
		return "Unnamed rule"
	}
	return r.Name
}
