package rules

import (
	"strings"
	"time"

	"github.com/arthur-debert/tidyup/pkg/logging"
	"github.com/arthur-debert/tidyup/pkg/types"
)

// Match iterates the sorted rule list and returns the first rule whose
// filters all evaluate true for the entry, or nil when no rule matches and
// default-mapping classification takes over. Evaluation is a logical AND
// with short-circuit on the first failing filter.
func Match(entry types.FileEntry, ruleList []Rule, now time.Time) *Rule {
	logger := logging.GetLogger("rules")

	for i := range ruleList {
		rule := &ruleList[i]
		if matchesAll(entry, rule, now) {
			logger.Info().
				Str("file", entry.Name).
				Str("rule", rule.DisplayName()).
				Msg("File matched custom rule")
			return rule
		}
	}
	return nil
}

func matchesAll(entry types.FileEntry, rule *Rule, now time.Time) bool {
	for _, f := range rule.Filters {
		if !evalFilter(f, entry, now) {
			return false
		}
	}
	return true
}

// evalFilter evaluates one predicate. String comparisons are
// case-insensitive. Invalid and unknown filters never match.
func evalFilter(f Filter, entry types.FileEntry, now time.Time) bool {
	if f.Invalid {
		return false
	}

	switch f.Kind {
	case FilterExtensions:
		for _, ext := range f.Extensions {
			if entry.Ext == ext {
				return true
			}
		}
		return false

	case FilterNameContains:
		// An empty pattern matches everything.
		return strings.Contains(strings.ToLower(entry.Name), f.Pattern)

	case FilterNameStartsWith:
		return strings.HasPrefix(strings.ToLower(entry.Name), f.Pattern)

	case FilterNameEndsWith:
		return strings.HasSuffix(strings.ToLower(entry.Name), f.Pattern)

	case FilterMinSizeMB:
		return entry.Size >= f.SizeBytes

	case FilterOlderThanDays:
		// Strictly before the threshold counts as old; equality does not.
		return entry.ModTime.Before(ageThreshold(now, f.Days))

	case FilterNewerThanDays:
		return !entry.ModTime.Before(ageThreshold(now, f.Days))

	default:
		return false
	}
}

func ageThreshold(now time.Time, days float64) time.Time {
	return now.Add(-time.Duration(days * 24 * float64(time.Hour)))
}
