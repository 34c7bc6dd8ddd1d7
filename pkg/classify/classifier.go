// Package classify resolves where a file belongs and what it should be
// called: custom-rule overrides, the extension map fallback, date prefixing
// and age-based archive nesting.
package classify

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/tidyup/pkg/config"
	"github.com/arthur-debert/tidyup/pkg/logging"
	"github.com/arthur-debert/tidyup/pkg/rules"
	"github.com/arthur-debert/tidyup/pkg/types"
)

const datePrefixLayout = "2006-01-02_"

// Classification is the resolved destination for one entry.
type Classification struct {
	// Folder is the destination folder relative to the source directory.
	// "." keeps the file in place (in-place mode, non-archived).
	Folder string

	// Filename is the final name the file should carry
	Filename string

	// Renamed is true when Filename differs from the entry's current name
	Renamed bool
}

// Classifier resolves target folders and filenames for one run. Constructed
// once per run; read-only afterwards.
type Classifier struct {
	categories       config.CategoryMap
	inPlace          bool
	prefixMode       string
	archiveThreshold time.Time
	logger           zerolog.Logger
}

// New builds a classifier from the run options. An unsupported date-prefix
// mode is not fatal: it is logged as an error and prefixing is disabled for
// the remainder of the run.
func New(categories config.CategoryMap, opts types.Options, now time.Time) *Classifier {
	logger := logging.GetLogger("classify")

	c := &Classifier{
		categories: categories,
		inPlace:    opts.InPlace,
		prefixMode: opts.DatePrefix,
		logger:     logger,
	}

	switch opts.DatePrefix {
	case "":
	case types.DatePrefixModified:
		logger.Info().Msg("Date prefixing active, using modification dates")
	case types.DatePrefixCreated:
		logger.Info().Msg("Date prefixing active, using creation dates")
	default:
		logger.Error().Str("mode", opts.DatePrefix).
			Msg("Invalid date prefix mode, prefixing disabled for this run")
		c.prefixMode = ""
	}

	if opts.ArchiveOlderThanDays > 0 {
		c.archiveThreshold = now.AddDate(0, 0, -opts.ArchiveOlderThanDays)
		logger.Info().Time("threshold", c.archiveThreshold).
			Msg("Archive mode active, older files will be nested under Archive")
	}

	return c
}

// Resolve produces the destination folder and final filename for entry given
// an optional matched rule. Folder fallback order: rule target_folder, rule
// move_to, extension map, default category. In-place mode skips category
// resolution entirely.
func (c *Classifier) Resolve(entry types.FileEntry, rule *rules.Rule) Classification {
	folder := c.resolveFolder(entry, rule)
	filename := c.resolveFilename(entry, rule)

	// Archiving boundary is strict: a file modified exactly at the
	// threshold is not archived.
	if !c.archiveThreshold.IsZero() && entry.ModTime.Before(c.archiveThreshold) {
		if c.inPlace || folder == "." {
			folder = config.ArchiveFolder
		} else {
			folder = filepath.Join(config.ArchiveFolder, folder)
		}
	}

	return Classification{
		Folder:   folder,
		Filename: filename,
		Renamed:  filename != entry.Name,
	}
}

func (c *Classifier) resolveFolder(entry types.FileEntry, rule *rules.Rule) string {
	if c.inPlace {
		return "."
	}
	if rule != nil {
		if rule.Action.TargetFolder != "" {
			return rule.Action.TargetFolder
		}
		if rule.Action.MoveTo != "" {
			return rule.Action.MoveTo
		}
	}
	return c.categories.CategoryFor(entry.Ext)
}

func (c *Classifier) resolveFilename(entry types.FileEntry, rule *rules.Rule) string {
	if rule != nil && rule.Action.RenamePrefix != "" {
		// Leave already-prefixed names alone so a second run is a no-op.
		if strings.HasPrefix(entry.Name, rule.Action.RenamePrefix) {
			return entry.Name
		}
		return rule.Action.RenamePrefix + entry.Name
	}

	if c.prefixMode == "" {
		return entry.Name
	}

	ts := entry.ModTime
	if c.prefixMode == types.DatePrefixCreated {
		ts = entry.BirthTime
	}

	prefix := ts.Format(datePrefixLayout)
	if strings.HasPrefix(entry.Name, prefix) {
		return entry.Name
	}
	return prefix + entry.Name
}
