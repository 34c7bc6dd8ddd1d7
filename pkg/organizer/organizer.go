// Package organizer drives the per-file decision-and-execution pipeline over
// a directory's immediate children. The pass is a single synchronous loop;
// only the hash registry and the run stats carry state across entries, and
// both are scoped to one run.
package organizer

import (
	"io/fs"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/tidyup/pkg/classify"
	"github.com/arthur-debert/tidyup/pkg/config"
	"github.com/arthur-debert/tidyup/pkg/dedup"
	tidyerr "github.com/arthur-debert/tidyup/pkg/errors"
	"github.com/arthur-debert/tidyup/pkg/logging"
	"github.com/arthur-debert/tidyup/pkg/mover"
	"github.com/arthur-debert/tidyup/pkg/rules"
	"github.com/arthur-debert/tidyup/pkg/stats"
	"github.com/arthur-debert/tidyup/pkg/types"
)

const megabyte = 1024 * 1024

// Organizer runs one organization pass. Construct with New per run; the
// category map and rule list are read-only for the run's duration.
type Organizer struct {
	fs         types.FS
	opts       types.Options
	ruleList   []rules.Rule
	classifier *classify.Classifier
	registry   *dedup.Registry
	exec       *mover.Executor
	runStats   *stats.RunStats

	// categoryFolders keeps prior output folders out of the pipeline in
	// normal (non-in-place) mode
	categoryFolders map[string]struct{}

	minSizeBytes int64
	now          time.Time
	logger       zerolog.Logger
}

// New validates the source directory and assembles the pipeline. An invalid
// source directory is the one fatal error: nothing has been touched yet and
// the caller should terminate.
func New(fsys types.FS, opts types.Options, categories config.CategoryMap, ruleList []rules.Rule) (*Organizer, error) {
	logger := logging.GetLogger("organizer")

	info, err := fsys.Stat(opts.SourceDir)
	if err != nil {
		return nil, tidyerr.Wrapf(err, tidyerr.ErrSourceInvalid,
			"%s is not a valid directory", opts.SourceDir)
	}
	if !info.IsDir() {
		return nil, tidyerr.Newf(tidyerr.ErrSourceInvalid,
			"%s is not a directory", opts.SourceDir)
	}

	now := time.Now()

	o := &Organizer{
		fs:         fsys,
		opts:       opts,
		ruleList:   ruleList,
		classifier: classify.New(categories, opts, now),
		exec:       mover.New(fsys, opts.DryRun),
		runStats:   stats.New(),
		now:        now,
		logger:     logger,
	}

	if opts.Dedup {
		o.registry = dedup.NewRegistry(fsys)
	}
	if !opts.InPlace {
		o.categoryFolders = categories.Folders()
	}
	if opts.MinSizeMB > 0 {
		o.minSizeBytes = int64(opts.MinSizeMB) * megabyte
		logger.Info().Int("minSizeMB", opts.MinSizeMB).
			Msg("Minimum size filter active")
	}
	if opts.InPlace {
		logger.Info().Msg("In-place mode active, files will not be re-categorized")
	}

	return o, nil
}

// Run lists the source directory and processes each immediate child exactly
// once. Entries are processed in the lexical order os.ReadDir yields, which
// makes move order across files sharing a destination deterministic. No
// per-entry failure aborts the loop.
func (o *Organizer) Run() (*stats.RunStats, error) {
	o.logger.Info().
		Str("source", o.opts.SourceDir).
		Bool("dryRun", o.opts.DryRun).
		Msg("Starting organization")

	entries, err := o.fs.ReadDir(o.opts.SourceDir)
	if err != nil {
		return nil, tidyerr.Wrapf(err, tidyerr.ErrSourceInvalid,
			"failed to list %s", o.opts.SourceDir)
	}

	for _, entry := range entries {
		o.processEntry(entry)
	}

	o.logger.Info().Msg("Organization complete")
	return o.runStats, nil
}

// Stats returns the run statistics accumulated so far.
func (o *Organizer) Stats() *stats.RunStats {
	return o.runStats
}

// processEntry walks one entry through the state machine: eligibility gate,
// rule match, classification, dedup, then execution. Terminal on first match.
func (o *Organizer) processEntry(dirEntry fs.DirEntry) {
	name := dirEntry.Name()
	path := filepath.Join(o.opts.SourceDir, name)

	if !o.eligible(dirEntry, name) {
		o.runStats.Record(types.OutcomeSkipped)
		return
	}

	// Read fresh from the filesystem; the entry may have vanished between
	// listing and inspection.
	entry, err := types.NewFileEntry(o.fs, path)
	if err != nil {
		o.logger.Warn().Err(err).Str("file", name).
			Msg("Could not inspect file, skipping")
		o.runStats.Record(types.OutcomeSkipped)
		return
	}

	if o.minSizeBytes > 0 && entry.Size < o.minSizeBytes {
		o.logger.Info().Str("file", name).Int("minSizeMB", o.opts.MinSizeMB).
			Msg("Skipping file below minimum size")
		o.runStats.Record(types.OutcomeSkipped)
		return
	}

	o.runStats.AddFile(entry.Size, entry.Ext)

	rule := rules.Match(entry, o.ruleList, o.now)

	// A rule-requested deletion short-circuits destination resolution and
	// dedup entirely.
	if rule != nil && rule.Action.DeleteFile {
		if o.exec.Delete(entry, "rule: "+rule.DisplayName()) {
			o.runStats.Record(types.OutcomeDeleted)
		} else {
			o.runStats.Record(types.OutcomeSkipped)
		}
		return
	}

	cls := o.classifier.Resolve(entry, rule)
	targetFolder := filepath.Join(o.opts.SourceDir, cls.Folder)
	destPath := filepath.Join(targetFolder, cls.Filename)

	if o.registry != nil && o.handleDuplicate(entry, destPath) {
		return
	}

	created, err := o.exec.EnsureDir(targetFolder)
	if err != nil {
		o.logger.Error().Err(err).Str("file", name).
			Msg("Could not prepare destination, skipping")
		o.runStats.Record(types.OutcomeSkipped)
		return
	}
	if created {
		o.runStats.RecordDirCreated()
	}

	outcome := o.exec.Move(entry, targetFolder, cls.Filename)
	if outcome == types.OutcomeMoved && cls.Renamed {
		outcome = types.OutcomeRenamedAndMoved
	}
	o.runStats.Record(outcome)
}

// eligible applies the entry gate: regular files only, no hidden names, and
// in normal mode no prior output folders.
func (o *Organizer) eligible(dirEntry fs.DirEntry, name string) bool {
	if dirEntry.IsDir() {
		if o.categoryFolders != nil {
			if _, ok := o.categoryFolders[name]; ok {
				o.logger.Info().Str("dir", name).Msg("Skipping category folder")
				return false
			}
		}
		o.logger.Info().Str("item", name).Msg("Skipping non-file item")
		return false
	}
	if !dirEntry.Type().IsRegular() {
		o.logger.Info().Str("item", name).Msg("Skipping non-regular file")
		return false
	}
	if len(name) > 0 && name[0] == '.' {
		o.logger.Info().Str("item", name).Msg("Skipping hidden item")
		return false
	}
	return true
}

// handleDuplicate runs the dedup check and applies the configured
// disposition. Returns true when the entry is terminal.
func (o *Organizer) handleDuplicate(entry types.FileEntry, destPath string) bool {
	verdict := o.registry.Check(entry, destPath)
	if verdict == dedup.Unique {
		return false
	}

	if o.opts.DeleteDuplicates && !o.opts.DryRun {
		if o.exec.Delete(entry, "duplicate") {
			o.runStats.Record(types.OutcomeDeletedDuplicate)
		} else {
			// Could not delete; leave the file where it is.
			o.runStats.Record(types.OutcomeSkipped)
		}
		return true
	}

	o.logger.Info().Str("file", entry.Name).Msg("Skipping duplicate file")
	o.runStats.Record(types.OutcomeSkippedDuplicate)
	return true
}
