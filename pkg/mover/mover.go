// Package mover performs (or simulates) the filesystem effects of the
// pipeline: directory creation, collision-safe moves, and deletions.
package mover

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	tidyerr "github.com/arthur-debert/tidyup/pkg/errors"
	"github.com/arthur-debert/tidyup/pkg/logging"
	"github.com/arthur-debert/tidyup/pkg/types"
)

// maxCollisionSuffixes bounds the collision-resolution loop. Past this many
// candidates the destination is considered exhausted and the move is skipped.
const maxCollisionSuffixes = 10000

// Executor performs the filesystem effects for one run. In dry-run mode it
// logs hypothetical actions and touches nothing.
type Executor struct {
	fs     types.FS
	dryRun bool
	logger zerolog.Logger
}

// New creates an executor backed by fsys.
func New(fsys types.FS, dryRun bool) *Executor {
	return &Executor{
		fs:     fsys,
		dryRun: dryRun,
		logger: logging.GetLogger("mover"),
	}
}

// EnsureDir creates path recursively if it does not already exist. A dry run
// never creates directories. Returns whether a directory was created.
func (e *Executor) EnsureDir(path string) (bool, error) {
	if info, err := e.fs.Stat(path); err == nil && info.IsDir() {
		return false, nil
	}
	if e.dryRun {
		e.logger.Info().Str("dir", path).Msg("[dry-run] Would create directory")
		return false, nil
	}
	if err := e.fs.MkdirAll(path, 0755); err != nil {
		return false, tidyerr.Wrapf(err, tidyerr.ErrDirCreate, "failed to create directory %s", path)
	}
	e.logger.Info().Str("dir", path).Msg("Created directory")
	return true, nil
}

// Move relocates the entry to targetFolder/filename, resolving name
// collisions with an incrementing numeric suffix. Failures are logged and
// converted into a skipped outcome; they never abort the run.
func (e *Executor) Move(entry types.FileEntry, targetFolder, filename string) types.MoveOutcome {
	targetPath := filepath.Join(targetFolder, filename)

	// Already correctly placed: the move is a no-op.
	if targetPath == entry.Path {
		e.logger.Info().Str("file", entry.Name).Msg("Already in place, skipping")
		return types.OutcomeSkipped
	}

	if e.dryRun {
		e.logger.Info().
			Str("file", entry.Name).
			Str("destination", targetPath).
			Msg("[dry-run] Would move file")
		return types.OutcomeMoved
	}

	resolved, err := e.resolveCollision(targetFolder, filename)
	if err != nil {
		e.logger.Error().Err(err).Str("file", entry.Name).Msg("Could not move file")
		return types.OutcomeSkipped
	}

	if err := e.fs.Rename(entry.Path, resolved); err != nil {
		e.logger.Error().Err(err).Str("file", entry.Name).Str("destination", resolved).
			Msg("Could not move file")
		return types.OutcomeSkipped
	}

	e.logger.Info().
		Str("file", entry.Name).
		Str("destination", resolved).
		Msg("Moved file")
	return types.OutcomeMoved
}

// Delete removes the entry from the filesystem, or logs the hypothetical
// deletion in dry-run mode. Returns false when the deletion failed.
func (e *Executor) Delete(entry types.FileEntry, reason string) bool {
	if e.dryRun {
		e.logger.Info().Str("file", entry.Name).Str("reason", reason).
			Msg("[dry-run] Would delete file")
		return true
	}
	if err := e.fs.Remove(entry.Path); err != nil {
		e.logger.Error().Err(err).Str("file", entry.Name).Msg("Could not delete file")
		return false
	}
	e.logger.Info().Str("file", entry.Name).Str("reason", reason).Msg("Deleted file")
	return true
}

// resolveCollision finds a free path under targetFolder for filename,
// appending _1, _2, ... between stem and extension until one is available.
func (e *Executor) resolveCollision(targetFolder, filename string) (string, error) {
	candidate := filepath.Join(targetFolder, filename)
	if !e.exists(candidate) {
		return candidate, nil
	}

	ext := filepath.Ext(filename)
	stem := strings.TrimSuffix(filename, ext)

	for i := 1; i <= maxCollisionSuffixes; i++ {
		candidate = filepath.Join(targetFolder, fmt.Sprintf("%s_%d%s", stem, i, ext))
		if !e.exists(candidate) {
			return candidate, nil
		}
	}

	return "", tidyerr.Newf(tidyerr.ErrDestExhausted,
		"no free name for %s in %s after %d candidates", filename, targetFolder, maxCollisionSuffixes)
}

func (e *Executor) exists(path string) bool {
	_, err := e.fs.Lstat(path)
	return err == nil || !errors.Is(err, fs.ErrNotExist)
}
