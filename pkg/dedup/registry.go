// Package dedup detects content-identical files via hashing, scoped to files
// seen within one run plus files already present at computed destinations.
package dedup

import (
	"crypto/md5"
	"encoding/hex"
	"io"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/tidyup/pkg/errors"
	"github.com/arthur-debert/tidyup/pkg/logging"
	"github.com/arthur-debert/tidyup/pkg/types"
)

// chunkSize bounds memory while hashing arbitrarily large files
const chunkSize = 64 * 1024

// Verdict is the result of a duplicate check for one entry.
type Verdict int

const (
	// Unique means the entry is not a known duplicate and should proceed
	Unique Verdict = iota

	// DuplicateInRun means a file with identical content was already
	// processed earlier in this run
	DuplicateInRun

	// DuplicateAtDestination means the computed destination path holds a
	// file with identical content from a prior run
	DuplicateAtDestination
)

// Registry tracks the content hashes observed so far in one run. It grows
// monotonically and is discarded at run end; construct one per run.
type Registry struct {
	fs     types.FS
	seen   map[string]struct{}
	logger zerolog.Logger
}

// NewRegistry creates an empty registry backed by fsys.
func NewRegistry(fsys types.FS) *Registry {
	return &Registry{
		fs:     fsys,
		seen:   make(map[string]struct{}),
		logger: logging.GetLogger("dedup"),
	}
}

// Check classifies entry against the intra-run seen set and, when a file
// already exists at destPath, against that file's content. A hashing failure
// disables dedup for this entry only: the entry is reported Unique and the
// failure is logged, never escalated.
func (r *Registry) Check(entry types.FileEntry, destPath string) Verdict {
	sourceHash, err := r.HashFile(entry.Path)
	if err != nil {
		r.logger.Error().Err(err).Str("file", entry.Name).
			Msg("Hash calculation failed, skipping deduplication for this file")
		return Unique
	}

	if _, ok := r.seen[sourceHash]; ok {
		r.logger.Info().Str("file", entry.Name).Msg("Source duplicate found")
		return DuplicateInRun
	}
	// First occurrence is never itself a duplicate.
	r.seen[sourceHash] = struct{}{}

	if _, err := r.fs.Stat(destPath); err == nil {
		destHash, err := r.HashFile(destPath)
		if err != nil {
			r.logger.Error().Err(err).Str("path", destPath).
				Msg("Failed to hash existing destination file")
			return Unique
		}
		if destHash == sourceHash {
			r.logger.Info().Str("file", entry.Name).Str("destination", destPath).
				Msg("Target duplicate found")
			return DuplicateAtDestination
		}
	}

	return Unique
}

// HashFile computes the content hash of path, streamed in fixed-size chunks.
func (r *Registry) HashFile(path string) (string, error) {
	f, err := r.fs.Open(path)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrHashFail, "failed to open %s for hashing", path)
	}
	defer func() { _ = f.Close() }()

	h := md5.New()
	buf := make([]byte, chunkSize)
	if _, err := io.CopyBuffer(h, f, buf); err != nil {
		return "", errors.Wrapf(err, errors.ErrHashFail, "failed to hash %s", path)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
