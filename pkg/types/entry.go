package types

import (
	"path/filepath"
	"strings"
	"time"
)

// FileEntry is a single directory child under consideration by the pipeline.
// It is read fresh from the filesystem at the start of processing and never
// cached across entries.
type FileEntry struct {
	// Path is the absolute path to the file
	Path string

	// Name is the base name of the file
	Name string

	// Size in bytes
	Size int64

	// ModTime is the modification timestamp
	ModTime time.Time

	// BirthTime is the creation timestamp where the platform exposes one;
	// it falls back to ModTime otherwise
	BirthTime time.Time

	// Ext is the extension, lowercased, without the leading dot
	Ext string

	// Hidden is true for dot-prefixed names
	Hidden bool
}

// NewFileEntry stats path through fsys and builds a FileEntry from the result.
func NewFileEntry(fsys FS, path string) (FileEntry, error) {
	info, err := fsys.Stat(path)
	if err != nil {
		return FileEntry{}, err
	}

	name := filepath.Base(path)
	return FileEntry{
		Path:      path,
		Name:      name,
		Size:      info.Size(),
		ModTime:   info.ModTime(),
		BirthTime: birthTime(info),
		Ext:       NormalizeExt(filepath.Ext(name)),
		Hidden:    strings.HasPrefix(name, "."),
	}, nil
}

// NormalizeExt lowercases an extension and strips any leading dot.
func NormalizeExt(ext string) string {
	return strings.TrimPrefix(strings.ToLower(ext), ".")
}
