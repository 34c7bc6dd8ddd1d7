// Package config loads the extension-to-category mapping that drives default
// classification. A missing or malformed mapping is fatal to startup; the rest
// of the pipeline receives an already-validated CategoryMap.
package config

import (
	"errors"
	"path/filepath"
	"strings"

	kjson "github.com/knadh/koanf/parsers/json"
	ktoml "github.com/knadh/koanf/parsers/toml"
	kyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	tidyerr "github.com/arthur-debert/tidyup/pkg/errors"
	"github.com/arthur-debert/tidyup/pkg/logging"
	"github.com/arthur-debert/tidyup/pkg/types"
)

const (
	// DefaultCategory receives files whose extension has no mapping
	DefaultCategory = "Miscellaneous"

	// ArchiveFolder is the subfolder categories are nested under when a
	// file's age exceeds the archive threshold
	ArchiveFolder = "Archive"
)

// CategoryMap is an immutable mapping from lowercase extension (no leading
// dot) to category folder name. Loaded once per run, never mutated.
type CategoryMap struct {
	categories map[string]string
}

// LoadCategoryMap reads the category map from path. The parser is chosen by
// file extension (json, toml, yaml). Absence or a parse failure is fatal.
func LoadCategoryMap(path string) (CategoryMap, error) {
	logger := logging.GetLogger("config")

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), parserFor(path)); err != nil {
		logger.Error().Err(err).Str("path", path).Msg("Failed to load category map")
		return CategoryMap{}, tidyerr.Wrapf(err, tidyerr.ErrConfigLoad,
			"failed to load category map from %s", path)
	}

	return categoryMapFromKoanf(k, path)
}

// ParseCategoryMap builds a CategoryMap from raw bytes in the given format
// ("json", "toml" or "yaml"). Used by tests and embedded defaults.
func ParseCategoryMap(data []byte, format string) (CategoryMap, error) {
	k := koanf.New(".")
	if err := k.Load(&rawBytesProvider{bytes: data}, parserByName(format)); err != nil {
		return CategoryMap{}, tidyerr.Wrap(err, tidyerr.ErrConfigParse, "failed to parse category map")
	}
	return categoryMapFromKoanf(k, "<inline>")
}

func categoryMapFromKoanf(k *koanf.Koanf, source string) (CategoryMap, error) {
	logger := logging.GetLogger("config")

	raw := k.All()
	if len(raw) == 0 {
		return CategoryMap{}, tidyerr.Newf(tidyerr.ErrConfigParse,
			"category map in %s is empty", source)
	}

	categories := make(map[string]string, len(raw))
	for ext, value := range raw {
		category, ok := value.(string)
		if !ok {
			logger.Error().Str("path", source).Str("key", ext).
				Msg("Category map is not a flat string mapping")
			return CategoryMap{}, tidyerr.Newf(tidyerr.ErrConfigParse,
				"category map in %s maps %q to a non-string value", source, ext)
		}
		if strings.TrimSpace(category) == "" {
			return CategoryMap{}, tidyerr.Newf(tidyerr.ErrConfigParse,
				"category map in %s maps %q to an empty category", source, ext)
		}
		categories[types.NormalizeExt(ext)] = category
	}

	logger.Debug().Int("extensions", len(categories)).Str("path", source).Msg("Category map loaded")
	return CategoryMap{categories: categories}, nil
}

// CategoryFor resolves the category folder for an extension, falling back to
// the default category for unmapped extensions.
func (m CategoryMap) CategoryFor(ext string) string {
	if category, ok := m.categories[types.NormalizeExt(ext)]; ok {
		return category
	}
	return DefaultCategory
}

// Len returns the number of mapped extensions.
func (m CategoryMap) Len() int {
	return len(m.categories)
}

// Folders returns the set of folder names the map can produce, including the
// default category and the archive folder. The orchestrator uses it to keep
// prior output folders out of the pipeline.
func (m CategoryMap) Folders() map[string]struct{} {
	folders := make(map[string]struct{}, len(m.categories)+2)
	for _, category := range m.categories {
		folders[category] = struct{}{}
	}
	folders[DefaultCategory] = struct{}{}
	folders[ArchiveFolder] = struct{}{}
	return folders
}

func parserFor(path string) koanf.Parser {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return ktoml.Parser()
	case ".yaml", ".yml":
		return kyaml.Parser()
	default:
		return kjson.Parser()
	}
}

func parserByName(format string) koanf.Parser {
	switch strings.ToLower(format) {
	case "toml":
		return ktoml.Parser()
	case "yaml", "yml":
		return kyaml.Parser()
	default:
		return kjson.Parser()
	}
}

// rawBytesProvider implements koanf provider for raw bytes
type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }
func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, errors.New("not implemented")
}
