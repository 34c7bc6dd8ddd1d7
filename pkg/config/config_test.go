// Test Type: Unit Test
// Description: Tests for category map loading and fallback resolution

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/tidyup/pkg/config"
	"github.com/arthur-debert/tidyup/pkg/errors"
)

func TestParseCategoryMap(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		m, err := config.ParseCategoryMap([]byte(`{"pdf": "Documents", "JPG": "Images"}`), "json")
		require.NoError(t, err)

		assert.Equal(t, "Documents", m.CategoryFor("pdf"))
		assert.Equal(t, "Images", m.CategoryFor("jpg"), "keys are normalized to lowercase")
		assert.Equal(t, config.DefaultCategory, m.CategoryFor("xyz"))
	})

	t.Run("toml", func(t *testing.T) {
		m, err := config.ParseCategoryMap([]byte("pdf = \"Documents\"\nmp3 = \"Music\"\n"), "toml")
		require.NoError(t, err)
		assert.Equal(t, "Music", m.CategoryFor("mp3"))
	})

	t.Run("yaml", func(t *testing.T) {
		m, err := config.ParseCategoryMap([]byte("pdf: Documents\nmp4: Videos\n"), "yaml")
		require.NoError(t, err)
		assert.Equal(t, "Videos", m.CategoryFor("mp4"))
	})

	t.Run("invalid_json_fails", func(t *testing.T) {
		_, err := config.ParseCategoryMap([]byte(`{broken`), "json")
		require.Error(t, err)
		assert.Equal(t, errors.ErrConfigParse, errors.GetErrorCode(err))
	})

	t.Run("empty_map_fails", func(t *testing.T) {
		_, err := config.ParseCategoryMap([]byte(`{}`), "json")
		require.Error(t, err)
		assert.Equal(t, errors.ErrConfigParse, errors.GetErrorCode(err))
	})

	t.Run("empty_category_value_fails", func(t *testing.T) {
		_, err := config.ParseCategoryMap([]byte(`{"pdf": ""}`), "json")
		require.Error(t, err)
	})

	t.Run("extension_keys_are_dot_stripped", func(t *testing.T) {
		m, err := config.ParseCategoryMap([]byte(`{".pdf": "Documents"}`), "json")
		require.NoError(t, err)
		assert.Equal(t, "Documents", m.CategoryFor("pdf"))
	})
}

func TestLoadCategoryMap(t *testing.T) {
	t.Run("reads_json_file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"pdf": "Documents"}`), 0644))

		m, err := config.LoadCategoryMap(path)
		require.NoError(t, err)
		assert.Equal(t, "Documents", m.CategoryFor("pdf"))
	})

	t.Run("missing_file_is_fatal", func(t *testing.T) {
		_, err := config.LoadCategoryMap(filepath.Join(t.TempDir(), "nope.json"))
		require.Error(t, err)
		assert.Equal(t, errors.ErrConfigLoad, errors.GetErrorCode(err))
	})
}

func TestFolders(t *testing.T) {
	m, err := config.ParseCategoryMap([]byte(`{"pdf": "Documents", "doc": "Documents", "jpg": "Images"}`), "json")
	require.NoError(t, err)

	folders := m.Folders()
	assert.Contains(t, folders, "Documents")
	assert.Contains(t, folders, "Images")
	assert.Contains(t, folders, config.DefaultCategory)
	assert.Contains(t, folders, config.ArchiveFolder)
	assert.Len(t, folders, 4)
}
