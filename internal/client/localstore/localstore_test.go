package localstore

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

type settings struct {
	Theme string `json:"theme"`
}

func TestSaveAndLoad(t *testing.T) {
	s, err := New(t.TempDir())
	assert.NoError(t, err)

	assert.NoError(t, s.Save("settings", 1, settings{Theme: "dark"}))

	var got settings
	found, err := s.Load("settings", 1, &got, nil)
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "dark", got.Theme)
}

func TestSave_ReplacesBlobWithoutLeftovers(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	assert.NoError(t, err)

	assert.NoError(t, s.Save("settings", 1, settings{Theme: "dark"}))
	assert.NoError(t, s.Save("settings", 1, settings{Theme: "light"}))

	// no temp file survives a completed save
	entries, err := os.ReadDir(dir)
	assert.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Equal(t, []string{"settings.json"}, names)

	var got settings
	found, err := s.Load("settings", 1, &got, nil)
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "light", got.Theme)
}

func TestLoad_MissingKey(t *testing.T) {
	s, err := New(t.TempDir())
	assert.NoError(t, err)

	var got settings
	found, err := s.Load("never-saved", 1, &got, nil)
	assert.NoError(t, err)
	assert.False(t, found)
}

func TestLoad_VersionMismatchWithoutMigration(t *testing.T) {
	s, err := New(t.TempDir())
	assert.NoError(t, err)

	assert.NoError(t, s.Save("settings", 1, settings{Theme: "dark"}))

	var got settings
	_, err = s.Load("settings", 2, &got, nil)
	assert.ErrorIs(t, err, ErrVersionMismatch)
}

func TestLoad_Migration(t *testing.T) {
	s, err := New(t.TempDir())
	assert.NoError(t, err)

	// version 1 stored the theme as a bare string
	assert.NoError(t, s.Save("settings", 1, "dark"))

	migrate := func(oldVersion int, data json.RawMessage) (json.RawMessage, error) {
		assert.Equal(t, 1, oldVersion)
		var theme string
		if err := json.Unmarshal(data, &theme); err != nil {
			return nil, err
		}
		return json.Marshal(settings{Theme: theme})
	}

	var got settings
	found, err := s.Load("settings", 2, &got, migrate)
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "dark", got.Theme)
}
