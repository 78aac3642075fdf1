// Package localstore persists named JSON blobs for the dashboard client
// (drafts, column settings). Every blob is wrapped in a versioned envelope
// so a format change is detected on load instead of silently producing
// garbled state.
package localstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrVersionMismatch is returned when a stored blob carries a version the
// caller has no migration for. The file is left untouched on disk.
var ErrVersionMismatch = errors.New("stored blob has an unknown version")

type envelope struct {
	Version int             `json:"version"`
	Data    json.RawMessage `json:"data"`
}

// Migration upgrades blob data written under an older version to the
// current layout.
type Migration func(oldVersion int, data json.RawMessage) (json.RawMessage, error)

type Store struct {
	dir string
}

func New(dir string) (*Store, error) {
	const op = "localstore.New"

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Store{dir: dir}, nil
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

func (s *Store) Save(key string, version int, v any) error {
	const op = "localstore.Save"

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%s: marshal %s: %w", op, key, err)
	}

	blob, err := json.Marshal(envelope{Version: version, Data: data})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	// Write-then-rename so a crash mid-write never truncates the blob
	// already on disk.
	p := s.path(key)
	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, blob, 0o644); err != nil {
		return fmt.Errorf("%s: write %s: %w", op, key, err)
	}
	if err := os.Rename(tmp, p); err != nil {
		return fmt.Errorf("%s: write %s: %w", op, key, err)
	}

	return nil
}

// Load reads a blob into v. The found result is false when no blob was
// ever saved under the key. A version mismatch runs the migration when one
// is given, otherwise ErrVersionMismatch is returned.
func (s *Store) Load(key string, version int, v any, migrate Migration) (bool, error) {
	const op = "localstore.Load"

	blob, err := os.ReadFile(s.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("%s: read %s: %w", op, key, err)
	}

	var env envelope
	if err := json.Unmarshal(blob, &env); err != nil {
		return false, fmt.Errorf("%s: parse %s: %w", op, key, err)
	}

	data := env.Data
	if env.Version != version {
		if migrate == nil {
			return false, fmt.Errorf("%s: %s version %d: %w", op, key, env.Version, ErrVersionMismatch)
		}
		data, err = migrate(env.Version, env.Data)
		if err != nil {
			return false, fmt.Errorf("%s: migrate %s from version %d: %w", op, key, env.Version, err)
		}
	}

	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("%s: decode %s: %w", op, key, err)
	}

	return true, nil
}
