// Package draft holds not-yet-submitted log entries on the operator's own
// machine, so half-filled forms survive navigation and reloads. Drafts
// never reach the server until they are submitted as ordinary creates.
package draft

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"extrud-backend/internal/client/localstore"
	"extrud-backend/internal/storage"
)

const (
	storageKey     = "drafts"
	storageVersion = 1
)

type Draft struct {
	ID      string            `json:"id"`
	IsDraft bool              `json:"isDraft"`
	SavedAt time.Time         `json:"savedAt"`
	Values  storage.LogValues `json:"values"`
}

// Store is an explicit store object with subscribe/notify semantics:
// constructed once per session and passed to its consumers, never a
// module-level singleton. Every mutation persists the full list
// synchronously before observers are notified.
type Store struct {
	log *slog.Logger
	ls  *localstore.Store

	mu     sync.Mutex
	drafts []Draft
	subs   map[int]func()
	nextID int
}

func NewStore(log *slog.Logger, ls *localstore.Store) *Store {
	const op = "draft.NewStore"

	s := &Store{log: log, ls: ls, subs: map[int]func(){}}

	// An unreadable or unknown-version blob starts the session with zero
	// drafts but leaves the file on disk until the next mutation.
	if _, err := ls.Load(storageKey, storageVersion, &s.drafts, nil); err != nil {
		log.Warn("stored drafts not loaded", slog.String("op", op), slog.String("error", err.Error()))
		s.drafts = nil
	}

	return s
}

// Add stores a new draft at the head of the list and returns its id.
func (s *Store) Add(values storage.LogValues) (string, error) {
	const op = "draft.Add"

	s.mu.Lock()
	d := Draft{
		ID:      uuid.NewString(),
		IsDraft: true,
		SavedAt: time.Now(),
		Values:  values,
	}
	s.drafts = append([]Draft{d}, s.drafts...)
	err := s.persistLocked()
	s.mu.Unlock()

	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	s.notify()
	return d.ID, nil
}

func (s *Store) Update(id string, values storage.LogValues) error {
	const op = "draft.Update"

	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%s: id=%s: %w", op, id, storage.ErrNotFound)
	}
	s.drafts[idx].Values = values
	s.drafts[idx].SavedAt = time.Now()
	err := s.persistLocked()
	s.mu.Unlock()

	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.notify()
	return nil
}

func (s *Store) Remove(id string) error {
	const op = "draft.Remove"

	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%s: id=%s: %w", op, id, storage.ErrNotFound)
	}
	s.drafts = append(s.drafts[:idx], s.drafts[idx+1:]...)
	err := s.persistLocked()
	s.mu.Unlock()

	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.notify()
	return nil
}

// Values returns one draft's form values, used when the draft is
// submitted as an ordinary create.
func (s *Store) Values(id string) (storage.LogValues, error) {
	const op = "draft.Values"

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		return storage.LogValues{}, fmt.Errorf("%s: id=%s: %w", op, id, storage.ErrNotFound)
	}
	return s.drafts[idx].Values, nil
}

// List returns the drafts newest first, ahead of any server rows in the
// table's display order.
func (s *Store) List() []Draft {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Draft, len(s.drafts))
	copy(out, s.drafts)
	return out
}

// Subscribe registers an observer called after every successful mutation.
// The returned func unsubscribes.
func (s *Store) Subscribe(fn func()) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Store) indexLocked(id string) int {
	for i, d := range s.drafts {
		if d.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) persistLocked() error {
	return s.ls.Save(storageKey, storageVersion, s.drafts)
}

func (s *Store) notify() {
	s.mu.Lock()
	fns := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
