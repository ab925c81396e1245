// Package memory provides an in-memory snapshot store used for tests and
// ephemeral runs.
package memory

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"nurserycore/pkg/domain"
)

var _ domain.SnapshotStore = (*Store)(nil)

type entry struct {
	memento domain.Memento
	savedAt time.Time
}

// Store keeps mementos in a map keyed by label.
type Store struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

// Option customises a Store.
type Option func(*Store)

// WithNow overrides the save timestamp source.
func WithNow(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore returns an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		entries: make(map[string]entry),
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SaveSnapshot stores a copy of m under label, replacing any previous one.
func (s *Store) SaveSnapshot(ctx context.Context, label string, m domain.Memento) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(label) == "" {
		return domain.ErrEmptyLabel
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[label] = entry{memento: cloneMemento(m), savedAt: s.now()}
	return nil
}

// LoadSnapshot returns a copy of the memento saved under label.
func (s *Store) LoadSnapshot(ctx context.Context, label string) (domain.Memento, error) {
	if err := ctx.Err(); err != nil {
		return domain.Memento{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[label]
	if !ok {
		return domain.Memento{}, domain.ErrSnapshotNotFound
	}
	return cloneMemento(e.memento), nil
}

// ListSnapshots returns every stored snapshot ordered by label.
func (s *Store) ListSnapshots(ctx context.Context) ([]domain.SnapshotInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.SnapshotInfo, 0, len(s.entries))
	for label, e := range s.entries {
		out = append(out, domain.SnapshotInfo{Label: label, Day: e.memento.Day, SavedAt: e.savedAt})
	}
	slices.SortFunc(out, func(a, b domain.SnapshotInfo) int { return strings.Compare(a.Label, b.Label) })
	return out, nil
}

// DeleteSnapshot removes label. Deleting an unknown label reports
// domain.ErrSnapshotNotFound.
func (s *Store) DeleteSnapshot(ctx context.Context, label string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[label]; !ok {
		return domain.ErrSnapshotNotFound
	}
	delete(s.entries, label)
	return nil
}

func cloneMemento(m domain.Memento) domain.Memento {
	m.Components = slices.Clone(m.Components)
	m.Pending = slices.Clone(m.Pending)
	return m
}
