// Package recordstore holds the session's ordered collection of records.
//
// The collection is copy-on-write: every mutation builds a new slice and
// swaps it in under the write lock, so a snapshot handed to a reader never
// changes underneath it. Snapshots must be treated as read-only.
package recordstore

import (
	"errors"
	"sync"

	"jobtracker-engine/internal/domain"
)

var ErrDuplicateID = errors.New("record id already exists")

type Store struct {
	mu      sync.RWMutex
	records []domain.Record
}

// New seeds the store with a copy of initial.
func New(initial []domain.Record) *Store {
	s := &Store{}
	_ = s.Replace(initial)
	return s
}

// Snapshot returns the current collection. Do not modify it.
func (s *Store) Snapshot() []domain.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func (s *Store) Get(id string) (domain.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.records {
		if r.ID == id {
			return r, true
		}
	}
	return domain.Record{}, false
}

// Prepend adds r at the front.
func (s *Store) Prepend(r domain.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, cur := range s.records {
		if cur.ID == r.ID {
			return ErrDuplicateID
		}
	}
	next := make([]domain.Record, 0, len(s.records)+1)
	next = append(next, r)
	next = append(next, s.records...)
	s.records = next
	return nil
}

// Update replaces the record with the given id by fn(old). It reports
// whether the id was present. fn runs under the write lock and must not
// call back into the store.
func (s *Store) Update(id string, fn func(domain.Record) domain.Record) (domain.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return domain.Record{}, false
	}
	updated := fn(s.records[idx])
	updated.ID = id

	next := make([]domain.Record, len(s.records))
	copy(next, s.records)
	next[idx] = updated
	s.records = next
	return updated, true
}

// Remove deletes the record with the given id. Missing ids are a no-op.
func (s *Store) Remove(id string) (domain.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return domain.Record{}, false
	}
	removed := s.records[idx]
	next := make([]domain.Record, 0, len(s.records)-1)
	next = append(next, s.records[:idx]...)
	next = append(next, s.records[idx+1:]...)
	s.records = next
	return removed, true
}

// Replace swaps in a whole new collection, e.g. after listing the remote
// store. Records with a repeated id are rejected.
func (s *Store) Replace(records []domain.Record) error {
	seen := make(map[string]struct{}, len(records))
	next := make([]domain.Record, 0, len(records))
	for _, r := range records {
		if _, dup := seen[r.ID]; dup {
			return ErrDuplicateID
		}
		seen[r.ID] = struct{}{}
		next = append(next, r)
	}

	s.mu.Lock()
	s.records = next
	s.mu.Unlock()
	return nil
}

func (s *Store) indexOf(id string) int {
	for i, r := range s.records {
		if r.ID == id {
			return i
		}
	}
	return -1
}
