// Package memory provides the in-memory entry store for PredKV.
//
// The store owns all mutation of the key space. A single RWMutex
// serializes access so that a snapshot copy is internally consistent
// and never observes a torn write from the request path.
package memory

import (
	"sync"

	"github.com/predkv/predkv/internal/core/domain"
)

// Store is the authoritative in-memory map of all entries.
type Store struct {
	mu      sync.RWMutex
	entries map[domain.Value]domain.Value
}

// New creates an empty store.
func New() *Store {
	return &Store{
		entries: make(map[domain.Value]domain.Value),
	}
}

// Get retrieves the value for a key.
func (s *Store) Get(key domain.Value) (domain.Value, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.entries[key]
	return v, ok
}

// Set inserts the pair, overwriting any existing value for the key.
func (s *Store) Set(key, value domain.Value) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = value
}

// Remove deletes a key. It reports whether the key was present.
func (s *Store) Remove(key domain.Value) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[key]; !ok {
		return false
	}
	delete(s.entries, key)
	return true
}

// SnapshotView returns a read-consistent copy of all entries. Query
// scans and snapshot persistence iterate over this copy, so concurrent
// mutation of the live store never perturbs an in-flight iteration.
// Order is unspecified.
func (s *Store) SnapshotView() []domain.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Entry, 0, len(s.entries))
	for k, v := range s.entries {
		out = append(out, domain.Entry{Key: k, Value: v})
	}
	return out
}

// ReplaceAll discards the current contents and installs the given
// entries. Used once at startup when restoring a snapshot.
func (s *Store) ReplaceAll(entries []domain.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[domain.Value]domain.Value, len(entries))
	for _, e := range entries {
		s.entries[e.Key] = e.Value
	}
}

// Len returns the number of entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.entries)
}
