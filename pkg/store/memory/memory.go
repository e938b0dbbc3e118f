// Package memory provides an in-process Store, mainly for tests and the CLI.
package memory

import (
	"context"
	"sort"
	"sync"
)

// Store keeps values in nested maps. Unlike the request-scoped engine state it
// may be shared, so access is guarded.
type Store struct {
	mu     sync.RWMutex
	values map[string]map[string]any
	writes []Write
	reads  int
}

// Write records one Save call.
type Write struct {
	OwnerID string
	Values  map[string]any
}

// New creates an empty store, optionally seeded with values per owner.
func New(seed map[string]map[string]any) *Store {
	s := &Store{values: make(map[string]map[string]any, len(seed))}
	for owner, values := range seed {
		s.values[owner] = cloneValues(values)
	}
	return s
}

// Get implements store.Store.
func (s *Store) Get(_ context.Context, ownerID, key string) (any, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	values, ok := s.values[ownerID]
	if !ok {
		return nil, false, nil
	}
	value, ok := values[key]
	return value, ok, nil
}

// Save implements store.Store.
func (s *Store) Save(_ context.Context, ownerID string, values map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.values[ownerID] == nil {
		s.values[ownerID] = make(map[string]any, len(values))
	}
	for key, value := range values {
		s.values[ownerID][key] = value
	}
	s.writes = append(s.writes, Write{OwnerID: ownerID, Values: cloneValues(values)})
	return nil
}

// Writes returns every Save call in order.
func (s *Store) Writes() []Write {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Write(nil), s.writes...)
}

// Reads reports how many Get calls were served.
func (s *Store) Reads() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reads
}

// Keys lists the stored keys for an owner, sorted.
func (s *Store) Keys(ownerID string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.values[ownerID]))
	for key := range s.values[ownerID] {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func cloneValues(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}
