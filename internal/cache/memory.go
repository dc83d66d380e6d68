// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cache

import (
	"encoding/json"
	"fmt"
	"sort"
)

// MemoryStore keeps entries in a map for tests and cache-less runs.
// Entries are serialized on Put and deserialized on Get, matching the
// isolation semantics of the durable backends; contents vanish with the
// process.
type MemoryStore struct {
	m map[string][]byte
}

// NewMemory returns an empty in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{m: make(map[string][]byte)}
}

// Get returns the entry for key, or ErrNotFound.
func (s *MemoryStore) Get(key string) (*Entry, error) {
	data, ok := s.m[key]
	if !ok {
		return nil, ErrNotFound
	}
	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("decoding cache entry: %w", err)
	}
	return &e, nil
}

// Put stores or replaces the entry under e.Key.
func (s *MemoryStore) Put(e *Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encoding cache entry: %w", err)
	}
	s.m[e.Key] = data
	return nil
}

// Delete removes one entry.
func (s *MemoryStore) Delete(key string) error {
	delete(s.m, key)
	return nil
}

// Keys lists all stored keys, sorted.
func (s *MemoryStore) Keys() ([]string, error) {
	keys := make([]string, 0, len(s.m))
	for k := range s.m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Len returns the entry count.
func (s *MemoryStore) Len() (int, error) { return len(s.m), nil }

// Clear removes all entries.
func (s *MemoryStore) Clear() error {
	s.m = make(map[string][]byte)
	return nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }
