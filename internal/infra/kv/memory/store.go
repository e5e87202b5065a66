// Package memory implements an in-memory key-value Store for tests and
// ephemeral runs.
package memory

import (
	"context"
	"sort"
	"sync"

	"auditportal/internal/kv/core"
)

var _ core.Store = (*Store)(nil)

// Store implements core.Store backed by process memory. Values are copied on
// the way in and out.
type Store struct {
	mu     sync.RWMutex
	values map[string][]byte
	closed bool
}

// New returns an empty in-memory store.
func New() *Store { return &Store{values: make(map[string][]byte)} }

// Driver returns the key-value driver identifier.
func (s *Store) Driver() core.Driver { return core.DriverMemory }

// Get returns a copy of the value stored under key.
func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, false, core.ErrClosed
	}
	v, ok := s.values[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

// Set stores a copy of value under key.
func (s *Store) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return core.ErrClosed
	}
	s.values[key] = append([]byte(nil), value...)
	return nil
}

// Delete removes key; deleting a missing key is not an error.
func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return core.ErrClosed
	}
	delete(s.values, key)
	return nil
}

// Keys returns every stored key in sorted order.
func (s *Store) Keys(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, core.ErrClosed
	}
	out := make([]string, 0, len(s.values))
	for k := range s.values {
		out = append(out, k)
	}
	sort.Strings(out)
	return out, nil
}

// Close marks the store closed; later calls return core.ErrClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}
