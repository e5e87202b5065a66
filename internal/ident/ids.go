// Package ident produces identifiers for stored records: numeric primary
// ids, random prefixed reference codes and per-scope sequential codes.
// Identifiers are never recycled; gaps left by deletions are expected.
package ident

import (
	"sync"
	"time"
)

// IDPolicy assigns a new primary identifier given the ids currently in the
// collection.
type IDPolicy interface {
	Next(existing []int64) int64
}

// Sequential assigns max(existing)+1. It also remembers the highest id it
// issued, so deleting the newest record does not hand its id out again for
// the lifetime of the policy.
type Sequential struct {
	mu   sync.Mutex
	high int64
}

// Next returns the next sequential id.
func (s *Sequential) Next(existing []int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	top := s.high
	for _, id := range existing {
		if id > top {
			top = id
		}
	}
	s.high = top + 1
	return s.high
}

// Timestamp assigns the current epoch millisecond, bumped when needed so ids
// stay strictly increasing and unique within the collection.
type Timestamp struct {
	// Now defaults to time.Now.
	Now func() time.Time

	mu   sync.Mutex
	last int64
}

// Next returns a timestamp-derived id.
func (t *Timestamp) Next(existing []int64) int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := time.Now
	if t.Now != nil {
		now = t.Now
	}
	floor := t.last
	for _, id := range existing {
		if id > floor {
			floor = id
		}
	}
	id := now().UnixMilli()
	if id <= floor {
		id = floor + 1
	}
	t.last = id
	return id
}
