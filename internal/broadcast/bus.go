// Package broadcast propagates collection changes between every execution
// context (process, worker, CLI session) observing the same persisted key.
//
// A Bus delivers notifications for one key in the order they were published
// by a given origin. Nothing orders writes from different origins: the last
// write observed wins.
package broadcast

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Change notifies observers that a collection key was persisted. Value holds
// the new serialized collection; it is nil when the transport cannot carry it,
// in which case receivers re-read the key from storage.
type Change struct {
	Key    string    `json:"key"`
	Value  []byte    `json:"value,omitempty"`
	Origin string    `json:"origin"`
	At     time.Time `json:"at"`
}

// Handler receives change notifications for a subscribed key.
type Handler func(Change)

// Bus is the subscribe/notify surface entity stores use. Subscribe returns a
// cancel func; cancelling twice is harmless.
type Bus interface {
	Publish(ctx context.Context, c Change) error
	Subscribe(key string, h Handler) (cancel func())
	Close() error
}

// registry tracks handlers per key and dispatches in subscription order.
type registry struct {
	mu       sync.RWMutex
	next     int
	handlers map[string]map[int]Handler
}

func newRegistry() *registry {
	return &registry{handlers: make(map[string]map[int]Handler)}
}

func (r *registry) add(key string, h Handler) func() {
	r.mu.Lock()
	id := r.next
	r.next++
	if r.handlers[key] == nil {
		r.handlers[key] = make(map[int]Handler)
	}
	r.handlers[key][id] = h
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			delete(r.handlers[key], id)
			if len(r.handlers[key]) == 0 {
				delete(r.handlers, key)
			}
			r.mu.Unlock()
		})
	}
}

func (r *registry) dispatch(c Change) {
	r.mu.RLock()
	subs := r.handlers[c.Key]
	ids := make([]int, 0, len(subs))
	for id := range subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	hs := make([]Handler, 0, len(ids))
	for _, id := range ids {
		hs = append(hs, subs[id])
	}
	r.mu.RUnlock()

	for _, h := range hs {
		h(c)
	}
}

func (r *registry) count(key string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handlers[key])
}
