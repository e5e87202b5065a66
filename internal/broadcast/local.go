package broadcast

import (
	"context"
	"sync/atomic"
)

var _ Bus = (*LocalBus)(nil)

// LocalBus delivers changes synchronously to subscribers in the same
// process. Publish returns after every handler has run, so changes from one
// publisher arrive in publish order. Handlers may publish in turn.
type LocalBus struct {
	reg    *registry
	closed atomic.Bool
}

// NewLocalBus returns an in-process bus.
func NewLocalBus() *LocalBus {
	return &LocalBus{reg: newRegistry()}
}

// Publish delivers c to every handler subscribed to c.Key.
func (b *LocalBus) Publish(_ context.Context, c Change) error {
	if b.closed.Load() {
		return ErrBusClosed
	}
	b.reg.dispatch(c)
	return nil
}

// Subscribe registers h for key.
func (b *LocalBus) Subscribe(key string, h Handler) func() {
	return b.reg.add(key, h)
}

// Subscribers reports how many handlers observe key.
func (b *LocalBus) Subscribers(key string) int { return b.reg.count(key) }

// Close stops delivery; later publishes return ErrBusClosed.
func (b *LocalBus) Close() error {
	b.closed.Store(true)
	return nil
}
