// Package store provides the generic persisted collection every entity kind
// is built on. A Store keeps an in-memory snapshot of one collection, writes
// the whole collection back to the key-value backend on every mutation and
// announces the new value on a broadcast bus so other stores over the same
// key converge.
package store

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"auditportal/internal/broadcast"
	"auditportal/internal/ident"
	"auditportal/internal/kv"
	"auditportal/internal/logging"
	"auditportal/internal/metrics"
	"auditportal/pkg/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Operation names reported to the metrics observer.
const (
	opList   = "list"
	opAdd    = "add"
	opUpdate = "update"
	opRemove = "remove"
	opReload = "reload"
	opRemote = "remote"
)

// Option customises a Store.
type Option func(*options)

type options struct {
	logger   *zap.Logger
	observer metrics.Observer
	ids      ident.IDPolicy
	now      func() time.Time
}

// WithLogger sets the logger; a nil logger discards output.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithObserver sets the metrics observer.
func WithObserver(obs metrics.Observer) Option {
	return func(o *options) {
		if obs != nil {
			o.observer = obs
		}
	}
}

// WithIDPolicy overrides the default sequential id policy.
func WithIDPolicy(p ident.IDPolicy) Option {
	return func(o *options) {
		if p != nil {
			o.ids = p
		}
	}
}

// WithClock overrides the clock used to stamp change notifications.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// Store is a persisted collection of one entity kind.
//
// Persistence and broadcast are best-effort: failures are logged and counted
// but never returned, and the in-memory effect of the mutation stands.
type Store[T domain.Record[T]] struct {
	key    domain.CollectionKey
	kv     kv.Store
	bus    broadcast.Bus
	ids    ident.IDPolicy
	logger *zap.Logger
	obs    metrics.Observer
	now    func() time.Time
	origin string

	// writeMu orders persist+publish across mutations of this instance.
	writeMu sync.Mutex

	mu     sync.RWMutex
	loaded bool
	items  []T
	// gen counts snapshots; bumped under mu so watchers can skip stale ones.
	gen atomic.Uint64

	watchMu   sync.Mutex
	watchSeq  int
	watchers  map[int]func([]T)
	unsubBus  func()
	closeOnce sync.Once
}

// New returns a store for key persisted in backend. When bus is non-nil the
// store publishes its changes there and applies changes published by other
// stores over the same key.
func New[T domain.Record[T]](key domain.CollectionKey, backend kv.Store, bus broadcast.Bus, opts ...Option) *Store[T] {
	o := options{observer: metrics.Nop{}, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if o.ids == nil {
		o.ids = &ident.Sequential{}
	}
	s := &Store[T]{
		key:      key,
		kv:       backend,
		bus:      bus,
		ids:      o.ids,
		logger:   logging.OrNop(o.logger).With(zap.String("collection", string(key))),
		obs:      o.observer,
		now:      o.now,
		origin:   uuid.NewString(),
		watchers: make(map[int]func([]T)),
	}
	if bus != nil {
		s.unsubBus = bus.Subscribe(string(key), s.onChange)
	}
	return s
}

// Key returns the collection key.
func (s *Store[T]) Key() domain.CollectionKey { return s.key }

// Origin identifies this instance on the broadcast bus.
func (s *Store[T]) Origin() string { return s.origin }

// List returns a deep copy of the current collection.
func (s *Store[T]) List(ctx context.Context) []T {
	start := time.Now()
	s.mu.Lock()
	s.ensureLoaded(ctx)
	out := cloneAll(s.items)
	s.mu.Unlock()
	s.obs.Observe(ctx, string(s.key), opList, true, time.Since(start))
	return out
}

// Get returns a copy of the record with id.
func (s *Store[T]) Get(ctx context.Context, id int64) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded(ctx)
	for _, it := range s.items {
		if it.GetID() == id {
			return it.Clone(), true
		}
	}
	var zero T
	return zero, false
}

// Add assigns a new identifier to rec, appends it and persists the
// collection. Any identifier already on rec is ignored.
func (s *Store[T]) Add(ctx context.Context, rec T) T {
	var added T
	s.mutate(ctx, opAdd, func(items []T) ([]T, bool) {
		existing := make([]int64, len(items))
		for i, it := range items {
			existing[i] = it.GetID()
		}
		added = rec.WithID(s.ids.Next(existing)).Clone()
		return append(items, added), true
	})
	return added.Clone()
}

// Update replaces the record with the same identifier. It reports false,
// without persisting, when no such record exists.
func (s *Store[T]) Update(ctx context.Context, rec T) bool {
	return s.mutate(ctx, opUpdate, func(items []T) ([]T, bool) {
		for i, it := range items {
			if it.GetID() == rec.GetID() {
				items[i] = rec.Clone()
				return items, true
			}
		}
		return items, false
	})
}

// Remove deletes the record with id. It reports false, without persisting,
// when no such record exists; removing twice is therefore harmless.
func (s *Store[T]) Remove(ctx context.Context, id int64) bool {
	return s.mutate(ctx, opRemove, func(items []T) ([]T, bool) {
		for i, it := range items {
			if it.GetID() == id {
				return append(items[:i:i], items[i+1:]...), true
			}
		}
		return items, false
	})
}

// Reload discards the snapshot, re-reads the persisted collection and
// notifies watchers.
func (s *Store[T]) Reload(ctx context.Context) {
	start := time.Now()
	s.mu.Lock()
	s.items = s.read(ctx)
	s.loaded = true
	snap, gen := cloneAll(s.items), s.gen.Add(1)
	s.mu.Unlock()
	s.obs.Observe(ctx, string(s.key), opReload, true, time.Since(start))
	s.notify(gen, snap)
}

// Watch registers fn to receive a copy of the collection after every local
// mutation and every applied change from another store. fn runs on the
// goroutine that caused the change, after every store lock is released, so
// it may mutate the store itself. A snapshot superseded before delivery is
// skipped.
func (s *Store[T]) Watch(fn func([]T)) (cancel func()) {
	s.watchMu.Lock()
	id := s.watchSeq
	s.watchSeq++
	s.watchers[id] = fn
	s.watchMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.watchMu.Lock()
			delete(s.watchers, id)
			s.watchMu.Unlock()
		})
	}
}

// Close detaches the store from the bus. It does not close the backend or
// the bus, which are shared.
func (s *Store[T]) Close() {
	s.closeOnce.Do(func() {
		if s.unsubBus != nil {
			s.unsubBus()
		}
	})
}

func (s *Store[T]) mutate(ctx context.Context, op string, fn func([]T) ([]T, bool)) bool {
	start := time.Now()
	s.writeMu.Lock()

	s.mu.Lock()
	s.ensureLoaded(ctx)
	items, changed := fn(s.items)
	if !changed {
		s.mu.Unlock()
		s.writeMu.Unlock()
		s.logger.Debug("record not found", zap.String("operation", op))
		s.obs.Observe(ctx, string(s.key), op, true, time.Since(start))
		return false
	}
	s.items = items
	snap, gen := cloneAll(items), s.gen.Add(1)
	data, ok := s.persist(ctx, op)
	s.mu.Unlock()

	if ok {
		s.publish(ctx, op, data)
	}
	s.writeMu.Unlock()
	s.obs.Observe(ctx, string(s.key), op, ok, time.Since(start))
	s.notify(gen, snap)
	return true
}

// persist writes the collection; callers hold mu.
func (s *Store[T]) persist(ctx context.Context, op string) ([]byte, bool) {
	data, err := json.Marshal(s.items)
	if err != nil {
		s.logger.Error("encode collection", zap.String("operation", op), zap.Error(err))
		s.obs.PersistFailed(string(s.key))
		return nil, false
	}
	if err := s.kv.Set(ctx, string(s.key), data); err != nil {
		s.logger.Error("persist collection", zap.String("operation", op), zap.Error(err))
		s.obs.PersistFailed(string(s.key))
		return nil, false
	}
	return data, true
}

func (s *Store[T]) publish(ctx context.Context, op string, data []byte) {
	if s.bus == nil {
		return
	}
	c := broadcast.Change{Key: string(s.key), Value: data, Origin: s.origin, At: s.now()}
	if err := s.bus.Publish(ctx, c); err != nil {
		s.logger.Warn("broadcast change", zap.String("operation", op), zap.Error(err))
		s.obs.PersistFailed(string(s.key))
	}
}

// onChange applies a change published by another store over the same key.
func (s *Store[T]) onChange(c broadcast.Change) {
	if c.Origin == s.origin {
		return
	}
	ctx := context.Background()
	start := time.Now()
	s.mu.Lock()
	if c.Value != nil {
		s.items = s.decode(c.Value)
	} else {
		s.items = s.read(ctx)
	}
	s.loaded = true
	snap, gen := cloneAll(s.items), s.gen.Add(1)
	s.mu.Unlock()
	s.logger.Debug("applied remote change", zap.String("origin", c.Origin), zap.Int("records", len(snap)))
	s.obs.ChangeReceived(string(s.key))
	s.obs.Observe(ctx, string(s.key), opRemote, true, time.Since(start))
	s.notify(gen, snap)
}

// ensureLoaded performs the lazy first read; callers hold mu.
func (s *Store[T]) ensureLoaded(ctx context.Context) {
	if s.loaded {
		return
	}
	s.items = s.read(ctx)
	s.loaded = true
}

func (s *Store[T]) read(ctx context.Context) []T {
	raw, ok, err := s.kv.Get(ctx, string(s.key))
	if err != nil {
		s.logger.Error("read collection", zap.Error(err))
		return []T{}
	}
	if !ok {
		return []T{}
	}
	return s.decode(raw)
}

func (s *Store[T]) decode(raw []byte) []T {
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		s.logger.Warn("discard malformed collection", zap.Error(err))
		return []T{}
	}
	if items == nil {
		items = []T{}
	}
	return items
}

// notify delivers snapshot gen to every watcher, stopping early once a newer
// snapshot exists; its own notify call delivers that one.
func (s *Store[T]) notify(gen uint64, snap []T) {
	s.watchMu.Lock()
	ids := make([]int, 0, len(s.watchers))
	for id := range s.watchers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func([]T), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.watchers[id])
	}
	s.watchMu.Unlock()
	for _, fn := range fns {
		if s.gen.Load() != gen {
			return
		}
		fn(cloneAll(snap))
	}
}

func cloneAll[T domain.Record[T]](in []T) []T {
	out := make([]T, len(in))
	for i, it := range in {
		out[i] = it.Clone()
	}
	return out
}
