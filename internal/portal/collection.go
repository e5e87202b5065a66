package portal

import (
	"context"
	"fmt"

	"auditportal/internal/access"
	"auditportal/internal/store"
	"auditportal/pkg/domain"
)

// Entity is a storable record that validates itself.
type Entity[T any] interface {
	domain.Record[T]
	Validate() error
}

// Collection is the facade over one entity store: reads pass straight
// through, mutations are access-checked, normalised and validated first.
type Collection[T Entity[T]] struct {
	store  *store.Store[T]
	policy access.Policy

	// prepare normalises a record before validation on add and update.
	prepare func(T) T
	// preserve copies immutable fields from the stored record onto an update.
	preserve func(stored, incoming T) T
	// check runs after Validate for rules that need more than the record.
	check func(T) error
}

func newCollection[T Entity[T]](s *store.Store[T], policy access.Policy) *Collection[T] {
	return &Collection[T]{store: s, policy: policy}
}

// Key returns the persisted collection key.
func (c *Collection[T]) Key() domain.CollectionKey { return c.store.Key() }

// List returns a copy of every record.
func (c *Collection[T]) List(ctx context.Context) []T { return c.store.List(ctx) }

// Get returns the record with id.
func (c *Collection[T]) Get(ctx context.Context, id int64) (T, bool) { return c.store.Get(ctx, id) }

// Watch forwards to the underlying store.
func (c *Collection[T]) Watch(fn func([]T)) (cancel func()) { return c.store.Watch(fn) }

// Reload re-reads the collection from storage.
func (c *Collection[T]) Reload(ctx context.Context) { c.store.Reload(ctx) }

// Add validates rec and stores it under a new id.
func (c *Collection[T]) Add(ctx context.Context, actor access.Actor, rec T) (T, error) {
	var zero T
	rec, err := c.admit(actor, rec)
	if err != nil {
		return zero, err
	}
	return c.store.Add(ctx, rec), nil
}

// Update replaces the stored record with rec's id. Found is false when no
// such record exists; that is not an error.
func (c *Collection[T]) Update(ctx context.Context, actor access.Actor, rec T) (found bool, err error) {
	if err := c.policy.CanMutate(actor, c.Key()); err != nil {
		return false, err
	}
	if c.preserve != nil {
		if stored, ok := c.store.Get(ctx, rec.GetID()); ok {
			rec = c.preserve(stored, rec)
		}
	}
	rec, err = c.admit(actor, rec)
	if err != nil {
		return false, err
	}
	return c.store.Update(ctx, rec), nil
}

// Remove deletes the record with id. Removing a missing id reports false.
func (c *Collection[T]) Remove(ctx context.Context, actor access.Actor, id int64) (bool, error) {
	if err := c.policy.CanMutate(actor, c.Key()); err != nil {
		return false, err
	}
	return c.store.Remove(ctx, id), nil
}

func (c *Collection[T]) admit(actor access.Actor, rec T) (T, error) {
	var zero T
	if err := c.policy.CanMutate(actor, c.Key()); err != nil {
		return zero, err
	}
	if c.prepare != nil {
		rec = c.prepare(rec)
	}
	if err := rec.Validate(); err != nil {
		return zero, fmt.Errorf("%s: %w", c.Key(), err)
	}
	if c.check != nil {
		if err := c.check(rec); err != nil {
			return zero, fmt.Errorf("%s: %w", c.Key(), err)
		}
	}
	return rec, nil
}
