package portal

import (
	"context"
	"time"

	"auditportal/internal/access"
	"auditportal/internal/attachment"
	"auditportal/internal/store"
	"auditportal/pkg/domain"
)

// Media is a collection whose records own an uploaded attachment.
type Media[T Entity[T]] struct {
	*Collection[T]
	files *attachment.Service
	get   func(T) domain.Attachment
	set   func(T, domain.Attachment) T
}

func newMedia[T Entity[T]](s *store.Store[T], policy access.Policy, files *attachment.Service, get func(T) domain.Attachment, set func(T, domain.Attachment) T) *Media[T] {
	m := &Media[T]{Collection: newCollection(s, policy), files: files, get: get, set: set}
	m.preserve = func(stored, incoming T) T { return set(incoming, get(stored)) }
	return m
}

// Upload stores data as rec's attachment and adds rec. The record is
// checked before any bytes are written.
func (m *Media[T]) Upload(ctx context.Context, actor access.Actor, rec T, data []byte, contentType string) (T, error) {
	var zero T
	if _, err := m.admit(actor, rec); err != nil {
		return zero, err
	}
	a, err := m.files.Save(ctx, m.Key(), data, contentType)
	if err != nil {
		return zero, err
	}
	added, err := m.Collection.Add(ctx, actor, m.set(rec, a))
	if err != nil {
		m.files.Discard(ctx, a)
		return zero, err
	}
	return added, nil
}

// Remove deletes the record and then, best effort, its attachment.
func (m *Media[T]) Remove(ctx context.Context, actor access.Actor, id int64) (bool, error) {
	rec, found := m.Get(ctx, id)
	removed, err := m.Collection.Remove(ctx, actor, id)
	if err != nil || !removed {
		return removed, err
	}
	if found {
		m.files.Discard(ctx, m.get(rec))
	}
	return true, nil
}

// URL returns a time-limited link to rec's attachment.
func (m *Media[T]) URL(ctx context.Context, rec T, expiry time.Duration) (string, error) {
	return m.files.URL(ctx, m.get(rec), expiry)
}

// Orphans lists stored attachments no record in the collection references.
func (m *Media[T]) Orphans(ctx context.Context) ([]attachment.Info, error) {
	list := m.List(ctx)
	refs := make([]domain.Attachment, len(list))
	for i, rec := range list {
		refs[i] = m.get(rec)
	}
	return m.files.Orphans(ctx, m.Key(), refs)
}
