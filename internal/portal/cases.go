package portal

import (
	"context"
	"strings"
	"sync"
	"time"

	"auditportal/internal/access"
	"auditportal/internal/ident"
	"auditportal/internal/kv"
	"auditportal/internal/store"
	"auditportal/pkg/domain"

	"go.uber.org/zap"
)

// CaseStudies numbers case studies per district: Chennai-1, Chennai-2, ...
type CaseStudies struct {
	*Collection[domain.CaseStudy]
	seq *ident.ScopedSequence
	now func() time.Time
	mu  sync.Mutex
}

func newCaseStudies(s *store.Store[domain.CaseStudy], policy access.Policy, backend kv.Store, logger *zap.Logger, now func() time.Time, known func(district, block, panchayat string) error) *CaseStudies {
	c := &CaseStudies{
		Collection: newCollection(s, policy),
		seq: &ident.ScopedSequence{
			Collection: domain.CollectionCaseStudies,
			Store:      backend,
			Logger:     logger,
		},
		now: now,
	}
	// The district is the numbering scope, so it is trimmed and must exist.
	c.prepare = func(rec domain.CaseStudy) domain.CaseStudy {
		rec.District = strings.TrimSpace(rec.District)
		rec.Block = strings.TrimSpace(rec.Block)
		rec.Panchayat = strings.TrimSpace(rec.Panchayat)
		return rec
	}
	c.check = func(rec domain.CaseStudy) error { return known(rec.District, rec.Block, rec.Panchayat) }
	c.preserve = func(stored, incoming domain.CaseStudy) domain.CaseStudy {
		incoming.CaseNumber = stored.CaseNumber
		incoming.District = stored.District
		incoming.CreatedAt = stored.CreatedAt
		return incoming
	}
	return c
}

func (c *CaseStudies) scoped(ctx context.Context) []ident.Scoped {
	list := c.List(ctx)
	out := make([]ident.Scoped, len(list))
	for i, cs := range list {
		out[i] = ident.Scoped{Scope: cs.District, Code: cs.CaseNumber}
	}
	return out
}

// NextCaseStudyNumber previews the number the next case study in district
// would get. It reserves nothing.
func (c *CaseStudies) NextCaseStudyNumber(ctx context.Context, district string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seq.Peek(ctx, strings.TrimSpace(district), c.scoped(ctx))
}

// Add assigns the next case number for rec.District and stores it. Any
// case number on rec is replaced.
func (c *CaseStudies) Add(ctx context.Context, actor access.Actor, rec domain.CaseStudy) (domain.CaseStudy, error) {
	rec, err := c.admit(actor, rec)
	if err != nil {
		return domain.CaseStudy{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	rec.CaseNumber = c.seq.Reserve(ctx, rec.District, c.scoped(ctx))
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = c.now()
	}
	return c.Collection.Add(ctx, actor, rec)
}
