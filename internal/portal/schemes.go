package portal

import (
	"context"
	"fmt"
	"strings"
	"time"

	"auditportal/internal/access"
	"auditportal/internal/resolve"
	"auditportal/internal/store"
	"auditportal/internal/views"
	"auditportal/pkg/domain"
)

// Audits schedules panchayat audits. Status is derived from the SGS date on
// every read.
type Audits struct {
	*Collection[domain.Audit]
	now func() time.Time
}

func newAudits(s *store.Store[domain.Audit], policy access.Policy, fill func(domain.LocationRef) domain.LocationRef, now func() time.Time) *Audits {
	a := &Audits{Collection: newCollection(s, policy), now: now}
	a.prepare = func(rec domain.Audit) domain.Audit { rec.Location = fill(rec.Location); return rec }
	return a
}

// Status reports whether a is completed as of now.
func (a *Audits) Status(rec domain.Audit) views.AuditStatus {
	return views.StatusOf(rec, a.now())
}

// ThisWeek counts audits whose SGS date falls in the current week.
func (a *Audits) ThisWeek(ctx context.Context) int {
	return views.CountThisWeek(a.List(ctx), func(rec domain.Audit) time.Time { return rec.SGSDate }, a.now())
}

// SchemeEntries holds the audit findings recorded for one scheme.
type SchemeEntries struct {
	*Collection[domain.SchemeEntry]
	scheme domain.Scheme
}

func newSchemeEntries(s *store.Store[domain.SchemeEntry], policy access.Policy, scheme domain.Scheme, fill func(domain.LocationRef) domain.LocationRef, known func(domain.LocationRef) error) *SchemeEntries {
	e := &SchemeEntries{Collection: newCollection(s, policy), scheme: scheme}
	e.prepare = func(rec domain.SchemeEntry) domain.SchemeEntry {
		if rec.Scheme == "" {
			rec.Scheme = scheme
		}
		rec.Location = fill(rec.Location)
		if rec.Paras != nil {
			rec.Paras = append([]domain.ParaParticular(nil), rec.Paras...)
			for i := range rec.Paras {
				rec.Paras[i].IssueNumber = strings.TrimSpace(rec.Paras[i].IssueNumber)
			}
		}
		return rec
	}
	// Entries for another scheme are refused on add and update alike.
	e.check = func(rec domain.SchemeEntry) error {
		if rec.Scheme != scheme {
			return domain.ValidationError{Field: "scheme", Reason: fmt.Sprintf("expected %s, got %s", scheme, rec.Scheme)}
		}
		return known(rec.Location)
	}
	return e
}

// Scheme returns the scheme this collection records.
func (e *SchemeEntries) Scheme() domain.Scheme { return e.scheme }

// FindIssue returns the first para with issueNumber across every entry.
func (e *SchemeEntries) FindIssue(ctx context.Context, issueNumber string) (resolve.IssueMatch, bool) {
	return resolve.FindIssue(e.List(ctx), issueNumber)
}
