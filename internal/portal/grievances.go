package portal

import (
	"context"
	"io"
	"time"

	"auditportal/internal/access"
	"auditportal/internal/ident"
	"auditportal/internal/store"
	"auditportal/pkg/domain"
)

// Grievances registers public petitions under random GRV numbers.
type Grievances struct {
	*Collection[domain.Grievance]
	codes ident.CodeGenerator
	now   func() time.Time
}

func newGrievances(s *store.Store[domain.Grievance], policy access.Policy, fill func(domain.LocationRef) domain.LocationRef, rand io.Reader, now func() time.Time) *Grievances {
	g := &Grievances{
		Collection: newCollection(s, policy),
		codes:      ident.CodeGenerator{Prefix: "GRV", Length: 8, Rand: rand},
		now:        now,
	}
	g.prepare = func(rec domain.Grievance) domain.Grievance {
		if !rec.Location.IsZero() {
			rec.Location = fill(rec.Location)
		}
		if rec.Status == "" {
			rec.Status = domain.GrievanceOpen
		}
		return rec
	}
	g.preserve = func(stored, incoming domain.Grievance) domain.Grievance {
		incoming.RegistrationNumber = stored.RegistrationNumber
		incoming.ReceivedOn = stored.ReceivedOn
		return incoming
	}
	return g
}

// Add registers a grievance, assigning a registration number and received
// date when missing.
func (g *Grievances) Add(ctx context.Context, actor access.Actor, rec domain.Grievance) (domain.Grievance, error) {
	if err := g.policy.CanMutate(actor, g.Key()); err != nil {
		return domain.Grievance{}, err
	}
	if rec.RegistrationNumber == "" {
		code, err := g.codes.Generate()
		if err != nil {
			return domain.Grievance{}, err
		}
		rec.RegistrationNumber = code
	}
	if rec.ReceivedOn.IsZero() {
		rec.ReceivedOn = g.now()
	}
	return g.Collection.Add(ctx, actor, rec)
}

// ByRegistration finds a grievance by its registration number.
func (g *Grievances) ByRegistration(ctx context.Context, number string) (domain.Grievance, bool) {
	for _, rec := range g.List(ctx) {
		if rec.RegistrationNumber == number {
			return rec, true
		}
	}
	return domain.Grievance{}, false
}
