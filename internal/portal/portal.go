// Package portal wires one store per entity kind into the facades UI and
// CLI callers use. Facades validate input, enforce the role policy, assign
// generated codes and resolve locations before anything is persisted.
package portal

import (
	"context"
	"fmt"
	"io"
	"slices"
	"time"

	"auditportal/internal/access"
	"auditportal/internal/attachment"
	"auditportal/internal/broadcast"
	"auditportal/internal/catalog"
	"auditportal/internal/ident"
	"auditportal/internal/kv"
	"auditportal/internal/logging"
	"auditportal/internal/metrics"
	"auditportal/internal/resolve"
	"auditportal/internal/store"
	"auditportal/internal/views"
	"auditportal/pkg/domain"

	"go.uber.org/zap"
)

// Deps are the shared collaborators every facade is built from.
type Deps struct {
	KV          kv.Store
	Bus         broadcast.Bus
	Catalog     *catalog.Catalog
	Attachments *attachment.Service
	Policy      access.Policy
	Logger      *zap.Logger
	Observer    metrics.Observer
	// Now defaults to time.Now.
	Now func() time.Time
	// Rand feeds generated codes; defaults to crypto/rand.
	Rand io.Reader
}

// Portal holds one facade per entity kind.
type Portal struct {
	Users       *Users
	VRPs        *Collection[domain.VRP]
	Audits      *Audits
	CaseStudies *CaseStudies
	Mgnregs     *SchemeEntries
	Pmayg       *SchemeEntries
	Grievances  *Grievances
	TourDiary   *Collection[domain.TourDiaryRecord]
	Gallery     *Media[domain.GalleryItem]
	Library     *Media[domain.LibraryItem]
	Calendars   *Collection[domain.Calendar]
	Holidays    *Collection[domain.Holiday]

	catalog *catalog.Catalog
	now     func() time.Time
	closers []func()
}

// New builds every facade over deps. A nil Policy uses access.DefaultPolicy;
// a nil Catalog disables location fill-in.
func New(deps Deps) *Portal {
	if deps.Policy == nil {
		deps.Policy = access.DefaultPolicy()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Observer == nil {
		deps.Observer = metrics.Nop{}
	}
	logger := logging.OrNop(deps.Logger)
	if deps.Attachments == nil {
		deps.Attachments = attachment.NewService(attachment.NewMemory(), logger)
	}
	p := &Portal{catalog: deps.Catalog, now: deps.Now}

	opts := func(extra ...store.Option) []store.Option {
		return append([]store.Option{
			store.WithLogger(logger),
			store.WithObserver(deps.Observer),
			store.WithClock(deps.Now),
		}, extra...)
	}
	timestampIDs := func() store.Option { return store.WithIDPolicy(&ident.Timestamp{Now: deps.Now}) }
	fill := func(ref domain.LocationRef) domain.LocationRef {
		if deps.Catalog == nil {
			return ref
		}
		filled, _ := resolve.FillLocation(deps.Catalog, ref)
		return filled
	}
	// known rejects a filled location the catalog could not resolve.
	known := func(ref domain.LocationRef) error {
		if deps.Catalog == nil || ref.LGDCode != "" {
			return nil
		}
		return domain.ValidationError{
			Field:  "location",
			Reason: fmt.Sprintf("%s/%s/%s is not in the catalog", ref.District, ref.Block, ref.Panchayat),
		}
	}
	// knownPlace checks the most specific of district, block and panchayat
	// that is set.
	knownPlace := func(district, block, panchayat string) error {
		if deps.Catalog == nil {
			return nil
		}
		switch {
		case panchayat != "":
			if _, ok := resolve.Panchayat(deps.Catalog, domain.LocationRef{District: district, Block: block, Panchayat: panchayat}); ok {
				return nil
			}
		case block != "":
			if slices.Contains(resolve.Blocks(deps.Catalog, district), block) {
				return nil
			}
		default:
			if slices.Contains(deps.Catalog.Districts(), district) {
				return nil
			}
		}
		return domain.ValidationError{
			Field:  "district",
			Reason: fmt.Sprintf("%s/%s/%s is not in the catalog", district, block, panchayat),
		}
	}

	users := store.New[domain.User](domain.CollectionUsers, deps.KV, deps.Bus, opts()...)
	vrps := store.New[domain.VRP](domain.CollectionVRPs, deps.KV, deps.Bus, opts()...)
	audits := store.New[domain.Audit](domain.CollectionAudits, deps.KV, deps.Bus, opts()...)
	cases := store.New[domain.CaseStudy](domain.CollectionCaseStudies, deps.KV, deps.Bus, opts()...)
	mgnregs := store.New[domain.SchemeEntry](domain.CollectionMgnregsEntries, deps.KV, deps.Bus, opts()...)
	pmayg := store.New[domain.SchemeEntry](domain.CollectionPmaygEntries, deps.KV, deps.Bus, opts()...)
	grievances := store.New[domain.Grievance](domain.CollectionGrievances, deps.KV, deps.Bus, opts()...)
	tour := store.New[domain.TourDiaryRecord](domain.CollectionTourDiary, deps.KV, deps.Bus, opts()...)
	gallery := store.New[domain.GalleryItem](domain.CollectionGallery, deps.KV, deps.Bus, opts(timestampIDs())...)
	library := store.New[domain.LibraryItem](domain.CollectionLibrary, deps.KV, deps.Bus, opts(timestampIDs())...)
	calendars := store.New[domain.Calendar](domain.CollectionCalendars, deps.KV, deps.Bus, opts()...)
	holidays := store.New[domain.Holiday](domain.CollectionHolidays, deps.KV, deps.Bus, opts()...)
	p.closers = []func(){
		users.Close, vrps.Close, audits.Close, cases.Close, mgnregs.Close, pmayg.Close,
		grievances.Close, tour.Close, gallery.Close, library.Close, calendars.Close, holidays.Close,
	}

	p.Users = newUsers(users, deps.Policy, deps.Rand)
	p.VRPs = newCollection(vrps, deps.Policy)
	p.VRPs.prepare = func(v domain.VRP) domain.VRP { v.Location = fill(v.Location); return v }
	p.VRPs.check = func(v domain.VRP) error { return known(v.Location) }
	p.Audits = newAudits(audits, deps.Policy, fill, deps.Now)
	p.Audits.check = func(a domain.Audit) error { return known(a.Location) }
	p.CaseStudies = newCaseStudies(cases, deps.Policy, deps.KV, logger, deps.Now, knownPlace)
	p.Mgnregs = newSchemeEntries(mgnregs, deps.Policy, domain.SchemeMGNREGS, fill, known)
	p.Pmayg = newSchemeEntries(pmayg, deps.Policy, domain.SchemePMAYG, fill, known)
	p.Grievances = newGrievances(grievances, deps.Policy, fill, deps.Rand, deps.Now)
	p.Grievances.check = func(g domain.Grievance) error {
		if g.Location.IsZero() {
			return nil
		}
		return known(g.Location)
	}
	p.TourDiary = newCollection(tour, deps.Policy)
	p.Gallery = newMedia(gallery, deps.Policy, deps.Attachments,
		func(g domain.GalleryItem) domain.Attachment { return g.Attachment },
		func(g domain.GalleryItem, a domain.Attachment) domain.GalleryItem { g.Attachment = a; return g })
	p.Library = newMedia(library, deps.Policy, deps.Attachments,
		func(l domain.LibraryItem) domain.Attachment { return l.Attachment },
		func(l domain.LibraryItem, a domain.Attachment) domain.LibraryItem { l.Attachment = a; return l })
	p.Calendars = newCollection(calendars, deps.Policy)
	p.Holidays = newCollection(holidays, deps.Policy)
	return p
}

// Close detaches every store from the bus.
func (p *Portal) Close() {
	for _, c := range p.closers {
		c()
	}
}

// Catalog returns the reference catalog, which may be nil.
func (p *Portal) Catalog() *catalog.Catalog { return p.catalog }

// SchemeEntries returns the facade holding entries for scheme.
func (p *Portal) SchemeEntries(scheme domain.Scheme) (*SchemeEntries, bool) {
	switch scheme {
	case domain.SchemeMGNREGS:
		return p.Mgnregs, true
	case domain.SchemePMAYG:
		return p.Pmayg, true
	}
	return nil, false
}

// FindIssue looks issueNumber up among the entries of scheme. An unknown
// scheme or issue is an ordinary miss.
func (p *Portal) FindIssue(ctx context.Context, scheme domain.Scheme, issueNumber string) (resolve.IssueMatch, bool) {
	entries, ok := p.SchemeEntries(scheme)
	if !ok {
		return resolve.IssueMatch{}, false
	}
	return entries.FindIssue(ctx, issueNumber)
}

// Summary aggregates the dashboard counts as of now.
func (p *Portal) Summary(ctx context.Context) views.Summary {
	return views.Summarize(views.Snapshot{
		Audits:      p.Audits.List(ctx),
		Grievances:  p.Grievances.List(ctx),
		TourDiary:   p.TourDiary.List(ctx),
		CaseStudies: p.CaseStudies.List(ctx),
	}, p.now())
}
