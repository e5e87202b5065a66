package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"auditportal/internal/access"
	"auditportal/internal/portal"
	"auditportal/internal/views"
	"auditportal/pkg/domain"
)

// collectionOps adapts one facade to the generic CLI commands.
type collectionOps struct {
	list  func(ctx context.Context, search string, filters map[string]string) (any, int, error)
	add   func(ctx context.Context, actor access.Actor, raw json.RawMessage) error
	watch func(fn func(count int)) (cancel func())
}

func opsFor[T portal.Entity[T]](c *portal.Collection[T], add func(context.Context, access.Actor, T) (T, error), proj *views.Projection[T]) collectionOps {
	ops := collectionOps{
		list: func(ctx context.Context, search string, filters map[string]string) (any, int, error) {
			items := c.List(ctx)
			if proj != nil {
				items = proj.Apply(items, search, filters)
			} else if search != "" || len(filters) > 0 {
				return nil, 0, fmt.Errorf("%s does not support search or filters", c.Key())
			}
			return items, len(items), nil
		},
		watch: func(fn func(int)) func() {
			return c.Watch(func(items []T) { fn(len(items)) })
		},
	}
	if add != nil {
		ops.add = func(ctx context.Context, actor access.Actor, raw json.RawMessage) error {
			var rec T
			if err := json.Unmarshal(raw, &rec); err != nil {
				return err
			}
			_, err := add(ctx, actor, rec)
			return err
		}
	}
	return ops
}

func collectionsOf(p *portal.Portal) map[domain.CollectionKey]collectionOps {
	return map[domain.CollectionKey]collectionOps{
		domain.CollectionUsers:          opsFor(p.Users.Collection, p.Users.Add, &views.Users),
		domain.CollectionVRPs:           opsFor(p.VRPs, p.VRPs.Add, &views.VRPs),
		domain.CollectionAudits:         opsFor(p.Audits.Collection, p.Audits.Add, nil),
		domain.CollectionCaseStudies:    opsFor(p.CaseStudies.Collection, p.CaseStudies.Add, &views.CaseStudies),
		domain.CollectionMgnregsEntries: opsFor(p.Mgnregs.Collection, p.Mgnregs.Add, nil),
		domain.CollectionPmaygEntries:   opsFor(p.Pmayg.Collection, p.Pmayg.Add, nil),
		domain.CollectionGrievances:     opsFor(p.Grievances.Collection, p.Grievances.Add, &views.Grievances),
		domain.CollectionTourDiary:      opsFor(p.TourDiary, p.TourDiary.Add, nil),
		domain.CollectionGallery:        opsFor(p.Gallery.Collection, nil, nil),
		domain.CollectionLibrary:        opsFor(p.Library.Collection, nil, &views.Library),
		domain.CollectionCalendars:      opsFor(p.Calendars, p.Calendars.Add, nil),
		domain.CollectionHolidays:       opsFor(p.Holidays, p.Holidays.Add, nil),
	}
}

// collectionKey accepts "grievances" as well as "app-grievances".
func collectionKey(name string) (domain.CollectionKey, error) {
	key := domain.CollectionKey(name)
	if !strings.HasPrefix(name, "app-") {
		key = domain.CollectionKey("app-" + name)
	}
	for _, k := range domain.Collections {
		if k == key {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown collection %q", name)
}
