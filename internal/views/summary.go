package views

import (
	"time"

	"auditportal/pkg/domain"
)

// Snapshot bundles the collections a dashboard summary reads.
type Snapshot struct {
	Audits      []domain.Audit
	Grievances  []domain.Grievance
	TourDiary   []domain.TourDiaryRecord
	CaseStudies []domain.CaseStudy
}

// Summary is the dashboard aggregate.
type Summary struct {
	WeekStart             time.Time
	WeekEnd               time.Time
	AuditsThisWeek        int
	AuditsCompleted       int
	AuditsScheduled       int
	GrievancesByStatus    map[domain.GrievanceStatus]int
	TourDiaryThisWeek     int
	CaseStudiesByDistrict map[string]int
}

// Summarize aggregates snap relative to now. Audits are placed in the week
// by SGS date; grievances without a status count as open.
func Summarize(snap Snapshot, now time.Time) Summary {
	start, end := WeekBounds(now)
	s := Summary{
		WeekStart:             start,
		WeekEnd:               end,
		GrievancesByStatus:    make(map[domain.GrievanceStatus]int),
		CaseStudiesByDistrict: make(map[string]int),
	}
	s.AuditsThisWeek = CountInRange(snap.Audits, func(a domain.Audit) time.Time { return a.SGSDate }, start, end)
	for _, a := range snap.Audits {
		if StatusOf(a, now) == AuditCompleted {
			s.AuditsCompleted++
		} else {
			s.AuditsScheduled++
		}
	}
	for _, g := range snap.Grievances {
		status := g.Status
		if status == "" {
			status = domain.GrievanceOpen
		}
		s.GrievancesByStatus[status]++
	}
	s.TourDiaryThisWeek = CountInRange(snap.TourDiary, func(r domain.TourDiaryRecord) time.Time { return r.Date }, start, end)
	for _, c := range snap.CaseStudies {
		s.CaseStudiesByDistrict[c.District]++
	}
	return s
}
