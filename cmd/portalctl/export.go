package main

import (
	"context"
	"fmt"

	"auditportal/internal/views"
	"auditportal/pkg/domain"
)

func exportTable(ctx context.Context, e *env, key domain.CollectionKey) (views.Table, error) {
	p := e.portal
	switch key {
	case domain.CollectionGrievances:
		t := views.Table{Sheet: "Grievances", Headers: []string{"Registration", "Petitioner", "District", "Block", "Panchayat", "Scheme", "Status", "Received"}}
		for _, g := range views.Grievances.Apply(p.Grievances.List(ctx), "", nil) {
			t.Rows = append(t.Rows, []any{g.RegistrationNumber, g.Petitioner, g.Location.District, g.Location.Block, g.Location.Panchayat, string(g.Scheme), string(g.Status), g.ReceivedOn})
		}
		return t, nil
	case domain.CollectionCaseStudies:
		t := views.Table{Sheet: "Case Studies", Headers: []string{"Case Number", "District", "Block", "Title", "Scheme", "Created"}}
		for _, c := range views.CaseStudies.Apply(p.CaseStudies.List(ctx), "", nil) {
			t.Rows = append(t.Rows, []any{c.CaseNumber, c.District, c.Block, c.Title, string(c.Scheme), c.CreatedAt})
		}
		return t, nil
	case domain.CollectionAudits:
		t := views.Table{Sheet: "Audits", Headers: []string{"Scheme", "Round", "Financial Year", "District", "Block", "Panchayat", "LGD Code", "SGS Date", "Status"}}
		for _, a := range p.Audits.List(ctx) {
			t.Rows = append(t.Rows, []any{string(a.Scheme), a.Round, a.FinancialYear, a.Location.District, a.Location.Block, a.Location.Panchayat, a.Location.LGDCode, a.SGSDate, string(p.Audits.Status(a))})
		}
		return t, nil
	case domain.CollectionUsers:
		t := views.Table{Sheet: "Staff", Headers: []string{"Employee Code", "Name", "Designation", "Role", "Posted District", "Posted Block"}}
		for _, u := range views.Users.Apply(p.Users.List(ctx), "", nil) {
			posting := p.Users.CurrentPosting(u)
			t.Rows = append(t.Rows, []any{u.EmployeeCode, u.Name, posting.Designation, string(u.Role), posting.District, posting.Block})
		}
		return t, nil
	case domain.CollectionTourDiary:
		t := views.Table{Sheet: "Tour Diary", Headers: []string{"Employee Code", "Date", "From", "To", "Purpose", "Distance (km)", "Mode"}}
		for _, r := range p.TourDiary.List(ctx) {
			t.Rows = append(t.Rows, []any{r.EmployeeCode, r.Date, r.FromPlace, r.ToPlace, r.Purpose, r.DistanceKM, r.Mode})
		}
		return t, nil
	}
	return views.Table{}, fmt.Errorf("export not available for %s", key)
}
