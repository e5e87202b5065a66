package portal

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"auditportal/internal/access"
	"auditportal/internal/attachment"
	"auditportal/internal/broadcast"
	"auditportal/internal/catalog"
	"auditportal/internal/kv"
	"auditportal/pkg/domain"
)

var (
	admin    = access.RoleActor(domain.RoleAdmin)
	district = access.RoleActor(domain.RoleDistrict)
	block    = access.RoleActor(domain.RoleBlock)
	ist      = time.FixedZone("IST", 5*3600+1800)
	fixedNow = time.Date(2024, 3, 6, 11, 0, 0, 0, ist)
)

type fixture struct {
	portal *Portal
	kv     kv.Store
	bus    *broadcast.LocalBus
	files  attachment.Store
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	cat, err := catalog.Default()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	f := fixture{kv: kv.NewMemory(), bus: broadcast.NewLocalBus(), files: attachment.NewMemory()}
	f.portal = New(Deps{
		KV:          f.kv,
		Bus:         f.bus,
		Catalog:     cat,
		Attachments: attachment.NewService(f.files, nil),
		Now:         func() time.Time { return fixedNow },
	})
	t.Cleanup(f.portal.Close)
	return f
}

func TestCaseStudyNumbering(t *testing.T) {
	ctx := context.Background()
	p := newFixture(t).portal

	if got := p.CaseStudies.NextCaseStudyNumber(ctx, "Chennai"); got != "Chennai-1" {
		t.Fatalf("expected Chennai-1, got %s", got)
	}
	cs, err := p.CaseStudies.Add(ctx, block, domain.CaseStudy{District: "Chennai", Title: "Wage delay", CaseNumber: "ignored"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if cs.CaseNumber != "Chennai-1" || !cs.CreatedAt.Equal(fixedNow) {
		t.Fatalf("unexpected case study %+v", cs)
	}
	if got := p.CaseStudies.NextCaseStudyNumber(ctx, "Chennai"); got != "Chennai-2" {
		t.Fatalf("expected Chennai-2, got %s", got)
	}
	if got := p.CaseStudies.NextCaseStudyNumber(ctx, "Madurai"); got != "Madurai-1" {
		t.Fatalf("scopes must be independent, got %s", got)
	}
	if ok, err := p.CaseStudies.Remove(ctx, block, cs.ID); !ok || err != nil {
		t.Fatalf("remove: %v %v", ok, err)
	}
	if got := p.CaseStudies.NextCaseStudyNumber(ctx, "Chennai"); got != "Chennai-2" {
		t.Fatalf("deleted number must not be reused, got %s", got)
	}
}

func TestCaseStudyUpdateKeepsNumber(t *testing.T) {
	ctx := context.Background()
	p := newFixture(t).portal
	cs, _ := p.CaseStudies.Add(ctx, block, domain.CaseStudy{District: "Chennai", Title: "Draft"})
	cs.Title = "Final"
	cs.CaseNumber = "Madurai-9"
	cs.District = "Madurai"
	if ok, err := p.CaseStudies.Update(ctx, block, cs); !ok || err != nil {
		t.Fatalf("update: %v %v", ok, err)
	}
	got, _ := p.CaseStudies.Get(ctx, cs.ID)
	if got.Title != "Final" || got.CaseNumber != "Chennai-1" || got.District != "Chennai" {
		t.Fatalf("generated fields changed: %+v", got)
	}
}

func TestCaseStudyDistrictScope(t *testing.T) {
	ctx := context.Background()
	p := newFixture(t).portal

	padded, err := p.CaseStudies.Add(ctx, block, domain.CaseStudy{District: "Chennai ", Title: "Padded"})
	if err != nil {
		t.Fatalf("add padded district: %v", err)
	}
	plain, err := p.CaseStudies.Add(ctx, block, domain.CaseStudy{District: "Chennai", Title: "Plain"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if padded.CaseNumber != "Chennai-1" || padded.District != "Chennai" || plain.CaseNumber != "Chennai-2" {
		t.Fatalf("expected one Chennai sequence, got %q and %q", padded.CaseNumber, plain.CaseNumber)
	}
	if got := p.CaseStudies.NextCaseStudyNumber(ctx, " Chennai"); got != "Chennai-3" {
		t.Fatalf("expected Chennai-3, got %s", got)
	}

	var verr domain.ValidationError
	for _, cs := range []domain.CaseStudy{
		{District: "Chenai", Title: "Misspelt"},
		{District: "Chennai", Block: "Melur", Title: "Block elsewhere"},
		{District: "Madurai", Block: "Melur", Panchayat: "Sengadu", Title: "Panchayat elsewhere"},
	} {
		if _, err := p.CaseStudies.Add(ctx, block, cs); !errors.As(err, &verr) || verr.Field != "district" {
			t.Fatalf("expected %+v to be rejected, got %v", cs, err)
		}
	}
	if _, err := p.CaseStudies.Add(ctx, block, domain.CaseStudy{District: "Madurai", Block: "Melur", Panchayat: "Kottanatham", Title: "Known"}); err != nil {
		t.Fatalf("known panchayat rejected: %v", err)
	}
	if got := len(p.CaseStudies.List(ctx)); got != 3 {
		t.Fatalf("expected 3 stored case studies, got %d", got)
	}
}

func TestUsersEmployeeCodeAndPosting(t *testing.T) {
	ctx := context.Background()
	p := newFixture(t).portal

	u, err := p.Users.Add(ctx, admin, domain.User{
		Name: "Anitha", Role: domain.RoleDistrict, District: "Madurai",
		WorkHistory: []domain.WorkHistoryEntry{{Station: domain.StationPresent, District: "Chennai"}},
	})
	if err != nil {
		t.Fatalf("add user: %v", err)
	}
	if !regexp.MustCompile(`^EMP[A-Z0-9]{6}$`).MatchString(u.EmployeeCode) {
		t.Fatalf("unexpected employee code %q", u.EmployeeCode)
	}
	if got := p.Users.CurrentPosting(u).District; got != "Chennai" {
		t.Fatalf("expected present station Chennai, got %s", got)
	}

	original := u.EmployeeCode
	u.EmployeeCode = "EMPXXXXXX"
	u.WorkHistory = nil
	if _, err := p.Users.Update(ctx, admin, u); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, ok := p.Users.ByEmployeeCode(ctx, original)
	if !ok {
		t.Fatalf("employee code must survive update")
	}
	if p.Users.CurrentPosting(got).District != "Madurai" {
		t.Fatalf("expected fallback to base district")
	}
}

func TestUsersRequireAdmin(t *testing.T) {
	ctx := context.Background()
	p := newFixture(t).portal
	_, err := p.Users.Add(ctx, district, domain.User{Name: "X", Role: domain.RoleBlock, District: "Chennai"})
	if !errors.Is(err, access.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if got := p.Users.List(ctx); len(got) != 0 {
		t.Fatalf("forbidden add must not store, got %v", got)
	}
	if _, err := p.Users.Remove(ctx, district, 1); !errors.Is(err, access.ErrForbidden) {
		t.Fatalf("expected ErrForbidden on remove, got %v", err)
	}
}

func TestValidationAtBoundary(t *testing.T) {
	ctx := context.Background()
	p := newFixture(t).portal
	_, err := p.VRPs.Add(ctx, block, domain.VRP{Kind: domain.VRPWithoutCode, VRPCode: "V1", Name: "Selvi",
		Location: domain.LocationRef{Panchayat: "Sengadu"}})
	var verr domain.ValidationError
	if !errors.As(err, &verr) || verr.Field != "vrpCode" {
		t.Fatalf("expected vrpCode validation error, got %v", err)
	}

	v, err := p.VRPs.Add(ctx, block, domain.VRP{Kind: domain.VRPWithCode, VRPCode: "V1", Name: "Selvi",
		Location: domain.LocationRef{Panchayat: "Sengadu"}})
	if err != nil {
		t.Fatalf("add vrp: %v", err)
	}
	if v.Location.District != "Kancheepuram" || v.Location.LGDCode != "222411" {
		t.Fatalf("expected location resolved from catalog, got %+v", v.Location)
	}

	_, err = p.VRPs.Add(ctx, block, domain.VRP{Kind: domain.VRPWithoutCode, Name: "Kavya",
		Location: domain.LocationRef{District: "Chennai", Block: "Madhavaram", Panchayat: "Sengadu"}})
	if !errors.As(err, &verr) || verr.Field != "location" {
		t.Fatalf("expected panchayat outside the block to be rejected, got %v", err)
	}
	if got := p.VRPs.List(ctx); len(got) != 1 {
		t.Fatalf("rejected vrp must not be stored, got %d records", len(got))
	}
}

func TestGrievanceRegistration(t *testing.T) {
	ctx := context.Background()
	p := newFixture(t).portal
	g, err := p.Grievances.Add(ctx, block, domain.Grievance{Petitioner: "Murugan",
		Location: domain.LocationRef{District: "Madurai", Block: "Melur", Panchayat: "Kottanatham"}})
	if err != nil {
		t.Fatalf("add grievance: %v", err)
	}
	if !regexp.MustCompile(`^GRV[A-Z0-9]{8}$`).MatchString(g.RegistrationNumber) {
		t.Fatalf("unexpected registration number %q", g.RegistrationNumber)
	}
	if g.Status != domain.GrievanceOpen || !g.ReceivedOn.Equal(fixedNow) || g.Location.LGDCode != "231447" {
		t.Fatalf("unexpected defaults %+v", g)
	}
	if _, ok := p.Grievances.ByRegistration(ctx, g.RegistrationNumber); !ok {
		t.Fatalf("expected lookup by registration number")
	}
}

func TestFindIssue(t *testing.T) {
	ctx := context.Background()
	p := newFixture(t).portal
	_, err := p.Mgnregs.Add(ctx, block, domain.SchemeEntry{
		Location: domain.LocationRef{Panchayat: "Palamedu"}, Round: 2, FinancialYear: "2023-24", BRPName: "Kumar",
		SGSDate: fixedNow, Paras: []domain.ParaParticular{{IssueNumber: "12", IssueType: "Financial Deviation", Category: "Wages"}},
	})
	if err != nil {
		t.Fatalf("add entry: %v", err)
	}

	m, ok := p.FindIssue(ctx, domain.SchemeMGNREGS, "12")
	if !ok || m.Entry.BRPName != "Kumar" || m.Para.Category != "Wages" {
		t.Fatalf("unexpected match %+v %v", m, ok)
	}
	if _, ok := p.FindIssue(ctx, domain.SchemeMGNREGS, "nonexistent"); ok {
		t.Fatalf("expected miss")
	}
	if _, ok := p.FindIssue(ctx, domain.SchemePMAYG, "12"); ok {
		t.Fatalf("issue recorded under MGNREGS must not resolve for PMAY-G")
	}
	if _, ok := p.FindIssue(ctx, "NRLM", "12"); ok {
		t.Fatalf("unknown scheme must miss")
	}

	_, err = p.Pmayg.Add(ctx, block, domain.SchemeEntry{Scheme: domain.SchemeMGNREGS, BRPName: "x",
		Location: domain.LocationRef{Panchayat: "Palamedu"}})
	if err == nil {
		t.Fatalf("expected scheme mismatch to be rejected")
	}
}

func TestSchemeEntryUpdateKeepsScheme(t *testing.T) {
	ctx := context.Background()
	p := newFixture(t).portal
	e, err := p.Mgnregs.Add(ctx, block, domain.SchemeEntry{
		Location: domain.LocationRef{Panchayat: "Palamedu"}, BRPName: "Kumar",
		Paras: []domain.ParaParticular{{IssueNumber: "12"}},
	})
	if err != nil {
		t.Fatalf("add entry: %v", err)
	}

	e.Scheme = domain.SchemePMAYG
	found, err := p.Mgnregs.Update(ctx, block, e)
	var verr domain.ValidationError
	if found || !errors.As(err, &verr) || verr.Field != "scheme" {
		t.Fatalf("expected scheme change to be rejected, got found=%v err=%v", found, err)
	}
	stored, _ := p.Mgnregs.Get(ctx, e.ID)
	if stored.Scheme != domain.SchemeMGNREGS {
		t.Fatalf("stored entry changed scheme: %+v", stored)
	}
	if _, ok := p.FindIssue(ctx, domain.SchemeMGNREGS, "12"); !ok {
		t.Fatalf("entry must still resolve under MGNREGS")
	}
}

func TestIssueNumbersStoredTrimmed(t *testing.T) {
	ctx := context.Background()
	p := newFixture(t).portal
	e, err := p.Pmayg.Add(ctx, block, domain.SchemeEntry{
		Location: domain.LocationRef{Panchayat: "Sengadu"}, BRPName: "Devi",
		Paras: []domain.ParaParticular{{IssueNumber: " 12 ", Category: "Roof"}},
	})
	if err != nil {
		t.Fatalf("add entry: %v", err)
	}
	if e.Paras[0].IssueNumber != "12" {
		t.Fatalf("expected trimmed issue number, got %q", e.Paras[0].IssueNumber)
	}
	m, ok := p.FindIssue(ctx, domain.SchemePMAYG, "12")
	if !ok || m.Para.Category != "Roof" {
		t.Fatalf("expected trimmed issue to resolve, got %+v %v", m, ok)
	}

	_, err = p.Pmayg.Add(ctx, block, domain.SchemeEntry{
		Location: domain.LocationRef{Panchayat: "Sengadu"}, BRPName: "Devi",
		Paras: []domain.ParaParticular{{IssueNumber: "7"}, {IssueNumber: "7 "}},
	})
	if err == nil {
		t.Fatalf("expected duplicate issue numbers after trimming to be rejected")
	}
}

func TestGalleryUploadAndRemove(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.portal

	item, err := p.Gallery.Upload(ctx, block, domain.GalleryItem{Title: "Gram Sabha"}, []byte("jpeg"), "image/jpeg")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if item.ID != fixedNow.UnixMilli() || item.Attachment.Size != 4 {
		t.Fatalf("unexpected item %+v", item)
	}
	if infos, _ := f.files.List(ctx, ""); len(infos) != 1 {
		t.Fatalf("expected one stored attachment, got %d", len(infos))
	}

	if _, err := p.Gallery.Upload(ctx, block, domain.GalleryItem{}, []byte("jpeg"), "image/jpeg"); err == nil {
		t.Fatalf("expected validation error for untitled item")
	}
	if _, err := p.Library.Upload(ctx, block, domain.LibraryItem{Title: "Manual"}, []byte("pdf"), "application/pdf"); !errors.Is(err, access.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for block library upload, got %v", err)
	}
	if infos, _ := f.files.List(ctx, ""); len(infos) != 1 {
		t.Fatalf("rejected uploads must not store bytes, got %d", len(infos))
	}

	if ok, err := p.Gallery.Remove(ctx, block, item.ID); !ok || err != nil {
		t.Fatalf("remove: %v %v", ok, err)
	}
	if infos, _ := f.files.List(ctx, ""); len(infos) != 0 {
		t.Fatalf("expected attachment discarded, got %d", len(infos))
	}
}

func TestPortalsConverge(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	other := New(Deps{KV: f.kv, Bus: f.bus, Now: func() time.Time { return fixedNow }})
	defer other.Close()
	_ = other.Holidays.List(ctx)

	h, err := f.portal.Holidays.Add(ctx, admin, domain.Holiday{Date: fixedNow, Name: "Ugadi", Kind: domain.HolidayGazetted})
	if err != nil {
		t.Fatalf("add holiday: %v", err)
	}
	got := other.Holidays.List(ctx)
	if len(got) != 1 || got[0].ID != h.ID || got[0].Name != "Ugadi" {
		t.Fatalf("other portal did not converge: %+v", got)
	}
}

func TestSummary(t *testing.T) {
	ctx := context.Background()
	p := newFixture(t).portal
	_, _ = p.Audits.Add(ctx, block, domain.Audit{Scheme: domain.SchemeMGNREGS, Round: 1, FinancialYear: "2023-24",
		Location: domain.LocationRef{Panchayat: "Sengadu"}, SGSDate: fixedNow.Add(-24 * time.Hour)})
	_, _ = p.Grievances.Add(ctx, block, domain.Grievance{Petitioner: "Ravi"})
	_, _ = p.CaseStudies.Add(ctx, block, domain.CaseStudy{District: "Chennai", Title: "t"})

	s := p.Summary(ctx)
	if s.AuditsThisWeek != 1 || s.AuditsCompleted != 1 {
		t.Fatalf("unexpected audit summary %+v", s)
	}
	if s.GrievancesByStatus[domain.GrievanceOpen] != 1 || s.CaseStudiesByDistrict["Chennai"] != 1 {
		t.Fatalf("unexpected summary %+v", s)
	}
	if got := p.Audits.ThisWeek(ctx); got != 1 {
		t.Fatalf("expected 1 audit this week, got %d", got)
	}
}
