package resolve

import (
	"reflect"
	"testing"
	"time"

	"auditportal/internal/catalog"
	"auditportal/pkg/domain"
)

func defaultCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.Default()
	if err != nil {
		t.Fatalf("default catalog: %v", err)
	}
	return c
}

func TestBlocksOnlyFromDistrict(t *testing.T) {
	c := defaultCatalog(t)
	got := Blocks(c, "Chennai")
	if want := []string{"Madhavaram", "Sholinganallur"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("blocks of Chennai: got %v want %v", got, want)
	}
	if got := Blocks(c, "Atlantis"); len(got) != 0 {
		t.Fatalf("expected no blocks for unknown district, got %v", got)
	}
}

func TestPanchayatsSortedAndScoped(t *testing.T) {
	c := defaultCatalog(t)
	got := Panchayats(c, "Madurai", "Alanganallur")
	var names []string
	for _, p := range got {
		names = append(names, p.Name)
	}
	if want := []string{"Achampatti", "Palamedu", "Vadugapatti"}; !reflect.DeepEqual(names, want) {
		t.Fatalf("panchayats: got %v want %v", names, want)
	}
	if got := Panchayats(c, "Chennai", "Melur"); len(got) != 0 {
		t.Fatalf("block outside district must yield nothing, got %v", got)
	}
}

func TestFillLocation(t *testing.T) {
	c := defaultCatalog(t)
	ref, ok := FillLocation(c, domain.LocationRef{Panchayat: "Sengadu"})
	if !ok {
		t.Fatalf("expected Sengadu to resolve")
	}
	want := domain.LocationRef{District: "Kancheepuram", Block: "Sriperumbudur", Panchayat: "Sengadu", LGDCode: "222411"}
	if ref != want {
		t.Fatalf("got %+v want %+v", ref, want)
	}

	miss, ok := FillLocation(c, domain.LocationRef{District: "Chennai", Panchayat: "Sengadu", LGDCode: "stale"})
	if ok || miss.LGDCode != "" {
		t.Fatalf("expected miss with cleared lgd, got %+v %v", miss, ok)
	}
}

func TestCurrentPosting(t *testing.T) {
	u := domain.User{
		District:    "Madurai",
		Block:       "Melur",
		Designation: "Block Resource Person",
		WorkHistory: []domain.WorkHistoryEntry{
			{Station: domain.StationWorked, District: "Kancheepuram"},
			{Station: domain.StationPresent, District: "Chennai", Block: "Madhavaram"},
		},
	}
	p := CurrentPosting(u)
	if p.District != "Chennai" || !p.FromHistory || p.Designation != "Block Resource Person" {
		t.Fatalf("unexpected posting %+v", p)
	}

	u.WorkHistory = nil
	p = CurrentPosting(u)
	if p.District != "Madurai" || p.Block != "Melur" || p.FromHistory {
		t.Fatalf("expected fallback to base fields, got %+v", p)
	}
}

func TestCurrentPostingFirstPresentWins(t *testing.T) {
	u := domain.User{
		District: "Madurai",
		WorkHistory: []domain.WorkHistoryEntry{
			{Station: domain.StationPresent, District: "Chennai"},
			{Station: domain.StationPresent, District: "Kancheepuram"},
		},
		AdditionalCharges: []domain.WorkHistoryEntry{
			{Station: domain.StationPresent, District: "Madurai"},
		},
	}
	if got := CurrentPosting(u).District; got != "Chennai" {
		t.Fatalf("expected first present entry, got %s", got)
	}

	u.WorkHistory = u.WorkHistory[:0]
	if got := CurrentPosting(u).District; got != "Madurai" {
		t.Fatalf("expected additional charge to be consulted, got %s", got)
	}
}

func TestFindIssue(t *testing.T) {
	sgs := time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)
	entries := []domain.SchemeEntry{
		{Base: domain.Base{ID: 1}, BRPName: "Kumar", Round: 1, Paras: []domain.ParaParticular{
			{IssueNumber: "1", IssueType: "Financial Misappropriation", Category: "Wages"},
		}},
		{Base: domain.Base{ID: 2}, BRPName: "Selvi", Round: 3, SGSDate: sgs, Paras: []domain.ParaParticular{
			{IssueNumber: "1", IssueType: "Process Violation", Category: "Muster Roll"},
			{IssueNumber: "MG-7", IssueType: "Grievance", Category: "Worksite Facilities", SubCategory: "Drinking water"},
		}},
	}

	m, ok := FindIssue(entries, " MG-7 ")
	if !ok || m.Entry.ID != 2 || m.Para.SubCategory != "Drinking water" {
		t.Fatalf("unexpected match %+v %v", m, ok)
	}
	f := FieldsFor(m, ok)
	if f.BRPName != "Selvi" || f.Round != 3 || !f.SGSDate.Equal(sgs) || f.Category != "Worksite Facilities" {
		t.Fatalf("unexpected fields %+v", f)
	}

	// Duplicate numbers across entries resolve to the first entry scanned.
	if m, _ := FindIssue(entries, "1"); m.Entry.ID != 1 {
		t.Fatalf("expected first entry for shared issue number, got %d", m.Entry.ID)
	}
}

func TestFindIssueMissClearsFields(t *testing.T) {
	m, ok := FindIssue(nil, "nonexistent")
	if ok {
		t.Fatalf("expected miss")
	}
	if f := FieldsFor(m, ok); f != (IssueFields{}) {
		t.Fatalf("expected cleared fields, got %+v", f)
	}
}

func TestFindIssueDoesNotAliasInput(t *testing.T) {
	entries := []domain.SchemeEntry{{Paras: []domain.ParaParticular{{IssueNumber: "A"}}}}
	m, _ := FindIssue(entries, "A")
	m.Entry.Paras[0].IssueNumber = "B"
	if entries[0].Paras[0].IssueNumber != "A" {
		t.Fatalf("match aliases input snapshot")
	}
}

func TestFindIssueIgnoresStoredPadding(t *testing.T) {
	entries := []domain.SchemeEntry{{BRPName: "Devi", Paras: []domain.ParaParticular{{IssueNumber: " 12"}}}}
	m, ok := FindIssue(entries, "12")
	if !ok || m.Entry.BRPName != "Devi" {
		t.Fatalf("expected padded stored issue number to match, got %+v %v", m, ok)
	}
}
