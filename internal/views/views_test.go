package views

import (
	"bytes"
	"reflect"
	"testing"
	"time"

	"auditportal/pkg/domain"

	"github.com/xuri/excelize/v2"
)

var ist = time.FixedZone("IST", 5*3600+1800)

func TestWeekBounds(t *testing.T) {
	cases := []struct {
		now  time.Time
		want time.Time
	}{
		{time.Date(2024, 3, 6, 15, 4, 0, 0, ist), time.Date(2024, 3, 4, 0, 0, 0, 0, ist)},   // Wednesday
		{time.Date(2024, 3, 4, 0, 0, 0, 0, ist), time.Date(2024, 3, 4, 0, 0, 0, 0, ist)},    // Monday midnight
		{time.Date(2024, 3, 10, 23, 59, 0, 0, ist), time.Date(2024, 3, 4, 0, 0, 0, 0, ist)}, // Sunday night
	}
	for _, tc := range cases {
		start, end := WeekBounds(tc.now)
		if !start.Equal(tc.want) || !end.Equal(tc.want.AddDate(0, 0, 7)) {
			t.Fatalf("WeekBounds(%s) = %s..%s, want start %s", tc.now, start, end, tc.want)
		}
	}
}

func TestCountThisWeek(t *testing.T) {
	now := time.Date(2024, 3, 6, 12, 0, 0, 0, ist)
	records := []domain.TourDiaryRecord{
		{Date: time.Date(2024, 3, 4, 9, 0, 0, 0, ist)},
		{Date: time.Date(2024, 3, 10, 18, 0, 0, 0, ist)},
		{Date: time.Date(2024, 3, 11, 0, 0, 0, 0, ist)},
		{Date: time.Date(2024, 3, 3, 23, 0, 0, 0, ist)},
		{},
	}
	got := CountThisWeek(records, func(r domain.TourDiaryRecord) time.Time { return r.Date }, now)
	if got != 2 {
		t.Fatalf("expected 2 records this week, got %d", got)
	}
}

func TestStatusOf(t *testing.T) {
	now := time.Date(2024, 3, 6, 12, 0, 0, 0, ist)
	if s := StatusOf(domain.Audit{SGSDate: now.Add(-time.Minute)}, now); s != AuditCompleted {
		t.Fatalf("past SGS date should be completed, got %s", s)
	}
	if s := StatusOf(domain.Audit{SGSDate: now}, now); s != AuditScheduled {
		t.Fatalf("SGS date equal to now is not yet completed, got %s", s)
	}
	if s := StatusOf(domain.Audit{}, now); s != AuditScheduled {
		t.Fatalf("missing SGS date is scheduled, got %s", s)
	}
}

func TestProjectionApply(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2024, 3, d, 0, 0, 0, 0, ist) }
	items := []domain.Grievance{
		{Base: domain.Base{ID: 1}, Petitioner: "Murugan", Description: "Wages pending", Status: domain.GrievanceOpen,
			Location: domain.LocationRef{District: "Madurai"}, ReceivedOn: day(1)},
		{Base: domain.Base{ID: 2}, Petitioner: "Lakshmi", Description: "Job card not issued", Status: domain.GrievanceClosed,
			Location: domain.LocationRef{District: "Madurai"}, ReceivedOn: day(3)},
		{Base: domain.Base{ID: 3}, Petitioner: "Ravi", Description: "WAGES delayed", Status: domain.GrievanceOpen,
			Location: domain.LocationRef{District: "Chennai"}, ReceivedOn: day(2)},
		{Base: domain.Base{ID: 4}, Petitioner: "Kala", Description: "wages short paid", Status: domain.GrievanceOpen,
			Location: domain.LocationRef{District: "Madurai"}, ReceivedOn: day(5)},
	}
	ids := func(gs []domain.Grievance) []int64 {
		var out []int64
		for _, g := range gs {
			out = append(out, g.ID)
		}
		return out
	}

	if got := ids(Grievances.Apply(items, "wages", nil)); !reflect.DeepEqual(got, []int64{4, 3, 1}) {
		t.Fatalf("text search: got %v", got)
	}
	got := ids(Grievances.Apply(items, "wages", map[string]string{"district": "Madurai", "status": "open"}))
	if !reflect.DeepEqual(got, []int64{4, 1}) {
		t.Fatalf("search and filters: got %v", got)
	}
	if got := Grievances.Apply(items, "", map[string]string{"ward": "7"}); len(got) != 0 {
		t.Fatalf("unknown facet should match nothing, got %v", ids(got))
	}
	if got := Grievances.Apply(items, "  ", map[string]string{"district": ""}); len(got) != 4 {
		t.Fatalf("blank search and filter should match all, got %d", len(got))
	}
}

func TestSummarize(t *testing.T) {
	now := time.Date(2024, 3, 6, 12, 0, 0, 0, ist)
	snap := Snapshot{
		Audits: []domain.Audit{
			{SGSDate: time.Date(2024, 3, 5, 10, 0, 0, 0, ist)},
			{SGSDate: time.Date(2024, 3, 8, 10, 0, 0, 0, ist)},
			{SGSDate: time.Date(2024, 2, 1, 10, 0, 0, 0, ist)},
		},
		Grievances: []domain.Grievance{
			{Status: domain.GrievanceOpen}, {}, {Status: domain.GrievanceClosed},
		},
		TourDiary: []domain.TourDiaryRecord{
			{Date: time.Date(2024, 3, 6, 8, 0, 0, 0, ist)},
		},
		CaseStudies: []domain.CaseStudy{
			{District: "Chennai"}, {District: "Chennai"}, {District: "Madurai"},
		},
	}
	s := Summarize(snap, now)
	if s.AuditsThisWeek != 2 || s.AuditsCompleted != 2 || s.AuditsScheduled != 1 {
		t.Fatalf("unexpected audit counts %+v", s)
	}
	if s.GrievancesByStatus[domain.GrievanceOpen] != 2 || s.GrievancesByStatus[domain.GrievanceClosed] != 1 {
		t.Fatalf("unexpected grievance counts %v", s.GrievancesByStatus)
	}
	if s.TourDiaryThisWeek != 1 {
		t.Fatalf("expected 1 tour diary record, got %d", s.TourDiaryThisWeek)
	}
	if s.CaseStudiesByDistrict["Chennai"] != 2 || s.CaseStudiesByDistrict["Madurai"] != 1 {
		t.Fatalf("unexpected case study counts %v", s.CaseStudiesByDistrict)
	}
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	table := Table{
		Sheet:   "Grievances",
		Headers: []string{"Registration", "Petitioner", "Received"},
		Rows: [][]any{
			{"GRV0001ABCD", "Murugan", time.Date(2024, 3, 1, 0, 0, 0, 0, ist)},
			{"GRV0002WXYZ", "Lakshmi", time.Time{}},
		},
	}
	if err := WriteXLSX(&buf, table); err != nil {
		t.Fatalf("write: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows("Grievances")
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(rows) != 3 || rows[0][1] != "Petitioner" || rows[1][2] != "2024-03-01" {
		t.Fatalf("unexpected rows %v", rows)
	}
	if len(rows[2]) > 2 && rows[2][2] != "" {
		t.Fatalf("zero date should be blank, got %q", rows[2][2])
	}
	if got := f.GetSheetList(); len(got) != 1 {
		t.Fatalf("expected a single sheet, got %v", got)
	}
}
