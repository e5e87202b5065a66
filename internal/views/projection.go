package views

import (
	"sort"
	"strings"

	"auditportal/pkg/domain"

	"golang.org/x/text/cases"
)

// Projection describes how to search, filter and order one record type.
type Projection[T any] struct {
	// Text returns the fields searched case-insensitively.
	Text func(T) []string
	// Facets maps a filter name to the field it compares by equality.
	Facets map[string]func(T) string
	// Less orders the result; nil keeps input order.
	Less func(a, b T) bool
}

// Apply returns the items matching every condition: search is a substring
// of at least one text field (ignoring case), and each non-empty filter
// equals its facet. A filter naming an unknown facet matches nothing.
func (p Projection[T]) Apply(items []T, search string, filters map[string]string) []T {
	fold := cases.Fold()
	needle := fold.String(strings.TrimSpace(search))
	out := make([]T, 0, len(items))
	for _, it := range items {
		if needle != "" && !p.matchText(fold, it, needle) {
			continue
		}
		if !p.matchFacets(it, filters) {
			continue
		}
		out = append(out, it)
	}
	if p.Less != nil {
		sort.SliceStable(out, func(i, j int) bool { return p.Less(out[i], out[j]) })
	}
	return out
}

func (p Projection[T]) matchText(fold cases.Caser, it T, needle string) bool {
	if p.Text == nil {
		return false
	}
	for _, f := range p.Text(it) {
		if strings.Contains(fold.String(f), needle) {
			return true
		}
	}
	return false
}

func (p Projection[T]) matchFacets(it T, filters map[string]string) bool {
	for name, want := range filters {
		if want == "" {
			continue
		}
		get, ok := p.Facets[name]
		if !ok || get(it) != want {
			return false
		}
	}
	return true
}

// Grievances searches petitioner, registration number and description,
// newest first.
var Grievances = Projection[domain.Grievance]{
	Text: func(g domain.Grievance) []string {
		return []string{g.Petitioner, g.RegistrationNumber, g.Description}
	},
	Facets: map[string]func(domain.Grievance) string{
		"district": func(g domain.Grievance) string { return g.Location.District },
		"block":    func(g domain.Grievance) string { return g.Location.Block },
		"status":   func(g domain.Grievance) string { return string(g.Status) },
		"scheme":   func(g domain.Grievance) string { return string(g.Scheme) },
		"category": func(g domain.Grievance) string { return g.Category },
	},
	Less: func(a, b domain.Grievance) bool { return a.ReceivedOn.After(b.ReceivedOn) },
}

// CaseStudies searches title, summary and case number, ordered by case
// number.
var CaseStudies = Projection[domain.CaseStudy]{
	Text: func(c domain.CaseStudy) []string { return []string{c.Title, c.Summary, c.CaseNumber} },
	Facets: map[string]func(domain.CaseStudy) string{
		"district": func(c domain.CaseStudy) string { return c.District },
		"block":    func(c domain.CaseStudy) string { return c.Block },
		"scheme":   func(c domain.CaseStudy) string { return string(c.Scheme) },
	},
	Less: func(a, b domain.CaseStudy) bool { return a.CreatedAt.Before(b.CreatedAt) },
}

// Users searches name, employee code and designation, ordered by name.
var Users = Projection[domain.User]{
	Text: func(u domain.User) []string { return []string{u.Name, u.EmployeeCode, u.Designation} },
	Facets: map[string]func(domain.User) string{
		"district": func(u domain.User) string { return u.District },
		"block":    func(u domain.User) string { return u.Block },
		"role":     func(u domain.User) string { return string(u.Role) },
	},
	Less: func(a, b domain.User) bool { return a.Name < b.Name },
}

// VRPs searches name, VRP code and panchayat.
var VRPs = Projection[domain.VRP]{
	Text: func(v domain.VRP) []string { return []string{v.Name, v.VRPCode, v.Location.Panchayat} },
	Facets: map[string]func(domain.VRP) string{
		"district": func(v domain.VRP) string { return v.Location.District },
		"block":    func(v domain.VRP) string { return v.Location.Block },
		"kind":     func(v domain.VRP) string { return string(v.Kind) },
	},
	Less: func(a, b domain.VRP) bool { return a.Name < b.Name },
}

// Library searches title and category.
var Library = Projection[domain.LibraryItem]{
	Text: func(l domain.LibraryItem) []string { return []string{l.Title, l.Category} },
	Facets: map[string]func(domain.LibraryItem) string{
		"category": func(l domain.LibraryItem) string { return l.Category },
		"language": func(l domain.LibraryItem) string { return l.Language },
	},
	Less: func(a, b domain.LibraryItem) bool { return a.Title < b.Title },
}
