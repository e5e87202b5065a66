package domain

import (
	"fmt"
	"strings"
)

// ValidationError reports a record rejected at the facade boundary.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return ValidationError{Field: field, Reason: "required"}
	}
	return nil
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleState, RoleDistrict, RoleBlock, RoleVRP:
		return true
	}
	return false
}

// Valid reports whether s is a scheme with its own entry collection.
func (s Scheme) Valid() bool {
	_, ok := SchemeCollection(s)
	return ok
}

func validateLocation(field string, l LocationRef) error {
	return firstErr(
		required(field+".district", l.District),
		required(field+".block", l.Block),
		required(field+".panchayat", l.Panchayat),
	)
}

func validateHistory(field string, entries []WorkHistoryEntry) error {
	for i, e := range entries {
		if e.Station != StationWorked && e.Station != StationPresent {
			return ValidationError{Field: fmt.Sprintf("%s[%d].station", field, i), Reason: fmt.Sprintf("unknown station %q", e.Station)}
		}
		if err := required(fmt.Sprintf("%s[%d].district", field, i), e.District); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks the fields a staff registration must carry. The
// employee code is not checked because facades generate it when blank.
func (u User) Validate() error {
	if err := required("name", u.Name); err != nil {
		return err
	}
	if !u.Role.Valid() {
		return ValidationError{Field: "role", Reason: fmt.Sprintf("unknown role %q", u.Role)}
	}
	return firstErr(
		required("district", u.District),
		validateHistory("workHistory", u.WorkHistory),
		validateHistory("additionalCharges", u.AdditionalCharges),
	)
}

// Validate enforces the VRP variant tag: with-code registrations carry a
// code, without-code registrations must not.
func (v VRP) Validate() error {
	switch v.Kind {
	case VRPWithCode:
		if err := required("vrpCode", v.VRPCode); err != nil {
			return err
		}
	case VRPWithoutCode:
		if strings.TrimSpace(v.VRPCode) != "" {
			return ValidationError{Field: "vrpCode", Reason: "must be empty for without-code registrations"}
		}
	default:
		return ValidationError{Field: "kind", Reason: fmt.Sprintf("unknown VRP kind %q", v.Kind)}
	}
	return firstErr(required("name", v.Name), validateLocation("location", v.Location))
}

// Validate checks an audit schedule.
func (a Audit) Validate() error {
	if !a.Scheme.Valid() {
		return ValidationError{Field: "scheme", Reason: fmt.Sprintf("unknown scheme %q", a.Scheme)}
	}
	if a.Round <= 0 {
		return ValidationError{Field: "round", Reason: "must be positive"}
	}
	if a.SGSDate.IsZero() {
		return ValidationError{Field: "sgsDate", Reason: "required"}
	}
	if !a.StartDate.IsZero() && a.SGSDate.Before(a.StartDate) {
		return ValidationError{Field: "sgsDate", Reason: "before start date"}
	}
	return firstErr(required("financialYear", a.FinancialYear), validateLocation("location", a.Location))
}

// Validate checks a scheme entry and its para-particulars. Issue numbers
// must be unique within the entry.
func (e SchemeEntry) Validate() error {
	if !e.Scheme.Valid() {
		return ValidationError{Field: "scheme", Reason: fmt.Sprintf("unknown scheme %q", e.Scheme)}
	}
	if err := firstErr(required("brpName", e.BRPName), validateLocation("location", e.Location)); err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(e.Paras))
	for i, p := range e.Paras {
		field := fmt.Sprintf("paras[%d].issueNumber", i)
		if err := required(field, p.IssueNumber); err != nil {
			return err
		}
		if _, dup := seen[p.IssueNumber]; dup {
			return ValidationError{Field: field, Reason: fmt.Sprintf("duplicate issue number %q", p.IssueNumber)}
		}
		seen[p.IssueNumber] = struct{}{}
	}
	return nil
}

// Validate checks a case study. The case number is assigned by the facade.
func (c CaseStudy) Validate() error {
	return firstErr(required("district", c.District), required("title", c.Title))
}

// Validate checks a grievance. The registration number is assigned by the facade.
func (g Grievance) Validate() error {
	if err := required("petitioner", g.Petitioner); err != nil {
		return err
	}
	switch g.Status {
	case "", GrievanceOpen, GrievanceInProgress, GrievanceClosed:
	default:
		return ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status %q", g.Status)}
	}
	return nil
}

// Validate checks a tour-diary record.
func (r TourDiaryRecord) Validate() error {
	if r.Date.IsZero() {
		return ValidationError{Field: "date", Reason: "required"}
	}
	if r.DistanceKM < 0 {
		return ValidationError{Field: "distanceKm", Reason: "must not be negative"}
	}
	return firstErr(required("employeeCode", r.EmployeeCode), required("fromPlace", r.FromPlace), required("toPlace", r.ToPlace))
}

// Validate checks a gallery item. The attachment is filled by the facade.
func (g GalleryItem) Validate() error { return required("title", g.Title) }

// Validate checks a library item. The attachment is filled by the facade.
func (l LibraryItem) Validate() error { return required("title", l.Title) }

// Validate checks an audit calendar entry.
func (c Calendar) Validate() error {
	if !c.Scheme.Valid() {
		return ValidationError{Field: "scheme", Reason: fmt.Sprintf("unknown scheme %q", c.Scheme)}
	}
	if c.StartDate.IsZero() || c.EndDate.IsZero() {
		return ValidationError{Field: "startDate", Reason: "start and end dates required"}
	}
	if c.EndDate.Before(c.StartDate) {
		return ValidationError{Field: "endDate", Reason: "before start date"}
	}
	return firstErr(required("financialYear", c.FinancialYear), required("district", c.District))
}

// Validate checks a holiday.
func (h Holiday) Validate() error {
	if h.Date.IsZero() {
		return ValidationError{Field: "date", Reason: "required"}
	}
	if h.Kind != HolidayGazetted && h.Kind != HolidayRestricted {
		return ValidationError{Field: "kind", Reason: fmt.Sprintf("unknown holiday kind %q", h.Kind)}
	}
	return required("name", h.Name)
}
