package domain

import "time"

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	cp := *t
	return &cp
}

func cloneHistory(in []WorkHistoryEntry) []WorkHistoryEntry {
	if in == nil {
		return nil
	}
	out := make([]WorkHistoryEntry, len(in))
	for i, e := range in {
		e.From = cloneTime(e.From)
		e.To = cloneTime(e.To)
		out[i] = e
	}
	return out
}

// Clone returns a deep copy of u.
func (u User) Clone() User {
	u.JoinedOn = cloneTime(u.JoinedOn)
	u.WorkHistory = cloneHistory(u.WorkHistory)
	u.AdditionalCharges = cloneHistory(u.AdditionalCharges)
	return u
}

// Clone returns a deep copy of v.
func (v VRP) Clone() VRP {
	v.DateOfBirth = cloneTime(v.DateOfBirth)
	return v
}

// Clone returns a copy of a.
func (a Audit) Clone() Audit { return a }

// Clone returns a deep copy of e.
func (e SchemeEntry) Clone() SchemeEntry {
	if e.Paras != nil {
		e.Paras = append([]ParaParticular(nil), e.Paras...)
	}
	return e
}

// Clone returns a copy of c.
func (c CaseStudy) Clone() CaseStudy { return c }

// Clone returns a copy of g.
func (g Grievance) Clone() Grievance { return g }

// Clone returns a copy of r.
func (r TourDiaryRecord) Clone() TourDiaryRecord { return r }

// Clone returns a deep copy of g.
func (g GalleryItem) Clone() GalleryItem {
	g.EventDate = cloneTime(g.EventDate)
	return g
}

// Clone returns a deep copy of l.
func (l LibraryItem) Clone() LibraryItem {
	l.PublishedOn = cloneTime(l.PublishedOn)
	return l
}

// Clone returns a copy of c.
func (c Calendar) Clone() Calendar { return c }

// Clone returns a copy of h.
func (h Holiday) Clone() Holiday { return h }
