package resolve

import (
	"strings"
	"time"

	"auditportal/pkg/domain"
)

// IssueMatch is a para-particular together with the entry that recorded it.
type IssueMatch struct {
	Entry domain.SchemeEntry
	Para  domain.ParaParticular
}

// FindIssue scans every entry for a para with issueNumber and returns the
// first match. Issue numbers are unique only within one entry; both sides
// are compared without surrounding space.
func FindIssue(entries []domain.SchemeEntry, issueNumber string) (IssueMatch, bool) {
	issueNumber = strings.TrimSpace(issueNumber)
	if issueNumber == "" {
		return IssueMatch{}, false
	}
	for _, e := range entries {
		for _, p := range e.Paras {
			if strings.TrimSpace(p.IssueNumber) == issueNumber {
				return IssueMatch{Entry: e.Clone(), Para: p}, true
			}
		}
	}
	return IssueMatch{}, false
}

// IssueFields are the values a form copies from a resolved issue.
type IssueFields struct {
	IssueType   string
	Category    string
	SubCategory string
	BRPName     string
	Round       int
	SGSDate     time.Time
}

// FieldsFor projects a lookup result onto IssueFields. A miss yields the
// zero value so stale fields are cleared.
func FieldsFor(m IssueMatch, ok bool) IssueFields {
	if !ok {
		return IssueFields{}
	}
	return IssueFields{
		IssueType:   m.Para.IssueType,
		Category:    m.Para.Category,
		SubCategory: m.Para.SubCategory,
		BRPName:     m.Entry.BRPName,
		Round:       m.Entry.Round,
		SGSDate:     m.Entry.SGSDate,
	}
}
