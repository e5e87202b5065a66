package resolve

import "auditportal/pkg/domain"

// Posting is where a staff member currently works.
type Posting struct {
	District    string
	Block       string
	Designation string
	// FromHistory is false when no entry was marked present and the
	// record's base fields were used.
	FromHistory bool
}

// PresentStation returns the first entry marked present, scanning the lists
// in order. Several present entries are tolerated; the first one wins.
func PresentStation(lists ...[]domain.WorkHistoryEntry) (domain.WorkHistoryEntry, bool) {
	for _, list := range lists {
		for _, e := range list {
			if e.Station == domain.StationPresent {
				return e, true
			}
		}
	}
	return domain.WorkHistoryEntry{}, false
}

// CurrentPosting resolves u's posting from the present entry of its work
// history, then additional charges, falling back to its base district and
// block.
func CurrentPosting(u domain.User) Posting {
	if e, ok := PresentStation(u.WorkHistory, u.AdditionalCharges); ok {
		designation := e.Designation
		if designation == "" {
			designation = u.Designation
		}
		return Posting{District: e.District, Block: e.Block, Designation: designation, FromHistory: true}
	}
	return Posting{District: u.District, Block: u.Block, Designation: u.Designation}
}
