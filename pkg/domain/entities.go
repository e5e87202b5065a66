// Package domain defines the persisted record types, collection keys and
// value types shared by every audit-portal entity store.
package domain

import "time"

// CollectionKey names the persisted collection backing one entity kind. It is
// also the key carried by change notifications.
type CollectionKey string

// Persisted collection keys, one per entity kind.
const (
	CollectionUsers          CollectionKey = "app-users"
	CollectionVRPs           CollectionKey = "app-vrps"
	CollectionAudits         CollectionKey = "app-audits"
	CollectionCaseStudies    CollectionKey = "app-case-studies"
	CollectionMgnregsEntries CollectionKey = "app-mgnregs-entries"
	CollectionPmaygEntries   CollectionKey = "app-pmayg-entries"
	CollectionGrievances     CollectionKey = "app-grievances"
	CollectionTourDiary      CollectionKey = "app-tour-diary"
	CollectionGallery        CollectionKey = "app-gallery"
	CollectionLibrary        CollectionKey = "app-library"
	CollectionCalendars      CollectionKey = "app-calendars"
	CollectionHolidays       CollectionKey = "app-holidays"
	// CollectionSequences holds scoped-sequence high-water marks rather than records.
	CollectionSequences CollectionKey = "app-sequences"
)

// Collections lists every record collection in a stable order.
var Collections = []CollectionKey{
	CollectionUsers,
	CollectionVRPs,
	CollectionAudits,
	CollectionCaseStudies,
	CollectionMgnregsEntries,
	CollectionPmaygEntries,
	CollectionGrievances,
	CollectionTourDiary,
	CollectionGallery,
	CollectionLibrary,
	CollectionCalendars,
	CollectionHolidays,
}

// Role identifies the capability level of the acting user.
type Role string

// Portal roles.
const (
	RoleAdmin    Role = "admin"
	RoleState    Role = "state"
	RoleDistrict Role = "district"
	RoleBlock    Role = "block"
	RoleVRP      Role = "vrp"
)

// Scheme names an audited government scheme.
type Scheme string

// Schemes with their own audit-entry collections.
const (
	SchemeMGNREGS Scheme = "MGNREGS"
	SchemePMAYG   Scheme = "PMAY-G"
)

// Base carries the numeric identifier every persisted record has.
type Base struct {
	ID int64 `json:"id"`
}

// GetID returns the record identifier.
func (b Base) GetID() int64 { return b.ID }

// LocationRef is a district/block/panchayat selection plus the LGD code
// derived from the panchayat.
type LocationRef struct {
	District  string `json:"district"`
	Block     string `json:"block"`
	Panchayat string `json:"panchayat"`
	LGDCode   string `json:"lgdCode,omitempty"`
}

// IsZero reports whether no part of the location was selected.
func (l LocationRef) IsZero() bool {
	return l.District == "" && l.Block == "" && l.Panchayat == ""
}

// Station tags a work-history entry as a past or the current posting.
type Station string

// Work-history station tags.
const (
	StationWorked  Station = "worked"
	StationPresent Station = "present"
)

// WorkHistoryEntry is one posting in a staff member's service record.
type WorkHistoryEntry struct {
	Station     Station    `json:"station"`
	District    string     `json:"district"`
	Block       string     `json:"block,omitempty"`
	Designation string     `json:"designation,omitempty"`
	From        *time.Time `json:"from,omitempty"`
	To          *time.Time `json:"to,omitempty"`
}

// User is a registered staff member.
type User struct {
	Base
	EmployeeCode      string             `json:"employeeCode"`
	Name              string             `json:"name"`
	Designation       string             `json:"designation,omitempty"`
	Role              Role               `json:"role"`
	District          string             `json:"district"`
	Block             string             `json:"block,omitempty"`
	Phone             string             `json:"phone,omitempty"`
	Email             string             `json:"email,omitempty"`
	Qualification     string             `json:"qualification,omitempty"`
	JoinedOn          *time.Time         `json:"joinedOn,omitempty"`
	WorkHistory       []WorkHistoryEntry `json:"workHistory,omitempty"`
	AdditionalCharges []WorkHistoryEntry `json:"additionalCharges,omitempty"`
}

// WithID returns a copy of u carrying id.
func (u User) WithID(id int64) User { u.ID = id; return u }

// VRPKind tags the two village resource person registration variants.
type VRPKind string

// VRP registration variants.
const (
	VRPWithCode    VRPKind = "with-code"
	VRPWithoutCode VRPKind = "without-code"
)

// VRP is a village resource person registration.
type VRP struct {
	Base
	Kind          VRPKind     `json:"kind"`
	VRPCode       string      `json:"vrpCode,omitempty"`
	Name          string      `json:"name"`
	Gender        string      `json:"gender,omitempty"`
	DateOfBirth   *time.Time  `json:"dateOfBirth,omitempty"`
	Phone         string      `json:"phone,omitempty"`
	Location      LocationRef `json:"location"`
	Qualification string      `json:"qualification,omitempty"`
	BankAccount   string      `json:"bankAccount,omitempty"`
	IFSC          string      `json:"ifsc,omitempty"`
}

// WithID returns a copy of v carrying id.
func (v VRP) WithID(id int64) VRP { v.ID = id; return v }

// Audit is a scheduled social audit of one panchayat.
type Audit struct {
	Base
	Scheme        Scheme      `json:"scheme"`
	Round         int         `json:"round"`
	FinancialYear string      `json:"financialYear"`
	Location      LocationRef `json:"location"`
	AuditorCode   string      `json:"auditorCode,omitempty"`
	StartDate     time.Time   `json:"startDate"`
	SGSDate       time.Time   `json:"sgsDate"`
}

// WithID returns a copy of a carrying id.
func (a Audit) WithID(id int64) Audit { a.ID = id; return a }

// ParaStatus tracks the resolution of an audit finding.
type ParaStatus string

// Para-particular statuses.
const (
	ParaPending ParaStatus = "pending"
	ParaSettled ParaStatus = "settled"
	ParaDropped ParaStatus = "dropped"
)

// ParaParticular is one finding recorded within a scheme entry. IssueNumber
// is unique only within its parent entry.
type ParaParticular struct {
	IssueNumber     string     `json:"issueNumber"`
	IssueType       string     `json:"issueType"`
	Category        string     `json:"category"`
	SubCategory     string     `json:"subCategory,omitempty"`
	Description     string     `json:"description,omitempty"`
	AmountInvolved  float64    `json:"amountInvolved,omitempty"`
	AmountRecovered float64    `json:"amountRecovered,omitempty"`
	Status          ParaStatus `json:"status,omitempty"`
}

// SchemeEntry records the audit findings of one panchayat for a scheme round.
type SchemeEntry struct {
	Base
	Scheme        Scheme           `json:"scheme"`
	Location      LocationRef      `json:"location"`
	Round         int              `json:"round"`
	FinancialYear string           `json:"financialYear"`
	BRPName       string           `json:"brpName"`
	SGSDate       time.Time        `json:"sgsDate"`
	Paras         []ParaParticular `json:"paras,omitempty"`
}

// WithID returns a copy of e carrying id.
func (e SchemeEntry) WithID(id int64) SchemeEntry { e.ID = id; return e }

// CaseStudy is a documented field case, numbered per district.
type CaseStudy struct {
	Base
	CaseNumber string    `json:"caseNumber"`
	District   string    `json:"district"`
	Block      string    `json:"block,omitempty"`
	Panchayat  string    `json:"panchayat,omitempty"`
	Scheme     Scheme    `json:"scheme,omitempty"`
	Title      string    `json:"title"`
	Summary    string    `json:"summary,omitempty"`
	ReportedBy string    `json:"reportedBy,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// WithID returns a copy of c carrying id.
func (c CaseStudy) WithID(id int64) CaseStudy { c.ID = id; return c }

// GrievanceStatus tracks a grievance through redressal.
type GrievanceStatus string

// Grievance statuses.
const (
	GrievanceOpen       GrievanceStatus = "open"
	GrievanceInProgress GrievanceStatus = "in-progress"
	GrievanceClosed     GrievanceStatus = "closed"
)

// Grievance is a petition received from the public.
type Grievance struct {
	Base
	RegistrationNumber string          `json:"registrationNumber"`
	Petitioner         string          `json:"petitioner"`
	Phone              string          `json:"phone,omitempty"`
	Location           LocationRef     `json:"location"`
	Scheme             Scheme          `json:"scheme,omitempty"`
	Category           string          `json:"category,omitempty"`
	Description        string          `json:"description,omitempty"`
	Status             GrievanceStatus `json:"status"`
	ReceivedOn         time.Time       `json:"receivedOn"`
}

// WithID returns a copy of g carrying id.
func (g Grievance) WithID(id int64) Grievance { g.ID = id; return g }

// TourDiaryRecord is one day of travel logged by a staff member.
type TourDiaryRecord struct {
	Base
	EmployeeCode string    `json:"employeeCode"`
	Date         time.Time `json:"date"`
	FromPlace    string    `json:"fromPlace"`
	ToPlace      string    `json:"toPlace"`
	Purpose      string    `json:"purpose,omitempty"`
	DistanceKM   float64   `json:"distanceKm,omitempty"`
	Mode         string    `json:"mode,omitempty"`
}

// WithID returns a copy of r carrying id.
func (r TourDiaryRecord) WithID(id int64) TourDiaryRecord { r.ID = id; return r }

// Attachment references uploaded bytes held in the attachment store.
type Attachment struct {
	Key         string `json:"key"`
	ContentType string `json:"contentType,omitempty"`
	Size        int64  `json:"size"`
}

// GalleryItem is a photo published to the portal gallery.
type GalleryItem struct {
	Base
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	District    string     `json:"district,omitempty"`
	EventDate   *time.Time `json:"eventDate,omitempty"`
	Attachment  Attachment `json:"attachment"`
}

// WithID returns a copy of g carrying id.
func (g GalleryItem) WithID(id int64) GalleryItem { g.ID = id; return g }

// LibraryItem is a document published to the portal library.
type LibraryItem struct {
	Base
	Title       string     `json:"title"`
	Category    string     `json:"category,omitempty"`
	Language    string     `json:"language,omitempty"`
	PublishedOn *time.Time `json:"publishedOn,omitempty"`
	Attachment  Attachment `json:"attachment"`
}

// WithID returns a copy of l carrying id.
func (l LibraryItem) WithID(id int64) LibraryItem { l.ID = id; return l }

// Calendar schedules an audit round for a district or block.
type Calendar struct {
	Base
	FinancialYear string    `json:"financialYear"`
	Scheme        Scheme    `json:"scheme"`
	Round         int       `json:"round"`
	District      string    `json:"district"`
	Block         string    `json:"block,omitempty"`
	StartDate     time.Time `json:"startDate"`
	EndDate       time.Time `json:"endDate"`
}

// WithID returns a copy of c carrying id.
func (c Calendar) WithID(id int64) Calendar { c.ID = id; return c }

// HolidayKind distinguishes gazetted from restricted holidays.
type HolidayKind string

// Holiday kinds.
const (
	HolidayGazetted   HolidayKind = "gazetted"
	HolidayRestricted HolidayKind = "restricted"
)

// Holiday is an office holiday.
type Holiday struct {
	Base
	Date time.Time   `json:"date"`
	Name string      `json:"name"`
	Kind HolidayKind `json:"kind"`
}

// WithID returns a copy of h carrying id.
func (h Holiday) WithID(id int64) Holiday { h.ID = id; return h }
