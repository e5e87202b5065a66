package domain

// Record is the constraint every stored entity satisfies. WithID and Clone
// return copies so stores never share slices or pointers with callers.
type Record[T any] interface {
	GetID() int64
	WithID(id int64) T
	Clone() T
}

// Compile-time assertions that every entity kind satisfies Record.
var (
	_ Record[User]            = User{}
	_ Record[VRP]             = VRP{}
	_ Record[Audit]           = Audit{}
	_ Record[SchemeEntry]     = SchemeEntry{}
	_ Record[CaseStudy]       = CaseStudy{}
	_ Record[Grievance]       = Grievance{}
	_ Record[TourDiaryRecord] = TourDiaryRecord{}
	_ Record[GalleryItem]     = GalleryItem{}
	_ Record[LibraryItem]     = LibraryItem{}
	_ Record[Calendar]        = Calendar{}
	_ Record[Holiday]         = Holiday{}
)

// SchemeCollection maps a scheme to the collection holding its entries.
func SchemeCollection(s Scheme) (CollectionKey, bool) {
	switch s {
	case SchemeMGNREGS:
		return CollectionMgnregsEntries, true
	case SchemePMAYG:
		return CollectionPmaygEntries, true
	default:
		return "", false
	}
}
