package domain

// Field identifies a candidate field in a Changes descriptor.
type Field uint32

const (
	FieldTitle Field = 1 << iota
	FieldSlug
	FieldDescription
	FieldOverview
	FieldImage
	FieldVenue
	FieldLocation
	FieldDate
	FieldTime
	FieldMode
	FieldAudience
	FieldAgenda
	FieldOrganizer
	FieldTags
	FieldEventID
	FieldEmail
)

// AllEventFields marks every event field as supplied, as on creation.
const AllEventFields = Changes(FieldTitle | FieldSlug | FieldDescription | FieldOverview | FieldImage |
	FieldVenue | FieldLocation | FieldDate | FieldTime | FieldMode | FieldAudience |
	FieldAgenda | FieldOrganizer | FieldTags)

// Changes records which fields of a candidate were supplied or modified.
// It is computed by the caller and decides which normalization steps run.
type Changes uint32

// ChangesOf returns a descriptor with the given fields set.
func ChangesOf(fields ...Field) Changes {
	var c Changes
	for _, f := range fields {
		c = c.With(f)
	}
	return c
}

// With returns c with f set.
func (c Changes) With(f Field) Changes { return c | Changes(f) }

// Has reports whether f is set.
func (c Changes) Has(f Field) bool { return c&Changes(f) != 0 }

// IsEmpty reports whether nothing changed.
func (c Changes) IsEmpty() bool { return c == 0 }
