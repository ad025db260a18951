package records

// GMDLocation is one place in the world script that hands out rewards.
type GMDLocation struct {
	Name    string
	Offset  int
	Schemas []GMDSchema
}

// Size is the span of all occurrences at the location.
func (l GMDLocation) Size() int {
	n := 0
	for _, s := range l.Schemas {
		n += s.Size()
	}

	return n
}

// Shorthands for the table below.
var (
	gmdChip        = GMDSchema{Kind: GMDChip, LeadingPadding: 2}
	gmdChipFiller  = GMDSchema{Kind: GMDChip, LeadingPadding: 1, InnerFiller: true}
	gmdChipShared  = GMDSchema{Kind: GMDChip, LeadingPadding: 2, CodeOmitted: true}
	gmdChipRepeat  = GMDSchema{Kind: GMDChip, LeadingPadding: 3, IndexOmitted: true}
	gmdZenny       = GMDSchema{Kind: GMDZenny, LeadingPadding: 2, CodeOmitted: true}
	gmdZennyPadded = GMDSchema{Kind: GMDZenny, LeadingPadding: 4, CodeOmitted: true}
)

// GMDLocations is the hand-maintained list of reward locations. Names,
// offsets and schemas are unverified placeholders that exercise every
// schema shape; replace each entry with values read from a real image
// before enabling the GMD pass on one. Entries are literal and are never
// inferred from the data.
var GMDLocations = []GMDLocation{
	{Name: "ACDC Area", Offset: 0x6F2A10, Schemas: []GMDSchema{gmdChip, gmdChip, gmdZenny}},
	{Name: "Government Complex", Offset: 0x6F2B10, Schemas: []GMDSchema{gmdChipFiller, gmdChipRepeat, gmdZenny}},
	{Name: "Hospital", Offset: 0x6F2C10, Schemas: []GMDSchema{gmdChipShared, gmdChip, gmdZennyPadded}},
	{Name: "Netopia", Offset: 0x6F2D10, Schemas: []GMDSchema{gmdChip, gmdChipRepeat, gmdChipRepeat}},
	{Name: "Yumland", Offset: 0x6F2E10, Schemas: []GMDSchema{gmdZenny, gmdChipFiller, gmdZennyPadded}},
	{Name: "Undernet", Offset: 0x6F2F10, Schemas: []GMDSchema{gmdChip, gmdChipFiller, gmdChipShared, gmdZenny}},
	{Name: "Zoo", Offset: 0x6F3010, Schemas: []GMDSchema{gmdChipFiller, gmdZenny}},
	{Name: "Airport", Offset: 0x6F3110, Schemas: []GMDSchema{gmdChip, gmdChipRepeat, gmdZennyPadded, gmdChipShared}},
}

var gmdByOffset = func() map[int]GMDLocation {
	m := make(map[int]GMDLocation, len(GMDLocations))
	for _, loc := range GMDLocations {
		m[loc.Offset] = loc
	}

	return m
}()
