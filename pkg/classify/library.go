package classify

// Battle Chip Challenge chip table ranges (0-based chip table indices).
// Indices 190..193 are data chips and 194..198 are the pseudo chips
// Zenny, Empty, No Chip, Chip OK and Deleted; none of them are touched.
const (
	StandardChipsStart = 0
	StandardChipsEnd   = 190
	NaviChipsStart     = 199
	NaviChipsEnd       = 247
)

// StandardChips returns the standard library chip indices.
func StandardChips() []int { return idRange(StandardChipsStart, StandardChipsEnd) }

// NaviChips returns the navi chip indices.
func NaviChips() []int { return idRange(NaviChipsStart, NaviChipsEnd) }

// chips exactly one step above the library entry before them
var oneStronger = setOf(
	2, 3, 5, 6, 7, 9, 10, 11, 13, 14, 15, 17, 18, 19, 21, 22, 24,
	34, 35, 44, 45, 56, 57, 67, 68, 70, 71, 73, 74, 76, 77, 79, 80,
	105, 106, 136, 137, 138, 139,
)

var weakerDirect = map[int]int{
	25: 23, // LongSwrd > Sword
	29: 26, // Blades > Swords
	30: 27,
	31: 28,
	54: 52, // Trident > TripNdl
}

// WeakerChip returns the library index (1-based) of the next weaker chip
// in a progression chain, or 0 if none is known. Chains whose stats do not
// strictly increase (HP falling as power rises, for example) are not listed.
func WeakerChip(libIndex int) int {
	if oneStronger.Has(libIndex) {
		return libIndex - 1
	}

	return weakerDirect[libIndex]
}

// Battle Network 2 chip ids that may be placed in shops, folders, drops and
// rewards. Ids past BN2StandardMax are program advances and enemy-only chips.
const (
	BN2StandardMin = 1
	BN2StandardMax = 250
)
