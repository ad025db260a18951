// Package classify holds the static identifier tables the randomizer uses
// to decide which substitutions are safe.
package classify

import (
	"fmt"

	"github.com/zyedidia/generic/mapset"
)

// Tiers lists virus families as (level 1, level 2, level 3) id triples.
var Tiers = [][3]int{
	{1, 2, 3}, {4, 5, 6}, {7, 8, 9}, {10, 11, 12}, {13, 14, 15},
	{16, 17, 18}, {19, 20, 21}, {22, 23, 24}, {25, 26, 27}, {28, 29, 30},
	{31, 32, 33}, {34, 35, 36}, {37, 38, 39}, {40, 41, 42}, {43, 44, 45},
	{46, 47, 48}, {49, 50, 51}, {52, 53, 54}, {55, 56, 57}, {58, 59, 60},
	{61, 62, 63}, {64, 65, 66}, {67, 68, 69}, {70, 71, 72}, {73, 74, 75},
	{76, 77, 78}, {79, 80, 81}, {82, 83, 84}, {85, 86, 87}, {88, 89, 90},
	{91, 92, 93}, {94, 95, 96}, {97, 98, 99}, {100, 101, 102}, {103, 104, 105},
	{106, 107, 108}, {109, 110, 111}, {112, 113, 114}, {115, 116, 117}, {118, 119, 120},
}

// LevelOf returns the 1-based tier of a virus id, or 0 when the id belongs
// to no known family.
func LevelOf(id int) int {
	for _, t := range Tiers {
		for lvl, v := range t {
			if v == id {
				return lvl + 1
			}
		}
	}

	return 0
}

// Category is a named id set.
type Category int

const (
	Navi Category = iota
	Protecto
	Dragon
	Aura
	// Hidden viruses only appear with special equipment.
	Hidden
)

var categoryNames = [...]string{"Navi", "Protecto", "Dragon", "Aura", "Hidden"}

func (c Category) String() string {
	if int(c) < len(categoryNames) {
		return categoryNames[c]
	}

	return fmt.Sprintf("Category(%d)", int(c))
}

var categories = map[Category]mapset.Set[int]{
	Navi:     setOf(idRange(133, 178)...),
	Protecto: setOf(97, 98, 99),
	Dragon:   setOf(112, 113, 114),
	Aura:     setOf(121, 122, 123, 124),
	Hidden:   setOf(127, 128, 129, 130, 131, 132),
}

// Contains reports whether id belongs to c.
func (c Category) Contains(id int) bool {
	set, ok := categories[c]

	return ok && set.Has(id)
}

// InAny reports whether id belongs to any of cats.
func InAny(id int, cats ...Category) bool {
	for _, c := range cats {
		if c.Contains(id) {
			return true
		}
	}

	return false
}

// Members returns the number of ids in c.
func (c Category) Members() int {
	set, ok := categories[c]
	if !ok {
		return 0
	}

	return set.Size()
}

// VirusIDs is the range of ids a virus substitution draws from.
const (
	MinVirusID = 1
	MaxVirusID = 177
)

func setOf(ids ...int) mapset.Set[int] {
	s := mapset.New[int]()
	for _, id := range ids {
		s.Put(id)
	}

	return s
}

func idRange(lo, hi int) []int {
	out := make([]int, 0, hi-lo)
	for i := lo; i < hi; i++ {
		out = append(out, i)
	}

	return out
}
