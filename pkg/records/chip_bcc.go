package records

import (
	"encoding/binary"
	"fmt"
	"slices"
	"strings"

	"github.com/drsam94/mmbccr/pkg/rom"
)

// ChipBCCSize is the slot size of a Battle Chip Challenge chip.
const ChipBCCSize = 16

// Element is the elemental affinity packed into chip flags.
type Element uint8

const (
	ElementNormal Element = iota
	ElementFire
	ElementAqua
	ElementWood
	ElementElec
)

func (e Element) String() string {
	switch e {
	case ElementNormal:
		return "Normal"
	case ElementFire:
		return "Fire"
	case ElementAqua:
		return "Aqua"
	case ElementWood:
		return "Wood"
	case ElementElec:
		return "Elec"
	default:
		return fmt.Sprintf("Element(%d)", uint8(e))
	}
}

// ChipBCC is one chip stat block: five u16 fields then six bytes.
type ChipBCC struct {
	HP           uint16
	Pri          uint16
	AP           uint16
	MB           uint16
	Flags        uint16
	Rarity       uint8
	Category     uint8
	HitChance    uint8
	DodgeChance  uint8
	ArtIndex     uint8
	PaletteIndex uint8
}

func decodeChipBCC(data []byte, off int) (Record, error) {
	if err := rom.Check(data, off, ChipBCCSize); err != nil {
		return nil, err
	}

	b := data[off : off+ChipBCCSize]

	return &ChipBCC{
		HP:           binary.LittleEndian.Uint16(b[0:]),
		Pri:          binary.LittleEndian.Uint16(b[2:]),
		AP:           binary.LittleEndian.Uint16(b[4:]),
		MB:           binary.LittleEndian.Uint16(b[6:]),
		Flags:        binary.LittleEndian.Uint16(b[8:]),
		Rarity:       b[10],
		Category:     b[11],
		HitChance:    b[12],
		DodgeChance:  b[13],
		ArtIndex:     b[14],
		PaletteIndex: b[15],
	}, nil
}

func (c *ChipBCC) Size() int { return ChipBCCSize }

func (c *ChipBCC) Encode(data []byte, off int) error {
	if err := rom.Check(data, off, ChipBCCSize); err != nil {
		return err
	}

	b := data[off : off+ChipBCCSize]
	binary.LittleEndian.PutUint16(b[0:], c.HP)
	binary.LittleEndian.PutUint16(b[2:], c.Pri)
	binary.LittleEndian.PutUint16(b[4:], c.AP)
	binary.LittleEndian.PutUint16(b[6:], c.MB)
	binary.LittleEndian.PutUint16(b[8:], c.Flags)
	b[10] = c.Rarity
	b[11] = c.Category
	b[12] = c.HitChance
	b[13] = c.DodgeChance
	b[14] = c.ArtIndex
	b[15] = c.PaletteIndex

	return nil
}

// Element decodes bits 12..14 of Flags.
func (c *ChipBCC) Element() Element {
	return Element((c.Flags / 0x1000) & 0x7)
}

// IsChipPlus reports a chip that boosts the next chip's attack.
func (c *ChipBCC) IsChipPlus() bool {
	return c.Flags == 0xD1 || c.Flags&0xFF == 0xD0
}

// IsNaviPlus reports a chip that boosts the navi's attack.
func (c *ChipBCC) IsNaviPlus() bool {
	return c.Flags == 0xD2
}

func (c *ChipBCC) String() string {
	return fmt.Sprintf("hp: %d pri: %d ap: %d mb: %d rarity: %d cat: %d hit: %d dodge: %d art: %d palette: %d elem: %s flags: %#x",
		c.HP, c.Pri, c.AP, c.MB, c.Rarity, c.Category, c.HitChance, c.DodgeChance,
		c.ArtIndex, c.PaletteIndex, c.Element(), c.Flags)
}

// Field is a named numeric chip field that can be perturbed.
type Field[T any] struct {
	Name string
	Max  int
	Get  func(*T) int
	Set  func(*T, int)
}

// ChipBCCFields lists the perturbable fields of [ChipBCC].
var ChipBCCFields = []Field[ChipBCC]{
	u16Field("hp", func(c *ChipBCC) *uint16 { return &c.HP }),
	u16Field("pri", func(c *ChipBCC) *uint16 { return &c.Pri }),
	u16Field("ap", func(c *ChipBCC) *uint16 { return &c.AP }),
	u16Field("mb", func(c *ChipBCC) *uint16 { return &c.MB }),
	u8Field("rarity", func(c *ChipBCC) *uint8 { return &c.Rarity }),
	u8Field("hitChance", func(c *ChipBCC) *uint8 { return &c.HitChance }),
	u8Field("dodgeChance", func(c *ChipBCC) *uint8 { return &c.DodgeChance }),
}

// LookupField finds a field by case-insensitive name.
func LookupField[T any](fields []Field[T], name string) (Field[T], bool) {
	i := slices.IndexFunc(fields, func(f Field[T]) bool { return strings.EqualFold(f.Name, name) })
	if i < 0 {
		return Field[T]{}, false
	}

	return fields[i], true
}

// FieldNames returns the names of fields in declaration order.
func FieldNames[T any](fields []Field[T]) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.Name
	}

	return out
}

func u16Field[T any](name string, ptr func(*T) *uint16) Field[T] {
	return Field[T]{
		Name: name,
		Max:  0xFFFF,
		Get:  func(v *T) int { return int(*ptr(v)) },
		Set:  func(v *T, x int) { *ptr(v) = uint16(min(max(x, 0), 0xFFFF)) },
	}
}

func u8Field[T any](name string, ptr func(*T) *uint8) Field[T] {
	return Field[T]{
		Name: name,
		Max:  0xFF,
		Get:  func(v *T) int { return int(*ptr(v)) },
		Set:  func(v *T, x int) { *ptr(v) = uint8(min(max(x, 0), 0xFF)) },
	}
}
