package records

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/drsam94/mmbccr/pkg/rom"
)

const (
	ChipBN2Size = 32

	// NoCode marks an unused code slot.
	NoCode = 0xFF

	// CodeAsterisk is the wildcard code.
	CodeAsterisk = 26
)

// CodeString renders a chip code: 0..25 are A..Z, 26 is "*".
func CodeString(code uint8) string {
	switch {
	case code < CodeAsterisk:
		return string(rune('A' + code))
	case code == CodeAsterisk:
		return "*"
	case code == NoCode:
		return "-"
	default:
		return fmt.Sprintf("<%#x>", code)
	}
}

// ChipBN2 is one Battle Network 2 chip definition.
type ChipBN2 struct {
	Codes        [4]uint8
	Effect       uint32
	Unk1         [2]uint8
	MB           uint8
	Flags        uint8
	AP           uint16
	Index        uint16
	Unk2         [4]uint8
	ThumbnailPtr uint32
	ImagePtr     uint32
	PalettePtr   uint32
}

func decodeChipBN2(data []byte, off int) (Record, error) {
	if err := rom.Check(data, off, ChipBN2Size); err != nil {
		return nil, err
	}

	b := data[off : off+ChipBN2Size]
	c := &ChipBN2{
		Effect:       binary.LittleEndian.Uint32(b[4:]),
		MB:           b[10],
		Flags:        b[11],
		AP:           binary.LittleEndian.Uint16(b[12:]),
		Index:        binary.LittleEndian.Uint16(b[14:]),
		ThumbnailPtr: binary.LittleEndian.Uint32(b[20:]),
		ImagePtr:     binary.LittleEndian.Uint32(b[24:]),
		PalettePtr:   binary.LittleEndian.Uint32(b[28:]),
	}
	copy(c.Codes[:], b[0:4])
	copy(c.Unk1[:], b[8:10])
	copy(c.Unk2[:], b[16:20])

	return c, nil
}

func (c *ChipBN2) Size() int { return ChipBN2Size }

func (c *ChipBN2) Encode(data []byte, off int) error {
	if err := rom.Check(data, off, ChipBN2Size); err != nil {
		return err
	}

	b := data[off : off+ChipBN2Size]
	copy(b[0:4], c.Codes[:])
	binary.LittleEndian.PutUint32(b[4:], c.Effect)
	copy(b[8:10], c.Unk1[:])
	b[10] = c.MB
	b[11] = c.Flags
	binary.LittleEndian.PutUint16(b[12:], c.AP)
	binary.LittleEndian.PutUint16(b[14:], c.Index)
	copy(b[16:20], c.Unk2[:])
	binary.LittleEndian.PutUint32(b[20:], c.ThumbnailPtr)
	binary.LittleEndian.PutUint32(b[24:], c.ImagePtr)
	binary.LittleEndian.PutUint32(b[28:], c.PalettePtr)

	return nil
}

// ValidCodes returns the codes the chip can be obtained with.
func (c *ChipBN2) ValidCodes() []uint8 {
	var out []uint8

	for _, code := range c.Codes {
		if code != NoCode {
			out = append(out, code)
		}
	}

	return out
}

func (c *ChipBN2) String() string {
	codes := make([]string, 0, len(c.Codes))
	for _, code := range c.ValidCodes() {
		codes = append(codes, CodeString(code))
	}

	return fmt.Sprintf("codes: [%s] unk1: %v mb: %d flags: %d ap: %d idx: %d effect: %#x img: %#x col: %#x thumb: %#x",
		strings.Join(codes, ","), c.Unk1, c.MB, c.Flags, c.AP, c.Index, c.Effect,
		c.ImagePtr, c.PalettePtr, c.ThumbnailPtr)
}

// ChipBN2Fields lists the perturbable fields of [ChipBN2].
var ChipBN2Fields = []Field[ChipBN2]{
	u16Field("ap", func(c *ChipBN2) *uint16 { return &c.AP }),
	u8Field("mb", func(c *ChipBN2) *uint8 { return &c.MB }),
}
