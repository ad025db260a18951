package records

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/drsam94/mmbccr/pkg/rom"
)

const (
	DropTableSize = 60
	DropEntries   = 30
)

// DropKind is the top two bits of a drop entry.
type DropKind uint8

const (
	DropChip DropKind = iota
	DropZenny
	DropOther
	DropNone
)

// DropEntry is one packed u16 reward:
//
//	bits 14..15 kind
//	chip:  bits 0..8 chip id, bits 9..13 code
//	zenny: bits 0..13 amount
//	other: bits 0..13 kept verbatim
type DropEntry uint16

const (
	dropChipMask  = 0x1FF
	dropCodeShift = 9
	dropCodeMask  = 0x1F
	dropValueMask = 0x3FFF
	dropKindShift = 14
)

func (d DropEntry) Kind() DropKind { return DropKind(d >> dropKindShift) }
func (d DropEntry) Chip() uint16   { return uint16(d) & dropChipMask }
func (d DropEntry) Code() uint8    { return uint8(uint16(d)>>dropCodeShift) & dropCodeMask }
func (d DropEntry) Zenny() uint16  { return uint16(d) & dropValueMask }

// ChipDrop packs a chip reward. Chip and code are masked to their widths.
func ChipDrop(chip uint16, code uint8) DropEntry {
	return DropEntry(uint16(DropChip)<<dropKindShift |
		(uint16(code)&dropCodeMask)<<dropCodeShift |
		chip&dropChipMask)
}

// ZennyDrop packs a zenny reward, clamped to the 14-bit field.
func ZennyDrop(amount int) DropEntry {
	return DropEntry(uint16(DropZenny)<<dropKindShift | uint16(min(max(amount, 0), dropValueMask)))
}

func (d DropEntry) String() string {
	switch d.Kind() {
	case DropChip:
		return fmt.Sprintf("%d %s", d.Chip(), CodeString(d.Code()))
	case DropZenny:
		return fmt.Sprintf("%dz", d.Zenny())
	case DropNone:
		return "-"
	default:
		return fmt.Sprintf("<%#04x>", uint16(d))
	}
}

// DropTable is the reward table of one virus battle. The table offset is
// known; the entry packing is a placeholder that has not been checked
// against a real image.
type DropTable struct {
	Entries [DropEntries]DropEntry
}

func decodeDropTable(data []byte, off int) (Record, error) {
	if err := rom.Check(data, off, DropTableSize); err != nil {
		return nil, err
	}

	t := &DropTable{}
	for i := range t.Entries {
		t.Entries[i] = DropEntry(binary.LittleEndian.Uint16(data[off+2*i:]))
	}

	return t, nil
}

func (t *DropTable) Size() int { return DropTableSize }

func (t *DropTable) Encode(data []byte, off int) error {
	if err := rom.Check(data, off, DropTableSize); err != nil {
		return err
	}

	for i, e := range t.Entries {
		binary.LittleEndian.PutUint16(data[off+2*i:], uint16(e))
	}

	return nil
}

func (t *DropTable) String() string {
	parts := make([]string, len(t.Entries))
	for i, e := range t.Entries {
		parts[i] = e.String()
	}

	return strings.Join(parts, ", ")
}
