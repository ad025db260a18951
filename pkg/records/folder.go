package records

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/drsam94/mmbccr/pkg/rom"
)

const (
	ChipFolderSize = 120
	FolderSlots    = 30
)

// FolderSlot is one chip of a folder: a u16 chip id then a u16 code.
type FolderSlot struct {
	Chip uint16
	Code uint16
}

// ChipFolder is a preset 30-chip folder. The table offset is known; the
// slot layout is a placeholder that has not been checked against a real
// image.
type ChipFolder struct {
	Slots [FolderSlots]FolderSlot
}

func decodeChipFolder(data []byte, off int) (Record, error) {
	if err := rom.Check(data, off, ChipFolderSize); err != nil {
		return nil, err
	}

	f := &ChipFolder{}
	for i := range f.Slots {
		f.Slots[i] = FolderSlot{
			Chip: binary.LittleEndian.Uint16(data[off+4*i:]),
			Code: binary.LittleEndian.Uint16(data[off+4*i+2:]),
		}
	}

	return f, nil
}

func (f *ChipFolder) Size() int { return ChipFolderSize }

func (f *ChipFolder) Encode(data []byte, off int) error {
	if err := rom.Check(data, off, ChipFolderSize); err != nil {
		return err
	}

	for i, s := range f.Slots {
		binary.LittleEndian.PutUint16(data[off+4*i:], s.Chip)
		binary.LittleEndian.PutUint16(data[off+4*i+2:], s.Code)
	}

	return nil
}

func (f *ChipFolder) String() string {
	parts := make([]string, len(f.Slots))
	for i, s := range f.Slots {
		parts[i] = fmt.Sprintf("%d %s", s.Chip, CodeString(uint8(s.Code)))
	}

	return strings.Join(parts, ", ")
}
