package records

import (
	"encoding/binary"
	"fmt"

	"github.com/drsam94/mmbccr/pkg/rom"
)

const VirusBN2Size = 8

// VirusBN2 is a virus stat block. Level is the 0-based tier inside the
// virus family.
type VirusBN2 struct {
	HP        uint16
	Unk       uint8
	DescBytes uint32
	Level     uint8
}

func decodeVirusBN2(data []byte, off int) (Record, error) {
	if err := rom.Check(data, off, VirusBN2Size); err != nil {
		return nil, err
	}

	b := data[off : off+VirusBN2Size]

	return &VirusBN2{
		HP:        binary.LittleEndian.Uint16(b[0:]),
		Unk:       b[2],
		DescBytes: binary.LittleEndian.Uint32(b[3:]),
		Level:     b[7],
	}, nil
}

func (v *VirusBN2) Size() int { return VirusBN2Size }

func (v *VirusBN2) Encode(data []byte, off int) error {
	if err := rom.Check(data, off, VirusBN2Size); err != nil {
		return err
	}

	b := data[off : off+VirusBN2Size]
	binary.LittleEndian.PutUint16(b[0:], v.HP)
	b[2] = v.Unk
	binary.LittleEndian.PutUint32(b[3:], v.DescBytes)
	b[7] = v.Level

	return nil
}

func (v *VirusBN2) String() string {
	return fmt.Sprintf("hp: %d, descBytes: %#x, lvl: %d, unk: %d", v.HP, v.DescBytes, v.Level, v.Unk)
}

// VirusBN2Fields lists the perturbable fields of [VirusBN2].
var VirusBN2Fields = []Field[VirusBN2]{
	u16Field("hp", func(v *VirusBN2) *uint16 { return &v.HP }),
}
