package records

import (
	"fmt"
	"slices"

	"github.com/drsam94/mmbccr/pkg/rom"
)

// Record is a decoded view of one slot.
type Record interface {
	// Size is the number of bytes the slot occupies at its home offset.
	Size() int

	// Encode writes the record back over the slot starting at off.
	Encode(data []byte, off int) error

	String() string
}

// DecodeFunc decodes the record whose slot starts at off.
type DecodeFunc func(data []byte, off int) (Record, error)

// Descriptor is one row of the layout table.
type Descriptor struct {
	Kind   Kind
	Game   rom.Game
	Offset int

	// Stride is the fixed slot size. Zero means the kind is variable length
	// and can only be walked with [Scan].
	Stride int
	Count  int

	decode DecodeFunc

	// locate overrides Offset+index*Stride for kinds addressed through a
	// side table.
	locate func(index int) (int, error)
}

// Fixed reports whether records can be addressed by index.
func (d Descriptor) Fixed() bool {
	return d.decode != nil && (d.Stride > 0 || d.locate != nil)
}

var table = []Descriptor{
	// Battle Chip Challenge. Pointer kinds have a stride of one pointer.
	{Kind: KindEncounter, Game: rom.GameBCC, Offset: 0x229900, Stride: EncounterBCCSize, Count: 419, decode: decodeEncounterBCC},
	{Kind: KindChip, Game: rom.GameBCC, Offset: 0x22741C, Stride: ChipBCCSize, Count: 248, decode: decodeChipBCC},
	{Kind: KindSprite, Game: rom.GameBCC, Offset: 0x32CB78, Stride: 256, Count: 174},
	{Kind: KindChipName, Game: rom.GameBCC, Offset: 0x22BB90, Stride: 4, Count: 248, decode: wideDecoder(1, 0, false)},
	{Kind: KindOpName, Game: rom.GameBCC, Offset: 0x22D69C, Stride: 4, Count: 143, decode: wideDecoder(1, 0, false)},
	{Kind: KindChipDesc, Game: rom.GameBCC, Offset: 0x22C35C, Stride: 4, Count: 248, decode: wideDecoder(3, 0, true)},
	{Kind: KindEffectDesc, Game: rom.GameBCC, Offset: 0x22BF78, Stride: 4, Count: 248, decode: wideDecoder(1, EffectFormat, false)},
	{Kind: KindStartingChips, Game: rom.GameBCC, Offset: 0x2273C1, Stride: StartingChipsSize, Count: 1, decode: decodeStartingChips},

	// Battle Network 2.
	{Kind: KindChipBN2, Game: rom.GameBN2, Offset: 0x00E470, Stride: ChipBN2Size, Count: 265, decode: decodeChipBN2},
	{Kind: KindChipNameBN2, Game: rom.GameBN2, Offset: 0x728779, Count: 316, decode: decodeNarrowString},
	{Kind: KindVirusNameBN2, Game: rom.GameBN2, Offset: 0x73328C, Count: 178, decode: decodeNarrowString},
	{Kind: KindItemNameBN2, Game: rom.GameBN2, Offset: 0x7339B4, Count: 113, decode: decodeNarrowString},
	{Kind: KindVirusBN2, Game: rom.GameBN2, Offset: 0x01515C, Stride: VirusBN2Size, Count: 178, decode: decodeVirusBN2},
	{Kind: KindEncounterEVTBN2, Game: rom.GameBN2, Offset: 0x01571C, Count: 243, decode: decodeEncounterBN2},
	{Kind: KindEncounterRegionBN2, Game: rom.GameBN2, Offset: 0x0168C0, Count: 849, decode: decodeEncounterBN2},
	{Kind: KindShopInventoryBN2, Game: rom.GameBN2, Offset: 0x030184, Stride: ShopInventorySize, Count: 25, decode: decodeShopInventory},
	{Kind: KindChipFolderBN2, Game: rom.GameBN2, Offset: 0x009974, Stride: ChipFolderSize, Count: 6, decode: decodeChipFolder},
	{Kind: KindDropTableBN2, Game: rom.GameBN2, Offset: 0x012624, Stride: DropTableSize, Count: 184, decode: decodeDropTable},
	{Kind: KindGMDBN2, Game: rom.GameBN2, Count: len(GMDLocations), decode: decodeGMDAt, locate: locateGMD},
}

var registry = func() map[Kind]Descriptor {
	m := make(map[Kind]Descriptor, len(table))
	for _, d := range table {
		m[d.Kind] = d
	}

	return m
}()

// Lookup returns the descriptor for kind.
func Lookup(kind Kind) (Descriptor, error) {
	d, ok := registry[kind]
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: %d", ErrUnknownKind, int(kind))
	}

	return d, nil
}

// Kinds lists the kinds defined for game in table order.
func Kinds(game rom.Game) []Kind {
	var out []Kind

	for _, d := range table {
		if d.Game == game {
			out = append(out, d.Kind)
		}
	}

	return out
}

// OffsetOf returns the slot offset of record index of kind.
func OffsetOf(kind Kind, index int) (int, error) {
	d, err := Lookup(kind)
	if err != nil {
		return 0, err
	}

	return d.offsetOf(index)
}

func (d Descriptor) offsetOf(index int) (int, error) {
	if d.decode == nil {
		return 0, fmt.Errorf("%w: %s has no layout", ErrUnsupported, d.Kind)
	}

	if !d.Fixed() {
		return 0, fmt.Errorf("%w: %s has no fixed stride", ErrUnsupported, d.Kind)
	}

	if index < 0 || index >= d.Count {
		return 0, fmt.Errorf("%w: %s[%d] (count %d)", ErrIndexOutOfRange, d.Kind, index, d.Count)
	}

	if d.locate != nil {
		return d.locate(index)
	}

	return d.Offset + index*d.Stride, nil
}

// Decode decodes record index of a fixed-stride kind.
func Decode(data []byte, kind Kind, index int) (Record, error) {
	d, err := Lookup(kind)
	if err != nil {
		return nil, err
	}

	off, err := d.offsetOf(index)
	if err != nil {
		return nil, err
	}

	rec, err := d.decode(data, off)
	if err != nil {
		return nil, fmt.Errorf("decode %s[%d]: %w", kind, index, err)
	}

	return rec, nil
}

// DecodeAs decodes record index and asserts its concrete type.
func DecodeAs[T Record](data []byte, kind Kind, index int) (T, error) {
	var zero T

	rec, err := Decode(data, kind, index)
	if err != nil {
		return zero, err
	}

	typed, ok := rec.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s decodes to %T", ErrUnsupported, kind, rec)
	}

	return typed, nil
}

// Encode writes rec over record index of a fixed-stride kind.
func Encode(data []byte, kind Kind, index int, rec Record) error {
	d, err := Lookup(kind)
	if err != nil {
		return err
	}

	off, err := d.offsetOf(index)
	if err != nil {
		return err
	}

	if d.Stride > 0 && rec.Size() != d.Stride {
		return fmt.Errorf("%w: %s record is %d bytes, slot is %d", ErrSlotOverflow, kind, rec.Size(), d.Stride)
	}

	if err := rec.Encode(data, off); err != nil {
		return fmt.Errorf("encode %s[%d]: %w", kind, index, err)
	}

	return nil
}

// ScanFunc receives each record with its index and slot offset. Returning
// an error stops the scan and is passed through.
type ScanFunc func(index, off int, rec Record) error

// Scan decodes every record of kind in order. Variable-length kinds advance
// by each record's Size, so the whole array is walked without re-scanning.
func Scan(data []byte, kind Kind, fn ScanFunc) error {
	d, err := Lookup(kind)
	if err != nil {
		return err
	}

	if d.decode == nil {
		return fmt.Errorf("%w: %s has no layout", ErrUnsupported, kind)
	}

	off := d.Offset

	for i := range d.Count {
		if d.Fixed() {
			off, err = d.offsetOf(i)
			if err != nil {
				return err
			}
		}

		rec, err := d.decode(data, off)
		if err != nil {
			return fmt.Errorf("decode %s[%d] at %#x: %w", kind, i, off, err)
		}

		if err := fn(i, off, rec); err != nil {
			return err
		}

		if !d.Fixed() {
			off += rec.Size()
		}
	}

	return nil
}

// Collect scans kind and returns every record of type T with its offset.
func Collect[T Record](data []byte, kind Kind) ([]T, []int, error) {
	var (
		recs []T
		offs []int
	)

	err := Scan(data, kind, func(_, off int, rec Record) error {
		typed, ok := rec.(T)
		if !ok {
			return fmt.Errorf("%w: %s decodes to %T", ErrUnsupported, kind, rec)
		}

		recs = append(recs, typed)
		offs = append(offs, off)

		return nil
	})

	return slices.Clip(recs), slices.Clip(offs), err
}
