// Package romtest builds synthetic ROM images for tests. The images carry
// a valid header and populate every table the layout describes, but hold
// generated rather than real game data.
package romtest

import (
	"encoding/binary"
	"fmt"
	"testing"

	"pgregory.net/rand"

	"github.com/drsam94/mmbccr/pkg/classify"
	"github.com/drsam94/mmbccr/pkg/records"
	"github.com/drsam94/mmbccr/pkg/rom"
	"github.com/drsam94/mmbccr/pkg/textcodec"
)

// Image sizes of the synthetic ROMs.
const (
	BCCSize = 0x400000
	BN2Size = 0x800000
)

// Free space used for string payloads and pointer cells.
const (
	bccTextPool = 0x380000
	bccCellPool = 0x3F0000
)

// Chip table indices with special flags in the BCC fixture.
const (
	ChipPlusIndex     = 150 // flags 0xD1, boosts any element
	FireChipPlusIndex = 151 // flags 0x10D0, boosts fire chips only
	NaviPlusIndex     = 152 // flags 0xD2
)

type builder struct {
	t    testing.TB
	data []byte
	rng  *rand.Rand
	next int
}

func newBuilder(t testing.TB, size int, game rom.Game, seed uint64, pool int) *builder {
	t.Helper()

	data := make([]byte, size)
	copy(data[rom.SignatureOffset:], rom.Signatures[game])

	return &builder{t: t, data: data, rng: rand.New(seed), next: pool}
}

func (b *builder) must(err error) {
	b.t.Helper()

	if err != nil {
		b.t.Fatalf("romtest: %v", err)
	}
}

func (b *builder) image() *rom.Image {
	b.t.Helper()

	img, err := rom.New(b.data)
	b.must(err)

	return img
}

func (b *builder) encode(kind records.Kind, index int, rec records.Record) {
	b.t.Helper()
	b.must(records.Encode(b.data, kind, index, rec))
}

// wide writes substrings at the next free text position and returns it.
func (b *builder) wide(format uint16, parts ...string) int {
	b.t.Helper()

	start := b.next

	for _, part := range parts {
		n := 0

		for _, r := range part {
			code, _ := textcodec.Wide.EncodeChar(r)
			b.must(rom.PutU16(b.data, b.next, code|format))
			b.next += 2
			n++
		}

		b.must(rom.PutU16(b.data, b.next, textcodec.Wide.Terminator(n)))
		b.next += 2
	}

	return start
}

func (b *builder) pointer(at, target int) {
	b.t.Helper()
	b.must(rom.PutU32(b.data, at, rom.Pointer(target)))
}

// BCCChipName is the name the fixture gives chip table index i.
func BCCChipName(i int) string { return fmt.Sprintf("Chip%03d", i) }

// BCC builds a Battle Chip Challenge image. The same seed always yields the
// same bytes.
func BCC(t testing.TB, seed uint64) *rom.Image {
	t.Helper()

	b := newBuilder(t, BCCSize, rom.GameBCC, seed, bccTextPool)

	chipCount := 248
	lib := append(classify.StandardChips(), classify.NaviChips()...)

	for _, i := range lib {
		c := &records.ChipBCC{
			HP:          uint16(10 * (1 + b.rng.Intn(30))),
			Pri:         uint16(b.rng.Intn(100)),
			AP:          uint16(10 * b.rng.Intn(20)),
			MB:          uint16(10 * (1 + b.rng.Intn(8))),
			Flags:       uint16(b.rng.Intn(5)) * 0x1000,
			Rarity:      uint8(1 + b.rng.Intn(5)),
			Category:    uint8(b.rng.Intn(2)),
			HitChance:   uint8(b.rng.Intn(256)),
			DodgeChance: uint8(b.rng.Intn(256)),
			ArtIndex:    uint8(i),
		}

		switch i {
		case ChipPlusIndex:
			c.Flags, c.AP = 0xD1, 0
		case FireChipPlusIndex:
			c.Flags, c.AP = 0x10D0, 0
		case NaviPlusIndex:
			c.Flags, c.AP = 0xD2, 0
		}

		b.encode(records.KindChip, i, c)
	}

	for i := range chipCount {
		off, err := records.OffsetOf(records.KindChipName, i)
		b.must(err)
		b.pointer(off, b.wide(0, BCCChipName(i)))

		ap := fmt.Sprintf("%d", 10*(1+i%20))
		if i%7 == 0 {
			ap += "+"
		}

		off, err = records.OffsetOf(records.KindEffectDesc, i)
		b.must(err)
		b.pointer(off, b.wide(records.EffectFormat, "Atk "+ap))

		// Chip descriptions go through a cell holding the real pointer.
		cell := bccCellPool + 4*i
		b.pointer(cell, b.wide(0, "Shoots", "enemy", "for "+ap))

		off, err = records.OffsetOf(records.KindChipDesc, i)
		b.must(err)
		b.pointer(off, cell)
	}

	for i := range 143 {
		off, err := records.OffsetOf(records.KindOpName, i)
		b.must(err)
		b.pointer(off, b.wide(0, fmt.Sprintf("Op%d", i)))
	}

	for i := range 419 {
		e := &records.EncounterBCC{
			Index:         uint8(i),
			Op:            uint8(b.rng.Intn(126)),
			Navi:          uint8(classify.NaviChipsStart + 1 + b.rng.Intn(classify.NaviChipsEnd-classify.NaviChipsStart)),
			SlotBotThresh: uint8(b.rng.Intn(100)),
			SlotTopThresh: uint8(b.rng.Intn(100)),
		}

		for j := range e.Chips {
			if b.rng.Intn(4) > 0 {
				e.Chips[j] = uint8(1 + b.rng.Intn(classify.StandardChipsEnd))
			}
		}

		b.encode(records.KindEncounter, i, e)
	}

	start := &records.StartingChips{}
	for j := range start.Chips {
		start.Chips[j] = uint8(1 + b.rng.Intn(classify.StandardChipsEnd))
	}

	b.encode(records.KindStartingChips, 0, start)

	return b.image()
}

// Counts of records in the synthetic BN2 encounter regions.
const (
	bn2EVTCount    = 243
	bn2RegionCount = 849
)

// BN2 builds a Battle Network 2 image. Encounter regions mix participant
// and descriptor lists; the first event encounter is a descriptor list.
func BN2(t testing.TB, seed uint64) *rom.Image {
	t.Helper()

	b := newBuilder(t, BN2Size, rom.GameBN2, seed, 0)
	chips := make([]*records.ChipBN2, 265)

	for i := range chips {
		c := &records.ChipBN2{
			Codes:    [4]uint8{uint8(b.rng.Intn(26)), uint8(b.rng.Intn(27)), records.NoCode, records.NoCode},
			Effect:   uint32(b.rng.Intn(0x100)),
			MB:       uint8(5 * (1 + b.rng.Intn(16))),
			AP:       uint16(10 * b.rng.Intn(30)),
			Index:    uint16(i),
			ImagePtr: rom.Pointer(0x700000 + 0x100*i),
		}
		if i == 0 {
			c.Codes = [4]uint8{records.NoCode, records.NoCode, records.NoCode, records.NoCode}
		}

		chips[i] = c
		b.encode(records.KindChipBN2, i, c)
	}

	b.narrowTable(records.KindChipNameBN2, "Chip")
	b.narrowTable(records.KindVirusNameBN2, "Virus")
	b.narrowTable(records.KindItemNameBN2, "Item")

	for i := range 178 {
		lvl := classify.LevelOf(i)
		b.encode(records.KindVirusBN2, i, &records.VirusBN2{
			HP:        uint16(10 * (1 + b.rng.Intn(30))),
			Unk:       uint8(b.rng.Intn(256)),
			DescBytes: b.rng.Uint32(),
			Level:     uint8(max(lvl-1, 0)),
		})
	}

	b.encounters(records.KindEncounterEVTBN2, bn2EVTCount)
	b.encounters(records.KindEncounterRegionBN2, bn2RegionCount)

	for i := range 25 {
		s := &records.ShopInventory{}
		for j := range 8 {
			e := &s.Entries[j]
			e.Stock = uint8(1 + b.rng.Intn(9))
			e.Price = uint16(100 * (1 + b.rng.Intn(50)))

			if j%3 == 2 {
				e.Kind, e.Index = records.ShopItem, uint16(b.rng.Intn(113))

				continue
			}

			id := 1 + b.rng.Intn(classify.BN2StandardMax)
			e.Kind, e.Index, e.Code = records.ShopChip, uint16(id), chips[id].Codes[0]
		}

		b.encode(records.KindShopInventoryBN2, i, s)
	}

	for i := range 6 {
		f := &records.ChipFolder{}
		for j := range f.Slots {
			id := 1 + b.rng.Intn(classify.BN2StandardMax)
			f.Slots[j] = records.FolderSlot{Chip: uint16(id), Code: uint16(chips[id].Codes[1])}
		}

		b.encode(records.KindChipFolderBN2, i, f)
	}

	for i := range 184 {
		d := &records.DropTable{}
		for j := range d.Entries {
			switch j % 5 {
			case 0, 1:
				id := 1 + b.rng.Intn(classify.BN2StandardMax)
				d.Entries[j] = records.ChipDrop(uint16(id), chips[id].Codes[0])
			case 2, 3:
				d.Entries[j] = records.ZennyDrop(10 * (1 + b.rng.Intn(100)))
			default:
				d.Entries[j] = records.DropEntry(0xFFFF)
			}
		}

		b.encode(records.KindDropTableBN2, i, d)
	}

	for _, loc := range records.GMDLocations {
		b.gmd(loc, chips)
	}

	return b.image()
}

func (b *builder) narrowTable(kind records.Kind, prefix string) {
	b.t.Helper()

	d, err := records.Lookup(kind)
	b.must(err)

	off := d.Offset
	for i := range d.Count {
		for _, r := range fmt.Sprintf("%s%d", prefix, i) {
			code, _ := textcodec.Narrow.EncodeChar(r)
			b.data[off] = byte(code)
			off++
		}

		b.data[off] = byte(textcodec.Narrow.Terminator(0))
		off++
	}
}

// Entity ids the fixture scatters through participant lists.
const (
	fixtureProtecto = 98
	fixtureNavi     = 140
)

func (b *builder) encounters(kind records.Kind, count int) {
	b.t.Helper()

	d, err := records.Lookup(kind)
	b.must(err)

	off := d.Offset

	for i := range count {
		// Never end on a descriptor list: its scan stops at the next
		// participant list.
		if i%10 == 0 && i < count-1 {
			b.data[off] = records.ListEnd
			b.data[off+1], b.data[off+2], b.data[off+3] = 0, 0, 0
			off += 4

			binary.LittleEndian.PutUint32(b.data[off:], rom.Pointer(0x600000+0x40*i))
			binary.LittleEndian.PutUint32(b.data[off+4:], rom.Pointer(0x610000+0x40*i))
			off += 8

			continue
		}

		ents := []records.Entity{{ID: 0, X: 1, Y: 1, Team: 0}}

		n := 1 + b.rng.Intn(2)
		for j := range n {
			id := 1 + b.rng.Intn(120)

			switch {
			case i%17 == 3 && j == 0:
				id = fixtureProtecto
			case i%23 == 5 && j == 0:
				id = fixtureNavi
			}

			ents = append(ents, records.Entity{ID: uint8(id), X: uint8(3 + j), Y: uint8(b.rng.Intn(3)), Team: 1})
		}

		for _, e := range ents {
			b.data[off], b.data[off+1], b.data[off+2], b.data[off+3] = e.ID, e.X, e.Y, e.Team
			off += 4
		}

		b.data[off], b.data[off+1], b.data[off+2], b.data[off+3] = records.ListEnd, 0, 0, 0
		off += 4
	}
}

func (b *builder) gmd(loc records.GMDLocation, chips []*records.ChipBN2) {
	p := loc.Offset

	var prev uint8

	for _, s := range loc.Schemas {
		for k := range s.LeadingPadding {
			b.data[p+k] = uint8(0xA0 + k)
		}

		at := p + s.LeadingPadding

		switch {
		case s.Kind == records.GMDZenny:
			prev = uint8(1 + b.rng.Intn(50))
			b.data[at] = prev
		case s.CodeOmitted:
			prev = uint8(1 + b.rng.Intn(26))
			b.data[at] = prev
		case s.IndexOmitted:
			b.data[at] = chips[prev].Codes[1]
		default:
			prev = uint8(1 + b.rng.Intn(classify.BN2StandardMax))

			b.data[at] = prev
			if s.InnerFiller {
				b.data[at+1] = 0xEE
				at++
			}

			b.data[at+1] = chips[prev].Codes[0]
		}

		p += s.Size()
	}
}
