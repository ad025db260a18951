package records_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drsam94/mmbccr/internal/romtest"
	"github.com/drsam94/mmbccr/pkg/records"
	"github.com/drsam94/mmbccr/pkg/rom"
)

func Test_Every_Kind_Roundtrips_Bytes_When_Decoded_Then_Encoded(t *testing.T) {
	t.Parallel()

	images := map[rom.Game]*rom.Image{
		rom.GameBCC: romtest.BCC(t, 1),
		rom.GameBN2: romtest.BN2(t, 1),
	}

	for game, img := range images {
		for _, kind := range records.Kinds(game) {
			if kind == records.KindSprite {
				continue
			}

			t.Run(kind.String(), func(t *testing.T) {
				t.Parallel()

				want := img.Bytes()
				got := bytes.Clone(want)
				n := 0

				err := records.Scan(want, kind, func(_, off int, rec records.Record) error {
					n++

					return rec.Encode(got, off)
				})
				require.NoError(t, err)

				d, err := records.Lookup(kind)
				require.NoError(t, err)
				assert.Equal(t, d.Count, n)

				if !bytes.Equal(got, want) {
					t.Fatalf("%s: re-encoding changed the image", kind)
				}
			})
		}
	}
}

func Test_Decode_Fails_With_Unsupported_When_Kind_Has_No_Layout(t *testing.T) {
	t.Parallel()

	img := romtest.BCC(t, 2)

	_, err := records.Decode(img.Bytes(), records.KindSprite, 0)
	if !errors.Is(err, records.ErrUnsupported) {
		t.Fatalf("err=%v, want ErrUnsupported", err)
	}

	err = records.Scan(img.Bytes(), records.KindSprite, func(int, int, records.Record) error { return nil })
	assert.ErrorIs(t, err, records.ErrUnsupported)
}

func Test_Decode_Fails_With_Unsupported_When_Kind_Is_Variable_Length(t *testing.T) {
	t.Parallel()

	img := romtest.BN2(t, 2)

	for _, kind := range []records.Kind{records.KindEncounterEVTBN2, records.KindChipNameBN2} {
		_, err := records.Decode(img.Bytes(), kind, 0)
		assert.ErrorIs(t, err, records.ErrUnsupported, kind.String())
	}
}

func Test_Decode_Fails_When_Index_Is_Out_Of_Range(t *testing.T) {
	t.Parallel()

	img := romtest.BCC(t, 3)

	_, err := records.Decode(img.Bytes(), records.KindChip, 248)
	assert.ErrorIs(t, err, records.ErrIndexOutOfRange)

	_, err = records.Decode(img.Bytes(), records.KindChip, -1)
	assert.ErrorIs(t, err, records.ErrIndexOutOfRange)
}

func Test_Encode_Writes_Exactly_One_Slot_When_Record_Changes(t *testing.T) {
	t.Parallel()

	img := romtest.BCC(t, 4)
	before := bytes.Clone(img.Bytes())

	chip, err := records.DecodeAs[*records.ChipBCC](img.Bytes(), records.KindChip, 10)
	require.NoError(t, err)

	chip.AP = 0xBEEF
	require.NoError(t, records.Encode(img.Bytes(), records.KindChip, 10, chip))

	off, err := records.OffsetOf(records.KindChip, 10)
	require.NoError(t, err)

	for i := range before {
		inSlot := i >= off && i < off+records.ChipBCCSize
		if !inSlot && before[i] != img.Bytes()[i] {
			t.Fatalf("byte %#x outside the slot changed", i)
		}
	}

	again, err := records.DecodeAs[*records.ChipBCC](img.Bytes(), records.KindChip, 10)
	require.NoError(t, err)

	if diff := cmp.Diff(chip, again); diff != "" {
		t.Errorf("decoded chip mismatch (-want +got):\n%s", diff)
	}
}

func Test_DecodeAs_Fails_When_Type_Does_Not_Match(t *testing.T) {
	t.Parallel()

	img := romtest.BCC(t, 5)

	_, err := records.DecodeAs[*records.EncounterBCC](img.Bytes(), records.KindChip, 0)
	assert.ErrorIs(t, err, records.ErrUnsupported)
}

func Test_ParseKind_Accepts_Loose_Names_When_Looked_Up(t *testing.T) {
	t.Parallel()

	for name, want := range map[string]records.Kind{
		"Chip":             records.KindChip,
		"chip_bn2":         records.KindChipBN2,
		"EncounterEVT_BN2": records.KindEncounterEVTBN2,
		"gmdbn2":           records.KindGMDBN2,
	} {
		got, err := records.ParseKind(name)
		require.NoError(t, err)
		assert.Equal(t, want, got, name)
	}

	_, err := records.ParseKind("Chips")
	assert.ErrorIs(t, err, records.ErrUnknownKind)
}

func Test_ChipBCC_Flags_Decode_Element_And_Boosters_When_Set(t *testing.T) {
	t.Parallel()

	tests := []struct {
		flags    uint16
		element  records.Element
		chipPlus bool
		naviPlus bool
	}{
		{0x0000, records.ElementNormal, false, false},
		{0x00D1, records.ElementNormal, true, false},
		{0x10D0, records.ElementFire, true, false},
		{0x00D2, records.ElementNormal, false, true},
		{0x4040, records.ElementElec, false, false},
	}

	for _, tt := range tests {
		c := &records.ChipBCC{Flags: tt.flags}
		assert.Equal(t, tt.element, c.Element(), "flags %#x", tt.flags)
		assert.Equal(t, tt.chipPlus, c.IsChipPlus(), "flags %#x", tt.flags)
		assert.Equal(t, tt.naviPlus, c.IsNaviPlus(), "flags %#x", tt.flags)
	}
}

func Test_LookupField_Matches_Case_Insensitively_When_Named(t *testing.T) {
	t.Parallel()

	f, ok := records.LookupField(records.ChipBCCFields, "HITCHANCE")
	require.True(t, ok)

	c := &records.ChipBCC{}
	f.Set(c, 300)
	assert.Equal(t, uint8(0xFF), c.HitChance)
	assert.Equal(t, 255, f.Get(c))

	_, ok = records.LookupField(records.ChipBCCFields, "flags")
	assert.False(t, ok)
}

func Test_DropEntry_Packs_Fields_When_Built(t *testing.T) {
	t.Parallel()

	d := records.ChipDrop(0x1AB, 7)
	assert.Equal(t, records.DropChip, d.Kind())
	assert.Equal(t, uint16(0x1AB), d.Chip())
	assert.Equal(t, uint8(7), d.Code())

	z := records.ZennyDrop(20000)
	assert.Equal(t, records.DropZenny, z.Kind())
	assert.Equal(t, uint16(0x3FFF), z.Zenny())

	assert.Equal(t, records.DropNone, records.DropEntry(0xFFFF).Kind())
}
