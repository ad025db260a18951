package rando_test

import (
	"bytes"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drsam94/mmbccr/internal/options"
	"github.com/drsam94/mmbccr/internal/romtest"
	"github.com/drsam94/mmbccr/pkg/classify"
	"github.com/drsam94/mmbccr/pkg/rando"
	"github.com/drsam94/mmbccr/pkg/records"
)

func bn2Options() options.Options {
	o := options.Default()
	o.BN2Chips = map[string]int{"ap": 30, "mb": 20}
	o.Viruses.HPVariance = 25
	o.Encounters.RandomizeFixed = true
	o.Encounters.RandomizeNet = true
	o.Shops = options.Shops{Randomize: true, PriceVariance: 20}
	o.Folders.Randomize = true
	o.Drops = options.Drops{Randomize: true, ZennyVariance: 30}
	o.GMD = options.GMD{Randomize: true, ZennyVariance: 30}
	o.Engine.UnverifiedLayouts = true

	return o
}

func encountersOf(t *testing.T, data []byte, kind records.Kind) ([]*records.EncounterBN2, []int) {
	t.Helper()

	encs, offs, err := records.Collect[*records.EncounterBN2](data, kind)
	require.NoError(t, err)

	return encs, offs
}

func Test_RandomizeBN2_Is_Deterministic_When_Seed_Repeats(t *testing.T) {
	t.Parallel()

	a := romtest.BN2(t, 1)
	b := romtest.BN2(t, 1)
	input := bytes.Clone(a.Bytes())

	_, statsA, err := rando.Randomize(a, bn2Options(), seedOf(77), nil)
	require.NoError(t, err)

	_, statsB, err := rando.Randomize(b, bn2Options(), seedOf(77), nil)
	require.NoError(t, err)

	assert.Equal(t, statsA, statsB)
	assert.Len(t, a.Bytes(), len(input))
	assert.True(t, bytes.Equal(a.Bytes(), b.Bytes()), "same seed produced different images")
	assert.False(t, bytes.Equal(a.Bytes(), input))
	assert.Positive(t, statsA.VirusesReplaced)
}

func Test_RandomizeBN2_Gates_Categories_When_Encounters_Change(t *testing.T) {
	t.Parallel()

	img := romtest.BN2(t, 2)

	const hidden = 128

	regions, regionOffs := encountersOf(t, img.Bytes(), records.KindEncounterRegionBN2)
	planted := 0

	for i, e := range regions {
		k := slices.IndexFunc(e.Entities, func(ent records.Entity) bool {
			return ent.ID != 0 && !classify.InAny(int(ent.ID), classify.Navi, classify.Protecto, classify.Dragon)
		})
		if k < 0 {
			continue
		}

		e.Entities[k].ID = hidden
		require.NoError(t, e.Encode(img.Bytes(), regionOffs[i]))

		planted++
	}

	require.Positive(t, planted)
	require.True(t, classify.Hidden.Contains(hidden))

	kinds := []records.Kind{records.KindEncounterEVTBN2, records.KindEncounterRegionBN2}
	before := map[records.Kind][]*records.EncounterBN2{}
	offsets := map[records.Kind][]int{}

	for _, k := range kinds {
		before[k], offsets[k] = encountersOf(t, img.Bytes(), k)
	}

	o := options.Default()
	o.Encounters.RandomizeFixed = true
	o.Encounters.RandomizeNet = true

	_, _, err := rando.Randomize(img, o, seedOf(2), nil)
	require.NoError(t, err)

	for _, k := range kinds {
		after, offs := encountersOf(t, img.Bytes(), k)
		require.Equal(t, offsets[k], offs, "%s framing moved", k)

		for i, e := range after {
			old := before[k][i]
			require.Len(t, e.Entities, len(old.Entities))

			naviBattle := slices.ContainsFunc(old.Entities, func(ent records.Entity) bool {
				return classify.Navi.Contains(int(ent.ID))
			})
			tutorial := k == records.KindEncounterEVTBN2 && i < 3

			for j, ent := range e.Entities {
				was := int(old.Entities[j].ID)
				now := int(ent.ID)

				assert.Equal(t, old.Entities[j].X, ent.X)
				assert.Equal(t, old.Entities[j].Team, ent.Team)

				if was == 0 || classify.InAny(was, classify.Protecto, classify.Dragon, classify.Hidden) || naviBattle || tutorial {
					assert.Equal(t, was, now, "%s[%d] entity %d must not change", k, i, j)

					continue
				}

				assert.False(t, classify.InAny(now, classify.Navi, classify.Protecto, classify.Dragon, classify.Hidden),
					"%s[%d] entity %d became %d", k, i, j, now)

				if lo, ln := classify.LevelOf(was), classify.LevelOf(now); lo != 0 && ln != 0 {
					assert.Equal(t, lo, ln, "%s[%d] entity %d tier changed", k, i, j)
				}

				if classify.LevelOf(was) == 1 {
					assert.False(t, classify.Aura.Contains(now))
				}
			}
		}
	}
}

func Test_RandomizeBN2_Touches_Navi_Battles_When_Allowed(t *testing.T) {
	t.Parallel()

	img := romtest.BN2(t, 3)
	before, _ := encountersOf(t, img.Bytes(), records.KindEncounterRegionBN2)

	o := options.Default()
	o.Encounters.RandomizeNet = true
	o.Encounters.RandomizeNavis = true

	_, _, err := rando.Randomize(img, o, seedOf(3), nil)
	require.NoError(t, err)

	after, _ := encountersOf(t, img.Bytes(), records.KindEncounterRegionBN2)

	changed := 0

	for i, e := range after {
		for j, ent := range e.Entities {
			was := int(before[i].Entities[j].ID)
			if classify.Navi.Contains(was) && int(ent.ID) != was {
				changed++
			}
		}
	}

	assert.Positive(t, changed)
}

func Test_RandomizeBN2_Rejects_Panels_When_Requested(t *testing.T) {
	t.Parallel()

	img := romtest.BN2(t, 4)
	before := bytes.Clone(img.Bytes())

	o := bn2Options()
	o.Encounters.RandomizePanels = true

	_, _, err := rando.Randomize(img, o, seedOf(4), nil)
	require.ErrorIs(t, err, rando.ErrUnsupportedOption)
	assert.True(t, bytes.Equal(before, img.Bytes()))
}

func Test_RandomizeBN2_Keeps_Codes_Valid_When_Chips_Are_Substituted(t *testing.T) {
	t.Parallel()

	img := romtest.BN2(t, 5)

	_, stats, err := rando.Randomize(img, bn2Options(), seedOf(5), nil)
	require.NoError(t, err)
	assert.Positive(t, stats.ShopEntriesChanged)
	assert.Positive(t, stats.FolderSlotsChanged)
	assert.Positive(t, stats.DropsChanged)

	data := img.Bytes()

	codeOK := func(chip int, code uint8) bool {
		c, err := records.DecodeAs[*records.ChipBN2](data, records.KindChipBN2, chip)
		require.NoError(t, err)

		return slices.Contains(c.ValidCodes(), code)
	}

	shops, _, err := records.Collect[*records.ShopInventory](data, records.KindShopInventoryBN2)
	require.NoError(t, err)

	for i, s := range shops {
		for j, e := range s.Entries {
			if e.Kind == records.ShopChip {
				assert.True(t, codeOK(int(e.Index), e.Code), "shop %d entry %d", i, j)
			}
		}
	}

	folders, _, err := records.Collect[*records.ChipFolder](data, records.KindChipFolderBN2)
	require.NoError(t, err)

	for i, f := range folders {
		for j, s := range f.Slots {
			assert.True(t, codeOK(int(s.Chip), uint8(s.Code)), "folder %d slot %d", i, j)
		}
	}

	drops, _, err := records.Collect[*records.DropTable](data, records.KindDropTableBN2)
	require.NoError(t, err)

	for i, d := range drops {
		for j, e := range d.Entries {
			switch e.Kind() {
			case records.DropChip:
				assert.True(t, codeOK(int(e.Chip()), e.Code()), "drop table %d entry %d", i, j)
			case records.DropZenny:
				assert.Zero(t, e.Zenny()%10, "drop table %d entry %d", i, j)
			}
		}
	}
}

func Test_RandomizeBN2_Respects_GMD_Packing_When_Rewards_Change(t *testing.T) {
	t.Parallel()

	img := romtest.BN2(t, 6)
	before, _, err := records.Collect[*records.GMDGroup](img.Bytes(), records.KindGMDBN2)
	require.NoError(t, err)

	raw := bytes.Clone(img.Bytes())

	o := options.Default()
	o.GMD = options.GMD{Randomize: true, ZennyVariance: 50}
	o.Engine.UnverifiedLayouts = true

	_, stats, err := rando.Randomize(img, o, seedOf(6), nil)
	require.NoError(t, err)
	assert.Positive(t, stats.GMDChanged)
	assert.Positive(t, stats.SharedSkipped)

	after, _, err := records.Collect[*records.GMDGroup](img.Bytes(), records.KindGMDBN2)
	require.NoError(t, err)

	for gi, g := range after {
		p := g.Location.Offset

		for k, occ := range g.Occurrences {
			s := occ.Schema

			for b := range s.LeadingPadding {
				assert.Equal(t, raw[p+b], img.Bytes()[p+b], "%s padding", g.Location.Name)
			}

			switch {
			case s.Kind == records.GMDZenny:
				assert.GreaterOrEqual(t, occ.Index, uint8(1))
			case occ.Shared():
				assert.Equal(t, before[gi].Occurrences[k], occ, "%s[%d] shared byte changed", g.Location.Name, k)
			case occ.Inherited():
				assert.Equal(t, g.Occurrences[k-1].Index, occ.Index, "%s[%d]", g.Location.Name, k)

				if occ.Index != before[gi].Occurrences[k].Index {
					chip, err := records.DecodeAs[*records.ChipBN2](img.Bytes(), records.KindChipBN2, int(occ.Index))
					require.NoError(t, err)
					assert.Contains(t, chip.ValidCodes(), occ.Code, "%s[%d] code", g.Location.Name, k)
				}
			}

			p += s.Size()
		}
	}

	// Nothing else in the image moved.
	for _, loc := range records.GMDLocations {
		copy(raw[loc.Offset:loc.Offset+loc.Size()], img.Bytes()[loc.Offset:])
	}

	assert.True(t, bytes.Equal(raw, img.Bytes()))
}

func Test_RandomizeBN2_Perturbs_Virus_HP_When_Variance_Is_Set(t *testing.T) {
	t.Parallel()

	img := romtest.BN2(t, 7)

	o := options.Default()
	o.Viruses.HPVariance = 50

	_, stats, err := rando.Randomize(img, o, seedOf(7), nil)
	require.NoError(t, err)
	assert.Positive(t, stats.VirusesChanged)

	zero, err := records.DecodeAs[*records.VirusBN2](romtest.BN2(t, 7).Bytes(), records.KindVirusBN2, 0)
	require.NoError(t, err)

	got, err := records.DecodeAs[*records.VirusBN2](img.Bytes(), records.KindVirusBN2, 0)
	require.NoError(t, err)
	assert.Equal(t, zero, got, "virus 0 is not a virus")
}

func Test_RandomizeBN2_Keeps_Exact_Cost_When_Folder_Chip_Costs_Fifteen(t *testing.T) {
	t.Parallel()

	const odd = 7

	img := romtest.BN2(t, 9)
	data := img.Bytes()

	for id := classify.BN2StandardMin; id <= classify.BN2StandardMax; id++ {
		chip, err := records.DecodeAs[*records.ChipBN2](data, records.KindChipBN2, id)
		require.NoError(t, err)

		chip.MB = 10
		if id == odd {
			chip.MB = 15
			chip.Codes = [4]uint8{0, 1, records.NoCode, records.NoCode}
		}

		require.NoError(t, records.Encode(data, records.KindChipBN2, id, chip))
	}

	f, err := records.DecodeAs[*records.ChipFolder](data, records.KindChipFolderBN2, 0)
	require.NoError(t, err)

	for k := range f.Slots {
		f.Slots[k] = records.FolderSlot{Chip: 1, Code: 0}
	}

	f.Slots[0] = records.FolderSlot{Chip: odd, Code: 0}
	require.NoError(t, records.Encode(data, records.KindChipFolderBN2, 0, f))

	o := options.Default()
	o.Folders.Randomize = true
	o.Engine.UnverifiedLayouts = true

	_, _, err = rando.Randomize(img, o, seedOf(9), nil)
	require.NoError(t, err)

	got, err := records.DecodeAs[*records.ChipFolder](img.Bytes(), records.KindChipFolderBN2, 0)
	require.NoError(t, err)

	assert.Equal(t, uint16(odd), got.Slots[0].Chip)
	assert.Contains(t, []uint16{0, 1}, got.Slots[0].Code)

	for k, s := range got.Slots[1:] {
		assert.NotEqual(t, uint16(odd), s.Chip, "slot %d drew the cost-15 chip from the cost-10 group", k+1)
	}
}

func Test_RandomizeBN2_Refuses_Placeholder_Layouts_When_Not_Allowed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		set  func(o *options.Options)
	}{
		{"shops", func(o *options.Options) { o.Shops.PriceVariance = 10 }},
		{"folders", func(o *options.Options) { o.Folders.Randomize = true }},
		{"drops", func(o *options.Options) { o.Drops.Randomize = true }},
		{"gmd", func(o *options.Options) { o.GMD.ZennyVariance = 10 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			img := romtest.BN2(t, 10)
			raw := bytes.Clone(img.Bytes())

			o := options.Default()
			tt.set(&o)

			_, _, err := rando.Randomize(img, o, seedOf(10), nil)
			require.ErrorIs(t, err, rando.ErrUnsupportedOption)
			assert.ErrorContains(t, err, tt.name)
			assert.True(t, bytes.Equal(raw, img.Bytes()), "image changed")
		})
	}
}

func Test_RandomizeBN2_Keeps_Folder_Chip_When_No_Chip_Costs_As_Little(t *testing.T) {
	t.Parallel()

	const lone = 7

	img := romtest.BN2(t, 12)
	data := img.Bytes()

	for id := classify.BN2StandardMin; id <= classify.BN2StandardMax; id++ {
		chip, err := records.DecodeAs[*records.ChipBN2](data, records.KindChipBN2, id)
		require.NoError(t, err)

		chip.MB = 20
		chip.Codes = [4]uint8{0, records.NoCode, records.NoCode, records.NoCode}

		if id == lone {
			chip.MB = 10
			chip.Codes = [4]uint8{records.NoCode, records.NoCode, records.NoCode, records.NoCode}
		}

		require.NoError(t, records.Encode(data, records.KindChipBN2, id, chip))
	}

	f, err := records.DecodeAs[*records.ChipFolder](data, records.KindChipFolderBN2, 0)
	require.NoError(t, err)

	f.Slots[0] = records.FolderSlot{Chip: lone, Code: 3}
	require.NoError(t, records.Encode(data, records.KindChipFolderBN2, 0, f))

	o := options.Default()
	o.Folders.Randomize = true
	o.Engine.UnverifiedLayouts = true

	_, stats, err := rando.Randomize(img, o, seedOf(12), nil)
	require.NoError(t, err)
	assert.Positive(t, stats.EmptyPools)

	got, err := records.DecodeAs[*records.ChipFolder](img.Bytes(), records.KindChipFolderBN2, 0)
	require.NoError(t, err)
	assert.Equal(t, records.FolderSlot{Chip: lone, Code: 3}, got.Slots[0])
}
