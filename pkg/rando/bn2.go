package rando

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/drsam94/mmbccr/pkg/classify"
	"github.com/drsam94/mmbccr/pkg/records"
)

func randomizeBN2Chips(c *Context, data []byte) error {
	keys := varianceKeys(c.Options.BN2Chips)
	if len(keys) == 0 {
		return nil
	}

	for id := classify.BN2StandardMin; id <= classify.BN2StandardMax; id++ {
		chip, err := records.DecodeAs[*records.ChipBN2](data, records.KindChipBN2, id)
		if err != nil {
			return err
		}

		changed := false

		for _, key := range keys {
			f, _ := records.LookupField(records.ChipBN2Fields, key)
			old := f.Get(chip)
			v := Perturb(c.Rand, old, c.Options.BN2Chips[key], 0, capFor(f.Max))
			f.Set(chip, v)
			changed = changed || v != old
		}

		if err := records.Encode(data, records.KindChipBN2, id, chip); err != nil {
			return err
		}

		if changed {
			c.Stats.ChipsChanged++
		}
	}

	return nil
}

func randomizeBN2Viruses(c *Context, data []byte) error {
	pct := c.Options.Viruses.HPVariance
	if pct == 0 {
		return nil
	}

	f, _ := records.LookupField(records.VirusBN2Fields, "hp")

	for id := classify.MinVirusID; id <= classify.MaxVirusID; id++ {
		v, err := records.DecodeAs[*records.VirusBN2](data, records.KindVirusBN2, id)
		if err != nil {
			return err
		}

		old := f.Get(v)
		hp := Perturb(c.Rand, old, pct, 0, capFor(f.Max))
		f.Set(v, hp)

		if err := records.Encode(data, records.KindVirusBN2, id, v); err != nil {
			return err
		}

		if hp != old {
			c.Stats.VirusesChanged++
		}
	}

	return nil
}

// rebuildBN2Metadata reads the name tables and the chip table after the
// stat passes, so later passes see the new costs.
func rebuildBN2Metadata(c *Context, data []byte) error {
	var err error

	if c.ChipNames, err = nameMap(data, records.KindChipNameBN2); err != nil {
		return err
	}

	if c.VirusNames, err = nameMap(data, records.KindVirusNameBN2); err != nil {
		return err
	}

	if c.ItemNames, err = nameMap(data, records.KindItemNameBN2); err != nil {
		return err
	}

	c.ChipsBN2 = map[int]*records.ChipBN2{}
	c.BucketsBN2 = map[int][]int{}

	for id := classify.BN2StandardMin; id <= classify.BN2StandardMax; id++ {
		chip, err := records.DecodeAs[*records.ChipBN2](data, records.KindChipBN2, id)
		if err != nil {
			return err
		}

		c.ChipsBN2[id] = chip

		if len(chip.ValidCodes()) > 0 {
			addToBucket(c.BucketsBN2, int(chip.MB), id)
		}
	}

	return nil
}

func nameMap(data []byte, kind records.Kind) (map[int]string, error) {
	names, _, err := records.Collect[*records.NarrowString](data, kind)
	if err != nil {
		return nil, err
	}

	m := make(map[int]string, len(names))
	for i, n := range names {
		m[i] = n.String()
	}

	return m, nil
}

func randomizeBN2Encounters(c *Context, data []byte) error {
	enc := c.Options.Encounters

	var kinds []records.Kind
	if enc.RandomizeNet {
		kinds = append(kinds, records.KindEncounterRegionBN2)
	}

	if enc.RandomizeFixed {
		kinds = append(kinds, records.KindEncounterEVTBN2)
	}

	for _, kind := range kinds {
		err := records.Scan(data, kind, func(i, off int, rec records.Record) error {
			e, ok := rec.(*records.EncounterBN2)
			if !ok || !e.IsEntities() {
				return nil
			}

			// The first event battles teach the controls.
			if kind == records.KindEncounterEVTBN2 && i < tutorialBattles && !enc.RandomizeTutorial {
				return nil
			}

			changed, err := replaceViruses(c, e)
			if err != nil {
				return fmt.Errorf("%s[%d]: %w", kind, i, err)
			}

			if !changed {
				return nil
			}

			c.Stats.EncountersWritten++

			return e.Encode(data, off)
		})
		if err != nil {
			return err
		}
	}

	return nil
}

const tutorialBattles = 3

func isNaviBattle(e *records.EncounterBN2) bool {
	for _, ent := range e.Entities {
		if classify.Navi.Contains(int(ent.ID)) {
			return true
		}
	}

	return false
}

// replaceViruses redraws every enemy outside the Protecto, Dragon and
// Hidden categories, keeping its tier. Positions are kept.
func replaceViruses(c *Context, e *records.EncounterBN2) (bool, error) {
	if isNaviBattle(e) && !c.Options.Encounters.RandomizeNavis {
		return false, nil
	}

	changed := false

	for k := range e.Entities {
		ent := &e.Entities[k]
		old := int(ent.ID)

		if old == 0 || classify.InAny(old, classify.Protecto, classify.Dragon, classify.Hidden) {
			continue
		}

		oldLevel := classify.LevelOf(old)

		v, err := Sample(c.maxRejections(),
			func() int { return classify.MinVirusID + c.Rand.Intn(classify.MaxVirusID-classify.MinVirusID+1) },
			func(v int) bool {
				if classify.InAny(v, classify.Protecto, classify.Dragon, classify.Navi, classify.Hidden) {
					return true
				}

				if oldLevel == 1 && classify.Aura.Contains(v) {
					return true
				}

				newLevel := classify.LevelOf(v)

				return oldLevel != 0 && newLevel != 0 && newLevel != oldLevel
			})
		if err != nil {
			return false, fmt.Errorf("entity %d (%s): %w", k, c.VirusNames[old], err)
		}

		if v != old {
			changed = true
			c.Stats.VirusesReplaced++
			c.Log.Debug("virus replaced", zap.String("from", c.VirusNames[old]), zap.String("to", c.VirusNames[v]))
		}

		ent.ID = uint8(v)
	}

	return changed, nil
}

// drawChipLike picks a chip costing the same as old, or 10, 20, ... less.
// It reports false when no such chip exists. Shop, folder, drop and GMD
// entries then keep old instead of being emptied.
func drawChipLike(c *Context, old int) (int, uint8, bool) {
	cost := bucketStep
	if d, ok := c.ChipsBN2[old]; ok {
		cost = max(bucketStep, int(d.MB))
	}

	pool := lookDown(c.BucketsBN2, cost)
	if len(pool) == 0 {
		c.Stats.EmptyPools++
		c.Log.Debug("no chip at or below cost, kept", zap.Int("chip", old), zap.Int("cost", cost))

		return 0, 0, false
	}

	id := pick(c.Rand, pool)

	return id, pick(c.Rand, c.ChipsBN2[id].ValidCodes()), true
}

func randomizeBN2Shops(c *Context, data []byte) error {
	opts := c.Options.Shops
	if !opts.Randomize && opts.PriceVariance == 0 {
		return nil
	}

	return records.Scan(data, records.KindShopInventoryBN2, func(i, off int, rec records.Record) error {
		inv, ok := rec.(*records.ShopInventory)
		if !ok {
			return fmt.Errorf("%w: shop %d", records.ErrMalformed, i)
		}

		for k := range inv.Entries {
			e := &inv.Entries[k]
			if e.Kind == records.ShopEmpty {
				continue
			}

			if opts.Randomize && e.Kind == records.ShopChip {
				if id, code, ok := drawChipLike(c, int(e.Index)); ok {
					e.Index, e.Code = uint16(id), code
					c.Stats.ShopEntriesChanged++
				}
			}

			if opts.PriceVariance > 0 {
				e.Price = uint16(Perturb(c.Rand, int(e.Price), opts.PriceVariance, 0, MaxValue))
			}
		}

		return inv.Encode(data, off)
	})
}

func randomizeBN2Folders(c *Context, data []byte) error {
	if !c.Options.Folders.Randomize {
		return nil
	}

	return records.Scan(data, records.KindChipFolderBN2, func(i, off int, rec records.Record) error {
		f, ok := rec.(*records.ChipFolder)
		if !ok {
			return fmt.Errorf("%w: folder %d", records.ErrMalformed, i)
		}

		for k := range f.Slots {
			s := &f.Slots[k]
			if s.Chip == 0 {
				continue
			}

			if id, code, ok := drawChipLike(c, int(s.Chip)); ok {
				s.Chip, s.Code = uint16(id), uint16(code)
				c.Stats.FolderSlotsChanged++
			}
		}

		return f.Encode(data, off)
	})
}

// maxDropZenny is the largest multiple of ten the 14-bit zenny field holds.
const maxDropZenny = 0x3FFF - 0x3FFF%10

func randomizeBN2Drops(c *Context, data []byte) error {
	opts := c.Options.Drops
	if !opts.Randomize && opts.ZennyVariance == 0 {
		return nil
	}

	return records.Scan(data, records.KindDropTableBN2, func(i, off int, rec records.Record) error {
		t, ok := rec.(*records.DropTable)
		if !ok {
			return fmt.Errorf("%w: drop table %d", records.ErrMalformed, i)
		}

		for k, d := range t.Entries {
			switch d.Kind() {
			case records.DropChip:
				if !opts.Randomize {
					continue
				}

				if id, code, ok := drawChipLike(c, int(d.Chip())); ok {
					t.Entries[k] = records.ChipDrop(uint16(id), code)
					c.Stats.DropsChanged++
				}
			case records.DropZenny:
				if opts.ZennyVariance == 0 {
					continue
				}

				t.Entries[k] = records.ZennyDrop(Perturb(c.Rand, int(d.Zenny()), opts.ZennyVariance, 0, maxDropZenny))
				c.Stats.DropsChanged++
			}
		}

		return t.Encode(data, off)
	})
}

// maxGMDZenny is the largest amount a one-byte zenny index encodes.
const maxGMDZenny = 0xFF * records.ZennyUnit

func randomizeBN2GMD(c *Context, data []byte) error {
	opts := c.Options.GMD
	if !opts.Randomize && opts.ZennyVariance == 0 {
		return nil
	}

	return records.Scan(data, records.KindGMDBN2, func(i, off int, rec records.Record) error {
		g, ok := rec.(*records.GMDGroup)
		if !ok {
			return fmt.Errorf("%w: gmd group %d", records.ErrMalformed, i)
		}

		// Whether the last explicit index changed, for inherited occurrences.
		moved := false

		for k, o := range g.Occurrences {
			switch {
			case o.Schema.Kind == records.GMDZenny:
				moved = false

				if opts.ZennyVariance == 0 {
					continue
				}

				amount := Perturb(c.Rand, o.Zenny(), opts.ZennyVariance, 0, maxGMDZenny)
				g.SetIndex(k, uint8(min(max((amount+records.ZennyUnit/2)/records.ZennyUnit, 1), 0xFF)))
				c.Stats.GMDChanged++

			case !opts.Randomize:
				continue

			case o.Shared():
				// One byte is both chip and code; no chip has every code.
				moved = false
				c.Stats.SharedSkipped++
				c.Log.Debug("shared chip byte left as is", zap.String("location", g.Location.Name), zap.Int("occurrence", k))

			case o.Inherited():
				if !moved {
					continue
				}

				if chip, ok := c.ChipsBN2[int(g.Occurrences[k].Index)]; ok {
					g.Occurrences[k].Code = pick(c.Rand, chip.ValidCodes())
				}

			default:
				id, code, ok := drawChipLike(c, int(o.Index))
				moved = ok

				if !ok {
					continue
				}

				g.SetIndex(k, uint8(id))
				g.Occurrences[k].Code = code
				c.Stats.GMDChanged++
			}
		}

		return g.Encode(data, off)
	})
}
