package rando

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/drsam94/mmbccr/pkg/classify"
	"github.com/drsam94/mmbccr/pkg/records"
)

// varianceKeys returns the non-zero keys of m in sorted order.
func varianceKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for _, k := range slices.Sorted(maps.Keys(m)) {
		if m[k] != 0 {
			keys = append(keys, k)
		}
	}

	return keys
}

func randomizeBCCChips(c *Context, data []byte) error {
	groups := []struct {
		variance map[string]int
		ids      []int
	}{
		{c.Options.ChipRange, classify.StandardChips()},
		{c.Options.NaviRange, classify.NaviChips()},
	}

	for _, g := range groups {
		keys := varianceKeys(g.variance)
		if len(keys) == 0 {
			continue
		}

		for _, i := range g.ids {
			if err := perturbBCCChip(c, data, i, keys, g.variance); err != nil {
				return err
			}
		}
	}

	return nil
}

func perturbBCCChip(c *Context, data []byte, i int, keys []string, variance map[string]int) error {
	chip, err := records.DecodeAs[*records.ChipBCC](data, records.KindChip, i)
	if err != nil {
		return err
	}

	weaker := 0
	if c.Options.ChipGlobal.PreserveOrdering {
		weaker = classify.WeakerChip(i + 1)
	}

	for _, key := range keys {
		f, _ := records.LookupField(records.ChipBCCFields, key)

		floor := 0

		if weaker != 0 {
			// The weaker chip was already written by this pass.
			w, err := records.DecodeAs[*records.ChipBCC](data, records.KindChip, weaker-1)
			if err != nil {
				return err
			}

			floor = f.Get(w)
		}

		old := f.Get(chip)
		v := Perturb(c.Rand, old, variance[key], floor, capFor(f.Max))
		f.Set(chip, v)

		if err := records.Encode(data, records.KindChip, i, chip); err != nil {
			return err
		}

		if v != old {
			c.Stats.ChipsChanged++
		}

		if strings.EqualFold(f.Name, "ap") && v != 0 {
			if err := rewriteAttackPower(c, data, i, v); err != nil {
				return err
			}
		}
	}

	return nil
}

// rewriteAttackPower updates the effect text of chip i and the description
// of the chip whose description slot is i+1.
func rewriteAttackPower(c *Context, data []byte, i, ap int) error {
	targets := []struct {
		kind  records.Kind
		index int
	}{
		{records.KindEffectDesc, i},
		{records.KindChipDesc, i + 1},
	}

	for _, t := range targets {
		d, err := records.Lookup(t.kind)
		if err != nil {
			return err
		}

		if t.index >= d.Count {
			continue
		}

		s, err := records.DecodeAs[*records.WideString](data, t.kind, t.index)
		if err != nil {
			return err
		}

		s.ChangeAttackPower(ap)

		if err := records.Encode(data, t.kind, t.index, s); err != nil {
			return err
		}

		c.Stats.DescriptionsRewritten++
	}

	return nil
}

// loadBCCChips fills the chip map over both ranges and the cost buckets
// over the standard range.
func loadBCCChips(c *Context, data []byte) error {
	c.Chips = map[int]*records.ChipBCC{}
	c.Buckets = map[int][]int{}

	for _, ids := range [][]int{classify.StandardChips(), classify.NaviChips()} {
		for _, i := range ids {
			chip, err := records.DecodeAs[*records.ChipBCC](data, records.KindChip, i)
			if err != nil {
				return err
			}

			c.Chips[i] = chip
		}
	}

	for _, i := range classify.StandardChips() {
		addToBucket(c.Buckets, int(c.Chips[i].MB), i)
	}

	return nil
}

// Encounter slot layout: the chip-plus column is slots 0..4, the navi-plus
// column 5..9.
const (
	chipPlusSlots = 5
	naviPlusSlots = 10
)

func boostable(booster, boosted *records.ChipBCC) bool {
	if boosted.AP == 0 {
		return false
	}

	return booster.Element() == records.ElementNormal || booster.Element() == boosted.Element()
}

// hasBadAtkBooster reports whether slot j holds an attack booster that is
// out of its column or has nothing to boost in the slots it feeds.
func hasBadAtkBooster(chips map[int]*records.ChipBCC, slots []uint8, j int) bool {
	d, ok := chips[int(slots[j])-1]
	if !ok {
		return false
	}

	inChipPlus := j < chipPlusSlots
	inNaviPlus := j >= chipPlusSlots && j < naviPlusSlots

	switch {
	case d.IsChipPlus() && !inChipPlus:
		return true
	case d.IsNaviPlus() && !inNaviPlus:
		return true
	case d.IsChipPlus():
		colLen := 3
		if j < 2 {
			colLen = 2
		}

		for _, k := range []int{j + colLen, j + colLen + 1} {
			if slots[k] == 0 {
				continue
			}

			// A chip missing from the map cannot be boosted.
			if t, ok := chips[int(slots[k])-1]; ok && boostable(d, t) {
				return false
			}
		}

		return true
	}

	return false
}

// substituteSlots replaces each chip in slots with one from the same cost
// bucket, shifted up by a Poisson number of buckets and widened downward
// when empty. reject may be nil.
func substituteSlots(c *Context, slots []uint8, reject func(j int) bool) error {
	enc := c.Options.Encounters

	for j, chip := range slots {
		if chip == 0 && !enc.FillChips {
			continue
		}

		base := 0

		if chip != 0 {
			if d, ok := c.Chips[int(chip)-1]; ok {
				base = int(d.MB)
			} else {
				c.Stats.UnknownChips++
				c.Log.Debug("chip not in library, using zero cost", zap.Int("slot", j), zap.Uint8("chip", chip))
			}
		}

		target := max(bucketStep, base+bucketStep*Poisson(c.Rand, enc.UpgradeChipParam))

		pool := lookDown(c.Buckets, target)
		if len(pool) == 0 {
			slots[j] = 0
			c.Stats.SlotsZeroed++
			c.Log.Debug("no chip at or below cost, slot emptied", zap.Int("slot", j), zap.Int("cost", target))

			continue
		}

		v, err := Sample(c.maxRejections(),
			func() uint8 { return uint8(pick(c.Rand, pool) + 1) },
			func(v uint8) bool {
				slots[j] = v

				return reject != nil && reject(j)
			})
		if err != nil {
			return fmt.Errorf("slot %d: %w", j, err)
		}

		slots[j] = v
	}

	return nil
}

func randomizeBCCEncounters(c *Context, data []byte) error {
	if err := loadBCCChips(c, data); err != nil {
		return err
	}

	enc := c.Options.Encounters

	if c.Options.ChipGlobal.RandomizeStartingChips {
		sc, err := records.DecodeAs[*records.StartingChips](data, records.KindStartingChips, 0)
		if err != nil {
			return err
		}

		if err := substituteSlots(c, sc.Chips[:], nil); err != nil {
			return fmt.Errorf("starting chips: %w", err)
		}

		if err := records.Encode(data, records.KindStartingChips, 0, sc); err != nil {
			return err
		}
	}

	if !enc.RandomizeChips && !enc.RandomizeOperators && !enc.RandomizeNavi && !enc.Shuffle {
		return nil
	}

	encs, _, err := records.Collect[*records.EncounterBCC](data, records.KindEncounter)
	if err != nil {
		return err
	}

	order := make([]int, len(encs))
	for i := range order {
		order[i] = i
	}

	if enc.Shuffle {
		c.Rand.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
	}

	navis := classify.NaviChips()

	for dst, src := range order {
		e := encs[src]

		if enc.RandomizeOperators {
			e.Op = uint8(c.Rand.Intn(maxOperator + 1))
		}

		if enc.RandomizeChips {
			reject := func(j int) bool { return enc.SmartAtkPlus && hasBadAtkBooster(c.Chips, e.Chips[:], j) }

			if err := substituteSlots(c, e.Chips[:], reject); err != nil {
				return fmt.Errorf("encounter %d: %w", src, err)
			}
		}

		if enc.RandomizeNavi {
			e.Navi = uint8(pick(c.Rand, navis))
		}

		if err := records.Encode(data, records.KindEncounter, dst, e); err != nil {
			return err
		}

		c.Stats.EncountersWritten++
	}

	return nil
}

// maxOperator is the highest operator portrait index.
const maxOperator = 125

func randomizeBCCNames(c *Context, data []byte) error {
	if !c.Options.Names.RandomizeNames {
		return nil
	}

	pool := c.Options.NamePool

	for _, i := range classify.StandardChips() {
		s, err := records.DecodeAs[*records.WideString](data, records.KindChipName, i)
		if err != nil {
			return err
		}

		name := pick(c.Rand, pool)

		truncated, fallbacks := s.Assign(name)
		if truncated {
			c.Stats.NamesTruncated++
			c.Log.Debug("name truncated", zap.Int("chip", i), zap.String("name", name), zap.Int("max", s.MaxLen()))
		}

		if fallbacks > 0 {
			c.Stats.GlyphFallbacks += fallbacks
			c.Log.Debug("unmapped glyphs in name", zap.Int("chip", i), zap.String("name", name), zap.Int("count", fallbacks))
		}

		if err := records.Encode(data, records.KindChipName, i, s); err != nil {
			return err
		}

		c.Stats.NamesAssigned++
	}

	return nil
}
