// Package options holds the randomizer options document: typed sections with
// documented defaults, JSONC and INI loaders, and layered resolution.
package options

import (
	"bufio"
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/drsam94/mmbccr/pkg/records"
)

// Errors returned by loading and validation.
var (
	ErrInvalid      = errors.New("options: invalid")
	ErrFileNotFound = errors.New("options: file not found")
	ErrFileRead     = errors.New("options: cannot read file")
)

// Options is the full options document. Maps hold field name -> variance
// percentage.
type Options struct {
	ChipRange  map[string]int `json:"chipRange,omitempty" jsonschema:"description=BCC standard chip field variance percentages"`
	NaviRange  map[string]int `json:"naviRange,omitempty" jsonschema:"description=BCC navi chip field variance percentages"`
	ChipGlobal ChipGlobal     `json:"chipGlobal"`
	Names      Names          `json:"names"`
	Encounters Encounters     `json:"encounters"`

	BN2Chips map[string]int `json:"bn2Chips,omitempty" jsonschema:"description=BN2 chip field variance percentages"`
	Viruses  Viruses        `json:"viruses"`
	Shops    Shops          `json:"shops"`
	Folders  Folders        `json:"folders"`
	Drops    Drops          `json:"drops"`
	GMD      GMD            `json:"gmd"`
	Engine   Engine         `json:"engine"`

	// NamePool is the content of Names.ChipNames, filled by ReadNamePool.
	NamePool []string `json:"-"`

	// Sources tracks which files were loaded.
	Sources Sources `json:"-"`
}

type ChipGlobal struct {
	PreserveOrdering       bool `json:"preserveOrdering" ini:"preserveOrdering"`
	RandomizeStartingChips bool `json:"randomizeStartingChips" ini:"randomizeStartingChips"`
}

type Names struct {
	RandomizeNames bool   `json:"randomizeNames" ini:"randomizeNames"`
	ChipNames      string `json:"chipNames,omitempty" ini:"chipNames" jsonschema:"description=file with one chip name per line"`
}

// Encounters covers both games. The first block is BCC, the second BN2.
type Encounters struct {
	RandomizeChips     bool    `json:"randomizeChips" ini:"randomizeChips"`
	SmartAtkPlus       bool    `json:"smartAtkPlus" ini:"smartAtkPlus"`
	RandomizeOperators bool    `json:"randomizeOperators" ini:"randomizeOperators"`
	FillChips          bool    `json:"fillChips" ini:"fillChips"`
	RandomizeNavi      bool    `json:"randomizeNavi" ini:"randomizeNavi"`
	UpgradeChipParam   float64 `json:"upgradeChipParam" ini:"upgradeChipParam" jsonschema:"minimum=0"`
	Shuffle            bool    `json:"shuffle" ini:"shuffle"`

	RandomizeFixed    bool `json:"randomizeFixed" ini:"randomizeFixed"`
	RandomizeNet      bool `json:"randomizeNet" ini:"randomizeNet"`
	RandomizePanels   bool `json:"randomizePanels" ini:"randomizePanels"`
	RandomizeTutorial bool `json:"randomizeTutorial" ini:"randomizeTutorial"`
	RandomizeNavis    bool `json:"randomizeNavis" ini:"randomizeNavis"`
}

type Viruses struct {
	HPVariance int `json:"hpVariance" ini:"hpVariance" jsonschema:"minimum=0"`
}

type Shops struct {
	Randomize     bool `json:"randomize" ini:"randomize"`
	PriceVariance int  `json:"priceVariance" ini:"priceVariance" jsonschema:"minimum=0"`
}

type Folders struct {
	Randomize bool `json:"randomize" ini:"randomize"`
}

type Drops struct {
	Randomize     bool `json:"randomize" ini:"randomize"`
	ZennyVariance int  `json:"zennyVariance" ini:"zennyVariance" jsonschema:"minimum=0"`
}

type GMD struct {
	Randomize     bool `json:"randomize" ini:"randomize"`
	ZennyVariance int  `json:"zennyVariance" ini:"zennyVariance" jsonschema:"minimum=0"`
}

type Engine struct {
	// MaxRejections bounds every rejection-sampling loop.
	MaxRejections int `json:"maxRejections" ini:"maxRejections" jsonschema:"minimum=1"`
	// UnverifiedLayouts allows the BN2 shop, folder, drop and GMD passes,
	// whose byte layouts have not been checked against a real image.
	UnverifiedLayouts bool `json:"unverifiedLayouts" ini:"unverifiedLayouts"`
}

// Sources tracks which files contributed to the resolved options.
type Sources struct {
	Global   string
	Project  string
	Explicit string
}

// Default returns the documented defaults.
func Default() Options {
	return Options{
		ChipRange:  map[string]int{},
		NaviRange:  map[string]int{},
		ChipGlobal: ChipGlobal{RandomizeStartingChips: true},
		BN2Chips:   map[string]int{},
		Engine:     Engine{MaxRejections: 10000},
	}
}

// Validate rejects unknown variance field names and out-of-range numbers.
func (o *Options) Validate() error {
	var errs []error

	check := func(section string, m map[string]int, known []string) {
		for _, name := range slices.Sorted(maps.Keys(m)) {
			if !slices.ContainsFunc(known, func(k string) bool { return strings.EqualFold(k, name) }) {
				errs = append(errs, fmt.Errorf("%s: unknown field %q (known: %s)", section, name, strings.Join(known, ", ")))
			}

			if m[name] < 0 {
				errs = append(errs, fmt.Errorf("%s.%s: negative variance %d", section, name, m[name]))
			}
		}
	}

	check("chipRange", o.ChipRange, records.FieldNames(records.ChipBCCFields))
	check("naviRange", o.NaviRange, records.FieldNames(records.ChipBCCFields))
	check("bn2Chips", o.BN2Chips, records.FieldNames(records.ChipBN2Fields))

	if o.Encounters.UpgradeChipParam < 0 {
		errs = append(errs, fmt.Errorf("encounters.upgradeChipParam: negative %v", o.Encounters.UpgradeChipParam))
	}

	for name, v := range map[string]int{
		"viruses.hpVariance":  o.Viruses.HPVariance,
		"shops.priceVariance": o.Shops.PriceVariance,
		"drops.zennyVariance": o.Drops.ZennyVariance,
		"gmd.zennyVariance":   o.GMD.ZennyVariance,
	} {
		if v < 0 {
			errs = append(errs, fmt.Errorf("%s: negative variance %d", name, v))
		}
	}

	if o.Engine.MaxRejections < 1 {
		errs = append(errs, fmt.Errorf("engine.maxRejections: must be positive, got %d", o.Engine.MaxRejections))
	}

	if o.Names.RandomizeNames && o.Names.ChipNames == "" && len(o.NamePool) == 0 {
		errs = append(errs, errors.New("names: randomizeNames needs chipNames"))
	}

	if len(errs) > 0 {
		slices.SortFunc(errs, func(a, b error) int { return strings.Compare(a.Error(), b.Error()) })

		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}

	return nil
}

// ReadNamePool loads Names.ChipNames into NamePool: one name per line,
// surrounding space trimmed, blank lines skipped. It is a no-op when name
// randomization is off or the pool is already filled.
func (o *Options) ReadNamePool() error {
	if !o.Names.RandomizeNames || len(o.NamePool) > 0 {
		return nil
	}

	f, err := os.Open(o.Names.ChipNames)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrFileRead, o.Names.ChipNames, err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if name := strings.TrimSpace(sc.Text()); name != "" {
			o.NamePool = append(o.NamePool, name)
		}
	}

	if err := sc.Err(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrFileRead, o.Names.ChipNames, err)
	}

	if len(o.NamePool) == 0 {
		return fmt.Errorf("%w: %s has no names", ErrInvalid, o.Names.ChipNames)
	}

	return nil
}
