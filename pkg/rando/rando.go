// Package rando mutates a ROM image according to the options document.
//
// A run is a fixed sequence of passes per game. Each pass decodes records
// from the working copy, changes them and encodes them back one at a time.
// The caller's image is only updated when every pass succeeds.
package rando

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/drsam94/mmbccr/internal/options"
	"github.com/drsam94/mmbccr/pkg/rom"
)

type pass struct {
	name string
	run  func(c *Context, data []byte) error
}

var bccPasses = []pass{
	{"chips", randomizeBCCChips},
	{"encounters", randomizeBCCEncounters},
	{"names", randomizeBCCNames},
}

var bn2Passes = []pass{
	{"chips", randomizeBN2Chips},
	{"viruses", randomizeBN2Viruses},
	{"metadata", rebuildBN2Metadata},
	{"encounters", randomizeBN2Encounters},
	{"shops", randomizeBN2Shops},
	{"folders", randomizeBN2Folders},
	{"drops", randomizeBN2Drops},
	{"gmd", randomizeBN2GMD},
}

// NewSeed draws a seed from the operating system's entropy source.
func NewSeed() uint64 {
	var b [8]byte

	_, _ = crand.Read(b[:])

	return binary.LittleEndian.Uint64(b[:])
}

// Randomize runs every pass for img's game and returns the seed it used.
// A nil seed draws a fresh one. The same seed, options and input bytes
// always produce the same output. On error img is left untouched.
func Randomize(img *rom.Image, opts options.Options, seed *uint64, logger *zap.Logger) (uint64, Stats, error) {
	used := NewSeed()
	if seed != nil {
		used = *seed
	}

	game, err := rom.Identify(img.Bytes())
	if err != nil {
		return used, Stats{}, err
	}

	if err := opts.Validate(); err != nil {
		return used, Stats{}, err
	}

	if err := checkSupported(game, opts); err != nil {
		return used, Stats{}, err
	}

	passes := bccPasses
	if game == rom.GameBN2 {
		passes = bn2Passes
	}

	c := NewContext(used, opts, logger)
	c.Log = c.Log.With(zap.Stringer("game", game), zap.Uint64("seed", used))

	work := img.Clone()
	start := time.Now()

	for _, p := range passes {
		if err := p.run(c, work.Bytes()); err != nil {
			return used, c.Stats, fmt.Errorf("%s pass: %w", p.name, err)
		}

		c.Log.Debug("pass done", zap.String("pass", p.name), zap.Object("stats", c.Stats))
	}

	copy(img.Bytes(), work.Bytes())

	c.Log.Info("randomized",
		zap.Duration("took", time.Since(start)),
		zap.Int("lossy", c.Stats.Lossy()),
		zap.Object("stats", c.Stats))

	return used, c.Stats, nil
}

func checkSupported(game rom.Game, opts options.Options) error {
	if game == rom.GameBN2 && opts.Encounters.RandomizePanels {
		return fmt.Errorf("%w: encounters.randomizePanels", ErrUnsupportedOption)
	}

	if game == rom.GameBN2 && !opts.Engine.UnverifiedLayouts {
		if name, ok := placeholderPass(opts); ok {
			return fmt.Errorf("%w: %s needs engine.unverifiedLayouts", ErrUnsupportedOption, name)
		}
	}

	if game == rom.GameBCC && opts.Names.RandomizeNames && len(opts.NamePool) == 0 {
		return fmt.Errorf("%w: names.randomizeNames without a loaded name pool", ErrUnsupportedOption)
	}

	return nil
}

// placeholderPass names the first enabled BN2 pass whose record layout is
// a placeholder.
func placeholderPass(opts options.Options) (string, bool) {
	switch {
	case opts.Shops.Randomize || opts.Shops.PriceVariance > 0:
		return "shops", true
	case opts.Folders.Randomize:
		return "folders", true
	case opts.Drops.Randomize || opts.Drops.ZennyVariance > 0:
		return "drops", true
	case opts.GMD.Randomize || opts.GMD.ZennyVariance > 0:
		return "gmd", true
	default:
		return "", false
	}
}
