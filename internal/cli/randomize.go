package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/drsam94/mmbccr/pkg/rando"
	"github.com/drsam94/mmbccr/pkg/rom"
)

var errInOutSame = errors.New("input and output must differ")

// RandomizeCmd returns the randomize command.
func RandomizeCmd(g *Globals) *Command {
	fs := flag.NewFlagSet("randomize", flag.ContinueOnError)
	fs.Uint64("seed", 0, "Seed to reproduce an earlier run (default: random)")

	return &Command{
		Flags: fs,
		Usage: "randomize <in.gba> <out.gba> [flags]",
		Short: "Randomize a ROM and write the result",
		Long: `Randomize a ROM with the resolved options and write the result to a new file.

The seed used is printed so the run can be reproduced with --seed. The output
file is written atomically: a failed run leaves no output behind.`,
		Examples: []string{
			`randomize bcc.gba out.gba`,
			`randomize bn2.gba out.gba --seed 1234`,
			`-o opts.ini randomize bcc.gba out.gba`,
		},
		Exec: func(_ context.Context, o *IO, args []string) error {
			return execRandomize(o, g, fs, args)
		},
	}
}

func execRandomize(o *IO, g *Globals, fs *flag.FlagSet, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: randomize needs <in> and <out>", errUsage)
	}

	in, out := g.path(args[0]), g.path(args[1])
	if filepath.Clean(in) == filepath.Clean(out) {
		return errInOutSame
	}

	var seed *uint64

	if fs.Changed("seed") {
		v, _ := fs.GetUint64("seed")
		seed = &v
	}

	opts := g.Options
	if err := opts.ReadNamePool(); err != nil {
		return err
	}

	img, err := rom.Load(in)
	if err != nil {
		return err
	}

	g.Log.Info("loaded", zap.String("path", in), zap.Stringer("game", img.Game()), zap.Int("bytes", img.Len()))

	used, stats, err := rando.Randomize(img, opts, seed, g.Log)
	if err != nil {
		return fmt.Errorf("%w (seed %d)", err, used)
	}

	if err := rom.Save(out, img); err != nil {
		return err
	}

	if n := stats.Lossy(); n > 0 {
		o.Warn("%d lossy fallbacks (slots emptied %d, unknown chips %d, names truncated %d, glyph fallbacks %d, shared GMD bytes kept %d, empty pools %d)",
			n, stats.SlotsZeroed, stats.UnknownChips, stats.NamesTruncated, stats.GlyphFallbacks, stats.SharedSkipped, stats.EmptyPools)
	}

	o.Printf("seed=%d\n", used)
	o.Printf("wrote %s\n", out)

	return nil
}
