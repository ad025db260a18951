package cli

import (
	"context"
	"errors"
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/drsam94/mmbccr/internal/search"
	"github.com/drsam94/mmbccr/pkg/rom"
)

var errModeConflict = errors.New("--delta and --variable cannot be used together")

// SearchCmd returns the search command.
func SearchCmd(g *Globals) *Command {
	fs := flag.NewFlagSet("search", flag.ContinueOnError)
	fs.Int("stride", 1, "Bytes between matched positions; -1 tries 1 through 63")
	fs.Bool("delta", false, "Pattern values are differences between matched bytes (300 any, 400 differs)")
	fs.Bool("rooted", false, "Delta values are relative to the first matched byte")
	fs.Bool("middle-start", false, "Delta matches may not start on 0x00 or 0xFF")
	fs.Bool("variable", false, "Pattern values are variable names (0 matches anything)")
	fs.Bool("hex", false, "Pattern values are hexadecimal")

	return &Command{
		Flags: fs,
		Usage: "search <rom> <value>... [flags]",
		Short: "Find byte patterns in a ROM",
		Long: `Find byte patterns in a ROM and print the offset of every match.

Use -- before negative delta values so they are not read as flags.`,
		Examples: []string{
			`search bcc.gba 42 41 54 --hex`,
			`search bn2.gba --delta --rooted -- 1 2 300`,
			`search bn2.gba --variable --stride -1 1 2 1`,
		},
		Exec: func(_ context.Context, o *IO, args []string) error {
			return execSearch(o, g, fs, args)
		},
	}
}

func execSearch(o *IO, g *Globals, fs *flag.FlagSet, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("%w: search needs <rom> and at least one value", errUsage)
	}

	delta, _ := fs.GetBool("delta")
	variable, _ := fs.GetBool("variable")

	if delta && variable {
		return errModeConflict
	}

	hex, _ := fs.GetBool("hex")

	pattern, err := search.ParsePattern(args[1:], hex)
	if err != nil {
		return err
	}

	opts := search.Options{Mode: search.Exact}

	switch {
	case delta:
		opts.Mode = search.Delta
	case variable:
		opts.Mode = search.Variable
	}

	opts.Rooted, _ = fs.GetBool("rooted")
	opts.MiddleStart, _ = fs.GetBool("middle-start")
	opts.Stride, _ = fs.GetInt("stride")

	m, err := rom.Map(g.path(args[0]))
	if err != nil {
		return err
	}

	defer func() { _ = m.Close() }()

	var hits []int

	if opts.Stride == -1 {
		var stride int

		stride, hits, err = search.Probe(m.Bytes(), pattern, opts)
		if err != nil {
			return err
		}

		if stride == 0 {
			o.Warn("no match at any stride up to %d", search.MaxProbeStride)

			return nil
		}

		o.Printf("stride=%d\n", stride)
	} else {
		hits, err = search.Find(m.Bytes(), pattern, opts)
		if err != nil {
			return err
		}
	}

	for _, h := range hits {
		o.Printf("%#x\n", h)
	}

	return nil
}
