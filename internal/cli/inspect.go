package cli

import (
	"context"
	"errors"
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/drsam94/mmbccr/pkg/records"
	"github.com/drsam94/mmbccr/pkg/rom"
)

var (
	errWrongGame = errors.New("kind belongs to another game")
	errStopScan  = errors.New("stop")
)

// InspectCmd returns the inspect command.
func InspectCmd(g *Globals) *Command {
	fs := flag.NewFlagSet("inspect", flag.ContinueOnError)
	fs.Int("index", 0, "Print only the record at this index")
	fs.Bool("offsets", false, "Print each record's offset")
	fs.Bool("repl", false, "Open an interactive prompt instead of printing")

	return &Command{
		Flags: fs,
		Usage: "inspect <rom> [kind] [flags]",
		Short: "Print decoded records of a ROM",
		Long: `Print every record of a kind as "<index>: <record>".

Without a kind, list the kinds the ROM's game defines. Kind names ignore
case and underscores (chipbn2 and Chip_BN2 are the same kind).`,
		Examples: []string{
			`inspect bcc.gba chip`,
			`inspect bn2.gba ChipName_BN2 --index 5 --offsets`,
			`inspect bn2.gba --repl`,
		},
		Exec: func(ctx context.Context, o *IO, args []string) error {
			return execInspect(ctx, o, g, fs, args)
		},
	}
}

func execInspect(ctx context.Context, o *IO, g *Globals, fs *flag.FlagSet, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return fmt.Errorf("%w: inspect needs <rom> and an optional kind", errUsage)
	}

	m, err := rom.Map(g.path(args[0]))
	if err != nil {
		return err
	}

	defer func() { _ = m.Close() }()

	if repl, _ := fs.GetBool("repl"); repl {
		return runREPL(ctx, o, g, m.Bytes(), m.Game())
	}

	if len(args) == 1 {
		printKinds(o, m.Game())

		return nil
	}

	kind, err := kindFor(m.Game(), args[1])
	if err != nil {
		return err
	}

	withOffsets, _ := fs.GetBool("offsets")

	if fs.Changed("index") {
		index, _ := fs.GetInt("index")

		return printRecord(o, m.Bytes(), kind, index, withOffsets)
	}

	return printRecords(o, m.Bytes(), kind, withOffsets)
}

func kindFor(game rom.Game, name string) (records.Kind, error) {
	kind, err := records.ParseKind(name)
	if err != nil {
		return 0, err
	}

	d, err := records.Lookup(kind)
	if err != nil {
		return 0, err
	}

	if d.Game != game {
		return 0, fmt.Errorf("%w: %s is a %s kind, this is %s", errWrongGame, kind, d.Game, game)
	}

	return kind, nil
}

func printKinds(o *IO, game rom.Game) {
	for _, k := range records.Kinds(game) {
		d, _ := records.Lookup(k)

		layout := "variable"
		if d.Fixed() {
			layout = fmt.Sprintf("stride %d", d.Stride)
		}

		o.Printf("%-20s count=%d offset=%#x %s\n", k, d.Count, d.Offset, layout)
	}
}

func printRecords(o *IO, data []byte, kind records.Kind, withOffsets bool) error {
	return records.Scan(data, kind, func(i, off int, rec records.Record) error {
		printLine(o, i, off, rec, withOffsets)

		return nil
	})
}

func printRecord(o *IO, data []byte, kind records.Kind, index int, withOffsets bool) error {
	d, err := records.Lookup(kind)
	if err != nil {
		return err
	}

	if index < 0 || index >= d.Count {
		return fmt.Errorf("%w: %s index %d of %d", records.ErrIndexOutOfRange, kind, index, d.Count)
	}

	if d.Fixed() {
		rec, err := records.Decode(data, kind, index)
		if err != nil {
			return err
		}

		off, err := records.OffsetOf(kind, index)
		if err != nil {
			return err
		}

		printLine(o, index, off, rec, withOffsets)

		return nil
	}

	found := false

	err = records.Scan(data, kind, func(i, off int, rec records.Record) error {
		if i < index {
			return nil
		}

		printLine(o, i, off, rec, withOffsets)
		found = true

		return errStopScan
	})
	if err != nil && !errors.Is(err, errStopScan) {
		return err
	}

	if !found {
		return fmt.Errorf("%w: %s index %d", records.ErrIndexOutOfRange, kind, index)
	}

	return nil
}

func printLine(o *IO, index, off int, rec records.Record, withOffsets bool) {
	if withOffsets {
		o.Printf("%d @%#x: %s\n", index, off, rec)

		return
	}

	o.Printf("%d: %s\n", index, rec)
}
