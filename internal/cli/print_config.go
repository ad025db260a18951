package cli

import (
	"context"
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/drsam94/mmbccr/internal/options"
)

// PrintConfigCmd returns the print-config command.
func PrintConfigCmd(g *Globals) *Command {
	return &Command{
		Flags: flag.NewFlagSet("print-config", flag.ContinueOnError),
		Usage: "print-config",
		Short: "Show resolved options",
		Long:  "Display the effective randomizer options as JSON and which files they were loaded from.",
		Exec: func(_ context.Context, o *IO, args []string) error {
			if len(args) != 0 {
				return fmt.Errorf("%w: print-config takes no arguments", errUsage)
			}

			return execPrintConfig(o, g)
		},
	}
}

func execPrintConfig(o *IO, g *Globals) error {
	text, err := g.Options.JSON()
	if err != nil {
		return err
	}

	o.Println(string(text))
	o.Println("")
	o.Println("# sources")

	src := g.Options.Sources
	if src == (options.Sources{}) {
		o.Println("(defaults only)")

		return nil
	}

	if src.Global != "" {
		o.Println("global_options=" + src.Global)
	}

	if src.Project != "" {
		o.Println("project_options=" + src.Project)
	}

	if src.Explicit != "" {
		o.Println("explicit_options=" + src.Explicit)
	}

	return nil
}

// SchemaCmd returns the schema command.
func SchemaCmd(_ *Globals) *Command {
	return &Command{
		Flags: flag.NewFlagSet("schema", flag.ContinueOnError),
		Usage: "schema",
		Short: "Print the JSON Schema of the options file",
		Exec: func(_ context.Context, o *IO, _ []string) error {
			out, err := options.SchemaJSON()
			if err != nil {
				return err
			}

			o.Println(string(out))

			return nil
		},
	}
}
