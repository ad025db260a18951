package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	flag "github.com/spf13/pflag"
)

// Command is one mmrando subcommand. Help output for both the command list
// and "mmrando <cmd> --help" is generated from these fields.
type Command struct {
	Flags *flag.FlagSet

	// Usage follows "mmrando" in help and starts with the command name,
	// e.g. "inspect <rom> [kind] [flags]".
	Usage string

	Short string

	// Long replaces Short in command help when set.
	Long string

	// Examples are full invocations without the leading "mmrando".
	Examples []string

	// Exec runs after flags are parsed. Returning an error wrapping errUsage
	// also prints the usage line.
	Exec func(ctx context.Context, o *IO, args []string) error
}

// Name is the first word of Usage.
func (c *Command) Name() string {
	name, _, _ := strings.Cut(c.Usage, " ")

	return name
}

// HelpLine is the command's row in the global command list.
func (c *Command) HelpLine() string {
	return fmt.Sprintf("  %-34s %s", c.Usage, c.Short)
}

// Run parses flags and executes the command, returning the exit code.
func (c *Command) Run(ctx context.Context, o *IO, args []string) int {
	c.Flags.SetOutput(io.Discard)

	if err := c.Flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			c.writeHelp(o.out, true)

			return 0
		}

		o.ErrPrintln("error:", err)
		o.ErrPrintln()
		c.writeHelp(o.errOut, false)

		return 1
	}

	if help, _ := c.Flags.GetBool("help"); help {
		c.writeHelp(o.out, true)

		return 0
	}

	err := c.Exec(ctx, o, c.Flags.Args())

	switch {
	case err == nil:
		return o.Finish()
	case errors.Is(err, errUsage):
		o.ErrPrintln("error:", err)
		o.ErrPrintln("Usage: mmrando", c.Usage)
	default:
		o.ErrPrintln("error:", err)
	}

	return 1
}

// writeHelp prints usage and flags, plus the description and examples when
// full is set.
func (c *Command) writeHelp(w io.Writer, full bool) {
	fprintln(w, "Usage: mmrando", c.Usage)

	if full {
		desc := c.Long
		if desc == "" {
			desc = c.Short
		}

		fprintln(w)
		fprintln(w, desc)
	}

	if c.Flags.HasFlags() {
		var buf strings.Builder

		c.Flags.SetOutput(&buf)
		c.Flags.PrintDefaults()
		c.Flags.SetOutput(io.Discard)

		fprintln(w)
		fprintln(w, "Flags:")
		_, _ = io.WriteString(w, buf.String())
	}

	if full && len(c.Examples) > 0 {
		fprintln(w)
		fprintln(w, "Examples:")

		for _, ex := range c.Examples {
			fprintln(w, "  mmrando", ex)
		}
	}
}
