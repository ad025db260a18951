package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	flag "github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/drsam94/mmbccr/internal/options"
)

const helpFlag = "--help"

var errUsage = errors.New("usage")

// Globals is the state shared by every command.
type Globals struct {
	WorkDir string
	Env     map[string]string
	In      io.Reader
	Options options.Options
	Log     *zap.Logger
	Level   zap.AtomicLevel
}

// Run is the main entry point. Returns exit code. A signal on sigCh cancels
// the context handed to the running command.
func Run(in io.Reader, out io.Writer, errOut io.Writer, args []string, env map[string]string, sigCh <-chan os.Signal) int {
	globalFlags := newGlobalFlagSet()

	if len(args) < 2 {
		printUsage(out, globalFlags, nil)

		return 0
	}

	if err := globalFlags.Parse(args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			printUsage(out, globalFlags, nil)

			return 0
		}

		fprintln(errOut, "error:", err)
		fprintln(errOut)
		printGlobalFlags(errOut, globalFlags)

		return 1
	}

	rest := globalFlags.Args()

	if help, _ := globalFlags.GetBool("help"); help || len(rest) == 0 {
		printUsage(out, globalFlags, nil)

		return 0
	}

	workDir, _ := globalFlags.GetString("cwd")
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			fprintln(errOut, "error: cannot get working directory:", err)

			return 1
		}

		workDir = wd
	}

	verbosity, _ := globalFlags.GetCount("verbose")
	level := zap.NewAtomicLevelAt(levelFor(verbosity))

	optionsPath, _ := globalFlags.GetString("options")

	opts, err := options.Load(options.LoadInput{WorkDir: workDir, Path: optionsPath, Env: env})
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	g := &Globals{
		WorkDir: workDir,
		Env:     env,
		In:      in,
		Options: opts,
		Log:     newLogger(errOut, level),
		Level:   level,
	}

	defer func() { _ = g.Log.Sync() }()

	commands := allCommands(g)

	name := rest[0]
	if name == "help" {
		printUsage(out, globalFlags, commands)

		return 0
	}

	cmd, ok := findCommand(commands, name)
	if !ok {
		fprintln(errOut, "error: unknown command:", name)
		printUsage(errOut, globalFlags, commands)

		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if sigCh != nil {
		go func() {
			select {
			case <-sigCh:
				cancel()
			case <-ctx.Done():
			}
		}()
	}

	return cmd.Run(ctx, NewIO(out, errOut), rest[1:])
}

// path resolves p against the working directory.
func (g *Globals) path(p string) string {
	if filepath.IsAbs(p) {
		return p
	}

	return filepath.Join(g.WorkDir, p)
}

func allCommands(g *Globals) []*Command {
	return []*Command{
		RandomizeCmd(g),
		InspectCmd(g),
		SearchCmd(g),
		StrconvCmd(g),
		DistCmd(g),
		ServeCmd(g),
		SchemaCmd(g),
		PrintConfigCmd(g),
	}
}

func findCommand(commands []*Command, name string) (*Command, bool) {
	for _, c := range commands {
		if c.Name() == name {
			return c, true
		}
	}

	return nil, false
}

func newGlobalFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("mmrando", flag.ContinueOnError)
	fs.SetInterspersed(false)
	fs.SetOutput(io.Discard)
	fs.StringP("cwd", "C", "", "Run as if started in `dir`")
	fs.StringP("options", "o", "", "Use the options `file` (JSON or INI) on top of the global and project files")
	fs.CountP("verbose", "v", "Log more (-v info, -vv debug)")
	fs.BoolP("help", "h", false, "Show help")

	return fs
}

func levelFor(verbosity int) zapcore.Level {
	switch {
	case verbosity >= 2:
		return zapcore.DebugLevel
	case verbosity == 1:
		return zapcore.InfoLevel
	default:
		return zapcore.WarnLevel
	}
}

// newLogger writes human-readable logs to errOut so stdout stays clean for
// command output.
func newLogger(errOut io.Writer, level zap.AtomicLevel) *zap.Logger {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.TimeKey = ""

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(cfg), zapcore.AddSync(errOut), level)

	return zap.New(core)
}

func fprintln(w io.Writer, a ...any) {
	_, _ = fmt.Fprintln(w, a...)
}

func printGlobalFlags(w io.Writer, fs *flag.FlagSet) {
	fprintln(w, "Global flags:")

	var buf strings.Builder
	fs.SetOutput(&buf)
	fs.PrintDefaults()
	fs.SetOutput(io.Discard)

	_, _ = io.WriteString(w, buf.String())
}

func printUsage(w io.Writer, fs *flag.FlagSet, commands []*Command) {
	fprintln(w, `mmrando - Mega Man Battle Chip Challenge and Battle Network 2 randomizer

Usage: mmrando [global flags] <command> [args]`)
	fprintln(w)
	printGlobalFlags(w, fs)
	fprintln(w)
	fprintln(w, "Commands:")

	if commands == nil {
		commands = allCommands(&Globals{})
	}

	for _, c := range commands {
		fprintln(w, c.HelpLine())
	}

	fprintln(w)
	fprintln(w, "Run 'mmrando <command> "+helpFlag+"' for command details.")
}
