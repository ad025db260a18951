package cli

import (
	"context"
	"fmt"

	flag "github.com/spf13/pflag"
	"go.uber.org/zap/zapcore"

	"github.com/drsam94/mmbccr/internal/server"
)

// ServeCmd returns the serve command.
func ServeCmd(g *Globals) *Command {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.String("addr", ":8000", "Listen address")
	fs.Int64("max-body", server.DefaultMaxBodyBytes, "Largest accepted request body in bytes")

	return &Command{
		Flags: fs,
		Usage: "serve [flags]",
		Short: "Serve the randomizer over HTTP",
		Long: `Serve the randomizer for the browser front-end until interrupted.

Each request carries its own options; the resolved options here only supply
the chip name pool for requests that randomize names.`,
		Exec: func(ctx context.Context, _ *IO, args []string) error {
			return execServe(ctx, g, fs, args)
		},
	}
}

func execServe(ctx context.Context, g *Globals, fs *flag.FlagSet, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("%w: serve takes no arguments", errUsage)
	}

	addr, _ := fs.GetString("addr")
	maxBody, _ := fs.GetInt64("max-body")

	opts := g.Options
	if err := opts.ReadNamePool(); err != nil {
		return err
	}

	// Request logs are the point of a server's output.
	if g.Level.Level() > zapcore.InfoLevel {
		g.Level.SetLevel(zapcore.InfoLevel)
	}

	h := server.NewHandler(server.Config{
		Logger:       g.Log,
		NamePool:     opts.NamePool,
		MaxBodyBytes: maxBody,
	})

	return server.ListenAndServe(ctx, addr, h, g.Log)
}
