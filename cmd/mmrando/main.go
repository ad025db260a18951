// Package main provides mmrando, a randomizer for Mega Man Battle Chip
// Challenge and Mega Man Battle Network 2 ROM images.
package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/drsam94/mmbccr/internal/cli"
)

func main() {
	environ := os.Environ()
	env := make(map[string]string, len(environ))

	for _, e := range environ {
		if k, v, ok := strings.Cut(e, "="); ok {
			env[k] = v
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	os.Exit(cli.Run(os.Stdin, os.Stdout, os.Stderr, os.Args, env, sigCh))
}
