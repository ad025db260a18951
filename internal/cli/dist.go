package cli

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"

	flag "github.com/spf13/pflag"
	"pgregory.net/rand"

	"github.com/drsam94/mmbccr/pkg/rando"
)

var errBadDistribution = errors.New("distribution must be poisson or uniform")

// DistCmd returns the dist command.
func DistCmd(_ *Globals) *Command {
	fs := flag.NewFlagSet("dist", flag.ContinueOnError)
	fs.IntP("trials", "n", 1000, "Number of draws")
	fs.Float64P("param", "p", 1, "Poisson mean, or uniform variance in percent")
	fs.Uint64("seed", 0, "Seed (default: random)")

	return &Command{
		Flags: fs,
		Usage: "dist <poisson|uniform> [flags]",
		Short: "Print a histogram of randomizer draws",
		Long: `Print a histogram of draws from one of the randomizer's distributions,
one "<value>: <count>" line per value in ascending order.

uniform perturbs a base of 100 by --param percent, the way chip fields are
perturbed. poisson draws with mean --param, the way encounter chip upgrades are.`,
		Examples: []string{
			`dist poisson -p 0.5 -n 10000`,
			`dist uniform -p 20 --seed 7`,
		},
		Exec: func(_ context.Context, o *IO, args []string) error {
			return execDist(o, fs, args)
		},
	}
}

func execDist(o *IO, fs *flag.FlagSet, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: dist needs a distribution name", errUsage)
	}

	trials, _ := fs.GetInt("trials")
	if trials < 1 {
		return errors.New("--trials must be positive")
	}

	param, _ := fs.GetFloat64("param")
	if param < 0 {
		return errors.New("--param must be non-negative")
	}

	seed := rando.NewSeed()
	if fs.Changed("seed") {
		seed, _ = fs.GetUint64("seed")
	}

	rng := rand.New(seed)

	var draw func() int

	switch args[0] {
	case "poisson":
		draw = func() int { return rando.Poisson(rng, param) }
	case "uniform":
		draw = func() int { return rando.Perturb(rng, 100, int(param), 0, rando.MaxValue) }
	default:
		return fmt.Errorf("%w: %q", errBadDistribution, args[0])
	}

	histogram := map[int]int{}
	for range trials {
		histogram[draw()]++
	}

	for _, k := range slices.Sorted(maps.Keys(histogram)) {
		o.Printf("%d: %d\n", k, histogram[k])
	}

	return nil
}
