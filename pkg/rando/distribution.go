package rando

import (
	"fmt"
	"math"

	"pgregory.net/rand"
)

// MaxValue caps perturbed 16-bit fields at the largest multiple of ten they
// hold.
const MaxValue = 65530

// maxPoissonSteps bounds the CDF walk for large parameters.
const maxPoissonSteps = 1000

// Perturb draws uniformly from [max(floor+10, base-v), min(limit, base+v)]
// where v is pct percent of base, and rounds the result to a multiple of
// ten (half to even). A zero base stays zero. When the low bound exceeds the
// high bound the low bound is used, still capped at limit.
func Perturb(rng *rand.Rand, base, pct, floor, limit int) int {
	if base == 0 {
		return 0
	}

	v := float64(base) * float64(pct) / 100
	low := int(math.RoundToEven(max(float64(10+floor), float64(base)-v)))
	high := int(math.RoundToEven(min(float64(limit), float64(base)+v)))

	if low > high {
		return min(roundTens(low), limit)
	}

	return min(roundTens(low+rng.Intn(high-low+1)), limit)
}

func roundTens(x int) int {
	return int(math.RoundToEven(float64(x)/10)) * 10
}

// capFor is the largest multiple of ten a field of the given maximum holds.
func capFor(fieldMax int) int {
	return min(fieldMax-fieldMax%10, MaxValue)
}

// Poisson draws from a Poisson distribution with parameter lambda by
// inverting the CDF. It never returns a negative count.
func Poisson(rng *rand.Rand, lambda float64) int {
	if lambda <= 0 {
		return 0
	}

	p := rng.Float64()
	term := math.Exp(-lambda)
	cdf := term
	k := 0

	for cdf < p && k < maxPoissonSteps {
		k++
		term *= lambda / float64(k)
		cdf += term
	}

	return k
}

// Sample draws candidates until reject returns false, giving up after limit
// rejections.
func Sample[T any](limit int, draw func() T, reject func(T) bool) (T, error) {
	for range limit {
		v := draw()
		if !reject(v) {
			return v, nil
		}
	}

	var zero T

	return zero, fmt.Errorf("%w: no candidate accepted after %d draws", ErrSamplingExhausted, limit)
}

// pick returns a uniformly chosen element of xs, which must not be empty.
func pick[T any](rng *rand.Rand, xs []T) T {
	return xs[rng.Intn(len(xs))]
}
