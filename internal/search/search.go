// Package search finds byte patterns in raw ROM images. It is the tool used
// to locate tables whose layout is only partly known: exact byte runs, runs
// described by the differences between neighbouring bytes, and runs where
// only the equality structure of the bytes matters.
package search

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/zyedidia/generic/mapset"
)

// Mode selects how pattern values are compared against image bytes.
type Mode int

const (
	// Exact matches each pattern value against one byte.
	Exact Mode = iota
	// Delta treats each pattern value as the difference between two matched
	// bytes. A delta pattern of n values matches n+1 bytes.
	Delta
	// Variable treats pattern values as variable names: equal names match
	// equal bytes and distinct names match distinct bytes.
	Variable
)

func (m Mode) String() string {
	switch m {
	case Exact:
		return "exact"
	case Delta:
		return "delta"
	case Variable:
		return "variable"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Delta pattern values with special meaning.
const (
	AnyDelta = 300
	Differs  = 400
)

// AnyVar is the Variable pattern value that matches any byte.
const AnyVar = 0

// MaxProbeStride bounds the strides tried by Probe.
const MaxProbeStride = 63

var (
	ErrEmptyPattern = errors.New("search: empty pattern")
	ErrBadPattern   = errors.New("search: bad pattern value")
	ErrBadStride    = errors.New("search: stride must be positive")
)

// Options controls a search.
type Options struct {
	Mode Mode
	// Stride is the distance in bytes between matched positions.
	Stride int
	// Rooted makes delta values relative to the first matched byte instead
	// of the previous one.
	Rooted bool
	// MiddleStart rejects delta matches whose first byte is 0x00 or 0xFF.
	MiddleStart bool
}

// ParsePattern converts command-line pattern words to values, in base 16
// when hex is set.
func ParsePattern(words []string, hex bool) ([]int, error) {
	base := 10
	if hex {
		base = 16
	}

	out := make([]int, 0, len(words))

	for _, w := range words {
		v, err := strconv.ParseInt(w, base, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrBadPattern, w)
		}

		out = append(out, int(v))
	}

	return out, nil
}

// Find returns the offsets of every non-overlapping match of pattern in data,
// in ascending order.
func Find(data []byte, pattern []int, o Options) ([]int, error) {
	if err := o.validate(pattern); err != nil {
		return nil, err
	}

	span := len(pattern)
	if o.Mode == Delta {
		span++
	}

	var hits []int

	for start := 0; start < len(data); {
		if o.matchAt(data, pattern, start, span) {
			hits = append(hits, start)
			start += span * o.Stride

			continue
		}

		start++
	}

	return hits, nil
}

// Probe tries strides 1 through MaxProbeStride and returns the first stride
// with at least one match. A stride of 0 means nothing matched.
func Probe(data []byte, pattern []int, o Options) (int, []int, error) {
	for stride := 1; stride <= MaxProbeStride; stride++ {
		o.Stride = stride

		hits, err := Find(data, pattern, o)
		if err != nil {
			return 0, nil, err
		}

		if len(hits) > 0 {
			return stride, hits, nil
		}
	}

	return 0, nil, nil
}

func (o Options) validate(pattern []int) error {
	if len(pattern) == 0 {
		return ErrEmptyPattern
	}

	if o.Stride < 1 {
		return fmt.Errorf("%w: %d", ErrBadStride, o.Stride)
	}

	for _, v := range pattern {
		ok := true

		switch o.Mode {
		case Exact:
			ok = v >= 0 && v <= 0xFF
		case Delta:
			ok = v == AnyDelta || v == Differs || (v >= -0xFF && v <= 0xFF)
		case Variable:
			ok = v >= 0
		default:
			return fmt.Errorf("%w: unknown mode %d", ErrBadPattern, int(o.Mode))
		}

		if !ok {
			return fmt.Errorf("%w: %d in %s mode", ErrBadPattern, v, o.Mode)
		}
	}

	return nil
}

func (o Options) matchAt(data []byte, pattern []int, start, span int) bool {
	if start+(span-1)*o.Stride >= len(data) {
		return false
	}

	at := func(k int) int { return int(data[start+k*o.Stride]) }

	switch o.Mode {
	case Exact:
		for k, want := range pattern {
			if at(k) != want {
				return false
			}
		}

	case Delta:
		if o.MiddleStart && (at(0) == 0 || at(0) == 0xFF) {
			return false
		}

		for k := 1; k < span; k++ {
			prev := at(k - 1)
			if o.Rooted {
				prev = at(0)
			}

			switch d := pattern[k-1]; d {
			case AnyDelta:
			case Differs:
				if at(k) == prev {
					return false
				}
			default:
				if at(k) != prev+d {
					return false
				}
			}
		}

	case Variable:
		vars := map[int]int{}
		bound := mapset.New[int]()

		for k, name := range pattern {
			if name == AnyVar {
				continue
			}

			b := at(k)

			if v, ok := vars[b]; ok {
				if v != name {
					return false
				}

				continue
			}

			if bound.Has(name) {
				return false
			}

			vars[b] = name
			bound.Put(name)
		}
	}

	return true
}
