// Package textcodec converts between the in-ROM character encodings and text.
//
// Two dialects exist:
//
//   - [Wide]: 16-bit little-endian code units. The high byte may carry format
//     bits (0x06XX renders bold on a background). Strings end with a
//     terminator of the form 0x80LL where LL is the string length.
//   - [Narrow]: 8-bit code units, strings packed back to back and ended by a
//     single sentinel byte.
//
// Both dialects map a contiguous run to uppercase letters, a second run to
// lowercase letters, codes 1..10 to the digits 0..9 and a small table of
// special glyphs. Decoding an unknown code never fails: it renders as a
// hex placeholder such as "<0x5f>". Encoding a glyph with no code falls back
// to [Dialect.Fallback].
package textcodec

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

// ErrUnterminated is returned when a string runs off the end of the image
// before its terminator.
var ErrUnterminated = errors.New("textcodec: unterminated string")

// Dialect describes one in-ROM character encoding.
type Dialect struct {
	name     string
	width    int
	upper    uint16
	lower    uint16
	fallback uint16
	specials map[uint16]rune
	inverse  map[rune]uint16

	isTerminator func(code uint16) bool
	terminator   func(length int) uint16
}

func newDialect(name string, width int, upper, lower uint16, specials map[uint16]rune,
	isTerm func(uint16) bool, term func(int) uint16,
) *Dialect {
	inverse := make(map[rune]uint16, len(specials))
	for code, r := range specials {
		inverse[r] = code
	}

	return &Dialect{
		name:         name,
		width:        width,
		upper:        upper,
		lower:        lower,
		fallback:     0x5D,
		specials:     specials,
		inverse:      inverse,
		isTerminator: isTerm,
		terminator:   term,
	}
}

// Wide is the 16-bit dialect used by Battle Chip Challenge.
var Wide = newDialect("wide", 2, 0x5E, 0xEB,
	map[uint16]rune{
		0x000: ' ',
		0x079: '×',
		0x07C: '?',
		0x07D: '+',
		0x081: '!',
		0x08C: '∀',
		0x087: '.',
		0x099: '_',
		0x109: '-',
	},
	func(code uint16) bool { return code>>8 == 0x80 },
	func(length int) uint16 { return 0x8000 | uint16(length&0xFF) },
)

// Narrow is the 8-bit dialect used by Battle Network 2.
var Narrow = newDialect("narrow", 1, 0x25, 0x0B,
	map[uint16]rune{
		0x00: ' ',
		0x3F: '@', // V2 mark
		0x40: '#', // V3 mark
		0x41: '-',
		0x45: '?',
		0x46: '+',
		0x4D: '&',
		0x53: '\'',
		0xE8: '\n',
	},
	func(code uint16) bool { return code == narrowTerminator },
	func(int) uint16 { return narrowTerminator },
)

const narrowTerminator = 0xE7

// Name returns "wide" or "narrow".
func (d *Dialect) Name() string { return d.name }

// Width is the size of one code unit in bytes.
func (d *Dialect) Width() int { return d.width }

// Fallback is the code written for glyphs the dialect cannot represent.
func (d *Dialect) Fallback() uint16 { return d.fallback }

// ByName returns the dialect called name.
func ByName(name string) (*Dialect, error) {
	switch name {
	case "wide", "bcc":
		return Wide, nil
	case "narrow", "bn2":
		return Narrow, nil
	default:
		return nil, fmt.Errorf("textcodec: unknown dialect %q", name)
	}
}

// IsEncodedDigit reports whether code is one of the digit codes 1..10.
func IsEncodedDigit(code uint16) bool {
	return code > 0 && code <= 10
}

// DecodeChar renders a single code unit. Unknown codes render as "<0x..>".
func (d *Dialect) DecodeChar(code uint16) string {
	if r, ok := d.specials[code]; ok {
		return string(r)
	}

	switch {
	case IsEncodedDigit(code):
		return string(rune('0' + code - 1))
	case code >= d.upper && code < d.upper+26:
		return string(rune('A' + code - d.upper))
	case code >= d.lower && code < d.lower+26:
		return string(rune('a' + code - d.lower))
	default:
		return fmt.Sprintf("<%#x>", code)
	}
}

// EncodeChar returns the code for r. The boolean is false when r has no
// code and the fallback was returned instead.
func (d *Dialect) EncodeChar(r rune) (uint16, bool) {
	switch {
	case r >= '0' && r <= '9':
		return uint16(r-'0') + 1, true
	case r >= 'A' && r <= 'Z':
		return d.upper + uint16(r-'A'), true
	case r >= 'a' && r <= 'z':
		return d.lower + uint16(r-'a'), true
	}

	if code, ok := d.inverse[r]; ok {
		return code, true
	}

	return d.fallback, false
}

// IsTerminator reports whether code ends a string.
func (d *Dialect) IsTerminator(code uint16) bool {
	return d.isTerminator(code)
}

// Terminator returns the terminator code for a string of the given length.
func (d *Dialect) Terminator(length int) uint16 {
	return d.terminator(length)
}

// Alphabet returns every glyph the dialect can encode: digits, letters, then
// the special glyphs by code.
func (d *Dialect) Alphabet() []rune {
	out := make([]rune, 0, 62+len(d.specials))
	for r := '0'; r <= '9'; r++ {
		out = append(out, r)
	}

	for r := 'A'; r <= 'Z'; r++ {
		out = append(out, r)
	}

	for r := 'a'; r <= 'z'; r++ {
		out = append(out, r)
	}

	for _, code := range slices.Sorted(maps.Keys(d.specials)) {
		out = append(out, d.specials[code])
	}

	return out
}

// ReadNarrow decodes the narrow string starting at off and returns it with
// the offset just past its terminator.
func ReadNarrow(img []byte, off int) (string, int, error) {
	if off < 0 {
		return "", off, fmt.Errorf("%w: negative offset %d", ErrUnterminated, off)
	}

	var out []byte

	for i := off; i < len(img); i++ {
		code := uint16(img[i])
		if Narrow.IsTerminator(code) {
			return string(out), i + 1, nil
		}

		out = append(out, Narrow.DecodeChar(code)...)
	}

	return "", off, fmt.Errorf("%w at %#x", ErrUnterminated, off)
}
