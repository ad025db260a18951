package records

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/drsam94/mmbccr/pkg/rom"
	"github.com/drsam94/mmbccr/pkg/textcodec"
)

// EffectFormat is the high-byte format carried by effect descriptions
// (bold on a background).
const EffectFormat = 0x600

// WideString is a pointer-addressed run of one or more terminated wide
// strings. The record's slot is the 4-byte pointer; the characters live at
// the pointer target and are rewritten in place.
//
// Edits never grow the character run. Shortening a substring shifts the
// following substrings left and zero-fills the freed tail so that a later
// decode finds the same number of terminators.
type WideString struct {
	chars    []uint16 // format bits masked out, terminators included
	fmtBits  []uint16 // format bits each unit was stored with
	ends     []int    // index of each substring's terminator in chars
	format   uint16
	indirect bool
}

func wideDecoder(count int, format uint16, indirect bool) DecodeFunc {
	return func(data []byte, off int) (Record, error) {
		return DecodeWideString(data, off, count, format, indirect)
	}
}

// DecodeWideString decodes count substrings addressed by the pointer at off.
func DecodeWideString(data []byte, off, count int, format uint16, indirect bool) (*WideString, error) {
	target, err := rom.ResolvePointer(data, off, indirect)
	if err != nil {
		return nil, err
	}

	s := &WideString{format: format, indirect: indirect}

	for p := target; len(s.ends) < count; p += 2 {
		raw, err := rom.U16(data, p)
		if err != nil {
			return nil, fmt.Errorf("%w: string at %#x: %w", textcodec.ErrUnterminated, target, err)
		}

		if textcodec.Wide.IsTerminator(raw) {
			s.chars = append(s.chars, raw)
			s.fmtBits = append(s.fmtBits, 0)
			s.ends = append(s.ends, len(s.chars)-1)

			continue
		}

		s.chars = append(s.chars, raw&^format)
		s.fmtBits = append(s.fmtBits, raw&format)
	}

	return s, nil
}

// Size is the pointer slot size.
func (s *WideString) Size() int { return 4 }

// Units is the number of 16-bit code units the string occupies at its target.
func (s *WideString) Units() int { return len(s.chars) }

// Encode resolves the pointer at off again and writes the characters there.
func (s *WideString) Encode(data []byte, off int) error {
	target, err := rom.ResolvePointer(data, off, s.indirect)
	if err != nil {
		return err
	}

	if err := rom.Check(data, target, 2*len(s.chars)); err != nil {
		return err
	}

	for i, c := range s.chars {
		if !textcodec.Wide.IsTerminator(c) {
			c |= s.fmtBits[i]
		}

		_ = rom.PutU16(data, target+2*i, c)
	}

	return nil
}

// Substrings decodes each substring.
func (s *WideString) Substrings() []string {
	out := make([]string, len(s.ends))

	start := 0
	for k, end := range s.ends {
		var b strings.Builder
		for _, c := range s.chars[start:end] {
			b.WriteString(textcodec.Wide.DecodeChar(c))
		}

		out[k] = b.String()
		start = end + 1
	}

	return out
}

func (s *WideString) String() string {
	return strings.Join(s.Substrings(), "\n")
}

// MaxLen is the number of glyphs the first substring can hold.
func (s *WideString) MaxLen() int {
	return s.ends[0]
}

// Assign replaces the first substring with text, truncating it to the
// current length. It reports whether text was truncated and how many glyphs
// had no code and were written as the fallback code.
func (s *WideString) Assign(text string) (bool, int) {
	fallbacks := 0

	var codes []uint16

	for _, r := range text {
		code, ok := textcodec.Wide.EncodeChar(r)
		if !ok {
			fallbacks++
		}

		codes = append(codes, code)
	}

	return s.setSubstring(0, codes, s.formatRun(len(codes))), fallbacks
}

// ChangeAttackPower rewrites the trailing number of every substring that
// ends in one (optionally followed by "+") to val. A longer number overwrites
// the glyphs before it; a shorter one shortens the substring.
func (s *WideString) ChangeAttackPower(val int) {
	for k := range s.ends {
		start, end := s.bounds(k)
		sub := s.chars[start:end]

		i := len(sub) - 1
		suffix := ""
		width := 0

		if i >= 0 && textcodec.Wide.DecodeChar(sub[i]) == "+" {
			suffix = "+"
			i--
			width++
		}

		digits := 0
		for i >= 0 && textcodec.IsEncodedDigit(sub[i]) {
			i--
			width++
			digits++
		}

		if digits == 0 {
			continue
		}

		var num []uint16
		for _, r := range strconv.Itoa(val) + suffix {
			code, _ := textcodec.Wide.EncodeChar(r)
			num = append(num, code)
		}

		keep := len(sub) - width
		if len(num) > width {
			keep = max(0, len(sub)-len(num))
		}

		codes := append(slices.Clone(sub[:keep]), num...)
		bits := append(slices.Clone(s.fmtBits[start:start+keep]), s.formatRun(len(num))...)
		s.setSubstring(k, codes, bits)
	}
}

func (s *WideString) bounds(k int) (int, int) {
	start := 0
	if k > 0 {
		start = s.ends[k-1] + 1
	}

	return start, s.ends[k]
}

func (s *WideString) formatRun(n int) []uint16 {
	bits := make([]uint16, n)
	for i := range bits {
		bits[i] = s.format
	}

	return bits
}

// setSubstring replaces substring k, truncating codes to the substring's
// current length. It reports whether codes was truncated.
func (s *WideString) setSubstring(k int, codes, bits []uint16) bool {
	start, end := s.bounds(k)
	oldLen := end - start

	truncated := len(codes) > oldLen
	if truncated {
		codes, bits = codes[:oldLen], bits[:oldLen]
	}

	shrink := oldLen - len(codes)

	chars := make([]uint16, 0, len(s.chars))
	chars = append(chars, s.chars[:start]...)
	chars = append(chars, codes...)
	chars = append(chars, textcodec.Wide.Terminator(len(codes)))
	chars = append(chars, s.chars[end+1:]...)
	chars = append(chars, make([]uint16, shrink)...)

	fmtBits := make([]uint16, 0, len(s.fmtBits))
	fmtBits = append(fmtBits, s.fmtBits[:start]...)
	fmtBits = append(fmtBits, bits...)
	fmtBits = append(fmtBits, 0)
	fmtBits = append(fmtBits, s.fmtBits[end+1:]...)
	fmtBits = append(fmtBits, make([]uint16, shrink)...)

	s.chars, s.fmtBits = chars, fmtBits

	for j := k; j < len(s.ends); j++ {
		s.ends[j] -= shrink
	}

	return truncated
}
