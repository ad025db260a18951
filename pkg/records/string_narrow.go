package records

import (
	"fmt"
	"strings"

	"github.com/drsam94/mmbccr/pkg/rom"
	"github.com/drsam94/mmbccr/pkg/textcodec"
)

// NarrowString is one string of a packed narrow string table. Strings sit
// back to back, so a record's slot is its bytes plus the terminator.
type NarrowString struct {
	codes []byte
}

func decodeNarrowString(data []byte, off int) (Record, error) {
	if off < 0 || off > len(data) {
		return nil, fmt.Errorf("%w: narrow string at %#x", rom.ErrOutOfRange, off)
	}

	for i := off; i < len(data); i++ {
		if textcodec.Narrow.IsTerminator(uint16(data[i])) {
			codes := make([]byte, i-off)
			copy(codes, data[off:i])

			return &NarrowString{codes: codes}, nil
		}
	}

	return nil, fmt.Errorf("%w at %#x", textcodec.ErrUnterminated, off)
}

func (s *NarrowString) Size() int { return len(s.codes) + 1 }

func (s *NarrowString) Encode(data []byte, off int) error {
	if err := rom.Check(data, off, s.Size()); err != nil {
		return err
	}

	n := copy(data[off:], s.codes)
	data[off+n] = byte(textcodec.Narrow.Terminator(n))

	return nil
}

func (s *NarrowString) String() string {
	var b strings.Builder
	for _, c := range s.codes {
		b.WriteString(textcodec.Narrow.DecodeChar(uint16(c)))
	}

	return b.String()
}

// Assign replaces the text in place. Text longer than the slot is truncated;
// shorter text is padded with spaces so the next string does not move. It
// returns whether text was truncated and the number of fallback glyphs.
func (s *NarrowString) Assign(text string) (bool, int) {
	fallbacks := 0
	codes := make([]byte, 0, len(s.codes))
	truncated := false

	for _, r := range text {
		if len(codes) == len(s.codes) {
			truncated = true

			break
		}

		code, ok := textcodec.Narrow.EncodeChar(r)
		if !ok {
			fallbacks++
		}

		codes = append(codes, byte(code))
	}

	space, _ := textcodec.Narrow.EncodeChar(' ')
	for len(codes) < len(s.codes) {
		codes = append(codes, byte(space))
	}

	s.codes = codes

	return truncated, fallbacks
}
