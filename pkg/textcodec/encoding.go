package textcodec

import (
	"encoding/binary"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

// Encoding adapts a dialect to [encoding.Encoding]. Terminators are not
// special here: the decoder renders them as placeholders and the encoder never
// emits one, so whole byte streams round-trip through the usual x/text helpers.
func (d *Dialect) Encoding() encoding.Encoding {
	return dialectEncoding{d: d}
}

type dialectEncoding struct {
	d *Dialect
}

func (e dialectEncoding) NewDecoder() *encoding.Decoder {
	return &encoding.Decoder{Transformer: &decoder{d: e.d}}
}

func (e dialectEncoding) NewEncoder() *encoding.Encoder {
	return &encoding.Encoder{Transformer: &encoder{d: e.d}}
}

type decoder struct {
	transform.NopResetter

	d *Dialect
}

func (t *decoder) Transform(dst, src []byte, atEOF bool) (int, int, error) {
	nDst, nSrc := 0, 0
	width := t.d.width

	for nSrc < len(src) {
		var code uint16

		step := width

		switch {
		case len(src)-nSrc >= width && width == 2:
			code = binary.LittleEndian.Uint16(src[nSrc:])
		case width == 1:
			code = uint16(src[nSrc])
		case !atEOF:
			return nDst, nSrc, transform.ErrShortSrc
		default:
			// Odd trailing byte of a wide stream.
			code = uint16(src[nSrc])
			step = 1
		}

		glyph := t.d.DecodeChar(code)
		if nDst+len(glyph) > len(dst) {
			return nDst, nSrc, transform.ErrShortDst
		}

		nDst += copy(dst[nDst:], glyph)
		nSrc += step
	}

	return nDst, nSrc, nil
}

type encoder struct {
	transform.NopResetter

	d *Dialect
}

func (t *encoder) Transform(dst, src []byte, atEOF bool) (int, int, error) {
	nDst, nSrc := 0, 0
	width := t.d.width

	for nSrc < len(src) {
		if !atEOF && !utf8.FullRune(src[nSrc:]) {
			return nDst, nSrc, transform.ErrShortSrc
		}

		r, size := utf8.DecodeRune(src[nSrc:])
		if nDst+width > len(dst) {
			return nDst, nSrc, transform.ErrShortDst
		}

		code, _ := t.d.EncodeChar(r)
		if width == 2 {
			binary.LittleEndian.PutUint16(dst[nDst:], code)
		} else {
			dst[nDst] = byte(code)
		}

		nDst += width
		nSrc += size
	}

	return nDst, nSrc, nil
}
