package textcodec_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drsam94/mmbccr/pkg/textcodec"
)

func Test_Dialect_Roundtrips_Every_Glyph_When_Encoded_Then_Decoded(t *testing.T) {
	t.Parallel()

	for _, d := range []*textcodec.Dialect{textcodec.Wide, textcodec.Narrow} {
		t.Run(d.Name(), func(t *testing.T) {
			t.Parallel()

			for _, r := range d.Alphabet() {
				code, ok := d.EncodeChar(r)
				if !ok {
					t.Fatalf("EncodeChar(%q) reported no code", r)
				}

				if got, want := d.DecodeChar(code), string(r); got != want {
					t.Errorf("DecodeChar(EncodeChar(%q))=%q, want=%q", r, got, want)
				}

				if d.IsTerminator(code) {
					t.Errorf("glyph %q encodes to a terminator %#x", r, code)
				}
			}
		})
	}
}

func Test_Letter_Runs_Are_Contiguous_When_Encoded(t *testing.T) {
	t.Parallel()

	for _, base := range []rune{'a', 'A'} {
		first, _ := textcodec.Wide.EncodeChar(base)

		for offs := range rune(26) {
			code, _ := textcodec.Wide.EncodeChar(base + offs)
			if got, want := int(code)-int(first), int(offs); got != want {
				t.Errorf("%q: offset=%d, want=%d", base+offs, got, want)
			}
		}
	}
}

func Test_DecodeChar_Renders_Placeholder_When_Code_Is_Unknown(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "<0x5f0>", textcodec.Wide.DecodeChar(0x5F0))
	assert.Equal(t, "<0xe6>", textcodec.Narrow.DecodeChar(0xE6))
}

func Test_EncodeChar_Falls_Back_When_Glyph_Is_Unmapped(t *testing.T) {
	t.Parallel()

	code, ok := textcodec.Narrow.EncodeChar('~')
	assert.False(t, ok)
	assert.Equal(t, textcodec.Narrow.Fallback(), code)
}

func Test_IsTerminator_Uses_Dialect_Rule_When_Checked(t *testing.T) {
	t.Parallel()

	assert.True(t, textcodec.Wide.IsTerminator(0x8005))
	assert.True(t, textcodec.Wide.IsTerminator(textcodec.Wide.Terminator(7)))
	assert.False(t, textcodec.Wide.IsTerminator(0x0605))
	assert.True(t, textcodec.Narrow.IsTerminator(0xE7))
	assert.False(t, textcodec.Narrow.IsTerminator(0xE8))
	assert.Equal(t, uint16(0x8007), textcodec.Wide.Terminator(7))
}

func Test_ReadNarrow_Returns_Next_Offset_When_Strings_Are_Packed(t *testing.T) {
	t.Parallel()

	// "Cannon" then "Sword", back to back.
	img := []byte{0x27, 0x0B, 0x18, 0x18, 0x19, 0x18, 0xE7, 0x37, 0x21, 0x19, 0x1C, 0x0E, 0xE7}

	first, next, err := textcodec.ReadNarrow(img, 0)
	require.NoError(t, err)
	assert.Equal(t, "Cannon", first)
	assert.Equal(t, 7, next)

	second, next, err := textcodec.ReadNarrow(img, next)
	require.NoError(t, err)
	assert.Equal(t, "Sword", second)
	assert.Equal(t, len(img), next)
}

func Test_ReadNarrow_Fails_When_Terminator_Is_Missing(t *testing.T) {
	t.Parallel()

	_, _, err := textcodec.ReadNarrow([]byte{0x27, 0x0B}, 0)
	if !errors.Is(err, textcodec.ErrUnterminated) {
		t.Fatalf("err=%v, want ErrUnterminated", err)
	}
}

func Test_Encoding_Roundtrips_Text_When_Used_With_XText(t *testing.T) {
	t.Parallel()

	for _, d := range []*textcodec.Dialect{textcodec.Wide, textcodec.Narrow} {
		enc := d.Encoding()

		raw, err := enc.NewEncoder().String("HiCannon 120+")
		require.NoError(t, err)
		assert.Len(t, raw, len("HiCannon 120+")*d.Width())

		text, err := enc.NewDecoder().String(raw)
		require.NoError(t, err)
		assert.Equal(t, "HiCannon 120+", text)
	}
}
