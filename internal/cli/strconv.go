package cli

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/drsam94/mmbccr/pkg/textcodec"
)

var errBadAction = errors.New("action must be encode or decode")

// StrconvCmd returns the strconv command.
func StrconvCmd(_ *Globals) *Command {
	fs := flag.NewFlagSet("strconv", flag.ContinueOnError)
	fs.String("dialect", "wide", "Text dialect (wide|narrow)")

	return &Command{
		Flags: fs,
		Usage: "strconv <encode|decode> <text> [flags]",
		Short: "Convert text to and from in-game codes",
		Long: `Convert text to and from in-game character codes.

encode prints one hex code per character. decode reads hex codes, 4 digits
each for the wide dialect and 2 for the narrow one; spaces are ignored.`,
		Examples: []string{
			`strconv encode Cannon`,
			`strconv decode "25 0b 0c" --dialect narrow`,
		},
		Exec: func(_ context.Context, o *IO, args []string) error {
			return execStrconv(o, fs, args)
		},
	}
}

func execStrconv(o *IO, fs *flag.FlagSet, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: strconv needs <encode|decode> and <text>", errUsage)
	}

	name, _ := fs.GetString("dialect")

	d, err := textcodec.ByName(name)
	if err != nil {
		return err
	}

	switch args[0] {
	case "encode":
		o.Println(encodeText(o, d, args[1]))
	case "decode":
		text, err := decodeText(d, args[1])
		if err != nil {
			return err
		}

		o.Println(text)
	default:
		return fmt.Errorf("%w: %q", errBadAction, args[0])
	}

	return nil
}

func encodeText(o *IO, d *textcodec.Dialect, text string) string {
	var b strings.Builder

	digits := 2 * d.Width()

	for _, r := range text {
		code, ok := d.EncodeChar(r)
		if !ok {
			o.Warn("%q has no %s code, using %#x", r, d.Name(), code)
		}

		fmt.Fprintf(&b, "%0*x ", digits, code)
	}

	return b.String()
}

func decodeText(d *textcodec.Dialect, hexText string) (string, error) {
	compact := strings.Join(strings.Fields(hexText), "")
	digits := 2 * d.Width()

	if len(compact)%digits != 0 {
		return "", fmt.Errorf("decode: %d hex digits is not a multiple of %d", len(compact), digits)
	}

	raw := make([]byte, 0, len(compact)/2)

	for i := 0; i < len(compact); i += digits {
		v, err := strconv.ParseUint(compact[i:i+digits], 16, 16)
		if err != nil {
			return "", fmt.Errorf("decode: %q is not hex", compact[i:i+digits])
		}

		if d.Width() == 2 {
			raw = binary.LittleEndian.AppendUint16(raw, uint16(v))
		} else {
			raw = append(raw, byte(v))
		}
	}

	out, err := d.Encoding().NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("decode: %w", err)
	}

	return string(out), nil
}
