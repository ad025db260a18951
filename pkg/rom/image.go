// Package rom holds the ROM image buffer and the low-level helpers every
// record codec builds on: header identification, bounds-checked
// little-endian access and pointer resolution.
//
// An [Image] owns one contiguous buffer. Its length is fixed when it is
// created; every mutation happens in place.
package rom

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Sentinel errors returned by rom operations.
var (
	// ErrUnknownSignature indicates the header does not name a supported game.
	// Nothing may be mutated once this is returned.
	ErrUnknownSignature = errors.New("rom: unknown signature")

	// ErrOutOfRange indicates an access past the end of the image.
	ErrOutOfRange = errors.New("rom: out of range")

	// ErrBadPointer indicates a stored pointer that does not land inside the image.
	ErrBadPointer = errors.New("rom: bad pointer")
)

// Game identifies which layout table applies to an image.
type Game int

const (
	GameUnknown Game = iota
	GameBCC          // Mega Man Battle Chip Challenge
	GameBN2          // Mega Man Battle Network 2
)

func (g Game) String() string {
	switch g {
	case GameBCC:
		return "bcc"
	case GameBN2:
		return "bn2"
	default:
		return "unknown"
	}
}

// Header signature location (game title + game code).
const (
	SignatureOffset = 0xA0
	SignatureLen    = 16
)

// Signatures maps each supported game to its header signature.
var Signatures = map[Game]string{
	GameBCC: "BATTLECHIPGPA89E",
	GameBN2: "MEGAMAN_EXE2AE2E",
}

// Identify returns the game whose signature is at [SignatureOffset].
func Identify(data []byte) (Game, error) {
	if len(data) < SignatureOffset+SignatureLen {
		return GameUnknown, fmt.Errorf("%w: image is only %d bytes", ErrUnknownSignature, len(data))
	}

	sig := string(data[SignatureOffset : SignatureOffset+SignatureLen])
	for game, want := range Signatures {
		if sig == want {
			return game, nil
		}
	}

	return GameUnknown, fmt.Errorf("%w: %q", ErrUnknownSignature, sig)
}

// Image is a ROM held in memory.
type Image struct {
	data []byte
	game Game
}

// New wraps data, which must carry a known signature. The image takes
// ownership of data.
func New(data []byte) (*Image, error) {
	game, err := Identify(data)
	if err != nil {
		return nil, err
	}

	return &Image{data: data, game: game}, nil
}

// Game returns the identified game.
func (img *Image) Game() Game { return img.game }

// Bytes returns the underlying buffer. Callers may mutate it in place but
// must never change its length.
func (img *Image) Bytes() []byte { return img.data }

// Len returns the image size in bytes.
func (img *Image) Len() int { return len(img.data) }

// Clone returns an independent copy.
func (img *Image) Clone() *Image {
	data := make([]byte, len(img.data))
	copy(data, img.data)

	return &Image{data: data, game: img.game}
}

// Check returns ErrOutOfRange unless [off, off+n) lies inside data.
func Check(data []byte, off, n int) error {
	if off < 0 || n < 0 || off > len(data)-n {
		return fmt.Errorf("%w: [%#x, %#x) of %#x", ErrOutOfRange, off, off+n, len(data))
	}

	return nil
}

// U8 reads the byte at off.
func U8(data []byte, off int) (uint8, error) {
	if err := Check(data, off, 1); err != nil {
		return 0, err
	}

	return data[off], nil
}

// U16 reads a little-endian uint16 at off.
func U16(data []byte, off int) (uint16, error) {
	if err := Check(data, off, 2); err != nil {
		return 0, err
	}

	return binary.LittleEndian.Uint16(data[off:]), nil
}

// U32 reads a little-endian uint32 at off.
func U32(data []byte, off int) (uint32, error) {
	if err := Check(data, off, 4); err != nil {
		return 0, err
	}

	return binary.LittleEndian.Uint32(data[off:]), nil
}

// PutU8 writes the byte at off.
func PutU8(data []byte, off int, v uint8) error {
	if err := Check(data, off, 1); err != nil {
		return err
	}

	data[off] = v

	return nil
}

// PutU16 writes a little-endian uint16 at off.
func PutU16(data []byte, off int, v uint16) error {
	if err := Check(data, off, 2); err != nil {
		return err
	}

	binary.LittleEndian.PutUint16(data[off:], v)

	return nil
}

// PutU32 writes a little-endian uint32 at off.
func PutU32(data []byte, off int, v uint32) error {
	if err := Check(data, off, 4); err != nil {
		return err
	}

	binary.LittleEndian.PutUint32(data[off:], v)

	return nil
}
