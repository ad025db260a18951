package rom

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/natefinch/atomic"
	"golang.org/x/sys/unix"
)

// Mapped is a read-only memory mapping of a ROM file. Read-only tools use it
// to avoid copying multi-megabyte images.
type Mapped struct {
	data []byte
	game Game
}

// Map memory-maps path read-only and identifies it. The mapping must be
// released with Close.
func Map(path string) (*Mapped, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("rom: open: %w", err)
	}

	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("rom: stat: %w", err)
	}

	size := info.Size()
	if size <= 0 || size > math.MaxInt32 {
		return nil, fmt.Errorf("%w: %s is %d bytes", ErrUnknownSignature, path, size)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("rom: mmap: %w", err)
	}

	game, err := Identify(data)
	if err != nil {
		_ = unix.Munmap(data)

		return nil, err
	}

	return &Mapped{data: data, game: game}, nil
}

// Bytes returns the mapped bytes. Writing to them faults.
func (m *Mapped) Bytes() []byte { return m.data }

// Game returns the identified game.
func (m *Mapped) Game() Game { return m.game }

// Image returns an owned, mutable copy of the mapping.
func (m *Mapped) Image() *Image {
	data := make([]byte, len(m.data))
	copy(data, m.data)

	return &Image{data: data, game: m.game}
}

// Close releases the mapping. It is safe to call more than once.
func (m *Mapped) Close() error {
	if m.data == nil {
		return nil
	}

	err := unix.Munmap(m.data)
	m.data = nil

	if err != nil {
		return fmt.Errorf("rom: munmap: %w", err)
	}

	return nil
}

// Load maps path and returns an owned copy of it.
func Load(path string) (*Image, error) {
	m, err := Map(path)
	if err != nil {
		return nil, err
	}

	img := m.Image()

	if err := m.Close(); err != nil {
		return nil, err
	}

	return img, nil
}

// Read reads a whole image from r.
func Read(r io.Reader) (*Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("rom: read: %w", err)
	}

	return New(data)
}

// Save writes img to path atomically: either the complete image lands at
// path or the previous file is left untouched.
func Save(path string, img *Image) error {
	if img == nil {
		return errors.New("rom: save: nil image")
	}

	if err := atomic.WriteFile(path, bytes.NewReader(img.data)); err != nil {
		return fmt.Errorf("rom: save: %w", err)
	}

	return nil
}
