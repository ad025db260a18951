package rom

import "fmt"

// LoadBase is the address the cartridge is mapped at. Stored pointers are
// absolute bus addresses; subtracting LoadBase yields an image offset.
const LoadBase = 0x08000000

// ResolvePointer reads the pointer stored at off and returns the image
// offset it addresses. With indirect set, the stored value is first
// followed to a second pointer, and that one is resolved instead.
func ResolvePointer(data []byte, off int, indirect bool) (int, error) {
	target, err := resolveOne(data, off)
	if err != nil {
		return 0, err
	}

	if !indirect {
		return target, nil
	}

	return resolveOne(data, target)
}

func resolveOne(data []byte, off int) (int, error) {
	raw, err := U32(data, off)
	if err != nil {
		return 0, err
	}

	if raw < LoadBase || int64(raw)-LoadBase >= int64(len(data)) {
		return 0, fmt.Errorf("%w: %#08x stored at %#x", ErrBadPointer, raw, off)
	}

	return int(raw - LoadBase), nil
}

// Pointer encodes an image offset as a stored pointer value.
func Pointer(off int) uint32 {
	return uint32(off) + LoadBase
}
