package records

import "errors"

// Sentinel errors returned by record codecs and the registry.
var (
	ErrUnknownKind = errors.New("records: unknown kind")

	// ErrUnsupported is returned for kinds without a byte layout, and for
	// random access into kinds that can only be scanned sequentially.
	ErrUnsupported = errors.New("records: unsupported for this kind")

	ErrIndexOutOfRange = errors.New("records: index out of range")

	// ErrSlotOverflow is returned when an encoding would write past the
	// bytes the record originally occupied.
	ErrSlotOverflow = errors.New("records: encoding exceeds slot")

	ErrMalformed = errors.New("records: malformed record")
)
