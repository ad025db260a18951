package rando

import "errors"

var (
	// ErrSamplingExhausted reports a rejection-sampling loop that hit
	// engine.maxRejections without accepting a candidate.
	ErrSamplingExhausted = errors.New("rando: sampling exhausted")

	// ErrUnsupportedOption reports an option combination the engine refuses.
	ErrUnsupportedOption = errors.New("rando: unsupported option")
)
