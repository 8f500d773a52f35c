package sound

import "errors"

// Errors returned by the sound value model and the DSP primitives.
var (
	// ErrShape indicates an invalid channel count, inconsistent channel
	// lengths, or a non-positive sample rate.
	ErrShape = errors.New("invalid sound shape")

	// ErrOutOfRange indicates slice bounds outside the underlying samples.
	ErrOutOfRange = errors.New("slice out of range")

	// ErrDurationTooShort indicates a sound too short to carry the
	// requested ramp envelopes.
	ErrDurationTooShort = errors.New("sound too short for ramp")

	// ErrRateMismatch indicates an operation combining sounds of different
	// sample rates; callers resample first.
	ErrRateMismatch = errors.New("sample rate mismatch")
)
