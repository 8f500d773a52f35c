package engine

import "errors"

// Errors returned by engine operations. Device failures wrap the PortAudio
// error with ErrDevice so callers can test the class with errors.Is.
var (
	// ErrDevice indicates the audio driver rejected the requested
	// configuration or failed at runtime.
	ErrDevice = errors.New("audio device error")

	// ErrNotReady indicates the engine has not been set up, or has been
	// closed.
	ErrNotReady = errors.New("engine not initialized")

	// ErrNoChannels indicates every eligible channel queue was full or
	// paused.
	ErrNoChannels = errors.New("all unpaused channels have full buffers")

	// ErrRateMismatch indicates a buffer at a different rate than the
	// engine output; canonicalize before playing.
	ErrRateMismatch = errors.New("sound rate differs from engine rate")

	// ErrQueueFull indicates the streaming slot is still occupied; the
	// caller should retry after the next stream unit.
	ErrQueueFull = errors.New("stream queue slot full")

	// ErrBadChannel indicates a channel index outside the configured range.
	ErrBadChannel = errors.New("channel index out of range")
)
