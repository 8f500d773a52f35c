// Package sound provides the immutable PCM value model and the synthesis
// primitives that feed the engine: tones, noise, harmonic complexes,
// Butterworth band filters, ramps, mixing and stereo assembly, plus
// canonicalization into the engine's 16-bit stereo format and an LRU cache
// for canonicalized buffers.
package sound

import (
	"fmt"
	"time"
)

// Sound is an immutable buffer of float64 samples in [-1, +1] with one or
// two channels and a fixed sample rate. Channels are stored planar and have
// equal length.
type Sound struct {
	chans [][]float64
	rate  int
}

// New constructs a Sound from planar channel data. The slices are adopted,
// not copied; callers must not mutate them afterwards.
func New(chans [][]float64, rate int) (*Sound, error) {
	if len(chans) < 1 || len(chans) > 2 {
		return nil, fmt.Errorf("%w: %d channels (want 1 or 2)", ErrShape, len(chans))
	}
	if rate <= 0 {
		return nil, fmt.Errorf("%w: sample rate %d must be positive", ErrShape, rate)
	}
	if len(chans) == 2 && len(chans[0]) != len(chans[1]) {
		return nil, fmt.Errorf("%w: channel lengths differ (%d vs %d)",
			ErrShape, len(chans[0]), len(chans[1]))
	}
	return &Sound{chans: chans, rate: rate}, nil
}

// FromMono wraps a single channel of samples.
func FromMono(samples []float64, rate int) (*Sound, error) {
	return New([][]float64{samples}, rate)
}

// FromStereo wraps a left and a right channel of equal length.
func FromStereo(left, right []float64, rate int) (*Sound, error) {
	return New([][]float64{left, right}, rate)
}

// Rate returns the sample rate in Hz.
func (s *Sound) Rate() int { return s.rate }

// Channels returns 1 or 2.
func (s *Sound) Channels() int { return len(s.chans) }

// Frames returns the number of sample frames.
func (s *Sound) Frames() int {
	if len(s.chans) == 0 {
		return 0
	}
	return len(s.chans[0])
}

// Duration returns the playback length.
func (s *Sound) Duration() time.Duration {
	return time.Duration(s.Frames()) * time.Second / time.Duration(s.rate)
}

// Channel returns the samples of one channel. The slice is shared with the
// Sound and must be treated as read-only.
func (s *Sound) Channel(i int) []float64 { return s.chans[i] }

// mono returns channel 0; for averaging-free broadcast semantics every
// mono-consuming operation reads this.
func (s *Sound) mono() []float64 { return s.chans[0] }

// End marks "until the last frame" as a slice bound.
const End time.Duration = -1

// Slice returns the half-open interval [from, to) of s in time units, or
// [from, end] when to == End. Bounds resolve to frame indices by flooring
// against the sample rate.
func Slice(s *Sound, from, to time.Duration) (*Sound, error) {
	if from < 0 {
		return nil, fmt.Errorf("%w: negative slice start %v", ErrOutOfRange, from)
	}
	lo := FrameCount(from, s.rate)
	hi := s.Frames()
	if to != End {
		if to < from {
			return nil, fmt.Errorf("%w: slice bounds reversed [%v, %v)", ErrOutOfRange, from, to)
		}
		hi = FrameCount(to, s.rate)
	}
	if lo > s.Frames() || hi > s.Frames() {
		return nil, fmt.Errorf("%w: slice [%v, %v) exceeds %v of sound",
			ErrOutOfRange, from, to, s.Duration())
	}

	out := make([][]float64, len(s.chans))
	for c, ch := range s.chans {
		out[c] = ch[lo:hi]
	}
	return &Sound{chans: out, rate: s.rate}, nil
}

// Left returns a stereo sound carrying s on the left channel and silence on
// the right. Mono input is broadcast first.
func Left(s *Sound) *Sound {
	return oneSided(s, 0)
}

// Right returns a stereo sound carrying s on the right channel and silence
// on the left.
func Right(s *Sound) *Sound {
	return oneSided(s, 1)
}

func oneSided(s *Sound, keep int) *Sound {
	frames := s.Frames()
	out := [][]float64{make([]float64, frames), make([]float64, frames)}
	src := s.mono()
	if s.Channels() == 2 {
		src = s.chans[keep]
	}
	copy(out[keep], src)
	return &Sound{chans: out, rate: s.rate}
}
