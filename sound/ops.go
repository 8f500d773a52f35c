package sound

import (
	"fmt"
	"math"
	"time"

	"github.com/tphakala/simd/f64"
	"gonum.org/v1/gonum/floats"
)

// DefaultRampLen is the on/off ramp length used when none is given.
const DefaultRampLen = 5 * time.Millisecond

// DefaultOverlap is the FadeTo crossfade length used when none is given.
const DefaultOverlap = 50 * time.Millisecond

// Mix sums sounds element-wise, zero-padding each input to the longest
// length. All inputs must share a sample rate; the result is stereo if any
// input is.
func Mix(xs ...*Sound) (*Sound, error) {
	return combine(xs, 0, floats.Add)
}

// Mult multiplies sounds element-wise, one-padding each input to the
// longest length. Useful for applying envelopes.
func Mult(xs ...*Sound) (*Sound, error) {
	return combine(xs, 1, floats.Mul)
}

// combine reduces xs with op, padding shorter inputs with pad.
func combine(xs []*Sound, pad float64, op func(dst, s []float64)) (*Sound, error) {
	if len(xs) == 0 {
		return nil, fmt.Errorf("%w: no sounds to combine", ErrShape)
	}

	rate := xs[0].rate
	frames, channels := 0, 1
	for _, x := range xs {
		if x.rate != rate {
			return nil, fmt.Errorf("%w: %d Hz vs %d Hz", ErrRateMismatch, x.rate, rate)
		}
		frames = max(frames, x.Frames())
		channels = max(channels, x.Channels())
	}

	out := make([][]float64, channels)
	for c := range out {
		acc := make([]float64, frames)
		copy(acc, channelOrBroadcast(xs[0], c))
		for i := xs[0].Frames(); i < frames; i++ {
			acc[i] = pad
		}
		for _, x := range xs[1:] {
			op(acc, padTo(channelOrBroadcast(x, c), frames, pad))
		}
		out[c] = acc
	}
	return &Sound{chans: out, rate: rate}, nil
}

// channelOrBroadcast returns channel c of x, broadcasting mono to either
// channel.
func channelOrBroadcast(x *Sound, c int) []float64 {
	if c < x.Channels() {
		return x.chans[c]
	}
	return x.mono()
}

func padTo(samples []float64, frames int, pad float64) []float64 {
	if len(samples) == frames {
		return samples
	}
	out := make([]float64, frames)
	copy(out, samples)
	for i := len(samples); i < frames; i++ {
		out[i] = pad
	}
	return out
}

// LeftRight assembles a stereo sound from two mono sounds of equal rate and
// length.
func LeftRight(left, right *Sound) (*Sound, error) {
	if left.rate != right.rate {
		return nil, fmt.Errorf("%w: %d Hz vs %d Hz", ErrRateMismatch, left.rate, right.rate)
	}
	if left.Frames() != right.Frames() {
		return nil, fmt.Errorf("%w: %d vs %d frames", ErrShape, left.Frames(), right.Frames())
	}
	if left.Channels() != 1 || right.Channels() != 1 {
		return nil, fmt.Errorf("%w: LeftRight takes mono inputs", ErrShape)
	}
	l := make([]float64, left.Frames())
	r := make([]float64, right.Frames())
	copy(l, left.mono())
	copy(r, right.mono())
	return &Sound{chans: [][]float64{l, r}, rate: left.rate}, nil
}

// Attenuate normalizes s to unit RMS and then attenuates by dB:
// 10^(−dB/20) · s / rms(s).
func Attenuate(s *Sound, dB float64) *Sound {
	var sumsq float64
	var n int
	for _, ch := range s.chans {
		sumsq += f64.DotProductUnsafe(ch, ch)
		n += len(ch)
	}
	rms := math.Sqrt(sumsq / float64(n))
	if rms == 0 {
		return s
	}

	scale := math.Pow(10, -dB/20) / rms
	out := make([][]float64, len(s.chans))
	for c, ch := range s.chans {
		out[c] = make([]float64, len(ch))
		f64.Scale(out[c], ch, scale)
	}
	return &Sound{chans: out, rate: s.rate}
}

// Ramp applies a raised-cosine rise and fall of length d at the ends of s,
// leaving the sustain region untouched.
func Ramp(s *Sound, d time.Duration) (*Sound, error) {
	return applyRamp(s, d, true, true)
}

// RampOn applies only the rise.
func RampOn(s *Sound, d time.Duration) (*Sound, error) {
	return applyRamp(s, d, true, false)
}

// RampOff applies only the fall.
func RampOff(s *Sound, d time.Duration) (*Sound, error) {
	return applyRamp(s, d, false, true)
}

func applyRamp(s *Sound, d time.Duration, on, off bool) (*Sound, error) {
	rampFrames := FrameCount(d, s.rate)
	need := rampFrames
	if on && off {
		need = 2 * rampFrames
	}
	if s.Frames() <= need {
		return nil, fmt.Errorf("%w: %d frames with %d-frame ramps",
			ErrDurationTooShort, s.Frames(), rampFrames)
	}

	out := make([][]float64, len(s.chans))
	for c, ch := range s.chans {
		samples := make([]float64, len(ch))
		copy(samples, ch)
		if on {
			for i := 0; i < rampFrames; i++ {
				samples[i] *= halfCosineRise(i, rampFrames)
			}
		}
		if off {
			last := len(samples) - 1
			for i := 0; i < rampFrames; i++ {
				samples[last-i] *= halfCosineRise(i, rampFrames)
			}
		}
		out[c] = samples
	}
	return &Sound{chans: out, rate: s.rate}, nil
}

// halfCosineRise evaluates the raised-cosine envelope at frame i of n:
// 0 at i=0 rising to 1 at i=n.
func halfCosineRise(i, n int) float64 {
	return 0.5 - 0.5*math.Cos(math.Pi*float64(i)/float64(n))
}

// FadeTo crossfades from a into b over the given overlap: the tail of a is
// ramped off against the ramped-on head of b, giving a total duration of
// dur(a)+dur(b)−overlap.
func FadeTo(a, b *Sound, overlap time.Duration) (*Sound, error) {
	if a.rate != b.rate {
		return nil, fmt.Errorf("%w: %d Hz vs %d Hz", ErrRateMismatch, a.rate, b.rate)
	}

	aOff, err := RampOff(a, overlap)
	if err != nil {
		return nil, err
	}
	bOn, err := RampOn(b, overlap)
	if err != nil {
		return nil, err
	}

	return Mix(aOff, shift(bOn, a.Duration()-overlap))
}

// shift prepends ⌊d·rate⌋ frames of silence to s.
func shift(s *Sound, d time.Duration) *Sound {
	pad := FrameCount(d, s.rate)
	out := make([][]float64, len(s.chans))
	for c, ch := range s.chans {
		samples := make([]float64, pad+len(ch))
		copy(samples[pad:], ch)
		out[c] = samples
	}
	return &Sound{chans: out, rate: s.rate}
}
