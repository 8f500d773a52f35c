package sound

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"
)

// Silence returns a mono zero buffer of ⌊d·rate⌋ frames.
func Silence(d time.Duration, rate int) *Sound {
	return &Sound{chans: [][]float64{make([]float64, FrameCount(d, rate))}, rate: rate}
}

// StereoSilence returns a stereo zero buffer.
func StereoSilence(d time.Duration, rate int) *Sound {
	frames := FrameCount(d, rate)
	return &Sound{
		chans: [][]float64{make([]float64, frames), make([]float64, frames)},
		rate:  rate,
	}
}

// Noise returns mono uniform noise in (-1, +1) drawn from rng.
func Noise(d time.Duration, rate int, rng *rand.Rand) *Sound {
	return &Sound{chans: [][]float64{noiseChannel(FrameCount(d, rate), rng)}, rate: rate}
}

// StereoNoise returns stereo noise whose channels are independent draws
// from the same rng.
func StereoNoise(d time.Duration, rate int, rng *rand.Rand) *Sound {
	frames := FrameCount(d, rate)
	return &Sound{
		chans: [][]float64{noiseChannel(frames, rng), noiseChannel(frames, rng)},
		rate:  rate,
	}
}

func noiseChannel(frames int, rng *rand.Rand) []float64 {
	samples := make([]float64, frames)
	for i := range samples {
		v := 2*rng.Float64() - 1
		for v == -1 {
			v = 2*rng.Float64() - 1
		}
		samples[i] = v
	}
	return samples
}

// Tone returns a mono pure tone of frequency f and length ⌊d·rate⌋ frames.
func Tone(f Freq, d time.Duration, rate int) *Sound {
	return ToneWithPhase(f, d, rate, 0)
}

// ToneWithPhase returns sin(2π·f·k/rate + phase) for k = 0..⌊d·rate⌋-1.
func ToneWithPhase(f Freq, d time.Duration, rate int, phase float64) *Sound {
	frames := FrameCount(d, rate)
	samples := make([]float64, frames)
	omega := 2 * math.Pi * f.Hz() / float64(rate)
	for k := range samples {
		samples[k] = math.Sin(omega*float64(k) + phase)
	}
	return &Sound{chans: [][]float64{samples}, rate: rate}
}

// HarmonicComplex builds a complex of harmonics of f0. Each entry of
// harmonics selects a multiple of f0 (1 = fundamental) with the matching
// amplitude and phase offset. One cycle of duration 1/f0 is computed by
// direct summation and then tiled with cycle-aligned wrap to ⌊d·rate⌋
// frames; summing many long sinusoids sample-by-sample would instead
// accumulate floating-point beating between the partials.
func HarmonicComplex(f0 Freq, harmonics []int, amps, phases []float64, d time.Duration, rate int) (*Sound, error) {
	if len(harmonics) != len(amps) || len(harmonics) != len(phases) {
		return nil, fmt.Errorf("%w: %d harmonics, %d amplitudes, %d phases",
			ErrShape, len(harmonics), len(amps), len(phases))
	}

	cycleFrames := int(float64(rate) / f0.Hz())
	if cycleFrames < 1 {
		cycleFrames = 1
	}
	cycle := make([]float64, cycleFrames)
	for i, h := range harmonics {
		omega := 2 * math.Pi * f0.Hz() * float64(h) / float64(rate)
		for k := range cycle {
			cycle[k] += amps[i] * math.Sin(omega*float64(k)+phases[i])
		}
	}

	frames := FrameCount(d, rate)
	samples := make([]float64, frames)
	for k := range samples {
		samples[k] = cycle[k%cycleFrames]
	}
	return &Sound{chans: [][]float64{samples}, rate: rate}, nil
}
