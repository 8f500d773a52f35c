package sound

import (
	"math"
	"time"
)

// PCM is the engine's canonical buffer: 16-bit signed stereo at a fixed
// rate, stored planar as the left block followed by the right block.
type PCM struct {
	// Data holds 2·Frames samples: Data[0:Frames] is the left channel,
	// Data[Frames:] the right.
	Data   []int16
	Frames int
	Rate   int
}

// Duration returns the playback length of the buffer.
func (p *PCM) Duration() time.Duration {
	return time.Duration(p.Frames) * time.Second / time.Duration(p.Rate)
}

// Canonicalize converts s into the engine's native format: samples clipped
// to [-1, +1), mono broadcast to stereo, resampled to the engine rate when
// needed, and quantized to 16-bit signed. Clipping is reported as a warning
// naming the overflowing sample count.
func Canonicalize(s *Sound, rate int) (*PCM, error) {
	if s.rate != rate {
		resampled, err := Resample(s, rate)
		if err != nil {
			return nil, err
		}
		s = resampled
	}

	frames := s.Frames()
	p := &PCM{Data: make([]int16, 2*frames), Frames: frames, Rate: rate}

	clipped := 0
	left := s.mono()
	right := left
	if s.Channels() == 2 {
		right = s.chans[1]
	}
	for i := range frames {
		var c1, c2 bool
		p.Data[i], c1 = quantize(left[i])
		p.Data[frames+i], c2 = quantize(right[i])
		if c1 {
			clipped++
		}
		if c2 {
			clipped++
		}
	}
	if clipped > 0 {
		warnf("%d samples clipped during canonicalization", clipped)
	}
	return p, nil
}

// quantize maps a float sample in [-1, +1) to int16, clipping out-of-range
// values.
func quantize(v float64) (int16, bool) {
	scaled := v * (math.MaxInt16 + 1)
	switch {
	case scaled > math.MaxInt16:
		return math.MaxInt16, true
	case scaled < math.MinInt16:
		return math.MinInt16, true
	default:
		return int16(scaled), false
	}
}

// Float64 converts the PCM buffer back into a float Sound; used by the
// file writer and by tests.
func (p *PCM) Float64() *Sound {
	left := make([]float64, p.Frames)
	right := make([]float64, p.Frames)
	const scale = 1.0 / (math.MaxInt16 + 1)
	for i := range p.Frames {
		left[i] = float64(p.Data[i]) * scale
		right[i] = float64(p.Data[p.Frames+i]) * scale
	}
	return &Sound{chans: [][]float64{left, right}, rate: p.Rate}
}
