package sound

import (
	"fmt"

	"github.com/psylab/psykit/internal/filter"
)

// DefaultFilterOrder is the Butterworth order used by the band filters when
// none is given.
const DefaultFilterOrder = 5

// Lowpass applies an order-N Butterworth lowpass with the given corner
// frequency, forward-only, per channel.
func Lowpass(s *Sound, corner Freq, order int) (*Sound, error) {
	return applyIIR(s, filter.LowPass, order, corner, 0)
}

// Highpass applies an order-N Butterworth highpass.
func Highpass(s *Sound, corner Freq, order int) (*Sound, error) {
	return applyIIR(s, filter.HighPass, order, corner, 0)
}

// Bandpass applies an order-N Butterworth bandpass between lo and hi.
func Bandpass(s *Sound, lo, hi Freq, order int) (*Sound, error) {
	return applyIIR(s, filter.BandPass, order, lo, hi)
}

// Bandstop applies an order-N Butterworth bandstop between lo and hi.
func Bandstop(s *Sound, lo, hi Freq, order int) (*Sound, error) {
	return applyIIR(s, filter.BandStop, order, lo, hi)
}

func applyIIR(s *Sound, kind filter.BandKind, order int, lo, hi Freq) (*Sound, error) {
	if order <= 0 {
		order = DefaultFilterOrder
	}
	rate := float64(s.rate)
	iir, err := filter.Butterworth(kind, order, lo.Hz()/rate, hi.Hz()/rate)
	if err != nil {
		return nil, fmt.Errorf("filter design at %d Hz: %w", s.rate, err)
	}

	out := make([][]float64, len(s.chans))
	for c, ch := range s.chans {
		out[c] = iir.Filter(ch)
	}
	return &Sound{chans: out, rate: s.rate}, nil
}
