package sound

import (
	"fmt"

	"github.com/psylab/psykit/internal/resample"
)

// Resample returns s converted to a new sample rate through a polyphase
// antialiasing filter. Downsampling loses the band above the new Nyquist
// frequency; that is reported as a warning, not an error.
func Resample(s *Sound, rate int) (*Sound, error) {
	if rate <= 0 {
		return nil, fmt.Errorf("%w: sample rate %d must be positive", ErrShape, rate)
	}
	if rate == s.rate {
		return s, nil
	}
	if rate < s.rate {
		warnf("resampling %d Hz to %d Hz loses the band above %g Hz",
			s.rate, rate, float64(rate)/2)
	}

	conv, err := resample.New(s.rate, rate)
	if err != nil {
		return nil, err
	}

	out := make([][]float64, len(s.chans))
	for c, ch := range s.chans {
		out[c] = conv.Process(ch)
	}
	return &Sound{chans: out, rate: rate}, nil
}
