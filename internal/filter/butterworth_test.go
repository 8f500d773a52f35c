package filter

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psylab/psykit/internal/testutil"
)

// gainAt evaluates the cascade's magnitude response at normalized
// frequency f (cycles per sample).
func gainAt(iir *IIR, f float64) float64 {
	z := cmplx.Exp(complex(0, -2*math.Pi*f))
	h := complex(1, 0)
	for _, s := range iir.Sections {
		num := complex(s.B0, 0) + complex(s.B1, 0)*z + complex(s.B2, 0)*z*z
		den := complex(1, 0) + complex(s.A1, 0)*z + complex(s.A2, 0)*z*z
		h *= num / den
	}
	return cmplx.Abs(h)
}

func TestButterworthLowPass(t *testing.T) {
	iir, err := Butterworth(LowPass, 5, 0.1, 0)
	require.NoError(t, err)

	assert.InDelta(t, 1.0, gainAt(iir, 0), 1e-6, "unit DC gain")
	assert.InDelta(t, 1/math.Sqrt2, gainAt(iir, 0.1), 0.01, "-3 dB at the corner")
	assert.Less(t, gainAt(iir, 0.2), 0.03, "deep attenuation an octave up")
	assert.Less(t, gainAt(iir, 0.45), 1e-4, "near-Nyquist attenuation")
}

func TestButterworthHighPass(t *testing.T) {
	iir, err := Butterworth(HighPass, 5, 0.1, 0)
	require.NoError(t, err)

	assert.Less(t, gainAt(iir, 0.001), 1e-4, "DC rejected")
	assert.InDelta(t, 1/math.Sqrt2, gainAt(iir, 0.1), 0.01, "-3 dB at the corner")
	assert.InDelta(t, 1.0, gainAt(iir, 0.3), 0.01, "passband above the corner")
}

func TestButterworthBandPass(t *testing.T) {
	iir, err := Butterworth(BandPass, 5, 0.1, 0.2)
	require.NoError(t, err)

	assert.InDelta(t, 1/math.Sqrt2, gainAt(iir, 0.1), 0.02, "-3 dB at the lower edge")
	assert.InDelta(t, 1/math.Sqrt2, gainAt(iir, 0.2), 0.02, "-3 dB at the upper edge")
	assert.Greater(t, gainAt(iir, 0.15), 0.9, "band interior passes")
	assert.Less(t, gainAt(iir, 0.04), 0.01, "below-band rejection")
	assert.Less(t, gainAt(iir, 0.32), 0.01, "above-band rejection")
}

func TestButterworthBandStop(t *testing.T) {
	iir, err := Butterworth(BandStop, 5, 0.1, 0.2)
	require.NoError(t, err)

	assert.InDelta(t, 1.0, gainAt(iir, 0.01), 0.01, "low side passes")
	assert.InDelta(t, 1.0, gainAt(iir, 0.4), 0.01, "high side passes")

	// The transmission zeros sit at the warped geometric center.
	w0 := math.Sqrt(2 * math.Tan(math.Pi*0.1) * 2 * math.Tan(math.Pi*0.2))
	notch := math.Atan(w0/2) / math.Pi
	assert.Less(t, gainAt(iir, notch), 1e-6, "notch at band center")
}

func TestButterworthStability(t *testing.T) {
	for _, order := range []int{1, 2, 5, 10} {
		iir, err := Butterworth(LowPass, order, 0.12, 0)
		require.NoError(t, err)

		impulse := make([]float64, 4000)
		impulse[0] = 1
		resp := iir.Filter(impulse)
		testutil.AssertNoNaNOrInf(t, resp)

		// A stable filter's impulse response dies away.
		tail := testutil.RMS(resp[3000:])
		head := testutil.RMS(resp[:1000])
		assert.Less(t, tail, head*1e-3, "order %d response must decay", order)
	}
}

func TestButterworthFilterSine(t *testing.T) {
	const rate = 44100
	in := testutil.SineWave(8000, 1.0, rate, rate/2)

	iir, err := Butterworth(LowPass, 5, 500.0/rate, 0)
	require.NoError(t, err)
	out := iir.Filter(in)

	// 8 kHz against a 500 Hz corner: essentially gone after settling.
	assert.Less(t, testutil.RMS(out[rate/4:]), 0.01)
}

func TestButterworthValidation(t *testing.T) {
	cases := []struct {
		name   string
		kind   BandKind
		order  int
		lo, hi float64
	}{
		{"order too small", LowPass, 0, 0.1, 0},
		{"order too large", LowPass, 11, 0.1, 0},
		{"corner zero", LowPass, 5, 0, 0},
		{"corner at nyquist", HighPass, 5, 0.5, 0},
		{"band reversed", BandPass, 5, 0.2, 0.1},
		{"band upper at nyquist", BandStop, 5, 0.1, 0.5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Butterworth(tc.kind, tc.order, tc.lo, tc.hi)
			assert.Error(t, err)
		})
	}
}
