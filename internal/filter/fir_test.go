package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psylab/psykit/internal/testutil"
)

func TestKaiserWindow(t *testing.T) {
	t.Run("symmetric", func(t *testing.T) {
		w := KaiserWindow(101, 8.0)
		require.Len(t, w, 101)
		testutil.AssertSymmetric(t, w, testutil.DefaultTolerance)
	})

	t.Run("peaks at center", func(t *testing.T) {
		w := KaiserWindow(65, 6.0)
		center := w[len(w)/2]
		assert.InDelta(t, 1.0, center, 1e-12)
		for i, v := range w {
			assert.LessOrEqual(t, v, center+1e-12, "w[%d]", i)
		}
	})

	t.Run("degenerate lengths", func(t *testing.T) {
		assert.Empty(t, KaiserWindow(0, 8))
		assert.Equal(t, []float64{1.0}, KaiserWindow(1, 8))
	})
}

func TestLowPassFIR(t *testing.T) {
	spec := FIRSpec{Taps: 101, Cutoff: 0.25, Attenuation: 80, Gain: 1.0}
	coeffs, err := LowPassFIR(spec)
	require.NoError(t, err)
	require.Len(t, coeffs, spec.Taps)

	t.Run("well formed", func(t *testing.T) {
		testutil.AssertNoNaNOrInf(t, coeffs)
		testutil.AssertSymmetric(t, coeffs, testutil.DefaultTolerance)
	})

	t.Run("unit DC gain", func(t *testing.T) {
		assert.InDelta(t, 1.0, Response(coeffs, 0), 1e-9)
	})

	t.Run("passband flat", func(t *testing.T) {
		for _, f := range []float64{0.05, 0.1, 0.15} {
			assert.InDelta(t, 1.0, Response(coeffs, f), 0.01, "f=%f", f)
		}
	})

	t.Run("stopband attenuated", func(t *testing.T) {
		for _, f := range []float64{0.32, 0.4, 0.48} {
			mag := Response(coeffs, f)
			assert.Less(t, testutil.DB(mag), -60.0, "f=%f", f)
		}
	})
}

func TestLowPassFIRAuto(t *testing.T) {
	coeffs, err := LowPassFIRAuto(0.2, 0.05, 70, 1.0)
	require.NoError(t, err)
	assert.Equal(t, 1, len(coeffs)%2, "auto design must be odd-length")
	assert.InDelta(t, 1.0, Response(coeffs, 0), 1e-9)
}

func TestFIRSpecValidate(t *testing.T) {
	cases := []struct {
		name string
		spec FIRSpec
	}{
		{"too short", FIRSpec{Taps: 1, Cutoff: 0.25, Attenuation: 80, Gain: 1}},
		{"too long", FIRSpec{Taps: 100000, Cutoff: 0.25, Attenuation: 80, Gain: 1}},
		{"cutoff at nyquist", FIRSpec{Taps: 101, Cutoff: 0.5, Attenuation: 80, Gain: 1}},
		{"cutoff zero", FIRSpec{Taps: 101, Cutoff: 0, Attenuation: 80, Gain: 1}},
		{"negative attenuation", FIRSpec{Taps: 101, Cutoff: 0.25, Attenuation: -1, Gain: 1}},
		{"zero gain", FIRSpec{Taps: 101, Cutoff: 0.25, Attenuation: 80, Gain: 0}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LowPassFIR(tc.spec)
			assert.Error(t, err)
		})
	}
}
