package mathutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBesselI0KnownValues(t *testing.T) {
	// Reference values from Abramowitz & Stegun tables.
	cases := []struct {
		x    float64
		want float64
	}{
		{0.0, 1.0},
		{1.0, 1.2660658},
		{2.0, 2.2795853},
		{3.0, 4.8807926},
		{5.0, 27.239872},
	}
	for _, tc := range cases {
		got := BesselI0(tc.x)
		assert.InEpsilon(t, tc.want, got, 1e-5, "I0(%f)", tc.x)
	}
}

func TestBesselI0Symmetric(t *testing.T) {
	for _, x := range []float64{0.5, 2.5, 10.0} {
		assert.Equal(t, BesselI0(x), BesselI0(-x))
	}
}

func TestBesselI0Monotonic(t *testing.T) {
	prev := BesselI0(0)
	for x := 0.5; x < 20; x += 0.5 {
		cur := BesselI0(x)
		require.Greater(t, cur, prev, "I0 must increase at x=%f", x)
		prev = cur
	}
}

func TestKaiserBeta(t *testing.T) {
	t.Run("regimes", func(t *testing.T) {
		assert.Zero(t, KaiserBeta(10))
		assert.InDelta(t, 0.1102*(80-8.7), KaiserBeta(80), 1e-9)

		// Medium regime: formula value at 40 dB.
		want := 0.5842*math.Pow(40-21, 0.4) + 0.07886*(40-21)
		assert.InDelta(t, want, KaiserBeta(40), 1e-9)
	})

	t.Run("monotonic", func(t *testing.T) {
		prev := KaiserBeta(21)
		for att := 25.0; att <= 150; att += 5 {
			cur := KaiserBeta(att)
			require.GreaterOrEqual(t, cur, prev, "beta must not decrease at %f dB", att)
			prev = cur
		}
	})
}

func TestKaiserAttenuationInverse(t *testing.T) {
	for _, att := range []float64{55, 80, 110} {
		beta := KaiserBeta(att)
		assert.InDelta(t, att, KaiserAttenuation(beta), 0.5, "att=%f", att)
	}
}

func TestEstimateFilterLength(t *testing.T) {
	t.Run("odd and bounded", func(t *testing.T) {
		for _, tc := range []struct{ att, bw float64 }{
			{60, 0.1}, {80, 0.05}, {100, 0.01}, {80, 0.0001},
		} {
			n := EstimateFilterLength(tc.att, tc.bw)
			assert.Equal(t, 1, n%2, "length must be odd")
			assert.GreaterOrEqual(t, n, minFilterLength)
			assert.LessOrEqual(t, n, maxFilterLength)
		}
	})

	t.Run("narrower transition needs more taps", func(t *testing.T) {
		wide := EstimateFilterLength(80, 0.1)
		narrow := EstimateFilterLength(80, 0.01)
		assert.Greater(t, narrow, wide)
	})

	t.Run("zero bandwidth falls back", func(t *testing.T) {
		assert.Greater(t, EstimateFilterLength(80, 0), 0)
	})
}
