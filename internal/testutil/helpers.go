// Package testutil provides shared assertion helpers for the DSP and
// engine tests.
package testutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Default tolerances for signal comparisons.
const (
	DefaultTolerance = 1e-10
	LevelTolerance   = 0.05 // 5% on amplitude/RMS comparisons
)

// AssertNoNaNOrInf verifies that no element of s is NaN or Inf.
func AssertNoNaNOrInf(t *testing.T, s []float64, msgAndArgs ...any) bool {
	t.Helper()
	for i, v := range s {
		if math.IsNaN(v) {
			return assert.Fail(t, "found NaN", "s[%d] is NaN", i)
		}
		if math.IsInf(v, 0) {
			return assert.Fail(t, "found Inf", "s[%d] is Inf", i)
		}
	}
	return true
}

// AssertAllInRange verifies that every element of s lies in [lo, hi].
func AssertAllInRange(t *testing.T, s []float64, lo, hi float64, msgAndArgs ...any) bool {
	t.Helper()
	for i, v := range s {
		if v < lo || v > hi {
			return assert.Fail(t, "value out of range",
				"s[%d]=%f outside [%f, %f]", i, v, lo, hi)
		}
	}
	return true
}

// AssertSymmetric verifies s[i] == s[n-1-i] within tolerance.
func AssertSymmetric(t *testing.T, s []float64, tolerance float64) bool {
	t.Helper()
	n := len(s)
	for i := 0; i < n/2; i++ {
		j := n - 1 - i
		if !assert.InDelta(t, s[i], s[j], tolerance,
			"not symmetric: s[%d]=%f vs s[%d]=%f", i, s[i], j, s[j]) {
			return false
		}
	}
	return true
}

// RMS returns the root mean square of s; 0 for an empty slice.
func RMS(s []float64) float64 {
	if len(s) == 0 {
		return 0
	}
	var sum float64
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(s)))
}

// DB converts an amplitude ratio to decibels.
func DB(ratio float64) float64 {
	if ratio < 1e-12 {
		ratio = 1e-12
	}
	return 20 * math.Log10(ratio)
}

// SineWave generates amplitude·sin(2πf·k/rate) for k = 0..n-1; the common
// test signal.
func SineWave(freq, amplitude float64, rate, n int) []float64 {
	s := make([]float64, n)
	omega := 2 * math.Pi * freq / float64(rate)
	for k := range s {
		s[k] = amplitude * math.Sin(omega*float64(k))
	}
	return s
}
