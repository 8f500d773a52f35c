// Package filter provides the filter design used by the sound package:
// Kaiser-windowed sinc FIR prototypes for resampling and Butterworth IIR
// cascades for the band filters.
package filter

import (
	"fmt"
	"math"

	"github.com/tphakala/simd/f64"

	"github.com/psylab/psykit/internal/mathutil"
)

const (
	minTaps = 3
	maxTaps = 8191

	// Sinc evaluation below this |x| uses the L'Hôpital limit.
	sincZeroThreshold = 1e-10
)

// KaiserWindow generates a Kaiser window of the given length and β.
// The window is symmetric; higher β trades main-lobe width for deeper
// sidelobe suppression.
func KaiserWindow(length int, beta float64) []float64 {
	if length < 1 {
		return []float64{}
	}

	window := make([]float64, length)
	if length == 1 {
		window[0] = 1.0
		return window
	}

	alpha := float64(length-1) / 2
	i0Beta := mathutil.BesselI0(beta)

	for n := range length {
		x := (float64(n) - alpha) / alpha
		window[n] = mathutil.BesselI0(beta*math.Sqrt(1.0-x*x)) / i0Beta
	}
	return window
}

// FIRSpec describes a windowed-sinc lowpass design.
type FIRSpec struct {
	// Taps is the filter length; odd lengths give a symmetric linear-phase
	// filter.
	Taps int

	// Cutoff is the normalized cutoff frequency in (0, 0.5), where 0.5 is
	// Nyquist.
	Cutoff float64

	// Attenuation is the target stopband attenuation in dB.
	Attenuation float64

	// Gain is the passband (DC) gain, typically 1.
	Gain float64
}

// Validate reports whether the spec describes a designable filter.
func (s *FIRSpec) Validate() error {
	if s.Taps < minTaps || s.Taps > maxTaps {
		return fmt.Errorf("filter length %d out of range [%d, %d]", s.Taps, minTaps, maxTaps)
	}
	if s.Cutoff <= 0 || s.Cutoff >= 0.5 {
		return fmt.Errorf("cutoff %f out of range (0, 0.5)", s.Cutoff)
	}
	if s.Attenuation < 0 {
		return fmt.Errorf("attenuation %f dB must be positive", s.Attenuation)
	}
	if s.Gain <= 0 {
		return fmt.Errorf("gain %f must be positive", s.Gain)
	}
	return nil
}

// LowPassFIR designs a Kaiser-windowed sinc lowpass filter: an ideal sinc
// truncated to Taps coefficients, shaped by a Kaiser window sized for the
// requested attenuation, and normalized to the requested DC gain.
func LowPassFIR(spec FIRSpec) ([]float64, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	beta := mathutil.KaiserBeta(spec.Attenuation)
	window := KaiserWindow(spec.Taps, beta)

	coeffs := make([]float64, spec.Taps)
	center := float64(spec.Taps-1) / 2
	for n := range spec.Taps {
		x := float64(n) - center
		coeffs[n] = sinc(spec.Cutoff, x) * window[n]
	}

	normalizeDC(coeffs, spec.Gain)
	return coeffs, nil
}

// LowPassFIRAuto designs a lowpass with the length chosen from the
// attenuation and transition bandwidth via Kaiser's estimate.
func LowPassFIRAuto(cutoff, transitionBW, attenuation, gain float64) ([]float64, error) {
	return LowPassFIR(FIRSpec{
		Taps:        mathutil.EstimateFilterLength(attenuation, transitionBW),
		Cutoff:      cutoff,
		Attenuation: attenuation,
		Gain:        gain,
	})
}

// sinc evaluates the ideal lowpass impulse response sin(2πfc·x)/(πx) with
// the x→0 limit 2fc.
func sinc(cutoff, x float64) float64 {
	if math.Abs(x) < sincZeroThreshold {
		return 2 * cutoff
	}
	return math.Sin(2*math.Pi*cutoff*x) / (math.Pi * x)
}

// normalizeDC scales coeffs so their sum equals gain.
func normalizeDC(coeffs []float64, gain float64) {
	sum := f64.Sum(coeffs)
	if math.Abs(sum) > sincZeroThreshold {
		f64.Scale(coeffs, coeffs, gain/sum)
	}
}

// Response evaluates the magnitude response of an FIR filter at the given
// normalized frequency in [0, 0.5] via the DTFT. Used by design tests.
func Response(coeffs []float64, freq float64) float64 {
	var re, im float64
	omega := 2 * math.Pi * freq
	for n, h := range coeffs {
		angle := omega * float64(n)
		re += h * math.Cos(angle)
		im -= h * math.Sin(angle)
	}
	return math.Hypot(re, im)
}
