// Package mathutil provides the numeric building blocks for filter design:
// the modified Bessel function I₀, Kaiser window parameter formulas, and
// FIR length estimation.
package mathutil

import (
	"math"
)

// BesselI0 computes the modified Bessel function of the first kind, order
// zero. It is the kernel of the Kaiser window.
//
// Uses the Chebyshev polynomial approximations from Abramowitz & Stegun:
// a direct series for |x| ≤ 3.75 and an exponentially scaled asymptotic
// expansion above that. Accuracy is far beyond audio requirements.
func BesselI0(x float64) float64 {
	ax := math.Abs(x)

	if ax < besselSmallArgThreshold {
		t := x / besselSmallArgThreshold
		t *= t
		return 1.0 + t*(besselI0Coeff1+t*(besselI0Coeff2+t*(besselI0Coeff3+
			t*(besselI0Coeff4+t*(besselI0Coeff5+t*besselI0Coeff6)))))
	}

	t := besselSmallArgThreshold / ax
	result := besselI0AsympCoeff0 + t*(besselI0AsympCoeff1+t*(besselI0AsympCoeff2+
		t*(besselI0AsympCoeff3+t*(besselI0AsympCoeff4+t*(besselI0AsympCoeff5+
			t*(besselI0AsympCoeff6+t*(besselI0AsympCoeff7+t*besselI0AsympCoeff8)))))))

	return math.Exp(ax) * result / math.Sqrt(ax)
}

// KaiserBeta computes the Kaiser window β parameter from the desired
// stopband attenuation in decibels, using the Kaiser & Schafer formulas:
//
//	att > 50 dB:        β = 0.1102·(att − 8.7)
//	21 < att ≤ 50 dB:   β = 0.5842·(att − 21)^0.4 + 0.07886·(att − 21)
//	att ≤ 21 dB:        β = 0
func KaiserBeta(attenuation float64) float64 {
	switch {
	case attenuation > kaiserAttHigh:
		return kaiserBetaHighCoeff1 * (attenuation - kaiserBetaHighOffset)
	case attenuation >= kaiserAttMedium:
		delta := attenuation - kaiserAttMedium
		return kaiserBetaMediumCoeff1*math.Pow(delta, kaiserBetaMediumPower) +
			kaiserBetaMediumCoeff2*delta
	default:
		return 0.0
	}
}

// KaiserAttenuation estimates the stopband attenuation achieved by a Kaiser
// window with the given β. Approximate inverse of KaiserBeta.
func KaiserAttenuation(beta float64) float64 {
	if beta < kaiserBetaMinThreshold {
		return 0.0
	}
	return kaiserBetaHighOffset + beta/kaiserBetaHighCoeff1
}

// EstimateFilterLength estimates the FIR length needed to reach the given
// stopband attenuation across the given transition bandwidth (as a fraction
// of the sample rate), per Kaiser's formula N ≈ (att − 8) / (2.285·2π·Δf).
// The result is rounded up to an odd tap count for a symmetric filter.
func EstimateFilterLength(attenuation, transitionBW float64) int {
	if transitionBW <= 0 {
		transitionBW = defaultTransitionBW
	}

	numTaps := (attenuation - kaiserFilterLengthOffset) /
		(kaiserFilterLengthMultiplier * twoPiFactor * math.Pi * transitionBW)

	taps := int(math.Ceil(numTaps))
	if taps%2 == 0 {
		taps++
	}

	if taps < minFilterLength {
		taps = minFilterLength
	}
	if taps > maxFilterLength {
		taps = maxFilterLength
	}
	return taps
}
