package mathutil

// Chebyshev polynomial coefficients from Abramowitz & Stegun,
// "Handbook of Mathematical Functions", §9.8.

const (
	besselSmallArgThreshold = 3.75 // |x| threshold between the two I₀ forms

	kaiserBetaMinThreshold = 0.1 // below this β the window is rectangular
)

// I₀(x) small-argument series coefficients.
const (
	besselI0Coeff1 = 3.5156229
	besselI0Coeff2 = 3.0899424
	besselI0Coeff3 = 1.2067492
	besselI0Coeff4 = 0.2659732
	besselI0Coeff5 = 0.360768e-1
	besselI0Coeff6 = 0.45813e-2
)

// I₀(x) large-argument asymptotic coefficients.
const (
	besselI0AsympCoeff0 = 0.39894228
	besselI0AsympCoeff1 = 0.1328592e-1
	besselI0AsympCoeff2 = 0.225319e-2
	besselI0AsympCoeff3 = -0.157565e-2
	besselI0AsympCoeff4 = 0.916281e-2
	besselI0AsympCoeff5 = -0.2057706e-1
	besselI0AsympCoeff6 = 0.2635537e-1
	besselI0AsympCoeff7 = -0.1647633e-1
	besselI0AsympCoeff8 = 0.392377e-2
)

// Kaiser & Schafer β formula constants.
const (
	kaiserAttHigh   = 50.0 // high-attenuation regime threshold (dB)
	kaiserAttMedium = 21.0 // medium-attenuation regime threshold (dB)

	kaiserBetaHighCoeff1 = 0.1102
	kaiserBetaHighOffset = 8.7

	kaiserBetaMediumCoeff1 = 0.5842
	kaiserBetaMediumPower  = 0.4
	kaiserBetaMediumCoeff2 = 0.07886
)

// Filter length estimation constants: N ≈ (att − 8) / (2.285·2π·Δf).
const (
	kaiserFilterLengthOffset     = 8.0
	kaiserFilterLengthMultiplier = 2.285
	twoPiFactor                  = 2.0

	minFilterLength = 3
	maxFilterLength = 8191

	defaultTransitionBW = 0.01
)
