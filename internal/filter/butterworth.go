package filter

import (
	"fmt"
	"math"
	"math/cmplx"
)

const (
	// MinOrder and MaxOrder bound Butterworth designs; band filters double
	// the pole count, so 10 keeps the cascade well conditioned.
	MinOrder = 1
	MaxOrder = 10

	// Poles with |imag| below this are treated as real when pairing
	// second-order sections.
	realPoleTolerance = 1e-10
)

// Biquad is one second-order section in direct form II transposed.
// Coefficients are normalized so a0 == 1.
type Biquad struct {
	B0, B1, B2 float64
	A1, A2     float64
}

// IIR is a cascade of second-order sections.
type IIR struct {
	Sections []Biquad
}

// Filter applies the cascade to x forward-only, returning a new slice.
func (f *IIR) Filter(x []float64) []float64 {
	y := make([]float64, len(x))
	copy(y, x)
	state := make([][2]float64, len(f.Sections))
	for si := range f.Sections {
		s := &f.Sections[si]
		z1, z2 := state[si][0], state[si][1]
		for i, v := range y {
			out := s.B0*v + z1
			z1 = s.B1*v - s.A1*out + z2
			z2 = s.B2*v - s.A2*out
			y[i] = out
		}
		state[si][0], state[si][1] = z1, z2
	}
	return y
}

// Butterworth band kinds.
type BandKind int

const (
	LowPass BandKind = iota
	HighPass
	BandPass
	BandStop
)

// Butterworth designs a digital Butterworth filter of the given order via
// the analog prototype, frequency transform and bilinear transform, returned
// as a biquad cascade. Corner frequencies are normalized to the sample rate
// (cycles per sample, Nyquist = 0.5); band filters take lo < hi, the others
// use only lo.
func Butterworth(kind BandKind, order int, lo, hi float64) (*IIR, error) {
	if order < MinOrder || order > MaxOrder {
		return nil, fmt.Errorf("order %d out of range [%d, %d]", order, MinOrder, MaxOrder)
	}
	if lo <= 0 || lo >= 0.5 {
		return nil, fmt.Errorf("corner %f out of range (0, 0.5)", lo)
	}
	if kind == BandPass || kind == BandStop {
		if hi <= lo || hi >= 0.5 {
			return nil, fmt.Errorf("upper corner %f must lie in (%f, 0.5)", hi, lo)
		}
	}

	// Analog prototype poles on the unit circle, left half plane.
	proto := make([]complex128, order)
	for k := range order {
		theta := math.Pi * float64(2*k+order+1) / float64(2*order)
		proto[k] = cmplx.Exp(complex(0, theta))
	}

	// Prewarped analog corner(s); the bilinear transform below uses fs = 1.
	warped := func(f float64) float64 { return 2 * math.Tan(math.Pi*f) }

	var zeros, poles []complex128
	gain := 1.0

	switch kind {
	case LowPass:
		w := warped(lo)
		for _, p := range proto {
			poles = append(poles, p*complex(w, 0))
		}
		gain = math.Pow(w, float64(order))

	case HighPass:
		w := warped(lo)
		for _, p := range proto {
			poles = append(poles, complex(w, 0)/p)
			zeros = append(zeros, 0)
		}

	case BandPass:
		w0 := math.Sqrt(warped(lo) * warped(hi))
		bw := warped(hi) - warped(lo)
		for _, p := range proto {
			half := p * complex(bw/2, 0)
			d := cmplx.Sqrt(half*half - complex(w0*w0, 0))
			poles = append(poles, half+d, half-d)
			zeros = append(zeros, 0)
		}
		gain = math.Pow(bw, float64(order))

	case BandStop:
		w0 := math.Sqrt(warped(lo) * warped(hi))
		bw := warped(hi) - warped(lo)
		for _, p := range proto {
			half := complex(bw/2, 0) / p
			d := cmplx.Sqrt(half*half - complex(w0*w0, 0))
			poles = append(poles, half+d, half-d)
			zeros = append(zeros, complex(0, w0), complex(0, -w0))
		}

	default:
		return nil, fmt.Errorf("unknown band kind %d", kind)
	}

	zZeros, zPoles, zGain := bilinear(zeros, poles, gain)
	return toSections(zZeros, zPoles, zGain), nil
}

// bilinear maps analog zeros/poles to the z plane with z = (2+s)/(2−s)
// (unit sample rate) and folds the mapping's gain into k. Analog zeros at
// infinity land at z = −1.
func bilinear(zeros, poles []complex128, k float64) (zz, zp []complex128, kz float64) {
	const fs2 = 2.0

	num := complex(k, 0)
	for _, z := range zeros {
		num *= complex(fs2, 0) - z
	}
	den := complex(1, 0)
	for _, p := range poles {
		den *= complex(fs2, 0) - p
	}
	kz = real(num / den)

	zz = make([]complex128, 0, len(poles))
	for _, z := range zeros {
		zz = append(zz, (complex(fs2, 0)+z)/(complex(fs2, 0)-z))
	}
	for len(zz) < len(poles) {
		zz = append(zz, -1)
	}

	zp = make([]complex128, 0, len(poles))
	for _, p := range poles {
		zp = append(zp, (complex(fs2, 0)+p)/(complex(fs2, 0)-p))
	}
	return zz, zp, kz
}

// toSections pairs conjugate roots into biquads. Complex roots join their
// conjugates; real roots pair up in order, with a lone real root forming a
// first-order section. The overall gain multiplies the first section.
func toSections(zeros, poles []complex128, gain float64) *IIR {
	zPairs := pairRoots(zeros)
	pPairs := pairRoots(poles)

	// bilinear always yields len(zeros) == len(poles), so the pair counts
	// match except when a real zero and real pole pair off differently;
	// pad with unity sections.
	for len(zPairs) < len(pPairs) {
		zPairs = append(zPairs, [2]float64{0, 0})
	}

	f := &IIR{Sections: make([]Biquad, len(pPairs))}
	for i := range pPairs {
		f.Sections[i] = Biquad{
			B0: 1, B1: zPairs[i][0], B2: zPairs[i][1],
			A1: pPairs[i][0], A2: pPairs[i][1],
		}
	}
	if len(f.Sections) > 0 {
		s := &f.Sections[0]
		s.B0 *= gain
		s.B1 *= gain
		s.B2 *= gain
	}
	return f
}

// pairRoots turns a conjugate-symmetric root set into quadratic coefficient
// pairs (c1, c2) representing z² + c1·z + c2.
func pairRoots(roots []complex128) [][2]float64 {
	var pairs [][2]float64
	var reals []float64

	for _, r := range roots {
		if math.Abs(imag(r)) < realPoleTolerance {
			reals = append(reals, real(r))
			continue
		}
		if imag(r) > 0 {
			// Conjugate partner contributes the same quadratic.
			pairs = append(pairs, [2]float64{-2 * real(r), real(r)*real(r) + imag(r)*imag(r)})
		}
	}

	for i := 0; i+1 < len(reals); i += 2 {
		pairs = append(pairs, [2]float64{-(reals[i] + reals[i+1]), reals[i] * reals[i+1]})
	}
	if len(reals)%2 == 1 {
		// First-order remainder: z + c1.
		pairs = append(pairs, [2]float64{-reals[len(reals)-1], 0})
	}
	return pairs
}
