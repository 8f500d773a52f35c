package filter

import (
	"fmt"

	"github.com/psylab/psykit/internal/mathutil"
)

const (
	minPhases = 2
	maxPhases = 8192

	// Below this many taps per phase the per-phase DC gain varies enough to
	// modulate the output envelope.
	minTapsPerPhase = 16
)

// PolyphaseBank is a prototype lowpass decomposed into phases for arbitrary
// ratio resampling. Each tap of each phase stores the coefficient and its
// forward difference, so a fractional phase position is resolved by linear
// interpolation between adjacent phases.
//
// Coeffs layout: [(tap·NumPhases + phase)·2] = coefficient,
// [(tap·NumPhases + phase)·2 + 1] = delta to the next phase.
type PolyphaseBank struct {
	Coeffs       []float64
	NumPhases    int
	TapsPerPhase int
	Cutoff       float64
	Attenuation  float64
}

// BankSpec describes a polyphase bank design.
type BankSpec struct {
	// NumPhases is the number of polyphase branches; more phases give finer
	// fractional positioning.
	NumPhases int

	// Cutoff is the normalized cutoff of the prototype in (0, 0.5).
	Cutoff float64

	// TransitionBW is the prototype transition bandwidth in (0, 0.5).
	TransitionBW float64

	// Attenuation is the stopband attenuation in dB.
	Attenuation float64
}

// Validate reports whether the spec describes a designable bank.
func (s *BankSpec) Validate() error {
	if s.NumPhases < minPhases || s.NumPhases > maxPhases {
		return fmt.Errorf("phase count %d out of range [%d, %d]", s.NumPhases, minPhases, maxPhases)
	}
	if s.Cutoff <= 0 || s.Cutoff >= 0.5 {
		return fmt.Errorf("cutoff %f out of range (0, 0.5)", s.Cutoff)
	}
	if s.TransitionBW <= 0 || s.TransitionBW >= 0.5 {
		return fmt.Errorf("transition bandwidth %f out of range (0, 0.5)", s.TransitionBW)
	}
	if s.Attenuation < 0 {
		return fmt.Errorf("attenuation %f dB must be positive", s.Attenuation)
	}
	return nil
}

// DesignPolyphaseBank designs a prototype lowpass and decomposes it into
// NumPhases branches. The prototype is scaled so that each branch has unit
// DC gain, which keeps resampled output at the input level.
func DesignPolyphaseBank(spec BankSpec) (*PolyphaseBank, error) {
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("invalid polyphase spec: %w", err)
	}

	// The per-phase transition band is NumPhases times narrower in prototype
	// terms, and the prototype needs enough taps for every branch.
	taps := prototypeLength(spec)
	prototype, err := LowPassFIR(FIRSpec{
		Taps:        taps,
		Cutoff:      spec.Cutoff / float64(spec.NumPhases),
		Attenuation: spec.Attenuation,
		Gain:        float64(spec.NumPhases),
	})
	if err != nil {
		return nil, fmt.Errorf("prototype design failed: %w", err)
	}

	bank := &PolyphaseBank{
		NumPhases:    spec.NumPhases,
		TapsPerPhase: (len(prototype) + spec.NumPhases - 1) / spec.NumPhases,
		Cutoff:       spec.Cutoff,
		Attenuation:  spec.Attenuation,
	}
	bank.Coeffs = decompose(prototype, bank.NumPhases, bank.TapsPerPhase)
	return bank, nil
}

// prototypeLength sizes the prototype: the transition bandwidth scales down
// by the phase count, and the floor guarantees minTapsPerPhase per branch.
func prototypeLength(spec BankSpec) int {
	taps := mathutil.EstimateFilterLength(spec.Attenuation, spec.TransitionBW/float64(spec.NumPhases))
	if floor := minTapsPerPhase * spec.NumPhases; taps < floor {
		taps = floor | 1
	}
	if taps > maxTaps {
		taps = maxTaps
	}
	return taps
}

// decompose splits the prototype across phases and precomputes the forward
// difference for each (tap, phase) pair.
func decompose(prototype []float64, numPhases, tapsPerPhase int) []float64 {
	coeffs := make([]float64, tapsPerPhase*numPhases*2)

	at := func(phase, tap int) float64 {
		idx := tap*numPhases + phase
		if idx < 0 || idx >= len(prototype) {
			return 0.0
		}
		return prototype[idx]
	}

	for tap := range tapsPerPhase {
		for phase := range numPhases {
			f0 := at(phase, tap)
			f1 := at(phase+1, tap)
			base := (tap*numPhases + phase) * 2
			coeffs[base] = f0
			coeffs[base+1] = f1 - f0
		}
	}
	return coeffs
}

// Coefficient returns the filter coefficient for a tap at an integer phase
// plus fractional position frac in [0, 1).
func (b *PolyphaseBank) Coefficient(tap, phase int, frac float64) float64 {
	base := (tap*b.NumPhases + phase) * 2
	return b.Coeffs[base] + b.Coeffs[base+1]*frac
}
