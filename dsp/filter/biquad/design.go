package biquad

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-va/dsp/core"
)

// Coefficient design runs in float64, the reference precision, and converts
// once at the end; filter state stays in the instantiated scalar type.

func designParams(freq, q, sampleRate float64) (sin, cos, alpha float64, err error) {
	if !(sampleRate > 0) || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return 0, 0, 0, fmt.Errorf("biquad: sample rate must be > 0 and finite: %f", sampleRate)
	}

	if !(freq > 0) || freq >= sampleRate/2 {
		return 0, 0, 0, fmt.Errorf("biquad: frequency must be in (0, Nyquist): %f", freq)
	}

	if !(q > 0) || math.IsNaN(q) || math.IsInf(q, 0) {
		return 0, 0, 0, fmt.Errorf("biquad: q must be > 0 and finite: %f", q)
	}

	w := 2 * math.Pi * freq / sampleRate

	return math.Sin(w), math.Cos(w), math.Sin(w) / (2 * q), nil
}

func fromNormalized[T core.Float](b0, b1, b2, a0, a1, a2 float64) Coefficients[T] {
	return Coefficients[T]{
		B0: T(b0 / a0),
		B1: T(b1 / a0),
		B2: T(b2 / a0),
		A1: T(a1 / a0),
		A2: T(a2 / a0),
	}
}

// LowpassCoefficients designs an RBJ low-pass section.
func LowpassCoefficients[T core.Float](freq, q, sampleRate float64) (Coefficients[T], error) {
	_, cos, alpha, err := designParams(freq, q, sampleRate)
	if err != nil {
		return Coefficients[T]{}, err
	}

	b1 := 1 - cos

	return fromNormalized[T](b1/2, b1, b1/2, 1+alpha, -2*cos, 1-alpha), nil
}

// HighpassCoefficients designs an RBJ high-pass section.
func HighpassCoefficients[T core.Float](freq, q, sampleRate float64) (Coefficients[T], error) {
	_, cos, alpha, err := designParams(freq, q, sampleRate)
	if err != nil {
		return Coefficients[T]{}, err
	}

	b1 := 1 + cos

	return fromNormalized[T](b1/2, -b1, b1/2, 1+alpha, -2*cos, 1-alpha), nil
}

// BandpassCoefficients designs an RBJ constant-peak band-pass section.
func BandpassCoefficients[T core.Float](freq, q, sampleRate float64) (Coefficients[T], error) {
	_, cos, alpha, err := designParams(freq, q, sampleRate)
	if err != nil {
		return Coefficients[T]{}, err
	}

	return fromNormalized[T](alpha, 0, -alpha, 1+alpha, -2*cos, 1-alpha), nil
}
