// Package svf implements a topology-preserving state-variable filter with
// simultaneous low-pass, band-pass and high-pass outputs and optional
// saturators on the two integrator states.
package svf

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-va/dsp/core"
	"github.com/cwbudde/algo-va/dsp/saturator"
)

// Output selects which filter tap ProcessSample returns.
type Output int

const (
	Lowpass Output = iota
	Bandpass
	Highpass
	Notch
)

// String implements fmt.Stringer.
func (o Output) String() string {
	switch o {
	case Lowpass:
		return "lowpass"
	case Bandpass:
		return "bandpass"
	case Highpass:
		return "highpass"
	case Notch:
		return "notch"
	default:
		return "unknown"
	}
}

const (
	// DefaultCutoff is the cutoff frequency in Hz when none is configured.
	DefaultCutoff = 1000.0
	// DefaultQ is the Butterworth quality factor.
	DefaultQ = 1 / math.Sqrt2

	minQ = 1e-3
	maxQ = 1e3

	// stateScale normalizes integrator states into the saturator's working
	// range so that the nonlinearity bites on resonance peaks, not on
	// nominal levels.
	stateScale = 10.0
)

// Filter is a trapezoidal-integration state-variable filter. The two
// integrator states may be clamped by saturators, which bounds the output
// even at resonance settings a linear filter could not survive.
type Filter[T core.Float] struct {
	sampleRate float64
	cutoff     float64
	q          float64
	output     Output

	g, g1, d T
	twoR     T

	s1, s2 T

	sat1, sat2 saturator.Shaper[T]
}

// Option configures a Filter during construction.
type Option[T core.Float] func(*Filter[T]) error

// WithCutoff sets the cutoff frequency in Hz. Must lie in (0, Nyquist).
func WithCutoff[T core.Float](freq float64) Option[T] {
	return func(f *Filter[T]) error {
		f.cutoff = freq
		return nil
	}
}

// WithQ sets the quality factor.
func WithQ[T core.Float](q float64) Option[T] {
	return func(f *Filter[T]) error {
		f.q = q
		return nil
	}
}

// WithOutput selects the tap returned by ProcessSample.
func WithOutput[T core.Float](o Output) Option[T] {
	return func(f *Filter[T]) error {
		if o < Lowpass || o > Notch {
			return fmt.Errorf("svf: unknown output tap: %d", o)
		}

		f.output = o

		return nil
	}
}

// WithStateSaturators installs saturators on the two integrator states.
// Either may be nil to keep that state linear.
func WithStateSaturators[T core.Float](s1, s2 saturator.Shaper[T]) Option[T] {
	return func(f *Filter[T]) error {
		f.sat1 = s1
		f.sat2 = s2

		return nil
	}
}

// New returns a Filter for the given sample rate.
func New[T core.Float](sampleRate float64, opts ...Option[T]) (*Filter[T], error) {
	if !(sampleRate > 0) || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("svf: sample rate must be > 0 and finite: %f", sampleRate)
	}

	f := &Filter[T]{
		sampleRate: sampleRate,
		cutoff:     DefaultCutoff,
		q:          DefaultQ,
		output:     Lowpass,
	}

	for _, opt := range opts {
		if err := opt(f); err != nil {
			return nil, err
		}
	}

	if err := f.updateCoefficients(); err != nil {
		return nil, err
	}

	return f, nil
}

// SetCutoff retunes the filter. Safe to call between samples.
func (f *Filter[T]) SetCutoff(freq float64) error {
	old := f.cutoff
	f.cutoff = freq

	if err := f.updateCoefficients(); err != nil {
		f.cutoff = old
		_ = f.updateCoefficients()

		return err
	}

	return nil
}

// SetQ adjusts the quality factor. Safe to call between samples.
func (f *Filter[T]) SetQ(q float64) error {
	old := f.q
	f.q = q

	if err := f.updateCoefficients(); err != nil {
		f.q = old
		_ = f.updateCoefficients()

		return err
	}

	return nil
}

// Cutoff returns the configured cutoff frequency in Hz.
func (f *Filter[T]) Cutoff() float64 { return f.cutoff }

// Q returns the configured quality factor.
func (f *Filter[T]) Q() float64 { return f.q }

func (f *Filter[T]) updateCoefficients() error {
	if !(f.cutoff > 0) || f.cutoff >= f.sampleRate/2 {
		return fmt.Errorf("svf: cutoff must be in (0, Nyquist): %f", f.cutoff)
	}

	if f.q < minQ || f.q > maxQ || math.IsNaN(f.q) {
		return fmt.Errorf("svf: q must be in [%g, %g]: %f", minQ, maxQ, f.q)
	}

	// Prewarped trapezoidal integrator gain maps the cutoff exactly.
	g := math.Tan(math.Pi * f.cutoff / f.sampleRate)
	twoR := 1 / f.q

	f.g = T(g)
	f.twoR = T(twoR)
	f.g1 = T(twoR + g)
	f.d = T(1 / (1 + twoR*g + g*g))

	return nil
}

// ProcessMulti advances the filter by one sample and returns all three
// primary taps.
func (f *Filter[T]) ProcessMulti(x T) (lp, bp, hp T) {
	hp = (x - f.g1*f.s1 - f.s2) * f.d

	v1 := f.g * hp
	bp = v1 + f.s1
	s1 := bp + v1

	v2 := f.g * bp
	lp = v2 + f.s2
	s2 := lp + v2

	if f.sat1 != nil {
		s1 = T(stateScale) * f.sat1.Evaluate(s1/T(stateScale))
	}

	if f.sat2 != nil {
		s2 = T(stateScale) * f.sat2.Evaluate(s2/T(stateScale))
	}

	f.s1 = core.FlushDenormals(s1)
	f.s2 = core.FlushDenormals(s2)

	return lp, bp, hp
}

// ProcessSample returns the configured output tap for one input sample.
func (f *Filter[T]) ProcessSample(x T) T {
	lp, bp, hp := f.ProcessMulti(x)

	switch f.output {
	case Bandpass:
		return bp
	case Highpass:
		return hp
	case Notch:
		return lp + hp
	default:
		return lp
	}
}

// ProcessInPlace filters a block through the configured tap. Zero-alloc.
func (f *Filter[T]) ProcessInPlace(buf []T) {
	for i, x := range buf {
		buf[i] = f.ProcessSample(x)
	}
}

// Reset clears the integrator states.
func (f *Filter[T]) Reset() {
	f.s1 = 0
	f.s2 = 0
}

// Latency reports zero samples.
func (f *Filter[T]) Latency() int { return 0 }

// Response evaluates the linear small-signal transfer function of the
// configured tap at the given frequency in Hz. The trapezoidal structure
// is the bilinear transform of the analog prototype, so the response is
// evaluated through the equivalent s-plane variable.
func (f *Filter[T]) Response(freqHz float64) complex128 {
	w := 2 * math.Pi * freqHz / f.sampleRate
	z := complex(math.Cos(w), math.Sin(w))

	// s = (1 - z^-1) / (g * (1 + z^-1))
	zi := 1 / z
	s := (1 - zi) / (complex(float64(f.g), 0) * (1 + zi))

	twoR := complex(float64(f.twoR), 0)
	den := s*s + twoR*s + 1

	switch f.output {
	case Bandpass:
		return s / den
	case Highpass:
		return s * s / den
	case Notch:
		return (s*s + 1) / den
	default:
		return 1 / den
	}
}
