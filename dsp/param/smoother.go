package param

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-va/dsp/core"
)

// t60Factor is the level ratio of a 60 dB decay.
const t60Factor = 1000.0

// Smoother ramps a control value toward its target once per sample so
// parameter jumps do not click.
type Smoother[T core.Float] struct {
	linear  bool
	maxStep T
	coeff   T

	value T
}

// NewLinear returns a smoother that slews linearly, covering fullRange
// in rampMs milliseconds.
func NewLinear[T core.Float](sampleRate, rampMs, fullRange float64) (*Smoother[T], error) {
	if !(sampleRate > 0) {
		return nil, fmt.Errorf("param: sample rate must be > 0: %f", sampleRate)
	}

	if !(rampMs > 0) || !(fullRange > 0) {
		return nil, fmt.Errorf("param: ramp and range must be > 0: %f ms over %f", rampMs, fullRange)
	}

	return &Smoother[T]{
		linear:  true,
		maxStep: T(fullRange / (rampMs / 1000 * sampleRate)),
	}, nil
}

// NewExponential returns a smoother with a first-order lag whose step
// response decays 60 dB in t60Ms milliseconds.
func NewExponential[T core.Float](sampleRate, t60Ms float64) (*Smoother[T], error) {
	if !(sampleRate > 0) {
		return nil, fmt.Errorf("param: sample rate must be > 0: %f", sampleRate)
	}

	if !(t60Ms > 0) {
		return nil, fmt.Errorf("param: t60 must be > 0: %f ms", t60Ms)
	}

	samples := t60Ms / 1000 * sampleRate

	return &Smoother[T]{
		coeff: T(math.Exp(-math.Log(t60Factor) / samples)),
	}, nil
}

// Process advances one sample toward target and returns the smoothed
// value.
func (s *Smoother[T]) Process(target T) T {
	if s.linear {
		diff := target - s.value

		switch {
		case diff > s.maxStep:
			s.value += s.maxStep
		case diff < -s.maxStep:
			s.value -= s.maxStep
		default:
			s.value = target
		}

		return s.value
	}

	s.value = target + s.coeff*(s.value-target)
	s.value = core.FlushDenormals(s.value)

	return s.value
}

// Jump sets the state directly, skipping the ramp.
func (s *Smoother[T]) Jump(value T) {
	s.value = value
}

// Value returns the current smoothed state.
func (s *Smoother[T]) Value() T { return s.value }
