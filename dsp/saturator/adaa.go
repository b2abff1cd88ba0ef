package saturator

import (
	"fmt"

	"github.com/cwbudde/algo-va/dsp/core"
)

const defaultADAAEpsilon = 1e-3

// ADAA1 applies first-order antiderivative anti-aliasing to an Integrable
// shaper:
//
//	y[n] = (F(x[n]) - F(x[n-1])) / (x[n] - x[n-1])
//
// with a direct evaluation at the interval midpoint when consecutive inputs
// are closer than epsilon, which removes the 0/0 singularity. The scheme
// costs one sample of input history and buys a large reduction in aliasing
// over raw evaluation.
type ADAA1[T core.Float] struct {
	inner   Integrable[T]
	epsilon T

	prevInput T
	prevAnti  T
}

// NewADAA1 wraps inner with first-order ADAA. epsilon <= 0 selects the
// default threshold.
func NewADAA1[T core.Float](inner Integrable[T], epsilon T) (*ADAA1[T], error) {
	if inner == nil {
		return nil, fmt.Errorf("saturator: adaa inner shaper must not be nil")
	}

	if epsilon <= 0 {
		epsilon = T(defaultADAAEpsilon)
	}

	if !core.IsFinite(epsilon) {
		return nil, fmt.Errorf("saturator: adaa epsilon must be finite: %v", epsilon)
	}

	return &ADAA1[T]{
		inner:    inner,
		epsilon:  epsilon,
		prevAnti: inner.Antiderivative(0),
	}, nil
}

// ProcessSample shapes one input sample and commits it to the history.
func (a *ADAA1[T]) ProcessSample(x T) T {
	y := a.peek(x)
	a.prevInput = x
	a.prevAnti = a.inner.Antiderivative(x)

	return y
}

// ProcessInPlace shapes a buffer in place.
func (a *ADAA1[T]) ProcessInPlace(buf []T) {
	for i := range buf {
		buf[i] = a.ProcessSample(buf[i])
	}
}

// Reset clears the one-sample history.
func (a *ADAA1[T]) Reset() {
	a.prevInput = 0
	a.prevAnti = a.inner.Antiderivative(0)
}

// Latency reports zero; ADAA introduces a half-sample tendency that is not
// representable in whole samples.
func (a *ADAA1[T]) Latency() int { return 0 }

// Inner returns the wrapped shaper.
func (a *ADAA1[T]) Inner() Integrable[T] { return a.inner }

func (a *ADAA1[T]) peek(x T) T {
	den := x - a.prevInput
	if core.Abs(den) < a.epsilon {
		return a.inner.Evaluate((x + a.prevInput) / 2)
	}

	return (a.inner.Antiderivative(x) - a.prevAnti) / den
}
