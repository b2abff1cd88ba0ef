// Package saturator provides the nonlinear shaping functions used inside
// virtual-analog feedback filters and clipping stages, together with a
// first-order antiderivative anti-aliasing (ADAA) wrapper.
package saturator

import (
	"github.com/cwbudde/algo-approx"
	"github.com/cwbudde/algo-va/dsp/core"
)

// Shaper is an instantaneous nonlinear mapping with a known slope. The
// derivative feeds Newton-Raphson solves when a shaper sits in a feedback
// path.
type Shaper[T core.Float] interface {
	// Evaluate computes y = f(x).
	Evaluate(x T) T

	// Derivative computes f'(x).
	Derivative(x T) T
}

// Integrable is a Shaper whose antiderivative F is known in closed form,
// enabling ADAA processing.
type Integrable[T core.Float] interface {
	Shaper[T]

	// Antiderivative computes F(x) with F' = f.
	Antiderivative(x T) T
}

// Linear is the identity shaper. Embedding it disables a nonlinearity
// without changing a topology.
type Linear[T core.Float] struct{}

func (Linear[T]) Evaluate(x T) T       { return x }
func (Linear[T]) Derivative(T) T       { return 1 }
func (Linear[T]) Antiderivative(x T) T { return x * x / 2 }

// Tanh is the classic symmetric soft saturator.
type Tanh[T core.Float] struct{}

func (Tanh[T]) Evaluate(x T) T { return core.Tanh(x) }

func (Tanh[T]) Derivative(x T) T {
	t := core.Tanh(x)
	return 1 - t*t
}

// Antiderivative returns ln(cosh(x)).
func (Tanh[T]) Antiderivative(x T) T {
	// cosh overflows around |x| ~ 710; ln cosh(x) ~ |x| - ln 2 out there.
	if core.Abs(x) > 20 {
		return core.Abs(x) - T(0.6931471805599453)
	}

	return core.Log(core.Cosh(x))
}

// FastTanh is a cheaper tanh built on algo-approx's fast exponential. It
// trades a little accuracy for CPU, like the lightweight ladder variants.
type FastTanh[T core.Float] struct{}

func (FastTanh[T]) Evaluate(x T) T {
	if x > 10 {
		return 1
	}

	if x < -10 {
		return -1
	}

	// tanh(x) = 1 - 2/(exp(2x)+1)
	e := approx.FastExp(float32(2 * x))
	return T(1 - 2/(float64(e)+1))
}

func (f FastTanh[T]) Derivative(x T) T {
	t := f.Evaluate(x)
	return 1 - t*t
}

// Asinh saturates logarithmically, without a hard ceiling.
type Asinh[T core.Float] struct{}

func (Asinh[T]) Evaluate(x T) T { return core.Asinh(x) }

func (Asinh[T]) Derivative(x T) T {
	return 1 / core.Sqrt(x*x+1)
}

// Antiderivative returns x*asinh(x) - sqrt(x^2+1).
func (Asinh[T]) Antiderivative(x T) T {
	return x*core.Asinh(x) - core.Sqrt(x*x+1)
}

// HardClip clamps to [-1, 1].
type HardClip[T core.Float] struct{}

func (HardClip[T]) Evaluate(x T) T { return core.Clamp(x, -1, 1) }

func (HardClip[T]) Derivative(x T) T {
	if core.Abs(x) > 1 {
		return 0
	}

	return 1
}

func (HardClip[T]) Antiderivative(x T) T {
	switch {
	case x < -1:
		return -x
	case x > 1:
		return x
	default:
		return (x*x + 1) / 2
	}
}

// Blend morphs between the identity and an inner shaper:
// y = x + amount*(f(x) - x).
type Blend[T core.Float, S Shaper[T]] struct {
	Inner  S
	Amount T
}

func (b Blend[T, S]) Evaluate(x T) T {
	return x + b.Amount*(b.Inner.Evaluate(x)-x)
}

func (b Blend[T, S]) Derivative(x T) T {
	return 1 + b.Amount*(b.Inner.Derivative(x)-1)
}
