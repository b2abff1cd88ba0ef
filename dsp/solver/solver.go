// Package solver resolves scalar implicit equations of the form r(y) = 0,
// as they appear whenever a processing node's output depends on itself
// through a nonlinearity (zero-delay feedback).
//
// The iteration never fails hard: if the bound is exhausted before the
// residual drops under the tolerance, the best available estimate is
// returned so that audio keeps flowing.
package solver

import (
	"fmt"

	"github.com/cwbudde/algo-va/dsp/core"
)

const (
	// DefaultTolerance is the residual magnitude below which iteration stops.
	DefaultTolerance = 1e-6
	// DefaultMaxIterations bounds the per-sample iteration count.
	DefaultMaxIterations = 50

	// derivativeFloor is the smallest derivative magnitude considered
	// well-conditioned for a Newton step.
	derivativeFloor = 1e-9
)

// RootEq describes a scalar implicit equation r(y) = 0.
type RootEq[T core.Float] interface {
	// Residual evaluates r at the candidate output y.
	Residual(y T) T

	// Derivative evaluates r' at y. ok must be false when no derivative is
	// available; the solver then falls back to fixed-point iteration.
	Derivative(y T) (d T, ok bool)
}

// FuncEq adapts plain functions to the RootEq interface. DF may be nil.
type FuncEq[T core.Float] struct {
	F  func(T) T
	DF func(T) T
}

// Residual implements RootEq.
func (e FuncEq[T]) Residual(y T) T { return e.F(y) }

// Derivative implements RootEq.
func (e FuncEq[T]) Derivative(y T) (T, bool) {
	if e.DF == nil {
		return 0, false
	}

	return e.DF(y), true
}

// NewtonRaphson iterates y_{k+1} = y_k - r(y_k)/r'(y_k), falling back to
// fixed-point steps (y_{k+1} = y_k - r(y_k)) when the derivative is
// unavailable or ill-conditioned.
type NewtonRaphson[T core.Float] struct {
	Tolerance     T
	MaxIterations int
}

// New returns a solver with validated settings.
func New[T core.Float](tolerance T, maxIterations int) (*NewtonRaphson[T], error) {
	if !(tolerance > 0) || !core.IsFinite(tolerance) {
		return nil, fmt.Errorf("solver: tolerance must be > 0 and finite: %v", tolerance)
	}

	if maxIterations <= 0 {
		return nil, fmt.Errorf("solver: max iterations must be > 0: %d", maxIterations)
	}

	return &NewtonRaphson[T]{Tolerance: tolerance, MaxIterations: maxIterations}, nil
}

// Default returns a solver with the package default settings.
func Default[T core.Float]() *NewtonRaphson[T] {
	return &NewtonRaphson[T]{Tolerance: DefaultTolerance, MaxIterations: DefaultMaxIterations}
}

// Solve runs the iteration from guess and returns the estimate together with
// the number of iterations spent. The estimate is the best one available
// even when the iteration bound was hit without reaching the tolerance.
func (nr *NewtonRaphson[T]) Solve(eq RootEq[T], guess T) (T, int) {
	tol := nr.Tolerance
	if tol <= 0 {
		tol = T(DefaultTolerance)
	}

	maxIter := nr.MaxIterations
	if maxIter <= 0 {
		maxIter = DefaultMaxIterations
	}

	y := core.Sanitize(guess)

	for i := 0; i < maxIter; i++ {
		r := eq.Residual(y)
		if !core.IsFinite(r) {
			return y, i
		}

		if core.Abs(r) < tol {
			return y, i
		}

		step := r
		if d, ok := eq.Derivative(y); ok && core.IsFinite(d) && core.Abs(d) > derivativeFloor {
			step = r / d
		}

		next := y - step
		if !core.IsFinite(next) {
			return y, i + 1
		}

		y = next
	}

	return y, maxIter
}

// NumericDerivative returns a forward-difference derivative of f, usable as
// the DF field of FuncEq when no closed form exists.
func NumericDerivative[T core.Float](f func(T) T) func(T) T {
	const h = 1e-4
	return func(y T) T {
		return (f(y+T(h)) - f(y)) / T(h)
	}
}
