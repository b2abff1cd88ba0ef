package biquad

import (
	"fmt"

	"github.com/cwbudde/algo-va/dsp/core"
	"github.com/cwbudde/algo-va/dsp/saturator"
	"github.com/cwbudde/algo-va/dsp/solver"
)

// FeedbackMode selects how the saturated output node is resolved each
// sample.
type FeedbackMode int

const (
	// FeedbackSolved resolves the node equation with the implicit solver.
	// Zero-delay, stable at any drive.
	FeedbackSolved FeedbackMode = iota

	// FeedbackDelayed substitutes the previous output into the saturator
	// instead of solving. Cheaper, but the one-sample error can oscillate
	// and grow at high drive. Kept for comparison and for material that
	// relies on that ring.
	FeedbackDelayed
)

// NonlinearSection is a Direct Form I biquad whose output node is loaded
// by a saturator, as a clipping element across the recursive path:
//
//	v + drive*sat(v) = b0*x + b1*x1 + b2*x2 - a1*v1 - a2*v2
//
// At drive 0 it reduces to the linear section. The node value v is the
// output and feeds the recursion.
type NonlinearSection[T core.Float] struct {
	coeffs Coefficients[T]
	shaper saturator.Shaper[T]
	drive  T
	mode   FeedbackMode
	nr     *solver.NewtonRaphson[T]

	x1, x2 T
	v1, v2 T
}

// NewNonlinearSection builds a nonlinear section around the given
// coefficients and saturator.
func NewNonlinearSection[T core.Float](c Coefficients[T], shaper saturator.Shaper[T], drive T, mode FeedbackMode) (*NonlinearSection[T], error) {
	if shaper == nil {
		return nil, fmt.Errorf("biquad: nonlinear section needs a saturator")
	}

	if !core.IsFinite(drive) || drive < 0 {
		return nil, fmt.Errorf("biquad: drive must be finite and >= 0: %v", drive)
	}

	if mode != FeedbackSolved && mode != FeedbackDelayed {
		return nil, fmt.Errorf("biquad: unknown feedback mode: %d", mode)
	}

	return &NonlinearSection[T]{
		coeffs: c,
		shaper: shaper,
		drive:  drive,
		mode:   mode,
		nr:     solver.Default[T](),
	}, nil
}

// SetDrive adjusts the saturator loading. Safe to call between samples.
func (s *NonlinearSection[T]) SetDrive(drive T) error {
	if !core.IsFinite(drive) || drive < 0 {
		return fmt.Errorf("biquad: drive must be finite and >= 0: %v", drive)
	}

	s.drive = drive

	return nil
}

type nodeEq[T core.Float] struct {
	shaper saturator.Shaper[T]
	drive  T
	u      T
}

func (e nodeEq[T]) Residual(v T) T {
	return v + e.drive*e.shaper.Evaluate(v) - e.u
}

func (e nodeEq[T]) Derivative(v T) (T, bool) {
	return 1 + e.drive*e.shaper.Derivative(v), true
}

// ProcessSample filters one sample through the saturated section.
func (s *NonlinearSection[T]) ProcessSample(x T) T {
	c := s.coeffs
	u := c.B0*x + c.B1*s.x1 + c.B2*s.x2 - c.A1*s.v1 - c.A2*s.v2

	var v T

	switch s.mode {
	case FeedbackDelayed:
		v = u - s.drive*s.shaper.Evaluate(s.v1)
	default:
		v, _ = s.nr.Solve(nodeEq[T]{shaper: s.shaper, drive: s.drive, u: u}, s.v1)
	}

	v = core.Sanitize(v)

	s.x2, s.x1 = s.x1, x
	s.v2, s.v1 = s.v1, v

	return v
}

// ProcessInPlace filters a block in-place. Zero-alloc.
func (s *NonlinearSection[T]) ProcessInPlace(buf []T) {
	for i, x := range buf {
		buf[i] = s.ProcessSample(x)
	}
}

// Reset clears the filter history.
func (s *NonlinearSection[T]) Reset() {
	s.x1, s.x2 = 0, 0
	s.v1, s.v2 = 0, 0
}

// Latency reports zero samples.
func (s *NonlinearSection[T]) Latency() int { return 0 }
