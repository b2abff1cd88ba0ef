// Package biquad implements second-order filter sections over a generic
// sample scalar, including a variant with a saturator embedded in the
// recursive path for nonlinear feedback emulation.
package biquad

import "github.com/cwbudde/algo-va/dsp/core"

// Coefficients holds the transfer function coefficients for a single
// second-order section. a0 is normalized to 1 and not stored.
//
// The sign convention follows Direct Form II Transposed:
//
//	y  = B0*x + d0
//	d0 = B1*x - A1*y + d1
//	d1 = B2*x - A2*y
type Coefficients[T core.Float] struct {
	B0, B1, B2 T // feedforward (numerator)
	A1, A2     T // feedback (denominator)
}

// Section is a single biquad filter with coefficients and internal state.
// It implements Direct Form II Transposed processing.
type Section[T core.Float] struct {
	Coefficients[T]

	d0, d1 T
}

// NewSection returns a Section initialized with the given coefficients
// and zero state.
func NewSection[T core.Float](c Coefficients[T]) *Section[T] {
	return &Section[T]{Coefficients: c}
}

// ProcessSample filters one input sample and returns the output.
func (s *Section[T]) ProcessSample(x T) T {
	y := s.B0*x + s.d0
	s.d0 = s.B1*x - s.A1*y + s.d1
	s.d1 = s.B2*x - s.A2*y

	return y
}

// ProcessInPlace filters a block of samples in-place. Zero-alloc.
func (s *Section[T]) ProcessInPlace(buf []T) {
	b0, b1, b2 := s.B0, s.B1, s.B2
	a1, a2 := s.A1, s.A2
	d0, d1 := s.d0, s.d1

	for i, x := range buf {
		y := b0*x + d0
		d0 = b1*x - a1*y + d1
		d1 = b2*x - a2*y
		buf[i] = y
	}

	s.d0, s.d1 = d0, d1
}

// ProcessTo filters src into dst. Both slices must have the same length.
// Zero-alloc.
func (s *Section[T]) ProcessTo(dst, src []T) {
	n := len(src)
	if n == 0 {
		return
	}

	_ = dst[n-1]
	for i, x := range src {
		dst[i] = s.ProcessSample(x)
	}
}

// Reset clears the delay line to zero.
func (s *Section[T]) Reset() {
	s.d0 = 0
	s.d1 = 0
}

// Latency reports zero samples for the minimum-phase section.
func (s *Section[T]) Latency() int { return 0 }

// State returns the current delay-line state [d0, d1].
func (s *Section[T]) State() [2]T {
	return [2]T{s.d0, s.d1}
}

// SetState restores a previously saved delay-line state.
func (s *Section[T]) SetState(state [2]T) {
	s.d0 = state[0]
	s.d1 = state[1]
}

// Chain is a cascade of sections processed in series.
type Chain[T core.Float] struct {
	sections []Section[T]
}

// NewChain builds a cascade from the given coefficient list.
func NewChain[T core.Float](coeffs []Coefficients[T]) *Chain[T] {
	sections := make([]Section[T], len(coeffs))
	for i, c := range coeffs {
		sections[i] = Section[T]{Coefficients: c}
	}

	return &Chain[T]{sections: sections}
}

// ProcessSample filters one sample through every section in order.
func (c *Chain[T]) ProcessSample(x T) T {
	for i := range c.sections {
		x = c.sections[i].ProcessSample(x)
	}

	return x
}

// ProcessInPlace filters a block through the cascade.
func (c *Chain[T]) ProcessInPlace(buf []T) {
	for i := range c.sections {
		c.sections[i].ProcessInPlace(buf)
	}
}

// Reset clears every section.
func (c *Chain[T]) Reset() {
	for i := range c.sections {
		c.sections[i].Reset()
	}
}

// Latency reports zero samples.
func (c *Chain[T]) Latency() int { return 0 }

// Len returns the number of sections.
func (c *Chain[T]) Len() int { return len(c.sections) }
