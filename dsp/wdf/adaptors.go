package wdf

import (
	"fmt"

	"github.com/cwbudde/algo-va/dsp/core"
)

// SeriesAdaptor joins two adapted subtrees in series. Its port resistance
// is the sum of the child resistances, which keeps the upward port free
// of instantaneous reflection.
type SeriesAdaptor[T core.Float] struct {
	left  Element[T]
	right Element[T]

	a, b T
}

// NewSeriesAdaptor wires two children in series.
func NewSeriesAdaptor[T core.Float](left, right Element[T]) (*SeriesAdaptor[T], error) {
	if left == nil || right == nil {
		return nil, fmt.Errorf("wdf: series adaptor children must not be nil")
	}

	return &SeriesAdaptor[T]{left: left, right: right}, nil
}

func (s *SeriesAdaptor[T]) Impedance() T {
	return s.left.Impedance() + s.right.Impedance()
}

func (s *SeriesAdaptor[T]) Wave() Wave[T] { return Wave[T]{A: s.a, B: s.b} }

func (s *SeriesAdaptor[T]) Incident(x T) {
	p1z := s.left.Impedance() / s.Impedance()
	w1 := s.left.Wave()
	w2 := s.right.Wave()

	b1 := w1.B - p1z*(x+w1.B+w2.B)
	s.left.Incident(b1)
	s.right.Incident(-x - b1)
	s.a = x
}

func (s *SeriesAdaptor[T]) Reflected() T {
	s.b = -s.left.Reflected() - s.right.Reflected()
	return s.b
}

func (s *SeriesAdaptor[T]) Reset() {
	s.left.Reset()
	s.right.Reset()
	s.a = 0
	s.b = 0
}

// ParallelAdaptor joins two adapted subtrees in parallel. Its port
// admittance is the sum of the child admittances.
type ParallelAdaptor[T core.Float] struct {
	left  Element[T]
	right Element[T]

	a, b  T
	bdiff T
	btemp T
}

// NewParallelAdaptor wires two children in parallel.
func NewParallelAdaptor[T core.Float](left, right Element[T]) (*ParallelAdaptor[T], error) {
	if left == nil || right == nil {
		return nil, fmt.Errorf("wdf: parallel adaptor children must not be nil")
	}

	return &ParallelAdaptor[T]{left: left, right: right}, nil
}

func (p *ParallelAdaptor[T]) Impedance() T {
	zl := p.left.Impedance()
	zr := p.right.Impedance()

	return zl * zr / (zl + zr)
}

func (p *ParallelAdaptor[T]) Wave() Wave[T] { return Wave[T]{A: p.a, B: p.b} }

func (p *ParallelAdaptor[T]) Incident(x T) {
	b2 := x + p.btemp
	p.left.Incident(p.bdiff + b2)
	p.right.Incident(b2)
	p.a = x
}

func (p *ParallelAdaptor[T]) Reflected() T {
	p1z := p.Impedance() / p.left.Impedance()

	b1 := p.left.Reflected()
	b2 := p.right.Reflected()

	p.bdiff = b2 - b1
	p.btemp = -p1z * p.bdiff
	p.b = b2 + p.btemp

	return p.b
}

func (p *ParallelAdaptor[T]) Reset() {
	p.left.Reset()
	p.right.Reset()
	p.a = 0
	p.b = 0
	p.bdiff = 0
	p.btemp = 0
}

// Inverter flips the polarity of the subtree below it without changing
// its impedance.
type Inverter[T core.Float] struct {
	inner Element[T]

	a, b T
}

// NewInverter wraps an element with a polarity inversion.
func NewInverter[T core.Float](inner Element[T]) (*Inverter[T], error) {
	if inner == nil {
		return nil, fmt.Errorf("wdf: inverter child must not be nil")
	}

	return &Inverter[T]{inner: inner}, nil
}

func (v *Inverter[T]) Impedance() T  { return v.inner.Impedance() }
func (v *Inverter[T]) Wave() Wave[T] { return Wave[T]{A: v.a, B: v.b} }

func (v *Inverter[T]) Incident(x T) {
	v.inner.Incident(-x)
	v.a = x
}

func (v *Inverter[T]) Reflected() T {
	v.b = -v.inner.Reflected()
	return v.b
}

func (v *Inverter[T]) Reset() {
	v.inner.Reset()
	v.a = 0
	v.b = 0
}
