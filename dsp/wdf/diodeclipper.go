package wdf

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-va/dsp/core"
	"github.com/cwbudde/algo-va/dsp/saturator"
)

// clipperCapacitance is the shunt capacitor of the clipper circuit.
const clipperCapacitance = 33e-9

// DiodeClipperCircuit is a complete diode clipper as a processing node:
// a resistive voltage source feeding a parallel RC, clipped by a diode
// pair at the root. The source resistance sets the lowpass cutoff
// against the fixed shunt capacitor.
type DiodeClipperCircuit[T core.Float] struct {
	source *ResistiveVoltageSource[T]
	tree   *Tree[T]
}

// NewDiodeClipperCircuit builds the circuit for the given diode kind and
// lowpass cutoff frequency in Hz.
func NewDiodeClipperCircuit[T core.Float](sampleRate float64, kind saturator.DiodeKind, cutoff float64, fwd, bwd int) (*DiodeClipperCircuit[T], error) {
	if !(cutoff > 0) || cutoff >= sampleRate/2 {
		return nil, fmt.Errorf("wdf: cutoff must be in (0, Nyquist): %f", cutoff)
	}

	r := 1 / (2 * math.Pi * clipperCapacitance * cutoff)

	source, err := NewResistiveVoltageSource[T](T(r), 0)
	if err != nil {
		return nil, err
	}

	shunt, err := NewCapacitor[T](sampleRate, T(clipperCapacitance))
	if err != nil {
		return nil, err
	}

	leaf, err := NewParallelAdaptor[T](source, shunt)
	if err != nil {
		return nil, err
	}

	root, err := NewDiodePairRoot[T](kind, fwd, bwd)
	if err != nil {
		return nil, err
	}

	return &DiodeClipperCircuit[T]{
		source: source,
		tree:   NewTree[T](root, leaf),
	}, nil
}

// ProcessSample drives the source with x and returns the clipped voltage
// across the diode pair.
func (c *DiodeClipperCircuit[T]) ProcessSample(x T) T {
	c.source.Vs = x
	c.tree.Advance()

	return c.tree.Voltage()
}

// ProcessInPlace filters a block in-place. Zero-alloc.
func (c *DiodeClipperCircuit[T]) ProcessInPlace(buf []T) {
	for i, x := range buf {
		buf[i] = c.ProcessSample(x)
	}
}

// Reset clears the circuit state.
func (c *DiodeClipperCircuit[T]) Reset() {
	c.tree.Reset()
}

// Latency reports zero samples.
func (c *DiodeClipperCircuit[T]) Latency() int { return 0 }
