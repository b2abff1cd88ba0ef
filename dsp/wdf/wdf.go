// Package wdf implements wave digital filters: circuit elements exchange
// incident and reflected waves through series and parallel adaptors, with
// a single unadapted root closing the tree. Nonlinear roots resolve their
// wave equation with the implicit solver.
package wdf

import "github.com/cwbudde/algo-va/dsp/core"

// Wave is the incident/reflected pair at a port.
type Wave[T core.Float] struct {
	A T // incident
	B T // reflected
}

// Voltage returns the port voltage implied by the wave pair.
func (w Wave[T]) Voltage() T {
	return (w.A + w.B) / 2
}

// Current returns the port current for the given port resistance.
func (w Wave[T]) Current(rp T) T {
	return (w.A - w.B) / (2 * rp)
}

// Element is an adapted one-port: a leaf or an adaptor subtree whose port
// resistance is fixed by its constituents so that the reflected wave has
// no instantaneous dependency on the incident one.
type Element[T core.Float] interface {
	// Impedance returns the port resistance in ohms.
	Impedance() T

	// Wave returns the current wave pair at the port.
	Wave() Wave[T]

	// Incident accepts the downward-travelling wave.
	Incident(x T)

	// Reflected computes and returns the upward-travelling wave.
	Reflected() T

	// Reset returns the element to its quiescent state.
	Reset()
}

// Root is the unadapted top of the tree. Its port resistance is imposed
// by the subtree below it.
type Root[T core.Float] interface {
	// SetPortResistance informs the root of the subtree impedance.
	SetPortResistance(r T)

	// Wave returns the current wave pair at the root port.
	Wave() Wave[T]

	// Incident accepts the wave reflected up by the subtree.
	Incident(x T)

	// Reflected resolves the root and returns the wave sent back down.
	Reflected() T

	// Reset returns the root to its quiescent state.
	Reset()
}

// Tree couples a root with its adapted subtree and drives the wave
// exchange once per sample.
type Tree[T core.Float] struct {
	Root Root[T]
	Leaf Element[T]
}

// NewTree wires root and leaf together.
func NewTree[T core.Float](root Root[T], leaf Element[T]) *Tree[T] {
	return &Tree[T]{Root: root, Leaf: leaf}
}

// Advance performs one full wave exchange: the subtree reflects upward,
// the root resolves, and the result propagates back down.
func (t *Tree[T]) Advance() {
	t.Root.SetPortResistance(t.Leaf.Impedance())
	t.Root.Incident(t.Leaf.Reflected())
	t.Leaf.Incident(t.Root.Reflected())
}

// Voltage returns the voltage at the root port after an Advance.
func (t *Tree[T]) Voltage() T {
	return t.Root.Wave().Voltage()
}

// Reset clears the whole tree.
func (t *Tree[T]) Reset() {
	t.Root.Reset()
	t.Leaf.Reset()
}
