package wdf

import (
	"fmt"

	"github.com/cwbudde/algo-va/dsp/core"
)

// Resistor is an adapted resistive leaf. Matched termination absorbs the
// incident wave completely.
type Resistor[T core.Float] struct {
	r T
	a T
}

// NewResistor returns a resistor leaf with the given resistance in ohms.
func NewResistor[T core.Float](r T) (*Resistor[T], error) {
	if !(r > 0) || !core.IsFinite(r) {
		return nil, fmt.Errorf("wdf: resistance must be > 0 and finite: %v", r)
	}

	return &Resistor[T]{r: r}, nil
}

func (e *Resistor[T]) Impedance() T  { return e.r }
func (e *Resistor[T]) Wave() Wave[T] { return Wave[T]{A: e.a} }
func (e *Resistor[T]) Incident(x T)  { e.a = x }
func (e *Resistor[T]) Reflected() T  { return 0 }
func (e *Resistor[T]) Reset()        { e.a = 0 }

// Capacitor is an adapted capacitive leaf under the bilinear transform:
// it reflects the previous incident wave, and its port resistance is
// 1/(2*fs*C).
type Capacitor[T core.Float] struct {
	c          T
	sampleRate T

	a, b T
}

// NewCapacitor returns a capacitor leaf with capacitance in farads.
func NewCapacitor[T core.Float](sampleRate float64, c T) (*Capacitor[T], error) {
	if !(sampleRate > 0) {
		return nil, fmt.Errorf("wdf: sample rate must be > 0: %f", sampleRate)
	}

	if !(c > 0) || !core.IsFinite(c) {
		return nil, fmt.Errorf("wdf: capacitance must be > 0 and finite: %v", c)
	}

	return &Capacitor[T]{c: c, sampleRate: T(sampleRate)}, nil
}

func (e *Capacitor[T]) Impedance() T  { return 1 / (2 * e.sampleRate * e.c) }
func (e *Capacitor[T]) Wave() Wave[T] { return Wave[T]{A: e.a, B: e.b} }
func (e *Capacitor[T]) Incident(x T)  { e.a = x }

func (e *Capacitor[T]) Reflected() T {
	e.b = e.a
	return e.b
}

func (e *Capacitor[T]) Reset() {
	e.a = 0
	e.b = 0
}

// Inductor is an adapted inductive leaf under the bilinear transform: it
// reflects the negated previous incident wave, port resistance 2*fs*L.
type Inductor[T core.Float] struct {
	l          T
	sampleRate T

	a, b T
}

// NewInductor returns an inductor leaf with inductance in henries.
func NewInductor[T core.Float](sampleRate float64, l T) (*Inductor[T], error) {
	if !(sampleRate > 0) {
		return nil, fmt.Errorf("wdf: sample rate must be > 0: %f", sampleRate)
	}

	if !(l > 0) || !core.IsFinite(l) {
		return nil, fmt.Errorf("wdf: inductance must be > 0 and finite: %v", l)
	}

	return &Inductor[T]{l: l, sampleRate: T(sampleRate)}, nil
}

func (e *Inductor[T]) Impedance() T  { return 2 * e.sampleRate * e.l }
func (e *Inductor[T]) Wave() Wave[T] { return Wave[T]{A: e.a, B: e.b} }
func (e *Inductor[T]) Incident(x T)  { e.a = x }

func (e *Inductor[T]) Reflected() T {
	e.b = -e.a
	return e.b
}

func (e *Inductor[T]) Reset() {
	e.a = 0
	e.b = 0
}

// ResistiveVoltageSource is an adapted voltage source with internal
// resistance. Vs may be updated between samples to drive the circuit.
type ResistiveVoltageSource[T core.Float] struct {
	Vs T

	r    T
	a, b T
}

// NewResistiveVoltageSource returns a source with the given internal
// resistance and initial source voltage.
func NewResistiveVoltageSource[T core.Float](r, vs T) (*ResistiveVoltageSource[T], error) {
	if !(r > 0) || !core.IsFinite(r) {
		return nil, fmt.Errorf("wdf: source resistance must be > 0 and finite: %v", r)
	}

	return &ResistiveVoltageSource[T]{Vs: vs, r: r}, nil
}

func (e *ResistiveVoltageSource[T]) Impedance() T  { return e.r }
func (e *ResistiveVoltageSource[T]) Wave() Wave[T] { return Wave[T]{A: e.a, B: e.b} }
func (e *ResistiveVoltageSource[T]) Incident(x T)  { e.a = x }

func (e *ResistiveVoltageSource[T]) Reflected() T {
	e.b = e.Vs
	return e.b
}

func (e *ResistiveVoltageSource[T]) Reset() {
	e.a = 0
	e.b = 0
}
