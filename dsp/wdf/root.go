package wdf

import (
	"fmt"

	"github.com/cwbudde/algo-va/dsp/core"
	"github.com/cwbudde/algo-va/dsp/saturator"
	"github.com/cwbudde/algo-va/dsp/solver"
)

// IdealVoltageSource is an unadapted root forcing the port voltage to Vs.
type IdealVoltageSource[T core.Float] struct {
	Vs T

	a, b T
}

// NewIdealVoltageSource returns a root source with the given voltage.
func NewIdealVoltageSource[T core.Float](vs T) *IdealVoltageSource[T] {
	return &IdealVoltageSource[T]{Vs: vs}
}

func (r *IdealVoltageSource[T]) SetPortResistance(T) {}
func (r *IdealVoltageSource[T]) Wave() Wave[T]       { return Wave[T]{A: r.a, B: r.b} }
func (r *IdealVoltageSource[T]) Incident(x T)        { r.a = x }

func (r *IdealVoltageSource[T]) Reflected() T {
	r.b = 2*r.Vs - r.a
	return r.b
}

func (r *IdealVoltageSource[T]) Reset() {
	r.a = 0
	r.b = 0
}

// ShortCircuit is an unadapted root holding the port voltage at zero.
type ShortCircuit[T core.Float] struct {
	a T
}

func (r *ShortCircuit[T]) SetPortResistance(T) {}
func (r *ShortCircuit[T]) Wave() Wave[T]       { return Wave[T]{A: r.a, B: -r.a} }
func (r *ShortCircuit[T]) Incident(x T)        { r.a = x }
func (r *ShortCircuit[T]) Reflected() T        { return -r.a }
func (r *ShortCircuit[T]) Reset()              { r.a = 0 }

// OpenCircuit is an unadapted root forcing the port current to zero.
type OpenCircuit[T core.Float] struct {
	a T
}

func (r *OpenCircuit[T]) SetPortResistance(T) {}
func (r *OpenCircuit[T]) Wave() Wave[T]       { return Wave[T]{A: r.a, B: r.a} }
func (r *OpenCircuit[T]) Incident(x T)        { r.a = x }
func (r *OpenCircuit[T]) Reflected() T        { return r.a }
func (r *OpenCircuit[T]) Reset()              { r.a = 0 }

// diodeExpCeiling caps the Shockley exponentials in the wave-domain
// equation during hard overdrive.
const diodeExpCeiling = 1e35

// DiodePairRoot is an antiparallel diode pair as the unadapted root. The
// reflected wave appears inside the Shockley exponentials, so each sample
// resolves a scalar implicit equation.
type DiodePairRoot[T core.Float] struct {
	isat T
	nvt  T
	fwd  T
	bwd  T

	nr *solver.NewtonRaphson[T]

	r    T
	a, b T
}

// NewDiodePairRoot builds the root for the given diode kind with fwd and
// bwd diodes per direction.
func NewDiodePairRoot[T core.Float](kind saturator.DiodeKind, fwd, bwd int) (*DiodePairRoot[T], error) {
	isat, n, vt, err := saturator.ShockleyParams(kind)
	if err != nil {
		return nil, err
	}

	if fwd <= 0 || bwd <= 0 {
		return nil, fmt.Errorf("wdf: diode counts must be > 0: fwd=%d bwd=%d", fwd, bwd)
	}

	nr, err := solver.New[T](1e-4, 100)
	if err != nil {
		return nil, err
	}

	return &DiodePairRoot[T]{
		isat: T(isat),
		nvt:  T(n * vt),
		fwd:  T(fwd),
		bwd:  T(bwd),
		nr:   nr,
	}, nil
}

func (d *DiodePairRoot[T]) SetPortResistance(r T) { d.r = r }
func (d *DiodePairRoot[T]) Wave() Wave[T]         { return Wave[T]{A: d.a, B: d.b} }
func (d *DiodePairRoot[T]) Incident(x T)          { d.a = x }

// Residual implements solver.RootEq in the wave domain: the diode current
// for the candidate reflected wave b must balance the port current.
func (d *DiodePairRoot[T]) Residual(b T) T {
	expP, expM := d.exponentials(b)
	return (2*d.r*d.isat*(expP-expM) - d.a + b) / (2 * d.r)
}

// Derivative implements solver.RootEq.
func (d *DiodePairRoot[T]) Derivative(b T) (T, bool) {
	expP, expM := d.exponentials(b)
	return d.isat*(expP/d.fwd+expM/d.bwd)/(2*d.nvt) + 1/(2*d.r), true
}

func (d *DiodePairRoot[T]) exponentials(b T) (expP, expM T) {
	op := (d.a + b) / (2 * d.nvt)
	expP = min(core.Exp(op/d.fwd), T(diodeExpCeiling))
	expM = min(core.Exp(-op/d.bwd), T(diodeExpCeiling))

	return expP, expM
}

func (d *DiodePairRoot[T]) Reflected() T {
	// Seeding at the conduction knee keeps the iteration off the flat far
	// side of the exponential.
	v := core.Clamp(d.a/2, -d.bwd, d.fwd)
	guess := 2*v - d.a

	b, _ := d.nr.Solve(d, guess)
	d.b = b

	return d.b
}

func (d *DiodePairRoot[T]) Reset() {
	d.r = 0
	d.a = 0
	d.b = 0
}
