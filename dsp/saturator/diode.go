package saturator

import (
	"fmt"

	"github.com/cwbudde/algo-va/dsp/core"
	"github.com/cwbudde/algo-va/dsp/solver"
)

// expCeiling caps the Shockley exponentials so intermediate values stay
// finite during hard overdrive.
const expCeiling = 1e35

// DiodeKind selects the physical diode parameters of a DiodeClipper.
type DiodeKind int

const (
	// DiodeSilicon models a common silicon signal diode.
	DiodeSilicon DiodeKind = iota
	// DiodeGermanium models a germanium diode with its softer knee.
	DiodeGermanium
	// DiodeLED models an LED clipping stage.
	DiodeLED
)

func (k DiodeKind) String() string {
	switch k {
	case DiodeSilicon:
		return "silicon"
	case DiodeGermanium:
		return "germanium"
	case DiodeLED:
		return "led"
	default:
		return "unknown"
	}
}

// ShockleyParams returns the saturation current, ideality factor and
// thermal voltage for the given diode kind.
func ShockleyParams(kind DiodeKind) (isat, n, vt float64, err error) {
	switch kind {
	case DiodeSilicon:
		return 4.352e-9, 1.906, 23e-3, nil
	case DiodeGermanium:
		return 200e-9, 2.109, 23e-3, nil
	case DiodeLED:
		return 2.96406e-12, 2.475312, 23e-3, nil
	default:
		return 0, 0, 0, fmt.Errorf("saturator: invalid diode kind: %d", kind)
	}
}

// DiodeClipper models an antiparallel diode pair to ground, driven through
// a series resistance. The output voltage appears on both sides of the
// Shockley equation, so each sample is resolved with a Newton-Raphson
// solve seeded with the previous output (continuity assumption).
type DiodeClipper[T core.Float] struct {
	isat T
	n    T
	vt   T
	fwd  T
	bwd  T

	nr *solver.NewtonRaphson[T]

	vin      T
	lastVout T
}

// NewDiodeClipper constructs a clipper for the given diode kind with fwd
// and bwd diodes in each direction.
func NewDiodeClipper[T core.Float](kind DiodeKind, fwd, bwd int) (*DiodeClipper[T], error) {
	if fwd <= 0 || bwd <= 0 {
		return nil, fmt.Errorf("saturator: diode counts must be > 0: fwd=%d bwd=%d", fwd, bwd)
	}

	isat, n, vt, err := ShockleyParams(kind)
	if err != nil {
		return nil, err
	}

	d := &DiodeClipper[T]{
		isat: T(isat),
		n:    T(n),
		vt:   T(vt),
		fwd:  T(fwd),
		bwd:  T(bwd),
	}

	tol := 1e-3
	if kind == DiodeLED {
		tol = 1e-4
	}

	nr, err := solver.New[T](T(tol), solver.DefaultMaxIterations)
	if err != nil {
		return nil, err
	}

	d.nr = nr

	return d, nil
}

// SetSolver overrides the convergence tolerance and iteration bound,
// trading CPU cost against stability margin.
func (d *DiodeClipper[T]) SetSolver(tolerance T, maxIterations int) error {
	nr, err := solver.New[T](tolerance, maxIterations)
	if err != nil {
		return err
	}

	d.nr = nr

	return nil
}

// Residual implements solver.RootEq: isat*(e^+ - e^-) + 2*vout - vin.
func (d *DiodeClipper[T]) Residual(vout T) T {
	expn, expm := d.exponentials(vout)
	return d.isat*(expn-expm) + 2*vout - d.vin
}

// Derivative implements solver.RootEq.
func (d *DiodeClipper[T]) Derivative(vout T) (T, bool) {
	v := 1 / (d.n * d.vt)
	expn, expm := d.exponentials(vout)

	return v*d.isat*(expn/d.fwd+expm/d.bwd) + 2, true
}

func (d *DiodeClipper[T]) exponentials(vout T) (expn, expm T) {
	v := vout / (d.n * d.vt)
	expn = min(core.Exp(v/d.fwd), T(expCeiling))
	expm = min(core.Exp(-v/d.bwd), T(expCeiling))

	return expn, expm
}

// ProcessSample resolves the clipper output for one input sample.
func (d *DiodeClipper[T]) ProcessSample(x T) T {
	d.vin = core.Sanitize(x)

	// Clamping the seed to the conduction knees keeps Newton-Raphson off
	// the flat far side of the exponential, where it crawls.
	guess := core.Clamp(d.vin, -d.bwd, d.fwd)
	out, _ := d.nr.Solve(d, guess)
	d.lastVout = out

	return out
}

// ProcessInPlace processes a mono buffer in place.
func (d *DiodeClipper[T]) ProcessInPlace(buf []T) {
	for i := range buf {
		buf[i] = d.ProcessSample(buf[i])
	}
}

// LastOutput returns the most recently resolved output voltage.
func (d *DiodeClipper[T]) LastOutput() T { return d.lastVout }

// Reset clears the previous-output seed.
func (d *DiodeClipper[T]) Reset() {
	d.vin = 0
	d.lastVout = 0
}

// Latency reports zero samples.
func (d *DiodeClipper[T]) Latency() int { return 0 }

// DiodeClipperModel is a closed-form approximation of the diode pair's
// transfer curve, cheap enough for per-stage embedding where the full
// implicit solve would be wasteful:
//
//	f(x) = so * asinh(si * x / a) / b
type DiodeClipperModel[T core.Float] struct {
	A, B   T
	Si, So T
}

// NewDiodeClipperModel returns the model fitted to a symmetric silicon pair.
func NewDiodeClipperModel[T core.Float]() DiodeClipperModel[T] {
	return DiodeClipperModel[T]{A: 1, B: 1, Si: 1, So: 1}
}

func (m DiodeClipperModel[T]) Evaluate(x T) T {
	return m.So * core.Asinh(m.Si*x/m.A) / m.B
}

func (m DiodeClipperModel[T]) Derivative(x T) T {
	u := m.Si * x / m.A
	return m.So * m.Si / (m.A * m.B * core.Sqrt(u*u+1))
}
