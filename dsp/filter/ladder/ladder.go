// Package ladder implements a four-pole lowpass ladder filter with
// exchangeable stage nonlinearities and negative output feedback.
package ladder

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-va/dsp/core"
	"github.com/cwbudde/algo-va/dsp/saturator"
	"github.com/cwbudde/algo-va/dsp/solver"
)

const (
	// DefaultCutoff is the cutoff frequency in Hz when none is configured.
	DefaultCutoff = 1000.0

	// MaxResonance is the upper bound of the feedback amount. Self
	// oscillation starts at 4.
	MaxResonance = 8.0

	// filterOrder is the number of cascaded one-pole stages.
	filterOrder = 4
)

// Topology computes the next integrator state vector from the feedback
// summing node output y0 and the previous states. Implementations model
// the stage nonlinearity of a particular circuit family.
type Topology[T core.Float] interface {
	NextState(g, y0 T, y [4]T) [4]T
}

// Ideal is the linear ladder with stage differences hard-limited so that
// runaway feedback cannot push the states to infinity.
type Ideal[T core.Float] struct{}

// NextState implements Topology.
func (Ideal[T]) NextState(g, y0 T, y [4]T) [4]T {
	yd := [4]T{
		core.Clamp(y[0]-y0, -1, 1),
		core.Clamp(y[1]-y[0], -1, 1),
		core.Clamp(y[2]-y[1], -1, 1),
		core.Clamp(y[3]-y[2], -1, 1),
	}

	for i := range y {
		y[i] -= g * yd[i]
	}

	return y
}

// OTA models an operational transconductance amplifier ladder: each stage
// difference passes through an output saturator before integration.
type OTA[T core.Float] struct {
	Stages [4]saturator.Shaper[T]
}

// NewOTA returns an OTA topology with tanh stage saturators.
func NewOTA[T core.Float]() OTA[T] {
	var o OTA[T]
	for i := range o.Stages {
		o.Stages[i] = saturator.Tanh[T]{}
	}

	return o
}

// NextState implements Topology.
func (o OTA[T]) NextState(g, y0 T, y [4]T) [4]T {
	yd := [4]T{y[0] - y0, y[1] - y[0], y[2] - y[1], y[3] - y[2]}

	for i := range y {
		y[i] -= g * o.Stages[i].Evaluate(yd[i])
	}

	return y
}

// Transistor models the transistor ladder: every stage output, and the
// input, saturates before the differences are formed.
type Transistor[T core.Float] struct {
	Stages [5]saturator.Shaper[T]
}

// NewTransistor returns a Transistor topology with tanh saturators,
// matching the differential-pair transfer of the classic circuit.
func NewTransistor[T core.Float]() Transistor[T] {
	var tr Transistor[T]
	for i := range tr.Stages {
		tr.Stages[i] = saturator.Tanh[T]{}
	}

	return tr
}

// NextState implements Topology.
func (tr Transistor[T]) NextState(g, y0 T, y [4]T) [4]T {
	y0sat := g * tr.Stages[4].Evaluate(y0)

	var ysat [4]T
	for i := range ysat {
		ysat[i] = g * tr.Stages[i].Evaluate(y[i])
	}

	yd := [4]T{
		ysat[0] - y0sat,
		ysat[1] - ysat[0],
		ysat[2] - ysat[1],
		ysat[3] - ysat[2],
	}

	for i := range y {
		y[i] -= yd[i]
	}

	return y
}

// FeedbackMode selects how the global feedback loop is resolved.
type FeedbackMode int

const (
	// FeedbackDelayed closes the loop over the previous output sample.
	// Cheap, but the extra delay detunes the resonance and can ring out
	// of control near self-oscillation.
	FeedbackDelayed FeedbackMode = iota

	// FeedbackInstantaneous resolves the loop within the sample using the
	// implicit solver.
	FeedbackInstantaneous
)

// Filter is the four-pole ladder. The zero vector is the quiescent state.
type Filter[T core.Float] struct {
	sampleRate float64
	cutoff     float64

	g T
	k T

	compensated bool
	mode        FeedbackMode
	topo        Topology[T]
	nr          *solver.NewtonRaphson[T]

	s [4]T
}

// Option configures a Filter during construction.
type Option[T core.Float] func(*Filter[T]) error

// WithCutoff sets the cutoff frequency in Hz.
func WithCutoff[T core.Float](freq float64) Option[T] {
	return func(f *Filter[T]) error {
		f.cutoff = freq
		return nil
	}
}

// WithResonance sets the feedback amount k. Self-oscillation starts at 4.
func WithResonance[T core.Float](k float64) Option[T] {
	return func(f *Filter[T]) error {
		if k < 0 || k > MaxResonance || math.IsNaN(k) {
			return fmt.Errorf("ladder: resonance must be in [0, %g]: %f", MaxResonance, k)
		}

		f.k = T(k)

		return nil
	}
}

// WithTopology installs a stage nonlinearity model.
func WithTopology[T core.Float](topo Topology[T]) Option[T] {
	return func(f *Filter[T]) error {
		if topo == nil {
			return fmt.Errorf("ladder: topology must not be nil")
		}

		f.topo = topo

		return nil
	}
}

// WithCompensation scales the input by k+1 so the passband level stays
// put as resonance rises.
func WithCompensation[T core.Float](on bool) Option[T] {
	return func(f *Filter[T]) error {
		f.compensated = on
		return nil
	}
}

// WithFeedbackMode selects delayed or instantaneous loop resolution.
func WithFeedbackMode[T core.Float](mode FeedbackMode) Option[T] {
	return func(f *Filter[T]) error {
		if mode != FeedbackDelayed && mode != FeedbackInstantaneous {
			return fmt.Errorf("ladder: unknown feedback mode: %d", mode)
		}

		f.mode = mode

		return nil
	}
}

// New returns a ladder filter for the given sample rate. The default
// topology is Ideal with delayed feedback.
func New[T core.Float](sampleRate float64, opts ...Option[T]) (*Filter[T], error) {
	if !(sampleRate > 0) || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("ladder: sample rate must be > 0 and finite: %f", sampleRate)
	}

	f := &Filter[T]{
		sampleRate: sampleRate,
		cutoff:     DefaultCutoff,
		topo:       Ideal[T]{},
		nr:         solver.Default[T](),
	}

	for _, opt := range opts {
		if err := opt(f); err != nil {
			return nil, err
		}
	}

	if err := f.SetCutoff(f.cutoff); err != nil {
		return nil, err
	}

	return f, nil
}

// SetCutoff retunes the filter using bounded bilinear prewarping: exact
// below fs*pi/4, linearly extrapolated above to keep tan away from its
// pole.
func (f *Filter[T]) SetCutoff(freq float64) error {
	if !(freq > 0) || freq >= f.sampleRate/2 {
		return fmt.Errorf("ladder: cutoff must be in (0, Nyquist): %f", freq)
	}

	f.cutoff = freq

	wc := prewarpBounded(f.sampleRate, 2*math.Pi*freq)
	f.g = T(wc / (2 * f.sampleRate))

	return nil
}

// SetResonance adjusts the feedback amount between samples.
func (f *Filter[T]) SetResonance(k float64) error {
	if k < 0 || k > MaxResonance || math.IsNaN(k) {
		return fmt.Errorf("ladder: resonance must be in [0, %g]: %f", MaxResonance, k)
	}

	f.k = T(k)

	return nil
}

// Cutoff returns the configured cutoff frequency in Hz.
func (f *Filter[T]) Cutoff() float64 { return f.cutoff }

// Resonance returns the configured feedback amount.
func (f *Filter[T]) Resonance() float64 { return float64(f.k) }

func prewarpBounded(sampleRate, wc float64) float64 {
	wmax := sampleRate * math.Pi / 2
	if wc < wmax {
		return 2 * sampleRate * math.Tan(wc/(2*sampleRate))
	}

	return wc * 2 * sampleRate * math.Tan(wmax/(2*sampleRate)) / wmax
}

type loopEq[T core.Float] struct {
	f *Filter[T]
	x T
}

func (e loopEq[T]) Residual(v T) T {
	next := e.f.topo.NextState(e.f.g, e.x-e.f.k*v, e.f.s)
	return v - next[3]
}

func (e loopEq[T]) Derivative(v T) (T, bool) {
	return 0, false
}

// ProcessSample advances the filter by one sample and returns the
// lowpass output of the final stage.
func (f *Filter[T]) ProcessSample(x T) T {
	if f.compensated {
		x *= f.k + 1
	}

	var y0 T

	switch f.mode {
	case FeedbackInstantaneous:
		v, _ := f.nr.Solve(loopEq[T]{f: f, x: x}, f.s[3])
		y0 = x - f.k*v
	default:
		y0 = x - f.k*f.s[3]
	}

	s := f.topo.NextState(f.g, y0, f.s)
	for i := range s {
		s[i] = core.Sanitize(s[i])
	}

	f.s = s

	return f.s[3]
}

// ProcessInPlace filters a block in-place. Zero-alloc.
func (f *Filter[T]) ProcessInPlace(buf []T) {
	for i, x := range buf {
		buf[i] = f.ProcessSample(x)
	}
}

// Reset clears the integrator states.
func (f *Filter[T]) Reset() {
	f.s = [4]T{}
}

// Latency reports one sample per cascaded stage.
func (f *Filter[T]) Latency() int { return filterOrder }

// Response evaluates the linear small-signal transfer function at the
// given frequency in Hz. Stage saturators are treated as unity-gain, so
// this is exact for Ideal at small amplitudes and an approximation for
// the nonlinear topologies.
func (f *Filter[T]) Response(freqHz float64) complex128 {
	w := 2 * math.Pi * freqHz / f.sampleRate
	z := complex(math.Cos(w), math.Sin(w))

	g := complex(float64(f.g), 0)
	k := complex(float64(f.k), 0)

	// Stage pole from y[n+1] = (1-g)y[n] + g*u; the first stage sees the
	// current summing node, the later three the previous stage output.
	pole := z - 1 + g
	ff := g * g * g * g * z / (pole * pole * pole * pole)

	h := ff * z / (z + k*ff)
	if f.compensated {
		h *= k + 1
	}

	return h
}
