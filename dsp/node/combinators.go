package node

import (
	"fmt"

	"github.com/cwbudde/algo-va/dsp/core"
)

// Series chains nodes so that each output feeds the next input, sample for
// sample. Combined latency is the sum of the stages.
type Series[T core.Float] struct {
	stages []Processor[T]
}

// NewSeries validates and wires the stages in order.
func NewSeries[T core.Float](stages ...Processor[T]) (*Series[T], error) {
	if len(stages) == 0 {
		return nil, fmt.Errorf("node: series needs at least one stage")
	}

	for i, s := range stages {
		if s == nil {
			return nil, fmt.Errorf("node: series stage %d is nil", i)
		}
	}

	return &Series[T]{stages: stages}, nil
}

func (s *Series[T]) ProcessSample(x T) T {
	for _, stage := range s.stages {
		x = stage.ProcessSample(x)
	}

	return x
}

func (s *Series[T]) Reset() {
	for _, stage := range s.stages {
		stage.Reset()
	}
}

// Latency is the sum of the constituent latencies.
func (s *Series[T]) Latency() int {
	total := 0
	for _, stage := range s.stages {
		total += stage.Latency()
	}

	return total
}

// Parallel feeds the same input to every branch and sums the weighted
// outputs. Branch latencies are aligned at setup with explicit delay
// compensation, so combined latency is the maximum branch latency.
type Parallel[T core.Float] struct {
	branches []Processor[T]
	weights  []T
	align    []*Delay[T]
	latency  int
}

// NewParallel builds a parallel bank. weights may be nil for unit weights;
// otherwise it must match the branch count.
func NewParallel[T core.Float](branches []Processor[T], weights []T) (*Parallel[T], error) {
	if len(branches) == 0 {
		return nil, fmt.Errorf("node: parallel needs at least one branch")
	}

	if weights != nil && len(weights) != len(branches) {
		return nil, fmt.Errorf("node: parallel weight count %d != branch count %d", len(weights), len(branches))
	}

	maxLatency := 0

	for i, b := range branches {
		if b == nil {
			return nil, fmt.Errorf("node: parallel branch %d is nil", i)
		}

		if l := b.Latency(); l > maxLatency {
			maxLatency = l
		}
	}

	if weights == nil {
		weights = make([]T, len(branches))
		for i := range weights {
			weights[i] = 1
		}
	}

	align := make([]*Delay[T], len(branches))

	for i, b := range branches {
		d, err := NewDelay[T](maxLatency - b.Latency())
		if err != nil {
			return nil, err
		}

		align[i] = d
	}

	return &Parallel[T]{
		branches: branches,
		weights:  weights,
		align:    align,
		latency:  maxLatency,
	}, nil
}

func (p *Parallel[T]) ProcessSample(x T) T {
	var sum T

	for i, b := range p.branches {
		sum += p.weights[i] * p.align[i].ProcessSample(b.ProcessSample(x))
	}

	return sum
}

func (p *Parallel[T]) Reset() {
	for i, b := range p.branches {
		b.Reset()
		p.align[i].Reset()
	}
}

// Latency is the maximum branch latency; shorter branches are padded to it.
func (p *Parallel[T]) Latency() int { return p.latency }

// Feedback routes a node's output back to its input through a mandatory
// one-sample delay:
//
//	y[n] = ff(x[n] + gain * fb(y[n-1]))
//
// The unit delay breaks the dependency cycle at the composition level;
// true zero-delay feedback belongs inside a single node via the implicit
// solver, never across composed nodes.
type Feedback[T core.Float] struct {
	forward  Processor[T]
	backward Processor[T]
	gain     T
	last     T
}

// NewFeedback wires forward with its output fed back through backward
// (nil for a plain wire) scaled by gain.
func NewFeedback[T core.Float](forward, backward Processor[T], gain T) (*Feedback[T], error) {
	if forward == nil {
		return nil, fmt.Errorf("node: feedback forward path is nil")
	}

	if !core.IsFinite(gain) {
		return nil, fmt.Errorf("node: feedback gain must be finite: %v", gain)
	}

	return &Feedback[T]{forward: forward, backward: backward, gain: gain}, nil
}

func (f *Feedback[T]) ProcessSample(x T) T {
	fb := f.last
	if f.backward != nil {
		fb = f.backward.ProcessSample(fb)
	}

	y := f.forward.ProcessSample(x + f.gain*fb)
	f.last = core.Sanitize(y)

	return y
}

func (f *Feedback[T]) Reset() {
	f.forward.Reset()
	if f.backward != nil {
		f.backward.Reset()
	}

	f.last = 0
}

// Latency reports the forward-path latency; the loop delay does not move
// the dry signal.
func (f *Feedback[T]) Latency() int { return f.forward.Latency() }
