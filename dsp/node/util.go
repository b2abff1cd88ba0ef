package node

import (
	"fmt"

	"github.com/cwbudde/algo-va/dsp/core"
)

// Bypass passes samples through unchanged. Useful as a combinator
// placeholder and as the identity inner node in oversampling tests.
type Bypass[T core.Float] struct{}

func (Bypass[T]) ProcessSample(x T) T { return x }
func (Bypass[T]) Reset()              {}
func (Bypass[T]) Latency() int        { return 0 }

// Gain scales samples by a constant factor.
type Gain[T core.Float] struct {
	Amount T
}

func (g *Gain[T]) ProcessSample(x T) T { return g.Amount * x }
func (g *Gain[T]) Reset()              {}
func (g *Gain[T]) Latency() int        { return 0 }

// Delay is a fixed integer delay line, sized once at construction.
type Delay[T core.Float] struct {
	buf []T
	pos int
}

// NewDelay creates a delay of the given length in samples. Zero length is
// valid and degenerates to a bypass.
func NewDelay[T core.Float](length int) (*Delay[T], error) {
	if length < 0 {
		return nil, fmt.Errorf("node: delay length must be >= 0: %d", length)
	}

	return &Delay[T]{buf: make([]T, length)}, nil
}

// ProcessSample pushes x and pops the sample delayed by the line length.
func (d *Delay[T]) ProcessSample(x T) T {
	if len(d.buf) == 0 {
		return x
	}

	y := d.buf[d.pos]
	d.buf[d.pos] = x

	d.pos++
	if d.pos == len(d.buf) {
		d.pos = 0
	}

	return y
}

// Reset zeroes the delay memory without reallocation.
func (d *Delay[T]) Reset() {
	core.Zero(d.buf)
	d.pos = 0
}

// Latency reports the delay length.
func (d *Delay[T]) Latency() int { return len(d.buf) }
