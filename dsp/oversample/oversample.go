// Package oversample wraps a processing node so it runs at a multiple of
// the host sample rate. Upsampling zero-stuffs and lowpass-filters with a
// compensating gain of the ratio; downsampling filters again and keeps
// every ratio-th sample.
package oversample

import (
	"fmt"

	dspbiquad "github.com/cwbudde/algo-dsp/dsp/filter/biquad"
	"github.com/cwbudde/algo-dsp/dsp/filter/design/pass"

	"github.com/cwbudde/algo-va/dsp/core"
	"github.com/cwbudde/algo-va/dsp/filter/biquad"
	"github.com/cwbudde/algo-va/dsp/node"
)

const (
	// DefaultFilterOrder is the Butterworth order of each anti-aliasing
	// cascade.
	DefaultFilterOrder = 8

	// cutoffFraction places the anti-aliasing corner below the base-rate
	// Nyquist, leaving headroom for the filter's transition band.
	cutoffFraction = 0.45

	maxBlockSize = 1 << 16
)

// validRatio reports whether r is a supported oversampling factor.
func validRatio(r int) bool {
	return r == 2 || r == 4 || r == 8 || r == 16
}

// Oversampler runs an inner node at ratio times the host rate inside a
// fixed-size block. All buffers are allocated at construction.
type Oversampler[T core.Float] struct {
	ratio     int
	blockSize int
	order     int

	inner node.Processor[T]

	up   *biquad.Chain[T]
	down *biquad.Chain[T]

	work []T
}

// Option configures an Oversampler during construction.
type Option[T core.Float] func(*Oversampler[T]) error

// WithFilterOrder overrides the anti-aliasing Butterworth order.
func WithFilterOrder[T core.Float](order int) Option[T] {
	return func(o *Oversampler[T]) error {
		if order < 2 || order > 32 {
			return fmt.Errorf("oversample: filter order must be in [2, 32]: %d", order)
		}

		o.order = order

		return nil
	}
}

// New wraps inner so it processes at sampleRate*ratio. blockSize is the
// largest block ProcessInPlace will accept.
func New[T core.Float](sampleRate float64, ratio, blockSize int, inner node.Processor[T], opts ...Option[T]) (*Oversampler[T], error) {
	if !(sampleRate > 0) {
		return nil, fmt.Errorf("oversample: sample rate must be > 0: %f", sampleRate)
	}

	if !validRatio(ratio) {
		return nil, fmt.Errorf("oversample: ratio must be one of 2, 4, 8, 16: %d", ratio)
	}

	if blockSize <= 0 || blockSize > maxBlockSize {
		return nil, fmt.Errorf("oversample: block size must be in [1, %d]: %d", maxBlockSize, blockSize)
	}

	if inner == nil {
		return nil, fmt.Errorf("oversample: inner node must not be nil")
	}

	o := &Oversampler[T]{
		ratio:     ratio,
		blockSize: blockSize,
		order:     DefaultFilterOrder,
		inner:     inner,
		work:      make([]T, blockSize*ratio),
	}

	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}

	cutoff := cutoffFraction * sampleRate
	overRate := sampleRate * float64(ratio)

	o.up = newChain[T](pass.ButterworthLP(cutoff, o.order, overRate))
	o.down = newChain[T](pass.ButterworthLP(cutoff, o.order, overRate))

	return o, nil
}

// newChain converts a designed cascade into generic sections.
func newChain[T core.Float](designed []dspbiquad.Coefficients) *biquad.Chain[T] {
	coeffs := make([]biquad.Coefficients[T], len(designed))
	for i, c := range designed {
		coeffs[i] = biquad.Coefficients[T]{
			B0: T(c.B0), B1: T(c.B1), B2: T(c.B2),
			A1: T(c.A1), A2: T(c.A2),
		}
	}

	return biquad.NewChain(coeffs)
}

// Ratio returns the oversampling factor.
func (o *Oversampler[T]) Ratio() int { return o.ratio }

// BlockSize returns the largest accepted block length.
func (o *Oversampler[T]) BlockSize() int { return o.blockSize }

// ProcessInPlace filters a block through the oversampled inner node.
// len(buf) must not exceed the configured block size. Zero-alloc.
func (o *Oversampler[T]) ProcessInPlace(buf []T) error {
	if len(buf) > o.blockSize {
		return fmt.Errorf("oversample: block length %d exceeds configured %d", len(buf), o.blockSize)
	}

	n := len(buf) * o.ratio
	work := o.work[:n]

	// Zero-stuff with a gain of ratio to keep the passband level.
	gain := T(o.ratio)
	for i := range work {
		work[i] = 0
	}

	for i, x := range buf {
		work[i*o.ratio] = x * gain
	}

	o.up.ProcessInPlace(work)

	for i, x := range work {
		work[i] = o.inner.ProcessSample(x)
	}

	o.down.ProcessInPlace(work)

	for i := range buf {
		buf[i] = work[i*o.ratio]
	}

	return nil
}

// ProcessSample runs a single sample through the oversampled node.
func (o *Oversampler[T]) ProcessSample(x T) T {
	work := o.work[:o.ratio]
	for i := range work {
		work[i] = 0
	}

	work[0] = x * T(o.ratio)

	o.up.ProcessInPlace(work)

	for i, w := range work {
		work[i] = o.inner.ProcessSample(w)
	}

	o.down.ProcessInPlace(work)

	return work[0]
}

// Reset clears the filters and the inner node.
func (o *Oversampler[T]) Reset() {
	o.up.Reset()
	o.down.Reset()
	o.inner.Reset()
}

// Latency reports the inner latency folded down to the base rate plus
// the group delay of the two anti-aliasing cascades, approximated as
// half the filter order each.
func (o *Oversampler[T]) Latency() int {
	over := o.inner.Latency() + o.order
	return (over + o.ratio - 1) / o.ratio
}
