// Package node defines the per-sample processing contract shared by every
// stateful unit in the engine, plus the series/parallel/feedback
// combinators that compose such units into effect chains.
//
// Block processing is defined as repeated per-sample calls in strict
// temporal order; nodes with feedback or phase accumulators rely on that
// ordering guarantee. Nothing in this package allocates, blocks, or locks
// inside a process call.
package node

import (
	"math"
	"math/cmplx"

	"github.com/cwbudde/algo-va/dsp/core"
)

// Processor is the fundamental stateful processing unit. Each instance owns
// its internal memory exclusively and is driven by a single goroutine.
type Processor[T core.Float] interface {
	// ProcessSample advances the node by one sample.
	ProcessSample(x T) T

	// Reset clears all internal memory to the initial state without
	// changing configuration or reallocating.
	Reset()

	// Latency reports the delay introduced by the node, in samples, for
	// host-side compensation.
	Latency() int
}

// BlockProcessor is implemented by nodes that override the derived
// sample-by-sample block behavior for efficiency. The override must be
// indistinguishable from per-sample processing.
type BlockProcessor[T core.Float] interface {
	Processor[T]

	ProcessInPlace(buf []T)
}

// Responder is implemented by nodes that can report the complex frequency
// response of their linearized model (embedded nonlinearities ignored).
type Responder interface {
	Response(freqHz float64) complex128
}

// ProcessInPlace runs p over buf in order, using the node's own block
// override when it has one.
func ProcessInPlace[T core.Float](p Processor[T], buf []T) {
	if bp, ok := p.(BlockProcessor[T]); ok {
		bp.ProcessInPlace(buf)
		return
	}

	for i := range buf {
		buf[i] = p.ProcessSample(buf[i])
	}
}

// ProcessTo runs p from src into dst. Both slices must have the same length.
func ProcessTo[T core.Float](p Processor[T], dst, src []T) {
	n := len(src)
	if n == 0 {
		return
	}

	_ = dst[n-1]
	for i, x := range src {
		dst[i] = p.ProcessSample(x)
	}
}

// MagnitudeDB converts a Responder's output at freqHz to decibels.
func MagnitudeDB(r Responder, freqHz float64) float64 {
	return 20 * math.Log10(cmplx.Abs(r.Response(freqHz)))
}

// PhaseRadians reports a Responder's phase at freqHz in [-pi, pi].
func PhaseRadians(r Responder, freqHz float64) float64 {
	return cmplx.Phase(r.Response(freqHz))
}
