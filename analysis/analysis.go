// Package analysis provides offline measurement helpers for processing
// nodes: spectra, impulse responses, sine-probe magnitudes and harmonic
// distortion. These run in float64 and allocate freely; they are meant
// for tests and tooling, not the audio path.
package analysis

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-dsp/dsp/window"
	"github.com/cwbudde/algo-dsp/measure/thd"
	algofft "github.com/cwbudde/algo-fft"
	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-va/dsp/node"
)

// Spectrum holds the single-sided magnitude spectrum of a real signal.
type Spectrum struct {
	SampleRate float64
	Magnitudes []float64
}

// BinFrequency returns the center frequency of bin i in Hz.
func (s *Spectrum) BinFrequency(i int) float64 {
	n := 2 * (len(s.Magnitudes) - 1)
	return float64(i) * s.SampleRate / float64(n)
}

// PeakBin returns the bin with the largest magnitude.
func (s *Spectrum) PeakBin() int {
	peak := 0
	for i, m := range s.Magnitudes {
		if m > s.Magnitudes[peak] {
			peak = i
		}
	}

	return peak
}

// ComputeSpectrum windows the signal with a Hann window, transforms it
// and returns the single-sided magnitude spectrum. The signal length
// must be a power of two.
func ComputeSpectrum(signal []float64, sampleRate float64) (*Spectrum, error) {
	n := len(signal)
	if n < 2 || n&(n-1) != 0 {
		return nil, fmt.Errorf("analysis: signal length must be a power of two >= 2: %d", n)
	}

	if !(sampleRate > 0) {
		return nil, fmt.Errorf("analysis: sample rate must be > 0: %f", sampleRate)
	}

	coeffs := window.Generate(window.TypeHann, n)

	in := make([]complex128, n)
	for i, x := range signal {
		in[i] = complex(x*coeffs[i], 0)
	}

	plan, err := algofft.NewPlan64(n)
	if err != nil {
		return nil, fmt.Errorf("analysis: fft plan: %w", err)
	}

	out := make([]complex128, n)
	if err := plan.Forward(out, in); err != nil {
		return nil, fmt.Errorf("analysis: fft: %w", err)
	}

	half := n/2 + 1

	re := make([]float64, half)
	im := make([]float64, half)

	for i := 0; i < half; i++ {
		re[i] = real(out[i])
		im[i] = imag(out[i])
	}

	mags := make([]float64, half)
	vecmath.Magnitude(mags, re, im)

	return &Spectrum{SampleRate: sampleRate, Magnitudes: mags}, nil
}

// ImpulseResponse resets the node and captures n samples of its impulse
// response.
func ImpulseResponse(p node.Processor[float64], n int) []float64 {
	if p == nil || n <= 0 {
		return nil
	}

	p.Reset()

	ir := make([]float64, n)
	ir[0] = p.ProcessSample(1)

	for i := 1; i < n; i++ {
		ir[i] = p.ProcessSample(0)
	}

	p.Reset()

	return ir
}

// MagnitudeAt probes the node with a steady sine and returns the RMS
// gain at the given frequency. The node is reset before and after. Only
// meaningful for nodes that are linear at the probe amplitude.
func MagnitudeAt(p node.Processor[float64], freqHz, sampleRate, amplitude float64) (float64, error) {
	if p == nil {
		return 0, fmt.Errorf("analysis: node must not be nil")
	}

	if !(freqHz > 0) || freqHz >= sampleRate/2 {
		return 0, fmt.Errorf("analysis: probe frequency must be in (0, Nyquist): %f", freqHz)
	}

	if !(amplitude > 0) {
		return 0, fmt.Errorf("analysis: probe amplitude must be > 0: %f", amplitude)
	}

	p.Reset()

	settle := int(sampleRate / 10)
	measure := int(sampleRate / 5)

	w := 2 * math.Pi * freqHz / sampleRate

	var inSq, outSq float64

	for i := 0; i < settle+measure; i++ {
		x := amplitude * math.Sin(w*float64(i))
		y := p.ProcessSample(x)

		if i >= settle {
			inSq += x * x
			outSq += y * y
		}
	}

	p.Reset()

	return math.Sqrt(outSq / inSq), nil
}

// HarmonicDistortion drives the node with a sine and measures the THD
// of its output.
func HarmonicDistortion(p node.Processor[float64], freqHz, sampleRate, amplitude float64, fftSize int) (thd.Result, error) {
	if p == nil {
		return thd.Result{}, fmt.Errorf("analysis: node must not be nil")
	}

	if fftSize < 2 || fftSize&(fftSize-1) != 0 {
		return thd.Result{}, fmt.Errorf("analysis: fft size must be a power of two >= 2: %d", fftSize)
	}

	if !(freqHz > 0) || freqHz >= sampleRate/2 {
		return thd.Result{}, fmt.Errorf("analysis: frequency must be in (0, Nyquist): %f", freqHz)
	}

	p.Reset()

	w := 2 * math.Pi * freqHz / sampleRate

	settle := int(sampleRate / 10)
	for i := 0; i < settle; i++ {
		p.ProcessSample(amplitude * math.Sin(w*float64(i)))
	}

	signal := make([]float64, fftSize)
	for i := range signal {
		signal[i] = p.ProcessSample(amplitude * math.Sin(w*float64(settle+i)))
	}

	p.Reset()

	result := thd.AnalyzeSignal(signal, thd.Config{
		SampleRate:      sampleRate,
		FFTSize:         fftSize,
		FundamentalFreq: freqHz,
		WindowType:      window.TypeHann,
	})

	return result, nil
}
