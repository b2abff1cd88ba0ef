package biquad

import (
	"math"
	"math/cmplx"
)

// ResponseAt computes the complex frequency response H(e^jw) of the
// coefficients at the given frequency (Hz) and sample rate (Hz).
func (c *Coefficients[T]) ResponseAt(freqHz, sampleRate float64) complex128 {
	w := 2 * math.Pi * freqHz / sampleRate
	ejw := cmplx.Exp(complex(0, -w))
	ej2w := cmplx.Exp(complex(0, -2*w))

	num := complex(float64(c.B0), 0) + complex(float64(c.B1), 0)*ejw + complex(float64(c.B2), 0)*ej2w
	den := complex(1, 0) + complex(float64(c.A1), 0)*ejw + complex(float64(c.A2), 0)*ej2w

	return num / den
}

// MagnitudeDB returns 20*log10(|H(f)|).
func (c *Coefficients[T]) MagnitudeDB(freqHz, sampleRate float64) float64 {
	return 20 * math.Log10(cmplx.Abs(c.ResponseAt(freqHz, sampleRate)))
}

// Phase returns the phase response in radians at the given frequency,
// in [-pi, pi].
func (c *Coefficients[T]) Phase(freqHz, sampleRate float64) float64 {
	return cmplx.Phase(c.ResponseAt(freqHz, sampleRate))
}

// ImpulseResponse computes n samples of the impulse response by feeding an
// impulse through the section. The filter state is saved and restored so
// this method does not disturb ongoing processing.
func (s *Section[T]) ImpulseResponse(n int) []T {
	if n <= 0 {
		return nil
	}

	saved := s.State()
	s.Reset()

	ir := make([]T, n)
	ir[0] = s.ProcessSample(1)

	for i := 1; i < n; i++ {
		ir[i] = s.ProcessSample(0)
	}

	s.SetState(saved)

	return ir
}
