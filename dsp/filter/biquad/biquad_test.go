package biquad

import (
	"math"
	"testing"
)

const testSampleRate = 48000.0

func TestLowpassMinus3dBAtCutoff(t *testing.T) {
	c, err := LowpassCoefficients[float64](1000, math.Sqrt2/2, testSampleRate)
	if err != nil {
		t.Fatalf("LowpassCoefficients: %v", err)
	}

	got := c.MagnitudeDB(1000, testSampleRate)
	if math.Abs(got-(-3.01)) > 0.05 {
		t.Fatalf("magnitude at cutoff = %.3f dB, want about -3.01 dB", got)
	}
}

func TestLowpassDCUnityGain(t *testing.T) {
	c, err := LowpassCoefficients[float64](1000, 0.707, testSampleRate)
	if err != nil {
		t.Fatalf("LowpassCoefficients: %v", err)
	}

	if got := c.MagnitudeDB(1, testSampleRate); math.Abs(got) > 0.01 {
		t.Fatalf("near-DC magnitude = %.4f dB, want about 0 dB", got)
	}
}

func TestHighpassRejectsDC(t *testing.T) {
	c, err := HighpassCoefficients[float64](1000, 0.707, testSampleRate)
	if err != nil {
		t.Fatalf("HighpassCoefficients: %v", err)
	}

	if got := c.MagnitudeDB(1, testSampleRate); got > -50 {
		t.Fatalf("near-DC magnitude = %.2f dB, want strong rejection", got)
	}
}

func TestBandpassUnityAtCenter(t *testing.T) {
	c, err := BandpassCoefficients[float64](2000, 2, testSampleRate)
	if err != nil {
		t.Fatalf("BandpassCoefficients: %v", err)
	}

	if got := c.MagnitudeDB(2000, testSampleRate); math.Abs(got) > 0.05 {
		t.Fatalf("center magnitude = %.3f dB, want about 0 dB", got)
	}
}

func TestDesignRejectsBadParams(t *testing.T) {
	cases := []struct {
		name        string
		freq, q, sr float64
	}{
		{"zero frequency", 0, 0.7, testSampleRate},
		{"above Nyquist", 30000, 0.7, testSampleRate},
		{"zero q", 1000, 0, testSampleRate},
		{"nan q", 1000, math.NaN(), testSampleRate},
		{"zero sample rate", 1000, 0.7, 0},
	}

	for _, tc := range cases {
		if _, err := LowpassCoefficients[float64](tc.freq, tc.q, tc.sr); err == nil {
			t.Fatalf("%s: expected design error", tc.name)
		}
	}
}

func TestSectionOnePoleRecursion(t *testing.T) {
	// y[n] = x[n] + 0.5*y[n-1], so the impulse response is 1, 0.5, 0.25, ...
	s := NewSection(Coefficients[float64]{B0: 1, A1: -0.5})

	want := []float64{1, 0.5, 0.25, 0.125}

	x := 1.0
	for i, w := range want {
		got := s.ProcessSample(x)
		if math.Abs(got-w) > 1e-12 {
			t.Fatalf("sample %d = %v, want %v", i, got, w)
		}

		x = 0
	}
}

func TestProcessInPlaceMatchesPerSample(t *testing.T) {
	c, _ := LowpassCoefficients[float64](500, 1.2, testSampleRate)

	a := NewSection(c)
	b := NewSection(c)

	input := []float64{1, -0.5, 0.25, 0.75, -1, 0.1, 0.9, -0.3}

	block := make([]float64, len(input))
	copy(block, input)
	a.ProcessInPlace(block)

	for i, x := range input {
		want := b.ProcessSample(x)
		if math.Abs(block[i]-want) > 1e-15 {
			t.Fatalf("sample %d: block %v, per-sample %v", i, block[i], want)
		}
	}
}

func TestImpulseResponsePreservesState(t *testing.T) {
	c, _ := LowpassCoefficients[float64](800, 0.9, testSampleRate)

	probed := NewSection(c)
	twin := NewSection(c)

	for i := 0; i < 16; i++ {
		x := math.Sin(float64(i) * 0.3)
		probed.ProcessSample(x)
		twin.ProcessSample(x)
	}

	ir := probed.ImpulseResponse(32)
	if len(ir) != 32 {
		t.Fatalf("impulse response length = %d, want 32", len(ir))
	}

	// Continued processing must be unaffected by the probe.
	for i := 0; i < 8; i++ {
		got := probed.ProcessSample(0.5)
		want := twin.ProcessSample(0.5)

		if math.Abs(got-want) > 1e-15 {
			t.Fatalf("post-probe sample %d: got %v, want %v", i, got, want)
		}
	}
}

func TestImpulseResponseMatchesAnalyticMagnitude(t *testing.T) {
	c, _ := LowpassCoefficients[float64](1000, 0.707, testSampleRate)

	s := NewSection(c)
	ir := s.ImpulseResponse(8192)

	// DC gain equals the impulse response sum.
	sum := 0.0
	for _, v := range ir {
		sum += v
	}

	want := math.Pow(10, c.MagnitudeDB(0.001, testSampleRate)/20)
	if math.Abs(sum-want) > 1e-3 {
		t.Fatalf("impulse response sum = %v, analytic DC gain = %v", sum, want)
	}
}

func TestChainCascades(t *testing.T) {
	c, _ := LowpassCoefficients[float64](1000, math.Sqrt2/2, testSampleRate)

	ch := NewChain([]Coefficients[float64]{c, c})
	if ch.Len() != 2 {
		t.Fatalf("chain length = %d, want 2", ch.Len())
	}

	single := NewSection(c)
	other := NewSection(c)

	for i := 0; i < 64; i++ {
		x := math.Sin(float64(i) * 0.1)
		want := other.ProcessSample(single.ProcessSample(x))

		if got := ch.ProcessSample(x); math.Abs(got-want) > 1e-15 {
			t.Fatalf("sample %d: chain %v, manual cascade %v", i, got, want)
		}
	}
}

func TestFloat32SectionTracksFloat64(t *testing.T) {
	c64, _ := LowpassCoefficients[float64](1000, 0.707, testSampleRate)
	c32, _ := LowpassCoefficients[float32](1000, 0.707, testSampleRate)

	s64 := NewSection(c64)
	s32 := NewSection(c32)

	for i := 0; i < 256; i++ {
		x := math.Sin(float64(i) * 0.05)

		y64 := s64.ProcessSample(x)
		y32 := s32.ProcessSample(float32(x))

		if math.Abs(y64-float64(y32)) > 1e-3 {
			t.Fatalf("sample %d: float32 drifted, %v vs %v", i, y32, y64)
		}
	}
}
