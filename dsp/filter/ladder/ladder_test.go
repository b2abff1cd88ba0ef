package ladder

import (
	"math"
	"math/cmplx"
	"testing"
)

const testSampleRate = 48000.0

func TestImpulseEnergyStaysFinite(t *testing.T) {
	topologies := map[string]Topology[float64]{
		"ideal":      Ideal[float64]{},
		"ota":        NewOTA[float64](),
		"transistor": NewTransistor[float64](),
	}

	for name, topo := range topologies {
		for _, k := range []float64{0, 1, 3.9} {
			f, err := New[float64](testSampleRate,
				WithCutoff[float64](1000),
				WithResonance[float64](k),
				WithTopology[float64](topo),
			)
			if err != nil {
				t.Fatalf("%s k=%v: New: %v", name, k, err)
			}

			energy := 0.0
			x := 1.0

			for i := 0; i < 10000; i++ {
				y := f.ProcessSample(x)
				x = 0

				if math.IsNaN(y) || math.IsInf(y, 0) {
					t.Fatalf("%s k=%v: sample %d not finite: %v", name, k, i, y)
				}

				energy += y * y
			}

			if math.IsNaN(energy) || math.IsInf(energy, 0) {
				t.Fatalf("%s k=%v: impulse energy not finite: %v", name, k, energy)
			}
		}
	}
}

func TestDCGainFollowsResonance(t *testing.T) {
	f, err := New[float64](testSampleRate, WithCutoff[float64](1000), WithResonance[float64](2))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var y float64
	for i := 0; i < 48000; i++ {
		y = f.ProcessSample(1)
	}

	// Negative feedback divides the DC gain down to 1/(1+k).
	if want := 1.0 / 3.0; math.Abs(y-want) > 1e-3 {
		t.Fatalf("DC output = %v, want %v", y, want)
	}
}

func TestCompensationRestoresDCGain(t *testing.T) {
	f, err := New[float64](testSampleRate,
		WithCutoff[float64](1000),
		WithResonance[float64](2),
		WithCompensation[float64](true),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var y float64
	for i := 0; i < 48000; i++ {
		y = f.ProcessSample(0.2)
	}

	if math.Abs(y-0.2) > 1e-3 {
		t.Fatalf("compensated DC output = %v, want 0.2", y)
	}
}

func measureGain(f *Filter[float64], freq, amplitude float64, n int) float64 {
	const settle = 9600

	w := 2 * math.Pi * freq / testSampleRate

	var inSq, outSq float64

	for i := 0; i < settle+n; i++ {
		x := amplitude * math.Sin(w*float64(i))
		y := f.ProcessSample(x)

		if i >= settle {
			inSq += x * x
			outSq += y * y
		}
	}

	return math.Sqrt(outSq / inSq)
}

func TestResponseMatchesSmallSignalMeasurement(t *testing.T) {
	for _, freq := range []float64{200, 1000, 4000} {
		f, err := New[float64](testSampleRate, WithCutoff[float64](1000), WithResonance[float64](0.5))
		if err != nil {
			t.Fatalf("New: %v", err)
		}

		want := cmplx.Abs(f.Response(freq))
		got := measureGain(f, freq, 0.05, 9600)

		if math.Abs(got-want) > 0.02 {
			t.Fatalf("freq %v: measured gain %.4f, analytic %.4f", freq, got, want)
		}
	}
}

func TestLowpassRollsOff(t *testing.T) {
	f, _ := New[float64](testSampleRate, WithCutoff[float64](1000))

	low := measureGain(f, 100, 0.1, 9600)

	f.Reset()

	high := measureGain(f, 8000, 0.1, 9600)

	if high > low/10 {
		t.Fatalf("rolloff too shallow: gain %v at 100 Hz vs %v at 8 kHz", low, high)
	}
}

func TestInstantaneousFeedbackTracksDelayedAtLowResonance(t *testing.T) {
	delayed, _ := New[float64](testSampleRate, WithCutoff[float64](1000), WithResonance[float64](0.3))
	solved, _ := New[float64](testSampleRate,
		WithCutoff[float64](1000),
		WithResonance[float64](0.3),
		WithFeedbackMode[float64](FeedbackInstantaneous),
	)

	w := 2 * math.Pi * 500 / testSampleRate
	for i := 0; i < 4800; i++ {
		x := 0.1 * math.Sin(w*float64(i))

		a := delayed.ProcessSample(x)
		b := solved.ProcessSample(x)

		if math.Abs(a-b) > 0.01 {
			t.Fatalf("sample %d: delayed %v, instantaneous %v", i, a, b)
		}
	}
}

func TestLatencyIsFourSamples(t *testing.T) {
	f, _ := New[float64](testSampleRate)
	if got := f.Latency(); got != 4 {
		t.Fatalf("latency = %d, want 4", got)
	}
}

func TestResetClearsState(t *testing.T) {
	f, _ := New[float64](testSampleRate, WithResonance[float64](1))
	fresh, _ := New[float64](testSampleRate, WithResonance[float64](1))

	for i := 0; i < 256; i++ {
		f.ProcessSample(1)
	}

	f.Reset()

	for i := 0; i < 256; i++ {
		x := math.Sin(float64(i) * 0.2)
		if got, want := f.ProcessSample(x), fresh.ProcessSample(x); got != want {
			t.Fatalf("sample %d after reset: got %v, want %v", i, got, want)
		}
	}
}

func TestInvalidConfig(t *testing.T) {
	if _, err := New[float64](0); err == nil {
		t.Fatal("expected error for zero sample rate")
	}

	if _, err := New[float64](testSampleRate, WithCutoff[float64](-1)); err == nil {
		t.Fatal("expected error for negative cutoff")
	}

	if _, err := New[float64](testSampleRate, WithResonance[float64](-1)); err == nil {
		t.Fatal("expected error for negative resonance")
	}

	if _, err := New[float64](testSampleRate, WithResonance[float64](100)); err == nil {
		t.Fatal("expected error for excessive resonance")
	}

	if _, err := New[float64](testSampleRate, WithTopology[float64](nil)); err == nil {
		t.Fatal("expected error for nil topology")
	}

	if _, err := New[float64](testSampleRate, WithFeedbackMode[float64](FeedbackMode(7))); err == nil {
		t.Fatal("expected error for unknown feedback mode")
	}
}

func TestFloat32Tracks(t *testing.T) {
	f64, _ := New[float64](testSampleRate, WithCutoff[float64](1000), WithResonance[float64](0.5))
	f32, _ := New[float32](testSampleRate, WithCutoff[float32](1000), WithResonance[float32](0.5))

	for i := 0; i < 960; i++ {
		x := 0.5 * math.Sin(float64(i)*0.1)

		y64 := f64.ProcessSample(x)
		y32 := f32.ProcessSample(float32(x))

		if math.Abs(y64-float64(y32)) > 1e-2 {
			t.Fatalf("sample %d: float32 drifted, %v vs %v", i, y32, y64)
		}
	}
}
