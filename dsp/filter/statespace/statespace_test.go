package statespace

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/cwbudde/algo-va/dsp/saturator"
)

// rcLowpass builds the discrete RC one-pole from its normalized cutoff.
func rcLowpass(fc float64) *Model[float64] {
	a := -(fc - 2) / (fc + 2)
	c := -fc*(fc-2)/((fc+2)*(fc+2)) + fc/(fc+2)
	d := fc / (fc + 2)

	m, err := New([]float64{a}, []float64{1}, []float64{c}, d)
	if err != nil {
		panic(err)
	}

	return m
}

// second-order model in controllable canonical form for
// H(z) = (0.1 z^2 + 0.2 z + 0.3) / (z^2 - z + 0.3).
func secondOrder() *Model[float64] {
	a := []float64{
		0, 1,
		-0.3, 1,
	}
	b := []float64{0, 1}
	c := []float64{0.27, 0.3}

	m, err := New(a, b, c, 0.1)
	if err != nil {
		panic(err)
	}

	return m
}

func TestRCLowpassDCGainIsUnity(t *testing.T) {
	m := rcLowpass(0.25)

	var y float64
	for i := 0; i < 1000; i++ {
		y = m.ProcessSample(1)
	}

	if math.Abs(y-1) > 1e-9 {
		t.Fatalf("DC output = %v, want 1", y)
	}
}

func TestMarkovParameters(t *testing.T) {
	// The first impulse response samples are D, C*B, C*A*B.
	m := secondOrder()

	want := []float64{0.1, 0.3, 0.57}

	x := 1.0
	for i, w := range want {
		got := m.ProcessSample(x)
		x = 0

		if math.Abs(got-w) > 1e-12 {
			t.Fatalf("impulse sample %d = %v, want %v", i, got, w)
		}
	}
}

func TestResponseMatchesMeasurement(t *testing.T) {
	const (
		sampleRate = 48000.0
		settle     = 2400
		measure    = 4800
	)

	for _, freq := range []float64{500, 2000, 10000} {
		m := secondOrder()

		w := 2 * math.Pi * freq / sampleRate

		var inSq, outSq float64

		for i := 0; i < settle+measure; i++ {
			x := math.Sin(w * float64(i))
			y := m.ProcessSample(x)

			if i >= settle {
				inSq += x * x
				outSq += y * y
			}
		}

		got := math.Sqrt(outSq / inSq)
		want := cmplx.Abs(m.Response(freq, sampleRate))

		if math.Abs(got-want) > 0.01 {
			t.Fatalf("freq %v: measured gain %.4f, analytic %.4f", freq, got, want)
		}
	}
}

func TestStateSaturatorBoundsUnstableModel(t *testing.T) {
	// A marginally unstable pole: the linear model diverges, the
	// saturated one must not.
	m, err := New([]float64{1.02}, []float64{1}, []float64{1}, 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	m.SetStateSaturator(saturator.Tanh[float64]{})

	for i := 0; i < 10000; i++ {
		y := m.ProcessSample(0.5)
		if math.IsNaN(y) || math.Abs(y) > 10 {
			t.Fatalf("sample %d escaped the saturator: %v", i, y)
		}
	}
}

func TestStateRoundTrip(t *testing.T) {
	m := secondOrder()
	twin := secondOrder()

	for i := 0; i < 64; i++ {
		m.ProcessSample(math.Sin(float64(i) * 0.2))
	}

	if err := twin.SetState(m.State()); err != nil {
		t.Fatalf("SetState: %v", err)
	}

	for i := 0; i < 64; i++ {
		x := math.Cos(float64(i) * 0.3)
		if got, want := twin.ProcessSample(x), m.ProcessSample(x); got != want {
			t.Fatalf("sample %d: twin %v, original %v", i, got, want)
		}
	}
}

func TestResetClearsState(t *testing.T) {
	m := secondOrder()

	for i := 0; i < 32; i++ {
		m.ProcessSample(1)
	}

	m.Reset()

	for _, s := range m.State() {
		if s != 0 {
			t.Fatalf("state after reset = %v, want all zeros", m.State())
		}
	}
}

func TestDimensionValidation(t *testing.T) {
	if _, err := New[float64](nil, nil, nil, 0); err == nil {
		t.Fatal("expected error for empty model")
	}

	if _, err := New([]float64{1, 2}, []float64{1}, []float64{1}, 0); err == nil {
		t.Fatal("expected error for a size mismatch")
	}

	if _, err := New([]float64{1}, []float64{1}, []float64{1, 2}, 0); err == nil {
		t.Fatal("expected error for c size mismatch")
	}

	if _, err := New([]float64{math.NaN()}, []float64{1}, []float64{1}, 0); err == nil {
		t.Fatal("expected error for non-finite entry")
	}

	m := rcLowpass(0.25)
	if err := m.SetMatrices([]float64{1, 0, 0, 1}, []float64{1, 1}, []float64{1, 1}, 0); err == nil {
		t.Fatal("expected error for dimension change")
	}

	if err := m.SetState([]float64{1, 2}); err == nil {
		t.Fatal("expected error for state length mismatch")
	}
}
