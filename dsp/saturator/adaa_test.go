package saturator

import (
	"math"
	"testing"
)

func TestADAA1EqualInputsMatchDirect(t *testing.T) {
	var tanh Tanh[float64]

	a, err := NewADAA1[float64](tanh, 0)
	if err != nil {
		t.Fatalf("NewADAA1: %v", err)
	}

	const x = 0.7

	a.ProcessSample(x)

	// Second identical input hits the epsilon guard; the midpoint equals x,
	// so the output must equal the direct evaluation exactly.
	got := a.ProcessSample(x)
	if got != tanh.Evaluate(x) {
		t.Fatalf("equal-input ADAA = %v, want direct %v", got, tanh.Evaluate(x))
	}
}

func TestADAA1DifferenceQuotient(t *testing.T) {
	var tanh Tanh[float64]

	a, err := NewADAA1[float64](tanh, 0)
	if err != nil {
		t.Fatalf("NewADAA1: %v", err)
	}

	a.ProcessSample(0.2)

	got := a.ProcessSample(0.9)
	want := (tanh.Antiderivative(0.9) - tanh.Antiderivative(0.2)) / (0.9 - 0.2)

	if math.Abs(got-want) > 1e-12 {
		t.Fatalf("ADAA output = %v, want %v", got, want)
	}
}

func TestADAA1Reset(t *testing.T) {
	var clip HardClip[float64]

	a, err := NewADAA1[float64](clip, 0)
	if err != nil {
		t.Fatalf("NewADAA1: %v", err)
	}

	a.ProcessSample(0.9)
	a.Reset()

	first := a.ProcessSample(0.9)

	b, _ := NewADAA1[float64](clip, 0)
	if first != b.ProcessSample(0.9) {
		t.Fatalf("reset ADAA differs from fresh instance: %v vs fresh", first)
	}
}

func TestADAA1BoundedOutput(t *testing.T) {
	var clip HardClip[float64]

	a, err := NewADAA1[float64](clip, 0)
	if err != nil {
		t.Fatalf("NewADAA1: %v", err)
	}

	for i := range 1000 {
		x := 3 * math.Sin(2*math.Pi*float64(i)*0.11)

		y := a.ProcessSample(x)
		if math.Abs(y) > 1.0+1e-9 {
			t.Fatalf("sample %d: ADAA hard clip exceeded unit bound: %v", i, y)
		}
	}
}

func TestADAA1NilInner(t *testing.T) {
	if _, err := NewADAA1[float64](nil, 0); err == nil {
		t.Fatal("expected error for nil inner shaper")
	}
}
