package node

import (
	"math"
	"testing"
)

func TestDelayShiftsByLength(t *testing.T) {
	d, err := NewDelay[float64](3)
	if err != nil {
		t.Fatalf("NewDelay: %v", err)
	}

	input := []float64{1, 2, 3, 4, 5, 6}
	want := []float64{0, 0, 0, 1, 2, 3}

	for i, x := range input {
		if got := d.ProcessSample(x); got != want[i] {
			t.Fatalf("sample %d: got %v, want %v", i, got, want[i])
		}
	}
}

func TestDelayReset(t *testing.T) {
	d, _ := NewDelay[float64](2)
	d.ProcessSample(5)
	d.Reset()

	if got := d.ProcessSample(0); got != 0 {
		t.Fatalf("reset delay leaked %v", got)
	}
}

func TestDelayZeroLengthBypasses(t *testing.T) {
	d, _ := NewDelay[float64](0)
	if got := d.ProcessSample(7); got != 7 {
		t.Fatalf("zero delay returned %v, want 7", got)
	}
}

func TestSeriesLatencyIsSum(t *testing.T) {
	d1, _ := NewDelay[float64](2)
	d2, _ := NewDelay[float64](5)

	s, err := NewSeries[float64](d1, d2, Bypass[float64]{})
	if err != nil {
		t.Fatalf("NewSeries: %v", err)
	}

	if got := s.Latency(); got != 7 {
		t.Fatalf("series latency = %d, want 7", got)
	}
}

func TestSeriesOrdering(t *testing.T) {
	g := &Gain[float64]{Amount: 2}
	d, _ := NewDelay[float64](1)

	s, _ := NewSeries[float64](g, d)

	if got := s.ProcessSample(3); got != 0 {
		t.Fatalf("first sample = %v, want 0 (delayed)", got)
	}

	if got := s.ProcessSample(0); got != 6 {
		t.Fatalf("second sample = %v, want 6 (gained then delayed)", got)
	}
}

func TestParallelLatencyIsMax(t *testing.T) {
	d1, _ := NewDelay[float64](1)
	d2, _ := NewDelay[float64](4)

	p, err := NewParallel[float64]([]Processor[float64]{d1, d2}, nil)
	if err != nil {
		t.Fatalf("NewParallel: %v", err)
	}

	if got := p.Latency(); got != 4 {
		t.Fatalf("parallel latency = %d, want 4", got)
	}
}

func TestParallelDelayCompensation(t *testing.T) {
	// Two bypass-equivalent branches of different latency must stay phase
	// aligned: an impulse comes out once, doubled, at the max latency.
	d1, _ := NewDelay[float64](1)
	d2, _ := NewDelay[float64](3)

	p, _ := NewParallel[float64]([]Processor[float64]{d1, d2}, nil)

	var out []float64
	out = append(out, p.ProcessSample(1))

	for range 5 {
		out = append(out, p.ProcessSample(0))
	}

	want := []float64{0, 0, 0, 2, 0, 0}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("sample %d = %v, want %v (out=%v)", i, out[i], want[i], out)
		}
	}
}

func TestParallelWeights(t *testing.T) {
	p, err := NewParallel[float64](
		[]Processor[float64]{Bypass[float64]{}, Bypass[float64]{}},
		[]float64{0.25, 0.5},
	)
	if err != nil {
		t.Fatalf("NewParallel: %v", err)
	}

	if got := p.ProcessSample(4); got != 3 {
		t.Fatalf("weighted sum = %v, want 3", got)
	}
}

func TestParallelWeightCountMismatch(t *testing.T) {
	_, err := NewParallel[float64]([]Processor[float64]{Bypass[float64]{}}, []float64{1, 2})
	if err == nil {
		t.Fatal("expected weight count mismatch error")
	}
}

func TestFeedbackUnitDelayLoop(t *testing.T) {
	// y[n] = x[n] + 0.5*y[n-1] with a bypass forward path: impulse decays
	// geometrically, one sample apart.
	f, err := NewFeedback[float64](Bypass[float64]{}, nil, 0.5)
	if err != nil {
		t.Fatalf("NewFeedback: %v", err)
	}

	got := []float64{f.ProcessSample(1), f.ProcessSample(0), f.ProcessSample(0), f.ProcessSample(0)}
	want := []float64{1, 0.5, 0.25, 0.125}

	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Fatalf("sample %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestFeedbackReset(t *testing.T) {
	f, _ := NewFeedback[float64](Bypass[float64]{}, nil, 0.9)
	f.ProcessSample(1)
	f.Reset()

	if got := f.ProcessSample(0); got != 0 {
		t.Fatalf("reset feedback leaked %v", got)
	}
}

func TestProcessInPlaceMatchesPerSample(t *testing.T) {
	g := &Gain[float64]{Amount: 3}

	buf := []float64{1, 2, 3}
	ProcessInPlace[float64](g, buf)

	want := []float64{3, 6, 9}
	for i := range want {
		if buf[i] != want[i] {
			t.Fatalf("sample %d = %v, want %v", i, buf[i], want[i])
		}
	}
}

func TestEmptyCompositionRejected(t *testing.T) {
	if _, err := NewSeries[float64](); err == nil {
		t.Fatal("expected error for empty series")
	}

	if _, err := NewParallel[float64](nil, nil); err == nil {
		t.Fatal("expected error for empty parallel")
	}

	if _, err := NewFeedback[float64](nil, nil, 0); err == nil {
		t.Fatal("expected error for nil forward path")
	}
}
