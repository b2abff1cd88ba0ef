package ladder

import (
	"testing"
)

func benchFilter(b *testing.B, opts ...Option[float64]) *Filter[float64] {
	b.Helper()

	f, err := New[float64](48000, opts...)
	if err != nil {
		b.Fatalf("New: %v", err)
	}

	return f
}

func BenchmarkIdeal(b *testing.B) {
	f := benchFilter(b, WithCutoff[float64](2000), WithResonance[float64](2))
	x := 1.0
	for b.Loop() {
		x = f.ProcessSample(0.5 + 0.1*x)
	}
	_ = x
}

func BenchmarkOTA(b *testing.B) {
	f := benchFilter(b,
		WithCutoff[float64](2000),
		WithResonance[float64](2),
		WithTopology[float64](NewOTA[float64]()),
	)
	x := 1.0
	for b.Loop() {
		x = f.ProcessSample(0.5 + 0.1*x)
	}
	_ = x
}

func BenchmarkTransistor(b *testing.B) {
	f := benchFilter(b,
		WithCutoff[float64](2000),
		WithResonance[float64](2),
		WithTopology[float64](NewTransistor[float64]()),
	)
	x := 1.0
	for b.Loop() {
		x = f.ProcessSample(0.5 + 0.1*x)
	}
	_ = x
}

func BenchmarkDelayedFeedback(b *testing.B) {
	f := benchFilter(b,
		WithCutoff[float64](2000),
		WithResonance[float64](2),
		WithFeedbackMode[float64](FeedbackDelayed),
	)
	x := 1.0
	for b.Loop() {
		x = f.ProcessSample(0.5 + 0.1*x)
	}
	_ = x
}
