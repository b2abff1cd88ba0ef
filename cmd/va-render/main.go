package main

import (
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/cwbudde/wav"
	"github.com/go-audio/audio"

	"github.com/cwbudde/algo-va/dsp/filter/ladder"
	"github.com/cwbudde/algo-va/dsp/filter/svf"
	"github.com/cwbudde/algo-va/dsp/node"
	"github.com/cwbudde/algo-va/dsp/oversample"
	"github.com/cwbudde/algo-va/dsp/param"
	"github.com/cwbudde/algo-va/dsp/saturator"
	"github.com/cwbudde/algo-va/dsp/wdf"
)

func main() {
	effect := flag.String("effect", "clipper", "Effect to render: clipper, svf, ladder")
	freq := flag.Float64("freq", 220, "Test tone frequency in Hz")
	drive := flag.Float64("drive", 4.0, "Input gain applied before the effect")
	cutoff := flag.Float64("cutoff", 1000, "Filter cutoff in Hz (svf, ladder, clipper)")
	resonance := flag.Float64("resonance", 0.707, "SVF Q or ladder resonance")
	diode := flag.String("diode", "silicon", "Clipper diode type: silicon, germanium, led")
	ratio := flag.Int("oversample", 1, "Oversampling ratio: 1 (off), 2, 4, 8 or 16")
	duration := flag.Float64("duration", 2.0, "Duration in seconds")
	sampleRate := flag.Int("sample-rate", 48000, "Render sample rate in Hz")
	rampMs := flag.Float64("ramp", 20, "Drive fade-in time in milliseconds")
	output := flag.String("output", "output.wav", "Output WAV file path")
	flag.Parse()

	fs := float64(*sampleRate)

	proc, err := buildEffect(*effect, fs, *cutoff, *resonance, *diode)
	if err != nil {
		fail("building effect: %v", err)
	}

	const blockSize = 128

	if *ratio > 1 {
		proc, err = oversample.New[float64](fs, *ratio, blockSize, proc)
		if err != nil {
			fail("building oversampler: %v", err)
		}
	}

	gain, err := param.NewExponential[float64](fs, *rampMs)
	if err != nil {
		fail("building gain smoother: %v", err)
	}

	fmt.Printf("Rendering %s at %.1f Hz, drive %.2f, %.2f s at %d Hz (oversample x%d)...\n",
		*effect, *freq, *drive, *duration, *sampleRate, *ratio)

	totalFrames := int(fs * (*duration))
	if totalFrames < 1 {
		totalFrames = 1
	}

	samples := make([]float32, 0, totalFrames)

	w := 2 * math.Pi * *freq / fs
	buf := make([]float64, blockSize)

	for rendered := 0; rendered < totalFrames; {
		n := blockSize
		if rendered+n > totalFrames {
			n = totalFrames - rendered
		}

		for i := 0; i < n; i++ {
			x := math.Sin(w * float64(rendered+i))
			buf[i] = gain.Process(*drive) * x
		}

		node.ProcessInPlace(proc, buf[:n])

		for i := 0; i < n; i++ {
			samples = append(samples, float32(buf[i]))
		}

		rendered += n
	}

	if err := writeWAV(*output, *sampleRate, samples); err != nil {
		fail("writing %s: %v", *output, err)
	}

	fmt.Printf("Successfully wrote %s (%d frames, latency %d samples)\n", *output, totalFrames, proc.Latency())
}

func buildEffect(name string, fs, cutoff, resonance float64, diode string) (node.Processor[float64], error) {
	switch name {
	case "clipper":
		kind, err := diodeKind(diode)
		if err != nil {
			return nil, err
		}

		return wdf.NewDiodeClipperCircuit[float64](fs, kind, cutoff, 1, 1)

	case "svf":
		return svf.New[float64](fs,
			svf.WithCutoff[float64](cutoff),
			svf.WithQ[float64](resonance),
			svf.WithStateSaturators[float64](saturator.Tanh[float64]{}, saturator.Tanh[float64]{}),
		)

	case "ladder":
		return ladder.New[float64](fs,
			ladder.WithCutoff[float64](cutoff),
			ladder.WithResonance[float64](resonance),
			ladder.WithTopology[float64](ladder.NewTransistor[float64]()),
		)

	default:
		return nil, fmt.Errorf("unknown effect %q (want clipper, svf or ladder)", name)
	}
}

func diodeKind(name string) (saturator.DiodeKind, error) {
	switch name {
	case "silicon":
		return saturator.DiodeSilicon, nil
	case "germanium":
		return saturator.DiodeGermanium, nil
	case "led":
		return saturator.DiodeLED, nil
	default:
		return 0, fmt.Errorf("unknown diode type %q (want silicon, germanium or led)", name)
	}
}

func writeWAV(path string, sampleRate int, samples []float32) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := wav.NewEncoder(file, sampleRate, 16, 1, 1)
	defer encoder.Close()

	buf := &audio.Float32Buffer{
		Format: &audio.Format{
			SampleRate:  sampleRate,
			NumChannels: 1,
		},
		Data:           samples,
		SourceBitDepth: 16,
	}

	return encoder.Write(buf)
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error "+format+"\n", args...)
	os.Exit(1)
}
