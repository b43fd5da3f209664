// Package harmony implements the harmony/chroma analyzer stage: it
// folds the spectrum into twelve pitch-class (chroma) bins spanning
// octaves 2-6 and reports which classes carry enough power to be heard
// as "present," grounded on
// original_source/src/audioprocessing/processor/harmony_analyzer.py.
package harmony

import (
	"math"

	"github.com/notewise/notewise/internal/dsp"
	"github.com/notewise/notewise/internal/pipeline"
	"github.com/notewise/notewise/internal/pitch"
)

// Defaults mirror the original source's module-level constants.
const (
	DefaultFFTResolutionHz  = 1.0
	DefaultRelativeMinPower = 0.3
	DefaultAbsoluteMinPower = 50.0

	semitoneMaskHalfWidth = 0.1
	minOctave             = 2
	maxOctave             = 6
)

// Analyzer is the C8 stage.
type Analyzer struct {
	fftSize          int
	relativeMinPower float64
	absoluteMinPower float64
	// semitoneMasks[k] is a 0/1 mask over FFT bins selecting the ones
	// that belong to pitch class k (C=0) within octaves 2..6.
	semitoneMasks [12][]float64
}

// New creates an Analyzer for the given sample rate.
func New(sampleRate int, fftResolutionHz, absoluteMinPower, relativeMinPower float64) *Analyzer {
	fftSize := int(float64(sampleRate) / fftResolutionHz)
	bins := dsp.BinToFreq(sampleRate, fftSize)

	var masks [12][]float64
	for k := range masks {
		masks[k] = make([]float64, fftSize)
	}
	for i, freq := range bins {
		semitonesFromC0 := semitonesFromC0(freq)
		if math.IsNaN(semitonesFromC0) {
			continue
		}
		if semitonesFromC0 < float64(minOctave)*12 || semitonesFromC0 > float64(maxOctave)*12 {
			continue
		}
		// Wrap into [-0.5, 11.5) so each pitch class k claims the bins
		// within +/-0.1 semitone of its exact position, matching the
		// original's (x + 0.5) % 12 - 0.5 fold.
		classIdx := math.Mod(semitonesFromC0+0.5, 12) - 0.5
		if classIdx < 0 {
			classIdx += 12
		}
		for k := 0; k < 12; k++ {
			if float64(k)-semitoneMaskHalfWidth <= classIdx && classIdx <= float64(k)+semitoneMaskHalfWidth {
				masks[k][i] = 1
			}
		}
	}

	return &Analyzer{
		fftSize:          fftSize,
		relativeMinPower: relativeMinPower,
		absoluteMinPower: absoluteMinPower,
		semitoneMasks:    masks,
	}
}

func semitonesFromC0(freq float64) float64 {
	if freq <= 0 {
		return math.NaN()
	}
	return math.Log2(freq/pitch.FreqC0) * 12.0
}

func (a *Analyzer) Name() string { return "harmony" }

// Process computes per-pitch-class power over the incoming chunk's
// spectrum: absolute power, power relative to the strongest class, and
// which classes clear both gates.
func (a *Analyzer) Process(f *pipeline.Frame) error {
	if len(f.SourceSignal) == 0 {
		f.SemitonePower = make([]float64, 12)
		f.SemitoneRelativePower = make([]float64, 12)
		f.PowerfulSemitones = nil
		return nil
	}

	_, amp, err := dsp.Magnitude(f.SourceSignal, a.fftSize)
	if err != nil {
		return err
	}

	power := make([]float64, 12)
	for k, mask := range a.semitoneMasks {
		var sum float64
		for i, m := range mask {
			if m != 0 {
				sum += amp[i]
			}
		}
		power[k] = sum
	}

	maxPower := dsp.Max(power)
	relative := make([]float64, 12)
	var powerful []pitch.Pitch
	for k, p := range power {
		if maxPower > 0 {
			relative[k] = p / maxPower
		}
		if relative[k] >= a.relativeMinPower && p >= a.absoluteMinPower {
			pt, err := pitch.FromOctaveSemitone(0, float64(k))
			if err == nil {
				powerful = append(powerful, pt)
			}
		}
	}

	f.SemitonePower = power
	f.SemitoneRelativePower = relative
	f.PowerfulSemitones = powerful
	return nil
}
