// Package spectrum implements the spectrum analyzer stage: a
// magnitude FFT over the raw incoming chunk, dual-gated peak detection,
// and min/max frequency band filtering, grounded on
// original_source/src/audioprocessing/processor/spectrum_analyzer.py and
// extended here with the min_freq/max_freq band the original left
// unbounded.
package spectrum

import (
	"github.com/notewise/notewise/internal/dsp"
	"github.com/notewise/notewise/internal/pipeline"
	"github.com/notewise/notewise/internal/pitch"
)

// Defaults mirror the original source's module-level constants, plus
// the added min/max frequency band.
const (
	DefaultFFTResolutionHz        = 1.0 / 4.0
	DefaultMinRelativePeakHeight  = 1.0 / 3.0
	DefaultMinAbsolutePeakHeight  = 0.001
)

// DefaultMinFreq and DefaultMaxFreq bound the retained peaks to D2..F6.
var (
	DefaultMinFreq = mustFreq("D2")
	DefaultMaxFreq = mustFreq("F6")
)

func mustFreq(s string) float64 {
	p, err := pitch.Parse(s)
	if err != nil {
		panic(err)
	}
	return p.Frequency
}

// Analyzer is the C6 stage.
type Analyzer struct {
	fftSize               int
	minRelativePeakHeight float64
	minAbsolutePeakHeight float64
	minFreq, maxFreq      float64
	binToFreq             []float64
}

// New creates an Analyzer for the given sample rate. fftResolutionHz
// governs the FFT size (sampleRate / fftResolutionHz); minFreq/maxFreq
// bound which peaks are retained.
func New(sampleRate int, fftResolutionHz, minRelativePeakHeight, minAbsolutePeakHeight, minFreq, maxFreq float64) *Analyzer {
	fftSize := int(float64(sampleRate) / fftResolutionHz)
	return &Analyzer{
		fftSize:               fftSize,
		minRelativePeakHeight: minRelativePeakHeight,
		minAbsolutePeakHeight: minAbsolutePeakHeight,
		minFreq:               minFreq,
		maxFreq:                maxFreq,
		binToFreq:             dsp.BinToFreq(sampleRate, fftSize),
	}
}

func (a *Analyzer) Name() string { return "spectrum" }

// Process computes the magnitude FFT of f.SourceSignal and the peaks
// within [minFreq, maxFreq] that clear both the relative and absolute
// height gates.
func (a *Analyzer) Process(f *pipeline.Frame) error {
	if len(f.SourceSignal) == 0 {
		return nil
	}

	spectrum, amp, err := dsp.Magnitude(f.SourceSignal, a.fftSize)
	if err != nil {
		return err
	}

	maxAmp := dsp.Max(amp)
	threshold := maxAmp * a.minRelativePeakHeight
	if abs := float64(len(f.SourceSignal)) * a.minAbsolutePeakHeight; abs > threshold {
		threshold = abs
	}

	var peaksIdx []int
	var peaksFreq []float64
	var pitches []pitch.Pitch
	for _, idx := range dsp.FindPeaks(amp, threshold) {
		freq := a.binToFreq[idx]
		if freq < 0 || freq < a.minFreq || freq > a.maxFreq {
			continue
		}
		peaksIdx = append(peaksIdx, idx)
		peaksFreq = append(peaksFreq, freq)
		if p, err := pitch.New(freq); err == nil {
			pitches = append(pitches, p)
		}
	}

	f.Spectrum = spectrum
	f.SpectrumAmp = amp
	f.SpectrumPeaksIdx = peaksIdx
	f.SpectrumPeaksFreq = peaksFreq
	f.Pitches = pitches
	return nil
}
