// Package bandpeak implements the band peak finder stage, the core
// of the tuner mode: for each configured frequency band, it reports the
// strongest spectral peak inside that band (or nil if too weak),
// grounded on
// original_source/src/audioprocessing/processor/band_peak_finder.py.
//
// DefaultBands below replaces the original's two-octave-band default
// with six guitar open-string bands, a better fit for a tuner.
package bandpeak

import (
	"fmt"

	"github.com/notewise/notewise/internal/dsp"
	"github.com/notewise/notewise/internal/pipeline"
	"github.com/notewise/notewise/internal/pitch"
)

// Defaults mirror the original source's module-level constants.
const (
	DefaultFFTResolutionHz       = 0.1
	DefaultMinAbsolutePeakHeight = 0.0005
	// DefaultBandHalfWidthSemitones is the +/- half-width, in semitones,
	// around each of DefaultBands' open-string pitches.
	DefaultBandHalfWidthSemitones = 1.5
)

// Band is a closed frequency interval [Lo, Hi] searched for a peak.
type Band struct {
	Lo, Hi float64
}

// DefaultBands holds the six standard guitar open-string bands (E2, A2,
// D3, G3, B3, E4), each +/- 1.5 semitones.
var DefaultBands = mustDefaultBands()

func mustDefaultBands() []Band {
	notes := []string{"E2", "A2", "D3", "G3", "B3", "E4"}
	bands := make([]Band, len(notes))
	for i, n := range notes {
		p, err := pitch.Parse(n)
		if err != nil {
			panic(err)
		}
		lo := pitch.FrequencyFromOctaveSemitone(p.Octave, p.OffsetFromC0-float64(p.Octave*12)-DefaultBandHalfWidthSemitones)
		hi := pitch.FrequencyFromOctaveSemitone(p.Octave, p.OffsetFromC0-float64(p.Octave*12)+DefaultBandHalfWidthSemitones)
		bands[i] = Band{Lo: lo, Hi: hi}
	}
	return bands
}

// Finder is the C7 stage.
type Finder struct {
	fftSize               int
	minAbsolutePeakHeight float64
	bandsIdx              [][2]int
	bandsFreq             []Band
	binToFreq             []float64
}

// New creates a Finder over the given bands (closed frequency intervals)
// at the given sample rate. Each band's Lo must be < its Hi; bands may
// overlap one another.
func New(sampleRate int, fftResolutionHz, minAbsolutePeakHeight float64, bands []Band) (*Finder, error) {
	fftSize := int(float64(sampleRate) / fftResolutionHz)
	bins := dsp.BinToFreq(sampleRate, fftSize)

	bandsIdx := make([][2]int, len(bands))
	for i, b := range bands {
		if b.Lo >= b.Hi {
			return nil, fmt.Errorf("bandpeak: band %d has Lo >= Hi (%g, %g)", i, b.Lo, b.Hi)
		}
		lo := nearestBin(bins, b.Lo)
		hi := nearestBin(bins, b.Hi)
		if lo >= hi {
			return nil, fmt.Errorf("bandpeak: band %d resolves to degenerate bin range [%d,%d]", i, lo, hi)
		}
		bandsIdx[i] = [2]int{lo, hi}
	}

	return &Finder{
		fftSize:               fftSize,
		minAbsolutePeakHeight: minAbsolutePeakHeight,
		bandsIdx:              bandsIdx,
		bandsFreq:             bands,
		binToFreq:             bins,
	}, nil
}

func nearestBin(bins []float64, freq float64) int {
	best := 0
	bestDist := -1.0
	for i, f := range bins {
		d := f - freq
		if d < 0 {
			d = -d
		}
		if bestDist < 0 || d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}

func (fi *Finder) Name() string { return "bandpeak" }

// Process computes the magnitude FFT of the incoming chunk
// (f.SourceSignal) and, for each configured band, reports the frequency
// of its strongest peak if it clears the absolute height gate, else nil.
// An empty chunk adds no readings.
func (fi *Finder) Process(f *pipeline.Frame) error {
	if len(f.SourceSignal) == 0 {
		return nil
	}

	_, amp, err := dsp.Magnitude(f.SourceSignal, fi.fftSize)
	if err != nil {
		return err
	}
	minHeight := float64(len(f.SourceSignal)) * fi.minAbsolutePeakHeight

	bandsPeak := make([]*float64, len(fi.bandsIdx))
	for i, idxRange := range fi.bandsIdx {
		lo, hi := idxRange[0], idxRange[1]
		peakIdx := lo + dsp.ArgMax(amp, lo, hi)
		peakAmp := amp[peakIdx]
		if peakAmp < minHeight {
			continue
		}
		freq := fi.binToFreq[peakIdx]
		bandsPeak[i] = &freq
	}

	f.BandsPeak = bandsPeak
	return nil
}
