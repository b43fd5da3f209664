// Package monophonic implements the optional single-pitch-per-chunk
// filter selected by Config.Monophonic: it keeps only the loudest
// detected spectral peak so the downstream pitch tracker never has more
// than one candidate to follow, trading polyphony for noise rejection
// on solo instrument input.
package monophonic

import "github.com/notewise/notewise/internal/pipeline"

// Filter truncates f.Pitches (and the peak slices alongside it) to the
// single strongest peak, ranked by spectrum amplitude.
type Filter struct{}

// New creates a Filter.
func New() *Filter { return &Filter{} }

func (*Filter) Name() string { return "monophonic" }

func (*Filter) Process(f *pipeline.Frame) error {
	if len(f.Pitches) <= 1 {
		return nil
	}

	best := 0
	bestAmp := -1.0
	for i, idx := range f.SpectrumPeaksIdx {
		if i >= len(f.Pitches) {
			break
		}
		if idx < 0 || idx >= len(f.SpectrumAmp) {
			continue
		}
		if amp := f.SpectrumAmp[idx]; amp > bestAmp {
			bestAmp = amp
			best = i
		}
	}

	f.Pitches = f.Pitches[best : best+1]
	if best < len(f.SpectrumPeaksIdx) {
		f.SpectrumPeaksIdx = f.SpectrumPeaksIdx[best : best+1]
	}
	if best < len(f.SpectrumPeaksFreq) {
		f.SpectrumPeaksFreq = f.SpectrumPeaksFreq[best : best+1]
	}
	return nil
}
