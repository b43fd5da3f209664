// Package notetracker implements the note tracker stage: it turns
// each finished pitch track into a Note on the beat grid and, where
// enough buffered history survives, refines its frequency with a single
// high-resolution FFT over the note's steady middle portion, grounded on
// original_source/src/audioprocessing/processor/note_tracker.py.
package notetracker

import (
	"log/slog"
	"math"

	"github.com/notewise/notewise/internal/dsp"
	"github.com/notewise/notewise/internal/note"
	"github.com/notewise/notewise/internal/pipeline"
	"github.com/notewise/notewise/internal/pitch"
)

// Defaults mirror the original source's module-level constants.
const (
	DefaultBPM                      = 60.0
	DefaultResolutionBeat           = 1.0 / 4.0
	DefaultOptimizationFFTResolution = 0.05
	DefaultSearchWinSizeHz          = 2.0
	DefaultUseLongFFTOptimization   = true
)

// Tracker is the C10 stage.
type Tracker struct {
	bpm                    float64
	resolutionBeat         float64
	fftResolutionHz        float64
	searchWinSize          float64
	useLongFFTOptimization bool
	logger                 *slog.Logger
}

// New creates a Tracker with the given beat grid and long-DFT refinement
// parameters.
func New(bpm, resolutionBeat, fftResolutionHz, searchWinSize float64, useLongFFTOptimization bool, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Tracker{
		bpm:                    bpm,
		resolutionBeat:         resolutionBeat,
		fftResolutionHz:        fftResolutionHz,
		searchWinSize:          searchWinSize,
		useLongFFTOptimization: useLongFFTOptimization,
		logger:                 logger,
	}
}

func (tr *Tracker) Name() string { return "notetracker" }

// Process turns each of f.FinishedPitches into a Note spanning its
// tracked start to the current sample, discarding any note too short to
// register on the beat grid, then optionally refines surviving notes'
// frequency via longDFTOptimization.
func (tr *Tracker) Process(f *pipeline.Frame) error {
	if len(f.FinishedPitches) == 0 {
		return nil
	}

	bpm := tr.bpm
	var notes []note.Note
	for _, pt := range f.FinishedPitches {
		startS := float64(pt.StartSample) / float64(f.SampleRate)
		endS := float64(f.CurrentSample) / float64(f.SampleRate)
		n, err := note.New(pt.Pitch, startS, endS, &bpm)
		if err != nil {
			tr.logger.Warn("notetracker: discarding degenerate note", "err", err)
			continue
		}
		if n.Value <= tr.resolutionBeat {
			continue
		}

		if tr.useLongFFTOptimization {
			if f.BufferedSignal == nil {
				tr.logger.Warn("notetracker: no buffered signal, can't optimize note")
			} else if refined, ok := tr.longDFTOptimization(n, pt.StartSample, f.CurrentSample, f.SampleRate, f.BufferedSignal, f.BufferedSignalStart); ok {
				n = refined
			}
		}
		notes = append(notes, n)
	}

	f.Notes = notes
	return nil
}

// longDFTOptimization re-estimates a finished note's frequency from a
// single high-resolution FFT over the steady-state portion of its
// buffered history: samples [len/6, 4*len/6) of the slice starting at
// the note's start sample. That asymmetric window (not the symmetric
// middle third) is preserved verbatim from the original source.
func (tr *Tracker) longDFTOptimization(n note.Note, start, currentSample int64, sampleRate int, bufferedSignal []float64, bufferedSignalStart int64) (note.Note, bool) {
	bufferStart := start - bufferedSignalStart
	if bufferStart < 0 {
		bufferStart = 0
	}
	if int(bufferStart) > len(bufferedSignal) {
		return note.Note{}, false
	}
	chunk := bufferedSignal[bufferStart:]
	lo := len(chunk) * 1 / 6
	hi := len(chunk) * 4 / 6
	if lo >= hi {
		return note.Note{}, false
	}
	chunk = chunk[lo:hi]

	fftSize := int(float64(sampleRate) / tr.fftResolutionHz)
	if len(chunk) > fftSize {
		fftSize = len(chunk)
	}

	bins := dsp.BinToFreq(sampleRate, fftSize)
	searchMin, searchMax := -1, -1
	for i, freq := range bins {
		if math.Abs(freq-n.Pitch.Frequency) < tr.searchWinSize {
			if searchMin < 0 {
				searchMin = i
			}
			searchMax = i
		}
	}
	if searchMin < 0 {
		return note.Note{}, false
	}

	_, amp, err := dsp.Magnitude(chunk, fftSize)
	if err != nil {
		return note.Note{}, false
	}
	// The original slices spectrum_portion_amp as [searchMin:searchMax)
	// (searchMax exclusive); guard the degenerate single-bin case.
	hiExclusive := searchMax
	if hiExclusive <= searchMin {
		hiExclusive = searchMin + 1
	}
	if hiExclusive > len(amp) {
		hiExclusive = len(amp)
	}
	peakIdx := searchMin + dsp.ArgMax(amp, searchMin, hiExclusive)
	maxFreq := bins[peakIdx]

	refinedPitch, err := pitch.New(maxFreq)
	if err != nil {
		return note.Note{}, false
	}
	bpm := tr.bpm
	refined, err := note.New(refinedPitch, n.StartS, n.EndS, &bpm)
	if err != nil {
		return note.Note{}, false
	}
	return refined, true
}
