// Package pipeline implements the streaming driver: a chunked audio source
// feeding an ordered chain of stateful stages, threading a per-iteration
// Frame through the chain and handing the result to a Sink.
//
// This replaces an open string-keyed signal bag with a typed struct:
// every signal produced by a stage is a named field here instead of a
// map key, so a stage that forgets to check for upstream data gets a
// zero value rather than a missing-key panic.
package pipeline

import (
	"github.com/notewise/notewise/internal/note"
	"github.com/notewise/notewise/internal/pitch"
)

// PitchTrack pairs a tracked pitch with when it started. StartSample is
// carried in addition to StartIteration because the note tracker needs
// an absolute sample index to slice the buffered signal and to compute
// start_s.
type PitchTrack struct {
	Pitch          pitch.Pitch
	StartIteration int
	StartSample    int64
}

// SoundRegion is an emitted (start, end) sound segment, in absolute sample
// indices.
type SoundRegion struct {
	StartSample int64
	EndSample   int64
}

// Frame carries every signal produced and consumed across one iteration of
// the driver loop. Fields are populated incrementally as stages run; a
// stage that needs a field no earlier stage populated must treat its zero
// value as "no work for this iteration".
type Frame struct {
	// Driver-owned clocks, set before any stage runs.
	Iteration     int
	CurrentSample int64
	T             float64
	SampleRate    int

	// Source.
	SourceSignal []float64

	// Ring buffer.
	BufferedSignal      []float64
	BufferedSignalStart int64

	// RMS / power envelope.
	RMS []float64

	// Sound segmenter.
	SplitSound        []float64
	SoundsSplitPoints []SoundRegion

	// Spectrum analyzer.
	Spectrum          []complex128
	SpectrumAmp       []float64
	SpectrumPeaksIdx  []int
	SpectrumPeaksFreq []float64
	Pitches           []pitch.Pitch

	// Pitch tracker.
	StartedPitches  []PitchTrack
	OngoingPitches  []PitchTrack
	FinishedPitches []PitchTrack

	// Note tracker.
	Notes []note.Note

	// Harmony analyzer.
	SemitonePower         []float64
	SemitoneRelativePower []float64
	PowerfulSemitones     []pitch.Pitch

	// Band peak finder.
	BandsPeak []*float64
}
