// Package tracker implements the pitch tracker stage: it matches
// each frame's detected pitches against the pitches carried over from
// the previous frame by semitone distance, producing started/ongoing/
// finished track sets, grounded on
// original_source/src/audioprocessing/processor/pitch_tracker.py.
//
// A current pitch may be claimed by at most one incoming pitch per
// frame: first match wins, and any later incoming pitch that would also
// match an already-claimed current pitch spawns a new track instead —
// tighter than the original's tie-break, which left this ambiguous.
package tracker

import (
	"math"

	"github.com/notewise/notewise/internal/pipeline"
)

// DefaultMaxDelta is the default matching tolerance, in semitones: about
// 25 cents, the psychoacoustic just-noticeable-difference.
const DefaultMaxDelta = 25.0 / 100.0

// Tracker is the C9 stage.
type Tracker struct {
	maxDelta float64
	current  []pipeline.PitchTrack
}

// New creates a Tracker with the given matching tolerance, in semitones.
func New(maxDelta float64) *Tracker {
	return &Tracker{maxDelta: maxDelta}
}

func (t *Tracker) Name() string { return "tracker" }

// Process matches f.Pitches against the tracks carried over from the
// previous frame and emits f.StartedPitches, f.OngoingPitches, and
// f.FinishedPitches.
func (t *Tracker) Process(f *pipeline.Frame) error {
	consumed := make([]bool, len(t.current))
	var ongoing, started []pipeline.PitchTrack

	for _, p := range f.Pitches {
		matched := -1
		for i, cp := range t.current {
			if consumed[i] {
				continue
			}
			if math.Abs(cp.Pitch.OffsetFromC0-p.OffsetFromC0) < t.maxDelta {
				matched = i
				break
			}
		}
		if matched >= 0 {
			consumed[matched] = true
			ongoing = append(ongoing, t.current[matched])
			continue
		}
		started = append(started, pipeline.PitchTrack{
			Pitch:          p,
			StartIteration: f.Iteration,
			StartSample:    f.CurrentSample,
		})
	}

	var finished []pipeline.PitchTrack
	for i, cp := range t.current {
		if !consumed[i] {
			finished = append(finished, cp)
		}
	}

	next := make([]pipeline.PitchTrack, 0, len(ongoing)+len(started))
	next = append(next, ongoing...)
	next = append(next, started...)
	t.current = next

	f.StartedPitches = started
	f.OngoingPitches = ongoing
	f.FinishedPitches = finished
	return nil
}
