// Package note models a transcribed musical note: a pitch held between a
// start and an end sample time, with an optional rhythmic value in beats.
package note

import (
	"fmt"
	"math"

	"github.com/notewise/notewise/internal/pitch"
)

// Note is an immutable (pitch, start, end) tuple, optionally carrying a
// beat-grid position when a BPM was supplied.
type Note struct {
	Pitch  pitch.Pitch
	StartS float64
	EndS   float64

	// HasBeat reports whether StartBeat/EndBeat/Value were computed from a
	// supplied BPM.
	HasBeat   bool
	StartBeat float64
	EndBeat   float64
	Value     float64
}

// New builds a Note. bpm may be nil to skip beat computation. It returns
// an error if EndS <= StartS.
func New(p pitch.Pitch, startS, endS float64, bpm *float64) (Note, error) {
	if endS <= startS {
		return Note{}, fmt.Errorf("note: end_s (%g) must be greater than start_s (%g)", endS, startS)
	}
	n := Note{Pitch: p, StartS: startS, EndS: endS}
	if bpm != nil {
		n.HasBeat = true
		n.StartBeat = startS * *bpm / 60.0
		n.EndBeat = endS * *bpm / 60.0
		n.Value = n.EndBeat - n.StartBeat
	}
	return n, nil
}

func (n Note) String() string {
	var s string
	if n.HasBeat {
		s = fmt.Sprintf("at beat %g: %s%d(%g) value %g beats",
			n.StartBeat, n.Pitch.Note, n.Pitch.Octave, n.Pitch.OffsetFromC0, n.Value)
	} else {
		s = fmt.Sprintf("%s%d from %gs to %gs", n.Pitch.Note, n.Pitch.Octave, n.StartS, n.EndS)
	}
	if math.Abs(n.Pitch.ErrorInSemitones()) >= 0.01 {
		s += fmt.Sprintf(" - pitch err %d/100", int(n.Pitch.ErrorInSemitones()*100.0))
	}
	return s
}
