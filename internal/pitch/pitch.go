// Package pitch models a musical pitch: a frequency and its position in the
// equal-tempered scale relative to C0.
//
// https://en.wikipedia.org/wiki/Musical_tone
// https://en.wikipedia.org/wiki/Pitch_(music)
package pitch

import (
	"fmt"
	"math"
	"regexp"
)

// MinFrequency and MaxFrequency bound every valid Pitch, in Hz.
const (
	MinFrequency = 0.0
	MaxFrequency = 20000.0
)

// FreqA4 is the standard concert pitch reference, in Hz.
const FreqA4 = 440.0

// FreqC0 is the frequency of C0, the canonical coordinate pitches are
// measured against: offset-from-C0 linearizes musical distance so the
// tracker can compare pitches by plain subtraction.
var FreqC0 = FreqA4 * math.Pow(2.0, -4.0-9.0/12.0)

// StdOctave is the default octave used when a note literal omits one.
const StdOctave = 4

// SemitoneNames maps a semitone index (0-11, C=0) to its name.
var SemitoneNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// noteToSemitone maps a natural note letter to its semitone offset from C.
var noteToSemitone = map[byte]int{
	'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11,
}

var noteRegexp = regexp.MustCompile(`([A-G])([#b]?)([0-9]?)`)

// Pitch is an immutable musical pitch.
type Pitch struct {
	// Frequency is the measured frequency in Hz.
	Frequency float64
	// OffsetFromC0 is the continuous real-valued semitone distance from C0.
	OffsetFromC0 float64
	// Idx is OffsetFromC0 rounded to the nearest integer semitone.
	Idx int
	// Octave and Semitone are Idx's canonical decomposition: Semitone is
	// always in [0,11], using floored division so negative Idx normalizes
	// correctly (e.g. the "Cb0" literal, whose Idx is -1: octave -1,
	// semitone 11).
	Octave   int
	Semitone int
	// Note is the name of Semitone, e.g. "C#".
	Note string
	// NominalFrequency is the frequency of the nearest equal-tempered note.
	NominalFrequency float64
	// Error is Frequency - NominalFrequency, in Hz.
	Error float64
}

// New builds a Pitch from a frequency. It returns an error if frequency is
// outside (MinFrequency, MaxFrequency].
func New(frequency float64) (Pitch, error) {
	if frequency <= MinFrequency || frequency > MaxFrequency {
		return Pitch{}, fmt.Errorf("pitch: invalid frequency %g, valid range (%g, %g]", frequency, MinFrequency, MaxFrequency)
	}
	offset := math.Log2(frequency/FreqC0) * 12.0
	idx := int(math.Round(offset))
	octave, semitone := floorDivMod(idx, 12)
	nominal := FrequencyFromOctaveSemitone(octave, float64(semitone))
	return Pitch{
		Frequency:        frequency,
		OffsetFromC0:     offset,
		Idx:              idx,
		Octave:           octave,
		Semitone:         semitone,
		Note:             SemitoneNames[semitone],
		NominalFrequency: nominal,
		Error:            frequency - nominal,
	}, nil
}

// FromOctaveSemitone builds a Pitch from an octave and a (possibly
// fractional, possibly out-of-[0,11]-range) semitone, as used by
// Parse to apply a sharp/flat alteration before canonicalizing.
func FromOctaveSemitone(octave int, semitone float64) (Pitch, error) {
	return New(FrequencyFromOctaveSemitone(octave, semitone))
}

// FrequencyFromOctaveSemitone computes the frequency of an (octave,
// semitone) pair without requiring semitone to be a canonical integer
// in [0,11].
func FrequencyFromOctaveSemitone(octave int, semitone float64) float64 {
	return FreqC0 * math.Pow(2.0, float64(octave)+semitone/12.0)
}

// ErrorInSemitones is OffsetFromC0 - Idx, i.e. the tuning error expressed
// as a fraction of a semitone rather than in Hz.
func (p Pitch) ErrorInSemitones() float64 {
	return p.OffsetFromC0 - float64(p.Idx)
}

// Key identifies a Pitch by its nominal (octave, semitone), for use as a
// map key or for tracking-style equality: two pitches with the same Key
// are considered the same note regardless of cents of tuning error.
func (p Pitch) Key() (octave, semitone int) {
	return p.Octave, p.Semitone
}

func (p Pitch) String() string {
	s := fmt.Sprintf("%s%d", p.Note, p.Octave)
	if math.Abs(p.Error) > 1e-3 {
		s += fmt.Sprintf(" err %gHz", p.Error)
	}
	return s
}

// Parse parses a single note literal of the form NOTE[#|b][OCTAVE], e.g.
// "A4", "C#5", "Bb3". The octave defaults to StdOctave when omitted.
func Parse(s string) (Pitch, error) {
	m := noteRegexp.FindStringSubmatch(s)
	if m == nil {
		return Pitch{}, fmt.Errorf("pitch: %q is not a valid note", s)
	}
	return pitchFromGroups(m)
}

// ParseAll finds every note literal in s, with no delimiter required
// between tokens, and parses each one. Unmatched substrings are ignored.
func ParseAll(s string) []Pitch {
	matches := noteRegexp.FindAllStringSubmatch(s, -1)
	pitches := make([]Pitch, 0, len(matches))
	for _, m := range matches {
		p, err := pitchFromGroups(m)
		if err != nil {
			continue
		}
		pitches = append(pitches, p)
	}
	return pitches
}

func pitchFromGroups(groups []string) (Pitch, error) {
	semitone := noteToSemitone[groups[1][0]]
	switch groups[2] {
	case "#":
		semitone++
	case "b":
		semitone--
	}
	octave := StdOctave
	if groups[3] != "" {
		var err error
		if _, err = fmt.Sscanf(groups[3], "%d", &octave); err != nil {
			return Pitch{}, fmt.Errorf("pitch: bad octave in %q: %w", groups[0], err)
		}
	}
	return FromOctaveSemitone(octave, float64(semitone))
}

// floorDivMod returns (a div b, a mod b) using floored division, so the
// remainder always has the same sign as b (here, always in [0,11]).
func floorDivMod(a, b int) (q, r int) {
	q = a / b
	r = a % b
	if r != 0 && (r < 0) != (b < 0) {
		q--
		r += b
	}
	return q, r
}
