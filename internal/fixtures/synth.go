// Package fixtures synthesizes test audio: single tones, melodies parsed
// from a note-literal string, and the overtone timbre stack used to make
// them sound guitar-like, grounded on
// original_source/src/audioprocessing/io/synthesizer.py.
package fixtures

import (
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"strings"

	"github.com/notewise/notewise/internal/pitch"
)

// Overtone is one harmonic component of a timbre: Ratio is its frequency
// as a multiple of the fundamental, Amp is its relative amplitude.
type Overtone struct {
	Ratio float64
	Amp   float64
}

// ZeroTimbre produces a pure sine tone with no overtones.
var ZeroTimbre = []Overtone{}

// GuitarTimbre approximates a plucked guitar string's overtone stack,
// preserved verbatim from the original source's GUITAR_TIMBRE constant.
var GuitarTimbre = []Overtone{
	{Ratio: 2.0, Amp: 1.1},
	{Ratio: 1.5, Amp: 0.4},
	{Ratio: 4.0, Amp: 0.1},
}

// Defaults mirror the original source's module-level constants.
const (
	DefaultFadeIn  = 0.01
	DefaultFadeOut = 0.01
)

// Synthesizer generates PCM signal at a fixed sample rate for a tempo
// expressed in beats per minute.
type Synthesizer struct {
	SampleRate   int
	BPM          float64
	DefaultTimbre []Overtone
}

// NewSynthesizer creates a Synthesizer at the given sample rate and BPM,
// defaulting to GuitarTimbre when timbre is nil.
func NewSynthesizer(sampleRate int, bpm float64, timbre []Overtone) *Synthesizer {
	if timbre == nil {
		timbre = GuitarTimbre
	}
	return &Synthesizer{SampleRate: sampleRate, BPM: bpm, DefaultTimbre: timbre}
}

// valueToDuration converts a rhythmic value, in beats (1.0 = whole note
// at 4 beats/bar), into seconds at the synthesizer's BPM.
func (s *Synthesizer) valueToDuration(value float64) float64 {
	return value * 4.0 * 60.0 / s.BPM
}

func (s *Synthesizer) generateSin(amp, freq, phase, duration float64) []float64 {
	n := int(duration * float64(s.SampleRate))
	out := make([]float64, n)
	for i := range out {
		t := float64(i) / float64(s.SampleRate)
		out[i] = amp * math.Sin(2.0*math.Pi*freq*t+phase)
	}
	return out
}

func (s *Synthesizer) generateFade(duration, fadeIn, fadeOut float64) ([]float64, error) {
	var fadeInSignal, fadeOutSignal []float64
	if fadeIn > 0 {
		step := 1.0 / (fadeIn * float64(s.SampleRate))
		for v := 0.0; v < 1.0; v += step {
			fadeInSignal = append(fadeInSignal, v)
		}
	}
	if fadeOut > 0 {
		step := 1.0 / (fadeOut * float64(s.SampleRate))
		for v := 1.0; v > 0.0; v -= step {
			fadeOutSignal = append(fadeOutSignal, v)
		}
	}
	leftOver := int(duration*float64(s.SampleRate)) - len(fadeInSignal) - len(fadeOutSignal)
	if leftOver <= 0 {
		return nil, fmt.Errorf("fixtures: fade is too long for a %gs note", duration)
	}
	out := make([]float64, 0, len(fadeInSignal)+leftOver+len(fadeOutSignal))
	out = append(out, fadeInSignal...)
	for i := 0; i < leftOver; i++ {
		out = append(out, 1.0)
	}
	out = append(out, fadeOutSignal...)
	return out, nil
}

// GenerateNote synthesizes a single note: a fundamental plus the
// timbre's overtones, peak-normalized to [-1, 1] and faded in/out.
func (s *Synthesizer) GenerateNote(amp, freq, value float64, timbre []Overtone, fadeIn, fadeOut float64) ([]float64, error) {
	if timbre == nil {
		timbre = s.DefaultTimbre
	}
	duration := s.valueToDuration(value)
	sig := s.generateSin(1.0, freq, 0.0, duration)
	for _, ot := range timbre {
		overtone := s.generateSin(ot.Amp, freq*ot.Ratio, 0.0, duration)
		for i := range sig {
			if i < len(overtone) {
				sig[i] += overtone[i]
			}
		}
	}
	normalize(sig)
	fade, err := s.generateFade(duration, fadeIn, fadeOut)
	if err != nil {
		return nil, err
	}
	for i := range sig {
		sig[i] *= amp
		if i < len(fade) {
			sig[i] *= fade[i]
		}
	}
	return sig, nil
}

// ScoredNote is one entry of a melody: amplitude, frequency, and
// rhythmic value.
type ScoredNote struct {
	Amp   float64
	Freq  float64
	Value float64
}

// GenerateMelody concatenates GenerateNote for each entry in notes.
func (s *Synthesizer) GenerateMelody(notes []ScoredNote, timbre []Overtone, fadeIn, fadeOut float64) ([]float64, error) {
	var out []float64
	for _, n := range notes {
		sig, err := s.GenerateNote(n.Amp, n.Freq, n.Value, timbre, fadeIn, fadeOut)
		if err != nil {
			return nil, err
		}
		out = append(out, sig...)
	}
	return out, nil
}

// ParseAndGenerateMelody tokenizes melodyStr on whitespace, parses each
// token as a note literal (unparseable tokens are skipped), and
// generates the resulting melody at a constant amplitude and a quarter
// beat per note.
func (s *Synthesizer) ParseAndGenerateMelody(melodyStr string, timbre []Overtone, fadeIn, fadeOut float64) ([]float64, error) {
	const lastAmp = 0.5
	const lastValue = 1.0 / 4.0

	noteToken := regexp.MustCompile(`^[A-G][#b]?[0-9]?$`)
	var notes []ScoredNote
	for _, tok := range strings.Fields(melodyStr) {
		if !noteToken.MatchString(tok) {
			continue
		}
		p, err := pitch.Parse(tok)
		if err != nil {
			continue
		}
		notes = append(notes, ScoredNote{Amp: lastAmp, Freq: p.Frequency, Value: lastValue})
	}
	return s.GenerateMelody(notes, timbre, fadeIn, fadeOut)
}

// normalize rescales sig in place to span exactly [-1, 1] peak-to-peak.
// A constant (zero-range) signal is left unchanged and a warning is
// logged.
func normalize(sig []float64) {
	if len(sig) == 0 {
		return
	}
	lo, hi := sig[0], sig[0]
	for _, v := range sig[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	amp := hi - lo
	if amp <= 1e-6 {
		slog.Warn("fixtures: signal has near-zero peak-to-peak range, not normalizing", "ptp", amp)
		return
	}
	for i, v := range sig {
		sig[i] = (v-lo)*2.0/amp - 1.0
	}
}
