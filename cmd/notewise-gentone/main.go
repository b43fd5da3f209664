// Command notewise-gentone synthesizes a WAV fixture from a melody
// string, for use as test input to notewise-transcribe and
// notewise-tuner.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/notewise/notewise/internal/fixtures"
	"github.com/notewise/notewise/internal/pipeline"
	"github.com/notewise/notewise/internal/sink"
)

func main() {
	out := flag.String("out", "fixture.wav", "output WAV path")
	melody := flag.String("melody", "C4 D4 E4 F4 G4 A4 B4 C5", "whitespace-separated note literals to synthesize")
	sampleRate := flag.Int("sample-rate", 44100, "sample rate of the generated audio")
	bpm := flag.Float64("bpm", 120.0, "tempo used to size each note's duration")
	timbre := flag.String("timbre", "guitar", "overtone stack: guitar or zero")
	fadeIn := flag.Float64("fade-in", fixtures.DefaultFadeIn, "fade-in seconds per note")
	fadeOut := flag.Float64("fade-out", fixtures.DefaultFadeOut, "fade-out seconds per note")
	flag.Parse()

	var stack []fixtures.Overtone
	switch *timbre {
	case "guitar":
		stack = fixtures.GuitarTimbre
	case "zero":
		stack = fixtures.ZeroTimbre
	default:
		log.Fatalf("unknown timbre %q, want guitar or zero", *timbre)
	}

	synth := fixtures.NewSynthesizer(*sampleRate, *bpm, stack)
	signal, err := synth.ParseAndGenerateMelody(*melody, stack, *fadeIn, *fadeOut)
	if err != nil {
		log.Fatalf("generating melody: %v", err)
	}
	if len(signal) == 0 {
		log.Fatalf("melody %q produced no recognizable notes", *melody)
	}

	f, err := os.Create(*out)
	if err != nil {
		log.Fatalf("creating %s: %v", *out, err)
	}
	defer f.Close()

	rec := sink.NewRecording(f, *sampleRate, uint32(len(signal)))
	if err := rec.Accept(&pipeline.Frame{SourceSignal: signal}); err != nil {
		log.Fatalf("writing %s: %v", *out, err)
	}

	log.Printf("wrote %d samples (%gs) to %s", len(signal), float64(len(signal))/float64(*sampleRate), *out)
}
