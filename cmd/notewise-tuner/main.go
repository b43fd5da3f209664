// Command notewise-tuner runs a minimal pipeline — ring buffer, RMS
// envelope, sound segmenter, and band peak finder only, no pitch
// tracking — against a live or file source and prints, for every chunk,
// one tuning line per band in which a peak was found, grounded on
// original_source/src/audioprocessing/app/guitar_tuner.py's standalone
// BandPeakFinder-only wiring.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/notewise/notewise/internal/bandpeak"
	"github.com/notewise/notewise/internal/buffer"
	"github.com/notewise/notewise/internal/envelope"
	"github.com/notewise/notewise/internal/pipeline"
	"github.com/notewise/notewise/internal/pitch"
	"github.com/notewise/notewise/internal/segmenter"
	"github.com/notewise/notewise/internal/source"
)

func main() {
	wavPath := flag.String("wav", "", "WAV file to tune against; omit to read from the default input device")
	processingRate := flag.Float64("processing-rate", source.DefaultProcessingRate, "chunks of audio read per second")
	logLevel := flag.String("log-level", "warn", "log level (debug, info, warn, error)")
	flag.Parse()

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		log.Fatalf("unknown log level %q: %v", *logLevel, err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	var src pipeline.Source
	if *wavPath != "" {
		src = source.NewWavFile(*wavPath, *processingRate)
	} else {
		src = source.NewSoundCard(source.DefaultSampleRate, *processingRate)
	}

	if err := src.Acquire(); err != nil {
		logger.Error("failed to acquire audio source", "error", err)
		os.Exit(1)
	}
	sampleRate := src.SampleRate()

	finder, err := bandpeak.New(sampleRate, bandpeak.DefaultFFTResolutionHz, bandpeak.DefaultMinAbsolutePeakHeight, bandpeak.DefaultBands)
	if err != nil {
		logger.Error("failed to build band peak finder", "error", err)
		os.Exit(1)
	}

	stages := []pipeline.Stage{
		buffer.New(sampleRate, buffer.DefaultDuration, logger),
		envelope.New(envelope.DefaultWindows),
		segmenter.New(segmenter.DefaultMinNoisePower, segmenter.DefaultMinSoundDuration),
		finder,
	}

	sink := pipeline.SinkFunc(func(f *pipeline.Frame) error {
		printTuning(f.BandsPeak)
		return nil
	})

	driver := pipeline.NewDriver(src, stages, sink, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := driver.Run(ctx); err != nil {
		logger.Error("tuner driver failed", "error", err)
		os.Exit(1)
	}
}

// bandNotes names each DefaultBands entry by its open string, for
// console output only.
var bandNotes = []string{"E2", "A2", "D3", "G3", "B3", "E4"}

func printTuning(bandsPeak []*float64) {
	for i, peak := range bandsPeak {
		if peak == nil {
			continue
		}
		name := fmt.Sprintf("band %d", i)
		if i < len(bandNotes) {
			name = bandNotes[i]
		}
		p, err := pitch.New(*peak)
		if err != nil {
			fmt.Printf("%s: %.2f Hz (out of range)\n", name, *peak)
			continue
		}
		fmt.Printf("%s: %.2f Hz, err %+.1f cents\n", name, *peak, p.ErrorInSemitones()*100)
	}
}
