// Command notewise-transcribe runs the full transcription pipeline over a
// WAV file or the default input device and prints each finished note as
// it's tracked: buffer -> envelope -> segmenter -> spectrum ->
// [monophonic] -> tracker -> notetracker.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/notewise/notewise/internal/buffer"
	"github.com/notewise/notewise/internal/envelope"
	"github.com/notewise/notewise/internal/monophonic"
	"github.com/notewise/notewise/internal/notetracker"
	"github.com/notewise/notewise/internal/pipeline"
	"github.com/notewise/notewise/internal/segmenter"
	"github.com/notewise/notewise/internal/sink"
	"github.com/notewise/notewise/internal/source"
	"github.com/notewise/notewise/internal/spectrum"
	"github.com/notewise/notewise/internal/tracker"
)

func main() {
	wavPath := flag.String("wav", "", "WAV file to transcribe; omit to read from the default input device")
	processingRate := flag.Float64("processing-rate", source.DefaultProcessingRate, "chunks of audio read per second")
	bufferDuration := flag.Float64("buffer-duration", buffer.DefaultDuration, "seconds of audio history kept in the ring buffer")
	monoOnly := flag.Bool("monophonic", false, "keep only the single strongest detected pitch per chunk")
	bpm := flag.Float64("bpm", notetracker.DefaultBPM, "tempo used to quantize notes onto the beat grid")
	fftResolutionHz := flag.Float64("fft-resolution-hz", spectrum.DefaultFFTResolutionHz, "spectrum analyzer FFT bin width in Hz")
	logLevel := flag.String("log-level", "info", "log level (debug, info, warn, error)")
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

	// Acquire here to learn the source's sample rate before building the
	// stage chain; Acquire is idempotent, so Driver.Run's own Acquire
	// below is a no-op.
	if err := src.Acquire(); err != nil {
		logger.Error("failed to acquire audio source", "error", err)
		os.Exit(1)
	}
	sampleRate := src.SampleRate()

	stages := []pipeline.Stage{
		buffer.New(sampleRate, *bufferDuration, logger),
		envelope.New(envelope.DefaultWindows),
		segmenter.New(segmenter.DefaultMinNoisePower, segmenter.DefaultMinSoundDuration),
		spectrum.New(sampleRate, *fftResolutionHz, spectrum.DefaultMinRelativePeakHeight, spectrum.DefaultMinAbsolutePeakHeight, spectrum.DefaultMinFreq, spectrum.DefaultMaxFreq),
	}
	if *monoOnly {
		stages = append(stages, monophonic.New())
	}
	stages = append(stages,
		tracker.New(tracker.DefaultMaxDelta),
		notetracker.New(*bpm, notetracker.DefaultResolutionBeat, notetracker.DefaultOptimizationFFTResolution, notetracker.DefaultSearchWinSizeHz, notetracker.DefaultUseLongFFTOptimization, logger),
	)

	driver := pipeline.NewDriver(src, stages, sink.NewLogging(logger), logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := driver.Run(ctx); err != nil {
		logger.Error("transcription driver failed", "error", err)
		os.Exit(1)
	}
}
