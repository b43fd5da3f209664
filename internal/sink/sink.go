// Package sink implements pipeline.Sink consumers: a structured-log
// sink for live transcription, and a WAV-recording sink, grounded on
// original_source/src/audioprocessing/io/wav_file.py's WavFileWriter.
package sink

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/notewise/notewise/internal/pipeline"
	"github.com/youpy/go-wav"
)

// Logging is a Sink that logs every note and every started/finished
// pitch track via slog, suitable for a live CLI transcriber.
type Logging struct {
	logger *slog.Logger
}

// NewLogging creates a Logging sink.
func NewLogging(logger *slog.Logger) *Logging {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Logging{logger: logger}
}

// Accept logs each note transcribed this iteration and each pitch track
// started or finished in it.
func (l *Logging) Accept(f *pipeline.Frame) error {
	for _, n := range f.Notes {
		l.logger.Info("note", "note", n.String())
	}
	for _, pt := range f.StartedPitches {
		l.logger.Debug("pitch started", "pitch", pt.Pitch.String())
	}
	for _, pt := range f.FinishedPitches {
		l.logger.Debug("pitch finished", "pitch", pt.Pitch.String())
	}
	return nil
}

// Recording is a Sink that writes every source chunk it sees to a WAV
// file, using github.com/youpy/go-wav the same way
// other_examples/35d0f5cf_chriskillpack-modplayer__main.go.go drives
// wav.Writer.WriteSamples.
type Recording struct {
	w          *wav.Writer
	sampleRate uint32
}

// NewRecording creates a Recording sink writing 16-bit mono samples to
// w. numSamples is an upper bound on the number of samples that will be
// written, as required by wav.NewWriter's header.
func NewRecording(w io.Writer, sampleRate int, numSamples uint32) *Recording {
	return &Recording{
		w:          wav.NewWriter(w, numSamples, 1, uint32(sampleRate), 16),
		sampleRate: uint32(sampleRate),
	}
}

// Accept writes f.SourceSignal as 16-bit PCM samples.
func (r *Recording) Accept(f *pipeline.Frame) error {
	if len(f.SourceSignal) == 0 {
		return nil
	}
	samples := make([]wav.Sample, len(f.SourceSignal))
	for i, v := range f.SourceSignal {
		if v > 1.0 {
			v = 1.0
		} else if v < -1.0 {
			v = -1.0
		}
		samples[i].Values[0] = int(v * 32767.0)
	}
	if err := r.w.WriteSamples(samples); err != nil {
		return fmt.Errorf("sink: writing samples: %w", err)
	}
	return nil
}
