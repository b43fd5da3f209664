// Package buffer implements the ring buffer stage: it accumulates the
// last N seconds of samples with a running absolute start-sample index,
// grounded on original_source/src/audioprocessing/processor/buffer.py.
package buffer

import (
	"log/slog"

	"github.com/notewise/notewise/internal/pipeline"
)

// DefaultDuration is the default amount of audio history kept, in seconds.
const DefaultDuration = 20.0

// Buffer is the C3 ring-buffer stage. Its backing slice is not
// preallocated: it starts empty, grows by append, and is resliced from
// the front once it holds more than bufferLen samples, so an append may
// reallocate it.
type Buffer struct {
	sampleRate int
	bufferLen  int
	logger     *slog.Logger

	signal []float64
	start  int64
}

// New creates a Buffer holding up to duration seconds of history at
// sampleRate.
func New(sampleRate int, duration float64, logger *slog.Logger) *Buffer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Buffer{
		sampleRate: sampleRate,
		bufferLen:  int(duration * float64(sampleRate)),
		logger:     logger,
	}
}

func (b *Buffer) Name() string { return "buffer" }

// Process appends the incoming chunk and trims the oldest samples once the
// buffer exceeds bufferLen, advancing BufferedSignalStart by the overflow.
// An empty chunk leaves the buffer unchanged.
func (b *Buffer) Process(f *pipeline.Frame) error {
	if len(f.SourceSignal) == 0 {
		b.logger.Warn("buffer: empty source signal")
		return nil
	}

	b.signal = append(b.signal, f.SourceSignal...)

	if overflow := len(b.signal) - b.bufferLen; overflow > 0 {
		b.signal = b.signal[overflow:]
		b.start += int64(overflow)
	}

	f.BufferedSignal = b.signal
	f.BufferedSignalStart = b.start
	return nil
}
