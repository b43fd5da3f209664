// Package source implements the C12 audio source contracts: a WAV file
// reader, a live sound-card reader, and a synthetic tone/melody
// generator, each satisfying pipeline.Source. Grounded on
// original_source/src/audioprocessing/io/wav_file.py,
// original_source/src/audioprocessing/io/sound_card.py, and
// original_source/src/audioprocessing/io/synthesizer.py.
package source

import (
	"fmt"
	"io"
	"os"

	"github.com/notewise/notewise/internal/pipeline"
	"github.com/youpy/go-wav"
)

// DefaultProcessingRate is the default number of chunks read per second
// of audio, matching the original source's module-level constant.
const DefaultProcessingRate = 8.0

// WavFile reads a WAV file chunk by chunk at a fixed processing rate,
// using github.com/youpy/go-wav the same way
// other_examples/35d0f5cf_chriskillpack-modplayer__main.go.go drives its
// wav.Writer counterpart.
type WavFile struct {
	path            string
	processingRate  float64
	file            *os.File
	reader          *wav.Reader
	sampleRate      int
	chunkSize       int
	eos             bool
	acquired        bool
}

// NewWavFile creates a WavFile source for the file at path.
func NewWavFile(path string, processingRate float64) *WavFile {
	if processingRate <= 0 {
		processingRate = DefaultProcessingRate
	}
	return &WavFile{path: path, processingRate: processingRate}
}

// Acquire opens the file and reads its header. It is idempotent: a
// caller that needs SampleRate() before building its stage chain may
// Acquire once itself and pass the already-open source to a Driver,
// whose own Run also calls Acquire.
func (w *WavFile) Acquire() error {
	if w.acquired {
		return nil
	}
	f, err := os.Open(w.path)
	if err != nil {
		return fmt.Errorf("source: opening %q: %w", w.path, err)
	}
	w.file = f
	w.reader = wav.NewReader(f)

	format, err := w.reader.Format()
	if err != nil {
		f.Close()
		return fmt.Errorf("source: reading WAV header of %q: %w", w.path, err)
	}
	w.sampleRate = int(format.SampleRate)
	w.chunkSize = int(float64(w.sampleRate) / w.processingRate)
	if w.chunkSize <= 0 {
		w.chunkSize = 1
	}
	w.acquired = true
	return nil
}

// Release closes the underlying file.
func (w *WavFile) Release() error {
	if w.file == nil {
		return nil
	}
	w.acquired = false
	f := w.file
	w.file = nil
	return f.Close()
}

func (w *WavFile) SampleRate() int { return w.sampleRate }

func (w *WavFile) EndOfStream() bool { return w.eos }

// Read returns up to chunkSize samples from the left channel, normalized
// to [-1, 1].
func (w *WavFile) Read() (pipeline.Chunk, error) {
	samples, err := w.reader.ReadSamples(uint32(w.chunkSize))
	if err == io.EOF {
		w.eos = true
		return pipeline.Chunk{}, nil
	}
	if err != nil {
		return pipeline.Chunk{}, fmt.Errorf("source: reading samples from %q: %w", w.path, err)
	}

	signal := make([]float64, len(samples))
	for i, s := range samples {
		signal[i] = w.reader.FloatValue(s, 0)
	}
	return pipeline.Chunk{Signal: signal}, nil
}
