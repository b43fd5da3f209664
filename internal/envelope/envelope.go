// Package envelope implements the RMS/power envelope stage: a
// windowed mean-square estimate of the incoming chunk only (never the
// whole ring buffer), grounded on the windowed "power" computation in
// original_source/src/audiosignal/processor.py, restricted here to
// operate on the current chunk rather than a whole signal.
package envelope

import "github.com/notewise/notewise/internal/pipeline"

// DefaultWindows is the default number of sub-windows the chunk is split
// into, giving the segmenter a short vector rather than a single scalar.
const DefaultWindows = 8

// Envelope is the C4 stage.
type Envelope struct {
	windows int
}

// New creates an Envelope stage that reports mean-square power over
// `windows` equal sub-windows of each incoming chunk.
func New(windows int) *Envelope {
	if windows <= 0 {
		windows = DefaultWindows
	}
	return &Envelope{windows: windows}
}

func (e *Envelope) Name() string { return "envelope" }

// Process computes RMS: zero for silence, monotone in signal amplitude,
// never touching history beyond the current chunk. An empty chunk adds no
// keys.
func (e *Envelope) Process(f *pipeline.Frame) error {
	n := len(f.SourceSignal)
	if n == 0 {
		return nil
	}

	windows := e.windows
	if windows > n {
		windows = n
	}
	rms := make([]float64, windows)
	base := n / windows
	extra := n % windows
	start := 0
	for w := 0; w < windows; w++ {
		size := base
		if w < extra {
			size++
		}
		var sumSq float64
		for _, s := range f.SourceSignal[start : start+size] {
			sumSq += s * s
		}
		rms[w] = sumSq / float64(size)
		start += size
	}

	f.RMS = rms
	return nil
}
