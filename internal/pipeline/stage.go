package pipeline

// Stage is one element of the processor chain. Process is a pure state
// transition on the stage's own private state plus the shared Frame: it
// must not block, and it must not mutate fields it does not own. A stage
// that has no work for this iteration (e.g. an empty chunk) simply
// leaves its fields at their zero value rather than returning an error;
// empty input is not a failure.
type Stage interface {
	// Name identifies the stage for logging.
	Name() string
	// Process advances the stage's state using f and writes its output
	// fields back into f. It returns an error only for a genuine failure
	// (e.g. a downstream invariant the stage cannot satisfy), never for
	// benign empty input.
	Process(f *Frame) error
}

// Source is the external audio source contract: a chunked stream of
// mono samples from a sound card, a WAV file, or a synthesizer. Acquire is
// called once before the first Read and must set the sample rate; Release
// is guaranteed to run on every exit path.
type Source interface {
	Acquire() error
	Release() error
	SampleRate() int
	EndOfStream() bool
	// Read returns the next chunk of samples. At end-of-stream it returns
	// a Chunk with an empty Signal.
	Read() (Chunk, error)
}

// Chunk is one block of audio returned by a Source.
type Chunk struct {
	Signal []float64
	// Overflowed reports a buffer overrun/underrun on the underlying
	// device; the driver logs a warning and continues processing the
	// samples actually returned.
	Overflowed bool
}

// Sink is the output sink contract: a callable invoked with the full
// Frame after every iteration.
type Sink interface {
	Accept(f *Frame) error
}

// SinkFunc adapts a plain function to the Sink interface.
type SinkFunc func(f *Frame) error

func (s SinkFunc) Accept(f *Frame) error { return s(f) }
