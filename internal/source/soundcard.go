package source

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
	"github.com/notewise/notewise/internal/pipeline"
)

// DefaultSampleRate is the sound card's default capture rate, in Hz.
const DefaultSampleRate = 44100

// SoundCard reads live mono audio from the default input device, using
// github.com/gordonklaus/portaudio the same way
// other_examples/0a0d1d78_Darelife-singAssist__main.go.go drives its mic
// stream: OpenDefaultStream with a pre-sized buffer, then Read() fills
// it in place each call.
type SoundCard struct {
	sampleRate int
	chunkSize  int
	buf        []float32
	stream     *portaudio.Stream
	open       bool
}

// NewSoundCard creates a SoundCard source at the given sample rate and
// processing rate (chunks read per second).
func NewSoundCard(sampleRate int, processingRate float64) *SoundCard {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	if processingRate <= 0 {
		processingRate = DefaultProcessingRate
	}
	chunkSize := int(float64(sampleRate) / processingRate)
	if chunkSize <= 0 {
		chunkSize = 1
	}
	return &SoundCard{
		sampleRate: sampleRate,
		chunkSize:  chunkSize,
		buf:        make([]float32, chunkSize),
	}
}

// Acquire initializes PortAudio and opens the default input stream. It
// is idempotent so a caller needing SampleRate() before Driver.Run's own
// Acquire can call it once up front without double-opening the device.
func (s *SoundCard) Acquire() error {
	if s.open {
		return nil
	}
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("source: initializing portaudio: %w", err)
	}
	stream, err := portaudio.OpenDefaultStream(1, 0, float64(s.sampleRate), len(s.buf), s.buf)
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("source: opening default input stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return fmt.Errorf("source: starting input stream: %w", err)
	}
	s.stream = stream
	s.open = true
	return nil
}

// Release stops the stream and terminates PortAudio.
func (s *SoundCard) Release() error {
	if !s.open {
		return nil
	}
	s.open = false
	s.stream.Stop()
	err := s.stream.Close()
	portaudio.Terminate()
	return err
}

func (s *SoundCard) SampleRate() int { return s.sampleRate }

// EndOfStream reports true only while the stream is not open (before
// Acquire or after Release): a live capture device has no natural end.
func (s *SoundCard) EndOfStream() bool { return !s.open }

// Read blocks until the buffer is filled and returns a copy as float64.
// An input overflow is reported via Chunk.Overflowed rather than as an
// error, since the buffer it fills is still usable audio.
func (s *SoundCard) Read() (pipeline.Chunk, error) {
	overflowed := false
	if err := s.stream.Read(); err != nil {
		if err != portaudio.InputOverflowed {
			return pipeline.Chunk{}, fmt.Errorf("source: reading from sound card: %w", err)
		}
		overflowed = true
	}
	signal := make([]float64, len(s.buf))
	for i, v := range s.buf {
		signal[i] = float64(v)
	}
	return pipeline.Chunk{Signal: signal, Overflowed: overflowed}, nil
}
