package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	sampleRate int
	chunks     [][]float64
	cursor     int
}

func (s *fakeSource) Acquire() error     { return nil }
func (s *fakeSource) Release() error     { return nil }
func (s *fakeSource) SampleRate() int    { return s.sampleRate }
func (s *fakeSource) EndOfStream() bool  { return s.cursor >= len(s.chunks) }
func (s *fakeSource) Read() (Chunk, error) {
	c := s.chunks[s.cursor]
	s.cursor++
	return Chunk{Signal: c}, nil
}

type countingStage struct{ calls int }

func (c *countingStage) Name() string { return "counting" }
func (c *countingStage) Process(f *Frame) error {
	c.calls++
	return nil
}

func TestDriverAdvancesIterationAndSampleClocks(t *testing.T) {
	source := &fakeSource{sampleRate: 1000, chunks: [][]float64{{1, 2, 3}, {4, 5}}}
	stage := &countingStage{}

	var acceptedSamples []int64
	sink := SinkFunc(func(f *Frame) error {
		acceptedSamples = append(acceptedSamples, f.CurrentSample)
		return nil
	})

	d := NewDriver(source, []Stage{stage}, sink, nil)
	require.NoError(t, d.Run(context.Background()))

	assert.Equal(t, 2, stage.calls)
	assert.Equal(t, []int64{0, 3}, acceptedSamples)
	assert.Equal(t, int64(5), d.currentSample)
}

func TestDriverStopsOnCanceledContext(t *testing.T) {
	source := &fakeSource{sampleRate: 1000, chunks: [][]float64{{1}, {2}, {3}}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := NewDriver(source, nil, nil, nil)
	require.NoError(t, d.Run(ctx))
	assert.Equal(t, 0, d.iteration)
}
