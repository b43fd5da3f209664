package source

import "github.com/notewise/notewise/internal/pipeline"

// Generated replays a pre-synthesized signal chunk by chunk at a fixed
// processing rate, the Go equivalent of the original source's
// GeneratedSoundReader.
type Generated struct {
	sampleRate int
	chunkSize  int
	signal     []float64
	cursor     int
}

// NewGenerated creates a Generated source over signal, sampled at
// sampleRate and read out at processingRate chunks per second.
func NewGenerated(sampleRate int, processingRate float64, signal []float64) *Generated {
	if processingRate <= 0 {
		processingRate = DefaultProcessingRate
	}
	chunkSize := int(float64(sampleRate) / processingRate)
	if chunkSize <= 0 {
		chunkSize = 1
	}
	return &Generated{sampleRate: sampleRate, chunkSize: chunkSize, signal: signal}
}

func (g *Generated) Acquire() error { return nil }
func (g *Generated) Release() error { return nil }

func (g *Generated) SampleRate() int { return g.sampleRate }

func (g *Generated) EndOfStream() bool { return g.cursor >= len(g.signal) }

func (g *Generated) Read() (pipeline.Chunk, error) {
	if g.EndOfStream() {
		return pipeline.Chunk{}, nil
	}
	end := g.cursor + g.chunkSize
	if end > len(g.signal) {
		end = len(g.signal)
	}
	chunk := g.signal[g.cursor:end]
	g.cursor = end
	return pipeline.Chunk{Signal: chunk}, nil
}
