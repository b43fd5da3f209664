package monophonic

import (
	"testing"

	"github.com/notewise/notewise/internal/pipeline"
	"github.com/notewise/notewise/internal/pitch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeepsLoudestPeakOnly(t *testing.T) {
	p1, err := pitch.New(110.0)
	require.NoError(t, err)
	p2, err := pitch.New(220.0)
	require.NoError(t, err)

	f := &pipeline.Frame{
		Pitches:           []pitch.Pitch{p1, p2},
		SpectrumPeaksIdx:  []int{2, 5},
		SpectrumPeaksFreq: []float64{110.0, 220.0},
		SpectrumAmp:       []float64{0, 0, 1.0, 0, 0, 9.0},
	}

	require.NoError(t, New().Process(f))
	assert.Len(t, f.Pitches, 1)
	assert.Equal(t, p2, f.Pitches[0])
	assert.Equal(t, []int{5}, f.SpectrumPeaksIdx)
}

func TestSinglePeakIsNoOp(t *testing.T) {
	p1, err := pitch.New(110.0)
	require.NoError(t, err)
	f := &pipeline.Frame{Pitches: []pitch.Pitch{p1}, SpectrumPeaksIdx: []int{1}, SpectrumAmp: []float64{0, 1}}
	require.NoError(t, New().Process(f))
	assert.Len(t, f.Pitches, 1)
}

func TestEmptyPitchesIsNoOp(t *testing.T) {
	f := &pipeline.Frame{}
	require.NoError(t, New().Process(f))
	assert.Empty(t, f.Pitches)
}
