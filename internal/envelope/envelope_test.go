package envelope

import (
	"testing"

	"github.com/notewise/notewise/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestEmptyChunkAddsNoKeys(t *testing.T) {
	e := New(4)
	f := &pipeline.Frame{}
	require.NoError(t, e.Process(f))
	assert.Nil(t, f.RMS)
}

func TestZeroForSilence(t *testing.T) {
	e := New(4)
	f := &pipeline.Frame{SourceSignal: make([]float64, 64)}
	require.NoError(t, e.Process(f))
	for _, v := range f.RMS {
		assert.Zero(t, v)
	}
}

func TestMonotoneInAmplitude(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(8, 64).Draw(t, "n")
		scale := rapid.Float64Range(0.01, 10).Draw(t, "scale")
		base := make([]float64, n)
		for i := range base {
			base[i] = rapid.Float64Range(-1, 1).Draw(t, "s")
		}
		scaled := make([]float64, n)
		for i, v := range base {
			scaled[i] = v * scale
		}

		e := New(4)
		f1 := &pipeline.Frame{SourceSignal: base}
		f2 := &pipeline.Frame{SourceSignal: scaled}
		require.NoError(t, e.Process(f1))
		require.NoError(t, e.Process(f2))

		for i := range f1.RMS {
			if scale >= 1 {
				assert.GreaterOrEqual(t, f2.RMS[i], f1.RMS[i])
			} else {
				assert.LessOrEqual(t, f2.RMS[i], f1.RMS[i])
			}
		}
	})
}

func TestWindowCountCapsAtChunkLength(t *testing.T) {
	e := New(100)
	f := &pipeline.Frame{SourceSignal: []float64{1, 2, 3}}
	require.NoError(t, e.Process(f))
	assert.Len(t, f.RMS, 3)
}
