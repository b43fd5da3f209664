package buffer

import (
	"testing"

	"github.com/notewise/notewise/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestEmptyChunkAddsNoKeys(t *testing.T) {
	b := New(1000, 1.0, nil)
	f := &pipeline.Frame{}
	require.NoError(t, b.Process(f))
	assert.Nil(t, f.BufferedSignal)
}

func TestTrimsToBufferLenAndAdvancesStart(t *testing.T) {
	b := New(10, 0.5, nil) // bufferLen = 5
	f := &pipeline.Frame{SourceSignal: []float64{1, 2, 3}}
	require.NoError(t, b.Process(f))
	assert.Equal(t, []float64{1, 2, 3}, f.BufferedSignal)
	assert.Equal(t, int64(0), f.BufferedSignalStart)

	f = &pipeline.Frame{SourceSignal: []float64{4, 5, 6}}
	require.NoError(t, b.Process(f))
	assert.Equal(t, []float64{2, 3, 4, 5, 6}, f.BufferedSignal)
	assert.Equal(t, int64(1), f.BufferedSignalStart)
}

// TestRingBufferInvariant checks that after ingesting k total samples,
// len(BufferedSignal) == min(k, bufferLen) and BufferedSignalStart ==
// max(0, k - bufferLen).
func TestRingBufferInvariant(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		bufferLen := rapid.IntRange(1, 50).Draw(t, "bufferLen")
		chunks := rapid.SliceOfN(rapid.IntRange(0, 10), 1, 20).Draw(t, "chunks")

		b := New(1, float64(bufferLen), nil)
		var k int
		for _, n := range chunks {
			signal := make([]float64, n)
			f := &pipeline.Frame{SourceSignal: signal}
			require.NoError(t, b.Process(f))
			if n == 0 {
				continue
			}
			k += n

			wantLen := k
			if wantLen > bufferLen {
				wantLen = bufferLen
			}
			wantStart := 0
			if k > bufferLen {
				wantStart = k - bufferLen
			}
			assert.Equal(t, wantLen, len(f.BufferedSignal))
			assert.Equal(t, int64(wantStart), f.BufferedSignalStart)
		}
	})
}
