package spectrum

import (
	"math"
	"testing"

	"github.com/notewise/notewise/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sine(sampleRate int, n int, freq float64) []float64 {
	signal := make([]float64, n)
	for i := range signal {
		signal[i] = math.Sin(2 * math.Pi * freq * float64(i) / float64(sampleRate))
	}
	return signal
}

func TestPeaksWithinBand(t *testing.T) {
	sampleRate := 8000
	a := New(sampleRate, DefaultFFTResolutionHz, DefaultMinRelativePeakHeight, DefaultMinAbsolutePeakHeight, DefaultMinFreq, DefaultMaxFreq)

	f := &pipeline.Frame{SourceSignal: sine(sampleRate, sampleRate, 440.0)}
	require.NoError(t, a.Process(f))

	require.NotEmpty(t, f.SpectrumPeaksFreq)
	for _, freq := range f.SpectrumPeaksFreq {
		assert.GreaterOrEqual(t, freq, DefaultMinFreq)
		assert.LessOrEqual(t, freq, DefaultMaxFreq)
	}
}

func TestOutOfBandPeakSuppressed(t *testing.T) {
	sampleRate := 8000
	a := New(sampleRate, DefaultFFTResolutionHz, DefaultMinRelativePeakHeight, DefaultMinAbsolutePeakHeight, DefaultMinFreq, DefaultMaxFreq)

	// 3800 Hz is far above F6; nothing should survive the band filter even
	// though it's a strong peak.
	f := &pipeline.Frame{SourceSignal: sine(sampleRate, sampleRate, 3800.0)}
	require.NoError(t, a.Process(f))
	assert.Empty(t, f.SpectrumPeaksFreq)
}

func TestEmptySignalNoOp(t *testing.T) {
	a := New(8000, DefaultFFTResolutionHz, DefaultMinRelativePeakHeight, DefaultMinAbsolutePeakHeight, DefaultMinFreq, DefaultMaxFreq)
	f := &pipeline.Frame{}
	require.NoError(t, a.Process(f))
	assert.Nil(t, f.Spectrum)
}
