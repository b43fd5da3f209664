package bandpeak

import (
	"math"
	"testing"

	"github.com/notewise/notewise/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sine(sampleRate, n int, freq float64) []float64 {
	signal := make([]float64, n)
	for i := range signal {
		signal[i] = math.Sin(2 * math.Pi * freq * float64(i) / float64(sampleRate))
	}
	return signal
}

func TestDefaultBandsOrderedAndNonDegenerate(t *testing.T) {
	require.Len(t, DefaultBands, 6)
	for _, b := range DefaultBands {
		assert.Less(t, b.Lo, b.Hi)
	}
}

func TestFindsPeakInMatchingBand(t *testing.T) {
	sampleRate := 8000
	fi, err := New(sampleRate, DefaultFFTResolutionHz, DefaultMinAbsolutePeakHeight, DefaultBands)
	require.NoError(t, err)

	// E2 ~= 82.4Hz, well within the first band.
	f := &pipeline.Frame{SourceSignal: sine(sampleRate, sampleRate, 82.4), SampleRate: sampleRate}
	require.NoError(t, fi.Process(f))

	require.Len(t, f.BandsPeak, 6)
	require.NotNil(t, f.BandsPeak[0])
	assert.InDelta(t, 82.4, *f.BandsPeak[0], 1.0)
}

func TestWeakSignalYieldsNilPeaks(t *testing.T) {
	sampleRate := 8000
	fi, err := New(sampleRate, DefaultFFTResolutionHz, DefaultMinAbsolutePeakHeight, DefaultBands)
	require.NoError(t, err)

	f := &pipeline.Frame{SourceSignal: make([]float64, sampleRate), SampleRate: sampleRate}
	require.NoError(t, fi.Process(f))

	for _, p := range f.BandsPeak {
		assert.Nil(t, p)
	}
}

func TestRejectsDegenerateBand(t *testing.T) {
	_, err := New(8000, DefaultFFTResolutionHz, DefaultMinAbsolutePeakHeight, []Band{{Lo: 100, Hi: 100}})
	assert.Error(t, err)
}
