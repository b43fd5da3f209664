package pitch

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestParseEdgeCases(t *testing.T) {
	cases := []struct {
		literal  string
		wantFreq float64
	}{
		{"A", 440.0},
		{"C#4", 440.0 * math.Pow(2.0, (1.0-9.0)/12.0)},
		{"Bb3", 440.0 * math.Pow(2.0, (10.0-12.0-9.0)/12.0)},
		{"E2", 82.4068892282175},
	}
	for _, c := range cases {
		p, err := Parse(c.literal)
		require.NoError(t, err, c.literal)
		assert.InDelta(t, c.wantFreq, p.Frequency, 1e-6, c.literal)
	}
}

func TestParseAllNoDelimiter(t *testing.T) {
	pitches := ParseAll("C4D4E4")
	require.Len(t, pitches, 3)
	assert.Equal(t, "C", pitches[0].Note)
	assert.Equal(t, "D", pitches[1].Note)
	assert.Equal(t, "E", pitches[2].Note)
}

func TestFlatCrossesOctaveBoundary(t *testing.T) {
	// Cb normalizes to the pitch one semitone below C, i.e. B of the
	// octave below, using floored division so a negative semitone index
	// wraps into the previous octave instead of producing a negative one.
	cb, err := Parse("Cb4")
	require.NoError(t, err)
	assert.Equal(t, "B", cb.Note)
	assert.Equal(t, 3, cb.Octave)
}

func TestNewRejectsOutOfRangeFrequency(t *testing.T) {
	_, err := New(0)
	assert.Error(t, err)
	_, err = New(-1)
	assert.Error(t, err)
	_, err = New(20000.1)
	assert.Error(t, err)
}

func TestString(t *testing.T) {
	p, err := New(440.0)
	require.NoError(t, err)
	assert.Equal(t, "A4", p.String())
}

// TestPitchRoundTrip checks that for all valid frequencies f,
// New(f).Frequency == f.
func TestPitchRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		f := rapid.Float64Range(MinFrequency+1e-6, MaxFrequency).Draw(t, "f")
		p, err := New(f)
		require.NoError(t, err)
		assert.InDelta(t, f, p.Frequency, 1e-9)
		assert.True(t, p.Semitone >= 0 && p.Semitone <= 11)
	})
}

// TestFromOctaveSemitoneRoundTrip checks that for all (o, s) with s in
// [0,11], FromOctaveSemitone(o, s) has Octave == o and Semitone == s.
func TestFromOctaveSemitoneRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		o := rapid.IntRange(0, 8).Draw(t, "octave")
		s := rapid.IntRange(0, 11).Draw(t, "semitone")
		p, err := FromOctaveSemitone(o, float64(s))
		require.NoError(t, err)
		assert.Equal(t, o, p.Octave)
		assert.Equal(t, s, p.Semitone)
	})
}

// TestParseFormatRoundTrip checks that Parse(p.String()) == p for any
// pitch whose |Error| < 1e-3 (nominal pitches).
func TestParseFormatRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		o := rapid.IntRange(0, 8).Draw(t, "octave")
		s := rapid.IntRange(0, 11).Draw(t, "semitone")
		p, err := FromOctaveSemitone(o, float64(s))
		require.NoError(t, err)
		require.Less(t, math.Abs(p.Error), 1e-3)

		parsed, err := Parse(p.String())
		require.NoError(t, err)
		assert.Equal(t, p.Octave, parsed.Octave)
		assert.Equal(t, p.Semitone, parsed.Semitone)
	})
}
