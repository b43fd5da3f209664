package sink

import (
	"bytes"
	"testing"

	"github.com/notewise/notewise/internal/note"
	"github.com/notewise/notewise/internal/pipeline"
	"github.com/notewise/notewise/internal/pitch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingAcceptDoesNotError(t *testing.T) {
	l := NewLogging(nil)
	p, err := pitch.Parse("A4")
	require.NoError(t, err)
	bpm := 60.0
	n, err := note.New(p, 0.0, 1.0, &bpm)
	require.NoError(t, err)

	f := &pipeline.Frame{Notes: []note.Note{n}}
	assert.NoError(t, l.Accept(f))
}

func TestRecordingAcceptWritesSamples(t *testing.T) {
	var buf bytes.Buffer
	r := NewRecording(&buf, 8000, 100)

	f := &pipeline.Frame{SourceSignal: []float64{0.0, 0.5, -0.5, 1.5, -1.5}}
	require.NoError(t, r.Accept(f))
	assert.NotEmpty(t, buf.Bytes())
}

func TestRecordingAcceptEmptyChunkNoOp(t *testing.T) {
	var buf bytes.Buffer
	r := NewRecording(&buf, 8000, 100)
	require.NoError(t, r.Accept(&pipeline.Frame{}))
}
