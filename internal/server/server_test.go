package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notewise/notewise/internal/config"
	"github.com/notewise/notewise/internal/storage"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	db, err := storage.Open(t.TempDir(), slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := &config.Config{ProcessingRate: 8, BufferDuration: 5, BPM: 120}
	return New(cfg, slog.New(slog.DiscardHandler), db)
}

func TestHandleHealthz(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "ok", resp["status"])
}

func TestHandleCreateSessionRejectsUnknownMode(t *testing.T) {
	s := newTestServer(t)
	body := strings.NewReader(`{"mode":"bogus","source":"soundcard"}`)
	req := httptest.NewRequest(http.MethodPost, "/sessions", body)
	rec := httptest.NewRecorder()

	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleCreateSessionRejectsUnknownSource(t *testing.T) {
	s := newTestServer(t)
	body := strings.NewReader(`{"mode":"transcribe","source":"bogus"}`)
	req := httptest.NewRequest(http.MethodPost, "/sessions", body)
	rec := httptest.NewRecorder()

	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleCreateSessionRequiresPathForWav(t *testing.T) {
	s := newTestServer(t)
	body := strings.NewReader(`{"mode":"transcribe","source":"wav"}`)
	req := httptest.NewRequest(http.MethodPost, "/sessions", body)
	rec := httptest.NewRecorder()

	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleGetNotesEmptySessionReturnsEmptyArray(t *testing.T) {
	s := newTestServer(t)
	id := uuid.NewString()
	require.NoError(t, s.db.CreateSession(storage.Session{ID: id, Mode: "transcribe", SampleRate: 44100, BPM: 120}))

	req := httptest.NewRequest(http.MethodGet, "/sessions/"+id+"/notes", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestHandleGetTuningEmptySessionReturnsEmptyArray(t *testing.T) {
	s := newTestServer(t)
	id := uuid.NewString()
	require.NoError(t, s.db.CreateSession(storage.Session{ID: id, Mode: "tuner", SampleRate: 44100, BPM: 120}))

	req := httptest.NewRequest(http.MethodGet, "/sessions/"+id+"/tuning", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestHandleDeleteSessionClosesSessionRow(t *testing.T) {
	s := newTestServer(t)
	id := uuid.NewString()
	require.NoError(t, s.db.CreateSession(storage.Session{ID: id, Mode: "transcribe", SampleRate: 44100, BPM: 120}))

	req := httptest.NewRequest(http.MethodDelete, "/sessions/"+id, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)

	closed, err := s.db.GetSession(id)
	require.NoError(t, err)
	assert.NotNil(t, closed.ClosedAt)
}

func TestHandleGetSimilarRanksClosedHarmonySessions(t *testing.T) {
	s := newTestServer(t)

	query := uuid.NewString()
	require.NoError(t, s.db.CreateSession(storage.Session{ID: query, Mode: "harmony", SampleRate: 44100, BPM: 120}))
	require.NoError(t, s.db.InsertHarmonyReading(query, 0, 1.0, 1.0))
	require.NoError(t, s.db.CloseSession(query))

	exact := uuid.NewString()
	require.NoError(t, s.db.CreateSession(storage.Session{ID: exact, Mode: "harmony", SampleRate: 44100, BPM: 120}))
	require.NoError(t, s.db.InsertHarmonyReading(exact, 0, 1.0, 1.0))
	require.NoError(t, s.db.CloseSession(exact))

	distant := uuid.NewString()
	require.NoError(t, s.db.CreateSession(storage.Session{ID: distant, Mode: "harmony", SampleRate: 44100, BPM: 120}))
	require.NoError(t, s.db.InsertHarmonyReading(distant, 6, 1.0, 1.0))
	require.NoError(t, s.db.CloseSession(distant))

	req := httptest.NewRequest(http.MethodGet, "/sessions/"+query+"/similar", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var results []map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&results))
	require.Len(t, results, 2)
	assert.Equal(t, exact, results[0]["session_id"])
	assert.Equal(t, "same", results[0]["relation"])
}

func TestHandleCreateScanRejectsEmptyRoots(t *testing.T) {
	s := newTestServer(t)
	body := strings.NewReader(`{"roots":[]}`)
	req := httptest.NewRequest(http.MethodPost, "/scans", body)
	rec := httptest.NewRecorder()

	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleCreateScanOverEmptyRootSucceeds(t *testing.T) {
	s := newTestServer(t)
	dir := t.TempDir()
	body := strings.NewReader(`{"roots":["` + dir + `"]}`)
	req := httptest.NewRequest(http.MethodPost, "/scans", body)
	rec := httptest.NewRecorder()

	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var result scanResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&result))
	assert.EqualValues(t, 0, result.Total)
}
