// Package server is the HTTP API that hosts the transcription, tuner,
// and harmony pipelines as long-running sessions. Parsing config, opening
// the database, listening, and graceful shutdown on SIGINT/SIGTERM are
// done by cmd/notewised.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/notewise/notewise/internal/bandpeak"
	"github.com/notewise/notewise/internal/buffer"
	"github.com/notewise/notewise/internal/config"
	"github.com/notewise/notewise/internal/envelope"
	"github.com/notewise/notewise/internal/harmony"
	"github.com/notewise/notewise/internal/monophonic"
	"github.com/notewise/notewise/internal/note"
	"github.com/notewise/notewise/internal/notetracker"
	"github.com/notewise/notewise/internal/pipeline"
	"github.com/notewise/notewise/internal/scanner"
	"github.com/notewise/notewise/internal/segmenter"
	"github.com/notewise/notewise/internal/similarity"
	"github.com/notewise/notewise/internal/source"
	"github.com/notewise/notewise/internal/spectrum"
	"github.com/notewise/notewise/internal/storage"
	"github.com/notewise/notewise/internal/tracker"
)

// Server is the HTTP API: it owns the database and the set of
// currently running driver goroutines, one per active session.
type Server struct {
	cfg    *config.Config
	logger *slog.Logger
	db     *storage.DB

	mu       sync.Mutex
	sessions map[string]context.CancelFunc
}

// New builds a Server. cfg and db must already be initialized by the
// caller (see cmd/notewised).
func New(cfg *config.Config, logger *slog.Logger, db *storage.DB) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{cfg: cfg, logger: logger, db: db, sessions: make(map[string]context.CancelFunc)}
}

// Handler builds the routed http.Handler, wrapped in the logging and
// recovery middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /sessions", s.handleCreateSession)
	mux.HandleFunc("GET /sessions/{id}/notes", s.handleGetNotes)
	mux.HandleFunc("GET /sessions/{id}/tuning", s.handleGetTuning)
	mux.HandleFunc("GET /sessions/{id}/similar", s.handleGetSimilar)
	mux.HandleFunc("DELETE /sessions/{id}", s.handleDeleteSession)
	mux.HandleFunc("POST /scans", s.handleCreateScan)
	mux.HandleFunc("GET /healthz", s.handleHealthz)

	return RecoveryMiddleware(s.logger)(LoggingMiddleware(s.logger)(mux))
}

// createSessionRequest is the POST /sessions body.
type createSessionRequest struct {
	Mode           string  `json:"mode"` // transcribe, tuner, harmony
	Source         string  `json:"source"` // soundcard, wav
	Path           string  `json:"path,omitempty"` // required when source == wav
	SampleRate     int     `json:"sample_rate,omitempty"`
	ProcessingRate float64 `json:"processing_rate,omitempty"`
	BufferDuration float64 `json:"buffer_duration,omitempty"`
	Monophonic     bool    `json:"monophonic,omitempty"`
	BPM            float64 `json:"bpm,omitempty"`
}

type createSessionResponse struct {
	ID string `json:"id"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decoding request: %w", err))
		return
	}

	switch req.Mode {
	case "transcribe", "tuner", "harmony":
	default:
		writeError(w, http.StatusBadRequest, fmt.Errorf("unknown mode %q", req.Mode))
		return
	}

	var src pipeline.Source
	switch req.Source {
	case "soundcard":
		sampleRate := req.SampleRate
		if sampleRate == 0 {
			sampleRate = source.DefaultSampleRate
		}
		src = source.NewSoundCard(sampleRate, orDefault(req.ProcessingRate, s.cfg.ProcessingRate))
	case "wav":
		if req.Path == "" {
			writeError(w, http.StatusBadRequest, errors.New("path is required for source=wav"))
			return
		}
		src = source.NewWavFile(req.Path, orDefault(req.ProcessingRate, s.cfg.ProcessingRate))
	default:
		writeError(w, http.StatusBadRequest, fmt.Errorf("unknown source %q", req.Source))
		return
	}

	bpm := orDefault(req.BPM, s.cfg.BPM)
	sessionID := uuid.NewString()

	ctx, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	s.sessions[sessionID] = cancel
	s.mu.Unlock()

	go s.runSession(ctx, sessionID, req.Mode, src, req.Monophonic || s.cfg.Monophonic, bpm, orDefault(req.BufferDuration, s.cfg.BufferDuration))

	writeJSON(w, http.StatusCreated, createSessionResponse{ID: sessionID})
}

// createScanRequest is the POST /scans body: batch-transcribe every WAV
// file under Roots, synchronously, returning once every file has been
// processed.
type createScanRequest struct {
	Roots []string `json:"roots"`
}

type scanResult struct {
	Processed int64              `json:"processed"`
	Total     int64              `json:"total"`
	Files     []scanner.Progress `json:"files"`
}

func (s *Server) handleCreateScan(w http.ResponseWriter, r *http.Request) {
	var req createScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decoding request: %w", err))
		return
	}
	if len(req.Roots) == 0 {
		writeError(w, http.StatusBadRequest, errors.New("roots must not be empty"))
		return
	}

	sc := scanner.NewScanner(s.db, s.logger, s.cfg.ProcessingRate, s.cfg.BufferDuration, s.cfg.BPM)
	progress := make(chan scanner.Progress)

	var result scanResult
	done := make(chan error, 1)
	go func() { done <- sc.Scan(r.Context(), req.Roots, progress) }()
	for p := range progress {
		result.Files = append(result.Files, p)
		result.Processed = p.Processed
		result.Total = p.Total
	}
	if err := <-done; err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// runSession acquires src, builds the stage chain for mode, and drives
// it until the source ends or ctx is canceled, persisting results as
// they're produced. It always cleans up its session-table entry on
// exit.
func (s *Server) runSession(ctx context.Context, sessionID, mode string, src pipeline.Source, mono bool, bpm, bufferDuration float64) {
	defer func() {
		s.mu.Lock()
		delete(s.sessions, sessionID)
		s.mu.Unlock()
	}()

	if err := src.Acquire(); err != nil {
		s.logger.Error("session: failed to acquire source", "session", sessionID, "error", err)
		return
	}

	sampleRate := src.SampleRate()
	if err := s.db.CreateSession(storage.Session{
		ID: sessionID, Mode: mode, SampleRate: sampleRate, BPM: bpm, Monophonic: mono,
	}); err != nil {
		s.logger.Error("session: failed to persist session row", "session", sessionID, "error", err)
		_ = src.Release()
		return
	}

	bufStage := buffer.New(sampleRate, bufferDuration, s.logger)
	var stages []pipeline.Stage
	var sessionSink pipeline.Sink

	switch mode {
	case "tuner":
		finder, err := bandpeak.New(sampleRate, bandpeak.DefaultFFTResolutionHz, bandpeak.DefaultMinAbsolutePeakHeight, bandpeak.DefaultBands)
		if err != nil {
			s.logger.Error("session: failed to build tuner", "session", sessionID, "error", err)
			_ = src.Release()
			return
		}
		stages = []pipeline.Stage{bufStage, finder}
		sessionSink = pipeline.SinkFunc(func(f *pipeline.Frame) error { return s.persistTuning(sessionID, f) })
	case "harmony":
		stages = []pipeline.Stage{bufStage, harmony.New(sampleRate, harmony.DefaultFFTResolutionHz, harmony.DefaultAbsoluteMinPower, harmony.DefaultRelativeMinPower)}
		sessionSink = pipeline.SinkFunc(func(f *pipeline.Frame) error { return s.persistHarmony(sessionID, f) })
	default: // transcribe
		stages = []pipeline.Stage{
			bufStage,
			envelope.New(envelope.DefaultWindows),
			segmenter.New(segmenter.DefaultMinNoisePower, segmenter.DefaultMinSoundDuration),
			spectrum.New(sampleRate, orDefault(s.cfg.FFTResolutionHz, spectrum.DefaultFFTResolutionHz), spectrum.DefaultMinRelativePeakHeight, spectrum.DefaultMinAbsolutePeakHeight, spectrum.DefaultMinFreq, spectrum.DefaultMaxFreq),
		}
		if mono {
			stages = append(stages, monophonic.New())
		}
		stages = append(stages,
			tracker.New(tracker.DefaultMaxDelta),
			notetracker.New(bpm, orDefault(s.cfg.ResolutionBeat, notetracker.DefaultResolutionBeat), notetracker.DefaultOptimizationFFTResolution, notetracker.DefaultSearchWinSizeHz, notetracker.DefaultUseLongFFTOptimization, s.logger),
		)
		sessionSink = pipeline.SinkFunc(func(f *pipeline.Frame) error { return s.persistNotes(sessionID, f) })
	}

	driver := pipeline.NewDriver(src, stages, sessionSink, s.logger)
	if err := driver.Run(ctx); err != nil {
		s.logger.Error("session: driver exited with error", "session", sessionID, "error", err)
	}
	if err := s.db.CloseSession(sessionID); err != nil {
		s.logger.Warn("session: failed to mark session closed", "session", sessionID, "error", err)
	}
}

func (s *Server) persistNotes(sessionID string, f *pipeline.Frame) error {
	for _, n := range f.Notes {
		if err := s.db.InsertNote(sessionID, n); err != nil {
			return err
		}
	}
	return nil
}

func (s *Server) persistTuning(sessionID string, f *pipeline.Frame) error {
	for i, peak := range f.BandsPeak {
		reading := storage.TunerReading{BandIdx: i, Frequency: peak}
		if peak != nil && i < len(bandpeak.DefaultBands) {
			band := bandpeak.DefaultBands[i]
			center := (band.Lo + band.Hi) / 2
			if center > 0 {
				cents := 12 * math.Log2(*peak/center)
				reading.ErrorSemitones = &cents
			}
		}
		if err := s.db.InsertTunerReading(sessionID, reading); err != nil {
			return err
		}
	}
	return nil
}

func (s *Server) persistHarmony(sessionID string, f *pipeline.Frame) error {
	for k, power := range f.SemitonePower {
		relative := 0.0
		if k < len(f.SemitoneRelativePower) {
			relative = f.SemitoneRelativePower[k]
		}
		if err := s.db.InsertHarmonyReading(sessionID, k, power, relative); err != nil {
			return err
		}
	}
	return nil
}

// handleGetSimilar ranks every other closed harmony session by chroma
// similarity to sessionID's own averaged chroma.
func (s *Server) handleGetSimilar(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	query, err := s.db.AverageChroma(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	candidates, err := s.db.AllClosedSessionChromas(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	results, err := similarity.FindSimilar(query, candidates, 10)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if results == nil {
		results = []similarity.Result{}
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleGetNotes(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	notes, err := s.db.ListNotes(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, notesResponse(notes))
}

func notesResponse(notes []note.Note) []note.Note {
	if notes == nil {
		return []note.Note{}
	}
	return notes
}

func (s *Server) handleGetTuning(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	readings, err := s.db.LatestTunerReadings(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if readings == nil {
		readings = []storage.TunerReading{}
	}
	writeJSON(w, http.StatusOK, readings)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	s.mu.Lock()
	cancel, ok := s.sessions[id]
	s.mu.Unlock()
	if ok {
		cancel()
	}

	if err := s.db.CloseSession(id); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(); err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func orDefault(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
