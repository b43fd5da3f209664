// Package scanner batch-transcribes a directory tree of WAV files,
// walking each root with filepath.WalkDir and reporting progress down a
// channel as each file finishes.
package scanner

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/notewise/notewise/internal/buffer"
	"github.com/notewise/notewise/internal/envelope"
	"github.com/notewise/notewise/internal/notetracker"
	"github.com/notewise/notewise/internal/pipeline"
	"github.com/notewise/notewise/internal/segmenter"
	"github.com/notewise/notewise/internal/source"
	"github.com/notewise/notewise/internal/spectrum"
	"github.com/notewise/notewise/internal/storage"
	"github.com/notewise/notewise/internal/tracker"
)

// SupportedFormats lists the audio formats the scanner will transcribe.
// Only WAV is currently decodable (see internal/source.WavFile).
var SupportedFormats = map[string]bool{".wav": true}

// Scanner recursively scans directories for WAV files and runs each
// through a transcription session.
type Scanner struct {
	db     *storage.DB
	logger *slog.Logger

	processingRate float64
	bufferDuration float64
	bpm            float64
}

// Progress reports scanning progress for one file.
type Progress struct {
	Path      string
	Status    string // done or error
	Error     string
	Processed int64
	Total     int64
	SessionID string
}

// NewScanner creates a batch scanner persisting sessions to db.
func NewScanner(db *storage.DB, logger *slog.Logger, processingRate, bufferDuration, bpm float64) *Scanner {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Scanner{db: db, logger: logger, processingRate: processingRate, bufferDuration: bufferDuration, bpm: bpm}
}

// Scan recursively walks roots, transcribing every WAV file found and
// reporting progress down the channel, which it closes on return.
func (s *Scanner) Scan(ctx context.Context, roots []string, progress chan<- Progress) error {
	defer close(progress)

	var total int64
	for _, root := range roots {
		count, err := s.countFiles(root)
		if err != nil {
			s.logger.Warn("failed to count files in root", "root", root, "error", err)
			continue
		}
		total += count
	}

	var processed int64
	for _, root := range roots {
		err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			if d.IsDir() || !SupportedFormats[strings.ToLower(filepath.Ext(path))] {
				return nil
			}

			sessionID, procErr := s.transcribeFile(ctx, path)
			processed++
			status, errMsg := "done", ""
			if procErr != nil {
				status, errMsg = "error", procErr.Error()
				s.logger.Error("scan: failed to transcribe file", "path", path, "error", procErr)
			}

			select {
			case progress <- Progress{
				Path:      path,
				Status:    status,
				Error:     errMsg,
				Processed: processed,
				Total:     total,
				SessionID: sessionID,
			}:
			case <-ctx.Done():
				return ctx.Err()
			}
			return nil
		})
		if err != nil && err != context.Canceled {
			s.logger.Error("scan error", "root", root, "error", err)
		}
	}

	return nil
}

// transcribeFile runs the full transcription pipeline over a single WAV
// file and persists the resulting session and notes.
func (s *Scanner) transcribeFile(ctx context.Context, path string) (string, error) {
	src := source.NewWavFile(path, s.processingRate)
	if err := src.Acquire(); err != nil {
		return "", fmt.Errorf("scanner: acquiring %s: %w", path, err)
	}
	defer src.Release()

	sampleRate := src.SampleRate()
	bufStage := buffer.New(sampleRate, s.bufferDuration, s.logger)
	stages := []pipeline.Stage{
		bufStage,
		envelope.New(envelope.DefaultWindows),
		segmenter.New(segmenter.DefaultMinNoisePower, segmenter.DefaultMinSoundDuration),
		spectrum.New(sampleRate, spectrum.DefaultFFTResolutionHz, spectrum.DefaultMinRelativePeakHeight, spectrum.DefaultMinAbsolutePeakHeight, spectrum.DefaultMinFreq, spectrum.DefaultMaxFreq),
		tracker.New(tracker.DefaultMaxDelta),
		notetracker.New(s.bpm, notetracker.DefaultResolutionBeat, notetracker.DefaultOptimizationFFTResolution, notetracker.DefaultSearchWinSizeHz, notetracker.DefaultUseLongFFTOptimization, s.logger),
	}

	sessionID := uuid.NewString()
	if err := s.db.CreateSession(storage.Session{ID: sessionID, Mode: "transcribe", SampleRate: sampleRate, BPM: s.bpm}); err != nil {
		return "", err
	}

	var notes []error
	recorder := pipeline.SinkFunc(func(f *pipeline.Frame) error {
		for _, n := range f.Notes {
			if err := s.db.InsertNote(sessionID, n); err != nil {
				notes = append(notes, err)
			}
		}
		return nil
	})

	driver := pipeline.NewDriver(src, stages, sinkChain(recorder), s.logger)
	if err := driver.Run(ctx); err != nil {
		return sessionID, err
	}
	if len(notes) > 0 {
		return sessionID, fmt.Errorf("scanner: %d note(s) failed to persist: %w", len(notes), notes[0])
	}
	return sessionID, s.db.CloseSession(sessionID)
}

// sinkChain fans each frame out to sinks in order, stopping at the first
// error. transcribeFile passes it only its persisting sink.
func sinkChain(sinks ...pipeline.Sink) pipeline.Sink {
	return pipeline.SinkFunc(func(f *pipeline.Frame) error {
		for _, s := range sinks {
			if err := s.Accept(f); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Scanner) countFiles(root string) (int64, error) {
	var count int64
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if SupportedFormats[strings.ToLower(filepath.Ext(path))] {
			count++
		}
		return nil
	})
	return count, err
}

// ComputeHash returns a deterministic hash of the first 64KB of path,
// used to detect unchanged files across repeat scans.
func ComputeHash(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	h := sha256.New()
	if _, err := io.CopyN(h, file, 64*1024); err != nil && err != io.EOF {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// HashCache is a simple in-memory cache mapping a file path and
// modification time to its content hash. Scan does not consult it: every
// supported file found is transcribed on every scan.
type HashCache struct {
	cache map[string]cacheEntry
}

type cacheEntry struct {
	hash    string
	modTime time.Time
}

// NewHashCache creates an empty HashCache.
func NewHashCache() *HashCache {
	return &HashCache{cache: make(map[string]cacheEntry)}
}

// Get returns a cached hash if the file hasn't been modified since it
// was last cached.
func (c *HashCache) Get(path string, modTime time.Time) (string, bool) {
	entry, ok := c.cache[path]
	if !ok || !entry.modTime.Equal(modTime) {
		return "", false
	}
	return entry.hash, true
}

// Set caches a hash for a file.
func (c *HashCache) Set(path string, hash string, modTime time.Time) {
	c.cache[path] = cacheEntry{hash: hash, modTime: modTime}
}
