// Package config parses the transcription service's command-line flags.
package config

import (
	"flag"
	"os"
)

// Config holds every tunable parameter of the transcription pipeline
// and its hosting HTTP server.
type Config struct {
	// Server settings.
	Port     int
	DataDir  string
	LogLevel string

	// Source settings.
	ProcessingRate float64
	BufferDuration float64
	Monophonic     bool

	// Note tracker settings.
	BPM            float64
	ResolutionBeat float64

	// Spectrum analyzer settings.
	FFTResolutionHz float64
}

// Parse parses os.Args into a Config.
func Parse() *Config {
	cfg := &Config{}

	flag.IntVar(&cfg.Port, "port", 8080, "HTTP server port")
	flag.StringVar(&cfg.DataDir, "data-dir", defaultDataDir(), "data directory for SQLite and recordings")
	flag.StringVar(&cfg.LogLevel, "log-level", "info", "log level (debug, info, warn, error)")

	flag.Float64Var(&cfg.ProcessingRate, "processing-rate", 8.0, "chunks of audio read per second")
	flag.Float64Var(&cfg.BufferDuration, "buffer-duration", 20.0, "seconds of audio history kept in the ring buffer")
	flag.BoolVar(&cfg.Monophonic, "monophonic", false, "keep only the single strongest detected pitch per chunk")

	flag.Float64Var(&cfg.BPM, "bpm", 60.0, "tempo used to quantize notes onto the beat grid")
	flag.Float64Var(&cfg.ResolutionBeat, "resolution-beat", 1.0/4.0, "shortest note value kept, in beats")

	flag.Float64Var(&cfg.FFTResolutionHz, "fft-resolution-hz", 0.25, "spectrum analyzer FFT bin width in Hz")

	flag.Parse()
	return cfg
}

func defaultDataDir() string {
	if dir := os.Getenv("NOTEWISE_DATA_DIR"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".notewise"
	}
	return home + "/.notewise"
}
