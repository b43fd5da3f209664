package pipeline

import "fmt"

// ConfigError marks a configuration problem detected at construction time
// (bad frequency range, unparseable note literal, non-positive FFT size,
// malformed band list). Construction should fail fast rather than let the
// stage run with a nonsensical configuration.
type ConfigError struct {
	Stage string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error in %s: %v", e.Stage, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// NewConfigError wraps err as a ConfigError attributed to stage.
func NewConfigError(stage string, err error) error {
	return &ConfigError{Stage: stage, Err: err}
}

// SourceError marks an I/O failure acquiring or reading from an audio
// source (sound card open failure, WAV decode failure, out-of-range WAV
// samples). It is fatal for the run - the driver stops the loop.
type SourceError struct {
	Err error
}

func (e *SourceError) Error() string { return fmt.Sprintf("audio source error: %v", e.Err) }

func (e *SourceError) Unwrap() error { return e.Err }

// NewSourceError wraps err as a SourceError.
func NewSourceError(err error) error {
	return &SourceError{Err: err}
}
