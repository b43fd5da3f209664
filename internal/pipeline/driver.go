package pipeline

import (
	"context"
	"log/slog"
)

// Driver is the application driver. It owns the audio source, the
// ordered chain of stages, the output sink, and the iteration/sample
// clocks. All stages run on the driver's goroutine in deterministic
// order per iteration; outputs for iteration i are fully visible before
// iteration i+1 starts.
type Driver struct {
	Source Source
	Stages []Stage
	Sink   Sink
	Logger *slog.Logger

	iteration     int
	currentSample int64
}

// NewDriver builds a Driver. logger may be nil, in which case a disabled
// logger is used.
func NewDriver(source Source, stages []Stage, sink Sink, logger *slog.Logger) *Driver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Driver{Source: source, Stages: stages, Sink: sink, Logger: logger}
}

// Run acquires the source, runs the loop until end-of-stream or ctx is
// canceled, and releases the source on every exit path. Cancellation is
// cooperative: the driver checks ctx between iterations, never mid-stage,
// so no in-flight chunk is discarded mid-processing.
func (d *Driver) Run(ctx context.Context) error {
	if err := d.Source.Acquire(); err != nil {
		return NewSourceError(err)
	}
	defer func() {
		if err := d.Source.Release(); err != nil {
			d.Logger.Warn("error releasing audio source", "error", err)
		}
	}()

	sampleRate := d.Source.SampleRate()
	d.Logger.Info("starting transcription driver", "sample_rate", sampleRate, "stages", len(d.Stages))

	for !d.Source.EndOfStream() {
		select {
		case <-ctx.Done():
			d.Logger.Info("driver stopping, context canceled", "iteration", d.iteration)
			return nil
		default:
		}

		if err := d.runOnce(sampleRate); err != nil {
			return err
		}
	}

	d.Logger.Info("transcription driver completed", "iterations", d.iteration, "samples", d.currentSample)
	return nil
}

func (d *Driver) runOnce(sampleRate int) error {
	chunk, err := d.Source.Read()
	if err != nil {
		return NewSourceError(err)
	}
	if chunk.Overflowed {
		d.Logger.Warn("audio source overflow/underrun, continuing with samples returned", "iteration", d.iteration)
	}

	frame := &Frame{
		Iteration:     d.iteration,
		CurrentSample: d.currentSample,
		T:             float64(d.currentSample) / float64(sampleRate),
		SampleRate:    sampleRate,
		SourceSignal:  chunk.Signal,
	}

	for _, stage := range d.Stages {
		if err := stage.Process(frame); err != nil {
			return err
		}
	}

	if d.Sink != nil {
		if err := d.Sink.Accept(frame); err != nil {
			return err
		}
	}

	d.iteration++
	d.currentSample += int64(len(chunk.Signal))
	return nil
}
