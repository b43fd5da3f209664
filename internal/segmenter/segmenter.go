// Package segmenter implements the sound segmenter stage: a
// two-state (quiet/sounding) detector that watches mean RMS power and
// emits a finished sound region once it drops back below the noise floor
// for long enough, grounded on
// original_source/src/audioprocessing/processor/sound_splitter.py.
package segmenter

import "github.com/notewise/notewise/internal/pipeline"

// Defaults match the original source's module-level constants.
const (
	DefaultMinNoisePower   = 0.01
	DefaultMinSoundDuration = 0.5
)

// Segmenter is the C5 stage.
type Segmenter struct {
	minNoisePower    float64
	minSoundDuration float64

	soundStart *int64
}

// New creates a Segmenter. minNoisePower is the mean-RMS threshold above
// which the signal is considered "sounding"; minSoundDuration is the
// shortest sounding span, in seconds, that is emitted as a finished
// region.
func New(minNoisePower, minSoundDuration float64) *Segmenter {
	return &Segmenter{minNoisePower: minNoisePower, minSoundDuration: minSoundDuration}
}

func (s *Segmenter) Name() string { return "segmenter" }

// Process watches f.RMS for a rising/falling edge across minNoisePower.
// On the falling edge, if the elapsed sounding duration is at least
// minSoundDuration, it emits the region as both a (start, end) sample
// pair and the raw buffered signal slice from the region's start to the
// end of the current buffer.
func (s *Segmenter) Process(f *pipeline.Frame) error {
	if len(f.RMS) == 0 {
		return nil
	}

	power := mean(f.RMS)
	if power > s.minNoisePower {
		if s.soundStart == nil {
			start := f.CurrentSample
			s.soundStart = &start
		}
		return nil
	}

	if s.soundStart == nil {
		return nil
	}

	nSamples := f.CurrentSample - *s.soundStart
	duration := float64(nSamples) / float64(f.SampleRate)
	if duration >= s.minSoundDuration {
		f.SoundsSplitPoints = append(f.SoundsSplitPoints, pipeline.SoundRegion{
			StartSample: *s.soundStart,
			EndSample:   f.CurrentSample,
		})
		offset := *s.soundStart - f.BufferedSignalStart
		if offset < 0 {
			offset = 0
		}
		if int(offset) <= len(f.BufferedSignal) {
			f.SplitSound = f.BufferedSignal[offset:]
		}
	}
	s.soundStart = nil
	return nil
}

func mean(x []float64) float64 {
	var sum float64
	for _, v := range x {
		sum += v
	}
	return sum / float64(len(x))
}
