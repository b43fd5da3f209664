// Package dsp holds the small FFT/windowing helpers shared by the
// spectrum, band-peak, harmony, and note-tracker stages: a magnitude FFT
// over a zero-padded/truncated buffer, the standard centered bin-to-
// frequency table, and a linear-time local-maximum peak finder.
//
// The FFT itself is github.com/mjibson/go-dsp/fft, used the same way
// other_examples/56ca75ae_dougsko-js8d__pkg-audio-monitor.go.go calls
// fft.FFT on a []complex128 buffer.
package dsp

import (
	"fmt"
	"math"

	"github.com/mjibson/go-dsp/fft"
)

// Magnitude computes the FFT of signal, zero-padded or truncated to size
// complex samples, and returns both the complex spectrum and its
// magnitude. size must be positive.
func Magnitude(signal []float64, size int) (spectrum []complex128, amp []float64, err error) {
	if size <= 0 {
		return nil, nil, fmt.Errorf("dsp: fft size must be positive, got %d", size)
	}
	buf := make([]complex128, size)
	n := len(signal)
	if n > size {
		n = size
	}
	for i := 0; i < n; i++ {
		buf[i] = complex(signal[i], 0)
	}
	spectrum = fft.FFT(buf)
	amp = make([]float64, len(spectrum))
	for i, c := range spectrum {
		amp[i] = cmplxAbs(c)
	}
	return spectrum, amp, nil
}

func cmplxAbs(c complex128) float64 {
	re, im := real(c), imag(c)
	return math.Sqrt(re*re + im*im)
}

// BinToFreq returns the standard centered bin-to-frequency table for an
// FFT of the given size at the given sample rate: idx_to_freq[i] =
// sampleRate * fftfreq(size)[i], matching numpy.fft.fftfreq.
func BinToFreq(sampleRate, size int) []float64 {
	freqs := make([]float64, size)
	for i := 0; i < size; i++ {
		var k int
		if i <= (size-1)/2 {
			k = i
		} else {
			k = i - size
		}
		freqs[i] = float64(k) * float64(sampleRate) / float64(size)
	}
	return freqs
}

// FindPeaks returns the indices of every local maximum in x whose height
// is >= threshold: i is a peak iff x[i] > x[i-1], x[i] > x[i+1], and
// x[i] >= threshold. Plateaus emit their leftmost rising edge.
func FindPeaks(x []float64, threshold float64) []int {
	var peaks []int
	for i := 1; i < len(x)-1; i++ {
		if x[i] < threshold {
			continue
		}
		if x[i] <= x[i-1] {
			continue
		}
		// Walk forward across a plateau to find the next strictly
		// different sample; it's a peak iff that sample is smaller.
		j := i
		for j+1 < len(x) && x[j+1] == x[i] {
			j++
		}
		if j+1 < len(x) && x[j+1] < x[i] {
			peaks = append(peaks, i)
		}
	}
	return peaks
}

// ArgMax returns the index of the largest value in x[lo:hi), relative to
// lo (an index into the sub-slice, not into x).
func ArgMax(x []float64, lo, hi int) int {
	best := lo
	for i := lo + 1; i < hi; i++ {
		if x[i] > x[best] {
			best = i
		}
	}
	return best - lo
}

// Max returns the largest value in x, or 0 for an empty slice.
func Max(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	m := x[0]
	for _, v := range x[1:] {
		if v > m {
			m = v
		}
	}
	return m
}
