// Package segment splits irregular efficiency sweeps into contiguous blocks.
//
// The contiguity threshold is derived from each sweep's own frequency
// spacing: a gap larger than the mean gap plus one population standard
// deviation starts a new block.
package segment

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// ErrInsufficientData is returned when fewer than two frequencies are given
var ErrInsufficientData = errors.New("insufficient data")

// Spacing describes the successive frequency deltas of a sweep
type Spacing struct {
	MeanGap  float64
	StdevGap float64
}

// Threshold is the largest gap still considered contiguous
func (s Spacing) Threshold() float64 {
	return s.MeanGap + s.StdevGap
}

// Analyze computes the mean and population standard deviation of the
// differences between consecutive frequencies.
func Analyze(freqs []float64) (Spacing, error) {
	if len(freqs) < 2 {
		return Spacing{}, fmt.Errorf("%w: need at least 2 frequencies, got %d", ErrInsufficientData, len(freqs))
	}

	gaps := make([]float64, len(freqs)-1)
	for i := range gaps {
		gaps[i] = freqs[i+1] - freqs[i]
	}

	mean, std := stat.PopMeanStdDev(gaps, nil)
	return Spacing{MeanGap: mean, StdevGap: std}, nil
}
