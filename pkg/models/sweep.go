package models

import (
	"time"
)

// MeasurementKind identifies the payload carried by a sweep file
type MeasurementKind string

const (
	KindLoss       MeasurementKind = "loss"
	KindEfficiency MeasurementKind = "eff"
)

// NumberKind records whether a loss sweep was supplied as magnitudes or
// real/imaginary reflection coefficient pairs
type NumberKind string

const (
	NumberNone    NumberKind = "none"
	NumberReal    NumberKind = "real"
	NumberComplex NumberKind = "complex"
)

// LossRecord is one return-loss sample with its derived metrics
type LossRecord struct {
	FrequencyMHz   float64
	ReturnLossDB   float64
	VSWR           float64
	MismatchLossDB float64

	// Reflection is the measured reflection coefficient. It and
	// NormalizedImpedance are only set for complex input.
	Reflection          *complex128
	NormalizedImpedance *complex128
}

// FileResult is the parsed content of one input file
type FileResult struct {
	ID         string
	Source     string
	Format     string
	Kind       MeasurementKind
	NumberKind NumberKind
	Loss       []LossRecord
	Efficiency []EfficiencyBlock
	CreatedAt  time.Time
}

// Len returns the number of samples in the result, across all blocks
func (r *FileResult) Len() int {
	if r.Kind == KindLoss {
		return len(r.Loss)
	}
	n := 0
	for _, b := range r.Efficiency {
		n += len(b)
	}
	return n
}
