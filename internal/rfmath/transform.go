// Package rfmath derives return loss, VSWR, mismatch loss and normalized
// impedance from analyzer readings.
//
// Every function is total over float64. Physically degenerate points (a
// perfect reflection, an open circuit, a magnitude above unity) produce
// IEEE-754 infinities or NaN instead of errors.
package rfmath

import (
	"math"
)

// Options controls sign conventions of the derived metrics
type Options struct {
	// MismatchPositive reports mismatch loss as a positive attenuation
	// instead of the signed 10·log10(1-|Γ|²) value.
	MismatchPositive bool
}

// Metrics holds everything derived from one reading
type Metrics struct {
	LogMagDB       float64
	VSWR           float64
	MismatchLossDB float64

	// Reflection and NormalizedImpedance are nil for magnitude-only input
	Reflection          *complex128
	NormalizedImpedance *complex128
}

// Transform converts a reading into Metrics. With secondary == nil the
// primary value is a return loss already in dB. Otherwise primary and
// *secondary are the real and imaginary parts of the reflection coefficient.
func Transform(primary float64, secondary *float64, opts Options) Metrics {
	var m Metrics

	if secondary != nil {
		x, y := primary, *secondary
		m.LogMagDB = 20 * math.Log10(math.Hypot(x, y))
		g := complex(x, y)
		m.Reflection = &g
		z := NormalizedImpedance(x, y)
		m.NormalizedImpedance = &z
	} else {
		m.LogMagDB = primary
	}

	m.VSWR = VSWR(m.LogMagDB)
	m.MismatchLossDB = MismatchLoss(m.LogMagDB)
	if opts.MismatchPositive {
		m.MismatchLossDB = -m.MismatchLossDB
	}

	return m
}

// VSWR returns the standing wave ratio for a return loss in dB.
// 0 dB gives +Inf.
func VSWR(logMagDB float64) float64 {
	gamma := math.Pow(10, logMagDB/20)
	return (1 + gamma) / (1 - gamma)
}

// MismatchLoss returns 10·log10(1-|Γ|²) for a return loss in dB.
// It is -Inf at 0 dB and NaN above 0 dB.
func MismatchLoss(logMagDB float64) float64 {
	return 10 * math.Log10(1-math.Pow(10, logMagDB/10))
}

// NormalizedImpedance maps a reflection coefficient x+jy onto the
// impedance normalized to the reference. x=1, y=0 (open) yields NaN.
func NormalizedImpedance(x, y float64) complex128 {
	den := (1-x)*(1-x) + y*y
	re := (1 - x*x - y*y) / den
	im := 2 * y / den
	return complex(re, im)
}

// ReflectionCoefficient is the inverse of NormalizedImpedance, used to
// place impedances on a Smith chart.
func ReflectionCoefficient(z complex128) complex128 {
	return (z - 1) / (z + 1)
}
