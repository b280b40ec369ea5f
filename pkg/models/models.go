package models

import (
	"math"
	"time"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Body struct {
		Status  string    `json:"status" example:"healthy" doc:"Service health status"`
		Version string    `json:"version" example:"1.0.0" doc:"API version"`
		Time    time.Time `json:"time" doc:"Current server time"`
	}
}

// CreateSweepRequest represents a request to parse an uploaded analyzer export
type CreateSweepRequest struct {
	Body struct {
		Filename string `json:"filename" minLength:"1" maxLength:"255" required:"true" doc:"Original file name"`
		Content  string `json:"content" minLength:"1" maxLength:"10485760" required:"true" doc:"Raw text content of the export"`
	}
}

// GetSweepRequest represents a request for an archived sweep
type GetSweepRequest struct {
	ID string `path:"id" doc:"Sweep ID"`
}

// ListSweepsRequest filters archived sweeps by source file
type ListSweepsRequest struct {
	Source string `query:"source" required:"true" doc:"File the sweeps were parsed from"`
}

// ListSweepsResponse lists archived sweeps, newest first
type ListSweepsResponse struct {
	Body struct {
		Sweeps []SweepResponseBody `json:"sweeps" doc:"Matching sweeps"`
	}
}

// SweepResponse wraps a parsed sweep
type SweepResponse struct {
	Body SweepResponseBody
}

// SweepResponseBody is the JSON form of a FileResult
type SweepResponseBody struct {
	ID         string              `json:"id" doc:"Sweep unique identifier"`
	Source     string              `json:"source" doc:"File the sweep was parsed from"`
	Format     string              `json:"format" doc:"Detected vendor format"`
	Kind       MeasurementKind     `json:"kind" enum:"loss,eff" doc:"Measurement kind"`
	NumberKind NumberKind          `json:"number_kind" enum:"none,real,complex" doc:"Whether complex pairs were supplied"`
	Loss       []LossPoint         `json:"loss,omitempty" doc:"Return loss records"`
	Efficiency [][]EfficiencyPoint `json:"efficiency,omitempty" doc:"Contiguous efficiency blocks"`
	CreatedAt  time.Time           `json:"created_at" doc:"When the sweep was parsed"`
}

// LossPoint is a LossRecord with non-finite values rendered as null
type LossPoint struct {
	FrequencyMHz   *float64 `json:"frequency_mhz"`
	ReturnLossDB   *float64 `json:"return_loss_db"`
	VSWR           *float64 `json:"vswr"`
	MismatchLossDB *float64 `json:"mismatch_loss_db"`
	// Reflection and Impedance are present for every complex input sample,
	// with NaN or Inf parts as null, and absent for magnitude-only input
	Reflection *ComplexPoint `json:"reflection,omitempty" doc:"Measured reflection coefficient"`
	Impedance  *ComplexPoint `json:"impedance,omitempty" doc:"Impedance normalized to the reference"`
}

// ComplexPoint is a complex value with non-finite parts rendered as null
type ComplexPoint struct {
	Re *float64 `json:"re"`
	Im *float64 `json:"im"`
}

func newComplexPoint(c *complex128) *ComplexPoint {
	if c == nil {
		return nil
	}
	return &ComplexPoint{Re: finite(real(*c)), Im: finite(imag(*c))}
}

// EfficiencyPoint is an EfficiencySample with non-finite values rendered as null
type EfficiencyPoint struct {
	FrequencyMHz *float64 `json:"frequency_mhz"`
	EfficiencyDB *float64 `json:"efficiency_db"`
}

// NewSweepResponseBody converts a parsed result into its JSON form.
// encoding/json refuses NaN and Inf, so those become nil.
func NewSweepResponseBody(r *FileResult) SweepResponseBody {
	body := SweepResponseBody{
		ID:         r.ID,
		Source:     r.Source,
		Format:     r.Format,
		Kind:       r.Kind,
		NumberKind: r.NumberKind,
		CreatedAt:  r.CreatedAt,
	}

	for _, rec := range r.Loss {
		p := LossPoint{
			FrequencyMHz:   finite(rec.FrequencyMHz),
			ReturnLossDB:   finite(rec.ReturnLossDB),
			VSWR:           finite(rec.VSWR),
			MismatchLossDB: finite(rec.MismatchLossDB),
			Reflection:     newComplexPoint(rec.Reflection),
			Impedance:      newComplexPoint(rec.NormalizedImpedance),
		}
		body.Loss = append(body.Loss, p)
	}

	for _, block := range r.Efficiency {
		points := make([]EfficiencyPoint, 0, len(block))
		for _, s := range block {
			points = append(points, EfficiencyPoint{
				FrequencyMHz: finite(s.FrequencyMHz),
				EfficiencyDB: finite(s.EfficiencyDB),
			})
		}
		body.Efficiency = append(body.Efficiency, points)
	}

	return body
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
