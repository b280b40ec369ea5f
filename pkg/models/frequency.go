package models

// EfficiencySample represents a single efficiency measurement
type EfficiencySample struct {
	FrequencyMHz float64 `json:"frequency_mhz" doc:"Frequency in MHz"`
	EfficiencyDB float64 `json:"efficiency_db" doc:"Efficiency in dB"`
}

// EfficiencyBlock is a run of samples with no gap wider than the file's spacing threshold
type EfficiencyBlock []EfficiencySample
