package segment

import (
	"github.com/RMahshie/rfsweep/pkg/models"
)

// Segment partitions samples into blocks wherever the gap to the next
// sample exceeds meanGap+stdevGap. Blocks keep input order and together
// hold every sample exactly once.
func Segment(samples []models.EfficiencySample, meanGap, stdevGap float64) []models.EfficiencyBlock {
	if len(samples) == 0 {
		return nil
	}

	threshold := meanGap + stdevGap
	var blocks []models.EfficiencyBlock
	var current models.EfficiencyBlock

	for i := 0; i < len(samples)-1; i++ {
		current = append(current, samples[i])
		if samples[i+1].FrequencyMHz-samples[i].FrequencyMHz > threshold {
			blocks = append(blocks, current)
			current = nil
		}
	}

	// the loop only visits pairs, so the final sample is still pending
	current = append(current, samples[len(samples)-1])
	return append(blocks, current)
}

// SegmentAdaptive analyzes the spacing of samples and segments them with it
func SegmentAdaptive(samples []models.EfficiencySample) ([]models.EfficiencyBlock, Spacing, error) {
	freqs := make([]float64, len(samples))
	for i, s := range samples {
		freqs[i] = s.FrequencyMHz
	}

	spacing, err := Analyze(freqs)
	if err != nil {
		return nil, Spacing{}, err
	}

	return Segment(samples, spacing.MeanGap, spacing.StdevGap), spacing, nil
}
