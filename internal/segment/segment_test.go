package segment

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RMahshie/rfsweep/pkg/models"
)

func samplesAt(freqs ...float64) []models.EfficiencySample {
	out := make([]models.EfficiencySample, len(freqs))
	for i, f := range freqs {
		out[i] = models.EfficiencySample{FrequencyMHz: f, EfficiencyDB: -float64(i)}
	}
	return out
}

func frequencies(blocks []models.EfficiencyBlock) [][]float64 {
	out := make([][]float64, len(blocks))
	for i, b := range blocks {
		for _, s := range b {
			out[i] = append(out[i], s.FrequencyMHz)
		}
	}
	return out
}

func TestAnalyze(t *testing.T) {
	tests := []struct {
		name     string
		freqs    []float64
		wantMean float64
		wantStd  float64
	}{
		{"uniform", []float64{0, 10, 20, 30}, 10, 0},
		{"two points", []float64{100, 105}, 5, 0},
		// gaps 1, 3: mean 2, population stdev 1
		{"population stdev", []float64{0, 1, 4}, 2, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Analyze(tt.freqs)
			require.NoError(t, err)
			assert.InDelta(t, tt.wantMean, s.MeanGap, 1e-12)
			assert.InDelta(t, tt.wantStd, s.StdevGap, 1e-12)
			assert.InDelta(t, tt.wantMean+tt.wantStd, s.Threshold(), 1e-12)
		})
	}
}

func TestAnalyze_InsufficientData(t *testing.T) {
	for _, freqs := range [][]float64{nil, {42}} {
		_, err := Analyze(freqs)
		assert.ErrorIs(t, err, ErrInsufficientData)
	}
}

func TestSegment_SplitsOnWideGap(t *testing.T) {
	blocks := Segment(samplesAt(0, 1, 2, 10, 11), 1, 0)

	want := [][]float64{{0, 1, 2}, {10, 11}}
	if diff := cmp.Diff(want, frequencies(blocks)); diff != "" {
		t.Errorf("blocks mismatch (-want +got):\n%s", diff)
	}
}

func TestSegment_UniformIsOneBlock(t *testing.T) {
	in := samplesAt(700, 710, 720, 730, 740)
	blocks := Segment(in, 10, 0)

	require.Len(t, blocks, 1)
	assert.Equal(t, models.EfficiencyBlock(in), blocks[0])
}

func TestSegment_NeverDropsSamples(t *testing.T) {
	inputs := [][]float64{
		{5},
		{0, 100},
		{0, 1, 50, 51, 52, 200},
		{0, 1, 2, 3, 100, 101, 102, 500},
	}

	for _, freqs := range inputs {
		in := samplesAt(freqs...)
		var blocks []models.EfficiencyBlock
		if len(in) >= 2 {
			var err error
			blocks, _, err = SegmentAdaptive(in)
			require.NoError(t, err)
		} else {
			blocks = Segment(in, 0, 0)
		}

		total := 0
		var flat []models.EfficiencySample
		for _, b := range blocks {
			assert.NotEmpty(t, b)
			total += len(b)
			flat = append(flat, b...)
		}
		assert.Equal(t, len(in), total, "freqs=%v", freqs)
		assert.Equal(t, in, flat, "order must be preserved")
	}
}

func TestSegment_Empty(t *testing.T) {
	assert.Empty(t, Segment(nil, 1, 0))
}

func TestSegmentAdaptive_TwoBands(t *testing.T) {
	// two dense bands separated by a wide hole
	in := samplesAt(698, 708, 718, 728, 1710, 1720, 1730, 1740)

	blocks, spacing, err := SegmentAdaptive(in)
	require.NoError(t, err)

	assert.Greater(t, spacing.StdevGap, 0.0)
	want := [][]float64{{698, 708, 718, 728}, {1710, 1720, 1730, 1740}}
	if diff := cmp.Diff(want, frequencies(blocks)); diff != "" {
		t.Errorf("blocks mismatch (-want +got):\n%s", diff)
	}
}
