package export

import (
	"bytes"
	"encoding/csv"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/RMahshie/rfsweep/pkg/models"
)

func lossResult(source string, n int) *models.FileResult {
	r := &models.FileResult{Source: source, Format: "agilent", Kind: models.KindLoss, NumberKind: models.NumberReal}
	for i := 0; i < n; i++ {
		r.Loss = append(r.Loss, models.LossRecord{
			FrequencyMHz:   700 + float64(i)*10,
			ReturnLossDB:   -10,
			VSWR:           1.925,
			MismatchLossDB: -0.458,
		})
	}
	return r
}

func effResult(source string) *models.FileResult {
	return &models.FileResult{
		Source: source,
		Format: "efficiency",
		Kind:   models.KindEfficiency,
		Efficiency: []models.EfficiencyBlock{
			{{FrequencyMHz: 700, EfficiencyDB: -3.1}, {FrequencyMHz: 710, EfficiencyDB: -2.9}},
			{{FrequencyMHz: 1710, EfficiencyDB: -4}},
		},
	}
}

func TestTable_SortsLongestFirstAndPads(t *testing.T) {
	short := lossResult("short.csv", 1)
	eff := effResult("eff.csv")
	long := lossResult("long.csv", 4)

	header, rows := Table([]*models.FileResult{short, eff, long})

	wantHeader := append(append(append([]string{}, LossHeader...), EfficiencyHeader...), LossHeader...)
	if diff := cmp.Diff(wantHeader, header); diff != "" {
		t.Errorf("header mismatch (-want +got):\n%s", diff)
	}

	require.Len(t, rows, 4)
	for _, row := range rows {
		assert.Len(t, row, len(header))
	}

	assert.Equal(t, []string{"700", "-10", "1.925", "-0.458", "700", "-3.1", "700", "-10", "1.925", "-0.458"}, rows[0])
	assert.Equal(t, []string{"720", "-10", "1.925", "-0.458", "1710", "-4", "", "", "", ""}, rows[2])
	assert.Equal(t, []string{"730", "-10", "1.925", "-0.458", "", "", "", "", "", ""}, rows[3])
}

func TestTable_Empty(t *testing.T) {
	header, rows := Table(nil)
	assert.Empty(t, header)
	assert.Empty(t, rows)
}

func TestSortByLength_DoesNotMutateInput(t *testing.T) {
	in := []*models.FileResult{lossResult("a", 1), lossResult("b", 3)}
	out := SortByLength(in)
	assert.Equal(t, "a", in[0].Source)
	assert.Equal(t, "b", out[0].Source)
}

func TestWriteCSV_RoundTrip(t *testing.T) {
	loss := lossResult("ant.csv", 3)
	loss.Loss[1].VSWR = math.Inf(1)
	loss.Loss[2].MismatchLossDB = math.NaN()

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, []*models.FileResult{loss}))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, LossHeader, records[0])
	assert.Equal(t, "+Inf", records[2][2])
	assert.Equal(t, "NaN", records[3][3])
}

func TestWriteXLSX(t *testing.T) {
	loss := lossResult("lab/ant1.s1p", 2)
	loss.Loss[0].VSWR = math.Inf(1)
	eff := effResult("lab/[eff]:run.csv")

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, []*models.FileResult{eff, loss}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Summary", "1 _eff__run", "2 ant1"}, f.GetSheetList())

	summary, err := f.GetRows("Summary")
	require.NoError(t, err)
	require.Len(t, summary, 3)
	assert.Equal(t, []string{"1 _eff__run", "lab/[eff]:run.csv", "efficiency", "eff", "3"}, summary[1])

	rows, err := f.GetRows("2 ant1")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, LossHeader, rows[0])
	assert.Equal(t, "+Inf", rows[1][2])
	assert.Equal(t, "710", rows[2][0])
}

func TestSheetName(t *testing.T) {
	assert.Equal(t, "1 ant", SheetName(0, "/data/ant.csv"))
	assert.Equal(t, "3 a_b", SheetName(2, "a?b.txt"))

	long := SheetName(0, "a_very_long_antenna_measurement_file_name.csv")
	assert.Len(t, long, 31)
}
