// Package export writes parsed sweeps as spreadsheets.
package export

import (
	"sort"
	"strconv"

	"github.com/RMahshie/rfsweep/pkg/models"
)

// Column headers, one group per result
var (
	LossHeader       = []string{"Frequency (MHz)", "Return Loss (dB)", "VSWR (V)", "Mismatch Loss (dB)"}
	EfficiencyHeader = []string{"Frequency (MHz)", "Efficiency (dB)"}
)

// Header returns the column group for one result
func Header(r *models.FileResult) []string {
	if r.Kind == models.KindEfficiency {
		return EfficiencyHeader
	}
	return LossHeader
}

// Rows flattens a result into one row per sample. Efficiency blocks are
// concatenated in order.
func Rows(r *models.FileResult) [][]float64 {
	rows := make([][]float64, 0, r.Len())
	if r.Kind == models.KindEfficiency {
		for _, block := range r.Efficiency {
			for _, s := range block {
				rows = append(rows, []float64{s.FrequencyMHz, s.EfficiencyDB})
			}
		}
		return rows
	}
	for _, rec := range r.Loss {
		rows = append(rows, []float64{rec.FrequencyMHz, rec.ReturnLossDB, rec.VSWR, rec.MismatchLossDB})
	}
	return rows
}

// SortByLength orders results longest first. Ties keep input order.
func SortByLength(results []*models.FileResult) []*models.FileResult {
	sorted := make([]*models.FileResult, len(results))
	copy(sorted, results)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Len() > sorted[j].Len()
	})
	return sorted
}

// Table lays results side by side. Shorter column groups are padded with
// empty cells.
func Table(results []*models.FileResult) (header []string, rows [][]string) {
	sorted := SortByLength(results)

	var widths []int
	var groups [][][]float64
	height := 0
	for _, r := range sorted {
		h := Header(r)
		header = append(header, h...)
		widths = append(widths, len(h))

		g := Rows(r)
		groups = append(groups, g)
		height = max(height, len(g))
	}

	rows = make([][]string, height)
	for i := range rows {
		row := make([]string, 0, len(header))
		for gi, g := range groups {
			if i < len(g) {
				for _, v := range g[i] {
					row = append(row, FormatValue(v))
				}
				continue
			}
			for range widths[gi] {
				row = append(row, "")
			}
		}
		rows[i] = row
	}

	return header, rows
}

// FormatValue renders a float in its shortest round-trip form
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
