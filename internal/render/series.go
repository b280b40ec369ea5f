// Package render draws parsed sweeps as PNG plots and HTML charts.
package render

import (
	"fmt"
	"image/color"
	"math"
	"path/filepath"
	"sort"
	"strings"

	"github.com/RMahshie/rfsweep/pkg/models"
)

// Palette is cycled through one color per result
var Palette = []string{"#0066cc", "#ff0000", "#f2b111", "#78aa42", "#833083", "#ff6600", "#7c757f"}

// Color returns the palette entry for the i-th plotted result
func Color(i int) string {
	return Palette[i%len(Palette)]
}

func rgba(hex string) color.RGBA {
	c := color.RGBA{A: 0xff}
	_, _ = fmt.Sscanf(strings.TrimPrefix(hex, "#"), "%02x%02x%02x", &c.R, &c.G, &c.B)
	return c
}

// Options controls what is drawn
type Options struct {
	// Title is drawn above the plot and used as the HTML page title
	Title string
	// BandEdges in MHz, in any order
	BandEdges []float64
	// SideBySide draws loss and efficiency in separate columns
	SideBySide bool
}

func (o Options) edges() []float64 {
	edges := append([]float64(nil), o.BandEdges...)
	sort.Float64s(edges)
	return edges
}

type point struct{ X, Y float64 }

// trace is one result reduced to plottable polylines
type trace struct {
	Label string
	Kind  models.MeasurementKind
	Color string
	Lines [][]point
}

// traces converts results of the given kinds into polylines, assigning
// palette colors in order. Loss results become one line of return loss,
// efficiency results one line per block. Non-finite samples break a line.
func traces(results []*models.FileResult, kinds ...models.MeasurementKind) []trace {
	var out []trace
	for _, r := range results {
		if !hasKind(kinds, r.Kind) {
			continue
		}
		t := trace{Label: label(r.Source), Kind: r.Kind, Color: Color(len(out))}
		switch r.Kind {
		case models.KindLoss:
			pts := make([]point, len(r.Loss))
			for i, rec := range r.Loss {
				pts[i] = point{rec.FrequencyMHz, rec.ReturnLossDB}
			}
			t.Lines = splitFinite(pts)
		case models.KindEfficiency:
			for _, block := range r.Efficiency {
				pts := make([]point, len(block))
				for i, s := range block {
					pts[i] = point{s.FrequencyMHz, s.EfficiencyDB}
				}
				t.Lines = append(t.Lines, splitFinite(pts)...)
			}
		}
		out = append(out, t)
	}
	return out
}

func hasKind(kinds []models.MeasurementKind, k models.MeasurementKind) bool {
	for _, want := range kinds {
		if want == k {
			return true
		}
	}
	return false
}

func splitFinite(pts []point) [][]point {
	var lines [][]point
	var cur []point
	for _, p := range pts {
		if !finite(p.X) || !finite(p.Y) {
			if len(cur) > 0 {
				lines = append(lines, cur)
			}
			cur = nil
			continue
		}
		cur = append(cur, p)
	}
	if len(cur) > 0 {
		lines = append(lines, cur)
	}
	return lines
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func label(source string) string {
	if source == "" {
		return "sweep"
	}
	return filepath.Base(source)
}
