package render

import (
	"fmt"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/RMahshie/rfsweep/internal/rfmath"
	"github.com/RMahshie/rfsweep/pkg/models"
)

const circlePoints = 360

// SmithMarkers returns, for each band edge, the reflection coefficient of
// the last sample at or below it. Edges below the first sample have no
// marker and are skipped.
func SmithMarkers(loss []models.LossRecord, edges []float64) []complex128 {
	var markers []complex128
	for _, edge := range edges {
		var last *complex128
		for i := range loss {
			if loss[i].FrequencyMHz > edge {
				break
			}
			if g, ok := reflection(loss[i]); ok {
				last = &g
			}
		}
		if last != nil {
			markers = append(markers, *last)
		}
	}
	return markers
}

// WriteSmithHTML charts the reflection coefficient of every complex loss
// result on the unit circle
func WriteSmithHTML(w io.Writer, results []*models.FileResult, o Options) error {
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: pageTitle(o.Title, "Smith Chart"), Width: "900px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{Title: o.Title, Subtitle: "Reflection coefficient"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Bottom: "0"}),
		charts.WithXAxisOpts(opts.XAxis{Min: -1.1, Max: 1.1, Name: "Re Γ", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: -1.1, Max: 1.1, Name: "Im Γ", NameLocation: "middle", NameGap: 30}),
	)

	// Outer unit circle and the r=1 resistance circle
	scatter.AddSeries("|Γ| = 1", circle(0, 1),
		charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 2}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: "#9e9e9e"}))
	scatter.AddSeries("r = 1", circle(0.5, 0.5),
		charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 1}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: "#cfcfcf"}))

	edges := o.edges()
	n := 0
	for _, r := range results {
		if r.Kind != models.KindLoss || r.NumberKind != models.NumberComplex {
			continue
		}
		name := label(r.Source)
		c := Color(n)
		n++

		pts := make([]opts.ScatterData, 0, len(r.Loss))
		for _, rec := range r.Loss {
			g, ok := reflection(rec)
			if !ok {
				continue
			}
			if d, ok := gammaPoint(g, rec.FrequencyMHz); ok {
				pts = append(pts, d)
			}
		}
		scatter.AddSeries(name, pts,
			charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 4}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: c}))

		if len(edges) == 0 {
			continue
		}
		var marks []opts.ScatterData
		for _, g := range SmithMarkers(r.Loss, edges) {
			if d, ok := gammaPoint(g, math.NaN()); ok {
				marks = append(marks, d)
			}
		}
		scatter.AddSeries(name+" band edges", marks,
			charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 12}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: c}))
	}

	if err := scatter.Render(w); err != nil {
		return fmt.Errorf("failed to render smith chart: %w", err)
	}
	return nil
}

// WriteLossHTML charts return loss and efficiency against frequency with
// band edges as dotted verticals
func WriteLossHTML(w io.Writer, results []*models.FileResult, o Options) error {
	line := charts.NewLine()

	xAxis := opts.XAxis{Type: "value", Name: "Frequency (MHz)", NameLocation: "middle", NameGap: 25}
	if edges := o.edges(); len(edges) >= 2 {
		xAxis.Min = edges[0] - panelMargin
		xAxis.Max = edges[len(edges)-1] + panelMargin
	}

	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: pageTitle(o.Title, "Return Loss"), Width: "1200px", Height: "700px"}),
		charts.WithTitleOpts(opts.Title{Title: o.Title, Subtitle: "Return Loss/Efficiency (dB)"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Bottom: "0"}),
		charts.WithXAxisOpts(xAxis),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Min: yMin, Max: yMax, Name: "dB", NameLocation: "middle", NameGap: 30}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "inside"}),
	)

	for _, t := range traces(results, models.KindLoss, models.KindEfficiency) {
		for _, pts := range t.Lines {
			data := make([]opts.LineData, len(pts))
			for i, p := range pts {
				data[i] = opts.LineData{Value: []interface{}{p.X, p.Y}}
			}
			line.AddSeries(t.Label, data,
				charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
				charts.WithItemStyleOpts(opts.ItemStyle{Color: t.Color}),
				charts.WithLineStyleOpts(opts.LineStyle{Color: t.Color, Width: 2}))
		}
	}

	for _, edge := range o.edges() {
		data := []opts.LineData{
			{Value: []interface{}{edge, yMin}},
			{Value: []interface{}{edge, yMax}},
		}
		line.AddSeries(fmt.Sprintf("%g MHz", edge), data,
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: "#000000"}),
			charts.WithLineStyleOpts(opts.LineStyle{Color: "#000000", Width: 2, Type: "dotted"}))
	}

	if err := line.Render(w); err != nil {
		return fmt.Errorf("failed to render line chart: %w", err)
	}
	return nil
}

// reflection prefers the measured coefficient. Records archived with only
// an impedance are mapped back through it.
func reflection(rec models.LossRecord) (complex128, bool) {
	switch {
	case rec.Reflection != nil:
		return *rec.Reflection, true
	case rec.NormalizedImpedance != nil:
		return rfmath.ReflectionCoefficient(*rec.NormalizedImpedance), true
	default:
		return 0, false
	}
}

// gammaPoint converts a reflection coefficient to a scatter point, with
// the frequency as a tooltip value when known
func gammaPoint(g complex128, freq float64) (opts.ScatterData, bool) {
	x, y := real(g), imag(g)
	if !finite(x) || !finite(y) {
		return opts.ScatterData{}, false
	}
	if finite(freq) {
		return opts.ScatterData{Value: []interface{}{x, y, freq}}, true
	}
	return opts.ScatterData{Value: []interface{}{x, y}}, true
}

func circle(cx, radius float64) []opts.ScatterData {
	pts := make([]opts.ScatterData, circlePoints)
	for i := range pts {
		theta := 2 * math.Pi * float64(i) / circlePoints
		pts[i] = opts.ScatterData{Value: []interface{}{cx + radius*math.Cos(theta), radius * math.Sin(theta)}}
	}
	return pts
}

func pageTitle(title, fallback string) string {
	if title == "" {
		return fallback
	}
	return title + " " + fallback
}
