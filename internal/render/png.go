package render

import (
	"fmt"
	"image/color"
	"io"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/RMahshie/rfsweep/pkg/models"
)

const (
	panelMargin = 100.0 // MHz either side of a band
	yMin        = -18.0
	yMax        = 0.0

	columnWidth = 12 * vg.Inch
	plotHeight  = 9 * vg.Inch
	titleHeight = 0.6 * vg.Inch
	footerRatio = 0.04
)

var (
	footerColor = color.RGBA{R: 0x66, G: 0x66, B: 0x66, A: 0xff}
	footerText  = color.RGBA{R: 0xcc, G: 0xcc, B: 0xcc, A: 0xff}
)

// column is one half of a side-by-side figure, or the whole figure
type column struct {
	Title  string
	YLabel string
	Traces []trace
}

// WritePNG plots return loss and efficiency against frequency. With more
// than two band edges every consecutive pair gets its own panel.
func WritePNG(w io.Writer, results []*models.FileResult, o Options, now time.Time) error {
	var columns []column
	if o.SideBySide {
		columns = []column{
			{Title: "Return Loss", YLabel: "Return Loss (dB)", Traces: traces(results, models.KindLoss)},
			{Title: "Efficiency", YLabel: "Efficiency (dB)", Traces: traces(results, models.KindEfficiency)},
		}
	} else {
		columns = []column{
			{YLabel: "Return Loss/Efficiency (dB)", Traces: traces(results, models.KindLoss, models.KindEfficiency)},
		}
	}

	bands := bandPairs(o.edges())

	row := make([]*plot.Plot, 0, len(columns)*len(bands))
	for _, col := range columns {
		for i, band := range bands {
			p, err := panel(col, band, i == 0)
			if err != nil {
				return err
			}
			row = append(row, p)
		}
	}

	img := vgimg.New(columnWidth*vg.Length(len(columns)), plotHeight)
	dc := draw.New(img)

	footerH := plotHeight * footerRatio
	drawFooter(dc, footerH, now)
	drawTitle(dc, o.Title)

	body := draw.Crop(dc, 0, 0, footerH, -titleHeight)
	tiles := draw.Tiles{
		Rows:      1,
		Cols:      len(row),
		PadX:      vg.Millimeter * 4,
		PadTop:    vg.Millimeter * 2,
		PadBottom: vg.Millimeter * 2,
		PadLeft:   vg.Millimeter * 2,
		PadRight:  vg.Millimeter * 4,
	}
	canvases := plot.Align([][]*plot.Plot{row}, tiles, body)
	for j, p := range row {
		p.Draw(canvases[0][j])
	}

	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(w); err != nil {
		return fmt.Errorf("failed to encode png: %w", err)
	}
	return nil
}

// band is the visible frequency window of a panel. Edges holds the band
// edges drawn in it, empty when no window is set.
type band struct {
	Edges []float64
}

// bandPairs pairs sorted edges into panels. Two or fewer edges give a
// single panel; an odd trailing edge is ignored.
func bandPairs(edges []float64) []band {
	if len(edges) <= 2 {
		if len(edges) == 2 {
			return []band{{Edges: edges}}
		}
		return []band{{}}
	}
	bands := make([]band, 0, len(edges)/2)
	for i := 0; i+1 < len(edges); i += 2 {
		bands = append(bands, band{Edges: edges[i : i+2]})
	}
	return bands
}

func panel(col column, b band, first bool) (*plot.Plot, error) {
	p := plot.New()
	if first {
		p.Title.Text = col.Title
		p.Y.Label.Text = col.YLabel
	}
	p.X.Label.Text = "Frequency (MHz)"
	p.Add(plotter.NewGrid())

	for _, t := range col.Traces {
		for li, pts := range t.Lines {
			xys := make(plotter.XYs, len(pts))
			for i, pt := range pts {
				xys[i] = plotter.XY{X: pt.X, Y: pt.Y}
			}
			line, err := plotter.NewLine(xys)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", t.Label, err)
			}
			line.Color = rgba(t.Color)
			line.Width = vg.Points(2)
			p.Add(line)
			if first && li == 0 {
				p.Legend.Add(t.Label, line)
			}
		}
	}

	for _, edge := range b.Edges {
		line, err := plotter.NewLine(plotter.XYs{{X: edge, Y: yMin}, {X: edge, Y: yMax}})
		if err != nil {
			return nil, err
		}
		line.Color = color.Black
		line.Width = vg.Points(2)
		line.Dashes = []vg.Length{vg.Points(2), vg.Points(3)}
		p.Add(line)
	}

	if len(b.Edges) == 2 {
		p.X.Min = b.Edges[0] - panelMargin
		p.X.Max = b.Edges[1] + panelMargin
	}
	p.Y.Min = yMin
	p.Y.Max = yMax

	p.Legend.Top = false
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = 10

	return p, nil
}

func drawTitle(dc draw.Canvas, title string) {
	if title == "" {
		return
	}
	sty := text.Style{
		Color:   color.Black,
		Font:    font.From(plot.DefaultFont, vg.Points(20)),
		XAlign:  text.XCenter,
		YAlign:  text.YTop,
		Handler: plot.DefaultTextHandler,
	}
	x := (dc.Min.X + dc.Max.X) / 2
	dc.FillText(sty, vg.Point{X: x, Y: dc.Max.Y - vg.Millimeter*3}, title)
}

func drawFooter(dc draw.Canvas, height vg.Length, now time.Time) {
	dc.FillPolygon(footerColor, []vg.Point{
		{X: dc.Min.X, Y: dc.Min.Y},
		{X: dc.Max.X, Y: dc.Min.Y},
		{X: dc.Max.X, Y: dc.Min.Y + height},
		{X: dc.Min.X, Y: dc.Min.Y + height},
	})

	sty := text.Style{
		Color:   footerText,
		Font:    font.From(plot.DefaultFont, vg.Points(12)),
		XAlign:  text.XRight,
		YAlign:  text.YCenter,
		Handler: plot.DefaultTextHandler,
	}
	dc.FillText(sty, vg.Point{X: dc.Max.X - vg.Millimeter*3, Y: dc.Min.Y + height/2}, now.Format("2006-01-02"))
}
