// Package report renders persistence diagrams and diagram-distance
// series as PNG charts, plus a plain-text run summary.
package report

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"TopoSentinel/internal/model"
)

// axisMax fixes every diagram chart to [0,2]x[0,2] so windows are
// visually comparable; 2 is the maximum of sqrt(2(1-c)) for c in [-1,1].
const axisMax = 2.0

var dimColors = []color.RGBA{
	{R: 31, G: 119, B: 180, A: 255}, // H0
	{R: 255, G: 127, B: 14, A: 255}, // H1
	{R: 44, G: 160, B: 44, A: 255},  // H2
	{R: 214, G: 39, B: 40, A: 255},  // H3
}

// Reporter writes chart and summary files into a single output directory.
type Reporter struct {
	OutDir string
}

// NewReporter creates a Reporter, ensuring the output directory exists.
func NewReporter(dir string) (*Reporter, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &Reporter{OutDir: dir}, nil
}

// WriteDiagram renders one window's persistence diagram with fixed
// [0,2]x[0,2] axes, titled with the window's start date. Essential
// classes are drawn at the top edge.
func (r *Reporter) WriteDiagram(d *model.Diagram, maxDim int) (string, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Persistence diagram | window %d | %s",
		d.WindowIndex, d.Start.Format("2006-01-02"))
	p.X.Label.Text = "Birth"
	p.Y.Label.Text = "Death"
	p.X.Min, p.X.Max = 0, axisMax
	p.Y.Min, p.Y.Max = 0, axisMax
	p.Add(plotter.NewGrid())

	diag, err := plotter.NewLine(plotter.XYs{{X: 0, Y: 0}, {X: axisMax, Y: axisMax}})
	if err != nil {
		return "", err
	}
	diag.LineStyle.Color = color.RGBA{R: 150, G: 150, B: 150, A: 255}
	diag.LineStyle.Dashes = []vg.Length{vg.Points(3), vg.Points(3)}
	p.Add(diag)

	for dim := 0; dim <= maxDim; dim++ {
		intervals := d.ByDimension(dim)
		if len(intervals) == 0 {
			continue
		}
		pts := make(plotter.XYs, 0, len(intervals))
		for _, iv := range intervals {
			death := iv.Death
			if math.IsInf(death, 1) || death > axisMax {
				death = axisMax
			}
			pts = append(pts, plotter.XY{X: iv.Birth, Y: death})
		}
		s, err := plotter.NewScatter(pts)
		if err != nil {
			return "", err
		}
		s.GlyphStyle.Color = dimColors[dim%len(dimColors)]
		s.GlyphStyle.Radius = vg.Points(2.5)
		p.Add(s)
		p.Legend.Add(fmt.Sprintf("H%d", dim), s)
	}

	path := filepath.Join(r.OutDir, fmt.Sprintf("diagram_%03d_%s.png",
		d.WindowIndex, d.Start.Format("2006-01-02")))
	if err := p.Save(5*vg.Inch, 5*vg.Inch, path); err != nil {
		return "", fmt.Errorf("save diagram chart: %w", err)
	}
	return path, nil
}

// WriteSeries renders one diagram-distance series over window start
// dates. Infinite values (incomparable diagrams) are skipped.
func (r *Reporter) WriteSeries(dim int, baseline string, dates []time.Time, values []float64) (string, error) {
	if len(dates) != len(values) {
		return "", fmt.Errorf("series length mismatch: %d dates, %d values", len(dates), len(values))
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Wasserstein distance (H%d, vs %s window)", dim, baseline)
	p.X.Label.Text = "Window start"
	p.Y.Label.Text = "Distance"
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01"}
	p.Add(plotter.NewGrid())

	pts := make(plotter.XYs, 0, len(values))
	for i, v := range values {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			continue
		}
		pts = append(pts, plotter.XY{X: float64(dates[i].Unix()), Y: v})
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return "", err
	}
	line.LineStyle.Color = dimColors[dim%len(dimColors)]
	line.LineStyle.Width = vg.Points(1.5)
	p.Add(line)

	path := filepath.Join(r.OutDir, fmt.Sprintf("distance_h%d_vs_%s.png", dim, baseline))
	if err := p.Save(7*vg.Inch, 4*vg.Inch, path); err != nil {
		return "", fmt.Errorf("save series chart: %w", err)
	}
	return path, nil
}
