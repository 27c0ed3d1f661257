// Package plotting renders detector output with gonum/plot. A Scene holds
// one plot per appended axis and saves each as a PNG after a run.
package plotting

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Axis wraps a single plot and accepts the draw calls detectors issue.
type Axis struct {
	p    *plot.Plot
	name string

	// next palette slot for line/scatter colours
	seriesIdx int
}

// Scene is an ordered collection of axes saved together.
type Scene struct {
	axes []*Axis
}

// NewScene creates an empty scene.
func NewScene() *Scene {
	return &Scene{}
}

// AppendAxis adds a titled axis to the scene. The name becomes part of the
// saved file name.
func (s *Scene) AppendAxis(name, title, xLabel, yLabel string) *Axis {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	p.Legend.Top = true

	ax := &Axis{p: p, name: name}
	s.axes = append(s.axes, ax)
	return ax
}

// AddLine draws a line series.
func (a *Axis) AddLine(xs, ys []float64, label string) error {
	if len(xs) != len(ys) {
		return fmt.Errorf("line %q: x and y lengths differ (%d vs %d)", label, len(xs), len(ys))
	}
	line, err := plotter.NewLine(toXYs(xs, ys))
	if err != nil {
		return fmt.Errorf("build line %q: %w", label, err)
	}
	line.Color = a.nextColor()
	line.Width = vg.Points(1)
	a.p.Add(line)
	if label != "" {
		a.p.Legend.Add(label, line)
	}
	return nil
}

// AddScatter draws a scatter series.
func (a *Axis) AddScatter(xs, ys []float64, label string) error {
	if len(xs) != len(ys) {
		return fmt.Errorf("scatter %q: x and y lengths differ (%d vs %d)", label, len(xs), len(ys))
	}
	sc, err := plotter.NewScatter(toXYs(xs, ys))
	if err != nil {
		return fmt.Errorf("build scatter %q: %w", label, err)
	}
	sc.GlyphStyle.Color = a.nextColor()
	sc.GlyphStyle.Radius = vg.Points(2)
	a.p.Add(sc)
	if label != "" {
		a.p.Legend.Add(label, sc)
	}
	return nil
}

// AddEllipse draws an axis-aligned ellipse outline centred at (cx, cy).
const ellipseSegments = 128

func (a *Axis) AddEllipse(cx, cy, rx, ry float64, label string) error {
	xs := make([]float64, ellipseSegments+1)
	ys := make([]float64, ellipseSegments+1)
	for i := 0; i <= ellipseSegments; i++ {
		theta := 2 * math.Pi * float64(i) / float64(ellipseSegments)
		xs[i] = cx + rx*math.Cos(theta)
		ys[i] = cy + ry*math.Sin(theta)
	}

	line, err := plotter.NewLine(toXYs(xs, ys))
	if err != nil {
		return fmt.Errorf("build ellipse %q: %w", label, err)
	}
	line.Color = color.Black
	line.Width = vg.Points(1)
	a.p.Add(line)
	if label != "" {
		a.p.Legend.Add(label, line)
	}
	return nil
}

// Save writes every axis to outputDir as <prefix>_<axis name>.png.
func (s *Scene) Save(outputDir, prefix string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	for _, ax := range s.axes {
		file := filepath.Join(outputDir, fmt.Sprintf("%s_%s.png", prefix, ax.name))
		if err := ax.p.Save(8*vg.Inch, 6*vg.Inch, file); err != nil {
			return fmt.Errorf("save %s: %w", file, err)
		}
	}
	return nil
}

func toXYs(xs, ys []float64) plotter.XYs {
	pts := make(plotter.XYs, len(xs))
	for i := range xs {
		pts[i] = plotter.XY{X: xs[i], Y: ys[i]}
	}
	return pts
}

// small distinct palette; wraps around for long legends
var palette = []color.Color{
	color.RGBA{R: 31, G: 119, B: 180, A: 255},
	color.RGBA{R: 255, G: 127, B: 14, A: 255},
	color.RGBA{R: 44, G: 160, B: 44, A: 255},
	color.RGBA{R: 214, G: 39, B: 40, A: 255},
	color.RGBA{R: 148, G: 103, B: 189, A: 255},
}

func (a *Axis) nextColor() color.Color {
	c := palette[a.seriesIdx%len(palette)]
	a.seriesIdx++
	return c
}
