package detector

import (
	"fmt"

	"github.com/wavelab-data/field.report/internal/fdtd/field"
	"github.com/wavelab-data/field.report/internal/fdtd/grid"
)

// PointDetector samples the field at a single grid cell across all time
// steps.
type PointDetector struct {
	grid     *grid.Grid
	position grid.Position
	data     []float64
}

// NewPoint resolves the detector position against the grid and returns a
// fully formed detector. The data series starts zeroed at the grid's full
// step count. Resolution failures (grid.ErrOutOfBounds) surface unchanged.
func NewPoint(g *grid.Grid, x, y grid.Coord) (*PointDetector, error) {
	pos, err := g.Resolve(x, y)
	if err != nil {
		return nil, fmt.Errorf("resolve point detector position: %w", err)
	}
	return &PointDetector{
		grid:     g,
		position: pos,
		data:     make([]float64, g.NSteps()),
	}, nil
}

// Position returns the resolved detector position.
func (d *PointDetector) Position() grid.Position { return d.position }

// Data returns the sampled series, one value per time step present in the
// history supplied to the last UpdateData call.
func (d *PointDetector) Data() []float64 { return d.data }

// UpdateData replaces the stored series with the field values at the
// detector's cell for every step in h. Called once per solver step with the
// full history so far.
func (d *PointDetector) UpdateData(h *field.History) error {
	rows, cols := d.grid.Shape()
	if err := h.CheckShape(rows, cols); err != nil {
		return fmt.Errorf("point detector at (%d, %d): %w", d.position.XIndex, d.position.YIndex, err)
	}

	data := make([]float64, h.Steps())
	for t := range data {
		data[t] = h.At(t, d.position.XIndex, d.position.YIndex)
	}
	d.data = data
	return nil
}

// TimeSeries pairs the grid's time stamps with the sampled series for a
// line view. The shorter of the two lengths wins when the last update saw a
// partial run.
func (d *PointDetector) TimeSeries() (times, values []float64) {
	times = d.grid.TimeStamps()
	values = d.data
	if len(values) < len(times) {
		times = times[:len(values)]
	} else if len(times) < len(values) {
		values = values[:len(times)]
	}
	return times, values
}

// AddToAxis draws the detector's position marker. It never touches data.
func (d *PointDetector) AddToAxis(ax Axis) error {
	return ax.AddScatter([]float64{d.position.X}, []float64{d.position.Y}, "detector")
}
