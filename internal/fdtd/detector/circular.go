package detector

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/wavelab-data/field.report/internal/fdtd/field"
	"github.com/wavelab-data/field.report/internal/fdtd/grid"
)

// CircularDetector samples the field over a disk-shaped region, keeping the
// angular position of every member cell for polar-profile views.
type CircularDetector struct {
	grid     *grid.Grid
	position grid.Position
	radius   float64

	// radius resolved to index units per axis; differs when the cell
	// pitch is anisotropic.
	radiusX, radiusY int

	mask   *Mask
	coords []Cell
	angles []float64

	// data is (steps x members); column m tracks coords[m]. Nil until the
	// first UpdateData call.
	data *mat.Dense
}

// NewCircular resolves the centre and radius against the grid, rasterizes
// the membership mask and derives member coordinates and angles. All
// geometry is fixed for the detector's lifetime.
func NewCircular(g *grid.Grid, x, y grid.Coord, radius float64) (*CircularDetector, error) {
	pos, err := g.Resolve(x, y)
	if err != nil {
		return nil, fmt.Errorf("resolve circular detector position: %w", err)
	}
	rx, ry, err := g.ResolveRadius(radius)
	if err != nil {
		return nil, fmt.Errorf("resolve circular detector radius: %w", err)
	}

	rows, cols := g.Shape()
	mask := rasterizeEllipse(rows, cols, pos.XIndex, pos.YIndex, rx, ry)
	coords := mask.memberCells()

	// Angle convention: atan2(row offset, col offset), the column axis is
	// the reference axis. Swapping the arguments rotates every angle by
	// 90 degrees, so polar views depend on this exact order.
	angles := make([]float64, len(coords))
	for k, c := range coords {
		angles[k] = math.Atan2(float64(c.Row-pos.XIndex), float64(c.Col-pos.YIndex))
	}

	return &CircularDetector{
		grid:     g,
		position: pos,
		radius:   radius,
		radiusX:  rx,
		radiusY:  ry,
		mask:     mask,
		coords:   coords,
		angles:   angles,
	}, nil
}

// Position returns the resolved centre.
func (d *CircularDetector) Position() grid.Position { return d.position }

// Radius returns the physical radius.
func (d *CircularDetector) Radius() float64 { return d.radius }

// RadiusIndexes returns the radius resolved to index units per axis.
func (d *CircularDetector) RadiusIndexes() (rx, ry int) { return d.radiusX, d.radiusY }

// Mask returns the membership raster.
func (d *CircularDetector) Mask() *Mask { return d.mask }

// MemberCoordinates returns the member cells in the stable enumeration
// order shared with MemberAngles and with the columns of Data.
func (d *CircularDetector) MemberCoordinates() []Cell { return d.coords }

// MemberAngles returns the angle of each member cell relative to the
// centre, index-aligned with MemberCoordinates.
func (d *CircularDetector) MemberAngles() []float64 { return d.angles }

// Data returns the (steps x members) sample matrix from the last
// UpdateData call, or nil before the first call.
func (d *CircularDetector) Data() *mat.Dense { return d.data }

// UpdateData replaces the stored samples with the member-cell values for
// every step in h. Column order follows MemberCoordinates.
func (d *CircularDetector) UpdateData(h *field.History) error {
	rows, cols := d.grid.Shape()
	if err := h.CheckShape(rows, cols); err != nil {
		return fmt.Errorf("circular detector at (%d, %d): %w", d.position.XIndex, d.position.YIndex, err)
	}

	steps := h.Steps()
	data := mat.NewDense(steps, len(d.coords), nil)
	for t := 0; t < steps; t++ {
		for m, c := range d.coords {
			data.Set(t, m, h.At(t, c.Row, c.Col))
		}
	}
	d.data = data
	return nil
}

// AngularProfile returns, per member cell, the sum over the inclusive step
// range [from, to] of the absolute sampled value, paired with the member
// angles. The magnitude slice is index-aligned with the returned angles.
func (d *CircularDetector) AngularProfile(from, to int) (angles, magnitudes []float64, err error) {
	if d.data == nil {
		return nil, nil, fmt.Errorf("no data sampled yet")
	}
	steps, members := d.data.Dims()
	if from < 0 || to >= steps || from > to {
		return nil, nil, fmt.Errorf("step range [%d, %d] invalid for %d sampled steps", from, to, steps)
	}

	magnitudes = make([]float64, members)
	col := make([]float64, steps)
	for m := 0; m < members; m++ {
		mat.Col(col, m, d.data)
		magnitudes[m] = floats.Norm(col[from:to+1], 1)
	}
	return d.angles, magnitudes, nil
}

// AngularProfileAt returns the profile for a single step; negative t counts
// back from the most recent step, so -1 selects the latest sample.
func (d *CircularDetector) AngularProfileAt(t int) (angles, magnitudes []float64, err error) {
	if d.data == nil {
		return nil, nil, fmt.Errorf("no data sampled yet")
	}
	steps, _ := d.data.Dims()
	if t < 0 {
		t += steps
	}
	return d.AngularProfile(t, t)
}

// AddToAxis draws the detector outline at its physical position and radius.
// It never touches data.
func (d *CircularDetector) AddToAxis(ax Axis) error {
	return ax.AddEllipse(d.position.X, d.position.Y, d.radius, d.radius, "detector")
}
