// Package source generates synthetic field frames for demos and tests. It
// stands in for a real solver: a damped radial ripple expanding from a point
// origin, deterministic for fixed parameters.
package source

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/wavelab-data/field.report/internal/fdtd/field"
	"github.com/wavelab-data/field.report/internal/fdtd/grid"
)

// Observer is a passive probe fed the full field history once per step.
type Observer interface {
	UpdateData(h *field.History) error
}

// Ripple emits A*cos(k*r - omega*t) * exp(-r^2/(2*sigma^2)) * exp(-damping*t)
// around a fixed origin.
type Ripple struct {
	Amplitude  float64 // peak amplitude at the origin
	Wavelength float64 // physical wavelength, metres
	Speed      float64 // phase speed, metres per second
	Sigma      float64 // spatial envelope width, metres
	Damping    float64 // temporal decay rate, 1/s

	grid   *grid.Grid
	origin grid.Position
}

// NewRipple resolves the origin against the grid and returns a generator
// with demo-friendly defaults scaled to the grid extent.
func NewRipple(g *grid.Grid, x, y grid.Coord) (*Ripple, error) {
	origin, err := g.Resolve(x, y)
	if err != nil {
		return nil, fmt.Errorf("resolve ripple origin: %w", err)
	}
	extent := math.Max(g.SizeX(), g.SizeY())
	return &Ripple{
		Amplitude:  1.0,
		Wavelength: extent / 10,
		Speed:      extent / (float64(g.NSteps()) * g.TimeStep()),
		Sigma:      extent / 4,
		Damping:    0,
		grid:       g,
		origin:     origin,
	}, nil
}

// Frame computes the snapshot for time step t.
func (r *Ripple) Frame(t int) *mat.Dense {
	rows, cols := r.grid.Shape()
	dx, dy := r.grid.DX(), r.grid.DY()
	tt := float64(t) * r.grid.TimeStep()

	k := 2 * math.Pi / r.Wavelength
	omega := k * r.Speed
	decay := math.Exp(-r.Damping * tt)

	frame := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		px := float64(i)*dx - r.origin.X
		for j := 0; j < cols; j++ {
			py := float64(j)*dy - r.origin.Y
			dist := math.Hypot(px, py)
			envelope := math.Exp(-dist * dist / (2 * r.Sigma * r.Sigma))
			frame.Set(i, j, r.Amplitude*math.Cos(k*dist-omega*tt)*envelope*decay)
		}
	}
	return frame
}

// Run drives the observer loop for the grid's full step count: append the
// next frame, then hand every observer the history so far. The source owns
// the time loop; observers never drive it.
func (r *Ripple) Run(ctx context.Context, h *field.History, observers ...Observer) error {
	for t := 0; t < r.grid.NSteps(); t++ {
		select {
		case <-ctx.Done():
			return fmt.Errorf("simulation cancelled at step %d: %w", t, ctx.Err())
		default:
		}

		if err := h.Append(r.Frame(t)); err != nil {
			return fmt.Errorf("step %d: %w", t, err)
		}
		for _, o := range observers {
			if err := o.UpdateData(h); err != nil {
				return fmt.Errorf("step %d: %w", t, err)
			}
		}
	}
	return nil
}
