// Package grid describes the spatial and temporal discretisation of a 2D
// simulation domain and converts physical coordinates to raster indices.
//
// The grid is the single authority on coordinate resolution: detectors and
// other observers never round or clamp coordinates themselves, they ask the
// grid and surface its verdict unchanged.
package grid

import (
	"errors"
	"fmt"
	"math"
)

// ErrOutOfBounds reports a physical coordinate or radius that resolves
// outside the grid extent. Callers test for it with errors.Is.
var ErrOutOfBounds = errors.New("coordinate outside grid extent")

// Grid is the simulation mesh: a rows x cols raster covering a rectangular
// physical extent, plus the run's time discretisation. Immutable after New.
type Grid struct {
	rows, cols   int
	sizeX, sizeY float64
	nSteps       int
	timeStep     float64
}

// Position is a coordinate expressed both in physical units and in resolved
// raster indices. It is produced once by Resolve and never recomputed.
type Position struct {
	X, Y           float64
	XIndex, YIndex int
}

// New constructs a grid with the given raster shape (rows along x, cols
// along y), physical extent and time discretisation.
func New(rows, cols int, sizeX, sizeY float64, nSteps int, timeStep float64) (*Grid, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("grid shape must be positive, got (%d, %d)", rows, cols)
	}
	if sizeX <= 0 || sizeY <= 0 {
		return nil, fmt.Errorf("grid extent must be positive, got (%g, %g)", sizeX, sizeY)
	}
	if nSteps <= 0 {
		return nil, fmt.Errorf("step count must be positive, got %d", nSteps)
	}
	if timeStep <= 0 {
		return nil, fmt.Errorf("time step must be positive, got %g", timeStep)
	}
	return &Grid{
		rows:     rows,
		cols:     cols,
		sizeX:    sizeX,
		sizeY:    sizeY,
		nSteps:   nSteps,
		timeStep: timeStep,
	}, nil
}

// Shape returns the raster extent as (rows, cols).
func (g *Grid) Shape() (rows, cols int) { return g.rows, g.cols }

// SizeX returns the physical extent along the x axis.
func (g *Grid) SizeX() float64 { return g.sizeX }

// SizeY returns the physical extent along the y axis.
func (g *Grid) SizeY() float64 { return g.sizeY }

// DX returns the cell pitch along the x axis.
func (g *Grid) DX() float64 { return g.sizeX / float64(g.rows) }

// DY returns the cell pitch along the y axis.
func (g *Grid) DY() float64 { return g.sizeY / float64(g.cols) }

// NSteps returns the number of discrete time steps in a full run.
func (g *Grid) NSteps() int { return g.nSteps }

// TimeStep returns the physical duration of one step.
func (g *Grid) TimeStep() float64 { return g.timeStep }

// TimeStamps returns the ascending physical time value of every step.
func (g *Grid) TimeStamps() []float64 {
	ts := make([]float64, g.nSteps)
	for i := range ts {
		ts[i] = float64(i) * g.timeStep
	}
	return ts
}

// Resolve maps a physical (or symbolic) coordinate pair to the nearest grid
// cell. It fails with ErrOutOfBounds when the resolved index falls outside
// the raster; it never clamps.
func (g *Grid) Resolve(x, y Coord) (Position, error) {
	xv, err := x.physical(axisX, g)
	if err != nil {
		return Position{}, err
	}
	yv, err := y.physical(axisY, g)
	if err != nil {
		return Position{}, err
	}

	xi, err := indexOf(xv, g.DX(), g.rows, "x")
	if err != nil {
		return Position{}, err
	}
	yi, err := indexOf(yv, g.DY(), g.cols, "y")
	if err != nil {
		return Position{}, err
	}

	return Position{X: xv, Y: yv, XIndex: xi, YIndex: yi}, nil
}

// ResolveRadius maps a physical radius to an index-distance pair, one per
// axis. The pair differs when the cell pitch is anisotropic.
func (g *Grid) ResolveRadius(r float64) (rx, ry int, err error) {
	if r < 0 {
		return 0, 0, fmt.Errorf("radius %g: %w", r, ErrOutOfBounds)
	}
	rx = int(math.Round(r / g.DX()))
	ry = int(math.Round(r / g.DY()))
	if rx >= g.rows || ry >= g.cols {
		return 0, 0, fmt.Errorf("radius %g spans the whole grid: %w", r, ErrOutOfBounds)
	}
	return rx, ry, nil
}

// indexOf converts a physical axis value to the nearest cell index.
func indexOf(v, pitch float64, dim int, axis string) (int, error) {
	idx := int(math.Round(v / pitch))
	if idx < 0 || idx >= dim {
		return 0, fmt.Errorf("%s=%g resolves to index %d outside [0, %d): %w", axis, v, idx, dim, ErrOutOfBounds)
	}
	return idx, nil
}
