// Package field holds the time-evolving field produced by a solver: a dense
// (time x rows x cols) tensor assembled from per-step snapshots.
package field

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// ErrShapeMismatch reports a snapshot whose spatial dimensions disagree with
// the history's raster shape.
var ErrShapeMismatch = errors.New("field shape does not match grid shape")

// History is the field tensor with time as the leading axis. Snapshots are
// stored by reference; callers must not mutate a frame after appending it.
type History struct {
	rows, cols int
	frames     []*mat.Dense
}

// NewHistory creates an empty history over a rows x cols raster.
func NewHistory(rows, cols int) (*History, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("history shape must be positive, got (%d, %d)", rows, cols)
	}
	return &History{rows: rows, cols: cols}, nil
}

// Append adds the next time step. It fails fast with ErrShapeMismatch
// rather than letting a congruence bug surface later as an index panic.
func (h *History) Append(frame *mat.Dense) error {
	r, c := frame.Dims()
	if r != h.rows || c != h.cols {
		return fmt.Errorf("frame is (%d, %d), history is (%d, %d): %w", r, c, h.rows, h.cols, ErrShapeMismatch)
	}
	h.frames = append(h.frames, frame)
	return nil
}

// Steps returns the number of time steps appended so far.
func (h *History) Steps() int { return len(h.frames) }

// Rows returns the raster row count.
func (h *History) Rows() int { return h.rows }

// Cols returns the raster column count.
func (h *History) Cols() int { return h.cols }

// At returns the field value at time step t, cell (i, j).
func (h *History) At(t, i, j int) float64 { return h.frames[t].At(i, j) }

// Frame returns the snapshot at time step t.
func (h *History) Frame(t int) *mat.Dense { return h.frames[t] }

// CheckShape verifies the history's spatial extent against an expected
// raster shape.
func (h *History) CheckShape(rows, cols int) error {
	if h.rows != rows || h.cols != cols {
		return fmt.Errorf("history is (%d, %d), expected (%d, %d): %w", h.rows, h.cols, rows, cols, ErrShapeMismatch)
	}
	return nil
}
