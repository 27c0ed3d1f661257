package detector

import "math"

// Mask is a boolean raster marking which grid cells belong to a detector's
// sensing region. Immutable after construction.
type Mask struct {
	rows, cols int
	cells      []bool
}

// Rows returns the raster row count.
func (m *Mask) Rows() int { return m.rows }

// Cols returns the raster column count.
func (m *Mask) Cols() int { return m.cols }

// At reports membership of cell (i, j).
func (m *Mask) At(i, j int) bool { return m.cells[i*m.cols+j] }

// Count returns the number of member cells.
func (m *Mask) Count() int {
	n := 0
	for _, v := range m.cells {
		if v {
			n++
		}
	}
	return n
}

// rasterizeEllipse fills an axis-aligned ellipse centred at (cx, cy) with
// semi-axes rx (rows) and ry (cols) onto a rows x cols raster, clipping at
// the raster bounds. A cell belongs when its normalised squared offset is
// inside the unit circle, so a zero semi-axis degenerates to a line (or a
// single cell when both are zero).
func rasterizeEllipse(rows, cols, cx, cy, rx, ry int) *Mask {
	m := &Mask{rows: rows, cols: cols, cells: make([]bool, rows*cols)}

	i0, i1 := clipRange(cx-rx, cx+rx, rows)
	for i := i0; i <= i1; i++ {
		fx := 0.0
		if rx > 0 {
			fx = float64(i-cx) / float64(rx)
		} else if i != cx {
			continue
		}

		rem := 1 - fx*fx
		if rem < 0 {
			continue
		}

		// Half-width of the filled span on this row.
		hw := 0
		if ry > 0 {
			hw = int(math.Floor(float64(ry)*math.Sqrt(rem) + 1e-12))
		}

		j0, j1 := clipRange(cy-hw, cy+hw, cols)
		for j := j0; j <= j1; j++ {
			m.cells[i*m.cols+j] = true
		}
	}
	return m
}

// memberCells enumerates true cells in row-major order. The order is the
// stable contract that keeps member angles aligned with data columns.
func (m *Mask) memberCells() []Cell {
	cells := make([]Cell, 0, m.Count())
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			if m.cells[i*m.cols+j] {
				cells = append(cells, Cell{Row: i, Col: j})
			}
		}
	}
	return cells
}

// clipRange clamps the inclusive range [lo, hi] to [0, dim).
func clipRange(lo, hi, dim int) (int, int) {
	if lo < 0 {
		lo = 0
	}
	if hi > dim-1 {
		hi = dim - 1
	}
	return lo, hi
}
