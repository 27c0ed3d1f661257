// Package detector implements passive field probes for a 2D simulation.
//
// Detectors never drive the simulation: the solver owns the time loop and
// hands each detector the full field history once per step via UpdateData.
// Each call replaces the detector's stored data wholesale by re-slicing the
// supplied history; nothing is accumulated across calls. Geometry (position,
// radius, mask, member angles) is fixed at construction and safe for
// concurrent readers; UpdateData has a single-writer contract and must not
// run concurrently with reads.
package detector

// Axis is the drawing surface detectors overlay their geometry onto. The
// package only issues draw calls, it never inspects the rendered result.
type Axis interface {
	AddLine(xs, ys []float64, label string) error
	AddScatter(xs, ys []float64, label string) error
	AddEllipse(cx, cy, rx, ry float64, label string) error
}

// Cell is a raster index pair.
type Cell struct {
	Row, Col int
}
