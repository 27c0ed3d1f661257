package plotting

import (
	"math"

	"github.com/wavelab-data/field.report/internal/fdtd/detector"
)

// TimeSeriesScene builds a one-axis scene with a detector's sampled series
// over the run's time stamps.
func TimeSeriesScene(name string, times, values []float64) (*Scene, error) {
	s := NewScene()
	ax := s.AppendAxis("timeseries", name, "Time (s)", "Field amplitude")
	if err := ax.AddLine(times, values, name); err != nil {
		return nil, err
	}
	return s, nil
}

// PolarScene builds a one-axis scene with an angular profile projected to
// XY, magnitude as radius.
func PolarScene(name string, angles, magnitudes []float64) (*Scene, error) {
	xs := make([]float64, len(angles))
	ys := make([]float64, len(angles))
	for i, theta := range angles {
		xs[i] = magnitudes[i] * math.Cos(theta)
		ys[i] = magnitudes[i] * math.Sin(theta)
	}

	s := NewScene()
	ax := s.AppendAxis("polar", name, "X", "Y")
	if err := ax.AddScatter(xs, ys, name); err != nil {
		return nil, err
	}
	return s, nil
}

// Overlayer is any detector able to draw its own geometry marker.
type Overlayer interface {
	AddToAxis(ax detector.Axis) error
}

// SpatialScene builds a one-axis scene with the physical domain extent and
// every detector's geometry overlay.
func SpatialScene(sizeX, sizeY float64, overlays ...Overlayer) (*Scene, error) {
	s := NewScene()
	ax := s.AppendAxis("spatial", "Simulation domain", "X (m)", "Y (m)")
	ax.p.X.Min, ax.p.X.Max = 0, sizeX
	ax.p.Y.Min, ax.p.Y.Max = 0, sizeY
	for _, o := range overlays {
		if err := o.AddToAxis(ax); err != nil {
			return nil, err
		}
	}
	return s, nil
}
