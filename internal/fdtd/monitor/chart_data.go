// Package monitor serves detector charts over HTTP for quick visual checks
// during and after a run. Data preparation is separated from eCharts
// rendering for testability.
package monitor

import (
	"math"
)

// SeriesPoint is one (time, value) sample in a time-series chart.
type SeriesPoint struct {
	Time  float64 `json:"time"`
	Value float64 `json:"value"`
}

// TimeSeriesChartData holds prepared data for a detector line chart.
type TimeSeriesChartData struct {
	Detector  string        `json:"detector"`
	Points    []SeriesPoint `json:"points"`
	Stride    int           `json:"stride"`
	NumPoints int           `json:"num_points"`
}

// PrepareTimeSeries downsamples a sampled series by stride to stay within
// maxPoints.
func PrepareTimeSeries(detector string, times, values []float64, maxPoints int) TimeSeriesChartData {
	n := len(values)
	if len(times) < n {
		n = len(times)
	}

	stride := 1
	if maxPoints > 0 && n > maxPoints {
		stride = int(math.Ceil(float64(n) / float64(maxPoints)))
	}

	points := make([]SeriesPoint, 0, n/stride+1)
	for i := 0; i < n; i += stride {
		points = append(points, SeriesPoint{Time: times[i], Value: values[i]})
	}

	return TimeSeriesChartData{
		Detector:  detector,
		Points:    points,
		Stride:    stride,
		NumPoints: len(points),
	}
}

// ScatterPoint is a single point in an XY scatter chart.
type ScatterPoint struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Value float64 `json:"value"`
}

// PolarChartData holds an angular profile projected to XY for a scatter
// chart, magnitude as radius.
type PolarChartData struct {
	Detector  string         `json:"detector"`
	Points    []ScatterPoint `json:"points"`
	MaxAbs    float64        `json:"max_abs"`
	NumPoints int            `json:"num_points"`
}

// PreparePolarProfile converts (angle, magnitude) pairs to XY scatter
// points. MaxAbs is the symmetric axis range that keeps the plot square.
func PreparePolarProfile(detector string, angles, magnitudes []float64) PolarChartData {
	n := len(angles)
	if len(magnitudes) < n {
		n = len(magnitudes)
	}

	points := make([]ScatterPoint, 0, n)
	maxAbs := 0.0
	for i := 0; i < n; i++ {
		x := magnitudes[i] * math.Cos(angles[i])
		y := magnitudes[i] * math.Sin(angles[i])
		if math.Abs(x) > maxAbs {
			maxAbs = math.Abs(x)
		}
		if math.Abs(y) > maxAbs {
			maxAbs = math.Abs(y)
		}
		points = append(points, ScatterPoint{X: x, Y: y, Value: magnitudes[i]})
	}

	return PolarChartData{
		Detector:  detector,
		Points:    points,
		MaxAbs:    maxAbs,
		NumPoints: len(points),
	}
}
