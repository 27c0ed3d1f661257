package monitor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sort"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	gocache "github.com/patrickmn/go-cache"

	"github.com/wavelab-data/field.report/internal/fdtd/detector"
	"github.com/wavelab-data/field.report/internal/fdtd/grid"
)

// WebServer serves detector charts. Register detectors before Serve; the
// handlers read detector geometry and data but never mutate them, so the
// server may run while a solver is between steps as long as no UpdateData
// call is in flight.
type WebServer struct {
	mux  *http.ServeMux
	grid *grid.Grid

	points    map[string]*detector.PointDetector
	circulars map[string]*detector.CircularDetector

	// prepared chart data, keyed by detector name and sampled step
	// count, so reloading a dashboard after the run is cheap
	cache *gocache.Cache
}

// NewWebServer creates a server for detectors on the given grid.
func NewWebServer(g *grid.Grid) *WebServer {
	ws := &WebServer{
		mux:       http.NewServeMux(),
		grid:      g,
		points:    make(map[string]*detector.PointDetector),
		circulars: make(map[string]*detector.CircularDetector),
		cache:     gocache.New(30*time.Second, time.Minute),
	}
	ws.mux.HandleFunc("/", ws.handleDashboard)
	ws.mux.HandleFunc("/charts/timeseries", ws.handleTimeSeries)
	ws.mux.HandleFunc("/charts/polar", ws.handlePolar)
	ws.mux.HandleFunc("/api/detectors", ws.handleDetectors)
	return ws
}

// RegisterPoint adds a point detector under a name.
func (ws *WebServer) RegisterPoint(name string, d *detector.PointDetector) {
	ws.points[name] = d
}

// RegisterCircular adds a circular detector under a name.
func (ws *WebServer) RegisterCircular(name string, d *detector.CircularDetector) {
	ws.circulars[name] = d
}

// Handler returns the server's HTTP handler.
func (ws *WebServer) Handler() http.Handler { return ws.mux }

// Serve blocks listening on addr.
func (ws *WebServer) Serve(addr string) error {
	log.Printf("[monitor] listening on %s", addr)
	return http.ListenAndServe(addr, ws.mux)
}

// handleDetectors lists registered detectors as JSON.
func (ws *WebServer) handleDetectors(w http.ResponseWriter, r *http.Request) {
	type info struct {
		Name string  `json:"name"`
		Kind string  `json:"kind"`
		X    float64 `json:"x"`
		Y    float64 `json:"y"`
	}
	var out []info
	for name, d := range ws.points {
		out = append(out, info{Name: name, Kind: "point", X: d.Position().X, Y: d.Position().Y})
	}
	for name, d := range ws.circulars {
		out = append(out, info{Name: name, Kind: "circular", X: d.Position().X, Y: d.Position().Y})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(out); err != nil {
		log.Printf("[monitor] encode detectors: %v", err)
	}
}

// handleTimeSeries renders a line chart (HTML) for a point detector.
// Query params: detector (required), max_points (optional; default 2000).
func (ws *WebServer) handleTimeSeries(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("detector")
	d, ok := ws.points[name]
	if !ok {
		ws.writeJSONError(w, http.StatusNotFound, fmt.Sprintf("no point detector %q", name))
		return
	}

	times, values := d.TimeSeries()

	var data TimeSeriesChartData
	key := fmt.Sprintf("timeseries:%s:%d", name, len(values))
	if cached, hit := ws.cache.Get(key); hit {
		data = cached.(TimeSeriesChartData)
	} else {
		data = PrepareTimeSeries(name, times, values, maxPointsParam(r, 2000))
		ws.cache.Set(key, data, gocache.DefaultExpiration)
	}

	xs := make([]string, len(data.Points))
	ys := make([]opts.LineData, len(data.Points))
	for i, p := range data.Points {
		xs[i] = fmt.Sprintf("%.3g", p.Time)
		ys[i] = opts.LineData{Value: p.Value}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Detector Time Series", Theme: "dark", Width: "1200px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: "Point Detector", Subtitle: fmt.Sprintf("detector=%s points=%d stride=%d", name, data.NumPoints, data.Stride)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Time (s)"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Amplitude"}),
	)
	line.SetXAxis(xs)
	line.AddSeries(name, ys)

	ws.renderChart(w, line)
}

// handlePolar renders the angular profile of a circular detector as an XY
// scatter (HTML). Query params: detector (required), step (optional;
// default -1, the most recent sample).
func (ws *WebServer) handlePolar(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("detector")
	d, ok := ws.circulars[name]
	if !ok {
		ws.writeJSONError(w, http.StatusNotFound, fmt.Sprintf("no circular detector %q", name))
		return
	}

	step := -1
	if s := r.URL.Query().Get("step"); s != "" {
		if _, err := fmt.Sscanf(s, "%d", &step); err != nil {
			ws.writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("bad step %q", s))
			return
		}
	}

	angles, magnitudes, err := d.AngularProfileAt(step)
	if err != nil {
		ws.writeJSONError(w, http.StatusConflict, fmt.Sprintf("angular profile: %v", err))
		return
	}

	var data PolarChartData
	key := fmt.Sprintf("polar:%s:%d:%d", name, step, len(magnitudes))
	if cached, hit := ws.cache.Get(key); hit {
		data = cached.(PolarChartData)
	} else {
		data = PreparePolarProfile(name, angles, magnitudes)
		ws.cache.Set(key, data, gocache.DefaultExpiration)
	}

	points := make([]opts.ScatterData, len(data.Points))
	for i, p := range data.Points {
		points[i] = opts.ScatterData{Value: []interface{}{p.X, p.Y, p.Value}}
	}

	pad := data.MaxAbs * 1.05
	if pad == 0 {
		pad = 1.0
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Detector Angular Profile", Theme: "dark", Width: "900px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{Title: "Circular Detector Profile", Subtitle: fmt.Sprintf("detector=%s members=%d step=%d", name, data.NumPoints, step)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: -pad, Max: pad}),
		charts.WithYAxisOpts(opts.YAxis{Min: -pad, Max: pad}),
	)
	scatter.AddSeries("profile", points, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 4}))

	ws.renderChart(w, scatter)
}

// handleDashboard renders a page with iframes to every detector chart.
func (ws *WebServer) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	var buf bytes.Buffer
	buf.WriteString("<!DOCTYPE html><html><head><title>Field Detectors</title></head><body style=\"background:#111;color:#eee\">")
	buf.WriteString("<h1>Field Detectors</h1>")
	for _, name := range sortedKeys(ws.points) {
		fmt.Fprintf(&buf, "<h2>%s (point)</h2><iframe src=\"/charts/timeseries?detector=%s\" width=\"1250\" height=\"650\" frameborder=\"0\"></iframe>", name, name)
	}
	for _, name := range sortedKeys(ws.circulars) {
		fmt.Fprintf(&buf, "<h2>%s (circular)</h2><iframe src=\"/charts/polar?detector=%s\" width=\"950\" height=\"950\" frameborder=\"0\"></iframe>", name, name)
	}
	buf.WriteString("</body></html>")

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

type renderer interface {
	Render(w io.Writer) error
}

func (ws *WebServer) renderChart(w http.ResponseWriter, chart renderer) {
	var buf bytes.Buffer
	if err := chart.Render(&buf); err != nil {
		ws.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to render chart: %v", err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (ws *WebServer) writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func maxPointsParam(r *http.Request, fallback int) int {
	mp := r.URL.Query().Get("max_points")
	if mp == "" {
		return fallback
	}
	var v int
	if _, err := fmt.Sscanf(mp, "%d", &v); err != nil || v < 100 || v > 50000 {
		return fallback
	}
	return v
}

func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
