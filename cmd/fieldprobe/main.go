// Command fieldprobe runs a synthetic 2D field simulation with configured
// detectors, saves their plots, records the run to SQLite and optionally
// serves the chart monitor.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/wavelab-data/field.report/internal/config"
	"github.com/wavelab-data/field.report/internal/fdtd/detector"
	"github.com/wavelab-data/field.report/internal/fdtd/field"
	"github.com/wavelab-data/field.report/internal/fdtd/grid"
	"github.com/wavelab-data/field.report/internal/fdtd/monitor"
	"github.com/wavelab-data/field.report/internal/fdtd/plotting"
	"github.com/wavelab-data/field.report/internal/fdtd/source"
	"github.com/wavelab-data/field.report/internal/fdtd/storage"
)

func main() {
	configPath := flag.String("config", "", "path to the run config JSON (optional; defaults apply)")
	plotDir := flag.String("plots", "", "override plot output directory")
	dbPath := flag.String("db", "", "override run database path")
	listen := flag.String("listen", "", "override monitor listen address")
	serve := flag.Bool("serve", false, "serve the chart monitor after the run")
	flag.Parse()

	if err := run(*configPath, *plotDir, *dbPath, *listen, *serve); err != nil {
		log.Fatalf("fieldprobe: %v", err)
	}
}

func run(configPath, plotDir, dbPath, listen string, serve bool) error {
	cfg := config.EmptyRunConfig()
	if configPath != "" {
		loaded, err := config.LoadRunConfig(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if plotDir == "" {
		plotDir = cfg.GetPlotDir()
	}
	if dbPath == "" {
		dbPath = cfg.GetDatabasePath()
	}
	if listen == "" {
		listen = cfg.GetListenAddr()
	}

	g, err := grid.New(cfg.GetGridRows(), cfg.GetGridCols(), cfg.GetSizeX(), cfg.GetSizeY(), cfg.GetNSteps(), cfg.GetTimeStep())
	if err != nil {
		return fmt.Errorf("build grid: %w", err)
	}
	rows, cols := g.Shape()
	log.Printf("[sim] grid (%d, %d) over %.3g x %.3g m, %d steps of %.3g s", rows, cols, g.SizeX(), g.SizeY(), g.NSteps(), g.TimeStep())

	points, circulars, err := buildDetectors(g, cfg)
	if err != nil {
		return err
	}

	srcX, err := grid.ParseCoord(cfg.GetSourceX())
	if err != nil {
		return fmt.Errorf("source x: %w", err)
	}
	srcY, err := grid.ParseCoord(cfg.GetSourceY())
	if err != nil {
		return fmt.Errorf("source y: %w", err)
	}
	ripple, err := source.NewRipple(g, srcX, srcY)
	if err != nil {
		return err
	}

	h, err := field.NewHistory(rows, cols)
	if err != nil {
		return err
	}

	observers := make([]source.Observer, 0, len(points)+len(circulars))
	overlays := make([]plotting.Overlayer, 0, len(points)+len(circulars))
	for _, d := range points {
		observers = append(observers, d)
		overlays = append(overlays, d)
	}
	for _, d := range circulars {
		observers = append(observers, d)
		overlays = append(overlays, d)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("[sim] running %d steps with %d detectors", g.NSteps(), len(observers))
	if err := ripple.Run(ctx, h, observers...); err != nil {
		return err
	}

	if err := savePlots(g, plotDir, points, circulars, overlays); err != nil {
		return err
	}
	if err := recordRun(g, dbPath, points, circulars); err != nil {
		return err
	}

	if serve {
		ws := monitor.NewWebServer(g)
		for name, d := range points {
			ws.RegisterPoint(name, d)
		}
		for name, d := range circulars {
			ws.RegisterCircular(name, d)
		}
		return ws.Serve(listen)
	}
	return nil
}

// buildDetectors constructs the configured detectors, falling back to a
// default pair when the config names none.
func buildDetectors(g *grid.Grid, cfg *config.RunConfig) (map[string]*detector.PointDetector, map[string]*detector.CircularDetector, error) {
	points := make(map[string]*detector.PointDetector)
	circulars := make(map[string]*detector.CircularDetector)

	decls := cfg.Detectors
	if len(decls) == 0 {
		quarter := fmt.Sprintf("%g", g.SizeX()/4)
		radius := g.SizeX() / 8
		decls = []config.DetectorConfig{
			{Name: "probe", Kind: "point", X: quarter, Y: "center"},
			{Name: "ring", Kind: "circular", X: "center", Y: "center", Radius: &radius},
		}
	}

	for _, dc := range decls {
		x, err := grid.ParseCoord(dc.X)
		if err != nil {
			return nil, nil, fmt.Errorf("detector %q: %w", dc.Name, err)
		}
		y, err := grid.ParseCoord(dc.Y)
		if err != nil {
			return nil, nil, fmt.Errorf("detector %q: %w", dc.Name, err)
		}

		switch dc.Kind {
		case "point":
			d, err := detector.NewPoint(g, x, y)
			if err != nil {
				return nil, nil, fmt.Errorf("detector %q: %w", dc.Name, err)
			}
			points[dc.Name] = d
		case "circular":
			d, err := detector.NewCircular(g, x, y, *dc.Radius)
			if err != nil {
				return nil, nil, fmt.Errorf("detector %q: %w", dc.Name, err)
			}
			circulars[dc.Name] = d
		default:
			return nil, nil, fmt.Errorf("detector %q: unknown kind %q", dc.Name, dc.Kind)
		}
	}
	return points, circulars, nil
}

func savePlots(g *grid.Grid, plotDir string, points map[string]*detector.PointDetector, circulars map[string]*detector.CircularDetector, overlays []plotting.Overlayer) error {
	for name, d := range points {
		times, values := d.TimeSeries()
		scene, err := plotting.TimeSeriesScene(name, times, values)
		if err != nil {
			return fmt.Errorf("plot %q: %w", name, err)
		}
		if err := scene.Save(plotDir, name); err != nil {
			return err
		}
	}

	for name, d := range circulars {
		angles, magnitudes, err := d.AngularProfile(0, g.NSteps()-1)
		if err != nil {
			return fmt.Errorf("profile %q: %w", name, err)
		}
		scene, err := plotting.PolarScene(name, angles, magnitudes)
		if err != nil {
			return fmt.Errorf("plot %q: %w", name, err)
		}
		if err := scene.Save(plotDir, name); err != nil {
			return err
		}
	}

	domain, err := plotting.SpatialScene(g.SizeX(), g.SizeY(), overlays...)
	if err != nil {
		return fmt.Errorf("spatial plot: %w", err)
	}
	if err := domain.Save(plotDir, "domain"); err != nil {
		return err
	}
	log.Printf("[sim] plots saved to %s", plotDir)
	return nil
}

func recordRun(g *grid.Grid, dbPath string, points map[string]*detector.PointDetector, circulars map[string]*detector.CircularDetector) error {
	db, err := storage.Open(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	rows, cols := g.Shape()
	runID, err := db.CreateRun(rows, cols, g.NSteps())
	if err != nil {
		return err
	}

	for name, d := range points {
		times, values := d.TimeSeries()
		if err := db.RecordPointSeries(runID, name, times, values); err != nil {
			return fmt.Errorf("record %q: %w", name, err)
		}
	}
	for name, d := range circulars {
		angles, magnitudes, err := d.AngularProfile(0, g.NSteps()-1)
		if err != nil {
			return fmt.Errorf("profile %q: %w", name, err)
		}
		if err := db.RecordAngularProfile(runID, name, angles, magnitudes); err != nil {
			return fmt.Errorf("record %q: %w", name, err)
		}
	}

	log.Printf("[sim] run %s recorded to %s", runID, dbPath)
	return nil
}
