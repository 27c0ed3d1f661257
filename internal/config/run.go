// Package config loads the JSON run configuration: grid geometry, time
// discretisation and detector placement. Fields omitted from the JSON file
// fall back to defaults via the Get* accessors, so partial configs are safe.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DetectorConfig declares one detector. Positions are strings so symbolic
// anchors ("center") and numerics ("0.25") share one representation.
type DetectorConfig struct {
	Name   string   `json:"name"`
	Kind   string   `json:"kind"` // "point" or "circular"
	X      string   `json:"x"`
	Y      string   `json:"y"`
	Radius *float64 `json:"radius,omitempty"` // circular only, metres
}

// RunConfig is the root run configuration.
type RunConfig struct {
	GridRows *int     `json:"grid_rows,omitempty"`
	GridCols *int     `json:"grid_cols,omitempty"`
	SizeX    *float64 `json:"size_x,omitempty"` // metres
	SizeY    *float64 `json:"size_y,omitempty"` // metres
	NSteps   *int     `json:"n_steps,omitempty"`
	TimeStep *float64 `json:"time_step,omitempty"` // seconds

	SourceX *string `json:"source_x,omitempty"`
	SourceY *string `json:"source_y,omitempty"`

	Detectors []DetectorConfig `json:"detectors,omitempty"`

	PlotDir      *string `json:"plot_dir,omitempty"`
	DatabasePath *string `json:"database_path,omitempty"`
	ListenAddr   *string `json:"listen_addr,omitempty"`
}

// EmptyRunConfig returns a RunConfig with all fields unset.
func EmptyRunConfig() *RunConfig {
	return &RunConfig{}
}

// LoadRunConfig loads a RunConfig from a JSON file. The file must have a
// .json extension and stay under the max file size.
func LoadRunConfig(path string) (*RunConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyRunConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration values that are set.
func (c *RunConfig) Validate() error {
	if c.GridRows != nil && *c.GridRows <= 0 {
		return fmt.Errorf("grid_rows must be positive, got %d", *c.GridRows)
	}
	if c.GridCols != nil && *c.GridCols <= 0 {
		return fmt.Errorf("grid_cols must be positive, got %d", *c.GridCols)
	}
	if c.SizeX != nil && *c.SizeX <= 0 {
		return fmt.Errorf("size_x must be positive, got %f", *c.SizeX)
	}
	if c.SizeY != nil && *c.SizeY <= 0 {
		return fmt.Errorf("size_y must be positive, got %f", *c.SizeY)
	}
	if c.NSteps != nil && *c.NSteps <= 0 {
		return fmt.Errorf("n_steps must be positive, got %d", *c.NSteps)
	}
	if c.TimeStep != nil && *c.TimeStep <= 0 {
		return fmt.Errorf("time_step must be positive, got %f", *c.TimeStep)
	}

	names := make(map[string]bool)
	for i, d := range c.Detectors {
		if d.Name == "" {
			return fmt.Errorf("detector %d: name is required", i)
		}
		if names[d.Name] {
			return fmt.Errorf("detector %d: duplicate name %q", i, d.Name)
		}
		names[d.Name] = true

		switch d.Kind {
		case "point":
			if d.Radius != nil {
				return fmt.Errorf("detector %q: radius is only valid for circular detectors", d.Name)
			}
		case "circular":
			if d.Radius == nil || *d.Radius <= 0 {
				return fmt.Errorf("detector %q: circular detectors need a positive radius", d.Name)
			}
		default:
			return fmt.Errorf("detector %q: unknown kind %q", d.Name, d.Kind)
		}

		if d.X == "" || d.Y == "" {
			return fmt.Errorf("detector %q: both x and y are required", d.Name)
		}
	}
	return nil
}

// GetGridRows returns grid_rows or the default.
func (c *RunConfig) GetGridRows() int {
	if c.GridRows == nil {
		return 200
	}
	return *c.GridRows
}

// GetGridCols returns grid_cols or the default.
func (c *RunConfig) GetGridCols() int {
	if c.GridCols == nil {
		return 200
	}
	return *c.GridCols
}

// GetSizeX returns size_x or the default.
func (c *RunConfig) GetSizeX() float64 {
	if c.SizeX == nil {
		return 1.0
	}
	return *c.SizeX
}

// GetSizeY returns size_y or the default.
func (c *RunConfig) GetSizeY() float64 {
	if c.SizeY == nil {
		return 1.0
	}
	return *c.SizeY
}

// GetNSteps returns n_steps or the default.
func (c *RunConfig) GetNSteps() int {
	if c.NSteps == nil {
		return 100
	}
	return *c.NSteps
}

// GetTimeStep returns time_step or the default.
func (c *RunConfig) GetTimeStep() float64 {
	if c.TimeStep == nil {
		return 1e-3
	}
	return *c.TimeStep
}

// GetSourceX returns source_x or the default.
func (c *RunConfig) GetSourceX() string {
	if c.SourceX == nil || *c.SourceX == "" {
		return "center"
	}
	return *c.SourceX
}

// GetSourceY returns source_y or the default.
func (c *RunConfig) GetSourceY() string {
	if c.SourceY == nil || *c.SourceY == "" {
		return "center"
	}
	return *c.SourceY
}

// GetPlotDir returns plot_dir or the default.
func (c *RunConfig) GetPlotDir() string {
	if c.PlotDir == nil || *c.PlotDir == "" {
		return "plots"
	}
	return *c.PlotDir
}

// GetDatabasePath returns database_path or the default.
func (c *RunConfig) GetDatabasePath() string {
	if c.DatabasePath == nil || *c.DatabasePath == "" {
		return "runs.db"
	}
	return *c.DatabasePath
}

// GetListenAddr returns listen_addr or the default.
func (c *RunConfig) GetListenAddr() string {
	if c.ListenAddr == nil || *c.ListenAddr == "" {
		return "localhost:8470"
	}
	return *c.ListenAddr
}
