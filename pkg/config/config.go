// Package config holds the host-side render settings read from a JSON file
// and command-line flags.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/shirou/gopsutil/v3/cpu"

	"github.com/df07/go-tile-raytracer/pkg/core"
	"github.com/df07/go-tile-raytracer/pkg/integrator"
	"github.com/df07/go-tile-raytracer/pkg/output"
	"github.com/df07/go-tile-raytracer/pkg/renderer"
	"github.com/df07/go-tile-raytracer/pkg/scene"
)

// RenderConfig describes one CLI render
type RenderConfig struct {
	Scene      string  `json:"scene"`      // Demo scene name
	Width      int     `json:"width"`      // Image width
	Height     int     `json:"height"`     // Image height
	SPP        int     `json:"spp"`        // Samples per pixel per frame
	Frames     int     `json:"frames"`     // Progressive frames accumulated
	TileSize   int     `json:"tileSize"`   // Tile edge length, a power of two
	Strategy   string  `json:"strategy"`   // Execution strategy name
	Integrator string  `json:"integrator"` // Shading model name
	Output     string  `json:"output"`     // Image path, the extension picks the format
	Workers    int     `json:"workers"`    // Tile workers, 0 = physical cores
	Scale      float64 `json:"scale"`      // Resample factor applied before saving, 0 or 1 = none
}

// Default returns the configuration used when neither file nor flags set a field
func Default() RenderConfig {
	return RenderConfig{
		Scene:      "cornell",
		Width:      400,
		Height:     400,
		SPP:        1,
		Frames:     8,
		TileSize:   renderer.DefaultTileSize,
		Strategy:   renderer.StreamLanes.Name,
		Integrator: "scivis",
		Output:     filepath.Join("output", "render.png"),
	}
}

// Load reads a JSON config from path. Fields missing from the file keep their defaults.
func Load(path string) (RenderConfig, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Resolve overlays the non-zero fields of overrides on base, fills in the worker
// count and validates the result
func Resolve(base, overrides RenderConfig) (RenderConfig, error) {
	cfg := base
	if overrides.Scene != "" {
		cfg.Scene = overrides.Scene
	}
	if overrides.Width != 0 {
		cfg.Width = overrides.Width
	}
	if overrides.Height != 0 {
		cfg.Height = overrides.Height
	}
	if overrides.SPP != 0 {
		cfg.SPP = overrides.SPP
	}
	if overrides.Frames != 0 {
		cfg.Frames = overrides.Frames
	}
	if overrides.TileSize != 0 {
		cfg.TileSize = overrides.TileSize
	}
	if overrides.Strategy != "" {
		cfg.Strategy = overrides.Strategy
	}
	if overrides.Integrator != "" {
		cfg.Integrator = overrides.Integrator
	}
	if overrides.Output != "" {
		cfg.Output = overrides.Output
	}
	if overrides.Workers != 0 {
		cfg.Workers = overrides.Workers
	}
	if overrides.Scale != 0 {
		cfg.Scale = overrides.Scale
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers()
	}
	return cfg, cfg.Validate()
}

// Validate checks every field that the renderer would otherwise reject later
func (c RenderConfig) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("image size %dx%d: %w", c.Width, c.Height, core.ErrInvalidParameter)
	}
	if c.SPP < 1 || c.Frames < 1 {
		return fmt.Errorf("spp %d frames %d must be positive: %w", c.SPP, c.Frames, core.ErrInvalidParameter)
	}
	if c.Scale < 0 {
		return fmt.Errorf("scale %f: %w", c.Scale, core.ErrInvalidParameter)
	}
	if _, err := renderer.ParseStrategy(c.Strategy); err != nil {
		return err
	}
	if !slices.Contains(integrator.Names(), c.Integrator) {
		return fmt.Errorf("unknown integrator %q (have %v): %w", c.Integrator, integrator.Names(), core.ErrInvalidParameter)
	}
	if !slices.Contains(scene.Names(), c.Scene) {
		return fmt.Errorf("unknown scene %q (have %v): %w", c.Scene, scene.Names(), core.ErrInvalidParameter)
	}
	if !slices.Contains(output.Formats(), strings.ToLower(filepath.Ext(c.Output))) {
		return fmt.Errorf("output %q: format must be one of %v: %w", c.Output, output.Formats(), core.ErrInvalidParameter)
	}
	return nil
}

// OutputSize returns the size of the saved image after scaling
func (c RenderConfig) OutputSize() (int, int) {
	if c.Scale == 0 || c.Scale == 1 {
		return c.Width, c.Height
	}
	return max(1, int(float64(c.Width)*c.Scale+0.5)), max(1, int(float64(c.Height)*c.Scale+0.5))
}

// DefaultWorkers returns the number of physical cores, or the logical CPU count
// when the platform does not report cores
func DefaultWorkers() int {
	n, err := cpu.Counts(false)
	if err != nil || n <= 0 {
		core.Logger().Debug("physical core count unavailable", "error", err)
		return runtime.NumCPU()
	}
	return n
}
