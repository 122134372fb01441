package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/df07/go-tile-raytracer/pkg/core"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "render.json")
	data := `{"scene": "spheregrid", "width": 320, "strategy": "stream", "scale": 0.5}`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Scene != "spheregrid" || cfg.Width != 320 || cfg.Strategy != "stream" || cfg.Scale != 0.5 {
		t.Errorf("loaded fields wrong: %+v", cfg)
	}
	if cfg.Height != Default().Height || cfg.Frames != Default().Frames {
		t.Errorf("missing fields should keep defaults: %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{width: 3"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(filepath.Join(dir, "missing.json")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file error = %v, want os.ErrNotExist", err)
	}
	if _, err := Load(bad); err == nil {
		t.Error("expected a parse error")
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name      string
		overrides RenderConfig
		check     func(RenderConfig) bool
		wantErr   error
	}{
		{
			name:      "defaults",
			overrides: RenderConfig{},
			check:     func(c RenderConfig) bool { return c.Scene == "cornell" && c.Workers > 0 },
		},
		{
			name:      "flags override",
			overrides: RenderConfig{Width: 64, SPP: 4, Strategy: "lanes", Workers: 3},
			check: func(c RenderConfig) bool {
				return c.Width == 64 && c.Height == 400 && c.SPP == 4 && c.Strategy == "lanes" && c.Workers == 3
			},
		},
		{
			name:      "unknown strategy",
			overrides: RenderConfig{Strategy: "fibers"},
			wantErr:   core.ErrInvalidParameter,
		},
		{
			name:      "unknown scene",
			overrides: RenderConfig{Scene: "dragon"},
			wantErr:   core.ErrInvalidParameter,
		},
		{
			name:      "unknown integrator",
			overrides: RenderConfig{Integrator: "bdpt"},
			wantErr:   core.ErrInvalidParameter,
		},
		{
			name:      "unsupported output",
			overrides: RenderConfig{Output: "out.bmp"},
			wantErr:   core.ErrInvalidParameter,
		},
		{
			name:      "negative size",
			overrides: RenderConfig{Width: -1},
			wantErr:   core.ErrInvalidParameter,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Resolve(Default(), tt.overrides)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if !tt.check(cfg) {
				t.Errorf("resolved config %+v", cfg)
			}
		})
	}
}

func TestOutputSize(t *testing.T) {
	tests := []struct {
		scale float64
		w, h  int
	}{
		{0, 400, 300},
		{1, 400, 300},
		{0.5, 200, 150},
		{2, 800, 600},
		{0.001, 1, 1},
	}
	for _, tt := range tests {
		cfg := RenderConfig{Width: 400, Height: 300, Scale: tt.scale}
		if w, h := cfg.OutputSize(); w != tt.w || h != tt.h {
			t.Errorf("scale %v: got %dx%d, want %dx%d", tt.scale, w, h, tt.w, tt.h)
		}
	}
}

func TestDefaultWorkers(t *testing.T) {
	if n := DefaultWorkers(); n < 1 {
		t.Errorf("DefaultWorkers() = %d", n)
	}
}
