package material

import (
	"errors"
	"math"
	"testing"

	"github.com/df07/go-tile-raytracer/pkg/core"
	"github.com/df07/go-tile-raytracer/pkg/params"
)

func TestOBJMaterial_Commit(t *testing.T) {
	tex := NewImageTexture(1, 1, []core.Vec3{core.NewVec3(0.5, 1, 1)})
	p := params.New().
		Set("Kd", core.NewVec3(1, 0.5, 0.25)).
		Set("Ks", core.NewVec3(0.2, 0.2, 0.2)).
		Set("Ns", 32).
		Set("map_Kd", tex)

	m := NewOBJMaterial()
	if err := m.Commit(p); err != nil {
		t.Fatalf("Commit() error: %v", err)
	}
	if m.Ns != 32 || m.D != 1 {
		t.Errorf("Ns=%f d=%f, want 32 and default 1", m.Ns, m.D)
	}
	if got := m.Diffuse(core.NewVec2(0.3, 0.3)); got != core.NewVec3(0.5, 0.5, 0.25) {
		t.Errorf("Diffuse() = %v, want textured Kd", got)
	}
}

func TestOBJMaterial_CommitOpacity(t *testing.T) {
	tests := []struct {
		d       float64
		wantErr bool
	}{
		{0, false},
		{0.5, false},
		{1, false},
		{-0.1, true},
		{1.5, true},
	}
	for _, tt := range tests {
		m := NewOBJMaterial()
		err := m.Commit(params.New().Set("d", tt.d))
		if tt.wantErr {
			if !errors.Is(err, core.ErrInvalidParameter) {
				t.Errorf("d=%v: error = %v, want ErrInvalidParameter", tt.d, err)
			}
			continue
		}
		if err != nil || m.D != tt.d {
			t.Errorf("d=%v: D=%f err=%v", tt.d, m.D, err)
		}
	}
}

func TestOBJMaterial_CommitRejectsBadTexture(t *testing.T) {
	m := NewOBJMaterial()
	err := m.Commit(params.New().Set("map_Kd", "not a texture"))
	if !errors.Is(err, core.ErrInvalidParameter) {
		t.Errorf("Commit() error = %v, want ErrInvalidParameter", err)
	}
}

func TestImageTexture_Nearest(t *testing.T) {
	white := core.NewVec3(1, 1, 1)
	black := core.Vec3{}
	// Row 0 is the top of the image
	texture := NewImageTexture(2, 2, []core.Vec3{white, black, black, white})

	tests := []struct {
		name     string
		uv       core.Vec2
		expected core.Vec3
	}{
		{"bottom left", core.NewVec2(0.1, 0.1), black},
		{"bottom right", core.NewVec2(0.9, 0.1), white},
		{"top left", core.NewVec2(0.1, 0.9), white},
		{"top right", core.NewVec2(0.9, 0.9), black},
		{"wraps positive", core.NewVec2(1.1, 1.9), white},
		{"wraps negative", core.NewVec2(-0.1, 0.1), white},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := texture.Evaluate(tt.uv); got != tt.expected {
				t.Errorf("Evaluate(%v) = %v, want %v", tt.uv, got, tt.expected)
			}
		})
	}
}

func TestImageTexture_BilinearMidpoint(t *testing.T) {
	texture := NewImageTexture(2, 1, []core.Vec3{core.Vec3{}, core.NewVec3(1, 1, 1)})
	texture.Filter = FilterBilinear

	// Halfway between the two texel centers
	got := texture.Evaluate(core.NewVec2(0.5, 0.5))
	if math.Abs(got.X-0.5) > 1e-12 {
		t.Errorf("bilinear midpoint = %v, want 0.5 grey", got)
	}
}

func TestCheckerboardTexture(t *testing.T) {
	a := core.NewVec3(1, 0, 0)
	b := core.NewVec3(0, 0, 1)
	tex := NewCheckerboardTexture(4, 4, 2, a, b)
	if tex.Pixels[0] != a || tex.Pixels[2] != b || tex.Pixels[2*4+2] != a {
		t.Error("checkerboard pattern mismatch")
	}
}
