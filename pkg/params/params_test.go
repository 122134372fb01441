package params

import (
	"testing"

	"github.com/df07/go-tile-raytracer/pkg/core"
)

func TestParams_TypedGettersWithDefaults(t *testing.T) {
	p := New().
		Set("spp", 4).
		Set("aoDistance", float32(2.5)).
		Set("bgColor", core.NewVec3(0.1, 0.2, 0.3)).
		Set("imageStart", [2]float64{0.25, 0.5}).
		Set("singleSidedLighting", 0).
		Set("name", "mesh")

	if got := p.Int("spp", 1); got != 4 {
		t.Errorf("Int(spp) = %d, want 4", got)
	}
	if got := p.Int("missing", 7); got != 7 {
		t.Errorf("Int(missing) = %d, want default 7", got)
	}
	if got := p.Float("aoDistance", 0); got != 2.5 {
		t.Errorf("Float(aoDistance) = %f, want 2.5", got)
	}
	if got := p.Float("spp", 0); got != 4 {
		t.Errorf("Float(spp) = %f, want int promoted to 4", got)
	}
	if got := p.Vec3("bgColor", core.Vec3{}); got != core.NewVec3(0.1, 0.2, 0.3) {
		t.Errorf("Vec3(bgColor) = %v", got)
	}
	if got := p.Vec2("imageStart", core.Vec2{}); got != core.NewVec2(0.25, 0.5) {
		t.Errorf("Vec2(imageStart) = %v", got)
	}
	if got := p.Bool("singleSidedLighting", true); got {
		t.Error("Bool(singleSidedLighting) = true, want false from int 0")
	}
	if got := p.String("name", ""); got != "mesh" {
		t.Errorf("String(name) = %q", got)
	}
	if got := p.Float("name", 1.5); got != 1.5 {
		t.Errorf("Float on a string value = %f, want default", got)
	}
}

func TestParams_NilIsEmpty(t *testing.T) {
	var p *Params
	if p.Has("x") {
		t.Error("nil Params reports a value")
	}
	if got := p.Int("x", 3); got != 3 {
		t.Errorf("nil Params Int = %d, want default", got)
	}
	if p.Data("x") != nil || p.Object("x") != nil {
		t.Error("nil Params returned a reference")
	}
}

func TestData_Len(t *testing.T) {
	tests := []struct {
		name     string
		data     *Data
		expected int
	}{
		{"vec3f", NewFloatData(Vec3f, make([]float32, 9)), 3},
		{"vec3fa", NewFloatData(Vec3fa, make([]float32, 8)), 2},
		{"vec3i", NewIntData(Vec3i, make([]int32, 6)), 2},
		{"vec4i", NewIntData(Vec4i, make([]int32, 8)), 2},
		{"uchar", NewByteData(make([]uint8, 5)), 5},
		{"double", NewDoubleData(make([]float64, 4)), 4},
		{"nil", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.data.Len(); got != tt.expected {
				t.Errorf("Len() = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestParams_CloneAndMerge(t *testing.T) {
	base := New().Set("spp", 4).Set("jitter", "none")
	clone := base.Clone().Merge(New().Set("spp", 8).Set("tileSize", 16))

	if got := clone.Int("spp", 0); got != 8 {
		t.Errorf("merged spp = %d, want 8", got)
	}
	if got := clone.String("jitter", ""); got != "none" {
		t.Errorf("cloned jitter = %q, want none", got)
	}
	if base.Has("tileSize") || base.Int("spp", 0) != 4 {
		t.Errorf("Merge on a clone modified the original")
	}

	var missing *Params
	if got := missing.Clone().Merge(nil); got.Has("spp") {
		t.Errorf("clone of nil params should be empty")
	}
}
