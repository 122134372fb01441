package camera

import (
	"errors"
	"math"
	"testing"

	"github.com/df07/go-tile-raytracer/pkg/core"
	"github.com/df07/go-tile-raytracer/pkg/params"
)

const tolerance = 1e-9

func vecNear(a, b core.Vec3, tol float64) bool {
	return a.Subtract(b).Length() < tol
}

func TestPerspectiveCamera_CenterRayIsForward(t *testing.T) {
	tests := []struct {
		name      string
		direction core.Vec3
		up        core.Vec3
		fovy      float64
		aspect    float64
	}{
		{"looking +z", core.NewVec3(0, 0, 1), core.NewVec3(0, 1, 0), 90, 1},
		{"looking -z wide", core.NewVec3(0, 0, -3), core.NewVec3(0, 1, 0), 120, 16.0 / 9.0},
		{"oblique narrow", core.NewVec3(1, -2, 0.5), core.NewVec3(0, 0, 1), 10, 0.5},
		{"unnormalized up", core.NewVec3(-1, 0, 0), core.NewVec3(0, 5, 1), 60, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam := NewPerspectiveCamera(core.NewVec3(1, 2, 3), tt.direction, tt.up, tt.fovy, tt.aspect)
			ray := cam.GetRay(Sample{Screen: core.NewVec2(0.5, 0.5)})
			if !vecNear(ray.Direction, tt.direction.Normalize(), 1e-12) {
				t.Errorf("center direction = %v, want %v", ray.Direction, tt.direction.Normalize())
			}
			if ray.Origin != core.NewVec3(1, 2, 3) {
				t.Errorf("origin = %v", ray.Origin)
			}
		})
	}
}

func TestPerspectiveCamera_Corners(t *testing.T) {
	// 90 degree fov: image plane half extent equals the focal distance
	cam := NewPerspectiveCamera(core.Vec3{}, core.NewVec3(0, 0, 1), core.NewVec3(0, 1, 0), 90, 1)

	// dir x up points to -x for a camera looking +z with y up
	ray := cam.GetRay(Sample{Screen: core.NewVec2(1, 1)})
	want := core.NewVec3(-1, 1, 1).Normalize()
	if !vecNear(ray.Direction, want, tolerance) {
		t.Errorf("corner (1,1) direction = %v, want %v", ray.Direction, want)
	}

	ray = cam.GetRay(Sample{Screen: core.NewVec2(0, 0)})
	want = core.NewVec3(1, -1, 1).Normalize()
	if !vecNear(ray.Direction, want, tolerance) {
		t.Errorf("corner (0,0) direction = %v, want %v", ray.Direction, want)
	}
}

func TestPerspectiveCamera_ImageRegion(t *testing.T) {
	p := params.New().
		Set("direction", core.NewVec3(0, 0, 1)).
		Set("fovy", 90.0).
		Set("imageStart", core.NewVec2(0.5, 0.5)).
		Set("imageEnd", core.NewVec2(1, 1))
	cam := &PerspectiveCamera{}
	if err := cam.Commit(p); err != nil {
		t.Fatal(err)
	}

	// Screen (0,0) of the cropped view is the center of the full image
	ray := cam.GetRay(Sample{Screen: core.NewVec2(0, 0)})
	if !vecNear(ray.Direction, core.NewVec3(0, 0, 1), tolerance) {
		t.Errorf("cropped origin direction = %v, want forward", ray.Direction)
	}
}

func TestPerspectiveCamera_ImageRegionClamped(t *testing.T) {
	p := params.New().
		Set("imageStart", core.NewVec2(0.8, -1)).
		Set("imageEnd", core.NewVec2(0.2, 2))
	cam := &PerspectiveCamera{}
	if err := cam.Commit(p); err != nil {
		t.Fatal(err)
	}
	if cam.ImageStart != core.NewVec2(0.8, 0) || cam.ImageEnd != core.NewVec2(0.8, 1) {
		t.Errorf("region = %v..%v, want (0.8,0)..(0.8,1)", cam.ImageStart, cam.ImageEnd)
	}
}

func TestPerspectiveCamera_DepthOfFieldFocusPlane(t *testing.T) {
	p := params.New().
		Set("direction", core.NewVec3(0, 0, 1)).
		Set("apertureRadius", 0.5).
		Set("focusDistance", 4.0)
	cam := &PerspectiveCamera{}
	if err := cam.Commit(p); err != nil {
		t.Fatal(err)
	}

	// Every lens sample of the center pixel converges on the focus point
	focus := core.NewVec3(0, 0, 4)
	rng := core.NewRNG(2, 2)
	for i := 0; i < 50; i++ {
		ray := cam.GetRay(Sample{Screen: core.NewVec2(0.5, 0.5), Lens: rng.Get2D()})
		tz := (focus.Z - ray.Origin.Z) / ray.Direction.Z
		if p := ray.At(tz); !vecNear(p, focus, 1e-9) {
			t.Fatalf("lens sample %d reaches %v at the focus plane, want %v", i, p, focus)
		}
	}
}

func TestPerspectiveCamera_InvalidParameters(t *testing.T) {
	tests := []struct {
		name string
		p    *params.Params
	}{
		{"zero direction", params.New().Set("direction", core.Vec3{})},
		{"up parallel to direction", params.New().Set("direction", core.NewVec3(0, 1, 0))},
		{"fovy too large", params.New().Set("fovy", 180.0)},
		{"focus distance zero", params.New().Set("apertureRadius", 1.0).Set("focusDistance", 0.0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := (&PerspectiveCamera{}).Commit(tt.p); !errors.Is(err, core.ErrInvalidParameter) {
				t.Errorf("Commit() error = %v, want ErrInvalidParameter", err)
			}
		})
	}
}

func TestPerspectiveCamera_LanesMatchScalar(t *testing.T) {
	cam := NewPerspectiveCamera(core.NewVec3(0, 1, -5), core.NewVec3(0, -0.1, 1), core.NewVec3(0, 1, 0), 45, 1.5)

	var samples SampleLanes
	for i := 0; i < core.LaneWidth; i++ {
		samples.Screen.Set(i, core.NewVec2(float64(i)/8, 1-float64(i)/8))
	}
	mask := core.AllLanes()
	mask[5] = false

	var rays core.RayLanes
	cam.GetRayLanes(&samples, mask, &rays)

	active := rays.Active()
	for i := 0; i < core.LaneWidth; i++ {
		if active[i] != mask[i] {
			t.Errorf("lane %d active = %v, want %v", i, active[i], mask[i])
		}
		if !mask[i] {
			continue
		}
		want := cam.GetRay(Sample{Screen: samples.Screen.Get(i)})
		if got := rays.Get(i); got != want {
			t.Errorf("lane %d = %+v, want %+v", i, got, want)
		}
	}
}

func TestOrthographicCamera(t *testing.T) {
	p := params.New().
		Set("position", core.NewVec3(0, 0, -10)).
		Set("direction", core.NewVec3(0, 0, 1)).
		Set("height", 4.0).
		Set("aspect", 2.0)
	cam := &OrthographicCamera{}
	if err := cam.Commit(p); err != nil {
		t.Fatal(err)
	}

	center := cam.GetRay(Sample{Screen: core.NewVec2(0.5, 0.5)})
	if !vecNear(center.Origin, core.NewVec3(0, 0, -10), tolerance) || center.Direction != core.NewVec3(0, 0, 1) {
		t.Errorf("center ray = %+v", center)
	}

	corner := cam.GetRay(Sample{Screen: core.NewVec2(0, 0)})
	if !vecNear(corner.Origin, core.NewVec3(4, -2, -10), tolerance) {
		t.Errorf("corner origin = %v, want (4, -2, -10)", corner.Origin)
	}

	var _ Camera = cam
	if _, ok := any(cam).(LaneCamera); ok {
		t.Error("orthographic camera should not offer the lane entry point")
	}
	if !math.IsInf(center.T, 1) {
		t.Error("orthographic ray should be unbounded")
	}
}
