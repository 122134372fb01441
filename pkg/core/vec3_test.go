package core

import (
	"math"
	"testing"
)

func vecNear(a, b Vec3, tol float64) bool {
	return math.Abs(a.X-b.X) < tol && math.Abs(a.Y-b.Y) < tol && math.Abs(a.Z-b.Z) < tol
}

func TestVec3_CrossAndDot(t *testing.T) {
	x := NewVec3(1, 0, 0)
	y := NewVec3(0, 1, 0)
	if got := x.Cross(y); got != NewVec3(0, 0, 1) {
		t.Errorf("x cross y = %v, want +z", got)
	}
	if got := x.Dot(y); got != 0 {
		t.Errorf("x dot y = %f, want 0", got)
	}
}

func TestVec3_FaceForward(t *testing.T) {
	tests := []struct {
		name     string
		normal   Vec3
		incident Vec3
		expected Vec3
	}{
		{"facing incoming ray", NewVec3(0, 0, -1), NewVec3(0, 0, 1), NewVec3(0, 0, -1)},
		{"facing away", NewVec3(0, 0, 1), NewVec3(0, 0, 1), NewVec3(0, 0, -1)},
		{"perpendicular", NewVec3(1, 0, 0), NewVec3(0, 0, 1), NewVec3(1, 0, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.normal.FaceForward(tt.incident); got != tt.expected {
				t.Errorf("FaceForward() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestVec3_Reflect(t *testing.T) {
	n := NewVec3(0, 1, 0)
	l := NewVec3(1, 1, 0).Normalize()
	r := l.Reflect(n)
	want := NewVec3(-1, 1, 0).Normalize()
	if !vecNear(r, want, 1e-12) {
		t.Errorf("Reflect() = %v, want %v", r, want)
	}
}

func TestFrame_Orthonormal(t *testing.T) {
	normals := []Vec3{
		NewVec3(0, 0, 1),
		NewVec3(1, 0, 0),
		NewVec3(0, -1, 0),
		NewVec3(1, 2, 3).Normalize(),
		NewVec3(-0.7, 0.1, 0.7).Normalize(),
	}

	for _, n := range normals {
		tv, bv := Frame(n)
		if math.Abs(tv.Length()-1) > 1e-9 || math.Abs(bv.Length()-1) > 1e-9 {
			t.Errorf("Frame(%v) not unit: |t|=%f |b|=%f", n, tv.Length(), bv.Length())
		}
		if math.Abs(tv.Dot(n)) > 1e-9 || math.Abs(bv.Dot(n)) > 1e-9 || math.Abs(tv.Dot(bv)) > 1e-9 {
			t.Errorf("Frame(%v) not orthogonal", n)
		}
	}
}

func TestAABB_Hit(t *testing.T) {
	box := NewAABBFromPoints(NewVec3(-1, -1, -1), NewVec3(1, 1, 1))

	tests := []struct {
		name   string
		origin Vec3
		dir    Vec3
		tMax   float64
		hit    bool
	}{
		{"straight through", NewVec3(0, 0, -5), NewVec3(0, 0, 1), math.Inf(1), true},
		{"miss to the side", NewVec3(3, 0, -5), NewVec3(0, 0, 1), math.Inf(1), false},
		{"segment too short", NewVec3(0, 0, -5), NewVec3(0, 0, 1), 2, false},
		{"pointing away", NewVec3(0, 0, -5), NewVec3(0, 0, -1), math.Inf(1), false},
		{"axis aligned on face plane", NewVec3(1, 0, -5), NewVec3(0, 0, 1), math.Inf(1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := box.Hit(tt.origin, Reciprocal(tt.dir), 0, tt.tMax); got != tt.hit {
				t.Errorf("Hit() = %v, want %v", got, tt.hit)
			}
		})
	}
}

func TestRay_DisableAndActive(t *testing.T) {
	ray := NewRay(Vec3{}, NewVec3(0, 0, 1))
	if !ray.Active() {
		t.Fatal("new ray should be active")
	}
	if ray.Hit() {
		t.Fatal("new ray should not report a hit")
	}
	ray.Disable()
	if ray.Active() {
		t.Error("disabled ray should be inactive")
	}
}

func TestRayLanes_GetSetRoundTrip(t *testing.T) {
	var lanes RayLanes
	for i := 0; i < LaneWidth; i++ {
		r := NewRaySegment(NewVec3(float64(i), 0, 0), NewVec3(0, 0, 1), 0.5, float64(10+i))
		r.PrimID = int32(i)
		lanes.Set(i, r)
	}
	for i := 0; i < LaneWidth; i++ {
		r := lanes.Get(i)
		if r.Origin.X != float64(i) || r.T != float64(10+i) || r.PrimID != int32(i) || r.GeomID != InvalidID {
			t.Errorf("lane %d round trip mismatch: %+v", i, r)
		}
	}

	mask := AllLanes()
	mask[3] = false
	lanes.Disable(mask)
	active := lanes.Active()
	if active[3] || active.Count() != LaneWidth-1 {
		t.Errorf("Disable() left active mask %v", active)
	}
}
