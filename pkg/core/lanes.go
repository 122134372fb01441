package core

// LaneWidth is the number of rays processed in lockstep by lane-parallel code.
// Lane types are fixed-size arrays so simple loops over them can be auto-vectorized.
const LaneWidth = 8

// Lanes holds one float64 per lane
type Lanes [LaneWidth]float64

// IDLanes holds one int32 per lane
type IDLanes [LaneWidth]int32

// Mask marks which lanes are active
type Mask [LaneWidth]bool

// AllLanes returns a mask with every lane active
func AllLanes() Mask {
	var m Mask
	for i := range m {
		m[i] = true
	}
	return m
}

// Any reports whether at least one lane is active
func (m Mask) Any() bool {
	for _, on := range m {
		if on {
			return true
		}
	}
	return false
}

// Count returns the number of active lanes
func (m Mask) Count() int {
	n := 0
	for _, on := range m {
		if on {
			n++
		}
	}
	return n
}

// Vec3Lanes stores LaneWidth vectors in Structure-of-Arrays layout
type Vec3Lanes struct {
	X, Y, Z Lanes
}

// Get returns lane i as a Vec3
func (v *Vec3Lanes) Get(i int) Vec3 {
	return Vec3{v.X[i], v.Y[i], v.Z[i]}
}

// Set writes a Vec3 into lane i
func (v *Vec3Lanes) Set(i int, value Vec3) {
	v.X[i] = value.X
	v.Y[i] = value.Y
	v.Z[i] = value.Z
}

// Vec2Lanes stores LaneWidth 2D vectors in Structure-of-Arrays layout
type Vec2Lanes struct {
	X, Y Lanes
}

// Get returns lane i as a Vec2
func (v *Vec2Lanes) Get(i int) Vec2 {
	return Vec2{v.X[i], v.Y[i]}
}

// Set writes a Vec2 into lane i
func (v *Vec2Lanes) Set(i int, value Vec2) {
	v.X[i] = value.X
	v.Y[i] = value.Y
}

// RayLanes is the lane-parallel form of Ray.
// A lane is active while T0[i] <= T[i]; disabling a lane swaps the two bounds.
type RayLanes struct {
	Origin    Vec3Lanes
	Direction Vec3Lanes
	T0, T     Lanes

	Ng     Vec3Lanes
	U, V   Lanes
	GeomID IDLanes
	PrimID IDLanes
	InstID IDLanes
}

// Get extracts lane i as a scalar ray
func (r *RayLanes) Get(i int) Ray {
	return Ray{
		Origin:    r.Origin.Get(i),
		Direction: r.Direction.Get(i),
		T0:        r.T0[i],
		T:         r.T[i],
		Ng:        r.Ng.Get(i),
		U:         r.U[i],
		V:         r.V[i],
		GeomID:    r.GeomID[i],
		PrimID:    r.PrimID[i],
		InstID:    r.InstID[i],
	}
}

// Set stores a scalar ray into lane i
func (r *RayLanes) Set(i int, ray Ray) {
	r.Origin.Set(i, ray.Origin)
	r.Direction.Set(i, ray.Direction)
	r.T0[i] = ray.T0
	r.T[i] = ray.T
	r.Ng.Set(i, ray.Ng)
	r.U[i] = ray.U
	r.V[i] = ray.V
	r.GeomID[i] = ray.GeomID
	r.PrimID[i] = ray.PrimID
	r.InstID[i] = ray.InstID
}

// Active returns the mask of lanes whose interval is non-empty
func (r *RayLanes) Active() Mask {
	var m Mask
	for i := range m {
		m[i] = r.T0[i] <= r.T[i]
	}
	return m
}

// Disable empties the interval of every lane not set in mask
func (r *RayLanes) Disable(mask Mask) {
	for i := range mask {
		if !mask[i] && r.T0[i] <= r.T[i] {
			r.T0[i], r.T[i] = r.T[i], r.T0[i]
		}
	}
}

// HitMask returns the lanes of mask that recorded a hit
func (r *RayLanes) HitMask(mask Mask) Mask {
	var m Mask
	for i := range m {
		m[i] = mask[i] && r.GeomID[i] != InvalidID
	}
	return m
}
