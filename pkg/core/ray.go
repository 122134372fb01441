package core

import "math"

// InvalidID marks a ray that has not hit any geometry, primitive or instance
const InvalidID int32 = -1

// Ray represents a ray with an origin and direction, its valid interval [T0, T],
// and the hit outputs written by an intersector
type Ray struct {
	Origin    Vec3
	Direction Vec3
	T0        float64 // Start of the valid interval
	T         float64 // End of the valid interval; hit distance after a successful intersection

	Ng     Vec3    // Unnormalized geometric normal of the hit
	U, V   float64 // Barycentric coordinates of the hit
	GeomID int32
	PrimID int32
	InstID int32
}

// NewRay creates a new ray covering [0, +Inf) with no hit recorded
func NewRay(origin, direction Vec3) Ray {
	return NewRaySegment(origin, direction, 0, math.Inf(1))
}

// NewRaySegment creates a ray restricted to [t0, t]
func NewRaySegment(origin, direction Vec3, t0, t float64) Ray {
	return Ray{
		Origin:    origin,
		Direction: direction,
		T0:        t0,
		T:         t,
		GeomID:    InvalidID,
		PrimID:    InvalidID,
		InstID:    InvalidID,
	}
}

// At returns the point at parameter t along the ray
func (r Ray) At(t float64) Vec3 {
	return r.Origin.Add(r.Direction.Multiply(t))
}

// HitPoint returns the point at the current end of the interval
func (r Ray) HitPoint() Vec3 {
	return r.At(r.T)
}

// Hit reports whether an intersector recorded a hit on this ray
func (r Ray) Hit() bool {
	return r.GeomID != InvalidID
}

// Active reports whether the valid interval is non-empty
func (r Ray) Active() bool {
	return r.T0 <= r.T
}

// Disable empties the valid interval by swapping T0 and T
func (r *Ray) Disable() {
	if r.T0 <= r.T {
		r.T0, r.T = r.T, r.T0
	}
}
