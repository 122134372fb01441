package geometry

import (
	"github.com/df07/go-tile-raytracer/pkg/core"
)

// Geometry is a finalized collection of primitives that a scene can register under a geomID.
// Every method is read-only after Finalize and safe for concurrent use.
type Geometry interface {
	// Bounds returns the world-space bounding box of all primitives
	Bounds() core.AABB

	// PrimitiveCount returns the number of primitives
	PrimitiveCount() int

	// PrimitiveBounds returns the bounding box of one primitive
	PrimitiveBounds(primID int) core.AABB

	// IntersectPrimitive records a hit on ray if primID is hit closer than ray.T
	IntersectPrimitive(primID int, geomID int32, ray *core.Ray) bool

	// OccludedPrimitive reports whether primID is hit anywhere in [ray.T0, ray.T]
	OccludedPrimitive(primID int, ray *core.Ray) bool

	// PostIntersect fills the geometry-specific attributes of dg for a completed hit
	PostIntersect(dg *DifferentialGeometry, ray *core.Ray, flags Flags)
}
