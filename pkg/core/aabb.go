package core

import "math"

// AABB represents an axis-aligned bounding box
type AABB struct {
	Min Vec3 // Minimum corner
	Max Vec3 // Maximum corner
}

// EmptyAABB returns an inverted box that any Extend or Union will overwrite
func EmptyAABB() AABB {
	inf := math.Inf(1)
	return AABB{Min: Splat(inf), Max: Splat(-inf)}
}

// NewAABBFromPoints creates an AABB that bounds all given points
func NewAABBFromPoints(points ...Vec3) AABB {
	box := EmptyAABB()
	for _, p := range points {
		box = box.Extend(p)
	}
	return box
}

// Extend returns the box grown to contain p
func (b AABB) Extend(p Vec3) AABB {
	return AABB{
		Min: Vec3{min(b.Min.X, p.X), min(b.Min.Y, p.Y), min(b.Min.Z, p.Z)},
		Max: Vec3{max(b.Max.X, p.X), max(b.Max.Y, p.Y), max(b.Max.Z, p.Z)},
	}
}

// Union returns an AABB that bounds both this AABB and another
func (b AABB) Union(other AABB) AABB {
	return b.Extend(other.Min).Extend(other.Max)
}

// Center returns the center point of the AABB
func (b AABB) Center() Vec3 {
	return b.Min.Add(b.Max).Multiply(0.5)
}

// Size returns the extent of the AABB along each axis
func (b AABB) Size() Vec3 {
	return b.Max.Subtract(b.Min)
}

// LongestAxis returns the axis (0=X, 1=Y, 2=Z) with the longest extent
func (b AABB) LongestAxis() int {
	size := b.Size()
	if size.X > size.Y && size.X > size.Z {
		return 0
	}
	if size.Y > size.Z {
		return 1
	}
	return 2
}

// IsValid returns true if min <= max on every axis
func (b AABB) IsValid() bool {
	return b.Min.X <= b.Max.X && b.Min.Y <= b.Max.Y && b.Min.Z <= b.Max.Z
}

// Axis returns component axis of v (0=X, 1=Y, 2=Z)
func Axis(v Vec3, axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

// Hit tests the slab interval of the box against [tMin, tMax].
// invDir is the component-wise reciprocal of the ray direction; infinities
// from zero components resolve correctly through the min/max ordering.
func (b AABB) Hit(origin, invDir Vec3, tMin, tMax float64) bool {
	for axis := 0; axis < 3; axis++ {
		inv := Axis(invDir, axis)
		o := Axis(origin, axis)
		t1 := (Axis(b.Min, axis) - o) * inv
		t2 := (Axis(b.Max, axis) - o) * inv
		if math.IsNaN(t1) || math.IsNaN(t2) {
			// Origin on a slab plane of a parallel ray
			continue
		}
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tMin = max(tMin, t1)
		tMax = min(tMax, t2)
		if tMin > tMax {
			return false
		}
	}
	return true
}

// Reciprocal returns the component-wise reciprocal used by AABB.Hit
func Reciprocal(v Vec3) Vec3 {
	return Vec3{1 / v.X, 1 / v.Y, 1 / v.Z}
}
