package scene

import (
	"fmt"
	"sync/atomic"

	"github.com/df07/go-tile-raytracer/pkg/core"
	"github.com/df07/go-tile-raytracer/pkg/geometry"
	"github.com/df07/go-tile-raytracer/pkg/lights"
)

// World owns the registered geometries and lights and answers intersection queries.
// After Commit it is read-only and every query method is safe for concurrent use.
type World struct {
	geometries []geometry.Geometry
	Lights     []lights.Light

	bvh       *BVH
	committed atomic.Bool
}

// NewWorld creates an empty world
func NewWorld() *World {
	return &World{}
}

// AddGeometry registers a finalized geometry and returns its geomID
func (w *World) AddGeometry(g geometry.Geometry) int32 {
	w.geometries = append(w.geometries, g)
	w.committed.Store(false)
	return int32(len(w.geometries) - 1)
}

// AddLight appends a committed light
func (w *World) AddLight(l lights.Light) {
	w.Lights = append(w.Lights, l)
}

// LightList returns the registered lights
func (w *World) LightList() []lights.Light {
	return w.Lights
}

// Geometry returns the geometry registered under geomID, or nil
func (w *World) Geometry(geomID int32) geometry.Geometry {
	if geomID < 0 || int(geomID) >= len(w.geometries) {
		return nil
	}
	return w.geometries[geomID]
}

// GeometryCount returns the number of registered geometries
func (w *World) GeometryCount() int {
	return len(w.geometries)
}

// GetPrimitiveCount returns the total number of primitives over all geometries
func (w *World) GetPrimitiveCount() int {
	n := 0
	for _, g := range w.geometries {
		n += g.PrimitiveCount()
	}
	return n
}

// Commit builds the acceleration structure
func (w *World) Commit() error {
	for i, g := range w.geometries {
		if g == nil {
			return fmt.Errorf("world geometry %d is nil: %w", i, core.ErrInvalidParameter)
		}
	}
	w.bvh = NewBVH(w.geometries)
	w.committed.Store(true)

	stats := w.bvh.getStats()
	core.Logger().Info("world committed",
		"geometries", len(w.geometries), "primitives", stats.totalPrims,
		"lights", len(w.Lights), "bvhNodes", stats.totalNodes, "bvhDepth", stats.maxDepth)
	return nil
}

// Bounds returns the bounding box of every primitive
func (w *World) Bounds() core.AABB {
	if w.bvh == nil {
		return core.EmptyAABB()
	}
	return w.bvh.Bounds()
}

func (w *World) mustBeCommitted() {
	if !w.committed.Load() {
		panic(fmt.Errorf("world queried before Commit: %w", core.ErrInvalidState))
	}
}

// Intersect records the closest hit on ray
func (w *World) Intersect(ray *core.Ray) {
	w.mustBeCommitted()
	w.bvh.Intersect(ray)
}

// Occluded reports whether any geometry lies in the ray interval
func (w *World) Occluded(ray *core.Ray) bool {
	w.mustBeCommitted()
	return w.bvh.Occluded(ray)
}

// IntersectLanes intersects each lane set in mask
func (w *World) IntersectLanes(rays *core.RayLanes, mask core.Mask) {
	w.mustBeCommitted()
	for i := 0; i < core.LaneWidth; i++ {
		if !mask[i] {
			continue
		}
		ray := rays.Get(i)
		w.bvh.Intersect(&ray)
		rays.Set(i, ray)
	}
}

// OccludedLanes returns the lanes of mask that are occluded
func (w *World) OccludedLanes(rays *core.RayLanes, mask core.Mask) core.Mask {
	w.mustBeCommitted()
	var occluded core.Mask
	for i := 0; i < core.LaneWidth; i++ {
		if !mask[i] {
			continue
		}
		ray := rays.Get(i)
		occluded[i] = w.bvh.Occluded(&ray)
	}
	return occluded
}

// IntersectStream intersects every active ray of the batch
func (w *World) IntersectStream(rays []*core.Ray) {
	w.mustBeCommitted()
	for _, ray := range rays {
		if ray != nil {
			w.bvh.Intersect(ray)
		}
	}
}

// OccludedStream writes one occlusion result per ray
func (w *World) OccludedStream(rays []*core.Ray, occluded []bool) {
	w.mustBeCommitted()
	for i, ray := range rays {
		occluded[i] = ray != nil && w.bvh.Occluded(ray)
	}
}

// IntersectLaneStream intersects a batch of lane packets
func (w *World) IntersectLaneStream(rays []core.RayLanes, masks []core.Mask) {
	for i := range rays {
		w.IntersectLanes(&rays[i], masks[i])
	}
}

// OccludedLaneStream returns one occlusion mask per packet
func (w *World) OccludedLaneStream(rays []core.RayLanes, masks []core.Mask) []core.Mask {
	out := make([]core.Mask, len(rays))
	for i := range rays {
		out[i] = w.OccludedLanes(&rays[i], masks[i])
	}
	return out
}

// PostIntersect computes differential geometry for a completed hit
func (w *World) PostIntersect(dg *geometry.DifferentialGeometry, ray *core.Ray, flags geometry.Flags) {
	geometry.PostIntersect(w, dg, ray, flags)
}
