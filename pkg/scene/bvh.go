package scene

import (
	"sort"

	"github.com/df07/go-tile-raytracer/pkg/core"
	"github.com/df07/go-tile-raytracer/pkg/geometry"
)

// primRef identifies one primitive of one registered geometry
type primRef struct {
	geomID int32
	primID int32
	bounds core.AABB
	center core.Vec3
}

// BVHNode represents a node in the Bounding Volume Hierarchy
type BVHNode struct {
	BoundingBox core.AABB
	Left        *BVHNode
	Right       *BVHNode
	prims       []primRef // Primitives for leaf nodes (nil for internal nodes)
}

// BVH is a bounding volume hierarchy over the primitives of every geometry in a World
type BVH struct {
	Root       *BVHNode
	geometries []geometry.Geometry
}

// Leaf threshold: if we have this many or fewer primitives, store them in a leaf node
const leafThreshold = 8

// NewBVH builds a BVH over all primitives of the given geometries; the geomID of each is its index
func NewBVH(geometries []geometry.Geometry) *BVH {
	var refs []primRef
	for geomID, g := range geometries {
		for primID := 0; primID < g.PrimitiveCount(); primID++ {
			b := g.PrimitiveBounds(primID)
			refs = append(refs, primRef{
				geomID: int32(geomID),
				primID: int32(primID),
				bounds: b,
				center: b.Center(),
			})
		}
	}

	bvh := &BVH{geometries: geometries}
	if len(refs) > 0 {
		bvh.Root = buildBVH(refs)
	}
	return bvh
}

// buildBVH recursively builds the tree with a median split along the longest axis
func buildBVH(refs []primRef) *BVHNode {
	bounds := core.EmptyAABB()
	for _, r := range refs {
		bounds = bounds.Union(r.bounds)
	}

	if len(refs) <= leafThreshold {
		return &BVHNode{BoundingBox: bounds, prims: refs}
	}

	axis := bounds.LongestAxis()
	sort.Slice(refs, func(i, j int) bool {
		return core.Axis(refs[i].center, axis) < core.Axis(refs[j].center, axis)
	})

	mid := len(refs) / 2
	return &BVHNode{
		BoundingBox: bounds,
		Left:        buildBVH(refs[:mid]),
		Right:       buildBVH(refs[mid:]),
	}
}

// Bounds returns the bounding box of the whole hierarchy
func (bvh *BVH) Bounds() core.AABB {
	if bvh.Root == nil {
		return core.EmptyAABB()
	}
	return bvh.Root.BoundingBox
}

// Intersect finds the closest hit in [ray.T0, ray.T] and records it on ray
func (bvh *BVH) Intersect(ray *core.Ray) bool {
	if bvh.Root == nil || !ray.Active() {
		return false
	}
	return bvh.intersectNode(bvh.Root, ray, core.Reciprocal(ray.Direction))
}

func (bvh *BVH) intersectNode(node *BVHNode, ray *core.Ray, invDir core.Vec3) bool {
	if !node.BoundingBox.Hit(ray.Origin, invDir, ray.T0, ray.T) {
		return false
	}

	if node.prims != nil {
		hitAnything := false
		for _, r := range node.prims {
			if bvh.geometries[r.geomID].IntersectPrimitive(int(r.primID), r.geomID, ray) {
				hitAnything = true
			}
		}
		return hitAnything
	}

	// ray.T shrinks as hits are found, so the second child is culled against the closer bound
	hitLeft := bvh.intersectNode(node.Left, ray, invDir)
	hitRight := bvh.intersectNode(node.Right, ray, invDir)
	return hitLeft || hitRight
}

// Occluded reports whether anything is hit in [ray.T0, ray.T]; the ray is not modified
func (bvh *BVH) Occluded(ray *core.Ray) bool {
	if bvh.Root == nil || !ray.Active() {
		return false
	}
	return bvh.occludedNode(bvh.Root, ray, core.Reciprocal(ray.Direction))
}

func (bvh *BVH) occludedNode(node *BVHNode, ray *core.Ray, invDir core.Vec3) bool {
	if !node.BoundingBox.Hit(ray.Origin, invDir, ray.T0, ray.T) {
		return false
	}
	if node.prims != nil {
		for _, r := range node.prims {
			if bvh.geometries[r.geomID].OccludedPrimitive(int(r.primID), ray) {
				return true
			}
		}
		return false
	}
	return bvh.occludedNode(node.Left, ray, invDir) || bvh.occludedNode(node.Right, ray, invDir)
}

// bvhStats contains statistics about the BVH structure
type bvhStats struct {
	totalNodes int
	leafNodes  int
	maxDepth   int
	totalPrims int
}

// getStats returns statistics about the BVH structure
func (bvh *BVH) getStats() bvhStats {
	stats := bvhStats{}
	if bvh.Root != nil {
		collectStats(bvh.Root, 0, &stats)
	}
	return stats
}

func collectStats(node *BVHNode, depth int, stats *bvhStats) {
	stats.totalNodes++
	if depth > stats.maxDepth {
		stats.maxDepth = depth
	}
	if node.prims != nil {
		stats.leafNodes++
		stats.totalPrims += len(node.prims)
		return
	}
	collectStats(node.Left, depth+1, stats)
	collectStats(node.Right, depth+1, stats)
}
