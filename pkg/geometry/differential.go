package geometry

import (
	"fmt"
	"math"

	"github.com/df07/go-tile-raytracer/pkg/core"
	"github.com/df07/go-tile-raytracer/pkg/material"
)

// Flags selects the attributes computed by post-intersection
type Flags uint32

const (
	DGNg          Flags = 1 << iota // Geometric normal
	DGNs                            // Shading normal
	DGNormalize                     // Normalize the requested normals
	DGFaceForward                   // Flip the requested normals against the ray direction
	DGTexCoord                      // Texture coordinate
	DGTangents                      // dPds and dPdt
	DGMaterialID                    // Per-primitive material ID
	DGColor                         // Per-vertex color
)

// DGAll requests every attribute
const DGAll = DGNg | DGNs | DGNormalize | DGFaceForward | DGTexCoord | DGTangents | DGMaterialID | DGColor

// DifferentialGeometry holds the hit-point attributes of a completed ray
type DifferentialGeometry struct {
	P          core.Vec3 // Hit position
	Ng         core.Vec3 // Geometric normal
	Ns         core.Vec3 // Shading normal
	DPds       core.Vec3 // Tangent along s
	DPdt       core.Vec3 // Tangent along t
	St         core.Vec2 // Texture coordinate
	Color      core.Vec3 // Interpolated vertex color, white when absent
	Material   *material.OBJMaterial
	MaterialID int32
	GeomID     int32
	PrimID     int32
	Epsilon    float64 // Offset used to start secondary rays off the surface
}

// Reset prepares dg for a new hit
func (dg *DifferentialGeometry) Reset() {
	*dg = DifferentialGeometry{
		Color:      core.NewVec3(1, 1, 1),
		MaterialID: core.InvalidID,
		GeomID:     core.InvalidID,
		PrimID:     core.InvalidID,
	}
}

// Lookup resolves a geomID to a registered geometry
type Lookup interface {
	Geometry(geomID int32) Geometry
}

// PostIntersect computes dg for a ray that hit something. Instanced hits are
// not supported and panic with ErrNotImplemented.
func PostIntersect(lookup Lookup, dg *DifferentialGeometry, ray *core.Ray, flags Flags) {
	dg.Reset()
	if !ray.Hit() {
		return
	}
	if ray.InstID >= 0 {
		panic(fmt.Errorf("post-intersect of instance %d: %w", ray.InstID, core.ErrNotImplemented))
	}

	dg.P = ray.HitPoint()
	dg.GeomID = ray.GeomID
	dg.PrimID = ray.PrimID
	dg.Ng = ray.Ng
	dg.Ns = ray.Ng
	dg.Epsilon = calcEpsilon(dg.P, ray.T)

	if geom := lookup.Geometry(ray.GeomID); geom != nil {
		geom.PostIntersect(dg, ray, flags)
	}

	if flags&DGFaceForward != 0 {
		if flags&DGNg != 0 {
			dg.Ng = dg.Ng.FaceForward(ray.Direction)
		}
		if flags&DGNs != 0 {
			dg.Ns = dg.Ns.FaceForward(ray.Direction)
		}
	}
	if flags&DGNormalize != 0 {
		if flags&DGNg != 0 {
			dg.Ng = dg.Ng.Normalize()
		}
		if flags&DGNs != 0 {
			dg.Ns = dg.Ns.Normalize()
		}
	}
}

// calcEpsilon scales the self-intersection offset with the magnitude of the hit
func calcEpsilon(p core.Vec3, t float64) float64 {
	scale := math.Max(math.Max(math.Abs(p.X), math.Abs(p.Y)), math.Max(math.Abs(p.Z), t))
	return 1e-5 * math.Max(1, scale)
}
