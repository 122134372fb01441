package geometry

import (
	"fmt"
	"math"

	"github.com/df07/go-tile-raytracer/pkg/core"
	"github.com/df07/go-tile-raytracer/pkg/material"
	"github.com/df07/go-tile-raytracer/pkg/params"
)

// Spheres is a set of spheres sharing one material; each sphere is a primitive
type Spheres struct {
	Centers  []core.Vec3
	Radii    []float64
	Material *material.OBJMaterial
}

// NewSpheres creates a sphere set; radii must match centers
func NewSpheres(centers []core.Vec3, radii []float64, mat *material.OBJMaterial) (*Spheres, error) {
	if len(centers) != len(radii) {
		return nil, fmt.Errorf("spheres: %d centers but %d radii: %w", len(centers), len(radii), core.ErrInvalidParameter)
	}
	return &Spheres{Centers: centers, Radii: radii, Material: mat}, nil
}

// Commit reads sphere.position (vec3f/vec3fa), sphere.radius (float, optional) and radius
func (s *Spheres) Commit(p *params.Params) error {
	data := p.Data("sphere.position")
	if data == nil {
		return fmt.Errorf("spheres: sphere.position is required: %w", core.ErrInvalidParameter)
	}
	centers, err := readVec3(data, "sphere.position")
	if err != nil {
		return err
	}

	radius := p.Float("radius", 0.01)
	radii := make([]float64, len(centers))
	if rd := p.Data("sphere.radius"); rd != nil {
		if rd.Type != params.Float {
			return fmt.Errorf("spheres sphere.radius type %v: %w", rd.Type, core.ErrUnsupportedLayout)
		}
		if rd.Len() < len(centers) {
			return fmt.Errorf("spheres: %d radii for %d spheres: %w", rd.Len(), len(centers), core.ErrInvalidParameter)
		}
		for i := range radii {
			radii[i] = float64(rd.Floats[i])
		}
	} else {
		for i := range radii {
			radii[i] = radius
		}
	}

	if mat, ok := p.Object("material").(*material.OBJMaterial); ok {
		s.Material = mat
	}
	s.Centers = centers
	s.Radii = radii
	return nil
}

// Bounds returns the bounding box of all spheres
func (s *Spheres) Bounds() core.AABB {
	b := core.EmptyAABB()
	for i := range s.Centers {
		b = b.Union(s.PrimitiveBounds(i))
	}
	return b
}

// PrimitiveCount returns the number of spheres
func (s *Spheres) PrimitiveCount() int {
	return len(s.Centers)
}

// PrimitiveBounds returns the bounding box of one sphere
func (s *Spheres) PrimitiveBounds(primID int) core.AABB {
	r := core.Splat(s.Radii[primID])
	return core.AABB{Min: s.Centers[primID].Subtract(r), Max: s.Centers[primID].Add(r)}
}

// hitSphere returns the nearest root inside the ray interval
func (s *Spheres) hitSphere(primID int, ray *core.Ray) (float64, bool) {
	center := s.Centers[primID]
	radius := s.Radii[primID]

	// Quadratic equation coefficients: at² + bt + c = 0
	oc := ray.Origin.Subtract(center)
	a := ray.Direction.Dot(ray.Direction)
	halfB := oc.Dot(ray.Direction)
	c := oc.Dot(oc) - radius*radius

	discriminant := halfB*halfB - a*c
	if discriminant < 0 {
		return 0, false
	}
	sqrtD := math.Sqrt(discriminant)

	// Try the closer intersection point first
	root := (-halfB - sqrtD) / a
	if root < ray.T0 || root > ray.T {
		root = (-halfB + sqrtD) / a
		if root < ray.T0 || root > ray.T {
			return 0, false
		}
	}
	return root, true
}

// IntersectPrimitive records a closer hit on ray
func (s *Spheres) IntersectPrimitive(primID int, geomID int32, ray *core.Ray) bool {
	t, ok := s.hitSphere(primID, ray)
	if !ok || (ray.Hit() && t >= ray.T) {
		return false
	}
	ray.T = t
	ray.Ng = ray.At(t).Subtract(s.Centers[primID])
	ray.U = 0
	ray.V = 0
	ray.GeomID = geomID
	ray.PrimID = int32(primID)
	return true
}

// OccludedPrimitive reports any hit within the ray interval
func (s *Spheres) OccludedPrimitive(primID int, ray *core.Ray) bool {
	_, ok := s.hitSphere(primID, ray)
	return ok
}

// PostIntersect derives a spherical texture coordinate and tangent frame
func (s *Spheres) PostIntersect(dg *DifferentialGeometry, ray *core.Ray, flags Flags) {
	dg.Material = s.Material
	n := dg.Ng.Normalize()

	if flags&DGTexCoord != 0 {
		theta := math.Acos(math.Max(-1, math.Min(1, -n.Y)))
		phi := math.Atan2(-n.Z, n.X) + math.Pi
		dg.St = core.NewVec2(phi/(2*math.Pi), theta/math.Pi)
	}
	if flags&DGTangents != 0 {
		dg.DPds, dg.DPdt = core.Frame(n)
	}
}
