package scene

import (
	"fmt"
	"sort"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/df07/go-tile-raytracer/pkg/core"
	"github.com/df07/go-tile-raytracer/pkg/geometry"
	"github.com/df07/go-tile-raytracer/pkg/material"
	"github.com/df07/go-tile-raytracer/pkg/params"
)

// Scene bundles a committed world with the camera and renderer settings it was composed for
type Scene struct {
	Name     string
	World    *World
	Camera   *params.Params // position, direction, up, fovy
	Renderer *params.Params // recommended renderer parameters (bgColor, aoSamples, ...)
}

// builders maps scene names to their constructors
var builders = map[string]func() (*Scene, error){
	"triangle":   NewTriangleScene,
	"cornell":    NewCornellScene,
	"spheregrid": NewSphereGridScene,
}

// Names returns the built-in scene names in sorted order
func Names() []string {
	names := make([]string, 0, len(builders))
	for name := range builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build constructs and commits a built-in scene by name
func Build(name string) (*Scene, error) {
	build, ok := builders[name]
	if !ok {
		return nil, fmt.Errorf("unknown scene %q (available: %v)", name, Names())
	}
	s, err := build()
	if err != nil {
		return nil, fmt.Errorf("building scene %q: %w", name, err)
	}
	if err := s.World.Commit(); err != nil {
		return nil, fmt.Errorf("committing scene %q: %w", name, err)
	}
	return s, nil
}

// lookAt fills camera parameters that point from eye toward target
func lookAt(eye, target core.Vec3, fovy float64) *params.Params {
	return params.New().
		Set("position", eye).
		Set("direction", target.Subtract(eye)).
		Set("up", core.NewVec3(0, 1, 0)).
		Set("fovy", fovy)
}

// NewQuadMesh creates a two-triangle quad spanning corner, corner+u, corner+u+v, corner+v
// with texture coordinates running from (0,0) at corner to (1,1) at the far corner
func NewQuadMesh(corner, u, v core.Vec3, mat *material.OBJMaterial, xf *mgl64.Mat4) (*geometry.TriangleMesh, error) {
	vertices := []core.Vec3{
		corner,
		corner.Add(u),
		corner.Add(u).Add(v),
		corner.Add(v),
	}
	texcoords := []core.Vec2{
		core.NewVec2(0, 0),
		core.NewVec2(1, 0),
		core.NewVec2(1, 1),
		core.NewVec2(0, 1),
	}
	faces := []int{
		0, 1, 2,
		0, 2, 3,
	}
	return geometry.NewTriangleMesh(vertices, faces, mat, &geometry.TriangleMeshOptions{
		TexCoords: texcoords,
		Transform: xf,
	})
}

// NewBoxMesh creates an axis-aligned box mesh between lo and hi, optionally transformed
func NewBoxMesh(lo, hi core.Vec3, mat *material.OBJMaterial, xf *mgl64.Mat4) (*geometry.TriangleMesh, error) {
	vertices := []core.Vec3{
		core.NewVec3(lo.X, lo.Y, lo.Z),
		core.NewVec3(hi.X, lo.Y, lo.Z),
		core.NewVec3(hi.X, hi.Y, lo.Z),
		core.NewVec3(lo.X, hi.Y, lo.Z),
		core.NewVec3(lo.X, lo.Y, hi.Z),
		core.NewVec3(hi.X, lo.Y, hi.Z),
		core.NewVec3(hi.X, hi.Y, hi.Z),
		core.NewVec3(lo.X, hi.Y, hi.Z),
	}
	faces := []int{
		0, 2, 1, 0, 3, 2, // front (-z)
		4, 5, 6, 4, 6, 7, // back (+z)
		0, 4, 7, 0, 7, 3, // left (-x)
		1, 2, 6, 1, 6, 5, // right (+x)
		0, 1, 5, 0, 5, 4, // bottom (-y)
		3, 7, 6, 3, 6, 2, // top (+y)
	}
	return geometry.NewTriangleMesh(vertices, faces, mat, &geometry.TriangleMeshOptions{Transform: xf})
}
