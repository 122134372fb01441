package scene

import (
	"github.com/df07/go-tile-raytracer/pkg/core"
	"github.com/df07/go-tile-raytracer/pkg/geometry"
	"github.com/df07/go-tile-raytracer/pkg/lights"
	"github.com/df07/go-tile-raytracer/pkg/material"
	"github.com/df07/go-tile-raytracer/pkg/params"
)

// NewTriangleScene creates a single triangle at z=5 facing a camera at the origin looking down +z
func NewTriangleScene() (*Scene, error) {
	vertices := []core.Vec3{
		core.NewVec3(-2, -2, 5),
		core.NewVec3(2, -2, 5),
		core.NewVec3(0, 2, 5),
	}
	colors := []core.Vec3{
		core.NewVec3(1, 0, 0),
		core.NewVec3(0, 1, 0),
		core.NewVec3(0, 0, 1),
	}
	mesh, err := geometry.NewTriangleMesh(vertices, []int{0, 1, 2}, material.NewDiffuse(core.NewVec3(1, 1, 1)),
		&geometry.TriangleMeshOptions{Colors: colors})
	if err != nil {
		return nil, err
	}

	world := NewWorld()
	world.AddGeometry(mesh)
	world.AddLight(lights.NewAmbientLight(core.NewVec3(1, 1, 1), 1))

	return &Scene{
		Name:   "triangle",
		World:  world,
		Camera: lookAt(core.Vec3{}, core.NewVec3(0, 0, 1), 90),
		Renderer: params.New().
			Set("bgColor", core.NewVec3(0.1, 0.1, 0.15)).
			Set("aoSamples", 1),
	}, nil
}
