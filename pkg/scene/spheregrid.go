package scene

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/df07/go-tile-raytracer/pkg/core"
	"github.com/df07/go-tile-raytracer/pkg/geometry"
	"github.com/df07/go-tile-raytracer/pkg/lights"
	"github.com/df07/go-tile-raytracer/pkg/material"
	"github.com/df07/go-tile-raytracer/pkg/params"
)

// NewSphereGridScene creates a grid of spheres over a ground plane lit by a soft sun
func NewSphereGridScene() (*Scene, error) {
	const gridSize = 10
	const spacing = 1.0
	const radius = 0.4

	var centers []core.Vec3
	var radii []float64
	offset := float64(gridSize-1) * spacing / 2
	for i := 0; i < gridSize; i++ {
		for j := 0; j < gridSize; j++ {
			centers = append(centers, core.NewVec3(float64(i)*spacing-offset, radius, float64(j)*spacing-offset))
			radii = append(radii, radius)
		}
	}
	spheres, err := geometry.NewSpheres(centers, radii, material.NewDiffuse(core.NewVec3(0.7, 0.3, 0.2)))
	if err != nil {
		return nil, err
	}

	// Ground quad, built in the XY plane and rotated flat
	ground := mgl64.HomogRotate3DX(mgl64.DegToRad(90)).Mul4(mgl64.Scale3D(30, 30, 1))
	groundMesh, err := NewQuadMesh(core.NewVec3(-0.5, -0.5, 0), core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0),
		material.NewDiffuse(core.NewVec3(0.8, 0.8, 0.8)), &ground)
	if err != nil {
		return nil, err
	}

	world := NewWorld()
	world.AddGeometry(spheres)
	world.AddGeometry(groundMesh)
	world.AddLight(lights.NewAmbientLight(core.NewVec3(0.6, 0.7, 1), 0.5))
	world.AddLight(lights.NewDirectionalLight(core.NewVec3(-1, -2, -1), core.NewVec3(1, 0.95, 0.9), 2, 0.53))

	return &Scene{
		Name:   "spheregrid",
		World:  world,
		Camera: lookAt(core.NewVec3(0, 6, -12), core.Vec3{}, 45),
		Renderer: params.New().
			Set("bgColor", core.NewVec3(0.6, 0.7, 0.9)).
			Set("aoSamples", 4).
			Set("aoDistance", 2.0),
	}, nil
}
