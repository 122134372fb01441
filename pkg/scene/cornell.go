package scene

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/df07/go-tile-raytracer/pkg/core"
	"github.com/df07/go-tile-raytracer/pkg/geometry"
	"github.com/df07/go-tile-raytracer/pkg/lights"
	"github.com/df07/go-tile-raytracer/pkg/material"
	"github.com/df07/go-tile-raytracer/pkg/params"
)

// NewCornellScene creates a Cornell box with two rotated blocks, a glossy sphere and a checkered floor
func NewCornellScene() (*Scene, error) {
	white := material.NewDiffuse(core.NewVec3(0.73, 0.73, 0.73))
	red := material.NewDiffuse(core.NewVec3(0.65, 0.05, 0.05))
	green := material.NewDiffuse(core.NewVec3(0.12, 0.45, 0.15))
	floor := material.NewDiffuse(core.NewVec3(1, 1, 1))
	floor.MapKd = material.NewCheckerboardTexture(64, 64, 8, core.NewVec3(0.8, 0.8, 0.8), core.NewVec3(0.3, 0.3, 0.3))
	glossy := material.NewDiffuse(core.NewVec3(0.2, 0.3, 0.8))
	glossy.Ks = core.NewVec3(0.5, 0.5, 0.5)
	glossy.Ns = 60

	// Cornell box dimensions (standard 555x555x555 units)
	const boxSize = 555.0

	world := NewWorld()
	walls := []struct {
		corner, u, v core.Vec3
		mat          *material.OBJMaterial
	}{
		{core.NewVec3(0, 0, 0), core.NewVec3(boxSize, 0, 0), core.NewVec3(0, 0, boxSize), floor},
		{core.NewVec3(0, boxSize, 0), core.NewVec3(boxSize, 0, 0), core.NewVec3(0, 0, boxSize), white},
		{core.NewVec3(0, 0, boxSize), core.NewVec3(boxSize, 0, 0), core.NewVec3(0, boxSize, 0), white},
		{core.NewVec3(0, 0, 0), core.NewVec3(0, 0, boxSize), core.NewVec3(0, boxSize, 0), red},
		{core.NewVec3(boxSize, 0, 0), core.NewVec3(0, 0, boxSize), core.NewVec3(0, boxSize, 0), green},
	}
	for _, wall := range walls {
		mesh, err := NewQuadMesh(wall.corner, wall.u, wall.v, wall.mat, nil)
		if err != nil {
			return nil, err
		}
		world.AddGeometry(mesh)
	}

	// Tall block rotated 15 degrees, short block rotated -18 degrees
	tall := mgl64.Translate3D(265, 0, 295).Mul4(mgl64.HomogRotate3DY(mgl64.DegToRad(15)))
	tallBox, err := NewBoxMesh(core.Vec3{}, core.NewVec3(165, 330, 165), white, &tall)
	if err != nil {
		return nil, err
	}
	world.AddGeometry(tallBox)

	short := mgl64.Translate3D(130, 0, 65).Mul4(mgl64.HomogRotate3DY(mgl64.DegToRad(-18)))
	shortBox, err := NewBoxMesh(core.Vec3{}, core.NewVec3(165, 165, 165), white, &short)
	if err != nil {
		return nil, err
	}
	world.AddGeometry(shortBox)

	sphere, err := geometry.NewSpheres([]core.Vec3{core.NewVec3(212, 245, 147)}, []float64{80}, glossy)
	if err != nil {
		return nil, err
	}
	world.AddGeometry(sphere)

	world.AddLight(lights.NewAmbientLight(core.NewVec3(1, 1, 1), 0.3))
	world.AddLight(lights.NewPointLight(core.NewVec3(278, 540, 278), core.NewVec3(1, 0.95, 0.85), 150000))
	world.AddLight(lights.NewDirectionalLight(core.NewVec3(-0.2, -1, 0.4), core.NewVec3(1, 1, 1), 0.4, 2))

	return &Scene{
		Name:   "cornell",
		World:  world,
		Camera: lookAt(core.NewVec3(278, 278, -800), core.NewVec3(278, 278, 0), 40),
		Renderer: params.New().
			Set("bgColor", core.Vec3{}).
			Set("aoSamples", 2).
			Set("aoDistance", 200.0).
			Set("shadowsEnabled", true),
	}, nil
}
