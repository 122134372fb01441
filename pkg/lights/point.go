package lights

import (
	"math"

	"github.com/df07/go-tile-raytracer/pkg/core"
	"github.com/df07/go-tile-raytracer/pkg/params"
)

// PointLight is an isotropic point emitter with inverse-square falloff
type PointLight struct {
	Position  core.Vec3
	Color     core.Vec3
	Intensity float64

	power core.Vec3
}

// NewPointLight creates a point light
func NewPointLight(position, color core.Vec3, intensity float64) *PointLight {
	return &PointLight{Position: position, Color: color, Intensity: intensity, power: color.Multiply(intensity)}
}

func (l *PointLight) Type() LightType {
	return LightTypePoint
}

// Commit reads position, color and intensity
func (l *PointLight) Commit(p *params.Params) error {
	l.Position = p.Vec3("position", core.Vec3{})
	l.Color = p.Vec3("color", core.NewVec3(1, 1, 1))
	l.Intensity = p.Float("intensity", 1)
	l.power = l.Color.Multiply(l.Intensity)
	return nil
}

// Sample returns the direction and distance to the light
func (l *PointLight) Sample(point core.Vec3, normal core.Vec3, sample core.Vec2) LightSample {
	toLight := l.Position.Subtract(point)
	dist2 := toLight.LengthSquared()
	if dist2 == 0 {
		return LightSample{}
	}
	dist := math.Sqrt(dist2)
	return LightSample{
		Direction: toLight.Multiply(1.0 / dist),
		Distance:  dist,
		PDF:       math.Inf(1),
		Weight:    l.power.Multiply(1.0 / dist2),
	}
}

// Eval is always zero: a point cannot be hit by a sampled direction
func (l *PointLight) Eval(point core.Vec3, normal core.Vec3, direction core.Vec3) LightEval {
	return LightEval{}
}
