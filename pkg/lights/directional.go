package lights

import (
	"math"

	"github.com/df07/go-tile-raytracer/pkg/core"
	"github.com/df07/go-tile-raytracer/pkg/params"
)

// cosAngleMax is the cone size below which a directional light is treated as a delta light
const cosAngleMax = 0.99999988

// DirectionalLight is a light at infinity, optionally with an angular diameter (sun disk)
type DirectionalLight struct {
	Direction       core.Vec3 // Direction the light travels
	Color           core.Vec3
	Intensity       float64
	AngularDiameter float64 // Degrees

	toLight    core.Vec3
	irradiance core.Vec3
	cosAngle   float64
	pdf        float64
}

// NewDirectionalLight creates a directional light and precomputes its sampling state
func NewDirectionalLight(direction, color core.Vec3, intensity, angularDiameter float64) *DirectionalLight {
	l := &DirectionalLight{
		Direction:       direction,
		Color:           color,
		Intensity:       intensity,
		AngularDiameter: angularDiameter,
	}
	l.update()
	return l
}

func (l *DirectionalLight) Type() LightType {
	return LightTypeDirectional
}

// Commit reads direction, color, intensity and angularDiameter
func (l *DirectionalLight) Commit(p *params.Params) error {
	l.Direction = p.Vec3("direction", core.NewVec3(0, 0, 1))
	l.Color = p.Vec3("color", core.NewVec3(1, 1, 1))
	l.Intensity = p.Float("intensity", 1)
	l.AngularDiameter = p.Float("angularDiameter", 0)
	l.update()
	return nil
}

func (l *DirectionalLight) update() {
	l.toLight = l.Direction.Normalize().Negate()
	l.irradiance = l.Color.Multiply(l.Intensity)

	halfAngle := math.Min(math.Max(l.AngularDiameter, 0), 180) * math.Pi / 360
	l.cosAngle = math.Cos(halfAngle)
	if l.cosAngle < cosAngleMax {
		l.pdf = core.UniformConePDF(l.cosAngle)
	} else {
		l.pdf = math.Inf(1)
	}
}

// Sample returns the direction toward the light, jittered inside its cone when it has extent
func (l *DirectionalLight) Sample(point core.Vec3, normal core.Vec3, sample core.Vec2) LightSample {
	dir := l.toLight
	if l.cosAngle < cosAngleMax {
		dir = core.SampleCone(l.toLight, l.cosAngle, sample)
	}
	return LightSample{
		Direction: dir,
		Distance:  math.Inf(1),
		PDF:       l.pdf,
		Weight:    l.irradiance,
	}
}

// Eval is non-zero only for extended lights and directions inside the cone
func (l *DirectionalLight) Eval(point core.Vec3, normal core.Vec3, direction core.Vec3) LightEval {
	if l.cosAngle < cosAngleMax && direction.Dot(l.toLight) > l.cosAngle {
		return LightEval{Radiance: l.irradiance.Multiply(l.pdf), PDF: l.pdf}
	}
	return LightEval{}
}
