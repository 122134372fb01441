package lights

import (
	"math"

	"github.com/df07/go-tile-raytracer/pkg/core"
	"github.com/df07/go-tile-raytracer/pkg/params"
)

// AmbientLight is uniform radiance from the whole hemisphere above the surface
type AmbientLight struct {
	Color     core.Vec3
	Intensity float64

	radiance core.Vec3
}

// NewAmbientLight creates a white ambient light of the given intensity
func NewAmbientLight(color core.Vec3, intensity float64) *AmbientLight {
	l := &AmbientLight{Color: color, Intensity: intensity}
	l.radiance = color.Multiply(intensity)
	return l
}

func (l *AmbientLight) Type() LightType {
	return LightTypeAmbient
}

// Commit reads color and intensity
func (l *AmbientLight) Commit(p *params.Params) error {
	l.Color = p.Vec3("color", core.NewVec3(1, 1, 1))
	l.Intensity = p.Float("intensity", 1)
	l.radiance = l.Color.Multiply(l.Intensity)
	return nil
}

// Radiance returns color scaled by intensity
func (l *AmbientLight) Radiance() core.Vec3 {
	return l.radiance
}

// Sample draws a cosine-weighted direction around normal
func (l *AmbientLight) Sample(point core.Vec3, normal core.Vec3, sample core.Vec2) LightSample {
	dir := core.SampleCosineHemisphere(normal, sample)
	pdf := core.CosineHemispherePDF(dir.Dot(normal))
	if pdf <= 0 {
		return LightSample{Direction: dir, Distance: math.Inf(1)}
	}
	return LightSample{
		Direction: dir,
		Distance:  math.Inf(1),
		PDF:       pdf,
		Weight:    l.radiance.Multiply(1.0 / pdf),
	}
}

// Eval returns the constant radiance and the cosine density
func (l *AmbientLight) Eval(point core.Vec3, normal core.Vec3, direction core.Vec3) LightEval {
	return LightEval{
		Radiance: l.radiance,
		PDF:      core.CosineHemispherePDF(math.Max(0, direction.Dot(normal))),
	}
}
