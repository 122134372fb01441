package lights

import (
	"github.com/df07/go-tile-raytracer/pkg/core"
	"github.com/df07/go-tile-raytracer/pkg/params"
)

type LightType string

const (
	LightTypeAmbient     LightType = "ambient"
	LightTypeDirectional LightType = "directional"
	LightTypePoint       LightType = "point"
)

// Light is a committed light source queried read-only during rendering
type Light interface {
	Type() LightType

	// Commit reads the light's parameters
	Commit(p *params.Params) error

	// Sample samples an incident direction at point; normal is the shading normal there.
	// Direction points FROM the shading point TO the light.
	Sample(point core.Vec3, normal core.Vec3, sample core.Vec2) LightSample

	// Eval returns the radiance arriving at point from direction, with the density Sample would have used
	Eval(point core.Vec3, normal core.Vec3, direction core.Vec3) LightEval
}

// LightSample contains a sampled incident direction and its contribution
type LightSample struct {
	Direction core.Vec3 // Direction from shading point to light
	Distance  float64   // Distance to light, +Inf for lights at infinity
	PDF       float64   // Probability density of this sample, +Inf for delta lights
	Weight    core.Vec3 // Radiance divided by PDF
}

// LightEval is the radiance and density for a given direction
type LightEval struct {
	Radiance core.Vec3
	PDF      float64
}

// IsDelta reports whether the sample came from a delta distribution
func (s LightSample) IsDelta() bool {
	return s.PDF > 1e30
}
