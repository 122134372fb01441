// Package material holds the surface description read by the shading models.
package material

import (
	"fmt"

	"github.com/df07/go-tile-raytracer/pkg/core"
	"github.com/df07/go-tile-raytracer/pkg/params"
)

// OBJMaterial is a Wavefront-style material: diffuse and specular reflectance,
// a Phong exponent and opacity, with an optional diffuse texture.
// D is kept so OBJ materials round-trip; every shading model treats surfaces as opaque.
type OBJMaterial struct {
	Kd    core.Vec3   // Diffuse reflectance
	Ks    core.Vec3   // Specular reflectance
	Ns    float64     // Specular exponent
	D     float64     // Opacity in [0,1], parsed but not shaded
	MapKd ColorSource // Optional diffuse texture, multiplied into Kd
}

// NewOBJMaterial creates a grey diffuse material
func NewOBJMaterial() *OBJMaterial {
	return &OBJMaterial{
		Kd: core.NewVec3(0.8, 0.8, 0.8),
		Ns: 10,
		D:  1,
	}
}

// NewDiffuse creates a pure diffuse material with the given albedo
func NewDiffuse(kd core.Vec3) *OBJMaterial {
	m := NewOBJMaterial()
	m.Kd = kd
	return m
}

// Commit reads Kd, Ks, Ns, d and map_Kd
func (m *OBJMaterial) Commit(p *params.Params) error {
	m.Kd = p.Vec3("Kd", m.Kd)
	m.Ks = p.Vec3("Ks", m.Ks)
	m.Ns = p.Float("Ns", m.Ns)
	m.D = p.Float("d", m.D)

	if obj := p.Object("map_Kd"); obj != nil {
		src, ok := obj.(ColorSource)
		if !ok {
			return fmt.Errorf("material map_Kd: %T is not a color source: %w", obj, core.ErrInvalidParameter)
		}
		m.MapKd = src
	}

	if m.Ns < 0 {
		return fmt.Errorf("material Ns %f: %w", m.Ns, core.ErrInvalidParameter)
	}
	if m.D < 0 || m.D > 1 {
		return fmt.Errorf("material d %f outside [0,1]: %w", m.D, core.ErrInvalidParameter)
	}
	return nil
}

// Diffuse returns Kd modulated by the texture at uv, if any
func (m *OBJMaterial) Diffuse(uv core.Vec2) core.Vec3 {
	if m.MapKd == nil {
		return m.Kd
	}
	return m.Kd.MultiplyVec(m.MapKd.Evaluate(uv))
}
