package integrator

import (
	"fmt"
	"math"

	"github.com/df07/go-tile-raytracer/pkg/core"
	"github.com/df07/go-tile-raytracer/pkg/geometry"
	"github.com/df07/go-tile-raytracer/pkg/params"
)

// RaycastMode selects the hit attribute a Raycast integrator visualizes
type RaycastMode string

const (
	ModeEyeLight RaycastMode = "eyeLight"
	ModeNg       RaycastMode = "Ng"
	ModeNs       RaycastMode = "Ns"
	ModeTexCoord RaycastMode = "texCoord"
	ModeDPds     RaycastMode = "dPds"
	ModeDPdt     RaycastMode = "dPdt"
	ModeGeomID   RaycastMode = "geomID"
	ModePrimID   RaycastMode = "primID"
	ModeColor    RaycastMode = "color"
)

var raycastFlags = map[RaycastMode]geometry.Flags{
	ModeEyeLight: geometry.DGNg | geometry.DGNormalize,
	ModeNg:       geometry.DGNg | geometry.DGNormalize,
	ModeNs:       geometry.DGNs | geometry.DGNormalize,
	ModeTexCoord: geometry.DGTexCoord,
	ModeDPds:     geometry.DGTangents,
	ModeDPdt:     geometry.DGTangents,
	ModeGeomID:   0,
	ModePrimID:   0,
	ModeColor:    geometry.DGColor,
}

// Raycast shades each hit with a pure function of its differential geometry.
// It draws no random numbers and traces no secondary rays.
type Raycast struct {
	Mode RaycastMode
}

// NewRaycast creates a raycast integrator in the given mode
func NewRaycast(mode RaycastMode) *Raycast {
	return &Raycast{Mode: mode}
}

func (r *Raycast) Name() string {
	return "raycast"
}

// Commit reads mode
func (r *Raycast) Commit(p *params.Params) error {
	mode := RaycastMode(p.String("mode", string(r.Mode)))
	if _, ok := raycastFlags[mode]; !ok {
		return fmt.Errorf("raycast mode %q: %w", mode, core.ErrInvalidParameter)
	}
	r.Mode = mode
	return nil
}

func (r *Raycast) Shade(ctx *Context, ray *core.Ray, rng *core.RNG) Result {
	return shadeScalar(r, ctx, ray, rng)
}

func (r *Raycast) ShadeLanes(ctx *Context, rays *core.RayLanes, mask core.Mask, rngs []*core.RNG, out []Result) {
	shadeLanes(r, ctx, rays, mask, rngs, out)
}

func (r *Raycast) ShadeStream(ctx *Context, rays []*core.Ray, rngs []*core.RNG, out []Result) {
	shadeStream(r, ctx, rays, rngs, out)
}

func (r *Raycast) shadeBatch(ctx *Context, hits []hitSample, _ occluder) {
	flags := raycastFlags[r.Mode]
	var dg geometry.DifferentialGeometry
	for _, h := range hits {
		ctx.Scene.PostIntersect(&dg, h.ray, flags)
		*h.out = Result{Color: r.color(&dg, h.ray), Alpha: 1}
	}
}

func (r *Raycast) color(dg *geometry.DifferentialGeometry, ray *core.Ray) core.Vec3 {
	switch r.Mode {
	case ModeNg:
		return dg.Ng.Abs()
	case ModeNs:
		return dg.Ns.Abs()
	case ModeTexCoord:
		return core.NewVec3(dg.St.X, dg.St.Y, 0)
	case ModeDPds:
		return dg.DPds.Normalize().Abs()
	case ModeDPdt:
		return dg.DPdt.Normalize().Abs()
	case ModeGeomID:
		return idColor(dg.GeomID)
	case ModePrimID:
		return idColor(dg.PrimID)
	case ModeColor:
		return dg.Color
	default:
		return core.Splat(math.Abs(dg.Ng.Dot(ray.Direction.Normalize())))
	}
}

// idColor maps an ID to a stable pseudo-random color
func idColor(id int32) core.Vec3 {
	const mx, my, mz = 13 * 17 * 43, 11 * 29, 7 * 23 * 63
	g := uint32(id)*(3*5*127) + 12312314
	return core.NewVec3(
		float64(g%mx)/float64(mx-1),
		float64(g%my)/float64(my-1),
		float64(g%mz)/float64(mz-1),
	)
}
