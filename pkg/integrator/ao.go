package integrator

import (
	"fmt"
	"math"

	"github.com/df07/go-tile-raytracer/pkg/core"
	"github.com/df07/go-tile-raytracer/pkg/geometry"
	"github.com/df07/go-tile-raytracer/pkg/params"
)

// tangentCutoff counts hemisphere samples this close to the surface as occluded
const tangentCutoff = 0.05

// aoSettings are the occlusion-sampling parameters shared by AO and SciVis
type aoSettings struct {
	Samples  int     // Occlusion rays per hit and frame
	Distance float64 // Maximum occlusion ray length
	Exponent float64 // Cosine-power lobe exponent, 1 is cosine-weighted
	Rotate   bool    // Offset the random numbers by a per-frame Halton rotation
}

func defaultAOSettings() aoSettings {
	return aoSettings{Samples: 1, Distance: 1e20, Exponent: 1, Rotate: true}
}

func (s *aoSettings) commit(p *params.Params) error {
	s.Samples = p.Int("aoSamples", s.Samples)
	s.Distance = p.Float("aoDistance", s.Distance)
	s.Exponent = p.Float("aoExponent", s.Exponent)
	s.Rotate = p.Bool("aoRotate", s.Rotate)
	if s.Samples < 0 || s.Distance <= 0 || s.Exponent < 0 {
		return fmt.Errorf("ao samples %d distance %g exponent %g: %w",
			s.Samples, s.Distance, s.Exponent, core.ErrInvalidParameter)
	}
	return nil
}

// shadingPoint is the part of a hit the occlusion sampler needs
type shadingPoint struct {
	P   core.Vec3
	N   core.Vec3 // Unit normal facing the viewer
	Eps float64
	RNG *core.RNG
}

// visibility returns the unoccluded fraction for each point. All occlusion
// rays of the batch are traced with one call to occlude.
func (s aoSettings) visibility(ctx *Context, points []shadingPoint, occlude occluder) []float64 {
	vis := make([]float64, len(points))
	if s.Samples == 0 {
		for i := range vis {
			vis[i] = 1
		}
		return vis
	}

	var rot core.Vec2
	if s.Rotate {
		rot = core.NewVec2(core.Halton2(ctx.AccumID), core.Halton3(ctx.AccumID))
	}

	occludedCount := make([]int, len(points))
	rays := make([]core.Ray, 0, len(points)*s.Samples)
	owner := make([]int, 0, len(points)*s.Samples)
	for i, sp := range points {
		origin := sp.P.Add(sp.N.Multiply(sp.Eps))
		for k := 0; k < s.Samples; k++ {
			r := sp.RNG.Get2D()
			if s.Rotate {
				r = core.NewVec2(core.Fract(r.X+rot.X), core.Fract(r.Y+rot.Y))
			}
			dir := core.SampleCosinePowerHemisphere(sp.N, s.Exponent, r)
			if dir.Dot(sp.N) < tangentCutoff {
				occludedCount[i]++
				continue
			}
			rays = append(rays, core.NewRaySegment(origin, dir, 0, s.Distance))
			owner = append(owner, i)
		}
	}

	if len(rays) > 0 {
		ptrs := make([]*core.Ray, len(rays))
		for j := range rays {
			ptrs[j] = &rays[j]
		}
		occluded := make([]bool, len(rays))
		occlude(ctx.Scene, ptrs, occluded)
		for j, hit := range occluded {
			if hit {
				occludedCount[owner[j]]++
			}
		}
	}

	for i := range vis {
		vis[i] = 1 - float64(occludedCount[i])/float64(s.Samples)
	}
	return vis
}

// AO shades hits with ambient occlusion: albedo times the eye-light cosine
// times the fraction of unoccluded hemisphere samples.
type AO struct {
	aoSettings
}

// NewAO creates an AO integrator with one sample per frame
func NewAO() *AO {
	return &AO{aoSettings: defaultAOSettings()}
}

func (a *AO) Name() string {
	return "ao"
}

// Commit reads aoSamples, aoDistance, aoExponent and aoRotate
func (a *AO) Commit(p *params.Params) error {
	return a.aoSettings.commit(p)
}

func (a *AO) Shade(ctx *Context, ray *core.Ray, rng *core.RNG) Result {
	return shadeScalar(a, ctx, ray, rng)
}

func (a *AO) ShadeLanes(ctx *Context, rays *core.RayLanes, mask core.Mask, rngs []*core.RNG, out []Result) {
	shadeLanes(a, ctx, rays, mask, rngs, out)
}

func (a *AO) ShadeStream(ctx *Context, rays []*core.Ray, rngs []*core.RNG, out []Result) {
	shadeStream(a, ctx, rays, rngs, out)
}

const aoFlags = geometry.DGNs | geometry.DGNormalize | geometry.DGFaceForward |
	geometry.DGTexCoord | geometry.DGColor | geometry.DGMaterialID

func (a *AO) shadeBatch(ctx *Context, hits []hitSample, occlude occluder) {
	dgs := make([]geometry.DifferentialGeometry, len(hits))
	points := make([]shadingPoint, len(hits))
	for i, h := range hits {
		ctx.Scene.PostIntersect(&dgs[i], h.ray, aoFlags)
		points[i] = shadingPoint{P: dgs[i].P, N: dgs[i].Ns, Eps: dgs[i].Epsilon, RNG: h.rng}
	}

	vis := a.visibility(ctx, points, occlude)

	for i, h := range hits {
		dg := &dgs[i]
		kd := materialOf(dg).Diffuse(dg.St).MultiplyVec(dg.Color)
		cosine := math.Abs(dg.Ns.Dot(h.ray.Direction.Normalize()))
		*h.out = Result{Color: kd.Multiply(cosine * vis[i]), Alpha: 1}
	}
}
