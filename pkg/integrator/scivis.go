package integrator

import (
	"fmt"
	"math"

	"github.com/df07/go-tile-raytracer/pkg/core"
	"github.com/df07/go-tile-raytracer/pkg/geometry"
	"github.com/df07/go-tile-raytracer/pkg/lights"
	"github.com/df07/go-tile-raytracer/pkg/params"
)

// SciVis adds a Phong direct-lighting loop with optional hard shadows to an
// ambient-occlusion term driven by the scene's ambient lights.
type SciVis struct {
	aoSettings

	ShadowsEnabled      bool
	SingleSidedLighting bool
	ShadowThreshold     float64 // Contributions at or below this skip the light entirely
}

// NewSciVis creates a SciVis integrator with shadows off and single-sided lighting
func NewSciVis() *SciVis {
	return &SciVis{
		aoSettings:          defaultAOSettings(),
		SingleSidedLighting: true,
		ShadowThreshold:     0.01,
	}
}

func (s *SciVis) Name() string {
	return "scivis"
}

// Commit reads the AO parameters plus shadowsEnabled, singleSidedLighting and shadowThreshold
func (s *SciVis) Commit(p *params.Params) error {
	if err := s.aoSettings.commit(p); err != nil {
		return err
	}
	s.ShadowsEnabled = p.Bool("shadowsEnabled", s.ShadowsEnabled)
	s.SingleSidedLighting = p.Bool("singleSidedLighting", s.SingleSidedLighting)
	s.ShadowThreshold = p.Float("shadowThreshold", s.ShadowThreshold)
	if s.ShadowThreshold < 0 {
		return fmt.Errorf("scivis shadowThreshold %g: %w", s.ShadowThreshold, core.ErrInvalidParameter)
	}
	return nil
}

func (s *SciVis) Shade(ctx *Context, ray *core.Ray, rng *core.RNG) Result {
	return shadeScalar(s, ctx, ray, rng)
}

func (s *SciVis) ShadeLanes(ctx *Context, rays *core.RayLanes, mask core.Mask, rngs []*core.RNG, out []Result) {
	shadeLanes(s, ctx, rays, mask, rngs, out)
}

func (s *SciVis) ShadeStream(ctx *Context, rays []*core.Ray, rngs []*core.RNG, out []Result) {
	shadeStream(s, ctx, rays, rngs, out)
}

const scivisFlags = geometry.DGNs | geometry.DGNormalize |
	geometry.DGTexCoord | geometry.DGColor | geometry.DGMaterialID

// pendingLight is a light contribution waiting on its shadow ray
type pendingLight struct {
	hit     int
	contrib core.Vec3
}

func (s *SciVis) shadeBatch(ctx *Context, hits []hitSample, occlude occluder) {
	var ambient core.Vec3
	direct := make([]lights.Light, 0, len(ctx.Lights))
	for _, l := range ctx.Lights {
		if a, ok := l.(*lights.AmbientLight); ok {
			ambient = ambient.Add(a.Radiance())
			continue
		}
		direct = append(direct, l)
	}

	dgs := make([]geometry.DifferentialGeometry, len(hits))
	points := make([]shadingPoint, len(hits))
	colors := make([]core.Vec3, len(hits))
	for i, h := range hits {
		ctx.Scene.PostIntersect(&dgs[i], h.ray, scivisFlags)
		nf := dgs[i].Ns.FaceForward(h.ray.Direction)
		points[i] = shadingPoint{P: dgs[i].P, N: nf, Eps: dgs[i].Epsilon, RNG: h.rng}
	}

	if ambient.MaxComponent() > 0 {
		vis := s.visibility(ctx, points, occlude)
		for i := range hits {
			dg := &dgs[i]
			kd := materialOf(dg).Diffuse(dg.St).MultiplyVec(dg.Color)
			colors[i] = kd.MultiplyVec(ambient).Multiply(vis[i])
		}
	}

	var pending []pendingLight
	var shadowRays []core.Ray
	for i, h := range hits {
		dg := &dgs[i]
		mat := materialOf(dg)
		kd := mat.Diffuse(dg.St).MultiplyVec(dg.Color)
		view := h.ray.Direction.Normalize().Negate()

		normal := points[i].N
		backFacing := dg.Ns.Dot(view) < 0
		if s.SingleSidedLighting {
			normal = dg.Ns
		}

		for _, l := range direct {
			ls := l.Sample(dg.P, points[i].N, h.rng.Get2D())
			if ls.PDF <= 0 || ls.Weight.MaxComponent() <= 0 {
				continue
			}
			if s.SingleSidedLighting && backFacing {
				continue
			}
			cosNL := ls.Direction.Dot(normal)
			if cosNL <= 0 {
				continue
			}
			cosLR := math.Max(0, ls.Direction.Reflect(normal).Dot(view))
			brdf := kd.Multiply(cosNL / math.Pi).
				Add(mat.Ks.Multiply((mat.Ns + 2) / (2 * math.Pi) * math.Pow(cosLR, mat.Ns)))
			contrib := brdf.MultiplyVec(ls.Weight)
			if contrib.MaxComponent() <= s.ShadowThreshold {
				continue
			}
			if !s.ShadowsEnabled {
				colors[i] = colors[i].Add(contrib)
				continue
			}
			origin := dg.P.Add(normal.Multiply(dg.Epsilon))
			shadowRays = append(shadowRays, core.NewRaySegment(origin, ls.Direction, 0, ls.Distance-dg.Epsilon))
			pending = append(pending, pendingLight{hit: i, contrib: contrib})
		}
	}

	if len(shadowRays) > 0 {
		ptrs := make([]*core.Ray, len(shadowRays))
		for j := range shadowRays {
			ptrs[j] = &shadowRays[j]
		}
		occluded := make([]bool, len(shadowRays))
		occlude(ctx.Scene, ptrs, occluded)
		for j, p := range pending {
			if !occluded[j] {
				colors[p.hit] = colors[p.hit].Add(p.contrib)
			}
		}
	}

	for i, h := range hits {
		*h.out = Result{Color: colors[i], Alpha: 1}
	}
}
