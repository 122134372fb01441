// Package integrator holds the shading models run on completed camera-ray hits.
// Every model is written once over a batch of hits; the scalar, lane and stream
// entry points only differ in how they pack the batch and how occlusion rays are traced.
package integrator

import (
	"fmt"
	"sort"

	"github.com/df07/go-tile-raytracer/pkg/core"
	"github.com/df07/go-tile-raytracer/pkg/geometry"
	"github.com/df07/go-tile-raytracer/pkg/lights"
	"github.com/df07/go-tile-raytracer/pkg/material"
	"github.com/df07/go-tile-raytracer/pkg/params"
)

// Scene is the intersection oracle plus the post-intersect dispatcher
type Scene interface {
	core.Intersector
	PostIntersect(dg *geometry.DifferentialGeometry, ray *core.Ray, flags geometry.Flags)
}

// Context carries the per-frame state shared by every shading call
type Context struct {
	Scene   Scene
	Lights  []lights.Light
	AccumID int
}

// Result is the shaded color and coverage of one hit
type Result struct {
	Color core.Vec3
	Alpha float64
}

// Integrator shades rays that already carry a hit. Misses are handled by the renderer.
// All methods are safe for concurrent use after Commit.
type Integrator interface {
	Name() string

	// Commit reads the shading parameters
	Commit(p *params.Params) error

	// Shade shades a single hit ray
	Shade(ctx *Context, ray *core.Ray, rng *core.RNG) Result

	// ShadeLanes shades the lanes of mask; rngs and out are indexed by lane
	ShadeLanes(ctx *Context, rays *core.RayLanes, mask core.Mask, rngs []*core.RNG, out []Result)

	// ShadeStream shades every non-nil ray; rngs and out are indexed like rays
	ShadeStream(ctx *Context, rays []*core.Ray, rngs []*core.RNG, out []Result)
}

var constructors = map[string]func() Integrator{
	"raycast": func() Integrator { return NewRaycast(ModeEyeLight) },
	"ao":      func() Integrator { return NewAO() },
	"scivis":  func() Integrator { return NewSciVis() },
}

// Names returns the registered integrator names
func Names() []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New creates an integrator by name with default parameters
func New(name string) (Integrator, error) {
	ctor, ok := constructors[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator %q (have %v): %w", name, Names(), core.ErrInvalidParameter)
	}
	return ctor(), nil
}

// defaultMaterial shades geometry that carries no material
var defaultMaterial = material.NewOBJMaterial()

func materialOf(dg *geometry.DifferentialGeometry) *material.OBJMaterial {
	if dg.Material != nil {
		return dg.Material
	}
	return defaultMaterial
}

// hitSample is one hit of a batch together with its random stream and output slot
type hitSample struct {
	ray *core.Ray
	rng *core.RNG
	out *Result
}

// occluder answers occlusion for a batch of rays, writing one result per ray
type occluder func(scene core.Intersector, rays []*core.Ray, occluded []bool)

// batchShader is implemented by every shading model
type batchShader interface {
	shadeBatch(ctx *Context, hits []hitSample, occlude occluder)
}

func occludeScalar(scene core.Intersector, rays []*core.Ray, occluded []bool) {
	for i, ray := range rays {
		occluded[i] = scene.Occluded(ray)
	}
}

func occludeStream(scene core.Intersector, rays []*core.Ray, occluded []bool) {
	core.OccludedStream(scene, rays, occluded)
}

// occludeLanes packs the rays into lane packets of LaneWidth
func occludeLanes(scene core.Intersector, rays []*core.Ray, occluded []bool) {
	for base := 0; base < len(rays); base += core.LaneWidth {
		var packet core.RayLanes
		var mask core.Mask
		for l := 0; l < core.LaneWidth && base+l < len(rays); l++ {
			packet.Set(l, *rays[base+l])
			mask[l] = true
		}
		hit := core.OccludedLanes(scene, &packet, mask)
		for l := 0; l < core.LaneWidth && base+l < len(rays); l++ {
			occluded[base+l] = hit[l]
		}
	}
}

func shadeScalar(b batchShader, ctx *Context, ray *core.Ray, rng *core.RNG) Result {
	var result Result
	b.shadeBatch(ctx, []hitSample{{ray: ray, rng: rng, out: &result}}, occludeScalar)
	return result
}

func shadeLanes(b batchShader, ctx *Context, rays *core.RayLanes, mask core.Mask, rngs []*core.RNG, out []Result) {
	var scalar [core.LaneWidth]core.Ray
	hits := make([]hitSample, 0, core.LaneWidth)
	for l := 0; l < core.LaneWidth; l++ {
		if !mask[l] {
			continue
		}
		scalar[l] = rays.Get(l)
		hits = append(hits, hitSample{ray: &scalar[l], rng: rngs[l], out: &out[l]})
	}
	if len(hits) > 0 {
		b.shadeBatch(ctx, hits, occludeLanes)
	}
}

func shadeStream(b batchShader, ctx *Context, rays []*core.Ray, rngs []*core.RNG, out []Result) {
	hits := make([]hitSample, 0, len(rays))
	for i, ray := range rays {
		if ray != nil {
			hits = append(hits, hitSample{ray: ray, rng: rngs[i], out: &out[i]})
		}
	}
	if len(hits) > 0 {
		b.shadeBatch(ctx, hits, occludeStream)
	}
}
