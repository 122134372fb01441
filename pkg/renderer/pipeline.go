package renderer

import (
	"math"

	"github.com/df07/go-tile-raytracer/pkg/camera"
	"github.com/df07/go-tile-raytracer/pkg/core"
	"github.com/df07/go-tile-raytracer/pkg/integrator"
)

// The pipeline lays the samples of a job out in slots. With w rays per packet,
// the slot of pixel group g, sample s and lane l is k = (g*spp + s)*w + l, so
// each packet holds one sample of w z-order-adjacent pixels. Slots are processed
// in batches of w*BatchSize; every batch goes through generate, trace and shade.

// pixelAccum collects the samples of one pixel in sample order
type pixelAccum struct {
	rgb   core.Vec3
	alpha float64
	z     float64
}

// batch holds the per-slot state of one batch
type batch struct {
	samples []ScreenSample
	rngs    []core.RNG
	results []integrator.Result

	rays      []*core.Ray
	rngPtrs   []*core.RNG
	packets   []core.RayLanes
	masks     []core.Mask
	laneInput []camera.SampleLanes
}

func newBatch(s Strategy) *batch {
	n := s.LaneWidth * s.BatchSize
	b := &batch{
		samples: make([]ScreenSample, n),
		rngs:    make([]core.RNG, n),
		results: make([]integrator.Result, n),
		rays:    make([]*core.Ray, n),
		rngPtrs: make([]*core.RNG, n),
	}
	if s.usesLanes() {
		b.packets = make([]core.RayLanes, s.BatchSize)
		b.masks = make([]core.Mask, s.BatchSize)
		b.laneInput = make([]camera.SampleLanes, s.BatchSize)
	}
	for i := range b.rngs {
		b.rngPtrs[i] = &b.rngs[i]
	}
	return b
}

func (r *Renderer) renderJob(tile *Tile, jobID int) {
	width := r.strategy.LaneWidth
	start := jobID * r.pixelsPerJob
	total := r.pixelsPerJob * r.spp
	slotsPerBatch := width * r.strategy.BatchSize

	ctx := &integrator.Context{Scene: r.world, Lights: r.lights, AccumID: tile.AccumID}
	acc := make([]pixelAccum, r.pixelsPerJob)
	b := newBatch(r.strategy)

	for base := 0; base < total; base += slotsPerBatch {
		n := min(slotsPerBatch, total-base)
		samples := b.samples[:n]

		r.generate(tile, start, base, samples, b.rngs[:n])
		r.trace(ctx, b, n)

		for j := range samples {
			if samples[j].TileOffset < 0 {
				continue
			}
			k := base + j
			p := (k/(width*r.spp))*width + k%width
			acc[p].rgb = acc[p].rgb.Add(samples[j].RGB)
			acc[p].alpha += samples[j].Alpha
			acc[p].z = samples[j].Z
		}
	}

	inv := 1 / float64(r.spp)
	for p := range acc {
		i := start + p
		x, y := r.table.At(i)
		if !r.inFrame(tile, x, y) {
			continue
		}
		tile.Set(r.table.Offset(i), acc[p].rgb.Multiply(inv), acc[p].alpha*inv, acc[p].z)
	}
}

func (r *Renderer) inFrame(tile *Tile, x, y int) bool {
	return tile.Region.Min.X+x < r.fbWidth && tile.Region.Min.Y+y < r.fbHeight
}

// generate fills the screen samples of slots [base, base+len(samples)) and seeds their RNGs
func (r *Renderer) generate(tile *Tile, start, base int, samples []ScreenSample, rngs []core.RNG) {
	width := r.strategy.LaneWidth
	rcpW, rcpH := 1/float64(r.fbWidth), 1/float64(r.fbHeight)

	for j := range samples {
		k := base + j
		l := k % width
		s := (k / width) % r.spp
		g := k / (width * r.spp)
		i := start + g*width + l

		x, y := r.table.At(i)
		gx, gy := tile.Region.Min.X+x, tile.Region.Min.Y+y

		sample := &samples[j]
		*sample = ScreenSample{}
		if !r.inFrame(tile, x, y) {
			sample.disable()
			continue
		}
		sample.TileOffset = r.table.Offset(i)
		sample.PixelID = gy*r.fbWidth + gx
		sample.SampleID = tile.AccumID*r.spp + s

		rngs[j] = core.NewRNG(uint32(sample.PixelID), uint32(sample.SampleID))
		jitter := r.jitterAt(sample.SampleID, &rngs[j])
		sample.Sample = camera.Sample{
			Screen: core.NewVec2((float64(gx)+jitter.X)*rcpW, (float64(gy)+jitter.Y)*rcpH),
			Lens:   r.lensAt(sample.SampleID, &rngs[j]),
		}
	}
}

func (r *Renderer) jitterAt(sampleID int, rng *core.RNG) core.Vec2 {
	switch r.jitter {
	case JitterHalton:
		return core.NewVec2(core.Halton2(sampleID), core.Halton3(sampleID))
	case JitterRandom:
		return rng.Get2D()
	default:
		return core.NewVec2(0.5, 0.5)
	}
}

// lensAt returns the lens position of a sample. Two numbers are always drawn
// from rng; in halton mode the first lens dimension is the base-5 Halton value.
func (r *Renderer) lensAt(sampleID int, rng *core.RNG) core.Vec2 {
	lens := rng.Get2D()
	if r.jitter == JitterHalton {
		lens.X = core.Halton5(sampleID)
	}
	return lens
}

// trace runs camera rays, intersection and shading for the first n slots of b
func (r *Renderer) trace(ctx *integrator.Context, b *batch, n int) {
	switch {
	case r.strategy.usesLanes():
		r.traceLanes(ctx, b, n)
	case r.strategy.Parallel:
		r.traceParallel(ctx, b, n)
	case r.strategy.streamed():
		r.traceStream(ctx, b, n)
	default:
		r.traceScalar(ctx, b, n)
	}
}

func (r *Renderer) traceScalar(ctx *integrator.Context, b *batch, n int) {
	for j := 0; j < n; j++ {
		s := &b.samples[j]
		if s.TileOffset < 0 {
			continue
		}
		s.Ray = r.camera.GetRay(s.Sample)
		r.world.Intersect(&s.Ray)
		var res integrator.Result
		if s.Ray.Hit() {
			res = r.integrator.Shade(ctx, &s.Ray, &b.rngs[j])
		}
		r.finish(s, res)
	}
}

func (r *Renderer) traceStream(ctx *integrator.Context, b *batch, n int) {
	r.cameraRays(b, 0, n)
	core.IntersectStream(r.world, b.rays[:n])
	r.shadeStream(ctx, b, 0, n)
}

// traceParallel runs the generation and shading phases of a stream on the batch
// executor, with one intersection call between the two barriers
func (r *Renderer) traceParallel(ctx *integrator.Context, b *batch, n int) {
	r.executor.Run(n, func(lo, hi int) { r.cameraRays(b, lo, hi) })
	core.IntersectStream(r.world, b.rays[:n])
	r.executor.Run(n, func(lo, hi int) { r.shadeStream(ctx, b, lo, hi) })
}

// cameraRays generates the rays of slots [lo, hi); disabled slots get a nil ray
func (r *Renderer) cameraRays(b *batch, lo, hi int) {
	for j := lo; j < hi; j++ {
		s := &b.samples[j]
		if s.TileOffset < 0 {
			b.rays[j] = nil
			continue
		}
		s.Ray = r.camera.GetRay(s.Sample)
		b.rays[j] = &s.Ray
	}
}

// shadeStream shades the hits among slots [lo, hi) in one call and finishes every slot
func (r *Renderer) shadeStream(ctx *integrator.Context, b *batch, lo, hi int) {
	hits := make([]*core.Ray, hi-lo)
	for j := lo; j < hi; j++ {
		b.results[j] = integrator.Result{}
		if b.rays[j] != nil && b.rays[j].Hit() {
			hits[j-lo] = b.rays[j]
		}
	}
	r.integrator.ShadeStream(ctx, hits, b.rngPtrs[lo:hi], b.results[lo:hi])
	for j := lo; j < hi; j++ {
		if b.samples[j].TileOffset >= 0 {
			r.finish(&b.samples[j], b.results[j])
		}
	}
}

func (r *Renderer) traceLanes(ctx *integrator.Context, b *batch, n int) {
	width := r.strategy.LaneWidth
	groups := n / width

	for g := 0; g < groups; g++ {
		in := &b.laneInput[g]
		var mask core.Mask
		for l := 0; l < width; l++ {
			s := &b.samples[g*width+l]
			if s.TileOffset < 0 {
				continue
			}
			mask[l] = true
			in.Screen.Set(l, s.Sample.Screen)
			in.Lens.Set(l, s.Sample.Lens)
		}
		b.masks[g] = mask
		b.packets[g] = core.RayLanes{}
		r.laneCamera.GetRayLanes(in, mask, &b.packets[g])
	}

	if r.strategy.streamed() {
		core.IntersectLaneStream(r.world, b.packets[:groups], b.masks[:groups])
	} else {
		core.IntersectLanes(r.world, &b.packets[0], b.masks[0])
	}

	for g := 0; g < groups; g++ {
		packet := &b.packets[g]
		slots := b.results[g*width : (g+1)*width]
		clear(slots)
		if hit := packet.HitMask(b.masks[g]); hit.Any() {
			r.integrator.ShadeLanes(ctx, packet, hit, b.rngPtrs[g*width:(g+1)*width], slots)
		}
		for l := 0; l < width; l++ {
			if !b.masks[g][l] {
				continue
			}
			s := &b.samples[g*width+l]
			s.Ray = packet.Get(l)
			r.finish(s, slots[l])
		}
	}
}

// finish stores the shaded result of a sample, or the background on a miss
func (r *Renderer) finish(s *ScreenSample, res integrator.Result) {
	if !s.Ray.Hit() {
		s.RGB = r.bgColor
		s.Alpha = 0
		s.Z = math.Inf(1)
		return
	}
	s.RGB = res.Color
	s.Alpha = res.Alpha
	s.Z = s.Ray.T
}
