// Package renderer turns screen tiles into shaded pixels. One generic pipeline
// walks a tile in z-order and runs camera ray generation, intersection and shading
// under a Strategy that picks scalar rays or lane packets, single or batched.
package renderer

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/df07/go-tile-raytracer/pkg/camera"
	"github.com/df07/go-tile-raytracer/pkg/core"
	"github.com/df07/go-tile-raytracer/pkg/integrator"
	"github.com/df07/go-tile-raytracer/pkg/lights"
	"github.com/df07/go-tile-raytracer/pkg/params"
	"github.com/df07/go-tile-raytracer/pkg/zorder"
)

// State is the renderer lifecycle position
type State int32

const (
	StateUncommitted State = iota
	StateCommitted
	StateFraming
	StateIdle
)

func (s State) String() string {
	switch s {
	case StateUncommitted:
		return "uncommitted"
	case StateCommitted:
		return "committed"
	case StateFraming:
		return "framing"
	case StateIdle:
		return "idle"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// JitterMode selects the sub-pixel offset of each camera sample
type JitterMode string

const (
	JitterHalton JitterMode = "halton" // Halton bases 2 and 3 over the sample id, base 5 for the lens
	JitterRandom JitterMode = "random" // Uniform numbers from the sample's RNG
	JitterNone   JitterMode = "none"   // Pixel centers
)

// DefaultPixelsPerJob is the number of tile pixels one RenderTile call covers
const DefaultPixelsPerJob = 64

// lightLister is implemented by worlds that carry their own lights
type lightLister interface {
	LightList() []lights.Light
}

// Renderer renders tiles of a committed world through a camera.
// RenderTile may be called concurrently for different jobs of a frame.
type Renderer struct {
	strategy Strategy
	state    atomic.Int32

	world      integrator.Scene
	lights     []lights.Light
	camera     camera.Camera
	laneCamera camera.LaneCamera
	integrator integrator.Integrator

	spp          int
	bgColor      core.Vec3
	jitter       JitterMode
	tileSize     int
	pixelsPerJob int
	batchWorkers int
	table        *zorder.Table

	fb       FrameBuffer
	fbWidth  int
	fbHeight int

	executorOnce sync.Once
	executor     *BatchExecutor
}

// New creates an uncommitted renderer running strategy
func New(strategy Strategy) (*Renderer, error) {
	if err := strategy.validate(); err != nil {
		return nil, err
	}
	return &Renderer{strategy: strategy}, nil
}

// Strategy returns the execution strategy
func (r *Renderer) Strategy() Strategy {
	return r.strategy
}

// State returns the lifecycle state
func (r *Renderer) State() State {
	return State(r.state.Load())
}

// TileSize returns the committed tile edge length
func (r *Renderer) TileSize() int {
	return r.tileSize
}

// JobsPerTile returns how many RenderTile calls cover one tile
func (r *Renderer) JobsPerTile() int {
	return r.tileSize * r.tileSize / r.pixelsPerJob
}

// SamplesPerPixel returns the committed samples per pixel and frame
func (r *Renderer) SamplesPerPixel() int {
	return r.spp
}

// Commit reads the renderer parameters and binds world, camera and integrator.
//
// Parameters: world (integrator.Scene), camera (camera.Camera), lights ([]lights.Light,
// defaults to the world's), integrator (name or integrator.Integrator, default "ao"),
// spp, bgColor, jitter, tileSize, pixelsPerJob, batchWorkers. The integrator is
// committed with the same parameters.
func (r *Renderer) Commit(p *params.Params) error {
	if r.State() == StateFraming {
		return fmt.Errorf("commit during a frame: %w", core.ErrInvalidState)
	}

	cam, ok := p.Object("camera").(camera.Camera)
	if !ok || cam == nil {
		return fmt.Errorf("renderer commit: %w", core.ErrNoCamera)
	}
	world, ok := p.Object("world").(integrator.Scene)
	if !ok || world == nil {
		return fmt.Errorf("renderer commit: world is not set: %w", core.ErrInvalidParameter)
	}

	lightList, _ := p.Object("lights").([]lights.Light)
	if lightList == nil {
		if ll, ok := world.(lightLister); ok {
			lightList = ll.LightList()
		}
	}

	in, err := r.bindIntegrator(p)
	if err != nil {
		return err
	}

	spp := p.Int("spp", 1)
	if spp < 1 {
		return fmt.Errorf("renderer spp %d: %w", spp, core.ErrInvalidParameter)
	}
	jitter := JitterMode(p.String("jitter", string(JitterHalton)))
	switch jitter {
	case JitterHalton, JitterRandom, JitterNone:
	default:
		return fmt.Errorf("renderer jitter %q: %w", jitter, core.ErrInvalidParameter)
	}

	tileSize := p.Int("tileSize", DefaultTileSize)
	table, err := zorder.NewTable(tileSize)
	if err != nil {
		return fmt.Errorf("renderer tileSize: %w", err)
	}
	pixelsPerJob := p.Int("pixelsPerJob", min(DefaultPixelsPerJob, tileSize*tileSize))
	if pixelsPerJob <= 0 || (tileSize*tileSize)%pixelsPerJob != 0 || pixelsPerJob%r.strategy.LaneWidth != 0 {
		return fmt.Errorf("renderer pixelsPerJob %d must divide %d and be a multiple of %d: %w",
			pixelsPerJob, tileSize*tileSize, r.strategy.LaneWidth, core.ErrInvalidParameter)
	}

	r.world = world
	r.lights = lightList
	r.camera = cam
	r.laneCamera, _ = cam.(camera.LaneCamera)
	r.integrator = in
	r.spp = spp
	r.bgColor = p.Vec3("bgColor", core.Vec3{})
	r.jitter = jitter
	r.tileSize = tileSize
	r.pixelsPerJob = pixelsPerJob
	r.batchWorkers = p.Int("batchWorkers", runtime.GOMAXPROCS(0))
	r.table = table
	r.state.Store(int32(StateCommitted))

	log := core.Logger()
	if missing := core.MissingCapabilities(world); len(missing) > 0 && (r.strategy.usesLanes() || r.strategy.streamed()) {
		log.Warn("intersector lacks wide entry points, falling back to per-ray loops",
			"strategy", r.strategy.Name, "missing", missing)
	}
	log.Info("renderer committed",
		"strategy", r.strategy.Name, "integrator", in.Name(), "spp", spp,
		"tileSize", tileSize, "pixelsPerJob", pixelsPerJob, "jitter", jitter, "lights", len(lightList))
	return nil
}

func (r *Renderer) bindIntegrator(p *params.Params) (integrator.Integrator, error) {
	var in integrator.Integrator
	switch v := p.Object("integrator").(type) {
	case integrator.Integrator:
		in = v
	default:
		var err error
		in, err = integrator.New(p.String("integrator", "ao"))
		if err != nil {
			return nil, fmt.Errorf("renderer commit: %w", err)
		}
	}
	if err := in.Commit(p); err != nil {
		return nil, fmt.Errorf("integrator %s commit: %w", in.Name(), err)
	}
	return in, nil
}

// BeginFrame starts a frame on fb. Lane strategies need a camera that can fill lane packets.
func (r *Renderer) BeginFrame(fb FrameBuffer) error {
	switch r.State() {
	case StateCommitted, StateIdle:
	default:
		return fmt.Errorf("begin frame in state %s: %w", r.State(), core.ErrInvalidState)
	}
	if fb == nil {
		return fmt.Errorf("begin frame: nil frame buffer: %w", core.ErrInvalidParameter)
	}
	if r.strategy.usesLanes() && r.laneCamera == nil {
		return fmt.Errorf("strategy %s with camera %T: %w", r.strategy.Name, r.camera, core.ErrIncompatibleCamera)
	}

	width, height := fb.Size()
	if width <= 0 || height <= 0 {
		return fmt.Errorf("begin frame: frame buffer size %dx%d: %w", width, height, core.ErrInvalidParameter)
	}
	fb.BeginFrame()
	r.fb = fb
	r.fbWidth, r.fbHeight = width, height

	if r.strategy.Parallel {
		r.executorOnce.Do(func() {
			r.executor = NewBatchExecutor(r.batchWorkers)
		})
	}

	r.state.Store(int32(StateFraming))
	return nil
}

// RenderTile renders the pixels of job jobID of tile. Jobs cover disjoint pixels,
// so different jobs of the same tile may run concurrently.
func (r *Renderer) RenderTile(tile *Tile, jobID int) error {
	if r.State() != StateFraming {
		return fmt.Errorf("render tile in state %s: %w", r.State(), core.ErrInvalidState)
	}
	if err := tile.validate(r.tileSize); err != nil {
		return err
	}
	if jobID < 0 || jobID >= r.JobsPerTile() {
		return fmt.Errorf("job %d outside [0,%d): %w", jobID, r.JobsPerTile(), core.ErrInvalidParameter)
	}
	r.renderJob(tile, jobID)
	return nil
}

// EndFrame finishes the frame. Frame finalization belongs to the frame buffer's owner.
func (r *Renderer) EndFrame() error {
	if !r.state.CompareAndSwap(int32(StateFraming), int32(StateIdle)) {
		return fmt.Errorf("end frame in state %s: %w", r.State(), core.ErrInvalidState)
	}
	return nil
}

// RenderSample traces and shades a single screen sample. Only strategies that
// trace one ray at a time provide this entry point.
func (r *Renderer) RenderSample(s *ScreenSample) error {
	if r.strategy.usesLanes() || r.strategy.streamed() {
		return fmt.Errorf("strategy %s renders whole batches: %w", r.strategy.Name, core.ErrWrongEntryPoint)
	}
	switch r.State() {
	case StateCommitted, StateFraming, StateIdle:
	default:
		return fmt.Errorf("render sample in state %s: %w", r.State(), core.ErrInvalidState)
	}

	rng := core.NewRNG(uint32(s.PixelID), uint32(s.SampleID))
	s.Ray = r.camera.GetRay(s.Sample)
	r.world.Intersect(&s.Ray)
	var res integrator.Result
	if s.Ray.Hit() {
		ctx := &integrator.Context{Scene: r.world, Lights: r.lights, AccumID: s.SampleID / r.spp}
		res = r.integrator.Shade(ctx, &s.Ray, &rng)
	}
	r.finish(s, res)
	return nil
}

// Close releases the batch executor
func (r *Renderer) Close() {
	if r.executor != nil {
		r.executor.Close()
	}
}
