package renderer

import (
	"errors"
	"image"
	"math"
	"strconv"
	"testing"

	"github.com/df07/go-tile-raytracer/pkg/camera"
	"github.com/df07/go-tile-raytracer/pkg/core"
	"github.com/df07/go-tile-raytracer/pkg/params"
	"github.com/df07/go-tile-raytracer/pkg/scene"
)

// fixedFrameBuffer is a FrameBuffer that only counts frames
type fixedFrameBuffer struct {
	width, height int
	frames        int
}

func (fb *fixedFrameBuffer) BeginFrame()      { fb.frames++ }
func (fb *fixedFrameBuffer) Size() (int, int) { return fb.width, fb.height }

func buildScene(t *testing.T, name string) *scene.Scene {
	t.Helper()
	s, err := scene.Build(name)
	if err != nil {
		t.Fatalf("build scene %q: %v", name, err)
	}
	return s
}

func perspective(t *testing.T, s *scene.Scene, aspect float64) *camera.PerspectiveCamera {
	t.Helper()
	cam := &camera.PerspectiveCamera{}
	if err := cam.Commit(s.Camera.Clone().Set("aspect", aspect)); err != nil {
		t.Fatalf("commit camera: %v", err)
	}
	return cam
}

// newRenderer commits a renderer for scene s with the scene's recommended parameters plus extra
func newRenderer(t *testing.T, strategy Strategy, s *scene.Scene, cam camera.Camera, extra *params.Params) *Renderer {
	t.Helper()
	r, err := New(strategy)
	if err != nil {
		t.Fatalf("New(%s): %v", strategy, err)
	}
	p := s.Renderer.Clone().
		Set("world", s.World).
		Set("camera", cam).
		Merge(extra)
	if err := r.Commit(p); err != nil {
		t.Fatalf("commit %s: %v", strategy, err)
	}
	t.Cleanup(r.Close)
	return r
}

// renderFrame renders every job of every tile covering fb and returns the tiles
func renderFrame(t *testing.T, r *Renderer, fb FrameBuffer, accumID int) []*Tile {
	t.Helper()
	if err := r.BeginFrame(fb); err != nil {
		t.Fatalf("BeginFrame: %v", err)
	}
	w, h := fb.Size()
	var tiles []*Tile
	for _, origin := range NewTileGrid(w, h, r.TileSize()) {
		tile := NewTile(r.TileSize())
		tile.Reset(origin, accumID)
		for job := 0; job < r.JobsPerTile(); job++ {
			if err := r.RenderTile(tile, job); err != nil {
				t.Fatalf("RenderTile(%v, %d): %v", origin, job, err)
			}
		}
		tiles = append(tiles, tile)
	}
	if err := r.EndFrame(); err != nil {
		t.Fatalf("EndFrame: %v", err)
	}
	return tiles
}

func TestExampleTriangle(t *testing.T) {
	s := buildScene(t, "triangle")
	bg := core.NewVec3(0.1, 0.1, 0.15)

	for _, strategy := range Strategies() {
		t.Run(strategy.Name, func(t *testing.T) {
			r := newRenderer(t, strategy, s, perspective(t, s, 1), params.New().
				Set("integrator", "raycast").
				Set("tileSize", 8).
				Set("pixelsPerJob", 8).
				Set("spp", 1).
				Set("jitter", "none"))

			tiles := renderFrame(t, r, &fixedFrameBuffer{width: 8, height: 8}, 0)
			if len(tiles) != 1 {
				t.Fatalf("got %d tiles, want 1", len(tiles))
			}
			tile := tiles[0]

			c, alpha, z := tile.Pixel(4, 4)
			if math.Abs(z-5) > 0.1 {
				t.Errorf("center depth = %f, want ~5", z)
			}
			if alpha != 1 || c.IsZero() {
				t.Errorf("center pixel color %v alpha %f, want a shaded hit", c, alpha)
			}

			for _, corner := range []image.Point{{0, 0}, {7, 0}, {0, 7}, {7, 7}} {
				c, alpha, z := tile.Pixel(corner.X, corner.Y)
				if c != bg || alpha != 0 || !math.IsInf(z, 1) {
					t.Errorf("corner %v = (%v, %f, %f), want background", corner, c, alpha, z)
				}
			}
		})
	}
}

// TestStrategiesAgree renders the same frame with every strategy and expects
// bit-identical tiles, including tiles that straddle the frame edge.
func TestStrategiesAgree(t *testing.T) {
	s := buildScene(t, "spheregrid")
	fb := &fixedFrameBuffer{width: 40, height: 24}
	cam := perspective(t, s, 40.0/24.0)

	for _, integratorName := range []string{"raycast", "ao", "scivis"} {
		t.Run(integratorName, func(t *testing.T) {
			extra := params.New().
				Set("integrator", integratorName).
				Set("tileSize", 16).
				Set("pixelsPerJob", 64).
				Set("spp", 2).
				Set("jitter", "halton")

			reference := renderFrame(t, newRenderer(t, Scalar, s, cam, extra), fb, 3)
			for _, strategy := range Strategies()[1:] {
				tiles := renderFrame(t, newRenderer(t, strategy, s, cam, extra), fb, 3)
				for i := range reference {
					if diff := firstDifference(reference[i], tiles[i]); diff != "" {
						t.Errorf("%s tile %v: %s", strategy, tiles[i].Region.Min, diff)
					}
				}
			}
		})
	}
}

func firstDifference(a, b *Tile) string {
	channels := []struct {
		name string
		a, b []float64
	}{
		{"R", a.R, b.R}, {"G", a.G, b.G}, {"B", a.B, b.B}, {"A", a.A, b.A}, {"Z", a.Z, b.Z},
	}
	for _, ch := range channels {
		for i := range ch.a {
			if ch.a[i] != ch.b[i] {
				return ch.name + " differs at offset " + strconv.Itoa(i)
			}
		}
	}
	return ""
}

func TestOutOfBoundsSamplesNeverWrite(t *testing.T) {
	s := buildScene(t, "triangle")
	const sentinel = -7.0

	for _, strategy := range Strategies() {
		t.Run(strategy.Name, func(t *testing.T) {
			r := newRenderer(t, strategy, s, perspective(t, s, 1), params.New().
				Set("integrator", "ao").
				Set("tileSize", 8).
				Set("pixelsPerJob", 16).
				Set("spp", 3))

			if err := r.BeginFrame(&fixedFrameBuffer{width: 10, height: 10}); err != nil {
				t.Fatalf("BeginFrame: %v", err)
			}
			tile := NewTile(8)
			tile.Reset(image.Pt(8, 8), 0)
			tile.Fill(core.Splat(sentinel), sentinel, sentinel)
			for job := 0; job < r.JobsPerTile(); job++ {
				if err := r.RenderTile(tile, job); err != nil {
					t.Fatalf("RenderTile: %v", err)
				}
			}

			for y := 0; y < 8; y++ {
				for x := 0; x < 8; x++ {
					c, alpha, z := tile.Pixel(x, y)
					inside := x < 2 && y < 2
					untouched := c == core.Splat(sentinel) && alpha == sentinel && z == sentinel
					if inside && untouched {
						t.Errorf("in-frame pixel (%d,%d) was not written", x, y)
					}
					if !inside && !untouched {
						t.Errorf("out-of-frame pixel (%d,%d) was written: %v %f %f", x, y, c, alpha, z)
					}
				}
			}
		})
	}
}

func TestSamplesAverageWithoutJitter(t *testing.T) {
	s := buildScene(t, "triangle")
	cam := perspective(t, s, 1)
	fb := &fixedFrameBuffer{width: 8, height: 8}
	base := params.New().Set("integrator", "raycast").Set("tileSize", 8).Set("jitter", "none")

	one := renderFrame(t, newRenderer(t, Stream, s, cam, base.Clone().Set("spp", 1)), fb, 0)[0]
	four := renderFrame(t, newRenderer(t, Stream, s, cam, base.Clone().Set("spp", 4)), fb, 0)[0]
	for i := range one.R {
		if math.Abs(one.R[i]-four.R[i]) > 1e-12 || math.Abs(one.A[i]-four.A[i]) > 1e-12 {
			t.Fatalf("offset %d: spp 4 = (%f,%f), spp 1 = (%f,%f)", i, four.R[i], four.A[i], one.R[i], one.A[i])
		}
	}
}

func TestStateMachine(t *testing.T) {
	s := buildScene(t, "triangle")
	cam := perspective(t, s, 1)
	fb := &fixedFrameBuffer{width: 8, height: 8}
	extra := params.New().Set("tileSize", 8).Set("pixelsPerJob", 64)

	t.Run("commit without camera", func(t *testing.T) {
		r, _ := New(Scalar)
		err := r.Commit(params.New().Set("world", s.World))
		if !errors.Is(err, core.ErrNoCamera) {
			t.Errorf("error = %v, want ErrNoCamera", err)
		}
		if r.State() != StateUncommitted {
			t.Errorf("state = %s, want uncommitted", r.State())
		}
	})

	t.Run("render before begin frame", func(t *testing.T) {
		r := newRenderer(t, Scalar, s, cam, extra)
		if err := r.RenderTile(NewTile(8), 0); !errors.Is(err, core.ErrInvalidState) {
			t.Errorf("error = %v, want ErrInvalidState", err)
		}
		if err := r.EndFrame(); !errors.Is(err, core.ErrInvalidState) {
			t.Errorf("EndFrame error = %v, want ErrInvalidState", err)
		}
	})

	t.Run("lifecycle", func(t *testing.T) {
		r := newRenderer(t, Scalar, s, cam, extra)
		if r.State() != StateCommitted {
			t.Fatalf("state = %s, want committed", r.State())
		}
		if err := r.BeginFrame(fb); err != nil {
			t.Fatalf("BeginFrame: %v", err)
		}
		if fb.frames != 1 {
			t.Errorf("frame buffer saw %d frames, want 1", fb.frames)
		}
		if err := r.BeginFrame(fb); !errors.Is(err, core.ErrInvalidState) {
			t.Errorf("nested BeginFrame error = %v, want ErrInvalidState", err)
		}
		if err := r.Commit(params.New()); !errors.Is(err, core.ErrInvalidState) {
			t.Errorf("Commit while framing error = %v, want ErrInvalidState", err)
		}
		if err := r.RenderTile(NewTile(8), 1); !errors.Is(err, core.ErrInvalidParameter) {
			t.Errorf("job out of range error = %v, want ErrInvalidParameter", err)
		}
		if err := r.RenderTile(NewTile(16), 0); !errors.Is(err, core.ErrInvalidParameter) {
			t.Errorf("wrong tile size error = %v, want ErrInvalidParameter", err)
		}
		if err := r.EndFrame(); err != nil {
			t.Fatalf("EndFrame: %v", err)
		}
		if r.State() != StateIdle {
			t.Errorf("state = %s, want idle", r.State())
		}
		if err := r.BeginFrame(fb); err != nil {
			t.Errorf("second frame BeginFrame: %v", err)
		}
	})

	t.Run("lanes need a lane camera", func(t *testing.T) {
		ortho := &camera.OrthographicCamera{}
		if err := ortho.Commit(params.New().Set("direction", core.NewVec3(0, 0, 1)).Set("height", 6.0)); err != nil {
			t.Fatalf("commit ortho: %v", err)
		}
		for _, strategy := range []Strategy{Lanes, StreamLanes} {
			r := newRenderer(t, strategy, s, ortho, extra)
			if err := r.BeginFrame(fb); !errors.Is(err, core.ErrIncompatibleCamera) {
				t.Errorf("%s BeginFrame error = %v, want ErrIncompatibleCamera", strategy, err)
			}
		}
		r := newRenderer(t, Scalar, s, ortho, extra)
		if err := r.BeginFrame(fb); err != nil {
			t.Errorf("scalar with orthographic camera: %v", err)
		}
	})

	t.Run("bad pixels per job", func(t *testing.T) {
		r, _ := New(Lanes)
		err := r.Commit(s.Renderer.Clone().
			Set("world", s.World).Set("camera", cam).
			Set("tileSize", 8).Set("pixelsPerJob", 12))
		if !errors.Is(err, core.ErrInvalidParameter) {
			t.Errorf("error = %v, want ErrInvalidParameter", err)
		}
	})
}

func TestRenderSample(t *testing.T) {
	s := buildScene(t, "triangle")
	cam := perspective(t, s, 1)
	extra := params.New().Set("integrator", "raycast").Set("tileSize", 8)

	r := newRenderer(t, Scalar, s, cam, extra)
	sample := ScreenSample{Sample: camera.Sample{Screen: core.NewVec2(0.5, 0.5)}}
	if err := r.RenderSample(&sample); err != nil {
		t.Fatalf("RenderSample: %v", err)
	}
	if math.Abs(sample.Z-5) > 1e-9 || sample.Alpha != 1 {
		t.Errorf("center sample z=%f alpha=%f, want 5 and 1", sample.Z, sample.Alpha)
	}

	for _, strategy := range []Strategy{Lanes, Stream, StreamLanes, TaskBatch} {
		r := newRenderer(t, strategy, s, cam, extra)
		if err := r.RenderSample(&sample); !errors.Is(err, core.ErrWrongEntryPoint) {
			t.Errorf("%s RenderSample error = %v, want ErrWrongEntryPoint", strategy, err)
		}
	}
}

func TestParseStrategy(t *testing.T) {
	for _, s := range Strategies() {
		got, err := ParseStrategy(s.Name)
		if err != nil || got != s {
			t.Errorf("ParseStrategy(%q) = %v, %v", s.Name, got, err)
		}
	}
	if _, err := ParseStrategy("fibers"); !errors.Is(err, core.ErrInvalidParameter) {
		t.Errorf("unknown strategy error = %v, want ErrInvalidParameter", err)
	}
	if _, err := New(Strategy{Name: "wide", LaneWidth: 3, BatchSize: 1}); !errors.Is(err, core.ErrInvalidParameter) {
		t.Errorf("bad lane width error = %v, want ErrInvalidParameter", err)
	}
}

func TestJitterModes(t *testing.T) {
	s := buildScene(t, "triangle")
	cam := perspective(t, s, 1)
	const spp = 2

	generated := func(t *testing.T, jitter JitterMode) []ScreenSample {
		t.Helper()
		r := newRenderer(t, Scalar, s, cam, params.New().
			Set("tileSize", 8).Set("spp", spp).Set("jitter", string(jitter)))
		if err := r.BeginFrame(&fixedFrameBuffer{width: 8, height: 8}); err != nil {
			t.Fatalf("BeginFrame: %v", err)
		}
		tile := NewTile(8)
		tile.Reset(image.Pt(0, 0), 1)
		samples := make([]ScreenSample, 2*spp)
		r.generate(tile, 0, 0, samples, make([]core.RNG, len(samples)))
		return samples
	}

	halton := generated(t, JitterHalton)
	none := generated(t, JitterNone)
	random := generated(t, JitterRandom)

	for j := range halton {
		h, n := halton[j], none[j]
		if h.SampleID != 1*spp+j%spp {
			t.Fatalf("slot %d sample id = %d", j, h.SampleID)
		}
		gx := float64(h.PixelID % 8)
		if want := (gx + core.Halton2(h.SampleID)) / 8; h.Sample.Screen.X != want {
			t.Errorf("slot %d halton screen x = %f, want %f", j, h.Sample.Screen.X, want)
		}
		if want := (gx + 0.5) / 8; n.Sample.Screen.X != want {
			t.Errorf("slot %d centered screen x = %f, want %f", j, n.Sample.Screen.X, want)
		}
		if h.Sample.Lens.X != core.Halton5(h.SampleID) {
			t.Errorf("slot %d halton lens x = %f, want base-5 value %f", j, h.Sample.Lens.X, core.Halton5(h.SampleID))
		}
		// Both modes draw the lens from the same RNG position
		if h.Sample.Lens.Y != n.Sample.Lens.Y {
			t.Errorf("slot %d lens y differs: halton %f, none %f", j, h.Sample.Lens.Y, n.Sample.Lens.Y)
		}
		if r := random[j].Sample.Screen; r.X < 0 || r.X >= 1 || r.Y < 0 || r.Y >= 1 {
			t.Errorf("slot %d random screen position %v outside the frame", j, r)
		}
	}
}
