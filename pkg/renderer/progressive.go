package renderer

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"time"

	"github.com/df07/go-tile-raytracer/pkg/core"
	"github.com/df07/go-tile-raytracer/pkg/output"
)

// ProgressiveConfig contains configuration for progressive rendering
type ProgressiveConfig struct {
	MaxPasses  int            // Number of frames accumulated
	NumWorkers int            // Number of parallel workers (0 = use CPU count)
	Output     output.Options // Conversion of the accumulated frame to pixels
}

// DefaultProgressiveConfig returns sensible default values
func DefaultProgressiveConfig() ProgressiveConfig {
	return ProgressiveConfig{
		MaxPasses:  8,
		NumWorkers: 0,
		Output:     output.DefaultOptions(),
	}
}

// ProgressiveRaytracer drives a committed renderer over the whole image, one
// frame per pass, and accumulates the frames in a LocalFrameBuffer
type ProgressiveRaytracer struct {
	renderer      *Renderer
	width, height int
	config        ProgressiveConfig
	tiles         []*Tile
	origins       []image.Point
	frameBuffer   *LocalFrameBuffer
	workerPool    *WorkerPool
	currentPass   int
}

// NewProgressiveRaytracer creates a progressive driver for a committed renderer
func NewProgressiveRaytracer(r *Renderer, width, height int, config ProgressiveConfig) (*ProgressiveRaytracer, error) {
	if r.State() == StateUncommitted {
		return nil, fmt.Errorf("progressive raytracer needs a committed renderer: %w", core.ErrInvalidState)
	}
	if config.MaxPasses < 1 {
		return nil, fmt.Errorf("progressive max passes %d: %w", config.MaxPasses, core.ErrInvalidParameter)
	}
	fb, err := NewLocalFrameBuffer(width, height)
	if err != nil {
		return nil, err
	}

	origins := NewTileGrid(width, height, r.TileSize())
	tiles := make([]*Tile, len(origins))
	for i := range tiles {
		tiles[i] = NewTile(r.TileSize())
	}

	return &ProgressiveRaytracer{
		renderer:    r,
		width:       width,
		height:      height,
		config:      config,
		tiles:       tiles,
		origins:     origins,
		frameBuffer: fb,
		workerPool:  NewWorkerPool(r, config.NumWorkers, len(tiles)*r.JobsPerTile()),
	}, nil
}

// NewTileGrid returns the origin of every tile covering a width×height image, row by row
func NewTileGrid(width, height, tileSize int) []image.Point {
	var origins []image.Point
	for y := 0; y < height; y += tileSize {
		for x := 0; x < width; x += tileSize {
			origins = append(origins, image.Pt(x, y))
		}
	}
	return origins
}

// FrameBuffer returns the accumulated frames
func (pr *ProgressiveRaytracer) FrameBuffer() *LocalFrameBuffer {
	return pr.frameBuffer
}

// RenderPass renders one frame over every tile and accumulates it
func (pr *ProgressiveRaytracer) RenderPass(passNumber int, tileCallback func(TileCompletionResult)) (*image.NRGBA, RenderStats, error) {
	pr.currentPass = passNumber
	startTime := time.Now()

	if err := pr.renderer.BeginFrame(pr.frameBuffer); err != nil {
		return nil, RenderStats{}, fmt.Errorf("pass %d: %w", passNumber, err)
	}
	pr.workerPool.Start()

	accumID := pr.frameBuffer.AccumID()
	jobs := pr.renderer.JobsPerTile()
	pending := make([]int, len(pr.tiles))
	for i, tile := range pr.tiles {
		tile.Reset(pr.origins[i], accumID)
		pending[i] = jobs
		for job := 0; job < jobs; job++ {
			pr.workerPool.SubmitTask(TileTask{Tile: tile, JobID: job, TaskID: i})
		}
	}

	var errs []error
	completed := 0
	for n := 0; n < len(pr.tiles)*jobs; n++ {
		result, ok := pr.workerPool.GetResult()
		if !ok {
			errs = append(errs, errors.New("worker pool closed unexpectedly"))
			break
		}
		if result.Error != nil {
			errs = append(errs, fmt.Errorf("tile %d job %d: %w", result.TaskID, result.JobID, result.Error))
			continue
		}

		pending[result.TaskID]--
		if pending[result.TaskID] > 0 {
			continue
		}

		tile := pr.tiles[result.TaskID]
		pr.frameBuffer.Accumulate(tile)
		completed++

		if tileCallback != nil {
			tileSize := pr.renderer.TileSize()
			tileCallback(TileCompletionResult{
				TileX:       tile.Region.Min.X / tileSize,
				TileY:       tile.Region.Min.Y / tileSize,
				TileImage:   output.Region(pr.frameBuffer, tile.Region, pr.config.Output),
				PassNumber:  passNumber,
				TileNumber:  completed,
				TotalTiles:  len(pr.tiles),
				TotalPasses: pr.config.MaxPasses,
			})
		}
	}

	if err := pr.renderer.EndFrame(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return nil, RenderStats{}, fmt.Errorf("pass %d: %w", passNumber, errors.Join(errs...))
	}

	img, stats := pr.assembleCurrentImage()
	stats.Frame = accumID
	stats.Tiles = len(pr.tiles)
	stats.Jobs = len(pr.tiles) * jobs
	stats.Duration = time.Since(startTime)
	return img, stats, nil
}

// PassResult contains the result of a single pass
type PassResult struct {
	PassNumber int
	Image      *image.NRGBA
	Stats      RenderStats
	IsLast     bool
}

// TileCompletionResult contains information about a completed tile for callbacks
type TileCompletionResult struct {
	TileX      int // Tile coordinates (not pixel coordinates), row 0 at the bottom
	TileY      int
	TileImage  *image.NRGBA // Accumulated image of just this tile
	PassNumber int          // Which pass this tile was rendered in

	// Progress information
	TileNumber  int // Current tile number in this pass (1-based)
	TotalTiles  int // Total number of tiles in the image
	TotalPasses int // Total number of passes planned
}

// RenderOptions configures progressive rendering behavior
type RenderOptions struct {
	TileUpdates bool // Whether to generate tile completion events
}

// RenderProgressive renders with channel-based communication.
// The caller should read from the returned channels in separate goroutines.
// If options.TileUpdates is false, the tile channel is closed immediately.
func (pr *ProgressiveRaytracer) RenderProgressive(ctx context.Context, options RenderOptions) (<-chan PassResult, <-chan TileCompletionResult, <-chan error) {
	passChan := make(chan PassResult, 1)
	tileChan := make(chan TileCompletionResult, 100)
	errChan := make(chan error, 1)

	if !options.TileUpdates {
		close(tileChan)
	}

	go func() {
		defer close(passChan)
		if options.TileUpdates {
			defer close(tileChan)
		}
		defer close(errChan)
		defer pr.workerPool.Stop()

		log := core.Logger()
		log.Info("starting progressive rendering",
			"passes", pr.config.MaxPasses, "workers", pr.workerPool.GetNumWorkers(),
			"strategy", pr.renderer.Strategy().Name, "tiles", len(pr.tiles))

		for pass := 1; pass <= pr.config.MaxPasses; pass++ {
			select {
			case <-ctx.Done():
				log.Info("rendering cancelled", "pass", pass)
				errChan <- ctx.Err()
				return
			default:
			}

			var tileCallback func(TileCompletionResult)
			if options.TileUpdates {
				tileCallback = func(result TileCompletionResult) {
					select {
					case tileChan <- result:
					case <-ctx.Done():
					default:
						log.Debug("tile update dropped", "pass", result.PassNumber, "tile", result.TileNumber)
					}
				}
			}

			img, stats, err := pr.RenderPass(pass, tileCallback)
			if err != nil {
				errChan <- err
				return
			}

			log.Info("pass completed",
				"pass", pass, "duration", stats.Duration, "spp", stats.AverageSamples,
				"hits", stats.Hits, "variance", stats.MeanVariance, "luminance", CalculateAverageLuminance(img))

			select {
			case passChan <- PassResult{PassNumber: pass, Image: img, Stats: stats, IsLast: pass == pr.config.MaxPasses}:
			case <-ctx.Done():
				return
			}
		}
	}()

	return passChan, tileChan, errChan
}

// Close stops the workers and releases the renderer's batch executor
func (pr *ProgressiveRaytracer) Close() {
	pr.workerPool.Stop()
	pr.renderer.Close()
}

// assembleCurrentImage converts the frame buffer and gathers statistics in a single pass
func (pr *ProgressiveRaytracer) assembleCurrentImage() (*image.NRGBA, RenderStats) {
	stats := RenderStats{TotalPixels: pr.width * pr.height}
	spp := pr.renderer.SamplesPerPixel()
	for y := 0; y < pr.height; y++ {
		for x := 0; x < pr.width; x++ {
			ps := pr.frameBuffer.Stats(x, y)
			stats.TotalSamples += ps.SampleCount * spp
			if !math.IsInf(ps.Depth, 1) {
				stats.Hits++
			}
			stats.MeanVariance += ps.Variance()
		}
	}
	stats.AverageSamples = float64(stats.TotalSamples) / float64(stats.TotalPixels)
	stats.MeanVariance /= float64(stats.TotalPixels)
	return output.Image(pr.frameBuffer, pr.config.Output), stats
}
