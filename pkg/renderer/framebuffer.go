package renderer

import (
	"fmt"
	"image"

	"github.com/df07/go-tile-raytracer/pkg/core"
)

// FrameBuffer is the host-side target of a frame
type FrameBuffer interface {
	// BeginFrame is called once when the renderer starts a frame
	BeginFrame()
	// Size returns the resolution in pixels
	Size() (width, height int)
}

// LocalFrameBuffer accumulates finished tiles in memory across progressive frames.
// Row 0 is the bottom of the image.
type LocalFrameBuffer struct {
	width, height int
	pixels        []PixelStats
	accumID       int
}

// NewLocalFrameBuffer creates an empty width×height frame buffer
func NewLocalFrameBuffer(width, height int) (*LocalFrameBuffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("frame buffer size %dx%d: %w", width, height, core.ErrInvalidParameter)
	}
	return &LocalFrameBuffer{
		width:   width,
		height:  height,
		pixels:  make([]PixelStats, width*height),
		accumID: -1,
	}, nil
}

// BeginFrame advances the accumulation frame index
func (fb *LocalFrameBuffer) BeginFrame() {
	fb.accumID++
}

// Size returns the resolution in pixels
func (fb *LocalFrameBuffer) Size() (int, int) {
	return fb.width, fb.height
}

// AccumID returns the index of the current frame, starting at 0
func (fb *LocalFrameBuffer) AccumID() int {
	return max(fb.accumID, 0)
}

// Clear discards every accumulated frame
func (fb *LocalFrameBuffer) Clear() {
	clear(fb.pixels)
	fb.accumID = -1
}

// Accumulate adds the in-bounds pixels of a finished tile. Tiles of one frame
// cover disjoint regions, so tiles may be accumulated concurrently.
func (fb *LocalFrameBuffer) Accumulate(tile *Tile) {
	region := tile.Region.Intersect(image.Rect(0, 0, fb.width, fb.height))
	for y := region.Min.Y; y < region.Max.Y; y++ {
		for x := region.Min.X; x < region.Max.X; x++ {
			c, alpha, z := tile.Pixel(x-tile.Region.Min.X, y-tile.Region.Min.Y)
			fb.pixels[y*fb.width+x].AddSample(c, alpha, z)
		}
	}
}

// Pixel returns the averaged color and coverage at (x, y)
func (fb *LocalFrameBuffer) Pixel(x, y int) (core.Vec3, float64) {
	ps := &fb.pixels[y*fb.width+x]
	return ps.GetColor(), ps.GetAlpha()
}

// Depth returns the depth of the most recent frame at (x, y)
func (fb *LocalFrameBuffer) Depth(x, y int) float64 {
	return fb.pixels[y*fb.width+x].Depth
}

// Stats returns the accumulation statistics at (x, y)
func (fb *LocalFrameBuffer) Stats(x, y int) PixelStats {
	return fb.pixels[y*fb.width+x]
}
