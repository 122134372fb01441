package renderer

import (
	"fmt"
	"image"
	"math"

	"github.com/df07/go-tile-raytracer/pkg/camera"
	"github.com/df07/go-tile-raytracer/pkg/core"
)

// DefaultTileSize is the edge length of a tile in pixels
const DefaultTileSize = 64

// Tile is the output buffer of one square image region. Channels are stored as
// flat arrays indexed by y*Size+x in tile-local coordinates. A tile is owned by
// exactly one job at a time while it is rendered.
type Tile struct {
	Region  image.Rectangle // Frame-buffer pixels covered; may extend past the frame buffer edge
	Size    int             // Edge length of the buffers
	AccumID int             // Progressive frame index this tile is rendered for

	R, G, B, A, Z []float64
}

// NewTile allocates a size×size tile
func NewTile(size int) *Tile {
	n := size * size
	return &Tile{
		Size: size,
		R:    make([]float64, n),
		G:    make([]float64, n),
		B:    make([]float64, n),
		A:    make([]float64, n),
		Z:    make([]float64, n),
	}
}

// Reset positions the tile at origin for frame accumID
func (t *Tile) Reset(origin image.Point, accumID int) {
	t.Region = image.Rectangle{Min: origin, Max: origin.Add(image.Pt(t.Size, t.Size))}
	t.AccumID = accumID
}

// Fill sets every pixel of the tile
func (t *Tile) Fill(c core.Vec3, alpha, z float64) {
	for i := range t.R {
		t.R[i], t.G[i], t.B[i], t.A[i], t.Z[i] = c.X, c.Y, c.Z, alpha, z
	}
}

// Set writes one pixel at a buffer offset
func (t *Tile) Set(offset int, c core.Vec3, alpha, z float64) {
	t.R[offset] = c.X
	t.G[offset] = c.Y
	t.B[offset] = c.Z
	t.A[offset] = alpha
	t.Z[offset] = z
}

// Pixel returns the pixel at tile-local (x, y)
func (t *Tile) Pixel(x, y int) (c core.Vec3, alpha, z float64) {
	i := y*t.Size + x
	return core.NewVec3(t.R[i], t.G[i], t.B[i]), t.A[i], t.Z[i]
}

func (t *Tile) validate(size int) error {
	if t == nil {
		return fmt.Errorf("nil tile: %w", core.ErrInvalidParameter)
	}
	n := size * size
	if t.Size != size || len(t.R) != n || len(t.G) != n || len(t.B) != n || len(t.A) != n || len(t.Z) != n {
		return fmt.Errorf("tile of size %d does not match renderer tile size %d: %w", t.Size, size, core.ErrInvalidParameter)
	}
	return nil
}

// ScreenSample is one camera sample travelling through the pipeline
type ScreenSample struct {
	Sample     camera.Sample
	Ray        core.Ray
	RGB        core.Vec3
	Alpha      float64
	Z          float64
	PixelID    int // Global pixel index y*width+x
	SampleID   int // accumID*spp + sample index
	TileOffset int // Buffer offset in the tile, -1 for samples that must not be written
}

// disable marks a sample that falls outside the frame buffer
func (s *ScreenSample) disable() {
	s.TileOffset = -1
	s.RGB = core.Vec3{}
	s.Alpha = 0
	s.Z = math.Inf(1)
}
