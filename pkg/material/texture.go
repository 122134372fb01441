package material

import (
	"math"

	"github.com/df07/go-tile-raytracer/pkg/core"
)

// ColorSource provides spatially-varying colors for materials
type ColorSource interface {
	// Evaluate returns the color at a texture coordinate
	Evaluate(uv core.Vec2) core.Vec3
}

// SolidColor provides a uniform color
type SolidColor struct {
	Color core.Vec3
}

// NewSolidColor creates a new solid color source
func NewSolidColor(color core.Vec3) *SolidColor {
	return &SolidColor{Color: color}
}

// Evaluate returns the solid color regardless of texture coordinate
func (s *SolidColor) Evaluate(uv core.Vec2) core.Vec3 {
	return s.Color
}

// Filter selects how an ImageTexture reconstructs between texels
type Filter int

const (
	FilterNearest Filter = iota
	FilterBilinear
)

// ImageTexture provides color from a 2D image with repeat wrapping.
// V=0 is the bottom row of the image.
type ImageTexture struct {
	Width  int
	Height int
	Pixels []core.Vec3 // Row-major, top row first: Pixels[y*Width + x]
	Filter Filter
}

// NewImageTexture creates a nearest-neighbour image texture
func NewImageTexture(width, height int, pixels []core.Vec3) *ImageTexture {
	return &ImageTexture{
		Width:  width,
		Height: height,
		Pixels: pixels,
	}
}

func wrap(x float64) float64 {
	return x - math.Floor(x)
}

func (t *ImageTexture) texel(x, y int) core.Vec3 {
	x %= t.Width
	if x < 0 {
		x += t.Width
	}
	y %= t.Height
	if y < 0 {
		y += t.Height
	}
	return t.Pixels[y*t.Width+x]
}

// Evaluate samples the texture at uv
func (t *ImageTexture) Evaluate(uv core.Vec2) core.Vec3 {
	if t.Width == 0 || t.Height == 0 {
		return core.Vec3{}
	}
	u := wrap(uv.X)
	v := 1.0 - wrap(uv.Y)

	if t.Filter == FilterNearest {
		x := min(int(u*float64(t.Width)), t.Width-1)
		y := min(int(v*float64(t.Height)), t.Height-1)
		return t.Pixels[y*t.Width+x]
	}

	// Bilinear between texel centers
	fx := u*float64(t.Width) - 0.5
	fy := v*float64(t.Height) - 0.5
	x0 := int(math.Floor(fx))
	y0 := int(math.Floor(fy))
	tx := fx - float64(x0)
	ty := fy - float64(y0)

	top := t.texel(x0, y0).Multiply(1 - tx).Add(t.texel(x0+1, y0).Multiply(tx))
	bottom := t.texel(x0, y0+1).Multiply(1 - tx).Add(t.texel(x0+1, y0+1).Multiply(tx))
	return top.Multiply(1 - ty).Add(bottom.Multiply(ty))
}

// NewCheckerboardTexture creates a procedural checkerboard pattern texture
func NewCheckerboardTexture(width, height, checkSize int, color1, color2 core.Vec3) *ImageTexture {
	pixels := make([]core.Vec3, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if (x/checkSize+y/checkSize)%2 == 0 {
				pixels[y*width+x] = color1
			} else {
				pixels[y*width+x] = color2
			}
		}
	}
	return NewImageTexture(width, height, pixels)
}
