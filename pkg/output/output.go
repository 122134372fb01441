// Package output converts accumulated frames into images and writes them to disk.
package output

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/draw"

	"github.com/df07/go-tile-raytracer/pkg/core"
)

// PixelSource is a frame whose row 0 is the bottom of the image
type PixelSource interface {
	Size() (width, height int)
	Pixel(x, y int) (core.Vec3, float64)
}

// Options controls the conversion from linear radiance to 8-bit pixels
type Options struct {
	Gamma float64 // Display gamma, 1 leaves values linear
	Alpha bool    // Keep the frame's coverage instead of writing opaque pixels
}

// DefaultOptions matches the gamma the progressive renderer always used
func DefaultOptions() Options {
	return Options{Gamma: 2.0}
}

// Image converts the whole frame
func Image(src PixelSource, opts Options) *image.NRGBA {
	w, h := src.Size()
	return Region(src, image.Rect(0, 0, w, h), opts)
}

// Region converts the part of the frame inside r. The result is flipped so its
// top row is the highest frame row of r.
func Region(src PixelSource, r image.Rectangle, opts Options) *image.NRGBA {
	w, h := src.Size()
	r = r.Intersect(image.Rect(0, 0, w, h))
	img := image.NewNRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := r.Max.Y - 1 - y
		for x := r.Min.X; x < r.Max.X; x++ {
			c, alpha := src.Pixel(x, y)
			img.SetNRGBA(x-r.Min.X, row, ToColor(c, alpha, opts))
		}
	}
	return img
}

// ToColor gamma-corrects, clamps and quantizes one pixel
func ToColor(c core.Vec3, alpha float64, opts Options) color.NRGBA {
	if opts.Gamma > 0 && opts.Gamma != 1 {
		c = c.Clamp(0, 1).GammaCorrect(opts.Gamma)
	}
	c = c.Clamp(0, 1)
	a := uint8(255)
	if opts.Alpha {
		a = uint8(255*min(max(alpha, 0), 1) + 0.5)
	}
	return color.NRGBA{
		R: uint8(255*c.X + 0.5),
		G: uint8(255*c.Y + 0.5),
		B: uint8(255*c.Z + 0.5),
		A: a,
	}
}

// Resample scales img to width×height with a Catmull-Rom filter
func Resample(img image.Image, width, height int) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

// Formats lists the file extensions Save understands
func Formats() []string {
	return []string{".png", ".webp", ".tga", ".jpg", ".jpeg"}
}

// Encode writes img in the named format (a file extension such as ".png")
func Encode(w io.Writer, img image.Image, format string) error {
	switch strings.ToLower(format) {
	case ".png":
		return png.Encode(w, img)
	case ".webp":
		return nativewebp.Encode(w, img, nil)
	case ".tga":
		return tga.Encode(w, img)
	case ".jpg", ".jpeg":
		return jpeg.Encode(w, img, &jpeg.Options{Quality: 95})
	default:
		return fmt.Errorf("unsupported image format %q (have %v): %w", format, Formats(), core.ErrInvalidParameter)
	}
}

// Save writes img to path, choosing the encoder from the file extension and
// creating the parent directory
func Save(path string, img image.Image) (err error) {
	ext := filepath.Ext(path)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	if err := Encode(f, img, ext); err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return nil
}
