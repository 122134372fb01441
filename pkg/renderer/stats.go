package renderer

import (
	"image"
	"time"

	"github.com/df07/go-tile-raytracer/pkg/core"
)

// RenderStats contains statistics about one progressive pass
type RenderStats struct {
	Frame          int           // AccumID of the pass
	TotalPixels    int           // Pixels in the frame buffer
	TotalSamples   int           // Camera samples accumulated over all passes
	AverageSamples float64       // Samples per pixel so far
	Tiles          int           // Tiles rendered in this pass
	Jobs           int           // RenderTile calls in this pass
	Hits           int           // Pixels covered by geometry in this pass
	MeanVariance   float64       // Mean per-pixel luminance variance across frames
	Duration       time.Duration // Wall time of this pass
}

// PixelStats accumulates the per-frame results of a single pixel
type PixelStats struct {
	ColorAccum       core.Vec3 // RGB accumulator for final result
	AlphaAccum       float64
	LuminanceAccum   float64 // Luminance accumulator for convergence
	LuminanceSqAccum float64 // Luminance squared for variance
	Depth            float64 // Depth of the most recent frame
	SampleCount      int     // Number of frames accumulated
}

// AddSample adds one frame's result to the pixel statistics
func (ps *PixelStats) AddSample(color core.Vec3, alpha, depth float64) {
	ps.ColorAccum = ps.ColorAccum.Add(color)
	ps.AlphaAccum += alpha
	luminance := color.Luminance()
	ps.LuminanceAccum += luminance
	ps.LuminanceSqAccum += luminance * luminance
	ps.Depth = depth
	ps.SampleCount++
}

// GetColor returns the current average color for this pixel
func (ps *PixelStats) GetColor() core.Vec3 {
	if ps.SampleCount == 0 {
		return core.Vec3{}
	}
	return ps.ColorAccum.Multiply(1.0 / float64(ps.SampleCount))
}

// GetAlpha returns the current average coverage for this pixel
func (ps *PixelStats) GetAlpha() float64 {
	if ps.SampleCount == 0 {
		return 0
	}
	return ps.AlphaAccum / float64(ps.SampleCount)
}

// Variance returns the variance of the per-frame luminance
func (ps *PixelStats) Variance() float64 {
	if ps.SampleCount == 0 {
		return 0
	}
	n := float64(ps.SampleCount)
	mean := ps.LuminanceAccum / n
	return max(0, ps.LuminanceSqAccum/n-mean*mean)
}

// CalculateAverageLuminance returns the mean Rec. 709 luminance of an image, in [0,1]
func CalculateAverageLuminance(img image.Image) float64 {
	bounds := img.Bounds()
	n := bounds.Dx() * bounds.Dy()
	if n == 0 {
		return 0
	}
	var sum float64
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			sum += (0.2126*float64(r) + 0.7152*float64(g) + 0.0722*float64(b)) / 0xffff
		}
	}
	return sum / float64(n)
}
