package renderer

import (
	"image"
	"math"
	"testing"

	"github.com/df07/go-tile-raytracer/pkg/core"
	"github.com/df07/go-tile-raytracer/pkg/output"
)

func TestPixelStats(t *testing.T) {
	var ps PixelStats
	if !ps.GetColor().IsZero() || ps.GetAlpha() != 0 || ps.Variance() != 0 {
		t.Errorf("empty stats = %v alpha %f variance %f, want zeros", ps.GetColor(), ps.GetAlpha(), ps.Variance())
	}

	// One hit frame and one miss frame
	ps.AddSample(core.NewVec3(1, 1, 1), 1, 4)
	ps.AddSample(core.Vec3{}, 0, math.Inf(1))

	if ps.SampleCount != 2 {
		t.Errorf("sample count = %d, want 2", ps.SampleCount)
	}
	if got := ps.GetColor(); got != core.NewVec3(0.5, 0.5, 0.5) {
		t.Errorf("color = %v, want (0.5,0.5,0.5)", got)
	}
	if got := ps.GetAlpha(); got != 0.5 {
		t.Errorf("alpha = %f, want 0.5", got)
	}
	if !math.IsInf(ps.Depth, 1) {
		t.Errorf("depth = %f, want the last frame's +Inf", ps.Depth)
	}

	// Luminance 1 and 0 give mean 0.5 and variance 0.25
	if got := ps.Variance(); math.Abs(got-0.25) > 1e-12 {
		t.Errorf("variance = %f, want 0.25", got)
	}
}

func TestPixelStats_ConstantFramesHaveNoVariance(t *testing.T) {
	var ps PixelStats
	for i := 0; i < 5; i++ {
		ps.AddSample(core.NewVec3(0.2, 0.4, 0.6), 1, float64(i))
	}
	if got := ps.Variance(); got > 1e-12 {
		t.Errorf("variance = %g, want 0", got)
	}
	if ps.Depth != 4 {
		t.Errorf("depth = %f, want 4 from the last frame", ps.Depth)
	}
}

// swatch is a 2x2 frame holding the primaries and black, row 0 at the bottom
type swatch struct{}

func (swatch) Size() (int, int) { return 2, 2 }

func (swatch) Pixel(x, y int) (core.Vec3, float64) {
	colors := [2][2]core.Vec3{
		{core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0)},
		{core.NewVec3(0, 0, 1), core.Vec3{}},
	}
	return colors[y][x], 1
}

func TestCalculateAverageLuminance(t *testing.T) {
	tests := []struct {
		name     string
		img      image.Image
		expected float64
	}{
		// Rec. 709 weights sum to 1 over the three primaries
		{"primaries", output.Image(swatch{}, output.Options{Gamma: 1}), 0.25},
		{"empty", image.NewNRGBA(image.Rect(0, 0, 0, 0)), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CalculateAverageLuminance(tt.img); math.Abs(got-tt.expected) > 1e-4 {
				t.Errorf("got %f, want %f", got, tt.expected)
			}
		})
	}
}

func TestCalculateAverageLuminance_Frame(t *testing.T) {
	fb, err := NewLocalFrameBuffer(3, 2)
	if err != nil {
		t.Fatal(err)
	}
	tile := NewTile(4)
	fb.BeginFrame()
	tile.Reset(image.Pt(0, 0), fb.AccumID())
	tile.Fill(core.NewVec3(0.25, 0.25, 0.25), 1, 1)
	fb.Accumulate(tile)

	// Gamma 2 maps a linear 0.25 grey to 0.5
	img := output.Image(fb, output.DefaultOptions())
	if got := CalculateAverageLuminance(img); math.Abs(got-128.0/255.0) > 1e-4 {
		t.Errorf("got %f, want %f", got, 128.0/255.0)
	}
}
