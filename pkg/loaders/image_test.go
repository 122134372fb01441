package loaders

import (
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/ftrvxmtrx/tga"

	"github.com/df07/go-tile-raytracer/pkg/core"
)

func testImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	img.Set(1, 0, color.NRGBA{R: 255, A: 255})
	img.Set(0, 1, color.NRGBA{G: 255, A: 255})
	img.Set(1, 1, color.NRGBA{B: 255, A: 255})
	return img
}

func checkColor(t *testing.T, name string, got, expected core.Vec3) {
	t.Helper()
	const tolerance = 0.01
	if math.Abs(got.X-expected.X) > tolerance ||
		math.Abs(got.Y-expected.Y) > tolerance ||
		math.Abs(got.Z-expected.Z) > tolerance {
		t.Errorf("%s: expected %v, got %v", name, expected, got)
	}
}

func TestLoadImage(t *testing.T) {
	tests := []struct {
		name   string
		file   string
		encode func(f *os.File, img image.Image) error
	}{
		{"png", "test.png", func(f *os.File, img image.Image) error { return png.Encode(f, img) }},
		{"tga", "test.tga", func(f *os.File, img image.Image) error { return tga.Encode(f, img) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			f, err := os.Create(path)
			if err != nil {
				t.Fatalf("Failed to create test file: %v", err)
			}
			if err := tt.encode(f, testImage()); err != nil {
				f.Close()
				t.Fatalf("Failed to encode: %v", err)
			}
			f.Close()

			data, err := LoadImage(path)
			if err != nil {
				t.Fatalf("LoadImage failed: %v", err)
			}
			if data.Width != 2 || data.Height != 2 {
				t.Fatalf("Expected 2x2 image, got %dx%d", data.Width, data.Height)
			}

			checkColor(t, "top-left", data.Pixels[0], core.NewVec3(1, 1, 1))
			checkColor(t, "top-right", data.Pixels[1], core.NewVec3(1, 0, 0))
			checkColor(t, "bottom-left", data.Pixels[2], core.NewVec3(0, 1, 0))
			checkColor(t, "bottom-right", data.Pixels[3], core.NewVec3(0, 0, 1))
		})
	}
}

func TestLoadTexture(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tex.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, testImage()); err != nil {
		t.Fatal(err)
	}
	f.Close()

	tex, err := LoadTexture(path)
	if err != nil {
		t.Fatalf("LoadTexture failed: %v", err)
	}
	// uv (0.1, 0.9) is the top-left texel
	checkColor(t, "top-left texel", tex.Evaluate(core.NewVec2(0.1, 0.9)), core.NewVec3(1, 1, 1))
}

func TestLoadImageErrors(t *testing.T) {
	if _, err := LoadImage("nonexistent.png"); err == nil {
		t.Error("Expected error for non-existent file")
	}

	path := filepath.Join(t.TempDir(), "data.bmp")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadImage(path); err == nil {
		t.Error("Expected error for unsupported extension")
	}
}
