package imagery

import (
	"errors"
	"image"
	"image/color"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"
)

var (
	red  = color.NRGBA{R: 0xff, A: 0xff}
	blue = color.NRGBA{B: 0xff, A: 0xff}
)

// noise returns a deterministic image that JPEG cannot compress well.
func noise(w, h int) *image.NRGBA {
	rng := rand.New(rand.NewPCG(1, 2))
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = byte(rng.UintN(256))
	}
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 0xff
	}
	return img
}

// markerImage returns a w x h white image with a red top-left pixel.
func markerImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff})
		}
	}
	img.SetNRGBA(0, 0, red)
	return img
}

func sameColor(a, b color.Color) bool {
	ar, ag, ab, aa := a.RGBA()
	br, bg, bb, ba := b.RGBA()
	return ar == br && ag == bg && ab == bb && aa == ba
}

// TestRotate pins the rotation direction against known-rotated fixtures.
func TestRotate(t *testing.T) {
	t.Parallel()

	t.Run("rotates counter-clockwise", func(t *testing.T) {
		t.Parallel()

		// red | blue  --90 ccw-->  blue
		//                          red
		src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
		src.SetNRGBA(0, 0, red)
		src.SetNRGBA(1, 0, blue)

		got, err := Rotate(src, 90)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if b := got.Bounds(); b.Dx() != 1 || b.Dy() != 2 {
			t.Fatalf("expected 1x2 canvas, got %dx%d", b.Dx(), b.Dy())
		}
		if !sameColor(got.At(0, 0), blue) || !sameColor(got.At(0, 1), red) {
			t.Error("expected counter-clockwise rotation")
		}
	})

	for _, angle := range []int{90, 180, 270} {
		t.Run("restores a page turned clockwise", func(t *testing.T) {
			t.Parallel()

			upright := markerImage(4, 3)

			// Turn the upright page clockwise by angle: counter-clockwise by 360-angle.
			skewed, err := Rotate(upright, 360-angle)
			if err != nil {
				t.Fatal(err)
			}

			restored, err := Rotate(skewed, angle)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if b := restored.Bounds(); b.Dx() != 4 || b.Dy() != 3 {
				t.Fatalf("angle %d: expected 4x3, got %dx%d", angle, b.Dx(), b.Dy())
			}
			if !sameColor(restored.At(0, 0), red) {
				t.Errorf("angle %d: marker not back at top-left", angle)
			}
		})
	}

	t.Run("zero returns the image unchanged", func(t *testing.T) {
		t.Parallel()

		src := markerImage(2, 2)
		got, err := Rotate(src, 0)
		if err != nil {
			t.Fatal(err)
		}
		if got != image.Image(src) {
			t.Error("expected the same image")
		}
	})

	t.Run("rejects other angles", func(t *testing.T) {
		t.Parallel()

		if _, err := Rotate(markerImage(2, 2), 45); !errors.Is(err, ErrUnsupportedAngle) {
			t.Errorf("expected ErrUnsupportedAngle, got %v", err)
		}
	})
}

// TestScale tests downscaling.
func TestScale(t *testing.T) {
	t.Parallel()

	t.Run("scales both dimensions", func(t *testing.T) {
		t.Parallel()

		got := Scale(markerImage(100, 40), 0.85)
		if b := got.Bounds(); b.Dx() != 85 || b.Dy() != 34 {
			t.Errorf("expected 85x34, got %dx%d", b.Dx(), b.Dy())
		}
	})

	t.Run("never drops below one pixel", func(t *testing.T) {
		t.Parallel()

		got := Scale(markerImage(1, 1), 0.5)
		if b := got.Bounds(); b.Dx() != 1 || b.Dy() != 1 {
			t.Errorf("expected 1x1, got %dx%d", b.Dx(), b.Dy())
		}
	})
}

// TestEncodeCapped tests the size-capping loop.
func TestEncodeCapped(t *testing.T) {
	t.Parallel()

	t.Run("image under the ceiling is not resized", func(t *testing.T) {
		t.Parallel()

		enc, err := EncodeCapped(markerImage(64, 64), CapOptions{
			Quality: 90, MaxBytes: 5 * 1024 * 1024, ScaleFactor: 0.85, MaxIterations: 32,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if enc.Iterations != 0 {
			t.Errorf("expected zero iterations, got %d", enc.Iterations)
		}
		if enc.Width != 64 || enc.Height != 64 {
			t.Errorf("expected 64x64, got %dx%d", enc.Width, enc.Height)
		}
	})

	t.Run("shrinks until under the ceiling", func(t *testing.T) {
		t.Parallel()

		const ceiling = 40 * 1024
		img := noise(400, 400)

		first, err := EncodeJPEG(img, 90)
		if err != nil {
			t.Fatal(err)
		}
		if len(first) <= ceiling {
			t.Fatalf("fixture too small: %d bytes", len(first))
		}

		enc, err := EncodeCapped(img, CapOptions{
			Quality: 90, MaxBytes: ceiling, ScaleFactor: 0.85, MaxIterations: 32,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(enc.Data) > ceiling {
			t.Errorf("expected at most %d bytes, got %d", ceiling, len(enc.Data))
		}
		if enc.Iterations == 0 {
			t.Error("expected at least one resize")
		}
		if enc.Width >= 400 || enc.Height >= 400 {
			t.Errorf("expected smaller dimensions, got %dx%d", enc.Width, enc.Height)
		}

		again, err := EncodeCapped(mustDecode(t, enc.Data), CapOptions{
			Quality: 90, MaxBytes: ceiling * 2, ScaleFactor: 0.85, MaxIterations: 32,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if again.Iterations != 0 {
			t.Errorf("expected re-encoding with headroom to skip resizing, got %d", again.Iterations)
		}
	})

	t.Run("stops at the iteration bound", func(t *testing.T) {
		t.Parallel()

		enc, err := EncodeCapped(noise(200, 200), CapOptions{
			Quality: 90, MaxBytes: 1, ScaleFactor: 0.85, MaxIterations: 3,
		})
		if !errors.Is(err, ErrSizeCapNotReached) {
			t.Fatalf("expected ErrSizeCapNotReached, got %v", err)
		}
		if enc == nil || enc.Iterations != 3 {
			t.Errorf("expected last encoding after 3 iterations, got %+v", enc)
		}
	})

	t.Run("stops when the image cannot shrink", func(t *testing.T) {
		t.Parallel()

		enc, err := EncodeCapped(markerImage(2, 2), CapOptions{
			Quality: 90, MaxBytes: 1, ScaleFactor: 0.85, MaxIterations: 1000,
		})
		if !errors.Is(err, ErrSizeCapNotReached) {
			t.Fatalf("expected ErrSizeCapNotReached, got %v", err)
		}
		if enc.Width != 1 || enc.Height != 1 {
			t.Errorf("expected 1x1 final image, got %dx%d", enc.Width, enc.Height)
		}
	})
}

func mustDecode(t *testing.T, data []byte) image.Image {
	t.Helper()

	path := filepath.Join(t.TempDir(), "in.jpg")
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatal(err)
	}
	img, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	return img
}

// TestLoadSave tests file round trips.
func TestLoadSave(t *testing.T) {
	t.Parallel()

	t.Run("png round trip keeps pixels", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "page_1.png")
		if err := Save(markerImage(3, 2), path, 90); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		img, err := Load(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if b := img.Bounds(); b.Dx() != 3 || b.Dy() != 2 {
			t.Errorf("expected 3x2, got %dx%d", b.Dx(), b.Dy())
		}
		if !sameColor(img.At(0, 0), red) {
			t.Error("expected marker pixel to survive")
		}
	})

	t.Run("load of missing file fails", func(t *testing.T) {
		t.Parallel()

		if _, err := Load(filepath.Join(t.TempDir(), "missing.png")); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("load of garbage fails", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "page_1.png")
		if err := os.WriteFile(path, []byte("not an image"), 0600); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(path); err == nil {
			t.Error("expected decode error")
		}
	})
}

// TestWriteTemp tests temporary file handling.
func TestWriteTemp(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "nested")
	path, cleanup, err := WriteTemp(markerImage(2, 2), dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filepath.Ext(path) != ".png" {
		t.Errorf("expected .png temp file, got %s", path)
	}
	if _, err := Load(path); err != nil {
		t.Errorf("expected readable temp image: %v", err)
	}

	if err := cleanup(); err != nil {
		t.Fatalf("cleanup failed: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("expected temp file to be removed")
	}
	if err := cleanup(); err != nil {
		t.Errorf("expected second cleanup to be a no-op, got %v", err)
	}
}

// TestRaster tests BGR conversion.
func TestRaster(t *testing.T) {
	t.Parallel()

	t.Run("converts BGR to RGB", func(t *testing.T) {
		t.Parallel()

		r := Raster{Height: 1, Width: 2, Channels: 3, Data: []byte{
			0x00, 0x00, 0xff, // red in BGR
			0xff, 0x00, 0x00, // blue in BGR
		}}
		img, err := r.Image()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !sameColor(img.At(0, 0), red) || !sameColor(img.At(1, 0), blue) {
			t.Errorf("unexpected pixels %v %v", img.At(0, 0), img.At(1, 0))
		}
	})

	tests := []struct {
		name   string
		raster Raster
	}{
		{name: "zero height", raster: Raster{Height: 0, Width: 1, Channels: 3}},
		{name: "grayscale", raster: Raster{Height: 1, Width: 1, Channels: 1, Data: []byte{0}}},
		{name: "short data", raster: Raster{Height: 2, Width: 2, Channels: 3, Data: make([]byte, 11)}},
		{name: "overflowing shape", raster: Raster{Height: math.MaxInt / 2, Width: math.MaxInt / 2, Channels: 3}},
		{name: "oversized side", raster: Raster{Height: 1, Width: MaxRasterSide + 1, Channels: 3, Data: make([]byte, 3*(MaxRasterSide+1))}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := tt.raster.Image(); !errors.Is(err, ErrMalformedRaster) {
				t.Errorf("expected ErrMalformedRaster, got %v", err)
			}
		})
	}
}
