package imagery

import (
	"bytes"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // WebP page images
)

// Load decodes the image at path. EXIF orientation is not applied; the
// orientation stage decides how the page is rotated.
func Load(path string) (image.Image, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load image %s: %w", filepath.Base(path), err)
	}
	return img, nil
}

// Save writes img to path in the format implied by the extension.
// quality only applies to JPEG output.
func Save(img image.Image, path string, quality int) error {
	if err := imaging.Save(img, path, imaging.JPEGQuality(quality)); err != nil {
		return fmt.Errorf("failed to save image %s: %w", filepath.Base(path), err)
	}
	return nil
}

// Rotate turns img counter-clockwise by angle degrees, growing the canvas
// so nothing is cropped. An image detected as rotated N degrees clockwise
// is upright after Rotate(img, N).
func Rotate(img image.Image, angle int) (image.Image, error) {
	switch angle {
	case 0:
		return img, nil
	case 90:
		return imaging.Rotate90(img), nil
	case 180:
		return imaging.Rotate180(img), nil
	case 270:
		return imaging.Rotate270(img), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedAngle, angle)
	}
}

// Scale resizes img by factor in both dimensions using Lanczos resampling.
// Dimensions never drop below one pixel.
func Scale(img image.Image, factor float64) image.Image {
	w, h := scaledSize(img.Bounds(), factor)
	return imaging.Resize(img, w, h, imaging.Lanczos)
}

// EncodeJPEG encodes img as JPEG at the given quality.
func EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("failed to encode JPEG: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteTemp writes img as PNG to a new temporary file in dir (os.TempDir
// when empty). The returned cleanup removes the file and must be called
// on every path once the file is no longer needed.
func WriteTemp(img image.Image, dir string) (path string, cleanup func() error, err error) {
	if dir != "" {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return "", nil, fmt.Errorf("failed to create temp directory: %w", err)
		}
	}

	f, err := os.CreateTemp(dir, "docprep-*.png")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create temp image: %w", err)
	}
	path = f.Name()
	cleanup = func() error {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return err
		}
		return nil
	}

	encErr := imaging.Encode(f, img, imaging.PNG)
	closeErr := f.Close()
	if encErr != nil || closeErr != nil {
		_ = cleanup() //nolint:errcheck // Best effort cleanup
		if encErr == nil {
			encErr = closeErr
		}
		return "", nil, fmt.Errorf("failed to write temp image: %w", encErr)
	}

	return path, cleanup, nil
}

// scaledSize returns the bounds scaled by factor, truncated, at least 1x1.
func scaledSize(b image.Rectangle, factor float64) (int, int) {
	w := int(float64(b.Dx()) * factor)
	h := int(float64(b.Dy()) * factor)
	return max(w, 1), max(h, 1)
}
