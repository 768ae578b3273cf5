package imagery

import (
	"fmt"
	"image"
)

// CapOptions configures EncodeCapped.
type CapOptions struct {
	// Quality is the JPEG quality (1-100).
	Quality int

	// MaxBytes is the size ceiling of the encoded image.
	MaxBytes int64

	// ScaleFactor shrinks both dimensions on every pass; must be in (0, 1).
	ScaleFactor float64

	// MaxIterations bounds the number of downscale passes.
	MaxIterations int
}

// Encoded is the result of EncodeCapped.
type Encoded struct {
	// Data is the JPEG bytestream.
	Data []byte

	// Width and Height are the dimensions of the encoded image.
	Width  int
	Height int

	// Iterations is the number of downscale passes performed.
	Iterations int
}

// EncodeCapped encodes img as JPEG and, while the result is larger than
// MaxBytes, shrinks the image by ScaleFactor and encodes again.
//
// The loop stops after MaxIterations passes or once the image can no longer
// shrink; in both cases the last encoding is returned together with
// ErrSizeCapNotReached.
func EncodeCapped(img image.Image, opts CapOptions) (*Encoded, error) {
	data, err := EncodeJPEG(img, opts.Quality)
	if err != nil {
		return nil, err
	}

	enc := &Encoded{Data: data, Width: img.Bounds().Dx(), Height: img.Bounds().Dy()}
	for int64(len(enc.Data)) > opts.MaxBytes {
		if enc.Iterations >= opts.MaxIterations {
			return enc, fmt.Errorf("%w: %d bytes after %d resizes", ErrSizeCapNotReached, len(enc.Data), enc.Iterations)
		}

		w, h := scaledSize(img.Bounds(), opts.ScaleFactor)
		if w == enc.Width && h == enc.Height {
			return enc, fmt.Errorf("%w: %d bytes at %dx%d", ErrSizeCapNotReached, len(enc.Data), w, h)
		}

		img = Scale(img, opts.ScaleFactor)
		data, err := EncodeJPEG(img, opts.Quality)
		if err != nil {
			return nil, err
		}
		enc = &Encoded{Data: data, Width: w, Height: h, Iterations: enc.Iterations + 1}
	}

	return enc, nil
}
