package imagery

import (
	"fmt"
	"image"
)

// MaxRasterSide is the largest raster height or width accepted from a model.
const MaxRasterSide = 1 << 15

// Raster is an interleaved 8-bit image in BGR channel order as produced by
// the unwarping model (height x width x 3).
type Raster struct {
	Height   int
	Width    int
	Channels int
	Data     []byte
}

// Validate reports whether the raster describes a complete BGR image.
func (r Raster) Validate() error {
	if r.Height <= 0 || r.Width <= 0 {
		return fmt.Errorf("%w: shape %dx%d", ErrMalformedRaster, r.Height, r.Width)
	}
	if r.Height > MaxRasterSide || r.Width > MaxRasterSide {
		return fmt.Errorf("%w: shape %dx%d exceeds %d", ErrMalformedRaster, r.Height, r.Width, MaxRasterSide)
	}
	if r.Channels != 3 {
		return fmt.Errorf("%w: %d channels", ErrMalformedRaster, r.Channels)
	}
	if want := r.Height * r.Width * 3; len(r.Data) != want {
		return fmt.Errorf("%w: %d bytes for %dx%dx3", ErrMalformedRaster, len(r.Data), r.Height, r.Width)
	}
	return nil
}

// Image converts the BGR raster to an RGB image.
func (r Raster) Image() (*image.NRGBA, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	img := image.NewNRGBA(image.Rect(0, 0, r.Width, r.Height))
	for i, j := 0, 0; i < len(r.Data); i, j = i+3, j+4 {
		img.Pix[j] = r.Data[i+2]
		img.Pix[j+1] = r.Data[i+1]
		img.Pix[j+2] = r.Data[i]
		img.Pix[j+3] = 0xff
	}
	return img, nil
}
