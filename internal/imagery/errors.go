package imagery

import "errors"

var (
	// ErrSizeCapNotReached is returned by EncodeCapped together with the
	// smallest encoding it produced when the ceiling could not be met.
	ErrSizeCapNotReached = errors.New("encoded image still exceeds size ceiling")

	// ErrMalformedRaster is returned when a model raster does not describe
	// a height x width x 3 image.
	ErrMalformedRaster = errors.New("malformed raster")

	// ErrUnsupportedAngle is returned by Rotate for angles other than
	// 0, 90, 180 and 270.
	ErrUnsupportedAngle = errors.New("unsupported rotation angle")
)
