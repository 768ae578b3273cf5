package orient

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	exif "github.com/dsoprea/go-exif/v3"
)

// exifOrientationTag is the EXIF tag holding the camera orientation.
const exifOrientationTag = "Orientation"

// EXIFClassifier reads the Orientation tag written by cameras and phone
// scanners. Images without EXIF data are reported as upright.
type EXIFClassifier struct{}

// NewEXIFClassifier creates an EXIFClassifier.
func NewEXIFClassifier() *EXIFClassifier {
	return &EXIFClassifier{}
}

// Name returns the classifier name.
func (c *EXIFClassifier) Name() string {
	return "exif"
}

// Classify returns the clockwise rotation recorded in the image's EXIF data.
func (c *EXIFClassifier) Classify(ctx context.Context, path string) (Angle, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	data, err := os.ReadFile(path) //nolint:gosec // Page paths come from directory discovery
	if err != nil {
		return 0, fmt.Errorf("failed to read image: %w", err)
	}
	return classifyEXIF(data)
}

// classifyEXIF extracts the orientation from raw image bytes.
func classifyEXIF(data []byte) (Angle, error) {
	rawExif, err := exif.SearchAndExtractExif(data)
	if err != nil {
		if errors.Is(err, exif.ErrNoExif) {
			return Upright, nil
		}
		return 0, fmt.Errorf("failed to extract EXIF: %w", err)
	}

	entries, _, err := exif.GetFlatExifData(rawExif, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to parse EXIF: %w", err)
	}

	for _, entry := range entries {
		if entry.TagName != exifOrientationTag {
			continue
		}
		value, ok := orientationValue(entry.Value, entry.Formatted)
		if !ok {
			return 0, fmt.Errorf("%w: EXIF orientation %q", ErrInvalidAngle, entry.Formatted)
		}
		return FromEXIF(value)
	}

	return Upright, nil
}

// orientationValue reads the first value of the Orientation tag.
func orientationValue(value any, formatted string) (int, bool) {
	if v, ok := value.([]uint16); ok && len(v) > 0 {
		return int(v[0]), true
	}
	n, err := strconv.Atoi(strings.Trim(formatted, "[] "))
	if err != nil {
		return 0, false
	}
	return n, true
}

// FromEXIF maps an EXIF Orientation value (1-8) to the clockwise rotation
// of the stored pixels. Mirrored orientations map to the rotation of their
// unmirrored counterpart.
//
//	1, 2 -> 0     stored upright
//	3, 4 -> 180   stored upside down
//	6, 5 -> 270   viewer turns clockwise, so pixels are turned counter-clockwise
//	8, 7 -> 90    viewer turns counter-clockwise
func FromEXIF(value int) (Angle, error) {
	switch value {
	case 1, 2:
		return Upright, nil
	case 3, 4:
		return UpsideDown, nil
	case 5, 6:
		return Counter, nil
	case 7, 8:
		return Clockwise, nil
	default:
		return 0, fmt.Errorf("%w: EXIF orientation %d", ErrInvalidAngle, value)
	}
}
