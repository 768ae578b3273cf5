package orient

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidAngle is returned for labels outside {0, 90, 180, 270}.
var ErrInvalidAngle = errors.New("invalid orientation angle")

// Angle is a detected clockwise rotation in degrees.
type Angle int

// Supported angles.
const (
	Upright    Angle = 0
	Clockwise  Angle = 90
	UpsideDown Angle = 180
	Counter    Angle = 270
)

// Valid reports whether a is one of the four supported angles.
func (a Angle) Valid() bool {
	switch a {
	case Upright, Clockwise, UpsideDown, Counter:
		return true
	}
	return false
}

// ParseLabel converts a classifier label such as "90" or "180°" to an Angle.
func ParseLabel(label string) (Angle, error) {
	s := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(label), "°"))
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAngle, label)
	}
	a := Angle(n)
	if !a.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrInvalidAngle, n)
	}
	return a, nil
}

// Classifier detects the clockwise rotation of the image at path.
type Classifier interface {
	// Name identifies the classifier in logs.
	Name() string

	// Classify returns the detected clockwise rotation.
	Classify(ctx context.Context, path string) (Angle, error)
}

// Fixed is a Classifier that always reports the same angle.
// Fixed(Upright) disables orientation correction.
type Fixed Angle

// Name returns the classifier name.
func (f Fixed) Name() string {
	return "fixed"
}

// Classify returns the fixed angle.
func (f Fixed) Classify(_ context.Context, _ string) (Angle, error) {
	if !Angle(f).Valid() {
		return 0, fmt.Errorf("%w: %d", ErrInvalidAngle, int(f))
	}
	return Angle(f), nil
}
