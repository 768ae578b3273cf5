package ocr

import "context"

// Point is a polygon vertex in image pixels.
type Point struct {
	X float64
	Y float64
}

// Polygon is the ordered outline of a recognition.
type Polygon []Point

// Structured holds recognitions as parallel arrays, as returned by current
// detection/recognition pipelines. Entries beyond the shortest array are
// ignored.
type Structured struct {
	RecTexts  []string
	RecScores []float64
	DtPolys   []Polygon
}

// LegacyLine is one recognition in the legacy list shape.
type LegacyLine struct {
	Box   Polygon
	Text  string
	Score float64
}

// Result is the output of an Engine for one page. At most one of the two
// shapes is set; neither set means the engine found nothing.
type Result struct {
	Structured *Structured
	Legacy     []LegacyLine
}

// Empty reports whether the engine returned no result at all. A structured
// result with empty arrays is a result: the engine ran and saw no text.
func (r Result) Empty() bool {
	return r.Structured == nil && len(r.Legacy) == 0
}

// Engine recognizes text in a page image.
type Engine interface {
	// Name identifies the engine in logs.
	Name() string

	// Recognize returns the recognitions of the image at path in any order.
	Recognize(ctx context.Context, path string) (Result, error)
}
