package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/pagecraft/docprep/internal/layout"
	"github.com/pagecraft/docprep/internal/model"
	"golang.org/x/text/unicode/norm"
)

const (
	// MinConfidence is the default confidence filter. A recognition scoring
	// exactly MinConfidence is kept.
	MinConfidence = 0.30

	// NoResults is the page text when the engine returned no recognitions.
	NoResults = "[No OCR results]"

	// failedFormat is the page text when the engine failed.
	failedFormat = "[OCR extraction failed: %s]"
)

// FailedText returns the placeholder page text for an engine failure.
func FailedText(err error) string {
	return fmt.Sprintf(failedFormat, err)
}

// Collector runs an Engine on page images and produces page text.
type Collector struct {
	engine        Engine
	minConfidence float64
	reconstructor *layout.Reconstructor
	logger        *slog.Logger
}

// CollectorOption configures a Collector.
type CollectorOption func(*Collector)

// WithMinConfidence sets the confidence filter.
func WithMinConfidence(c float64) CollectorOption {
	return func(col *Collector) {
		col.minConfidence = c
	}
}

// WithRowThreshold sets the row banding threshold used for page text.
func WithRowThreshold(threshold int) CollectorOption {
	return func(col *Collector) {
		col.reconstructor = layout.New(threshold)
	}
}

// WithCollectorLogger sets a custom logger.
func WithCollectorLogger(logger *slog.Logger) CollectorOption {
	return func(col *Collector) {
		col.logger = logger
	}
}

// NewCollector creates a Collector around engine.
func NewCollector(engine Engine, opts ...CollectorOption) *Collector {
	c := &Collector{
		engine:        engine,
		minConfidence: MinConfidence,
		reconstructor: layout.New(layout.Threshold),
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Engine returns the wrapped engine.
func (c *Collector) Engine() Engine {
	return c.engine
}

// Collect recognizes the image at path and returns its kept fragments.
// The boolean reports whether the engine returned any recognition before
// filtering.
func (c *Collector) Collect(ctx context.Context, path string) ([]model.Fragment, bool, error) {
	result, err := c.engine.Recognize(ctx, path)
	if err != nil {
		return nil, false, err
	}
	if result.Empty() {
		return nil, false, nil
	}
	return c.Fragments(result), true, nil
}

// ExtractPage returns the reconstructed text of the image at path.
// Engine failures never escape; they become a placeholder text so that
// one bad page does not abort the document.
func (c *Collector) ExtractPage(ctx context.Context, path string) string {
	fragments, found, err := c.Collect(ctx, path)
	if err != nil {
		c.logger.Warn("OCR extraction failed", "engine", c.engine.Name(), "image", path, "error", err)
		return FailedText(err)
	}
	if !found {
		return NoResults
	}

	c.logger.Debug("fragments collected", "image", path, "fragments", len(fragments))
	return c.reconstructor.Reconstruct(fragments)
}

// Fragments normalizes either result shape into filtered fragments.
func (c *Collector) Fragments(result Result) []model.Fragment {
	var fragments []model.Fragment

	if s := result.Structured; s != nil {
		n := min(len(s.RecTexts), len(s.RecScores), len(s.DtPolys))
		for i := range n {
			if f, ok := c.fragment(s.RecTexts[i], s.RecScores[i], s.DtPolys[i]); ok {
				fragments = append(fragments, f)
			}
		}
		return fragments
	}

	for _, line := range result.Legacy {
		if f, ok := c.fragment(line.Text, line.Score, line.Box); ok {
			fragments = append(fragments, f)
		}
	}
	return fragments
}

// fragment applies the filters and anchors one recognition.
func (c *Collector) fragment(text string, score float64, poly Polygon) (model.Fragment, bool) {
	if math.IsNaN(score) || score < c.minConfidence {
		return model.Fragment{}, false
	}
	text = strings.TrimSpace(norm.NFC.String(text))
	if text == "" {
		return model.Fragment{}, false
	}
	x, y, ok := poly.TopLeft()
	if !ok {
		return model.Fragment{}, false
	}
	return model.Fragment{Text: text, Y: y, X: x}, true
}

// TopLeft returns the minimum x and minimum y over the vertices, truncated
// toward zero. It reports false for a polygon without vertices or with a
// coordinate that is not a finite number.
func (p Polygon) TopLeft() (x, y int, ok bool) {
	if len(p) == 0 {
		return 0, 0, false
	}
	minX, minY := math.Inf(1), math.Inf(1)
	for _, pt := range p {
		if !finite(pt.X) || !finite(pt.Y) {
			return 0, 0, false
		}
		minX = math.Min(minX, pt.X)
		minY = math.Min(minY, pt.Y)
	}
	if minX < math.MinInt32 || minY < math.MinInt32 || minX > math.MaxInt32 || minY > math.MaxInt32 {
		return 0, 0, false
	}
	return int(minX), int(minY), true
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
