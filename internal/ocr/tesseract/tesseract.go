// Package tesseract provides an ocr.Engine backed by the local Tesseract
// library through gosseract. Recognitions are read per text line from
// Tesseract's hOCR output.
package tesseract

import (
	"context"
	"fmt"
	"image"
	"strings"
	"sync"

	"github.com/otiai10/gosseract/v2"

	"github.com/pagecraft/docprep/internal/ocr"
	"github.com/pagecraft/docprep/internal/ocr/hocr"
)

// Engine recognizes page images with Tesseract.
// One client is created on first use and reused for every page, so the
// language data is loaded once per process. Close releases it.
type Engine struct {
	languages     []string
	clientFactory func() *gosseract.Client

	mu     sync.Mutex
	client *gosseract.Client
}

// Option configures an Engine.
type Option func(*Engine)

// WithLanguages sets the Tesseract language codes (e.g. "eng", "deu").
func WithLanguages(langs ...string) Option {
	return func(e *Engine) {
		e.languages = langs
	}
}

// New creates a Tesseract engine.
func New(opts ...Option) *Engine {
	e := &Engine{clientFactory: gosseract.NewClient}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name returns the engine name.
func (e *Engine) Name() string { return "tesseract" }

// Version returns the linked Tesseract version. It doubles as a readiness
// check for the native library.
func (e *Engine) Version() string {
	e.mu.Lock()
	defer e.mu.Unlock()

	c, err := e.acquire()
	if err != nil {
		return ""
	}
	return c.Version()
}

// Recognize runs Tesseract on the image at path.
func (e *Engine) Recognize(ctx context.Context, path string) (ocr.Result, error) {
	if err := ctx.Err(); err != nil {
		return ocr.Result{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	c, err := e.acquire()
	if err != nil {
		return ocr.Result{}, err
	}
	if err := c.SetImage(path); err != nil {
		return ocr.Result{}, fmt.Errorf("set image: %w", err)
	}

	out, err := c.HOCRText()
	if err != nil {
		return ocr.Result{}, fmt.Errorf("recognize text: %w", err)
	}

	lines, err := hocr.Parse(strings.NewReader(out))
	if err != nil {
		return ocr.Result{}, err
	}
	return toResult(lines), nil
}

// Close releases the Tesseract client. The engine may be used again
// afterwards; it then loads a new client.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.client == nil {
		return nil
	}
	err := e.client.Close()
	e.client = nil
	return err
}

// acquire returns the shared client, creating and configuring it on first
// use. The caller holds e.mu.
func (e *Engine) acquire() (*gosseract.Client, error) {
	if e.client != nil {
		return e.client, nil
	}

	c := e.clientFactory()
	if len(e.languages) > 0 {
		if err := c.SetLanguage(e.languages...); err != nil {
			_ = c.Close() //nolint:errcheck // Configuration error is more useful
			return nil, fmt.Errorf("set languages: %w", err)
		}
	}
	e.client = c
	return c, nil
}

// toResult converts hOCR lines into the structured result shape.
func toResult(lines []hocr.Line) ocr.Result {
	if len(lines) == 0 {
		return ocr.Result{}
	}

	s := &ocr.Structured{
		RecTexts:  make([]string, len(lines)),
		RecScores: make([]float64, len(lines)),
		DtPolys:   make([]ocr.Polygon, len(lines)),
	}
	for i, line := range lines {
		s.RecTexts[i] = line.Text
		s.RecScores[i] = line.Confidence
		s.DtPolys[i] = rectPolygon(line.BBox)
	}
	return ocr.Result{Structured: s}
}

// rectPolygon returns the corners of r clockwise from the top-left.
func rectPolygon(r image.Rectangle) ocr.Polygon {
	return ocr.Polygon{
		{X: float64(r.Min.X), Y: float64(r.Min.Y)},
		{X: float64(r.Max.X), Y: float64(r.Min.Y)},
		{X: float64(r.Max.X), Y: float64(r.Max.Y)},
		{X: float64(r.Min.X), Y: float64(r.Max.Y)},
	}
}
