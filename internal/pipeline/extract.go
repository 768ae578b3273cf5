package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/pagecraft/docprep/internal/model"
	"github.com/pagecraft/docprep/internal/ocr"
	"github.com/pagecraft/docprep/internal/pages"
)

// Extractor reads the text of every page of a directory.
type Extractor struct {
	collector *ocr.Collector
	logger    *slog.Logger
}

// ExtractorOption configures an Extractor.
type ExtractorOption func(*Extractor)

// WithExtractLogger sets a custom logger.
func WithExtractLogger(logger *slog.Logger) ExtractorOption {
	return func(e *Extractor) {
		e.logger = logger
	}
}

// NewExtractor creates an Extractor around collector.
func NewExtractor(collector *ocr.Collector, opts ...ExtractorOption) *Extractor {
	e := &Extractor{
		collector: collector,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run extracts the text of every page of dir into a Document.
func (e *Extractor) Run(ctx context.Context, dir string) (*model.Document, error) {
	results, err := e.RunPages(ctx, dir)
	if err != nil {
		return nil, err
	}
	return model.NewDocumentFromResults(results), nil
}

// RunPages extracts the text of every page of dir. An OCR failure becomes
// the page's placeholder text; only discovery failure and cancellation
// are returned.
func (e *Extractor) RunPages(ctx context.Context, dir string) ([]model.PageResult, error) {
	found, err := pages.Discover(dir)
	if err != nil {
		return nil, err
	}

	e.logger.Info("extracting text", "dir", dir, "pages", len(found), "engine", e.collector.Engine().Name())
	start := time.Now()

	results := make([]model.PageResult, 0, len(found))
	for _, page := range found {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		e.logger.Info("processing page", "page", page.Index, "total", len(found), "file", page.Name)

		fp, err := pages.Fingerprint(page.Path)
		if err != nil {
			e.logger.Debug("failed to fingerprint page", "page", page.Index, "error", err)
		}
		results = append(results, model.PageResult{
			Page:        page.Index,
			Source:      page.Name,
			Fingerprint: fp,
			Text:        e.collector.ExtractPage(ctx, page.Path),
		})
	}

	e.logger.Info("extraction complete", "pages", len(results), "elapsed", time.Since(start))
	return results, nil
}
