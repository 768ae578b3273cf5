package pipeline

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/pagecraft/docprep/internal/config"
	"github.com/pagecraft/docprep/internal/imagery"
	"github.com/pagecraft/docprep/internal/model"
	"github.com/pagecraft/docprep/internal/orient"
	"github.com/pagecraft/docprep/internal/pages"
)

// Preprocessor prepares the page images of a directory for a vision model.
type Preprocessor struct {
	classifier orient.Classifier
	unwarper   Unwarper
	capOpts    imagery.CapOptions
	tempDir    string
	logger     *slog.Logger
}

// PreprocessorOption configures a Preprocessor.
type PreprocessorOption func(*Preprocessor)

// WithUnwarper enables the unwarp stage.
func WithUnwarper(u Unwarper) PreprocessorOption {
	return func(p *Preprocessor) {
		p.unwarper = u
	}
}

// WithCapOptions sets the encoding options.
func WithCapOptions(opts imagery.CapOptions) PreprocessorOption {
	return func(p *Preprocessor) {
		p.capOpts = opts
	}
}

// WithTempDir sets the directory for intermediate images.
func WithTempDir(dir string) PreprocessorOption {
	return func(p *Preprocessor) {
		p.tempDir = dir
	}
}

// WithPreprocessLogger sets a custom logger.
func WithPreprocessLogger(logger *slog.Logger) PreprocessorOption {
	return func(p *Preprocessor) {
		p.logger = logger
	}
}

// DefaultCapOptions returns the encoding options for vision model uploads:
// JPEG quality 90 under 5 MiB.
func DefaultCapOptions() imagery.CapOptions {
	return imagery.CapOptions{
		Quality:       config.DefaultJPEGQuality,
		MaxBytes:      config.DefaultMaxOutputBytes,
		ScaleFactor:   config.DefaultScaleFactor,
		MaxIterations: config.DefaultMaxResizeIterations,
	}
}

// NewPreprocessor creates a Preprocessor. A nil classifier disables
// orientation correction.
func NewPreprocessor(classifier orient.Classifier, opts ...PreprocessorOption) *Preprocessor {
	if classifier == nil {
		classifier = orient.Fixed(orient.Upright)
	}
	p := &Preprocessor{
		classifier: classifier,
		capOpts:    DefaultCapOptions(),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run preprocesses every page of dir. Page failures are contained in the
// page results; only discovery failure and cancellation are returned.
func (p *Preprocessor) Run(ctx context.Context, dir string) (*model.PreprocessSummary, error) {
	found, err := pages.Discover(dir)
	if err != nil {
		return nil, err
	}

	p.logger.Info("preprocessing pages", "dir", dir, "pages", len(found))
	start := time.Now()

	summary := &model.PreprocessSummary{Pages: make([]model.PageResult, 0, len(found))}
	for _, page := range found {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p.logger.Info("processing page", "page", page.Index, "total", len(found), "file", page.Name)
		summary.Pages = append(summary.Pages, p.Page(ctx, page))
	}

	p.logger.Info("preprocessing complete",
		"pages", len(summary.Pages),
		"unwarped", summary.UnwarpedCount(),
		"fallback", summary.FallbackCount(),
		"elapsed", time.Since(start),
	)
	return summary, nil
}

// Page preprocesses a single page, falling back to a plain re-encode of the
// original image when a stage fails.
func (p *Preprocessor) Page(ctx context.Context, page pages.Page) model.PageResult {
	result := model.PageResult{
		Page:        page.Index,
		Source:      page.Name,
		Fingerprint: p.fingerprint(page),
	}

	job := &PageJob{Page: page}
	err := p.pipeline().Execute(ctx, job)
	if err == nil {
		result.File = filepath.Base(job.Output)
		result.Rotated = job.Rotated
		result.Unwarped = job.Unwarped
		result.Bytes = int64(len(job.Encoded.Data))
		return result
	}

	p.logger.Warn("preprocessing failed, using fallback", "page", page.Index, "error", err)
	result.Rotated = job.Rotated
	result.Fallback = true
	result.Error = err.Error()

	fb := &PageJob{Page: page, Rotated: job.Rotated}
	fallback := New(WithLogger(p.logger))
	fallback.AddSteps(NewLoadStep(), NewEncodeStep(p.capOpts, WithEncodeLogger(p.logger)))
	if err := fallback.Execute(ctx, fb); err != nil {
		p.logger.Error("fallback failed", "page", page.Index, "error", err)
		result.Error = err.Error()
		return result
	}

	result.File = filepath.Base(fb.Output)
	result.Bytes = int64(len(fb.Encoded.Data))
	return result
}

// pipeline builds the full preprocessing pipeline.
func (p *Preprocessor) pipeline() *Pipeline {
	pl := New(WithLogger(p.logger))
	pl.AddSteps(
		NewLoadStep(),
		NewOrientationStep(p.classifier, WithOrientationLogger(p.logger)),
	)
	if p.unwarper != nil {
		pl.AddStep(NewUnwarpStep(p.unwarper,
			WithUnwarpTempDir(p.tempDir),
			WithUnwarpLogger(p.logger),
		))
	}
	pl.AddStep(NewEncodeStep(p.capOpts, WithEncodeLogger(p.logger)))
	return pl
}

func (p *Preprocessor) fingerprint(page pages.Page) string {
	fp, err := pages.Fingerprint(page.Path)
	if err != nil {
		p.logger.Debug("failed to fingerprint page", "page", page.Index, "error", err)
		return ""
	}
	return fp
}
