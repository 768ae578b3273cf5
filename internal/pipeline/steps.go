package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"github.com/pagecraft/docprep/internal/imagery"
	"github.com/pagecraft/docprep/internal/orient"
	"github.com/pagecraft/docprep/internal/pages"
)

// Unwarper flattens a photographed page.
type Unwarper interface {
	// Name identifies the model in logs.
	Name() string

	// Unwarp returns the flattened image at path as a BGR raster.
	Unwarp(ctx context.Context, path string) (imagery.Raster, error)
}

// LoadStep decodes the source page into the working image.
type LoadStep struct{}

// NewLoadStep creates a new load step.
func NewLoadStep() *LoadStep {
	return &LoadStep{}
}

// Name returns the step name.
func (s *LoadStep) Name() string {
	return "load"
}

// Do executes the load step.
func (s *LoadStep) Do(_ context.Context, job *PageJob) error {
	img, err := imagery.Load(job.Page.Path)
	if err != nil {
		return err
	}
	job.Image = img
	return nil
}

// OrientationStep detects the page rotation and turns the working image
// upright.
type OrientationStep struct {
	classifier orient.Classifier
	logger     *slog.Logger
}

// OrientationStepOption configures an OrientationStep.
type OrientationStepOption func(*OrientationStep)

// WithOrientationLogger sets a custom logger for the orientation step.
func WithOrientationLogger(logger *slog.Logger) OrientationStepOption {
	return func(s *OrientationStep) {
		s.logger = logger
	}
}

// NewOrientationStep creates a new orientation step.
func NewOrientationStep(classifier orient.Classifier, opts ...OrientationStepOption) *OrientationStep {
	s := &OrientationStep{
		classifier: classifier,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *OrientationStep) Name() string {
	return "orientation"
}

// Do executes the orientation step. The classifier reports the clockwise
// rotation of the scan, so the image is turned back counter-clockwise by
// the same amount.
func (s *OrientationStep) Do(ctx context.Context, job *PageJob) error {
	angle, err := s.classifier.Classify(ctx, job.Page.Path)
	if err != nil {
		return fmt.Errorf("orientation (%s): %w", s.classifier.Name(), err)
	}
	job.Rotated = int(angle)

	if angle == orient.Upright {
		return nil
	}

	rotated, err := imagery.Rotate(job.Image, int(angle))
	if err != nil {
		return err
	}
	job.Image = rotated

	s.logger.Info("page rotated", "page", job.Page.Index, "degrees", int(angle))
	return nil
}

// UnwarpStep replaces the working image with the unwarping model output.
// Failures are logged and leave the image untouched.
type UnwarpStep struct {
	unwarper Unwarper
	tempDir  string
	logger   *slog.Logger
}

// UnwarpStepOption configures an UnwarpStep.
type UnwarpStepOption func(*UnwarpStep)

// WithUnwarpTempDir sets the directory for the rotated intermediate image.
func WithUnwarpTempDir(dir string) UnwarpStepOption {
	return func(s *UnwarpStep) {
		s.tempDir = dir
	}
}

// WithUnwarpLogger sets a custom logger for the unwarp step.
func WithUnwarpLogger(logger *slog.Logger) UnwarpStepOption {
	return func(s *UnwarpStep) {
		s.logger = logger
	}
}

// NewUnwarpStep creates a new unwarp step.
func NewUnwarpStep(unwarper Unwarper, opts ...UnwarpStepOption) *UnwarpStep {
	s := &UnwarpStep{
		unwarper: unwarper,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *UnwarpStep) Name() string {
	return "unwarp"
}

// Do executes the unwarp step. A rotated page is handed to the model
// through a temporary PNG that is removed before Do returns.
func (s *UnwarpStep) Do(ctx context.Context, job *PageJob) error {
	if err := s.unwarp(ctx, job); err != nil {
		job.UnwarpErr = err
		s.logger.Warn("unwarping skipped",
			"page", job.Page.Index,
			"model", s.unwarper.Name(),
			"error", err,
		)
	}
	return nil
}

func (s *UnwarpStep) unwarp(ctx context.Context, job *PageJob) error {
	input := job.Page.Path
	if job.Rotated != 0 {
		path, cleanup, err := imagery.WriteTemp(job.Image, s.tempDir)
		if err != nil {
			return err
		}
		defer func() {
			if err := cleanup(); err != nil {
				s.logger.Warn("failed to remove temporary image", "path", path, "error", err)
			}
		}()
		input = path
	}

	raster, err := s.unwarper.Unwarp(ctx, input)
	if err != nil {
		return err
	}
	img, err := raster.Image()
	if err != nil {
		return err
	}

	job.Image = img
	job.Unwarped = true
	s.logger.Info("page unwarped", "page", job.Page.Index, "width", raster.Width, "height", raster.Height)
	return nil
}

// EncodeStep writes the working image as a size-capped JPEG next to the
// source page.
type EncodeStep struct {
	opts   imagery.CapOptions
	logger *slog.Logger
}

// EncodeStepOption configures an EncodeStep.
type EncodeStepOption func(*EncodeStep)

// WithEncodeLogger sets a custom logger for the encode step.
func WithEncodeLogger(logger *slog.Logger) EncodeStepOption {
	return func(s *EncodeStep) {
		s.logger = logger
	}
}

// NewEncodeStep creates a new encode step.
func NewEncodeStep(opts imagery.CapOptions, stepOpts ...EncodeStepOption) *EncodeStep {
	s := &EncodeStep{
		opts:   opts,
		logger: slog.Default(),
	}
	for _, opt := range stepOpts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *EncodeStep) Name() string {
	return "encode"
}

// Do executes the encode step. An image that cannot be brought under the
// ceiling is still written at its smallest encoding.
func (s *EncodeStep) Do(_ context.Context, job *PageJob) error {
	if job.Image == nil {
		return errors.New("no image to encode")
	}

	enc, err := imagery.EncodeCapped(job.Image, s.opts)
	if err != nil {
		if !errors.Is(err, imagery.ErrSizeCapNotReached) || enc == nil {
			return err
		}
		s.logger.Warn("page exceeds size limit", "page", job.Page.Index, "error", err)
	}

	out := filepath.Join(filepath.Dir(job.Page.Path), pages.OutputName(job.Page.Index))
	if err := os.WriteFile(out, enc.Data, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}

	job.Encoded = enc
	job.Output = out

	s.logger.Info("page saved",
		"page", job.Page.Index,
		"file", filepath.Base(out),
		"size", humanize.IBytes(uint64(len(enc.Data))),
		"width", enc.Width,
		"height", enc.Height,
		"resizes", enc.Iterations,
	)
	return nil
}
