package pipeline

import (
	"context"
	"image"
	"log/slog"

	"github.com/pagecraft/docprep/internal/imagery"
	"github.com/pagecraft/docprep/internal/pages"
)

// PageJob carries one page through the preprocessing steps.
type PageJob struct {
	// Page is the source page.
	Page pages.Page

	// Image is the working image, replaced by each step that transforms it.
	Image image.Image

	// Rotated is the detected clockwise rotation in degrees. It is set as
	// soon as the classifier answers and survives the fallback path.
	Rotated int

	// Unwarped reports that the unwarping model output replaced Image.
	Unwarped bool

	// UnwarpErr is the reason unwarping was skipped, if it was.
	UnwarpErr error

	// Encoded is the final JPEG encoding.
	Encoded *imagery.Encoded

	// Output is the path of the written preprocessed image.
	Output string

	// Performed lists the names of the steps that completed.
	Performed []string
}

// Step is one stage of the preprocessing pipeline.
type Step interface {
	// Do executes the step. A returned error is unrecoverable for the
	// page; recoverable problems are recorded in the job and nil returned.
	Do(ctx context.Context, job *PageJob) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline executes steps in order.
type Pipeline struct {
	steps []Step

	logger *slog.Logger

	// continueOnError runs the remaining steps after a failure.
	continueOnError bool
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError configures the pipeline to keep executing steps after
// one fails. The first error is still returned.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// New creates a new Pipeline with the given options.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// AddStep appends a step to the pipeline.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all steps on job in sequence.
// Cancellation is checked before each step.
func (p *Pipeline) Execute(ctx context.Context, job *PageJob) error {
	var firstErr error

	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"page", job.Page.Index,
				"reason", err,
			)
			return err
		}

		p.logger.Debug("executing step",
			"step", step.Name(),
			"page", job.Page.Index,
		)

		if err := step.Do(ctx, job); err != nil {
			p.logger.Debug("step failed",
				"step", step.Name(),
				"page", job.Page.Index,
				"error", err,
			)
			if firstErr == nil {
				firstErr = err
			}
			if !p.continueOnError {
				return err
			}
			continue
		}

		job.Performed = append(job.Performed, step.Name())
	}

	return firstErr
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
