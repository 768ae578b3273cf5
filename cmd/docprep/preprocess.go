package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/pagecraft/docprep/internal/config"
	"github.com/pagecraft/docprep/internal/database"
	"github.com/pagecraft/docprep/internal/imagery"
	"github.com/pagecraft/docprep/internal/orient"
	"github.com/pagecraft/docprep/internal/pipeline"
	"github.com/pagecraft/docprep/internal/report"
)

// NewPreprocessCmd creates the preprocess command.
func NewPreprocessCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preprocess <image_dir>",
		Short: "Prepare page images for vision model upload",
		Long: `Preprocess corrects every page image of a directory and writes
page_<n>_pre.jpg next to it.

For each page the rotation is detected and undone, the page is optionally
unwarped by the model server, and the result is encoded as JPEG (quality 90)
and shrunk until it fits in 5 MiB. A page that fails any stage is re-encoded
from the original image and marked with "fallback".

Examples:
  # Orientation from EXIF metadata (default)
  docprep preprocess ./scans/receipt

  # Orientation and unwarping by the model server
  docprep preprocess --orientation server --unwarp server \
    --model-server http://localhost:8080 ./scans/receipt

  # Markdown summary written to a file
  docprep preprocess -f markdown -o report.md ./scans/receipt`,
		Args: dirArg("preprocess"),
		RunE: runPreprocessCmd,
	}

	cmd.Flags().String("orientation", config.BackendEXIF,
		"Orientation backend: exif, server or none")
	cmd.Flags().String("unwarp", config.BackendNone,
		"Unwarping backend: server or none")
	cmd.Flags().Int("jpeg-quality", config.DefaultJPEGQuality,
		"JPEG quality of the preprocessed images")
	cmd.Flags().Int64("max-bytes", config.DefaultMaxOutputBytes,
		"Size limit of a preprocessed image in bytes")
	addOutputFlags(cmd)

	return cmd
}

// runPreprocessCmd executes the preprocess command.
func runPreprocessCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cfg)

	ctx, cancel := signalContext(cmd.Context(), logger)
	defer cancel()

	return runPreprocess(ctx, cmd, cfg, logger)
}

// runPreprocess builds the collaborators once and runs the pipeline.
func runPreprocess(ctx context.Context, cmd *cobra.Command, cfg *config.Config, logger *slog.Logger) error {
	var (
		classifier orient.Classifier
		unwarper   pipeline.Unwarper
		checks     []pipeline.ModelCheck
	)

	usesServer := cfg.OrientationBackend == config.BackendServer || cfg.UnwarpBackend == config.BackendServer
	if usesServer {
		server := newModelServer(cfg, logger)
		checks = append(checks, pipeline.ModelCheck{Name: config.BackendServer, Load: server.Ping})
		if cfg.OrientationBackend == config.BackendServer {
			classifier = server
		}
		if cfg.UnwarpBackend == config.BackendServer {
			unwarper = server
		}
	}
	switch cfg.OrientationBackend {
	case config.BackendEXIF:
		classifier = orient.NewEXIFClassifier()
	case config.BackendNone:
		classifier = orient.Fixed(orient.Upright)
	}

	if err := pipeline.LoadModels(ctx, logger, checks...); err != nil {
		return err
	}

	opts := []pipeline.PreprocessorOption{
		pipeline.WithCapOptions(imagery.CapOptions{
			Quality:       cfg.JPEGQuality,
			MaxBytes:      cfg.MaxOutputBytes,
			ScaleFactor:   cfg.ScaleFactor,
			MaxIterations: cfg.MaxResizeIterations,
		}),
		pipeline.WithTempDir(config.XDGCacheDir()),
		pipeline.WithPreprocessLogger(logger),
	}
	if unwarper != nil {
		opts = append(opts, pipeline.WithUnwarper(unwarper))
	}

	started := time.Now()
	summary, err := pipeline.NewPreprocessor(classifier, opts...).Run(ctx, cfg.InputDir)
	if err != nil {
		return err
	}

	err = withOutput(cmd, cfg, func(w io.Writer) error {
		out, err := report.New(cfg.Format, w)
		if err != nil {
			return err
		}
		_, err = out.WritePreprocess(summary)
		return err
	})
	if err != nil {
		return err
	}

	recordRun(ctx, cfg, logger, runRecord{
		kind:    database.KindPreprocess,
		started: started,
		pages:   summary.Pages,
		writeJSON: func(w io.Writer) error {
			_, err := report.NewJSONWriter(w).WritePreprocess(summary)
			return err
		},
	})
	return nil
}
