package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/pagecraft/docprep/internal/config"
	"github.com/pagecraft/docprep/internal/database"
	"github.com/pagecraft/docprep/internal/model"
	"github.com/pagecraft/docprep/internal/ocr"
	"github.com/pagecraft/docprep/internal/ocr/tesseract"
	"github.com/pagecraft/docprep/internal/pipeline"
	"github.com/pagecraft/docprep/internal/report"
)

// NewExtractCmd creates the extract command.
func NewExtractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract <image_dir>",
		Short: "Extract the text of every page with OCR",
		Long: `Extract reads the text of every page image of a directory.

Recognitions below the confidence threshold are dropped and the rest are
grouped into visual rows, so the columns of receipts and tables stay on one
line separated by four spaces. Pages are joined with "---" separators.

A page whose OCR fails gets a placeholder text; the other pages are not
affected.

Examples:
  # Local Tesseract (default)
  docprep extract ./scans/receipt

  # German and English
  docprep extract --lang deu,eng ./scans/rechnung

  # OCR by the model server, plain text output
  docprep extract --ocr server --model-server http://localhost:8080 -f text ./scans/receipt`,
		Args: dirArg("extract"),
		RunE: runExtractCmd,
	}

	cmd.Flags().String("ocr", config.BackendTesseract,
		"OCR backend: tesseract or server")
	cmd.Flags().StringSlice("lang", []string{"eng"},
		"Tesseract language codes")
	cmd.Flags().Float64("min-confidence", config.DefaultMinConfidence,
		"Lowest recognition confidence kept")
	cmd.Flags().Int("row-threshold", config.DefaultRowThreshold,
		"Vertical distance in pixels that starts a new row")
	addOutputFlags(cmd)

	return cmd
}

// runExtractCmd executes the extract command.
func runExtractCmd(cmd *cobra.Command, args []string) error {
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

	return runExtract(ctx, cmd, cfg, logger)
}

// runExtract builds the OCR engine once and runs the extraction.
func runExtract(ctx context.Context, cmd *cobra.Command, cfg *config.Config, logger *slog.Logger) error {
	var (
		engine ocr.Engine
		check  pipeline.ModelCheck
	)

	switch cfg.OCRBackend {
	case config.BackendServer:
		server := newModelServer(cfg, logger)
		engine = server
		check = pipeline.ModelCheck{Name: config.BackendServer, Load: server.Ping}
	default:
		tess := tesseract.New(tesseract.WithLanguages(cfg.OCRLanguages...))
		defer func() {
			if err := tess.Close(); err != nil {
				logger.Debug("failed to release tesseract", "error", err)
			}
		}()
		engine = tess
		check = pipeline.ModelCheck{Name: "ocr", Load: func(context.Context) error {
			if tess.Version() == "" {
				return errors.New("tesseract library not available")
			}
			return nil
		}}
	}

	if err := pipeline.LoadModels(ctx, logger, check); err != nil {
		return err
	}

	collector := ocr.NewCollector(engine,
		ocr.WithMinConfidence(cfg.MinConfidence),
		ocr.WithRowThreshold(cfg.RowThreshold),
		ocr.WithCollectorLogger(logger),
	)

	started := time.Now()
	results, err := pipeline.NewExtractor(collector, pipeline.WithExtractLogger(logger)).RunPages(ctx, cfg.InputDir)
	if err != nil {
		return err
	}
	doc := model.NewDocumentFromResults(results)

	err = withOutput(cmd, cfg, func(w io.Writer) error {
		out, err := report.New(cfg.Format, w)
		if err != nil {
			return err
		}
		_, err = out.WriteDocument(doc)
		return err
	})
	if err != nil {
		return err
	}

	recordRun(ctx, cfg, logger, runRecord{
		kind:    database.KindExtract,
		started: started,
		pages:   results,
		writeJSON: func(w io.Writer) error {
			_, err := report.NewJSONWriter(w).WriteDocument(doc)
			return err
		},
	})
	return nil
}
