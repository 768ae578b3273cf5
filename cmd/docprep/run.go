package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pagecraft/docprep/internal/config"
	"github.com/pagecraft/docprep/internal/database"
	"github.com/pagecraft/docprep/internal/model"
	"github.com/pagecraft/docprep/internal/modelserver"
)

// dirArg accepts exactly one image directory.
func dirArg(name string) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		if len(args) != 1 {
			return fmt.Errorf("Usage: docprep %s <image_dir>", name) //nolint:staticcheck // Printed as-is to users
		}
		return nil
	}
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context, logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}

// newModelServer creates the model server client shared by all server
// backends of a run.
func newModelServer(cfg *config.Config, logger *slog.Logger) *modelserver.Client {
	return modelserver.New(cfg.ModelServerURL,
		modelserver.WithAPIKey(cfg.APIKey),
		modelserver.WithTimeout(cfg.ModelTimeout),
		modelserver.WithLogger(logger),
	)
}

// withOutput calls write with stdout or the --output file.
func withOutput(cmd *cobra.Command, cfg *config.Config, write func(io.Writer) error) error {
	if cfg.OutputFile == "" {
		return write(cmd.OutOrStdout())
	}

	dir := filepath.Dir(cfg.OutputFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(cfg.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// runRecord describes a finished run for the history database.
type runRecord struct {
	kind    database.Kind
	started time.Time
	pages   []model.PageResult

	// writeJSON writes the JSON result of the run.
	writeJSON func(io.Writer) error
}

// recordRun stores a finished run in the history database. Failures are
// logged; the run itself already succeeded.
func recordRun(ctx context.Context, cfg *config.Config, logger *slog.Logger, rec runRecord) {
	if !cfg.SaveHistory {
		return
	}

	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		logger.Warn("failed to open history database", "dir", cfg.DBDir, "error", err)
		return
	}
	defer db.Close()

	dir, err := filepath.Abs(cfg.InputDir)
	if err != nil {
		dir = cfg.InputDir
	}

	for _, p := range rec.pages {
		prev, err := db.LastFingerprint(ctx, dir, p.Page)
		if err != nil {
			logger.Debug("failed to look up previous fingerprint", "page", p.Page, "error", err)
			continue
		}
		if prev != "" && p.Fingerprint != "" && prev != p.Fingerprint {
			logger.Info("page changed since last run", "page", p.Page, "file", p.Source)
		}
	}

	var buf bytes.Buffer
	if err := rec.writeJSON(&buf); err != nil {
		logger.Warn("failed to encode run result", "error", err)
		return
	}

	fallbacks := 0
	for _, p := range rec.pages {
		if p.Fallback {
			fallbacks++
		}
	}

	run := &database.Run{
		ID:         database.NewRunID(),
		Kind:       rec.kind,
		InputDir:   dir,
		StartedAt:  rec.started,
		FinishedAt: time.Now(),
		TotalPages: len(rec.pages),
		Fallbacks:  fallbacks,
		Pages:      rec.pages,
		Result:     bytes.TrimSpace(buf.Bytes()),
	}
	if err := db.SaveRun(ctx, run); err != nil {
		logger.Warn("failed to record run", "error", err)
		return
	}
	logger.Debug("run recorded", "run", run.ID, "db", db.Path())
}
