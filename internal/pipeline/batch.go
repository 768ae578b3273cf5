package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// ModelCheck is a readiness check for one collaborator.
type ModelCheck struct {
	// Name identifies the model in logs and errors.
	Name string

	// Load makes the model ready or reports why it cannot be.
	Load func(ctx context.Context) error
}

// LoadModels runs checks concurrently and returns the first failure.
// A failing check cancels the context of the others.
func LoadModels(ctx context.Context, logger *slog.Logger, checks ...ModelCheck) error {
	if logger == nil {
		logger = slog.Default()
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, check := range checks {
		g.Go(func() error {
			logger.Info("loading model", "model", check.Name)
			start := time.Now()

			if err := check.Load(ctx); err != nil {
				return fmt.Errorf("failed to load %s model: %w", check.Name, err)
			}

			logger.Debug("model ready", "model", check.Name, "elapsed", time.Since(start))
			return nil
		})
	}
	return g.Wait()
}
