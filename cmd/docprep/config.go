package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/pagecraft/docprep/internal/config"
	applog "github.com/pagecraft/docprep/internal/log"
)

// buildConfig creates a Config for a pipeline command. Values are layered:
// defaults, configuration file, .env and environment, then the flags that
// were set on the command line.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.InputDir = args[0]

	if f := cmd.Flags().Lookup("config"); f != nil {
		cfg.ConfigFilePath = f.Value.String()
	}

	// An explicit --config must exist; the default locations are optional.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		file.Apply(cfg)
	case cfg.ConfigFilePath != "":
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	// .env is optional; existing environment variables win over it.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	config.ApplyEnv(cfg, os.LookupEnv)

	if err := applyFlags(cmd, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyFlags copies every flag changed on the command line onto cfg.
// Flags a command does not define are skipped.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	changed := func(name string) bool {
		f := flags.Lookup(name)
		return f != nil && f.Changed
	}

	var err error

	if changed("verbose") {
		if cfg.Verbose, err = flags.GetBool("verbose"); err != nil {
			return err
		}
	}
	if changed("log-json") {
		if cfg.LogJSON, err = flags.GetBool("log-json"); err != nil {
			return err
		}
	}

	if changed("format") {
		if cfg.Format, err = flags.GetString("format"); err != nil {
			return err
		}
	}
	if changed("output") {
		if cfg.OutputFile, err = flags.GetString("output"); err != nil {
			return err
		}
	}
	if changed("no-history") {
		noHistory, err := flags.GetBool("no-history")
		if err != nil {
			return err
		}
		cfg.SaveHistory = !noHistory
	}
	if changed("model-server") {
		if cfg.ModelServerURL, err = flags.GetString("model-server"); err != nil {
			return err
		}
	}
	if changed("model-timeout") {
		if cfg.ModelTimeout, err = flags.GetDuration("model-timeout"); err != nil {
			return err
		}
	}

	// preprocess
	if changed("orientation") {
		if cfg.OrientationBackend, err = flags.GetString("orientation"); err != nil {
			return err
		}
	}
	if changed("unwarp") {
		if cfg.UnwarpBackend, err = flags.GetString("unwarp"); err != nil {
			return err
		}
	}
	if changed("jpeg-quality") {
		if cfg.JPEGQuality, err = flags.GetInt("jpeg-quality"); err != nil {
			return err
		}
	}
	if changed("max-bytes") {
		if cfg.MaxOutputBytes, err = flags.GetInt64("max-bytes"); err != nil {
			return err
		}
	}

	// extract
	if changed("ocr") {
		if cfg.OCRBackend, err = flags.GetString("ocr"); err != nil {
			return err
		}
	}
	if changed("lang") {
		if cfg.OCRLanguages, err = flags.GetStringSlice("lang"); err != nil {
			return err
		}
	}
	if changed("min-confidence") {
		if cfg.MinConfidence, err = flags.GetFloat64("min-confidence"); err != nil {
			return err
		}
	}
	if changed("row-threshold") {
		if cfg.RowThreshold, err = flags.GetInt("row-threshold"); err != nil {
			return err
		}
	}

	return nil
}

// addOutputFlags registers the flags shared by the pipeline commands.
func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("format", "f", config.DefaultFormat,
		"Result format: json, markdown or text")
	cmd.Flags().StringP("output", "o", "",
		"Write the result to a file instead of stdout")
	cmd.Flags().Bool("no-history", false,
		"Do not record this run in the history database")
	cmd.Flags().String("model-server", "",
		"Base URL of the model server (or "+config.EnvModelServerURL+")")
	cmd.Flags().Duration("model-timeout", config.DefaultModelTimeout,
		"Timeout for a single model server request")
}

// setupLogger creates the stderr logger and installs it as the default.
func setupLogger(cfg *config.Config) *slog.Logger {
	var logger *slog.Logger
	if cfg.LogJSON {
		logger = applog.NewSecureJSONLogger(os.Stderr, cfg.Verbose)
	} else {
		logger = applog.NewSecureLogger(os.Stderr, cfg.Verbose)
	}
	slog.SetDefault(logger)
	return logger
}
