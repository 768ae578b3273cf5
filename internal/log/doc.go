// Package log provides sanitizing slog handlers for docprep.
//
// SecureHandler wraps any slog.Handler and rewrites attributes before they
// are written:
//   - credentials for the model server (API keys, bearer tokens) are masked
//   - string values longer than MaxValueLength, typically base64 image
//     payloads, are cut down to a short prefix
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	slog.SetDefault(logger)
//
//	logger.Debug("calling model server",
//	    "endpoint", "image-unwarping",
//	    "api_key", cfg.APIKey, // written as ***REDACTED***
//	)
package log
