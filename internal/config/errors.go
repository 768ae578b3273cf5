package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() so that callers can use
// errors.Is() to react to a specific problem.
var (
	// ErrNoInputDir is returned when no page image directory is given.
	ErrNoInputDir = errors.New("no input directory specified")

	// ErrInvalidRowThreshold is returned when the row banding threshold is not positive.
	ErrInvalidRowThreshold = errors.New("invalid row threshold: must be positive")

	// ErrInvalidMinConfidence is returned when the confidence filter is outside [0, 1].
	ErrInvalidMinConfidence = errors.New("invalid minimum confidence: must be between 0 and 1")

	// ErrInvalidJPEGQuality is returned when the JPEG quality is outside [1, 100].
	ErrInvalidJPEGQuality = errors.New("invalid JPEG quality: must be between 1 and 100")

	// ErrInvalidMaxOutputBytes is returned when the output size ceiling is not positive.
	ErrInvalidMaxOutputBytes = errors.New("invalid max output bytes: must be positive")

	// ErrInvalidScaleFactor is returned when the downscale factor would not shrink the image.
	ErrInvalidScaleFactor = errors.New("invalid scale factor: must be greater than 0 and less than 1")

	// ErrInvalidMaxResizeIterations is returned when the resize loop has no room to run.
	ErrInvalidMaxResizeIterations = errors.New("invalid max resize iterations: must be positive")

	// ErrUnknownBackend is returned when a collaborator backend name is not recognized.
	ErrUnknownBackend = errors.New("unknown backend")

	// ErrNoModelServer is returned when a server backend is selected without a server URL.
	ErrNoModelServer = errors.New("model server backend selected but no model server URL configured")

	// ErrInvalidModelTimeout is returned when the model server timeout is not positive.
	ErrInvalidModelTimeout = errors.New("invalid model server timeout: must be positive")

	// ErrUnknownFormat is returned when the output format is not json, markdown or text.
	ErrUnknownFormat = errors.New("unknown output format: must be json, markdown or text")
)
