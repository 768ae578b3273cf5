package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "docprep"

	// DefaultRowThreshold is the vertical distance, in pixels, at which a
	// fragment stops belonging to the current row. Receipts scanned at
	// 150-300 DPI keep a printed line well inside 50 pixels.
	DefaultRowThreshold = 50

	// DefaultMinConfidence drops recognitions the OCR engine is unsure about.
	// A recognition scoring exactly this value is kept.
	DefaultMinConfidence = 0.30

	// DefaultJPEGQuality is the quality used for preprocessed page images.
	DefaultJPEGQuality = 90

	// DefaultMaxOutputBytes is the upload limit of the vision model API
	// that consumes preprocessed pages.
	DefaultMaxOutputBytes = 5 * 1024 * 1024 // 5MiB

	// DefaultScaleFactor is applied to both dimensions on every pass of the
	// size-capping loop.
	DefaultScaleFactor = 0.85

	// DefaultMaxResizeIterations bounds the size-capping loop. 0.85^32 is
	// below 0.6% of the original width, far past any useful page image.
	DefaultMaxResizeIterations = 32

	// DefaultModelTimeout bounds a single call to the model server.
	// Unwarping a full page on CPU can take tens of seconds.
	DefaultModelTimeout = 2 * time.Minute

	// DefaultFormat is the result format written to stdout.
	DefaultFormat = FormatJSON
)

// Collaborator backends.
const (
	// BackendNone disables a stage. The orientation stage then reports 0
	// and the unwarp stage is skipped for every page.
	BackendNone = "none"

	// BackendEXIF reads the orientation from the image's EXIF metadata.
	BackendEXIF = "exif"

	// BackendServer delegates to the HTTP model server.
	BackendServer = "server"

	// BackendTesseract runs the local Tesseract engine.
	BackendTesseract = "tesseract"
)

// Output formats.
const (
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
	FormatText     = "text"
)

// Config holds all configuration options for docprep.
// It is populated from defaults, the configuration file, the environment
// and CLI flags, in that order, and passed explicitly to the commands.
type Config struct {
	// InputDir is the directory holding page_<n>.<ext> images.
	InputDir string

	// RowThreshold is the row banding distance used by the layout reconstructor.
	RowThreshold int

	// MinConfidence is the lowest OCR confidence kept by the fragment collector.
	MinConfidence float64

	// JPEGQuality is the quality of preprocessed page images.
	JPEGQuality int

	// MaxOutputBytes is the size ceiling of a preprocessed page image.
	MaxOutputBytes int64

	// ScaleFactor is the per-dimension shrink applied while over the ceiling.
	ScaleFactor float64

	// MaxResizeIterations bounds the size-capping loop.
	MaxResizeIterations int

	// OrientationBackend selects the orientation classifier: exif, server or none.
	OrientationBackend string

	// UnwarpBackend selects the unwarping model: server or none.
	UnwarpBackend string

	// OCRBackend selects the OCR engine: tesseract or server.
	OCRBackend string

	// OCRLanguages are the Tesseract language codes (e.g. "eng", "deu").
	OCRLanguages []string

	// ModelServerURL is the base URL of the HTTP model server.
	ModelServerURL string

	// APIKey is sent as a bearer token to the model server when set.
	APIKey string

	// ModelTimeout bounds a single model server request.
	ModelTimeout time.Duration

	// Verbose enables debug logging.
	Verbose bool

	// LogJSON switches stderr logging to JSON lines.
	LogJSON bool

	// ConfigFilePath is the explicit configuration file path, if any.
	ConfigFilePath string

	// Format is the result format: json, markdown or text.
	Format string

	// OutputFile receives the result instead of stdout when set.
	OutputFile string

	// SaveHistory records each run in the history database.
	SaveHistory bool

	// DBDir is the directory holding the history database.
	// Defaults to the XDG data directory (~/.local/share/docprep on Linux).
	DBDir string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		RowThreshold:        DefaultRowThreshold,
		MinConfidence:       DefaultMinConfidence,
		JPEGQuality:         DefaultJPEGQuality,
		MaxOutputBytes:      DefaultMaxOutputBytes,
		ScaleFactor:         DefaultScaleFactor,
		MaxResizeIterations: DefaultMaxResizeIterations,
		OrientationBackend:  BackendEXIF,
		UnwarpBackend:       BackendNone,
		OCRBackend:          BackendTesseract,
		OCRLanguages:        []string{"eng"},
		ModelTimeout:        DefaultModelTimeout,
		Format:              DefaultFormat,
		SaveHistory:         true,
		DBDir:               XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for docprep.
// On Linux: ~/.local/share/docprep
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for docprep.
// On Linux: ~/.config/docprep
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for docprep.
// Temporary images handed to the unwarping model are written below it.
// On Linux: ~/.cache/docprep
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// UsesModelServer reports whether any stage is delegated to the model server.
func (c *Config) UsesModelServer() bool {
	return c.OrientationBackend == BackendServer ||
		c.UnwarpBackend == BackendServer ||
		c.OCRBackend == BackendServer
}

// Validate checks if the configuration is valid.
// It returns the first problem found.
func (c *Config) Validate() error {
	if c.InputDir == "" {
		return ErrNoInputDir
	}
	if c.RowThreshold <= 0 {
		return ErrInvalidRowThreshold
	}
	if c.MinConfidence < 0 || c.MinConfidence > 1 {
		return ErrInvalidMinConfidence
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		return ErrInvalidJPEGQuality
	}
	if c.MaxOutputBytes <= 0 {
		return ErrInvalidMaxOutputBytes
	}
	if c.ScaleFactor <= 0 || c.ScaleFactor >= 1 {
		return ErrInvalidScaleFactor
	}
	if c.MaxResizeIterations <= 0 {
		return ErrInvalidMaxResizeIterations
	}

	switch c.OrientationBackend {
	case BackendEXIF, BackendServer, BackendNone:
	default:
		return fmt.Errorf("%w: orientation %q", ErrUnknownBackend, c.OrientationBackend)
	}
	switch c.UnwarpBackend {
	case BackendServer, BackendNone:
	default:
		return fmt.Errorf("%w: unwarp %q", ErrUnknownBackend, c.UnwarpBackend)
	}
	switch c.OCRBackend {
	case BackendTesseract, BackendServer:
	default:
		return fmt.Errorf("%w: ocr %q", ErrUnknownBackend, c.OCRBackend)
	}

	if c.UsesModelServer() {
		if c.ModelServerURL == "" {
			return ErrNoModelServer
		}
		if c.ModelTimeout <= 0 {
			return ErrInvalidModelTimeout
		}
	}

	switch c.Format {
	case FormatJSON, FormatMarkdown, FormatText:
	default:
		return ErrUnknownFormat
	}

	return nil
}
