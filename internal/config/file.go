package config

import "time"

// File represents the structure of the .docprep.yaml configuration file.
// Zero values mean "not set" and leave the current configuration alone.
type File struct {
	// Layout tunes the row reconstructor.
	Layout LayoutSection `yaml:"layout,omitempty"`

	// OCR selects and tunes the text extraction backend.
	OCR OCRSection `yaml:"ocr,omitempty"`

	// Preprocess selects the correction backends and the output encoding.
	Preprocess PreprocessSection `yaml:"preprocess,omitempty"`

	// ModelServer configures the HTTP model server used by server backends.
	ModelServer ModelServerSection `yaml:"modelServer,omitempty"`

	// History configures the run history database.
	History HistorySection `yaml:"history,omitempty"`
}

// LayoutSection holds row reconstruction settings.
type LayoutSection struct {
	RowThreshold int `yaml:"rowThreshold,omitempty"`
}

// OCRSection holds text extraction settings.
type OCRSection struct {
	Backend       string   `yaml:"backend,omitempty"`
	MinConfidence *float64 `yaml:"minConfidence,omitempty"`
	Languages     []string `yaml:"languages,omitempty"`
}

// PreprocessSection holds image preprocessing settings.
type PreprocessSection struct {
	Orientation         string  `yaml:"orientation,omitempty"`
	Unwarp              string  `yaml:"unwarp,omitempty"`
	JPEGQuality         int     `yaml:"jpegQuality,omitempty"`
	MaxOutputBytes      int64   `yaml:"maxOutputBytes,omitempty"`
	ScaleFactor         float64 `yaml:"scaleFactor,omitempty"`
	MaxResizeIterations int     `yaml:"maxResizeIterations,omitempty"`
}

// ModelServerSection holds model server connection settings.
type ModelServerSection struct {
	URL     string        `yaml:"url,omitempty"`
	APIKey  string        `yaml:"apiKey,omitempty"`
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// HistorySection holds run history settings.
type HistorySection struct {
	Enabled *bool  `yaml:"enabled,omitempty"`
	Dir     string `yaml:"dir,omitempty"`
}

// Apply copies every value set in the file onto cfg.
func (f *File) Apply(cfg *Config) {
	if f.Layout.RowThreshold != 0 {
		cfg.RowThreshold = f.Layout.RowThreshold
	}

	if f.OCR.Backend != "" {
		cfg.OCRBackend = f.OCR.Backend
	}
	// MinConfidence is a pointer because 0 is a meaningful value (keep everything).
	if f.OCR.MinConfidence != nil {
		cfg.MinConfidence = *f.OCR.MinConfidence
	}
	if len(f.OCR.Languages) > 0 {
		cfg.OCRLanguages = f.OCR.Languages
	}

	p := f.Preprocess
	if p.Orientation != "" {
		cfg.OrientationBackend = p.Orientation
	}
	if p.Unwarp != "" {
		cfg.UnwarpBackend = p.Unwarp
	}
	if p.JPEGQuality != 0 {
		cfg.JPEGQuality = p.JPEGQuality
	}
	if p.MaxOutputBytes != 0 {
		cfg.MaxOutputBytes = p.MaxOutputBytes
	}
	if p.ScaleFactor != 0 {
		cfg.ScaleFactor = p.ScaleFactor
	}
	if p.MaxResizeIterations != 0 {
		cfg.MaxResizeIterations = p.MaxResizeIterations
	}

	if f.ModelServer.URL != "" {
		cfg.ModelServerURL = f.ModelServer.URL
	}
	if f.ModelServer.APIKey != "" {
		cfg.APIKey = f.ModelServer.APIKey
	}
	if f.ModelServer.Timeout != 0 {
		cfg.ModelTimeout = f.ModelServer.Timeout
	}

	if f.History.Enabled != nil {
		cfg.SaveHistory = *f.History.Enabled
	}
	if f.History.Dir != "" {
		cfg.DBDir = f.History.Dir
	}
}
