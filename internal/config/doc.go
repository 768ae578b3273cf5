// Package config provides configuration structures and utilities for docprep.
// It defines the tuning values of the layout and encoding algorithms, the
// collaborator backends used for orientation, unwarping and OCR, and the
// output and history preferences.
package config
