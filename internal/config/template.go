package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
)

//go:embed template.yaml
var template []byte

// ErrConfigExists is returned by WriteTemplate when it must not overwrite.
var ErrConfigExists = errors.New("configuration file already exists")

// Template returns the commented configuration file written by
// "docprep init". Every setting is commented out, so loading it yields
// the defaults.
func Template() []byte {
	return slices.Clone(template)
}

// WriteTemplate writes Template to path, creating parent directories.
// Unless overwrite is set, an existing file is left alone and
// ErrConfigExists is returned.
func WriteTemplate(path string, overwrite bool) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	flag := os.O_WRONLY | os.O_CREATE | os.O_EXCL
	if overwrite {
		flag = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}
	f, err := os.OpenFile(path, flag, 0600) //nolint:gosec // User-provided output path is intentional
	if errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("%w: %s", ErrConfigExists, path)
	}
	if err != nil {
		return err
	}

	if _, err := f.Write(template); err != nil {
		_ = f.Close() //nolint:errcheck // Write error is more useful
		return err
	}
	return f.Close()
}
