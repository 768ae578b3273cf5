package pages

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/crypto/sha3"
)

var (
	// ErrDirNotFound is returned when the input directory does not exist.
	ErrDirNotFound = errors.New("directory not found")

	// ErrNoPages is returned when the directory holds no page_1 image.
	ErrNoPages = errors.New("no page images found")
)

// Extensions are the image extensions probed for every page index, in
// order of preference.
var Extensions = []string{".png", ".jpg", ".jpeg", ".tif", ".tiff", ".bmp", ".webp"}

// Page is one discovered page image.
type Page struct {
	// Index is the 1-based page number.
	Index int

	// Path is the image path.
	Path string

	// Name is the file name without directory.
	Name string
}

// DirError reports a problem with the input directory. Its message is the
// one shown to users.
type DirError struct {
	Dir string
	Err error
}

// Error implements error.
func (e *DirError) Error() string {
	switch {
	case errors.Is(e.Err, ErrDirNotFound):
		return "Directory not found: " + e.Dir
	case errors.Is(e.Err, ErrNoPages):
		return "No page_*.png images found in " + e.Dir
	default:
		return fmt.Sprintf("%s: %v", e.Dir, e.Err)
	}
}

// Unwrap returns the underlying error.
func (e *DirError) Unwrap() error {
	return e.Err
}

// Discover lists the pages of the document in dir in page order.
func Discover(dir string) ([]Page, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &DirError{Dir: dir, Err: ErrDirNotFound}
		}
		return nil, &DirError{Dir: dir, Err: err}
	}
	if !info.IsDir() {
		return nil, &DirError{Dir: dir, Err: ErrDirNotFound}
	}

	var pages []Page
	for n := 1; ; n++ {
		path, ok := find(dir, n)
		if !ok {
			break
		}
		pages = append(pages, Page{Index: n, Path: path, Name: filepath.Base(path)})
	}

	if len(pages) == 0 {
		return nil, &DirError{Dir: dir, Err: ErrNoPages}
	}
	return pages, nil
}

// find returns the first existing page_<n> image in dir.
func find(dir string, n int) (string, bool) {
	for _, ext := range Extensions {
		path := filepath.Join(dir, fmt.Sprintf("page_%d%s", n, ext))
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			return path, true
		}
	}
	return "", false
}

// OutputName is the file name of the preprocessed image of page n.
func OutputName(n int) string {
	return fmt.Sprintf("page_%d_pre.jpg", n)
}

// Fingerprint returns the hex SHA3-256 digest of the file at path. Run
// history uses it to tell whether a page changed between runs.
func Fingerprint(path string) (string, error) {
	f, err := os.Open(path) //nolint:gosec // Page paths come from Discover
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha3.New256()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
