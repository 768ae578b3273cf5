package report

import (
	"fmt"
	"io"

	"github.com/pagecraft/docprep/internal/config"
	"github.com/pagecraft/docprep/internal/model"
)

// Writer outputs pipeline results.
type Writer interface {
	// WritePreprocess outputs a preprocessing summary.
	// Returns the number of bytes written and any error encountered.
	WritePreprocess(summary *model.PreprocessSummary) (int, error)

	// WriteDocument outputs a text extraction result.
	WriteDocument(doc *model.Document) (int, error)
}

// New returns the writer for format.
func New(format string, output io.Writer) (Writer, error) {
	switch format {
	case config.FormatJSON:
		return NewJSONWriter(output), nil
	case config.FormatMarkdown:
		return NewMarkdownWriter(output), nil
	case config.FormatText:
		return NewTextWriter(output), nil
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownFormat, format)
	}
}

// MultiWriter writes to multiple Writers in order and stops on the first
// error.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// WritePreprocess outputs the summary to all configured Writers.
func (m *MultiWriter) WritePreprocess(summary *model.PreprocessSummary) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WritePreprocess(summary)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteDocument outputs the document to all configured Writers.
func (m *MultiWriter) WriteDocument(doc *model.Document) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteDocument(doc)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
