package report

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/pagecraft/docprep/internal/model"
)

// JSONWriter outputs results in JSON format. Non-ASCII text and HTML
// characters are written as-is.
type JSONWriter struct {
	baseWriter

	// indentString enables pretty-printed output when non-empty.
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithPrettyPrint enables pretty-printed JSON with two-space indentation.
func WithPrettyPrint() JSONWriterOption {
	return func(w *JSONWriter) {
		w.indentString = "  "
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// WritePreprocess outputs {"pages": [...]}.
func (w *JSONWriter) WritePreprocess(summary *model.PreprocessSummary) (int, error) {
	if summary.Pages == nil {
		summary = &model.PreprocessSummary{Pages: []model.PageResult{}}
	}
	return w.writeJSON(summary)
}

// WriteDocument outputs {"fullText": ..., "pages": [...], "totalPages": n}.
func (w *JSONWriter) WriteDocument(doc *model.Document) (int, error) {
	return w.writeJSON(doc)
}

// ErrorResult is the object printed in place of a result when a command fails.
type ErrorResult struct {
	Error string `json:"error"`
}

// WriteError outputs {"error": msg}.
func (w *JSONWriter) WriteError(err error) (int, error) {
	return w.writeJSON(ErrorResult{Error: err.Error()})
}

// WriteRaw outputs a stored JSON result, re-indented when pretty printing.
func (w *JSONWriter) WriteRaw(raw json.RawMessage) (int, error) {
	var buf bytes.Buffer
	var err error
	if w.indentString != "" {
		err = json.Indent(&buf, raw, "", w.indentString)
	} else {
		err = json.Compact(&buf, raw)
	}
	if err != nil {
		return 0, err
	}
	buf.WriteByte('\n')
	return w.output.Write(buf.Bytes())
}

// writeJSON marshals the given value to JSON and writes it to the output
// with a trailing newline.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if w.indentString != "" {
		enc.SetIndent("", w.indentString)
	}
	if err := enc.Encode(v); err != nil {
		return 0, err
	}
	return w.output.Write(buf.Bytes())
}
