package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/pagecraft/docprep/internal/model"
)

// TextWriter outputs plain text: the document text for extraction and one
// line per page for preprocessing.
type TextWriter struct {
	baseWriter
}

// NewTextWriter creates a TextWriter that outputs to the given writer.
func NewTextWriter(output io.Writer) *TextWriter {
	return &TextWriter{baseWriter: newBaseWriter(output)}
}

// WriteDocument outputs the full text followed by a newline.
func (w *TextWriter) WriteDocument(doc *model.Document) (int, error) {
	return io.WriteString(w.output, doc.FullText+"\n")
}

// WritePreprocess outputs one line per page.
func (w *TextWriter) WritePreprocess(summary *model.PreprocessSummary) (int, error) {
	var sb strings.Builder
	for _, p := range summary.Pages {
		file := p.File
		if file == "" {
			file = "-"
		}
		fmt.Fprintf(&sb, "page %d: %s", p.Page, file)

		var notes []string
		if p.Rotated != 0 {
			notes = append(notes, fmt.Sprintf("rotated %d", p.Rotated))
		}
		if p.Unwarped {
			notes = append(notes, "unwarped")
		}
		if p.Fallback {
			notes = append(notes, "fallback")
		}
		if len(notes) > 0 {
			sb.WriteString(" (" + strings.Join(notes, ", ") + ")")
		}
		if p.Error != "" {
			sb.WriteString(": " + p.Error)
		}
		sb.WriteString("\n")
	}
	return io.WriteString(w.output, sb.String())
}
