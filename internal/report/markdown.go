package report

import (
	"fmt"
	"io"
	"strconv"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"github.com/nao1215/markdown"

	"github.com/pagecraft/docprep/internal/model"
)

// MarkdownWriter outputs results in Markdown format.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// WritePreprocess outputs a table of the preprocessed pages.
func (w *MarkdownWriter) WritePreprocess(summary *model.PreprocessSummary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Preprocessing Report")
	md.PlainText("")

	rows := make([][]string, len(summary.Pages))
	for i, p := range summary.Pages {
		rows[i] = []string{
			strconv.Itoa(p.Page),
			orDash(p.Source),
			orDash(code(p.File)),
			sizeText(p.Bytes),
			rotationText(p.Rotated),
			yesNo(p.Unwarped),
			statusText(p),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Page", "Source", "Output", "Size", "Rotation", "Unwarped", "Status"},
		Rows:   rows,
	})
	md.PlainText("")

	w.writeAlert(md, summary)

	for _, p := range summary.Pages {
		if p.Error != "" {
			md.Details(fmt.Sprintf("Page %d error", p.Page), p.Error)
		}
	}

	w.writeFooter(md)
	return len(md.String()), md.Build()
}

// writeAlert summarizes how many pages needed the fallback path.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, summary *model.PreprocessSummary) {
	failed := 0
	for _, p := range summary.Pages {
		if p.File == "" {
			failed++
		}
	}

	switch {
	case failed > 0:
		md.Cautionf("%d page(s) could not be written.", failed)
	case summary.FallbackCount() > 0:
		md.Warningf("%d of %d page(s) were re-encoded from the original image.",
			summary.FallbackCount(), len(summary.Pages))
	default:
		md.Tip("All pages preprocessed.")
	}
	md.PlainText("")
}

// WriteDocument outputs each page text in its own section.
func (w *MarkdownWriter) WriteDocument(doc *model.Document) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Extracted Text")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Pages", strconv.Itoa(doc.TotalPages)},
			{"Characters", humanize.Comma(int64(utf8.RuneCountInString(doc.FullText)))},
		},
	})
	md.PlainText("")

	if doc.TotalPages == 0 {
		md.Note("No pages.")
		md.PlainText("")
	}

	for i, text := range doc.Pages {
		md.H2(fmt.Sprintf("Page %d", i+1))
		md.PlainText("")
		md.CodeBlocks(markdown.SyntaxHighlightText, text)
		md.PlainText("")
	}

	w.writeFooter(md)
	return len(md.String()), md.Build()
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Generated by docprep*")
}

func statusText(p model.PageResult) string {
	switch {
	case p.File == "":
		return "❌ Failed"
	case p.Fallback:
		return "⚠️ Fallback"
	default:
		return "✅ OK"
	}
}

func rotationText(deg int) string {
	if deg == 0 {
		return "-"
	}
	return fmt.Sprintf("%d°", deg)
}

func sizeText(n int64) string {
	if n <= 0 {
		return "-"
	}
	return humanize.IBytes(uint64(n))
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func code(s string) string {
	if s == "" {
		return ""
	}
	return "`" + s + "`"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
