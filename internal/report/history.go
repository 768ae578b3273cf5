package report

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/nao1215/markdown"

	"github.com/pagecraft/docprep/internal/database"
)

// shortIDLength is the run ID prefix shown in listings. GetRun accepts it.
const shortIDLength = 8

// HistoryWriter outputs the run history as Markdown tables.
type HistoryWriter struct {
	baseWriter

	// now is the reference time for relative timestamps.
	now func() time.Time
}

// NewHistoryWriter creates a HistoryWriter that outputs to the given writer.
func NewHistoryWriter(output io.Writer) *HistoryWriter {
	return &HistoryWriter{
		baseWriter: newBaseWriter(output),
		now:        time.Now,
	}
}

// WriteRuns outputs one row per run.
func (w *HistoryWriter) WriteRuns(runs []database.Run) (int, error) {
	md := markdown.NewMarkdown(w.output)

	if len(runs) == 0 {
		md.PlainText("No runs recorded.")
		return len(md.String()), md.Build()
	}

	rows := make([][]string, len(runs))
	for i, r := range runs {
		rows[i] = []string{
			ShortID(r.ID),
			string(r.Kind),
			r.InputDir,
			humanize.RelTime(r.StartedAt, w.now(), "ago", "from now"),
			r.Duration().Round(time.Millisecond).String(),
			strconv.Itoa(r.TotalPages),
			strconv.Itoa(r.Fallbacks),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Run", "Kind", "Directory", "Started", "Duration", "Pages", "Fallbacks"},
		Rows:   rows,
	})
	return len(md.String()), md.Build()
}

// WriteRun outputs the details of one run and its pages.
func (w *HistoryWriter) WriteRun(run *database.Run) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1(fmt.Sprintf("Run %s", ShortID(run.ID)))
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"ID", "`" + run.ID + "`"},
			{"Kind", string(run.Kind)},
			{"Directory", run.InputDir},
			{"Started", run.StartedAt.Local().Format("2006-01-02 15:04:05 MST")},
			{"Duration", run.Duration().Round(time.Millisecond).String()},
			{"Pages", strconv.Itoa(run.TotalPages)},
			{"Fallbacks", strconv.Itoa(run.Fallbacks)},
		},
	})
	md.PlainText("")

	if len(run.Pages) > 0 {
		md.H2("Pages")
		md.PlainText("")
		rows := make([][]string, len(run.Pages))
		for i, p := range run.Pages {
			rows[i] = []string{
				strconv.Itoa(p.Page),
				p.Source,
				orDash(p.File),
				rotationText(p.Rotated),
				yesNo(p.Unwarped),
				yesNo(p.Fallback),
				shortFingerprint(p.Fingerprint),
				orDash(p.Error),
			}
		}
		md.Table(markdown.TableSet{
			Header: []string{"Page", "Source", "Output", "Rotation", "Unwarped", "Fallback", "Fingerprint", "Error"},
			Rows:   rows,
		})
		md.PlainText("")
	}

	return len(md.String()), md.Build()
}

// ShortID returns the listing prefix of a run ID.
func ShortID(id string) string {
	if len(id) <= shortIDLength {
		return id
	}
	return id[:shortIDLength]
}

func shortFingerprint(fp string) string {
	if len(fp) > 12 {
		return fp[:12]
	}
	return orDash(fp)
}
