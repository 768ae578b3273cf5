package layout

import (
	"cmp"
	"slices"
	"strings"

	"github.com/pagecraft/docprep/internal/model"
)

const (
	// Threshold is the default row banding distance in pixels.
	Threshold = 50

	// ColumnSeparator joins the fragments of one row.
	ColumnSeparator = "    "

	// NoTextDetected is returned for a page without fragments.
	NoTextDetected = "[No text detected]"
)

// Reconstructor bands fragments into rows and serializes them.
// The zero value is not usable; use New.
type Reconstructor struct {
	threshold int
}

// New returns a Reconstructor with the given banding threshold.
// Non-positive values fall back to Threshold.
func New(threshold int) *Reconstructor {
	if threshold <= 0 {
		threshold = Threshold
	}
	return &Reconstructor{threshold: threshold}
}

// Reconstruct rebuilds page text with the default threshold.
func Reconstruct(fragments []model.Fragment) string {
	return New(Threshold).Reconstruct(fragments)
}

// Reconstruct returns the fragments as reading-order text, one line per row
// with fragments separated by four spaces. An empty input yields
// NoTextDetected. The input slice is not modified.
func (r *Reconstructor) Reconstruct(fragments []model.Fragment) string {
	if len(fragments) == 0 {
		return NoTextDetected
	}

	rows := r.Rows(fragments)
	lines := make([]string, len(rows))
	for i, row := range rows {
		texts := make([]string, len(row))
		for j, f := range row {
			texts[j] = f.Text
		}
		lines[i] = strings.Join(texts, ColumnSeparator)
	}
	return strings.Join(lines, "\n")
}

// Rows groups fragments into rows ordered top to bottom, each row ordered
// left to right.
func (r *Reconstructor) Rows(fragments []model.Fragment) []model.Row {
	sorted := slices.Clone(fragments)
	slices.SortStableFunc(sorted, func(a, b model.Fragment) int {
		if c := cmp.Compare(a.Y, b.Y); c != 0 {
			return c
		}
		return cmp.Compare(a.X, b.X)
	})

	var rows []model.Row
	var anchorY int
	for _, f := range sorted {
		if len(rows) > 0 && abs(f.Y-anchorY) < r.threshold {
			rows[len(rows)-1] = append(rows[len(rows)-1], f)
			continue
		}
		rows = append(rows, model.Row{f})
		anchorY = f.Y
	}

	for _, row := range rows {
		slices.SortStableFunc(row, func(a, b model.Fragment) int {
			return cmp.Compare(a.X, b.X)
		})
	}
	return rows
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
