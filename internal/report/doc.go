// Package report writes pipeline results.
//
// Writers exist for three formats:
//   - JSONWriter: the machine-readable result, compact by default
//   - MarkdownWriter: a per-page table for humans and issue trackers
//   - TextWriter: plain page text for piping into other tools
//
// All writers implement Writer. HistoryWriter renders the run history.
package report
