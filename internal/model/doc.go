// Package model defines the data structures shared by the docprep pipelines.
//
//   - Fragment and Row: positioned OCR text, consumed by the layout package
//   - PageResult: the outcome of one page in either pipeline
//   - Document: the text extraction result for a whole page directory
//   - PreprocessSummary: the preprocessing result for a whole page directory
//
// Result types are serialized to JSON for stdout and for the run history.
package model
