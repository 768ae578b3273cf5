package model

import "strings"

// PageSeparator separates page texts in Document.FullText.
const PageSeparator = "\n\n---\n\n"

// PageResult is the outcome of one page image in either pipeline.
// It is created once per page by the pipeline and never modified afterwards.
type PageResult struct {
	// Page is the 1-based page index taken from the file name.
	Page int `json:"page"`

	// Source is the input image file name (e.g. page_1.png).
	Source string `json:"-"`

	// Fingerprint is the SHA3-256 digest of the input image file.
	Fingerprint string `json:"-"`

	// File is the preprocessed output file name (e.g. page_1_pre.jpg).
	// Empty when even the fallback encoding failed.
	File string `json:"file"`

	// Rotated is the detected clockwise rotation in degrees.
	Rotated int `json:"rotated"`

	// Unwarped reports whether the unwarping model output was used.
	Unwarped bool `json:"unwarped"`

	// Fallback reports that the page was re-encoded from the original image
	// after a stage failed.
	Fallback bool `json:"fallback,omitempty"`

	// Bytes is the size of the written output file.
	Bytes int64 `json:"-"`

	// Text is the reconstructed page text (extraction pipeline only).
	Text string `json:"-"`

	// Error describes the failure that sent the page to the fallback path.
	Error string `json:"error,omitempty"`
}

// PreprocessSummary is the preprocessing result for a page directory.
type PreprocessSummary struct {
	Pages []PageResult `json:"pages"`
}

// Document is the text extraction result for a page directory.
type Document struct {
	// FullText is every page text joined by PageSeparator.
	FullText string `json:"fullText"`

	// Pages holds one text per page, in page order.
	Pages []string `json:"pages"`

	// TotalPages is the number of page images found.
	TotalPages int `json:"totalPages"`
}

// NewDocument assembles a Document from page texts in page order.
func NewDocument(pages []string) *Document {
	if pages == nil {
		pages = []string{}
	}
	return &Document{
		FullText:   strings.Join(pages, PageSeparator),
		Pages:      pages,
		TotalPages: len(pages),
	}
}

// NewDocumentFromResults assembles a Document from extraction page results.
func NewDocumentFromResults(results []PageResult) *Document {
	pages := make([]string, len(results))
	for i, r := range results {
		pages[i] = r.Text
	}
	return NewDocument(pages)
}

// FallbackCount returns the number of pages that took the fallback path.
func (s *PreprocessSummary) FallbackCount() int {
	n := 0
	for _, p := range s.Pages {
		if p.Fallback {
			n++
		}
	}
	return n
}

// UnwarpedCount returns the number of pages whose unwarping succeeded.
func (s *PreprocessSummary) UnwarpedCount() int {
	n := 0
	for _, p := range s.Pages {
		if p.Unwarped {
			n++
		}
	}
	return n
}
