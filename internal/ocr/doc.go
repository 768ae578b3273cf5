// Package ocr turns OCR engine output into page text.
//
// An Engine recognizes one page image and returns a Result in one of two
// shapes: Structured (parallel arrays of texts, scores and polygons) or
// Legacy (a list of box, text and score triples). The Collector accepts
// either, keeps recognitions that are confident enough and not blank, and
// anchors each kept recognition at the top-left corner of its polygon.
//
// Concrete engines live in subpackages (tesseract) and in the modelserver
// package.
package ocr
