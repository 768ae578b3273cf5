// Package main provides the entry point for the docprep CLI.
//
// docprep prepares scanned or photographed document pages for vision
// models and extracts their text with OCR.
//
// Usage:
//
//	docprep preprocess <image_dir>
//	docprep extract <image_dir>
//
// See --help for all available options.
package main

func main() {
	Execute()
}
