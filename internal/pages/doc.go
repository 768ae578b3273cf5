// Package pages discovers the numbered page images of a document.
//
// A document is a directory holding page_1.<ext>, page_2.<ext>, ... with
// ext one of png, jpg, jpeg, tif, tiff, bmp or webp. Numbering starts at 1
// and stops at the first missing index, so page_1 and page_3 without
// page_2 is a one-page document.
package pages
