// Package imagery adapts github.com/disintegration/imaging to the needs of
// the preprocessing pipeline: loading page images, correcting rotation,
// converting model rasters and writing size-capped JPEG output.
//
// Decoders for PNG, JPEG, GIF, TIFF and BMP come with imaging; WebP is
// registered here from golang.org/x/image.
package imagery
