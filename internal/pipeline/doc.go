// Package pipeline runs the per-page stages of the preprocessing and text
// extraction commands.
//
// Preprocessing is a Pipeline of Steps over a PageJob: load, orientation,
// unwarp and encode. A step that fails sends the page to the fallback
// path, which reloads the original image and runs only the encoding, so
// every page found yields a result. The extraction pipeline runs the OCR
// collector over every page. Pages are processed one at a time; only a
// discovery failure or a cancelled context ends a run early.
//
// LoadModels checks the readiness of the configured collaborators
// concurrently before the first page is touched.
package pipeline
