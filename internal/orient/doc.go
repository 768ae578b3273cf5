// Package orient detects how far a page image is turned.
//
// A Classifier reports the detected clockwise rotation as one of 0, 90,
// 180 or 270 degrees; the preprocessing pipeline turns the page back by the
// same amount. Two local classifiers live here: EXIFClassifier reads the
// camera's Orientation tag and Fixed always reports one angle. The model
// server classifier lives in the modelserver package.
package orient
