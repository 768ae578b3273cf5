// Package modelserver is an HTTP client for a PaddleX-style inference
// server hosting the document orientation, unwarping and OCR models.
//
// Every endpoint takes a JSON body {"file": <base64 image>, "fileType": 1}
// and answers with an envelope {"errorCode": 0, "errorMsg": "...",
// "result": {...}}. A non-zero errorCode or a non-2xx status is returned as
// an *APIError.
//
// The client implements orient.Classifier, ocr.Engine and the pipeline's
// Unwarper, so one server can back any combination of stages.
package modelserver
