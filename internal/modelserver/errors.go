package modelserver

import (
	"errors"
	"fmt"
)

var (
	// ErrServer is matched by every *APIError.
	ErrServer = errors.New("model server error")

	// ErrMalformedResponse is returned when a result does not have the
	// expected shape.
	ErrMalformedResponse = errors.New("malformed model server response")
)

// APIError is an error reported by the model server.
type APIError struct {
	// Endpoint is the endpoint that failed.
	Endpoint string

	// StatusCode is the HTTP status code.
	StatusCode int

	// Code is the errorCode from the response envelope, if any.
	Code int

	// Message is the errorMsg from the response envelope or the raw body.
	Message string
}

// Error implements error.
func (e *APIError) Error() string {
	return fmt.Sprintf("model server %s: status %d, code %d: %s", e.Endpoint, e.StatusCode, e.Code, e.Message)
}

// Is makes errors.Is(err, ErrServer) true for every APIError.
func (e *APIError) Is(target error) bool {
	return target == ErrServer
}
