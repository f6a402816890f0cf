package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for the API error taxonomy. Store and service code wraps
// these with fmt.Errorf("%w: ...") so the boundary can map them to HTTP
// status codes without inspecting message text.
var (
	ErrNotFound      = errors.New("not found")
	ErrForbidden     = errors.New("forbidden")
	ErrConflict      = errors.New("conflict")
	ErrUnprocessable = errors.New("unprocessable")
)

// New, Is and As re-export the standard helpers so callers need a single
// errors import.
func New(text string) error                 { return errors.New(text) }
func Is(err, target error) bool             { return errors.Is(err, target) }
func As(err error, target interface{}) bool { return errors.As(err, target) }

// NotFoundf wraps ErrNotFound with a formatted message.
func NotFoundf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// Conflictf wraps ErrConflict with a formatted message.
func Conflictf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

// Unprocessablef wraps ErrUnprocessable with a formatted message.
func Unprocessablef(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrUnprocessable, fmt.Sprintf(format, args...))
}

// ValidationError carries the structured report produced by JSON-schema
// evaluation. It maps to 422 and the report is returned verbatim in the
// response detail.
type ValidationError struct {
	Report interface{}
}

func (e *ValidationError) Error() string { return "validation failed" }

func (e *ValidationError) Unwrap() error { return ErrUnprocessable }

// StatusCode maps a taxonomy error to its HTTP status. Unrecognized errors
// map to 500 so nothing internal leaks with a 4xx.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrUnprocessable):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Detail returns the response detail for a taxonomy error. Authorization
// failures always produce the same constant message so callers cannot
// distinguish a missing scope from a provider mismatch.
func Detail(err error) interface{} {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Report
	}
	switch {
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrConflict), errors.Is(err, ErrUnprocessable):
		return err.Error()
	default:
		return "internal server error"
	}
}
