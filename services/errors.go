package services

import (
	"errors"
	"net/http"
)

// Failure kinds. Match them with errors.Is.
var (
	ErrInvalidQuestion    = errors.New("invalid question")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrUpstream           = errors.New("upstream error")
)

// Error carries the detail shown to API callers alongside its kind and cause.
type Error struct {
	Kind   error
	Detail string
	Err    error
}

func (e *Error) Error() string { return e.Detail }

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// StatusCode maps an Ask failure to its HTTP status.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrInvalidQuestion):
		return http.StatusBadRequest
	case errors.Is(err, ErrServiceUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Detail returns the caller-facing message for err.
func Detail(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Detail
	}
	return "NotebookLM error: " + err.Error()
}

func outcome(err error) string {
	switch StatusCode(err) {
	case http.StatusOK:
		return "ok"
	case http.StatusBadRequest:
		return "invalid"
	case http.StatusServiceUnavailable:
		return "unavailable"
	default:
		return "error"
	}
}
