package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error so the transport boundary can pick a
// status code without inspecting error strings.
type Kind string

const (
	KindValidation      Kind = "validation"
	KindUnauthenticated Kind = "unauthenticated"
	KindNotFound        Kind = "not_found"
	KindUpstream        Kind = "upstream"
	KindInternal        Kind = "internal"
)

// Error is the application error type returned by services. Handlers return
// it unmodified; the server's error handler translates it into the response
// envelope exactly once.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string // field -> message, validation errors only
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus maps the error kind to a transport status code.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Validation builds a 422 error carrying field-level messages.
func Validation(fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: "Validation failed", Fields: fields}
}

// ValidationField builds a 422 error for a single offending field.
func ValidationField(field, message string) *Error {
	return Validation(map[string]string{field: message})
}

// Unauthenticated builds a uniform 401 error. The message must not reveal
// whether the identity exists.
func Unauthenticated(message string) *Error {
	return &Error{Kind: KindUnauthenticated, Message: message}
}

// NotFound builds a 404 error for an absent resource.
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Upstream builds an error for a failed external dependency (subprocess or
// third-party API).
func Upstream(message string, err error) *Error {
	return &Error{Kind: KindUpstream, Message: message, Err: err}
}

// Internal wraps an unexpected error.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "Internal server error", Err: err}
}

// As extracts an *Error from an error chain.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
