// Package apperror defines the error kinds returned by the API and their HTTP mapping.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

type Kind string

const (
	KindUnauthenticated Kind = "Unauthenticated"
	KindInvalidToken    Kind = "InvalidToken"
	KindForbidden       Kind = "Forbidden"
	KindValidation      Kind = "ValidationError"
	KindNotFound        Kind = "NotFound"
	KindConflict        Kind = "Conflict"
	KindUpstream        Kind = "UpstreamError"
	KindInternal        Kind = "InternalError"
)

// Status returns the HTTP status code the kind is rendered with.
func (k Kind) Status() int {
	switch k {
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindInvalidToken, KindForbidden:
		return http.StatusForbidden
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error is a typed API failure. Message is safe to show to clients.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func newErr(k Kind, msg string) *Error { return &Error{Kind: k, Message: msg} }

func Unauthenticated(msg string) *Error { return newErr(KindUnauthenticated, msg) }
func InvalidToken(msg string) *Error    { return newErr(KindInvalidToken, msg) }
func Forbidden(msg string) *Error       { return newErr(KindForbidden, msg) }
func Validation(msg string) *Error      { return newErr(KindValidation, msg) }
func NotFound(msg string) *Error        { return newErr(KindNotFound, msg) }
func Conflict(msg string) *Error        { return newErr(KindConflict, msg) }

// Upstream wraps a failure of an external provider; the provider message is surfaced.
func Upstream(msg string, err error) *Error {
	return &Error{Kind: KindUpstream, Message: msg, Err: err}
}

func Internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// As extracts an *Error from err. Untyped errors become InternalError.
func As(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal("Internal Server Error", err)
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}

// FromBinding turns a gin binding failure into a ValidationError with one
// readable message per offending field.
func FromBinding(err error) *Error {
	var valErrs validator.ValidationErrors
	if !errors.As(err, &valErrs) {
		return &Error{Kind: KindValidation, Message: "invalid request body", Err: err}
	}

	msgs := make([]string, 0, len(valErrs))
	for _, f := range valErrs {
		msgs = append(msgs, fieldMessage(f))
	}
	return &Error{Kind: KindValidation, Message: strings.Join(msgs, ", "), Err: err}
}

func fieldMessage(f validator.FieldError) string {
	switch f.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", f.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", f.Field())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", f.Field(), f.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", f.Field(), f.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", f.Field(), f.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", f.Field(), f.Param())
	default:
		return fmt.Sprintf("%s is invalid (%s)", f.Field(), f.Tag())
	}
}
