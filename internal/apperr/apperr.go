package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failed operation so callers (and the HTTP layer)
// can react to the class instead of parsing messages.
type Kind int

const (
	KindInternal Kind = iota
	KindForbidden
	KindNotFound
	KindInvalidTransition
	KindInvalidArgument
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindInvalidTransition:
		return "invalid_transition"
	case KindInvalidArgument:
		return "invalid_argument"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Error wraps a failure with its Kind. The wrapped cause stays reachable
// through errors.Unwrap for logging.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

func Forbidden(msg string) *Error         { return New(KindForbidden, msg) }
func NotFound(msg string) *Error          { return New(KindNotFound, msg) }
func InvalidTransition(msg string) *Error { return New(KindInvalidTransition, msg) }
func InvalidArgument(msg string) *Error   { return New(KindInvalidArgument, msg) }
func Conflict(msg string) *Error          { return New(KindConflict, msg) }
func Internal(msg string, err error) *Error {
	return Wrap(KindInternal, msg, err)
}

// KindOf extracts the Kind from err. Anything that is not an *Error is an
// unexpected fault and reports KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// HTTPStatus maps a Kind to the status code the API contract promises:
// Forbidden → 403, NotFound → 404, InvalidTransition/InvalidArgument → 422,
// Conflict → 409, anything else → 500. Authorization failures must never
// surface as 500.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidTransition, KindInvalidArgument:
		return http.StatusUnprocessableEntity
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
