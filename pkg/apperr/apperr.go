package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure so handlers can map it to an HTTP status and
// callers can decide whether a retry makes sense.
type Kind int

const (
	// KindUnknown is an unclassified internal failure.
	KindUnknown Kind = iota
	// KindValidation — malformed or incomplete input; fix the input and retry.
	KindValidation
	// KindAuthorization — the actor lacks the permission for the action.
	KindAuthorization
	// KindNotFound — the referenced entity does not exist.
	KindNotFound
	// KindPrecondition — the aggregate is not in a state that allows the action.
	KindPrecondition
	// KindService — an external collaborator was unreachable or rejected the call.
	KindService
	// KindParse — an external collaborator answered, but the payload does not
	// match the expected structure. Distinct from KindService: retrying with the
	// same input may fail the same way.
	KindParse
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthorization:
		return "authorization"
	case KindNotFound:
		return "not_found"
	case KindPrecondition:
		return "precondition"
	case KindService:
		return "service"
	case KindParse:
		return "parse"
	default:
		return "unknown"
	}
}

// Error carries a Kind through a wrap chain.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an Error of the given kind with a formatted message.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and message to an underlying error.
func Wrap(kind Kind, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

func Validation(format string, args ...interface{}) *Error {
	return New(KindValidation, format, args...)
}

func Authorization(format string, args ...interface{}) *Error {
	return New(KindAuthorization, format, args...)
}

func NotFound(format string, args ...interface{}) *Error {
	return New(KindNotFound, format, args...)
}

func Precondition(format string, args ...interface{}) *Error {
	return New(KindPrecondition, format, args...)
}

func Service(format string, args ...interface{}) *Error {
	return New(KindService, format, args...)
}

func Parse(format string, args ...interface{}) *Error {
	return New(KindParse, format, args...)
}

// KindOf extracts the Kind from anywhere in the wrap chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// HTTPStatus maps a failure kind to the status code handlers should respond with.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindPrecondition:
		return http.StatusConflict
	case KindService, KindParse:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
