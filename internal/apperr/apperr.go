package apperr

import (
	"errors"
	"net/http"
)

// Kind is the closed set of failure categories the API can report.
type Kind int

const (
	KindInternal Kind = iota
	KindBadRequest
	KindUnauthorized
	KindNotFound
	KindBadGateway
)

// Messages shared between the validator, the auth middleware and the responder.
const (
	MsgMissingAuthHeader = "Missing Authorization header"
	MsgInvalidAuthFormat = "Invalid Authorization format. Expected: Bearer <token>"
	MsgInvalidToken      = "Invalid or expired token"
	MsgInternal          = "Internal server error"
	MsgMissingCities     = "Please provide a 'cities' array in the request body."
)

// Status returns the HTTP status code for k.
func (k Kind) Status() int {
	switch k {
	case KindBadRequest:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindBadGateway:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (k Kind) String() string {
	switch k {
	case KindBadRequest:
		return "bad_request"
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not_found"
	case KindBadGateway:
		return "bad_gateway"
	default:
		return "internal"
	}
}

// Error is a typed failure carrying everything the top-level responder needs.
// Operational errors are expected and user-facing; non-operational ones are defects.
type Error struct {
	Kind        Kind
	Message     string
	Operational bool
	Err         error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Status returns the HTTP status code for the error's kind.
func (e *Error) Status() int { return e.Kind.Status() }

func BadRequest(msg string) *Error {
	return &Error{Kind: KindBadRequest, Message: msg, Operational: true}
}

func Unauthorized(msg string) *Error {
	return &Error{Kind: KindUnauthorized, Message: msg, Operational: true}
}

func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg, Operational: true}
}

func BadGateway(msg string) *Error {
	return &Error{Kind: KindBadGateway, Message: msg, Operational: true}
}

// Internal wraps an unclassified failure. The caller only ever sees MsgInternal.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: MsgInternal, Operational: false, Err: err}
}

// From classifies err. An *Error anywhere in the chain is returned as-is,
// anything else becomes Internal.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return Internal(err)
}

// IsKind reports whether err classifies as k.
func IsKind(err error, k Kind) bool {
	ae := From(err)
	return ae != nil && ae.Kind == k
}
