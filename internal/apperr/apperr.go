// Package apperr carries the error taxonomy of the blog API.
//
// Handlers and gates fail with a Kind so tests can assert on the internal
// cause, while the wire response stays a generic {"message": ...} body with
// the status code the kind maps to. Unknown errors surface as Internal with
// a generic message; details are logged server-side only.
package apperr

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Kind classifies a request failure.
type Kind int

const (
	// ValidationFailed maps to 400. The validation gate writes its own
	// field-error body, so this kind rarely reaches Write.
	ValidationFailed Kind = iota
	// Forbidden maps to 403: missing, malformed, tampered, or expired
	// token. Deliberately undifferentiated on the wire.
	Forbidden
	// NotFound maps to 404.
	NotFound
	// InvalidCredential maps to 402 for a wrong password on login.
	// Non-standard, kept for wire compatibility.
	InvalidCredential
	// Internal maps to 500.
	Internal
)

// Error is a kinded error with a client-safe message.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

// E builds an *Error.
func E(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// status maps a kind to its HTTP status code.
func (k Kind) status() int {
	switch k {
	case ValidationFailed:
		return http.StatusBadRequest
	case Forbidden:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	case InvalidCredential:
		return http.StatusPaymentRequired
	default:
		return http.StatusInternalServerError
	}
}

// Write renders err as a JSON {"message": ...} response. Errors that are
// not *Error become a generic 500.
func Write(w http.ResponseWriter, err error) {
	var e *Error
	if !errors.As(err, &e) {
		e = E(Internal, "something went wrong")
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(e.Kind.status())
	_ = json.NewEncoder(w).Encode(map[string]string{"message": e.Message})
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
