// Package apperr defines the error taxonomy surfaced at the HTTP boundary.
//
// Every failure a handler can produce is one of three kinds. The kind decides
// the status code; the message is what the client sees in {"error": ...}.
package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies an error for the caller.
type Kind int

const (
	// Internal covers engine, disk and any unexpected failure.
	Internal Kind = iota
	// Validation means required input was missing or blank.
	Validation
	// Unavailable means the translation provider produced no usable result.
	Unavailable
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case Unavailable:
		return "unavailable"
	default:
		return "internal"
	}
}

// Error is a classified error with a client-facing message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error of the same kind, so callers can write
// errors.Is(err, apperr.ErrValidation).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Err == nil && t.Kind == e.Kind
}

// Sentinels for errors.Is comparisons.
var (
	ErrValidation  = &Error{Kind: Validation}
	ErrUnavailable = &Error{Kind: Unavailable}
	ErrInternal    = &Error{Kind: Internal}
)

// NewValidation returns a Validation error with the given message.
func NewValidation(msg string) *Error {
	return &Error{Kind: Validation, Message: msg}
}

// NewUnavailable returns an Unavailable error with the given message.
func NewUnavailable(msg string) *Error {
	return &Error{Kind: Unavailable, Message: msg}
}

// Wrap classifies err as Internal. A nil err returns nil; an err that is
// already an *Error is returned unchanged.
func Wrap(err error) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return err
	}
	return &Error{Kind: Internal, Err: err}
}

// KindOf reports the kind of err. Unclassified errors are Internal.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return Internal
}

// StatusCode maps err to the HTTP status the handlers respond with.
func StatusCode(err error) int {
	switch KindOf(err) {
	case Validation:
		return http.StatusBadRequest
	case Unavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the client-facing text for err.
func Message(err error) string {
	var ae *Error
	if errors.As(err, &ae) && ae.Message != "" {
		return ae.Message
	}
	return err.Error()
}
