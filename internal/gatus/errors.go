package gatus

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed fetch.
type ErrorKind int

const (
	// KindNone is the kind of a nil error.
	KindNone ErrorKind = iota

	// KindAuth means the server rejected the credentials or URL. Fatal until
	// the user reconfigures.
	KindAuth

	// KindCommunication covers timeouts, name resolution, refused or reset
	// connections and other transport faults. Retried on the next poll.
	KindCommunication

	// KindGeneric covers every other failure, including HTTP errors and
	// malformed responses. Retried on the next poll.
	KindGeneric
)

// String returns the lowercase name of the kind, used for logs and metrics.
func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindAuth:
		return "auth"
	case KindCommunication:
		return "communication"
	case KindGeneric:
		return "generic"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Sentinels matched by [Error.Is].
var (
	ErrAuth          = errors.New("gatus: authentication failed")
	ErrCommunication = errors.New("gatus: communication failed")
	ErrGeneric       = errors.New("gatus: request failed")
)

// Error is the only error type returned by [Client.Fetch].
type Error struct {
	// Kind is the classification of the failure.
	Kind ErrorKind

	// StatusCode is the HTTP status when the server answered, zero otherwise.
	StatusCode int

	// Message is the human readable description.
	Message string

	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s - %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for e's kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrAuth:
		return e.Kind == KindAuth
	case ErrCommunication:
		return e.Kind == KindCommunication
	case ErrGeneric:
		return e.Kind == KindGeneric
	}
	return false
}

// KindOf returns the classification of err. A nil error is [KindNone]; an
// error that is not an [*Error] is [KindGeneric].
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindNone
	}
	var gerr *Error
	if errors.As(err, &gerr) {
		return gerr.Kind
	}
	return KindGeneric
}

func authError() *Error {
	return &Error{Kind: KindAuth, Message: "Invalid credentials"}
}

func httpError(code int, status string) *Error {
	return &Error{
		Kind:       KindGeneric,
		StatusCode: code,
		Message:    fmt.Sprintf("unexpected HTTP status %s", status),
	}
}

func communicationError(msg string, err error) *Error {
	return &Error{Kind: KindCommunication, Message: msg, Err: err}
}

func genericError(msg string, err error) *Error {
	return &Error{Kind: KindGeneric, Message: msg, Err: err}
}
