// Package apierr defines the error taxonomy shared by every layer of the
// history API client.
//
// Every failure that leaves the transport is an *Error tagged with a Kind.
// Callers branch on the kind with errors.Is against the exported sentinels:
//
//	if errors.Is(err, apierr.ErrTransport) {
//		// offer a retry
//	}
//
// or with KindOf when a switch reads better.
package apierr

import (
	"errors"
	"fmt"
)

// Kind classifies an API error.
type Kind string

const (
	// KindInvalidTarget is a malformed request URL. It indicates a programming
	// error and should not occur with validated inputs.
	KindInvalidTarget Kind = "invalid_target"

	// KindTransport covers DNS, connection, timeout and cancellation faults.
	// Transient; the user should be offered a retry.
	KindTransport Kind = "transport"

	// KindDecode means the payload did not match the expected shape or carried
	// an unparseable date. A contract mismatch, not transient.
	KindDecode Kind = "decode"

	// KindServer means the remote explicitly rejected the request.
	KindServer Kind = "server"

	// KindEmptyResult signals "no more pages". It is folded into list
	// exhaustion and never shown to the user.
	KindEmptyResult Kind = "empty_result"

	// KindUnknown is anything that could not be classified.
	KindUnknown Kind = "unknown"
)

// Sentinels for errors.Is. A sentinel matches any *Error of the same Kind.
var (
	ErrInvalidTarget = &Error{Kind: KindInvalidTarget}
	ErrTransport     = &Error{Kind: KindTransport}
	ErrDecode        = &Error{Kind: KindDecode}
	ErrServer        = &Error{Kind: KindServer}
	ErrEmptyResult   = &Error{Kind: KindEmptyResult}
	ErrUnknown       = &Error{Kind: KindUnknown}
)

// Error is a classified API error.
type Error struct {
	Kind Kind

	// StatusCode is the HTTP status for KindServer, zero otherwise.
	StatusCode int

	// Message is the server-reported message for KindServer.
	Message string

	// Value is the offending input, e.g. an unparseable date string or URL.
	Value string

	// Err is the wrapped cause.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch e.Kind {
	case KindInvalidTarget:
		if e.Err != nil {
			return fmt.Sprintf("invalid request target %q: %v", e.Value, e.Err)
		}
		return fmt.Sprintf("invalid request target %q", e.Value)
	case KindTransport:
		return fmt.Sprintf("transport failure: %v", e.Err)
	case KindDecode:
		if e.Value != "" && e.Err != nil {
			return fmt.Sprintf("decode failure: %q: %v", e.Value, e.Err)
		}
		if e.Value != "" {
			return fmt.Sprintf("decode failure: unsupported value %q", e.Value)
		}
		return fmt.Sprintf("decode failure: %v", e.Err)
	case KindServer:
		return fmt.Sprintf("server failure (status %d): %s", e.StatusCode, e.Message)
	case KindEmptyResult:
		return "empty result"
	default:
		if e.Err != nil {
			return fmt.Sprintf("unclassified error: %v", e.Err)
		}
		return "unclassified error"
	}
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is a sentinel (or error) of the same kind. A
// target carrying a status code only matches that status.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.StatusCode == 0 || t.StatusCode == e.StatusCode
}

// InvalidTarget reports a request URL that could not be built.
func InvalidTarget(target string, err error) *Error {
	return &Error{Kind: KindInvalidTarget, Value: target, Err: err}
}

// Transport wraps a network-level fault.
func Transport(err error) *Error {
	return &Error{Kind: KindTransport, Err: err}
}

// Decode wraps a payload decoding fault.
func Decode(err error) *Error {
	return &Error{Kind: KindDecode, Err: err}
}

// DecodeValue reports an input value that could not be decoded.
func DecodeValue(value string, err error) *Error {
	return &Error{Kind: KindDecode, Value: value, Err: err}
}

// Server reports a non-2xx response.
func Server(status int, message string) *Error {
	return &Error{Kind: KindServer, StatusCode: status, Message: message}
}

// EmptyResult reports an empty page.
func EmptyResult() *Error {
	return &Error{Kind: KindEmptyResult}
}

// Unknown wraps an unclassified error.
func Unknown(err error) *Error {
	return &Error{Kind: KindUnknown, Err: err}
}

// KindOf returns the Kind of err. Errors that are not *Error (or do not wrap
// one) are KindUnknown; nil has no kind.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Retryable reports whether a user-initiated retry may succeed.
func Retryable(err error) bool {
	return KindOf(err) == KindTransport
}

// UserMessage maps err to text suitable for display.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if !errors.As(err, &e) {
		return "Unknown error"
	}
	switch e.Kind {
	case KindInvalidTarget:
		return "Invalid request"
	case KindTransport:
		return "Network connection failed, please check your network settings"
	case KindDecode:
		return "Failed to load data"
	case KindServer:
		return fmt.Sprintf("Server error (%d): %s", e.StatusCode, e.Message)
	case KindEmptyResult:
		return "No data"
	default:
		return "Unknown error"
	}
}
