// Package apperrors defines the machine-readable error kinds surfaced by the
// authentication engine. CLI commands render the kind; callers branch on it
// with errors.Is / HasKind instead of matching message text.
package apperrors

import (
	"errors"
	"fmt"
)

type Kind string

const (
	InvalidArgument          Kind = "INVALID_ARGUMENT"
	InvalidParameter         Kind = "INVALID_PARAMETER"
	InvalidValue             Kind = "INVALID_VALUE"
	MissingRequiredParameter Kind = "MISSING_REQUIRED_PARAMETER"
	AuthFailed               Kind = "AUTH_FAILED"
	Timeout                  Kind = "TIMEOUT"
	NetworkError             Kind = "NETWORK_ERROR"
	StoreUnavailable         Kind = "STORE_UNAVAILABLE"
)

// Error carries a kind alongside the usual wrapped cause chain.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		if e.Message != "" {
			return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
		}
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports kind equality so that errors.Is(err, &Error{Kind: Timeout})
// matches regardless of message.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return e.Kind == other.Kind
}

func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, err error, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the kind of the first *Error in the chain, or "" if none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func HasKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
