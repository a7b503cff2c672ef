package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a domain failure. The API layer maps kinds to HTTP status;
// services return wrapped kinds and callers check with errors.Is.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindConflict
	KindUnprocessable
	KindValidation
	KindRemote
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindUnprocessable:
		return "unprocessable_state"
	case KindValidation:
		return "validation_failure"
	case KindRemote:
		return "remote_service_failure"
	default:
		return "unknown"
	}
}

// Error is a kinded domain error. Wraps an optional cause.
type Error struct {
	kind  Kind
	msg   string
	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.msg + ": " + e.cause.Error()
	}
	return e.msg
}

func (e *Error) Unwrap() error { return e.cause }

// Is matches against the kind sentinels below, so
// errors.Is(err, apperr.NotFound) works through wrapping.
func (e *Error) Is(target error) bool {
	if s, ok := target.(*Error); ok {
		return s.kind == e.kind && s.msg == ""
	}
	return false
}

// Kind sentinels for errors.Is checks.
var (
	NotFound           = &Error{kind: KindNotFound}
	Conflict           = &Error{kind: KindConflict}
	UnprocessableState = &Error{kind: KindUnprocessable}
	ValidationFailure  = &Error{kind: KindValidation}
	RemoteFailure      = &Error{kind: KindRemote}
)

// New builds a kinded error with a formatted message.
func New(kind Kind, format string, args ...interface{}) error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, args...)}
}

// Wrap builds a kinded error around a cause.
func Wrap(kind Kind, cause error, format string, args ...interface{}) error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, args...), cause: cause}
}

// KindOf returns the kind of err, unwrapping as needed.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.kind
	}
	return KindUnknown
}
