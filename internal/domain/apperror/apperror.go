// Package apperror defines the closed set of failure kinds every service
// boundary reports. Transport code maps a Kind to a status code; domain code
// never exposes raw store errors.
package apperror

import (
	"errors"
	"fmt"
)

type Kind string

const (
	NotFound        Kind = "not_found"
	InvalidInput    Kind = "invalid_input"
	Conflict        Kind = "conflict"
	Unauthorized    Kind = "unauthorized"
	UpstreamFailure Kind = "upstream_failure"
)

var messages = map[Kind]string{
	NotFound:        "resource not found",
	InvalidInput:    "invalid input",
	Conflict:        "resource already exists",
	Unauthorized:    "not authorized",
	UpstreamFailure: "internal error",
}

// Message returns the client-facing text for the kind.
func (k Kind) Message() string {
	if msg, ok := messages[k]; ok {
		return msg
	}
	return messages[UpstreamFailure]
}

func (k Kind) String() string {
	return string(k)
}

type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.Err != nil:
		return e.Err.Error()
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Kind.Message())
	default:
		return e.Kind.Message()
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New returns a sentinel carrying kind. Compare with errors.Is.
func New(kind Kind, message string) error {
	return &Error{Kind: kind, Err: errors.New(message)}
}

// E wraps err with an operation name and kind.
func E(op string, kind Kind, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Wrap attaches op to err and keeps the kind already present in the chain,
// defaulting to UpstreamFailure for unclassified errors.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: KindOf(err), Op: op, Err: err}
}

// KindOf reports the first Kind found in err's chain. Unclassified errors
// are UpstreamFailure.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return UpstreamFailure
}

// Is reports whether err carries kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Invalidf returns an InvalidInput error with a formatted message.
func Invalidf(format string, args ...any) error {
	return &Error{Kind: InvalidInput, Err: fmt.Errorf(format, args...)}
}

// PublicMessage is the text safe to return to a client: the wrapped message
// for client-caused kinds, the generic kind message otherwise.
func PublicMessage(err error) string {
	var appErr *Error
	if !errors.As(err, &appErr) {
		return UpstreamFailure.Message()
	}
	if appErr.Kind == UpstreamFailure {
		return UpstreamFailure.Message()
	}
	inner := appErr
	for {
		var next *Error
		if inner.Err == nil || !errors.As(inner.Err, &next) {
			break
		}
		inner = next
	}
	if inner.Err != nil {
		return inner.Err.Error()
	}
	return inner.Kind.Message()
}
