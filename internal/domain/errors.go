package domain

import "errors"

type ErrorKind string

const (
	KindNotFound      ErrorKind = "not_found"
	KindForbidden     ErrorKind = "forbidden"
	KindConflict      ErrorKind = "conflict"
	KindUnprocessable ErrorKind = "unprocessable"
)

// Error is a business rule rejection. Anything that is not an *Error is an
// infrastructure failure and leaves the stored state unknown to the caller.
type Error struct {
	Kind ErrorKind
	Msg  string
}

func (e *Error) Error() string {
	return e.Msg
}

func NotFound(msg string) error      { return &Error{Kind: KindNotFound, Msg: msg} }
func Forbidden(msg string) error     { return &Error{Kind: KindForbidden, Msg: msg} }
func Conflict(msg string) error      { return &Error{Kind: KindConflict, Msg: msg} }
func Unprocessable(msg string) error { return &Error{Kind: KindUnprocessable, Msg: msg} }

// KindOf returns the kind of a business error in err's chain, or "" for
// infrastructure errors.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
