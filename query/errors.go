package query

import (
	"errors"
	"fmt"
)

// Code identifies the kind of a pgmodel error. Codes are stable and
// appear as the prefix of the error message.
type Code string

// Error codes.
const (
	CodeInvalidPKType        Code = "INVALID_PK_TYPE"
	CodeInvalidHookType      Code = "INVALID_HOOK_TYPE"
	CodeUpdateValuesMismatch Code = "UPDATE_VALUES_MISMATCH"
	CodeNotImplemented       Code = "NOT_IMPLEMENTED"
	CodeNoClient             Code = "NO_CLIENT"
	CodeColumnNotFound       Code = "COLUMN_NOT_FOUND"
	CodeNoTimestamps         Code = "NO_TIMESTAMPS"
	CodeInvalidInput         Code = "INVALID_INPUT"
	CodeInvalidParam         Code = "INVALID_PARAM"
)

// Error is a coded error. Two errors match under errors.Is when their
// codes are equal, so callers compare against the Err* sentinels.
type Error struct {
	Code    Code
	Message string
}

// NewError returns a new Error with the given code and message.
func NewError(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Error returns the error string in the form "CODE: message".
func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return string(e.Code) + ": " + e.Message
}

// Is reports whether target is an *Error carrying the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// Sentinels for errors.Is.
var (
	ErrUpdateValuesMismatch = &Error{Code: CodeUpdateValuesMismatch}
	ErrNoClient             = &Error{Code: CodeNoClient}
	ErrInvalidParam         = &Error{Code: CodeInvalidParam}
)

// CodeOf returns the code of the first *Error in err's chain, or "" if
// there is none.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
