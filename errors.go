package pgmodel

import (
	"errors"
	"fmt"
	"strings"

	"github.com/syssam/pgmodel/query"
)

type (
	// Code identifies the kind of a coded error.
	Code = query.Code
	// Error is a coded error with a "CODE: message" string. errors.Is
	// matches it against the sentinels below by code.
	Error = query.Error
)

// Error codes.
const (
	CodeInvalidPKType        = query.CodeInvalidPKType
	CodeInvalidHookType      = query.CodeInvalidHookType
	CodeUpdateValuesMismatch = query.CodeUpdateValuesMismatch
	CodeNotImplemented       = query.CodeNotImplemented
	CodeNoClient             = query.CodeNoClient
	CodeColumnNotFound       = query.CodeColumnNotFound
	CodeNoTimestamps         = query.CodeNoTimestamps
	CodeInvalidInput         = query.CodeInvalidInput
	CodeInvalidParam         = query.CodeInvalidParam
)

// Standard sentinel errors, one per code.
var (
	ErrInvalidPKType        = &Error{Code: CodeInvalidPKType}
	ErrInvalidHookType      = &Error{Code: CodeInvalidHookType}
	ErrUpdateValuesMismatch = query.ErrUpdateValuesMismatch
	ErrNotImplemented       = &Error{Code: CodeNotImplemented}
	ErrNoClient             = query.ErrNoClient
	ErrColumnNotFound       = &Error{Code: CodeColumnNotFound}
	ErrNoTimestamps         = &Error{Code: CodeNoTimestamps}
	ErrInvalidInput         = &Error{Code: CodeInvalidInput}
	ErrInvalidParam         = query.ErrInvalidParam

	// ErrNotFound is returned when a lookup by primary key matches no row.
	ErrNotFound = errors.New("pgmodel: row not found")
)

// newError returns a coded error.
func newError(code Code, format string, args ...any) error {
	return query.NewError(code, format, args...)
}

// CodeOf returns the code carried by err, or "" when err is not coded.
func CodeOf(err error) Code {
	return query.CodeOf(err)
}

// NotFoundError represents a lookup that matched no row.
type NotFoundError struct {
	table string
	id    any
}

// Error returns the error string.
func (e *NotFoundError) Error() string {
	if e.id != nil {
		return fmt.Sprintf("pgmodel: %s row not found (id=%v)", e.table, e.id)
	}
	return fmt.Sprintf("pgmodel: %s row not found", e.table)
}

// Is reports whether the target error matches NotFoundError.
// This allows errors.Is(notFoundErr, ErrNotFound) to return true.
func (e *NotFoundError) Is(err error) bool {
	return err == ErrNotFound
}

// Table returns the table name.
func (e *NotFoundError) Table() string { return e.table }

// ID returns the primary key that was searched for, if available.
func (e *NotFoundError) ID() any { return e.id }

// NewNotFoundError returns a new NotFoundError for the given table and key.
func NewNotFoundError(table string, id any) *NotFoundError {
	return &NotFoundError{table: table, id: id}
}

// IsNotFound returns true if the error is a NotFoundError.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	var e *NotFoundError
	return errors.As(err, &e) || errors.Is(err, ErrNotFound)
}

// ConstraintError represents a database constraint violation error.
type ConstraintError struct {
	msg  string
	wrap error
}

// Error returns the error string.
func (e ConstraintError) Error() string {
	return fmt.Sprintf("pgmodel: constraint failed: %s", e.msg)
}

// Unwrap returns the underlying error.
func (e ConstraintError) Unwrap() error {
	return e.wrap
}

// NewConstraintError returns a new ConstraintError with the given message.
func NewConstraintError(msg string, wrap error) error {
	return ConstraintError{msg: msg, wrap: wrap}
}

// IsConstraintError returns true if the error is a ConstraintError.
func IsConstraintError(err error) bool {
	if err == nil {
		return false
	}
	var e ConstraintError
	return errors.As(err, &e)
}

// ExecError wraps a failed statement with the table, the operation and
// the SQL text that failed.
type ExecError struct {
	Table string // Table the statement targeted
	Op    string // Operation (e.g., "insert", "select", "alter")
	SQL   string // Statement text
	Err   error  // Underlying error
}

// Error returns the error string.
func (e *ExecError) Error() string {
	return fmt.Sprintf("pgmodel: %s %s: %v", e.Op, e.Table, e.Err)
}

// Unwrap returns the underlying error.
func (e *ExecError) Unwrap() error {
	return e.Err
}

// IsExecError returns true if the error is an ExecError.
func IsExecError(err error) bool {
	if err == nil {
		return false
	}
	var e *ExecError
	return errors.As(err, &e)
}

// AggregateError represents multiple errors collected during an operation.
type AggregateError struct {
	Errors []error
}

// Error returns the error string.
func (e *AggregateError) Error() string {
	if len(e.Errors) == 0 {
		return "pgmodel: no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var sb strings.Builder
	sb.WriteString("pgmodel: multiple errors:")
	for i, err := range e.Errors {
		fmt.Fprintf(&sb, "\n  [%d] %v", i+1, err)
	}
	return sb.String()
}

// Unwrap returns the collected errors, so errors.Is and errors.As look
// through every one of them.
func (e *AggregateError) Unwrap() []error {
	return e.Errors
}

// NewAggregateError returns a new AggregateError if there are errors,
// otherwise returns nil.
func NewAggregateError(errs ...error) error {
	var filtered []error
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	if len(filtered) == 0 {
		return nil
	}
	if len(filtered) == 1 {
		return filtered[0]
	}
	return &AggregateError{Errors: filtered}
}
