// File: error.go
// Title: Coded Error Type
// Description: Structured error carrying a code, an optional source location,
//              contextual details and an optional cause. Constructors cover
//              every condition of the error taxonomy.
// Author: msto63
// Version: v0.1.0
// Created: 2025-10-02
// Modified: 2025-10-02
//
// Change History:
// - 2025-10-02 v0.1.0: Initial implementation

package errors

import (
	stderrors "errors"
	"fmt"
	"sort"
	"strings"

	"github.com/msto63/unilang/pkg/unilang/ast"
)

// Error is the structured error used throughout the core
type Error struct {
	code     Code
	message  string
	location *ast.Location
	details  map[string]interface{}
	cause    error
}

// New creates an error with the given code and message
func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

// Newf creates an error with a formatted message
func Newf(code Code, format string, args ...interface{}) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap wraps err with a code and message. Returns nil if err is nil.
func Wrap(err error, code Code, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{code: code, message: message, cause: err}
}

// Error implements the error interface
func (e *Error) Error() string {
	msg := e.message
	if e.cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.code, msg)
}

// Unwrap returns the cause
func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches another *Error with the same code
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.code == e.code
}

// WithLocation attaches a source location
func (e *Error) WithLocation(loc ast.Location) *Error {
	e.location = &loc
	return e
}

// WithDetail adds a single detail
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.details == nil {
		e.details = make(map[string]interface{})
	}
	e.details[key] = value
	return e
}

// WithCause sets the underlying cause
func (e *Error) WithCause(err error) *Error {
	e.cause = err
	return e
}

// Code returns the error code
func (e *Error) Code() Code { return e.code }

// Category returns the category of the error code
func (e *Error) Category() Category { return e.code.Category() }

// Message returns the message without code prefix or cause
func (e *Error) Message() string { return e.message }

// Location returns the source location if one is attached
func (e *Error) Location() (ast.Location, bool) {
	if e.location == nil {
		return ast.Location{}, false
	}
	return *e.location, true
}

// Detail returns a single detail value
func (e *Error) Detail(key string) (interface{}, bool) {
	v, ok := e.details[key]
	return v, ok
}

// Details returns a copy of the details map
func (e *Error) Details() map[string]interface{} {
	if len(e.details) == 0 {
		return nil
	}
	out := make(map[string]interface{}, len(e.details))
	for k, v := range e.details {
		out[k] = v
	}
	return out
}

// String renders a user-facing diagnostic including location and details
func (e *Error) String() string {
	var sb strings.Builder
	sb.WriteString(e.Error())
	if e.location != nil {
		fmt.Fprintf(&sb, " (at %s)", e.location)
	}
	if len(e.details) > 0 {
		keys := make([]string, 0, len(e.details))
		for k := range e.details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&sb, "\n  %s: %v", k, e.details[k])
		}
	}
	return sb.String()
}

// As returns err as *Error if it is one somewhere in the chain
func As(err error) (*Error, bool) {
	var e *Error
	if stderrors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// HasCode reports whether err carries the given code
func HasCode(err error, code Code) bool {
	e, ok := As(err)
	return ok && e.code == code
}

// GetCode returns the code of err, or CodeInternal for foreign errors
func GetCode(err error) Code {
	if err == nil {
		return ""
	}
	if e, ok := As(err); ok {
		return e.code
	}
	return CodeInternal
}

// CategoryOf returns the category of err
func CategoryOf(err error) Category {
	if err == nil {
		return CategoryUnknown
	}
	return GetCode(err).Category()
}
