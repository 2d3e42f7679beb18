// File: taxonomy.go
// Title: Error Constructors
// Description: One constructor per taxonomy entry so that callers raise
//              consistent codes, messages and details.
// Author: msto63
// Version: v0.1.0
// Created: 2025-10-02
// Modified: 2025-10-02

package errors

import (
	"fmt"
	"strings"

	"github.com/msto63/unilang/pkg/unilang/ast"
)

// Lexical

func UnterminatedQuote(quote byte, loc ast.Location) *Error {
	return Newf(CodeUnterminatedQuote, "unterminated quote %q", string(quote)).
		WithLocation(loc)
}

func InvalidEscapeSequence(seq string, loc ast.Location) *Error {
	return Newf(CodeInvalidEscapeSequence, "invalid escape sequence '%s'", seq).
		WithLocation(loc).
		WithDetail("sequence", seq)
}

// Syntactic

func EmptyInstructionSegment(loc ast.Location) *Error {
	return New(CodeEmptyInstructionSegment, "empty instruction segment between ';;' delimiters").
		WithLocation(loc)
}

func TrailingDelimiter(delim string, loc ast.Location) *Error {
	return Newf(CodeTrailingDelimiter, "trailing delimiter '%s' at end of input", delim).
		WithLocation(loc).
		WithDetail("delimiter", delim)
}

func Syntax(reason string, loc ast.Location) *Error {
	return New(CodeSyntax, reason).WithLocation(loc)
}

func InputTooLong(length, max int) *Error {
	return Newf(CodeInputTooLong, "input exceeds maximum length: %d > %d", length, max)
}

// Binding

func ArgumentUnknown(command string, names []string, suggestions map[string]string) *Error {
	var msg string
	if len(names) == 1 {
		msg = fmt.Sprintf("unknown parameter '%s' for command '%s'", names[0], command)
		if s, ok := suggestions[names[0]]; ok {
			msg += fmt.Sprintf(", did you mean '%s'?", s)
		}
	} else {
		msg = fmt.Sprintf("unknown parameters for command '%s': %s", command, strings.Join(names, ", "))
	}
	e := New(CodeArgumentUnknown, msg).
		WithDetail("command", command).
		WithDetail("parameters", names)
	if len(suggestions) > 0 {
		e.WithDetail("suggestions", suggestions)
	}
	return e
}

func ArgumentDuplicate(name, via string) *Error {
	return Newf(CodeArgumentDuplicate, "argument '%s' bound more than once (again via '%s')", name, via).
		WithDetail("parameter", name).
		WithDetail("via", via)
}

func ArgumentSurplus(command string, expected, got int) *Error {
	return Newf(CodeArgumentSurplus, "too many positional arguments for command '%s': expected at most %d, got %d",
		command, expected, got).
		WithDetail("command", command).
		WithDetail("expected", expected).
		WithDetail("got", got)
}

func ArgumentMissing(name string) *Error {
	return Newf(CodeArgumentMissing, "required argument '%s' is missing", name).
		WithDetail("parameter", name)
}

func ArgumentInteractiveRequired(name, hint string) *Error {
	return Newf(CodeArgumentInteractiveRequired, "argument '%s' requires interactive input", name).
		WithDetail("parameter", name).
		WithDetail("hint", hint)
}

func TypeMismatch(param, raw, kind string, cause error) *Error {
	e := Newf(CodeTypeMismatch, "invalid value '%s' for parameter '%s': expected %s", raw, param, kind).
		WithDetail("parameter", param).
		WithDetail("value", raw).
		WithDetail("kind", kind)
	if cause != nil {
		e.WithCause(cause)
	}
	return e
}

func ValidationFailed(param, rule, reason string) *Error {
	return Newf(CodeValidationFailed, "validation rule '%s' failed for parameter '%s': %s", rule, param, reason).
		WithDetail("parameter", param).
		WithDetail("rule", rule)
}

// Registration

func DuplicateCommand(name string) *Error {
	return Newf(CodeDuplicateCommand, "command '%s' is already registered", name).
		WithDetail("command", name)
}

func AmbiguousAlias(alias, first, second string) *Error {
	return Newf(CodeAmbiguousAlias, "alias '%s' is claimed by both '%s' and '%s'", alias, first, second).
		WithDetail("alias", alias).
		WithDetail("first", first).
		WithDetail("second", second)
}

func InvalidDefinition(name, reason string) *Error {
	return Newf(CodeInvalidDefinition, "invalid definition for '%s': %s", name, reason).
		WithDetail("command", name)
}

// Execution

func RoutineNotFound(name string, suggestions []string) *Error {
	msg := fmt.Sprintf("command '%s' not found", name)
	if len(suggestions) > 0 {
		msg += fmt.Sprintf(", did you mean '%s'?", suggestions[0])
	}
	e := New(CodeRoutineNotFound, msg).WithDetail("command", name)
	if len(suggestions) > 0 {
		e.WithDetail("suggestions", suggestions)
	}
	return e
}

func NotImplemented(name, link string) *Error {
	return Newf(CodeNotImplemented, "command '%s' has no implementation (routine link '%s')", name, link).
		WithDetail("command", name).
		WithDetail("routine_link", link)
}

func HelpRequested(command, text string) *Error {
	return Newf(CodeHelpRequested, "help requested for '%s'", command).
		WithDetail("command", command).
		WithDetail("help", text)
}

func Internal(message string, cause error) *Error {
	e := New(CodeInternal, message)
	if cause != nil {
		e.WithCause(cause)
	}
	return e
}
