// File: codes.go
// Title: Error Codes and Categories
// Description: Defines the error codes raised by the command-instruction core
//              and groups them into the categories used for propagation and
//              exit-code translation.
// Author: msto63
// Version: v0.1.0
// Created: 2025-10-02
// Modified: 2025-10-02
//
// Change History:
// - 2025-10-02 v0.1.0: Initial code table

package errors

// Code identifies a specific error condition
type Code string

const (
	// Lexical
	CodeUnterminatedQuote     Code = "UNILANG_UNTERMINATED_QUOTE"
	CodeInvalidEscapeSequence Code = "UNILANG_INVALID_ESCAPE_SEQUENCE"

	// Syntactic
	CodeEmptyInstructionSegment Code = "UNILANG_EMPTY_INSTRUCTION_SEGMENT"
	CodeTrailingDelimiter       Code = "UNILANG_TRAILING_DELIMITER"
	CodeSyntax                  Code = "UNILANG_SYNTAX_ERROR"
	CodeInputTooLong            Code = "UNILANG_INPUT_TOO_LONG"

	// Binding / semantic
	CodeArgumentUnknown             Code = "UNILANG_UNKNOWN_PARAMETER"
	CodeArgumentDuplicate           Code = "UNILANG_ARGUMENT_DUPLICATE"
	CodeArgumentSurplus             Code = "UNILANG_TOO_MANY_ARGUMENTS"
	CodeArgumentMissing             Code = "UNILANG_ARGUMENT_MISSING"
	CodeArgumentInteractiveRequired Code = "UNILANG_ARGUMENT_INTERACTIVE_REQUIRED"
	CodeTypeMismatch                Code = "UNILANG_TYPE_MISMATCH"
	CodeValidationFailed            Code = "UNILANG_VALIDATION_RULE_FAILED"

	// Registration
	CodeDuplicateCommand  Code = "UNILANG_COMMAND_ALREADY_EXISTS"
	CodeAmbiguousAlias    Code = "UNILANG_AMBIGUOUS_ALIAS"
	CodeInvalidDefinition Code = "UNILANG_INVALID_DEFINITION"

	// Execution
	CodeRoutineNotFound Code = "UNILANG_COMMAND_NOT_FOUND"
	CodeNotImplemented  Code = "UNILANG_COMMAND_NOT_IMPLEMENTED"
	CodeHelpRequested   Code = "UNILANG_HELP_REQUESTED"
	CodeExecution       Code = "UNILANG_EXECUTION_ERROR"
	CodeInternal        Code = "UNILANG_INTERNAL_ERROR"
)

// Category groups codes by the processing stage that raises them
type Category int

const (
	CategoryUnknown Category = iota
	CategoryLexical
	CategorySyntactic
	CategoryBinding
	CategoryRegistration
	CategoryExecution
	CategoryInternal
)

// String returns the lowercase category name
func (c Category) String() string {
	switch c {
	case CategoryLexical:
		return "lexical"
	case CategorySyntactic:
		return "syntactic"
	case CategoryBinding:
		return "binding"
	case CategoryRegistration:
		return "registration"
	case CategoryExecution:
		return "execution"
	case CategoryInternal:
		return "internal"
	default:
		return "unknown"
	}
}

var codeCategories = map[Code]Category{
	CodeUnterminatedQuote:     CategoryLexical,
	CodeInvalidEscapeSequence: CategoryLexical,

	CodeEmptyInstructionSegment: CategorySyntactic,
	CodeTrailingDelimiter:       CategorySyntactic,
	CodeSyntax:                  CategorySyntactic,
	CodeInputTooLong:            CategorySyntactic,

	CodeArgumentUnknown:             CategoryBinding,
	CodeArgumentDuplicate:           CategoryBinding,
	CodeArgumentSurplus:             CategoryBinding,
	CodeArgumentMissing:             CategoryBinding,
	CodeArgumentInteractiveRequired: CategoryBinding,
	CodeTypeMismatch:                CategoryBinding,
	CodeValidationFailed:            CategoryBinding,

	CodeDuplicateCommand:  CategoryRegistration,
	CodeAmbiguousAlias:    CategoryRegistration,
	CodeInvalidDefinition: CategoryRegistration,

	CodeRoutineNotFound: CategoryExecution,
	CodeNotImplemented:  CategoryExecution,
	CodeHelpRequested:   CategoryExecution,
	CodeExecution:       CategoryExecution,
	CodeInternal:        CategoryInternal,
}

// Category returns the category a code belongs to. Codes that are not part
// of the table (for example routine-defined codes) are execution errors.
func (c Code) Category() Category {
	if cat, ok := codeCategories[c]; ok {
		return cat
	}
	if c == "" {
		return CategoryUnknown
	}
	return CategoryExecution
}

// String returns the code text
func (c Code) String() string {
	return string(c)
}
