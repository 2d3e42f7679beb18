// File: parser_test.go
// Title: Instruction Parser Unit Tests
// Description: Table-driven tests for command paths, named and positional
//              arguments, help requests, programs and error locations.
// Author: msto63
// Version: v0.1.0
// Created: 2025-10-02
// Modified: 2025-10-07

package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msto63/unilang/pkg/core/logging"
	"github.com/msto63/unilang/pkg/unilang/ast"
	uerrors "github.com/msto63/unilang/pkg/unilang/errors"
)

func newTestParser(t *testing.T, opts Options) *Parser {
	t.Helper()
	opts.Logger = logging.Discard()
	p, err := New(opts)
	require.NoError(t, err)
	return p
}

func TestParser_ParseSingle(t *testing.T) {
	p := newTestParser(t, Options{})

	tests := []struct {
		name  string
		input string
		check func(t *testing.T, in *ast.GenericInstruction)
	}{
		{
			name:  "Command path with leading dot",
			input: ".math.add",
			check: func(t *testing.T, in *ast.GenericInstruction) {
				assert.Equal(t, []string{"math", "add"}, in.CommandPath)
				assert.Equal(t, "math.add", in.CommandName())
				assert.Empty(t, in.NamedArguments)
				assert.Empty(t, in.PositionalArguments)
				assert.False(t, in.HelpRequested)
			},
		},
		{
			name:  "Command path without leading dot",
			input: "system.info",
			check: func(t *testing.T, in *ast.GenericInstruction) {
				assert.Equal(t, []string{"system", "info"}, in.CommandPath)
			},
		},
		{
			name:  "Named arguments",
			input: ".math.add a::1 b::2",
			check: func(t *testing.T, in *ast.GenericInstruction) {
				require.Len(t, in.NamedArguments, 2)
				a := in.NamedArguments["a"]
				assert.Equal(t, "a", a.Name)
				assert.Equal(t, "1", a.Value)
				assert.Equal(t, ast.Location{Start: 10, End: 11}, a.NameLocation)
				assert.Equal(t, ast.Location{Start: 13, End: 14}, a.ValueLocation)
				assert.Equal(t, "2", in.NamedArguments["b"].Value)
			},
		},
		{
			name:  "Positional arguments keep order",
			input: "copy src.txt dst.txt",
			check: func(t *testing.T, in *ast.GenericInstruction) {
				require.Len(t, in.PositionalArguments, 2)
				assert.Equal(t, "src.txt", in.PositionalArguments[0].Value)
				assert.Equal(t, "dst.txt", in.PositionalArguments[1].Value)
				assert.Empty(t, in.PositionalArguments[0].Name)
				assert.Equal(t, ast.Location{Start: 5, End: 12}, in.PositionalArguments[0].ValueLocation)
			},
		},
		{
			name:  "Quoted named value",
			input: `run cmd::"echo test"`,
			check: func(t *testing.T, in *ast.GenericInstruction) {
				require.Len(t, in.NamedArguments, 1)
				assert.Equal(t, "echo test", in.NamedArguments["cmd"].Value)
				assert.True(t, in.NamedArguments["cmd"].Quoted)
				assert.Empty(t, in.PositionalArguments)
			},
		},
		{
			name:  "Single quoted value with escapes",
			input: `say text::'it\'s\tok'`,
			check: func(t *testing.T, in *ast.GenericInstruction) {
				assert.Equal(t, "it's\tok", in.NamedArguments["text"].Value)
			},
		},
		{
			name:  "Unquoted multi-word value ends at whitespace",
			input: `run cmd::echo test`,
			check: func(t *testing.T, in *ast.GenericInstruction) {
				assert.Equal(t, "echo", in.NamedArguments["cmd"].Value)
				require.Len(t, in.PositionalArguments, 1)
				assert.Equal(t, "test", in.PositionalArguments[0].Value)
			},
		},
		{
			name:  "Values absorb adjacent delimiters",
			input: "open path::./docs/readme.md url::http://host:8080/x ratio::1.5 ../up",
			check: func(t *testing.T, in *ast.GenericInstruction) {
				assert.Equal(t, "./docs/readme.md", in.NamedArguments["path"].Value)
				assert.Equal(t, "http://host:8080/x", in.NamedArguments["url"].Value)
				assert.Equal(t, "1.5", in.NamedArguments["ratio"].Value)
				require.Len(t, in.PositionalArguments, 1)
				assert.Equal(t, "../up", in.PositionalArguments[0].Value)
			},
		},
		{
			name:  "Whitespace after named delimiter",
			input: "cmd a:: 1",
			check: func(t *testing.T, in *ast.GenericInstruction) {
				assert.Equal(t, "1", in.NamedArguments["a"].Value)
			},
		},
		{
			name:  "Help operator",
			input: ".math.add ?",
			check: func(t *testing.T, in *ast.GenericInstruction) {
				assert.True(t, in.HelpRequested)
				assert.Equal(t, "math.add", in.CommandName())
			},
		},
		{
			name:  "Help operator glued to path",
			input: "math.add?",
			check: func(t *testing.T, in *ast.GenericInstruction) {
				assert.True(t, in.HelpRequested)
				assert.Equal(t, "math.add", in.CommandName())
			},
		},
		{
			name:  "Help operator after arguments",
			input: "cmd a::1 x ?",
			check: func(t *testing.T, in *ast.GenericInstruction) {
				assert.True(t, in.HelpRequested)
				assert.Len(t, in.NamedArguments, 1)
				assert.Len(t, in.PositionalArguments, 1)
			},
		},
		{
			name:  "Question mark inside value",
			input: "fetch url::http://x?y=1",
			check: func(t *testing.T, in *ast.GenericInstruction) {
				assert.Equal(t, "http://x?y=1", in.NamedArguments["url"].Value)
				assert.False(t, in.HelpRequested)
			},
		},
		{
			name:  "Lone dot",
			input: ".",
			check: func(t *testing.T, in *ast.GenericInstruction) {
				assert.True(t, in.IsEmpty())
			},
		},
		{
			name:  "Blank input",
			input: "   ",
			check: func(t *testing.T, in *ast.GenericInstruction) {
				assert.True(t, in.IsEmpty())
			},
		},
		{
			name:  "Duplicate named argument later wins",
			input: "cmd a::1 a::2",
			check: func(t *testing.T, in *ast.GenericInstruction) {
				assert.Equal(t, "2", in.NamedArguments["a"].Value)
			},
		},
		{
			name:  "Negative number positional",
			input: "calc -5",
			check: func(t *testing.T, in *ast.GenericInstruction) {
				assert.Equal(t, "-5", in.PositionalArguments[0].Value)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, err := p.ParseSingle(tt.input)
			require.NoError(t, err)
			require.NotNil(t, in)
			tt.check(t, in)
		})
	}
}

func TestParser_Errors(t *testing.T) {
	p := newTestParser(t, Options{})

	tests := []struct {
		name  string
		input string
		code  uerrors.Code
		loc   ast.Location
	}{
		{"Unterminated quote", `cmd a::"abc`, uerrors.CodeUnterminatedQuote, ast.Location{Start: 7, End: 11}},
		{"Invalid escape", `cmd a::"a\zb"`, uerrors.CodeInvalidEscapeSequence, ast.Location{Start: 9, End: 11}},
		{"Consecutive dots", "math..add", uerrors.CodeSyntax, ast.Location{Start: 4, End: 6}},
		{"Path ends with dot at end of input", "math.", uerrors.CodeTrailingDelimiter, ast.Location{Start: 4, End: 5}},
		{"Path ends with dot before args", "math. x", uerrors.CodeSyntax, ast.Location{Start: 4, End: 5}},
		{"Invalid path character", "list-files", uerrors.CodeSyntax, ast.Location{Start: 0, End: 10}},
		{"Junk after path", "cmd!x", uerrors.CodeSyntax, ast.Location{Start: 3, End: 4}},
		{"Named without value at end", "cmd a::", uerrors.CodeTrailingDelimiter, ast.Location{Start: 5, End: 7}},
		{"Named without value before help", "cmd a:: ?", uerrors.CodeSyntax, ast.Location{Start: 5, End: 7}},
		{"Stray named delimiter at end", "cmd ::", uerrors.CodeTrailingDelimiter, ast.Location{Start: 4, End: 6}},
		{"Stray named delimiter", "cmd :: x", uerrors.CodeSyntax, ast.Location{Start: 4, End: 6}},
		{"Help not last", "cmd ? x", uerrors.CodeSyntax, ast.Location{Start: 4, End: 5}},
		{"Arguments without path", "a::1", uerrors.CodeSyntax, ast.Location{Start: 0, End: 1}},
		{"Invalid argument name", "cmd 9a::1", uerrors.CodeSyntax, ast.Location{Start: 4, End: 6}},
		{"Double named delimiter in value", "cmd a::b::c", uerrors.CodeSyntax, ast.Location{Start: 8, End: 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.ParseSingle(tt.input)
			require.Error(t, err)
			assert.True(t, uerrors.HasCode(err, tt.code), "got %v", err)

			e, ok := uerrors.As(err)
			require.True(t, ok)
			loc, ok := e.Location()
			require.True(t, ok)
			assert.Equal(t, tt.loc, loc)
		})
	}
}

func TestParser_Options(t *testing.T) {
	t.Run("Duplicate named arguments rejected", func(t *testing.T) {
		p := newTestParser(t, Options{ErrorOnDuplicateNamedArguments: true})
		_, err := p.ParseSingle("cmd a::1 a::2")
		assert.True(t, uerrors.HasCode(err, uerrors.CodeArgumentDuplicate))
	})

	t.Run("Positional after named rejected", func(t *testing.T) {
		p := newTestParser(t, Options{ErrorOnPositionalAfterNamed: true})
		_, err := p.ParseSingle("cmd a::1 x")
		assert.True(t, uerrors.HasCode(err, uerrors.CodeSyntax))

		_, err = p.ParseSingle("cmd x a::1")
		assert.NoError(t, err)
	})

	t.Run("Max input length", func(t *testing.T) {
		p := newTestParser(t, Options{MaxInputLength: 8})
		_, err := p.ParseSingle("cmd a::123456")
		assert.True(t, uerrors.HasCode(err, uerrors.CodeInputTooLong))
	})

	t.Run("Negative max input length", func(t *testing.T) {
		_, err := New(Options{MaxInputLength: -1, Logger: logging.Discard()})
		assert.Error(t, err)
	})
}

func TestParser_ParseMultiple(t *testing.T) {
	p := newTestParser(t, Options{})

	instructions, err := p.ParseMultiple(".a x::1 ;; .b ;;.c y")
	require.NoError(t, err)
	require.Len(t, instructions, 3)
	assert.Equal(t, "a", instructions[0].CommandName())
	assert.Equal(t, "1", instructions[0].NamedArguments["x"].Value)
	assert.Equal(t, "b", instructions[1].CommandName())
	assert.Equal(t, "c", instructions[2].CommandName())
	assert.Equal(t, "y", instructions[2].PositionalArguments[0].Value)

	empty, err := p.ParseMultiple("")
	require.NoError(t, err)
	assert.Empty(t, empty)

	quoted, err := p.ParseMultiple(`echo text::"a ;; b"`)
	require.NoError(t, err)
	require.Len(t, quoted, 1)
	assert.Equal(t, "a ;; b", quoted[0].NamedArguments["text"].Value)
}

func TestParser_ProgramSegmentErrors(t *testing.T) {
	p := newTestParser(t, Options{})

	tests := []struct {
		name  string
		input string
		code  uerrors.Code
	}{
		{"Leading separator", ";; .a", uerrors.CodeEmptyInstructionSegment},
		{"Double leading separator", ";;;; .a", uerrors.CodeEmptyInstructionSegment},
		{"Trailing separator", ".a ;;", uerrors.CodeEmptyInstructionSegment},
		{"Empty middle segment", ".a ;; ;; .b", uerrors.CodeEmptyInstructionSegment},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.ParseMultiple(tt.input)
			require.Error(t, err)
			assert.True(t, uerrors.HasCode(err, tt.code), "got %v", err)
		})
	}
}

func TestParser_ParseProgram(t *testing.T) {
	p := newTestParser(t, Options{})

	results := p.ParseProgram(".a ;; math..x ;; .c")
	require.Len(t, results, 3)

	assert.NoError(t, results[0].Err)
	assert.Equal(t, ".a", results[0].Text)

	assert.True(t, uerrors.HasCode(results[1].Err, uerrors.CodeSyntax))
	assert.Equal(t, "math..x", results[1].Text)

	assert.NoError(t, results[2].Err)
	assert.Equal(t, "c", results[2].Instruction.CommandName())
}

func TestParser_ParseProgram_LexicalErrorStops(t *testing.T) {
	p := newTestParser(t, Options{})

	results := p.ParseProgram(`.a ;; .b x::"open ;; .c`)
	require.Len(t, results, 2)
	assert.NoError(t, results[0].Err)
	assert.True(t, uerrors.HasCode(results[1].Err, uerrors.CodeUnterminatedQuote))
}

func TestParser_ParseSingleRejectsSequence(t *testing.T) {
	p := newTestParser(t, Options{})

	_, err := p.ParseSingle(".a ;; .b")
	assert.True(t, uerrors.HasCode(err, uerrors.CodeSyntax))
}

func TestParser_Idempotent(t *testing.T) {
	p := newTestParser(t, Options{})
	inputs := []string{
		".math.add a::1 b::2",
		`run cmd::"echo test" t::4 extra ?`,
		"copy ./a ../b",
		".",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			first, err := p.ParseSingle(input)
			require.NoError(t, err)
			second, err := p.ParseSingle(input)
			require.NoError(t, err)
			assert.Equal(t, first, second)
		})
	}
}

func TestGenericInstruction_String(t *testing.T) {
	p := newTestParser(t, Options{})

	in, err := p.ParseSingle(`.run b::2 cmd::"echo test" pos ?`)
	require.NoError(t, err)
	assert.Equal(t, `.run b::2 cmd::"echo test" pos ?`, in.String())

	again, err := p.ParseSingle(in.String())
	require.NoError(t, err)
	assert.Equal(t, in.NamedArguments["cmd"].Value, again.NamedArguments["cmd"].Value)
}
