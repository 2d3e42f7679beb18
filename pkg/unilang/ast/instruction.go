// File: instruction.go
// Title: Parsed Instruction Nodes
// Description: Defines the structures produced by the instruction parser:
//              source locations, arguments and the generic instruction that
//              is later bound against a command definition.
// Author: msto63
// Version: v0.1.0
// Created: 2025-10-02
// Modified: 2025-10-02
//
// Change History:
// - 2025-10-02 v0.1.0: Initial instruction model

package ast

import (
	"fmt"
	"sort"
	"strings"
)

// Location is a half-open byte range [Start, End) in the source text
type Location struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Span returns a location covering both a and b
func Span(a, b Location) Location {
	start, end := a.Start, b.End
	if b.Start < start {
		start = b.Start
	}
	if a.End > end {
		end = a.End
	}
	return Location{Start: start, End: end}
}

// Len returns the number of bytes covered by the location
func (l Location) Len() int {
	return l.End - l.Start
}

// String renders the location as start..end
func (l Location) String() string {
	return fmt.Sprintf("%d..%d", l.Start, l.End)
}

// Argument is a single named or positional argument as written by the user.
// Value is already unescaped with quotes stripped. Positional arguments
// never carry a name.
type Argument struct {
	Name          string   `json:"name,omitempty"`
	Value         string   `json:"value"`
	NameLocation  Location `json:"name_location"`
	ValueLocation Location `json:"value_location"`
	Quoted        bool     `json:"quoted,omitempty"`
}

// IsNamed reports whether the argument was given as name::value
func (a Argument) IsNamed() bool {
	return a.Name != ""
}

// GenericInstruction is one parsed command invocation before semantic binding
type GenericInstruction struct {
	CommandPath         []string            `json:"command_path"`
	NamedArguments      map[string]Argument `json:"named_arguments"`
	PositionalArguments []Argument          `json:"positional_arguments"`
	HelpRequested       bool                `json:"help_requested"`
	Location            Location            `json:"location"`
}

// NewInstruction returns an empty instruction ready to be filled by a parser
func NewInstruction() *GenericInstruction {
	return &GenericInstruction{
		CommandPath:         []string{},
		NamedArguments:      make(map[string]Argument),
		PositionalArguments: []Argument{},
	}
}

// CommandName returns the dot-joined command path without a leading dot
func (g *GenericInstruction) CommandName() string {
	return strings.Join(g.CommandPath, ".")
}

// IsEmpty reports whether the instruction has no command path
func (g *GenericInstruction) IsEmpty() bool {
	return len(g.CommandPath) == 0
}

// OrderedNamed returns the named arguments in source order
func (g *GenericInstruction) OrderedNamed() []Argument {
	args := make([]Argument, 0, len(g.NamedArguments))
	for _, arg := range g.NamedArguments {
		args = append(args, arg)
	}
	sort.Slice(args, func(i, j int) bool {
		return args[i].NameLocation.Start < args[j].NameLocation.Start
	})
	return args
}

// String renders the instruction in canonical command syntax
func (g *GenericInstruction) String() string {
	var sb strings.Builder
	sb.WriteString(".")
	sb.WriteString(g.CommandName())

	for _, arg := range g.OrderedNamed() {
		sb.WriteString(" ")
		sb.WriteString(arg.Name)
		sb.WriteString("::")
		sb.WriteString(quoteIfNeeded(arg.Value))
	}
	for _, arg := range g.PositionalArguments {
		sb.WriteString(" ")
		sb.WriteString(quoteIfNeeded(arg.Value))
	}
	if g.HelpRequested {
		sb.WriteString(" ?")
	}
	return sb.String()
}

func quoteIfNeeded(value string) string {
	if value == "" || strings.ContainsAny(value, " \t\r\n\"'?;:#!") {
		escaped := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\t", `\t`, "\r", `\r`).Replace(value)
		return `"` + escaped + `"`
	}
	return value
}
