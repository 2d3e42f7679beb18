// File: help.go
// Title: Help and Listing Generator
// Description: Renders command help and command listings from registry
//              definitions at three verbosity levels. Output is plain text;
//              styling is left to the presentation layer.
// Author: msto63
// Version: v0.1.0
// Created: 2025-10-08
// Modified: 2025-10-08
//
// Change History:
// - 2025-10-08 v0.1.0: Initial help generator

package help

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/msto63/unilang/pkg/unilang/registry"
	"github.com/msto63/unilang/pkg/unilang/semantic"
	"github.com/msto63/unilang/pkg/unilang/types"
)

// Verbosity selects the amount of help detail
type Verbosity int

const (
	// Quiet prints name and hint
	Quiet Verbosity = 0
	// Normal adds usage and arguments
	Normal Verbosity = 1
	// Detailed adds aliases, rules, status, tags and examples
	Detailed Verbosity = 2
)

// EnvVerbosity is consulted by VerbosityFromEnv
const EnvVerbosity = "UNILANG_HELP_VERBOSITY"

// ParseVerbosity maps "0", "1" and "2"; everything else is Normal
func ParseVerbosity(text string) Verbosity {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || n < int(Quiet) || n > int(Detailed) {
		return Normal
	}
	return Verbosity(n)
}

// VerbosityFromEnv reads EnvVerbosity
func VerbosityFromEnv() Verbosity {
	return ParseVerbosity(os.Getenv(EnvVerbosity))
}

// Generator renders help for the commands of a registry
type Generator struct {
	registry  registry.Registry
	verbosity Verbosity
}

// New creates a generator. Out-of-range verbosities are clamped.
func New(reg registry.Registry, verbosity Verbosity) *Generator {
	if verbosity < Quiet {
		verbosity = Quiet
	}
	if verbosity > Detailed {
		verbosity = Detailed
	}
	return &Generator{registry: reg, verbosity: verbosity}
}

// Verbosity returns the configured level
func (g *Generator) Verbosity() Verbosity {
	return g.verbosity
}

// CommandByName renders help for a registered command or alias
func (g *Generator) CommandByName(name string) (string, bool) {
	entry, ok := g.registry.Lookup(name)
	if !ok {
		return "", false
	}
	return g.Command(entry.Definition), true
}

// Command renders help for def
func (g *Generator) Command(def *types.CommandDefinition) string {
	var b strings.Builder
	name := "." + def.FullName()

	if g.verbosity == Quiet {
		b.WriteString(name)
		if summary := summaryOf(def); summary != "" {
			b.WriteString(" - " + summary)
		}
		b.WriteByte('\n')
		return b.String()
	}

	fmt.Fprintf(&b, "Usage: %s\n", usage(def))
	if def.Description != "" {
		fmt.Fprintf(&b, "\n%s\n", def.Description)
	} else if def.Hint != "" {
		fmt.Fprintf(&b, "\n%s\n", def.Hint)
	}

	if g.verbosity >= Detailed {
		fmt.Fprintf(&b, "\nVersion: %s\n", valueOr(def.Version, types.DefaultVersion))
		fmt.Fprintf(&b, "Status: %s\n", valueOr(string(def.Status), string(types.StatusActive)))
		if def.IsDeprecated() && def.DeprecationMessage != "" {
			fmt.Fprintf(&b, "Deprecated: %s\n", def.DeprecationMessage)
		}
		if len(def.Aliases) > 0 {
			fmt.Fprintf(&b, "Aliases: %s\n", strings.Join(dotted(def.QualifiedAliases()), ", "))
		}
		if len(def.Tags) > 0 {
			fmt.Fprintf(&b, "Tags: %s\n", strings.Join(def.Tags, ", "))
		}
		if len(def.Permissions) > 0 {
			fmt.Fprintf(&b, "Permissions: %s\n", strings.Join(def.Permissions, ", "))
		}
		if def.Idempotent {
			b.WriteString("Idempotent: yes\n")
		}
	}

	if len(def.Arguments) > 0 {
		b.WriteString("\nArguments:\n")
		width := 0
		for i := range def.Arguments {
			if n := len(def.Arguments[i].Name); n > width {
				width = n
			}
		}
		for i := range def.Arguments {
			g.writeArgument(&b, &def.Arguments[i], width)
		}
	}

	if g.verbosity >= Detailed && len(def.Examples) > 0 {
		b.WriteString("\nExamples:\n")
		for _, ex := range def.Examples {
			fmt.Fprintf(&b, "  %s\n", ex)
		}
	}

	return b.String()
}

func (g *Generator) writeArgument(b *strings.Builder, arg *types.ArgumentDefinition, width int) {
	fmt.Fprintf(b, "  %-*s  %s", width, arg.Name, arg.Kind)

	var flags []string
	if !arg.Required() {
		flags = append(flags, "optional")
	}
	if arg.Attributes.Multiple {
		flags = append(flags, "multiple")
	}
	if arg.Attributes.Interactive {
		flags = append(flags, "interactive")
	}
	if arg.Attributes.Sensitive {
		flags = append(flags, "sensitive")
	}
	if len(flags) > 0 {
		fmt.Fprintf(b, " (%s)", strings.Join(flags, ", "))
	}

	if text := valueOr(arg.Description, arg.Hint); text != "" {
		fmt.Fprintf(b, "  %s", text)
	}
	if d := arg.Attributes.Default; d != nil {
		shown := *d
		if arg.Attributes.Sensitive {
			shown = semantic.MaskedValue
		}
		fmt.Fprintf(b, " [default: %s]", shown)
	}
	b.WriteByte('\n')

	if g.verbosity < Detailed {
		return
	}
	indent := strings.Repeat(" ", width+4)
	if len(arg.Aliases) > 0 {
		fmt.Fprintf(b, "%saliases: %s\n", indent, strings.Join(arg.Aliases, ", "))
	}
	if len(arg.ValidationRules) > 0 {
		rules := make([]string, len(arg.ValidationRules))
		for i, r := range arg.ValidationRules {
			rules[i] = r.String()
		}
		fmt.Fprintf(b, "%srules: %s\n", indent, strings.Join(rules, ", "))
	}
}

// List renders all commands except internal ones, sorted by name
func (g *Generator) List() string {
	return g.ListPrefix("")
}

// ListPrefix renders the commands whose qualified name starts with prefix
func (g *Generator) ListPrefix(prefix string) string {
	prefix = strings.TrimPrefix(prefix, ".")
	var visible []*types.CommandDefinition
	for _, e := range g.registry.Commands() {
		if e.Definition.Status == types.StatusInternal {
			continue
		}
		if prefix != "" && !strings.HasPrefix(e.Name(), prefix) {
			continue
		}
		visible = append(visible, e.Definition)
	}

	var b strings.Builder
	if len(visible) == 0 {
		if prefix != "" {
			fmt.Fprintf(&b, "No commands found matching prefix: .%s\n", prefix)
		} else {
			b.WriteString("No commands available.\n")
		}
		return b.String()
	}

	if g.verbosity == Quiet {
		for _, def := range visible {
			fmt.Fprintf(&b, ".%s\n", def.FullName())
		}
		return b.String()
	}

	width := 0
	for _, def := range visible {
		if n := len(def.FullName()) + 1; n > width {
			width = n
		}
	}

	if g.verbosity == Normal {
		b.WriteString("Available commands:\n")
		for _, def := range visible {
			writeListLine(&b, def, width, false)
		}
		return b.String()
	}

	// Detailed listing groups by namespace
	groups := make(map[string][]*types.CommandDefinition)
	var namespaces []string
	for _, def := range visible {
		ns := strings.Trim(def.Namespace, ".")
		if _, ok := groups[ns]; !ok {
			namespaces = append(namespaces, ns)
		}
		groups[ns] = append(groups[ns], def)
	}
	sort.Strings(namespaces)

	for i, ns := range namespaces {
		if i > 0 {
			b.WriteByte('\n')
		}
		if ns == "" {
			b.WriteString("Commands:\n")
		} else {
			fmt.Fprintf(&b, ".%s commands:\n", ns)
		}
		for _, def := range groups[ns] {
			writeListLine(&b, def, width, true)
		}
	}
	return b.String()
}

func writeListLine(b *strings.Builder, def *types.CommandDefinition, width int, detailed bool) {
	line := fmt.Sprintf("  %-*s  %s", width, "."+def.FullName(), summaryOf(def))
	if detailed {
		if len(def.Aliases) > 0 {
			line += fmt.Sprintf(" (aliases: %s)", strings.Join(dotted(def.QualifiedAliases()), ", "))
		}
		if def.Status != "" && def.Status != types.StatusActive {
			line += fmt.Sprintf(" [%s]", def.Status)
		}
	}
	b.WriteString(strings.TrimRight(line, " ") + "\n")
}

// usage renders the call shape, for example
// ".math.add a::<Integer> [b::<Integer>] <items:String>..."
func usage(def *types.CommandDefinition) string {
	parts := []string{"." + def.FullName()}
	for i := range def.Arguments {
		arg := &def.Arguments[i]
		part := fmt.Sprintf("%s::<%s>", arg.Name, arg.Kind)
		if arg.Attributes.Multiple {
			part += "..."
		}
		if !arg.Required() {
			part = "[" + part + "]"
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, " ")
}

func summaryOf(def *types.CommandDefinition) string {
	return valueOr(def.Hint, def.Description)
}

func valueOr(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func dotted(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = "." + n
	}
	return out
}
