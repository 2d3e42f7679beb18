// File: definition.go
// Title: Command and Argument Definitions
// Description: Declarative schema of a command: its qualified name, metadata
//              and ordered argument definitions with kinds, attributes,
//              validation rules and aliases. Definitions are immutable once
//              registered.
// Author: msto63
// Version: v0.1.0
// Created: 2025-10-03
// Modified: 2025-10-06
//
// Change History:
// - 2025-10-03 v0.1.0: Initial definition model
// - 2025-10-06 v0.1.0: Status, deprecation and routine links

package types

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/Masterminds/semver/v3"

	uerrors "github.com/msto63/unilang/pkg/unilang/errors"
)

// DefaultVersion is assigned to definitions that declare no version
const DefaultVersion = "1.0.0"

// CommandStatus is the lifecycle state of a command
type CommandStatus string

const (
	StatusActive       CommandStatus = "active"
	StatusDeprecated   CommandStatus = "deprecated"
	StatusExperimental CommandStatus = "experimental"
	StatusInternal     CommandStatus = "internal"
)

// Valid reports whether s is a known status
func (s CommandStatus) Valid() bool {
	switch s {
	case StatusActive, StatusDeprecated, StatusExperimental, StatusInternal:
		return true
	}
	return false
}

// ArgumentAttributes control binding of an argument
type ArgumentAttributes struct {
	Optional    bool    `json:"optional,omitempty" yaml:"optional,omitempty"`
	Multiple    bool    `json:"multiple,omitempty" yaml:"multiple,omitempty"`
	Default     *string `json:"default,omitempty" yaml:"default,omitempty"`
	Sensitive   bool    `json:"sensitive,omitempty" yaml:"sensitive,omitempty"`
	Interactive bool    `json:"interactive,omitempty" yaml:"interactive,omitempty"`
}

// ArgumentDefinition declares one argument of a command
type ArgumentDefinition struct {
	Name            string             `json:"name" yaml:"name"`
	Kind            Kind               `json:"kind" yaml:"kind"`
	Hint            string             `json:"hint,omitempty" yaml:"hint,omitempty"`
	Description     string             `json:"description,omitempty" yaml:"description,omitempty"`
	Attributes      ArgumentAttributes `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	ValidationRules []ValidationRule   `json:"validation_rules,omitempty" yaml:"validation_rules,omitempty"`
	Aliases         []string           `json:"aliases,omitempty" yaml:"aliases,omitempty"`
	Tags            []string           `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// Required reports whether the argument must be supplied
func (a *ArgumentDefinition) Required() bool {
	return !a.Attributes.Optional && a.Attributes.Default == nil
}

// Matches reports whether name is the argument name or one of its aliases
func (a *ArgumentDefinition) Matches(name string) bool {
	if a.Name == name {
		return true
	}
	for _, alias := range a.Aliases {
		if alias == name {
			return true
		}
	}
	return false
}

// CommandDefinition is the declarative schema of a command
type CommandDefinition struct {
	Name               string               `json:"name" yaml:"name"`
	Namespace          string               `json:"namespace,omitempty" yaml:"namespace,omitempty"`
	Description        string               `json:"description,omitempty" yaml:"description,omitempty"`
	Hint               string               `json:"hint,omitempty" yaml:"hint,omitempty"`
	Status             CommandStatus        `json:"status,omitempty" yaml:"status,omitempty"`
	Version            string               `json:"version,omitempty" yaml:"version,omitempty"`
	Arguments          []ArgumentDefinition `json:"arguments,omitempty" yaml:"arguments,omitempty"`
	Aliases            []string             `json:"aliases,omitempty" yaml:"aliases,omitempty"`
	Tags               []string             `json:"tags,omitempty" yaml:"tags,omitempty"`
	Permissions        []string             `json:"permissions,omitempty" yaml:"permissions,omitempty"`
	Idempotent         bool                 `json:"idempotent,omitempty" yaml:"idempotent,omitempty"`
	DeprecationMessage string               `json:"deprecation_message,omitempty" yaml:"deprecation_message,omitempty"`
	HTTPMethodHint     string               `json:"http_method_hint,omitempty" yaml:"http_method_hint,omitempty"`
	Examples           []string             `json:"examples,omitempty" yaml:"examples,omitempty"`
	RoutineLink        string               `json:"routine_link,omitempty" yaml:"routine_link,omitempty"`
}

// FullName returns the qualified command name without a leading dot,
// e.g. "math.add" for namespace ".math" and name "add"
func (d *CommandDefinition) FullName() string {
	name := strings.Trim(d.Name, ".")
	ns := strings.Trim(d.Namespace, ".")
	if ns == "" {
		return name
	}
	if name == "" {
		return ns
	}
	return ns + "." + name
}

// QualifiedAliases returns the command aliases in qualified form. An alias
// without a dot lives in the command's namespace.
func (d *CommandDefinition) QualifiedAliases() []string {
	ns := strings.Trim(d.Namespace, ".")
	out := make([]string, 0, len(d.Aliases))
	for _, alias := range d.Aliases {
		alias = strings.TrimPrefix(alias, ".")
		if ns != "" && !strings.Contains(alias, ".") {
			alias = ns + "." + alias
		}
		out = append(out, alias)
	}
	return out
}

// Argument returns the argument definition bound to name, by exact name
// first and then by alias
func (d *CommandDefinition) Argument(name string) (*ArgumentDefinition, bool) {
	for i := range d.Arguments {
		if d.Arguments[i].Name == name {
			return &d.Arguments[i], true
		}
	}
	for i := range d.Arguments {
		for _, alias := range d.Arguments[i].Aliases {
			if alias == name {
				return &d.Arguments[i], true
			}
		}
	}
	return nil, false
}

// IsDeprecated reports whether the command is marked deprecated
func (d *CommandDefinition) IsDeprecated() bool {
	return d.Status == StatusDeprecated || d.DeprecationMessage != ""
}

// ApplyDefaults fills unset metadata
func (d *CommandDefinition) ApplyDefaults() {
	if d.Version == "" {
		d.Version = DefaultVersion
	}
	if d.Status == "" {
		d.Status = StatusActive
	}
}

// Validate checks the structural invariants of the definition
func (d *CommandDefinition) Validate() error {
	full := d.FullName()
	if full == "" {
		return uerrors.InvalidDefinition("<unnamed>", "command name is empty")
	}
	for _, seg := range strings.Split(full, ".") {
		if !isIdentifier(seg, false) {
			return uerrors.InvalidDefinition(full, fmt.Sprintf("invalid name segment '%s'", seg))
		}
	}
	for _, alias := range d.QualifiedAliases() {
		for _, seg := range strings.Split(alias, ".") {
			if !isIdentifier(seg, false) {
				return uerrors.InvalidDefinition(full, fmt.Sprintf("invalid command alias '%s'", alias))
			}
		}
	}

	if d.Version != "" {
		if _, err := semver.NewVersion(d.Version); err != nil {
			return uerrors.InvalidDefinition(full, fmt.Sprintf("invalid version '%s'", d.Version)).WithCause(err)
		}
	}
	if d.Status != "" && !d.Status.Valid() {
		return uerrors.InvalidDefinition(full, fmt.Sprintf("unknown status '%s'", d.Status))
	}

	owners := make(map[string]string)
	for i := range d.Arguments {
		arg := &d.Arguments[i]
		if !isIdentifier(arg.Name, true) {
			return uerrors.InvalidDefinition(full, fmt.Sprintf("invalid argument name '%s'", arg.Name))
		}
		if owner, taken := owners[arg.Name]; taken {
			if owner == arg.Name {
				return uerrors.InvalidDefinition(full, fmt.Sprintf("duplicate argument '%s'", arg.Name))
			}
			return uerrors.AmbiguousAlias(arg.Name, owner, arg.Name).WithDetail("command", full)
		}
		owners[arg.Name] = arg.Name

		for _, alias := range arg.Aliases {
			if !isIdentifier(alias, true) {
				return uerrors.InvalidDefinition(full, fmt.Sprintf("invalid alias '%s' for argument '%s'", alias, arg.Name))
			}
			if owner, taken := owners[alias]; taken {
				return uerrors.AmbiguousAlias(alias, owner, arg.Name).WithDetail("command", full)
			}
			owners[alias] = arg.Name
		}

		if arg.Attributes.Default != nil && arg.Kind.Tag != TagFile && arg.Kind.Tag != TagDirectory {
			if _, err := ParseValue(*arg.Attributes.Default, arg.Kind); err != nil {
				return uerrors.InvalidDefinition(full,
					fmt.Sprintf("default for argument '%s' is not a valid %s", arg.Name, arg.Kind)).WithCause(err)
			}
		}
	}

	return nil
}

// isIdentifier accepts letters and '_' first, then letters, digits, '_'
// and, for argument names, '-'
func isIdentifier(s string, allowDash bool) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || unicode.IsLetter(r):
		case i > 0 && unicode.IsDigit(r):
		case i > 0 && allowDash && r == '-':
		default:
			return false
		}
	}
	return true
}
