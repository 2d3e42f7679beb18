// File: registry.go
// Title: Command Registry Contract
// Description: Routine variants, registry entries and the lookup contract
//              shared by the dynamic and the static registry.
// Author: msto63
// Version: v0.1.0
// Created: 2025-10-04
// Modified: 2025-10-04

package registry

import (
	"context"
	"sort"
	"strings"

	"github.com/msto63/unilang/pkg/core/logging"
	"github.com/msto63/unilang/pkg/unilang/semantic"
	"github.com/msto63/unilang/pkg/unilang/types"
)

// Routine is the executable callback of a command
type Routine interface {
	Invoke(ctx context.Context, cmd *semantic.VerifiedCommand, ec *types.ExecutionContext) (*types.OutputData, error)
}

// ContextFreeFunc is a routine body that needs only its arguments
type ContextFreeFunc func(cmd *semantic.VerifiedCommand) (*types.OutputData, error)

// ContextAwareFunc is a routine body that also receives the execution context
type ContextAwareFunc func(ctx context.Context, cmd *semantic.VerifiedCommand, ec *types.ExecutionContext) (*types.OutputData, error)

// ContextFreeRoutine ignores the execution context. The pointer is the
// routine identity.
type ContextFreeRoutine struct {
	Fn ContextFreeFunc
}

// ContextAwareRoutine receives the execution context. The pointer is the
// routine identity.
type ContextAwareRoutine struct {
	Fn ContextAwareFunc
}

// ContextFree wraps fn as a routine
func ContextFree(fn ContextFreeFunc) *ContextFreeRoutine {
	return &ContextFreeRoutine{Fn: fn}
}

// ContextAware wraps fn as a routine
func ContextAware(fn ContextAwareFunc) *ContextAwareRoutine {
	return &ContextAwareRoutine{Fn: fn}
}

// Invoke implements Routine
func (r *ContextFreeRoutine) Invoke(_ context.Context, cmd *semantic.VerifiedCommand, _ *types.ExecutionContext) (*types.OutputData, error) {
	return r.Fn(cmd)
}

// Invoke implements Routine
func (r *ContextAwareRoutine) Invoke(ctx context.Context, cmd *semantic.VerifiedCommand, ec *types.ExecutionContext) (*types.OutputData, error) {
	return r.Fn(ctx, cmd, ec)
}

// Entry binds a definition to its routine. Routine is nil for commands that
// were declared without an implementation.
type Entry struct {
	Definition *types.CommandDefinition
	Routine    Routine
}

// Name returns the qualified command name
func (e *Entry) Name() string {
	return e.Definition.FullName()
}

// Registry resolves qualified command names and command aliases
type Registry interface {
	// Lookup accepts names with or without the leading dot
	Lookup(name string) (*Entry, bool)
	// Commands returns every entry sorted by name
	Commands() []*Entry
	// Len returns the number of commands
	Len() int
}

// Options configures registry construction
type Options struct {
	Logger *logging.Logger
}

// Names returns all qualified names and command aliases of r, sorted
func Names(r Registry) []string {
	var names []string
	for _, e := range r.Commands() {
		names = append(names, e.Name())
		names = append(names, e.Definition.QualifiedAliases()...)
	}
	sort.Strings(names)
	return names
}

func normalize(name string) string {
	return strings.TrimPrefix(strings.TrimSpace(name), ".")
}

func sortEntries(entries []*Entry) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})
}
