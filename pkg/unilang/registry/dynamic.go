// File: dynamic.go
// Title: Dynamic Command Registry
// Description: Runtime-mutable registry backed by maps and guarded by a
//              reader/writer lock: one writer, many concurrent readers.
//              Freeze converts the current command set into a Static
//              registry.
// Author: msto63
// Version: v0.1.0
// Created: 2025-10-04
// Modified: 2025-10-06
//
// Change History:
// - 2025-10-04 v0.1.0: Initial dynamic registry
// - 2025-10-06 v0.1.0: Command aliases and Freeze

package registry

import (
	"sync"

	"github.com/msto63/unilang/pkg/core/logging"
	uerrors "github.com/msto63/unilang/pkg/unilang/errors"
	"github.com/msto63/unilang/pkg/unilang/types"
)

// Dynamic is a mutable registry
type Dynamic struct {
	entries map[string]*Entry
	aliases map[string]string // qualified alias -> qualified name
	logger  *logging.Logger
	mutex   sync.RWMutex
}

// NewDynamic creates an empty dynamic registry
func NewDynamic(opts Options) *Dynamic {
	if opts.Logger == nil {
		opts.Logger = logging.Default()
	}
	return &Dynamic{
		entries: make(map[string]*Entry),
		aliases: make(map[string]string),
		logger:  opts.Logger.WithField("component", "unilang-registry"),
	}
}

// Register adds a command. The definition must validate and neither its
// name nor any of its aliases may already be taken.
func (r *Dynamic) Register(def *types.CommandDefinition, routine Routine) error {
	if def == nil {
		return uerrors.InvalidDefinition("<nil>", "definition is nil")
	}
	if err := def.Validate(); err != nil {
		return err
	}

	name := def.FullName()
	aliases := def.QualifiedAliases()

	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.entries[name]; exists {
		return uerrors.DuplicateCommand(name)
	}
	if owner, exists := r.aliases[name]; exists {
		return uerrors.AmbiguousAlias(name, owner, name)
	}

	seen := make(map[string]bool, len(aliases))
	for _, alias := range aliases {
		if alias == name || seen[alias] {
			return uerrors.AmbiguousAlias(alias, name, name)
		}
		seen[alias] = true
		if _, exists := r.entries[alias]; exists {
			return uerrors.AmbiguousAlias(alias, alias, name)
		}
		if owner, exists := r.aliases[alias]; exists {
			return uerrors.AmbiguousAlias(alias, owner, name)
		}
	}

	r.entries[name] = &Entry{Definition: def, Routine: routine}
	for _, alias := range aliases {
		r.aliases[alias] = name
	}

	r.logger.Debug("command registered", "command", name, "aliases", len(aliases), "hasRoutine", routine != nil)
	return nil
}

// MustRegister is Register for static command tables
func (r *Dynamic) MustRegister(def *types.CommandDefinition, routine Routine) {
	if err := r.Register(def, routine); err != nil {
		panic(err)
	}
}

// Remove deletes a command, given by name or alias, together with its
// aliases. It reports whether a command was removed.
func (r *Dynamic) Remove(name string) bool {
	name = normalize(name)

	r.mutex.Lock()
	defer r.mutex.Unlock()

	if owner, ok := r.aliases[name]; ok {
		name = owner
	}
	entry, ok := r.entries[name]
	if !ok {
		return false
	}

	delete(r.entries, name)
	for _, alias := range entry.Definition.QualifiedAliases() {
		delete(r.aliases, alias)
	}

	r.logger.Debug("command removed", "command", name)
	return true
}

// Lookup implements Registry
func (r *Dynamic) Lookup(name string) (*Entry, bool) {
	name = normalize(name)

	r.mutex.RLock()
	defer r.mutex.RUnlock()

	if entry, ok := r.entries[name]; ok {
		return entry, true
	}
	if owner, ok := r.aliases[name]; ok {
		return r.entries[owner], true
	}
	return nil, false
}

// Commands implements Registry
func (r *Dynamic) Commands() []*Entry {
	r.mutex.RLock()
	entries := make([]*Entry, 0, len(r.entries))
	for _, e := range r.entries {
		entries = append(entries, e)
	}
	r.mutex.RUnlock()

	sortEntries(entries)
	return entries
}

// Len implements Registry
func (r *Dynamic) Len() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.entries)
}

// Freeze builds an immutable Static registry from the current commands
func (r *Dynamic) Freeze() (*Static, error) {
	return NewStatic(r.Commands())
}
