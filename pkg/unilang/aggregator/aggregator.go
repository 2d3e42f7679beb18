// File: aggregator.go
// Title: Multi-Module Command Aggregation
// Description: Merges the command sets of independently built modules into
//              one dynamic registry. Module prefixes and namespace isolation
//              are applied first; remaining name and alias collisions are
//              resolved by the configured strategy and recorded in a
//              conflict report.
// Author: msto63
// Version: v0.1.0
// Created: 2025-10-07
// Modified: 2025-10-09
//
// Change History:
// - 2025-10-07 v0.1.0: Initial aggregator with FirstWins and Error
// - 2025-10-09 v0.1.0: LastWins, Merge and strict namespace isolation

package aggregator

import (
	"fmt"
	"strings"

	"github.com/msto63/unilang/pkg/core/logging"
	uerrors "github.com/msto63/unilang/pkg/unilang/errors"
	"github.com/msto63/unilang/pkg/unilang/registry"
	"github.com/msto63/unilang/pkg/unilang/types"
)

// NamespaceIsolation places each module's commands under a namespace
// segment derived from the module
type NamespaceIsolation struct {
	Enabled bool `toml:"enabled"`
	// Separator joins the global prefix and the module segment ("." or "_")
	Separator string `toml:"separator"`
	// Strict rejects a module whose segment is already claimed
	Strict bool `toml:"strict"`
}

// Config controls an aggregation run
type Config struct {
	Strategy        Strategy
	Isolation       NamespaceIsolation
	GlobalPrefix    string
	DetectConflicts bool
	Logger          *logging.Logger
}

// DefaultConfig returns FirstWins with conflict detection and without
// isolation
func DefaultConfig() Config {
	return Config{
		Strategy:        FirstWins,
		Isolation:       NamespaceIsolation{Separator: "."},
		DetectConflicts: true,
	}
}

// Module is one contributed command set
type Module struct {
	Name     string
	Prefix   string
	Disabled bool
	Entries  []*registry.Entry
}

// Aggregation is the outcome of Aggregate
type Aggregation struct {
	Registry *registry.Dynamic
	Report   ConflictReport
	// Sources maps each registered command to the module that supplied it
	Sources map[string]string
}

type candidate struct {
	entry  *registry.Entry
	source string
}

type aggregator struct {
	cfg      Config
	logger   *logging.Logger
	order    []string
	commands map[string]*candidate
	aliases  map[string]string // qualified alias -> command
	rejected map[string]bool
	report   ConflictReport
	errs     []*uerrors.Error
}

// Aggregate merges modules in order. The result is never nil: commands
// that were rejected are reported, everything else is registered. The
// returned error summarizes the rejections.
func Aggregate(cfg Config, modules ...Module) (*Aggregation, error) {
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.Isolation.Separator == "" {
		cfg.Isolation.Separator = "."
	}

	a := &aggregator{
		cfg:      cfg,
		logger:   cfg.Logger.WithField("component", "unilang-aggregator"),
		commands: make(map[string]*candidate),
		aliases:  make(map[string]string),
		rejected: make(map[string]bool),
	}

	claimed := make(map[string]string) // namespace segment -> module
	for _, m := range modules {
		if m.Disabled {
			a.logger.Debug("module disabled", "module", m.Name)
			continue
		}

		segment := a.segment(m)
		if a.cfg.Isolation.Enabled && a.cfg.Isolation.Strict && segment != "" {
			if owner, taken := claimed[segment]; taken {
				a.conflict(Conflict{
					Kind:         PrefixConflict,
					Name:         segment,
					FirstSource:  owner,
					SecondSource: m.Name,
					Resolution:   "module rejected",
				})
				a.errs = append(a.errs, uerrors.Newf(uerrors.CodeDuplicateCommand,
					"namespace '%s' of module '%s' is already claimed by module '%s'", segment, m.Name, owner).
					WithDetail("module", m.Name))
				continue
			}
			claimed[segment] = m.Name
		}

		for _, e := range m.Entries {
			if e == nil || e.Definition == nil {
				a.errs = append(a.errs, uerrors.InvalidDefinition("<nil>", fmt.Sprintf("module '%s' contains an empty entry", m.Name)))
				continue
			}
			a.add(a.place(e, segment), m.Name)
		}
	}

	return a.finish()
}

// segment returns the namespace prefix applied to a module's commands
func (a *aggregator) segment(m Module) string {
	prefix := strings.Trim(m.Prefix, ".")
	if prefix == "" && a.cfg.Isolation.Enabled {
		prefix = sanitize(m.Name)
	}
	global := strings.Trim(a.cfg.GlobalPrefix, ".")
	switch {
	case global == "":
		return prefix
	case prefix == "":
		return global
	default:
		return global + a.cfg.Isolation.Separator + prefix
	}
}

// sanitize turns a module name into an identifier segment
func sanitize(name string) string {
	var b strings.Builder
	for i, r := range name {
		switch {
		case r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			if i == 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// place copies the entry into the module namespace. Caller definitions are
// never modified.
func (a *aggregator) place(e *registry.Entry, segment string) *registry.Entry {
	def := *e.Definition
	def.Aliases = append([]string(nil), e.Definition.Aliases...)
	if segment != "" {
		ns := strings.Trim(def.Namespace, ".")
		if ns == "" {
			def.Namespace = "." + segment
		} else {
			def.Namespace = "." + segment + "." + ns
		}
	}
	return &registry.Entry{Definition: &def, Routine: e.Routine}
}

func (a *aggregator) add(e *registry.Entry, source string) {
	def := e.Definition
	if err := def.Validate(); err != nil {
		a.errs = append(a.errs, asError(err).WithDetail("module", source))
		a.logger.Warn("invalid definition skipped", "module", source, "command", def.FullName(), "error", err)
		return
	}
	name := def.FullName()

	if a.rejected[name] {
		a.conflict(Conflict{Kind: DuplicateName, Name: name, FirstSource: "<rejected>", SecondSource: source, Resolution: "rejected"})
		return
	}

	if existing, ok := a.commands[name]; ok {
		a.resolveDuplicate(existing, &candidate{entry: e, source: source})
		return
	}

	if owner, ok := a.aliases[name]; ok {
		first := a.commands[owner]
		c := Conflict{Kind: AmbiguousAlias, Name: name, FirstSource: first.source, SecondSource: source}
		switch a.cfg.Strategy {
		case LastWins:
			dropAlias(first.entry.Definition, name)
			delete(a.aliases, name)
			c.Resolution = fmt.Sprintf("alias removed from '%s'", owner)
		case Error:
			c.Resolution = "rejected"
			a.errs = append(a.errs, uerrors.AmbiguousAlias(name, owner, name).WithDetail("module", source))
			a.conflict(c)
			return
		default:
			c.Resolution = "kept first"
			a.conflict(c)
			return
		}
		a.conflict(c)
	}

	if !a.claimAliases(def, name, source) {
		return
	}
	a.commands[name] = &candidate{entry: e, source: source}
	a.order = append(a.order, name)
}

// claimAliases registers the aliases of a new command. Under Error a taken
// alias rejects the command, otherwise the alias is dropped from it.
func (a *aggregator) claimAliases(def *types.CommandDefinition, name, source string) bool {
	var taken []string
	for _, alias := range def.QualifiedAliases() {
		owner, isAlias := a.aliases[alias]
		if _, isName := a.commands[alias]; isName {
			owner, isAlias = alias, true
		}
		if alias == name {
			owner, isAlias = name, true
		}
		if !isAlias {
			continue
		}
		first := source
		if c, ok := a.commands[owner]; ok {
			first = c.source
		}
		c := Conflict{Kind: AmbiguousAlias, Name: alias, FirstSource: first, SecondSource: source}
		if a.cfg.Strategy == Error {
			c.Resolution = "rejected"
			a.conflict(c)
			a.errs = append(a.errs, uerrors.AmbiguousAlias(alias, owner, name).WithDetail("module", source))
			return false
		}
		c.Resolution = fmt.Sprintf("alias dropped from '%s'", name)
		a.conflict(c)
		taken = append(taken, alias)
	}

	for _, alias := range taken {
		dropAlias(def, alias)
	}
	for _, alias := range def.QualifiedAliases() {
		a.aliases[alias] = name
	}
	return true
}

func (a *aggregator) resolveDuplicate(first, second *candidate) {
	name := first.entry.Name()
	c := Conflict{Kind: DuplicateName, Name: name, FirstSource: first.source, SecondSource: second.source}

	switch a.cfg.Strategy {
	case LastWins:
		a.release(name)
		if a.claimAliases(second.entry.Definition, name, second.source) {
			a.commands[name] = second
			c.Resolution = "kept last"
		} else {
			a.drop(name)
			c.Resolution = "rejected"
		}

	case Error:
		a.release(name)
		a.drop(name)
		a.rejected[name] = true
		a.errs = append(a.errs, uerrors.DuplicateCommand(name).
			WithDetail("first", first.source).
			WithDetail("second", second.source))
		c.Resolution = "rejected"

	case Merge:
		merged, err := merge(first.entry, second.entry)
		if err != nil {
			a.logger.Warn("definitions not mergeable", "command", name, "error", err)
			c.Resolution = "kept first: " + err.Error()
			break
		}
		a.release(name)
		a.commands[name] = &candidate{entry: merged, source: first.source + "+" + second.source}
		a.claimAliases(merged.Definition, name, second.source)
		c.Resolution = "merged"

	default:
		c.Resolution = "kept first"
	}

	a.conflict(c)
}

// release frees the aliases held by a command
func (a *aggregator) release(name string) {
	for alias, owner := range a.aliases {
		if owner == name {
			delete(a.aliases, alias)
		}
	}
}

func (a *aggregator) drop(name string) {
	delete(a.commands, name)
	for i, n := range a.order {
		if n == name {
			a.order = append(a.order[:i], a.order[i+1:]...)
			break
		}
	}
}

func (a *aggregator) conflict(c Conflict) {
	a.logger.Warn("command conflict", "kind", c.Kind.String(), "name", c.Name,
		"first", c.FirstSource, "second", c.SecondSource, "resolution", c.Resolution)
	if a.cfg.DetectConflicts {
		a.report.Conflicts = append(a.report.Conflicts, c)
	}
}

func (a *aggregator) finish() (*Aggregation, error) {
	reg := registry.NewDynamic(registry.Options{Logger: a.cfg.Logger})
	agg := &Aggregation{Registry: reg, Report: a.report, Sources: make(map[string]string, len(a.order))}

	for _, name := range a.order {
		c := a.commands[name]
		if err := reg.Register(c.entry.Definition, c.entry.Routine); err != nil {
			a.errs = append(a.errs, asError(err).WithDetail("module", c.source))
			continue
		}
		agg.Sources[name] = c.source
	}

	a.logger.Info("aggregation complete", "commands", reg.Len(),
		"conflicts", len(agg.Report.Conflicts), "rejected", len(a.errs))

	if len(a.errs) == 0 {
		return agg, nil
	}
	first := a.errs[0]
	return agg, uerrors.Wrap(first, first.Code(),
		fmt.Sprintf("%d registration(s) rejected during aggregation", len(a.errs))).
		WithDetail("rejected", len(a.errs))
}

func asError(err error) *uerrors.Error {
	if ue, ok := uerrors.As(err); ok {
		return ue
	}
	return uerrors.Internal("registration failed", err)
}

// dropAlias removes the alias whose qualified form is qualified
func dropAlias(def *types.CommandDefinition, qualified string) {
	probe := types.CommandDefinition{Namespace: def.Namespace}
	kept := def.Aliases[:0]
	for _, alias := range def.Aliases {
		probe.Aliases = []string{alias}
		if probe.QualifiedAliases()[0] != qualified {
			kept = append(kept, alias)
		}
	}
	def.Aliases = kept
}
