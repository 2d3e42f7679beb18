// Package builtins provides the routines shipped with the unilang CLI and
// resolves routine links of loaded definitions against them.
package builtins

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/msto63/unilang/pkg/core/logging"
	uerrors "github.com/msto63/unilang/pkg/unilang/errors"
	"github.com/msto63/unilang/pkg/unilang/registry"
	"github.com/msto63/unilang/pkg/unilang/semantic"
	"github.com/msto63/unilang/pkg/unilang/types"
)

// LinkPrefix is prepended to a command's full name when its definition
// carries no routine link
const LinkPrefix = "builtin."

// Error codes returned by built-in routines
const (
	CodeDivisionByZero uerrors.Code = "MATH_DIVISION_BY_ZERO"
	CodeKeyMissing     uerrors.Code = "STORE_KEY_MISSING"
)

// Catalog maps routine links to routines
type Catalog struct {
	routines map[string]registry.Routine
	logger   *logging.Logger
}

// NewCatalog returns a catalog holding the built-in routines
func NewCatalog(logger *logging.Logger) *Catalog {
	if logger == nil {
		logger = logging.Default()
	}
	c := &Catalog{
		routines: make(map[string]registry.Routine),
		logger:   logger.WithField("component", "unilang-builtins"),
	}
	c.Add("builtin.echo", registry.ContextFree(echo))
	c.Add("builtin.math.add", registry.ContextFree(arithmetic(func(a, b float64) (float64, error) { return a + b, nil })))
	c.Add("builtin.math.sub", registry.ContextFree(arithmetic(func(a, b float64) (float64, error) { return a - b, nil })))
	c.Add("builtin.math.mul", registry.ContextFree(arithmetic(func(a, b float64) (float64, error) { return a * b, nil })))
	c.Add("builtin.math.div", registry.ContextFree(arithmetic(divide)))
	c.Add("builtin.store.set", registry.ContextAware(storeSet))
	c.Add("builtin.store.get", registry.ContextAware(storeGet))
	return c
}

// Add registers or replaces the routine for link
func (c *Catalog) Add(link string, routine registry.Routine) {
	c.routines[link] = routine
}

// Links returns the known routine links in sorted order
func (c *Catalog) Links() []string {
	links := make([]string, 0, len(c.routines))
	for link := range c.routines {
		links = append(links, link)
	}
	sort.Strings(links)
	return links
}

// Resolve returns the routine for def. An unknown link resolves to a
// routine that fails with NotImplemented.
func (c *Catalog) Resolve(def *types.CommandDefinition) registry.Routine {
	link := def.RoutineLink
	if link == "" {
		link = LinkPrefix + def.FullName()
	}
	if routine, ok := c.routines[link]; ok {
		return routine
	}

	name := def.FullName()
	c.logger.Debug("routine link unresolved", "command", name, "link", link)
	return registry.ContextFree(func(*semantic.VerifiedCommand) (*types.OutputData, error) {
		return nil, uerrors.NotImplemented(name, link)
	})
}

// Bind pairs each definition with its resolved routine
func (c *Catalog) Bind(defs []*types.CommandDefinition) []*registry.Entry {
	entries := make([]*registry.Entry, 0, len(defs))
	for _, def := range defs {
		entries = append(entries, &registry.Entry{Definition: def, Routine: c.Resolve(def)})
	}
	return entries
}

// Entries returns the built-in definitions bound to their routines
func (c *Catalog) Entries() []*registry.Entry {
	return c.Bind(Definitions())
}

func operand(name string) types.ArgumentDefinition {
	return types.ArgumentDefinition{Name: name, Kind: types.Float, Hint: "operand"}
}

// Definitions returns fresh copies of the built-in command definitions
func Definitions() []*types.CommandDefinition {
	math := func(name, description string, aliases ...string) *types.CommandDefinition {
		return &types.CommandDefinition{
			Name:        name,
			Namespace:   ".math",
			Description: description,
			Hint:        description,
			Arguments:   []types.ArgumentDefinition{operand("a"), operand("b")},
			Aliases:     aliases,
			Tags:        []string{"math"},
			Idempotent:  true,
			Examples:    []string{fmt.Sprintf(".math.%s a::6 b::3", name)},
			RoutineLink: "builtin.math." + name,
		}
	}

	defs := []*types.CommandDefinition{
		{
			Name:        "echo",
			Description: "Print the given text",
			Hint:        "print text",
			Arguments: []types.ArgumentDefinition{{
				Name:       "text",
				Kind:       types.String,
				Hint:       "words to print",
				Attributes: types.ArgumentAttributes{Optional: true, Multiple: true},
			}},
			Idempotent:  true,
			Examples:    []string{".echo hello world", ".echo text::\"hello world\""},
			RoutineLink: "builtin.echo",
		},
		math("add", "Add two numbers", "plus"),
		math("sub", "Subtract b from a", "minus"),
		math("mul", "Multiply two numbers"),
		math("div", "Divide a by b"),
		{
			Name:        "set",
			Namespace:   ".store",
			Description: "Store a value for later instructions of the session",
			Arguments: []types.ArgumentDefinition{
				{Name: "key", Kind: types.String, Aliases: []string{"k"}},
				{Name: "value", Kind: types.String, Aliases: []string{"v"}},
			},
			Tags:        []string{"store"},
			Examples:    []string{".store.set key::user value::ada ;; .store.get key::user"},
			RoutineLink: "builtin.store.set",
		},
		{
			Name:        "get",
			Namespace:   ".store",
			Description: "Print a stored value",
			Arguments: []types.ArgumentDefinition{
				{Name: "key", Kind: types.String, Aliases: []string{"k"}},
			},
			Tags:        []string{"store"},
			Idempotent:  true,
			RoutineLink: "builtin.store.get",
		},
	}
	for _, def := range defs {
		def.ApplyDefaults()
	}
	return defs
}

func echo(cmd *semantic.VerifiedCommand) (*types.OutputData, error) {
	words, _ := cmd.List("text")
	parts := make([]string, len(words))
	for i, w := range words {
		parts[i] = w.String()
	}
	return types.TextOutput(strings.Join(parts, " ")), nil
}

func arithmetic(op func(a, b float64) (float64, error)) registry.ContextFreeFunc {
	return func(cmd *semantic.VerifiedCommand) (*types.OutputData, error) {
		a, err := cmd.RequireFloat("a")
		if err != nil {
			return nil, err
		}
		b, err := cmd.RequireFloat("b")
		if err != nil {
			return nil, err
		}
		result, err := op(a, b)
		if err != nil {
			return nil, err
		}
		return types.TextOutput(strconv.FormatFloat(result, 'g', -1, 64)), nil
	}
}

func divide(a, b float64) (float64, error) {
	if b == 0 {
		return 0, types.NewErrorData(CodeDivisionByZero, "division by zero")
	}
	return a / b, nil
}

func storeSet(_ context.Context, cmd *semantic.VerifiedCommand, ec *types.ExecutionContext) (*types.OutputData, error) {
	key, err := cmd.RequireString("key")
	if err != nil {
		return nil, err
	}
	value, err := cmd.RequireString("value")
	if err != nil {
		return nil, err
	}
	ec.Store.Set(key, value)
	return types.TextOutput(""), nil
}

func storeGet(_ context.Context, cmd *semantic.VerifiedCommand, ec *types.ExecutionContext) (*types.OutputData, error) {
	key, err := cmd.RequireString("key")
	if err != nil {
		return nil, err
	}
	value, ok := ec.Store.Get(key)
	if !ok {
		return nil, types.NewErrorData(CodeKeyMissing, fmt.Sprintf("no value stored for key '%s'", key))
	}
	return types.TextOutput(fmt.Sprint(value)), nil
}
