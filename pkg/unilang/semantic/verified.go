package semantic

import (
	"fmt"
	"sort"

	uerrors "github.com/msto63/unilang/pkg/unilang/errors"
	"github.com/msto63/unilang/pkg/unilang/types"
)

// MaskedValue replaces sensitive argument values in logs and audit records
const MaskedValue = "***"

// VerifiedCommand is an instruction after successful binding and coercion.
// It is never mutated after the verifier returns it.
type VerifiedCommand struct {
	Definition *types.CommandDefinition
	Arguments  map[string]types.Value
}

// Name returns the qualified command name
func (c *VerifiedCommand) Name() string {
	return c.Definition.FullName()
}

// Has reports whether the argument has a value
func (c *VerifiedCommand) Has(name string) bool {
	_, ok := c.Arguments[name]
	return ok
}

// Value returns the raw value of an argument
func (c *VerifiedCommand) Value(name string) (types.Value, bool) {
	v, ok := c.Arguments[name]
	return v, ok
}

// String returns a string-like argument (String, Enum, Path, JsonString)
func (c *VerifiedCommand) String(name string) (string, bool) {
	switch v := c.Arguments[name].(type) {
	case types.StringValue:
		return string(v), true
	case types.EnumValue:
		return string(v), true
	case types.JSONValue:
		return string(v), true
	case types.PathValue:
		return v.Path, true
	}
	return "", false
}

// Integer returns an Integer argument
func (c *VerifiedCommand) Integer(name string) (int64, bool) {
	v, ok := c.Arguments[name].(types.IntegerValue)
	return int64(v), ok
}

// Float returns a Float argument; Integer values are widened
func (c *VerifiedCommand) Float(name string) (float64, bool) {
	switch v := c.Arguments[name].(type) {
	case types.FloatValue:
		return float64(v), true
	case types.IntegerValue:
		return float64(v), true
	}
	return 0, false
}

// Bool returns a Boolean argument
func (c *VerifiedCommand) Bool(name string) (bool, bool) {
	v, ok := c.Arguments[name].(types.BoolValue)
	return bool(v), ok
}

// List returns a List argument, including Multiple arguments
func (c *VerifiedCommand) List(name string) (types.ListValue, bool) {
	v, ok := c.Arguments[name].(types.ListValue)
	return v, ok
}

// RequireString is String for routines that cannot proceed without the value
func (c *VerifiedCommand) RequireString(name string) (string, error) {
	if s, ok := c.String(name); ok {
		return s, nil
	}
	return "", c.missing(name, "string")
}

// RequireInteger is Integer for routines that cannot proceed without the value
func (c *VerifiedCommand) RequireInteger(name string) (int64, error) {
	if n, ok := c.Integer(name); ok {
		return n, nil
	}
	return 0, c.missing(name, "integer")
}

// RequireFloat is Float for routines that cannot proceed without the value
func (c *VerifiedCommand) RequireFloat(name string) (float64, error) {
	if f, ok := c.Float(name); ok {
		return f, nil
	}
	return 0, c.missing(name, "float")
}

func (c *VerifiedCommand) missing(name, kind string) error {
	if !c.Has(name) {
		return uerrors.ArgumentMissing(name)
	}
	return uerrors.Internal(fmt.Sprintf("argument '%s' of command '%s' is not a %s", name, c.Name(), kind), nil)
}

// Masked renders all arguments as strings with sensitive values replaced
func (c *VerifiedCommand) Masked() map[string]string {
	out := make(map[string]string, len(c.Arguments))
	for name, v := range c.Arguments {
		if arg, ok := c.Definition.Argument(name); ok && arg.Attributes.Sensitive {
			out[name] = MaskedValue
			continue
		}
		out[name] = v.String()
	}
	return out
}

// ArgumentNames returns the bound argument names in sorted order
func (c *VerifiedCommand) ArgumentNames() []string {
	names := make([]string, 0, len(c.Arguments))
	for name := range c.Arguments {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
