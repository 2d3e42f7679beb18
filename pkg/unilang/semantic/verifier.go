// File: verifier.go
// Title: Semantic Verifier
// Description: Binds a parsed instruction against a command definition.
//              Named arguments bind by exact name, then alias; positional
//              arguments fill the remaining slots in declaration order;
//              defaults are applied, values coerced and validation rules
//              checked. A command either verifies completely or not at all.
// Author: msto63
// Version: v0.1.0
// Created: 2025-10-03
// Modified: 2025-10-08
//
// Change History:
// - 2025-10-03 v0.1.0: Initial verifier
// - 2025-10-08 v0.1.0: Interactive arguments and parameter suggestions

package semantic

import (
	"github.com/msto63/unilang/pkg/core/logging"
	"github.com/msto63/unilang/pkg/unilang/ast"
	uerrors "github.com/msto63/unilang/pkg/unilang/errors"
	"github.com/msto63/unilang/pkg/unilang/types"
)

// Options configures the verifier
type Options struct {
	Logger *logging.Logger

	// SuggestionDistance bounds "did you mean" hints for unknown parameters.
	// Zero selects DefaultSuggestionDistance, a negative value disables them.
	SuggestionDistance int
}

// Verifier binds instructions to definitions. It holds no per-call state
// and is safe for concurrent use.
type Verifier struct {
	logger   *logging.Logger
	distance int
}

// New creates a verifier
func New(opts Options) *Verifier {
	if opts.Logger == nil {
		opts.Logger = logging.Default()
	}
	if opts.SuggestionDistance == 0 {
		opts.SuggestionDistance = DefaultSuggestionDistance
	}
	return &Verifier{
		logger:   opts.Logger.WithField("component", "unilang-verifier"),
		distance: opts.SuggestionDistance,
	}
}

// binding is the raw text bound to one argument definition
type binding struct {
	def    *types.ArgumentDefinition
	args   []ast.Argument
	defval *string
}

// Verify binds instr against def
func (v *Verifier) Verify(instr *ast.GenericInstruction, def *types.CommandDefinition) (*VerifiedCommand, error) {
	command := def.FullName()
	bound := make(map[string]*binding, len(def.Arguments))

	if err := v.bindNamed(instr, def, bound); err != nil {
		v.logger.Debug("verification failed", "command", command, "stage", "named", "error", err)
		return nil, err
	}
	if err := bindPositional(instr, def, bound); err != nil {
		v.logger.Debug("verification failed", "command", command, "stage", "positional", "error", err)
		return nil, err
	}
	if err := applyDefaults(def, bound); err != nil {
		v.logger.Debug("verification failed", "command", command, "stage", "defaults", "error", err)
		return nil, err
	}

	values, err := coerce(def, bound)
	if err != nil {
		v.logger.Debug("verification failed", "command", command, "stage", "coercion", "error", err)
		return nil, err
	}
	if err := validate(def, bound, values); err != nil {
		v.logger.Debug("verification failed", "command", command, "stage", "validation", "error", err)
		return nil, err
	}

	v.logger.Debug("command verified", "command", command, "arguments", len(values))
	return &VerifiedCommand{Definition: def, Arguments: values}, nil
}

func (v *Verifier) bindNamed(instr *ast.GenericInstruction, def *types.CommandDefinition, bound map[string]*binding) error {
	var (
		unknown     []string
		unknownLoc  *ast.Location
		suggestions map[string]string
		duplicate   error
	)

	for _, arg := range instr.OrderedNamed() {
		target, ok := def.Argument(arg.Name)
		if !ok {
			unknown = append(unknown, arg.Name)
			if unknownLoc == nil {
				loc := arg.NameLocation
				unknownLoc = &loc
			}
			if s, found := v.suggestParameter(arg.Name, def); found {
				if suggestions == nil {
					suggestions = make(map[string]string)
				}
				suggestions[arg.Name] = s
			}
			continue
		}

		if _, taken := bound[target.Name]; taken {
			if duplicate == nil {
				duplicate = uerrors.ArgumentDuplicate(target.Name, arg.Name).WithLocation(arg.NameLocation)
			}
			continue
		}
		bound[target.Name] = &binding{def: target, args: []ast.Argument{arg}}
	}

	if len(unknown) > 0 {
		return uerrors.ArgumentUnknown(def.FullName(), unknown, suggestions).WithLocation(*unknownLoc)
	}
	return duplicate
}

func (v *Verifier) suggestParameter(name string, def *types.CommandDefinition) (string, bool) {
	if v.distance < 0 {
		return "", false
	}
	var candidates []string
	for _, a := range def.Arguments {
		candidates = append(candidates, a.Name)
		candidates = append(candidates, a.Aliases...)
	}
	return closest(name, candidates, v.distance)
}

func bindPositional(instr *ast.GenericInstruction, def *types.CommandDefinition, bound map[string]*binding) error {
	positional := instr.PositionalArguments
	next := 0

	for i := range def.Arguments {
		if next >= len(positional) {
			return nil
		}
		arg := &def.Arguments[i]
		if _, taken := bound[arg.Name]; taken {
			continue
		}
		if arg.Attributes.Multiple {
			bound[arg.Name] = &binding{def: arg, args: positional[next:]}
			return nil
		}
		bound[arg.Name] = &binding{def: arg, args: positional[next : next+1]}
		next++
	}

	if next < len(positional) {
		return uerrors.ArgumentSurplus(def.FullName(), next, len(positional)).
			WithLocation(positional[next].ValueLocation)
	}
	return nil
}

func applyDefaults(def *types.CommandDefinition, bound map[string]*binding) error {
	for i := range def.Arguments {
		arg := &def.Arguments[i]
		if _, ok := bound[arg.Name]; ok {
			continue
		}
		switch {
		case arg.Attributes.Default != nil:
			bound[arg.Name] = &binding{def: arg, defval: arg.Attributes.Default}
		case arg.Attributes.Optional:
		case arg.Attributes.Interactive:
			return uerrors.ArgumentInteractiveRequired(arg.Name, arg.Hint)
		default:
			return uerrors.ArgumentMissing(arg.Name)
		}
	}
	return nil
}

func coerce(def *types.CommandDefinition, bound map[string]*binding) (map[string]types.Value, error) {
	values := make(map[string]types.Value, len(bound))

	for i := range def.Arguments {
		arg := &def.Arguments[i]
		b, ok := bound[arg.Name]
		if !ok {
			continue
		}

		if b.defval != nil {
			v, err := coerceOne(arg, *b.defval, nil)
			if err != nil {
				return nil, err
			}
			if arg.Attributes.Multiple {
				v = types.ListValue{v}
			}
			values[arg.Name] = v
			continue
		}

		if arg.Attributes.Multiple {
			list := make(types.ListValue, 0, len(b.args))
			for _, a := range b.args {
				loc := a.ValueLocation
				v, err := coerceOne(arg, a.Value, &loc)
				if err != nil {
					return nil, err
				}
				list = append(list, v)
			}
			values[arg.Name] = list
			continue
		}

		loc := b.args[0].ValueLocation
		v, err := coerceOne(arg, b.args[0].Value, &loc)
		if err != nil {
			return nil, err
		}
		values[arg.Name] = v
	}

	return values, nil
}

func coerceOne(arg *types.ArgumentDefinition, raw string, loc *ast.Location) (types.Value, error) {
	v, err := types.ParseValue(raw, arg.Kind)
	if err != nil {
		shown, cause := raw, err
		if arg.Attributes.Sensitive {
			shown, cause = MaskedValue, nil
		}
		e := uerrors.TypeMismatch(arg.Name, shown, arg.Kind.String(), cause)
		if loc != nil {
			e.WithLocation(*loc)
		}
		return nil, e
	}
	return v, nil
}

func validate(def *types.CommandDefinition, bound map[string]*binding, values map[string]types.Value) error {
	for i := range def.Arguments {
		arg := &def.Arguments[i]
		value, ok := values[arg.Name]
		if !ok {
			continue
		}
		for _, rule := range arg.ValidationRules {
			if err := rule.Apply(value); err != nil {
				reason := err.Error()
				if arg.Attributes.Sensitive {
					reason = "value rejected"
				}
				e := uerrors.ValidationFailed(arg.Name, rule.String(), reason)
				if b := bound[arg.Name]; len(b.args) > 0 {
					e.WithLocation(ast.Span(b.args[0].ValueLocation, b.args[len(b.args)-1].ValueLocation))
				}
				return e
			}
		}
	}
	return nil
}
