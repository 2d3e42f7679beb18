package aggregator

import (
	"fmt"

	"github.com/msto63/unilang/pkg/unilang/registry"
	"github.com/msto63/unilang/pkg/unilang/types"
)

// merge combines two definitions of one command. The first definition is
// the base: its scalar metadata and routine win, empty fields are filled
// from the second, argument lists and the list-valued metadata are unioned.
// Arguments declared by both must agree on kind.
func merge(first, second *registry.Entry) (*registry.Entry, error) {
	a, b := first.Definition, second.Definition
	out := *a

	out.Arguments = append([]types.ArgumentDefinition(nil), a.Arguments...)
	for _, arg := range b.Arguments {
		existing, ok := out.Argument(arg.Name)
		if !ok {
			out.Arguments = append(out.Arguments, arg)
			continue
		}
		if existing.Name != arg.Name {
			return nil, fmt.Errorf("argument '%s' collides with an alias of '%s'", arg.Name, existing.Name)
		}
		if existing.Kind.String() != arg.Kind.String() {
			return nil, fmt.Errorf("argument '%s' is %s in one module and %s in the other",
				arg.Name, existing.Kind, arg.Kind)
		}
	}

	out.Aliases = union(a.Aliases, b.Aliases)
	out.Tags = union(a.Tags, b.Tags)
	out.Permissions = union(a.Permissions, b.Permissions)
	out.Examples = union(a.Examples, b.Examples)

	if out.Description == "" {
		out.Description = b.Description
	}
	if out.Hint == "" {
		out.Hint = b.Hint
	}
	if out.RoutineLink == "" {
		out.RoutineLink = b.RoutineLink
	}
	if out.HTTPMethodHint == "" {
		out.HTTPMethodHint = b.HTTPMethodHint
	}

	if err := out.Validate(); err != nil {
		return nil, err
	}

	routine := first.Routine
	if routine == nil {
		routine = second.Routine
	}
	return &registry.Entry{Definition: &out, Routine: routine}, nil
}

func union(a, b []string) []string {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, s := range list {
			if !seen[s] {
				seen[s] = true
				out = append(out, s)
			}
		}
	}
	return out
}
