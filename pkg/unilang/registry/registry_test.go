package registry

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msto63/unilang/pkg/core/logging"
	uerrors "github.com/msto63/unilang/pkg/unilang/errors"
	"github.com/msto63/unilang/pkg/unilang/semantic"
	"github.com/msto63/unilang/pkg/unilang/types"
)

func newTestRegistry() *Dynamic {
	return NewDynamic(Options{Logger: logging.Discard()})
}

func echoRoutine(text string) *ContextFreeRoutine {
	return ContextFree(func(*semantic.VerifiedCommand) (*types.OutputData, error) {
		return types.TextOutput(text), nil
	})
}

func def(namespace, name string, aliases ...string) *types.CommandDefinition {
	return &types.CommandDefinition{Name: name, Namespace: namespace, Aliases: aliases}
}

func TestDynamic_RegisterAndLookup(t *testing.T) {
	r := newTestRegistry()
	add := echoRoutine("add")
	require.NoError(t, r.Register(def(".math", "add", "plus"), add))
	require.NoError(t, r.Register(def("", "echo"), nil))

	for _, name := range []string{"math.add", ".math.add", "math.plus", ".math.plus"} {
		t.Run(name, func(t *testing.T) {
			e, ok := r.Lookup(name)
			require.True(t, ok)
			assert.Equal(t, "math.add", e.Name())
			assert.Same(t, add, e.Routine)
		})
	}

	e, ok := r.Lookup("echo")
	require.True(t, ok)
	assert.Nil(t, e.Routine)

	_, ok = r.Lookup("math")
	assert.False(t, ok)
	assert.Equal(t, 2, r.Len())
	assert.Equal(t, []string{"echo", "math.add", "math.plus"}, Names(r))
}

func TestDynamic_RegisterErrors(t *testing.T) {
	r := newTestRegistry()
	require.NoError(t, r.Register(def("math", "add", "plus"), nil))

	tests := []struct {
		name string
		def  *types.CommandDefinition
		code uerrors.Code
	}{
		{"nil definition", nil, uerrors.CodeInvalidDefinition},
		{"invalid definition", def("", "bad-name"), uerrors.CodeInvalidDefinition},
		{"duplicate name", def("math", "add"), uerrors.CodeDuplicateCommand},
		{"duplicate with dot", def(".math", ".add"), uerrors.CodeDuplicateCommand},
		{"name is existing alias", def("math", "plus"), uerrors.CodeAmbiguousAlias},
		{"alias is existing name", def("math", "sum", "add"), uerrors.CodeAmbiguousAlias},
		{"alias is existing alias", def("math", "sum", "plus"), uerrors.CodeAmbiguousAlias},
		{"alias repeats own name", def("math", "sum", "sum"), uerrors.CodeAmbiguousAlias},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := r.Register(tt.def, nil)
			require.Error(t, err)
			assert.True(t, uerrors.HasCode(err, tt.code), "got %v", err)
		})
	}

	// Failed registrations leave the registry untouched
	assert.Equal(t, 1, r.Len())
	_, ok := r.Lookup("math.sum")
	assert.False(t, ok)
}

func TestDynamic_Remove(t *testing.T) {
	r := newTestRegistry()
	require.NoError(t, r.Register(def("math", "add", "plus"), nil))
	require.NoError(t, r.Register(def("math", "sub"), nil))

	assert.True(t, r.Remove(".math.plus"))
	_, ok := r.Lookup("math.add")
	assert.False(t, ok)
	_, ok = r.Lookup("math.plus")
	assert.False(t, ok)
	assert.False(t, r.Remove("math.add"))
	assert.Equal(t, 1, r.Len())

	// Name and alias are free again
	require.NoError(t, r.Register(def("math", "plus"), nil))
}

func TestDynamic_MustRegister(t *testing.T) {
	r := newTestRegistry()
	r.MustRegister(def("", "a"), nil)
	assert.Panics(t, func() { r.MustRegister(def("", "a"), nil) })
}

func TestDynamic_ConcurrentAccess(t *testing.T) {
	r := newTestRegistry()
	var wg sync.WaitGroup

	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				_ = r.Register(def(fmt.Sprintf("w%d", w), fmt.Sprintf("c%d", i)), nil)
			}
		}(w)
	}
	for rd := 0; rd < 4; rd++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				r.Lookup("w0.c1")
				r.Commands()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 200, r.Len())
}

func TestStatic_Empty(t *testing.T) {
	s, err := NewStatic(nil)
	require.NoError(t, err)
	_, ok := s.Lookup("anything")
	assert.False(t, ok)
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.Commands())
}

func TestStatic_Errors(t *testing.T) {
	_, err := NewStatic([]*Entry{{Definition: def("", "a")}, {Definition: def("", "a")}})
	assert.True(t, uerrors.HasCode(err, uerrors.CodeDuplicateCommand))

	_, err = NewStatic([]*Entry{{Definition: def("", "a", "x")}, {Definition: def("", "b", "x")}})
	assert.True(t, uerrors.HasCode(err, uerrors.CodeAmbiguousAlias))

	_, err = NewStatic([]*Entry{{Definition: def("", "a", "b")}, {Definition: def("", "b")}})
	assert.True(t, uerrors.HasCode(err, uerrors.CodeAmbiguousAlias))

	_, err = NewStatic([]*Entry{nil})
	assert.True(t, uerrors.HasCode(err, uerrors.CodeInvalidDefinition))
}

func TestStatic_DynamicEquivalence(t *testing.T) {
	for _, n := range []int{1, 2, 7, 64, 500} {
		t.Run(fmt.Sprintf("%d commands", n), func(t *testing.T) {
			dyn := newTestRegistry()
			for i := 0; i < n; i++ {
				var aliases []string
				if i%3 == 0 {
					aliases = []string{fmt.Sprintf("alias%d", i)}
				}
				d := def(fmt.Sprintf("ns%d", i%10), fmt.Sprintf("cmd%d", i), aliases...)
				require.NoError(t, dyn.Register(d, echoRoutine(d.FullName())))
			}

			static, err := dyn.Freeze()
			require.NoError(t, err)
			assert.Equal(t, dyn.Len(), static.Len())
			assert.Equal(t, len(Names(dyn)), static.Keys())

			for _, name := range Names(dyn) {
				de, dok := dyn.Lookup(name)
				se, sok := static.Lookup(name)
				require.True(t, dok, name)
				require.True(t, sok, name)
				assert.Same(t, de.Definition, se.Definition, name)
				assert.Same(t, de.Routine, se.Routine, name)

				se, sok = static.Lookup("." + name)
				require.True(t, sok)
				assert.Same(t, de.Definition, se.Definition)
			}

			for _, missing := range []string{"", ".", "ns0", "cmd0", "ns0.cmd", "ns0.cmd0x", "unknown.command", "NS0.CMD0"} {
				_, dok := dyn.Lookup(missing)
				_, sok := static.Lookup(missing)
				assert.False(t, dok, missing)
				assert.False(t, sok, missing)
			}

			assert.Equal(t, dyn.Commands(), static.Commands())
		})
	}
}

func TestStatic_ConcurrentReads(t *testing.T) {
	var entries []*Entry
	for i := 0; i < 32; i++ {
		entries = append(entries, &Entry{Definition: def("app", fmt.Sprintf("c%d", i))})
	}
	s, err := NewStatic(entries)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 32; i++ {
				e, ok := s.Lookup(fmt.Sprintf("app.c%d", i))
				assert.True(t, ok)
				assert.Equal(t, fmt.Sprintf("app.c%d", i), e.Name())
			}
		}()
	}
	wg.Wait()
}

func TestRoutines(t *testing.T) {
	free := ContextFree(func(cmd *semantic.VerifiedCommand) (*types.OutputData, error) {
		return types.TextOutput("free:" + cmd.Name()), nil
	})
	aware := ContextAware(func(_ context.Context, cmd *semantic.VerifiedCommand, ec *types.ExecutionContext) (*types.OutputData, error) {
		ec.Store.Set("last", cmd.Name())
		return types.TextOutput(fmt.Sprintf("aware:%d", ec.Index)), nil
	})

	cmd := &semantic.VerifiedCommand{Definition: def("", "x"), Arguments: map[string]types.Value{}}
	ec := types.NewExecutionContext().ForInstruction(3)

	out, err := free.Invoke(context.Background(), cmd, ec)
	require.NoError(t, err)
	assert.Equal(t, "free:x", out.Content)

	out, err = aware.Invoke(context.Background(), cmd, ec)
	require.NoError(t, err)
	assert.Equal(t, "aware:3", out.Content)
	last, _ := ec.Store.Get("last")
	assert.Equal(t, "x", last)
}
