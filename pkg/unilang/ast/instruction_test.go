package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocation(t *testing.T) {
	a := Location{Start: 4, End: 9}
	b := Location{Start: 1, End: 6}

	assert.Equal(t, Location{Start: 1, End: 9}, Span(a, b))
	assert.Equal(t, Location{Start: 1, End: 9}, Span(b, a))
	assert.Equal(t, 5, a.Len())
	assert.Equal(t, "4..9", a.String())
}

func TestGenericInstruction(t *testing.T) {
	g := NewInstruction()
	assert.True(t, g.IsEmpty())
	assert.Equal(t, "", g.CommandName())

	g.CommandPath = []string{"math", "add"}
	g.NamedArguments["b"] = Argument{Name: "b", Value: "2", NameLocation: Location{Start: 15, End: 16}}
	g.NamedArguments["a"] = Argument{Name: "a", Value: "1", NameLocation: Location{Start: 10, End: 11}}
	g.PositionalArguments = append(g.PositionalArguments, Argument{Value: "hello world"})

	assert.False(t, g.IsEmpty())
	assert.Equal(t, "math.add", g.CommandName())

	named := g.OrderedNamed()
	if assert.Len(t, named, 2) {
		assert.Equal(t, "a", named[0].Name)
		assert.True(t, named[0].IsNamed())
	}
	assert.False(t, g.PositionalArguments[0].IsNamed())

	assert.Equal(t, `.math.add a::1 b::2 "hello world"`, g.String())

	g.HelpRequested = true
	assert.Equal(t, `.math.add a::1 b::2 "hello world" ?`, g.String())
}

func TestQuoteIfNeeded(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"", `""`},
		{"echo test", `"echo test"`},
		{`say "hi"`, `"say \"hi\""`},
		{"a;;b", `"a;;b"`},
		{"line\nbreak", `"line\nbreak"`},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, quoteIfNeeded(tt.in))
		})
	}
}
