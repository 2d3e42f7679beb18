package semantic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msto63/unilang/pkg/core/logging"
	"github.com/msto63/unilang/pkg/unilang/ast"
	uerrors "github.com/msto63/unilang/pkg/unilang/errors"
	"github.com/msto63/unilang/pkg/unilang/parser"
	"github.com/msto63/unilang/pkg/unilang/types"
)

func strPtr(s string) *string { return &s }

func mathAdd() *types.CommandDefinition {
	return &types.CommandDefinition{
		Name:      "add",
		Namespace: ".math",
		Arguments: []types.ArgumentDefinition{
			{Name: "a", Kind: types.Integer},
			{Name: "b", Kind: types.Integer},
		},
	}
}

func execRun() *types.CommandDefinition {
	return &types.CommandDefinition{
		Name:      "run",
		Namespace: "exec",
		Arguments: []types.ArgumentDefinition{
			{Name: "cmd", Kind: types.String},
			{Name: "threads", Kind: types.Integer, Aliases: []string{"t"},
				Attributes: types.ArgumentAttributes{Optional: true}},
		},
	}
}

func parse(t *testing.T, input string) *ast.GenericInstruction {
	t.Helper()
	p, err := parser.New(parser.Options{Logger: logging.Discard()})
	require.NoError(t, err)
	instr, err := p.ParseSingle(input)
	require.NoError(t, err)
	return instr
}

func verify(t *testing.T, input string, def *types.CommandDefinition) (*VerifiedCommand, error) {
	t.Helper()
	return New(Options{Logger: logging.Discard()}).Verify(parse(t, input), def)
}

func TestVerify_MathAdd(t *testing.T) {
	def := mathAdd()
	cmd, err := verify(t, ".math.add a::1 b::2", def)
	require.NoError(t, err)

	assert.Same(t, def, cmd.Definition)
	assert.Equal(t, "math.add", cmd.Name())
	assert.Equal(t, map[string]types.Value{
		"a": types.IntegerValue(1),
		"b": types.IntegerValue(2),
	}, cmd.Arguments)
}

func TestVerify_QuoteTransparency(t *testing.T) {
	def := &types.CommandDefinition{
		Name:      "cmd",
		Arguments: []types.ArgumentDefinition{{Name: "key", Kind: types.String}},
	}

	double, err := verify(t, `cmd key::"a b c"`, def)
	require.NoError(t, err)
	single, err := verify(t, `cmd key::'a b c'`, def)
	require.NoError(t, err)

	assert.Equal(t, types.StringValue("a b c"), double.Arguments["key"])
	assert.Equal(t, double, single)
}

func TestVerify_AliasDeterminism(t *testing.T) {
	def := execRun()

	byAlias, err := verify(t, `.exec.run cmd::x t::4`, def)
	require.NoError(t, err)
	byName, err := verify(t, `.exec.run cmd::x threads::4`, def)
	require.NoError(t, err)

	assert.Equal(t, byName, byAlias)
	n, ok := byAlias.Integer("threads")
	assert.True(t, ok)
	assert.Equal(t, int64(4), n)
}

func TestVerify_QuotedValueDoesNotLeakIntoAlias(t *testing.T) {
	cmd, err := verify(t, `.exec.run cmd::"echo test"`, execRun())
	require.NoError(t, err)

	s, ok := cmd.String("cmd")
	assert.True(t, ok)
	assert.Equal(t, "echo test", s)
	assert.False(t, cmd.Has("threads"))
	assert.Len(t, cmd.Arguments, 1)
}

func TestVerify_UnquotedValueEndsAtWhitespace(t *testing.T) {
	_, err := verify(t, `.exec.run cmd::echo test`, execRun())
	require.Error(t, err)
	assert.True(t, uerrors.HasCode(err, uerrors.CodeTypeMismatch))

	e, _ := uerrors.As(err)
	param, _ := e.Detail("parameter")
	raw, _ := e.Detail("value")
	assert.Equal(t, "threads", param)
	assert.Equal(t, "test", raw)
}

func TestVerify_Binding(t *testing.T) {
	def := &types.CommandDefinition{
		Name: "copy",
		Arguments: []types.ArgumentDefinition{
			{Name: "src", Kind: types.String},
			{Name: "mode", Kind: types.EnumOf("fast", "safe"), Attributes: types.ArgumentAttributes{Default: strPtr("safe")}},
			{Name: "dst", Kind: types.String},
		},
	}

	tests := []struct {
		name     string
		input    string
		expected map[string]types.Value
	}{
		{
			name:  "positional fill declaration order",
			input: "copy a fast b",
			expected: map[string]types.Value{
				"src": types.StringValue("a"), "mode": types.EnumValue("fast"), "dst": types.StringValue("b"),
			},
		},
		{
			name:  "named skips slot",
			input: "copy mode::fast a b",
			expected: map[string]types.Value{
				"src": types.StringValue("a"), "mode": types.EnumValue("fast"), "dst": types.StringValue("b"),
			},
		},
		{
			name:  "all named",
			input: "copy dst::b src::a",
			expected: map[string]types.Value{
				"src": types.StringValue("a"), "mode": types.EnumValue("safe"), "dst": types.StringValue("b"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := verify(t, tt.input, def)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, cmd.Arguments)
		})
	}
}

func TestVerify_Multiple(t *testing.T) {
	def := &types.CommandDefinition{
		Name: "cat",
		Arguments: []types.ArgumentDefinition{
			{Name: "number", Kind: types.Boolean, Attributes: types.ArgumentAttributes{Optional: true}},
			{Name: "files", Kind: types.String, Attributes: types.ArgumentAttributes{Multiple: true},
				ValidationRules: []types.ValidationRule{types.MustParseRule("minitems:2")}},
		},
	}

	cmd, err := verify(t, "cat number::yes a b c", def)
	require.NoError(t, err)
	files, ok := cmd.List("files")
	require.True(t, ok)
	assert.Equal(t, types.ListValue{types.StringValue("a"), types.StringValue("b"), types.StringValue("c")}, files)

	_, err = verify(t, "cat number::yes a", def)
	assert.True(t, uerrors.HasCode(err, uerrors.CodeValidationFailed))

	single, err := verify(t, "cat files::a number::no", &types.CommandDefinition{
		Name:      "cat",
		Arguments: def.Arguments[:1:1],
	})
	assert.Nil(t, single)
	assert.True(t, uerrors.HasCode(err, uerrors.CodeArgumentUnknown))
}

func TestVerify_MultipleNamedAndDefault(t *testing.T) {
	def := &types.CommandDefinition{
		Name: "tag",
		Arguments: []types.ArgumentDefinition{
			{Name: "labels", Kind: types.String, Attributes: types.ArgumentAttributes{Multiple: true, Default: strPtr("none")}},
		},
	}

	cmd, err := verify(t, "tag labels::x", def)
	require.NoError(t, err)
	assert.Equal(t, types.ListValue{types.StringValue("x")}, cmd.Arguments["labels"])

	cmd, err = verify(t, "tag", def)
	require.NoError(t, err)
	assert.Equal(t, types.ListValue{types.StringValue("none")}, cmd.Arguments["labels"])
}

func TestVerify_Errors(t *testing.T) {
	def := &types.CommandDefinition{
		Name: "config.set",
		Arguments: []types.ArgumentDefinition{
			{Name: "color", Kind: types.String, Aliases: []string{"c"}},
			{Name: "level", Kind: types.Integer, Attributes: types.ArgumentAttributes{Optional: true},
				ValidationRules: []types.ValidationRule{types.MustParseRule("min:1"), types.MustParseRule("max:5")}},
			{Name: "token", Kind: types.String, Attributes: types.ArgumentAttributes{Optional: true, Sensitive: true},
				ValidationRules: []types.ValidationRule{types.MustParseRule("minlength:8")}},
		},
	}

	tests := []struct {
		name  string
		input string
		code  uerrors.Code
		loc   *ast.Location
	}{
		{"unknown parameter", "config.set colr::red", uerrors.CodeArgumentUnknown, &ast.Location{Start: 11, End: 15}},
		{"duplicate via alias", "config.set color::red c::blue", uerrors.CodeArgumentDuplicate, &ast.Location{Start: 22, End: 23}},
		{"surplus positional", "config.set red 2 secret99 extra", uerrors.CodeArgumentSurplus, &ast.Location{Start: 26, End: 31}},
		{"missing required", "config.set level::2", uerrors.CodeArgumentMissing, nil},
		{"type mismatch", "config.set red level::high", uerrors.CodeTypeMismatch, &ast.Location{Start: 22, End: 26}},
		{"validation min", "config.set red level::0", uerrors.CodeValidationFailed, &ast.Location{Start: 22, End: 23}},
		{"validation max", "config.set red level::9", uerrors.CodeValidationFailed, &ast.Location{Start: 22, End: 23}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := verify(t, tt.input, def)
			assert.Nil(t, cmd)
			require.Error(t, err)
			assert.True(t, uerrors.HasCode(err, tt.code), "got %v", err)

			e, ok := uerrors.As(err)
			require.True(t, ok)
			loc, hasLoc := e.Location()
			if tt.loc == nil {
				assert.False(t, hasLoc)
			} else {
				require.True(t, hasLoc)
				assert.Equal(t, *tt.loc, loc)
			}
		})
	}
}

func TestVerify_UnknownParameters(t *testing.T) {
	def := &types.CommandDefinition{
		Name:      "paint",
		Arguments: []types.ArgumentDefinition{{Name: "color", Kind: types.String, Attributes: types.ArgumentAttributes{Optional: true}}},
	}

	_, err := verify(t, "paint colr::red", def)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "did you mean 'color'")

	e, _ := uerrors.As(err)
	suggestions, ok := e.Detail("suggestions")
	require.True(t, ok)
	assert.Equal(t, map[string]string{"colr": "color"}, suggestions)

	_, err = verify(t, "paint zzz::1 yyyyyy::2", def)
	require.Error(t, err)
	e, _ = uerrors.As(err)
	names, _ := e.Detail("parameters")
	assert.Equal(t, []string{"zzz", "yyyyyy"}, names)
	_, ok = e.Detail("suggestions")
	assert.False(t, ok)

	_, err = New(Options{Logger: logging.Discard(), SuggestionDistance: -1}).Verify(parse(t, "paint colr::red"), def)
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "did you mean")
}

func TestVerify_Interactive(t *testing.T) {
	def := &types.CommandDefinition{
		Name: "login",
		Arguments: []types.ArgumentDefinition{
			{Name: "password", Kind: types.String, Hint: "account password",
				Attributes: types.ArgumentAttributes{Interactive: true, Sensitive: true}},
		},
	}

	_, err := verify(t, "login", def)
	assert.True(t, uerrors.HasCode(err, uerrors.CodeArgumentInteractiveRequired))

	cmd, err := verify(t, "login password::hunter2", def)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"password": MaskedValue}, cmd.Masked())
}

func TestVerify_SensitiveValuesNotInErrors(t *testing.T) {
	def := &types.CommandDefinition{
		Name: "auth",
		Arguments: []types.ArgumentDefinition{
			{Name: "pin", Kind: types.Integer, Attributes: types.ArgumentAttributes{Sensitive: true}},
			{Name: "token", Kind: types.String, Attributes: types.ArgumentAttributes{Optional: true, Sensitive: true},
				ValidationRules: []types.ValidationRule{types.MustParseRule("minlength:8")}},
		},
	}

	_, err := verify(t, "auth pin::abcd", def)
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "abcd")

	_, err = verify(t, "auth pin::1 token::short", def)
	require.Error(t, err)
	assert.True(t, uerrors.HasCode(err, uerrors.CodeValidationFailed))
	assert.NotContains(t, err.Error(), "short")
}

func TestVerifiedCommand_Accessors(t *testing.T) {
	def := &types.CommandDefinition{
		Name: "acc",
		Arguments: []types.ArgumentDefinition{
			{Name: "s", Kind: types.String},
			{Name: "i", Kind: types.Integer},
			{Name: "f", Kind: types.Float},
			{Name: "b", Kind: types.Boolean},
			{Name: "p", Kind: types.Path},
		},
	}

	cmd, err := verify(t, "acc s::x i::3 f::1.5 b::true p::./a", def)
	require.NoError(t, err)

	assert.Equal(t, []string{"b", "f", "i", "p", "s"}, cmd.ArgumentNames())

	p, ok := cmd.String("p")
	assert.True(t, ok)
	assert.Equal(t, "./a", p)

	widened, ok := cmd.Float("i")
	assert.True(t, ok)
	assert.Equal(t, 3.0, widened)

	b, ok := cmd.Bool("b")
	assert.True(t, ok)
	assert.True(t, b)

	_, ok = cmd.Integer("s")
	assert.False(t, ok)

	s, err := cmd.RequireString("s")
	require.NoError(t, err)
	assert.Equal(t, "x", s)

	_, err = cmd.RequireInteger("missing")
	assert.True(t, uerrors.HasCode(err, uerrors.CodeArgumentMissing))
	_, err = cmd.RequireInteger("s")
	assert.True(t, uerrors.HasCode(err, uerrors.CodeInternal))

	f, err := cmd.RequireFloat("f")
	require.NoError(t, err)
	assert.Equal(t, 1.5, f)

	v, ok := cmd.Value("b")
	assert.True(t, ok)
	assert.Equal(t, types.TagBoolean, v.Tag())
}

func TestSuggest(t *testing.T) {
	candidates := []string{"math.add", "math.sub", "echo", "store.get"}

	assert.Equal(t, "math.add", Suggest("mth.ad", candidates, 2)[0])
	assert.Equal(t, []string{"echo"}, Suggest("ehco", candidates, 2))
	assert.Empty(t, Suggest("zzzzzz", candidates, 2))
	assert.Nil(t, Suggest("", candidates, 2))

	best, ok := closest("colr", []string{"size", "color"}, 2)
	assert.True(t, ok)
	assert.Equal(t, "color", best)
}
