package expr

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func evalString(t *testing.T, text string, r Resolver) decimal.NullDecimal {
	t.Helper()
	node, err := Parse(text)
	require.NoError(t, err, "Parse(%q)", text)
	v, err := node.Evaluate(r)
	require.NoError(t, err, "Evaluate(%q)", text)
	return v
}

func TestParse_Evaluate(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"2+3*4", "14"},
		{"(2+3)*4", "20"},
		{"-5+3", "-2"},
		{"-5", "-5"},
		{"10-2-3", "5"},
		{"12/3/2", "2"},
		{"2^3^2", "64"},
		{"2*3^2", "18"},
		{"2*-3+1", "-5"},
		{"2^-1", "0.5"},
		{"--4", "4"},
		{"3--4", "7"},
		{"2*(3+4)-1", "13"},
		{"((1))", "1"},
		{"1,5+1.5", "3"},
		{" 2 + 3 ", "5"},
		{"1+2>2", "1"},
		{"2<1", "0"},
		{"1+1=2", "1"},
		{"[x]+1", "6"},
		{"[x]*[y]-[big]", "-990.5"},
		{"-[x]^2", "-25"},
		{"-2^2", "-4"},
		{"-(2)^2", "-4"},
		{"(-2)^2", "4"},
		{"2*-3^2", "-18"},
		{"-2*3", "-6"},
		{"-(1+2)*2", "-6"},
		{"[x]-(-[y])", "7"},
	}
	for _, tc := range tests {
		t.Run(tc.text, func(t *testing.T) {
			got := evalString(t, tc.text, testVars)
			require.True(t, got.Valid, "no value")
			assert.True(t, got.Decimal.Equal(decimal.RequireFromString(tc.want)),
				"got %s, want %s", got.Decimal, tc.want)
		})
	}
}

func TestParse_UnaryMinusBelowPower(t *testing.T) {
	r := MapResolver{"x": decimal.NewFromInt(3)}
	tests := []struct {
		text string
		expr string
		want int64
	}{
		{"-2^2", "(-(2 ^ 2))", -4},
		{"-[x]^2", "(-([x] ^ 2))", -9},
		{"-(2)^2", "(-(2 ^ 2))", -4},
		{"2^-1*4", "((2 ^ (-1)) * 4)", 2},
	}
	for _, tc := range tests {
		t.Run(tc.text, func(t *testing.T) {
			node := MustParse(tc.text)
			assert.Equal(t, tc.expr, node.String())
			v, err := node.Evaluate(r)
			require.NoError(t, err)
			require.True(t, v.Valid)
			assert.True(t, v.Decimal.Equal(decimal.NewFromInt(tc.want)), "got %s", v.Decimal)
		})
	}
}

func TestParse_UnaryMinusIsValid(t *testing.T) {
	node, err := Parse("-5")
	require.NoError(t, err)
	assert.Equal(t, OK, node.IsValid())
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		text string
		is   error
	}{
		{"*3", ErrMissingOperand},
		{"2+", ErrMissingOperand},
		{"2**3", ErrMissingOperand},
		{"", ErrUnchainable},
		{"2(3)", ErrUnchainable},
		{"[x][y]", ErrUnchainable},
		{"(1+2", nil},
		{"1+2)", nil},
		{"[x", nil},
		{"x]", nil},
		{"[]+1", nil},
		{"abc", nil},
		{"2 3", nil},
		{"()", nil},
	}
	for _, tc := range tests {
		t.Run(tc.text, func(t *testing.T) {
			_, err := Parse(tc.text)
			require.Error(t, err)
			var se *SyntaxError
			assert.True(t, errors.As(err, &se), "want *SyntaxError, got %T", err)
			if tc.is != nil {
				assert.ErrorIs(t, err, tc.is)
			}
		})
	}
}

func TestParse_Variables(t *testing.T) {
	node, err := Parse("[rate per hour] * [rate#] + [x##]")
	require.NoError(t, err)
	assert.Equal(t, []string{"rate per hour", "rate#", "x##"}, node.Variables())
	assert.Equal(t, 3, node.VarSteps())

	node, err = Parse("[(a)]+1")
	require.NoError(t, err)
	assert.Equal(t, []string{"(a)"}, node.Variables())
}

func TestParse_PrimingCount(t *testing.T) {
	assert.Equal(t, 3, MustParse("[x##]").VarSteps())
	assert.Equal(t, 1, MustParse("[x]").VarSteps())
	assert.Equal(t, 0, MustParse("42").VarSteps())
}

func TestParse_KeyRewriter(t *testing.T) {
	node, err := Parse("[a]+[b]", WithKeyRewriter(strings.ToUpper))
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, node.Variables())
}

func TestParse_ValidateAgainstResolver(t *testing.T) {
	r := MapResolver{"x": decimal.NewFromInt(5)}

	v := evalString(t, "[x]+1", r)
	require.True(t, v.Valid)
	assert.True(t, v.Decimal.Equal(decimal.NewFromInt(6)))

	node := MustParse("[y]+1")
	got, err := node.Validate(r)
	require.NoError(t, err)
	assert.Equal(t, NotFound, got)
}

func TestParse_Depth(t *testing.T) {
	assert.Equal(t, 3, MustParse("2+3*4").Depth())
	assert.Equal(t, 1, MustParse("7").Depth())
	assert.Equal(t, 2, MustParse("-7").Depth())
}

func TestParse_String(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"2+3*4", "(2 + (3 * 4))"},
		{"(2+3)*4", "((2 + 3) * 4)"},
		{"-[x]+1", "((-[x]) + 1)"},
		{"-[x]*2", "(-([x] * 2))"},
		{"2*-[x]", "(2 * (-[x]))"},
		{"[a]-[b]-[c]", "(([a] - [b]) - [c])"},
		{"1,25", "1.25"},
	}
	for _, tc := range tests {
		t.Run(tc.text, func(t *testing.T) {
			assert.Equal(t, tc.want, MustParse(tc.text).String())
		})
	}
}

func TestParse_RoundTrip(t *testing.T) {
	formulas := []string{
		"[a]+[b]*[c]",
		"([a]+[b])*[c]",
		"[a]-[b]-[c]",
		"[a]-([b]-[c])",
		"[a]/[b]/[c]",
		"-[a]*[b]",
		"[a]*-[b]+[c]/-[d]",
		"--[a]",
	}
	r := MapResolver{
		"a": decimal.NewFromInt(7),
		"b": decimal.NewFromInt(3),
		"c": decimal.NewFromInt(2),
		"d": decimal.NewFromInt(4),
	}
	for _, text := range formulas {
		t.Run(text, func(t *testing.T) {
			first := MustParse(text)
			second, err := Parse(first.String())
			require.NoError(t, err)
			assert.Equal(t, first.String(), second.String())

			v1, err := first.Evaluate(r)
			require.NoError(t, err)
			v2, err := second.Evaluate(r)
			require.NoError(t, err)
			assert.True(t, v1.Decimal.Equal(v2.Decimal))
		})
	}
}

func TestMustParse_Panics(t *testing.T) {
	assert.Panics(t, func() { MustParse("(") })
}

func TestReferences(t *testing.T) {
	assert.Equal(t, []string{"a", "b#"}, References("[a]+[b#]*[a]"))
	assert.Equal(t, []string{"baseRate"}, References("baseRate"))
	assert.Equal(t, []string{"base-rate"}, References(" base-rate "))
	assert.Nil(t, References("3.5"))
	assert.Nil(t, References("1+2"))
	assert.Nil(t, References(""))
}
