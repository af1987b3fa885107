package alias

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wildfunctions/formula/pkg/expr"
)

// recordingResolver captures the priming pass forwarded by Init.
type recordingResolver struct {
	expr.MapResolver
	primed []string
	steps  int
	err    error
}

func (r *recordingResolver) Init(_ context.Context, formulas []string, steps int) error {
	r.primed = formulas
	r.steps = steps
	return r.err
}

func TestScope_ResolveKey(t *testing.T) {
	r := New()
	residual := r.Scope(7).Parse("{rate:baseRate}")
	assert.Empty(t, residual)

	assert.Equal(t, "7_baseRate", r.Scope(7).ResolveKey("rate"))
	assert.Equal(t, "7_baseRate#", r.Scope(7).ResolveKey("rate#"))
	assert.Equal(t, "7_baseRate##", r.Scope(7).ResolveKey("##rate"))
	assert.Equal(t, "7_baseRate", r.Scope(7).ResolveKey("RATE"), "keys are case-insensitive")

	// Names without alias fall back to the unmodified name.
	assert.Equal(t, "temperature", r.Scope(7).ResolveKey("temperature"))
	assert.Equal(t, "rate", r.Scope(8).ResolveKey("rate"))
	assert.Equal(t, "rate", r.ResolveKey("rate"))
}

func TestResolveKey_Unscoped(t *testing.T) {
	r := New()
	r.Parse("{rate:baseRate}")
	assert.Equal(t, "baseRate", r.ResolveKey("rate"))
	assert.Equal(t, "baseRate#", r.ResolveKey("rate#"))
}

func TestScope_LiteralValueNotPrefixed(t *testing.T) {
	r := New()
	r.Scope(3).Parse("{cap:100}")
	assert.Equal(t, "100", r.Scope(3).ResolveKey("cap"))
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		residual string
		defs     []Definition
	}{
		{
			name:     "braced block and formula",
			text:     "{rate:baseRate}\n[rate]*2",
			residual: "[rate]*2",
			defs:     []Definition{{"rate", "baseRate"}},
		},
		{
			name:     "semicolons",
			text:     "{a:x; b : y ;c:1.5}",
			residual: "",
			defs:     []Definition{{"a", "x"}, {"b", "y"}, {"c", "1.5"}},
		},
		{
			name:     "multi-line block",
			text:     "{\na:x\nb:y\n}\n[a]+[b]",
			residual: "[a]+[b]",
			defs:     []Definition{{"a", "x"}, {"b", "y"}},
		},
		{
			name:     "no braces",
			text:     "a:x\n[a]",
			residual: "[a]",
			defs:     []Definition{{"a", "x"}},
		},
		{
			name:     "plain formula",
			text:     "[a] + 1",
			residual: "[a] + 1",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			residual, defs := Split(tc.text)
			assert.Equal(t, tc.residual, residual)
			assert.Equal(t, tc.defs, defs)
		})
	}
}

func TestResolve_NotInitialized(t *testing.T) {
	r := New()
	_, err := r.Resolve("x")
	assert.ErrorIs(t, err, ErrNotInitialized)
	assert.ErrorIs(t, r.Init(context.Background(), nil, 1), ErrNotInitialized)
	assert.False(t, r.ContainsKey("x"))
}

func TestInitDict_Resolve(t *testing.T) {
	ctx := context.Background()
	r := New()
	err := r.InitDict(ctx, map[string]decimal.Decimal{
		"baseRate": decimal.NewFromInt(4),
	}, []string{"{rate:baseRate; half:0.5}\n[rate]*[half]"}, 1)
	require.NoError(t, err)

	v, err := r.Resolve("rate")
	require.NoError(t, err)
	assert.True(t, v.Decimal.Equal(decimal.NewFromInt(4)))

	v, err = r.Resolve("half")
	require.NoError(t, err)
	assert.True(t, v.Decimal.Equal(decimal.RequireFromString("0.5")))

	_, err = r.Resolve("nope")
	assert.ErrorIs(t, err, expr.ErrNotFound)

	assert.True(t, r.ContainsKey("rate"))
	assert.True(t, r.ContainsKey("half"))
	assert.False(t, r.ContainsKey("nope"))
	assert.Equal(t, []string{"baseRate", "half", "rate"}, r.Keys())
}

func TestRewritten_SkipsAliasTable(t *testing.T) {
	ctx := context.Background()
	r := New()
	err := r.InitDict(ctx, map[string]decimal.Decimal{
		"b": decimal.NewFromInt(1),
		"c": decimal.NewFromInt(2),
	}, []string{"{a:b; b:c; k:0.5}\n[a]*[k]"}, 1)
	require.NoError(t, err)

	node, err := expr.Parse("[a]*[k]", r.Unscoped().Rewriter())
	require.NoError(t, err)
	assert.Equal(t, "([b] * [0.5])", node.String())

	v, err := node.Evaluate(r.Rewritten())
	require.NoError(t, err)
	assert.True(t, v.Decimal.Equal(decimal.RequireFromString("0.5")), "got %s", v.Decimal)

	assert.True(t, r.Rewritten().ContainsKey("0.5"))
	assert.False(t, r.Rewritten().ContainsKey("a"))
	_, err = New().Rewritten().Resolve("b")
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestInitScoped_PrimesInner(t *testing.T) {
	inner := &recordingResolver{MapResolver: expr.MapResolver{
		"7_baseRate": decimal.NewFromInt(2),
		"8_baseRate": decimal.NewFromInt(3),
	}}
	r := New()
	err := r.InitScoped(context.Background(), inner, []ScopedFormula{
		{ID: 7, Text: "{rate:baseRate}\n[rate]*2"},
		{ID: 8, Text: "{rate:baseRate; k:2}\n[rate]*[k]"},
		{ID: 9, Text: "{rate:baseRate}"},
	}, 2)
	require.NoError(t, err)

	assert.Equal(t, []string{"7_baseRate", "8_baseRate", "9_baseRate"}, inner.primed)
	assert.Equal(t, 2, inner.steps)

	node, err := expr.Parse("[rate]*[k]", r.Scope(8).Rewriter())
	require.NoError(t, err)
	v, err := node.Evaluate(r)
	require.NoError(t, err)
	assert.True(t, v.Decimal.Equal(decimal.NewFromInt(6)))

	node, err = expr.Parse("[rate]*2", r.Scope(7).Rewriter())
	require.NoError(t, err)
	v, err = node.Evaluate(r)
	require.NoError(t, err)
	assert.True(t, v.Decimal.Equal(decimal.NewFromInt(4)))

	validity, err := expr.MustParse("[rate]", r.Scope(9).Rewriter()).Validate(r)
	require.NoError(t, err)
	assert.Equal(t, expr.NotFound, validity)
}

func TestInit_PrimingErrorIsWrapped(t *testing.T) {
	boom := errors.New("boom")
	inner := &recordingResolver{err: boom}
	err := New().InitResolver(context.Background(), inner, []string{"{a:b}"}, 1)
	assert.ErrorIs(t, err, boom)
}

func TestInit_NilInner(t *testing.T) {
	err := New().InitResolver(context.Background(), nil, nil, 1)
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestDefinitions(t *testing.T) {
	r := New()
	r.Scope(1).Parse("{b:y}")
	r.Parse("{a:x}")
	assert.Equal(t, []Definition{{"1_b", "1_y"}, {"a", "x"}}, r.Definitions())
}

func TestInitResolver_PrimesFormulaVariables(t *testing.T) {
	inner := &recordingResolver{}
	err := New().InitResolver(context.Background(), inner, []string{
		"{rate:baseRate}\n[rate]*[temp#]+[rate]",
		"[temp#]-3",
		"{k:2}\n[k]",
	}, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"baseRate", "temp#"}, inner.primed)
}
