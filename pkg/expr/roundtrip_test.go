package expr_test

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wildfunctions/formula/pkg/expr"
	"github.com/wildfunctions/formula/pkg/pool"
)

// Printing a tree and parsing it back must give the same tree.
func TestRoundTrip_RandomTrees(t *testing.T) {
	vars := []string{"a", "b", "rate"}
	r := expr.NullMapResolver{
		"a":     decimal.NewNullDecimal(decimal.NewFromInt(3)),
		"b":     decimal.NewNullDecimal(decimal.RequireFromString("-1.5")),
		"rate":  decimal.NewNullDecimal(decimal.NewFromInt(2)),
		"a#":    decimal.NewNullDecimal(decimal.NewFromInt(7)),
		"b#":    {},
		"rate#": decimal.NewNullDecimal(decimal.Zero),
	}

	for _, name := range pool.Names() {
		t.Run(name, func(t *testing.T) {
			p, err := pool.Get(name)
			require.NoError(t, err)
			rng := rand.New(rand.NewSource(1))

			for i := 0; i < 300; i++ {
				tree := p.RandomTree(rng, vars, 5)
				text := tree.String()

				parsed, err := expr.Parse(text)
				require.NoError(t, err, text)
				require.Equal(t, text, parsed.String())
				assert.Equal(t, tree.Depth(), parsed.Depth(), text)
				assert.Equal(t, tree.VarSteps(), parsed.VarSteps(), text)

				want, err := tree.Evaluate(r)
				require.NoError(t, err, text)
				got, err := parsed.Evaluate(r)
				require.NoError(t, err, text)
				require.Equal(t, want.Valid, got.Valid, text)
				if want.Valid {
					assert.True(t, want.Decimal.Equal(got.Decimal), "%s: %s != %s", text, want.Decimal, got.Decimal)
				}

				wantV, err := tree.Validate(r)
				require.NoError(t, err)
				gotV, err := parsed.Validate(r)
				require.NoError(t, err)
				assert.Equal(t, wantV, gotV, text)
			}
		})
	}
}

// Simplifying must not change the value of a tree.
func TestSimplify_RandomTrees(t *testing.T) {
	r := expr.MapResolver{"a": decimal.NewFromInt(4), "b": decimal.NewFromInt(-3)}
	p, err := pool.Get("arithmetic")
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(3))

	for i := 0; i < 300; i++ {
		tree := p.RandomTree(rng, []string{"a", "b"}, 5)
		simplified := expr.Simplify(tree.Clone())
		assert.LessOrEqual(t, simplified.NodeCount(), tree.NodeCount())

		want, err := tree.Evaluate(r)
		require.NoError(t, err)
		got, err := simplified.Evaluate(r)
		require.NoError(t, err)
		require.Equal(t, want.Valid, got.Valid, "%s -> %s", tree, simplified)
		if want.Valid {
			assert.True(t, want.Decimal.Equal(got.Decimal), "%s -> %s: %s != %s", tree, simplified, want.Decimal, got.Decimal)
		}
	}
}
