package pool

import (
	"math/rand"

	"github.com/wildfunctions/formula/pkg/expr"
)

func init() {
	Register("comparison", func() Pool { return &ComparisonPool{} })
}

// ComparisonPool extends arithmetic with power, the comparison operators and
// primed variables.
type ComparisonPool struct{}

func (p *ComparisonPool) Name() string { return "comparison" }

func (p *ComparisonPool) RandomLeaf(rng *rand.Rand, vars []string) expr.ExprNode {
	if rng.Float64() < 0.5 {
		if v := randomVar(rng, vars, 0.3); v != nil {
			return v
		}
	}
	return expr.Const(int64(rng.Intn(5) + 1))
}

var comparisonBinary = []expr.BinaryOp{
	expr.OpAdd,
	expr.OpSub,
	expr.OpMul,
	expr.OpDiv,
	expr.OpPow,
	expr.OpGreater,
	expr.OpLess,
	expr.OpEqual,
}

func (p *ComparisonPool) RandomBinary(rng *rand.Rand) expr.BinaryOp {
	return comparisonBinary[rng.Intn(len(comparisonBinary))]
}

func (p *ComparisonPool) RandomTree(rng *rand.Rand, vars []string, maxDepth int) expr.ExprNode {
	return randomTree(p, rng, vars, maxDepth)
}
