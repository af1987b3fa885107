package pool

import (
	"math/rand"

	"github.com/shopspring/decimal"

	"github.com/wildfunctions/formula/pkg/expr"
)

func init() {
	Register("arithmetic", func() Pool { return &ArithmeticPool{} })
}

// ArithmeticPool builds trees from variables, ints 1-10, one-decimal
// fractions, and the four basic operators.
type ArithmeticPool struct{}

func (p *ArithmeticPool) Name() string { return "arithmetic" }

func (p *ArithmeticPool) RandomLeaf(rng *rand.Rand, vars []string) expr.ExprNode {
	r := rng.Float64()
	switch {
	case r < 0.45:
		if v := randomVar(rng, vars, 0); v != nil {
			return v
		}
		fallthrough
	case r < 0.85:
		return expr.Const(int64(rng.Intn(10) + 1))
	default:
		// 0.1 .. 9.9
		return &expr.ConstNode{Val: decimal.New(int64(rng.Intn(99)+1), -1)}
	}
}

var arithmeticBinary = []expr.BinaryOp{
	expr.OpAdd,
	expr.OpSub,
	expr.OpMul,
	expr.OpDiv,
}

func (p *ArithmeticPool) RandomBinary(rng *rand.Rand) expr.BinaryOp {
	return arithmeticBinary[rng.Intn(len(arithmeticBinary))]
}

func (p *ArithmeticPool) RandomTree(rng *rand.Rand, vars []string, maxDepth int) expr.ExprNode {
	return randomTree(p, rng, vars, maxDepth)
}
