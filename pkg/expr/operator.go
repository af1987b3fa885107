package expr

import (
	"math"

	"github.com/shopspring/decimal"
)

// Tier is an operator precedence tier. Lower tiers bind tighter.
type Tier int

const (
	TierPow Tier = iota
	TierMul
	TierAdd
	TierCompare
)

// chainTiers is the order of grouping passes in one chaining cycle.
var chainTiers = []Tier{TierPow, TierMul, TierAdd, TierCompare}

// powScale is the number of fractional digits kept from a power.
const powScale = 6

// ApplyFunc combines two optional operands into an optional result.
type ApplyFunc func(a, b decimal.NullDecimal) decimal.NullDecimal

// OperatorSpec describes one binary operator.
type OperatorSpec struct {
	Symbol rune
	Op     BinaryOp
	Tier   Tier
	Apply  ApplyFunc
}

var (
	opsBySymbol map[rune]OperatorSpec
	opsByOp     map[BinaryOp]OperatorSpec
)

func init() {
	specs := []OperatorSpec{
		{'^', OpPow, TierPow, arithmetic(pow)},
		{'*', OpMul, TierMul, arithmetic(func(a, b decimal.Decimal) (decimal.Decimal, bool) { return a.Mul(b), true })},
		{'/', OpDiv, TierMul, arithmetic(div)},
		{'+', OpAdd, TierAdd, arithmetic(func(a, b decimal.Decimal) (decimal.Decimal, bool) { return a.Add(b), true })},
		{'-', OpSub, TierAdd, arithmetic(func(a, b decimal.Decimal) (decimal.Decimal, bool) { return a.Sub(b), true })},
		{'>', OpGreater, TierCompare, comparison(decimal.Decimal.GreaterThan)},
		{'<', OpLess, TierCompare, comparison(decimal.Decimal.LessThan)},
		{'=', OpEqual, TierCompare, comparison(decimal.Decimal.Equal)},
	}
	bySymbol := make(map[rune]OperatorSpec, len(specs))
	byOp := make(map[BinaryOp]OperatorSpec, len(specs))
	for _, s := range specs {
		bySymbol[s.Symbol] = s
		byOp[s.Op] = s
	}
	opsBySymbol, opsByOp = bySymbol, byOp
}

// LookupSymbol returns the operator spelled by c.
func LookupSymbol(c rune) (OperatorSpec, bool) {
	s, ok := opsBySymbol[c]
	return s, ok
}

// LookupOp returns the OperatorSpec for op.
func LookupOp(op BinaryOp) (OperatorSpec, bool) {
	s, ok := opsByOp[op]
	return s, ok
}

// IsOperator reports whether c is an operator character.
func IsOperator(c rune) bool {
	_, ok := opsBySymbol[c]
	return ok
}

func tierOf(op BinaryOp) Tier {
	return opsByOp[op].Tier
}

// arithmetic lifts f to optional operands: a missing operand, or an f that
// reports no result, gives a missing result.
func arithmetic(f func(a, b decimal.Decimal) (decimal.Decimal, bool)) ApplyFunc {
	return func(a, b decimal.NullDecimal) decimal.NullDecimal {
		if !a.Valid || !b.Valid {
			return decimal.NullDecimal{}
		}
		v, ok := f(a.Decimal, b.Decimal)
		if !ok {
			return decimal.NullDecimal{}
		}
		return decimal.NewNullDecimal(v)
	}
}

// comparison yields 1 or 0 when both operands are present.
func comparison(f func(a, b decimal.Decimal) bool) ApplyFunc {
	return func(a, b decimal.NullDecimal) decimal.NullDecimal {
		if !a.Valid || !b.Valid {
			return decimal.NullDecimal{}
		}
		if f(a.Decimal, b.Decimal) {
			return decimal.NewNullDecimal(decimal.NewFromInt(1))
		}
		return decimal.NewNullDecimal(decimal.Zero)
	}
}

func div(a, b decimal.Decimal) (decimal.Decimal, bool) {
	if b.IsZero() {
		return decimal.Decimal{}, false
	}
	return a.Div(b), true
}

func pow(a, b decimal.Decimal) (decimal.Decimal, bool) {
	r := math.Pow(a.InexactFloat64(), b.InexactFloat64())
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return decimal.Decimal{}, false
	}
	return decimal.NewFromFloat(r).Round(powScale), true
}
