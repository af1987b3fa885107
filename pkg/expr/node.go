package expr

import "github.com/shopspring/decimal"

// ExprNode is the interface for all expression tree nodes.
type ExprNode interface {
	Evaluate(r Resolver) (decimal.NullDecimal, error)
	IsValid() Validity
	Validate(r Resolver) (Validity, error)
	String() string
	Clone() ExprNode
	NodeCount() int
	Depth() int
	VarSteps() int
	Variables() []string
}

// BinaryOp identifies a binary operation.
type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpPow
	OpGreater
	OpLess
	OpEqual
)

// PrimeMarker suffixes a variable name once per generation it reaches back.
const PrimeMarker = '#'

// VarNode references a named quantity supplied by a Resolver.
type VarNode struct {
	Name string
}

// ConstNode represents a decimal constant.
type ConstNode struct {
	Val decimal.Decimal
}

// BinaryNode applies a binary operation to two child expressions.
//
// The tokenizer emits BinaryNodes with both children unset; chaining fills
// them in. A subtract node without a left child is a unary minus.
type BinaryNode struct {
	Op          BinaryOp
	Left, Right ExprNode

	// sealed marks a node the chainer must treat as an operand: parenthesized
	// sub-expressions and unary minus bound during tokenizing.
	sealed bool
}

// Unary reports whether b is a subtract without a left operand.
func (b *BinaryNode) Unary() bool {
	return b.Op == OpSub && b.Left == nil
}

// Const returns a ConstNode for an int64 value.
func Const(v int64) *ConstNode {
	return &ConstNode{Val: decimal.NewFromInt(v)}
}

// Var returns a VarNode for name.
func Var(name string) *VarNode {
	return &VarNode{Name: name}
}

// Binary returns a BinaryNode with both children set.
func Binary(op BinaryOp, left, right ExprNode) *BinaryNode {
	return &BinaryNode{Op: op, Left: left, Right: right}
}

// Neg returns a unary minus over child.
func Neg(child ExprNode) *BinaryNode {
	return &BinaryNode{Op: OpSub, Right: child, sealed: true}
}
