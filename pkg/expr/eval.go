package expr

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

func (c *ConstNode) Evaluate(Resolver) (decimal.NullDecimal, error) {
	return decimal.NewNullDecimal(c.Val), nil
}

// Evaluate resolves the variable. An unknown key evaluates to no value;
// Validate tells the two apart.
func (v *VarNode) Evaluate(r Resolver) (decimal.NullDecimal, error) {
	if r == nil {
		return decimal.NullDecimal{}, fmt.Errorf("evaluate [%s]: nil resolver", v.Name)
	}
	val, err := r.Resolve(v.Name)
	if errors.Is(err, ErrNotFound) {
		return decimal.NullDecimal{}, nil
	}
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("resolve [%s]: %w", v.Name, err)
	}
	return val, nil
}

func (b *BinaryNode) Evaluate(r Resolver) (decimal.NullDecimal, error) {
	spec, ok := LookupOp(b.Op)
	if !ok {
		return decimal.NullDecimal{}, fmt.Errorf("unknown operator %d", b.Op)
	}
	left, right, err := b.operands()
	if err != nil {
		return decimal.NullDecimal{}, err
	}

	lv, err := left.Evaluate(r)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	rv, err := right.Evaluate(r)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return spec.Apply(lv, rv), nil
}

// operands returns the children to evaluate, synthesizing a zero left child
// for unary minus.
func (b *BinaryNode) operands() (ExprNode, ExprNode, error) {
	sym := string(opsByOp[b.Op].Symbol)
	if b.Right == nil {
		return nil, nil, fmt.Errorf("operator %s: %w (right)", sym, ErrMissingOperand)
	}
	if b.Left == nil {
		if b.Op != OpSub {
			return nil, nil, fmt.Errorf("operator %s: %w (left)", sym, ErrMissingOperand)
		}
		return zero, b.Right, nil
	}
	return b.Left, b.Right, nil
}

var zero = &ConstNode{Val: decimal.Zero}
